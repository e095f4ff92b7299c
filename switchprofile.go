package main

import (
	"fmt"
	"strconv"
)

////////////////////////////////////////////////////////////
// Switch profiles
////////////////////////////////////////////////////////////

type NodeBlock struct {
	from int
	to   int
}

func (b NodeBlock) covers(id string) bool {
	n, err := strconv.Atoi(id)
	if err != nil {
		return false
	}
	return b.from <= n && n <= b.to
}

type SwitchProfile struct {
	json              JSON
	dn                string
	name              string
	blocks            []NodeBlock
	policyGroups      []string
	interfaceProfiles []string
}

func NewSwitchProfile(json JSON) SwitchProfile {
	profile := SwitchProfile{
		json: json,
		dn:   json.Get("infraNodeP.attributes.dn").Str,
		name: json.Get("infraNodeP.attributes.name").Str,
	}
	for _, selector := range json.Get("infraNodeP.children.#.infraLeafS").Array() {
		for _, block := range selector.Get("children.#.infraNodeBlk.attributes").Array() {
			profile.blocks = append(profile.blocks, NodeBlock{
				from: int(block.Get("from_").Int()),
				to:   int(block.Get("to_").Int()),
			})
		}
		for _, tDn := range selector.Get("children.#.infraRsAccNodePGrp.attributes.tDn").Array() {
			if tDn.Str != "" {
				profile.policyGroups = append(profile.policyGroups, tDn.Str)
			}
		}
	}
	for _, tDn := range json.Get("infraNodeP.children.#.infraRsAccPortP.attributes.tDn").Array() {
		profile.interfaceProfiles = append(profile.interfaceProfiles, tDn.Str)
	}
	return profile
}

func (p SwitchProfile) MarshalJSON() ([]byte, error) {
	return []byte(p.json.Raw), nil
}

func (p SwitchProfile) covers(id string) bool {
	for _, block := range p.blocks {
		if block.covers(id) {
			return true
		}
	}
	return false
}

func (c *Client) getSwitchProfiles() (res []SwitchProfile, err error) {
	profiles, err := c.get(Query{
		uri: "/api/node/mo/uni/infra",
		query: []string{
			"query-target=children",
			"target-subtree-class=infraNodeP",
			`query-target-filter=not(wcard(infraNodeP.dn,"__ui_"))`,
			"rsp-subtree=full",
			"rsp-subtree-class=infraLeafS,infraRsAccPortP,infraRsAccCardP,infraNodeBlk,infraRsAccNodePGrp",
			"order-by=infraNodeP.name",
		},
	})
	if err != nil {
		return
	}
	for _, record := range profiles.Array() {
		res = append(res, NewSwitchProfile(record))
	}
	return
}

// profilesFor returns the profiles with a node block covering id.
func profilesFor(profiles []SwitchProfile, id string) (res []SwitchProfile) {
	for _, profile := range profiles {
		if profile.covers(id) {
			res = append(res, profile)
		}
	}
	return
}

// policyGroup is the first switch policy group referenced by the profiles.
func policyGroup(profiles []SwitchProfile) string {
	for _, profile := range profiles {
		if len(profile.policyGroups) > 0 {
			return profile.policyGroups[0]
		}
	}
	return ""
}

func (o *Options) switchProfileName(node string) string {
	return o.SwitchProfilePrefix + node
}

func (o *Options) interfaceProfileName(node string) string {
	return o.InterfaceProfilePrefix + node
}

func interfaceProfileDN(name string) string {
	return fmt.Sprintf("uni/infra/accportprof-%s", name)
}

// newSwitchProfileMO builds the leaf profile for node, bound to the
// node's interface profile and, when given, to a switch policy group.
func newSwitchProfileMO(opts *Options, node string, policyGroupDN string) *MO {
	name := opts.switchProfileName(node)
	profile := NewMO("infraNodeP").
		Set("dn", fmt.Sprintf("uni/infra/nprof-%s", name)).
		Set("name", name)
	profile.Add(NewMO("infraRsAccPortP").
		Set("tDn", interfaceProfileDN(opts.interfaceProfileName(node))))
	selector := NewMO("infraLeafS").
		Set("name", opts.SwitchSelectorPrefix+node).
		Set("type", "range")
	if policyGroupDN != "" {
		selector.Add(NewMO("infraRsAccNodePGrp").Set("tDn", policyGroupDN))
	}
	selector.Add(NewMO("infraNodeBlk").
		Set("name", opts.BlockPrefix+node).
		Set("from_", node).
		Set("to_", node))
	return profile.Add(selector)
}
