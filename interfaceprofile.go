package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

////////////////////////////////////////////////////////////
// Interface profiles
////////////////////////////////////////////////////////////

const interfaceProfilePageSize = 50

var errSelectorConflict = errors.New("conflicting interface selector")

// Writable attributes of interface selectors, their blocks and relations.
var portSelectorKeys = []string{
	"annotation", "descr", "name", "nameAlias", "ownerKey", "ownerTag", "type",
	"tDn", "fexId", "fromCard", "fromPort", "toCard", "toPort",
}

type PortSelector struct {
	attributes JSON
	policy     JSON
	blocks     []JSON
}

func NewPortSelector(json JSON) PortSelector {
	selector := PortSelector{attributes: json.Get("attributes")}
	for _, child := range json.Get("children").Array() {
		switch {
		case child.Get("infraRsAccBaseGrp").Exists():
			selector.policy = child.Get("infraRsAccBaseGrp.attributes")
		case child.Get("infraPortBlk").Exists():
			selector.blocks = append(selector.blocks, child.Get("infraPortBlk.attributes"))
		}
	}
	return selector
}

// rn is the selector's relative name within its interface profile.
func (s PortSelector) rn() string {
	if dn := s.attributes.Get("dn").Str; dn != "" {
		return lastRN(dn)
	}
	return fmt.Sprintf("hports-%s-typ-%s", s.attributes.Get("name").Str, s.attributes.Get("type").Str)
}

func (s PortSelector) MO() *MO {
	mo := NewMO("infraHPortS").SetAll(filterAttributes(s.attributes, portSelectorKeys))
	if s.policy.Exists() {
		mo.Add(NewMO("infraRsAccBaseGrp").SetAll(filterAttributes(s.policy, portSelectorKeys)))
	}
	for _, block := range s.blocks {
		mo.Add(NewMO("infraPortBlk").SetAll(filterAttributes(block, portSelectorKeys)))
	}
	return mo
}

type InterfaceProfile struct {
	json      JSON
	dn        string
	name      string
	selectors []PortSelector
}

func NewInterfaceProfile(json JSON) InterfaceProfile {
	profile := InterfaceProfile{
		json: json,
		dn:   json.Get("infraAccPortP.attributes.dn").Str,
		name: json.Get("infraAccPortP.attributes.name").Str,
	}
	for _, selector := range json.Get("infraAccPortP.children.#.infraHPortS").Array() {
		profile.selectors = append(profile.selectors, NewPortSelector(selector))
	}
	return profile
}

func (p InterfaceProfile) MarshalJSON() ([]byte, error) {
	return []byte(p.json.Raw), nil
}

func (c *Client) getInterfaceProfiles() (res []InterfaceProfile, err error) {
	records, err := c.getAll(Query{
		uri: "/api/node/mo/uni/infra",
		query: []string{
			"query-target=children",
			"target-subtree-class=infraAccPortP",
			`query-target-filter=not(wcard(infraAccPortP.dn,"__ui_"))`,
			"rsp-subtree=full",
			"rsp-subtree-class=infraHPortS,infraPortBlk,infraRsAccBaseGrp,infraSubPortBlk",
			"order-by=infraAccPortP.name|asc",
		},
	}, interfaceProfilePageSize)
	if err != nil {
		return
	}
	for _, record := range records {
		res = append(res, NewInterfaceProfile(record))
	}
	return
}

// interfaceProfilesFor returns the interface profiles referenced by the
// given switch profiles.
func interfaceProfilesFor(all []InterfaceProfile, switchProfiles []SwitchProfile) (res []InterfaceProfile) {
	wanted := make(map[string]bool)
	for _, profile := range switchProfiles {
		for _, dn := range profile.interfaceProfiles {
			wanted[dn] = true
		}
	}
	for _, profile := range all {
		if wanted[profile.dn] {
			res = append(res, profile)
		}
	}
	return
}

// newInterfaceProfileMO copies every selector of the source profiles
// into a single profile called name. Selectors are keyed by RN: an exact
// repeat is dropped, a differing one with the same RN is left out and
// its RN returned as a conflict.
func newInterfaceProfileMO(name string, sources []InterfaceProfile) (*MO, []string) {
	profile := NewMO("infraAccPortP").
		Set("dn", interfaceProfileDN(name)).
		Set("name", name)
	added := make(map[string]string)
	var conflicts []string
	for _, source := range sources {
		for _, selector := range source.selectors {
			mo := selector.MO()
			raw, err := mo.JSON()
			if err != nil {
				raw = ""
			}
			rn := selector.rn()
			if prev, ok := added[rn]; ok {
				if prev == raw && raw != "" {
					continue
				}
				log.WithFields(logrus.Fields{
					"profile":  name,
					"selector": rn,
					"source":   source.name,
				}).Warn("Interface selector conflicts with one from another source profile")
				conflicts = append(conflicts, rn)
				continue
			}
			added[rn] = raw
			profile.Add(mo)
		}
	}
	return profile, conflicts
}
