package main

import (
	"fmt"
	"sort"
)

////////////////////////////////////////////////////////////
// VPC explicit protection groups
////////////////////////////////////////////////////////////

const protectionPolicyDN = "uni/fabric/protpol"

type ExplicitGroup struct {
	json  JSON
	dn    string
	id    int
	name  string
	nodes []string
}

func NewExplicitGroup(json JSON) ExplicitGroup {
	group := ExplicitGroup{
		json: json,
		dn:   json.Get("fabricExplicitGEp.attributes.dn").Str,
		id:   int(json.Get("fabricExplicitGEp.attributes.id").Int()),
		name: json.Get("fabricExplicitGEp.attributes.name").Str,
	}
	for _, id := range json.Get("fabricExplicitGEp.children.#.fabricNodePEp.attributes.id").Array() {
		group.nodes = append(group.nodes, id.Str)
	}
	sortNodeIDs(group.nodes)
	return group
}

func (g ExplicitGroup) MarshalJSON() ([]byte, error) {
	return []byte(g.json.Raw), nil
}

// pairs reports whether the group protects exactly the given two nodes.
func (g ExplicitGroup) pairs(nodes []string) bool {
	if len(g.nodes) != len(nodes) {
		return false
	}
	sorted := append([]string{}, nodes...)
	sortNodeIDs(sorted)
	for i := range sorted {
		if g.nodes[i] != sorted[i] {
			return false
		}
	}
	return true
}

func (c *Client) getExplicitGroups() (res []ExplicitGroup, err error) {
	groups, err := c.get(Query{
		uri: "/api/node/class/fabricExplicitGEp",
		query: []string{
			"rsp-subtree=children",
			"rsp-subtree-class=fabricNodePEp",
		},
	})
	if err != nil {
		return
	}
	for _, record := range groups.Array() {
		res = append(res, NewExplicitGroup(record))
	}
	return
}

func groupFor(groups []ExplicitGroup, nodes []string) (ExplicitGroup, bool) {
	for _, group := range groups {
		if group.pairs(nodes) {
			return group, true
		}
	}
	return ExplicitGroup{}, false
}

// lowestFreeGroupID returns the smallest positive ID not used by groups.
func lowestFreeGroupID(groups []ExplicitGroup) int {
	used := make([]int, 0, len(groups))
	for _, group := range groups {
		used = append(used, group.id)
	}
	sort.Ints(used)
	id := 1
	for _, u := range used {
		if u == id {
			id++
		} else if u > id {
			break
		}
	}
	return id
}

func newExplicitGroupMO(name string, id int, nodes []string, pods map[string]string) *MO {
	group := NewMO("fabricExplicitGEp").
		Set("dn", fmt.Sprintf("%s/expgep-%s", protectionPolicyDN, name)).
		Set("name", name).
		Set("id", fmt.Sprint(id))
	group.Add(NewMO("fabricRsVpcInstPol").Set("tnVpcInstPolName", ""))
	for _, node := range nodes {
		group.Add(NewMO("fabricNodePEp").
			Set("id", node).
			Set("podId", pods[node]))
	}
	return group
}
