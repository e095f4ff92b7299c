package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNewInterfaceProfile(t *testing.T) {
	profile := NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101))
	assert.Equal(t, "uni/infra/accportprof-Leaf101_IntProf", profile.dn)
	require.Len(t, profile.selectors, 1)
	selector := profile.selectors[0]
	assert.Equal(t, "eth1_1", selector.attributes.Get("name").Str)
	assert.Equal(t, "uni/infra/funcprof/accportgrp-Server", selector.policy.Get("tDn").Str)
	require.Len(t, selector.blocks, 1)
	assert.Equal(t, "block2", selector.blocks[0].Get("name").Str)
}

func TestInterfaceProfilesFor(t *testing.T) {
	all := []InterfaceProfile{
		NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101)),
		{dn: "uni/infra/accportprof-Other"},
	}
	switchProfiles := []SwitchProfile{NewSwitchProfile(gjson.Parse(switchProfileLeaf101))}
	got := interfaceProfilesFor(all, switchProfiles)
	require.Len(t, got, 1)
	assert.Equal(t, "Leaf101_IntProf", got[0].name)
	assert.Empty(t, interfaceProfilesFor(all, nil))
}

func TestNewInterfaceProfileMO(t *testing.T) {
	sources := []InterfaceProfile{NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101))}
	mo, conflicts := newInterfaceProfileMO("Leaf201", sources)
	assert.Empty(t, conflicts)
	raw, err := mo.JSON()
	require.NoError(t, err)

	doc := gjson.Parse(raw)
	assert.Equal(t, "uni/infra/accportprof-Leaf201", doc.Get("infraAccPortP.attributes.dn").Str)
	assert.Equal(t, "Leaf201", doc.Get("infraAccPortP.attributes.name").Str)

	selector := doc.Get("infraAccPortP.children.0.infraHPortS")
	assert.JSONEq(t, `{"descr":"server","name":"eth1_1","type":"range"}`, selector.Get("attributes").Raw)
	assert.JSONEq(t, `{"tDn":"uni/infra/funcprof/accportgrp-Server","fexId":"101"}`,
		selector.Get("children.0.infraRsAccBaseGrp.attributes").Raw)
	assert.JSONEq(t, `{"name":"block2","fromCard":"1","fromPort":"1","toCard":"1","toPort":"1"}`,
		selector.Get("children.1.infraPortBlk.attributes").Raw)
}

func TestNewInterfaceProfileMOWithoutSources(t *testing.T) {
	mo, _ := newInterfaceProfileMO("Leaf201", nil)
	raw, err := mo.JSON()
	require.NoError(t, err)
	assert.False(t, gjson.Get(raw, "infraAccPortP.children").Exists())
}

func TestPortSelectorRN(t *testing.T) {
	profile := NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101))
	assert.Equal(t, "hports-eth1_1-typ-range", profile.selectors[0].rn())

	selector := NewPortSelector(gjson.Parse(`{"attributes":{"name":"eth1_2","type":"ALL"}}`))
	assert.Equal(t, "hports-eth1_2-typ-ALL", selector.rn())
}

func TestNewInterfaceProfileMOSelectorConflict(t *testing.T) {
	leaf := NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101))
	vpc := NewInterfaceProfile(gjson.Parse(interfaceProfileVPC))

	mo, conflicts := newInterfaceProfileMO("Leaf201", []InterfaceProfile{leaf, vpc})
	assert.Equal(t, []string{"hports-eth1_1-typ-range"}, conflicts)
	raw, err := mo.JSON()
	require.NoError(t, err)
	selectors := gjson.Get(raw, "infraAccPortP.children").Array()
	require.Len(t, selectors, 1)
	assert.Equal(t, "uni/infra/funcprof/accportgrp-Server",
		selectors[0].Get("infraHPortS.children.0.infraRsAccBaseGrp.attributes.tDn").Str)
}

func TestNewInterfaceProfileMODuplicateSelector(t *testing.T) {
	leaf := NewInterfaceProfile(gjson.Parse(interfaceProfileLeaf101))
	copied := leaf
	copied.name = "Leaf101_Copy"

	mo, conflicts := newInterfaceProfileMO("Leaf201", []InterfaceProfile{leaf, copied})
	assert.Empty(t, conflicts)
	assert.Len(t, mo.children, 1)
}
