package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestPathFilters(t *testing.T) {
	single := Migration{Source: []string{"101"}, Dest: []string{"201"}}
	assert.Equal(t, []string{"/paths-101/"}, pathFilters(single))

	pair := Migration{Source: []string{"101", "102"}, Dest: []string{"201", "202"}}
	assert.Equal(t, []string{"/paths-101/", "/paths-102/", "/protpaths-101-102/"}, pathFilters(pair))
}

func TestPathRewriter(t *testing.T) {
	pair := Migration{Source: []string{"101", "102"}, Dest: []string{"201", "202"}}
	samePod := map[string]string{"101": "1", "102": "1", "201": "1", "202": "1"}
	tests := []struct {
		name      string
		migration Migration
		pods      map[string]string
		in        string
		want      string
	}{
		{
			name:      "leaf path",
			migration: Migration{Source: []string{"101"}, Dest: []string{"201"}},
			pods:      map[string]string{"101": "1", "201": "1"},
			in:        "topology/pod-1/paths-101/pathep-[eth1/1]",
			want:      "topology/pod-1/paths-201/pathep-[eth1/1]",
		},
		{
			name:      "protection path",
			migration: pair,
			pods:      samePod,
			in:        "topology/pod-1/protpaths-101-102/pathep-[VPC1-server]",
			want:      "topology/pod-1/protpaths-201-202/pathep-[VPC1-server]",
		},
		{
			name:      "second leaf of pair",
			migration: pair,
			pods:      samePod,
			in:        "topology/pod-1/paths-102/pathep-[eth1/10]",
			want:      "topology/pod-1/paths-202/pathep-[eth1/10]",
		},
		{
			name:      "binding dn",
			migration: pair,
			pods:      samePod,
			in:        "uni/tn-t/ap-a/epg-e/rspathAtt-[topology/pod-1/protpaths-101-102/pathep-[VPC1-server]]",
			want:      "uni/tn-t/ap-a/epg-e/rspathAtt-[topology/pod-1/protpaths-201-202/pathep-[VPC1-server]]",
		},
		{
			name:      "destination pod differs",
			migration: Migration{Source: []string{"101"}, Dest: []string{"301"}},
			pods:      map[string]string{"101": "1", "301": "2"},
			in:        "topology/pod-1/paths-101/pathep-[eth1/1]",
			want:      "topology/pod-2/paths-301/pathep-[eth1/1]",
		},
		{
			name:      "chained ids are replaced once",
			migration: Migration{Source: []string{"101", "102"}, Dest: []string{"102", "103"}},
			pods:      map[string]string{"101": "1", "102": "1", "103": "1"},
			in:        "topology/pod-1/paths-101/pathep-[eth1/1]",
			want:      "topology/pod-1/paths-102/pathep-[eth1/1]",
		},
		{
			name:      "prefix of another node untouched",
			migration: Migration{Source: []string{"101"}, Dest: []string{"201"}},
			pods:      map[string]string{"101": "1", "201": "1"},
			in:        "topology/pod-1/paths-1011/pathep-[eth1/1]",
			want:      "topology/pod-1/paths-1011/pathep-[eth1/1]",
		},
		{
			name:      "unknown pod keeps original",
			migration: Migration{Source: []string{"101"}, Dest: []string{"201"}},
			pods:      map[string]string{},
			in:        "topology/pod-3/paths-101/pathep-[eth1/1]",
			want:      "topology/pod-3/paths-201/pathep-[eth1/1]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newPathRewriter(tt.migration, tt.pods)
			assert.Equal(t, tt.want, r.rewrite(tt.in))
		})
	}
}

func TestStaticPathMigrated(t *testing.T) {
	path := NewStaticPath(gjson.Parse(staticPathLeaf101))
	m := Migration{Source: []string{"101"}, Dest: []string{"201"}}
	r := newPathRewriter(m, map[string]string{"101": "1", "201": "1"})

	dn, mo := path.Migrated(r)
	assert.Equal(t, "uni/tn-t/ap-a/epg-e/rspathAtt-[topology/pod-1/paths-201/pathep-[eth1/1]]", dn)
	assert.Equal(t, "uni/tn-t/ap-a/epg-e", parentDN(dn))

	raw, err := mo.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"fvRsPathAtt":{"attributes":{
		"encap":"vlan-312",
		"instrImedcy":"immediate",
		"mode":"regular",
		"primaryEncap":"unknown",
		"tDn":"topology/pod-1/paths-201/pathep-[eth1/1]"
	}}}`, raw)
}
