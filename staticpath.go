package main

import (
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

////////////////////////////////////////////////////////////
// Static path bindings
////////////////////////////////////////////////////////////

// Writable attributes of fvRsPathAtt.
var staticPathKeys = []string{
	"annotation", "descr", "encap", "instrImedcy", "mode", "primaryEncap", "tDn",
}

type StaticPath struct {
	json JSON
	dn   string
	tDn  string
}

func NewStaticPath(json JSON) StaticPath {
	return StaticPath{
		json: json,
		dn:   json.Get("fvRsPathAtt.attributes.dn").Str,
		tDn:  json.Get("fvRsPathAtt.attributes.tDn").Str,
	}
}

func (p StaticPath) MarshalJSON() ([]byte, error) {
	return []byte(p.json.Raw), nil
}

// pathFilters are the tDn fragments identifying paths on the source nodes:
// one per leaf, plus the protection path of a VPC pair.
func pathFilters(m Migration) []string {
	var res []string
	for _, node := range m.Source {
		res = append(res, fmt.Sprintf("/paths-%s/", node))
	}
	if m.VPC() {
		res = append(res, fmt.Sprintf("/protpaths-%s/", m.SourcePair()))
	}
	return res
}

func (c *Client) getStaticPaths(m Migration) (res []StaticPath, err error) {
	seen := make(map[string]bool)
	for _, filter := range pathFilters(m) {
		paths, err := c.get(Query{
			uri: "/api/node/class/fvRsPathAtt",
			query: []string{
				fmt.Sprintf(`query-target-filter=wcard(fvRsPathAtt.tDn,"%s")`, filter),
			},
		})
		if err != nil {
			return nil, err
		}
		for _, record := range paths.Array() {
			path := NewStaticPath(record)
			if seen[path.dn] {
				continue
			}
			seen[path.dn] = true
			res = append(res, path)
		}
	}
	return res, nil
}

var pathRe = regexp.MustCompile(`topology/pod-(\d+)/(paths|protpaths)-(\d+(?:-\d+)?)/`)

// pathRewriter moves path references from source to destination nodes.
type pathRewriter struct {
	nodes map[string]string
	pods  map[string]string
}

func newPathRewriter(m Migration, pods map[string]string) pathRewriter {
	r := pathRewriter{
		nodes: make(map[string]string),
		pods:  make(map[string]string),
	}
	for i := range m.Source {
		r.nodes[m.Source[i]] = m.Dest[i]
		r.pods[m.Source[i]] = pods[m.Dest[i]]
	}
	if m.VPC() {
		r.nodes[m.SourcePair()] = m.DestPair()
		r.pods[m.SourcePair()] = pods[m.Dest[0]]
	}
	return r
}

// rewrite replaces every source path segment in one pass, so a
// destination that is also a source is never rewritten twice.
func (r pathRewriter) rewrite(s string) string {
	return pathRe.ReplaceAllStringFunc(s, func(segment string) string {
		m := pathRe.FindStringSubmatch(segment)
		dest, ok := r.nodes[m[3]]
		if !ok {
			return segment
		}
		pod := r.pods[m[3]]
		if pod == "" {
			pod = m[1]
		}
		return fmt.Sprintf("topology/pod-%s/%s-%s/", pod, m[2], dest)
	})
}

// Migrated returns the binding's new DN and its payload.
func (p StaticPath) Migrated(r pathRewriter) (string, *MO) {
	attrs := filterAttributes(p.json.Get("fvRsPathAtt.attributes"), staticPathKeys)
	mo := NewMO("fvRsPathAtt").SetAll(attrs)
	mo.Set("tDn", r.rewrite(p.tDn))
	dn := r.rewrite(p.dn)
	log.WithFields(logrus.Fields{
		"from": p.tDn,
		"to":   mo.Attr("tDn"),
	}).Debug("Rewrote static path")
	return dn, mo
}
