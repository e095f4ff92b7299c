package main

import (
	"regexp"
	"strings"
)

// splitDN splits a distinguished name into its relative names. Slashes
// inside square brackets belong to the RN, e.g.
// uni/tn-t/ap-a/epg-e/rspathAtt-[topology/pod-1/paths-101/pathep-[eth1/1]].
func splitDN(dn string) []string {
	var rns []string
	depth, start := 0, 0
	for i, r := range dn {
		switch r {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '/':
			if depth == 0 {
				rns = append(rns, dn[start:i])
				start = i + 1
			}
		}
	}
	return append(rns, dn[start:])
}

func parentDN(dn string) string {
	rns := splitDN(dn)
	if len(rns) < 2 {
		return ""
	}
	return strings.Join(rns[:len(rns)-1], "/")
}

func lastRN(dn string) string {
	rns := splitDN(dn)
	return rns[len(rns)-1]
}

var podRe = regexp.MustCompile(`(?:^|/|\[)topology/pod-(\d+)/`)

// podFromDN returns the pod ID of a topology DN, or "" when there is none.
func podFromDN(dn string) string {
	if m := podRe.FindStringSubmatch(dn); m != nil {
		return m[1]
	}
	return ""
}
