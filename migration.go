package main

import (
	"bufio"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

////////////////////////////////////////////////////////////
// Migration file
////////////////////////////////////////////////////////////

// Migration moves the access configuration of one leaf (or one VPC pair)
// to another.
type Migration struct {
	Line   int
	Source []string
	Dest   []string
}

func (m Migration) VPC() bool {
	return len(m.Source) == 2
}

// SourcePair is the node part of a VPC protection path, e.g. "101-102".
func (m Migration) SourcePair() string {
	return strings.Join(m.Source, "-")
}

func (m Migration) DestPair() string {
	return strings.Join(m.Dest, "-")
}

// sortNodeIDs sorts numerically; the controller expects the lower ID
// first in protection paths.
func sortNodeIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		a, _ := strconv.Atoi(ids[i])
		b, _ := strconv.Atoi(ids[j])
		return a < b
	})
}

func validNodeID(id string) bool {
	n, err := strconv.Atoi(id)
	return err == nil && n > 0
}

// ParseMigrations reads lines of "src,dst" or "src1,src2,dst1,dst2".
// Spaces are ignored, as are blank lines and lines starting with #.
func ParseMigrations(r io.Reader) ([]Migration, error) {
	var res []Migration
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.ReplaceAll(scanner.Text(), " ", "")
		line = strings.TrimRight(line, "\r\t")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids := strings.Split(line, ",")
		for _, id := range ids {
			if !validNodeID(id) {
				return nil, errors.Errorf("line %d: invalid node ID %q in %q", lineNo, id, line)
			}
		}
		seen := make(map[string]bool)
		for _, id := range ids {
			if seen[id] {
				return nil, errors.Errorf("line %d: duplicate node ID %s in %q", lineNo, id, line)
			}
			seen[id] = true
		}
		m := Migration{Line: lineNo}
		switch len(ids) {
		case 2:
			m.Source = []string{ids[0]}
			m.Dest = []string{ids[1]}
		case 4:
			m.Source = []string{ids[0], ids[1]}
			m.Dest = []string{ids[2], ids[3]}
			sortNodeIDs(m.Source)
			sortNodeIDs(m.Dest)
		default:
			return nil, errors.Errorf(
				"line %d: expected 1 or 2 source/destination node IDs, got %q", lineNo, line)
		}
		res = append(res, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func readMigrations(fn string) ([]Migration, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	migrations, err := ParseMigrations(f)
	if err != nil {
		return nil, errors.Wrap(err, fn)
	}
	return migrations, nil
}
