package fdict

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

type DumpFlags uint64

const (
	DumpHeader = DumpFlags(1 << iota)
	DumpStats
	DumpLeaves
	DumpNodes
	DumpIndex

	DumpAll = DumpFlags(0xFFFFFFFFFFFFFFFF)
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

func (f DumpFlags) Contains(v DumpFlags) bool {
	return (f & v) == v
}

// Dump renders the contents of v for debugging, sorted by key. Errors are
// rendered inline.
func (v View) Dump(f DumpFlags) string {
	var w strings.Builder
	prefix := quotePath(v.root)

	if f.Contains(DumpHeader) {
		fmt.Fprintln(&w, dumpSep1)
		fmt.Fprintf(&w, "%s (%v, delimiter %q)\n", prefix, v.s.mode, v.s.codec.delim)
	}
	if f.Contains(DumpStats) {
		st, err := v.Stats()
		if err != nil {
			fmt.Fprintf(&w, "%s.stats: ** ERROR: %v\n", prefix, err)
		} else {
			fmt.Fprintf(&w, "%s.stats: leaves = %d, nodes = %d, markers = %d, index_entries = %d\n", prefix, st.Leaves, st.Nodes, st.Markers, st.IndexEntries)
		}
	}
	if f.Contains(DumpLeaves) {
		fmt.Fprintln(&w, dumpSep2)
		flat, err := v.ToFlat()
		if err != nil {
			fmt.Fprintf(&w, "%s.leaves: ** ERROR: %v\n", prefix, err)
		}
		for _, k := range sortedKeys(flat) {
			fmt.Fprintf(&w, "%s = %s\n", k, loggableVal(flat[k]))
		}
	}
	if f.Contains(DumpNodes) {
		fmt.Fprintln(&w, dumpSep2)
		var nodes []string
		err := v.WalkNodes(func(key string) bool {
			nodes = append(nodes, key)
			return true
		})
		if err != nil {
			fmt.Fprintf(&w, "%s.nodes: ** ERROR: %v\n", prefix, err)
		}
		slices.Sort(nodes)
		for _, k := range nodes {
			fmt.Fprintf(&w, "%s%s\n", k, v.s.codec.delim)
		}
	}
	if f.Contains(DumpIndex) && v.s.mode == ModeIndexed {
		fmt.Fprintln(&w, dumpSep2)
		paths := slices.Sorted(maps.Keys(v.s.index.nodes))
		for _, p := range paths {
			leaves, nodes := v.s.index.children(p)
			fmt.Fprintf(&w, "%s: leaves=%v nodes=%v\n", quotePath(p), leaves, nodes)
		}
	}
	return w.String()
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
