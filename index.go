package fdict

import (
	"maps"
	"slices"
)

// indexTables is the fastview bookkeeping: for every node path with at
// least one leaf below it, the names of its direct leaf children and of its
// direct node children. A name can be in both sets when a leaf and a node
// share a path. The root entry ("") always exists.
type indexTables struct {
	codec Codec
	nodes map[string]*indexNode
}

type indexNode struct {
	leaves map[string]struct{}
	nodes  map[string]struct{}
}

func newIndexNode() *indexNode {
	return &indexNode{
		leaves: make(map[string]struct{}),
		nodes:  make(map[string]struct{}),
	}
}

func (n *indexNode) empty() bool {
	return len(n.leaves) == 0 && len(n.nodes) == 0
}

// names returns the union of leaf and node children, sorted.
func (n *indexNode) names() []string {
	names := make([]string, 0, len(n.leaves)+len(n.nodes))
	names = slices.AppendSeq(names, maps.Keys(n.leaves))
	for name := range n.nodes {
		if _, dup := n.leaves[name]; !dup {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func newIndexTables(codec Codec) *indexTables {
	return &indexTables{
		codec: codec,
		nodes: map[string]*indexNode{"": newIndexNode()},
	}
}

func (ix *indexTables) entry(node string) *indexNode {
	e := ix.nodes[node]
	if e == nil {
		e = newIndexNode()
		ix.nodes[node] = e
	}
	return e
}

func (ix *indexTables) has(node string) bool {
	_, ok := ix.nodes[node]
	return ok
}

// addLeaf registers key with every ancestor, O(depth).
func (ix *indexTables) addLeaf(key string) {
	segs := ix.codec.Split(key)
	node := ""
	for _, seg := range segs[:len(segs)-1] {
		ix.entry(node).nodes[seg] = struct{}{}
		node = ix.codec.child(node, seg)
	}
	ix.entry(node).leaves[segs[len(segs)-1]] = struct{}{}
}

// removeLeaf unregisters key and prunes ancestors left without children.
func (ix *indexTables) removeLeaf(key string) {
	parent, name := ix.codec.Parent(key)
	if e := ix.nodes[parent]; e != nil {
		delete(e.leaves, name)
	}
	ix.prune(parent)
}

func (ix *indexTables) prune(node string) {
	for node != "" {
		e := ix.nodes[node]
		if e != nil && !e.empty() {
			return
		}
		delete(ix.nodes, node)
		parent, name := ix.codec.Parent(node)
		if pe := ix.nodes[parent]; pe != nil {
			delete(pe.nodes, name)
		}
		node = parent
	}
}

// walk visits everything below node depth-first in name order: a leaf child
// as (key, true), a node child as (key, false) before its own children.
// Returns false if fn stopped the walk.
func (ix *indexTables) walk(node string, fn func(key string, isLeaf bool) bool) bool {
	e := ix.nodes[node]
	if e == nil {
		return true
	}
	for _, name := range e.names() {
		child := ix.codec.child(node, name)
		if _, ok := e.leaves[name]; ok {
			if !fn(child, true) {
				return false
			}
		}
		if _, ok := e.nodes[name]; ok {
			if !fn(child, false) || !ix.walk(child, fn) {
				return false
			}
		}
	}
	return true
}

func (ix *indexTables) leavesUnder(node string) []string {
	var keys []string
	ix.walk(node, func(key string, isLeaf bool) bool {
		if isLeaf {
			keys = append(keys, key)
		}
		return true
	})
	return keys
}

func (ix *indexTables) children(node string) (leaves, nodes []string) {
	e := ix.nodes[node]
	if e == nil {
		return nil, nil
	}
	leaves = slices.Sorted(maps.Keys(e.leaves))
	nodes = slices.Sorted(maps.Keys(e.nodes))
	return leaves, nodes
}

// rebuild registers every leaf key reported by rangeKeys.
func (ix *indexTables) rebuild(rangeKeys func(fn func(key string) bool) error) (int, error) {
	ix.nodes = map[string]*indexNode{"": newIndexNode()}
	var n int
	err := rangeKeys(func(key string) bool {
		if !ix.codec.isMarkerKey(key) {
			ix.addLeaf(key)
			n++
		}
		return true
	})
	return n, err
}
