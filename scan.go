package fdict

import (
	"iter"
	"strings"
)

// Walk calls fn for every leaf below v, with the key relative to v, until
// fn returns false. Default and NoDel stores scan the whole backend in its
// own order; FastView stores visit only the subtree, in name order.
//
// The iterator methods (All, Keys, Values, Nodes, Children) wrap the Walk
// family and panic with the error if the backend fails.
func (v View) Walk(fn func(key string, value any) bool) error {
	codec := v.s.codec
	return v.s.rangeLeaves(v.root, func(key string, value any) bool {
		return fn(codec.relative(v.root, key), value)
	})
}

// WalkKeys is Walk without loading the values.
func (v View) WalkKeys(fn func(key string) bool) error {
	codec := v.s.codec
	return v.s.rangeLeafKeys(v.root, func(key string) bool {
		return fn(codec.relative(v.root, key))
	})
}

// WalkNodes calls fn for every node path below v. Default mode has no node
// bookkeeping and derives the nodes from the leaf keys.
func (v View) WalkNodes(fn func(key string) bool) error {
	codec := v.s.codec
	return v.s.rangeNodes(v.root, func(key string) bool {
		return fn(codec.relative(v.root, key))
	})
}

// WalkChildren calls fn for every direct child of v: a leaf child with its
// value, a node child with its View. A name that is both a leaf and a node
// is reported twice.
func (v View) WalkChildren(fn func(name string, value any) bool) error {
	codec := v.s.codec
	if v.s.mode == ModeIndexed {
		leaves, nodes := v.s.index.children(v.root)
		for _, name := range leaves {
			abs := codec.child(v.root, name)
			val, ok, err := v.s.leaf(abs)
			if err != nil {
				return err
			}
			if ok && !fn(name, val) {
				return nil
			}
		}
		for _, name := range nodes {
			if !fn(name, View{s: v.s, root: codec.child(v.root, name)}) {
				return nil
			}
		}
		return nil
	}

	seen := make(map[string]struct{})
	return v.Walk(func(key string, value any) bool {
		name, _, nested := strings.Cut(key, codec.delim)
		if !nested {
			return fn(name, value)
		}
		if _, ok := seen[name]; ok {
			return true
		}
		seen[name] = struct{}{}
		return fn(name, View{s: v.s, root: codec.child(v.root, name)})
	})
}

func (v View) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		ensure(v.Walk(yield))
	}
}

func (v View) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		ensure(v.WalkKeys(yield))
	}
}

func (v View) Values() iter.Seq[any] {
	return func(yield func(any) bool) {
		ensure(v.Walk(func(_ string, value any) bool {
			return yield(value)
		}))
	}
}

func (v View) Nodes() iter.Seq[string] {
	return func(yield func(string) bool) {
		ensure(v.WalkNodes(yield))
	}
}

func (v View) Children() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		ensure(v.WalkChildren(yield))
	}
}

// First returns the first direct child reported by Children.
func (v View) First() (name string, value any, ok bool) {
	for name, value = range v.Children() {
		return name, value, true
	}
	return "", nil, false
}

// Len counts the leaves below v.
func (v View) Len() int {
	var n int
	ensure(v.WalkKeys(func(string) bool {
		n++
		return true
	}))
	return n
}
