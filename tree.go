package fdict

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// LeafKey is the key under which ToNested keeps the value of a path that is
// both a leaf and a node. It is empty, and empty segments are illegal, so it
// never collides with a real child.
const LeafKey = ""

type flatLeaf struct {
	key   string
	value any
}

// flattenValue turns a nested mapping (or a View) into leaves keyed by
// paths relative to the mapping itself. isMap is false for scalars, which
// are returned as no leaves at all.
func flattenValue(codec Codec, value any) (leaves []flatLeaf, isMap bool, err error) {
	if sub, ok := value.(View); ok {
		leaves, err = viewLeaves(codec, sub)
		return leaves, true, err
	}
	if !isMapping(value) {
		return nil, false, nil
	}
	err = flattenInto(codec, "", value, &leaves)
	return leaves, true, err
}

func flattenInto(codec Codec, prefix string, value any, out *[]flatLeaf) error {
	return forEachMapEntry(value, func(k string, v any) error {
		if err := codec.checkSegment("flatten", k); err != nil {
			return err
		}
		key := codec.child(prefix, k)
		if sub, ok := v.(View); ok {
			leaves, err := viewLeaves(codec, sub)
			if err != nil {
				return err
			}
			for _, l := range leaves {
				*out = append(*out, flatLeaf{codec.child(key, l.key), l.value})
			}
			return nil
		}
		if isMapping(v) {
			return flattenInto(codec, key, v, out)
		}
		*out = append(*out, flatLeaf{key, v})
		return nil
	})
}

// viewLeaves collects the leaves of sub, re-keyed with codec in case sub
// uses a different delimiter.
func viewLeaves(codec Codec, sub View) ([]flatLeaf, error) {
	var leaves []flatLeaf
	var keyErr error
	sameDelim := sub.s.codec.delim == codec.delim
	err := sub.Walk(func(rel string, value any) bool {
		if !sameDelim {
			rel, keyErr = codec.Join(sub.s.codec.Split(rel)...)
			if keyErr != nil {
				return false
			}
		}
		leaves = append(leaves, flatLeaf{rel, value})
		return true
	})
	if err != nil {
		return nil, err
	}
	return leaves, keyErr
}

func isMapping(v any) bool {
	switch v.(type) {
	case nil:
		return false
	case map[string]any:
		return true
	}
	return reflect.TypeOf(v).Kind() == reflect.Map
}

func forEachMapEntry(m any, fn func(k string, v any) error) error {
	if mm, ok := m.(map[string]any); ok {
		for k, v := range mm {
			if err := fn(k, v); err != nil {
				return err
			}
		}
		return nil
	}
	iter := reflect.ValueOf(m).MapRange()
	for iter.Next() {
		k := iter.Key()
		var ks string
		if k.Kind() == reflect.String {
			ks = k.String()
		} else {
			ks = fmt.Sprint(k.Interface())
		}
		if err := fn(ks, iter.Value().Interface()); err != nil {
			return err
		}
	}
	return nil
}

// ToFlat returns the leaves below v keyed by their path relative to v.
func (v View) ToFlat() (map[string]any, error) {
	m := make(map[string]any)
	err := v.Walk(func(key string, value any) bool {
		m[key] = value
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ToNested rebuilds the nested form of v. A path that is both a leaf and a
// node becomes a map holding its children plus the leaf value under
// LeafKey.
func (v View) ToNested() (map[string]any, error) {
	root := make(map[string]any)
	codec := v.s.codec
	err := v.Walk(func(key string, value any) bool {
		insertNested(root, codec.Split(key), value)
		return true
	})
	if err != nil {
		return nil, err
	}
	return root, nil
}

func insertNested(m map[string]any, segs []string, value any) {
	cur := m
	for _, seg := range segs[:len(segs)-1] {
		x, present := cur[seg]
		switch x := x.(type) {
		case map[string]any:
			cur = x
		default:
			sub := make(map[string]any)
			if present {
				sub[LeafKey] = x
			}
			cur[seg] = sub
			cur = sub
		}
	}
	last := segs[len(segs)-1]
	if sub, ok := cur[last].(map[string]any); ok {
		sub[LeafKey] = value
	} else {
		cur[last] = value
	}
}

// Extract copies the leaves below v into a new in-memory store with the
// same delimiter and mode, rooted at v. The source store is unaffected.
// Exploring the copy afterwards avoids repeated whole-store scans.
func (v View) Extract() (View, error) {
	s := &flatStore{
		be:      NewMemBackend(),
		codec:   v.s.codec,
		mode:    v.s.mode,
		logf:    v.s.logf,
		verbose: v.s.verbose,
	}
	if s.mode == ModeIndexed {
		s.index = newIndexTables(s.codec)
	}
	var putErr error
	err := v.Walk(func(key string, value any) bool {
		putErr = s.putLeaf(key, value)
		return putErr == nil
	})
	if err != nil {
		return View{}, err
	}
	if putErr != nil {
		return View{}, putErr
	}
	return View{s: s}, nil
}

// Equal compares the leaves below v and other. Both sides are scanned
// in full.
func (v View) Equal(other View) (bool, error) {
	leaves, err := viewLeaves(v.s.codec, other)
	if err != nil {
		return false, err
	}
	return v.equalLeaves(leaves)
}

// EqualMap compares the leaves below v with the flattened form of m.
func (v View) EqualMap(m map[string]any) (bool, error) {
	leaves, _, err := flattenValue(v.s.codec, m)
	if err != nil {
		return false, err
	}
	return v.equalLeaves(leaves)
}

func (v View) equalLeaves(leaves []flatLeaf) (bool, error) {
	mine, err := v.ToFlat()
	if err != nil {
		return false, err
	}
	if len(mine) != len(leaves) {
		return false, nil
	}
	for _, l := range leaves {
		val, ok := mine[l.key]
		if !ok || !reflect.DeepEqual(val, l.value) {
			return false, nil
		}
	}
	return true, nil
}

// MarshalJSON encodes the nested form of v.
func (v View) MarshalJSON() ([]byte, error) {
	m, err := v.ToNested()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

func (v View) String() string {
	if v.s == nil {
		return "fdict.View{}"
	}
	m, err := v.ToFlat()
	if err != nil {
		return fmt.Sprintf("fdict.View{%v}", err)
	}
	return fmt.Sprint(m)
}
