package fdict

import (
	"encoding/json"
	"testing"
)

func TestToNested_roundTrip(t *testing.T) {
	seed := M{"a": M{"b": 1, "c": M{"d": "x"}}, "e": []any{1, 2}}
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, seed, m.opt)
			deepEqual(t, must(v.ToNested()), seed)
			deepEqual(t, must(must(v.Get("a")).(View).ToNested()), M{"b": 1, "c": M{"d": "x"}})
		})
	}
}

func TestToNested_conflictUsesLeafKey(t *testing.T) {
	v := setup(t, M{"b": M{"c": 2, "d": M{"e": 3}}}, Options{})
	ensure(v.Set("b", -1))
	ensure(v.Set("b/d", "leaf"))
	deepEqual(t, must(v.ToNested()), M{
		"b": M{LeafKey: -1, "c": 2, "d": M{LeafKey: "leaf", "e": 3}},
	})
}

func TestInsertNested_order(t *testing.T) {
	// the leaf may arrive before or after its descendants
	a := M{}
	insertNested(a, []string{"x"}, 1)
	insertNested(a, []string{"x", "y"}, 2)
	b := M{}
	insertNested(b, []string{"x", "y"}, 2)
	insertNested(b, []string{"x"}, 1)
	deepEqual(t, a, M{"x": M{LeafKey: 1, "y": 2}})
	deepEqual(t, b, a)
}

func TestExtract(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": M{"c": 1}, "d": 2}, "e": 3}, m.opt)
			a := must(v.Get("a")).(View)
			x := must(a.Extract())
			if x.SameStore(v) {
				t.Fatalf("Extract shares the store")
			}
			deepEqual(t, x.Mode(), v.Mode())
			deepEqual(t, x.Root(), "")
			deepEqual(t, flat(t, x), M{"b/c": 1, "d": 2})

			// extracting the extract changes nothing
			deepEqual(t, flat(t, must(x.Extract())), flat(t, x))

			// the copy is independent
			ensure(x.Set("d", 20))
			deepEqual(t, must(v.Get("a/d")), any(2))
			if m.opt.FastView {
				checkIndex(t, x)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	v := setup(t, M{"a": M{"b": 1}, "c": []any{"x"}}, Options{})
	w := setup(t, M{"a": M{"b": 1}, "c": []any{"x"}}, Options{Delimiter: ".", FastView: true})
	deepEqual(t, must(v.Equal(w)), true)
	deepEqual(t, must(v.EqualMap(M{"a": M{"b": 1}, "c": []any{"x"}})), true)

	ensure(w.Set("a.b", 2))
	deepEqual(t, must(v.Equal(w)), false)
	deepEqual(t, must(v.EqualMap(M{"a": M{"b": 1}})), false)
	deepEqual(t, must(must(v.Get("a")).(View).EqualMap(M{"b": 1})), true)
}

func TestMarshalJSON(t *testing.T) {
	v := setup(t, M{"a": M{"b": 1}, "c": "d"}, Options{FastView: true})
	raw := must(json.Marshal(v))
	deepEqual(t, string(raw), `{"a":{"b":1},"c":"d"}`)

	raw = must(json.Marshal(M{"sub": must(v.Get("a"))}))
	deepEqual(t, string(raw), `{"sub":{"b":1}}`)
}

func TestView_String(t *testing.T) {
	deepEqual(t, View{}.String(), "fdict.View{}")
	v := setup(t, M{"a": M{"b": 1}}, Options{})
	deepEqual(t, v.String(), "map[a/b:1]")
}
