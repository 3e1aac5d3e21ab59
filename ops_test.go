package fdict

import (
	"testing"
)

func TestSet_nestedMappingAddsLeaves(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": 1, "c": []any{2, 3}}, "d": 4}, m.opt)
			ensure(v.Set("e", M{"f": M{"g": M{"h": 5}}}))
			deepEqual(t, flat(t, v), M{"a/b": 1, "a/c": []any{2, 3}, "d": 4, "e/f/g/h": 5})
		})
	}
}

func TestSet_scalarThenMapping(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": 1, "b": M{"c": 2}}, m.opt)
			ensure(v.Set("a", -1))
			deepEqual(t, flat(t, v), M{"a": -1, "b/c": 2})

			ensure(v.Set("a", M{"d": 3, "e": 4}))
			deepEqual(t, flat(t, v), M{"a/d": 3, "a/e": 4, "b/c": 2})
		})
	}
}

func TestSet_scalarOverNodeKeepsDescendants(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": 1, "b": M{"c": 2}}, m.opt)
			ensure(v.Set("b", -1))
			deepEqual(t, flat(t, v), M{"a": 1, "b": -1, "b/c": 2})

			// Get prefers the leaf, Node still reaches the descendants
			deepEqual(t, must(v.Get("b")), any(-1))
			deepEqual(t, flat(t, must(v.Node("b"))), M{"c": 2})
		})
	}
}

func TestSet_mappingKeepsUnmentionedLeaves(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"x": 1, "y": 2}}, m.opt)
			ensure(v.Set("a", M{"y": 20, "z": 30}))
			deepEqual(t, flat(t, v), M{"a/x": 1, "a/y": 20, "a/z": 30})
		})
	}
}

func TestSet_emptyMappingRemovesLeafOnly(t *testing.T) {
	v := setup(t, M{"a": 1, "b": 2}, Options{})
	ensure(v.Set("a", M{}))
	deepEqual(t, flat(t, v), M{"b": 2})
}

func TestSet_directEqualsNested(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			direct := setup(t, nil, m.opt)
			ensure(direct.Set("a/b/c", 42))

			nested := setup(t, nil, m.opt)
			ensure(nested.Set("a", M{"b": M{}}))
			ensure(nested.Set("a", M{"b": M{"c": 42}}))

			deepEqual(t, flat(t, direct), flat(t, nested))
			deepEqual(t, must(direct.Get("a/b/c")), any(42))
			sub := must(direct.Get("a")).(View)
			deepEqual(t, must(sub.Get("b/c")), any(42))
			deepEqual(t, must(must(sub.Get("b")).(View).Get("c")), any(42))
		})
	}
}

func TestSet_typedMaps(t *testing.T) {
	v := setup(t, nil, Options{})
	ensure(v.Set("m", map[string]int{"a": 1, "b": 2}))
	ensure(v.Set("n", map[int]string{7: "seven"}))
	ensure(v.Set("s", []any{M{"not": "flattened"}}))
	deepEqual(t, flat(t, v), M{"m/a": 1, "m/b": 2, "n/7": "seven", "s": []any{M{"not": "flattened"}}})
}

func TestSet_invalidPaths(t *testing.T) {
	v := setup(t, nil, Options{})
	for _, key := range []string{"", "/", "a/", "/a", "a//b"} {
		isErr(t, v.Set(key, 1), ErrInvalidPath)
		_, err := v.Get(key)
		isErr(t, err, ErrInvalidPath)
		_, err = v.Contains(key)
		isErr(t, err, ErrInvalidPath)
		isErr(t, v.Delete(key), ErrInvalidPath)
	}
	isErr(t, v.Set("a", M{"b/c": 1}), ErrInvalidPath)
	isErr(t, v.Set("a", M{"": 1}), ErrInvalidPath)
	_, err := v.At("a", "b/c")
	isErr(t, err, ErrInvalidPath)
	deepEqual(t, flat(t, v), M{})
}

func TestGet_missing(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		v := setup(t, M{"a": 1}, Options{})
		// default mode does not verify existence
		sub := must(v.Get("nope")).(View)
		deepEqual(t, sub.Root(), "nope")
		deepEqual(t, sub.Len(), 0)
	})
	for _, m := range allModes[1:] {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": 1}, m.opt)
			_, err := v.Get("nope")
			isErr(t, err, ErrNotFound)
			_, err = v.Get("a/b")
			isErr(t, err, ErrNotFound)
			_, err = v.Node("a")
			isErr(t, err, ErrNotFound)
		})
	}
}

func TestGet_viewsAreLazyAndShared(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": M{"c": 1}}}, m.opt)
			ab := must(v.Get("a/b")).(View)
			deepEqual(t, ab.Root(), "a/b")
			if !ab.SameStore(v) {
				t.Fatalf("view from Get does not share the store")
			}

			ensure(ab.Set("d", 2))
			deepEqual(t, must(v.Get("a/b/d")), any(2))
			ensure(v.Set("a/b/e", 3))
			deepEqual(t, flat(t, ab), M{"c": 1, "d": 2, "e": 3})
			deepEqual(t, must(ab.At()).(View).Root(), "a/b")
			deepEqual(t, must(v.At("a", "b", "e")), any(3))
		})
	}
}

func TestLeaf(t *testing.T) {
	v := setup(t, M{"a": M{"b": 1}}, Options{})
	val, ok, err := v.Leaf("a/b")
	if err != nil || !ok || val != 1 {
		t.Errorf("** Leaf(a/b) = %v, %v, %v", val, ok, err)
	}
	_, ok, err = v.Leaf("a")
	if err != nil || ok {
		t.Errorf("** Leaf(a) = _, %v, %v, wanted no leaf", ok, err)
	}
}

func TestContains(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": M{"c": 1}}, "d": 2}, m.opt)
			for key, e := range map[string]bool{
				"a": true, "a/b": true, "a/b/c": true, "d": true,
				"x": false, "a/x": false, "d/x": false, "a/b/c/d": false,
			} {
				if a := must(v.Contains(key)); a != e {
					t.Errorf("** Contains(%q) = %v, wanted %v", key, a, e)
				}
			}
			sub := must(v.Get("a")).(View)
			if !must(sub.Contains("b/c")) || must(sub.Contains("d")) {
				t.Errorf("** Contains on a subview looks outside of it")
			}
		})
	}
}

func TestDelete_leaf(t *testing.T) {
	for _, m := range allModes[:2] {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": 1, "c": 2}, "d": 3}, m.opt)
			ensure(v.Delete("a/b"))
			deepEqual(t, flat(t, v), M{"a/c": 2, "d": 3})
			ensure(v.Delete("a/c"))
			deepEqual(t, flat(t, v), M{"d": 3})
			deepEqual(t, must(v.Contains("a")), false)

			// missing paths are a no-op
			ensure(v.Delete("zzz"))
			ensure(v.Delete("d/e"))
			deepEqual(t, flat(t, v), M{"d": 3})
		})
	}
}

func TestDelete_subtree(t *testing.T) {
	for _, m := range allModes[:2] {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, nil, m.opt)
			ensure(v.Set("x/y/1", 1))
			ensure(v.Set("x/y/2", 2))
			ensure(v.Set("x/z", 3))
			ensure(v.Delete("x/y"))
			deepEqual(t, flat(t, v), M{"x/z": 3})
			deepEqual(t, must(v.Contains("x/y")), false)
			deepEqual(t, must(v.Contains("x")), true)
		})
	}
}

func TestDelete_conflictRemovesLeafFirst(t *testing.T) {
	for _, m := range allModes[:2] {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"b": M{"c": 2}}, m.opt)
			ensure(v.Set("b", -1))
			ensure(v.Delete("b"))
			deepEqual(t, flat(t, v), M{"b/c": 2})
			ensure(v.Delete("b"))
			deepEqual(t, flat(t, v), M{})
		})
	}
}

func TestDelete_viaSubview(t *testing.T) {
	v := setup(t, M{"a": M{"b": M{"c": 1, "d": 2}}, "ab": 3}, Options{FastView: true})
	a := must(v.Get("a")).(View)
	ensure(a.Delete("b"))
	deepEqual(t, flat(t, v), M{"ab": 3})
	_, err := v.Get("a")
	isErr(t, err, ErrNotFound)
}

func TestPop(t *testing.T) {
	for _, m := range allModes[:2] {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": M{"b": 1, "c": M{"d": 2}}, "e": 3}, m.opt)

			val, ok := mustPop(t, v, "e")
			if !ok || val != 3 {
				t.Errorf("** Pop(e) = %v, %v", val, ok)
			}

			val, ok = mustPop(t, v, "a")
			if !ok {
				t.Fatalf("Pop(a) found nothing")
			}
			sub := val.(View)
			if sub.SameStore(v) {
				t.Errorf("** popped subtree still references the store")
			}
			deepEqual(t, flat(t, sub), M{"b": 1, "c/d": 2})
			deepEqual(t, flat(t, v), M{})

			_, ok = mustPop(t, v, "a")
			deepEqual(t, ok, false)
		})
	}
}

func mustPop(t testing.TB, v View, key string) (any, bool) {
	t.Helper()
	val, ok, err := v.Pop(key)
	if err != nil {
		t.Fatalf("Pop(%q) failed: %v", key, err)
	}
	return val, ok
}

func TestUpdate(t *testing.T) {
	for _, m := range allModes {
		t.Run(m.name, func(t *testing.T) {
			v := setup(t, M{"a": 1, "b": M{"c": 2}}, m.opt)
			ensure(v.Update(M{"a": M{"x": 10}, "b": M{"d": 3}}))
			// unlike Set, Update leaves the top-level leaf "a" alone
			deepEqual(t, flat(t, v), M{"a": 1, "a/x": 10, "b/c": 2, "b/d": 3})
		})
	}
}

func TestMerge_acrossDelimiters(t *testing.T) {
	src := setup(t, M{"a": M{"b": 1}, "c": 2}, Options{Delimiter: "."})
	dst := setup(t, M{"z": 0}, Options{FastView: true})
	ensure(dst.Merge(src))
	deepEqual(t, flat(t, dst), M{"a/b": 1, "c": 2, "z": 0})

	ensure(dst.Set("copy", src))
	deepEqual(t, must(dst.Get("copy/a/b")), any(1))

	bad := setup(t, M{"x/y": 1}, Options{Delimiter: "."})
	isErr(t, dst.Merge(bad), ErrInvalidPath)
}

func TestConvert(t *testing.T) {
	v := setup(t, M{"a": M{"b": 1}, "c": 2}, Options{NoDel: true})
	isErr(t, v.Delete("c"), ErrUnsupported)

	w := must(v.Convert(Options{}))
	if w.SameStore(v) {
		t.Fatalf("Convert returned the same store")
	}
	deepEqual(t, w.Mode(), ModeDefault)
	ensure(w.Delete("a"))
	deepEqual(t, flat(t, w), M{"c": 2})
	deepEqual(t, flat(t, v), M{"a/b": 1, "c": 2})

	_, err := v.Convert(Options{FastView: true, NoDel: true})
	isErr(t, err, ErrInvalidOptions)
}
