package fdict

// Get returns the leaf stored at key or, if there is none, a View of the
// node at key. key may address nested levels directly ("a/b/c").
//
// In default mode Get never checks that anything exists below key: the
// returned View may well be empty. In FastView and NoDel modes existence is
// cheap to verify, and a missing path fails with ErrNotFound.
func (v View) Get(key string) (any, error) {
	if err := v.s.codec.checkKey("get", key); err != nil {
		return nil, err
	}
	abs := v.abs(key)
	val, ok, err := v.s.leaf(abs)
	if err != nil {
		return nil, err
	}
	if ok {
		return val, nil
	}
	return v.node("get", abs)
}

// Node returns the View at key even if a leaf is also stored there, which
// is the way to reach the descendants of a conflicting path.
func (v View) Node(key string) (View, error) {
	if err := v.s.codec.checkKey("node", key); err != nil {
		return View{}, err
	}
	return v.node("node", v.abs(key))
}

func (v View) node(op, abs string) (View, error) {
	if v.s.mode != ModeDefault {
		ok, err := v.s.hasNode(abs)
		if err != nil {
			return View{}, err
		}
		if !ok {
			return View{}, pathErrf(op, abs, ErrNotFound, "")
		}
	}
	return View{s: v.s, root: abs}, nil
}

// Leaf looks up the exact leaf at key, ignoring nodes.
func (v View) Leaf(key string) (any, bool, error) {
	if err := v.s.codec.checkKey("get", key); err != nil {
		return nil, false, err
	}
	return v.s.leaf(v.abs(key))
}

// At is Get with the path given as individual segments, none of which may
// contain the delimiter. At() with no segments returns v itself.
func (v View) At(segments ...string) (any, error) {
	if len(segments) == 0 {
		return v, nil
	}
	key, err := v.s.codec.Join(segments...)
	if err != nil {
		return nil, err
	}
	return v.Get(key)
}

// Set stores value at key.
//
// A scalar replaces the leaf at key in O(1) (plus O(depth) node bookkeeping
// outside of default mode). Leaves below key are not touched, so key may
// end up being both a leaf and a node.
//
// A map (or a View) replaces the leaf at key, if any, and then stores each
// of its nested leaves below key. Leaves already below key that the map
// does not mention are kept. An empty map only removes the leaf at key.
func (v View) Set(key string, value any) error {
	if err := v.s.codec.checkKey("set", key); err != nil {
		return err
	}
	abs := v.abs(key)
	leaves, isMap, err := flattenValue(v.s.codec, value)
	if err != nil {
		return pathErrf("set", abs, err, "")
	}
	if !isMap {
		err = v.s.putLeaf(abs, value)
	} else {
		err = v.s.putTree(abs, leaves)
	}
	if err != nil {
		return err
	}
	if v.s.autoSync {
		return v.Sync()
	}
	return nil
}

func (s *flatStore) putTree(abs string, leaves []flatLeaf) error {
	if _, err := s.removeLeaf(abs); err != nil {
		return err
	}
	for _, l := range leaves {
		if err := s.putLeaf(s.codec.child(abs, l.key), l.value); err != nil {
			return err
		}
	}
	return nil
}

// Update stores every nested leaf of m below v, like Set on each key of m
// but without removing leaves at the top-level keys.
func (v View) Update(m map[string]any) error {
	leaves, _, err := flattenValue(v.s.codec, m)
	if err != nil {
		return pathErrf("update", v.root, err, "")
	}
	for _, l := range leaves {
		if err := v.s.putLeaf(v.abs(l.key), l.value); err != nil {
			return err
		}
	}
	return nil
}

// Merge copies every leaf of other below v. The two views may belong to
// different stores, with different delimiters.
func (v View) Merge(other View) error {
	leaves, _, err := flattenValue(v.s.codec, other)
	if err != nil {
		return pathErrf("merge", v.root, err, "")
	}
	for _, l := range leaves {
		if err := v.s.putLeaf(v.abs(l.key), l.value); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes the leaf at key or, if there is none, every leaf below
// key. Deleting a missing path does nothing.
//
// Removing a leaf is O(1). Removing a subtree scans the whole store in
// default mode, and only the subtree itself in FastView mode, where emptied
// ancestor nodes are unregistered as well. NoDel stores refuse every delete
// with ErrUnsupported.
func (v View) Delete(key string) error {
	if err := v.s.codec.checkKey("delete", key); err != nil {
		return err
	}
	abs := v.abs(key)
	if v.s.mode == ModeMarkers {
		return pathErrf("delete", abs, ErrUnsupported, "store is in nodel mode")
	}
	ok, err := v.s.removeLeaf(abs)
	if err != nil || ok {
		return err
	}
	_, err = v.s.removeTree(abs)
	return err
}

// Contains reports whether key is a leaf or has leaves below it. A leaf is
// checked in O(1); a node in O(1) in FastView and NoDel modes, and by
// scanning the whole store otherwise.
func (v View) Contains(key string) (bool, error) {
	if err := v.s.codec.checkKey("contains", key); err != nil {
		return false, err
	}
	return v.s.exists(v.abs(key))
}

// Pop removes key and returns what was there: the leaf value, or an
// extracted View holding the removed subtree.
func (v View) Pop(key string) (any, bool, error) {
	if err := v.s.codec.checkKey("pop", key); err != nil {
		return nil, false, err
	}
	abs := v.abs(key)
	if v.s.mode == ModeMarkers {
		return nil, false, pathErrf("pop", abs, ErrUnsupported, "store is in nodel mode")
	}
	val, ok, err := v.s.leaf(abs)
	if err != nil {
		return nil, false, err
	}
	if ok {
		if _, err := v.s.removeLeaf(abs); err != nil {
			return nil, false, err
		}
		return val, true, nil
	}
	ok, err = v.s.hasNode(abs)
	if err != nil || !ok {
		return nil, false, err
	}
	sub, err := View{s: v.s, root: abs}.Extract()
	if err != nil {
		return nil, false, err
	}
	if _, err := v.s.removeTree(abs); err != nil {
		return nil, false, err
	}
	return sub, true, nil
}
