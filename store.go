package fdict

import "fmt"

// Mode selects the node bookkeeping strategy of a store.
type Mode int

const (
	// ModeDefault keeps nothing but leaves. Node-level operations scan
	// the whole store.
	ModeDefault Mode = iota
	// ModeIndexed ("fastview") maintains per-node child sets, making
	// node-level operations proportional to the subtree size.
	ModeIndexed
	// ModeMarkers ("nodel") stores a marker at every node path, making node
	// existence O(1). Deletion is not supported.
	ModeMarkers
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeIndexed:
		return "fastview"
	case ModeMarkers:
		return "nodel"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// flatStore is shared by every View derived from one root. All keys passed
// to its methods are absolute flat keys.
type flatStore struct {
	be       Backend
	codec    Codec
	mode     Mode
	index    *indexTables
	autoSync bool

	// markersIncomplete is set in marker mode when missing markers could not
	// be written.
	markersIncomplete bool

	logf    func(format string, args ...any)
	verbose bool
}

func (s *flatStore) debugf(format string, args ...any) {
	if s.verbose && s.logf != nil {
		s.logf(format, args...)
	}
}

func (s *flatStore) leaf(key string) (any, bool, error) {
	v, ok, err := s.be.Get(key)
	if err != nil {
		return nil, false, storageErrf("get", "", err)
	}
	return v, ok, nil
}

func (s *flatStore) hasLeaf(key string) (bool, error) {
	ok, err := s.be.Has(key)
	if err != nil {
		return false, storageErrf("get", "", err)
	}
	return ok, nil
}

// putLeaf stores a scalar and updates node bookkeeping, O(depth).
func (s *flatStore) putLeaf(key string, value any) error {
	if err := s.be.Set(key, value); err != nil {
		return storageErrf("set", "", err)
	}
	switch s.mode {
	case ModeIndexed:
		s.index.addLeaf(key)
	case ModeMarkers:
		return s.ensureMarkers(key)
	}
	return nil
}

// removeLeaf deletes the exact leaf at key, reporting whether it existed.
func (s *flatStore) removeLeaf(key string) (bool, error) {
	ok, err := s.hasLeaf(key)
	if err != nil || !ok {
		return false, err
	}
	if err := s.be.Delete(key); err != nil {
		return false, storageErrf("delete", "", err)
	}
	if s.mode == ModeIndexed {
		s.index.removeLeaf(key)
	}
	return true, nil
}

// removeTree deletes every leaf strictly below node and returns the count.
// Emptied index entries are pruned as their last leaf goes.
func (s *flatStore) removeTree(node string) (int, error) {
	var keys []string
	var err error
	if s.mode == ModeIndexed {
		if !s.index.has(node) {
			return 0, nil
		}
		keys = s.index.leavesUnder(node)
	} else {
		err = s.rangeLeafKeys(node, func(key string) bool {
			keys = append(keys, key)
			return true
		})
	}
	if err != nil {
		return 0, err
	}
	for i, k := range keys {
		if err := s.be.Delete(k); err != nil {
			return i, storageErrf("delete", "", err)
		}
		// per leaf, so that a failed delete leaves the index in sync
		if s.mode == ModeIndexed {
			s.index.removeLeaf(k)
		}
	}
	return len(keys), nil
}

// hasNode reports whether at least one leaf lies strictly below node.
func (s *flatStore) hasNode(node string) (bool, error) {
	switch {
	case s.mode == ModeIndexed:
		return s.index.has(node), nil
	case s.hasMarkers():
		if node == "" {
			return true, nil
		}
		ok, err := s.be.Has(s.codec.markerKey(node))
		if err != nil {
			return false, storageErrf("get", "", err)
		}
		return ok, nil
	}
	var found bool
	err := s.rangeLeafKeys(node, func(string) bool {
		found = true
		return false
	})
	return found, err
}

func (s *flatStore) hasMarkers() bool {
	return s.mode == ModeMarkers && !s.markersIncomplete
}

// exists is the cheap existence check of the indexed and marker modes.
func (s *flatStore) exists(key string) (bool, error) {
	ok, err := s.hasLeaf(key)
	if err != nil || ok {
		return ok, err
	}
	return s.hasNode(key)
}

// rangeLeafKeys calls fn with the absolute key of each leaf strictly below
// node (every leaf if node is the root).
func (s *flatStore) rangeLeafKeys(node string, fn func(key string) bool) error {
	if s.mode == ModeIndexed {
		s.index.walk(node, func(key string, isLeaf bool) bool {
			return !isLeaf || fn(key)
		})
		return nil
	}
	prefix := s.codec.nodePrefix(node)
	err := s.be.RangeKeys(func(key string) bool {
		if !hasPrefix(key, prefix) || s.codec.isMarkerKey(key) {
			return true
		}
		return fn(key)
	})
	return storageErrf("scan", "", err)
}

// rangeLeaves is rangeLeafKeys with values.
func (s *flatStore) rangeLeaves(node string, fn func(key string, value any) bool) error {
	if s.mode == ModeIndexed {
		var err error
		s.index.walk(node, func(key string, isLeaf bool) bool {
			if !isLeaf {
				return true
			}
			var v any
			var ok bool
			v, ok, err = s.leaf(key)
			if err != nil {
				return false
			}
			if !ok {
				err = fmt.Errorf("fdict: index out of sync: leaf %q is missing", key)
				return false
			}
			return fn(key, v)
		})
		return err
	}
	prefix := s.codec.nodePrefix(node)
	err := s.be.Range(func(key string, value any) bool {
		if !hasPrefix(key, prefix) || s.codec.isMarkerKey(key) {
			return true
		}
		return fn(key, value)
	})
	return storageErrf("scan", "", err)
}

// rangeNodes calls fn with the absolute path of every node strictly below
// node. Default mode derives nodes from leaf keys.
func (s *flatStore) rangeNodes(node string, fn func(key string) bool) error {
	switch {
	case s.mode == ModeIndexed:
		s.index.walk(node, func(key string, isLeaf bool) bool {
			return isLeaf || fn(key)
		})
		return nil
	case s.hasMarkers():
		prefix := s.codec.nodePrefix(node)
		err := s.be.RangeKeys(func(key string) bool {
			if !s.codec.isMarkerKey(key) || !hasPrefix(key, prefix) || len(key) == len(prefix) {
				return true
			}
			return fn(key[:len(key)-len(s.codec.delim)])
		})
		return storageErrf("scan", "", err)
	default:
		seen := make(map[string]struct{})
		stopped := false
		return s.rangeLeafKeys(node, func(key string) bool {
			s.codec.Ancestors(key, func(a string) {
				if stopped || len(a) <= len(node) {
					return
				}
				if _, ok := seen[a]; ok {
					return
				}
				seen[a] = struct{}{}
				stopped = !fn(a)
			})
			return !stopped
		})
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
