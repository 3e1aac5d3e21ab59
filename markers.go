package fdict

import "errors"

// ensureMarkers writes a node marker for every strict ancestor of key that
// does not have one yet. Markers are never removed.
func (s *flatStore) ensureMarkers(key string) error {
	var err error
	s.codec.Ancestors(key, func(a string) {
		if err != nil {
			return
		}
		mk := s.codec.markerKey(a)
		var ok bool
		ok, err = s.be.Has(mk)
		if err == nil && !ok {
			err = s.be.Set(mk, marker)
		}
	})
	return storageErrf("mark", "", err)
}

// rebuildMarkers adds any missing markers for leaves already in the backend,
// e.g. when a store built in another mode is reopened in marker mode. A
// read-only backend cannot take them; node lookups then scan, as in default
// mode.
func (s *flatStore) rebuildMarkers() error {
	var keys []string
	err := s.rangeLeafKeys("", func(key string) bool {
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.ensureMarkers(k); errors.Is(err, ErrReadOnly) {
			s.markersIncomplete = true
			if s.logf != nil {
				s.logf("fdict: read-only store lacks node markers, node lookups will scan")
			}
			return nil
		} else if err != nil {
			return err
		}
	}
	s.debugf("fdict: checked node markers for %d leaves", len(keys))
	return nil
}
