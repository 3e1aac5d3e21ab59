package fdict

import (
	"encoding/json"
	"fmt"
)

type Stats struct {
	Leaves int
	Nodes  int

	// Store-wide bookkeeping, regardless of the view.
	Markers      int
	IndexEntries int
}

// Stats counts leaves and nodes below v. In default mode this is two full
// scans.
func (v View) Stats() (Stats, error) {
	var st Stats
	err := v.WalkKeys(func(string) bool {
		st.Leaves++
		return true
	})
	if err != nil {
		return Stats{}, err
	}
	err = v.WalkNodes(func(string) bool {
		st.Nodes++
		return true
	})
	if err != nil {
		return Stats{}, err
	}
	switch v.s.mode {
	case ModeIndexed:
		st.IndexEntries = len(v.s.index.nodes)
	case ModeMarkers:
		err = v.s.be.RangeKeys(func(key string) bool {
			if v.s.codec.isMarkerKey(key) {
				st.Markers++
			}
			return true
		})
		if err != nil {
			return Stats{}, storageErrf("scan", "", err)
		}
	}
	return st, nil
}

func loggableVal(v any) string {
	if v == nil {
		return "null"
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(raw)
}
