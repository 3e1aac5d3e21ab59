package fdict

import (
	"fmt"
)

type Options struct {
	// Delimiter separates path segments in flat keys. Defaults to "/".
	Delimiter string

	// FastView enables the indexed mode.
	FastView bool

	// NoDel enables the marker mode. Cannot be combined with FastView.
	NoDel bool

	// Backend holds the flat keys. Defaults to a new in-memory backend.
	Backend Backend

	Logf    func(format string, args ...any)
	Verbose bool
}

func (opt Options) mode() (Mode, error) {
	switch {
	case opt.FastView && opt.NoDel:
		return 0, fmt.Errorf("%w: FastView and NoDel are mutually exclusive", ErrInvalidOptions)
	case opt.FastView:
		return ModeIndexed, nil
	case opt.NoDel:
		return ModeMarkers, nil
	default:
		return ModeDefault, nil
	}
}

// View is a handle on a subtree of a store: a root path plus the shared
// store. Views are cheap to copy and never own data; all Views derived from
// one another observe each other's changes immediately.
//
// The zero View is not usable.
type View struct {
	s    *flatStore
	root string
}

// New creates an empty store, ingests seed into it and returns its root
// View. Seed values that are maps become nodes; everything else is a leaf.
func New(seed map[string]any, opt Options) (View, error) {
	s, err := newFlatStore(opt)
	if err != nil {
		return View{}, err
	}
	v := View{s: s}
	if len(seed) > 0 {
		if err := v.Update(seed); err != nil {
			return View{}, err
		}
	}
	return v, nil
}

func newFlatStore(opt Options) (*flatStore, error) {
	mode, err := opt.mode()
	if err != nil {
		return nil, err
	}
	delim := opt.Delimiter
	if delim == "" {
		delim = DefaultDelimiter
	}
	codec, err := NewCodec(delim)
	if err != nil {
		return nil, err
	}
	be := opt.Backend
	if be == nil {
		be = NewMemBackend()
	} else if err := be.Sync(); err != nil {
		// doubles as a liveness check of the supplied backend
		return nil, fmt.Errorf("%w: unusable backend: %w", ErrInvalidOptions, err)
	}

	s := &flatStore{
		be:      be,
		codec:   codec,
		mode:    mode,
		logf:    opt.Logf,
		verbose: opt.Verbose,
	}
	switch mode {
	case ModeIndexed:
		s.index = newIndexTables(codec)
		n, err := s.index.rebuild(be.RangeKeys)
		if err != nil {
			return nil, storageErrf("scan", "", err)
		}
		s.debugf("fdict: indexed %d existing leaves", n)
	case ModeMarkers:
		if err := s.rebuildMarkers(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Convert copies the leaves of v into a new store created with opt. Use it
// to switch modes, e.g. to regain Delete on data built in NoDel mode.
// Node markers are never copied.
func (v View) Convert(opt Options) (View, error) {
	dst, err := New(nil, opt)
	if err != nil {
		return View{}, err
	}
	if err := dst.Merge(v); err != nil {
		return View{}, err
	}
	return dst, nil
}

func (v View) Mode() Mode {
	return v.s.mode
}

func (v View) Delimiter() string {
	return v.s.codec.delim
}

func (v View) Codec() Codec {
	return v.s.codec
}

// Root returns the absolute path of the view; "" for the root view.
func (v View) Root() string {
	return v.root
}

// SameStore reports whether both views share one store.
func (v View) SameStore(other View) bool {
	return v.s == other.s
}

// Backend returns the backend shared by the whole family of views.
func (v View) Backend() Backend {
	return v.s.be
}

// Sync commits pending changes of a persistent backend.
func (v View) Sync() error {
	return storageErrf("sync", v.Filename(), v.s.be.Sync())
}

// Close syncs and closes the backend. Every view of the store becomes
// unusable.
func (v View) Close() error {
	err := v.s.be.Close()
	if v.s.logf != nil {
		if fn := v.Filename(); fn != "" {
			v.s.logf("fdict: closed %s", fn)
		}
	}
	return storageErrf("close", v.Filename(), err)
}

// Discard closes the store and deletes its file, if it has one.
func (v View) Discard() error {
	if err := v.Close(); err != nil {
		return err
	}
	if fb, ok := v.s.be.(fileBacked); ok {
		return fb.Remove()
	}
	return nil
}

// Filename returns the file behind a persistent store, or "".
func (v View) Filename() string {
	if fb, ok := v.s.be.(fileBacked); ok {
		return fb.Filename()
	}
	return ""
}

func (v View) abs(key string) string {
	return v.s.codec.child(v.root, key)
}
