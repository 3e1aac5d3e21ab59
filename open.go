package fdict

import (
	"fmt"
	"os"
	"time"
)

// FileOptions configure a persistent store.
type FileOptions struct {
	Options

	// AutoSync syncs after every Set. Slow; prefer calling Sync periodically.
	AutoSync bool

	// Writeback keeps values in memory until Sync, so that in-place changes
	// to slices and maps obtained from Get are persisted too.
	Writeback bool

	// ForcePortable uses the snapshot-file backend instead of Bolt, for
	// hosts where Bolt's mmap or file locking is unavailable.
	ForcePortable bool

	ReadOnly bool

	// Encoding of leaf values on disk. Either encoding can be read back.
	Encoding Encoding

	// Timeout for acquiring the Bolt file lock. Defaults to 10 seconds.
	Timeout time.Duration

	// IsTesting trades durability for speed.
	IsTesting bool
}

// Open opens (creating if needed) the store kept in the file at path and
// ingests seed into it. An empty path creates a new temporary file; use
// Filename to find it and Discard to delete it.
//
// The caller must Close the returned view to guarantee durability.
func Open(path string, seed map[string]any, opt FileOptions) (View, error) {
	if opt.Backend != nil {
		return View{}, fmt.Errorf("%w: Backend cannot be set for Open", ErrInvalidOptions)
	}
	if _, err := opt.mode(); err != nil {
		return View{}, err
	}
	if path == "" {
		if opt.ReadOnly {
			return View{}, fmt.Errorf("%w: ReadOnly requires a path", ErrInvalidOptions)
		}
		f, err := os.CreateTemp("", "fdict_*.db")
		if err != nil {
			return View{}, storageErrf("create", "", err)
		}
		path = f.Name()
		f.Close()
		os.Remove(path) // the backend creates it
	}

	var be Backend
	var kind string
	if opt.ForcePortable {
		fb, err := openFileBackend(path, opt)
		if err != nil {
			return View{}, err
		}
		be, kind = fb, "snapshot"
	} else {
		bb, err := openBoltBackend(path, opt)
		if err != nil {
			return View{}, err
		}
		be, kind = bb, "bolt"
	}
	if opt.Logf != nil {
		opt.Logf("fdict: opened %s (%s, %v, %v)", path, kind, must(opt.mode()), opt.Encoding)
	}

	sopt := opt.Options
	sopt.Backend = be
	s, err := newFlatStore(sopt)
	if err != nil {
		be.Close()
		return View{}, err
	}
	s.autoSync = opt.AutoSync
	v := View{s: s}
	if len(seed) > 0 {
		if err := v.Update(seed); err != nil {
			be.Close()
			return View{}, err
		}
		if err := v.Sync(); err != nil {
			be.Close()
			return View{}, err
		}
	}
	return v, nil
}
