package fdict

// Backend is the flat mapping that holds every leaf (and, in marker mode,
// every node marker) of a store. Keys are complete flat keys. The engine
// never caches values; each View operation goes to the backend.
//
// Implementations do not need to be safe for concurrent use.
type Backend interface {
	// Get returns the value stored at key, with ok=false if there is none.
	Get(key string) (value any, ok bool, err error)

	// Set stores value at key, replacing any previous value.
	Set(key string, value any) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error

	// Has reports whether key is present.
	Has(key string) (bool, error)

	// RangeKeys calls fn for every key until fn returns false. Order is
	// backend-specific. fn may mutate the backend.
	RangeKeys(fn func(key string) bool) error

	// Range is like RangeKeys but also passes the values.
	Range(fn func(key string, value any) bool) error

	// Sync commits pending changes to durable storage (no-op for memory).
	Sync() error

	// Close releases resources. Further calls fail with ErrClosed.
	Close() error
}

// fileBacked is implemented by backends that live in a file.
type fileBacked interface {
	Filename() string
	Remove() error
}

type nodeMarker struct{}

// marker is the sentinel stored at node paths in marker mode. It cannot be
// confused with a user value: its type is unexported, and it lives under a
// key ending in the delimiter, which no leaf key can do.
var marker any = nodeMarker{}

func isMarker(v any) bool {
	_, ok := v.(nodeMarker)
	return ok
}
