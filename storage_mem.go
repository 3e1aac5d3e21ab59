package fdict

// memBackend is the default Backend: a plain Go map. Lookups and updates are
// O(1); iteration order is Go's map order.
type memBackend struct {
	items  map[string]any
	closed bool
}

// NewMemBackend returns an empty in-memory backend.
func NewMemBackend() Backend {
	return newMemBackend(0)
}

func newMemBackend(sizeHint int) *memBackend {
	return &memBackend{items: make(map[string]any, sizeHint)}
}

func (b *memBackend) Get(key string) (any, bool, error) {
	if b.closed {
		return nil, false, ErrClosed
	}
	v, ok := b.items[key]
	return v, ok, nil
}

func (b *memBackend) Set(key string, value any) error {
	if b.closed {
		return ErrClosed
	}
	b.items[key] = value
	return nil
}

func (b *memBackend) Delete(key string) error {
	if b.closed {
		return ErrClosed
	}
	delete(b.items, key)
	return nil
}

func (b *memBackend) Has(key string) (bool, error) {
	if b.closed {
		return false, ErrClosed
	}
	_, ok := b.items[key]
	return ok, nil
}

func (b *memBackend) RangeKeys(fn func(key string) bool) error {
	if b.closed {
		return ErrClosed
	}
	for k := range b.items {
		if !fn(k) {
			break
		}
	}
	return nil
}

func (b *memBackend) Range(fn func(key string, value any) bool) error {
	if b.closed {
		return ErrClosed
	}
	for k, v := range b.items {
		if !fn(k, v) {
			break
		}
	}
	return nil
}

func (b *memBackend) Sync() error {
	if b.closed {
		return ErrClosed
	}
	return nil
}

func (b *memBackend) Close() error {
	b.closed = true
	b.items = nil
	return nil
}

func (b *memBackend) len() int {
	return len(b.items)
}
