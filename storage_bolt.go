package fdict

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

var boltDataBucket = []byte("fdict")

// boltBackend keeps every flat key in a single Bolt bucket. The database is
// opened with NoSync, so writes reach the disk on Sync or Close.
//
// In writeback mode, values read or written are kept decoded in memory and
// only written to Bolt on Sync, which also catches in-place changes to
// mutable leaves (slices, maps) handed out by Get.
type boltBackend struct {
	bdb       *bbolt.DB
	path      string
	encoding  Encoding
	readOnly  bool
	writeback bool
	logf      func(format string, args ...any)

	cache map[string]*cachedValue
}

type cachedValue struct {
	value   any
	present bool
	dirty   bool
}

func openBoltBackend(path string, opt FileOptions) (*boltBackend, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = opt.Timeout
	if bopt.Timeout == 0 {
		bopt.Timeout = 10 * time.Second
	}
	bopt.ReadOnly = opt.ReadOnly
	bopt.NoSync = true
	if opt.IsTesting {
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024
	} else {
		bopt.FreelistType = bbolt.FreelistMapType
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, storageErrf("open", path, err)
	}
	if !opt.ReadOnly {
		err = bdb.Update(func(btx *bbolt.Tx) error {
			_, err := btx.CreateBucketIfNotExists(boltDataBucket)
			return err
		})
		if err != nil {
			bdb.Close()
			return nil, storageErrf("open", path, err)
		}
	}

	b := &boltBackend{
		bdb:       bdb,
		path:      path,
		encoding:  opt.Encoding,
		readOnly:  opt.ReadOnly,
		writeback: opt.Writeback && !opt.ReadOnly,
		logf:      opt.Logf,
	}
	if b.writeback {
		b.cache = make(map[string]*cachedValue)
	}
	return b, nil
}

func (b *boltBackend) Filename() string {
	return b.path
}

func (b *boltBackend) Get(key string) (any, bool, error) {
	if b.bdb == nil {
		return nil, false, ErrClosed
	}
	if c := b.cache[key]; c != nil {
		return c.value, c.present, nil
	}
	var v any
	var found bool
	err := b.bdb.View(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(boltDataBucket)
		if buck == nil {
			return nil
		}
		raw := buck.Get(unsafeBytesFromString(key))
		if raw == nil {
			return nil
		}
		found = true
		var err error
		v, err = decodeValue(key, raw)
		return err
	})
	if err != nil {
		return nil, false, storageErrf("get", b.path, err)
	}
	if found && b.writeback {
		b.cache[key] = &cachedValue{value: v, present: true}
	}
	return v, found, nil
}

func (b *boltBackend) Set(key string, value any) error {
	if b.bdb == nil {
		return ErrClosed
	}
	if b.readOnly {
		return ErrReadOnly
	}
	if b.writeback {
		b.cache[key] = &cachedValue{value: value, present: true, dirty: true}
		return nil
	}

	buf := acquireValueBytes()
	defer func() { releaseValueBytes(buf) }()
	buf, err := b.encoding.encodeValue(buf, value)
	if err != nil {
		return pathErrf("set", key, err, "")
	}
	err = b.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(boltDataBucket).Put(unsafeBytesFromString(key), buf)
	})
	return storageErrf("put", b.path, err)
}

func (b *boltBackend) Delete(key string) error {
	if b.bdb == nil {
		return ErrClosed
	}
	if b.readOnly {
		return ErrReadOnly
	}
	if b.writeback {
		b.cache[key] = &cachedValue{dirty: true}
		return nil
	}
	err := b.bdb.Update(func(btx *bbolt.Tx) error {
		return btx.Bucket(boltDataBucket).Delete(unsafeBytesFromString(key))
	})
	return storageErrf("delete", b.path, err)
}

func (b *boltBackend) Has(key string) (bool, error) {
	if b.bdb == nil {
		return false, ErrClosed
	}
	if c := b.cache[key]; c != nil {
		return c.present, nil
	}
	var found bool
	err := b.bdb.View(func(btx *bbolt.Tx) error {
		if buck := btx.Bucket(boltDataBucket); buck != nil {
			found = buck.Get(unsafeBytesFromString(key)) != nil
		}
		return nil
	})
	return found, storageErrf("get", b.path, err)
}

// RangeKeys snapshots the keys first, so fn is free to modify the store.
func (b *boltBackend) RangeKeys(fn func(key string) bool) error {
	keys, err := b.snapshotKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if !fn(k) {
			break
		}
	}
	return nil
}

func (b *boltBackend) Range(fn func(key string, value any) bool) error {
	keys, err := b.snapshotKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		v, ok, err := b.Get(k)
		if err != nil {
			return err
		}
		if ok && !fn(k, v) {
			break
		}
	}
	return nil
}

func (b *boltBackend) snapshotKeys() ([]string, error) {
	if b.bdb == nil {
		return nil, ErrClosed
	}
	var keys []string
	err := b.bdb.View(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(boltDataBucket)
		if buck == nil {
			return nil
		}
		keys = make([]string, 0, buck.Stats().KeyN)
		return buck.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, storageErrf("scan", b.path, err)
	}
	if b.writeback {
		for k, c := range b.cache {
			if c.dirty && c.present {
				keys = append(keys, k)
			}
		}
		slices.Sort(keys)
		keys = slices.Compact(keys)
		keys = slices.DeleteFunc(keys, func(k string) bool {
			c := b.cache[k]
			return c != nil && !c.present
		})
	}
	return keys, nil
}

func (b *boltBackend) flush() (int, error) {
	if len(b.cache) == 0 {
		return 0, nil
	}
	var n int
	err := b.bdb.Update(func(btx *bbolt.Tx) error {
		buck := btx.Bucket(boltDataBucket)
		for k, c := range b.cache {
			var err error
			if c.present {
				// unchanged values are rewritten too, they may have been mutated in place
				var raw []byte
				raw, err = b.encoding.encodeValue(nil, c.value)
				if err != nil {
					return pathErrf("sync", k, err, "")
				}
				err = buck.Put([]byte(k), raw)
			} else {
				err = buck.Delete([]byte(k))
			}
			if err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, storageErrf("sync", b.path, err)
	}
	clear(b.cache)
	return n, nil
}

func (b *boltBackend) Sync() error {
	if b.bdb == nil {
		return ErrClosed
	}
	if b.readOnly {
		return nil
	}
	n, err := b.flush()
	if err != nil {
		return err
	}
	if n > 0 && b.logf != nil {
		b.logf("fdict: %s: wrote back %d cached values", b.path, n)
	}
	return storageErrf("sync", b.path, b.bdb.Sync())
}

func (b *boltBackend) Close() error {
	if b.bdb == nil {
		return nil
	}
	var syncErr error
	if !b.readOnly {
		syncErr = b.Sync()
	}
	err := b.bdb.Close()
	b.bdb = nil
	b.cache = nil
	if syncErr != nil {
		return syncErr
	}
	return storageErrf("close", b.path, err)
}

func (b *boltBackend) Remove() error {
	if b.bdb != nil {
		return fmt.Errorf("fdict: cannot remove %s while open", b.path)
	}
	err := os.Remove(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return storageErrf("remove", b.path, err)
}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
