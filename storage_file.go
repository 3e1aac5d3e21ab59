package fdict

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/natefinch/atomic"
)

// fileBackend is the portable persistent backend: an in-memory map that is
// loaded from a snapshot file on open and rewritten atomically on Sync.
// It needs nothing beyond plain file I/O, so it works wherever Bolt's mmap
// and file locking do not.
//
// Snapshot format:
//
//	magic:8 count:uvarint (key:varbytes value:varbytes)* checksum:64
//
// Values use the tagged encoding of encoding.go; checksum is xxhash64 of
// everything before it.
type fileBackend struct {
	*memBackend
	path     string
	encoding Encoding
	readOnly bool
	dirty    bool
}

var snapshotMagic = []byte("fdict\x00s1")

func openFileBackend(path string, opt FileOptions) (*fileBackend, error) {
	b := &fileBackend{
		path:     path,
		encoding: opt.Encoding,
		readOnly: opt.ReadOnly,
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !opt.ReadOnly {
		b.memBackend = newMemBackend(0)
		return b, nil
	} else if err != nil {
		return nil, storageErrf("open", path, err)
	}

	if len(data) == 0 {
		// freshly created temp file
		b.memBackend = newMemBackend(0)
		return b, nil
	}
	b.memBackend, err = decodeSnapshot(path, data)
	if err != nil {
		return nil, storageErrf("open", path, err)
	}
	return b, nil
}

func decodeSnapshot(name string, data []byte) (*memBackend, error) {
	if len(data) < len(snapshotMagic)+8 || !bytes.Equal(data[:len(snapshotMagic)], snapshotMagic) {
		return nil, dataErrf(name, data, nil, "not a snapshot file")
	}
	body := data[:len(data)-8]
	d := makeByteDecoder(name, data[len(body):])
	sum, err := d.FixedUint64()
	if err != nil {
		return nil, err
	}
	if xxhash.Sum64(body) != sum {
		return nil, dataErrf(name, data, nil, "checksum mismatch")
	}

	d = makeByteDecoder(name, body[len(snapshotMagic):])
	n, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	mb := newMemBackend(n)
	for range n {
		k, err := d.VarBytes()
		if err != nil {
			return nil, err
		}
		raw, err := d.VarBytes()
		if err != nil {
			return nil, err
		}
		key := string(k)
		v, err := decodeValue(key, raw)
		if err != nil {
			return nil, err
		}
		mb.items[key] = v
	}
	if len(d.Buf) != 0 {
		return nil, dataErrf(name, data, nil, "%d trailing bytes", len(d.Buf))
	}
	return mb, nil
}

func (b *fileBackend) encodeSnapshot() ([]byte, error) {
	buf := append([]byte(nil), snapshotMagic...)
	buf = binary.AppendUvarint(buf, uint64(b.len()))
	val := acquireValueBytes()
	defer func() { releaseValueBytes(val) }()
	for k, v := range b.items {
		var err error
		val, err = b.encoding.encodeValue(val[:0], v)
		if err != nil {
			return nil, pathErrf("sync", k, err, "")
		}
		buf = appendVarbytes(buf, []byte(k))
		buf = appendVarbytes(buf, val)
	}
	return binary.BigEndian.AppendUint64(buf, xxhash.Sum64(buf)), nil
}

func (b *fileBackend) Filename() string {
	return b.path
}

func (b *fileBackend) Set(key string, value any) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.dirty = true
	return b.memBackend.Set(key, value)
}

func (b *fileBackend) Delete(key string) error {
	if b.readOnly {
		return ErrReadOnly
	}
	b.dirty = true
	return b.memBackend.Delete(key)
}

func (b *fileBackend) Sync() error {
	if b.closed {
		return ErrClosed
	}
	if b.readOnly || !b.dirty {
		return nil
	}
	data, err := b.encodeSnapshot()
	if err != nil {
		return storageErrf("sync", b.path, err)
	}
	err = atomic.WriteFile(b.path, bytes.NewReader(data))
	if err != nil {
		return storageErrf("sync", b.path, err)
	}
	b.dirty = false
	return nil
}

func (b *fileBackend) Close() error {
	if b.closed {
		return nil
	}
	err := b.Sync()
	b.memBackend.Close()
	return err
}

func (b *fileBackend) Remove() error {
	err := os.Remove(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return storageErrf("remove", b.path, err)
}
