package fdict

import (
	"encoding/binary"
	"io"
	"math"
)

// bytesBuilder is the io.Writer handed to the msgpack encoder, which also
// uses WriteByte when the writer has it.
type bytesBuilder struct {
	Buf []byte
}

var _ interface {
	io.Writer
	io.ByteWriter
} = (*bytesBuilder)(nil)

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = append(bb.Buf, b...)
	return len(b), nil
}

func (bb *bytesBuilder) WriteByte(v byte) error {
	bb.Buf = append(bb.Buf, v)
	return nil
}

func appendVarbytes(buf []byte, v []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(v)))
	return append(buf, v...)
}

// byteDecoder reads the uvarints, varbytes and fixed integers of a snapshot
// file. Name is only used in error messages.
type byteDecoder struct {
	Name string
	Orig []byte
	Buf  []byte
}

func makeByteDecoder(name string, buf []byte) byteDecoder {
	return byteDecoder{name, buf, buf}
}

func (d *byteDecoder) Off() int {
	return len(d.Orig) - len(d.Buf)
}

func (d *byteDecoder) Uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.Buf)
	if n <= 0 {
		return 0, dataErrf(d.Name, d.Orig, nil, "invalid uvarint at %d", d.Off())
	}
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) Uvarinti() (int, error) {
	v, err := d.Uvarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt {
		return 0, dataErrf(d.Name, d.Orig, nil, "value does not fit into int at %d: %d", d.Off(), v)
	}
	return int(v), nil
}

func (d *byteDecoder) Raw(n int) ([]byte, error) {
	if len(d.Buf) < n {
		return nil, dataErrf(d.Name, d.Orig, nil, "not enough data at %d: %d bytes remaining, %d wanted", d.Off(), len(d.Buf), n)
	}
	v := d.Buf[:n]
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) VarBytes() ([]byte, error) {
	n, err := d.Uvarinti()
	if err != nil {
		return nil, err
	}
	return d.Raw(n)
}

func (d *byteDecoder) FixedUint64() (uint64, error) {
	raw, err := d.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}
