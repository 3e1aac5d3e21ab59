package fdict

import (
	"encoding/binary"
	"errors"
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	var bb bytesBuilder
	_, _ = bb.Write([]byte{1, 2})
	_ = bb.WriteByte(3)
	if !reflect.DeepEqual(bb.Buf, []byte{1, 2, 3}) {
		t.Fatalf("bb.Buf = %x, wanted 010203", bb.Buf)
	}
}

func TestByteDecoder_RoundTrip(t *testing.T) {
	buf := []byte{0xAA}
	buf = binary.AppendUvarint(buf, 300)
	buf = appendVarbytes(buf, []byte("hi"))
	buf = binary.BigEndian.AppendUint64(buf, 0x0102030405060708)

	want := []byte{0xAA, 0xAC, 0x02, 2, 'h', 'i', 1, 2, 3, 4, 5, 6, 7, 8}
	if !reflect.DeepEqual(buf, want) {
		t.Fatalf("buf = %x, wanted %x", buf, want)
	}

	d := makeByteDecoder("test", buf)
	raw := must(d.Raw(1))
	if raw[0] != 0xAA {
		t.Fatalf("Raw = %x", raw)
	}
	if v := must(d.Uvarinti()); v != 300 {
		t.Fatalf("Uvarinti = %d, wanted 300", v)
	}
	if v := must(d.VarBytes()); string(v) != "hi" {
		t.Fatalf("VarBytes = %q, wanted hi", v)
	}
	if v := must(d.FixedUint64()); v != 0x0102030405060708 {
		t.Fatalf("FixedUint64 = %x", v)
	}
	if len(d.Buf) != 0 || d.Off() != len(buf) {
		t.Fatalf("decoder not at end: off %d of %d", d.Off(), len(buf))
	}
}

func TestByteDecoder_Errors(t *testing.T) {
	var de *DataError

	d := makeByteDecoder("k", []byte{0x80})
	if _, err := d.Uvarint(); !errors.As(err, &de) {
		t.Fatalf("Uvarint on truncated input: err = %v, wanted DataError", err)
	}

	d = makeByteDecoder("k", []byte{5, 'a'})
	if _, err := d.VarBytes(); !errors.As(err, &de) {
		t.Fatalf("VarBytes on short input: err = %v, wanted DataError", err)
	}

	d = makeByteDecoder("k", []byte{1, 2, 3})
	if _, err := d.FixedUint64(); !errors.As(err, &de) {
		t.Fatalf("FixedUint64 on short input: err = %v, wanted DataError", err)
	}
}

func TestValueBytesPool(t *testing.T) {
	b := acquireValueBytes()
	if len(b) != 0 || cap(b) == 0 {
		t.Fatalf("acquireValueBytes: len %d cap %d", len(b), cap(b))
	}
	releaseValueBytes(append(b, 1, 2, 3))
	releaseValueBytes(make([]byte, 0, 2*1024*1024))
	if b := acquireValueBytes(); len(b) != 0 {
		t.Fatalf("pooled buffer not reset: len %d", len(b))
	}
}
