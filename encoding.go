package fdict

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding selects how persistent backends serialize leaf values.
type Encoding int

const (
	MsgPack Encoding = iota
	JSON

	defaultValueEncoding = MsgPack
)

func (enc Encoding) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Encoding(%d)", int(enc))
	}
}

// Stored values start with a tag byte. Markers carry no payload.
const (
	tagMarker  = byte(0)
	tagMsgPack = byte(1)
	tagJSON    = byte(2)
)

func (enc Encoding) tag() byte {
	switch enc {
	case MsgPack:
		return tagMsgPack
	case JSON:
		return tagJSON
	default:
		panic(fmt.Errorf("unsupported encoding %v", enc))
	}
}

func (enc Encoding) encodeValue(buf []byte, value any) ([]byte, error) {
	if isMarker(value) {
		return append(buf, tagMarker), nil
	}
	buf = append(buf, enc.tag())
	switch enc {
	case MsgPack:
		bb := bytesBuilder{buf}
		e := msgpack.GetEncoder()
		e.ResetDict(&bb, nil)
		e.SetSortMapKeys(true)
		err := e.Encode(value)
		msgpack.PutEncoder(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %T using MsgPack: %w", value, err)
		}
		return bb.Buf, nil
	case JSON:
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %T to JSON: %w", value, err)
		}
		return append(buf, raw...), nil
	default:
		panic("unsupported encoding")
	}
}

// decodeValue decodes any tagged value regardless of the configured
// encoding, so a file written with one encoding stays readable with another.
func decodeValue(key string, data []byte) (any, error) {
	if len(data) == 0 {
		return nil, dataErrf(key, data, nil, "empty value")
	}
	switch data[0] {
	case tagMarker:
		if len(data) != 1 {
			return nil, dataErrf(key, data, nil, "marker with payload")
		}
		return marker, nil
	case tagMsgPack:
		var r bytes.Reader
		r.Reset(data[1:])
		dec := msgpack.GetDecoder()
		dec.ResetDict(&r, nil)
		v, err := dec.DecodeInterfaceLoose()
		msgpack.PutDecoder(dec)
		if err != nil {
			return nil, dataErrf(key, data, err, "failed to decode msgpack")
		}
		return v, nil
	case tagJSON:
		var v any
		err := json.Unmarshal(data[1:], &v)
		if err != nil {
			return nil, dataErrf(key, data, err, "failed to decode JSON")
		}
		return v, nil
	default:
		return nil, dataErrf(key, data, nil, "unknown value tag %d", data[0])
	}
}
