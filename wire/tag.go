// Package wire implements ScalarCodec: the fixed table from primitive type
// tag to (encode, decode) pair, parameterized by byte order.
//
// The Parse/Bytes pattern below is grounded on
// arloliu-mebo/section/numeric_header.go's NumericHeader fixed field
// layout, generalized from one hard-coded struct to a tag-dispatched table
// covering every primitive the field-graph model supports.
package wire

import (
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
)

// Tag identifies a primitive scalar type.
type Tag uint8

const (
	Int8 Tag = iota
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	// Int is an 8-byte signed integer, an alias in wire form for Int64.
	Int
	Float32
	Float64
	Bool
	// Str is a 4-byte length-prefixed UTF-8 string.
	Str
	// Bytes is a 4-byte length-prefixed raw byte slice.
	Bytes
)

func (t Tag) String() string {
	switch t {
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Int:
		return "int"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case Str:
		return "str"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// FixedSize reports the wire-form byte size of fixed-size tags (everything
// except Str and Bytes, which are variable-length and length-prefixed). It is
// used to enforce I3: header/footer fields must have a statically computable
// size.
func (t Tag) FixedSize() (int, bool) {
	switch t {
	case Int8, Uint8, Bool:
		return 1, true
	case Int16, Uint16:
		return 2, true
	case Int32, Uint32, Float32:
		return 4, true
	case Int64, Uint64, Int, Float64:
		return 8, true
	default:
		return 0, false
	}
}

// LengthPrefixSize is the byte width of every variable-size primitive's
// length prefix: always a 4-byte unsigned integer.
const LengthPrefixSize = 4

// Encode serializes value (of the Go type matching tag) into a newly
// allocated byte slice using the given byte order.
func Encode(tag Tag, value any, order endian.EndianEngine) ([]byte, error) {
	switch tag {
	case Int8:
		v, ok := value.(int8)
		if !ok {
			return nil, typeErr(tag, value)
		}

		return []byte{byte(v)}, nil
	case Uint8:
		v, ok := value.(uint8)
		if !ok {
			return nil, typeErr(tag, value)
		}

		return []byte{v}, nil
	case Int16:
		v, ok := value.(int16)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 2)
		order.PutUint16(b, uint16(v))

		return b, nil
	case Uint16:
		v, ok := value.(uint16)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 2)
		order.PutUint16(b, v)

		return b, nil
	case Int32:
		v, ok := value.(int32)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 4)
		order.PutUint32(b, uint32(v))

		return b, nil
	case Uint32:
		v, ok := value.(uint32)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 4)
		order.PutUint32(b, v)

		return b, nil
	case Int64, Int:
		v, ok := value.(int64)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 8)
		order.PutUint64(b, uint64(v))

		return b, nil
	case Uint64:
		v, ok := value.(uint64)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 8)
		order.PutUint64(b, v)

		return b, nil
	case Float32:
		v, ok := value.(float32)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 4)
		order.PutUint32(b, float32bits(v))

		return b, nil
	case Float64:
		v, ok := value.(float64)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, 8)
		order.PutUint64(b, float64bits(v))

		return b, nil
	case Bool:
		v, ok := value.(bool)
		if !ok {
			return nil, typeErr(tag, value)
		}
		if v {
			return []byte{1}, nil
		}

		return []byte{0}, nil
	case Str:
		v, ok := value.(string)
		if !ok {
			return nil, typeErr(tag, value)
		}
		payload := []byte(v)
		b := make([]byte, LengthPrefixSize+len(payload))
		order.PutUint32(b[:LengthPrefixSize], uint32(len(payload)))
		copy(b[LengthPrefixSize:], payload)

		return b, nil
	case Bytes:
		v, ok := value.([]byte)
		if !ok {
			return nil, typeErr(tag, value)
		}
		b := make([]byte, LengthPrefixSize+len(v))
		order.PutUint32(b[:LengthPrefixSize], uint32(len(v)))
		copy(b[LengthPrefixSize:], v)

		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown scalar tag %d", errs.ErrTypeError, tag)
	}
}

// Decode reads one value of the Go type matching tag from data using the
// given byte order, and returns the value plus the number of bytes consumed.
func Decode(tag Tag, data []byte, order endian.EndianEngine) (any, int, error) {
	if size, ok := tag.FixedSize(); ok && len(data) < size {
		return nil, 0, fmt.Errorf("%w: need %d bytes for %s, got %d", errs.ErrIncomplete, size, tag, len(data))
	}

	switch tag {
	case Int8:
		return int8(data[0]), 1, nil
	case Uint8:
		return data[0], 1, nil
	case Int16:
		return int16(order.Uint16(data[:2])), 2, nil
	case Uint16:
		return order.Uint16(data[:2]), 2, nil
	case Int32:
		return int32(order.Uint32(data[:4])), 4, nil
	case Uint32:
		return order.Uint32(data[:4]), 4, nil
	case Int64, Int:
		return int64(order.Uint64(data[:8])), 8, nil
	case Uint64:
		return order.Uint64(data[:8]), 8, nil
	case Float32:
		return float32frombits(order.Uint32(data[:4])), 4, nil
	case Float64:
		return float64frombits(order.Uint64(data[:8])), 8, nil
	case Bool:
		return data[0] != 0, 1, nil
	case Str:
		if len(data) < LengthPrefixSize {
			return nil, 0, fmt.Errorf("%w: need %d bytes for str length prefix, got %d", errs.ErrIncomplete, LengthPrefixSize, len(data))
		}
		n := int(order.Uint32(data[:LengthPrefixSize]))
		if len(data) < LengthPrefixSize+n {
			return nil, 0, fmt.Errorf("%w: need %d bytes for str payload, got %d", errs.ErrIncomplete, n, len(data)-LengthPrefixSize)
		}
		payload := data[LengthPrefixSize : LengthPrefixSize+n]
		if !isValidUTF8(payload) {
			return nil, 0, fmt.Errorf("%w: str field is not valid UTF-8", errs.ErrEncoding)
		}

		return string(payload), LengthPrefixSize + n, nil
	case Bytes:
		if len(data) < LengthPrefixSize {
			return nil, 0, fmt.Errorf("%w: need %d bytes for bytes length prefix, got %d", errs.ErrIncomplete, LengthPrefixSize, len(data))
		}
		n := int(order.Uint32(data[:LengthPrefixSize]))
		if len(data) < LengthPrefixSize+n {
			return nil, 0, fmt.Errorf("%w: need %d bytes for bytes payload, got %d", errs.ErrIncomplete, n, len(data)-LengthPrefixSize)
		}
		out := make([]byte, n)
		copy(out, data[LengthPrefixSize:LengthPrefixSize+n])

		return out, LengthPrefixSize + n, nil
	default:
		return nil, 0, fmt.Errorf("%w: unknown scalar tag %d", errs.ErrTypeError, tag)
	}
}

func typeErr(tag Tag, value any) error {
	return fmt.Errorf("%w: value %#v does not match tag %s", errs.ErrTypeError, value, tag)
}
