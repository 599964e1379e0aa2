package fieldcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/packetfabric/errs"
)

// Enum encodes a named integer constant as an unsigned integer of a fixed
// width in bytes (1, 2, 4, or 8).
//
// Names optionally maps wire integers to symbolic names. Decode always
// returns the value as a bare int, whether or not it is present in Names,
// so an unknown enum member never makes the decode itself fail.
type Enum struct {
	width int
	Names map[int]string
}

// NewEnum constructs an Enum encoder of the given wire width. names may be
// nil if symbolic lookup is not needed; the wire form is unaffected either
// way.
func NewEnum(width int, names map[int]string) *Enum {
	return &Enum{width: width, Names: names}
}

func (e *Enum) Encode(value any, order binary.ByteOrder) ([]byte, error) {
	v, err := asInt(value)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 8)
	order.PutUint64(buf, uint64(v))

	out := make([]byte, e.width)
	if isBigEndian(order) {
		copy(out, buf[8-e.width:])
	} else {
		copy(out, buf[:e.width])
	}

	return out, nil
}

func (e *Enum) Decode(data []byte, order binary.ByteOrder) (any, int, error) {
	if len(data) < e.width {
		return nil, 0, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrIncomplete, e.width, len(data))
	}

	buf := make([]byte, 8)
	if isBigEndian(order) {
		copy(buf[8-e.width:], data[:e.width])
	} else {
		copy(buf[:e.width], data[:e.width])
	}

	v := int(order.Uint64(buf))

	return v, e.width, nil
}

// Size reports Enum's fixed wire size; ok is always true.
func (e *Enum) Size() (int, bool) { return e.width, true }

// Name returns the symbolic name for value, if one was registered.
func (e *Enum) Name(value int) (string, bool) {
	if e.Names == nil {
		return "", false
	}
	name, ok := e.Names[value]

	return name, ok
}

func asInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case uint:
		return int(v), nil
	case uint8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: Enum requires an integer value, got %T", errs.ErrTypeError, value)
	}
}
