package fieldcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/packetfabric/errs"
)

// RunLength encodes a byte slice as a 4-byte length prefix followed by
// (count, value) pairs, each pair one run of up to 255 repeated bytes.
//
// Grounded on arloliu-mebo/encoding/tag.go's length-prefixed payload idiom,
// generalized from a varint tag list to an RLE byte stream per
// original_source/src/packerpy/protocols/message_partial.py's RunLengthEncoder.
type RunLength struct{}

// NewRunLength constructs a RunLength encoder.
func NewRunLength() *RunLength { return &RunLength{} }

func (RunLength) Encode(value any, order binary.ByteOrder) ([]byte, error) {
	v, ok := value.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: RunLength requires a []byte, got %T", errs.ErrTypeError, value)
	}

	if len(v) == 0 {
		out := make([]byte, 4)
		order.PutUint32(out, 0)

		return out, nil
	}

	var encoded []byte
	for i := 0; i < len(v); {
		current := v[i]
		count := 1
		for i+count < len(v) && v[i+count] == current && count < 255 {
			count++
		}
		encoded = append(encoded, byte(count), current)
		i += count
	}

	out := make([]byte, 4+len(encoded))
	order.PutUint32(out[:4], uint32(len(encoded)))
	copy(out[4:], encoded)

	return out, nil
}

func (RunLength) Decode(data []byte, order binary.ByteOrder) (any, int, error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("%w: need 4 bytes for length prefix, got %d", errs.ErrIncomplete, len(data))
	}

	length := int(order.Uint32(data[:4]))
	if len(data) < 4+length {
		return nil, 0, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrIncomplete, 4+length, len(data))
	}

	encoded := data[4 : 4+length]

	var result []byte
	for i := 0; i+1 < len(encoded); i += 2 {
		count := int(encoded[i])
		value := encoded[i+1]
		for range count {
			result = append(result, value)
		}
	}

	return result, 4 + length, nil
}

// Size reports that RunLength has no fixed wire size: its length depends on
// the run structure of each value, so it cannot be used as a header or
// footer field.
func (RunLength) Size() (int, bool) { return 0, false }
