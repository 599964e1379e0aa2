package partial

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/fieldcodec"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
)

// encodeArray serializes an array-shaped field's []any value, covering all
// three array shapes: fixed count, length-prefixed, and delimited.
func encodeArray(field schema.FieldSpec, value any, order endian.EndianEngine) ([]byte, error) {
	elems, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: field %q array value must be []any, got %T", errs.ErrTypeError, field.Name, value)
	}

	switch field.Shape {
	case schema.ArrayFixedCount:
		var out []byte
		for _, e := range elems {
			b, err := encodeFieldElement(field, e, order)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}

		return out, nil

	case schema.ArrayLengthPrefixed:
		out := make([]byte, wire.LengthPrefixSize)
		order.PutUint32(out, uint32(len(elems)))
		for _, e := range elems {
			b, err := encodeFieldElement(field, e, order)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
		}

		return out, nil

	case schema.ArrayDelimited:
		var out []byte
		for _, e := range elems {
			b, err := encodeFieldElement(field, e, order)
			if err != nil {
				return nil, err
			}
			out = append(out, b...)
			out = append(out, field.Delimiter...)
		}

		return out, nil

	default:
		return nil, fmt.Errorf("%w: field %q has unsupported array shape", errs.ErrTypeError, field.Name)
	}
}

// decodeFieldElement decodes one non-array element of field from the front
// of data, reporting bytes consumed.
func decodeFieldElement(field schema.FieldSpec, data []byte, order endian.EndianEngine) (any, int, error) {
	switch field.Type {
	case schema.FieldPrimitive:
		return wire.Decode(field.Primitive, data, order)
	case schema.FieldComposite:
		return Decode(field.Composite, data)
	case schema.FieldCustomEncoder:
		return field.Encoder.Decode(data, order)
	case schema.FieldEnum:
		enc := fieldcodec.NewEnum(field.Enum.Size, field.Enum.Names)

		return enc.Decode(data, order)
	default:
		return nil, 0, fmt.Errorf("%w: field %q has unsupported type %s for byte-aligned decode", errs.ErrTypeError, field.Name, field.Type)
	}
}

// decodeArray decodes an array-shaped field from the front of data.
func decodeArray(inst *Instance, field schema.FieldSpec, data []byte, order endian.EndianEngine) ([]any, int, error) {
	switch field.Shape {
	case schema.ArrayFixedCount:
		n, err := resolveArrayCount(inst, field)
		if err != nil {
			return nil, 0, err
		}
		elems := make([]any, n)
		pos := 0
		for i := range n {
			v, adv, err := decodeFieldElement(field, data[pos:], order)
			if err != nil {
				return nil, 0, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = v
			pos += adv
		}

		return elems, pos, nil

	case schema.ArrayLengthPrefixed:
		if len(data) < wire.LengthPrefixSize {
			return nil, 0, fmt.Errorf("%w: need %d bytes for array count prefix, got %d", errs.ErrIncomplete, wire.LengthPrefixSize, len(data))
		}
		n := int(order.Uint32(data[:wire.LengthPrefixSize]))
		pos := wire.LengthPrefixSize
		elems := make([]any, n)
		for i := range n {
			v, adv, err := decodeFieldElement(field, data[pos:], order)
			if err != nil {
				return nil, 0, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = v
			pos += adv
		}

		return elems, pos, nil

	case schema.ArrayDelimited:
		return decodeDelimitedArray(field, data, order)

	default:
		return nil, 0, fmt.Errorf("%w: field %q has unsupported array shape", errs.ErrTypeError, field.Name)
	}
}

// tryDecodeElementAndDelimiter attempts to decode one element of field
// followed immediately by its delimiter. ok is false with a nil error when
// data is exhausted exactly at this boundary, the clean end-of-list signal
// for a delimited array with nothing after it in the body. err is non-nil
// for a genuine mid-element failure: either leftover bytes too short to hold
// a full element, which must propagate errs.ErrIncomplete so the envelope
// re-buffers and retries rather than truncating the list, or a decode that
// fails outright, wrapped as errs.ErrTypeError.
func tryDecodeElementAndDelimiter(field schema.FieldSpec, data []byte, order endian.EndianEngine) (elem any, consumed int, ok bool, err error) {
	elem, n, derr := decodeFieldElement(field, data, order)
	if derr != nil {
		if errors.Is(derr, errs.ErrIncomplete) {
			if len(data) == 0 {
				return nil, 0, false, nil
			}

			return nil, 0, false, derr
		}

		return nil, 0, false, fmt.Errorf("%w: delimiter lookahead failed: %v", errs.ErrTypeError, derr)
	}

	if len(data[n:]) < len(field.Delimiter) {
		return nil, 0, false, fmt.Errorf("%w: need %d delimiter bytes, got %d", errs.ErrIncomplete, len(field.Delimiter), len(data[n:]))
	}

	if !bytes.HasPrefix(data[n:], field.Delimiter) {
		return nil, 0, false, nil
	}

	return elem, n + len(field.Delimiter), true, nil
}

// decodeDelimitedArray implements a one-element lookahead: decode an
// element+delimiter pair repeatedly until the lookahead cleanly fails (end
// of list) or fails with a genuine decode error.
func decodeDelimitedArray(field schema.FieldSpec, data []byte, order endian.EndianEngine) ([]any, int, error) {
	var elems []any
	pos := 0

	for {
		elem, adv, ok, err := tryDecodeElementAndDelimiter(field, data[pos:], order)
		if err != nil {
			return nil, 0, err
		}
		if !ok {
			break
		}
		elems = append(elems, elem)
		pos += adv
	}

	return elems, pos, nil
}
