package partial

import (
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
)

// Decode reads one partial of spec from the front of data and reports the
// number of bytes consumed. Decode mirrors encode structurally, field by
// field in the same declared order.
func Decode(spec *schema.PartialSpec, data []byte) (*Instance, int, error) {
	if spec.BitPacked {
		return decodeBitPacked(spec, data)
	}

	return decodeByteAligned(spec, data)
}

func decodeByteAligned(spec *schema.PartialSpec, data []byte) (*Instance, int, error) {
	inst := New(spec)
	view := newView(inst)
	order := spec.ByteOrder
	pos := 0

	for _, field := range spec.Fields {
		if field.Condition != nil {
			active, err := field.Condition(view)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q: condition: %w", field.Name, err)
			}
			if !active {
				inst.MarkAbsent(field.Name)

				continue
			}
		}

		if field.Serializer != nil {
			v, n, err := decodeSerializerField(field, data[pos:], order)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q: %w", field.Name, err)
			}
			inst.Set(field.Name, v)
			pos += n

			continue
		}

		if field.Shape != schema.ArrayNone {
			elems, n, err := decodeArray(inst, field, data[pos:], order)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q: %w", field.Name, err)
			}
			inst.Set(field.Name, elems)
			pos += n

			continue
		}

		v, n, err := decodeFieldElement(field, data[pos:], order)
		if err != nil {
			return nil, 0, fmt.Errorf("field %q: %w", field.Name, err)
		}
		if field.Source == schema.SourceStatic && !staticEquals(v, field.Static) {
			return nil, 0, fmt.Errorf("%w: field %q decoded %v, expected static %v", errs.ErrStaticMismatch, field.Name, v, field.Static)
		}
		inst.Set(field.Name, v)
		pos += n
	}

	return inst, pos, nil
}

func decodeSerializerField(field schema.FieldSpec, data []byte, order endian.EndianEngine) (any, int, error) {
	const prefixSize = 4
	if len(data) < prefixSize {
		return nil, 0, fmt.Errorf("%w: need %d bytes for serializer length prefix, got %d", errs.ErrIncomplete, prefixSize, len(data))
	}
	n := int(order.Uint32(data[:prefixSize]))
	if len(data) < prefixSize+n {
		return nil, 0, fmt.Errorf("%w: need %d bytes for serializer payload, got %d", errs.ErrIncomplete, n, len(data)-prefixSize)
	}

	v, err := field.Serializer.FromBytes(data[prefixSize : prefixSize+n])
	if err != nil {
		return nil, 0, err
	}

	return v, prefixSize + n, nil
}
