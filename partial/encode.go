package partial

import (
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/fieldcodec"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
)

// Encode serializes inst per its spec's declared mode, byte-aligned or
// bit-packed.
func Encode(inst *Instance) ([]byte, error) {
	if inst.Spec.BitPacked {
		return encodeBitPacked(inst)
	}

	return encodeByteAligned(inst)
}

func encodeByteAligned(inst *Instance) ([]byte, error) {
	var out []byte
	order := inst.Spec.ByteOrder
	view := newView(inst)

	for _, field := range inst.Spec.Fields {
		if field.Condition != nil {
			active, err := field.Condition(view)
			if err != nil {
				return nil, fmt.Errorf("field %q: condition: %w", field.Name, err)
			}
			if !active {
				continue
			}
		}

		value, present := inst.Get(field.Name)
		if field.Source == schema.SourceStatic {
			value, present = field.Static, true
		}
		if !present {
			return nil, fmt.Errorf("%w: field %q has no value to encode", errs.ErrTypeError, field.Name)
		}

		b, err := encodeFieldValue(field, value, order)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field.Name, err)
		}
		out = append(out, b...)
	}

	return out, nil
}

func encodeBitPacked(inst *Instance) ([]byte, error) {
	cursor := bitPackCursor()
	view := newView(inst)

	for _, field := range inst.Spec.Fields {
		if field.Condition != nil {
			active, err := field.Condition(view)
			if err != nil {
				return nil, fmt.Errorf("field %q: condition: %w", field.Name, err)
			}
			if !active {
				continue
			}
		}

		value, present := inst.Get(field.Name)
		if field.Source == schema.SourceStatic {
			value, present = field.Static, true
		}
		if !present {
			return nil, fmt.Errorf("%w: field %q has no value to encode", errs.ErrTypeError, field.Name)
		}

		if field.Shape == schema.ArrayNone {
			if err := packOne(cursor, field, value); err != nil {
				return nil, fmt.Errorf("field %q: %w", field.Name, err)
			}

			continue
		}

		elems, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: field %q array value must be []any, got %T", errs.ErrTypeError, field.Name, value)
		}
		for _, elem := range elems {
			if err := packOne(cursor, field, elem); err != nil {
				return nil, fmt.Errorf("field %q: %w", field.Name, err)
			}
		}
	}

	return flushCursor(cursor), nil
}

// encodeFieldValue serializes a single field's declared value, accounting for
// its array shape and any serializer override.
func encodeFieldValue(field schema.FieldSpec, value any, order endian.EndianEngine) ([]byte, error) {
	if field.Serializer != nil {
		payload, err := field.Serializer.ToBytes(value)
		if err != nil {
			return nil, err
		}
		prefix := make([]byte, wire.LengthPrefixSize)
		order.PutUint32(prefix, uint32(len(payload)))

		return append(prefix, payload...), nil
	}

	if field.Shape == schema.ArrayNone {
		return encodeFieldElement(field, value, order)
	}

	return encodeArray(field, value, order)
}

// encodeFieldElement serializes one non-array element of field.
func encodeFieldElement(field schema.FieldSpec, value any, order endian.EndianEngine) ([]byte, error) {
	switch field.Type {
	case schema.FieldPrimitive:
		return wire.Encode(field.Primitive, value, order)
	case schema.FieldComposite:
		nested, ok := value.(*Instance)
		if !ok {
			return nil, fmt.Errorf("%w: composite field requires a *partial.Instance value, got %T", errs.ErrTypeError, value)
		}

		return Encode(nested)
	case schema.FieldCustomEncoder:
		return field.Encoder.Encode(value, order)
	case schema.FieldEnum:
		enc := fieldcodec.NewEnum(field.Enum.Size, field.Enum.Names)

		return enc.Encode(value, order)
	default:
		return nil, fmt.Errorf("%w: field %q has unsupported type %s for byte-aligned encode", errs.ErrTypeError, field.Name, field.Type)
	}
}
