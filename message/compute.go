package message

import (
	"fmt"
	"unicode/utf8"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/partial"
	"github.com/arloliu/packetfabric/schema"
)

// ResolveFieldValue computes field's current value in m's context and
// coerces it to field's wire type, without writing it back onto any
// instance. It is exported for the protocol package's header/footer value
// computation and its decode-time recompute-and-compare validation pass,
// which both need a field's value resolved against an already-materialized
// message rather than m's own declared fields.
func ResolveFieldValue(m *Message, field schema.FieldSpec) (any, error) {
	raw, err := resolveComputedValue(m, field, m.View())
	if err != nil {
		return nil, err
	}

	return convertToFieldType(raw, field)
}

// resolveComputedValue produces the raw value for a length_of/size_of/
// value_from/compute field.
func resolveComputedValue(m *Message, field schema.FieldSpec, view schema.MessageView) (any, error) {
	switch field.Source {
	case schema.SourceLengthOf:
		return lengthOf(m, field.RefPath)
	case schema.SourceSizeOf:
		return sizeOf(m, field.RefPath, view)
	case schema.SourceValueFrom:
		v, ok, err := partial.Resolve(m.inst, field.RefPath)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: value_from target %q has no value", errs.ErrReferenceError, field.RefPath)
		}

		return v, nil
	case schema.SourceCompute:
		if field.Compute == nil {
			return nil, fmt.Errorf("%w: compute field %q has no closure", errs.ErrTypeError, field.Name)
		}

		return field.Compute(view)
	default:
		return nil, fmt.Errorf("%w: field %q has no computed value source", errs.ErrTypeError, field.Name)
	}
}

// lengthOf returns the element/character/byte count of the value at path:
// slice length for arrays, rune count for strings, byte count for []byte.
func lengthOf(m *Message, path schema.Path) (any, error) {
	v, ok, err := partial.Resolve(m.inst, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: length_of target %q has no value", errs.ErrReferenceError, path)
	}

	switch val := v.(type) {
	case []any:
		return len(val), nil
	case string:
		return utf8.RuneCountInString(val), nil
	case []byte:
		return len(val), nil
	default:
		return nil, fmt.Errorf("%w: length_of target %q is not an array, string, or byte slice (got %T)", errs.ErrTypeError, path, v)
	}
}

// sizeOf returns the serialized byte size of the value at path, or of the
// whole message body when path is one of the reserved literals.
func sizeOf(m *Message, path schema.Path, view schema.MessageView) (any, error) {
	if path.IsReserved() {
		b, err := view.SerializeBytes()
		if err != nil {
			return nil, err
		}

		return len(b), nil
	}

	target, owner, ok := lookupFieldSpec(m.Spec, path)
	if !ok {
		return nil, fmt.Errorf("%w: size_of target %q not found in schema", errs.ErrReferenceError, path)
	}

	v, ok, err := partial.Resolve(m.inst, path)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: size_of target %q has no value", errs.ErrReferenceError, path)
	}

	singleton, err := schema.NewPartialSpec("$size_of", owner.ByteOrder, false, target)
	if err != nil {
		return nil, fmt.Errorf("size_of %q: %w", path, err)
	}

	inst := partial.New(singleton)
	inst.Set(target.Name, v)

	b, err := partial.Encode(inst)
	if err != nil {
		return nil, fmt.Errorf("size_of %q: %w", path, err)
	}

	return len(b), nil
}

// lookupFieldSpec walks spec's fields, descending through composite
// sub-specs, to find the FieldSpec the dotted path ultimately names. It
// returns that field plus the PartialSpec that directly owns it.
func lookupFieldSpec(spec *schema.PartialSpec, path schema.Path) (schema.FieldSpec, *schema.PartialSpec, bool) {
	if len(path) == 0 {
		return schema.FieldSpec{}, nil, false
	}

	field, ok := spec.FieldByName(path[0])
	if !ok {
		return schema.FieldSpec{}, nil, false
	}

	if len(path) == 1 {
		return field, spec, true
	}

	if field.Type != schema.FieldComposite || field.Composite == nil {
		return schema.FieldSpec{}, nil, false
	}

	return lookupFieldSpec(field.Composite, path[1:])
}

// convertToFieldType coerces a computed raw value (almost always a plain Go
// int from lengthOf/sizeOf) into the exact Go type the target field's wire
// tag requires, since wire.Encode and the bit codec both match on concrete
// type.
func convertToFieldType(raw any, field schema.FieldSpec) (any, error) {
	switch field.Type {
	case schema.FieldBit:
		n, err := asInt64(raw)
		if err != nil {
			return nil, err
		}
		if field.Signed {
			return n, nil
		}

		return uint64(n), nil //nolint:gosec // range is checked at pack time

	case schema.FieldEnum:
		n, err := asInt64(raw)
		if err != nil {
			return nil, err
		}

		return int(n), nil

	case schema.FieldPrimitive:
		n, isInt := raw.(int)
		if !isInt {
			return raw, nil
		}

		switch field.Primitive.String() {
		case "int8":
			return int8(n), nil
		case "uint8":
			return uint8(n), nil
		case "int16":
			return int16(n), nil
		case "uint16":
			return uint16(n), nil
		case "int32":
			return int32(n), nil
		case "uint32":
			return uint32(n), nil
		case "int64", "int":
			return int64(n), nil
		case "uint64":
			return uint64(n), nil
		default:
			return raw, nil
		}

	default:
		return raw, nil
	}
}

func asInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: expected a computed integer value, got %T", errs.ErrTypeError, raw)
	}
}
