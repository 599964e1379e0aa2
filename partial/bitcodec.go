package partial

import (
	"fmt"

	"github.com/arloliu/packetfabric/bitio"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
)

// bitPackCursor opens a pack-mode bitio.Cursor; the partial's encode owns a
// single cursor session for its whole field list.
func bitPackCursor() *bitio.Cursor {
	return bitio.NewPackCursor()
}

func flushCursor(c *bitio.Cursor) []byte {
	return c.Flush()
}

// packOne packs a single bit-field value onto the cursor, honoring sign.
func packOne(c *bitio.Cursor, field schema.FieldSpec, value any) error {
	if field.Signed {
		v, err := toInt64(value)
		if err != nil {
			return err
		}

		return bitio.PackSigned(c, v, field.BitWidth)
	}

	v, err := toUint64(value)
	if err != nil {
		return err
	}

	return c.Pack(v, field.BitWidth)
}

// unpackOne unpacks a single bit-field value from the cursor, honoring sign.
func unpackOne(c *bitio.Cursor, field schema.FieldSpec) (any, error) {
	if field.Signed {
		v, err := bitio.UnpackSigned(c, field.BitWidth)
		if err != nil {
			return nil, err
		}

		return v, nil
	}

	v, err := c.Unpack(field.BitWidth)
	if err != nil {
		return nil, err
	}

	return v, nil
}

func decodeBitPacked(spec *schema.PartialSpec, data []byte) (*Instance, int, error) {
	cursor := bitio.NewUnpackCursor(data)
	inst := New(spec)
	view := newView(inst)

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

		if field.Shape == schema.ArrayNone {
			v, err := unpackOne(cursor, field)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q: %w", field.Name, err)
			}
			if field.Source == schema.SourceStatic && !staticEquals(v, field.Static) {
				return nil, 0, fmt.Errorf("%w: field %q decoded %v, expected static %v", errs.ErrStaticMismatch, field.Name, v, field.Static)
			}
			inst.Set(field.Name, v)

			continue
		}

		n, err := resolveArrayCount(inst, field)
		if err != nil {
			return nil, 0, fmt.Errorf("field %q: %w", field.Name, err)
		}
		elems := make([]any, n)
		for i := range n {
			v, err := unpackOne(cursor, field)
			if err != nil {
				return nil, 0, fmt.Errorf("field %q[%d]: %w", field.Name, i, err)
			}
			elems[i] = v
		}
		inst.Set(field.Name, elems)
	}

	cursor.AlignToByte()

	return inst, cursor.BytesConsumed(), nil
}

func toUint64(value any) (uint64, error) {
	switch v := value.(type) {
	case uint64:
		return v, nil
	case uint32:
		return uint64(v), nil
	case uint16:
		return uint64(v), nil
	case uint8:
		return uint64(v), nil
	case uint:
		return uint64(v), nil
	case int:
		return uint64(v), nil
	case int64:
		return uint64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot pack %T as an unsigned bit value", errs.ErrTypeError, value)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("%w: cannot pack %T as a signed bit value", errs.ErrTypeError, value)
	}
}
