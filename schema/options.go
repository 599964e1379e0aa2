package schema

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/fieldcodec"
	"github.com/arloliu/packetfabric/internal/options"
	"github.com/arloliu/packetfabric/wire"
)

// WithComposite marks the field as a nested partial.
func WithComposite(spec *PartialSpec) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Composite = spec })
}

// WithEncoder installs a custom FieldEncoder; the field's wire form is
// entirely the encoder's output, with no framework-added length prefix.
func WithEncoder(enc fieldcodec.FieldEncoder) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Encoder = enc })
}

// WithEnum installs an enum wire width and symbolic name table.
func WithEnum(size int, names map[int]string) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Enum = EnumSpec{Size: size, Names: names} })
}

// WithBitWidth sets a bit field's width and signedness. Required for
// Type == FieldBit, and also used to pack a primitive-typed field into a
// bit-mode partial.
func WithBitWidth(width int, signed bool) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.BitWidth = width
		f.Signed = signed
	})
}

// WithPrimitive sets a scalar field's wire tag.
func WithPrimitive(tag wire.Tag) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Primitive = tag })
}

// WithArrayFixedCount declares a fixed-count array of n elements.
func WithArrayFixedCount(n int) FieldOption {
	return options.New(func(f *FieldSpec) error {
		if n < 0 {
			return fmt.Errorf("%w: fixed array count must be >= 0, got %d", errs.ErrRangeError, n)
		}
		f.Shape = ArrayFixedCount
		f.FixedCount = n

		return nil
	})
}

// WithArrayCountPath declares a fixed-count array whose count is a dotted
// reference to a field already set earlier in declaration order.
func WithArrayCountPath(dotted string) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Shape = ArrayFixedCount
		f.FixedCount = -1
		f.CountPath = ParsePath(dotted)
	})
}

// WithArrayLengthPrefixed declares a 4-byte-count-prefixed array.
func WithArrayLengthPrefixed() FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Shape = ArrayLengthPrefixed })
}

// WithArrayDelimited declares a delimiter-terminated array.
func WithArrayDelimited(delimiter []byte) FieldOption {
	return options.New(func(f *FieldSpec) error {
		if len(delimiter) == 0 {
			return fmt.Errorf("%w: delimiter must not be empty", errs.ErrTypeError)
		}
		f.Shape = ArrayDelimited
		f.Delimiter = delimiter

		return nil
	})
}

// WithLiteral sets the caller-supplied default value.
func WithLiteral(v any) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceLiteral
		f.Literal = v
	})
}

// WithStatic marks the field as always serializing the constant v; any
// caller-supplied value is ignored.
func WithStatic(v any) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceStatic
		f.Static = v
	})
}

// WithLengthOf computes the field's value as the element/character/byte
// count of the field at dotted path.
func WithLengthOf(dotted string) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceLengthOf
		f.RefPath = ParsePath(dotted)
	})
}

// WithSizeOf computes the field's value as the serialized byte size of the
// field at dotted path, or one of the reserved "body"/"message"/"payload"
// literals meaning the whole serialized body.
func WithSizeOf(dotted string) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceSizeOf
		f.RefPath = ParsePath(dotted)
	})
}

// WithValueFrom copies the raw value at dotted path into this field.
func WithValueFrom(dotted string) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceValueFrom
		f.RefPath = ParsePath(dotted)
	})
}

// WithCompute sets a pure function from the message instance to the field's
// value.
func WithCompute(fn func(ctx MessageView) (any, error)) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		f.Source = SourceCompute
		f.Compute = fn
	})
}

// WithCondition marks the field conditional: when the predicate is false the
// field is skipped by both encode and decode.
func WithCondition(fn func(ctx MessageView) (bool, error)) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Condition = fn })
}

// WithSerializer installs an alternate whole-field codec; the field is
// emitted as a 4-byte length prefix followed by the serializer's output.
func WithSerializer(s StructuralSerializer) FieldOption {
	return options.NoError(func(f *FieldSpec) { f.Serializer = s })
}

// WithDeepAssign attaches a computed sub-field spec to a composite field,
// keyed by its dotted path inside the nested composite.
func WithDeepAssign(subPath string, spec FieldSpec) FieldOption {
	return options.NoError(func(f *FieldSpec) {
		if f.DeepAssign == nil {
			f.DeepAssign = make(map[string]FieldSpec)
		}
		f.DeepAssign[subPath] = spec
	})
}
