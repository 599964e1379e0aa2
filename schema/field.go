package schema

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/fieldcodec"
	"github.com/arloliu/packetfabric/internal/options"
	"github.com/arloliu/packetfabric/wire"
)

// FieldSpec describes one field inside a partial or message. Specs are
// built once through NewField and are immutable thereafter; the
// partial/message codecs only ever read from them.
type FieldSpec struct {
	Name string
	Type FieldType

	Composite *PartialSpec            // when Type == FieldComposite
	Encoder   fieldcodec.FieldEncoder // when Type == FieldCustomEncoder
	Enum      EnumSpec                // when Type == FieldEnum
	BitWidth  int                     // when Type == FieldBit (or a scalar field packed in bit mode)
	Signed    bool
	Primitive wire.Tag // when Type == FieldPrimitive

	Shape      ArrayShape
	FixedCount int    // ArrayFixedCount literal; -1 when CountPath is set
	CountPath  Path   // ArrayFixedCount dotted reference
	Delimiter  []byte // ArrayDelimited

	Source  ValueSourceKind
	Literal any    // SourceLiteral default supplied at construction
	Static  any    // SourceStatic constant
	RefPath Path   // LengthOf/SizeOf/ValueFrom target, or a reserved size_of literal
	Compute func(ctx MessageView) (any, error)

	Condition  func(ctx MessageView) (bool, error)
	Serializer StructuralSerializer
	DeepAssign map[string]FieldSpec // dotted sub-path -> spec, Composite fields only
}

// FieldOption configures a FieldSpec under construction. It is the
// schema-specific instantiation of arloliu-mebo's generic functional-option
// helper (internal/options.Option[T]), the same idiom that configures
// arloliu-mebo/blob's NumericEncoder/TextEncoder.
type FieldOption = options.Option[*FieldSpec]

// NewField builds a FieldSpec named name with the given type, applying opts
// in order. An option returning an error aborts construction with that error.
func NewField(name string, typ FieldType, opts ...FieldOption) (FieldSpec, error) {
	spec := FieldSpec{
		Name:       name,
		Type:       typ,
		FixedCount: -1,
	}

	if err := options.Apply(&spec, opts...); err != nil {
		return FieldSpec{}, fmt.Errorf("schema: field %q: %w", name, err)
	}

	if err := spec.validate(); err != nil {
		return FieldSpec{}, fmt.Errorf("schema: field %q: %w", name, err)
	}

	return spec, nil
}

// MustNewField is NewField but panics on error, for package-level field
// tables built at init time where a construction failure is a programmer
// error.
func MustNewField(name string, typ FieldType, opts ...FieldOption) FieldSpec {
	spec, err := NewField(name, typ, opts...)
	if err != nil {
		panic(err)
	}

	return spec
}

func (f *FieldSpec) validate() error {
	switch f.Type {
	case FieldComposite:
		if f.Composite == nil {
			return fmt.Errorf("%w: composite field requires WithComposite", errs.ErrTypeError)
		}
	case FieldCustomEncoder:
		if f.Encoder == nil {
			return fmt.Errorf("%w: custom-encoder field requires WithEncoder", errs.ErrTypeError)
		}
	case FieldEnum:
		if f.Enum.Size <= 0 {
			return fmt.Errorf("%w: enum field requires WithEnum with a positive size", errs.ErrTypeError)
		}
	case FieldBit:
		if f.BitWidth <= 0 || f.BitWidth > 64 {
			return fmt.Errorf("%w: bit field width must be in (0, 64], got %d", errs.ErrRangeError, f.BitWidth)
		}
	case FieldPrimitive:
		if _, ok := f.Primitive.FixedSize(); !ok && f.Primitive != wire.Str && f.Primitive != wire.Bytes {
			return fmt.Errorf("%w: unrecognized primitive tag %v", errs.ErrTypeError, f.Primitive)
		}
	}

	if f.Shape == ArrayFixedCount && f.FixedCount < 0 && f.CountPath == nil {
		return fmt.Errorf("%w: fixed-count array requires WithArrayFixedCount or WithArrayCountPath", errs.ErrTypeError)
	}
	if f.Shape == ArrayDelimited && len(f.Delimiter) == 0 {
		return fmt.Errorf("%w: delimited array requires WithArrayDelimited", errs.ErrTypeError)
	}

	return nil
}

// HasStaticSize reports whether this field's wire size is known without
// inspecting an instance. Header and footer fields must satisfy this, since
// the envelope needs their size before any message body exists.
func (f *FieldSpec) HasStaticSize() bool {
	switch f.Type {
	case FieldPrimitive:
		_, fixed := f.Primitive.FixedSize()
		return fixed
	case FieldEnum:
		return f.Enum.Size > 0
	case FieldBit:
		return true
	case FieldCustomEncoder:
		if f.Encoder == nil {
			return false
		}
		_, ok := f.Encoder.Size()

		return ok
	default:
		return false
	}
}
