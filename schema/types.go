package schema

// FieldType is the sum type of a field's wire shape: a scalar primitive, a
// nested composite, a custom encoder, an enum, or a bit-packed field.
type FieldType int

const (
	FieldPrimitive FieldType = iota
	FieldComposite
	FieldCustomEncoder
	FieldEnum
	FieldBit
)

func (t FieldType) String() string {
	switch t {
	case FieldPrimitive:
		return "primitive"
	case FieldComposite:
		return "composite"
	case FieldCustomEncoder:
		return "custom_encoder"
	case FieldEnum:
		return "enum"
	case FieldBit:
		return "bit"
	default:
		return "unknown"
	}
}

// ArrayShape is the sum type of a field's array cardinality.
type ArrayShape int

const (
	// ArrayNone means the field is a scalar, not an array.
	ArrayNone ArrayShape = iota
	// ArrayFixedCount means the element count is a literal or a dotted
	// reference to a prior field.
	ArrayFixedCount
	// ArrayLengthPrefixed means a 4-byte count precedes the elements.
	ArrayLengthPrefixed
	// ArrayDelimited means elements are separated (and terminated) by a byte
	// pattern.
	ArrayDelimited
)

func (s ArrayShape) String() string {
	switch s {
	case ArrayNone:
		return "none"
	case ArrayFixedCount:
		return "fixed_count"
	case ArrayLengthPrefixed:
		return "length_prefixed"
	case ArrayDelimited:
		return "delimited"
	default:
		return "unknown"
	}
}

// ValueSourceKind is the sum type of where a field's value comes from: a
// caller-supplied literal, a fixed constant, a derived count or size, a
// copy of another field, or an arbitrary closure.
type ValueSourceKind int

const (
	// SourceLiteral means the value is supplied by the caller at
	// construction time.
	SourceLiteral ValueSourceKind = iota
	// SourceStatic means the value is always the declared constant.
	SourceStatic
	// SourceLengthOf means the value is the element/character/byte count of
	// another field.
	SourceLengthOf
	// SourceSizeOf means the value is the serialized byte size of another
	// field, or one of the "body"/"message"/"payload" reserved paths.
	SourceSizeOf
	// SourceValueFrom means the value is copied verbatim from another field.
	SourceValueFrom
	// SourceCompute means the value is produced by an arbitrary closure over
	// the message.
	SourceCompute
)

func (k ValueSourceKind) String() string {
	switch k {
	case SourceLiteral:
		return "literal"
	case SourceStatic:
		return "static"
	case SourceLengthOf:
		return "length_of"
	case SourceSizeOf:
		return "size_of"
	case SourceValueFrom:
		return "value_from"
	case SourceCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// MessageView is the read-only accessor handed to Compute/Condition
// closures and to deep-assignment specs: a bounded view over the message
// rather than the message itself.
type MessageView interface {
	// Get resolves a dotted path against the message instance under view.
	// ok is false if the path was never materialized (e.g. a skipped
	// conditional field).
	Get(path Path) (value any, ok bool, err error)
	// SerializeBytes returns the pre-serialized body the envelope computes
	// headers/footers against.
	SerializeBytes() ([]byte, error)
}

// StructuralSerializer is an alternate whole-field codec (e.g. altfmt.JSONSerializer),
// used as a FieldSpec.Serializer override.
type StructuralSerializer interface {
	ToBytes(v any) ([]byte, error)
	FromBytes(data []byte) (any, error)
}

// EnumSpec describes a FieldEnum field's wire width and optional symbolic
// names.
type EnumSpec struct {
	Size  int
	Names map[int]string
}
