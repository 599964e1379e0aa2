package schema

import (
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
)

// PartialSpec is an ordered field list plus a byte-order choice and a
// byte-aligned/bit-packed mode flag. A partial is a value type: instances
// carry one value per declared field, materialized at runtime by the
// partial package.
type PartialSpec struct {
	Name      string
	Fields    []FieldSpec
	ByteOrder endian.EndianEngine
	BitPacked bool
}

// NewPartialSpec validates fields against the bit/byte exclusivity rule —
// mixing bit-packed and byte-aligned fields inside one partial is
// forbidden — and returns the assembled spec.
func NewPartialSpec(name string, order endian.EndianEngine, bitPacked bool, fields ...FieldSpec) (*PartialSpec, error) {
	if order == nil {
		order = endian.GetBigEndianEngine()
	}

	hasBitField := false
	for _, f := range fields {
		if f.Type == FieldBit {
			hasBitField = true
		} else if bitPacked && f.BitWidth == 0 {
			return nil, fmt.Errorf("%w: partial %q declared bit-packed but field %q has no bit width", errs.ErrBitByteModeMixed, name, f.Name)
		}
	}

	if bitPacked && !hasBitField {
		return nil, fmt.Errorf("%w: partial %q declared bit-packed but has no bit fields", errs.ErrBitByteModeMixed, name)
	}
	if !bitPacked && hasBitField {
		return nil, fmt.Errorf("%w: partial %q has bit fields but is not declared bit-packed", errs.ErrBitByteModeMixed, name)
	}

	return &PartialSpec{
		Name:      name,
		Fields:    fields,
		ByteOrder: order,
		BitPacked: bitPacked,
	}, nil
}

// FieldByName returns the spec for name, and whether it was found.
func (p *PartialSpec) FieldByName(name string) (FieldSpec, bool) {
	for _, f := range p.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return FieldSpec{}, false
}

// IndexOf returns the declaration-order index of the field named name, or -1.
func (p *PartialSpec) IndexOf(name string) int {
	for i, f := range p.Fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}

// HasStaticSize reports whether every field in the partial has a statically
// computable size, as required of header/footer field lists.
func (p *PartialSpec) HasStaticSize() bool {
	for i := range p.Fields {
		if !p.Fields[i].HasStaticSize() {
			return false
		}
	}

	return true
}
