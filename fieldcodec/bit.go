package fieldcodec

import "encoding/binary"

// Bit marks a field as participating in the enclosing partial's bitio.Cursor
// rather than being independently byte-serialized. It is never invoked
// through Encode/Decode standalone (those panic). The partial package packs
// schema.FieldBit fields by their BitWidth and Signed settings on the shared
// cursor directly and never calls a Bit.
type Bit struct {
	Width  int
	Signed bool
}

// NewBit constructs a Bit field marker of the given width and signedness.
func NewBit(width int, signed bool) *Bit {
	return &Bit{Width: width, Signed: signed}
}

func (b *Bit) Encode(value any, order binary.ByteOrder) ([]byte, error) {
	panic("fieldcodec: Bit fields are packed by the enclosing partial's bitio.Cursor, not called standalone")
}

func (b *Bit) Decode(data []byte, order binary.ByteOrder) (any, int, error) {
	panic("fieldcodec: Bit fields are unpacked by the enclosing partial's bitio.Cursor, not called standalone")
}

// Size reports that Bit has no standalone byte size: it only ever
// participates in a bit-packed partial, never a byte-aligned header or
// footer.
func (b *Bit) Size() (int, bool) { return 0, false }

var _ FieldEncoder = (*Bit)(nil)
