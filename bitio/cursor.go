// Package bitio provides MSB-first bit packing and unpacking over a byte
// buffer, the primitive the rest of the codec builds bit-packed partials and
// custom bit-width field encoders on top of.
//
// A Cursor holds at most one partially-filled byte at a time and drains it as
// soon as it fills, mirroring the way arloliu-mebo's section.NumericFlag
// packs multiple sub-byte flags into a single header word (via its bit
// masks), generalized here to an arbitrary run of fields of arbitrary width.
package bitio

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
)

// MaxBits is the largest bit width a single Pack/Unpack call accepts.
const MaxBits = 64

// Cursor packs values into, or unpacks values out of, a contiguous MSB-first
// bit stream. A Cursor is either in pack mode (built with NewPackCursor) or
// unpack mode (built with NewUnpackCursor); calling the wrong operation for
// the mode panics, since that is always a programmer error in this codec.
type Cursor struct {
	packing bool

	// out accumulates emitted bytes in pack mode.
	out []byte
	// in is the source buffer in unpack mode.
	in []byte
	// inPos is the next unread byte offset of in.
	inPos int

	// acc holds the bits of the current partial byte; the pending ones sit
	// in its lowest accBits bits. accBits is always in [0,8).
	acc     uint64
	accBits int
}

// NewPackCursor creates a Cursor that accumulates packed bits into a growing
// output buffer.
func NewPackCursor() *Cursor {
	return &Cursor{packing: true}
}

// NewUnpackCursor creates a Cursor that reads packed bits from data.
func NewUnpackCursor(data []byte) *Cursor {
	return &Cursor{in: data}
}

func checkBits(bits int) error {
	if bits <= 0 || bits > MaxBits {
		return fmt.Errorf("%w: bit width %d out of [1,%d]", errs.ErrRangeError, bits, MaxBits)
	}

	return nil
}

// Pack appends the low bits of value (MSB-first) to the cursor's output.
// Completed bytes are emitted to the output buffer as they fill.
func (c *Cursor) Pack(value uint64, bits int) error {
	if !c.packing {
		panic("bitio: Pack called on an unpack cursor")
	}
	if err := checkBits(bits); err != nil {
		return err
	}

	if bits < MaxBits {
		mask := uint64(1)<<uint(bits) - 1
		if value&^mask != 0 {
			return fmt.Errorf("%w: value %d does not fit in %d unsigned bits", errs.ErrRangeError, value, bits)
		}
	}

	remaining := bits
	for remaining > 0 {
		free := 8 - c.accBits
		take := remaining
		if take > free {
			take = free
		}

		shift := uint(remaining - take)
		chunkMask := uint64(1)<<uint(take) - 1
		chunk := (value >> shift) & chunkMask

		c.acc = (c.acc << uint(take)) | chunk
		c.accBits += take
		remaining -= take

		if c.accBits == 8 {
			c.out = append(c.out, byte(c.acc))
			c.acc = 0
			c.accBits = 0
		}
	}

	return nil
}

// PackSigned converts value into its two's-complement unsigned representation
// for the given bit width, range-checks it, and packs it.
func PackSigned(c *Cursor, value int64, bits int) error {
	if err := checkBits(bits); err != nil {
		return err
	}

	maxVal := int64(1)<<uint(bits-1) - 1
	minVal := -(int64(1) << uint(bits-1))
	if value > maxVal || value < minVal {
		return fmt.Errorf("%w: value %d out of range [%d,%d] for %d signed bits",
			errs.ErrRangeError, value, minVal, maxVal, bits)
	}

	var uval uint64
	if value < 0 {
		uval = uint64(value + (int64(1) << uint(bits)))
	} else {
		uval = uint64(value)
	}

	return c.Pack(uval, bits)
}

// Flush zero-pads any remaining bits to a byte boundary, emits the final
// byte (if any bits were pending), and returns the full output buffer
// produced by this cursor.
func (c *Cursor) Flush() []byte {
	if !c.packing {
		panic("bitio: Flush called on an unpack cursor")
	}

	if c.accBits > 0 {
		shift := uint(8 - c.accBits)
		c.out = append(c.out, byte(c.acc<<shift))
		c.acc = 0
		c.accBits = 0
	}

	return c.out
}

// Unpack pulls bits bits (MSB-first) from the input buffer and returns them
// as an unsigned integer, consuming whole input bytes as needed.
func (c *Cursor) Unpack(bits int) (uint64, error) {
	if c.packing {
		panic("bitio: Unpack called on a pack cursor")
	}
	if err := checkBits(bits); err != nil {
		return 0, err
	}

	var result uint64
	remaining := bits
	for remaining > 0 {
		if c.accBits == 0 {
			if c.inPos >= len(c.in) {
				return 0, fmt.Errorf("%w: need %d more bits, input exhausted", errs.ErrIncomplete, remaining)
			}
			c.acc = uint64(c.in[c.inPos])
			c.inPos++
			c.accBits = 8
		}

		take := remaining
		if take > c.accBits {
			take = c.accBits
		}

		shift := uint(c.accBits - take)
		chunkMask := uint64(1)<<uint(take) - 1
		chunk := (c.acc >> shift) & chunkMask

		result = (result << uint(take)) | chunk
		c.accBits -= take
		remaining -= take
	}

	return result, nil
}

// UnpackSigned unpacks bits bits and interprets them as a two's-complement
// signed integer.
func UnpackSigned(c *Cursor, bits int) (int64, error) {
	u, err := c.Unpack(bits)
	if err != nil {
		return 0, err
	}

	if u&(1<<uint(bits-1)) != 0 {
		return int64(u) - (int64(1) << uint(bits)), nil
	}

	return int64(u), nil
}

// BytesConsumed returns the count of input bytes fully or partially consumed
// so far in unpack mode.
func (c *Cursor) BytesConsumed() int {
	return c.inPos
}

// AlignToByte discards any pending fractional bits in unpack mode, matching
// the zero-padding Flush added at the end of a bit-packed partial.
func (c *Cursor) AlignToByte() {
	c.acc = 0
	c.accBits = 0
}
