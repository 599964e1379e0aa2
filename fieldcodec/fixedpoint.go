package fieldcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/packetfabric/errs"
)

// FixedPoint encodes a float64 as a fixed-point integer: IntBits.FracBits,
// stored in (IntBits+FracBits) bits rounded up to whole bytes.
//
// Example: FixedPoint{IntBits: 16, FracBits: 16, Signed: true} stores a
// 16.16 fixed-point number in 4 bytes.
type FixedPoint struct {
	IntBits  int
	FracBits int
	Signed   bool
}

// NewFixedPoint constructs a FixedPoint encoder.
func NewFixedPoint(intBits, fracBits int, signed bool) *FixedPoint {
	return &FixedPoint{IntBits: intBits, FracBits: fracBits, Signed: signed}
}

func (f *FixedPoint) totalBits() int { return f.IntBits + f.FracBits }
func (f *FixedPoint) byteSize() int  { return (f.totalBits() + 7) / 8 }
func (f *FixedPoint) scale() float64 { return float64(int64(1) << uint(f.FracBits)) }

// Size reports FixedPoint's fixed wire size; it is always known ahead of
// any particular value, so ok is always true.
func (f *FixedPoint) Size() (int, bool) { return f.byteSize(), true }

// Encode multiplies value by 2^FracBits and stores it as a (IntBits+FracBits)
// bit integer in byteSize() bytes.
func (f *FixedPoint) Encode(value any, order binary.ByteOrder) ([]byte, error) {
	v, ok := value.(float64)
	if !ok {
		return nil, fmt.Errorf("%w: FixedPoint requires a float64, got %T", errs.ErrTypeError, value)
	}

	fixed := int64(v * f.scale())
	size := f.byteSize()

	if f.Signed {
		maxVal := int64(1)<<uint(f.totalBits()-1) - 1
		minVal := -(int64(1) << uint(f.totalBits()-1))
		if fixed > maxVal || fixed < minVal {
			return nil, fmt.Errorf("%w: value %v out of range for %d.%d fixed point", errs.ErrRangeError, v, f.IntBits, f.FracBits)
		}
	} else {
		maxVal := int64(1)<<uint(f.totalBits()) - 1
		if fixed > maxVal || fixed < 0 {
			return nil, fmt.Errorf("%w: value %v out of range for unsigned %d.%d fixed point", errs.ErrRangeError, v, f.IntBits, f.FracBits)
		}
	}

	buf := make([]byte, 8)
	order.PutUint64(buf, uint64(fixed))

	out := make([]byte, size)
	// PutUint64 always writes in the requested byte order over all 8 bytes;
	// keep the size-correct end of the buffer depending on endianness.
	if isBigEndian(order) {
		copy(out, buf[8-size:])
	} else {
		copy(out, buf[:size])
	}

	return out, nil
}

// Decode reads byteSize() bytes and divides by 2^FracBits to recover the
// float64 value.
func (f *FixedPoint) Decode(data []byte, order binary.ByteOrder) (any, int, error) {
	size := f.byteSize()
	if len(data) < size {
		return nil, 0, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrIncomplete, size, len(data))
	}

	buf := make([]byte, 8)
	if isBigEndian(order) {
		copy(buf[8-size:], data[:size])
	} else {
		copy(buf[:size], data[:size])
	}

	raw := order.Uint64(buf)

	var fixed int64
	if f.Signed {
		fixed = signExtend(int64(raw), f.totalBits())
	} else {
		fixed = int64(raw)
	}

	return float64(fixed) / f.scale(), size, nil
}

func signExtend(v int64, bits int) int64 {
	shift := uint(64 - bits)

	return v << shift >> shift
}

func isBigEndian(order binary.ByteOrder) bool {
	return order == binary.BigEndian
}
