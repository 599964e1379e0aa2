package fieldcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/arloliu/packetfabric/bitio"
	"github.com/arloliu/packetfabric/errs"
)

// SevenBitASCII packs a string as a 2-byte character count followed by the
// characters packed 7 bits each (8 characters fit in 7 bytes instead of 8).
type SevenBitASCII struct{}

// NewSevenBitASCII constructs a SevenBitASCII encoder.
func NewSevenBitASCII() *SevenBitASCII { return &SevenBitASCII{} }

func (SevenBitASCII) Encode(value any, order binary.ByteOrder) ([]byte, error) {
	v, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("%w: SevenBitASCII requires a string, got %T", errs.ErrTypeError, value)
	}

	count := make([]byte, 2)
	order.PutUint16(count, uint16(len(v)))

	cursor := bitio.NewPackCursor()
	for _, r := range v {
		if err := cursor.Pack(uint64(r)&0x7F, 7); err != nil {
			return nil, err
		}
	}
	packed := cursor.Flush()

	return append(count, packed...), nil
}

func (SevenBitASCII) Decode(data []byte, order binary.ByteOrder) (any, int, error) {
	if len(data) < 2 {
		return nil, 0, fmt.Errorf("%w: need 2 bytes for character count, got %d", errs.ErrIncomplete, len(data))
	}

	count := int(order.Uint16(data[:2]))
	packedBytes := (count*7 + 7) / 8
	if len(data) < 2+packedBytes {
		return nil, 0, fmt.Errorf("%w: need %d packed bytes, got %d", errs.ErrIncomplete, packedBytes, len(data)-2)
	}

	cursor := bitio.NewUnpackCursor(data[2 : 2+packedBytes])
	chars := make([]byte, count)
	for i := range count {
		v, err := cursor.Unpack(7)
		if err != nil {
			return nil, 0, err
		}
		chars[i] = byte(v)
	}

	return string(chars), 2 + packedBytes, nil
}

// Size reports that SevenBitASCII has no fixed wire size: it varies with
// the packed string's character count, so it cannot be used as a header or
// footer field.
func (SevenBitASCII) Size() (int, bool) { return 0, false }
