package fieldcodec

import (
	"encoding/binary"
	"testing"

	"github.com/arloliu/packetfabric/errs"
	"github.com/stretchr/testify/require"
)

func TestFixedPoint_RoundTrip(t *testing.T) {
	fp := NewFixedPoint(16, 16, true)

	enc, err := fp.Encode(3.25, binary.BigEndian)
	require.NoError(t, err)
	require.Len(t, enc, 4)

	dec, n, err := fp.Decode(enc, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.InDelta(t, 3.25, dec.(float64), 0.0001)
}

func TestFixedPoint_NegativeAndLittleEndian(t *testing.T) {
	fp := NewFixedPoint(8, 8, true)
	enc, err := fp.Encode(-1.5, binary.LittleEndian)
	require.NoError(t, err)

	dec, _, err := fp.Decode(enc, binary.LittleEndian)
	require.NoError(t, err)
	require.InDelta(t, -1.5, dec.(float64), 0.001)
}

func TestFixedPoint_OutOfRange(t *testing.T) {
	fp := NewFixedPoint(4, 0, true)
	_, err := fp.Encode(100.0, binary.BigEndian)
	require.ErrorIs(t, err, errs.ErrRangeError)
}

func TestEnum_RoundTrip(t *testing.T) {
	e := NewEnum(1, map[int]string{0: "IDLE", 1: "ACTIVE", 2: "ERROR"})

	enc, err := e.Encode(1, binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, enc)

	dec, n, err := e.Decode(enc, binary.LittleEndian)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, dec)

	name, ok := e.Name(dec.(int))
	require.True(t, ok)
	require.Equal(t, "ACTIVE", name)
}

func TestRunLength_RoundTrip(t *testing.T) {
	rl := NewRunLength()
	input := []byte{0xAA, 0xAA, 0xAA, 0xBB, 0xCC, 0xCC}

	enc, err := rl.Encode(input, binary.BigEndian)
	require.NoError(t, err)

	dec, n, err := rl.Decode(enc, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.Equal(t, input, dec)
}

func TestRunLength_Empty(t *testing.T) {
	rl := NewRunLength()
	enc, err := rl.Encode([]byte{}, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0}, enc)

	dec, n, err := rl.Decode(enc, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Empty(t, dec)
}

func TestSevenBitASCII_RoundTrip(t *testing.T) {
	s := NewSevenBitASCII()
	enc, err := s.Encode("HELLO", binary.BigEndian)
	require.NoError(t, err)

	dec, n, err := s.Decode(enc, binary.BigEndian)
	require.NoError(t, err)
	require.Equal(t, len(enc), n)
	require.Equal(t, "HELLO", dec)
}

func TestBit_PanicsStandalone(t *testing.T) {
	b := NewBit(4, false)
	require.Panics(t, func() {
		_, _ = b.Encode(uint64(1), binary.BigEndian)
	})
}
