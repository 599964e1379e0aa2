package protocol

import (
	"errors"
	"hash/crc32"
	"testing"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
	"github.com/stretchr/testify/require"
)

func mustMessage(t *testing.T, spec *schema.PartialSpec) *message.Message {
	t.Helper()
	m, err := message.New(spec)
	require.NoError(t, err)

	return m
}

// A Ping message with a single uint32 seq field, big-endian envelope, no
// headers/footers, encodes to `00 04 "Ping" 00 00 00 07`.
func TestProtocol_SimpleEnvelope(t *testing.T) {
	seq := schema.MustNewField("seq", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	bodySpec, err := schema.NewPartialSpec("Ping", endian.GetBigEndianEngine(), false, seq)
	require.NoError(t, err)

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Ping", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	msg.Set("seq", uint32(7))

	out, err := proto.Encode(msg)
	require.NoError(t, err)

	expected := []byte{0, 4}
	expected = append(expected, []byte("Ping")...)
	expected = append(expected, 0, 0, 0, 7)
	require.Equal(t, expected, out)
}

// A Frame message with a bytes data field and a header computed as
// size_of("body").
func TestProtocol_SizeOfHeader(t *testing.T) {
	data := schema.MustNewField("data", schema.FieldPrimitive, schema.WithPrimitive(wire.Bytes))
	bodySpec, err := schema.NewPartialSpec("Frame", endian.GetBigEndianEngine(), false, data)
	require.NoError(t, err)

	size := schema.MustNewField("size", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32), schema.WithSizeOf("body"))

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.SetHeaders(size))
	require.NoError(t, proto.Register("Frame", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	msg.Set("data", []byte("ABC"))

	out, err := proto.Encode(msg)
	require.NoError(t, err)

	expected := []byte{0, 5}
	expected = append(expected, []byte("Frame")...)
	expected = append(expected, 0, 0, 0, 7) // size_of("body") = 4-byte length prefix + 3-byte payload
	expected = append(expected, 0, 0, 0, 3)
	expected = append(expected, []byte("ABC")...)
	require.Equal(t, expected, out)
}

// Splitting an encoded message into two chunks fed to successive Decode
// calls with the same source ID returns nothing, then the reassembled
// message with an empty remainder.
func TestProtocol_ChunkedReassembly(t *testing.T) {
	seq := schema.MustNewField("seq", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	bodySpec, err := schema.NewPartialSpec("Ping", endian.GetBigEndianEngine(), false, seq)
	require.NoError(t, err)

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Ping", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	msg.Set("seq", uint32(7))
	full, err := proto.Encode(msg)
	require.NoError(t, err)

	result, remainder, err := proto.Decode(full[:1], "s1")
	require.NoError(t, err)
	require.Nil(t, result)
	require.Nil(t, remainder)

	result, remainder, err = proto.Decode(full[1:], "s1")
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Nil(t, result.Invalid)
	require.Empty(t, remainder)

	seqVal, ok := result.Message.Get("seq")
	require.True(t, ok)
	require.Equal(t, uint32(7), seqVal)
}

// Registering the same message class twice in one protocol fails;
// registering it once per each of two protocols succeeds independently.
func TestProtocol_DuplicateRegistration(t *testing.T) {
	seq := schema.MustNewField("seq", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	bodySpec, err := schema.NewPartialSpec("Ping", endian.GetBigEndianEngine(), false, seq)
	require.NoError(t, err)
	factory := func() *message.Message { return mustMessage(t, bodySpec) }

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Ping", factory))
	err = proto.Register("Ping", factory)
	require.ErrorIs(t, err, errs.ErrDuplicateMessageName)

	protoB := New(endian.GetBigEndianEngine())
	require.NoError(t, protoB.Register("Ping", factory))
}

// Decoding a buffer whose wire bytes for a static field are not the
// declared constant yields an InvalidMessage wrapping ErrStaticMismatch.
func TestProtocol_StaticFieldMismatch(t *testing.T) {
	magic := schema.MustNewField("magic", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithStatic(uint8(0xAB)))
	bodySpec, err := schema.NewPartialSpec("Magic", endian.GetBigEndianEngine(), false, magic)
	require.NoError(t, err)

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Magic", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	out, err := proto.Encode(msg)
	require.NoError(t, err)

	out[len(out)-1] = 0xFF // tamper the lone static byte
	result, remainder, err := proto.Decode(out, "s1")
	require.NoError(t, err)
	require.Nil(t, remainder)
	require.NotNil(t, result.Invalid)
	require.ErrorIs(t, result.Invalid.Err, errs.ErrStaticMismatch)
}

// A single-byte flip inside the body region is caught by a CRC-32 footer
// computed over the body.
func TestProtocol_TamperDetection(t *testing.T) {
	value := schema.MustNewField("value", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	bodySpec, err := schema.NewPartialSpec("Checked", endian.GetBigEndianEngine(), false, value)
	require.NoError(t, err)

	crcField := schema.MustNewField("crc", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32),
		schema.WithCompute(func(ctx schema.MessageView) (any, error) {
			b, err := ctx.SerializeBytes()
			if err != nil {
				return nil, err
			}

			return crc32.ChecksumIEEE(b), nil
		}))

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.SetFooters(crcField))
	require.NoError(t, proto.Register("Checked", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	msg.Set("value", uint8(5))
	out, err := proto.Encode(msg)
	require.NoError(t, err)

	bodyOffset := typeLenSize + len("Checked")
	tampered := append([]byte{}, out...)
	tampered[bodyOffset] ^= 0xFF

	result, remainder, err := proto.Decode(tampered, "s1")
	require.NoError(t, err)
	require.Nil(t, remainder)
	require.NotNil(t, result.Invalid)
	require.True(t, errors.Is(result.Invalid.Err, errs.ErrValidationError))
}

// Any chunking of an encoded message fed to successive Decode calls with
// the same source ID yields the final decoded message once the last chunk
// arrives, and nothing on every call before.
func TestProtocol_ArbitraryChunking(t *testing.T) {
	name := schema.MustNewField("name", schema.FieldPrimitive, schema.WithPrimitive(wire.Str))
	bodySpec, err := schema.NewPartialSpec("Greet", endian.GetBigEndianEngine(), false, name)
	require.NoError(t, err)

	proto := New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Greet", func() *message.Message { return mustMessage(t, bodySpec) }))

	msg := mustMessage(t, bodySpec)
	msg.Set("name", "world")
	full, err := proto.Encode(msg)
	require.NoError(t, err)

	chunkSizes := []int{3, 1, 5, 2, 100}
	offset := 0
	for i, size := range chunkSizes {
		end := offset + size
		if end > len(full) {
			end = len(full)
		}
		result, remainder, err := proto.Decode(full[offset:end], "s-chunked")
		require.NoError(t, err)
		offset = end

		if offset < len(full) {
			require.Nilf(t, result, "chunk %d should still be incomplete", i)

			continue
		}

		require.NotNil(t, result)
		require.Nil(t, result.Invalid)
		require.Empty(t, remainder)
		nameVal, ok := result.Message.Get("name")
		require.True(t, ok)
		require.Equal(t, "world", nameVal)

		break
	}
}
