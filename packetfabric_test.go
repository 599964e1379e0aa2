package packetfabric

import (
	"testing"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
	"github.com/stretchr/testify/require"
)

func TestNewMessageType_RegistersAndRoundTrips(t *testing.T) {
	proto := NewBigEndianProtocol()

	id := schema.MustNewField("id", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	err := NewMessageType(proto, "Greeting", endian.GetBigEndianEngine(), id)
	require.NoError(t, err)

	spec, err := schema.NewPartialSpec("Greeting", endian.GetBigEndianEngine(), false, id)
	require.NoError(t, err)

	msg, err := NewMessage(spec)
	require.NoError(t, err)
	msg.Set("id", uint32(42))

	frame, err := proto.Encode(msg)
	require.NoError(t, err)

	result, remainder, err := proto.Decode(frame, "conn-1")
	require.NoError(t, err)
	require.Empty(t, remainder)
	require.NotNil(t, result.Message)
	require.Nil(t, result.Invalid)

	v, ok := result.Message.Get("id")
	require.True(t, ok)
	require.Equal(t, uint32(42), v)
}

func TestNewMessageType_DuplicateRegistration(t *testing.T) {
	proto := NewBigEndianProtocol()

	id := schema.MustNewField("id", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	require.NoError(t, NewMessageType(proto, "Ping", endian.GetBigEndianEngine(), id))

	err := NewMessageType(proto, "Ping", endian.GetBigEndianEngine(), id)
	require.Error(t, err)
}

func TestSourceKey_DeterministicAndDistinct(t *testing.T) {
	require.Equal(t, SourceKey("127.0.0.1:5000"), SourceKey("127.0.0.1:5000"))
	require.NotEqual(t, SourceKey("127.0.0.1:5000"), SourceKey("127.0.0.1:5001"))
}
