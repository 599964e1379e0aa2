package message

import (
	"testing"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
	"github.com/stretchr/testify/require"
)

func TestMessage_LengthOf(t *testing.T) {
	count := schema.MustNewField("count", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithLengthOf("items"))
	items := schema.MustNewField("items", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithArrayCountPath("count"))

	spec, err := schema.NewPartialSpec("counted", endian.GetBigEndianEngine(), false, count, items)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("items", []any{uint8(5), uint8(6), uint8(7)})

	out, err := msg.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{3, 5, 6, 7}, out)

	countVal, ok := msg.Get("count")
	require.True(t, ok)
	require.Equal(t, uint8(3), countVal)
}

func TestMessage_SizeOf(t *testing.T) {
	payload := schema.MustNewField("payload", schema.FieldPrimitive, schema.WithPrimitive(wire.Str))
	size := schema.MustNewField("size", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32), schema.WithSizeOf("payload"))

	spec, err := schema.NewPartialSpec("frame", endian.GetBigEndianEngine(), false, size, payload)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("payload", "hello")

	out, err := msg.Encode()
	require.NoError(t, err)

	sizeVal, ok := msg.Get("size")
	require.True(t, ok)
	require.Equal(t, uint32(9), sizeVal) // 4-byte length prefix + 5-byte payload
	require.Equal(t, len(out), 4+9)      // size field itself (4 bytes) + sized payload (9 bytes)
}

func TestMessage_ValueFrom(t *testing.T) {
	a := schema.MustNewField("a", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	b := schema.MustNewField("b", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithValueFrom("a"))

	spec, err := schema.NewPartialSpec("echo", endian.GetBigEndianEngine(), false, a, b)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("a", uint8(42))

	out, err := msg.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{42, 42}, out)
}

func TestMessage_Compute(t *testing.T) {
	a := schema.MustNewField("a", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	doubled := schema.MustNewField("doubled", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8),
		schema.WithCompute(func(ctx schema.MessageView) (any, error) {
			v, _, err := ctx.Get(schema.Path{"a"})
			if err != nil {
				return nil, err
			}

			return v.(uint8) * 2, nil
		}))

	spec, err := schema.NewPartialSpec("doubler", endian.GetBigEndianEngine(), false, a, doubled)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("a", uint8(5))

	out, err := msg.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{5, 10}, out)
}

func TestMessage_ConditionalComputedField(t *testing.T) {
	hasExtra := schema.MustNewField("hasExtra", schema.FieldPrimitive, schema.WithPrimitive(wire.Bool))
	source := schema.MustNewField("source", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	extra := schema.MustNewField("extra", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithValueFrom("source"),
		schema.WithCondition(func(ctx schema.MessageView) (bool, error) {
			v, ok, err := ctx.Get(schema.Path{"hasExtra"})
			if err != nil || !ok {
				return false, err
			}

			return v.(bool), nil
		}))

	spec, err := schema.NewPartialSpec("conditionalExtra", endian.GetBigEndianEngine(), false, hasExtra, source, extra)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("hasExtra", false)
	msg.Set("source", uint8(9))

	out, err := msg.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 9}, out)
	_, ok := msg.Get("extra")
	require.False(t, ok)
}

func TestMessage_DeepAssign(t *testing.T) {
	xField := schema.MustNewField("x", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	yField := schema.MustNewField("y", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithLiteral(uint8(0)))
	pointSpec, err := schema.NewPartialSpec("point", endian.GetBigEndianEngine(), false, xField, yField)
	require.NoError(t, err)

	yComputed := schema.MustNewField("y", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8),
		schema.WithCompute(func(ctx schema.MessageView) (any, error) {
			v, _, err := ctx.Get(schema.Path{"scale"})
			if err != nil {
				return nil, err
			}

			return v.(uint8) * 3, nil
		}))
	originField := schema.MustNewField("origin", schema.FieldComposite, schema.WithComposite(pointSpec),
		schema.WithDeepAssign("y", yComputed))

	scale := schema.MustNewField("scale", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8))
	outerSpec, err := schema.NewPartialSpec("shape", endian.GetBigEndianEngine(), false, scale, originField)
	require.NoError(t, err)

	msg, err := New(outerSpec)
	require.NoError(t, err)
	msg.Set("scale", uint8(4))

	point, err := New(pointSpec)
	require.NoError(t, err)
	point.Set("x", uint8(1))
	msg.Set("origin", point.Instance())

	out, err := msg.Encode()
	require.NoError(t, err)
	require.Equal(t, []byte{4, 1, 12}, out)
}

func TestMessage_ComputeCycleRejected(t *testing.T) {
	a := schema.MustNewField("a", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithValueFrom("b"))
	b := schema.MustNewField("b", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithValueFrom("a"))

	spec, err := schema.NewPartialSpec("cyclic", endian.GetBigEndianEngine(), false, a, b)
	require.NoError(t, err)

	_, err = New(spec)
	require.ErrorIs(t, err, errs.ErrComputeCycle)
}

func TestMessage_DecodeRoundTrip(t *testing.T) {
	count := schema.MustNewField("count", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithLengthOf("items"))
	items := schema.MustNewField("items", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint8), schema.WithArrayCountPath("count"))
	spec, err := schema.NewPartialSpec("counted", endian.GetBigEndianEngine(), false, count, items)
	require.NoError(t, err)

	msg, err := New(spec)
	require.NoError(t, err)
	msg.Set("items", []any{uint8(1), uint8(2)})
	out, err := msg.Encode()
	require.NoError(t, err)

	decoded, n, err := Decode(spec, out)
	require.NoError(t, err)
	require.Equal(t, len(out), n)

	itemsVal, ok := decoded.Get("items")
	require.True(t, ok)
	require.Equal(t, []any{uint8(1), uint8(2)}, itemsVal)
}
