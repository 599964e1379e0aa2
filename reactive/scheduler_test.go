package reactive

import (
	"sync"
	"testing"
	"time"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/protocol"
	"github.com/arloliu/packetfabric/schema"
	"github.com/arloliu/packetfabric/wire"
	"github.com/stretchr/testify/require"
)

func newCountedMessage(t *testing.T) (*message.Message, *protocol.Protocol) {
	t.Helper()
	seq := schema.MustNewField("seq", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	spec, err := schema.NewPartialSpec("Tick", endian.GetBigEndianEngine(), false, seq)
	require.NoError(t, err)

	proto := protocol.New(endian.GetBigEndianEngine())
	require.NoError(t, proto.Register("Tick", func() *message.Message {
		m, err := message.New(spec)
		require.NoError(t, err)

		return m
	}))

	msg, err := message.New(spec)
	require.NoError(t, err)
	msg.Set("seq", uint32(0))

	return msg, proto
}

// A scheduled message with a 100ms interval fires repeatedly over a test
// window, yielding several send invocations rather than just one.
func TestScheduler_PeriodicFiring(t *testing.T) {
	msg, proto := newCountedMessage(t)

	var mu sync.Mutex
	count := 0
	send := func(frame []byte) error {
		mu.Lock()
		count++
		mu.Unlock()

		return nil
	}

	sched := NewScheduler()
	handle, err := sched.Schedule(msg, proto, 100*time.Millisecond, send, nil)
	require.NoError(t, err)

	time.Sleep(550 * time.Millisecond)
	require.NoError(t, sched.Cancel(handle))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, count, 4)
	require.LessOrEqual(t, count, 6)
}

// message_scheduling_with_updates_demo.py's behavior: the update_fn mutates
// the template message in place before each encode, and the mutation is
// visible in consecutive sent frames.
func TestScheduler_UpdateMutatesBetweenTicks(t *testing.T) {
	msg, proto := newCountedMessage(t)

	var mu sync.Mutex
	var frames [][]byte
	send := func(frame []byte) error {
		mu.Lock()
		frames = append(frames, append([]byte{}, frame...))
		mu.Unlock()

		return nil
	}
	update := func(m *message.Message) error {
		v, _ := m.Get("seq")
		m.Set("seq", v.(uint32)+1)

		return nil
	}

	sched := NewScheduler()
	handle, err := sched.Schedule(msg, proto, 50*time.Millisecond, send, update)
	require.NoError(t, err)

	time.Sleep(260 * time.Millisecond)
	require.NoError(t, sched.Cancel(handle))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(frames), 2)
	require.NotEqual(t, frames[0], frames[1])
}

func TestScheduler_RejectsMessageThatFailsToEncode(t *testing.T) {
	_, proto := newCountedMessage(t)

	otherSeq := schema.MustNewField("seq", schema.FieldPrimitive, schema.WithPrimitive(wire.Uint32))
	otherSpec, err := schema.NewPartialSpec("Unregistered", endian.GetBigEndianEngine(), false, otherSeq)
	require.NoError(t, err)
	otherMsg, err := message.New(otherSpec)
	require.NoError(t, err)

	sched := NewScheduler()
	_, err = sched.Schedule(otherMsg, proto, 50*time.Millisecond, func([]byte) error { return nil }, nil)
	require.ErrorIs(t, err, errs.ErrUnknownType)
}

func TestScheduler_InvalidInterval(t *testing.T) {
	msg, proto := newCountedMessage(t)
	sched := NewScheduler()

	_, err := sched.Schedule(msg, proto, 0, func([]byte) error { return nil }, nil)
	require.ErrorIs(t, err, errs.ErrInvalidInterval)
}

func TestScheduler_CancelUnknownHandle(t *testing.T) {
	sched := NewScheduler()
	err := sched.Cancel(999)
	require.ErrorIs(t, err, errs.ErrUnknownHandle)
}

func TestScheduler_CancelAll(t *testing.T) {
	msg, proto := newCountedMessage(t)
	sched := NewScheduler()

	send := func([]byte) error { return nil }
	h1, err := sched.Schedule(msg, proto, 50*time.Millisecond, send, nil)
	require.NoError(t, err)
	h2, err := sched.Schedule(msg, proto, 50*time.Millisecond, send, nil)
	require.NoError(t, err)

	sched.CancelAll()
	require.ErrorIs(t, sched.Cancel(h1), errs.ErrUnknownHandle)
	require.ErrorIs(t, sched.Cancel(h2), errs.ErrUnknownHandle)
}
