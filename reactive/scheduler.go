// Package reactive implements a periodic Scheduler and a
// condition-triggered AutoReply table, both sitting on top of a
// protocol.Protocol for encoding.
//
// Grounded on arloliu-mebo's regression package's estimator/analyzer split
// (one mutex-guarded table of independently running units, snapshotted
// before the expensive work runs), generalized from statistical estimators
// to timer-driven and condition-driven message senders.
package reactive

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/protocol"
)

// UpdateFunc mutates msg in place before each send, e.g. bumping a sequence
// number.
type UpdateFunc func(msg *message.Message) error

// SendFunc delivers one already-encoded frame. The reactive layer never
// owns a transport; it only calls this function.
type SendFunc func(frame []byte) error

type scheduledTask struct {
	msg    *message.Message
	proto  *protocol.Protocol
	update UpdateFunc
	send   SendFunc
	stop   chan struct{}
	done   chan struct{}
}

// Scheduler runs one background timer per registered message, re-encoding
// and sending it every tick.
type Scheduler struct {
	mu     sync.Mutex
	tasks  map[int]*scheduledTask
	nextID int
}

// NewScheduler creates an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[int]*scheduledTask)}
}

// Schedule starts a background timer that fires every interval, each time
// optionally running update, then encoding msg through proto and calling
// send with the result. It returns a handle for Cancel. interval must be
// positive (errs.ErrInvalidInterval otherwise), and msg must already encode
// cleanly through proto: Schedule performs a trial encode up front and
// returns that error immediately rather than only discovering it on the
// first tick. Errors from later update/encode/send calls are logged and do
// not stop the timer.
func (s *Scheduler) Schedule(msg *message.Message, proto *protocol.Protocol, interval time.Duration, send SendFunc, update UpdateFunc) (int, error) {
	if interval <= 0 {
		return 0, fmt.Errorf("%w: got %s", errs.ErrInvalidInterval, interval)
	}

	if _, err := proto.Encode(msg); err != nil {
		return 0, fmt.Errorf("reactive: schedule: %w", err)
	}

	task := &scheduledTask{
		msg:    msg,
		proto:  proto,
		update: update,
		send:   send,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	s.nextID++
	handle := s.nextID
	s.tasks[handle] = task
	s.mu.Unlock()

	go s.run(handle, task, interval)

	return handle, nil
}

func (s *Scheduler) run(handle int, task *scheduledTask, interval time.Duration) {
	defer close(task.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-task.stop:
			return
		case <-ticker.C:
			s.fireOnce(handle, task)
		}
	}
}

func (s *Scheduler) fireOnce(handle int, task *scheduledTask) {
	if task.update != nil {
		if err := task.update(task.msg); err != nil {
			log.Printf("reactive: scheduler handle %d: update: %v", handle, err)

			return
		}
	}

	frame, err := task.proto.Encode(task.msg)
	if err != nil {
		log.Printf("reactive: scheduler handle %d: encode: %v", handle, err)

		return
	}

	if err := task.send(frame); err != nil {
		log.Printf("reactive: scheduler handle %d: send: %v", handle, err)
	}
}

// Cancel stops and removes the timer for handle. The timer thread's
// shutdown is awaited with a bounded 1-second timeout; no in-flight send is
// interrupted.
func (s *Scheduler) Cancel(handle int) error {
	s.mu.Lock()
	task, ok := s.tasks[handle]
	if ok {
		delete(s.tasks, handle)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: scheduler handle %d", errs.ErrUnknownHandle, handle)
	}

	close(task.stop)
	select {
	case <-task.done:
	case <-time.After(time.Second):
	}

	return nil
}

// CancelAll stops every running timer, issuing the cancellations in
// parallel and waiting for each.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	handles := make([]int, 0, len(s.tasks))
	for h := range s.tasks {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(handle int) {
			defer wg.Done()
			_ = s.Cancel(handle)
		}(h)
	}
	wg.Wait()
}
