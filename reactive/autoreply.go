package reactive

import (
	"log"
	"sync"

	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/protocol"
)

// ConditionFunc reports whether an incoming message should trigger a reply.
type ConditionFunc func(incoming *message.Message) (bool, error)

// ReplyUpdateFunc mutates the reply template in place using the incoming
// message as context before each reply is sent.
type ReplyUpdateFunc func(incoming, template *message.Message) error

type replyRule struct {
	cond     ConditionFunc
	template *message.Message
	proto    *protocol.Protocol
	send     SendFunc
	update   ReplyUpdateFunc
}

// AutoReply holds an ordered table of condition-triggered reply rules.
// Registrations fire in insertion order within one Check call.
type AutoReply struct {
	mu     sync.Mutex
	rules  []*replyRule
	nextID int
}

// NewAutoReply creates an empty AutoReply table.
func NewAutoReply() *AutoReply {
	return &AutoReply{}
}

// Register adds a reply rule and returns its handle. cond is evaluated
// against each incoming message passed to Check; when it reports true,
// update (if non-nil) mutates template, the template is encoded through
// proto, and send is called with the result.
func (a *AutoReply) Register(cond ConditionFunc, template *message.Message, proto *protocol.Protocol, send SendFunc, update ReplyUpdateFunc) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	handle := a.nextID
	a.rules = append(a.rules, &replyRule{cond: cond, template: template, proto: proto, send: send, update: update})

	return handle
}

// Check evaluates every registration's condition against incoming, firing
// replies for each that matches, and returns the count of replies sent.
// Check is synchronous; a snapshot of the rule table is taken under the
// lock and callbacks run outside it. An error from any single
// registration's condition, update, encode, or send step is logged and does
// not stop the remaining registrations from firing.
func (a *AutoReply) Check(incoming *message.Message) (int, error) {
	a.mu.Lock()
	snapshot := make([]*replyRule, len(a.rules))
	copy(snapshot, a.rules)
	a.mu.Unlock()

	fired := 0
	for i, rule := range snapshot {
		active, err := rule.cond(incoming)
		if err != nil {
			log.Printf("reactive: auto-reply rule %d: condition: %v", i, err)

			continue
		}
		if !active {
			continue
		}

		if rule.update != nil {
			if err := rule.update(incoming, rule.template); err != nil {
				log.Printf("reactive: auto-reply rule %d: update: %v", i, err)

				continue
			}
		}

		frame, err := rule.proto.Encode(rule.template)
		if err != nil {
			log.Printf("reactive: auto-reply rule %d: encode: %v", i, err)

			continue
		}

		if err := rule.send(frame); err != nil {
			log.Printf("reactive: auto-reply rule %d: send: %v", i, err)

			continue
		}

		fired++
	}

	return fired, nil
}
