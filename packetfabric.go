// Package packetfabric provides a declarative binary protocol codec
// framework: describe a message as a graph of scalar, composite, array,
// conditional, bit-packed, and computed fields, and get a type-safe
// encoder/decoder plus a framed, self-describing wire protocol for free.
//
// # Core features
//
//   - A field-graph model (schema.FieldSpec) covering primitives, enums,
//     nested composites, fixed/delimited/length-prefixed arrays, bit-packed
//     sub-byte fields, conditional fields, and computed fields that derive
//     their value from sibling fields via a dotted path or a closure.
//   - A two-pass compute/validate encode discipline (message.Message):
//     every computed field is resolved once in declaration order before any
//     bytes are written.
//   - A protocol envelope (protocol.Protocol): a type registry, a
//     length-prefixed type-name frame, automatic header/footer fields with
//     round-trip validation, per-source reassembly of short reads, and
//     quarantine of malformed input as an InvalidMessage rather than an
//     error.
//   - A reactive layer (reactive.Scheduler, reactive.AutoReply) for
//     periodic and condition-triggered sends on top of a Protocol.
//
// This package provides convenience wrappers around the lower-level
// schema/message/protocol packages for the most common setup path; for
// fine-grained control, use those packages directly.
package packetfabric

import (
	"fmt"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/internal/hash"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/protocol"
	"github.com/arloliu/packetfabric/schema"
)

// NewBigEndianProtocol creates an empty Protocol whose header and footer
// fields use big-endian. The type-name length prefix is big-endian for
// every Protocol.
func NewBigEndianProtocol() *protocol.Protocol {
	return protocol.New(endian.GetBigEndianEngine())
}

// NewLittleEndianProtocol creates an empty Protocol whose header and footer
// fields use little-endian. The type-name length prefix stays big-endian.
func NewLittleEndianProtocol() *protocol.Protocol {
	return protocol.New(endian.GetLittleEndianEngine())
}

// NewMessageType declares one byte-aligned message type: its wire layout
// (order, fields) and a registration on proto under name. A message type's
// own byte order is independent of its Protocol's envelope byte order —
// pass whichever order the body itself should use.
func NewMessageType(proto *protocol.Protocol, name string, order endian.EndianEngine, fields ...schema.FieldSpec) error {
	spec, err := schema.NewPartialSpec(name, order, false, fields...)
	if err != nil {
		return fmt.Errorf("packetfabric: message type %q: %w", name, err)
	}
	if _, err := message.New(spec); err != nil {
		return fmt.Errorf("packetfabric: message type %q: %w", name, err)
	}

	return proto.Register(name, func() *message.Message {
		m, err := message.New(spec)
		if err != nil {
			// Register's factory contract (protocol.Protocol.Register) has no
			// error return; message.New only fails for a cyclic compute graph,
			// which NewMessageType already validated above via the identical
			// spec, so this is unreachable.
			panic(fmt.Sprintf("packetfabric: message type %q became invalid: %v", name, err))
		}

		return m
	})
}

// NewMessage builds a blank Message from spec. Use this directly (instead
// of a Protocol's registered factory) when a message never needs to be
// framed inside a Protocol envelope, e.g. to inspect a decoded body's
// fields in isolation.
func NewMessage(spec *schema.PartialSpec) (*message.Message, error) {
	return message.New(spec)
}

// SourceKey derives a stable per-connection reassembly key from an
// arbitrary identifier (e.g. a net.Conn's RemoteAddr().String()), for use
// as the sourceID argument to Protocol.Decode. Protocol.Decode accepts any
// string key directly; SourceKey exists only to fold a long or
// structured identifier down to a short, comparable one the way mebo folds
// metric names down to IDs.
func SourceKey(identifier string) string {
	return fmt.Sprintf("%016x", hash.ID(identifier))
}
