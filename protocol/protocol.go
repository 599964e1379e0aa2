// Package protocol implements the Protocol envelope: a type registry,
// type-prefixed framing, automatic headers/footers with computed values and
// round-trip validation, per-source incomplete-message reassembly, and
// invalid-message quarantine.
//
// Grounded on arloliu-mebo's top-level blob package, which similarly wraps a
// fixed-layout header/body/index structure behind one encode/decode entry
// point; generalized here from one hard-coded metrics-blob layout to an
// arbitrary registry of declaratively-specced message types.
package protocol

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/arloliu/packetfabric/endian"
	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/schema"
)

// typeLenSize is the envelope's own 2-byte type-name length prefix, always
// big-endian regardless of any message's declared byte order.
const typeLenSize = 2

// Protocol is a registry of message types plus a shared header/footer
// layout. The zero value is not usable; construct with New.
type Protocol struct {
	order endian.EndianEngine

	registryMu sync.Mutex
	registry   map[string]func() *message.Message

	headersMu sync.Mutex
	headers   []schema.FieldSpec

	footersMu sync.Mutex
	footers   []schema.FieldSpec

	bufMu   sync.Mutex
	pending map[string][]byte
}

// New creates an empty Protocol whose header/footer fields (once set) are
// serialized in order, using order as their byte order.
func New(order endian.EndianEngine) *Protocol {
	if order == nil {
		order = endian.GetBigEndianEngine()
	}

	return &Protocol{
		order:    order,
		registry: make(map[string]func() *message.Message),
		pending:  make(map[string][]byte),
	}
}

// Register associates name with factory, a constructor for a blank message
// of that type (used on decode to learn the body's PartialSpec). Registering
// the same name twice on one Protocol fails with errs.ErrDuplicateMessageName;
// registering the same name on two different Protocol instances is
// independent and always succeeds.
func (p *Protocol) Register(name string, factory func() *message.Message) error {
	p.registryMu.Lock()
	defer p.registryMu.Unlock()

	if _, exists := p.registry[name]; exists {
		return fmt.Errorf("%w: %q", errs.ErrDuplicateMessageName, name)
	}
	p.registry[name] = factory

	return nil
}

func (p *Protocol) lookup(name string) (func() *message.Message, bool) {
	p.registryMu.Lock()
	defer p.registryMu.Unlock()

	factory, ok := p.registry[name]

	return factory, ok
}

// SetHeaders declares the envelope's header field list. Every field must
// have a statically computable wire size, since the envelope needs to know
// header length before any message body exists; violating that fails with
// errs.ErrNonStaticHeaderField and leaves the prior headers in place.
func (p *Protocol) SetHeaders(fields ...schema.FieldSpec) error {
	if err := requireStaticSize(fields); err != nil {
		return err
	}

	p.headersMu.Lock()
	defer p.headersMu.Unlock()
	p.headers = append([]schema.FieldSpec{}, fields...)

	return nil
}

// SetFooters declares the envelope's footer field list; see SetHeaders.
func (p *Protocol) SetFooters(fields ...schema.FieldSpec) error {
	if err := requireStaticSize(fields); err != nil {
		return err
	}

	p.footersMu.Lock()
	defer p.footersMu.Unlock()
	p.footers = append([]schema.FieldSpec{}, fields...)

	return nil
}

func requireStaticSize(fields []schema.FieldSpec) error {
	for i := range fields {
		if !fields[i].HasStaticSize() {
			return fmt.Errorf("%w: field %q", errs.ErrNonStaticHeaderField, fields[i].Name)
		}
	}

	return nil
}

func (p *Protocol) headersSnapshot() []schema.FieldSpec {
	p.headersMu.Lock()
	defer p.headersMu.Unlock()

	return append([]schema.FieldSpec{}, p.headers...)
}

func (p *Protocol) footersSnapshot() []schema.FieldSpec {
	p.footersMu.Lock()
	defer p.footersMu.Unlock()

	return append([]schema.FieldSpec{}, p.footers...)
}

// envelopeSpec wraps fields (a header or footer list) in a throwaway,
// byte-aligned PartialSpec sharing the protocol's byte order, so header and
// footer regions serialize through the same partial codec as any composite.
func (p *Protocol) envelopeSpec(name string, fields []schema.FieldSpec) (*schema.PartialSpec, error) {
	return schema.NewPartialSpec(name, p.order, false, fields...)
}

// Encode serializes msg as one framed envelope: type-len + type-name +
// headers + body + footers. msg's own type must already be registered on
// this Protocol.
func (p *Protocol) Encode(msg *message.Message) ([]byte, error) {
	name := msg.Spec.Name
	if _, ok := p.lookup(name); !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownType, name)
	}

	bodyBytes, err := msg.Encode()
	if err != nil {
		return nil, fmt.Errorf("%s: body: %w", name, err)
	}

	headerBytes, err := p.encodeFieldList(p.headersSnapshot(), "headers", msg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	footerBytes, err := p.encodeFieldList(p.footersSnapshot(), "footers", msg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	nameBytes := []byte(name)
	out := make([]byte, 0, typeLenSize+len(nameBytes)+len(headerBytes)+len(bodyBytes)+len(footerBytes))
	prefix := make([]byte, typeLenSize)
	binary.BigEndian.PutUint16(prefix, uint16(len(nameBytes)))
	out = append(out, prefix...)
	out = append(out, nameBytes...)
	out = append(out, headerBytes...)
	out = append(out, bodyBytes...)
	out = append(out, footerBytes...)

	return out, nil
}

func (p *Protocol) encodeFieldList(fields []schema.FieldSpec, label string, msg *message.Message) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	spec, err := p.envelopeSpec(label, fields)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	values, err := resolveEnvelopeValues(fields, msg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}

	inst := newEnvelopeInstance(spec, values)

	return encodeInstance(inst)
}

// resolveEnvelopeValues computes every field's wire value against a context
// that exposes both msg's own fields and its pre-serialized body bytes, so
// header/footer fields can reference either (e.g. size_of("body")).
func resolveEnvelopeValues(fields []schema.FieldSpec, msg *message.Message) (map[string]any, error) {
	values := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := resolveEnvelopeField(msg, f)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		values[f.Name] = v
	}

	return values, nil
}

func resolveEnvelopeField(msg *message.Message, field schema.FieldSpec) (any, error) {
	switch field.Source {
	case schema.SourceStatic:
		return field.Static, nil
	case schema.SourceLiteral:
		return field.Literal, nil
	default:
		return message.ResolveFieldValue(msg, field)
	}
}
