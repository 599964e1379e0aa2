package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/message"
	"github.com/arloliu/packetfabric/partial"
	"github.com/arloliu/packetfabric/schema"
)

// InvalidMessage carries everything known about a message that failed to
// decode cleanly once enough bytes had arrived to rule out a fragment.
type InvalidMessage struct {
	// TypeName is empty if decode failed before the type name completed.
	TypeName string
	Raw      []byte
	Err      error
}

// DecodeResult holds exactly one of Message or Invalid.
type DecodeResult struct {
	Message *message.Message
	Invalid *InvalidMessage
}

// Decode reassembles and decodes one framed message out of sourceID's byte
// stream, buffering across calls until a full envelope arrives. It returns
// (nil, nil, nil) when more bytes are needed; (result with Invalid set,
// nil, nil) when the source produced something that is not a fragment but
// also not a valid message; or (result with Message set, remainder, nil) on
// success, where remainder is whatever bytes followed this one message in
// the buffer.
func (p *Protocol) Decode(data []byte, sourceID string) (*DecodeResult, []byte, error) {
	p.bufMu.Lock()
	buf := append(append([]byte{}, p.pending[sourceID]...), data...)
	p.bufMu.Unlock()

	result, consumed, incomplete := p.decodeOnce(buf)

	if incomplete {
		p.bufMu.Lock()
		p.pending[sourceID] = buf
		p.bufMu.Unlock()

		return nil, nil, nil
	}

	p.bufMu.Lock()
	delete(p.pending, sourceID)
	p.bufMu.Unlock()

	if result.Invalid != nil {
		return result, nil, nil
	}

	return result, buf[consumed:], nil
}

// Flush drops any buffered incomplete bytes for sourceID, e.g. after the
// caller decides a connection is gone.
func (p *Protocol) Flush(sourceID string) {
	p.bufMu.Lock()
	delete(p.pending, sourceID)
	p.bufMu.Unlock()
}

func (p *Protocol) decodeOnce(buf []byte) (*DecodeResult, int, bool) {
	if len(buf) < typeLenSize {
		return nil, 0, true
	}

	nameLen := int(binary.BigEndian.Uint16(buf[:typeLenSize]))
	if len(buf) < typeLenSize+nameLen {
		return nil, 0, true
	}
	typeName := string(buf[typeLenSize : typeLenSize+nameLen])
	pos := typeLenSize + nameLen

	factory, ok := p.lookup(typeName)
	if !ok {
		return invalidResult(typeName, buf, fmt.Errorf("%w: %q", errs.ErrUnknownType, typeName)), 0, false
	}

	headerFields := p.headersSnapshot()
	headerSpec, err := p.envelopeSpec("headers", headerFields)
	if err != nil {
		return invalidResult(typeName, buf, err), 0, false
	}
	headerInst, headerConsumed, err := partial.Decode(headerSpec, buf[pos:])
	if err != nil {
		if errors.Is(err, errs.ErrIncomplete) {
			return nil, 0, true
		}

		return invalidResult(typeName, buf, fmt.Errorf("headers: %w", err)), 0, false
	}
	pos += headerConsumed

	blank := factory()
	msg, bodyConsumed, err := message.Decode(blank.Spec, buf[pos:])
	if err != nil {
		if errors.Is(err, errs.ErrIncomplete) {
			return nil, 0, true
		}

		return invalidResult(typeName, buf, fmt.Errorf("body: %w", err)), 0, false
	}
	pos += bodyConsumed

	footerFields := p.footersSnapshot()
	footerSpec, err := p.envelopeSpec("footers", footerFields)
	if err != nil {
		return invalidResult(typeName, buf, err), 0, false
	}
	footerInst, footerConsumed, err := partial.Decode(footerSpec, buf[pos:])
	if err != nil {
		if errors.Is(err, errs.ErrIncomplete) {
			return nil, 0, true
		}

		return invalidResult(typeName, buf, fmt.Errorf("footers: %w", err)), 0, false
	}
	pos += footerConsumed

	if err := validateFieldList(headerFields, headerInst, msg, "header"); err != nil {
		return invalidResult(typeName, buf, err), 0, false
	}
	if err := validateFieldList(footerFields, footerInst, msg, "footer"); err != nil {
		return invalidResult(typeName, buf, err), 0, false
	}

	return &DecodeResult{Message: msg}, pos, false
}

func invalidResult(typeName string, raw []byte, err error) *DecodeResult {
	return &DecodeResult{Invalid: &InvalidMessage{TypeName: typeName, Raw: raw, Err: err}}
}

// validateFieldList recomputes every header and footer field against the
// decoded message and compares each one bit-for-bit against what was
// actually on the wire, catching tampering or a stale computed value.
func validateFieldList(fields []schema.FieldSpec, inst *partial.Instance, msg *message.Message, label string) error {
	for _, f := range fields {
		decoded, ok := inst.Get(f.Name)
		if !ok {
			return fmt.Errorf("%w: %s field %q missing after decode", errs.ErrValidationError, label, f.Name)
		}

		expected, err := resolveEnvelopeField(msg, f)
		if err != nil {
			return fmt.Errorf("%s field %q: %w", label, f.Name, err)
		}

		if !reflect.DeepEqual(decoded, expected) {
			return fmt.Errorf("%w: %s field %q: decoded %v, recomputed %v", errs.ErrValidationError, label, f.Name, decoded, expected)
		}
	}

	return nil
}
