// Package message implements the Message codec: everything a partial already
// does, plus cross-field references, computed fields, conditional fields, and
// deep assignment into nested composites. A Message is a top-level partial
// that may also live in a protocol's registry.
//
// Grounded on arloliu-mebo/blob/numeric_encoder.go's encode-time
// header-field computation (offsets/counts filled in from accumulated state
// just before serialization), generalized from one hard-coded header layout
// to declarative length_of/size_of/value_from/compute sources.
package message

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/partial"
	"github.com/arloliu/packetfabric/schema"
)

// Message wraps a top-level partial.Instance with the message-level value
// sources and deep-assignment resolution layered on top of a plain partial.
type Message struct {
	Spec *schema.PartialSpec
	inst *partial.Instance
}

// New builds an empty Message for spec, rejecting cyclic computed-field
// dependencies up front with errs.ErrComputeCycle rather than looping at
// encode time or silently using a stale value.
func New(spec *schema.PartialSpec) (*Message, error) {
	if err := detectComputeCycle(spec); err != nil {
		return nil, err
	}

	return &Message{Spec: spec, inst: partial.New(spec)}, nil
}

// Instance exposes the underlying partial.Instance, e.g. for the protocol
// package to navigate into a decoded message's fields.
func (m *Message) Instance() *partial.Instance { return m.inst }

// Set assigns field name's value.
func (m *Message) Set(name string, value any) { m.inst.Set(name, value) }

// Get returns field name's value and whether it is present.
func (m *Message) Get(name string) (any, bool) { return m.inst.Get(name) }

// View returns a schema.MessageView over this message, the context handed to
// Compute/Condition closures and size_of("body") resolution.
func (m *Message) View() schema.MessageView { return partial.NewView(m.inst) }

// Encode resolves every computed/cross-referenced field — the entire
// compute pass runs once, in declaration order, immediately before the
// partial-level encode loop — then serializes the body.
func (m *Message) Encode() ([]byte, error) {
	if err := m.precompute(); err != nil {
		return nil, err
	}

	return partial.Encode(m.inst)
}

// Decode reads one message body of spec from the front of data. Computed
// fields are read back as ordinary decoded values: they are written into the
// instance on encode and read back from the decoded wire on decode, with no
// recomputation happening here — that is the protocol envelope's job for
// headers/footers.
func Decode(spec *schema.PartialSpec, data []byte) (*Message, int, error) {
	inst, n, err := partial.Decode(spec, data)
	if err != nil {
		return nil, 0, err
	}

	return &Message{Spec: spec, inst: inst}, n, nil
}

// precompute resolves length_of/size_of/value_from/compute fields and writes
// them back onto the instance, then resolves deep assignments into any
// composite fields.
func (m *Message) precompute() error {
	view := m.View()

	for _, field := range m.Spec.Fields {
		if field.Condition != nil {
			active, err := field.Condition(view)
			if err != nil {
				return fmt.Errorf("field %q: condition: %w", field.Name, err)
			}
			if !active {
				m.inst.MarkAbsent(field.Name)

				continue
			}
		}

		if field.Source == schema.SourceLiteral || field.Source == schema.SourceStatic {
			continue
		}

		raw, err := resolveComputedValue(m, field, view)
		if err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}

		val, err := convertToFieldType(raw, field)
		if err != nil {
			return fmt.Errorf("field %q: %w", field.Name, err)
		}

		m.inst.Set(field.Name, val)
	}

	for _, field := range m.Spec.Fields {
		if field.Type != schema.FieldComposite || len(field.DeepAssign) == 0 {
			continue
		}

		nestedVal, ok := m.inst.Get(field.Name)
		if !ok {
			return fmt.Errorf("%w: composite field %q has no value for deep assignment", errs.ErrReferenceError, field.Name)
		}
		nested, ok := nestedVal.(*partial.Instance)
		if !ok {
			return fmt.Errorf("%w: composite field %q value is not a *partial.Instance", errs.ErrTypeError, field.Name)
		}

		for subPath, subSpec := range field.DeepAssign {
			raw, err := resolveComputedValue(m, subSpec, view)
			if err != nil {
				return fmt.Errorf("field %q.%s: %w", field.Name, subPath, err)
			}
			val, err := convertToFieldType(raw, subSpec)
			if err != nil {
				return fmt.Errorf("field %q.%s: %w", field.Name, subPath, err)
			}
			if err := setDeep(nested, schema.ParsePath(subPath), val); err != nil {
				return fmt.Errorf("field %q.%s: %w", field.Name, subPath, err)
			}
		}
	}

	return nil
}

// setDeep writes value at the dotted path inside inst, descending through
// nested composite instances for every path segment but the last.
func setDeep(inst *partial.Instance, path schema.Path, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: deep assignment path must not be empty", errs.ErrPathError)
	}
	if len(path) == 1 {
		inst.Set(path[0], value)

		return nil
	}

	child, ok := inst.Get(path[0])
	if !ok {
		return fmt.Errorf("%w: %q not yet materialized", errs.ErrReferenceError, path[0])
	}
	nested, ok := child.(*partial.Instance)
	if !ok {
		return fmt.Errorf("%w: %q is not a composite, cannot descend further", errs.ErrPathError, path[0])
	}

	return setDeep(nested, path[1:], value)
}
