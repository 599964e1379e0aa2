// Package partial implements the composite codec: the recursive unit that
// serializes an ordered field list byte-aligned or bit-packed. A partial is
// represented here by an Instance, a schema-guarded property bag, chosen
// over a generated record type since a field list isn't known until a spec
// is built at runtime.
//
// Grounded on arloliu-mebo/section/numeric_header.go (fixed-layout field
// struct) and arloliu-mebo/section/numeric_flag.go (bit-packed flag word),
// generalized from one hard-coded layout to an arbitrary schema.PartialSpec.
package partial

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
)

// Instance is a materialized partial: one value per active field, guarded by
// its Spec. Composite-typed field values are themselves *Instance; array
// field values are []any.
type Instance struct {
	Spec   *schema.PartialSpec
	values map[string]any
	absent map[string]bool
}

// New creates an Instance for spec, pre-populating static and literal-default
// field values; a static field always serializes its declared constant.
func New(spec *schema.PartialSpec) *Instance {
	inst := &Instance{
		Spec:   spec,
		values: make(map[string]any, len(spec.Fields)),
		absent: make(map[string]bool),
	}

	for _, f := range spec.Fields {
		switch f.Source {
		case schema.SourceStatic:
			inst.values[f.Name] = f.Static
		case schema.SourceLiteral:
			if f.Literal != nil {
				inst.values[f.Name] = f.Literal
			}
		}
	}

	return inst
}

// Set assigns the value of field name, clearing any prior conditional
// absence.
func (inst *Instance) Set(name string, value any) {
	inst.values[name] = value
	delete(inst.absent, name)
}

// Get returns the value of field name and whether it is present. A field is
// absent if it was never set or was explicitly marked absent by a false
// conditional.
func (inst *Instance) Get(name string) (any, bool) {
	if inst.absent[name] {
		return nil, false
	}
	v, ok := inst.values[name]

	return v, ok
}

// MarkAbsent records that a conditional field was skipped: no attribute of
// that name exists on inst after decode.
func (inst *Instance) MarkAbsent(name string) {
	delete(inst.values, name)
	inst.absent[name] = true
}

// FieldNames returns the declared field names in declaration order.
func (inst *Instance) FieldNames() []string {
	names := make([]string, len(inst.Spec.Fields))
	for i, f := range inst.Spec.Fields {
		names[i] = f.Name
	}

	return names
}

// Resolve resolves a dotted path against inst, navigating into nested
// composite instances. It is exported for the message package, which drives
// cross-field reference resolution over a top-level partial's Instance.
func Resolve(inst *Instance, path schema.Path) (any, bool, error) {
	return resolveLocal(inst, path)
}

// resolveLocal resolves a dotted path against this instance, navigating into
// nested *Instance values for composite fields; it never navigates through a
// primitive.
func resolveLocal(inst *Instance, path schema.Path) (any, bool, error) {
	if len(path) == 0 {
		return inst, true, nil
	}

	head := path[0]
	value, ok := inst.Get(head)
	if !ok {
		if len(path) == 1 {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%w: %q not yet materialized", errs.ErrReferenceError, head)
	}

	if len(path) == 1 {
		return value, true, nil
	}

	nested, ok := value.(*Instance)
	if !ok {
		return nil, false, fmt.Errorf("%w: %q is not a composite, cannot descend into %q", errs.ErrPathError, head, path[1])
	}

	return resolveLocal(nested, path[1:])
}
