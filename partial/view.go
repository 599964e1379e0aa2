package partial

import "github.com/arloliu/packetfabric/schema"

// instanceView adapts an Instance into the schema.MessageView interface that
// Condition predicates and deep-assignment closures receive. For a bare
// partial (not owned by a message), the view's scope is the partial itself.
type instanceView struct {
	inst *Instance
}

func newView(inst *Instance) schema.MessageView {
	return &instanceView{inst: inst}
}

// NewView wraps inst as a schema.MessageView, exported for the message
// package to hand to Compute/Condition closures that need to see a
// message-scoped context rather than a bare partial's own context.
func NewView(inst *Instance) schema.MessageView {
	return newView(inst)
}

func (v *instanceView) Get(path schema.Path) (any, bool, error) {
	return resolveLocal(v.inst, path)
}

func (v *instanceView) SerializeBytes() ([]byte, error) {
	return Encode(v.inst)
}
