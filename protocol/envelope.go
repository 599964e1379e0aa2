package protocol

import (
	"github.com/arloliu/packetfabric/partial"
	"github.com/arloliu/packetfabric/schema"
)

// newEnvelopeInstance materializes spec's header/footer field values from a
// pre-resolved value map.
func newEnvelopeInstance(spec *schema.PartialSpec, values map[string]any) *partial.Instance {
	inst := partial.New(spec)
	for name, v := range values {
		inst.Set(name, v)
	}

	return inst
}

func encodeInstance(inst *partial.Instance) ([]byte, error) {
	return partial.Encode(inst)
}
