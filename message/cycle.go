package message

import (
	"fmt"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
)

// detectComputeCycle rejects a spec whose length_of/size_of/value_from
// fields form a circular dependency, failing fast with errs.ErrComputeCycle
// rather than looping at encode time or silently using a stale value.
//
// Only references that resolve to a sibling field in the same partial are
// tracked; a reserved size_of("body") literal has no field to cycle through,
// and Compute closures are opaque functions this module cannot inspect.
func detectComputeCycle(spec *schema.PartialSpec) error {
	deps := make(map[string][]string, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.RefPath == nil || f.RefPath.IsReserved() {
			continue
		}
		if _, ok := spec.FieldByName(f.RefPath[0]); ok {
			deps[f.Name] = append(deps[f.Name], f.RefPath[0])
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(spec.Fields))

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", errs.ErrComputeCycle, append(chain, name))
		}

		state[name] = visiting
		for _, dep := range deps[name] {
			if err := visit(dep, append(chain, name)); err != nil {
				return err
			}
		}
		state[name] = done

		return nil
	}

	for _, f := range spec.Fields {
		if err := visit(f.Name, nil); err != nil {
			return err
		}
	}

	return nil
}
