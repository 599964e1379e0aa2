package partial

import (
	"fmt"
	"reflect"

	"github.com/arloliu/packetfabric/errs"
	"github.com/arloliu/packetfabric/schema"
)

// staticEquals compares a decoded value against a declared static constant.
func staticEquals(decoded, declared any) bool {
	return reflect.DeepEqual(decoded, declared)
}

// resolveArrayCount determines a fixed-count array's element count, either
// from its literal or by resolving its dotted count path against already
// materialized fields of inst; the referenced field must have been
// decoded/set earlier in declaration order.
func resolveArrayCount(inst *Instance, field schema.FieldSpec) (int, error) {
	if field.FixedCount >= 0 {
		return field.FixedCount, nil
	}

	value, ok, err := resolveLocal(inst, field.CountPath)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: count path %q not yet decoded", errs.ErrForwardNumlistReference, field.CountPath)
	}

	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case uint32:
		return int(v), nil
	case uint16:
		return int(v), nil
	case uint8:
		return int(v), nil
	default:
		return 0, fmt.Errorf("%w: count path %q is not an integer, got %T", errs.ErrTypeError, field.CountPath, value)
	}
}
