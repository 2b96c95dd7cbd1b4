package internal

import "reflect"

// IsEqual is the default equality policy: primitive equality for comparable
// values and identity for reference kinds (same backing array, same map, ...).
// Values holding uncomparable dynamic types never compare equal.
func IsEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}

	if ta.Comparable() {
		return comparableEqual(a, b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Slice:
		if va.IsNil() || vb.IsNil() {
			return va.IsNil() && vb.IsNil()
		}
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map:
		return va.Pointer() == vb.Pointer()
	default:
		// funcs and structs with uncomparable fields
		return false
	}
}

// comparableEqual guards against interface fields holding uncomparable values,
// which make == panic even on a comparable static type.
func comparableEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()

	return a == b
}
