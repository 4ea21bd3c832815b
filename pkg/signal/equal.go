package signal

import "reflect"

// Equal reports whether a and b hold the same value. Comparable scalars use
// ==, composite values use reflect.DeepEqual, functions are never equal.
// Values of different dynamic types are unequal.
func Equal[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}

	at, bt := reflect.TypeOf(av), reflect.TypeOf(bv)
	if at != bt {
		return false
	}

	switch at.Kind() {
	case reflect.Func:
		return false
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return av == bv
	default:
		return reflect.DeepEqual(av, bv)
	}
}
