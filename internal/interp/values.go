package interp

import (
	"fmt"
	"strconv"
)

// Value is the runtime tagged union described by the data model: nil
// stands for the Language's Nil, bool for Bool, float64 for Number, string
// for String, Callable for any of Function/Class/native builtin, and
// *Instance for a class instance. Using Go's own nil/bool/float64/string
// keeps arithmetic and comparison on the host types instead of reinventing
// wrapper boxes the language doesn't need.
type Value = any

// IsTruthy implements the Language's truthiness predicate: everything is
// truthy except nil and false.
func IsTruthy(v Value) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

// Equal implements the §4.5 equality relation. Cross-kind comparisons are
// always false; NaN is never equal to itself; class instances and
// callables compare by identity.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case *Instance:
		bv, ok := b.(*Instance)
		return ok && av == bv
	case Callable:
		bv, ok := b.(Callable)
		return ok && av == bv
	default:
		return false
	}
}

// Display renders v the way Print and Str show it.
func Display(v Value) string {
	if v == nil {
		return "nil"
	}
	switch vv := v.(type) {
	case bool:
		if vv {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(vv)
	case string:
		return vv
	case *Instance:
		return vv.Class.Name.Name + " instance"
	case Callable:
		return vv.String()
	default:
		return fmt.Sprintf("%v", vv)
	}
}

// formatNumber produces the shortest round-trip decimal representation,
// collapsing whole numbers to their integer spelling (so 3.0 prints "3",
// matching every Lox-family reference display form).
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// TypeName names v's kind for error messages.
func TypeName(v Value) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case bool:
		return "bool"
	case float64:
		return "number"
	case string:
		return "string"
	case *Instance:
		return "instance"
	case Callable:
		return "callable"
	default:
		return "value"
	}
}
