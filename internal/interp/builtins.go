package interp

import (
	"time"

	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/token"
)

// nativeFn adapts a Go closure to the Callable interface for the three
// built-in globals bound before user code runs.
type nativeFn struct {
	name  string
	arity int
	fn    func(ev *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error)
}

func (n *nativeFn) Arity() int { return n.arity }

func (n *nativeFn) String() string { return "<native fn>" }

func (n *nativeFn) Call(ev *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error) {
	return n.fn(ev, args, callPos)
}

// clockFn returns wall-clock seconds since epoch, fractional, as Number.
func clockFn() *nativeFn {
	return &nativeFn{
		name:  "clock",
		arity: 0,
		fn: func(_ *Evaluator, _ []Value, callPos token.Position) (Value, *errors.Error) {
			now := time.Now()
			if now.IsZero() {
				return nil, errors.New(errors.KindNativeClockSysTimeError, "Failed to read system clock.", callPos)
			}
			return float64(now.UnixNano()) / 1e9, nil
		},
	}
}

// assertEqFn fails the program with AssertionFailure when its two
// arguments are not equal per the §4.5 equality relation.
func assertEqFn() *nativeFn {
	return &nativeFn{
		name:  "assertEq",
		arity: 2,
		fn: func(_ *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error) {
			if !Equal(args[0], args[1]) {
				return nil, errors.New(errors.KindAssertionFailure,
					"Expected "+Display(args[0])+" to equal "+Display(args[1])+".", callPos)
			}
			return nil, nil
		},
	}
}

// strFn returns the printable display form of its argument.
func strFn() *nativeFn {
	return &nativeFn{
		name:  "str",
		arity: 1,
		fn: func(_ *Evaluator, args []Value, _ token.Position) (Value, *errors.Error) {
			return Display(args[0]), nil
		},
	}
}
