package interp

// signalKind distinguishes the non-local control outcomes a statement
// execution can produce.
type signalKind int

const (
	signalNormal signalKind = iota
	signalBreak
	signalContinue
	signalReturn
)

// signal is the result of executing one statement: either "keep going"
// (Normal) or one of the three non-local exits a block must propagate
// upward to its nearest handler (loop for Break/Continue, call frame for
// Return).
type signal struct {
	kind  signalKind
	value Value // populated only for signalReturn
}

var normalSignal = signal{kind: signalNormal}

func returnSignal(v Value) signal { return signal{kind: signalReturn, value: v} }
