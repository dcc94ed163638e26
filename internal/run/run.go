// Package run wires the pipeline together: lex, parse, resolve, evaluate,
// applying the propagation policy described by the language's error design
// (stop before resolution on any parse error, stop before evaluation on
// any resolution error, stop at the first runtime error).
package run

import (
	"io"

	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/interp"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/parser"
	"github.com/loxlang/loxi/internal/resolver"
)

// ExitOK and ExitError mirror the exit codes described in the external
// interfaces: 0 on success, 64 on any pipeline or usage error.
const (
	ExitOK    = 0
	ExitError = 64
)

// Execute runs src to completion, writing Print output to out and any
// pipeline errors (colorized per colorize) to errOut. It returns the
// process exit code.
func Execute(src []byte, out io.Writer, errOut io.Writer, colorize bool) int {
	collector := &errors.Collector{}

	lx := lexer.New(src, collector)
	tokens := lx.Scan()

	interner := ident.NewInterner()
	p := parser.New(tokens, interner, collector)
	program := p.Parse()

	if collector.HasErrors() {
		flush(collector, errOut, colorize)
		return ExitError
	}

	res := resolver.New(interner, collector)
	locals := res.Resolve(program)

	if collector.HasErrors() {
		flush(collector, errOut, colorize)
		return ExitError
	}

	ev := interp.New(interner, locals, out)
	if err := ev.Run(program); err != nil {
		errors.NewConsoleReporter(errOut, colorize).Report(err)
		return ExitError
	}

	return ExitOK
}

func flush(collector *errors.Collector, errOut io.Writer, colorize bool) {
	console := errors.NewConsoleReporter(errOut, colorize)
	for _, e := range collector.Errors {
		console.Report(e)
	}
}
