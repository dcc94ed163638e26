// Package errors implements the structured error values and console
// reporter described by the Language's error-handling design: every error
// the pipeline can raise carries a Kind and a source Position, and is
// rendered as a single line of the form
//
//	<Kind message>, at line: L, column: C.
package errors

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/loxlang/loxi/internal/token"
)

// Kind names one of the parser, resolver, or runtime error conditions of
// the language specification.
type Kind string

// Parser error kinds.
const (
	KindUnexpectedToken          Kind = "UnexpectedToken"
	KindParseFloatError          Kind = "ParseFloatError"
	KindUnterminatedString       Kind = "UnterminatedString"
	KindInvalidEscapeCharacter   Kind = "InvalidEscapeCharacter"
	KindUnexpectedEndOfFile      Kind = "UnexpectedEndOfFile"
	KindMissingClosingParen      Kind = "MissingClosingParenthesis"
	KindExpectedExpression       Kind = "ExpectedExpression"
	KindMissingSemicolon         Kind = "MissingSemicolon"
	KindInvalidAssignmentTarget  Kind = "InvalidAssignmentTarget"
	KindTooManyParameters        Kind = "TooManyParameters"
	KindTooManyArguments         Kind = "TooManyArguments"
	KindBreakOutsideLoop         Kind = "BreakOutsideLoop"
	KindContinueOutsideLoop      Kind = "ContinueOutsideLoop"
)

// Resolver error kinds.
const (
	KindLocalVariableNotFound  Kind = "LocalVariableNotFound"
	KindVariableAlreadyExists  Kind = "VariableAlreadyExists"
	KindReturnFromTopLevelCode Kind = "ReturnFromTopLevelCode"
	KindReturnFromInitializer  Kind = "ReturnFromInitializer"
	KindThisOutsideClass       Kind = "ThisOutsideClass"
	KindSuperOutsideClass      Kind = "SuperOutsideClass"
	KindSuperInNonSubclass     Kind = "SuperInNonSubclass"
	KindInheritFromSelf        Kind = "InheritFromSelf"
)

// Runtime error kinds.
const (
	KindCheckNumberOperand      Kind = "CheckNumberOperand"
	KindCheckNumberOperands     Kind = "CheckNumberOperands"
	KindInvalidPlusOperands     Kind = "InvalidPlusOperands"
	KindNotCallable             Kind = "NotCallable"
	KindWrongArity              Kind = "WrongArity"
	KindUndefinedVariable       Kind = "UndefinedVariable"
	KindUndefinedProperty       Kind = "UndefinedProperty"
	KindOnlyInstancesHaveProps  Kind = "OnlyInstancesHaveProperties"
	KindOnlyInstancesHaveFields Kind = "OnlyInstancesHaveFields"
	KindSuperclassMustBeAClass  Kind = "SuperclassMustBeAClass"
	KindNativeClockSysTimeError Kind = "NativeClockSysTimeError"
	KindAssertionFailure        Kind = "AssertionFailure"
)

// Error is a single structured error produced anywhere in the pipeline.
type Error struct {
	Kind     Kind
	Message  string
	Position token.Position
}

func New(kind Kind, message string, pos token.Position) *Error {
	return &Error{Kind: kind, Message: message, Position: pos}
}

func (e *Error) Error() string {
	return e.Format()
}

// Format renders the error exactly as the console reporter's wire format:
// "<Kind message>, at line: L, column: C."
func (e *Error) Format() string {
	return fmt.Sprintf("<%s %s>, at line: %d, column: %d.", e.Kind, e.Message, e.Position.Line, e.Position.Column)
}

// Reporter receives structured errors as the pipeline discovers them. The
// lexer, parser, and resolver all report through this interface rather than
// failing immediately, so a single pass can surface every error it finds.
type Reporter interface {
	Report(err *Error)
}

// Collector is a Reporter that accumulates every reported error. The
// pipeline hands one to the lexer, parser, and resolver and checks it after
// each full pass to decide whether to continue to the next stage.
type Collector struct {
	Errors []*Error
}

func (c *Collector) Report(err *Error) {
	c.Errors = append(c.Errors, err)
}

func (c *Collector) HasErrors() bool {
	return len(c.Errors) > 0
}

// ConsoleReporter writes each reported error as one line to an io.Writer,
// optionally colorizing the Kind the way the teacher's comparison harness
// colorizes passed/failed test output.
type ConsoleReporter struct {
	Writer io.Writer
	Color  bool
}

func NewConsoleReporter(w io.Writer, colorize bool) *ConsoleReporter {
	return &ConsoleReporter{Writer: w, Color: colorize}
}

func (c *ConsoleReporter) Report(err *Error) {
	if c.Color {
		kind := color.New(color.FgRed, color.Bold).Sprint(string(err.Kind))
		fmt.Fprintf(c.Writer, "<%s %s>, at line: %d, column: %d.\n", kind, err.Message, err.Position.Line, err.Position.Column)
		return
	}
	fmt.Fprintln(c.Writer, err.Format())
}
