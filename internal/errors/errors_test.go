package errors

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/loxlang/loxi/internal/token"
)

func TestFormatMatchesWireFormat(t *testing.T) {
	err := New(KindUndefinedVariable, "Undefined variable 'x'.", token.Position{Line: 4, Column: 9})
	assert.Equal(t, "<UndefinedVariable Undefined variable 'x'.>, at line: 4, column: 9.", err.Format())
	assert.Equal(t, err.Format(), err.Error())
}

func TestCollectorAccumulatesAndReportsHasErrors(t *testing.T) {
	c := &Collector{}
	assert.False(t, c.HasErrors())

	c.Report(New(KindUnexpectedToken, "bad char", token.Position{Line: 1, Column: 1}))
	c.Report(New(KindMissingSemicolon, "missing ;", token.Position{Line: 2, Column: 1}))

	assert.True(t, c.HasErrors())
	assert.Len(t, c.Errors, 2)
}

func TestConsoleReporterWritesOneLinePerError(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewConsoleReporter(&buf, false)
	reporter.Report(New(KindAssertionFailure, "Expected 1 to equal 2.", token.Position{Line: 1, Column: 1}))
	assert.Equal(t, "<AssertionFailure Expected 1 to equal 2.>, at line: 1, column: 1.\n", buf.String())
}
