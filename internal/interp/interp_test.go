package interp

import (
	"bytes"
	"math"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/lexer"
	"github.com/loxlang/loxi/internal/parser"
	"github.com/loxlang/loxi/internal/resolver"
)

// runProgram lexes, parses, resolves, and evaluates src end to end,
// returning the captured stdout and the first error from any stage.
func runProgram(t *testing.T, src string) (string, *errors.Error) {
	t.Helper()
	collector := &errors.Collector{}
	interner := ident.NewInterner()

	toks := lexer.New([]byte(src), collector).Scan()
	prog := parser.New(toks, interner, collector).Parse()
	require.False(t, collector.HasErrors(), "parse errors: %v", collector.Errors)

	locals := resolver.New(interner, collector).Resolve(prog)
	require.False(t, collector.HasErrors(), "resolve errors: %v", collector.Errors)

	var out bytes.Buffer
	ev := New(interner, locals, &out)
	err := ev.Run(prog)
	return out.String(), err
}

func TestEndToEndArithmeticPrint(t *testing.T) {
	out, err := runProgram(t, `print 1 + 2;`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndStringConcatenation(t *testing.T) {
	out, err := runProgram(t, `var a = "hi"; print a + " there";`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndFibonacci(t *testing.T) {
	out, err := runProgram(t, `
		fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); }
		print fib(10);
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndClassInheritanceAndSuper(t *testing.T) {
	out, err := runProgram(t, `
		class A { greet() { print "A"; } }
		class B < A { greet() { super.greet(); print "B"; } }
		B().greet();
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndClosureOverBlockScopedVariable(t *testing.T) {
	out, err := runProgram(t, `
		var f;
		{ var x = 1; fun g() { print x; } f = g; }
		f();
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndInitializerReturnsInstance(t *testing.T) {
	out, err := runProgram(t, `
		class C { init(v) { this.v = v; } }
		print C(7).v;
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestEndToEndRuntimeTypeErrorOnSubtractingAString(t *testing.T) {
	out, err := runProgram(t, `"a" - 1;`)
	require.NotNil(t, err)
	assert.Equal(t, errors.KindCheckNumberOperands, err.Kind)
	assert.Empty(t, out)
}

func TestMethodIdentityNotPreservedAcrossAccesses(t *testing.T) {
	out, err := runProgram(t, `
		class C { m() { return 1; } }
		var a = C();
		print a.m == a.m;
		print a.m() == (a.m)();
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestBreakExitsLoopAndContinueSkipsRestOfBody(t *testing.T) {
	out, err := runProgram(t, `
		var i = 0;
		while (i < 5) {
			i = i + 1;
			if (i == 2) continue;
			if (i == 4) break;
			print i;
		}
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestShortCircuitNeverEvaluatesRightOperand(t *testing.T) {
	out, err := runProgram(t, `
		fun boom() { print "boom"; return true; }
		print false and boom();
		print true or boom();
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestNativeBuiltins(t *testing.T) {
	out, err := runProgram(t, `
		print str(1) + str(true) + str(nil);
		assertEq(1 + 1, 2);
		print clock() >= 0;
	`)
	require.Nil(t, err)
	snaps.MatchSnapshot(t, out)
}

func TestAssertEqFailureIsAnAssertionFailure(t *testing.T) {
	_, err := runProgram(t, `assertEq(1, 2);`)
	require.NotNil(t, err)
	assert.Equal(t, errors.KindAssertionFailure, err.Kind)
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(nil))
	assert.False(t, IsTruthy(false))
	assert.True(t, IsTruthy(true))
	assert.True(t, IsTruthy(0.0))
	assert.True(t, IsTruthy(""))
}

func TestEqualityRules(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(1.0, 1.0))
	assert.False(t, Equal(math.NaN(), math.NaN()))
	assert.True(t, Equal("a", "a"))
	assert.False(t, Equal("1", 1.0))
	assert.False(t, Equal(1.0, true))
}

func TestDisplayForms(t *testing.T) {
	assert.Equal(t, "nil", Display(nil))
	assert.Equal(t, "true", Display(true))
	assert.Equal(t, "3", Display(3.0))
	assert.Equal(t, "3.5", Display(3.5))
	assert.Equal(t, "hi", Display("hi"))
}
