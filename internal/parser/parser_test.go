package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/lexer"
)

func parseSrc(t *testing.T, src string) (*ast.Program, *errors.Collector) {
	t.Helper()
	collector := &errors.Collector{}
	interner := ident.NewInterner()
	toks := lexer.New([]byte(src), collector).Scan()
	prog := New(toks, interner, collector).Parse()
	return prog, collector
}

func TestParseArithmeticPrecedence(t *testing.T) {
	prog, collector := parseSrc(t, "print 1 + 2 * 3;")
	require.False(t, collector.HasErrors())
	require.Len(t, prog.Decls, 1)
	p := prog.Decls[0].(*ast.PrintStmt)
	assert.Equal(t, "(+ 1 (* 2 3))", p.Expr.String())
}

func TestParseVarDeclAndAssignment(t *testing.T) {
	prog, collector := parseSrc(t, "var a = 1; a = 2;")
	require.False(t, collector.HasErrors())
	require.Len(t, prog.Decls, 2)
	v := prog.Decls[0].(*ast.VarStmt)
	assert.Equal(t, "a", v.Name.Name)
	assert.Equal(t, "1", v.Init.String())

	exprStmt := prog.Decls[1].(*ast.ExprStmt)
	assign := exprStmt.Expr.(*ast.Assign)
	assert.Equal(t, "a", assign.Name.Name)
}

func TestInvalidAssignmentTarget(t *testing.T) {
	_, collector := parseSrc(t, "1 = 2;")
	require.True(t, collector.HasErrors())
	assert.Equal(t, errors.KindInvalidAssignmentTarget, collector.Errors[0].Kind)
}

func TestForLoopDesugarsToWhile(t *testing.T) {
	prog, collector := parseSrc(t, "for (var i = 0; i < 3; i = i + 1) print i;")
	require.False(t, collector.HasErrors())
	require.Len(t, prog.Decls, 1)

	block := prog.Decls[0].(*ast.Block)
	require.Len(t, block.Stmts, 2)
	_, isVar := block.Stmts[0].(*ast.VarStmt)
	assert.True(t, isVar)

	while := block.Stmts[1].(*ast.WhileStmt)
	whileBody := while.Body.(*ast.Block)
	require.Len(t, whileBody.Stmts, 2)
	_, isPrint := whileBody.Stmts[0].(*ast.PrintStmt)
	assert.True(t, isPrint)
	_, isIncrement := whileBody.Stmts[1].(*ast.ExprStmt)
	assert.True(t, isIncrement)
}

func TestForLoopWithoutConditionDefaultsToTrue(t *testing.T) {
	prog, collector := parseSrc(t, "for (;;) break;")
	require.False(t, collector.HasErrors())
	while := prog.Decls[0].(*ast.WhileStmt)
	lit := while.Cond.(*ast.Literal)
	assert.Equal(t, ast.LiteralTrue, lit.Kind)
}

func TestClassDeclWithSuperclassAndMethods(t *testing.T) {
	prog, collector := parseSrc(t, `
		class A { greet() { print "A"; } }
		class B < A { greet() { super.greet(); print "B"; } }
	`)
	require.False(t, collector.HasErrors())
	require.Len(t, prog.Decls, 2)

	b := prog.Decls[1].(*ast.ClassDeclStmt).Decl
	assert.Equal(t, "B", b.Name.Name)
	require.NotNil(t, b.Superclass)
	assert.Equal(t, "A", b.Superclass.Name.Name)
	require.Len(t, b.MethodList, 1)
	assert.Equal(t, "greet", b.MethodList[0].Name.Name)
}

func TestInitMethodFlaggedAsInitializer(t *testing.T) {
	prog, collector := parseSrc(t, `class C { init(v) { this.v = v; } }`)
	require.False(t, collector.HasErrors())
	c := prog.Decls[0].(*ast.ClassDeclStmt).Decl
	assert.True(t, c.MethodList[0].IsInitializer)
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	_, collector := parseSrc(t, "break;")
	require.True(t, collector.HasErrors())
	assert.Equal(t, errors.KindBreakOutsideLoop, collector.Errors[0].Kind)
}

func TestContinueInsideWhileIsFine(t *testing.T) {
	_, collector := parseSrc(t, "while (true) { continue; }")
	assert.False(t, collector.HasErrors())
}

func TestSynchronizationRecoversAndReportsMultipleErrors(t *testing.T) {
	_, collector := parseSrc(t, "var = 1; var = 2; var ok = 3;")
	require.True(t, collector.HasErrors())
	assert.GreaterOrEqual(t, len(collector.Errors), 2)
}

func TestGetAndSetExpressions(t *testing.T) {
	prog, collector := parseSrc(t, `a.b = a.c;`)
	require.False(t, collector.HasErrors())
	stmt := prog.Decls[0].(*ast.ExprStmt)
	set := stmt.Expr.(*ast.Set)
	assert.Equal(t, "b", set.Name.Name)
	get := set.Value.(*ast.Get)
	assert.Equal(t, "c", get.Name.Name)
}

func TestTooManyParametersReportsError(t *testing.T) {
	var params string
	for i := 0; i < 256; i++ {
		if i > 0 {
			params += ", "
		}
		params += "p" + string(rune('a'+(i%26)))
	}
	_, collector := parseSrc(t, "fun f("+params+") {}")
	require.True(t, collector.HasErrors())
	assert.Equal(t, errors.KindTooManyParameters, collector.Errors[0].Kind)
}
