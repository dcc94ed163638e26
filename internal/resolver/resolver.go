// Package resolver implements the static resolution pass: for every
// variable-reference expression it computes the lexical distance (number of
// enclosing scopes) at which its binding lives, and it validates this/super/
// return usage that cannot be checked syntactically.
package resolver

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
)

// Locals is the resolution side-table: expression id -> lexical distance.
// Absence means "global".
type Locals map[ast.ExprID]int

type functionType int

const (
	funcNone functionType = iota
	funcFunction
	funcMethod
	funcInitializer
)

type classType int

const (
	classNone classType = iota
	classClass
	classSubclass
)

// scope maps a symbol to whether it has been fully defined yet (false means
// "declared but not yet defined" — the self-initializer guard).
type scope map[ident.Symbol]bool

// Resolver walks an already-parsed AST and produces a Locals side-table.
type Resolver struct {
	interner *ident.Interner
	reporter errors.Reporter

	scopes    []scope
	funcType  functionType
	classType classType
	locals    Locals

	symThis  ident.Symbol
	symSuper ident.Symbol
	symInit  ident.Symbol
}

func New(interner *ident.Interner, reporter errors.Reporter) *Resolver {
	return &Resolver{
		interner: interner,
		reporter: reporter,
		locals:   make(Locals),
		symThis:  interner.Intern("this"),
		symSuper: interner.Intern("super"),
		symInit:  interner.Intern("init"),
	}
}

// Resolve walks the whole program and returns the resolution side-table.
// Call reporter.(*errors.Collector).HasErrors() afterward to decide whether
// to proceed to evaluation.
func (r *Resolver) Resolve(program *ast.Program) Locals {
	for _, d := range program.Decls {
		r.resolveStmt(d)
	}
	return r.locals
}

func (r *Resolver) beginScope() { r.scopes = append(r.scopes, make(scope)) }
func (r *Resolver) endScope()   { r.scopes = r.scopes[:len(r.scopes)-1] }

func (r *Resolver) declare(name ast.Identifier) {
	if len(r.scopes) == 0 {
		return
	}
	top := r.scopes[len(r.scopes)-1]
	if _, ok := top[name.Symbol]; ok {
		r.reporter.Report(errors.New(errors.KindVariableAlreadyExists,
			"Already a variable named '"+name.Name+"' in this scope.", name.Position))
	}
	top[name.Symbol] = false
}

func (r *Resolver) define(name ast.Identifier) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Symbol] = true
}

func (r *Resolver) declareDefineSynthetic(sym ident.Symbol) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][sym] = true
}

// resolveLocal scans scopes from innermost to outermost and records the
// distance to the first one containing sym. Names not found in any local
// scope are left out of the side-table entirely (treated as global).
func (r *Resolver) resolveLocal(id ast.ExprID, sym ident.Symbol) {
	n := len(r.scopes)
	for i := n - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][sym]; ok {
			r.locals[id] = n - 1 - i
			return
		}
	}
}

func (r *Resolver) resolveFunction(fd *ast.FunctionDecl, ft functionType) {
	enclosing := r.funcType
	r.funcType = ft

	r.beginScope()
	for _, p := range fd.Params {
		r.declare(p)
		r.define(p)
	}
	for _, stmt := range fd.Body {
		r.resolveStmt(stmt)
	}
	r.endScope()

	r.funcType = enclosing
}

func (r *Resolver) resolveStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		r.resolveExpr(st.Expr)
	case *ast.PrintStmt:
		r.resolveExpr(st.Expr)
	case *ast.VarStmt:
		r.declare(st.Name)
		if st.Init != nil {
			r.resolveExpr(st.Init)
		}
		r.define(st.Name)
	case *ast.Block:
		r.beginScope()
		for _, decl := range st.Stmts {
			r.resolveStmt(decl)
		}
		r.endScope()
	case *ast.IfStmt:
		r.resolveExpr(st.Cond)
		r.resolveStmt(st.Then)
		if st.Else != nil {
			r.resolveStmt(st.Else)
		}
	case *ast.WhileStmt:
		r.resolveExpr(st.Cond)
		r.resolveStmt(st.Body)
	case *ast.ReturnStmt:
		if r.funcType == funcNone {
			r.reporter.Report(errors.New(errors.KindReturnFromTopLevelCode,
				"Can't return from top-level code.", st.Position))
		}
		if st.Expr != nil {
			if r.funcType == funcInitializer {
				r.reporter.Report(errors.New(errors.KindReturnFromInitializer,
					"Can't return a value from an initializer.", st.Position))
			}
			r.resolveExpr(st.Expr)
		}
	case *ast.BreakStmt, *ast.ContinueStmt:
		// Break/continue-outside-loop is a syntactic property checked by
		// the parser's loop-depth counter; nothing to resolve here.
	case *ast.FunDeclStmt:
		r.declare(st.Decl.Name)
		r.define(st.Decl.Name)
		r.resolveFunction(st.Decl, funcFunction)
	case *ast.ClassDeclStmt:
		r.resolveClass(st.Decl)
	default:
		panic("resolver: unhandled statement type")
	}
}

func (r *Resolver) resolveClass(cd *ast.ClassDecl) {
	enclosingClass := r.classType
	r.classType = classClass

	r.declare(cd.Name)
	r.define(cd.Name)

	if cd.Superclass != nil {
		r.classType = classSubclass
		if cd.Superclass.Name.Name == cd.Name.Name {
			r.reporter.Report(errors.New(errors.KindInheritFromSelf,
				"A class can't inherit from itself.", cd.Superclass.Name.Position))
		}
		r.resolveExpr(cd.Superclass)

		r.beginScope()
		r.declareDefineSynthetic(r.symSuper)
	}

	r.beginScope()
	r.declareDefineSynthetic(r.symThis)

	for _, method := range cd.MethodList {
		ft := funcMethod
		if method.Name.Symbol == r.symInit {
			ft = funcInitializer
		}
		r.resolveFunction(method, ft)
	}

	r.endScope()

	if cd.Superclass != nil {
		r.endScope()
	}

	r.classType = enclosingClass
}

func (r *Resolver) resolveExpr(e ast.Expr) {
	switch ex := e.(type) {
	case *ast.Literal:
		// nothing to resolve
	case *ast.Unary:
		r.resolveExpr(ex.Right)
	case *ast.Binary:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.Logical:
		r.resolveExpr(ex.Left)
		r.resolveExpr(ex.Right)
	case *ast.Grouping:
		r.resolveExpr(ex.Inner)
	case *ast.Variable:
		if len(r.scopes) > 0 {
			top := r.scopes[len(r.scopes)-1]
			if defined, declared := top[ex.Name.Symbol]; declared && !defined {
				r.reporter.Report(errors.New(errors.KindLocalVariableNotFound,
					"Can't read local variable '"+ex.Name.Name+"' in its own initializer.", ex.Name.Position))
			}
		}
		r.resolveLocal(ex.ID(), ex.Name.Symbol)
	case *ast.Assign:
		r.resolveExpr(ex.Value)
		r.resolveLocal(ex.ID(), ex.Name.Symbol)
	case *ast.Call:
		r.resolveExpr(ex.Callee)
		for _, a := range ex.Args {
			r.resolveExpr(a)
		}
	case *ast.Get:
		r.resolveExpr(ex.Object)
	case *ast.Set:
		r.resolveExpr(ex.Value)
		r.resolveExpr(ex.Object)
	case *ast.This:
		if r.classType == classNone {
			r.reporter.Report(errors.New(errors.KindThisOutsideClass,
				"Can't use 'this' outside of a class.", ex.Pos()))
			return
		}
		r.resolveLocal(ex.ID(), r.symThis)
	case *ast.Super:
		if r.classType == classNone {
			r.reporter.Report(errors.New(errors.KindSuperOutsideClass,
				"Can't use 'super' outside of a class.", ex.Pos()))
			return
		} else if r.classType != classSubclass {
			r.reporter.Report(errors.New(errors.KindSuperInNonSubclass,
				"Can't use 'super' in a class with no superclass.", ex.Pos()))
			return
		}
		r.resolveLocal(ex.ID(), r.symSuper)
	default:
		panic("resolver: unhandled expression type")
	}
}
