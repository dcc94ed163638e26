// Package interp implements the tree-walking evaluator: the runtime value
// model, the Callable/Class/Instance machinery, the three native globals,
// and the Evaluator that walks statements and expressions consuming the
// resolver's side-table.
package interp

import (
	"io"
	"strconv"

	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/environment"
	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/resolver"
)

// Evaluator walks an already-resolved AST, maintaining the current
// environment and consuming the resolver's distance side-table.
type Evaluator struct {
	interner *ident.Interner
	locals   resolver.Locals
	globals  *environment.Environment
	env      *environment.Environment
	out      io.Writer

	symThis  ident.Symbol
	symSuper ident.Symbol
	symInit  ident.Symbol
}

// New returns an Evaluator with clock/assertEq/str bound as globals, ready
// to run a program resolved against the same interner.
func New(interner *ident.Interner, locals resolver.Locals, out io.Writer) *Evaluator {
	globals := environment.New(nil)
	ev := &Evaluator{
		interner: interner,
		locals:   locals,
		globals:  globals,
		env:      globals,
		out:      out,
		symThis:  interner.Intern("this"),
		symSuper: interner.Intern("super"),
		symInit:  interner.Intern("init"),
	}
	globals.Define(interner.Intern("clock"), clockFn())
	globals.Define(interner.Intern("assertEq"), assertEqFn())
	globals.Define(interner.Intern("str"), strFn())
	return ev
}

// Run executes every top-level declaration in order, stopping at the first
// runtime error (the evaluator never recovers mid-program).
func (ev *Evaluator) Run(program *ast.Program) *errors.Error {
	for _, d := range program.Decls {
		if _, err := ev.execStmt(d); err != nil {
			return err
		}
	}
	return nil
}

// execBlock runs stmts with env as the current environment, restoring the
// previous environment on every exit path. It is the single place that
// installs a new environment, used both by Block execution and by
// Function.Call (whose caller already built the call's environment).
func (ev *Evaluator) execBlock(stmts []ast.Stmt, env *environment.Environment) (signal, *errors.Error) {
	previous := ev.env
	ev.env = env
	defer func() { ev.env = previous }()

	for _, s := range stmts {
		sig, err := ev.execStmt(s)
		if err != nil {
			return signal{}, err
		}
		if sig.kind != signalNormal {
			return sig, nil
		}
	}
	return normalSignal, nil
}

func (ev *Evaluator) execStmt(s ast.Stmt) (signal, *errors.Error) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		_, err := ev.eval(st.Expr)
		return normalSignal, err

	case *ast.PrintStmt:
		v, err := ev.eval(st.Expr)
		if err != nil {
			return signal{}, err
		}
		io.WriteString(ev.out, Display(v)+"\n")
		return normalSignal, nil

	case *ast.VarStmt:
		var v Value
		if st.Init != nil {
			var err *errors.Error
			v, err = ev.eval(st.Init)
			if err != nil {
				return signal{}, err
			}
		}
		ev.env.Define(st.Name.Symbol, v)
		return normalSignal, nil

	case *ast.Block:
		return ev.execBlock(st.Stmts, environment.New(ev.env))

	case *ast.IfStmt:
		cond, err := ev.eval(st.Cond)
		if err != nil {
			return signal{}, err
		}
		if IsTruthy(cond) {
			return ev.execStmt(st.Then)
		}
		if st.Else != nil {
			return ev.execStmt(st.Else)
		}
		return normalSignal, nil

	case *ast.WhileStmt:
		for {
			cond, err := ev.eval(st.Cond)
			if err != nil {
				return signal{}, err
			}
			if !IsTruthy(cond) {
				return normalSignal, nil
			}
			sig, err := ev.execStmt(st.Body)
			if err != nil {
				return signal{}, err
			}
			switch sig.kind {
			case signalBreak:
				return normalSignal, nil
			case signalReturn:
				return sig, nil
			}
		}

	case *ast.ReturnStmt:
		if st.Expr == nil {
			return returnSignal(nil), nil
		}
		v, err := ev.eval(st.Expr)
		if err != nil {
			return signal{}, err
		}
		return returnSignal(v), nil

	case *ast.BreakStmt:
		return signal{kind: signalBreak}, nil

	case *ast.ContinueStmt:
		return signal{kind: signalContinue}, nil

	case *ast.FunDeclStmt:
		fn := &Function{Decl: st.Decl, Closure: ev.env, IsInitializer: st.Decl.IsInitializer}
		ev.env.Define(st.Decl.Name.Symbol, fn)
		return normalSignal, nil

	case *ast.ClassDeclStmt:
		return ev.execClassDecl(st.Decl)

	default:
		panic("interp: unhandled statement type")
	}
}

func (ev *Evaluator) execClassDecl(decl *ast.ClassDecl) (signal, *errors.Error) {
	var superclass *Class
	if decl.Superclass != nil {
		v, err := ev.eval(decl.Superclass)
		if err != nil {
			return signal{}, err
		}
		sc, ok := v.(*Class)
		if !ok {
			return signal{}, errors.New(errors.KindSuperclassMustBeAClass, "Superclass must be a class.", decl.Superclass.Pos())
		}
		superclass = sc
	}

	classEnv := ev.env
	if superclass != nil {
		classEnv = environment.New(ev.env)
		classEnv.Define(ev.symSuper, superclass)
	}

	methods := make(map[ident.Symbol]*Function, len(decl.MethodList))
	for _, m := range decl.MethodList {
		methods[m.Name.Symbol] = &Function{Decl: m, Closure: classEnv, IsInitializer: m.IsInitializer}
	}

	class := &Class{Name: decl.Name, Methods: methods, Superclass: superclass}
	if init, ok := class.FindMethod(ev.symInit); ok {
		class.Init = init
	}

	ev.env.Define(decl.Name.Symbol, class)
	return normalSignal, nil
}

func (ev *Evaluator) eval(e ast.Expr) (Value, *errors.Error) {
	switch ex := e.(type) {
	case *ast.Literal:
		return ev.evalLiteral(ex)

	case *ast.Unary:
		right, err := ev.eval(ex.Right)
		if err != nil {
			return nil, err
		}
		switch ex.Op {
		case ast.OpNot:
			return !IsTruthy(right), nil
		case ast.OpNegate:
			n, ok := right.(float64)
			if !ok {
				return nil, errors.New(errors.KindCheckNumberOperand, "Operand must be a number.", ex.Pos())
			}
			return -n, nil
		}
		panic("interp: unhandled unary operator")

	case *ast.Binary:
		return ev.evalBinary(ex)

	case *ast.Logical:
		left, err := ev.eval(ex.Left)
		if err != nil {
			return nil, err
		}
		if ex.Op == ast.LogicalOr {
			if IsTruthy(left) {
				return left, nil
			}
		} else if !IsTruthy(left) {
			return left, nil
		}
		return ev.eval(ex.Right)

	case *ast.Grouping:
		return ev.eval(ex.Inner)

	case *ast.Variable:
		return ev.lookupVariable(ex.Name, ex.ID())

	case *ast.Assign:
		v, err := ev.eval(ex.Value)
		if err != nil {
			return nil, err
		}
		if err := ev.assignVariable(ex.Name, ex.ID(), v); err != nil {
			return nil, err
		}
		return v, nil

	case *ast.Call:
		return ev.evalCall(ex)

	case *ast.Get:
		obj, err := ev.eval(ex.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, errors.New(errors.KindOnlyInstancesHaveProps, "Only instances have properties.", ex.Pos())
		}
		return instance.Get(ex.Name, ev.symThis)

	case *ast.Set:
		obj, err := ev.eval(ex.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, errors.New(errors.KindOnlyInstancesHaveFields, "Only instances have fields.", ex.Pos())
		}
		v, err := ev.eval(ex.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(ex.Name, v)
		return v, nil

	case *ast.This:
		if dist, ok := ev.locals[ex.ID()]; ok {
			return ev.env.GetAt(dist, ev.symThis), nil
		}
		return nil, errors.New(errors.KindUndefinedVariable, "Undefined variable 'this'.", ex.Pos())

	case *ast.Super:
		return ev.evalSuper(ex)

	default:
		panic("interp: unhandled expression type")
	}
}

func (ev *Evaluator) evalLiteral(l *ast.Literal) (Value, *errors.Error) {
	switch l.Kind {
	case ast.LiteralString:
		return l.Text, nil
	case ast.LiteralNumber:
		n, perr := strconv.ParseFloat(l.Text, 64)
		if perr != nil {
			return nil, errors.New(errors.KindParseFloatError, "Invalid number literal '"+l.Text+"'.", l.Pos())
		}
		return n, nil
	case ast.LiteralTrue:
		return true, nil
	case ast.LiteralFalse:
		return false, nil
	default:
		return nil, nil
	}
}

func (ev *Evaluator) evalBinary(b *ast.Binary) (Value, *errors.Error) {
	left, err := ev.eval(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := ev.eval(b.Right)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case ast.OpAdd:
		if ln, ok := left.(float64); ok {
			if rn, ok := right.(float64); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		return nil, errors.New(errors.KindInvalidPlusOperands, "Operands must be two numbers or two strings.", b.OpPos)

	case ast.OpEqual:
		return Equal(left, right), nil
	case ast.OpNotEqual:
		return !Equal(left, right), nil
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, errors.New(errors.KindCheckNumberOperands, "Operands must be numbers.", b.OpPos)
	}

	switch b.Op {
	case ast.OpSub:
		return ln - rn, nil
	case ast.OpMul:
		return ln * rn, nil
	case ast.OpDiv:
		return ln / rn, nil
	case ast.OpLess:
		return ln < rn, nil
	case ast.OpLessEqual:
		return ln <= rn, nil
	case ast.OpGreater:
		return ln > rn, nil
	case ast.OpGreaterEqual:
		return ln >= rn, nil
	}
	panic("interp: unhandled binary operator")
}

func (ev *Evaluator) evalCall(c *ast.Call) (Value, *errors.Error) {
	calleeVal, err := ev.eval(c.Callee)
	if err != nil {
		return nil, err
	}
	callee, ok := calleeVal.(Callable)
	if !ok {
		return nil, errors.New(errors.KindNotCallable, "Can only call functions and classes.", c.ParenPos)
	}

	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := ev.eval(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	if len(args) != callee.Arity() {
		return nil, errors.New(errors.KindWrongArity,
			"Expected "+strconv.Itoa(callee.Arity())+" arguments but got "+strconv.Itoa(len(args))+".", c.ParenPos)
	}

	return callee.Call(ev, args, c.ParenPos)
}

func (ev *Evaluator) evalSuper(s *ast.Super) (Value, *errors.Error) {
	dist, ok := ev.locals[s.ID()]
	if !ok {
		return nil, errors.New(errors.KindUndefinedVariable, "Undefined variable 'super'.", s.Pos())
	}
	superVal := ev.env.GetAt(dist, ev.symSuper)
	superclass := superVal.(*Class)
	thisVal := ev.env.GetAt(dist-1, ev.symThis)
	instance := thisVal.(*Instance)

	method, ok := superclass.FindMethod(s.Method.Symbol)
	if !ok {
		return nil, errors.New(errors.KindUndefinedProperty, "Undefined property '"+s.Method.Name+"'.", s.Method.Position)
	}
	return method.Bind(instance, ev.symThis), nil
}

func (ev *Evaluator) lookupVariable(name ast.Identifier, id ast.ExprID) (Value, *errors.Error) {
	if dist, ok := ev.locals[id]; ok {
		return ev.env.GetAt(dist, name.Symbol), nil
	}
	if v, ok := ev.globals.Get(name.Symbol); ok {
		return v, nil
	}
	return nil, errors.New(errors.KindUndefinedVariable, "Undefined variable '"+name.Name+"'.", name.Position)
}

func (ev *Evaluator) assignVariable(name ast.Identifier, id ast.ExprID, value Value) *errors.Error {
	if dist, ok := ev.locals[id]; ok {
		ev.env.AssignAt(dist, name.Symbol, value)
		return nil
	}
	if ev.globals.Assign(name.Symbol, value) {
		return nil
	}
	return errors.New(errors.KindUndefinedVariable, "Undefined variable '"+name.Name+"'.", name.Position)
}
