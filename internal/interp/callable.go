package interp

import (
	"github.com/loxlang/loxi/internal/ast"
	"github.com/loxlang/loxi/internal/environment"
	"github.com/loxlang/loxi/internal/errors"
	"github.com/loxlang/loxi/internal/ident"
	"github.com/loxlang/loxi/internal/token"
)

// Callable is anything that can appear on the left of a Call expression:
// a user-defined Function, a Class (construction), or a native builtin.
type Callable interface {
	Arity() int
	Call(ev *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error)
	String() string
}

// Function is a user-defined function or method. Its Closure is exactly
// the environment that was current when the "fun"/method declaration was
// evaluated, not the environment at call time — this is what gives
// closures and bound methods their captured-variable behavior.
type Function struct {
	Decl          *ast.FunctionDecl
	Closure       *environment.Environment
	IsInitializer bool
}

func (f *Function) Arity() int { return len(f.Decl.Params) }

func (f *Function) String() string { return "<fn " + f.Decl.Name.Name + ">" }

func (f *Function) Call(ev *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error) {
	callEnv := environment.New(f.Closure)
	for i, p := range f.Decl.Params {
		callEnv.Define(p.Symbol, args[i])
	}

	sig, err := ev.execBlock(f.Decl.Body, callEnv)
	if err != nil {
		return nil, err
	}

	if f.IsInitializer {
		return f.Closure.GetAt(0, ev.symThis), nil
	}

	if sig.kind == signalReturn {
		return sig.value, nil
	}
	return nil, nil
}

// Bind produces a fresh Function whose closure is a new scope layered
// atop f's closure, binding "this" to receiver. Every Get that resolves to
// a method calls Bind anew, so method identity is never preserved across
// accesses.
func (f *Function) Bind(receiver *Instance, symThis ident.Symbol) *Function {
	env := environment.New(f.Closure)
	env.Define(symThis, receiver)
	return &Function{Decl: f.Decl, Closure: env, IsInitializer: f.IsInitializer}
}

// Class is a runtime class value: construction semantics plus method
// lookup walking the superclass chain. Init is the resolved "init" method
// (possibly inherited), found once at class-construction time.
type Class struct {
	Name       ast.Identifier
	Methods    map[ident.Symbol]*Function
	Superclass *Class
	Init       *Function
}

func (c *Class) String() string { return c.Name.Name }

// FindMethod walks c then its ancestors looking for name, first match wins.
func (c *Class) FindMethod(name ident.Symbol) (*Function, bool) {
	for cls := c; cls != nil; cls = cls.Superclass {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

func (c *Class) Arity() int {
	if c.Init != nil {
		return c.Init.Arity()
	}
	return 0
}

func (c *Class) Call(ev *Evaluator, args []Value, callPos token.Position) (Value, *errors.Error) {
	instance := &Instance{Class: c, Fields: make(map[ident.Symbol]Value)}
	if c.Init != nil {
		bound := c.Init.Bind(instance, ev.symThis)
		if _, err := bound.Call(ev, args, callPos); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a live object: a back-reference to its class plus a mutable
// field map. Two instances are equal only if they are the same allocation.
type Instance struct {
	Class  *Class
	Fields map[ident.Symbol]Value
}

// Get implements property lookup: fields shadow methods, and a found
// method comes back freshly bound to this instance.
func (i *Instance) Get(name ast.Identifier, symThis ident.Symbol) (Value, *errors.Error) {
	if v, ok := i.Fields[name.Symbol]; ok {
		return v, nil
	}
	if m, ok := i.Class.FindMethod(name.Symbol); ok {
		return m.Bind(i, symThis), nil
	}
	return nil, errors.New(errors.KindUndefinedProperty, "Undefined property '"+name.Name+"'.", name.Position)
}

func (i *Instance) Set(name ast.Identifier, value Value) {
	i.Fields[name.Symbol] = value
}
