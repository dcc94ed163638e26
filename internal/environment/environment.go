// Package environment implements the linked chain of lexical scopes the
// evaluator walks. Each scope is a symbol->value map; environments form a
// tree at runtime, since a closure's defining environment may outlive the
// call that created it and be shared by more than one Function value.
package environment

import (
	"github.com/loxlang/loxi/internal/ident"
)

// Environment is one scope plus an optional link to its enclosing scope.
type Environment struct {
	Enclosing *Environment
	values    map[ident.Symbol]any
}

// New creates a scope enclosed by parent (nil for the root/global scope).
func New(parent *Environment) *Environment {
	return &Environment{Enclosing: parent, values: make(map[ident.Symbol]any, 8)}
}

// Define binds name to value in this scope, overwriting any existing
// binding. Re-declaring a name in the same block is caught statically by
// the resolver; Define itself never errors.
func (e *Environment) Define(name ident.Symbol, value any) {
	e.values[name] = value
}

// Get looks up name starting from this scope and walking enclosing scopes.
// It reports found=false if no scope in the chain defines it (a global
// lookup miss).
func (e *Environment) Get(name ident.Symbol) (value any, found bool) {
	for env := e; env != nil; env = env.Enclosing {
		if v, ok := env.values[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Assign mirrors Get for writes: it finds the nearest scope that already
// defines name and overwrites it there. It reports found=false if no scope
// defines name.
func (e *Environment) Assign(name ident.Symbol, value any) (found bool) {
	for env := e; env != nil; env = env.Enclosing {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return true
		}
	}
	return false
}

// ancestor walks distance links up the Enclosing chain.
func (e *Environment) ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance; i++ {
		env = env.Enclosing
	}
	return env
}

// GetAt reads name from exactly the scope at distance hops up the chain,
// as computed by the resolver. It panics if that scope does not define
// name, which would indicate a resolver/evaluator distance mismatch.
func (e *Environment) GetAt(distance int, name ident.Symbol) any {
	scope := e.ancestor(distance)
	v, ok := scope.values[name]
	if !ok {
		panic("environment: resolver distance points at a scope missing the binding")
	}
	return v
}

// AssignAt mirrors GetAt for writes.
func (e *Environment) AssignAt(distance int, name ident.Symbol, value any) {
	e.ancestor(distance).values[name] = value
}
