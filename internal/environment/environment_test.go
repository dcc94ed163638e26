package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loxlang/loxi/internal/ident"
)

func TestDefineAndGetInSameScope(t *testing.T) {
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	env := New(nil)
	env.Define(sym, 1.0)

	v, ok := env.Get(sym)
	require.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestGetWalksEnclosingChain(t *testing.T) {
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	outer := New(nil)
	outer.Define(sym, "outer-value")
	inner := New(outer)

	v, ok := inner.Get(sym)
	require.True(t, ok)
	assert.Equal(t, "outer-value", v)
}

func TestGetMissingReportsNotFound(t *testing.T) {
	interner := ident.NewInterner()
	env := New(nil)

	_, ok := env.Get(interner.Intern("missing"))
	assert.False(t, ok)
}

func TestAssignFindsNearestDefiningScope(t *testing.T) {
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	outer := New(nil)
	outer.Define(sym, 1.0)
	inner := New(outer)

	ok := inner.Assign(sym, 2.0)
	require.True(t, ok)

	v, _ := outer.Get(sym)
	assert.Equal(t, 2.0, v)
}

func TestAssignToUndefinedNameFails(t *testing.T) {
	interner := ident.NewInterner()
	env := New(nil)
	assert.False(t, env.Assign(interner.Intern("ghost"), 1.0))
}

func TestGetAtReadsExactAncestor(t *testing.T) {
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	grandparent := New(nil)
	grandparent.Define(sym, "grandparent")
	parent := New(grandparent)
	parent.Define(sym, "parent")
	child := New(parent)
	child.Define(sym, "child")

	assert.Equal(t, "child", child.GetAt(0, sym))
	assert.Equal(t, "parent", child.GetAt(1, sym))
	assert.Equal(t, "grandparent", child.GetAt(2, sym))
}

func TestAssignAtWritesExactAncestor(t *testing.T) {
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	parent := New(nil)
	parent.Define(sym, 1.0)
	child := New(parent)
	child.Define(sym, 2.0)

	child.AssignAt(1, sym, 99.0)

	assert.Equal(t, 99.0, parent.GetAt(0, sym))
	assert.Equal(t, 2.0, child.GetAt(0, sym))
}

func TestSharedClosureEnvironmentSeesWrites(t *testing.T) {
	// Two "closures" over the same block-scoped variable must observe
	// each other's writes, since a closure's captured environment is a
	// shared mutable reference, not a snapshot.
	interner := ident.NewInterner()
	sym := interner.Intern("x")

	block := New(nil)
	block.Define(sym, 1.0)

	closureA := block
	closureB := block

	closureA.Assign(sym, 42.0)
	v, _ := closureB.Get(sym)
	assert.Equal(t, 42.0, v)
}
