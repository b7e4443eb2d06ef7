package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeStrings(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	intType := b.NamedType("int")
	x := b.Var("x", intType)
	y := b.Var("y", nil)

	assert.Equal(t, "x: int", x.String())
	assert.Equal(t, "y", y.String())
	assert.Equal(t, "42", b.Constant(42).String())
	assert.Equal(t, "@main", b.GlobalRef("main").String())
	assert.Equal(t, "add", b.Primitive("add").String())
	assert.Equal(t, "(y, 1)", b.Tuple(y, b.Constant(1)).String())
	assert.Equal(t, "add(y, 1)", b.Call(b.Primitive("add"), y, b.Constant(1)).String())
	assert.Equal(t, "let y = 1 in y", b.Let(y, b.Constant(1), y).String())
	assert.Equal(t, "if y then 1 else 2", b.If(y, b.Constant(1), b.Constant(2)).String())
	assert.Equal(t, "(y, 1).0", b.TupleGet(b.Tuple(y, b.Constant(1)), 0).String())
	assert.Equal(t, "fn(x: int) -> int { x: int }", b.Function([]*Var{x}, intType, x).String())
	assert.Equal(t, "fn(y) { y }", b.Function([]*Var{y}, nil, y).String())
}

func TestBuilderSpans(t *testing.T) {
	span := createTestSpan(3, 9)
	b := NewBuilderWithSpan(span)

	nodes := []Expression{
		b.Var("x", nil),
		b.Constant(1),
		b.GlobalRef("g"),
		b.Primitive("add"),
		b.Tuple(),
		b.Call(b.Primitive("add")),
		b.Let(b.Var("x", nil), b.Constant(1), b.Constant(2)),
		b.If(b.Constant(true), b.Constant(1), b.Constant(2)),
		b.TupleGet(b.Tuple(), 0),
		b.Function(nil, nil, b.Constant(1)),
	}

	for _, n := range nodes {
		assert.Equal(t, span, n.GetSpan())
	}

	assert.Equal(t, span, b.TypeVar("T").GetSpan())
	assert.Equal(t, span, b.NamedType("int").GetSpan())
}

func TestIdentityNotStructuralEquality(t *testing.T) {
	b := NewBuilder()
	first := b.Constant(int64(1))
	second := b.Constant(int64(1))

	// Structurally identical, separately constructed: different nodes.
	assert.Equal(t, first.Data, second.Data)
	require.NotSame(t, first, second)

	v := &BaseVisitor{}
	require.NoError(t, v.Visit(b.Tuple(first, second, first)))

	assert.Equal(t, 2, v.VisitCount(first))
	assert.Equal(t, 1, v.VisitCount(second))
}

func TestContractErrorMessage(t *testing.T) {
	err := NewContractError("let binding", "Var", &Constant{})

	assert.Equal(t, "contract violation: let binding must rewrite to Var, handler produced *ir.Constant", err.Error())
}
