package ir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventVisitor records which nodes its handlers fire for, in order.
type eventVisitor struct {
	BaseVisitor
	events []string
}

func newEventVisitor() *eventVisitor {
	v := &eventVisitor{}
	v.Bind(v)

	return v
}

func (v *eventVisitor) VisitVar(n *Var) error {
	v.events = append(v.events, "var:"+n.Name)

	return v.BaseVisitor.VisitVar(n)
}

func (v *eventVisitor) VisitConstant(n *Constant) error {
	v.events = append(v.events, "const")

	return v.BaseVisitor.VisitConstant(n)
}

func (v *eventVisitor) VisitPrimitive(n *Primitive) error {
	v.events = append(v.events, "prim:"+n.Name)

	return v.BaseVisitor.VisitPrimitive(n)
}

func (v *eventVisitor) VisitType(t Type) error {
	v.events = append(v.events, "type:"+t.String())

	return v.BaseVisitor.VisitType(t)
}

// failingVisitor fails on every global reference.
type failingVisitor struct {
	BaseVisitor
}

func newFailingVisitor() *failingVisitor {
	v := &failingVisitor{}
	v.Bind(v)

	return v
}

var errVisitFailed = errors.New("visit failed")

func (v *failingVisitor) VisitGlobalRef(g *GlobalRef) error {
	return errVisitFailed
}

func TestVisitNoOpDefault(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	shared := b.Constant(int64(42))
	root := b.Tuple(shared, shared, shared)

	v := &BaseVisitor{}

	require.NoError(t, v.Visit(root))

	// The only observable effect of an unoverridden visitor is the counter.
	assert.Equal(t, 1, v.VisitCount(root))
	assert.Equal(t, 3, v.VisitCount(shared))
	assert.Equal(t, 0, v.VisitCount(b.Constant(int64(42))))
}

func TestVisitOnceForRecursion(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	x := b.Var("x", nil)
	shared := b.Tuple(x, b.Constant(int64(1)))
	root := b.Tuple(shared, shared)

	v := newEventVisitor()

	require.NoError(t, v.Visit(root))

	// The shared tuple's subtree is walked once; the second encounter only
	// bumps the counter.
	assert.Equal(t, []string{"var:x", "const"}, v.events)
	assert.Equal(t, 2, v.VisitCount(shared))
}

func TestVisitLetOrder(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	x := b.Var("x", nil)
	let := b.Let(x, b.Constant(int64(1)), x)

	v := newEventVisitor()

	require.NoError(t, v.Visit(let))

	// The visitor reaches the value before the bound variable, the reverse
	// of the rewriter's order.
	assert.Equal(t, []string{"const", "var:x"}, v.events)

	// The body occurrence of x is the binder's identity: counted twice,
	// handled once.
	assert.Equal(t, 2, v.VisitCount(x))
}

func TestVisitCallOrder(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	call := &Call{
		Span:     createTestSpan(1, 1),
		Callee:   b.Primitive("add"),
		TypeArgs: []Type{b.NamedType("int")},
		Args:     []Expression{b.Var("x", nil), b.Constant(int64(5))},
	}

	v := newEventVisitor()

	require.NoError(t, v.Visit(call))

	assert.Equal(t, []string{"prim:add", "type:int", "var:x", "const"}, v.events)
}

func TestVisitFunctionDefaults(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	intType := b.NamedType("int")
	x := b.Var("x", intType)
	fn := &Function{
		Span:       createTestSpan(1, 1),
		TypeParams: []*TypeVar{b.TypeVar("T")},
		Params:     []*Var{x},
		RetType:    b.NamedType("bool"),
		Body:       b.Constant(int64(1)),
		Attrs:      Attributes{"inline": true},
	}

	v := newEventVisitor()

	require.NoError(t, v.Visit(fn))

	// Parameters and body are visited; the parameter annotation reaches the
	// type hook, but type parameters, the return type, and attributes do not.
	assert.Equal(t, []string{"var:x", "type:int", "const"}, v.events)
}

func TestVisitIfOrder(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	cond := b.Var("c", nil)
	then := b.Constant(int64(1))
	els := b.Constant(int64(2))

	v := newEventVisitor()

	require.NoError(t, v.Visit(b.If(cond, then, els)))

	assert.Equal(t, []string{"var:c", "const", "const"}, v.events)
	assert.Equal(t, 1, v.VisitCount(then))
	assert.Equal(t, 1, v.VisitCount(els))
}

func TestVisitErrorPropagation(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	root := b.Tuple(b.Constant(int64(1)), b.GlobalRef("boom"), b.Constant(int64(2)))

	v := newFailingVisitor()

	err := v.Visit(root)
	require.ErrorIs(t, err, errVisitFailed)
	assert.Equal(t, errVisitFailed, err)
}

func TestVisitCounterScopedPerInvocation(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))
	shared := b.Constant(int64(42))
	root := b.Tuple(shared, shared, shared)

	v := &BaseVisitor{}

	require.NoError(t, v.Visit(root))
	require.NoError(t, v.Visit(root))

	// Counts reflect the latest traversal only.
	assert.Equal(t, 3, v.VisitCount(shared))
	assert.Equal(t, 1, v.VisitCount(root))
}

func TestVisitLinearInUniqueNodes(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))

	leaf := b.Constant(int64(0))

	node := Expression(leaf)
	for i := 0; i < 40; i++ {
		node = b.Tuple(node, node)
	}

	v := newEventVisitor()

	require.NoError(t, v.Visit(node))

	// 2^40 paths, one handler execution for the leaf, two counted
	// encounters (one per parent at the level above).
	assert.Equal(t, []string{"const"}, v.events)
	assert.Equal(t, 2, v.VisitCount(leaf))
}

func TestVisitDeepChainTerminates(t *testing.T) {
	b := NewBuilderWithSpan(createTestSpan(1, 1))

	body := Expression(b.Constant(int64(0)))
	for i := 0; i < 2000; i++ {
		body = b.Let(b.Var("x", nil), b.Constant(int64(1)), body)
	}

	v := &BaseVisitor{}

	require.NoError(t, v.Visit(body))

	r := &BaseRewriter{}

	result, err := r.Rewrite(body)
	require.NoError(t, err)
	require.Same(t, body, result)
}
