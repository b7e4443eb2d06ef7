// Package ir defines the expression-based intermediate representation used by
// the Lucent compiler middle-end, together with the traversal engines every
// pass is built on: a memoized, structure-preserving Rewriter and a read-only,
// visit-counting Visitor.
//
// Expressions are immutable once constructed. The same node may be referenced
// from multiple parents, so the IR forms a DAG rather than a tree; it is
// guaranteed acyclic. Nodes are compared by identity (pointer equality behind
// the Expression interface), never by structural equality: two separately
// constructed but identical nodes are different nodes.
package ir

import (
	"fmt"
	"strings"

	"github.com/lucent-lang/lucent/internal/position"
)

// Expression is the base interface for all IR expression nodes.
// The variant set is closed: every implementation lives in this package,
// enforced by the unexported marker method. Adding a variant requires
// updating both traversal engines.
type Expression interface {
	// GetSpan returns the source span covered by this node.
	GetSpan() position.Span
	// String returns a compact human-readable representation of the node.
	String() string

	exprNode() // Marker method sealing the variant set
}

// Attributes is an opaque bag of metadata attached to Function and Call
// nodes. The traversal engines carry it through unchanged and never look
// inside.
type Attributes map[string]interface{}

// ===== Leaf Expressions =====

// Var represents a variable: a name hint plus an optional type annotation.
// A Var is also the IR's binder node; Function parameters and the bound
// variable of a Let are Vars, and occurrences in the body reference the
// same node identity.
type Var struct {
	Span       position.Span // Source span of the variable
	Name       string        // Name hint; not required to be unique
	Annotation Type          // Optional type annotation (nil when absent)
}

func (v *Var) GetSpan() position.Span { return v.Span }
func (v *Var) String() string {
	if v.Annotation != nil {
		return fmt.Sprintf("%s: %s", v.Name, v.Annotation.String())
	}

	return v.Name
}
func (v *Var) exprNode() {}

// Constant represents an embedded literal value. The payload is opaque to
// the traversal engines; constants have no children.
type Constant struct {
	Span position.Span // Source span of the constant
	Data interface{}   // Opaque payload owned by the constant's producer
}

func (c *Constant) GetSpan() position.Span { return c.Span }
func (c *Constant) String() string         { return fmt.Sprintf("%v", c.Data) }
func (c *Constant) exprNode()              {}

// GlobalRef is a symbolic reference to a top-level definition.
type GlobalRef struct {
	Span position.Span // Source span of the reference
	Name string        // Name of the referenced top-level definition
}

func (g *GlobalRef) GetSpan() position.Span { return g.Span }
func (g *GlobalRef) String() string         { return "@" + g.Name }
func (g *GlobalRef) exprNode()              {}

// Primitive is a reference to a built-in operator.
type Primitive struct {
	Span position.Span // Source span of the operator reference
	Name string        // Operator name, e.g. "add"
}

func (p *Primitive) GetSpan() position.Span { return p.Span }
func (p *Primitive) String() string         { return p.Name }
func (p *Primitive) exprNode()              {}

// ===== Compound Expressions =====

// Tuple is an ordered sequence of child expressions.
type Tuple struct {
	Span   position.Span // Source span of the tuple
	Fields []Expression  // Ordered field expressions
}

func (t *Tuple) GetSpan() position.Span { return t.Span }
func (t *Tuple) String() string {
	parts := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		parts[i] = f.String()
	}

	return "(" + strings.Join(parts, ", ") + ")"
}
func (t *Tuple) exprNode() {}

// Function is an anonymous function value: type-parameter binders,
// value-parameter binders, a declared return type, and a body.
type Function struct {
	Span       position.Span // Source span of the function
	TypeParams []*TypeVar    // Type-parameter binders
	Params     []*Var        // Value-parameter binders
	RetType    Type          // Declared return type (nil when inferred)
	Body       Expression    // Function body
	Attrs      Attributes    // Opaque attribute bag, not traversed
}

func (f *Function) GetSpan() position.Span { return f.Span }
func (f *Function) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.String()
	}

	if f.RetType != nil {
		return fmt.Sprintf("fn(%s) -> %s { %s }", strings.Join(params, ", "), f.RetType.String(), f.Body.String())
	}

	return fmt.Sprintf("fn(%s) { %s }", strings.Join(params, ", "), f.Body.String())
}
func (f *Function) exprNode() {}

// Call applies a callee to value arguments and type arguments.
type Call struct {
	Span     position.Span // Source span of the call
	Callee   Expression    // Called expression
	TypeArgs []Type        // Ordered type arguments
	Args     []Expression  // Ordered value arguments
	Attrs    Attributes    // Opaque attribute bag, not traversed
}

func (c *Call) GetSpan() position.Span { return c.Span }
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}

	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}
func (c *Call) exprNode() {}

// Let binds a variable to a value within a body expression.
type Let struct {
	Span  position.Span // Source span of the binding
	Var   *Var          // Bound variable; body occurrences share this identity
	Value Expression    // Bound value
	Body  Expression    // Expression the binding is visible in
}

func (l *Let) GetSpan() position.Span { return l.Span }
func (l *Let) String() string {
	return fmt.Sprintf("let %s = %s in %s", l.Var.String(), l.Value.String(), l.Body.String())
}
func (l *Let) exprNode() {}

// If is a two-armed conditional expression.
type If struct {
	Span position.Span // Source span of the conditional
	Cond Expression    // Condition
	Then Expression    // Branch taken when Cond is true
	Else Expression    // Branch taken when Cond is false
}

func (i *If) GetSpan() position.Span { return i.Span }
func (i *If) String() string {
	return fmt.Sprintf("if %s then %s else %s", i.Cond.String(), i.Then.String(), i.Else.String())
}
func (i *If) exprNode() {}

// TupleGet projects a single field out of a tuple-valued expression.
type TupleGet struct {
	Span  position.Span // Source span of the projection
	Tuple Expression    // Tuple-valued operand
	Index int           // 0-based field index
}

func (t *TupleGet) GetSpan() position.Span { return t.Span }
func (t *TupleGet) String() string         { return fmt.Sprintf("%s.%d", t.Tuple.String(), t.Index) }
func (t *TupleGet) exprNode()              {}
