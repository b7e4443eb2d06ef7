// Fluent construction helpers for IR nodes. Node construction is otherwise
// the front end's job; the Builder exists for passes and tests that need to
// assemble small fragments without threading spans by hand.
package ir

import (
	"github.com/lucent-lang/lucent/internal/position"
)

// Builder constructs IR nodes that all carry the same default span.
type Builder struct {
	span position.Span
}

// NewBuilder creates a builder with a zero span.
func NewBuilder() *Builder {
	return &Builder{span: position.Span{}}
}

// NewBuilderWithSpan creates a builder whose nodes carry the given span.
func NewBuilderWithSpan(span position.Span) *Builder {
	return &Builder{span: span}
}

// Var creates a variable. annotation may be nil.
func (b *Builder) Var(name string, annotation Type) *Var {
	return &Var{Span: b.span, Name: name, Annotation: annotation}
}

// Constant creates a constant carrying data.
func (b *Builder) Constant(data interface{}) *Constant {
	return &Constant{Span: b.span, Data: data}
}

// GlobalRef creates a reference to a top-level definition.
func (b *Builder) GlobalRef(name string) *GlobalRef {
	return &GlobalRef{Span: b.span, Name: name}
}

// Primitive creates a reference to a built-in operator.
func (b *Builder) Primitive(name string) *Primitive {
	return &Primitive{Span: b.span, Name: name}
}

// Tuple creates a tuple from the given fields.
func (b *Builder) Tuple(fields ...Expression) *Tuple {
	return &Tuple{Span: b.span, Fields: fields}
}

// Function creates a function without type parameters or attributes.
func (b *Builder) Function(params []*Var, retType Type, body Expression) *Function {
	return &Function{Span: b.span, Params: params, RetType: retType, Body: body}
}

// Call creates a call without type arguments or attributes.
func (b *Builder) Call(callee Expression, args ...Expression) *Call {
	return &Call{Span: b.span, Callee: callee, Args: args}
}

// Let creates a let binding.
func (b *Builder) Let(v *Var, value, body Expression) *Let {
	return &Let{Span: b.span, Var: v, Value: value, Body: body}
}

// If creates a conditional.
func (b *Builder) If(cond, then, els Expression) *If {
	return &If{Span: b.span, Cond: cond, Then: then, Else: els}
}

// TupleGet creates a tuple projection.
func (b *Builder) TupleGet(tuple Expression, index int) *TupleGet {
	return &TupleGet{Span: b.span, Tuple: tuple, Index: index}
}

// TypeVar creates a type-parameter binder.
func (b *Builder) TypeVar(name string) *TypeVar {
	return &TypeVar{Span: b.span, Name: name}
}

// NamedType creates a named type reference.
func (b *Builder) NamedType(name string) *NamedType {
	return &NamedType{Span: b.span, Name: name}
}
