// Type-system interface of the IR. The type IR proper lives with the type
// checker; the traversal engines touch types only through the RewriteType /
// VisitType hooks. This file declares the Type interface those hooks operate
// on, plus the two concrete type nodes the expression IR itself must know
// about.
package ir

import (
	"github.com/lucent-lang/lucent/internal/position"
)

// Type is the interface every type node implements. Like expressions, type
// nodes are immutable and compared by identity.
type Type interface {
	// GetSpan returns the source span covered by this type node.
	GetSpan() position.Span
	// String returns a human-readable representation of the type.
	String() string

	typeNode() // Marker method to distinguish type nodes
}

// TypeVar is a type-parameter binder. Function type parameters are TypeVars,
// and a rewrite of a type-parameter position must yield a TypeVar again.
type TypeVar struct {
	Span position.Span // Source span of the binder
	Name string        // Name hint
}

func (t *TypeVar) GetSpan() position.Span { return t.Span }
func (t *TypeVar) String() string         { return t.Name }
func (t *TypeVar) typeNode()              {}

// NamedType is a reference to a named type. It stands in for the type
// checker's richer type nodes in annotations, return types, and tests.
type NamedType struct {
	Span position.Span // Source span of the reference
	Name string        // Referenced type name
}

func (t *NamedType) GetSpan() position.Span { return t.Span }
func (t *NamedType) String() string         { return t.Name }
func (t *NamedType) typeNode()              {}
