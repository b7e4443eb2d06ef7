// Read-only traversal of the expression IR with per-identity visit counting.
//
// The visitor never rebuilds anything; its only observable effects are the
// side effects of overridden handlers plus the accumulated visit counter.
// The counter is what makes analyses over shared subexpressions tractable:
// a node's handler runs once no matter how many parents reference it, while
// the counter records how often it was reached.
package ir

// Visitor is the override surface for IR analyses. A concrete analysis
// embeds BaseVisitor, binds itself with Bind, and overrides only the
// handlers it needs; unoverridden handlers fall back to BaseVisitor's
// structural recursion. VisitExpr is the counting dispatch entry handlers
// use to recurse, and VisitType is the delegation point into the type
// checker's traversal.
type Visitor interface {
	// VisitExpr dispatches expr to its variant handler, counting by identity.
	VisitExpr(expr Expression) error

	// Per-variant handlers.
	VisitVar(v *Var) error
	VisitConstant(c *Constant) error
	VisitGlobalRef(g *GlobalRef) error
	VisitPrimitive(p *Primitive) error
	VisitTuple(t *Tuple) error
	VisitFunction(f *Function) error
	VisitCall(c *Call) error
	VisitLet(l *Let) error
	VisitIf(i *If) error
	VisitTupleGet(t *TupleGet) error

	// VisitType visits a type-position child. The default is a no-op.
	VisitType(t Type) error
}

// BaseVisitor implements Visitor with the default structural recursion and
// the per-identity visit counter. A bare BaseVisitor run has no observable
// effect beyond the counter.
//
// The counter is scoped to a single Visit call: it is reset on entry and
// stays readable through VisitCount after the traversal returns. BaseVisitor
// is not safe for concurrent use; concurrent traversals over shared nodes
// each need their own visitor value.
type BaseVisitor struct {
	self   Visitor            // Dispatch target; enables handler overrides
	counts map[Expression]int // Times each identity was reached this traversal
}

// Bind registers the embedding analysis as the dispatch target so that its
// overridden handlers are reached from inside the default recursion.
// An unbound BaseVisitor dispatches to its own defaults.
func (b *BaseVisitor) Bind(self Visitor) {
	b.self = self
}

func (b *BaseVisitor) target() Visitor {
	if b.self != nil {
		return b.self
	}

	return b
}

// Visit walks the whole expression reachable from root. Each call starts
// with a fresh visit counter, so no counts leak between invocations.
//
// Traversal is depth-first recursive; recursion depth equals the longest
// expression-nesting chain, so pathologically deep inputs (very long Let
// chains) can exhaust the stack.
func (b *BaseVisitor) Visit(root Expression) error {
	b.counts = make(map[Expression]int)

	return b.target().VisitExpr(root)
}

// VisitExpr is the counting dispatch entry. The first time a node identity
// is reached its variant handler runs and may recurse into children; every
// later reference to the same identity only increments the counter and does
// not re-run the handler.
func (b *BaseVisitor) VisitExpr(expr Expression) error {
	if b.counts == nil {
		b.counts = make(map[Expression]int)
	}

	if _, seen := b.counts[expr]; seen {
		b.counts[expr]++

		return nil
	}

	if err := b.dispatch(expr); err != nil {
		return err
	}

	b.counts[expr] = 1

	return nil
}

// VisitCount returns how many times expr was reached during the most recent
// traversal: zero for unreached nodes, otherwise one per referencing parent
// (plus one if expr was the root).
func (b *BaseVisitor) VisitCount(expr Expression) int {
	return b.counts[expr]
}

// dispatch routes expr to the variant handler of the bound analysis.
func (b *BaseVisitor) dispatch(expr Expression) error {
	v := b.target()

	switch node := expr.(type) {
	case *Var:
		return v.VisitVar(node)
	case *Constant:
		return v.VisitConstant(node)
	case *GlobalRef:
		return v.VisitGlobalRef(node)
	case *Primitive:
		return v.VisitPrimitive(node)
	case *Tuple:
		return v.VisitTuple(node)
	case *Function:
		return v.VisitFunction(node)
	case *Call:
		return v.VisitCall(node)
	case *Let:
		return v.VisitLet(node)
	case *If:
		return v.VisitIf(node)
	case *TupleGet:
		return v.VisitTupleGet(node)
	default:
		panic(unknownVariant(expr))
	}
}

// VisitVar visits the type annotation, when present.
func (b *BaseVisitor) VisitVar(v *Var) error {
	if v.Annotation != nil {
		return b.target().VisitType(v.Annotation)
	}

	return nil
}

// VisitConstant does nothing; constants are leaves.
func (b *BaseVisitor) VisitConstant(c *Constant) error { return nil }

// VisitGlobalRef does nothing; global references are leaves.
func (b *BaseVisitor) VisitGlobalRef(g *GlobalRef) error { return nil }

// VisitPrimitive does nothing; primitives are leaves.
func (b *BaseVisitor) VisitPrimitive(p *Primitive) error { return nil }

// VisitTuple visits each field in order.
func (b *BaseVisitor) VisitTuple(t *Tuple) error {
	v := b.target()

	for _, field := range t.Fields {
		if err := v.VisitExpr(field); err != nil {
			return err
		}
	}

	return nil
}

// VisitFunction visits the value parameters, then the body. Type parameters,
// the return type, and the attribute bag are not visited by default.
func (b *BaseVisitor) VisitFunction(f *Function) error {
	v := b.target()

	for _, param := range f.Params {
		if err := v.VisitExpr(param); err != nil {
			return err
		}
	}

	return v.VisitExpr(f.Body)
}

// VisitCall visits the callee, then the type arguments, then the value
// arguments.
func (b *BaseVisitor) VisitCall(c *Call) error {
	v := b.target()

	if err := v.VisitExpr(c.Callee); err != nil {
		return err
	}

	for _, ta := range c.TypeArgs {
		if err := v.VisitType(ta); err != nil {
			return err
		}
	}

	for _, arg := range c.Args {
		if err := v.VisitExpr(arg); err != nil {
			return err
		}
	}

	return nil
}

// VisitLet visits the value, then the bound variable, then the body.
// Note the order differs from RewriteLet, which rewrites the bound variable
// first; both orders are load-bearing for passes that observe discovery
// order.
func (b *BaseVisitor) VisitLet(l *Let) error {
	v := b.target()

	if err := v.VisitExpr(l.Value); err != nil {
		return err
	}

	if err := v.VisitExpr(l.Var); err != nil {
		return err
	}

	return v.VisitExpr(l.Body)
}

// VisitIf visits the condition, then the true branch, then the false branch.
func (b *BaseVisitor) VisitIf(i *If) error {
	v := b.target()

	if err := v.VisitExpr(i.Cond); err != nil {
		return err
	}

	if err := v.VisitExpr(i.Then); err != nil {
		return err
	}

	return v.VisitExpr(i.Else)
}

// VisitTupleGet visits the tuple operand.
func (b *BaseVisitor) VisitTupleGet(t *TupleGet) error {
	return b.target().VisitExpr(t.Tuple)
}

// VisitType is the default type hook: a no-op. Analyses that inspect types
// override this with a call into the type checker's traversal.
func (b *BaseVisitor) VisitType(t Type) error { return nil }
