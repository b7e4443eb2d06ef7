// Memoized, structure-preserving rewriting of the expression IR.
//
// A rewrite produces a new expression tree while reusing every unchanged
// subtree verbatim: after rewriting the children of a node, the node itself
// is returned unchanged (same identity) unless at least one child actually
// differs. Results are memoized per node identity for the duration of one
// Rewrite call, so a subtree shared by several parents is rewritten once and
// the sharing survives into the output.
package ir

// Rewriter is the override surface for IR rewrites. A concrete pass embeds
// BaseRewriter, binds itself with Bind, and overrides only the handlers it
// needs; unoverridden handlers fall back to BaseRewriter's structural
// recursion. RewriteExpr is the memoized dispatch entry every handler uses
// to recurse into child expressions, and RewriteType is the single
// delegation point into the type checker's own traversal.
type Rewriter interface {
	// RewriteExpr dispatches expr to its variant handler, memoized by identity.
	RewriteExpr(expr Expression) (Expression, error)

	// Per-variant handlers.
	RewriteVar(v *Var) (Expression, error)
	RewriteConstant(c *Constant) (Expression, error)
	RewriteGlobalRef(g *GlobalRef) (Expression, error)
	RewritePrimitive(p *Primitive) (Expression, error)
	RewriteTuple(t *Tuple) (Expression, error)
	RewriteFunction(f *Function) (Expression, error)
	RewriteCall(c *Call) (Expression, error)
	RewriteLet(l *Let) (Expression, error)
	RewriteIf(i *If) (Expression, error)
	RewriteTupleGet(t *TupleGet) (Expression, error)

	// RewriteType rewrites a type-position child. The default is identity.
	RewriteType(t Type) (Type, error)
}

// BaseRewriter implements Rewriter with the default structure-preserving
// rules and identity-keyed memoization. It may be used directly (a bare
// BaseRewriter rewrite is the identity function) or embedded by a pass.
//
// The memo table is scoped to a single Rewrite call: it is reset on entry
// and never shared across invocations. BaseRewriter is not safe for
// concurrent use; concurrent traversals over shared nodes each need their
// own rewriter value.
type BaseRewriter struct {
	self Rewriter                  // Dispatch target; enables handler overrides
	memo map[Expression]Expression // Identity-keyed results of the current rewrite
}

// Bind registers the embedding pass as the dispatch target so that its
// overridden handlers are reached from inside the default recursion.
// A pass constructor calls Bind(pass) once; an unbound BaseRewriter
// dispatches to its own defaults.
func (b *BaseRewriter) Bind(self Rewriter) {
	b.self = self
}

func (b *BaseRewriter) target() Rewriter {
	if b.self != nil {
		return b.self
	}

	return b
}

// Rewrite rewrites the whole expression reachable from root and returns the
// result. Each call starts with a fresh memo table, so no results leak
// between invocations.
//
// Traversal is depth-first recursive; recursion depth equals the longest
// expression-nesting chain, so pathologically deep inputs (very long Let
// chains) can exhaust the stack.
func (b *BaseRewriter) Rewrite(root Expression) (Expression, error) {
	b.memo = make(map[Expression]Expression)

	return b.target().RewriteExpr(root)
}

// RewriteExpr is the memoized dispatch entry. The first time a node identity
// is reached its variant handler runs; every later reference to the same
// identity, from any parent, receives the cached result. Handlers recurse
// through this method so the guarantee holds across the whole DAG.
func (b *BaseRewriter) RewriteExpr(expr Expression) (Expression, error) {
	if b.memo == nil {
		b.memo = make(map[Expression]Expression)
	}

	if cached, ok := b.memo[expr]; ok {
		return cached, nil
	}

	rewritten, err := b.dispatch(expr)
	if err != nil {
		return nil, err
	}

	b.memo[expr] = rewritten

	return rewritten, nil
}

// dispatch routes expr to the variant handler of the bound pass.
func (b *BaseRewriter) dispatch(expr Expression) (Expression, error) {
	r := b.target()

	switch node := expr.(type) {
	case *Var:
		return r.RewriteVar(node)
	case *Constant:
		return r.RewriteConstant(node)
	case *GlobalRef:
		return r.RewriteGlobalRef(node)
	case *Primitive:
		return r.RewritePrimitive(node)
	case *Tuple:
		return r.RewriteTuple(node)
	case *Function:
		return r.RewriteFunction(node)
	case *Call:
		return r.RewriteCall(node)
	case *Let:
		return r.RewriteLet(node)
	case *If:
		return r.RewriteIf(node)
	case *TupleGet:
		return r.RewriteTupleGet(node)
	default:
		panic(unknownVariant(expr))
	}
}

// RewriteVar rewrites the type annotation through the type hook and rebuilds
// the variable only if the annotation changed. An unannotated variable has no
// children and is always returned unchanged.
func (b *BaseRewriter) RewriteVar(v *Var) (Expression, error) {
	if v.Annotation != nil {
		annotation, err := b.target().RewriteType(v.Annotation)
		if err != nil {
			return nil, err
		}

		if annotation != v.Annotation {
			return &Var{Span: v.Span, Name: v.Name, Annotation: annotation}, nil
		}
	}

	return v, nil
}

// RewriteConstant returns the constant unchanged; constants are leaves.
func (b *BaseRewriter) RewriteConstant(c *Constant) (Expression, error) {
	return c, nil
}

// RewriteGlobalRef returns the reference unchanged; global references are leaves.
func (b *BaseRewriter) RewriteGlobalRef(g *GlobalRef) (Expression, error) {
	return g, nil
}

// RewritePrimitive returns the operator reference unchanged; primitives are leaves.
func (b *BaseRewriter) RewritePrimitive(p *Primitive) (Expression, error) {
	return p, nil
}

// RewriteTuple rewrites each field in order and rebuilds the tuple only if
// some field changed.
func (b *BaseRewriter) RewriteTuple(t *Tuple) (Expression, error) {
	r := b.target()

	fields := make([]Expression, len(t.Fields))
	changed := false

	for i, field := range t.Fields {
		newField, err := r.RewriteExpr(field)
		if err != nil {
			return nil, err
		}

		fields[i] = newField
		changed = changed || newField != field
	}

	if !changed {
		return t, nil
	}

	return &Tuple{Span: t.Span, Fields: fields}, nil
}

// RewriteFunction rewrites, in order: each type-parameter binder through the
// type hook, each value-parameter binder, the return type through the type
// hook, and the body. Binder positions must keep their variant: a
// type-parameter rewrite must yield a TypeVar and a value-parameter rewrite
// must yield a Var, otherwise a ContractError is returned. The attribute bag
// is carried through unchanged.
func (b *BaseRewriter) RewriteFunction(f *Function) (Expression, error) {
	r := b.target()
	changed := false

	typeParams := make([]*TypeVar, len(f.TypeParams))

	for i, tp := range f.TypeParams {
		newType, err := r.RewriteType(tp)
		if err != nil {
			return nil, err
		}

		newParam, ok := newType.(*TypeVar)
		if !ok {
			return nil, NewContractError("function type parameter", "TypeVar", newType)
		}

		typeParams[i] = newParam
		changed = changed || newParam != tp
	}

	params := make([]*Var, len(f.Params))

	for i, p := range f.Params {
		newExpr, err := r.RewriteExpr(p)
		if err != nil {
			return nil, err
		}

		newParam, ok := newExpr.(*Var)
		if !ok {
			return nil, NewContractError("function parameter", "Var", newExpr)
		}

		params[i] = newParam
		changed = changed || newParam != p
	}

	retType := f.RetType

	if f.RetType != nil {
		newRet, err := r.RewriteType(f.RetType)
		if err != nil {
			return nil, err
		}

		retType = newRet
		changed = changed || newRet != f.RetType
	}

	body, err := r.RewriteExpr(f.Body)
	if err != nil {
		return nil, err
	}

	changed = changed || body != f.Body

	if !changed {
		return f, nil
	}

	return &Function{
		Span:       f.Span,
		TypeParams: typeParams,
		Params:     params,
		RetType:    retType,
		Body:       body,
		Attrs:      f.Attrs,
	}, nil
}

// RewriteCall rewrites the callee first, then each type argument through the
// type hook, then each value argument, and rebuilds the call only if
// something changed. The attribute bag is carried through unchanged.
func (b *BaseRewriter) RewriteCall(c *Call) (Expression, error) {
	r := b.target()

	callee, err := r.RewriteExpr(c.Callee)
	if err != nil {
		return nil, err
	}

	changed := callee != c.Callee

	typeArgs := make([]Type, len(c.TypeArgs))

	for i, ta := range c.TypeArgs {
		newArg, err := r.RewriteType(ta)
		if err != nil {
			return nil, err
		}

		typeArgs[i] = newArg
		changed = changed || newArg != ta
	}

	args := make([]Expression, len(c.Args))

	for i, arg := range c.Args {
		newArg, err := r.RewriteExpr(arg)
		if err != nil {
			return nil, err
		}

		args[i] = newArg
		changed = changed || newArg != arg
	}

	if !changed {
		return c, nil
	}

	return &Call{Span: c.Span, Callee: callee, TypeArgs: typeArgs, Args: args, Attrs: c.Attrs}, nil
}

// RewriteLet rewrites the bound variable, then the value, then the body.
// The bound variable must remain a Var.
func (b *BaseRewriter) RewriteLet(l *Let) (Expression, error) {
	r := b.target()

	newVar, err := r.RewriteExpr(l.Var)
	if err != nil {
		return nil, err
	}

	bound, ok := newVar.(*Var)
	if !ok {
		return nil, NewContractError("let binding", "Var", newVar)
	}

	value, err := r.RewriteExpr(l.Value)
	if err != nil {
		return nil, err
	}

	body, err := r.RewriteExpr(l.Body)
	if err != nil {
		return nil, err
	}

	if bound == l.Var && value == l.Value && body == l.Body {
		return l, nil
	}

	return &Let{Span: l.Span, Var: bound, Value: value, Body: body}, nil
}

// RewriteIf rewrites the condition, then the true branch, then the false
// branch.
func (b *BaseRewriter) RewriteIf(i *If) (Expression, error) {
	r := b.target()

	cond, err := r.RewriteExpr(i.Cond)
	if err != nil {
		return nil, err
	}

	then, err := r.RewriteExpr(i.Then)
	if err != nil {
		return nil, err
	}

	els, err := r.RewriteExpr(i.Else)
	if err != nil {
		return nil, err
	}

	if cond == i.Cond && then == i.Then && els == i.Else {
		return i, nil
	}

	return &If{Span: i.Span, Cond: cond, Then: then, Else: els}, nil
}

// RewriteTupleGet rewrites the tuple operand, keeping the index unchanged.
func (b *BaseRewriter) RewriteTupleGet(t *TupleGet) (Expression, error) {
	tuple, err := b.target().RewriteExpr(t.Tuple)
	if err != nil {
		return nil, err
	}

	if tuple == t.Tuple {
		return t, nil
	}

	return &TupleGet{Span: t.Span, Tuple: tuple, Index: t.Index}, nil
}

// RewriteType is the default type hook: identity. Passes that rewrite types
// override this with a call into the type checker's traversal.
func (b *BaseRewriter) RewriteType(t Type) (Type, error) {
	return t, nil
}
