// Concrete passes built on the traversal engines. These are the small,
// generally useful rewrites the middle-end always wants; heavier passes live
// with their consumers and follow the same shape.
package ir

import (
	"errors"
	"fmt"

	"github.com/lucent-lang/lucent/internal/position"
)

// PassError represents an error raised by an optimization pass.
type PassError struct {
	Message string
	Span    position.Span
}

// NewPassError creates a new pass error.
func NewPassError(message string, span position.Span) *PassError {
	return &PassError{Message: message, Span: span}
}

// Error implements the error interface.
func (pe *PassError) Error() string {
	return fmt.Sprintf("pass error at %s: %s", pe.Span.String(), pe.Message)
}

// Pass rewrites a whole expression into a new expression.
type Pass interface {
	// Run applies the pass to root and returns the result.
	Run(root Expression) (Expression, error)
}

// Pipeline represents a sequence of passes to apply to an expression.
type Pipeline struct {
	passes      []Pass
	stopOnError bool
}

// NewPipeline creates a new, empty pass pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		passes:      make([]Pass, 0),
		stopOnError: true,
	}
}

// Add appends a pass to the pipeline.
func (p *Pipeline) Add(pass Pass) {
	p.passes = append(p.passes, pass)
}

// SetStopOnError configures whether the pipeline should stop on first error.
func (p *Pipeline) SetStopOnError(stop bool) {
	p.stopOnError = stop
}

// Run applies all passes in order to root. With stopOnError set (the
// default), the first failing pass aborts the pipeline. Otherwise a failing
// pass is skipped, the expression it was handed feeds the next pass, and the
// errors of every failed pass are joined in the returned error alongside the
// result of the passes that succeeded.
func (p *Pipeline) Run(root Expression) (Expression, error) {
	current := root

	var errs []error

	for _, pass := range p.passes {
		next, err := pass.Run(current)
		if err != nil {
			if p.stopOnError {
				return nil, fmt.Errorf("pipeline failed: %w", err)
			}

			errs = append(errs, err)

			continue
		}

		current = next
	}

	return current, errors.Join(errs...)
}

// ConstantFolder folds calls of integer primitives over constant arguments
// and conditionals over constant conditions. Anything it cannot fold is left
// to the default structural rewrite, so unchanged subtrees keep their
// identity.
type ConstantFolder struct {
	BaseRewriter
}

// NewConstantFolder creates a constant-folding pass.
func NewConstantFolder() *ConstantFolder {
	f := &ConstantFolder{}
	f.Bind(f)

	return f
}

// Run implements the Pass interface.
func (f *ConstantFolder) Run(root Expression) (Expression, error) {
	return f.Rewrite(root)
}

// RewriteCall folds the call after its children have been rewritten, so
// nested foldable calls collapse bottom-up.
func (f *ConstantFolder) RewriteCall(c *Call) (Expression, error) {
	rewritten, err := f.BaseRewriter.RewriteCall(c)
	if err != nil {
		return nil, err
	}

	call, ok := rewritten.(*Call)
	if !ok {
		return rewritten, nil
	}

	prim, ok := call.Callee.(*Primitive)
	if !ok || len(call.Args) != 2 {
		return call, nil
	}

	lhs, lok := constantInt(call.Args[0])
	rhs, rok := constantInt(call.Args[1])

	if !lok || !rok {
		return call, nil
	}

	folded, err := foldIntPrimitive(prim.Name, lhs, rhs, call.Span)
	if err != nil {
		return nil, err
	}

	if folded == nil {
		return call, nil
	}

	return folded, nil
}

// RewriteIf drops the untaken branch when the condition folds to a constant
// boolean.
func (f *ConstantFolder) RewriteIf(i *If) (Expression, error) {
	rewritten, err := f.BaseRewriter.RewriteIf(i)
	if err != nil {
		return nil, err
	}

	branch, ok := rewritten.(*If)
	if !ok {
		return rewritten, nil
	}

	if c, isConst := branch.Cond.(*Constant); isConst {
		if taken, isBool := c.Data.(bool); isBool {
			if taken {
				return branch.Then, nil
			}

			return branch.Else, nil
		}
	}

	return branch, nil
}

// constantInt extracts an integer payload from a constant expression.
// Both int and int64 payloads are accepted.
func constantInt(e Expression) (int64, bool) {
	c, ok := e.(*Constant)
	if !ok {
		return 0, false
	}

	switch v := c.Data.(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// foldIntPrimitive evaluates a two-argument integer primitive. A nil result
// with nil error means the primitive is not foldable.
func foldIntPrimitive(name string, l, r int64, span position.Span) (Expression, error) {
	switch name {
	case "add":
		return &Constant{Span: span, Data: l + r}, nil
	case "sub":
		return &Constant{Span: span, Data: l - r}, nil
	case "mul":
		return &Constant{Span: span, Data: l * r}, nil
	case "div":
		if r == 0 {
			return nil, NewPassError("division by zero", span)
		}

		return &Constant{Span: span, Data: l / r}, nil
	case "mod":
		if r == 0 {
			return nil, NewPassError("modulo by zero", span)
		}

		return &Constant{Span: span, Data: l % r}, nil
	case "eq":
		return &Constant{Span: span, Data: l == r}, nil
	case "ne":
		return &Constant{Span: span, Data: l != r}, nil
	case "lt":
		return &Constant{Span: span, Data: l < r}, nil
	case "le":
		return &Constant{Span: span, Data: l <= r}, nil
	default:
		return nil, nil
	}
}

// DeadLetEliminator removes let bindings whose variable is never referenced
// in the body, provided the bound value cannot have side effects. The
// engine's visit counter supplies the use count: occurrences of a bound
// variable in the body share the binder's identity.
type DeadLetEliminator struct {
	BaseRewriter
}

// NewDeadLetEliminator creates a dead-binding elimination pass.
func NewDeadLetEliminator() *DeadLetEliminator {
	d := &DeadLetEliminator{}
	d.Bind(d)

	return d
}

// Run implements the Pass interface.
func (d *DeadLetEliminator) Run(root Expression) (Expression, error) {
	return d.Rewrite(root)
}

// RewriteLet rewrites the binding structurally first, then drops it if the
// rewritten body never uses the bound variable.
func (d *DeadLetEliminator) RewriteLet(l *Let) (Expression, error) {
	rewritten, err := d.BaseRewriter.RewriteLet(l)
	if err != nil {
		return nil, err
	}

	let, ok := rewritten.(*Let)
	if !ok {
		return rewritten, nil
	}

	if !sideEffectFree(let.Value) {
		return let, nil
	}

	uses := &BaseVisitor{}
	if err := uses.Visit(let.Body); err != nil {
		return nil, err
	}

	if uses.VisitCount(let.Var) > 0 {
		return let, nil
	}

	return let.Body, nil
}

// sideEffectFree reports whether evaluating e cannot perform side effects.
// Calls are conservatively treated as effectful.
func sideEffectFree(e Expression) bool {
	switch n := e.(type) {
	case *Constant, *Var, *GlobalRef, *Primitive, *Function:
		return true
	case *Tuple:
		for _, f := range n.Fields {
			if !sideEffectFree(f) {
				return false
			}
		}

		return true
	case *TupleGet:
		return sideEffectFree(n.Tuple)
	case *If:
		return sideEffectFree(n.Cond) && sideEffectFree(n.Then) && sideEffectFree(n.Else)
	default:
		return false
	}
}
