// Error types shared by the traversal engines.
package ir

import (
	"fmt"
)

// ContractError reports a rewrite handler that produced the wrong variant at
// a binder position, e.g. a Function parameter rewritten into something other
// than a Var. It is a pass-author error: the engine refuses to construct the
// ill-formed node and surfaces the violation at the point of use instead.
type ContractError struct {
	Position string // Binder position being rewritten, e.g. "function parameter"
	Want     string // Required variant
	Got      string // Variant the handler produced
}

// NewContractError creates a new binder-contract violation error.
func NewContractError(position, want string, got interface{}) *ContractError {
	return &ContractError{
		Position: position,
		Want:     want,
		Got:      fmt.Sprintf("%T", got),
	}
}

// Error implements the error interface.
func (ce *ContractError) Error() string {
	return fmt.Sprintf("contract violation: %s must rewrite to %s, handler produced %s", ce.Position, ce.Want, ce.Got)
}

// unknownVariant reports an expression whose dynamic type is outside the
// closed variant set. The Expression interface is sealed, so this is
// unreachable unless a variant was added without updating the engines;
// that is an internal-consistency failure, not a recoverable error.
func unknownVariant(expr Expression) string {
	return fmt.Sprintf("ir: unknown expression variant %T (traversal engine out of sync with variant set)", expr)
}
