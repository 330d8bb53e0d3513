package resolver

import (
	"fmt"

	"github.com/funvibe/decaf/internal/ast"
)

// StructuralFault is an internal-consistency violation of the traversal:
// a scope node seen twice, a missing required node, a stack that does not
// unwind. It always indicates a bug, never bad input.
type StructuralFault struct {
	Op   string   // What the resolver was doing: "attach", "pop", "finish", ...
	Node ast.Node // Node being processed, if any
	Err  error
}

func (f *StructuralFault) Error() string {
	if f.Node != nil {
		return fmt.Sprintf("structural fault during %s of %s at line %d: %v", f.Op, f.Node.Type(), f.Node.Line(), f.Err)
	}
	return fmt.Sprintf("structural fault during %s: %v", f.Op, f.Err)
}

func (f *StructuralFault) Unwrap() error {
	return f.Err
}

func fault(op string, node ast.Node, format string, args ...interface{}) *StructuralFault {
	return &StructuralFault{Op: op, Node: node, Err: fmt.Errorf(format, args...)}
}
