package symbols

import (
	"errors"
	"fmt"
)

// ErrSealed is returned when inserting into a table that was already
// attached to its scope.
var ErrSealed = errors.New("symbol table is sealed")

// DeclarationError reports a name declared twice in one scope.
type DeclarationError struct {
	Name         string
	Scope        ScopeKind
	OriginalLine int
	ConflictLine int
	Builtin      bool // The original declaration is a built-in function
}

func (e *DeclarationError) Error() string {
	if e.Builtin {
		return fmt.Sprintf("%s declared on line %d conflicts with the built-in function %s in %s scope",
			e.Name, e.ConflictLine, e.Name, e.Scope)
	}
	return fmt.Sprintf("%s redeclared on line %d in %s scope (previous declaration on line %d)",
		e.Name, e.ConflictLine, e.Scope, e.OriginalLine)
}
