package symbols

import (
	"github.com/funvibe/decaf/internal/config"
	"github.com/funvibe/decaf/internal/typesystem"
)

type builtinSpec struct {
	name  string
	param typesystem.DecafType
}

// Order matters: the global table lists built-ins first, in this order.
var builtinIO = []builtinSpec{
	{config.PrintStrFuncName, typesystem.Str},
	{config.PrintIntFuncName, typesystem.Int},
	{config.PrintBoolFuncName, typesystem.Bool},
}

// BuiltinNames returns the names of the predeclared functions in install order.
func BuiltinNames() []string {
	names := make([]string, len(builtinIO))
	for i, b := range builtinIO {
		names[i] = b.name
	}
	return names
}

// IsBuiltin reports whether name is a predeclared function.
func IsBuiltin(name string) bool {
	for _, b := range builtinIO {
		if b.name == name {
			return true
		}
	}
	return false
}

// InstallBuiltins adds print_str, print_int and print_bool to st.
// It must run before any user declaration is inserted.
func InstallBuiltins(st *SymbolTable) error {
	for _, b := range builtinIO {
		sym := NewFunction(b.name, typesystem.Void, []Param{{Name: b.name + "_parameter", Type: b.param}}, 0)
		sym.Builtin = true
		if err := st.Insert(sym); err != nil {
			return err
		}
	}
	return nil
}
