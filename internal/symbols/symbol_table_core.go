package symbols

import (
	"fmt"
	"strings"

	"github.com/funvibe/decaf/internal/typesystem"
)

type SymbolKind int

type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota // Program level, holds built-ins
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return fmt.Sprintf("ScopeKind(%d)", int(k))
	}
}

const (
	ScalarSymbol SymbolKind = iota
	ArraySymbol
	FunctionSymbol
)

func (k SymbolKind) String() string {
	switch k {
	case ScalarSymbol:
		return "scalar"
	case ArraySymbol:
		return "array"
	case FunctionSymbol:
		return "function"
	default:
		return fmt.Sprintf("SymbolKind(%d)", int(k))
	}
}

// Param is one formal parameter of a function symbol.
type Param struct {
	Name string
	Type typesystem.DecafType
}

// Symbol holds the static facts about one declared name.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    typesystem.DecafType // Value type; the return type for functions
	Length  int                  // Arrays only
	Params  []Param              // Functions only, in declaration order
	Line    int                  // Declaration line, 0 for built-ins
	Builtin bool
}

func NewScalar(name string, t typesystem.DecafType, line int) *Symbol {
	return &Symbol{Name: name, Kind: ScalarSymbol, Type: t, Line: line}
}

func NewArray(name string, t typesystem.DecafType, length int, line int) *Symbol {
	return &Symbol{Name: name, Kind: ArraySymbol, Type: t, Length: length, Line: line}
}

func NewFunction(name string, returnType typesystem.DecafType, params []Param, line int) *Symbol {
	ps := make([]Param, len(params))
	copy(ps, params)
	return &Symbol{Name: name, Kind: FunctionSymbol, Type: returnType, Params: ps, Line: line}
}

// ParamTypes returns the parameter types of a function symbol.
func (s *Symbol) ParamTypes() []typesystem.DecafType {
	types := make([]typesystem.DecafType, len(s.Params))
	for i, p := range s.Params {
		types[i] = p.Type
	}
	return types
}

// String renders the symbol as it would be declared: "int x", "int a[10]",
// "void f(int, bool)".
func (s *Symbol) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.Type.String()
	}
	return Signature(s.Kind.String(), s.Type.String(), s.Name, s.Length, params)
}

// Signature is the declaration form shared by every printed symbol. kind
// is a SymbolKind name; length applies to arrays, paramTypes to functions.
func Signature(kind, typ, name string, length int, paramTypes []string) string {
	switch kind {
	case ArraySymbol.String():
		return fmt.Sprintf("%s %s[%d]", typ, name, length)
	case FunctionSymbol.String():
		return fmt.Sprintf("%s %s(%s)", typ, name, strings.Join(paramTypes, ", "))
	default:
		return fmt.Sprintf("%s %s", typ, name)
	}
}
