package typesystem

import "github.com/funvibe/decaf/internal/config"

// DecafType is one of the language's primitive types.
type DecafType int

const (
	Invalid DecafType = iota
	Int
	Bool
	Str
	Void
)

func (t DecafType) String() string {
	switch t {
	case Int:
		return config.IntTypeName
	case Bool:
		return config.BoolTypeName
	case Str:
		return config.StrTypeName
	case Void:
		return config.VoidTypeName
	default:
		return "invalid"
	}
}

// ParseType maps a type name back to its DecafType.
func ParseType(name string) (DecafType, bool) {
	switch name {
	case config.IntTypeName:
		return Int, true
	case config.BoolTypeName:
		return Bool, true
	case config.StrTypeName:
		return Str, true
	case config.VoidTypeName:
		return Void, true
	}
	return Invalid, false
}

// IsValueType reports whether a variable may have type t.
func (t DecafType) IsValueType() bool {
	return t == Int || t == Bool || t == Str
}
