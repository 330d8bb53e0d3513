package config

// Version is reported by `decaf version`.
const Version = "0.3.1"

const SourceFileExt = ".decaf"

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".decaf", ".dcf"}

// ConfigFileName is looked up from the working directory upwards.
const ConfigFileName = "decaf.yaml"

// Built-in function names
const (
	PrintStrFuncName  = "print_str"
	PrintIntFuncName  = "print_int"
	PrintBoolFuncName = "print_bool"
)

// Built-in type names
const (
	IntTypeName  = "int"
	BoolTypeName = "bool"
	StrTypeName  = "str"
	VoidTypeName = "void"
)

// Output formats understood by the CLI and the exporters.
const (
	FormatText  = "text"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatProto = "proto"
)

// Color modes for diagnostics rendering.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)
