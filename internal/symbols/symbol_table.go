// symbols/symbol_table.go - Main symbol table entry point
//
// The package is split into focused files:
// - symbol_table_core.go: Symbol, SymbolKind and ScopeKind
// - symbol_table_operations.go: SymbolTable and its operations (insert, lookup, resolve)
// - symbol_table_init.go: Built-in I/O functions of the global scope
// - errors.go: DeclarationError and ErrSealed

package symbols
