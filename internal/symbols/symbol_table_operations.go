package symbols

// SymbolTable maps the names declared in one scope to their symbols,
// keeping declaration order. The outer link is fixed at construction.
type SymbolTable struct {
	store     map[string]*Symbol
	order     []*Symbol
	outer     *SymbolTable
	scopeKind ScopeKind
	sealed    bool
}

// NewSymbolTable creates a root table with no enclosing scope.
func NewSymbolTable(kind ScopeKind) *SymbolTable {
	return &SymbolTable{
		store:     make(map[string]*Symbol),
		scopeKind: kind,
	}
}

func NewEnclosedSymbolTable(outer *SymbolTable, kind ScopeKind) *SymbolTable {
	st := NewSymbolTable(kind)
	st.outer = outer
	return st
}

// Parent returns the enclosing table, nil for the global scope.
func (s *SymbolTable) Parent() *SymbolTable {
	return s.outer
}

func (s *SymbolTable) Kind() ScopeKind {
	return s.scopeKind
}

// IsGlobalScope returns true if this symbol table is the root (global) scope.
func (s *SymbolTable) IsGlobalScope() bool {
	return s.scopeKind == ScopeGlobal
}

// Depth is the number of enclosing tables; 0 for the global scope.
func (s *SymbolTable) Depth() int {
	depth := 0
	for t := s.outer; t != nil; t = t.outer {
		depth++
	}
	return depth
}

// Insert adds sym to this table. A name already present in this table is a
// *DeclarationError; names in enclosing tables are not consulted, so inner
// scopes may shadow outer ones.
func (s *SymbolTable) Insert(sym *Symbol) error {
	if s.sealed {
		return ErrSealed
	}
	if existing, ok := s.store[sym.Name]; ok {
		return &DeclarationError{
			Name:         sym.Name,
			Scope:        s.scopeKind,
			OriginalLine: existing.Line,
			ConflictLine: sym.Line,
			Builtin:      existing.Builtin,
		}
	}
	s.store[sym.Name] = sym
	s.order = append(s.order, sym)
	return nil
}

// Lookup finds name in this table only.
func (s *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, ok := s.store[name]
	return sym, ok
}

// Resolve finds name in this table or the nearest enclosing one and
// returns the table that declares it.
func (s *SymbolTable) Resolve(name string) (*Symbol, *SymbolTable, bool) {
	for t := s; t != nil; t = t.outer {
		if sym, ok := t.store[name]; ok {
			return sym, t, true
		}
	}
	return nil, nil, false
}

// Symbols returns the symbols in declaration order.
func (s *SymbolTable) Symbols() []*Symbol {
	out := make([]*Symbol, len(s.order))
	copy(out, s.order)
	return out
}

// Names returns the declared names in declaration order.
func (s *SymbolTable) Names() []string {
	names := make([]string, len(s.order))
	for i, sym := range s.order {
		names[i] = sym.Name
	}
	return names
}

func (s *SymbolTable) Len() int {
	return len(s.order)
}

// Seal freezes the table; later inserts fail with ErrSealed.
func (s *SymbolTable) Seal() {
	s.sealed = true
}

func (s *SymbolTable) Sealed() bool {
	return s.sealed
}
