package resolver

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/lexer"
	"github.com/funvibe/decaf/internal/parser"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/typesystem"
)

// parseSource lexes and parses input, failing the test on syntax errors.
func parseSource(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(pipeline.NewPipelineContext(input))
	if ctx.HasErrors() {
		t.Fatalf("unexpected syntax errors: %v", ctx.Errors)
	}
	return ctx.AstRoot
}

// resolveSource parses and resolves input, returning the program and the
// resolver error.
func resolveSource(t *testing.T, input string) (*ast.Program, *Resolver, error) {
	t.Helper()
	program := parseSource(t, input)
	r := New()
	err := r.Resolve(program)
	return program, r, err
}

func expectDeclarationError(t *testing.T, input string) *symbols.DeclarationError {
	t.Helper()
	_, r, err := resolveSource(t, input)
	var declErr *symbols.DeclarationError
	if !errors.As(err, &declErr) {
		t.Fatalf("expected *symbols.DeclarationError, got %T (%v)\ninput: %s", err, err, input)
	}
	if r.Depth() != 0 {
		t.Errorf("scope stack depth after failure = %d, want 0", r.Depth())
	}
	return declErr
}

func tok(line int) token.Token {
	return token.Token{Line: line, Column: 1}
}

func TestResolve_Example(t *testing.T) {
	program, r, err := resolveSource(t, "int x; void f(int a) { int x; if (true) { int x; } }")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Depth() != 0 {
		t.Errorf("depth = %d, want 0", r.Depth())
	}

	global := program.SymbolTable()
	if got, want := global.Names(), []string{"print_str", "print_int", "print_bool", "x", "f"}; !reflect.DeepEqual(got, want) {
		t.Errorf("global names = %v, want %v", got, want)
	}

	fn := program.Functions[0]
	fnTable := fn.SymbolTable()
	if got, want := fnTable.Names(), []string{"a", "x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("function names = %v, want %v", got, want)
	}
	if fnTable.Parent() != global || fnTable.Kind() != symbols.ScopeFunction {
		t.Error("function table must be a function scope enclosed by the global table")
	}

	ifBlock := fn.Body.Statements[0].(*ast.Conditional).IfBlock
	ifTable := ifBlock.SymbolTable()
	if got, want := ifTable.Names(), []string{"x"}; !reflect.DeepEqual(got, want) {
		t.Errorf("if-block names = %v, want %v", got, want)
	}
	if ifTable.Parent() != fnTable || ifTable.Kind() != symbols.ScopeBlock {
		t.Error("if-block table must be a block scope enclosed by the function table")
	}

	seen := map[*symbols.Symbol]bool{}
	for _, st := range []*symbols.SymbolTable{global, fnTable, ifTable} {
		sym, ok := st.Lookup("x")
		if !ok || sym.Kind != symbols.ScalarSymbol || sym.Type != typesystem.Int {
			t.Fatalf("x in %s scope = %+v", st.Kind(), sym)
		}
		seen[sym] = true
	}
	if len(seen) != 3 {
		t.Errorf("expected 3 distinct x symbols, got %d", len(seen))
	}
}

func TestResolve_DuplicateGlobal(t *testing.T) {
	declErr := expectDeclarationError(t, "int x;\nint x;")
	if declErr.Name != "x" || declErr.OriginalLine != 1 || declErr.ConflictLine != 2 {
		t.Errorf("error = %+v", declErr)
	}
	if declErr.Scope != symbols.ScopeGlobal {
		t.Errorf("scope = %s, want global", declErr.Scope)
	}
	for _, want := range []string{"x", "line 1", "line 2"} {
		if !strings.Contains(declErr.Error(), want) {
			t.Errorf("message %q should contain %q", declErr.Error(), want)
		}
	}
}

func TestResolve_DuplicateDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		dup   string
		scope symbols.ScopeKind
		lines [2]int
	}{
		{"function vs global", "int f;\nvoid f() { }", "f", symbols.ScopeGlobal, [2]int{1, 2}},
		{"two functions", "void f() { }\nint f() { return 1; }", "f", symbols.ScopeGlobal, [2]int{1, 2}},
		{"two parameters", "void f(int a,\nbool a) { }", "a", symbols.ScopeFunction, [2]int{1, 2}},
		{"parameter vs body local", "void f(int a) {\n  int a;\n}", "a", symbols.ScopeFunction, [2]int{1, 2}},
		{"two body locals", "void f() {\n  int y;\n  bool y;\n}", "y", symbols.ScopeFunction, [2]int{2, 3}},
		{"nested block", "void f() {\n  while (true) {\n    int z;\n    int z;\n  }\n}", "z", symbols.ScopeBlock, [2]int{3, 4}},
		{"else block", "void f() {\n  if (c) { } else {\n    int z, z;\n  }\n}", "z", symbols.ScopeBlock, [2]int{3, 3}},
		{"array and scalar", "int buf[4];\nbool buf;", "buf", symbols.ScopeGlobal, [2]int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			declErr := expectDeclarationError(t, tt.input)
			if declErr.Name != tt.dup {
				t.Errorf("name = %q, want %q", declErr.Name, tt.dup)
			}
			if declErr.Scope != tt.scope {
				t.Errorf("scope = %s, want %s", declErr.Scope, tt.scope)
			}
			if declErr.OriginalLine != tt.lines[0] || declErr.ConflictLine != tt.lines[1] {
				t.Errorf("lines = %d/%d, want %d/%d", declErr.OriginalLine, declErr.ConflictLine, tt.lines[0], tt.lines[1])
			}
		})
	}
}

func TestResolve_BuiltinCannotBeRedeclared(t *testing.T) {
	declErr := expectDeclarationError(t, "void print_int(int v) { }")
	if !declErr.Builtin || declErr.Name != "print_int" {
		t.Errorf("error = %+v", declErr)
	}

	// Shadowing a built-in in an inner scope is allowed.
	if _, _, err := resolveSource(t, "void f() { int print_str; }"); err != nil {
		t.Errorf("local shadowing a built-in: %v", err)
	}
}

func TestResolve_EmptyProgramSeedsBuiltins(t *testing.T) {
	program, _, err := resolveSource(t, "")
	if err != nil {
		t.Fatal(err)
	}
	global := program.SymbolTable()
	if global == nil {
		t.Fatal("empty program has no symbol table")
	}
	if got, want := global.Names(), []string{"print_str", "print_int", "print_bool"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("global names = %v, want %v", got, want)
	}
	params := map[string]typesystem.DecafType{"print_str": typesystem.Str, "print_int": typesystem.Int, "print_bool": typesystem.Bool}
	for _, sym := range global.Symbols() {
		if sym.Kind != symbols.FunctionSymbol || sym.Type != typesystem.Void {
			t.Errorf("%s = %+v", sym.Name, sym)
		}
		if got := sym.ParamTypes(); len(got) != 1 || got[0] != params[sym.Name] {
			t.Errorf("%s params = %v", sym.Name, got)
		}
	}
}

func TestResolve_BuiltinsPrecedeUserSymbols(t *testing.T) {
	program, _, err := resolveSource(t, "int a; void main() { }")
	if err != nil {
		t.Fatal(err)
	}
	names := program.SymbolTable().Names()
	if !reflect.DeepEqual(names[:3], symbols.BuiltinNames()) {
		t.Errorf("first names = %v, want built-ins", names[:3])
	}
}

func TestResolve_Arrays(t *testing.T) {
	program, _, err := resolveSource(t, "int buf[16]; bool b; void f() { bool flags[3]; str s; }")
	if err != nil {
		t.Fatal(err)
	}
	buf, _ := program.SymbolTable().Lookup("buf")
	if buf.Kind != symbols.ArraySymbol || buf.Length != 16 || buf.Type != typesystem.Int {
		t.Errorf("buf = %+v", buf)
	}
	b, _ := program.SymbolTable().Lookup("b")
	if b.Kind != symbols.ScalarSymbol || b.Length != 0 {
		t.Errorf("b = %+v", b)
	}
	flags, _ := program.Functions[0].SymbolTable().Lookup("flags")
	if flags.Kind != symbols.ArraySymbol || flags.Length != 3 || flags.Type != typesystem.Bool {
		t.Errorf("flags = %+v", flags)
	}
	s, _ := program.Functions[0].SymbolTable().Lookup("s")
	if s.Kind != symbols.ScalarSymbol || s.Type != typesystem.Str {
		t.Errorf("s = %+v", s)
	}
}

func TestResolve_FunctionSymbol(t *testing.T) {
	program, _, err := resolveSource(t, "int add(int a, bool b) { return a; }")
	if err != nil {
		t.Fatal(err)
	}
	add, ok := program.SymbolTable().Lookup("add")
	if !ok {
		t.Fatal("add not declared in the global table")
	}
	want := []symbols.Param{{Name: "a", Type: typesystem.Int}, {Name: "b", Type: typesystem.Bool}}
	if add.Kind != symbols.FunctionSymbol || add.Type != typesystem.Int || !reflect.DeepEqual(add.Params, want) {
		t.Errorf("add = %+v", add)
	}
	a, _ := program.Functions[0].SymbolTable().Lookup("a")
	if a.Kind != symbols.ScalarSymbol || a.Type != typesystem.Int {
		t.Errorf("parameter a = %+v", a)
	}
}

func TestResolve_ShadowingLaw(t *testing.T) {
	program, _, err := resolveSource(t, `
int x;
void f() {
    while (true) {
        bool x;
        if (x) {
            str x;
        }
    }
}`)
	if err != nil {
		t.Fatalf("shadowing must not fail: %v", err)
	}
	loop := program.Functions[0].Body.Statements[0].(*ast.WhileLoop)
	inner := loop.Body.Statements[0].(*ast.Conditional).IfBlock.SymbolTable()

	sym, owner, ok := inner.Resolve("x")
	if !ok || owner != inner || sym.Type != typesystem.Str {
		t.Fatalf("inner x = %+v", sym)
	}

	var types []typesystem.DecafType
	for st := inner; st != nil; st = st.Parent() {
		if s, ok := st.Lookup("x"); ok {
			types = append(types, s.Type)
		}
	}
	want := []typesystem.DecafType{typesystem.Str, typesystem.Bool, typesystem.Int}
	if !reflect.DeepEqual(types, want) {
		t.Errorf("x along the parent chain = %v, want %v", types, want)
	}
}

func TestResolve_ParameterShadowsGlobal(t *testing.T) {
	program, _, err := resolveSource(t, "int x; void f(bool x) { }")
	if err != nil {
		t.Fatalf("parameter shadowing a global must not fail: %v", err)
	}
	x, owner, _ := program.Functions[0].SymbolTable().Resolve("x")
	if owner.Kind() != symbols.ScopeFunction || x.Type != typesystem.Bool {
		t.Errorf("x resolves to %+v in %s scope", x, owner.Kind())
	}
}

func TestResolve_EveryScopeNodeHasTable(t *testing.T) {
	program, _, err := resolveSource(t, `
int g;
void a() {
    if (g) { int x; } else { int y; }
    while (g) {
        if (g) { while (g) { } }
    }
}
bool b(int p) { return true; }
`)
	if err != nil {
		t.Fatal(err)
	}
	nodes := ast.ScopeNodes(program)
	// program, a, a.body, if, else, while, if, while, b, b.body
	if len(nodes) != 10 {
		t.Fatalf("expected 10 scope nodes, got %d", len(nodes))
	}
	tables := map[*symbols.SymbolTable]bool{}
	for _, n := range nodes {
		st := n.SymbolTable()
		if st == nil {
			t.Fatalf("%s at line %d has no symbol table", n.Type(), n.Line())
		}
		if !st.Sealed() {
			t.Errorf("%s at line %d: table not sealed", n.Type(), n.Line())
		}
		tables[st] = true
	}
	// Function bodies share their function's table.
	if len(tables) != 8 {
		t.Errorf("expected 8 distinct tables, got %d", len(tables))
	}
	for _, fn := range program.Functions {
		if fn.Body.SymbolTable() != fn.SymbolTable() {
			t.Errorf("body of %s has its own table", fn.Name)
		}
	}
	if err := Verify(program); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestResolve_NoTablesBeforeResolution(t *testing.T) {
	program := parseSource(t, "void f() { if (true) { } }")
	for _, n := range ast.ScopeNodes(program) {
		if n.SymbolTable() != nil {
			t.Errorf("%s has a table before resolution", n.Type())
		}
	}
	if err := Verify(program); err == nil {
		t.Error("verify should fail on an unresolved program")
	}
}

func TestResolve_RecursiveFunctionVisibleInBody(t *testing.T) {
	program := parseSource(t, "int fact(int n) { return n; }")
	r := New()
	var visibleAtEntry bool
	r.Trace = func(ev Event) {
		if ev.Kind == EnterScope && ev.Node == ast.ScopeNode(program.Functions[0]) {
			_, _, visibleAtEntry = ev.Table.Resolve("fact")
		}
	}
	if err := r.Resolve(program); err != nil {
		t.Fatal(err)
	}
	if !visibleAtEntry {
		t.Error("function must be declared in the enclosing scope before its body is resolved")
	}
}

func TestResolve_TraceDepth(t *testing.T) {
	program := parseSource(t, "void f() { while (true) { if (true) { } } }")
	r := New()
	var trace []string
	r.Trace = func(ev Event) {
		kind := "enter"
		if ev.Kind == ExitScope {
			kind = "exit"
		}
		if ev.Depth != r.Depth() {
			t.Errorf("event depth %d != resolver depth %d", ev.Depth, r.Depth())
		}
		trace = append(trace, kind+" "+string(ev.Node.Type())+" "+string(rune('0'+ev.Depth)))
	}
	if err := r.Resolve(program); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"enter PROGRAM 1",
		"enter FUNCDECL 2",
		"enter BLOCK 3",
		"enter BLOCK 4",
		"exit BLOCK 3",
		"exit BLOCK 2",
		"exit FUNCDECL 1",
		"exit PROGRAM 0",
	}
	if !reflect.DeepEqual(trace, want) {
		t.Errorf("trace =\n%s\nwant\n%s", strings.Join(trace, "\n"), strings.Join(want, "\n"))
	}
}

func TestResolve_StackEmptyAfterFailure(t *testing.T) {
	program := parseSource(t, "void f() { while (true) { if (true) { int a; int a; } } }")
	r := New()
	maxDepth := 0
	r.Trace = func(ev Event) {
		if ev.Depth > maxDepth {
			maxDepth = ev.Depth
		}
	}
	if err := r.Resolve(program); err == nil {
		t.Fatal("expected error")
	}
	if maxDepth != 4 {
		t.Errorf("max depth = %d, want 4", maxDepth)
	}
	if r.Depth() != 0 || r.Current() != nil {
		t.Errorf("depth after failure = %d, want 0", r.Depth())
	}

	// The resolver is reusable after a failure.
	if err := r.Resolve(parseSource(t, "int ok;")); err != nil {
		t.Errorf("second resolve: %v", err)
	}
}

func TestResolve_TwiceIsStructuralFault(t *testing.T) {
	program := parseSource(t, "void f() { }")
	if err := New().Resolve(program); err != nil {
		t.Fatal(err)
	}
	r := New()
	err := r.Resolve(program)
	var sf *StructuralFault
	if !errors.As(err, &sf) {
		t.Fatalf("expected *StructuralFault, got %T (%v)", err, err)
	}
	if sf.Op != "attach" {
		t.Errorf("op = %q, want attach", sf.Op)
	}
	if r.Depth() != 0 {
		t.Errorf("depth = %d, want 0", r.Depth())
	}
}

func TestResolve_MissingNodesAreStructuralFaults(t *testing.T) {
	tests := []struct {
		name    string
		program *ast.Program
	}{
		{"nil program", nil},
		{"function without body", &ast.Program{
			Token:     tok(1),
			Functions: []*ast.FuncDecl{{Token: tok(1), Name: "f", ReturnType: typesystem.Void}},
		}},
		{"conditional without block", &ast.Program{
			Token: tok(1),
			Functions: []*ast.FuncDecl{{
				Token: tok(1), Name: "f", ReturnType: typesystem.Void,
				Body: &ast.Block{Token: tok(1), Statements: []ast.Statement{&ast.Conditional{Token: tok(2)}}},
			}},
		}},
		{"loop without body", &ast.Program{
			Token: tok(1),
			Functions: []*ast.FuncDecl{{
				Token: tok(1), Name: "f", ReturnType: typesystem.Void,
				Body: &ast.Block{Token: tok(1), Statements: []ast.Statement{&ast.WhileLoop{Token: tok(3)}}},
			}},
		}},
		{"nil variable", &ast.Program{Token: tok(1), Variables: []*ast.VarDecl{nil}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			err := r.Resolve(tt.program)
			var sf *StructuralFault
			if !errors.As(err, &sf) {
				t.Fatalf("expected *StructuralFault, got %T (%v)", err, err)
			}
			if sf.Error() == "" {
				t.Error("empty fault message")
			}
			if r.Depth() != 0 {
				t.Errorf("depth = %d, want 0", r.Depth())
			}
		})
	}
}

func TestResolve_HandBuiltAST(t *testing.T) {
	// int x; void f(int a) { int x; if (true) { int x; } }
	ifBlock := &ast.Block{Token: tok(1), Variables: []*ast.VarDecl{{Token: tok(1), Name: "x", VarType: typesystem.Int}}}
	body := &ast.Block{
		Token:      tok(1),
		Variables:  []*ast.VarDecl{{Token: tok(1), Name: "x", VarType: typesystem.Int}},
		Statements: []ast.Statement{&ast.Conditional{Token: tok(1), Condition: &ast.Literal{Token: tok(1), LitType: typesystem.Bool, Value: true}, IfBlock: ifBlock}},
	}
	program := &ast.Program{
		Token:     tok(1),
		Variables: []*ast.VarDecl{{Token: tok(1), Name: "x", VarType: typesystem.Int}},
		Functions: []*ast.FuncDecl{{
			Token: tok(1), Name: "f", ReturnType: typesystem.Void,
			Parameters: []*ast.Parameter{{Token: tok(1), Name: "a", ParamType: typesystem.Int}},
			Body:       body,
		}},
	}
	if err := New().Resolve(program); err != nil {
		t.Fatal(err)
	}
	if ifBlock.SymbolTable().Parent() != body.SymbolTable() {
		t.Error("if block must be enclosed by the function table")
	}
	if err := Verify(program); err != nil {
		t.Error(err)
	}
}

func TestResolverProcessor(t *testing.T) {
	run := func(input string) *pipeline.PipelineContext {
		return pipeline.New(
			&lexer.LexerProcessor{},
			&parser.ParserProcessor{},
			&ResolverProcessor{},
		).Run(pipeline.NewPipelineContext(input))
	}

	ctx := run("int x; void main() { }")
	if ctx.HasErrors() || !ctx.Resolved {
		t.Fatalf("errors = %v, resolved = %v", ctx.Errors, ctx.Resolved)
	}

	ctx = run("int x;\n\nint x;")
	if len(ctx.Errors) != 1 {
		t.Fatalf("expected 1 error, got %v", ctx.Errors)
	}
	e := ctx.Errors[0]
	if e.Code != diagnostics.ErrS001 || e.Token.Line != 3 || ctx.Resolved || ctx.Fatal {
		t.Errorf("diagnostic = %+v", e)
	}
	var declErr *symbols.DeclarationError
	if !errors.As(e, &declErr) || declErr.OriginalLine != 1 {
		t.Errorf("diagnostic should wrap the declaration error: %v", e)
	}

	// Syntax errors keep the resolver from running.
	ctx = run("int x")
	if ctx.AstRoot == nil || ctx.AstRoot.SymbolTable() != nil {
		t.Error("resolver must not run after a syntax error")
	}
}

func TestResolverProcessor_StructuralFaultIsFatal(t *testing.T) {
	program := parseSource(t, "void f() { }")
	if err := New().Resolve(program); err != nil {
		t.Fatal(err)
	}
	ctx := &pipeline.PipelineContext{AstRoot: program}
	ctx = (&ResolverProcessor{}).Process(ctx)
	if !ctx.Fatal || len(ctx.Errors) != 1 || ctx.Errors[0].Code != diagnostics.ErrS002 {
		t.Errorf("fatal = %v, errors = %v", ctx.Fatal, ctx.Errors)
	}
}
