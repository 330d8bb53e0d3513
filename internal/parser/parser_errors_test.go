package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/lexer"
	"github.com/funvibe/decaf/internal/parser"
	"github.com/funvibe/decaf/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns all diagnostic errors.
func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx.Errors
}

// expectError asserts an error with the given code is reported.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

// expectNoErrors asserts parsing succeeds without errors.
func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

// ---------------------------------------------------------------------------
// P001: Unexpected token
// ---------------------------------------------------------------------------

func TestP001_MissingSemicolon(t *testing.T) {
	e := expectError(t, "int x\nint y;", diagnostics.ErrP001)
	if e.Token.Line != 2 {
		t.Errorf("line = %d, want 2", e.Token.Line)
	}
	if !strings.Contains(e.Message, "';'") {
		t.Errorf("message should name the expected ';': %s", e.Message)
	}
}

func TestP001_DeclarationAfterStatement(t *testing.T) {
	e := expectError(t, "void f() { x = 1; int y; }", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "declarations must precede statements") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestP001_StatementAtTopLevel(t *testing.T) {
	expectError(t, "x = 1;", diagnostics.ErrP001)
}

func TestP001_UnclosedBlock(t *testing.T) {
	e := expectError(t, "void f() { if (true) { x = 1; }", diagnostics.ErrP001)
	if !strings.Contains(e.Message, "end of file") {
		t.Errorf("unexpected message: %s", e.Message)
	}
}

func TestP001_MissingExpression(t *testing.T) {
	expectError(t, "void f() { x = ; }", diagnostics.ErrP001)
}

func TestP001_OnlyFirstErrorReported(t *testing.T) {
	errs := parseWithErrors("int x\nint y\nint z")
	if len(errs) != 1 {
		t.Errorf("expected exactly one error, got %d", len(errs))
	}
}

// ---------------------------------------------------------------------------
// P002: Invalid type
// ---------------------------------------------------------------------------

func TestP002_VoidParameter(t *testing.T) {
	expectError(t, "void f(void a) { }", diagnostics.ErrP002)
}

func TestP002_UntypedParameter(t *testing.T) {
	expectError(t, "void f(a) { }", diagnostics.ErrP002)
}

// ---------------------------------------------------------------------------
// P003: Invalid array length
// ---------------------------------------------------------------------------

func TestP003_ZeroLengthArray(t *testing.T) {
	e := expectError(t, "int a[0];", diagnostics.ErrP003)
	if !strings.Contains(e.Message, "a") {
		t.Errorf("message should name the array: %s", e.Message)
	}
}

func TestP003_LengthOutOfRange(t *testing.T) {
	e := expectError(t, "int big[3000000000];", diagnostics.ErrP003)
	if !strings.Contains(e.Message, "big") {
		t.Errorf("message should name the array: %s", e.Message)
	}
	expectNoErrors(t, "int max[2147483647];")
}

func TestP003_NonLiteralLength(t *testing.T) {
	expectError(t, "int n; int a[n];", diagnostics.ErrP001)
}

// ---------------------------------------------------------------------------
// Lexer errors stop the parser
// ---------------------------------------------------------------------------

func TestLexerErrorSkipsParsing(t *testing.T) {
	ctx := (&lexer.LexerProcessor{}).Process(pipeline.NewPipelineContext("int @;"))
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.AstRoot != nil {
		t.Error("parser should not run after lexer errors")
	}
	if len(ctx.Errors) != 1 || ctx.Errors[0].Code != diagnostics.ErrL001 {
		t.Errorf("errors = %v", ctx.Errors)
	}
}

func TestValidPrograms(t *testing.T) {
	inputs := []string{
		"",
		"int x;",
		"int a, b[3], c;",
		"void main() { }",
		"int add(int a, int b) { return a + b; }",
		"void f() { return; }",
		"void f() { while (true) { break; continue; } }",
		"void f() { if (x) { } else { } }",
		`void f() { print_str("hi"); print_int(-(1 + 2) * 3 % 4); print_bool(!a && b || c != d); }`,
		"void f() { a[i + 1] = g(a[0], h()); }",
		"bool g; str s; int h() { return 0x1F; }",
	}
	for _, input := range inputs {
		expectNoErrors(t, input)
	}
}
