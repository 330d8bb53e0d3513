package cli

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/decaf/internal/config"
	"github.com/funvibe/decaf/internal/server"
	"google.golang.org/grpc"
)

const example = `int x;
void f(int a) {
    bool x;
    if (a < 1) {
        str x;
    }
}
`

type result struct {
	code   int
	stdout string
	stderr string
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(args, strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestVersion(t *testing.T) {
	for _, arg := range []string{"version", "-v", "--version"} {
		r := run(t, "", arg)
		if r.code != ExitOK || r.stdout != "decaf "+config.Version+"\n" {
			t.Errorf("%s: code=%d stdout=%q", arg, r.code, r.stdout)
		}
	}
}

func TestUsage(t *testing.T) {
	if r := run(t, ""); r.code != ExitUsage || !strings.Contains(r.stderr, "Usage:") {
		t.Errorf("no args: code=%d stderr=%q", r.code, r.stderr)
	}
	if r := run(t, "", "frobnicate"); r.code != ExitUsage {
		t.Errorf("unknown command: code=%d", r.code)
	}
	if r := run(t, "", "help"); r.code != ExitOK || !strings.Contains(r.stdout, "decaf serve") {
		t.Errorf("help: code=%d stdout=%q", r.code, r.stdout)
	}
}

func TestResolve_Text(t *testing.T) {
	file := writeSource(t, t.TempDir(), "ex.decaf", example)
	want := `global
  1: int x
  2: void f(int)
  function f @2
    2: int a
    3: bool x
    block @4
      5: str x
`
	for _, args := range [][]string{{file}, {"resolve", file}} {
		r := run(t, "", args...)
		if r.code != ExitOK {
			t.Fatalf("%v: code=%d stderr=%s", args, r.code, r.stderr)
		}
		if r.stdout != want {
			t.Errorf("%v: got\n%s\nwant\n%s", args, r.stdout, want)
		}
	}
}

func TestResolve_Builtins(t *testing.T) {
	r := run(t, "int x;", "resolve", "-builtins", "-")
	if r.code != ExitOK || !strings.Contains(r.stdout, "builtin void print_str(str)") {
		t.Errorf("code=%d stdout=%q", r.code, r.stdout)
	}
}

func TestResolve_YAML(t *testing.T) {
	file := writeSource(t, t.TempDir(), "ex.decaf", example)
	r := run(t, "", "resolve", "-format", "yaml", file)
	if r.code != ExitOK {
		t.Fatalf("code=%d stderr=%s", r.code, r.stderr)
	}
	for _, want := range []string{"kind: global", "owner: f", "name: print_int", "builtin: true"} {
		if !strings.Contains(r.stdout, want) {
			t.Errorf("yaml output lacks %q:\n%s", want, r.stdout)
		}
	}
}

func TestResolve_Diagnostics(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"duplicate", "int x;\nbool x;\n", "[S001]"},
		{"syntax", "int x\n", "[P001]"},
		{"lexer", "int #;\n", "[L001]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := writeSource(t, t.TempDir(), "bad.decaf", tt.source)
			r := run(t, "", file)
			if r.code != ExitDiagnostics {
				t.Errorf("code = %d, want %d", r.code, ExitDiagnostics)
			}
			if !strings.Contains(r.stderr, tt.code) || !strings.HasPrefix(r.stderr, "- "+file) {
				t.Errorf("stderr = %q", r.stderr)
			}
			if r.stdout != "" {
				t.Errorf("stdout = %q, want nothing", r.stdout)
			}
		})
	}
}

func TestResolve_ArrayLengthOutOfRange(t *testing.T) {
	for _, format := range []string{"json", "proto"} {
		r := run(t, "int big[3000000000];", "resolve", "-format", format, "-")
		if r.code != ExitDiagnostics || !strings.Contains(r.stderr, "[P003]") || r.stdout != "" {
			t.Errorf("%s: code=%d stderr=%q", format, r.code, r.stderr)
		}
	}
}

func TestResolve_MissingFile(t *testing.T) {
	r := run(t, "", "resolve", filepath.Join(t.TempDir(), "nope.decaf"))
	if r.code != ExitUsage || !strings.Contains(r.stderr, "[I001]") {
		t.Errorf("code=%d stderr=%q", r.code, r.stderr)
	}
}

func TestConfigError(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, config.ConfigFileName, "color: purple\n")
	t.Chdir(dir)
	r := run(t, "int x;", "resolve", "-")
	if r.code != ExitUsage || !strings.Contains(r.stderr, "[C001]") {
		t.Errorf("code=%d stderr=%q", r.code, r.stderr)
	}
}

func TestTokens(t *testing.T) {
	r := run(t, "int x;", "tokens", "-")
	want := "1:1\tint\tint\n1:5\tIDENT\tx\n1:6\t;\t;\n"
	if r.code != ExitOK || !strings.HasPrefix(r.stdout, want) || !strings.HasSuffix(r.stdout, "\tEOF\t\n") {
		t.Errorf("code=%d stdout=%q", r.code, r.stdout)
	}
}

func TestFormat(t *testing.T) {
	r := run(t, "int x;void f(){x=1;}", "fmt", "-")
	want := "int x;\n\nvoid f() {\n    x = 1;\n}\n"
	if r.code != ExitOK || r.stdout != want {
		t.Errorf("code=%d stdout=%q want %q", r.code, r.stdout, want)
	}
}

func TestFormat_Write(t *testing.T) {
	file := writeSource(t, t.TempDir(), "ex.decaf", "int   x ;")
	if r := run(t, "", "fmt", "-w", file); r.code != ExitOK || r.stdout != "" {
		t.Fatalf("code=%d stdout=%q stderr=%q", r.code, r.stdout, r.stderr)
	}
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "int x;\n" {
		t.Errorf("file = %q", data)
	}
}

func TestIndexQueryRuns(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "state", "index.db")
	src := filepath.Join(dir, "src")
	writeSource(t, src, "ex.decaf", example)
	writeSource(t, src, "bad.decaf", "int y;\nint y;\n")
	writeSource(t, src, "notes.txt", "not decaf")

	r := run(t, "", "index", "-db", db, src)
	if r.code != ExitDiagnostics {
		t.Errorf("index code = %d, want %d for the broken file", r.code, ExitDiagnostics)
	}
	if !strings.Contains(r.stderr, "[S001]") {
		t.Errorf("index stderr = %q", r.stderr)
	}
	lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "ex.decaf scopes=3 symbols=") {
		t.Fatalf("index stdout = %q", r.stdout)
	}
	runID := strings.Fields(lines[0])[0]

	r = run(t, "", "query", "-db", db, "x")
	if r.code != ExitOK {
		t.Fatalf("query code=%d stderr=%s", r.code, r.stderr)
	}
	got := strings.Split(strings.TrimSpace(r.stdout), "\n")
	if len(got) != 3 {
		t.Fatalf("query stdout = %q", r.stdout)
	}
	for i, want := range []string{"int x (line 1)", "bool x (line 3)", "str x (line 5)"} {
		if !strings.HasSuffix(got[i], want) {
			t.Errorf("hit %d = %q, want suffix %q", i, got[i], want)
		}
	}

	if r = run(t, "", "query", "-db", db, "-run", runID, "nothing"); r.code != ExitDiagnostics {
		t.Errorf("query for an undeclared name: code=%d", r.code)
	}

	r = run(t, "", "runs", "-db", db)
	if r.code != ExitOK || !strings.HasPrefix(r.stdout, runID+" ") {
		t.Errorf("runs code=%d stdout=%q", r.code, r.stdout)
	}
	if r = run(t, "", "runs", "-db", db, "-delete", runID); r.code != ExitOK {
		t.Errorf("delete code=%d stderr=%s", r.code, r.stderr)
	}
	if r = run(t, "", "runs", "-db", db); r.stdout != "" {
		t.Errorf("runs after delete = %q", r.stdout)
	}
}

func TestRemote(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	gs := grpc.NewServer()
	if err := server.NewServer(nil).Register(gs); err != nil {
		t.Fatal(err)
	}
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)
	addr := lis.Addr().String()

	file := writeSource(t, t.TempDir(), "ex.decaf", example)
	r := run(t, "", "remote", "-addr", addr, file)
	if r.code != ExitOK {
		t.Fatalf("code=%d stderr=%s", r.code, r.stderr)
	}
	if !strings.Contains(r.stdout, "kind: global") || !strings.Contains(r.stdout, "owner: f") {
		t.Errorf("stdout = %s", r.stdout)
	}

	bad := writeSource(t, t.TempDir(), "bad.decaf", "int x;\nbool x;\n")
	r = run(t, "", "remote", "-addr", addr, bad)
	if r.code != ExitDiagnostics || !strings.Contains(r.stderr, bad+":2:") || !strings.Contains(r.stderr, "[S001]") {
		t.Errorf("code=%d stderr=%q", r.code, r.stderr)
	}
}
