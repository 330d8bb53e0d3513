package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/funvibe/decaf/internal/config"
	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/export"
	"github.com/funvibe/decaf/internal/frontend"
	"github.com/funvibe/decaf/internal/index"
	"github.com/funvibe/decaf/internal/lexer"
	"github.com/funvibe/decaf/internal/pipeline"
	"github.com/funvibe/decaf/internal/prettyprinter"
	"github.com/funvibe/decaf/internal/server"
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/watch"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitDiagnostics = 1
	ExitUsage       = 2
	ExitInternal    = 70
)

const usage = `decaf - scope resolver for the Decaf language

Usage:
  decaf [resolve] [-format text|yaml|json|proto] [-builtins] <file|->
  decaf tokens <file|->
  decaf fmt [-w] <file|->
  decaf index [-db path] <file|dir>...
  decaf query [-db path] [-run id] <name>
  decaf runs [-db path] [-delete id]
  decaf watch [-debounce 250ms] [-index] [-db path] <file|dir>
  decaf serve [-addr host:port]
  decaf remote [-addr host:port] [-format yaml|json|proto] <file|->
  decaf version
  decaf help

Settings are read from the nearest decaf.yaml above the working directory.
`

// app is one CLI invocation.
type app struct {
	args   []string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *log.Logger
	code   int
}

// Run executes the command line of the current process and exits.
func Run() {
	os.Exit(Main(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// Main executes one command line and returns its exit code.
func Main(args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	a := &app{
		args:   args,
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log.New(stderr, "decaf: ", 0),
	}

	// Catch panics and show user-friendly error
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(stderr, "Internal error: %v\n", r)
			fmt.Fprintln(stderr, "This is a bug. Please report it.")
			code = ExitInternal
		}
	}()

	if a.handleVersion() || a.handleHelp() {
		return a.code
	}

	if err := a.loadConfig(); err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrC001, token.Token{}, err))
		return ExitUsage
	}

	if a.handleTokens() {
		return a.code
	}
	if a.handleFormat() {
		return a.code
	}
	if a.handleIndex() {
		return a.code
	}
	if a.handleQuery() {
		return a.code
	}
	if a.handleRuns() {
		return a.code
	}
	if a.handleWatch() {
		return a.code
	}
	if a.handleServe() {
		return a.code
	}
	if a.handleRemote() {
		return a.code
	}
	if a.handleResolve() {
		return a.code
	}

	fmt.Fprint(stderr, usage)
	return ExitUsage
}

func (a *app) command() string {
	if len(a.args) == 0 {
		return ""
	}
	return a.args[0]
}

func (a *app) handleVersion() bool {
	switch a.command() {
	case "version", "-v", "-version", "--version":
		fmt.Fprintln(a.stdout, "decaf "+config.Version)
		return true
	}
	return false
}

func (a *app) handleHelp() bool {
	switch a.command() {
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.stdout, usage)
		return true
	}
	return false
}

func (a *app) loadConfig() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	path, err := config.FindConfig(wd)
	if err != nil {
		return err
	}
	if path == "" {
		a.cfg = config.Default()
		return nil
	}
	a.cfg, err = config.LoadConfig(path)
	return err
}

// newFlags returns a flag set for the named subcommand that reports
// problems to stderr instead of exiting.
func (a *app) newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("decaf "+name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) usageError(format string, args ...interface{}) bool {
	fmt.Fprintf(a.stderr, "Error: "+format+"\n", args...)
	a.code = ExitUsage
	return true
}

// readSource reads a file, or stdin when path is "-".
func (a *app) readSource(path string) (string, string, bool) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
			return "", "", false
		}
		return "", string(data), true
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return "", "", false
	}
	return path, string(data), true
}

func (a *app) report(errs ...*diagnostics.DiagnosticError) {
	mode := config.ColorAuto
	if a.cfg != nil {
		mode = a.cfg.Color
	}
	f, _ := a.stderr.(*os.File)
	diagnostics.Render(a.stderr, errs, diagnostics.ColorEnabled(mode, f))
	a.code = ExitDiagnostics
	for _, e := range errs {
		if e.IsFatal() {
			a.code = ExitInternal
		}
	}
	if a.code == ExitDiagnostics && len(errs) == 1 && (errs[0].Code == diagnostics.ErrI001 || errs[0].Code == diagnostics.ErrC001) {
		a.code = ExitUsage
	}
}

// failed renders the context's diagnostics, if any.
func (a *app) failed(ctx *pipeline.PipelineContext) bool {
	if !ctx.HasErrors() {
		return false
	}
	a.report(ctx.Errors...)
	return true
}

func (a *app) handleResolve() bool {
	args := a.args
	if a.command() == "resolve" {
		args = args[1:]
	} else if len(args) == 0 || (!strings.HasPrefix(args[0], "-") && !watch.IsSource(args[0]) && !fileExists(args[0])) {
		return false
	}

	fs := a.newFlags("resolve")
	format := fs.String("format", a.cfg.Output, "output format: text, yaml, json or proto")
	builtins := fs.Bool("builtins", false, "include built-in functions in text output")
	if err := fs.Parse(args); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("resolve expects exactly one file")
	}

	path, source, ok := a.readSource(fs.Arg(0))
	if !ok {
		return true
	}
	ctx := frontend.Analyze(path, source)
	if a.failed(ctx) {
		return true
	}

	if *format == config.FormatText {
		p := prettyprinter.NewScopePrinter()
		p.HideBuiltins = !*builtins
		p.Print(ctx.AstRoot)
		fmt.Fprint(a.stdout, p.String())
		return true
	}
	root, err := export.Build(ctx.AstRoot)
	if err == nil {
		err = export.Encode(a.stdout, *format, root)
	}
	if err != nil {
		return a.usageError("%v", err)
	}
	return true
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (a *app) handleTokens() bool {
	if a.command() != "tokens" {
		return false
	}
	fs := a.newFlags("tokens")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("tokens expects exactly one file")
	}
	path, source, ok := a.readSource(fs.Arg(0))
	if !ok {
		return true
	}

	ctx := pipeline.NewPipelineContext(source)
	ctx.FilePath = path
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	for _, tok := range ctx.TokenStream.(*lexer.TokenStream).Tokens() {
		fmt.Fprintf(a.stdout, "%d:%d\t%s\t%s\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
	}
	a.failed(ctx)
	return true
}

func (a *app) handleFormat() bool {
	if a.command() != "fmt" {
		return false
	}
	fs := a.newFlags("fmt")
	write := fs.Bool("w", false, "write result to the source file instead of stdout")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("fmt expects exactly one file")
	}
	path, source, ok := a.readSource(fs.Arg(0))
	if !ok {
		return true
	}
	ctx := frontend.Parse(path, source)
	if a.failed(ctx) {
		return true
	}

	out := prettyprinter.Format(ctx.AstRoot)
	if *write && path != "" {
		if out == source {
			return true
		}
		if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
			a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		}
		return true
	}
	fmt.Fprint(a.stdout, out)
	return true
}

func (a *app) openIndex(ctx context.Context, dbPath string) (*index.Index, bool) {
	if dbPath == "" {
		dbPath = a.cfg.IndexPath()
	}
	ix, err := index.Open(ctx, dbPath)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return nil, false
	}
	return ix, true
}

func (a *app) handleIndex() bool {
	if a.command() != "index" {
		return false
	}
	fs := a.newFlags("index")
	dbPath := fs.String("db", "", "index database (default from decaf.yaml)")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() == 0 {
		return a.usageError("index expects at least one file or directory")
	}

	ctx := context.Background()
	ix, ok := a.openIndex(ctx, *dbPath)
	if !ok {
		return true
	}
	defer ix.Close()

	for _, target := range fs.Args() {
		files, err := watch.Sources(target)
		if err != nil {
			a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
			continue
		}
		for _, file := range files {
			a.indexFile(ctx, ix, file)
		}
	}
	return true
}

// indexFile resolves one file and stores it, printing the run id.
func (a *app) indexFile(ctx context.Context, ix *index.Index, file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return
	}
	result := frontend.Analyze(file, string(data))
	if a.failed(result) {
		return
	}
	root, err := export.Build(result.AstRoot)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrS002, token.Token{}, err))
		return
	}
	runID, err := ix.Store(ctx, file, root)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return
	}
	scopes, syms := 0, 0
	root.Walk(func(s *export.Scope, _ int) {
		scopes++
		syms += len(s.Symbols)
	})
	fmt.Fprintf(a.stdout, "%s %s scopes=%d symbols=%d\n", runID, file, scopes, syms)
}

func (a *app) handleQuery() bool {
	if a.command() != "query" {
		return false
	}
	fs := a.newFlags("query")
	dbPath := fs.String("db", "", "index database (default from decaf.yaml)")
	runID := fs.String("run", "", "run id (default: latest run)")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("query expects exactly one name")
	}

	ctx := context.Background()
	ix, ok := a.openIndex(ctx, *dbPath)
	if !ok {
		return true
	}
	defer ix.Close()

	hits, err := ix.Lookup(ctx, *runID, fs.Arg(0))
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return true
	}
	if len(hits) == 0 {
		fmt.Fprintf(a.stderr, "no declarations of %s\n", fs.Arg(0))
		a.code = ExitDiagnostics
		return true
	}
	for _, h := range hits {
		scope := h.ScopeKind
		if h.ScopeOwner != "" {
			scope += " " + h.ScopeOwner
		}
		if h.ScopeLine > 0 {
			scope += fmt.Sprintf(" @%d", h.ScopeLine)
		}
		line := "builtin"
		if !h.Symbol.Builtin {
			line = fmt.Sprintf("line %d", h.Symbol.Line)
		}
		fmt.Fprintf(a.stdout, "%s%s: %s (%s)\n", strings.Repeat("  ", h.Depth), scope, h.Signature, line)
	}
	return true
}

func (a *app) handleRuns() bool {
	if a.command() != "runs" {
		return false
	}
	fs := a.newFlags("runs")
	dbPath := fs.String("db", "", "index database (default from decaf.yaml)")
	del := fs.String("delete", "", "remove the run with this id")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}

	ctx := context.Background()
	ix, ok := a.openIndex(ctx, *dbPath)
	if !ok {
		return true
	}
	defer ix.Close()

	if *del != "" {
		if err := ix.Delete(ctx, *del); err != nil {
			a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		}
		return true
	}
	runs, err := ix.Runs(ctx)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return true
	}
	for _, r := range runs {
		fmt.Fprintf(a.stdout, "%s %s %s scopes=%d symbols=%d\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.File, r.Scopes, r.Symbols)
	}
	return true
}

func (a *app) handleWatch() bool {
	if a.command() != "watch" {
		return false
	}
	fs := a.newFlags("watch")
	debounce := fs.Duration("debounce", time.Duration(a.cfg.Watch.Debounce), "quiet period before re-resolving")
	store := fs.Bool("index", false, "store every successful resolution in the index")
	dbPath := fs.String("db", "", "index database (default from decaf.yaml)")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("watch expects exactly one file or directory")
	}
	target := fs.Arg(0)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var ix *index.Index
	if *store {
		var ok bool
		if ix, ok = a.openIndex(ctx, *dbPath); !ok {
			return true
		}
		defer ix.Close()
	}

	check := func(files []string) {
		for _, file := range files {
			if ix != nil {
				a.indexFile(ctx, ix, file)
				continue
			}
			data, err := os.ReadFile(file)
			if err != nil {
				// Removed or renamed away.
				a.logger.Printf("%s: %v", file, err)
				continue
			}
			if !a.failed(frontend.Analyze(file, string(data))) {
				fmt.Fprintf(a.stdout, "ok %s\n", file)
			}
		}
	}

	files, err := watch.Sources(target)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return true
	}
	check(files)

	a.logger.Printf("watching %s (debounce %s)", target, *debounce)
	if err := watch.Watch(ctx, target, *debounce, check); err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
	}
	return true
}

func (a *app) handleServe() bool {
	if a.command() != "serve" {
		return false
	}
	fs := a.newFlags("serve")
	addr := fs.String("addr", a.cfg.Serve.Addr, "listen address")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return true
	}
	gs := grpc.NewServer()
	if err := server.NewServer(a.logger).Register(gs); err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrS002, token.Token{}, err))
		return true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		gs.GracefulStop()
	}()

	a.logger.Printf("serving %s on %s", "decaf.Resolver", lis.Addr())
	if err := gs.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
	}
	return true
}

func (a *app) handleRemote() bool {
	if a.command() != "remote" {
		return false
	}
	fs := a.newFlags("remote")
	addr := fs.String("addr", a.cfg.Serve.Addr, "server address")
	format := fs.String("format", config.FormatYAML, "output format: yaml, json or proto")
	timeout := fs.Duration("timeout", 10*time.Second, "call timeout")
	if err := fs.Parse(a.args[1:]); err != nil {
		a.code = ExitUsage
		return true
	}
	if fs.NArg() != 1 {
		return a.usageError("remote expects exactly one file")
	}
	path, source, ok := a.readSource(fs.Arg(0))
	if !ok {
		return true
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		a.report(diagnostics.Wrap(diagnostics.ErrI001, token.Token{}, err))
		return true
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	resp, err := server.Resolve(ctx, conn, path, source)
	if err != nil {
		code := diagnostics.ErrI001
		if server.IsInternal(err) {
			code = diagnostics.ErrS002
		}
		a.report(diagnostics.Wrap(code, token.Token{}, err))
		return true
	}
	if !resp.OK {
		errs := make([]*diagnostics.DiagnosticError, len(resp.Diagnostics))
		for i, d := range resp.Diagnostics {
			tok := token.Token{Line: d.Line, Column: d.Column}
			errs[i] = &diagnostics.DiagnosticError{Code: diagnostics.ErrorCode(d.Code), Token: tok, File: d.File, Message: d.Message}
		}
		a.report(errs...)
		return true
	}
	if err := export.Encode(a.stdout, *format, resp.Global); err != nil {
		return a.usageError("%v", err)
	}
	return true
}
