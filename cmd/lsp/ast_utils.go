package main

import (
	"unicode/utf8"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/funvibe/decaf/internal/token"
)

// reference is one identifier occurrence in a resolved program.
type reference struct {
	Name  string
	Token token.Token
	Scope *symbols.SymbolTable // innermost table at the occurrence
	Decl  bool                 // the occurrence declares Name
}

// span reports whether the 1-based line and rune column fall on the name.
func (r reference) span(line, col int) bool {
	return r.Token.Line == line && col >= r.Token.Column && col < r.Token.Column+utf8.RuneCountInString(r.Name)
}

// resolve looks the name up from the occurrence outwards.
func (r reference) resolve() (*symbols.Symbol, *symbols.SymbolTable, bool) {
	if r.Scope == nil {
		return nil, nil, false
	}
	return r.Scope.Resolve(r.Name)
}

// referenceAt returns the identifier under the 1-based line and rune
// column; see runeColumn for converting an LSP position.
func referenceAt(program *ast.Program, line, col int) (reference, bool) {
	if program == nil {
		return reference{}, false
	}
	f := &refFinder{match: func(r reference) bool { return r.span(line, col) }}
	program.Accept(f)
	return f.found, f.ok
}

// scopeAt returns the innermost symbol table whose node encloses the
// 1-based line. Blocks are delimited by their '{' line and the line of
// their last declaration or statement since the tree keeps no closing
// positions: a line after that, up to and including the '}', resolves to
// the enclosing scope.
func scopeAt(program *ast.Program, line int) *symbols.SymbolTable {
	if program == nil {
		return nil
	}
	best := program.SymbolTable()
	for _, fn := range program.Functions {
		if fn.Body == nil || line < fn.Line() || line > lastLine(fn.Body) {
			continue
		}
		best = innermost(fn.Body, line, fn.SymbolTable())
	}
	return best
}

func innermost(b *ast.Block, line int, outer *symbols.SymbolTable) *symbols.SymbolTable {
	table := b.SymbolTable()
	if table == nil {
		table = outer
	}
	for _, stmt := range b.Statements {
		for _, child := range ast.NestedBlocks(stmt) {
			if child != nil && line >= child.Line() && line <= lastLine(child) {
				return innermost(child, line, table)
			}
		}
	}
	return table
}

// lastLine is the line of the last statement in b, or of its '{'.
func lastLine(b *ast.Block) int {
	last := b.Line()
	for _, v := range b.Variables {
		if v.Line() > last {
			last = v.Line()
		}
	}
	for _, stmt := range b.Statements {
		if stmt.Line() > last {
			last = stmt.Line()
		}
		for _, child := range ast.NestedBlocks(stmt) {
			if child != nil && lastLine(child) > last {
				last = lastLine(child)
			}
		}
	}
	return last
}

type declKey struct {
	table *symbols.SymbolTable
	name  string
}

// declarations maps every declared name, keyed by its table, to the
// token that declares it.
func declarations(program *ast.Program) map[declKey]token.Token {
	decls := make(map[declKey]token.Token)
	if program == nil {
		return decls
	}
	for _, node := range ast.ScopeNodes(program) {
		table := node.SymbolTable()
		if table == nil {
			continue
		}
		switch n := node.(type) {
		case *ast.Program:
			for _, v := range n.Variables {
				decls[declKey{table, v.Name}] = v.Token
			}
			for _, fn := range n.Functions {
				decls[declKey{table, fn.Name}] = fn.Token
			}
		case *ast.FuncDecl:
			for _, p := range n.Parameters {
				decls[declKey{table, p.Name}] = p.Token
			}
		case *ast.Block:
			for _, v := range n.Variables {
				decls[declKey{table, v.Name}] = v.Token
			}
		}
	}
	return decls
}

// refFinder walks the tree tracking the current table and stops at the
// first reference match accepts.
type refFinder struct {
	match func(reference) bool
	scope *symbols.SymbolTable
	found reference
	ok    bool
}

func (f *refFinder) check(tok token.Token, name string, decl bool) {
	if f.ok {
		return
	}
	r := reference{Name: name, Token: tok, Scope: f.scope, Decl: decl}
	if f.match(r) {
		f.found, f.ok = r, true
	}
}

func (f *refFinder) enter(table *symbols.SymbolTable) func() {
	saved := f.scope
	if table != nil {
		f.scope = table
	}
	return func() { f.scope = saved }
}

func (f *refFinder) expr(e ast.Expression) {
	if e != nil && !f.ok {
		e.Accept(f)
	}
}

func (f *refFinder) block(b *ast.Block) {
	if b != nil && !f.ok {
		b.Accept(f)
	}
}

func (f *refFinder) VisitProgram(p *ast.Program) {
	defer f.enter(p.SymbolTable())()
	for _, v := range p.Variables {
		v.Accept(f)
	}
	for _, fn := range p.Functions {
		fn.Accept(f)
	}
}

func (f *refFinder) VisitVarDecl(vd *ast.VarDecl) {
	f.check(vd.Token, vd.Name, true)
}

func (f *refFinder) VisitFuncDecl(fd *ast.FuncDecl) {
	f.check(fd.Token, fd.Name, true)
	defer f.enter(fd.SymbolTable())()
	for _, p := range fd.Parameters {
		p.Accept(f)
	}
	f.block(fd.Body)
}

func (f *refFinder) VisitParameter(p *ast.Parameter) {
	f.check(p.Token, p.Name, true)
}

func (f *refFinder) VisitBlock(b *ast.Block) {
	defer f.enter(b.SymbolTable())()
	for _, v := range b.Variables {
		v.Accept(f)
	}
	for _, stmt := range b.Statements {
		if stmt != nil && !f.ok {
			stmt.Accept(f)
		}
	}
}

func (f *refFinder) VisitAssignment(as *ast.Assignment) {
	if as.Target != nil {
		as.Target.Accept(f)
	}
	f.expr(as.Value)
}

func (f *refFinder) VisitConditional(c *ast.Conditional) {
	f.expr(c.Condition)
	f.block(c.IfBlock)
	f.block(c.ElseBlock)
}

func (f *refFinder) VisitWhileLoop(w *ast.WhileLoop) {
	f.expr(w.Condition)
	f.block(w.Body)
}

func (f *refFinder) VisitReturn(r *ast.Return) {
	f.expr(r.Value)
}

func (f *refFinder) VisitBreak(b *ast.Break)       {}
func (f *refFinder) VisitContinue(c *ast.Continue) {}

func (f *refFinder) VisitExprStmt(es *ast.ExprStmt) {
	if es.Call != nil {
		es.Call.Accept(f)
	}
}

func (f *refFinder) VisitBinaryOp(b *ast.BinaryOp) {
	f.expr(b.Left)
	f.expr(b.Right)
}

func (f *refFinder) VisitUnaryOp(u *ast.UnaryOp) {
	f.expr(u.Operand)
}

func (f *refFinder) VisitLocation(l *ast.Location) {
	f.check(l.Token, l.Name, false)
	f.expr(l.Index)
}

func (f *refFinder) VisitFuncCall(fc *ast.FuncCall) {
	f.check(fc.Token, fc.Name, false)
	for _, arg := range fc.Arguments {
		f.expr(arg)
	}
}

func (f *refFinder) VisitLiteral(l *ast.Literal) {}
