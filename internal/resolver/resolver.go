// Package resolver attaches a symbol table to every scope of a parsed
// program in one depth-first pass.
//
// The global table is seeded with the built-in I/O functions, then holds
// the global variables and every function. Each function gets one table
// for its parameters and the top-level locals of its body; each nested
// if, else and while body gets its own table. A name may appear once per
// table; inner tables may shadow outer names.
package resolver

import (
	"errors"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/symbols"
)

type EventKind int

const (
	EnterScope EventKind = iota
	ExitScope
)

// Event describes one push or pop of the scope stack. Depth is the stack
// depth after the step.
type Event struct {
	Kind  EventKind
	Node  ast.ScopeNode
	Table *symbols.SymbolTable
	Depth int
}

// Resolver owns the stack of open scopes, innermost last.
// It is not safe for concurrent use.
type Resolver struct {
	stack []*symbols.SymbolTable

	// Trace, if set, is called after every push and pop.
	Trace func(Event)
}

func New() *Resolver {
	return &Resolver{}
}

// Depth is the number of currently open scopes.
func (r *Resolver) Depth() int {
	return len(r.stack)
}

// Current returns the innermost open scope, nil when none is open.
func (r *Resolver) Current() *symbols.SymbolTable {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Resolve annotates program in place. It returns a *symbols.DeclarationError
// for a name declared twice in one scope, or a *StructuralFault when the
// traversal itself is inconsistent. The scope stack is empty afterwards
// whatever the outcome.
func (r *Resolver) Resolve(program *ast.Program) (err error) {
	if program == nil {
		return fault("resolve", nil, "program is nil")
	}
	if len(r.stack) != 0 {
		return fault("resolve", program, "scope stack holds %d tables before resolution", len(r.stack))
	}
	defer func() {
		if len(r.stack) != 0 {
			if err == nil {
				err = fault("finish", program, "scope stack holds %d tables after resolution", len(r.stack))
			}
			r.stack = r.stack[:0]
		}
	}()

	return r.visitProgram(program)
}

func (r *Resolver) visitProgram(program *ast.Program) error {
	global := symbols.NewSymbolTable(symbols.ScopeGlobal)
	if err := symbols.InstallBuiltins(global); err != nil {
		return &StructuralFault{Op: "builtins", Node: program, Err: err}
	}
	r.push(program, global)

	for _, v := range program.Variables {
		if err := r.visitVarDecl(v); err != nil {
			return err
		}
	}
	for _, fn := range program.Functions {
		if err := r.visitFuncDecl(fn); err != nil {
			return err
		}
	}

	if err := r.attach(program, global); err != nil {
		return err
	}
	return r.pop(program, global)
}

func (r *Resolver) visitFuncDecl(fn *ast.FuncDecl) error {
	if fn == nil {
		return fault("visit", nil, "nil function declaration")
	}
	if fn.Body == nil {
		return fault("visit", fn, "function %s has no body", fn.Name)
	}

	params := make([]symbols.Param, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = symbols.Param{Name: p.Name, Type: p.ParamType}
	}
	// Declared in the enclosing scope so siblings and the body can call it.
	if err := r.declare(fn, symbols.NewFunction(fn.Name, fn.ReturnType, params, fn.Line())); err != nil {
		return err
	}

	table := symbols.NewEnclosedSymbolTable(r.Current(), symbols.ScopeFunction)
	r.push(fn, table)

	for _, p := range fn.Parameters {
		if err := r.visitParameter(p); err != nil {
			return err
		}
	}

	// The outermost body block shares the function's table.
	if err := r.fillBlock(fn.Body); err != nil {
		return err
	}
	if err := r.attach(fn.Body, table); err != nil {
		return err
	}

	if err := r.attach(fn, table); err != nil {
		return err
	}
	return r.pop(fn, table)
}

func (r *Resolver) visitBlock(owner ast.Node, b *ast.Block) error {
	if b == nil {
		return fault("visit", owner, "missing block")
	}
	table := symbols.NewEnclosedSymbolTable(r.Current(), symbols.ScopeBlock)
	r.push(b, table)

	if err := r.fillBlock(b); err != nil {
		return err
	}

	if err := r.attach(b, table); err != nil {
		return err
	}
	return r.pop(b, table)
}

// fillBlock registers the block's locals in the current table and resolves
// the blocks nested in its statements. Statements that open no scope are
// left to later phases.
func (r *Resolver) fillBlock(b *ast.Block) error {
	for _, v := range b.Variables {
		if err := r.visitVarDecl(v); err != nil {
			return err
		}
	}
	for _, stmt := range b.Statements {
		switch s := stmt.(type) {
		case *ast.Conditional:
			if err := r.visitBlock(s, s.IfBlock); err != nil {
				return err
			}
			if s.ElseBlock != nil {
				if err := r.visitBlock(s, s.ElseBlock); err != nil {
					return err
				}
			}
		case *ast.WhileLoop:
			if err := r.visitBlock(s, s.Body); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Resolver) visitVarDecl(v *ast.VarDecl) error {
	if v == nil {
		return fault("visit", nil, "nil variable declaration")
	}
	if v.IsArray {
		return r.declare(v, symbols.NewArray(v.Name, v.VarType, v.ArrayLength, v.Line()))
	}
	return r.declare(v, symbols.NewScalar(v.Name, v.VarType, v.Line()))
}

func (r *Resolver) visitParameter(p *ast.Parameter) error {
	if p == nil {
		return fault("visit", nil, "nil parameter")
	}
	return r.declare(p, symbols.NewScalar(p.Name, p.ParamType, p.Line()))
}

// declare inserts sym into the innermost open scope.
func (r *Resolver) declare(node ast.Node, sym *symbols.Symbol) error {
	top := r.Current()
	if top == nil {
		return fault("declare", node, "no open scope for %s", sym.Name)
	}
	err := top.Insert(sym)
	if errors.Is(err, symbols.ErrSealed) {
		return &StructuralFault{Op: "declare", Node: node, Err: err}
	}
	return err
}

func (r *Resolver) attach(node ast.ScopeNode, table *symbols.SymbolTable) error {
	if !node.AttachSymbolTable(table) {
		return fault("attach", node, "node already carries a symbol table")
	}
	return nil
}

func (r *Resolver) push(node ast.ScopeNode, table *symbols.SymbolTable) {
	r.stack = append(r.stack, table)
	r.trace(EnterScope, node, table)
}

// pop closes the innermost scope, which must be table, and seals it.
func (r *Resolver) pop(node ast.ScopeNode, table *symbols.SymbolTable) error {
	if r.Current() != table {
		return fault("pop", node, "scope stack out of order")
	}
	r.stack = r.stack[:len(r.stack)-1]
	table.Seal()
	r.trace(ExitScope, node, table)
	return nil
}

func (r *Resolver) trace(kind EventKind, node ast.ScopeNode, table *symbols.SymbolTable) {
	if r.Trace != nil {
		r.Trace(Event{Kind: kind, Node: node, Table: table, Depth: len(r.stack)})
	}
}

// Verify checks that every scope node of a resolved program carries a
// table whose parent is the table of the enclosing scope node.
func Verify(program *ast.Program) error {
	if program.SymbolTable() == nil {
		return fault("verify", program, "program has no symbol table")
	}
	if program.SymbolTable().Parent() != nil {
		return fault("verify", program, "global table has a parent")
	}
	for _, fn := range program.Functions {
		ft := fn.SymbolTable()
		if ft == nil {
			return fault("verify", fn, "function %s has no symbol table", fn.Name)
		}
		if ft.Parent() != program.SymbolTable() {
			return fault("verify", fn, "function %s is not linked to the global table", fn.Name)
		}
		if fn.Body.SymbolTable() != ft {
			return fault("verify", fn.Body, "body of %s does not share the function table", fn.Name)
		}
		if err := verifyNested(fn.Body, ft); err != nil {
			return err
		}
	}
	return nil
}

func verifyNested(b *ast.Block, table *symbols.SymbolTable) error {
	for _, stmt := range b.Statements {
		for _, child := range ast.NestedBlocks(stmt) {
			ct := child.SymbolTable()
			if ct == nil {
				return fault("verify", child, "block has no symbol table")
			}
			if ct.Parent() != table {
				return fault("verify", child, "block is not linked to its enclosing scope")
			}
			if err := verifyNested(child, ct); err != nil {
				return err
			}
		}
	}
	return nil
}
