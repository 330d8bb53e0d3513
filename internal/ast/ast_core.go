package ast

import (
	"github.com/funvibe/decaf/internal/symbols"
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/typesystem"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes.
type Node interface {
	TokenProvider
	TokenLiteral() string
	Type() NodeType
	Line() int
	Accept(v Visitor)
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// ScopeNode is implemented by the nodes that introduce a lexical scope:
// *Program, *FuncDecl and *Block.
type ScopeNode interface {
	Node
	SymbolTable() *symbols.SymbolTable
	AttachSymbolTable(st *symbols.SymbolTable) bool
	scopeNode()
}

// scope stores the table attached to a scope node by the resolver.
type scope struct {
	table *symbols.SymbolTable
}

// SymbolTable returns the attached table, nil before resolution.
func (s *scope) SymbolTable() *symbols.SymbolTable { return s.table }

// AttachSymbolTable records st as this node's table. It returns false,
// leaving the node unchanged, if a table is already attached.
func (s *scope) AttachSymbolTable(st *symbols.SymbolTable) bool {
	if s.table != nil {
		return false
	}
	s.table = st
	return true
}

func (s *scope) scopeNode() {}

// Program is the root node of every AST our parser produces.
type Program struct {
	scope
	Token     token.Token // First token of the file
	File      string      // Source file path
	Variables []*VarDecl  // Global variables, in source order
	Functions []*FuncDecl // Function declarations, in source order
}

func (p *Program) Accept(v Visitor)      { v.VisitProgram(p) }
func (p *Program) Type() NodeType        { return PROGRAM }
func (p *Program) GetToken() token.Token { return p.Token }
func (p *Program) Line() int             { return p.Token.Line }
func (p *Program) TokenLiteral() string  { return p.Token.Lexeme }

// VarDecl declares one scalar or fixed-length array variable.
// int x; or bool flags[8];
type VarDecl struct {
	Token       token.Token // The identifier token
	Name        string
	VarType     typesystem.DecafType
	IsArray     bool
	ArrayLength int // Positive when IsArray
}

func (vd *VarDecl) Accept(v Visitor)      { v.VisitVarDecl(vd) }
func (vd *VarDecl) Type() NodeType        { return VARDECL }
func (vd *VarDecl) GetToken() token.Token { return vd.Token }
func (vd *VarDecl) Line() int             { return vd.Token.Line }
func (vd *VarDecl) TokenLiteral() string  { return vd.Token.Lexeme }

// FuncDecl is a function declaration with its body.
// int add(int a, int b) { ... }
type FuncDecl struct {
	scope
	Token      token.Token // The function name token
	Name       string
	ReturnType typesystem.DecafType
	Parameters []*Parameter
	Body       *Block
}

func (fd *FuncDecl) Accept(v Visitor)      { v.VisitFuncDecl(fd) }
func (fd *FuncDecl) Type() NodeType        { return FUNCDECL }
func (fd *FuncDecl) GetToken() token.Token { return fd.Token }
func (fd *FuncDecl) Line() int             { return fd.Token.Line }
func (fd *FuncDecl) TokenLiteral() string  { return fd.Token.Lexeme }

// Parameter is one formal parameter of a FuncDecl.
type Parameter struct {
	Token     token.Token // The identifier token
	Name      string
	ParamType typesystem.DecafType
}

func (p *Parameter) Accept(v Visitor)      { v.VisitParameter(p) }
func (p *Parameter) Type() NodeType        { return PARAMETER }
func (p *Parameter) GetToken() token.Token { return p.Token }
func (p *Parameter) Line() int             { return p.Token.Line }
func (p *Parameter) TokenLiteral() string  { return p.Token.Lexeme }

// Block is a braced body: local declarations first, then statements.
type Block struct {
	scope
	Token      token.Token // The '{' token
	Variables  []*VarDecl
	Statements []Statement
}

func (b *Block) Accept(v Visitor)      { v.VisitBlock(b) }
func (b *Block) Type() NodeType        { return BLOCK }
func (b *Block) GetToken() token.Token { return b.Token }
func (b *Block) Line() int             { return b.Token.Line }
func (b *Block) TokenLiteral() string  { return b.Token.Lexeme }
