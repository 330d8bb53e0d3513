package ast

import "github.com/funvibe/decaf/internal/token"

// Assignment stores a value into a variable or array element.
// x = 1; or a[i] = x;
type Assignment struct {
	Token  token.Token // The '=' token
	Target *Location
	Value  Expression
}

func (as *Assignment) Accept(v Visitor)      { v.VisitAssignment(as) }
func (as *Assignment) statementNode()        {}
func (as *Assignment) Type() NodeType        { return ASSIGNMENT }
func (as *Assignment) GetToken() token.Token { return as.Token }
func (as *Assignment) Line() int             { return as.Token.Line }
func (as *Assignment) TokenLiteral() string  { return as.Token.Lexeme }

// Conditional is if (cond) { ... } with an optional else block.
type Conditional struct {
	Token     token.Token // The 'if' token
	Condition Expression
	IfBlock   *Block
	ElseBlock *Block // nil without else
}

func (c *Conditional) Accept(v Visitor)      { v.VisitConditional(c) }
func (c *Conditional) statementNode()        {}
func (c *Conditional) Type() NodeType        { return CONDITIONAL }
func (c *Conditional) GetToken() token.Token { return c.Token }
func (c *Conditional) Line() int             { return c.Token.Line }
func (c *Conditional) TokenLiteral() string  { return c.Token.Lexeme }

// WhileLoop is while (cond) { ... }.
type WhileLoop struct {
	Token     token.Token // The 'while' token
	Condition Expression
	Body      *Block
}

func (w *WhileLoop) Accept(v Visitor)      { v.VisitWhileLoop(w) }
func (w *WhileLoop) statementNode()        {}
func (w *WhileLoop) Type() NodeType        { return WHILELOOP }
func (w *WhileLoop) GetToken() token.Token { return w.Token }
func (w *WhileLoop) Line() int             { return w.Token.Line }
func (w *WhileLoop) TokenLiteral() string  { return w.Token.Lexeme }

type Return struct {
	Token token.Token // The 'return' token
	Value Expression  // nil for a bare return
}

func (r *Return) Accept(v Visitor)      { v.VisitReturn(r) }
func (r *Return) statementNode()        {}
func (r *Return) Type() NodeType        { return RETURNSTMT }
func (r *Return) GetToken() token.Token { return r.Token }
func (r *Return) Line() int             { return r.Token.Line }
func (r *Return) TokenLiteral() string  { return r.Token.Lexeme }

type Break struct {
	Token token.Token
}

func (b *Break) Accept(v Visitor)      { v.VisitBreak(b) }
func (b *Break) statementNode()        {}
func (b *Break) Type() NodeType        { return BREAKSTMT }
func (b *Break) GetToken() token.Token { return b.Token }
func (b *Break) Line() int             { return b.Token.Line }
func (b *Break) TokenLiteral() string  { return b.Token.Lexeme }

type Continue struct {
	Token token.Token
}

func (c *Continue) Accept(v Visitor)      { v.VisitContinue(c) }
func (c *Continue) statementNode()        {}
func (c *Continue) Type() NodeType        { return CONTINUESTMT }
func (c *Continue) GetToken() token.Token { return c.Token }
func (c *Continue) Line() int             { return c.Token.Line }
func (c *Continue) TokenLiteral() string  { return c.Token.Lexeme }

// ExprStmt is a call evaluated for its effect: print_int(x);
type ExprStmt struct {
	Token token.Token
	Call  *FuncCall
}

func (es *ExprStmt) Accept(v Visitor)      { v.VisitExprStmt(es) }
func (es *ExprStmt) statementNode()        {}
func (es *ExprStmt) Type() NodeType        { return EXPRSTMT }
func (es *ExprStmt) GetToken() token.Token { return es.Token }
func (es *ExprStmt) Line() int             { return es.Token.Line }
func (es *ExprStmt) TokenLiteral() string  { return es.Token.Lexeme }
