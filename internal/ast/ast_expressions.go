package ast

import (
	"github.com/funvibe/decaf/internal/token"
	"github.com/funvibe/decaf/internal/typesystem"
)

// BinaryOp is left <op> right.
type BinaryOp struct {
	Token    token.Token // The operator token
	Operator string
	Left     Expression
	Right    Expression
}

func (b *BinaryOp) Accept(v Visitor)      { v.VisitBinaryOp(b) }
func (b *BinaryOp) expressionNode()       {}
func (b *BinaryOp) Type() NodeType        { return BINARYOP }
func (b *BinaryOp) GetToken() token.Token { return b.Token }
func (b *BinaryOp) Line() int             { return b.Token.Line }
func (b *BinaryOp) TokenLiteral() string  { return b.Token.Lexeme }

// UnaryOp is -x or !x.
type UnaryOp struct {
	Token    token.Token
	Operator string
	Operand  Expression
}

func (u *UnaryOp) Accept(v Visitor)      { v.VisitUnaryOp(u) }
func (u *UnaryOp) expressionNode()       {}
func (u *UnaryOp) Type() NodeType        { return UNARYOP }
func (u *UnaryOp) GetToken() token.Token { return u.Token }
func (u *UnaryOp) Line() int             { return u.Token.Line }
func (u *UnaryOp) TokenLiteral() string  { return u.Token.Lexeme }

// Location names a variable, or an array element when Index is set.
type Location struct {
	Token token.Token // The identifier token
	Name  string
	Index Expression
}

func (l *Location) Accept(v Visitor)      { v.VisitLocation(l) }
func (l *Location) expressionNode()       {}
func (l *Location) Type() NodeType        { return LOCATION }
func (l *Location) GetToken() token.Token { return l.Token }
func (l *Location) Line() int             { return l.Token.Line }
func (l *Location) TokenLiteral() string  { return l.Token.Lexeme }

type FuncCall struct {
	Token     token.Token // The function name token
	Name      string
	Arguments []Expression
}

func (fc *FuncCall) Accept(v Visitor)      { v.VisitFuncCall(fc) }
func (fc *FuncCall) expressionNode()       {}
func (fc *FuncCall) Type() NodeType        { return FUNCCALL }
func (fc *FuncCall) GetToken() token.Token { return fc.Token }
func (fc *FuncCall) Line() int             { return fc.Token.Line }
func (fc *FuncCall) TokenLiteral() string  { return fc.Token.Lexeme }

// Literal is an int, bool or str constant. Value is int64, bool or string.
type Literal struct {
	Token   token.Token
	LitType typesystem.DecafType
	Value   interface{}
}

func (l *Literal) Accept(v Visitor)      { v.VisitLiteral(l) }
func (l *Literal) expressionNode()       {}
func (l *Literal) Type() NodeType        { return LITERAL }
func (l *Literal) GetToken() token.Token { return l.Token }
func (l *Literal) Line() int             { return l.Token.Line }
func (l *Literal) TokenLiteral() string  { return l.Token.Lexeme }
