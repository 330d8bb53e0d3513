package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/decaf/internal/ast"
)

// --- Code Printer (Output looks like source code) ---

// Operator precedence (higher = binds tighter). All binary operators are
// left-associative.
var operatorPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3,
	"!=": 3,
	"<":  4,
	">":  4,
	"<=": 4,
	">=": 4,
	"+":  5,
	"-":  5,
	"*":  6,
	"/":  6,
	"%":  6,
}

const prefixPrecedence = 100

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return 10
}

var stringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)

// CodePrinter renders a program back to canonical source: one declaration
// per line, four-space indentation, parentheses only where precedence
// requires them.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Format is a shorthand for printing a whole program.
func Format(program *ast.Program) string {
	p := NewCodePrinter()
	program.Accept(p)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// printExpr prints an expression, adding parentheses only if needed
func (p *CodePrinter) printExpr(expr ast.Expression, parentPrec int, isRight bool) {
	if expr == nil {
		p.write("<???>")
		return
	}
	switch e := expr.(type) {
	case *ast.BinaryOp:
		prec := getPrecedence(e.Operator)
		needParens := prec < parentPrec || (prec == parentPrec && isRight)
		if needParens {
			p.write("(")
		}
		p.printExpr(e.Left, prec, false)
		p.write(" " + e.Operator + " ")
		p.printExpr(e.Right, prec, true)
		if needParens {
			p.write(")")
		}
	case *ast.UnaryOp:
		p.write(e.Operator)
		p.printExpr(e.Operand, prefixPrecedence, false)
	default:
		expr.Accept(p)
	}
}

func (p *CodePrinter) VisitProgram(n *ast.Program) {
	for _, v := range n.Variables {
		v.Accept(p)
	}
	for i, fn := range n.Functions {
		if i > 0 || len(n.Variables) > 0 {
			p.writeln()
		}
		fn.Accept(p)
	}
}

func (p *CodePrinter) VisitVarDecl(n *ast.VarDecl) {
	p.writeIndent()
	p.write(n.VarType.String() + " " + n.Name)
	if n.IsArray {
		p.write("[" + strconv.Itoa(n.ArrayLength) + "]")
	}
	p.write(";")
	p.writeln()
}

func (p *CodePrinter) VisitFuncDecl(n *ast.FuncDecl) {
	p.writeIndent()
	p.write(n.ReturnType.String() + " " + n.Name + "(")
	for i, param := range n.Parameters {
		if i > 0 {
			p.write(", ")
		}
		param.Accept(p)
	}
	p.write(") ")
	p.printBlock(n.Body)
	p.writeln()
}

func (p *CodePrinter) VisitParameter(n *ast.Parameter) {
	p.write(n.ParamType.String() + " " + n.Name)
}

func (p *CodePrinter) VisitBlock(n *ast.Block) {
	p.printBlock(n)
}

// printBlock writes "{ ... }" starting at the current column and leaves
// the cursor right after the closing brace.
func (p *CodePrinter) printBlock(n *ast.Block) {
	if n == nil {
		p.write("{ <???> }")
		return
	}
	if len(n.Variables) == 0 && len(n.Statements) == 0 {
		p.write("{ }")
		return
	}
	p.write("{")
	p.writeln()
	p.indent++
	for _, v := range n.Variables {
		v.Accept(p)
	}
	for _, stmt := range n.Statements {
		p.writeIndent()
		stmt.Accept(p)
		p.writeln()
	}
	p.indent--
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitAssignment(n *ast.Assignment) {
	if n.Target != nil {
		n.Target.Accept(p)
	} else {
		p.write("<???>")
	}
	p.write(" = ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitConditional(n *ast.Conditional) {
	p.write("if (")
	p.printExpr(n.Condition, 0, false)
	p.write(") ")
	p.printBlock(n.IfBlock)
	if n.ElseBlock != nil {
		p.write(" else ")
		p.printBlock(n.ElseBlock)
	}
}

func (p *CodePrinter) VisitWhileLoop(n *ast.WhileLoop) {
	p.write("while (")
	p.printExpr(n.Condition, 0, false)
	p.write(") ")
	p.printBlock(n.Body)
}

func (p *CodePrinter) VisitReturn(n *ast.Return) {
	if n.Value == nil {
		p.write("return;")
		return
	}
	p.write("return ")
	p.printExpr(n.Value, 0, false)
	p.write(";")
}

func (p *CodePrinter) VisitBreak(n *ast.Break)       { p.write("break;") }
func (p *CodePrinter) VisitContinue(n *ast.Continue) { p.write("continue;") }

func (p *CodePrinter) VisitExprStmt(n *ast.ExprStmt) {
	if n.Call != nil {
		n.Call.Accept(p)
	} else {
		p.write("<???>")
	}
	p.write(";")
}

func (p *CodePrinter) VisitBinaryOp(n *ast.BinaryOp) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitUnaryOp(n *ast.UnaryOp) {
	p.printExpr(n, 0, false)
}

func (p *CodePrinter) VisitLocation(n *ast.Location) {
	p.write(n.Name)
	if n.Index != nil {
		p.write("[")
		p.printExpr(n.Index, 0, false)
		p.write("]")
	}
}

func (p *CodePrinter) VisitFuncCall(n *ast.FuncCall) {
	p.write(n.Name + "(")
	for i, arg := range n.Arguments {
		if i > 0 {
			p.write(", ")
		}
		p.printExpr(arg, 0, false)
	}
	p.write(")")
}

func (p *CodePrinter) VisitLiteral(n *ast.Literal) {
	// Keep the source spelling (hex ints, escapes) when there is one.
	if n.Token.Lexeme != "" {
		p.write(n.Token.Lexeme)
		return
	}
	switch v := n.Value.(type) {
	case int64:
		p.write(strconv.FormatInt(v, 10))
	case bool:
		p.write(strconv.FormatBool(v))
	case string:
		p.write(`"` + stringEscaper.Replace(v) + `"`)
	default:
		p.write("<???>")
	}
}
