package ast

// Visitor has one method per node kind. Nodes dispatch to it from Accept;
// a visitor decides itself whether to descend into children.
type Visitor interface {
	VisitProgram(p *Program)
	VisitVarDecl(vd *VarDecl)
	VisitFuncDecl(fd *FuncDecl)
	VisitParameter(p *Parameter)
	VisitBlock(b *Block)

	VisitAssignment(as *Assignment)
	VisitConditional(c *Conditional)
	VisitWhileLoop(w *WhileLoop)
	VisitReturn(r *Return)
	VisitBreak(b *Break)
	VisitContinue(c *Continue)
	VisitExprStmt(es *ExprStmt)

	VisitBinaryOp(b *BinaryOp)
	VisitUnaryOp(u *UnaryOp)
	VisitLocation(l *Location)
	VisitFuncCall(fc *FuncCall)
	VisitLiteral(l *Literal)
}

// ScopeNodes lists every scope-introducing node of p in pre-order: the
// program, then each function followed by the blocks nested in its body.
// A function's body block is included after its FuncDecl.
func ScopeNodes(p *Program) []ScopeNode {
	nodes := []ScopeNode{p}
	for _, fn := range p.Functions {
		nodes = append(nodes, fn)
		if fn.Body != nil {
			nodes = appendBlocks(nodes, fn.Body)
		}
	}
	return nodes
}

func appendBlocks(nodes []ScopeNode, b *Block) []ScopeNode {
	nodes = append(nodes, b)
	for _, stmt := range b.Statements {
		for _, child := range NestedBlocks(stmt) {
			nodes = appendBlocks(nodes, child)
		}
	}
	return nodes
}

// NestedBlocks returns the blocks a statement opens: the if and else
// branches of a Conditional, the body of a WhileLoop, nothing otherwise.
func NestedBlocks(stmt Statement) []*Block {
	switch s := stmt.(type) {
	case *Conditional:
		if s.ElseBlock != nil {
			return []*Block{s.IfBlock, s.ElseBlock}
		}
		return []*Block{s.IfBlock}
	case *WhileLoop:
		return []*Block{s.Body}
	}
	return nil
}
