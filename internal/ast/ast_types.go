package ast

// NodeType tags every node kind of the closed node set.
type NodeType string

const (
	PROGRAM      NodeType = "PROGRAM"
	VARDECL      NodeType = "VARDECL"
	FUNCDECL     NodeType = "FUNCDECL"
	PARAMETER    NodeType = "PARAMETER"
	BLOCK        NodeType = "BLOCK"
	ASSIGNMENT   NodeType = "ASSIGNMENT"
	CONDITIONAL  NodeType = "CONDITIONAL"
	WHILELOOP    NodeType = "WHILELOOP"
	RETURNSTMT   NodeType = "RETURNSTMT"
	BREAKSTMT    NodeType = "BREAKSTMT"
	CONTINUESTMT NodeType = "CONTINUESTMT"
	EXPRSTMT     NodeType = "EXPRSTMT"
	BINARYOP     NodeType = "BINARYOP"
	UNARYOP      NodeType = "UNARYOP"
	LOCATION     NodeType = "LOCATION"
	FUNCCALL     NodeType = "FUNCCALL"
	LITERAL      NodeType = "LITERAL"
)
