package prettyprinter

import (
	"bytes"
	"fmt"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/symbols"
)

// --- Scope Printer (Output shows the symbol tables of a resolved program) ---

// ScopePrinter dumps the scope tree of a resolved program, one header per
// table and one line per symbol, nested by indentation:
//
//	global
//	  builtin void print_str(str)
//	  1: int x
//	  function f @1
//	    1: int a
//	    block @3
//	      3: bool x
type ScopePrinter struct {
	buf    bytes.Buffer
	indent int

	// HideBuiltins omits the pre-seeded I/O functions from the global scope.
	HideBuiltins bool
}

func NewScopePrinter() *ScopePrinter {
	return &ScopePrinter{}
}

func (p *ScopePrinter) String() string {
	return p.buf.String()
}

// Print appends the scope tree of program to the printer's buffer.
func (p *ScopePrinter) Print(program *ast.Program) {
	p.header("global", program.SymbolTable())
	p.indent++
	for _, fn := range program.Functions {
		p.header(fmt.Sprintf("function %s @%d", fn.Name, fn.Line()), fn.SymbolTable())
		p.indent++
		// The body shares the function table; only its nested blocks get headers.
		if fn.Body != nil {
			p.nested(fn.Body)
		}
		p.indent--
	}
	p.indent--
}

func (p *ScopePrinter) nested(b *ast.Block) {
	for _, stmt := range b.Statements {
		for _, child := range ast.NestedBlocks(stmt) {
			if child == nil {
				continue
			}
			p.header(fmt.Sprintf("block @%d", child.Line()), child.SymbolTable())
			p.indent++
			p.nested(child)
			p.indent--
		}
	}
}

func (p *ScopePrinter) header(title string, st *symbols.SymbolTable) {
	p.line(title)
	p.indent++
	defer func() { p.indent-- }()
	if st == nil {
		p.line("<unresolved>")
		return
	}
	for _, sym := range st.Symbols() {
		if sym.Builtin {
			if !p.HideBuiltins {
				p.line("builtin " + sym.String())
			}
			continue
		}
		p.line(fmt.Sprintf("%d: %s", sym.Line, sym.String()))
	}
}

func (p *ScopePrinter) line(s string) {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("  ")
	}
	p.buf.WriteString(s)
	p.buf.WriteByte('\n')
}
