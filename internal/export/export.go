// Package export turns the symbol tables of a resolved program into a
// plain scope tree and encodes it as YAML, protobuf JSON or protobuf binary.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/funvibe/decaf/internal/ast"
	"github.com/funvibe/decaf/internal/config"
	"github.com/funvibe/decaf/internal/schema"
	"github.com/funvibe/decaf/internal/symbols"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

// ErrUnresolved is returned by Build for a program without symbol tables.
var ErrUnresolved = errors.New("program is not resolved")

type Param struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

type Symbol struct {
	Name    string  `json:"name" yaml:"name"`
	Kind    string  `json:"kind" yaml:"kind"`
	Type    string  `json:"type" yaml:"type"`
	Length  int     `json:"length,omitempty" yaml:"length,omitempty"`
	Params  []Param `json:"params,omitempty" yaml:"params,omitempty"`
	Line    int     `json:"line" yaml:"line"`
	Builtin bool    `json:"builtin,omitempty" yaml:"builtin,omitempty"`
}

// Scope mirrors one symbol table. Owner is the enclosing function's name
// for function and block scopes.
type Scope struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Owner    string   `json:"owner,omitempty" yaml:"owner,omitempty"`
	Line     int      `json:"line,omitempty" yaml:"line,omitempty"`
	Symbols  []Symbol `json:"symbols,omitempty" yaml:"symbols,omitempty"`
	Children []*Scope `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk calls fn for s and every scope below it, parents first.
func (s *Scope) Walk(fn func(scope *Scope, depth int)) {
	s.walk(fn, 0)
}

func (s *Scope) walk(fn func(*Scope, int), depth int) {
	fn(s, depth)
	for _, c := range s.Children {
		c.walk(fn, depth+1)
	}
}

// Build mirrors the scopes of a resolved program. A function's body shares
// its table, so it does not appear as a separate child.
func Build(program *ast.Program) (*Scope, error) {
	if program == nil || program.SymbolTable() == nil {
		return nil, ErrUnresolved
	}
	root := newScope(program.SymbolTable(), "", 0)
	for _, fn := range program.Functions {
		if fn.SymbolTable() == nil || fn.Body == nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, ErrUnresolved)
		}
		fs := newScope(fn.SymbolTable(), fn.Name, fn.Line())
		if err := addBlocks(fs, fn.Body, fn.Name); err != nil {
			return nil, err
		}
		root.Children = append(root.Children, fs)
	}
	return root, nil
}

func addBlocks(parent *Scope, b *ast.Block, owner string) error {
	for _, stmt := range b.Statements {
		for _, child := range ast.NestedBlocks(stmt) {
			if child == nil || child.SymbolTable() == nil {
				return fmt.Errorf("block in %s at line %d: %w", owner, stmt.Line(), ErrUnresolved)
			}
			bs := newScope(child.SymbolTable(), owner, child.Line())
			if err := addBlocks(bs, child, owner); err != nil {
				return err
			}
			parent.Children = append(parent.Children, bs)
		}
	}
	return nil
}

func newScope(st *symbols.SymbolTable, owner string, line int) *Scope {
	s := &Scope{Kind: st.Kind().String(), Owner: owner, Line: line}
	for _, sym := range st.Symbols() {
		s.Symbols = append(s.Symbols, fromSymbol(sym))
	}
	return s
}

func fromSymbol(sym *symbols.Symbol) Symbol {
	out := Symbol{
		Name:    sym.Name,
		Kind:    sym.Kind.String(),
		Type:    sym.Type.String(),
		Length:  sym.Length,
		Line:    sym.Line,
		Builtin: sym.Builtin,
	}
	for _, p := range sym.Params {
		out.Params = append(out.Params, Param{Name: p.Name, Type: p.Type.String()})
	}
	return out
}

// ToMessage converts s to a decaf.Scope protobuf message.
func ToMessage(s *Scope) (proto.Message, error) {
	return schema.Encode(schema.ScopeMessage, s)
}

// FromMessage converts a decaf.Scope protobuf message back to a tree.
func FromMessage(m proto.Message) (*Scope, error) {
	var s Scope
	if err := schema.Decode(m, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode writes s to w in the given format: yaml, json or proto.
func Encode(w io.Writer, format string, s *Scope) error {
	switch format {
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case config.FormatJSON:
		msg, err := ToMessage(s)
		if err != nil {
			return err
		}
		data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(msg)
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case config.FormatProto:
		msg, err := ToMessage(s)
		if err != nil {
			return err
		}
		data, err := proto.Marshal(msg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// Decode reads a tree written by Encode.
func Decode(r io.Reader, format string) (*Scope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	switch format {
	case config.FormatYAML:
		var s Scope
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return &s, nil
	case config.FormatJSON, config.FormatProto:
		msg, err := schema.NewMessage(schema.ScopeMessage)
		if err != nil {
			return nil, err
		}
		if format == config.FormatJSON {
			err = protojson.Unmarshal(data, msg)
		} else {
			err = proto.Unmarshal(data, msg)
		}
		if err != nil {
			return nil, err
		}
		return FromMessage(msg)
	}
	return nil, fmt.Errorf("unsupported export format %q", format)
}
