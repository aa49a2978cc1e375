package ast

import (
	"go/scanner"
	"go/token"
	"strings"

	"github.com/opal-lang/suitec/pkgs/lexer"
)

// Fragment is an opaque code block. The compiler only ever concatenates
// and reorders its statements; it never interprets them.
type Fragment struct {
	Pos    lexer.Position // position of the opening brace
	Source string         // verbatim text between the braces
	Stmts  []Stmt
}

// Stmt is one top-level statement of a fragment
type Stmt struct {
	Text string
	Pos  lexer.Position
}

// NewFragment builds a fragment from a FRAGMENT token
func NewFragment(tok lexer.Token) *Fragment {
	inner := lexer.Position{
		Line:   tok.Pos.Line,
		Column: tok.Pos.Column + 1,
		Offset: tok.Pos.Offset + 1,
	}
	return &Fragment{
		Pos:    tok.Pos,
		Source: tok.Text,
		Stmts:  SplitStatements(tok.Text, inner),
	}
}

// Code returns a fragment holding exactly the given statements.
// Used by tests and by generators that synthesise bodies.
func Code(stmts ...string) *Fragment {
	f := &Fragment{Source: strings.Join(stmts, "\n")}
	for _, s := range stmts {
		f.Stmts = append(f.Stmts, Stmt{Text: s})
	}
	return f
}

// StmtTexts returns the text of every statement in order
func (f *Fragment) StmtTexts() []string {
	if f == nil {
		return nil
	}
	texts := make([]string, len(f.Stmts))
	for i, s := range f.Stmts {
		texts[i] = s.Text
	}
	return texts
}

// SplitStatements splits Go-like source into its top-level statements.
//
// Boundaries are semicolons at bracket depth zero, including the ones Go
// inserts at line ends. Once a statement starts with for, if, switch or
// select, only a line end at depth zero closes it: explicit semicolons in
// its header stay with it, even after a composite literal such as
// []int{0}. Source that cannot be tokenised is returned as a single
// statement.
func SplitStatements(src string, base lexer.Position) []Stmt {
	if strings.TrimSpace(src) == "" {
		return nil
	}

	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(src))

	failed := false
	var s scanner.Scanner
	s.Init(file, []byte(src), func(token.Position, string) { failed = true }, 0)

	var stmts []Stmt
	depth := 0
	header := false
	start, end := -1, -1

	flush := func() {
		if start >= 0 {
			stmts = append(stmts, Stmt{
				Text: src[start:end],
				Pos:  offsetPosition(src, base, start),
			})
		}
		start, end = -1, -1
		header = false
	}

	for {
		pos, tok, lit := s.Scan()
		if tok == token.EOF {
			break
		}
		off := file.Offset(pos)

		if tok == token.SEMICOLON && depth == 0 && (!header || lit == "\n") {
			flush()
			continue
		}

		switch tok {
		case token.FOR, token.IF, token.SWITCH, token.SELECT:
			if depth == 0 {
				header = true
			}
		case token.LPAREN, token.LBRACK, token.LBRACE:
			depth++
		case token.RPAREN, token.RBRACK, token.RBRACE:
			depth--
		}

		if start < 0 {
			start = off
		}
		text := lit
		if text == "" {
			text = tok.String()
		}
		if tok != token.SEMICOLON {
			end = min(off+len(text), len(src))
		}
	}
	flush()

	if failed || depth != 0 {
		trimmed := strings.TrimSpace(src)
		first := strings.Index(src, trimmed)
		return []Stmt{{Text: trimmed, Pos: offsetPosition(src, base, first)}}
	}

	return stmts
}

// offsetPosition maps a byte offset within src to an absolute position
func offsetPosition(src string, base lexer.Position, off int) lexer.Position {
	prefix := src[:off]
	line := base.Line + strings.Count(prefix, "\n")
	column := base.Column + off
	if nl := strings.LastIndexByte(prefix, '\n'); nl >= 0 {
		column = off - nl
	}
	return lexer.Position{Line: line, Column: column, Offset: base.Offset + off}
}
