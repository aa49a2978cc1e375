package lexer

import (
	"fmt"
	"strconv"
)

// TokenType represents the type of token in a suite source
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Literals and content
	IDENTIFIER // suite names, keywords, bench parameter names
	STRING     // "description" or `description`
	FRAGMENT   // verbatim contents of a { ... } code block

	// Delimiters
	LPAREN // (
	RPAREN // )
	LBRACE // {
	RBRACE // }
	BANG   // !
	DOT    // . (dot imports in host files)
)

// Pre-computed token name lookup for fast debugging
var tokenNames = [...]string{
	EOF:        "EOF",
	ILLEGAL:    "ILLEGAL",
	IDENTIFIER: "IDENTIFIER",
	STRING:     "STRING",
	FRAGMENT:   "FRAGMENT",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	BANG:       "BANG",
	DOT:        "DOT",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in source text.
// Line and Column are 1-based, Offset is a 0-based byte offset.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
	Offset int `json:"offset"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position points into a source
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Token represents a single token with position information
type Token struct {
	Type  TokenType
	Text  string // raw source text; for FRAGMENT the text between the braces
	Value string // decoded value for STRING, error message for ILLEGAL, Text otherwise
	Pos   Position
	End   Position
}

// String returns the raw token text (for testing and debugging)
func (t Token) String() string {
	return t.Text
}

// Describe returns a human readable rendering of the token for diagnostics.
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case IDENTIFIER:
		return "identifier `" + t.Text + "`"
	case STRING:
		return "string " + strconv.Quote(t.Value)
	case FRAGMENT:
		return "code block"
	case ILLEGAL:
		return "`" + t.Text + "`"
	default:
		return "'" + t.Text + "'"
	}
}

// Is reports whether the token is an identifier with the given text.
func (t Token) Is(keyword string) bool {
	return t.Type == IDENTIFIER && t.Text == keyword
}

// Reader is the token stream consumed by the suite parser.
//
// Fragment captures a balanced { ... } block verbatim. When the most
// recently peeked token is the opening brace, capture continues from it.
type Reader interface {
	Next() Token
	Peek() Token
	Fragment() (Token, error)
}

// Error is a lexical error with the position it was detected at
type Error struct {
	Pos     Position
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}
