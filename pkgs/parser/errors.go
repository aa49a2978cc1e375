package parser

import (
	"fmt"
	"strings"

	"github.com/opal-lang/suitec/pkgs/lexer"
)

// ErrorType represents different categories of parsing errors.
// ErrorType values double as sentinels: errors.Is(err, ErrDuplicateHook).
type ErrorType int

const (
	ErrorSyntax ErrorType = iota
	ErrorDuplicateHook
	ErrorUnknownBlockKeyword
	ErrorMalformedBenchSignature
	ErrorUnterminatedSuite
	ErrorMissingDescription
)

// Sentinels for errors.Is
var (
	ErrSyntax                  error = ErrorSyntax
	ErrDuplicateHook           error = ErrorDuplicateHook
	ErrUnknownBlockKeyword     error = ErrorUnknownBlockKeyword
	ErrMalformedBenchSignature error = ErrorMalformedBenchSignature
	ErrUnterminatedSuite       error = ErrorUnterminatedSuite
	ErrMissingDescription      error = ErrorMissingDescription
)

func (e ErrorType) String() string {
	switch e {
	case ErrorSyntax:
		return "syntax error"
	case ErrorDuplicateHook:
		return "duplicate hook"
	case ErrorUnknownBlockKeyword:
		return "unknown block keyword"
	case ErrorMalformedBenchSignature:
		return "malformed bench signature"
	case ErrorUnterminatedSuite:
		return "unterminated suite"
	case ErrorMissingDescription:
		return "missing description"
	default:
		return "error"
	}
}

func (e ErrorType) Error() string {
	return e.String()
}

// ParseError represents a parsing error with location and context information
type ParseError struct {
	Type       ErrorType
	Message    string
	Pos        lexer.Position
	Token      lexer.Token
	Suite      string // innermost suite being parsed
	Suggestion string // "did you mean" help, may be empty
	File       string
	Input      string
}

// Error returns the formatted error message with line/column and code snippet
func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Type, e.Message)

	if snippet := e.createCodeSnippet(); snippet != "" {
		b.WriteString("\n")
		b.WriteString(snippet)
	} else if e.Pos.IsValid() {
		fmt.Fprintf(&b, " at %s", e.location())
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n   = help: did you mean `%s`?", e.Suggestion)
	}
	return b.String()
}

// Is matches the error against its ErrorType sentinel
func (e *ParseError) Is(target error) bool {
	t, ok := target.(ErrorType)
	return ok && t == e.Type
}

func (e *ParseError) location() string {
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d", e.File, e.Pos.Line, e.Pos.Column)
	}
	return e.Pos.String()
}

// createCodeSnippet creates a code snippet showing the error location
func (e *ParseError) createCodeSnippet() string {
	if e.Input == "" || !e.Pos.IsValid() {
		return ""
	}

	lines := strings.Split(e.Input, "\n")
	if e.Pos.Line > len(lines) {
		return ""
	}

	lineContent := lines[e.Pos.Line-1]

	var snippet strings.Builder
	snippet.WriteString(fmt.Sprintf("  --> %s\n", e.location()))
	snippet.WriteString("   |\n")
	snippet.WriteString(fmt.Sprintf("%2d | %s\n", e.Pos.Line, lineContent))
	snippet.WriteString("   | ")
	if e.Pos.Column > 0 && e.Pos.Column <= len(lineContent)+1 {
		snippet.WriteString(strings.Repeat(" ", e.Pos.Column-1) + "^")
	}

	return snippet.String()
}

// newError builds a ParseError at the given token
func (p *Parser) newError(typ ErrorType, tok lexer.Token, format string, args ...any) *ParseError {
	return &ParseError{
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
		Pos:     tok.Pos,
		Token:   tok,
		Suite:   p.currentSuite(),
		File:    p.config.filename,
		Input:   p.config.source,
	}
}

// illegal converts a lexer failure into a syntax error
func (p *Parser) illegal(tok lexer.Token) *ParseError {
	return p.newError(ErrorSyntax, tok, "%s", tok.Value)
}

// fromLexError converts an error returned by Reader.Fragment
func (p *Parser) fromLexError(err error, at lexer.Token) *ParseError {
	if lexErr, ok := err.(*lexer.Error); ok {
		tok := at
		tok.Pos = lexErr.Pos
		return p.newError(ErrorSyntax, tok, "%s", lexErr.Message)
	}
	return p.newError(ErrorSyntax, at, "%v", err)
}
