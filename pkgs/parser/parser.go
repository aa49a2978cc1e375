// Package parser turns a token stream into a suite tree.
//
// Parsing is single pass and eager: the first error aborts the parse and no
// partial tree is returned.
package parser

import (
	"log/slog"
	"time"

	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/invariant"
	"github.com/opal-lang/suitec/pkgs/lexer"
)

// Block keywords. Aliases on the same line are interchangeable.
const (
	KeywordBeforeEach = "before_each"
	KeywordGiven      = "given"
	KeywordAfterEach  = "after_each"
	KeywordThen       = "then"
	KeywordBefore     = "before"
	KeywordAfter      = "after"
	KeywordIt         = "it"
	KeywordWhen       = "when"
	KeywordFailing    = "failing"
	KeywordIgnore     = "ignore"
	KeywordBench      = "bench"
	KeywordDescribe   = "describe"
)

// Keywords lists every block keyword, used for suggestions
var Keywords = []string{
	KeywordBeforeEach, KeywordGiven,
	KeywordAfterEach, KeywordThen,
	KeywordBefore, KeywordAfter,
	KeywordIt, KeywordWhen,
	KeywordFailing, KeywordIgnore,
	KeywordBench, KeywordDescribe,
}

// Parser parses one top-level suite from a token reader
type Parser struct {
	r      lexer.Reader
	config ParserConfig
	stack  []string // names of the suites being parsed, outermost first

	debugEvents []DebugEvent
}

// New creates a parser over r
func New(r lexer.Reader, opts ...ParserOpt) *Parser {
	config := ParserConfig{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&config)
	}
	return &Parser{r: r, config: config}
}

// Parse parses the suite body that follows in r. The suite name is supplied
// by the caller; no name token is consumed.
func Parse(name string, r lexer.Reader, opts ...ParserOpt) (*ast.Suite, error) {
	return New(r, opts...).Parse(name)
}

// ParseString parses src as a complete suite body: `{ ... }` followed by
// nothing but trivia.
func ParseString(name, src string, opts ...ParserOpt) (*ast.Suite, error) {
	opts = append([]ParserOpt{WithSource(src)}, opts...)
	p := New(lexer.New(src), opts...)
	s, err := p.Parse(name)
	if err != nil {
		return nil, err
	}
	if tok := p.r.Next(); tok.Type != lexer.EOF {
		if tok.Type == lexer.ILLEGAL {
			return nil, p.illegal(tok)
		}
		return nil, p.newError(ErrorSyntax, tok, "unexpected %s after suite `%s`", tok.Describe(), name)
	}
	return s, nil
}

// Parse parses one suite named name
func (p *Parser) Parse(name string) (*ast.Suite, error) {
	open := p.r.Peek()
	s, err := p.suite(name, open.Pos)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// DebugEvents returns the events recorded with WithDebugPaths
func (p *Parser) DebugEvents() []DebugEvent {
	return p.debugEvents
}

func (p *Parser) currentSuite() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

func (p *Parser) recordDebugEvent(event string, tok lexer.Token, context string) {
	if p.config.debug < DebugPaths {
		return
	}
	p.debugEvents = append(p.debugEvents, DebugEvent{
		Timestamp: time.Now(),
		Event:     event,
		Line:      tok.Pos.Line,
		Context:   context,
	})
	p.config.logger.Debug("parser", "event", event, "pos", tok.Pos.String(), "context", context)
}

// suite parses '{' Block* '}'
func (p *Parser) suite(name string, pos lexer.Position) (*ast.Suite, error) {
	p.stack = append(p.stack, name)
	defer func() { p.stack = p.stack[:len(p.stack)-1] }()

	open, err := p.expect(lexer.LBRACE, ErrorSyntax, "expected '{' to open describe! block `"+name+"`")
	if err != nil {
		return nil, err
	}
	p.recordDebugEvent("enter_suite", open, name)

	s := &ast.Suite{Name: name, Pos: pos}
	for {
		tok := p.r.Peek()
		switch tok.Type {
		case lexer.RBRACE:
			p.r.Next()
			p.recordDebugEvent("exit_suite", tok, name)
			return s, nil
		case lexer.EOF:
			return nil, p.newError(ErrorUnterminatedSuite, tok,
				"missing '}' to close describe! block `%s` opened at %s", name, open.Pos)
		case lexer.RPAREN:
			return nil, p.newError(ErrorUnterminatedSuite, tok,
				"mismatched ')'; expected '}' to close describe! block `%s`", name)
		case lexer.ILLEGAL:
			return nil, p.illegal(p.r.Next())
		case lexer.IDENTIFIER:
			if err := p.block(s); err != nil {
				return nil, err
			}
			invariant.Invariant(p.r.Peek().Pos.Offset > tok.Pos.Offset,
				"block at %s consumed no input", tok.Pos)
		default:
			return nil, p.newError(ErrorSyntax, p.r.Next(),
				"expected a block keyword, found %s", tok.Describe())
		}
	}
}

// block parses one Block and adds it to s
func (p *Parser) block(s *ast.Suite) error {
	head := p.r.Next()
	p.recordDebugEvent("block", head, head.Text)

	switch head.Text {
	case KeywordBeforeEach, KeywordGiven:
		return p.hook(head, &s.BeforeEach, KeywordBeforeEach)
	case KeywordAfterEach, KeywordThen:
		return p.hook(head, &s.AfterEach, KeywordAfterEach)
	case KeywordBefore:
		return p.hook(head, &s.Before, KeywordBefore)
	case KeywordAfter:
		return p.hook(head, &s.After, KeywordAfter)

	case KeywordIt, KeywordWhen:
		return p.test(s, head, ast.PlainTest())

	case KeywordFailing:
		var msg *string
		if p.r.Peek().Type == lexer.LPAREN {
			p.r.Next()
			str, err := p.expect(lexer.STRING, ErrorSyntax, "expected a failure message string inside failing(...)")
			if err != nil {
				return err
			}
			if _, err := p.expect(lexer.RPAREN, ErrorSyntax, "expected ')' to close the failure message"); err != nil {
				return err
			}
			msg = &str.Value
		}
		return p.test(s, head, ast.FailingTest(msg))

	case KeywordIgnore:
		return p.test(s, head, ast.IgnoredTest())

	case KeywordBench:
		return p.bench(s, head)

	case KeywordDescribe:
		if _, err := p.expect(lexer.BANG, ErrorSyntax, "expected '!' after describe"); err != nil {
			return err
		}
		name, err := p.expect(lexer.IDENTIFIER, ErrorSyntax, "expected a name after describe!")
		if err != nil {
			return err
		}
		child, err := p.suite(name.Text, head.Pos)
		if err != nil {
			return err
		}
		s.Blocks = append(s.Blocks, child)
		return nil

	default:
		e := p.newError(ErrorUnknownBlockKeyword, head,
			"expected one of before_each, after_each, before, after, it, failing, ignore, bench or describe!, found `%s`", head.Text)
		e.Suggestion = suggestKeyword(head.Text)
		return e
	}
}

// hook parses the code block of a hook into slot, rejecting a second one
func (p *Parser) hook(head lexer.Token, slot **ast.Fragment, kind string) error {
	if *slot != nil {
		return p.newError(ErrorDuplicateHook, head,
			"only one %s block is allowed per describe! block; `%s` repeats the one at %s",
			kind, head.Text, (*slot).Pos)
	}
	body, err := p.fragment(head)
	if err != nil {
		return err
	}
	*slot = body
	return nil
}

// test parses StringLiteral CodeFragment
func (p *Parser) test(s *ast.Suite, head lexer.Token, config ast.TestConfig) error {
	desc, err := p.description(head)
	if err != nil {
		return err
	}
	body, err := p.fragment(head)
	if err != nil {
		return err
	}
	s.Blocks = append(s.Blocks, &ast.Test{
		Description: desc,
		Body:        body,
		Config:      config,
		Pos:         head.Pos,
	})
	return nil
}

// bench parses StringLiteral '(' Identifier ')' CodeFragment
func (p *Parser) bench(s *ast.Suite, head lexer.Token) error {
	desc, err := p.description(head)
	if err != nil {
		return err
	}

	const signature = "expected `(name)` after the bench description"
	if _, err := p.expect(lexer.LPAREN, ErrorMalformedBenchSignature, signature); err != nil {
		return err
	}
	param, err := p.expect(lexer.IDENTIFIER, ErrorMalformedBenchSignature, signature)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.RPAREN, ErrorMalformedBenchSignature, signature); err != nil {
		return err
	}

	body, err := p.fragment(head)
	if err != nil {
		return err
	}
	s.Blocks = append(s.Blocks, &ast.Bench{
		Description: desc,
		Param:       param.Text,
		Body:        body,
		Pos:         head.Pos,
	})
	return nil
}

// description reads the non-empty string literal after a test keyword
func (p *Parser) description(head lexer.Token) (string, error) {
	tok, err := p.expect(lexer.STRING, ErrorMissingDescription, "`"+head.Text+"` must be followed by a description string")
	if err != nil {
		return "", err
	}
	if tok.Value == "" {
		return "", p.newError(ErrorMissingDescription, tok, "`%s` description must not be empty", head.Text)
	}
	return tok.Value, nil
}

// fragment captures the code block that follows a block head
func (p *Parser) fragment(head lexer.Token) (*ast.Fragment, error) {
	next := p.r.Peek()
	if next.Type == lexer.ILLEGAL {
		return nil, p.illegal(p.r.Next())
	}
	if next.Type != lexer.LBRACE {
		return nil, p.newError(ErrorSyntax, p.r.Next(),
			"expected '{' to open the code block of `%s`, found %s", head.Text, next.Describe())
	}
	tok, err := p.r.Fragment()
	if err != nil {
		return nil, p.fromLexError(err, next)
	}
	return ast.NewFragment(tok), nil
}

// expect consumes the next token, which must be of type typ
func (p *Parser) expect(typ lexer.TokenType, errType ErrorType, message string) (lexer.Token, error) {
	tok := p.r.Next()
	if tok.Type == typ {
		return tok, nil
	}
	if tok.Type == lexer.ILLEGAL {
		return tok, p.illegal(tok)
	}
	return tok, p.newError(errType, tok, "%s, found %s", message, tok.Describe())
}
