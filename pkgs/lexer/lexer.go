package lexer

import (
	"log/slog"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// ASCII character lookup tables for fast classification
var (
	isWhitespace     [128]bool // Only ASCII range
	isLetter         [128]bool
	isDigit          [128]bool
	singleCharTokens [128]TokenType // Fast lookup for single-char tokens
)

func init() {
	for i := 0; i < 128; i++ {
		ch := byte(i)
		isWhitespace[i] = ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f' || ch == '\n'
		isLetter[i] = ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
		isDigit[i] = '0' <= ch && ch <= '9'
		singleCharTokens[i] = ILLEGAL
	}

	singleCharTokens['('] = LPAREN
	singleCharTokens[')'] = RPAREN
	singleCharTokens['{'] = LBRACE
	singleCharTokens['}'] = RBRACE
	singleCharTokens['!'] = BANG
	singleCharTokens['.'] = DOT
}

// Option configures a Lexer
type Option func(*Lexer)

// WithLogger sets the logger used for debug tracing
func WithLogger(logger *slog.Logger) Option {
	return func(l *Lexer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// Lexer turns suite source text into tokens. Code blocks are captured
// verbatim on request and never tokenised.
type Lexer struct {
	input    string // Complete input
	position int    // Current position in input (byte offset)
	readPos  int    // Current reading position in input (byte offset)
	ch       rune   // Current rune under examination
	line     int    // Current line number
	column   int    // Current column number

	peeked *Token

	logger *slog.Logger
}

// New creates a new Lexer over input
func New(input string, opts ...Option) *Lexer {
	l := &Lexer{
		input:  input,
		line:   1,
		column: 0, // Will be incremented to 1 by initial readChar()
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.readChar()
	return l
}

// readChar reads the next character and advances position
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	l.position = l.readPos
	l.column++

	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		return
	}

	ch, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	if ch == utf8.RuneError && size <= 1 {
		ch = rune(l.input[l.readPos])
		size = 1
	}
	l.ch = ch
	l.readPos += size
}

// peekChar returns the next character without advancing position
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return ch
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) pos() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.position}
}

// Peek returns the next token without consuming it
func (l *Lexer) Peek() Token {
	if l.peeked == nil {
		tok := l.lex()
		l.peeked = &tok
	}
	return *l.peeked
}

// Next consumes and returns the next token
func (l *Lexer) Next() Token {
	if l.peeked != nil {
		tok := *l.peeked
		l.peeked = nil
		return tok
	}
	return l.lex()
}

// Tokenize returns every token up to and including EOF or the first ILLEGAL token.
// Code blocks are not captured; this is intended for tests and debugging.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok := l.Next()
		tokens = append(tokens, tok)
		if tok.Type == EOF || tok.Type == ILLEGAL {
			return tokens
		}
	}
}

func (l *Lexer) lex() Token {
	tok := l.lexToken()
	l.logger.Debug("token", "type", tok.Type, "text", tok.Text, "pos", tok.Pos)
	return tok
}

func (l *Lexer) lexToken() Token {
	if msg, ok := l.skipTrivia(); !ok {
		return Token{Type: ILLEGAL, Text: "/*", Value: msg, Pos: l.pos(), End: l.pos()}
	}

	start := l.pos()

	if l.atEOF() {
		return Token{Type: EOF, Pos: start, End: start}
	}

	switch {
	case l.isIdentStart(l.ch):
		return l.lexIdentifier(start)
	case l.ch == '"':
		return l.lexInterpretedString(start)
	case l.ch == '`':
		return l.lexRawString(start)
	}

	if l.ch < 128 {
		if typ := singleCharTokens[l.ch]; typ != ILLEGAL {
			text := string(l.ch)
			l.readChar()
			return Token{Type: typ, Text: text, Value: text, Pos: start, End: l.pos()}
		}
	}

	text := string(l.ch)
	l.readChar()
	return Token{Type: ILLEGAL, Text: text, Value: "unexpected character " + strconv.Quote(text), Pos: start, End: l.pos()}
}

// skipTrivia skips whitespace and comments. It reports false when a block
// comment is left unterminated.
func (l *Lexer) skipTrivia() (string, bool) {
	for !l.atEOF() {
		switch {
		case l.ch < 128 && isWhitespace[l.ch]:
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			if !l.skipBlockComment() {
				return "unterminated block comment", false
			}
			l.readChar()
		default:
			return "", true
		}
	}
	return "", true
}

func (l *Lexer) isIdentStart(ch rune) bool {
	if ch < 128 {
		return isLetter[ch]
	}
	return unicode.IsLetter(ch)
}

func (l *Lexer) isIdentPart(ch rune) bool {
	if ch < 128 {
		return isLetter[ch] || isDigit[ch]
	}
	return unicode.IsLetter(ch) || unicode.IsDigit(ch)
}

func (l *Lexer) lexIdentifier(start Position) Token {
	for !l.atEOF() && l.isIdentPart(l.ch) {
		l.readChar()
	}
	text := l.input[start.Offset:l.position]
	return Token{Type: IDENTIFIER, Text: text, Value: text, Pos: start, End: l.pos()}
}

func (l *Lexer) lexInterpretedString(start Position) Token {
	if !l.skipQuoted('"') {
		text := l.input[start.Offset:l.position]
		return Token{Type: ILLEGAL, Text: text, Value: "unterminated string literal", Pos: start, End: l.pos()}
	}
	l.readChar() // closing quote

	text := l.input[start.Offset:l.position]
	value, err := strconv.Unquote(text)
	if err != nil {
		return Token{Type: ILLEGAL, Text: text, Value: "invalid string literal: " + err.Error(), Pos: start, End: l.pos()}
	}
	return Token{Type: STRING, Text: text, Value: value, Pos: start, End: l.pos()}
}

func (l *Lexer) lexRawString(start Position) Token {
	if !l.skipRaw() {
		text := l.input[start.Offset:l.position]
		return Token{Type: ILLEGAL, Text: text, Value: "unterminated raw string literal", Pos: start, End: l.pos()}
	}
	l.readChar() // closing backtick

	text := l.input[start.Offset:l.position]
	return Token{Type: STRING, Text: text, Value: text[1 : len(text)-1], Pos: start, End: l.pos()}
}

// Fragment captures the next balanced { ... } block verbatim.
func (l *Lexer) Fragment() (Token, error) {
	var open Token
	if l.peeked != nil {
		open = *l.peeked
		l.peeked = nil
		if open.Type != LBRACE {
			return Token{}, &Error{Pos: open.Pos, Message: "expected '{' to open a code block, found " + open.Describe()}
		}
	} else {
		if msg, ok := l.skipTrivia(); !ok {
			return Token{}, &Error{Pos: l.pos(), Message: msg}
		}
		if l.atEOF() || l.ch != '{' {
			return Token{}, &Error{Pos: l.pos(), Message: "expected '{' to open a code block"}
		}
		open = Token{Type: LBRACE, Text: "{", Value: "{", Pos: l.pos()}
		l.readChar()
	}

	start := l.position
	depth := 1

	for !l.atEOF() {
		switch l.ch {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				text := l.input[start:l.position]
				l.readChar()
				tok := Token{Type: FRAGMENT, Text: text, Value: text, Pos: open.Pos, End: l.pos()}
				l.logger.Debug("fragment", "pos", tok.Pos, "bytes", len(text))
				return tok, nil
			}
		case '"', '\'':
			if !l.skipQuoted(l.ch) {
				return Token{}, &Error{Pos: l.pos(), Message: "unterminated literal in code block"}
			}
		case '`':
			if !l.skipRaw() {
				return Token{}, &Error{Pos: l.pos(), Message: "unterminated raw string in code block"}
			}
		case '/':
			switch l.peekChar() {
			case '/':
				l.skipLineComment()
				continue
			case '*':
				if !l.skipBlockComment() {
					return Token{}, &Error{Pos: l.pos(), Message: "unterminated block comment in code block"}
				}
			}
		}
		l.readChar()
	}

	return Token{}, &Error{Pos: open.Pos, Message: "unterminated code block"}
}

// skipQuoted advances to the closing quote of a "..." or '...' literal,
// leaving it as the current character. Reports false at newline or EOF.
func (l *Lexer) skipQuoted(quote rune) bool {
	l.readChar() // opening quote
	for !l.atEOF() {
		switch l.ch {
		case quote:
			return true
		case '\n':
			return false
		case '\\':
			l.readChar()
			if l.atEOF() {
				return false
			}
		}
		l.readChar()
	}
	return false
}

// skipRaw advances to the closing backtick of a raw string literal
func (l *Lexer) skipRaw() bool {
	l.readChar() // opening backtick
	for !l.atEOF() {
		if l.ch == '`' {
			return true
		}
		l.readChar()
	}
	return false
}

// skipLineComment leaves the lexer on the terminating newline (or EOF)
func (l *Lexer) skipLineComment() {
	for !l.atEOF() && l.ch != '\n' {
		l.readChar()
	}
}

// skipBlockComment leaves the lexer on the closing '/'
func (l *Lexer) skipBlockComment() bool {
	l.readChar() // '/'
	l.readChar() // '*'
	for !l.atEOF() {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar()
			return true
		}
		l.readChar()
	}
	return false
}
