// Package host reads suite host files.
//
// A host file carries a package clause, optional imports and any number of
// top-level `describe! NAME { ... }` declarations. Each declaration is handed
// to the compiler with NAME as the externally supplied suite name.
package host

import (
	"fmt"
	"go/token"
	"log/slog"

	"golang.org/x/mod/module"

	"github.com/opal-lang/suitec/pkgs/compiler"
	"github.com/opal-lang/suitec/pkgs/lexer"
	"github.com/opal-lang/suitec/pkgs/parser"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// Extension is the file extension of host files
const Extension = ".suite"

// Option configures host parsing
type Option func(*hostParser)

// WithLogger sets the logger passed down to the compiler
func WithLogger(logger *slog.Logger) Option {
	return func(p *hostParser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

type hostParser struct {
	path   string
	src    string
	lex    *lexer.Lexer
	logger *slog.Logger
}

// Parse reads the host file at path with contents src
func Parse(path string, src []byte, opts ...Option) (*unit.File, error) {
	p := &hostParser{
		path:   path,
		src:    string(src),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lex = lexer.New(p.src, lexer.WithLogger(p.logger))

	return p.file()
}

func (p *hostParser) file() (*unit.File, error) {
	f := &unit.File{Source: p.path}

	pkg, err := p.packageClause()
	if err != nil {
		return nil, err
	}
	f.Package = pkg

	for p.lex.Peek().Is("import") {
		p.lex.Next()
		imports, err := p.importDecl()
		if err != nil {
			return nil, err
		}
		f.Imports = append(f.Imports, imports...)
	}

	declared := make(map[string]lexer.Position)
	for {
		tok := p.lex.Next()
		switch {
		case tok.Type == lexer.EOF:
			p.logger.Debug("parsed host file", "path", p.path, "suites", len(f.Suites), "imports", len(f.Imports))
			return f, nil
		case tok.Type == lexer.ILLEGAL:
			return nil, p.errorf(tok, "%s", tok.Value)
		case !tok.Is(parser.KeywordDescribe):
			return nil, p.errorf(tok, "expected a top-level describe! declaration, found %s", tok.Describe())
		}

		if _, err := p.expect(lexer.BANG, "expected '!' after describe"); err != nil {
			return nil, err
		}
		name, err := p.expect(lexer.IDENTIFIER, "expected a suite name after describe!")
		if err != nil {
			return nil, err
		}
		if first, ok := declared[name.Text]; ok {
			return nil, p.errorf(name, "suite `%s` is already declared at %s", name.Text, first)
		}
		declared[name.Text] = name.Pos

		ns, err := compiler.Compile(name.Text, p.lex,
			compiler.WithLogger(p.logger),
			compiler.WithSource(p.src),
			compiler.WithFilename(p.path),
		)
		if err != nil {
			return nil, err
		}
		f.Suites = append(f.Suites, ns)
	}
}

// packageClause parses `package NAME`
func (p *hostParser) packageClause() (string, error) {
	tok := p.lex.Next()
	if tok.Type == lexer.ILLEGAL {
		return "", p.errorf(tok, "%s", tok.Value)
	}
	if !tok.Is("package") {
		return "", p.errorf(tok, "expected package clause, found %s", tok.Describe())
	}
	name, err := p.expect(lexer.IDENTIFIER, "expected a package name")
	if err != nil {
		return "", err
	}
	if name.Text == "_" || !token.IsIdentifier(name.Text) {
		return "", p.errorf(name, "invalid package name `%s`", name.Text)
	}
	return name.Text, nil
}

// importDecl parses the rest of `import spec` or `import ( spec... )`
func (p *hostParser) importDecl() ([]unit.Import, error) {
	if p.lex.Peek().Type != lexer.LPAREN {
		imp, err := p.importSpec()
		if err != nil {
			return nil, err
		}
		return []unit.Import{imp}, nil
	}

	p.lex.Next()
	var imports []unit.Import
	for {
		next := p.lex.Peek()
		switch next.Type {
		case lexer.RPAREN:
			p.lex.Next()
			return imports, nil
		case lexer.EOF:
			return nil, p.errorf(next, "missing ')' to close import declaration")
		}
		imp, err := p.importSpec()
		if err != nil {
			return nil, err
		}
		imports = append(imports, imp)
	}
}

// importSpec parses `[NAME | . | _] "path"`
func (p *hostParser) importSpec() (unit.Import, error) {
	var imp unit.Import

	switch next := p.lex.Peek(); next.Type {
	case lexer.IDENTIFIER:
		imp.Name = p.lex.Next().Text
	case lexer.DOT:
		imp.Name = p.lex.Next().Text
	}

	path, err := p.expect(lexer.STRING, "expected an import path string")
	if err != nil {
		return imp, err
	}
	if err := module.CheckImportPath(path.Value); err != nil {
		return imp, p.errorf(path, "invalid import path %q: %v", path.Value, err)
	}
	imp.Path = path.Value
	return imp, nil
}

func (p *hostParser) expect(typ lexer.TokenType, message string) (lexer.Token, error) {
	tok := p.lex.Next()
	if tok.Type == typ {
		return tok, nil
	}
	if tok.Type == lexer.ILLEGAL {
		return tok, p.errorf(tok, "%s", tok.Value)
	}
	return tok, p.errorf(tok, "%s, found %s", message, tok.Describe())
}

// errorf builds a located syntax error with a snippet of the host file
func (p *hostParser) errorf(tok lexer.Token, format string, args ...any) error {
	return &parser.ParseError{
		Type:    parser.ErrorSyntax,
		Message: fmt.Sprintf(format, args...),
		Pos:     tok.Pos,
		Token:   tok,
		File:    p.path,
		Input:   p.src,
	}
}
