// Package compiler is the invocation entry point: it compiles one top-level
// suite, whose name is supplied by the caller, into a namespace tree.
package compiler

import (
	"log/slog"

	"github.com/opal-lang/suitec/pkgs/generator"
	"github.com/opal-lang/suitec/pkgs/lexer"
	"github.com/opal-lang/suitec/pkgs/parser"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// Option configures a compilation
type Option func(*config)

type config struct {
	logger   *slog.Logger
	source   string
	filename string
}

// WithLogger sets the logger for parser tracing and name warnings
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSource provides the full source text for error snippets
func WithSource(src string) Option {
	return func(c *config) {
		c.source = src
	}
}

// WithFilename sets the file name shown in error locations
func WithFilename(name string) Option {
	return func(c *config) {
		c.filename = name
	}
}

func newConfig(opts []Option) config {
	c := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c config) parserOpts() []parser.ParserOpt {
	return []parser.ParserOpt{
		parser.WithLogger(c.logger),
		parser.WithSource(c.source),
		parser.WithFilename(c.filename),
	}
}

// Compile parses the suite body that follows in r and generates its
// namespace. The first error aborts the compilation; nothing is returned
// alongside it.
func Compile(name string, r lexer.Reader, opts ...Option) (*unit.Namespace, error) {
	c := newConfig(opts)

	s, err := parser.Parse(name, r, c.parserOpts()...)
	if err != nil {
		return nil, err
	}
	return generator.Generate(s, generator.WithLogger(c.logger)), nil
}

// CompileString compiles src, which must hold exactly one suite body
func CompileString(name, src string, opts ...Option) (*unit.Namespace, error) {
	c := newConfig(append([]Option{WithSource(src)}, opts...))

	s, err := parser.ParseString(name, src, c.parserOpts()...)
	if err != nil {
		return nil, err
	}
	return generator.Generate(s, generator.WithLogger(c.logger)), nil
}
