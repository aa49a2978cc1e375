package parser

import (
	"log/slog"
	"time"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// DebugLevel controls debug tracing (development only)
type DebugLevel int

const (
	DebugOff   DebugLevel = iota // No debug info (default)
	DebugPaths                   // Block entry/exit tracing
)

// ParserConfig holds parser configuration
type ParserConfig struct {
	debug    DebugLevel
	logger   *slog.Logger
	source   string
	filename string
}

// WithDebugPaths enables debug path tracing (development only)
func WithDebugPaths() ParserOpt {
	return func(c *ParserConfig) {
		c.debug = DebugPaths
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSource provides the full source text so errors can show a snippet
func WithSource(src string) ParserOpt {
	return func(c *ParserConfig) {
		c.source = src
	}
}

// WithFilename sets the file name shown in error locations
func WithFilename(name string) ParserOpt {
	return func(c *ParserConfig) {
		c.filename = name
	}
}

// DebugEvent holds debug tracing information (development only)
type DebugEvent struct {
	Timestamp time.Time
	Event     string // "enter_suite", "exit_suite", "block"
	Line      int    // Line of the token being parsed
	Context   string // Suite name or block keyword
}
