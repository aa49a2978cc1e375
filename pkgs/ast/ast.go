// Package ast defines the suite tree produced by the parser.
//
// The tree is built once per parse and is never mutated afterwards; hook
// inheritance is computed by the resolver without touching it.
package ast

import (
	"github.com/opal-lang/suitec/pkgs/lexer"
)

// Suite is a named group of hooks, tests, benchmarks and nested suites
type Suite struct {
	Name string
	Pos  lexer.Position

	BeforeEach *Fragment // applied before every test in this suite and below
	AfterEach  *Fragment // applied after every test in this suite and below
	Before     *Fragment // runs once when the suite's namespace starts
	After      *Fragment // runs once when the suite's namespace finishes

	Blocks []SubBlock
}

// SubBlock is one of *Test, *Bench or *Suite. The set is closed.
type SubBlock interface {
	subBlock()
	Position() lexer.Position
}

func (*Test) subBlock()  {}
func (*Bench) subBlock() {}
func (*Suite) subBlock() {}

func (t *Test) Position() lexer.Position  { return t.Pos }
func (b *Bench) Position() lexer.Position { return b.Pos }
func (s *Suite) Position() lexer.Position { return s.Pos }

// Test is a single test case: `it`, `when`, `failing` or `ignore`
type Test struct {
	Description string
	Body        *Fragment
	Config      TestConfig
	Pos         lexer.Position
}

// TestConfig carries the execution markers of a test.
// FailingMessage is only ever set together with Failing.
type TestConfig struct {
	Failing        bool
	FailingMessage *string
	Ignored        bool
}

// PlainTest is the config of an `it`/`when` block
func PlainTest() TestConfig {
	return TestConfig{}
}

// FailingTest is the config of a `failing` block; msg may be nil
func FailingTest(msg *string) TestConfig {
	return TestConfig{Failing: true, FailingMessage: msg}
}

// IgnoredTest is the config of an `ignore` block
func IgnoredTest() TestConfig {
	return TestConfig{Ignored: true}
}

// Bench is a benchmark with the name of its harness parameter
type Bench struct {
	Description string
	Param       string
	Body        *Fragment
	Pos         lexer.Position
}

// Walk calls fn for every suite in the tree, depth first, parents before children
func Walk(s *Suite, fn func(*Suite)) {
	fn(s)
	for _, block := range s.Blocks {
		if child, ok := block.(*Suite); ok {
			Walk(child, fn)
		}
	}
}
