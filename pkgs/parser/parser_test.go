package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/lexer"
)

// ignorePositions compares trees by structure and statement text only
var ignorePositions = cmp.Options{
	cmpopts.IgnoreFields(ast.Suite{}, "Pos"),
	cmpopts.IgnoreFields(ast.Test{}, "Pos"),
	cmpopts.IgnoreFields(ast.Bench{}, "Pos"),
	cmpopts.IgnoreFields(ast.Fragment{}, "Pos", "Source"),
	cmpopts.IgnoreFields(ast.Stmt{}, "Pos"),
}

func assertSuite(t *testing.T, input string, want *ast.Suite) {
	t.Helper()

	got, err := ParseString(want.Name, input)
	if err != nil {
		t.Fatalf("ParseString() error:\n%v", err)
	}
	if diff := cmp.Diff(want, got, ignorePositions); diff != "" {
		t.Errorf("suite mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSuites(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *ast.Suite
	}{
		{
			name:  "empty suite",
			input: "{}",
			want:  ast.NewSuite("empty"),
		},
		{
			name: "nested hooks",
			input: `{
	before_each { x = 1 }
	describe! inner {
		before_each { x += 1 }
		it "t" { assert x == 2 }
		after_each { x += 1 }
	}
	after_each { assert_final() }
}`,
			want: ast.NewSuite("top",
				ast.BeforeEach("x = 1"),
				ast.NewSuite("inner",
					ast.BeforeEach("x += 1"),
					ast.It("t", "assert x == 2"),
					ast.AfterEach("x += 1"),
				),
				ast.AfterEach("assert_final()"),
			),
		},
		{
			name: "failing with and without message",
			input: `{
	it "should add" { check(1 + 1) }
	failing("boom") "should explode" { panic("boom") }
	failing "should fail" { t.Fatal("no") }
}`,
			want: ast.NewSuite("calc",
				ast.It("should add", "check(1 + 1)"),
				ast.FailingWith("boom", "should explode", `panic("boom")`),
				ast.Failing("should fail", `t.Fatal("no")`),
			),
		},
		{
			name: "ignore and bench",
			input: `{
	ignore "slow" { sleep() }
	bench "double" (b) {
		for i := 0; i < b.N; i++ {
			double(i)
		}
	}
}`,
			want: ast.NewSuite("perf",
				ast.Ignore("slow", "sleep()"),
				ast.BenchOf("double", "b", "for i := 0; i < b.N; i++ {\n\t\t\tdouble(i)\n\t\t}"),
			),
		},
		{
			name: "once hooks",
			input: `{
	before { db := open() }
	after { db.Close() }
	it "queries" { db.Query() }
}`,
			want: ast.NewSuite("db",
				ast.Before("db := open()"),
				ast.After("db.Close()"),
				ast.It("queries", "db.Query()"),
			),
		},
		{
			name:  "raw string description",
			input: "{ it `has \"quotes\"` { ok() } }",
			want:  ast.NewSuite("raw", ast.It(`has "quotes"`, "ok()")),
		},
		{
			name:  "empty code blocks",
			input: `{ before_each {} it "noop" {} }`,
			want:  ast.NewSuite("noop", ast.BeforeEach(), ast.It("noop")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertSuite(t, tt.input, tt.want)
		})
	}
}

func TestAliasEquivalence(t *testing.T) {
	canonical, err := ParseString("s", `{
	before_each { a() }
	after_each { z() }
	it "works" { b() }
}`)
	if err != nil {
		t.Fatalf("canonical parse error: %v", err)
	}

	aliased, err := ParseString("s", `{
	given { a() }
	then { z() }
	when "works" { b() }
}`)
	if err != nil {
		t.Fatalf("aliased parse error: %v", err)
	}

	if diff := cmp.Diff(canonical, aliased, ignorePositions); diff != "" {
		t.Errorf("aliases produced different trees (-canonical +aliased):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    error
		message string
	}{
		{"duplicate before_each", `{ before_each { a() } before_each { b() } }`, ErrDuplicateHook, "only one before_each block"},
		{"duplicate via alias", `{ before_each { a() } given { b() } }`, ErrDuplicateHook, "`given` repeats"},
		{"duplicate after_each via alias", `{ then { a() } after_each { b() } }`, ErrDuplicateHook, "only one after_each block"},
		{"duplicate once hook", `{ after { a() } after { b() } }`, ErrDuplicateHook, "only one after block"},
		{"duplicate in nested suite", `{ describe! n { given {} given {} } }`, ErrDuplicateHook, ""},
		{"unknown keyword", `{ itt "x" { } }`, ErrUnknownBlockKeyword, "found `itt`"},
		{"bench without signature", `{ bench "x" { } }`, ErrMalformedBenchSignature, "expected `(name)`"},
		{"bench with empty signature", `{ bench "x" () { } }`, ErrMalformedBenchSignature, ""},
		{"bench with unclosed signature", `{ bench "x" (b { } }`, ErrMalformedBenchSignature, ""},
		{"missing closing brace", `{ it "x" { } `, ErrUnterminatedSuite, "missing '}'"},
		{"missing nested closing brace", `{ describe! a { it "x" {} }`, ErrUnterminatedSuite, "describe! block `top`"},
		{"mismatched paren", `{ it "x" {} ) }`, ErrUnterminatedSuite, "mismatched ')'"},
		{"it without description", `{ it { } }`, ErrMissingDescription, "`it` must be followed by a description string"},
		{"empty description", `{ it "" { } }`, ErrMissingDescription, "must not be empty"},
		{"bench without description", `{ bench (b) { } }`, ErrMissingDescription, ""},
		{"ignore without description", `{ ignore { } }`, ErrMissingDescription, ""},
		{"describe without bang", `{ describe inner { } }`, ErrSyntax, "expected '!' after describe"},
		{"describe without name", `{ describe! { } }`, ErrSyntax, "expected a name after describe!"},
		{"test without code block", `{ it "x" }`, ErrSyntax, "expected '{' to open the code block of `it`"},
		{"unterminated code block", `{ it "x" { a(`, ErrSyntax, "unterminated code block"},
		{"unterminated string", `{ it "x }`, ErrSyntax, "unterminated string literal"},
		{"failing without message string", `{ failing() "x" {} }`, ErrSyntax, "failure message string"},
		{"failing with unclosed message", `{ failing("m" "x" {} }`, ErrSyntax, "expected ')'"},
		{"missing top-level brace", `it "x" {}`, ErrSyntax, "expected '{' to open describe! block `top`"},
		{"string as block head", `{ "x" {} }`, ErrSyntax, "expected a block keyword"},
		{"trailing input", `{} }`, ErrSyntax, "unexpected '}' after suite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString("top", tt.input)
			if err == nil {
				t.Fatalf("expected error, got suite %+v", got)
			}
			if got != nil {
				t.Errorf("expected nil suite on error, got %+v", got)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got:\n%v", tt.want, err)
			}

			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if !strings.Contains(parseErr.Message, tt.message) {
				t.Errorf("message %q does not contain %q", parseErr.Message, tt.message)
			}
		})
	}
}

func TestErrorSnippet(t *testing.T) {
	src := "{\n    itt \"adds\" { }\n}"
	_, err := ParseString("calc", src, WithFilename("calc.suite"))
	if err == nil {
		t.Fatal("expected error")
	}

	got := err.Error()
	for _, want := range []string{
		"unknown block keyword: ",
		"  --> calc.suite:2:5\n",
		"   |\n",
		" 2 |     itt \"adds\" { }\n",
		"   |     ^",
		"= help: did you mean `it`?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("error output missing %q:\n%s", want, got)
		}
	}
}

func TestErrorWithoutSource(t *testing.T) {
	_, err := Parse("top", lexer.New(`{ it {} }`))
	if err == nil {
		t.Fatal("expected error")
	}
	if diff := cmp.Diff("missing description: `it` must be followed by a description string, found '{' at 1:6", err.Error()); diff != "" {
		t.Errorf("error mismatch (-want +got):\n%s", diff)
	}
}

func TestErrorRecordsSuite(t *testing.T) {
	_, err := ParseString("top", `{ describe! inner { bench "b" {} } }`)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if diff := cmp.Diff("inner", parseErr.Suite); diff != "" {
		t.Errorf("suite mismatch (-want +got):\n%s", diff)
	}
}

func TestSuggestKeyword(t *testing.T) {
	tests := []struct {
		word string
		want string
	}{
		{"befor_each", "before_each"},
		{"desribe", "describe"},
		{"benc", "bench"},
		{"itt", "it"},
		{"xyzzy", ""},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, suggestKeyword(tt.word)); diff != "" {
				t.Errorf("suggestion mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParsePositions(t *testing.T) {
	s, err := ParseString("top", "{\n  it \"a\" { x() }\n  describe! n {\n    bench \"b\" (b) { y() }\n  }\n}")
	if err != nil {
		t.Fatalf("ParseString() error: %v", err)
	}

	test := s.Blocks[0].(*ast.Test)
	if diff := cmp.Diff(lexer.Position{Line: 2, Column: 3, Offset: 4}, test.Pos); diff != "" {
		t.Errorf("test position mismatch (-want +got):\n%s", diff)
	}

	nested := s.Blocks[1].(*ast.Suite)
	if diff := cmp.Diff(3, nested.Pos.Line); diff != "" {
		t.Errorf("nested suite line mismatch (-want +got):\n%s", diff)
	}

	bench := nested.Blocks[0].(*ast.Bench)
	if diff := cmp.Diff(4, bench.Body.Stmts[0].Pos.Line); diff != "" {
		t.Errorf("bench statement line mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLeavesReaderAfterSuite(t *testing.T) {
	l := lexer.New(`{ it "a" {} } describe! next`)

	if _, err := Parse("first", l); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if tok := l.Next(); !tok.Is("describe") {
		t.Errorf("expected reader positioned at `describe`, got %s", tok.Describe())
	}
}

func TestDebugEvents(t *testing.T) {
	p := New(lexer.New(`{ it "a" {} describe! n {} }`), WithDebugPaths())
	if _, err := p.Parse("top"); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	var got []string
	for _, e := range p.DebugEvents() {
		got = append(got, e.Event+":"+e.Context)
	}

	want := []string{
		"enter_suite:top",
		"block:it",
		"block:describe",
		"enter_suite:n",
		"exit_suite:n",
		"exit_suite:top",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("debug events mismatch (-want +got):\n%s", diff)
	}
}
