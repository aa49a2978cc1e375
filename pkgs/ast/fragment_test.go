package ast

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/suitec/pkgs/lexer"
)

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty",
			input: "  \n\t ",
			want:  nil,
		},
		{
			name:  "single statement",
			input: " x = 1 ",
			want:  []string{"x = 1"},
		},
		{
			name:  "newline separated",
			input: "\n\tx := 1\n\tx += 1\n",
			want:  []string{"x := 1", "x += 1"},
		},
		{
			name:  "explicit semicolons",
			input: "a(); b(); c()",
			want:  []string{"a()", "b()", "c()"},
		},
		{
			name:  "multi-line call stays together",
			input: "f(\n\t1,\n\t2,\n)\ng()",
			want:  []string{"f(\n\t1,\n\t2,\n)", "g()"},
		},
		{
			name:  "for header semicolons",
			input: "for i := 0; i < 3; i++ {\n\tsum += i\n}\ndone()",
			want:  []string{"for i := 0; i < 3; i++ {\n\tsum += i\n}", "done()"},
		},
		{
			name:  "if with init and else if",
			input: "if v, ok := m[k]; ok {\n\tuse(v)\n} else if w := 2; w > 1 {\n}\nnext()",
			want:  []string{"if v, ok := m[k]; ok {\n\tuse(v)\n} else if w := 2; w > 1 {\n}", "next()"},
		},
		{
			name:  "composite literal in if header",
			input: "if v := map[string]int{\"a\": 1}[\"a\"]; v > 0 {\n\tuse(v)\n}\nafter()",
			want:  []string{"if v := map[string]int{\"a\": 1}[\"a\"]; v > 0 {\n\tuse(v)\n}", "after()"},
		},
		{
			name:  "composite literal in for header with empty condition",
			input: "for i := []int{0}[0]; ; i++ {\n\tif i > 2 {\n\t\tbreak\n\t}\n}\ndone()",
			want:  []string{"for i := []int{0}[0]; ; i++ {\n\tif i > 2 {\n\t\tbreak\n\t}\n}", "done()"},
		},
		{
			name:  "slice literal after if header semicolon",
			input: "if v := []int{1}; len(v) > 0 { use(v) }\nnext()",
			want:  []string{"if v := []int{1}; len(v) > 0 { use(v) }", "next()"},
		},
		{
			name:  "one-line compound statement keeps its trailing semicolon",
			input: "for range n { tick() }; stop()\nnext()",
			want:  []string{"for range n { tick() }; stop()", "next()"},
		},
		{
			name:  "func literal body",
			input: "defer func() {\n\tcleanup()\n}()",
			want:  []string{"defer func() {\n\tcleanup()\n}()"},
		},
		{
			name:  "trailing comment dropped",
			input: "x := 1 // set up\ny := 2",
			want:  []string{"x := 1", "y := 2"},
		},
		{
			name:  "comment only",
			input: "// nothing to do",
			want:  nil,
		},
		{
			name:  "untokenisable source kept whole",
			input: "  assert x == 2 ` ",
			want:  []string{"assert x == 2 `"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := SplitStatements(tt.input, lexer.Position{Line: 1, Column: 1})

			var got []string
			for _, s := range stmts {
				got = append(got, s.Text)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("statements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSplitStatementsPositions(t *testing.T) {
	base := lexer.Position{Line: 3, Column: 15, Offset: 40}
	stmts := SplitStatements(" a()\n  b()", base)

	want := []lexer.Position{
		{Line: 3, Column: 16, Offset: 41},
		{Line: 4, Column: 3, Offset: 47},
	}

	var got []lexer.Position
	for _, s := range stmts {
		got = append(got, s.Pos)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions mismatch (-want +got):\n%s", diff)
	}
}

func TestNewFragment(t *testing.T) {
	tok := lexer.Token{
		Type: lexer.FRAGMENT,
		Text: " x = 1; y = 2 ",
		Pos:  lexer.Position{Line: 2, Column: 5, Offset: 10},
	}

	f := NewFragment(tok)

	if diff := cmp.Diff([]string{"x = 1", "y = 2"}, f.StmtTexts()); diff != "" {
		t.Errorf("statements mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(lexer.Position{Line: 2, Column: 7, Offset: 12}, f.Stmts[0].Pos); diff != "" {
		t.Errorf("first statement position mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSuiteBuilder(t *testing.T) {
	inner := NewSuite("inner", It("t", "check()"))
	s := NewSuite("top",
		BeforeEach("x = 1"),
		AfterEach("done()"),
		Before("open()"),
		After("close()"),
		It("a"),
		inner,
		BenchOf("b", "b", "b.N"),
	)

	if diff := cmp.Diff([]string{"x = 1"}, s.BeforeEach.StmtTexts()); diff != "" {
		t.Errorf("before_each mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(3, len(s.Blocks)); diff != "" {
		t.Errorf("block count mismatch (-want +got):\n%s", diff)
	}

	var names []string
	Walk(s, func(s *Suite) { names = append(names, s.Name) })
	if diff := cmp.Diff([]string{"top", "inner"}, names); diff != "" {
		t.Errorf("walk order mismatch (-want +got):\n%s", diff)
	}
}
