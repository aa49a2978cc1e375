package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// tokenExpectation represents expected token with type and value
type tokenExpectation struct {
	Type  TokenType
	Value string
}

// assertTokens compares actual tokens with expected, providing clear error messages
func assertTokens(t *testing.T, input string, expected []tokenExpectation) {
	t.Helper()

	tokens := New(input).Tokenize()

	actual := make([]tokenExpectation, len(tokens))
	for i, tok := range tokens {
		actual[i] = tokenExpectation{Type: tok.Type, Value: tok.Value}
	}

	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Errorf("token mismatch for %q (-want +got):\n%s", input, diff)
		return
	}

	for i, tok := range tokens {
		if !tok.Pos.IsValid() || tok.Pos.Column <= 0 {
			t.Errorf("token[%d] %s has invalid position: %s", i, tok.Type, tok.Pos)
		}
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []tokenExpectation
	}{
		{
			name:  "empty input",
			input: "",
			expected: []tokenExpectation{
				{EOF, ""},
			},
		},
		{
			name:  "nested describe head",
			input: "describe! inner {",
			expected: []tokenExpectation{
				{IDENTIFIER, "describe"},
				{BANG, "!"},
				{IDENTIFIER, "inner"},
				{LBRACE, "{"},
				{EOF, ""},
			},
		},
		{
			name:  "failing with message",
			input: `failing("boom") "should explode"`,
			expected: []tokenExpectation{
				{IDENTIFIER, "failing"},
				{LPAREN, "("},
				{STRING, "boom"},
				{RPAREN, ")"},
				{STRING, "should explode"},
				{EOF, ""},
			},
		},
		{
			name:  "escaped and raw strings",
			input: "\"tab\\there\" `raw \\n`",
			expected: []tokenExpectation{
				{STRING, "tab\there"},
				{STRING, `raw \n`},
				{EOF, ""},
			},
		},
		{
			name:  "comments are skipped",
			input: "// leading\nit /* inline */ \"x\"",
			expected: []tokenExpectation{
				{IDENTIFIER, "it"},
				{STRING, "x"},
				{EOF, ""},
			},
		},
		{
			name:  "unicode identifier",
			input: "describe! größe",
			expected: []tokenExpectation{
				{IDENTIFIER, "describe"},
				{BANG, "!"},
				{IDENTIFIER, "größe"},
				{EOF, ""},
			},
		},
		{
			name:  "dot import",
			input: `import . "strings"`,
			expected: []tokenExpectation{
				{IDENTIFIER, "import"},
				{DOT, "."},
				{STRING, "strings"},
				{EOF, ""},
			},
		},
		{
			name:  "unterminated string",
			input: "it \"never closed\n",
			expected: []tokenExpectation{
				{IDENTIFIER, "it"},
				{ILLEGAL, "unterminated string literal"},
			},
		},
		{
			name:  "unexpected character",
			input: "it ;",
			expected: []tokenExpectation{
				{IDENTIFIER, "it"},
				{ILLEGAL, `unexpected character ";"`},
			},
		},
		{
			name:  "unterminated block comment",
			input: "it /* oops",
			expected: []tokenExpectation{
				{IDENTIFIER, "it"},
				{ILLEGAL, "unterminated block comment"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, tt.input, tt.expected)
		})
	}
}

func TestPositions(t *testing.T) {
	l := New("it\n  \"desc\" {")

	want := []Position{
		{Line: 1, Column: 1, Offset: 0},
		{Line: 2, Column: 3, Offset: 5},
		{Line: 2, Column: 10, Offset: 12},
	}

	var got []Position
	for i := 0; i < len(want); i++ {
		got = append(got, l.Next().Pos)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("position mismatch (-want +got):\n%s", diff)
	}
}

func TestFragment(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		rest  TokenType
	}{
		{
			name:  "simple block",
			input: "{ x := 1 } it",
			want:  " x := 1 ",
			rest:  IDENTIFIER,
		},
		{
			name:  "nested braces",
			input: "{ if ok { return } } }",
			want:  " if ok { return } ",
			rest:  RBRACE,
		},
		{
			name:  "braces inside strings and runes",
			input: "{ s := \"}\"; r := '{'; q := `}}` }",
			want:  " s := \"}\"; r := '{'; q := `}}` ",
			rest:  EOF,
		},
		{
			name:  "braces inside comments",
			input: "{ // }\n x++ /* { */ }",
			want:  " // }\n x++ /* { */ ",
			rest:  EOF,
		},
		{
			name:  "escaped quote inside string",
			input: "{ s := \"a\\\"}\" }",
			want:  " s := \"a\\\"}\" ",
			rest:  EOF,
		},
		{
			name:  "empty block",
			input: "{}",
			want:  "",
			rest:  EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			tok, err := l.Fragment()
			if err != nil {
				t.Fatalf("Fragment() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, tok.Text); diff != "" {
				t.Errorf("fragment text mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(FRAGMENT, tok.Type); diff != "" {
				t.Errorf("fragment type mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.rest, l.Next().Type); diff != "" {
				t.Errorf("token after fragment mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFragmentAfterPeek(t *testing.T) {
	l := New(`"desc" { body() }`)

	if got := l.Next(); got.Type != STRING {
		t.Fatalf("expected STRING, got %s", got.Type)
	}
	if got := l.Peek(); got.Type != LBRACE {
		t.Fatalf("expected peeked LBRACE, got %s", got.Type)
	}

	tok, err := l.Fragment()
	if err != nil {
		t.Fatalf("Fragment() error: %v", err)
	}
	if diff := cmp.Diff(" body() ", tok.Text); diff != "" {
		t.Errorf("fragment text mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Position{Line: 1, Column: 8, Offset: 7}, tok.Pos); diff != "" {
		t.Errorf("fragment position mismatch (-want +got):\n%s", diff)
	}
}

func TestFragmentErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"missing open brace", "x := 1", "expected '{' to open a code block"},
		{"unterminated block", "{ x := 1", "unterminated code block"},
		{"unterminated string", "{ s := \"oops\n }", "unterminated literal in code block"},
		{"unterminated raw string", "{ s := `oops }", "unterminated raw string in code block"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.input).Fragment()
			if err == nil {
				t.Fatal("expected error")
			}
			lexErr, ok := err.(*Error)
			if !ok {
				t.Fatalf("expected *Error, got %T", err)
			}
			if diff := cmp.Diff(tt.message, lexErr.Message); diff != "" {
				t.Errorf("message mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFragmentAfterPeekedNonBrace(t *testing.T) {
	l := New(`"desc" body`)
	l.Next()
	l.Peek()

	if _, err := l.Fragment(); err == nil {
		t.Fatal("expected error for non-brace peeked token")
	}
}
