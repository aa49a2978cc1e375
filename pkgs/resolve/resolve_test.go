package resolve

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/opal-lang/suitec/pkgs/ast"
)

func texts(stmts []ast.Stmt) []string {
	var out []string
	for _, s := range stmts {
		out = append(out, s.Text)
	}
	return out
}

func TestRootWrapIsIdentity(t *testing.T) {
	got := texts(Root().Wrap(ast.Code("a()", "b()")))
	if diff := cmp.Diff([]string{"a()", "b()"}, got); diff != "" {
		t.Errorf("wrap mismatch (-want +got):\n%s", diff)
	}
	if !Root().IsEmpty() {
		t.Error("root context must be empty")
	}
}

func TestWrapNilBody(t *testing.T) {
	h := Root().Extend(ast.NewSuite("s", ast.BeforeEach("x = 1")))
	if diff := cmp.Diff([]string{"x = 1"}, texts(h.Wrap(nil))); diff != "" {
		t.Errorf("wrap mismatch (-want +got):\n%s", diff)
	}
}

// TestOrderingLaw checks that a test at depth N sees
// B1..BN, body, AN..A1 for every N.
func TestOrderingLaw(t *testing.T) {
	for depth := 1; depth <= 5; depth++ {
		t.Run(fmt.Sprintf("depth %d", depth), func(t *testing.T) {
			h := Root()
			var want []string
			for i := 1; i <= depth; i++ {
				h = h.Extend(ast.NewSuite(fmt.Sprintf("s%d", i),
					ast.BeforeEach(fmt.Sprintf("b%d()", i)),
					ast.AfterEach(fmt.Sprintf("a%d()", i)),
				))
				want = append(want, fmt.Sprintf("b%d()", i))
			}
			want = append(want, "body()")
			for i := depth; i >= 1; i-- {
				want = append(want, fmt.Sprintf("a%d()", i))
			}

			if diff := cmp.Diff(want, texts(h.Wrap(ast.Code("body()")))); diff != "" {
				t.Errorf("ordering mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLevelsWithoutHooks(t *testing.T) {
	h := Root().
		Extend(ast.NewSuite("outer", ast.BeforeEach("b1()"))).
		Extend(ast.NewSuite("middle")).
		Extend(ast.NewSuite("inner", ast.AfterEach("a3()")))

	want := []string{"b1()", "body()", "a3()"}
	if diff := cmp.Diff(want, texts(h.Wrap(ast.Code("body()")))); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}
}

// TestSiblingsDoNotShareHooks checks that extending one context twice gives
// independent children, even when the parent slices have spare capacity.
func TestSiblingsDoNotShareHooks(t *testing.T) {
	parent := Root().Extend(ast.NewSuite("p", ast.BeforeEach("p()"), ast.AfterEach("pa()")))

	left := parent.Extend(ast.NewSuite("left", ast.BeforeEach("l()"), ast.AfterEach("la()")))
	right := parent.Extend(ast.NewSuite("right", ast.BeforeEach("r()"), ast.AfterEach("ra()")))

	if diff := cmp.Diff([]string{"p()", "l()"}, texts(left.Before())); diff != "" {
		t.Errorf("left before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p()", "r()"}, texts(right.Before())); diff != "" {
		t.Errorf("right before mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"la()", "pa()"}, texts(left.After())); diff != "" {
		t.Errorf("left after mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"p()"}, texts(parent.Before())); diff != "" {
		t.Errorf("parent must be unchanged (-want +got):\n%s", diff)
	}
}

func TestWrapDoesNotAlias(t *testing.T) {
	h := Root().Extend(ast.NewSuite("s", ast.BeforeEach("b()")))
	first := h.Wrap(ast.Code("one()"))
	first[0].Text = "mutated()"

	if diff := cmp.Diff([]string{"b()", "two()"}, texts(h.Wrap(ast.Code("two()")))); diff != "" {
		t.Errorf("wrap result must not alias hooks (-want +got):\n%s", diff)
	}
}
