// Package resolve computes the hook context every test inherits.
//
// Hooks is an immutable value. Each descent into a nested suite derives a new
// value with Extend; the parent value is never modified, so siblings never
// see each other's hooks.
package resolve

import (
	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/invariant"
)

// Hooks is the accumulated before/after context at one point of the tree
type Hooks struct {
	before []ast.Stmt
	after  []ast.Stmt
}

// Root returns the empty context of a top-level suite's parent
func Root() Hooks {
	return Hooks{}
}

// Extend returns the context for the body of s: the parent's before
// statements followed by s's before_each, and s's after_each followed by the
// parent's after statements.
func (h Hooks) Extend(s *ast.Suite) Hooks {
	own := stmts(s.BeforeEach)
	before := make([]ast.Stmt, 0, len(h.before)+len(own))
	before = append(before, h.before...)
	before = append(before, own...)

	own = stmts(s.AfterEach)
	after := make([]ast.Stmt, 0, len(own)+len(h.after))
	after = append(after, own...)
	after = append(after, h.after...)

	return Hooks{before: before, after: after}
}

// Wrap returns before ++ body ++ after as a new slice
func (h Hooks) Wrap(body *ast.Fragment) []ast.Stmt {
	inner := stmts(body)
	out := make([]ast.Stmt, 0, len(h.before)+len(inner)+len(h.after))
	out = append(out, h.before...)
	out = append(out, inner...)
	out = append(out, h.after...)

	invariant.Postcondition(len(out) == len(h.before)+len(inner)+len(h.after),
		"wrapped body has %d statements, want %d", len(out), len(h.before)+len(inner)+len(h.after))
	return out
}

// Before returns a copy of the accumulated before statements
func (h Hooks) Before() []ast.Stmt {
	return append([]ast.Stmt(nil), h.before...)
}

// After returns a copy of the accumulated after statements
func (h Hooks) After() []ast.Stmt {
	return append([]ast.Stmt(nil), h.after...)
}

// IsEmpty reports whether no hook applies
func (h Hooks) IsEmpty() bool {
	return len(h.before) == 0 && len(h.after) == 0
}

func stmts(f *ast.Fragment) []ast.Stmt {
	if f == nil {
		return nil
	}
	return f.Stmts
}
