// Package unit is the backend-agnostic output of code generation: a tree of
// namespaces holding named, marked, runnable units.
package unit

import (
	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/lexer"
)

// Kind distinguishes tests from benchmarks
type Kind int

const (
	KindTest Kind = iota
	KindBench
)

func (k Kind) String() string {
	switch k {
	case KindTest:
		return "test"
	case KindBench:
		return "bench"
	default:
		return "unknown"
	}
}

// Unit is one generated test or benchmark
type Unit struct {
	Kind        Kind
	Name        string // sanitized description
	Description string // description as written
	Param       string // benchmark harness parameter; empty for tests
	Body        []ast.Stmt
	Markers     []Marker
	Pos         lexer.Position
}

// Has reports whether the unit carries a marker of the given kind
func (u *Unit) Has(kind MarkerKind) bool {
	for _, m := range u.Markers {
		if m.Kind == kind {
			return true
		}
	}
	return false
}

// ExpectedFailure returns the required failure message and whether the unit
// is expected to fail at all. An empty message accepts any failure.
func (u *Unit) ExpectedFailure() (string, bool) {
	for _, m := range u.Markers {
		if m.Kind == MarkerExpectFailure {
			return m.Message, true
		}
	}
	return "", false
}

// Member is a namespace entry: *Unit or *Namespace. The set is closed.
type Member interface {
	member()
}

func (*Unit) member()      {}
func (*Namespace) member() {}

// Namespace mirrors one suite's scope
type Namespace struct {
	Name     string
	Path     []string   // enclosing namespace names, outermost first
	Setup    []ast.Stmt // runs once before the namespace's members
	Teardown []ast.Stmt // runs once after the namespace's members
	Members  []Member   // units and child namespaces in declaration order
}

// QualifiedPath returns Path followed by the namespace's own name
func (n *Namespace) QualifiedPath() []string {
	path := make([]string, 0, len(n.Path)+1)
	path = append(path, n.Path...)
	return append(path, n.Name)
}

// Units returns the namespace's direct units in order
func (n *Namespace) Units() []*Unit {
	var units []*Unit
	for _, m := range n.Members {
		if u, ok := m.(*Unit); ok {
			units = append(units, u)
		}
	}
	return units
}

// Children returns the namespace's direct child namespaces in order
func (n *Namespace) Children() []*Namespace {
	var children []*Namespace
	for _, m := range n.Members {
		if c, ok := m.(*Namespace); ok {
			children = append(children, c)
		}
	}
	return children
}

// Walk calls fn for every unit in the tree in emission order, with the
// qualified path of the namespace that holds it.
func (n *Namespace) Walk(fn func(path []string, u *Unit)) {
	path := n.QualifiedPath()
	for _, m := range n.Members {
		switch v := m.(type) {
		case *Unit:
			fn(path, v)
		case *Namespace:
			v.Walk(fn)
		}
	}
}

// Contains reports whether any unit of the given kind exists in the tree
func (n *Namespace) Contains(kind Kind) bool {
	found := false
	n.Walk(func(_ []string, u *Unit) {
		if u.Kind == kind {
			found = true
		}
	})
	return found
}

// Filter returns a copy of the tree holding only units of the given kind.
// Namespaces left without such units are dropped; nil is returned when none
// remain. Setup and teardown are kept for tests only, since once-hooks never
// apply to benchmarks.
func (n *Namespace) Filter(kind Kind) *Namespace {
	if !n.Contains(kind) {
		return nil
	}

	out := &Namespace{Name: n.Name, Path: n.Path}
	if kind == KindTest {
		out.Setup = n.Setup
		out.Teardown = n.Teardown
	}

	for _, m := range n.Members {
		switch v := m.(type) {
		case *Unit:
			if v.Kind == kind {
				out.Members = append(out.Members, v)
			}
		case *Namespace:
			if child := v.Filter(kind); child != nil {
				out.Members = append(out.Members, child)
			}
		}
	}
	return out
}

// Import is one import of the generated file
type Import struct {
	Name string // alias, "_" or "."; empty for the default name
	Path string
}

// File is everything a backend needs to emit one output file
type File struct {
	Source  string // path of the input the file was generated from
	Package string
	Imports []Import
	Suites  []*Namespace
}
