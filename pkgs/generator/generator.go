// Package generator turns a parsed suite tree into a unit.Namespace tree.
//
// Generation is a total function over a well-formed tree: every test gets
// the hooks of all its enclosing suites, benchmarks get none, and nested
// suites become nested namespaces in declaration order.
package generator

import (
	"log/slog"
	"strings"

	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/invariant"
	"github.com/opal-lang/suitec/pkgs/resolve"
	"github.com/opal-lang/suitec/pkgs/sanitize"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// Option configures generation
type Option func(*generator)

// WithLogger reports unit names that are not identifiers and sibling name
// collisions as warnings. Names are never changed.
func WithLogger(logger *slog.Logger) Option {
	return func(g *generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

type generator struct {
	logger *slog.Logger
}

// Generate builds the namespace tree for the top-level suite s
func Generate(s *ast.Suite, opts ...Option) *unit.Namespace {
	invariant.NotNil(s, "suite")

	g := &generator{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(g)
	}
	return g.namespace(s, nil, resolve.Root())
}

func (g *generator) namespace(s *ast.Suite, path []string, parent resolve.Hooks) *unit.Namespace {
	hooks := parent.Extend(s)

	ns := &unit.Namespace{
		Name:     sanitize.SuiteName(s.Name),
		Path:     path,
		Setup:    copyStmts(s.Before),
		Teardown: copyStmts(s.After),
	}
	childPath := ns.QualifiedPath()

	for _, block := range s.Blocks {
		switch b := block.(type) {
		case *ast.Test:
			ns.Members = append(ns.Members, testUnit(b, hooks))
		case *ast.Bench:
			ns.Members = append(ns.Members, benchUnit(b))
		case *ast.Suite:
			ns.Members = append(ns.Members, g.namespace(b, childPath, hooks))
		default:
			invariant.Unreachable("unknown sub-block %T", block)
		}
	}

	g.lint(ns)
	return ns
}

func testUnit(t *ast.Test, hooks resolve.Hooks) *unit.Unit {
	invariant.Precondition(t.Config.FailingMessage == nil || t.Config.Failing,
		"failure message on a test not marked failing: %q", t.Description)

	markers := []unit.Marker{unit.Run()}
	if t.Config.Failing {
		msg := ""
		if t.Config.FailingMessage != nil {
			msg = *t.Config.FailingMessage
		}
		markers = append(markers, unit.ExpectFailure(msg))
	}
	if t.Config.Ignored {
		markers = append(markers, unit.Ignore())
	}

	return &unit.Unit{
		Kind:        unit.KindTest,
		Name:        sanitize.UnitName(t.Description),
		Description: t.Description,
		Body:        hooks.Wrap(t.Body),
		Markers:     markers,
		Pos:         t.Pos,
	}
}

// benchUnit never receives hooks: the harness times its body alone
func benchUnit(b *ast.Bench) *unit.Unit {
	return &unit.Unit{
		Kind:        unit.KindBench,
		Name:        sanitize.UnitName(b.Description),
		Description: b.Description,
		Param:       b.Param,
		Body:        copyStmts(b.Body),
		Markers:     []unit.Marker{unit.Bench()},
		Pos:         b.Pos,
	}
}

func copyStmts(f *ast.Fragment) []ast.Stmt {
	if f == nil || len(f.Stmts) == 0 {
		return nil
	}
	return append([]ast.Stmt(nil), f.Stmts...)
}

// lint reports questionable names among the namespace's direct members
func (g *generator) lint(ns *unit.Namespace) {
	names := make([]string, len(ns.Members))
	for i, m := range ns.Members {
		switch v := m.(type) {
		case *unit.Unit:
			names[i] = v.Name
		case *unit.Namespace:
			names[i] = v.Name
		}
	}

	where := strings.Join(ns.QualifiedPath(), ".")
	for _, f := range sanitize.Lint(names) {
		switch f.Kind {
		case sanitize.FindingInvalid:
			g.logger.Warn("name is not a valid identifier", "namespace", where, "name", f.Name)
		case sanitize.FindingCollision:
			g.logger.Warn("name collides with an earlier sibling", "namespace", where, "name", f.Name)
		}
	}
}
