package ast

// NewSuite creates a suite AST node from hooks and sub-blocks.
// Items may be *Test, *Bench, *Suite or a Hook.
func NewSuite(name string, items ...interface{}) *Suite {
	s := &Suite{Name: name}

	for _, item := range items {
		switch v := item.(type) {
		case Hook:
			switch v.Kind {
			case HookBeforeEach:
				s.BeforeEach = v.Body
			case HookAfterEach:
				s.AfterEach = v.Body
			case HookBefore:
				s.Before = v.Body
			case HookAfter:
				s.After = v.Body
			}
		case SubBlock:
			s.Blocks = append(s.Blocks, v)
		}
	}

	return s
}

// HookKind identifies which hook slot a Hook fills
type HookKind int

const (
	HookBeforeEach HookKind = iota
	HookAfterEach
	HookBefore
	HookAfter
)

// Hook is a builder value for NewSuite
type Hook struct {
	Kind HookKind
	Body *Fragment
}

// BeforeEach creates a before_each hook: before_each { STMTS }
func BeforeEach(stmts ...string) Hook {
	return Hook{Kind: HookBeforeEach, Body: Code(stmts...)}
}

// AfterEach creates an after_each hook: after_each { STMTS }
func AfterEach(stmts ...string) Hook {
	return Hook{Kind: HookAfterEach, Body: Code(stmts...)}
}

// Before creates a once-per-suite setup hook: before { STMTS }
func Before(stmts ...string) Hook {
	return Hook{Kind: HookBefore, Body: Code(stmts...)}
}

// After creates a once-per-suite teardown hook: after { STMTS }
func After(stmts ...string) Hook {
	return Hook{Kind: HookAfter, Body: Code(stmts...)}
}

// It creates a plain test: it "DESC" { STMTS }
func It(desc string, stmts ...string) *Test {
	return &Test{Description: desc, Body: Code(stmts...), Config: PlainTest()}
}

// Failing creates an expected-failure test without a message constraint
func Failing(desc string, stmts ...string) *Test {
	return &Test{Description: desc, Body: Code(stmts...), Config: FailingTest(nil)}
}

// FailingWith creates an expected-failure test: failing("MSG") "DESC" { STMTS }
func FailingWith(msg, desc string, stmts ...string) *Test {
	return &Test{Description: desc, Body: Code(stmts...), Config: FailingTest(&msg)}
}

// Ignore creates a skip-by-default test: ignore "DESC" { STMTS }
func Ignore(desc string, stmts ...string) *Test {
	return &Test{Description: desc, Body: Code(stmts...), Config: IgnoredTest()}
}

// BenchOf creates a benchmark: bench "DESC" (PARAM) { STMTS }
func BenchOf(desc, param string, stmts ...string) *Bench {
	return &Bench{Description: desc, Param: param, Body: Code(stmts...)}
}
