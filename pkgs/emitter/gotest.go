package emitter

import (
	"bytes"
	"fmt"
	"go/format"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/invariant"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// DefaultHarnessImport is the import path of the runtime support package
// used by generated tests.
const DefaultHarnessImport = "github.com/opal-lang/suitec/pkgs/harness"

// harnessName is the local name the harness is imported under, chosen so it
// cannot clash with a user import called harness.
const harnessName = "suiteharness"

// TemplateData represents preprocessed data for template generation
type TemplateData struct {
	Source       string
	Package      string
	ImportGroups [][]unit.Import // standard library first, then everything else
	Tests        []TemplateFunc
	Benchmarks   []TemplateFunc
}

// TemplateFunc is one top-level Test or Benchmark function
type TemplateFunc struct {
	Name  string // Go function name
	Suite string // suite name as written
	Root  *TemplateNamespace
}

// TemplateNamespace is a namespace ready for template generation
type TemplateNamespace struct {
	Name     string // quoted subtest name
	Setup    []string
	Teardown []string
	Members  []TemplateMember
}

// TemplateMember holds exactly one of Namespace or Unit
type TemplateMember struct {
	Namespace *TemplateNamespace
	Unit      *TemplateUnit
}

// TemplateUnit is a unit ready for template generation
type TemplateUnit struct {
	Name           string // quoted subtest name
	Param          string // closure parameter of a benchmark
	Harness        string
	Ignored        bool
	ExpectFailure  bool
	FailureMessage string // quoted
	Body           []string
}

// TemplateRegistry holds all template components
type TemplateRegistry struct {
	templates map[string]string
}

// NewTemplateRegistry creates a new template registry with all components
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}
	registry.registerComponents()
	return registry
}

func (tr *TemplateRegistry) registerComponents() {
	tr.templates["header"] = headerTemplate
	tr.templates["test-func"] = testFuncTemplate
	tr.templates["test-body"] = testBodyTemplate
	tr.templates["test-unit"] = testUnitTemplate
	tr.templates["bench-func"] = benchFuncTemplate
	tr.templates["bench-body"] = benchBodyTemplate
	tr.templates["stmts"] = stmtsTemplate
}

// GetTemplate returns a specific template component
func (tr *TemplateRegistry) GetTemplate(name string) (string, bool) {
	tmpl, exists := tr.templates[name]
	return tmpl, exists
}

// GetAllTemplates returns all components and the master template, in a
// stable order
func (tr *TemplateRegistry) GetAllTemplates() string {
	names := make([]string, 0, len(tr.templates))
	for name := range tr.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names)+1)
	for _, name := range names {
		parts = append(parts, tr.templates[name])
	}
	parts = append(parts, masterTemplate)
	return strings.Join(parts, "\n")
}

// GoTest emits a _test.go file for the standard testing package
type GoTest struct {
	harnessImport string
	logger        *slog.Logger
	tmpl          *template.Template
}

// GoTestOption configures the Go testing backend
type GoTestOption func(*GoTest)

// WithHarnessImport overrides the import path of the harness package
func WithHarnessImport(path string) GoTestOption {
	return func(g *GoTest) {
		if path != "" {
			g.harnessImport = path
		}
	}
}

// WithLogger sets the logger used for debug output
func WithLogger(logger *slog.Logger) GoTestOption {
	return func(g *GoTest) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGoTest creates the Go testing backend
func NewGoTest(opts ...GoTestOption) *GoTest {
	g := &GoTest{
		harnessImport: DefaultHarnessImport,
		logger:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}

	tmpl, err := template.New("go-test").Parse(NewTemplateRegistry().GetAllTemplates())
	invariant.ExpectNoError(err, "parsing the Go test templates")
	g.tmpl = tmpl
	return g
}

// Emit renders f as a gofmt-formatted Go test file
func (g *GoTest) Emit(w io.Writer, f *unit.File) error {
	data, err := g.Preprocess(f)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = g.tmpl.ExecuteTemplate(&buf, "main", data)
	invariant.ExpectNoError(err, "executing the Go test templates")

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return &FormatError{File: f.Source, Source: buf.Bytes(), Err: err}
	}

	g.logger.Debug("emitted go test file",
		"source", f.Source,
		"tests", len(data.Tests),
		"benchmarks", len(data.Benchmarks),
		"bytes", len(formatted))

	_, err = w.Write(formatted)
	return err
}

// Preprocess converts a unit file into template-ready data
func (g *GoTest) Preprocess(f *unit.File) (*TemplateData, error) {
	invariant.NotNil(f, "file")
	invariant.Precondition(f.Package != "", "file %q must have a package name", f.Source)

	data := &TemplateData{
		Source:  f.Source,
		Package: f.Package,
	}

	usesHarness := false
	seen := make(map[string]string)
	claim := func(name, suite string) error {
		if other, ok := seen[name]; ok {
			return fmt.Errorf("suites %q and %q both generate %s", other, suite, name)
		}
		seen[name] = suite
		return nil
	}

	for _, ns := range f.Suites {
		if tree := ns.Filter(unit.KindTest); tree != nil {
			name := "Test" + exportName(ns.Name)
			if err := claim(name, ns.Name); err != nil {
				return nil, err
			}
			root := g.namespace(tree, &usesHarness)
			data.Tests = append(data.Tests, TemplateFunc{Name: name, Suite: ns.Name, Root: root})
		}
		if tree := ns.Filter(unit.KindBench); tree != nil {
			name := "Benchmark" + exportName(ns.Name)
			if err := claim(name, ns.Name); err != nil {
				return nil, err
			}
			root := g.namespace(tree, &usesHarness)
			data.Benchmarks = append(data.Benchmarks, TemplateFunc{Name: name, Suite: ns.Name, Root: root})
		}
	}

	var imports []unit.Import
	if len(data.Tests) > 0 || len(data.Benchmarks) > 0 {
		imports = append(imports, unit.Import{Path: "testing"})
	}
	if usesHarness {
		imports = append(imports, unit.Import{Name: harnessName, Path: g.harnessImport})
	}
	imports = append(imports, f.Imports...)
	data.ImportGroups = groupImports(imports)

	return data, nil
}

func (g *GoTest) namespace(ns *unit.Namespace, usesHarness *bool) *TemplateNamespace {
	out := &TemplateNamespace{
		Name:     strconv.Quote(ns.Name),
		Setup:    stmtTexts(ns.Setup),
		Teardown: stmtTexts(ns.Teardown),
	}

	for _, m := range ns.Members {
		switch v := m.(type) {
		case *unit.Namespace:
			out.Members = append(out.Members, TemplateMember{Namespace: g.namespace(v, usesHarness)})
		case *unit.Unit:
			u := g.unit(v)
			if u.Ignored || u.ExpectFailure {
				*usesHarness = true
			}
			out.Members = append(out.Members, TemplateMember{Unit: u})
		default:
			invariant.Unreachable("unknown namespace member %T", m)
		}
	}
	return out
}

func (g *GoTest) unit(u *unit.Unit) *TemplateUnit {
	out := &TemplateUnit{
		Name:    strconv.Quote(u.Name),
		Param:   u.Param,
		Harness: harnessName,
		Body:    stmtTexts(u.Body),
	}
	if u.Kind == unit.KindTest {
		out.Ignored = u.Has(unit.MarkerIgnore)
		if msg, ok := u.ExpectedFailure(); ok {
			out.ExpectFailure = true
			out.FailureMessage = strconv.Quote(msg)
		}
	}
	return out
}

// groupImports deduplicates imports by path, keeping the first name seen,
// and splits them into sorted standard library and other groups.
func groupImports(imports []unit.Import) [][]unit.Import {
	byPath := make(map[string]unit.Import, len(imports))
	for _, imp := range imports {
		if _, ok := byPath[imp.Path]; !ok {
			byPath[imp.Path] = imp
		}
	}

	var std, other []unit.Import
	for _, imp := range byPath {
		if isStandard(imp.Path) {
			std = append(std, imp)
		} else {
			other = append(other, imp)
		}
	}

	var groups [][]unit.Import
	for _, group := range [][]unit.Import{std, other} {
		if len(group) == 0 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].Path < group[j].Path })
		groups = append(groups, group)
	}
	return groups
}

// isStandard reports whether path looks like a standard library package:
// its first element has no dot.
func isStandard(path string) bool {
	first, _, _ := strings.Cut(path, "/")
	return !strings.Contains(first, ".")
}

// exportName upper-cases the first rune so go test discovers the function
func exportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

func stmtTexts(stmts []ast.Stmt) []string {
	if len(stmts) == 0 {
		return nil
	}
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}
