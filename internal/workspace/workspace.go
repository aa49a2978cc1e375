// Package workspace discovers suite files under a directory, compiles them in
// parallel and writes or checks the generated test files.
package workspace

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/opal-lang/suitec/internal/config"
	"github.com/opal-lang/suitec/pkgs/emitter"
	"github.com/opal-lang/suitec/pkgs/errors"
	"github.com/opal-lang/suitec/pkgs/host"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// MaxWorkers caps the number of files compiled at once
const MaxWorkers = 256

// SkipDirs are directory names never descended into during discovery
var SkipDirs = []string{".git", "node_modules", "vendor"}

// Result is one compiled suite file
type Result struct {
	Input  string // suite file, relative to the workspace directory
	Output string // generated test file, relative to the workspace directory
	File   *unit.File
	Code   []byte
}

// Workspace compiles the suite files selected by a configuration
type Workspace struct {
	config  *config.Config
	backend emitter.Backend
	logger  *slog.Logger
}

// Option configures a Workspace
type Option func(*Workspace)

// WithLogger sets the logger used for progress and passed to the compiler
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithBackend replaces the Go test backend
func WithBackend(backend emitter.Backend) Option {
	return func(w *Workspace) {
		w.backend = backend
	}
}

// New creates a workspace for cfg
func New(cfg *config.Config, opts ...Option) *Workspace {
	w := &Workspace{
		config: cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.backend == nil {
		w.backend = emitter.NewGoTest(
			emitter.WithHarnessImport(cfg.Harness),
			emitter.WithLogger(w.logger),
		)
	}
	return w
}

// Dir returns the directory paths are relative to
func (w *Workspace) Dir() string {
	return w.config.Dir
}

// OutputPath maps a suite file to the test file generated for it
func (w *Workspace) OutputPath(input string) string {
	return strings.TrimSuffix(input, host.Extension) + w.config.OutputSuffix
}

// Selects reports whether the relative path is a suite file the
// configuration includes and does not exclude.
func (w *Workspace) Selects(rel string) bool {
	rel = filepath.ToSlash(rel)
	if !strings.HasSuffix(rel, host.Extension) {
		return false
	}
	return matchesAny(w.config.Include, rel) && !matchesAny(w.config.Exclude, rel)
}

// Discover returns the selected suite files, sorted, relative to Dir
func (w *Workspace) Discover(ctx context.Context) ([]string, error) {
	root := w.config.Dir
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && skipDir(d.Name(), filepath.ToSlash(rel), w.config.Exclude) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.Selects(rel) {
			files = append(files, rel)
		}
		return nil
	})
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, errors.NewInputError(root, err)
	}

	sort.Strings(files)
	w.logger.Debug("discovered suite files", "dir", root, "count", len(files))
	return files, nil
}

// Compile parses and renders every input in parallel. Results follow the
// order of inputs. Per-file failures are joined in input order, so the
// first reported error is the same on every run.
func (w *Workspace) Compile(ctx context.Context, inputs []string) ([]*Result, error) {
	workers := w.config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > MaxWorkers {
		workers = MaxWorkers
	}

	sem := semaphore.NewWeighted(int64(workers))
	g, gCtx := errgroup.WithContext(ctx)

	results := make([]*Result, len(inputs))
	errs := make([]error, len(inputs))

	for i, input := range inputs {
		g.Go(func() error {
			if err := sem.Acquire(gCtx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			results[i], errs[i] = w.compileFile(input)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := stderrors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// compileFile reads, parses and renders one suite file
func (w *Workspace) compileFile(input string) (*Result, error) {
	path := filepath.Join(w.config.Dir, input)
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewInputError(input, err)
	}

	f, err := host.Parse(filepath.ToSlash(input), src, host.WithLogger(w.logger))
	if err != nil {
		return nil, errors.NewParseError(input, err)
	}

	code, err := emitter.Render(w.backend, f)
	if err != nil {
		return nil, errors.NewGenerationError(input, err)
	}

	w.logger.Debug("compiled", "input", input, "suites", len(f.Suites))
	return &Result{
		Input:  input,
		Output: w.OutputPath(input),
		File:   f,
		Code:   code,
	}, nil
}

// Write stores generated code, leaving files whose content is unchanged
// untouched. It returns the outputs that were written.
func (w *Workspace) Write(results []*Result) ([]string, error) {
	var written []string
	for _, res := range results {
		path := filepath.Join(w.config.Dir, res.Output)
		current, err := os.ReadFile(path)
		if err == nil && bytes.Equal(current, res.Code) {
			continue
		}
		if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return written, errors.NewOutputError(res.Output, err)
		}
		if err := os.WriteFile(path, res.Code, 0o644); err != nil {
			return written, errors.NewOutputError(res.Output, err)
		}
		w.logger.Debug("wrote", "output", res.Output)
		written = append(written, res.Output)
	}
	return written, nil
}

// Check compares generated code with the files on disk and fails with a
// STALE_OUTPUT error listing every missing or outdated output.
func (w *Workspace) Check(results []*Result) error {
	var stale []string
	for _, res := range results {
		path := filepath.Join(w.config.Dir, res.Output)
		current, err := os.ReadFile(path)
		switch {
		case err == nil:
			if !bytes.Equal(current, res.Code) {
				stale = append(stale, res.Output)
			}
		case stderrors.Is(err, fs.ErrNotExist):
			stale = append(stale, res.Output)
		default:
			return errors.NewInputError(res.Output, err)
		}
	}

	if len(stale) > 0 {
		for _, path := range stale {
			w.logger.Debug("stale output", "output", path)
		}
		return errors.NewStaleOutputError(stale)
	}
	return nil
}

func matchesAny(patterns []string, rel string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func skipDir(name, rel string, exclude []string) bool {
	for _, skip := range SkipDirs {
		if name == skip {
			return true
		}
	}
	return matchesAny(exclude, rel) || matchesAny(exclude, rel+"/")
}
