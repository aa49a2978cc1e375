package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opal-lang/suitec/internal/config"
	"github.com/opal-lang/suitec/internal/workspace"
	"github.com/opal-lang/suitec/pkgs/errors"
	"github.com/opal-lang/suitec/pkgs/manifest"
)

// openWorkspace loads the configuration, applies flag overrides and
// returns the workspace with its absolute root
func openWorkspace(cmd *cobra.Command, opts *options) (*workspace.Workspace, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, errors.NewConfigError("cannot load configuration", err)
	}

	if cmd.Flags().Changed("workers") {
		if opts.workers < 0 {
			return nil, errors.NewConfigError(fmt.Sprintf("--workers must not be negative, got %d", opts.workers), nil)
		}
		cfg.Workers = opts.workers
	}

	dir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, errors.NewConfigError("cannot resolve workspace directory", err)
	}
	cfg.Dir = dir

	opts.logger.Debug("configuration", "dir", cfg.Dir, "include", cfg.Include, "exclude", cfg.Exclude, "workers", cfg.Workers)
	return workspace.New(cfg, workspace.WithLogger(opts.logger)), nil
}

// inputs returns the suite files named on the command line, relative to the
// workspace, or every discovered suite file when none are named
func inputs(cmd *cobra.Command, ws *workspace.Workspace, args []string) ([]string, error) {
	if len(args) == 0 {
		return ws.Discover(cmd.Context())
	}

	files := make([]string, 0, len(args))
	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, errors.NewInputError(arg, err)
		}
		rel, err := filepath.Rel(ws.Dir(), abs)
		if err != nil {
			return nil, errors.NewInputError(arg, err)
		}
		files = append(files, rel)
	}
	return files, nil
}

func newGenCmd(opts *options) *cobra.Command {
	var (
		check  bool
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "gen [files...]",
		Short: "Generate _test.go files from suite files",
		Long: `Compile the named suite files, or every suite file selected by the
configuration, and write the generated Go test file next to each one.

With --check nothing is written; the command fails when a generated file is
missing or out of date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if check && stdout {
				return fmt.Errorf("--check and --stdout cannot be combined")
			}

			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			files, err := inputs(cmd, ws, args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				opts.logger.Warn("no suite files found", "dir", ws.Dir())
				return nil
			}

			results, err := ws.Compile(cmd.Context(), files)
			if err != nil {
				return err
			}

			useColor := ShouldUseColor(opts.noColor, opts.stdout)
			switch {
			case stdout:
				for _, res := range results {
					if len(results) > 1 {
						fmt.Fprintf(opts.stdout, "// ==> %s <==\n", res.Output)
					}
					if _, err := opts.stdout.Write(res.Code); err != nil {
						return errors.NewOutputError("stdout", err)
					}
				}
				return nil

			case check:
				if err := ws.Check(results); err != nil {
					return err
				}
				fmt.Fprintf(opts.stdout, "%s %d generated file(s) up to date\n", Colorize("ok", ColorGreen, useColor), len(results))
				return nil

			default:
				written, err := ws.Write(results)
				for _, path := range written {
					fmt.Fprintf(opts.stdout, "%s %s\n", Colorize("wrote", ColorGreen, useColor), path)
				}
				if err != nil {
					return err
				}
				if unchanged := len(results) - len(written); unchanged > 0 {
					fmt.Fprintf(opts.stdout, "%s\n", Colorize(fmt.Sprintf("%d file(s) unchanged", unchanged), ColorGray, useColor))
				}
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Fail if any generated file is missing or out of date")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print generated code instead of writing files")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list [files...]",
		Short: "List the units each suite file generates",
		Long: `Print every generated test and benchmark with its namespace path and
markers, plus a digest of each file that changes only when the generated
code would.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := manifest.ParseFormat(format)
			if err != nil {
				return err
			}

			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			files, err := inputs(cmd, ws, args)
			if err != nil {
				return err
			}
			results, err := ws.Compile(cmd.Context(), files)
			if err != nil {
				return err
			}

			manifests := make([]*manifest.Manifest, 0, len(results))
			for _, res := range results {
				m, err := manifest.Build(res.File)
				if err != nil {
					return errors.NewGenerationError(res.Input, err)
				}
				manifests = append(manifests, m)
			}

			if err := manifest.WriteAll(opts.stdout, f, manifests); err != nil {
				return errors.NewOutputError("stdout", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "text", "Output format: text, json or yaml")
	return cmd
}

func newWatchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate test files whenever a suite file changes",
		Long: `Generate every selected suite file once, then keep watching the
workspace and regenerate a file each time it is written. Compile errors are
reported and watching continues. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(cmd, opts)
			if err != nil {
				return err
			}
			useColor := ShouldUseColor(opts.noColor, opts.stdout)
			ctx := cmd.Context()

			files, err := ws.Discover(ctx)
			if err != nil {
				return err
			}
			if results, err := ws.Compile(ctx, files); err != nil {
				FormatError(opts.stderr, err, ShouldUseColor(opts.noColor, opts.stderr))
			} else if written, err := ws.Write(results); err != nil {
				return err
			} else {
				for _, path := range written {
					fmt.Fprintf(opts.stdout, "%s %s\n", Colorize("wrote", ColorGreen, useColor), path)
				}
			}

			return ws.Watch(ctx, nil, func(c workspace.Change) {
				if c.Err != nil {
					FormatError(opts.stderr, c.Err, ShouldUseColor(opts.noColor, opts.stderr))
					return
				}
				for _, path := range c.Written {
					fmt.Fprintf(opts.stdout, "%s %s\n", Colorize("wrote", ColorGreen, useColor), path)
				}
			})
		},
	}
}
