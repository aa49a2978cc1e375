// Command suitec compiles .suite files into Go test files.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opal-lang/suitec/pkgs/errors"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &options{stdout: stdout, stderr: stderr}
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		FormatError(stderr, err, ShouldUseColor(opts.noColor, stderr))
	}
	return errors.ExitCode(err)
}

// options holds the persistent flags shared by every command
type options struct {
	configPath string
	debug      bool
	workers    int
	noColor    bool

	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "suitec",
		Short: "Compile describe! suites into Go tests and benchmarks",
		Long: `suitec reads .suite files, flattens their describe! blocks into
named test and benchmark units, and writes a _test.go file next to each.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.logger = newLogger(opts.stderr, opts.debug || os.Getenv("SUITEC_DEBUG") != "")
		},
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to suitec.yaml (default: ./suitec.yaml when present)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output")
	root.PersistentFlags().IntVarP(&opts.workers, "workers", "j", 0, "Files compiled in parallel (default: from config, else GOMAXPROCS)")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newGenCmd(opts), newListCmd(opts), newWatchCmd(opts))
	return root
}

// newLogger writes plain key=value lines to w without time or level
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
				return slog.Attr{}
			}
			return a
		},
	})
	return slog.New(handler)
}
