package main

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/opal-lang/suitec/pkgs/errors"
)

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	// errors.Join from a multi-file compile: one block per file
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			FormatError(w, e, useColor)
		}
		return
	}

	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())

	var suitecErr *errors.SuitecError
	if !stderrors.As(err, &suitecErr) {
		return
	}
	switch suitecErr.Type {
	case errors.ErrStaleOutput:
		if paths, ok := suitecErr.GetContext("paths"); ok {
			for _, path := range paths.([]string) {
				_, _ = fmt.Fprintf(w, "  %s\n", Colorize(path, ColorYellow, useColor))
			}
		}
	case errors.ErrConfig:
		_, _ = fmt.Fprintf(w, "%s see suitec.yaml keys: include, exclude, output_suffix, harness, workers\n", Colorize("Hint:", ColorYellow, useColor))
	}
}
