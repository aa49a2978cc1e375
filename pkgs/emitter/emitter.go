// Package emitter renders unit trees into runnable artifacts.
//
// The generator's output is backend-agnostic; a Backend decides what a
// namespace, a unit and a marker look like in a concrete test harness.
package emitter

import (
	"bytes"
	"fmt"
	"io"

	"github.com/opal-lang/suitec/pkgs/unit"
)

// Backend writes one output file for f
type Backend interface {
	Emit(w io.Writer, f *unit.File) error
}

// Render runs backend into a buffer
func Render(backend Backend, f *unit.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := backend.Emit(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FormatError reports generated source that go/format rejected, usually
// because a code block is not valid Go. Source holds the unformatted output.
type FormatError struct {
	File   string
	Source []byte
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("generated code for %s is not valid Go: %v", e.File, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
