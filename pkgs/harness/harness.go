// Package harness is the runtime support imported by generated tests.
//
// Generated code calls Ignored for units that are skipped by default and
// ExpectFailure for units that pass only when their body fails.
//
// An expected-failure body receives a testing.TB rather than *testing.T, so
// hook or body code that calls *testing.T-only methods such as Run or
// Parallel compiles in plain units but not in failing units of the same
// suite.
package harness

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// EnvRunIgnored opts in to ignored units when set to a true value
const EnvRunIgnored = "SUITE_RUN_IGNORED"

var runIgnored = flag.Bool("suite.ignored", false, "run units that are skipped by default")

// RunIgnored reports whether skip-by-default units were requested
func RunIgnored() bool {
	if *runIgnored {
		return true
	}
	on, err := strconv.ParseBool(os.Getenv(EnvRunIgnored))
	return err == nil && on
}

// Ignored skips t unless ignored units were requested
func Ignored(t testing.TB) {
	t.Helper()
	if !RunIgnored() {
		t.Skip("ignored by default; run with -suite.ignored or " + EnvRunIgnored + "=1")
	}
}

// ExpectFailure runs body and passes only if it fails.
//
// The body fails when it panics, calls FailNow or Fatal*, or records an
// Error*. When msg is not empty one of the failure messages must contain it.
// A body that skips skips t.
func ExpectFailure(t testing.TB, msg string, body func(testing.TB)) {
	t.Helper()

	r := &recorder{TB: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if v := recover(); v != nil {
				r.mu.Lock()
				r.panicked = true
				r.messages = append(r.messages, fmt.Sprint(v))
				r.mu.Unlock()
			}
		}()
		body(r)
	}()
	<-done

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.skipped:
		t.Skip(r.skipReason)
	case !r.panicked && !r.failed:
		if msg != "" {
			t.Errorf("expected a failure containing %q, but the body completed", msg)
		} else {
			t.Errorf("expected a failure, but the body completed")
		}
	case msg != "" && !r.matches(msg):
		t.Errorf("expected a failure containing %q, got %q", msg, r.messages)
	default:
		t.Logf("failed as expected: %s", strings.Join(r.messages, "; "))
	}
}

// recorder captures failures instead of reporting them to the parent test.
// Its methods may be called from goroutines the body starts.
type recorder struct {
	testing.TB

	mu         sync.Mutex
	failed     bool
	panicked   bool
	skipped    bool
	skipReason string
	messages   []string
}

// matches must be called with mu held
func (r *recorder) matches(msg string) bool {
	for _, m := range r.messages {
		if strings.Contains(m, msg) {
			return true
		}
	}
	return false
}

func (r *recorder) record(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	if text != "" {
		r.messages = append(r.messages, text)
	}
}

func (r *recorder) Fail() {
	r.record("")
}

func (r *recorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed || r.panicked
}

func (r *recorder) FailNow() {
	r.record("")
	runtime.Goexit()
}

func (r *recorder) Error(args ...any) {
	r.record(sprintln(args...))
}

func (r *recorder) Errorf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
}

func (r *recorder) Fatal(args ...any) {
	r.record(sprintln(args...))
	runtime.Goexit()
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
	runtime.Goexit()
}

func (r *recorder) Skip(args ...any) {
	r.skip(sprintln(args...))
}

func (r *recorder) Skipf(format string, args ...any) {
	r.skip(fmt.Sprintf(format, args...))
}

func (r *recorder) SkipNow() {
	r.skip("")
}

func (r *recorder) Skipped() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skipped
}

func (r *recorder) skip(reason string) {
	r.mu.Lock()
	r.skipped = true
	r.skipReason = reason
	r.mu.Unlock()
	runtime.Goexit()
}

// sprintln formats like testing's Error and Log
func sprintln(args ...any) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}
