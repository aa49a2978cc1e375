package unit

// MarkerKind tells the harness how to execute a unit
type MarkerKind int

const (
	MarkerRun           MarkerKind = iota // executed by default
	MarkerBench                           // benchmark, executed in benchmark mode
	MarkerIgnore                          // skipped unless ignored units are requested
	MarkerExpectFailure                   // passes only if the body fails
)

// Marker is a tag attached to a generated unit
type Marker struct {
	Kind    MarkerKind
	Message string // expect-failure only; empty accepts any failure
}

// Run marks a unit as executed by default
func Run() Marker { return Marker{Kind: MarkerRun} }

// Bench marks a benchmark
func Bench() Marker { return Marker{Kind: MarkerBench} }

// Ignore marks a unit as skipped by default
func Ignore() Marker { return Marker{Kind: MarkerIgnore} }

// ExpectFailure marks a unit that must fail; msg may be empty
func ExpectFailure(msg string) Marker {
	return Marker{Kind: MarkerExpectFailure, Message: msg}
}

// String renders the marker as run, bench, ignore, expect-failure or
// expect-failure:<msg>
func (m Marker) String() string {
	switch m.Kind {
	case MarkerRun:
		return "run"
	case MarkerBench:
		return "bench"
	case MarkerIgnore:
		return "ignore"
	case MarkerExpectFailure:
		if m.Message != "" {
			return "expect-failure:" + m.Message
		}
		return "expect-failure"
	default:
		return "unknown"
	}
}

// MarkerStrings renders every marker in order
func MarkerStrings(markers []Marker) []string {
	out := make([]string, len(markers))
	for i, m := range markers {
		out[i] = m.String()
	}
	return out
}
