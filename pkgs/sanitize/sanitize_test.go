package sanitize

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnitName(t *testing.T) {
	tests := []struct {
		desc string
		want string
	}{
		{"should add", "should_add"},
		{"works", "works"},
		{"  leading and trailing  ", "__leading_and_trailing__"},
		{"keeps-punctuation? yes!", "keeps-punctuation?_yes!"},
		{"tabs\tstay", "tabs\tstay"},
		{"größe prüfen", "größe_prüfen"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, UnitName(tt.desc)); diff != "" {
				t.Errorf("UnitName mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSuiteNameUnchanged(t *testing.T) {
	if got := SuiteName("calculator"); got != "calculator" {
		t.Errorf("SuiteName() = %q", got)
	}
}

func TestLint(t *testing.T) {
	got := Lint([]string{"works", "is-valid?", "works", "ok", "is-valid?"})

	want := []Finding{
		{Kind: FindingInvalid, Name: "is-valid?", Index: 1},
		{Kind: FindingCollision, Name: "works", Index: 2, First: 0},
		{Kind: FindingInvalid, Name: "is-valid?", Index: 4},
		{Kind: FindingCollision, Name: "is-valid?", Index: 4, First: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestLintClean(t *testing.T) {
	if got := Lint([]string{"a", "b", "should_add"}); len(got) != 0 {
		t.Errorf("expected no findings, got %+v", got)
	}
}
