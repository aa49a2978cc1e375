// Package sanitize derives unit names from descriptions.
//
// The mapping is deliberately minimal: spaces become underscores and nothing
// else changes. Names that are not identifiers, and siblings that end up with
// the same name, are reported by Lint but never rewritten.
package sanitize

import (
	"go/token"
	"strings"
)

// SuiteName returns the namespace name for a suite. Suite names are used
// unchanged.
func SuiteName(name string) string {
	return name
}

// UnitName replaces every space in desc with an underscore
func UnitName(desc string) string {
	return strings.ReplaceAll(desc, " ", "_")
}

// IsIdentifier reports whether name is a valid identifier
func IsIdentifier(name string) bool {
	return token.IsIdentifier(name)
}

// FindingKind classifies a lint finding
type FindingKind int

const (
	FindingInvalid   FindingKind = iota // not a valid identifier
	FindingCollision                    // same name as an earlier sibling
)

func (k FindingKind) String() string {
	switch k {
	case FindingInvalid:
		return "invalid identifier"
	case FindingCollision:
		return "name collision"
	default:
		return "unknown"
	}
}

// Finding is one lint result. Index is the position of the offending name,
// First the position of the earlier sibling for collisions.
type Finding struct {
	Kind  FindingKind
	Name  string
	Index int
	First int
}

// Lint reports names that are not identifiers and names that repeat an
// earlier sibling, in input order.
func Lint(names []string) []Finding {
	var findings []Finding
	seen := make(map[string]int, len(names))

	for i, name := range names {
		if !IsIdentifier(name) {
			findings = append(findings, Finding{Kind: FindingInvalid, Name: name, Index: i})
		}
		if first, ok := seen[name]; ok {
			findings = append(findings, Finding{Kind: FindingCollision, Name: name, Index: i, First: first})
			continue
		}
		seen[name] = i
	}
	return findings
}
