// Package manifest lists the units a file generates and fingerprints them.
//
// The digest covers everything that reaches the emitted code (namespace
// paths, names, kinds, markers, parameters and statement text) and nothing
// else, so reformatting a suite file outside its code blocks keeps it stable.
package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"

	"github.com/opal-lang/suitec/pkgs/ast"
	"github.com/opal-lang/suitec/pkgs/unit"
)

// Version is the manifest format version; it is part of the digest
const Version uint8 = 1

// Manifest lists every unit of one generated file in emission order
type Manifest struct {
	Version uint8   `json:"version" yaml:"version"`
	Source  string  `json:"source" yaml:"source"`
	Package string  `json:"package" yaml:"package"`
	Digest  string  `json:"digest" yaml:"digest"`
	Entries []Entry `json:"entries" yaml:"entries"`

	canonical []canonicalEntry
}

// Entry describes one unit
type Entry struct {
	Path       []string `json:"path" yaml:"path"`
	Name       string   `json:"name" yaml:"name"`
	Kind       string   `json:"kind" yaml:"kind"`
	Markers    []string `json:"markers" yaml:"markers"`
	Statements int      `json:"statements" yaml:"statements"`
	Line       int      `json:"line,omitempty" yaml:"line,omitempty"`
}

// canonicalEntry is the hashed form of a unit
type canonicalEntry struct {
	Path    []string
	Name    string
	Kind    string
	Param   string
	Markers []string
	Hooks   []canonicalHooks // once-hooks of every enclosing namespace, outermost first
	Body    []string
}

type canonicalHooks struct {
	Setup    []string
	Teardown []string
}

type canonicalManifest struct {
	Version uint8
	Package string
	Entries []canonicalEntry
}

// Build lists the units of f and computes its digest
func Build(f *unit.File) (*Manifest, error) {
	m := &Manifest{
		Version: Version,
		Source:  f.Source,
		Package: f.Package,
		Entries: []Entry{},
	}

	for _, ns := range f.Suites {
		m.collect(ns, nil)
	}

	digest, err := m.computeDigest()
	if err != nil {
		return nil, err
	}
	m.Digest = digest
	return m, nil
}

func (m *Manifest) collect(ns *unit.Namespace, hooks []canonicalHooks) {
	path := ns.QualifiedPath()
	hooks = append(hooks[:len(hooks):len(hooks)], canonicalHooks{
		Setup:    texts(ns.Setup),
		Teardown: texts(ns.Teardown),
	})

	for _, member := range ns.Members {
		switch v := member.(type) {
		case *unit.Namespace:
			m.collect(v, hooks)
		case *unit.Unit:
			markers := unit.MarkerStrings(v.Markers)
			m.Entries = append(m.Entries, Entry{
				Path:       path,
				Name:       v.Name,
				Kind:       v.Kind.String(),
				Markers:    markers,
				Statements: len(v.Body),
				Line:       v.Pos.Line,
			})
			m.canonical = append(m.canonical, canonicalEntry{
				Path:    path,
				Name:    v.Name,
				Kind:    v.Kind.String(),
				Param:   v.Param,
				Markers: markers,
				Hooks:   hooks,
				Body:    texts(v.Body),
			})
		}
	}
}

// Canonical returns the deterministic CBOR encoding the digest is computed from
func (m *Manifest) Canonical() ([]byte, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}

	data, err := encMode.Marshal(canonicalManifest{
		Version: m.Version,
		Package: m.Package,
		Entries: m.canonical,
	})
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// computeDigest hashes the canonical form with BLAKE2b-256.
// Returns "blake2b:<hex>".
func (m *Manifest) computeDigest() (string, error) {
	data, err := m.Canonical()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("blake2b:%x", blake2b.Sum256(data)), nil
}

// Format selects how a manifest is written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown manifest format %q (want text, json or yaml)", s)
	}
}

// Write renders the manifest in the given format
func (m *Manifest) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		return m.writeText(w)
	default:
		return fmt.Errorf("unknown manifest format %q", format)
	}
}

// WriteAll renders several manifests as one document. JSON is written as an
// array and YAML as a document stream.
func WriteAll(w io.Writer, format Format, manifests []*Manifest) error {
	switch format {
	case FormatJSON:
		if manifests == nil {
			manifests = []*Manifest{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(manifests)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, m := range manifests {
			if err := enc.Encode(m); err != nil {
				return err
			}
		}
		return enc.Close()
	default:
		for _, m := range manifests {
			if err := m.Write(w, format); err != nil {
				return err
			}
		}
		return nil
	}
}

func (m *Manifest) writeText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tpackage %s\t%s\n", m.Source, m.Package, m.Digest)
	for _, e := range m.Entries {
		fmt.Fprintf(tw, "  %s/%s\t%s\t%s\n", strings.Join(e.Path, "."), e.Name, e.Kind, strings.Join(e.Markers, ","))
	}
	return tw.Flush()
}

func texts(stmts []ast.Stmt) []string {
	out := make([]string, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, s.Text)
	}
	return out
}
