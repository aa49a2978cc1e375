// Package config loads suitec.yaml.
//
// The file is optional. When present it is validated against an embedded
// JSON Schema before it is decoded, so unknown keys and malformed values are
// reported with their location instead of being silently ignored.
package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/mod/module"
	"gopkg.in/yaml.v3"

	"github.com/opal-lang/suitec/pkgs/emitter"
)

// FileName is the configuration file looked up in the working directory
const FileName = "suitec.yaml"

// Defaults
const (
	DefaultInclude      = "**/*.suite"
	DefaultOutputSuffix = "_suite_test.go"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://suitec.json"

// Config is the decoded configuration
type Config struct {
	Include      []string `yaml:"include"`
	Exclude      []string `yaml:"exclude"`
	OutputSuffix string   `yaml:"output_suffix"`
	Harness      string   `yaml:"harness"`
	Workers      int      `yaml:"workers"` // 0 means GOMAXPROCS

	// Dir is the directory include and exclude patterns are relative to
	Dir string `yaml:"-"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{Dir: "."}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if len(c.Include) == 0 {
		c.Include = []string{DefaultInclude}
	}
	if c.OutputSuffix == "" {
		c.OutputSuffix = DefaultOutputSuffix
	}
	if c.Harness == "" {
		c.Harness = emitter.DefaultHarnessImport
	}
	if c.Dir == "" {
		c.Dir = "."
	}
}

// Load reads the configuration at path. An empty path looks for FileName in
// the working directory and falls back to Default when it does not exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.Dir = filepath.Dir(path)
	return c, nil
}

// Parse validates and decodes configuration data
func Parse(data []byte) (*Config, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		return Default(), nil
	}

	if err := validate(raw); err != nil {
		return nil, err
	}

	c := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	c.applyDefaults()
	return c, nil
}

// validate checks a decoded YAML document against the embedded schema
func validate(raw interface{}) error {
	// The validator expects encoding/json values, not YAML's ints.
	doc, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("configuration must be a mapping with string keys: %w", err)
	}
	var value interface{}
	if err := json.Unmarshal(doc, &value); err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compiling configuration schema: %w", err)
	}
	return schema.Validate(value)
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	if compiler.Formats == nil {
		compiler.Formats = make(map[string]func(interface{}) bool)
	}
	for name, validator := range formatValidators() {
		compiler.Formats[name] = validator
	}

	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
}

// formatValidators returns the suitec-specific schema formats
func formatValidators() map[string]func(interface{}) bool {
	return map[string]func(interface{}) bool{
		"import-path": func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true // Type validation happens separately
			}
			return module.CheckImportPath(s) == nil
		},
		"glob": func(v interface{}) bool {
			s, ok := v.(string)
			if !ok {
				return true // Type validation happens separately
			}
			return doublestar.ValidatePattern(s)
		},
	}
}
