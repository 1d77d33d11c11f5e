package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	cerrors "github.com/toyz/configen/internal/errors"
)

// Load reads <dir>/<name>.yaml (or .yml), applies defaults for absent keys
// and validates the result
func Load(dir, name string) (*File, error) {
	if name == "" {
		name = DefaultConfigName
	}

	path, err := findConfigFile(dir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.WrapFileSystemError("read", path, err)
	}

	f, err := Parse(data)
	if err != nil {
		return nil, cerrors.WrapConfigurationError(name, "load", err).
			WithLocation(cerrors.SourceLocation{File: path})
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, cerrors.WrapFileSystemError("resolve", dir, err)
	}
	f.Dir = abs

	return f, nil
}

// Parse decodes configuration YAML over the defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	f := newDefaults()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Save writes f as YAML to path
func Save(f *File, path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return cerrors.WrapConfigurationError(filepath.Base(path), "encode", err)
	}
	if err := enc.Close(); err != nil {
		return cerrors.WrapConfigurationError(filepath.Base(path), "encode", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return cerrors.WrapFileSystemError("create directory for", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return cerrors.WrapFileSystemError("write", path, err)
	}
	return nil
}

func findConfigFile(dir, name string) (string, error) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", cerrors.Newf(cerrors.ConfigurationErrorCode, "configuration file '%s.yaml' not found in '%s'", name, dir).
		WithSuggestion("Run 'configen init' to create a starter configuration")
}
