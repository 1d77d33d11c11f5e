// Package config holds generation options and the configen.yaml file that
// drives batch generation.
package config

import "path/filepath"

// TypeMapping replaces a well-known library type with a Python expression
type TypeMapping struct {
	// Expr is the Python type expression emitted in place of the type
	Expr string `yaml:"expr" validate:"required"`
	// Import is an optional import line the expression needs
	Import string `yaml:"import,omitempty"`
}

// GenerationConfig holds the process-wide options of the generation core.
// The generator copies it on construction; callers must not rely on later
// mutations being observed.
type GenerationConfig struct {
	// Header is inserted verbatim at the top of every generated file
	Header string
	// ClassSuffix is appended to every generated class name
	ClassSuffix string
	// Target emits a Hydra "_target_" field naming the mirrored class
	Target bool
	// TypeMap maps type names (as written in schemas) to replacements
	TypeMap map[string]TypeMapping
}

// Clone returns a deep copy
func (c GenerationConfig) Clone() GenerationConfig {
	clone := c
	clone.TypeMap = make(map[string]TypeMapping, len(c.TypeMap))
	for k, v := range c.TypeMap {
		clone.TypeMap[k] = v
	}
	return clone
}

// ModuleSpec names one output unit: a dotted module and the classes to mirror, in order
type ModuleSpec struct {
	Name    string   `yaml:"name" validate:"required,dotted"`
	Classes []string `yaml:"classes" validate:"required,min=1,unique,dive,identifier"`
}

// File is the on-disk configen.yaml
type File struct {
	Header            string                 `yaml:"header"`
	OutputDir         string                 `yaml:"output_dir" validate:"required"`
	ModulePathPattern string                 `yaml:"module_path_pattern" validate:"required,module_pattern"`
	ClassSuffix       string                 `yaml:"class_suffix" validate:"omitempty,identifier"`
	Target            bool                   `yaml:"target"`
	SchemaDirs        []string               `yaml:"schema_dirs" validate:"dive,required"`
	GoPackages        []string               `yaml:"go_packages,omitempty" validate:"dive,required"`
	TypeMap           map[string]TypeMapping `yaml:"type_map,omitempty" validate:"dive,keys,required,endkeys"`
	Modules           []ModuleSpec           `yaml:"modules" validate:"required,min=1,unique=Name,dive"`

	// Dir is the directory the file was loaded from; relative paths resolve against it
	Dir string `yaml:"-"`
}

// GenerationConfig derives the generation core options
func (f *File) GenerationConfig() GenerationConfig {
	return GenerationConfig{
		Header:      f.Header,
		ClassSuffix: f.ClassSuffix,
		Target:      f.Target,
		TypeMap:     f.TypeMap,
	}.Clone()
}

// ModuleSpecs returns a copy of the configured modules, in file order
func (f *File) ModuleSpecs() []ModuleSpec {
	specs := make([]ModuleSpec, len(f.Modules))
	for i, m := range f.Modules {
		specs[i] = ModuleSpec{Name: m.Name, Classes: append([]string(nil), m.Classes...)}
	}
	return specs
}

// ResolvePath makes a configured path absolute relative to the config directory
func (f *File) ResolvePath(path string) string {
	if filepath.IsAbs(path) || f.Dir == "" {
		return path
	}
	return filepath.Join(f.Dir, path)
}
