package config

// DefaultHeader is written at the top of generated files unless configured otherwise
const DefaultHeader = `# Generated by configen, do not edit.
# fmt: off
# isort:skip_file
# flake8: noqa
`

// DefaultModulePathPattern places "a.b.c" at "a/b/conf/c.py"
const DefaultModulePathPattern = "{{module_path}}/conf/{{module_name}}.py"

// DefaultClassSuffix is appended to generated class names
const DefaultClassSuffix = "Conf"

// DefaultConfigName is the config file base name looked up by Load
const DefaultConfigName = "configen"

// DefaultTypeMap maps common library types that have a natural primitive
// equivalent in a structured config
func DefaultTypeMap() map[string]TypeMapping {
	return map[string]TypeMapping{
		"time.Duration":     {Expr: "int"},
		"time.Time":         {Expr: "str"},
		"pathlib.Path":      {Expr: "str"},
		"datetime.date":     {Expr: "str"},
		"datetime.datetime": {Expr: "str"},
	}
}

// newDefaults returns a File pre-populated with every default; YAML decoding
// then overrides only the keys present in the file
func newDefaults() File {
	return File{
		Header:            DefaultHeader,
		OutputDir:         ".",
		ModulePathPattern: DefaultModulePathPattern,
		ClassSuffix:       DefaultClassSuffix,
		SchemaDirs:        []string{"schemas"},
		TypeMap:           DefaultTypeMap(),
	}
}

// Default returns the starter configuration written by "configen init"
func Default() *File {
	f := newDefaults()
	f.Modules = []ModuleSpec{
		{Name: "my_app.config", Classes: []string{"AppConfig"}},
	}
	return &f
}
