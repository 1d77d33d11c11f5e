package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
	"github.com/toyz/configen/internal/typeexpr"
)

// Custom YAML tags understood in field defaults
const (
	TagMissing  = "!missing"
	TagSentinel = "!sentinel"
	TagEnum     = "!enum"
	TagInstance = "!instance"
)

// documentFile is the on-disk layout of a schema document
type documentFile struct {
	Module  string      `yaml:"module"`
	Classes []classNode `yaml:"classes"`
}

type classNode struct {
	Name    string      `yaml:"name"`
	Kind    string      `yaml:"kind"`
	Members []string    `yaml:"members"`
	Fields  []fieldNode `yaml:"fields"`

	line int
}

func (c *classNode) UnmarshalYAML(value *yaml.Node) error {
	type plain classNode
	if err := value.Decode((*plain)(c)); err != nil {
		return err
	}
	c.line = value.Line
	return nil
}

type fieldNode struct {
	Name    string    `yaml:"name"`
	Type    string    `yaml:"type"`
	Default yaml.Node `yaml:"default"`

	line int
}

func (f *fieldNode) UnmarshalYAML(value *yaml.Node) error {
	type plain fieldNode
	if err := value.Decode((*plain)(f)); err != nil {
		return err
	}
	f.line = value.Line
	return nil
}

// Document is a parsed schema document: one module and its classes
type Document struct {
	Path    string
	Module  string
	Classes []*models.ClassDecl
}

// LoadFile reads and parses a schema document from disk
func LoadFile(path string, warn Warner) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cerrors.WrapFileSystemError("read", path, err)
	}
	return ParseDocument(data, path, warn)
}

// ParseDocument parses a schema document. Structural problems (no module,
// unnamed or duplicate classes, unknown kinds) are errors; problems confined
// to one field (bad annotation, malformed default) are reported to warn and
// the field degrades to untyped or MISSING.
func ParseDocument(data []byte, path string, warn Warner) (*Document, error) {
	if warn == nil {
		warn = discardWarner{}
	}

	var file documentFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, cerrors.WrapParseError(fmt.Sprintf("schema document %s", path), err)
	}

	if strings.TrimSpace(file.Module) == "" {
		return nil, cerrors.NewSchemaError("", "schema document must declare 'module'", cerrors.SourceLocation{File: path})
	}

	doc := &Document{Path: path, Module: file.Module}
	seen := make(map[string]bool)

	for _, cn := range file.Classes {
		loc := cerrors.SourceLocation{File: path, Line: cn.line}
		if cn.Name == "" {
			return nil, cerrors.NewSchemaError(file.Module, "class entry is missing 'name'", loc)
		}
		if seen[cn.Name] {
			return nil, cerrors.NewSchemaError(file.Module, fmt.Sprintf("class '%s' declared twice", cn.Name), loc)
		}
		seen[cn.Name] = true

		kind, ok := models.ParseDeclKind(cn.Kind)
		if !ok {
			err := cerrors.NewSchemaError(file.Module, fmt.Sprintf("class '%s' has unknown kind '%s'", cn.Name, cn.Kind), loc)
			err.WithSuggestion("Use one of: class, dataclass, enum, opaque")
			return nil, err
		}

		decl := &models.ClassDecl{
			ModuleName:  file.Module,
			ClassName:   cn.Name,
			DeclKind:    kind,
			EnumMembers: cn.Members,
		}

		for _, fn := range cn.Fields {
			floc := cerrors.SourceLocation{File: path, Line: fn.line}
			if fn.Name == "" {
				return nil, cerrors.NewSchemaError(file.Module, fmt.Sprintf("field of class '%s' is missing 'name'", cn.Name), floc)
			}
			decl.FieldSpecs = append(decl.FieldSpecs, parseField(fn, floc, warn))
		}

		doc.Classes = append(doc.Classes, decl)
	}

	return doc, nil
}

// Register adds every class of the document to r
func (d *Document) Register(r *Registry) error {
	for _, c := range d.Classes {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func parseField(fn fieldNode, loc cerrors.SourceLocation, warn Warner) models.FieldSpec {
	spec := models.FieldSpec{Name: fn.Name}

	typ, err := typeexpr.Parse(fn.Type)
	if err != nil {
		warn.Warn("%s: field '%s' treated as untyped: %v", loc, fn.Name, err)
	} else {
		spec.Type = typ
	}

	def, err := parseDefault(&fn.Default)
	if err != nil {
		warn.Warn("%s: default of field '%s' replaced by MISSING: %v", loc, fn.Name, err)
		def = models.Missing()
	}
	spec.Default = def

	return spec
}

// ParseDefault parses a default written as YAML text, using the same tags as
// schema documents. Empty text means no default.
func ParseDefault(text string) (models.Default, error) {
	if strings.TrimSpace(text) == "" {
		return models.Absent(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return models.Default{}, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return models.Absent(), nil
	}
	return parseDefault(doc.Content[0])
}

// parseDefault converts a field's "default" node into a tagged Default
func parseDefault(node *yaml.Node) (models.Default, error) {
	if node.Kind == 0 {
		return models.Absent(), nil
	}

	switch node.Tag {
	case TagMissing:
		return models.Missing(), nil

	case TagSentinel:
		return models.Sentinel(node.Value), nil

	case TagEnum:
		if node.Kind != yaml.ScalarNode {
			return models.Default{}, fmt.Errorf("%s expects 'Enum.MEMBER'", TagEnum)
		}
		i := strings.LastIndex(node.Value, ".")
		if i <= 0 || i == len(node.Value)-1 {
			return models.Default{}, fmt.Errorf("%s expects 'Enum.MEMBER', got '%s'", TagEnum, node.Value)
		}
		return models.EnumMember(node.Value[:i], node.Value[i+1:]), nil

	case TagInstance:
		return parseInstance(node)
	}

	v := nodeValue(node)
	return models.Literal(v), nil
}

// parseInstance accepts either "!instance ClassName" or
// "!instance {class: ClassName, values: {k: v}}"
func parseInstance(node *yaml.Node) (models.Default, error) {
	if node.Kind == yaml.ScalarNode {
		if node.Value == "" {
			return models.Default{}, fmt.Errorf("%s requires a class name", TagInstance)
		}
		return models.Instance(node.Value), nil
	}
	if node.Kind != yaml.MappingNode {
		return models.Default{}, fmt.Errorf("%s expects a class name or a mapping", TagInstance)
	}

	var class string
	var values []models.Entry
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "class":
			class = val.Value
		case "values":
			if val.Kind != yaml.MappingNode {
				return models.Default{}, fmt.Errorf("%s values must be a mapping", TagInstance)
			}
			values = nodeValue(val).Map
		default:
			return models.Default{}, fmt.Errorf("%s has unknown key '%s'", TagInstance, key.Value)
		}
	}
	if class == "" {
		return models.Default{}, fmt.Errorf("%s requires 'class'", TagInstance)
	}
	return models.Instance(class, values...), nil
}

// nodeValue converts a YAML node into a literal value tree. Nodes carrying
// custom tags inside a container cannot be literals and become opaque.
func nodeValue(node *yaml.Node) models.Value {
	switch node.Kind {
	case yaml.AliasNode:
		return nodeValue(node.Alias)

	case yaml.SequenceNode:
		items := make([]models.Value, 0, len(node.Content))
		for _, c := range node.Content {
			items = append(items, nodeValue(c))
		}
		return models.List(items...)

	case yaml.MappingNode:
		entries := make([]models.Entry, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			entries = append(entries, models.Entry{
				Key:   nodeValue(node.Content[i]),
				Value: nodeValue(node.Content[i+1]),
			})
		}
		return models.Map(entries...)

	case yaml.ScalarNode:
		return scalarValue(node)

	default:
		return models.Opaque(fmt.Sprintf("yaml node kind %d", node.Kind))
	}
}

func scalarValue(node *yaml.Node) models.Value {
	switch node.ShortTag() {
	case "!!null":
		return models.Null()
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return models.Opaque(node.Value)
		}
		return models.Bool(b)
	case "!!int":
		var i int64
		if err := node.Decode(&i); err != nil {
			// Out of int64 range
			return models.Opaque(node.Value)
		}
		return models.Int(i)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return models.Opaque(node.Value)
		}
		return models.Float(f)
	case "!!str":
		return models.String(node.Value)
	default:
		return models.Opaque(node.Tag + " " + node.Value)
	}
}
