package models

// DeclKind represents what a schema declaration is when referenced as a type
type DeclKind int

const (
	DeclClass     DeclKind = iota // a plain class whose constructor parameters are mirrored
	DeclDataclass                 // a structured schema that can itself be a field type
	DeclEnum                      // an enumeration with named members
	DeclOpaque                    // a library class with no structured mirror
)

// String returns the string representation of the declaration kind
func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclDataclass:
		return "dataclass"
	case DeclEnum:
		return "enum"
	case DeclOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// ParseDeclKind converts a schema document kind to a DeclKind
func ParseDeclKind(s string) (DeclKind, bool) {
	switch s {
	case "", "class":
		return DeclClass, true
	case "dataclass":
		return DeclDataclass, true
	case "enum":
		return DeclEnum, true
	case "opaque":
		return DeclOpaque, true
	default:
		return DeclClass, false
	}
}

// FieldSpec describes one field of a class schema
type FieldSpec struct {
	Name    string   // identifier as declared
	Type    *TypeRef // nil when the field is untyped
	Default Default  // zero value means no default
}

// ClassSchema is the capability any schema source must provide for a class:
// an identity and ordered fields with name, type and default.
type ClassSchema interface {
	Module() string
	Name() string
	Kind() DeclKind
	Fields() []FieldSpec
	Members() []string
}

// ClassDecl is the concrete ClassSchema produced by the built-in schema sources
type ClassDecl struct {
	ModuleName  string
	ClassName   string
	DeclKind    DeclKind
	FieldSpecs  []FieldSpec
	EnumMembers []string
}

// Module returns the dotted module the class lives in
func (c *ClassDecl) Module() string { return c.ModuleName }

// Name returns the class name
func (c *ClassDecl) Name() string { return c.ClassName }

// Kind returns the declaration kind
func (c *ClassDecl) Kind() DeclKind { return c.DeclKind }

// Fields returns the fields in declaration order
func (c *ClassDecl) Fields() []FieldSpec { return c.FieldSpecs }

// Members returns enum members in declaration order
func (c *ClassDecl) Members() []string { return c.EnumMembers }

// QualifiedName returns module.Name
func QualifiedName(s ClassSchema) string {
	if s.Module() == "" {
		return s.Name()
	}
	return s.Module() + "." + s.Name()
}
