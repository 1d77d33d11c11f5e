package models

import "strings"

// TypeKind represents the shape of a declared field type
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypePrimitive
	TypeNone
	TypeUnion
	TypeOptional
	TypeList
	TypeDict
	TypeTuple
	TypeNamed
)

// String returns the string representation of the type kind
func (k TypeKind) String() string {
	switch k {
	case TypeAny:
		return "any"
	case TypePrimitive:
		return "primitive"
	case TypeNone:
		return "none"
	case TypeUnion:
		return "union"
	case TypeOptional:
		return "optional"
	case TypeList:
		return "list"
	case TypeDict:
		return "dict"
	case TypeTuple:
		return "tuple"
	case TypeNamed:
		return "named"
	default:
		return "unknown"
	}
}

// Primitive type names understood by the type mapper
const (
	PrimitiveInt   = "int"
	PrimitiveFloat = "float"
	PrimitiveBool  = "bool"
	PrimitiveStr   = "str"
	PrimitiveBytes = "bytes"
)

// TypeRef is a declared field type. A nil *TypeRef means the field is untyped.
type TypeRef struct {
	Kind TypeKind   // shape of the type
	Name string     // primitive name or (possibly dotted) class name
	Args []*TypeRef // members of unions/tuples, element of lists, key/value of dicts
}

// Any returns the universal placeholder type
func Any() *TypeRef {
	return &TypeRef{Kind: TypeAny}
}

// Primitive returns a primitive type reference
func Primitive(name string) *TypeRef {
	return &TypeRef{Kind: TypePrimitive, Name: name}
}

// None returns the None type
func None() *TypeRef {
	return &TypeRef{Kind: TypeNone}
}

// Named returns a reference to a class, enum or library type
func Named(name string) *TypeRef {
	return &TypeRef{Kind: TypeNamed, Name: name}
}

// ListOf returns List[elem]; a nil elem means a bare List
func ListOf(elem *TypeRef) *TypeRef {
	if elem == nil {
		return &TypeRef{Kind: TypeList}
	}
	return &TypeRef{Kind: TypeList, Args: []*TypeRef{elem}}
}

// DictOf returns Dict[key, value]; nil key and value mean a bare Dict
func DictOf(key, value *TypeRef) *TypeRef {
	if key == nil && value == nil {
		return &TypeRef{Kind: TypeDict}
	}
	if key == nil {
		key = Any()
	}
	if value == nil {
		value = Any()
	}
	return &TypeRef{Kind: TypeDict, Args: []*TypeRef{key, value}}
}

// OptionalOf returns Optional[inner]
func OptionalOf(inner *TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeOptional, Args: []*TypeRef{inner}}
}

// UnionOf returns Union[members...]
func UnionOf(members ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeUnion, Args: members}
}

// TupleOf returns Tuple[members...]
func TupleOf(members ...*TypeRef) *TypeRef {
	return &TypeRef{Kind: TypeTuple, Args: members}
}

// String renders the reference in annotation syntax, mainly for diagnostics
func (t *TypeRef) String() string {
	if t == nil {
		return "<untyped>"
	}
	switch t.Kind {
	case TypeAny:
		return "Any"
	case TypeNone:
		return "None"
	case TypePrimitive, TypeNamed:
		return t.Name
	}

	head := map[TypeKind]string{
		TypeUnion:    "Union",
		TypeOptional: "Optional",
		TypeList:     "List",
		TypeDict:     "Dict",
		TypeTuple:    "Tuple",
	}[t.Kind]
	if len(t.Args) == 0 {
		return head
	}
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return head + "[" + strings.Join(args, ", ") + "]"
}
