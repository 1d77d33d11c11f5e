package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/configen/internal/config"
	"github.com/toyz/configen/internal/models"
	"github.com/toyz/configen/internal/schema"
)

func testRegistry() *schema.Registry {
	return schema.NewRegistry().MustRegister(
		&models.ClassDecl{ModuleName: "m", ClassName: "Color", DeclKind: models.DeclEnum, EnumMembers: []string{"RED", "BLUE"}},
		&models.ClassDecl{ModuleName: "m", ClassName: "Point", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "x", Type: models.Primitive("int")},
			{Name: "y", Type: models.Primitive("int")},
		}},
		&models.ClassDecl{ModuleName: "m", ClassName: "Lib", DeclKind: models.DeclOpaque},
		&models.ClassDecl{ModuleName: "m", ClassName: "Plain", DeclKind: models.DeclClass},
		&models.ClassDecl{ModuleName: "m", ClassName: "Bad", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "lib", Type: models.Named("Lib")},
		}},
		// Node refers to itself through a list
		&models.ClassDecl{ModuleName: "m", ClassName: "Node", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "children", Type: models.ListOf(models.Named("Node"))},
		}},
		// A and B refer to each other; B also holds an opaque value
		&models.ClassDecl{ModuleName: "m", ClassName: "A", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "b", Type: models.Named("B")},
		}},
		&models.ClassDecl{ModuleName: "m", ClassName: "B", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "a", Type: models.Named("A")},
			{Name: "lib", Type: models.Named("Lib")},
		}},
		&models.ClassDecl{ModuleName: "other.pkg", ClassName: "Remote", DeclKind: models.DeclDataclass, FieldSpecs: []models.FieldSpec{
			{Name: "color", Type: models.Named("m.Color")},
		}},
	)
}

func TestMapType(t *testing.T) {
	mapper := newTypeMapper(map[string]config.TypeMapping{
		"pathlib.Path":    {Expr: "str"},
		"decimal.Decimal": {Expr: "Decimal", Import: "from decimal import Decimal"},
	}, testRegistry())

	tests := []struct {
		name     string
		input    *models.TypeRef
		expected string
	}{
		{"untyped", nil, "Any"},
		{"any", models.Any(), "Any"},
		{"int", models.Primitive("int"), "int"},
		{"bytes", models.Primitive("bytes"), "bytes"},
		{"none alone", models.None(), "Any"},
		{"union", models.UnionOf(models.Primitive("int"), models.Primitive("float")), "Union[int, float]"},
		{"union dedupes", models.UnionOf(models.Primitive("int"), models.Primitive("int")), "int"},
		{"union with none", models.UnionOf(models.Primitive("str"), models.None()), "Optional[str]"},
		{"union with none first", models.UnionOf(models.None(), models.Primitive("str")), "Optional[str]"},
		{"union of three with none", models.UnionOf(models.Primitive("int"), models.Primitive("str"), models.None()), "Optional[Union[int, str]]"},
		{"union with any member", models.UnionOf(models.Primitive("int"), models.Named("Lib")), "Any"},
		{"nested union flattens", models.UnionOf(models.Primitive("int"), models.UnionOf(models.Primitive("str"), models.Primitive("int"))), "Union[int, str]"},
		{"optional", models.OptionalOf(models.Primitive("int")), "Optional[int]"},
		{"optional of opaque", models.OptionalOf(models.Named("Lib")), "Any"},
		{"optional of optional", models.OptionalOf(models.OptionalOf(models.Primitive("int"))), "Optional[int]"},
		{"bare list", models.ListOf(nil), "List[Any]"},
		{"list", models.ListOf(models.Primitive("str")), "List[str]"},
		{"list of opaque", models.ListOf(models.Named("Lib")), "List[Any]"},
		{"bare dict", models.DictOf(nil, nil), "Dict[Any, Any]"},
		{"dict", models.DictOf(models.Primitive("str"), models.Primitive("int")), "Dict[str, int]"},
		{"dict enum key", models.DictOf(models.Named("Color"), models.Primitive("int")), "Dict[Color, int]"},
		{"dict dataclass key", models.DictOf(models.Named("Point"), models.Primitive("int")), "Dict[Any, int]"},
		{"dict list key", models.DictOf(models.ListOf(nil), models.Primitive("int")), "Dict[Any, int]"},
		{"tuple", models.TupleOf(models.Primitive("int"), models.Primitive("str")), "Tuple[int, str]"},
		{"tuple ellipsis", models.TupleOf(models.Primitive("int"), models.Named("...")), "Tuple[int, ...]"},
		{"bare tuple", models.TupleOf(), "Tuple[Any, ...]"},
		{"enum", models.Named("Color"), "Color"},
		{"dotted enum", models.Named("m.Color"), "Color"},
		{"compatible dataclass", models.Named("Point"), "Point"},
		{"self referencing dataclass", models.Named("Node"), "Node"},
		{"incompatible dataclass", models.Named("Bad"), "Any"},
		{"incompatible cycle", models.Named("A"), "Any"},
		{"opaque", models.Named("Lib"), "Any"},
		{"plain class", models.Named("Plain"), "Any"},
		{"unknown", models.Named("Nowhere"), "Any"},
		{"unknown module", models.Named("x.y.Z"), "Any"},
		{"type map", models.Named("pathlib.Path"), "str"},
		{"type map with import", models.Named("decimal.Decimal"), "Decimal"},
		{"dataclass in other module", models.Named("other.pkg.Remote"), "Remote"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapper.mapType(tt.input, "m").expr)
		})
	}
}

func TestMapTypeImports(t *testing.T) {
	mapper := newTypeMapper(map[string]config.TypeMapping{
		"decimal.Decimal": {Expr: "Decimal", Import: "from decimal import Decimal"},
	}, testRegistry())

	got := mapper.mapType(models.DictOf(models.Named("Color"), models.ListOf(models.Named("Point"))), "m")
	assert.ElementsMatch(t, []pyImport{
		typingImport("Dict"),
		typingImport("List"),
		{Module: "m", Name: "Color"},
		{Module: "m", Name: "Point"},
	}, got.imports)

	got = mapper.mapType(models.Named("decimal.Decimal"), "m")
	assert.Equal(t, []pyImport{{Line: "from decimal import Decimal"}}, got.imports)

	got = mapper.mapType(models.Named("Lib"), "m")
	assert.Equal(t, []pyImport{typingImport("Any")}, got.imports)

	got = mapper.mapType(models.Named("Color"), "m")
	assert.Equal(t, []pyImport{{Module: "m", Name: "Color"}}, got.imports)

	// A union collapsing to Any drops the imports of its members
	got = mapper.mapType(models.UnionOf(models.Named("Color"), models.Named("Lib")), "m")
	assert.Equal(t, []pyImport{typingImport("Any")}, got.imports)

	got = mapper.mapType(models.OptionalOf(models.UnionOf(models.Primitive("int"), models.Primitive("str"))), "m")
	assert.ElementsMatch(t, []pyImport{typingImport("Optional"), typingImport("Union")}, got.imports)
}

func TestTypeMapExpressionImportsTyping(t *testing.T) {
	mapper := newTypeMapper(map[string]config.TypeMapping{
		"pkg.Pair":  {Expr: "Tuple[int, int]"},
		"pkg.Table": {Expr: "MyList"},
	}, nil)

	assert.Equal(t, []pyImport{typingImport("Tuple")}, mapper.mapType(models.Named("pkg.Pair"), "m").imports)
	assert.Empty(t, mapper.mapType(models.Named("pkg.Table"), "m").imports)
}

func TestIncompatibleCycleIsNotMemoizedAsCompatible(t *testing.T) {
	mapper := newTypeMapper(nil, testRegistry())

	// Checking A visits B, which sees A mid-check; B must still end up incompatible
	assert.Equal(t, "Any", mapper.mapType(models.Named("A"), "m").expr)
	assert.Equal(t, "Any", mapper.mapType(models.Named("B"), "m").expr)
}

func TestFieldType(t *testing.T) {
	mapper := newTypeMapper(nil, testRegistry())

	tests := []struct {
		name     string
		field    models.FieldSpec
		expected string
	}{
		{
			name:     "untyped",
			field:    models.FieldSpec{Name: "f"},
			expected: "Any",
		},
		{
			name:     "sentinel default overrides type",
			field:    models.FieldSpec{Name: "f", Type: models.Primitive("int"), Default: models.Sentinel("pesky")},
			expected: "Any",
		},
		{
			name:     "none default wraps in optional",
			field:    models.FieldSpec{Name: "f", Type: models.Primitive("str"), Default: models.Literal(models.Null())},
			expected: "Optional[str]",
		},
		{
			name:     "none default on optional stays",
			field:    models.FieldSpec{Name: "f", Type: models.OptionalOf(models.Primitive("str")), Default: models.Literal(models.Null())},
			expected: "Optional[str]",
		},
		{
			name:     "none default on union with none stays",
			field:    models.FieldSpec{Name: "f", Type: models.UnionOf(models.Primitive("str"), models.None()), Default: models.Literal(models.Null())},
			expected: "Optional[str]",
		},
		{
			name:     "none default on any stays any",
			field:    models.FieldSpec{Name: "f", Type: models.Named("Lib"), Default: models.Literal(models.Null())},
			expected: "Any",
		},
		{
			name:     "none default on union",
			field:    models.FieldSpec{Name: "f", Type: models.UnionOf(models.Primitive("int"), models.Primitive("str")), Default: models.Literal(models.Null())},
			expected: "Optional[Union[int, str]]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mapper.fieldType(tt.field, "m").expr)
		})
	}
}
