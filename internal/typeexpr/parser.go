// Package typeexpr parses Python-style type annotations ("Union[int, float]",
// "Optional[List[str]]", "int | None") into models.TypeRef values.
package typeexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
)

// Parser parses annotation strings using alecthomas/participle
type Parser struct {
	parser *participle.Parser[annotation]
}

// annotation is the root of a type annotation: one or more terms joined by '|'
type annotation struct {
	Head *term   `parser:"@@"`
	Tail []*term `parser:"( '|' @@ )*"`
}

// term is a single alternative of an annotation
type term struct {
	Ellipsis bool     `parser:"  @Ellipsis"`
	Quoted   *string  `parser:"| @String"`
	Ref      *typeRef `parser:"| @@"`
}

// typeRef is a dotted name with optional subscript arguments
type typeRef struct {
	Name      []string      `parser:"@Ident ( '.' @Ident )*"`
	Subscript bool          `parser:"( @'['"`
	Args      []*annotation `parser:"  ( @@ ( ',' @@ )* ','? )? ']' )?"`
}

// NewParser creates a new annotation parser
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ellipsis", Pattern: `\.\.\.`},
		{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Punct", Pattern: `[\[\],.|]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	parser := participle.MustBuild[annotation](
		participle.Lexer(lex),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &Parser{parser: parser}
}

var defaultParser = NewParser()

// Parse parses an annotation with the package-level parser.
// An empty or blank annotation means the field is untyped and yields nil.
func Parse(expr string) (*models.TypeRef, error) {
	return defaultParser.Parse(expr)
}

// Parse parses an annotation string into a TypeRef
func (p *Parser) Parse(expr string) (*models.TypeRef, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, nil
	}

	ast, err := p.parser.ParseString("", expr)
	if err != nil {
		return nil, cerrors.NewTypeSyntaxError(expr, err)
	}

	ref, err := convertAnnotation(ast, false)
	if err != nil {
		return nil, cerrors.NewTypeSyntaxError(expr, err)
	}
	return ref, nil
}

func convertAnnotation(a *annotation, inTuple bool) (*models.TypeRef, error) {
	head, err := convertTerm(a.Head, inTuple && len(a.Tail) == 0)
	if err != nil {
		return nil, err
	}
	if len(a.Tail) == 0 {
		return head, nil
	}

	members := []*models.TypeRef{head}
	for _, t := range a.Tail {
		m, err := convertTerm(t, false)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return models.UnionOf(members...), nil
}

func convertTerm(t *term, allowEllipsis bool) (*models.TypeRef, error) {
	switch {
	case t.Ellipsis:
		if !allowEllipsis {
			return nil, fmt.Errorf("'...' is only allowed as the last Tuple argument")
		}
		return models.Named(EllipsisName), nil
	case t.Quoted != nil:
		name, err := strconv.Unquote(normalizeQuotes(*t.Quoted))
		if err != nil {
			return nil, fmt.Errorf("invalid forward reference %s: %w", *t.Quoted, err)
		}
		// Forward references are annotations themselves
		inner, err := Parse(name)
		if err != nil {
			return nil, err
		}
		if inner == nil {
			return nil, fmt.Errorf("empty forward reference")
		}
		return inner, nil
	default:
		return convertRef(t.Ref)
	}
}

// EllipsisName is the Named placeholder used for the "..." in Tuple[X, ...]
const EllipsisName = "..."

func convertRef(r *typeRef) (*models.TypeRef, error) {
	name := canonicalName(strings.Join(r.Name, "."))

	args := make([]*models.TypeRef, 0, len(r.Args))
	for i, a := range r.Args {
		arg, err := convertAnnotation(a, name == "Tuple" && i == len(r.Args)-1 && i > 0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	switch name {
	case "None":
		return models.None(), nil
	case "Any":
		return models.Any(), nil
	case models.PrimitiveInt, models.PrimitiveFloat, models.PrimitiveBool, models.PrimitiveStr, models.PrimitiveBytes:
		if r.Subscript {
			return nil, fmt.Errorf("'%s' does not take type arguments", name)
		}
		return models.Primitive(name), nil
	case "Union":
		if len(args) == 0 {
			return nil, fmt.Errorf("Union requires at least one argument")
		}
		return models.UnionOf(args...), nil
	case "Optional":
		if len(args) != 1 {
			return nil, fmt.Errorf("Optional takes exactly one argument, got %d", len(args))
		}
		return models.OptionalOf(args[0]), nil
	case "List":
		switch len(args) {
		case 0:
			return models.ListOf(nil), nil
		case 1:
			return models.ListOf(args[0]), nil
		default:
			return nil, fmt.Errorf("List takes one argument, got %d", len(args))
		}
	case "Dict":
		switch len(args) {
		case 0:
			return models.DictOf(nil, nil), nil
		case 2:
			return models.DictOf(args[0], args[1]), nil
		default:
			return nil, fmt.Errorf("Dict takes two arguments, got %d", len(args))
		}
	case "Tuple":
		return models.TupleOf(args...), nil
	case "Literal", "Callable", "Type", "ClassVar", "Final":
		// Meaningful to a type checker, not to a structured config
		return models.Any(), nil
	default:
		// Generic user classes lose their parameters; the mapper only needs the name
		return models.Named(name), nil
	}
}

// canonicalName strips the typing module prefix and folds builtin aliases
func canonicalName(name string) string {
	for _, prefix := range []string{"typing.", "typing_extensions.", "builtins.", "collections.abc."} {
		name = strings.TrimPrefix(name, prefix)
	}
	switch name {
	case "NoneType":
		return "None"
	case "any", "object":
		return "Any"
	case "list", "Sequence", "MutableSequence":
		return "List"
	case "dict", "Mapping", "MutableMapping":
		return "Dict"
	case "tuple":
		return "Tuple"
	default:
		return name
	}
}

// normalizeQuotes turns a single-quoted forward reference into a Go-quotable one
func normalizeQuotes(s string) string {
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return `"` + s[1:len(s)-1] + `"`
	}
	return s
}
