package generator

import (
	"regexp"
	"strings"

	"github.com/toyz/configen/internal/config"
	"github.com/toyz/configen/internal/models"
	"github.com/toyz/configen/internal/typeexpr"
)

const anyType = "Any"

// typingModule provides Any and the generic aliases used in mapped types
const typingModule = "typing"

// pyType is a mapped Python type expression plus what the mapping learned
// along the way
type pyType struct {
	expr     string
	optional bool // already admits None
	enum     bool // names an enum class
	degraded bool // some non-Any declaration fell back to Any
	imports  []pyImport
}

func (t pyType) isAny() bool {
	return t.expr == anyType
}

func anyPy(degraded bool) pyType {
	return pyType{expr: anyType, degraded: degraded, imports: []pyImport{typingImport(anyType)}}
}

func typingImport(name string) pyImport {
	return pyImport{Module: typingModule, Name: name}
}

// generic wraps the expressions of args in a typing alias
func generic(alias string, args ...pyType) pyType {
	out := pyType{imports: []pyImport{typingImport(alias)}}
	exprs := make([]string, len(args))
	for i, arg := range args {
		exprs[i] = arg.expr
		out.degraded = out.degraded || arg.degraded
		out.imports = concatImports(out.imports, arg.imports)
	}
	out.expr = alias + "[" + strings.Join(exprs, ", ") + "]"
	return out
}

// optional wraps t in Optional
func optional(t pyType) pyType {
	out := generic("Optional", t)
	out.optional = true
	return out
}

// ellipsis is the "..." argument of a variadic Tuple
var ellipsis = pyType{expr: "..."}

// typeMapTypingName finds typing aliases in a configured type map expression,
// which is free text rather than a mapped structure
var typeMapTypingName = regexp.MustCompile(`\b(Any|Dict|List|Optional|Tuple|Union)\b`)

// compatState memoizes dataclass compatibility within one generation
type compatState int

const (
	compatUnknown compatState = iota
	compatVisiting
	compatYes
	compatNo
)

// typeMapper translates declared types into Python type expressions. It
// never fails: anything it cannot resolve becomes Any.
type typeMapper struct {
	typeMap  map[string]config.TypeMapping
	resolver classResolver
	compat   map[string]compatState
	depth    int
}

// classResolver is the subset of schema.Resolver the mapper needs
type classResolver interface {
	ResolveClass(module, name string) (models.ClassSchema, error)
}

func newTypeMapper(typeMap map[string]config.TypeMapping, resolver classResolver) *typeMapper {
	return &typeMapper{
		typeMap:  typeMap,
		resolver: resolver,
		compat:   make(map[string]compatState),
	}
}

// fieldType maps a field's declared type, taking its default into account.
// module is the module the field's class is declared in.
func (m *typeMapper) fieldType(f models.FieldSpec, module string) pyType {
	if f.Default.Kind == models.DefaultSentinel {
		return anyPy(false)
	}
	if f.Type == nil {
		return anyPy(false)
	}

	t := m.mapType(f.Type, module)
	if isNullLiteral(f.Default) && !t.isAny() && !t.optional {
		return optional(t)
	}
	return t
}

func isNullLiteral(d models.Default) bool {
	return d.Kind == models.DefaultLiteral && d.Value.Kind == models.ValueNull
}

func (m *typeMapper) mapType(t *models.TypeRef, module string) pyType {
	if t == nil {
		return anyPy(false)
	}

	switch t.Kind {
	case models.TypeAny:
		return anyPy(false)

	case models.TypePrimitive:
		return pyType{expr: t.Name}

	case models.TypeNone:
		// None on its own carries no information for a config field
		return anyPy(false)

	case models.TypeUnion:
		return m.mapUnion(t, module)

	case models.TypeOptional:
		if len(t.Args) != 1 {
			return anyPy(true)
		}
		inner := m.mapType(t.Args[0], module)
		if inner.isAny() || inner.optional {
			return inner
		}
		return optional(inner)

	case models.TypeList:
		if len(t.Args) == 0 {
			return generic("List", anyPy(false))
		}
		return generic("List", m.mapType(t.Args[0], module))

	case models.TypeDict:
		if len(t.Args) != 2 {
			return generic("Dict", anyPy(false), anyPy(false))
		}
		key := m.mapType(t.Args[0], module)
		if !isValidKey(key) {
			key = anyPy(t.Args[0].Kind != models.TypeAny)
		}
		return generic("Dict", key, m.mapType(t.Args[1], module))

	case models.TypeTuple:
		if len(t.Args) == 0 {
			return generic("Tuple", anyPy(false), ellipsis)
		}
		args := make([]pyType, 0, len(t.Args))
		for _, arg := range t.Args {
			if arg.Kind == models.TypeNamed && arg.Name == typeexpr.EllipsisName {
				args = append(args, ellipsis)
				continue
			}
			args = append(args, m.mapType(arg, module))
		}
		return generic("Tuple", args...)

	case models.TypeNamed:
		return m.mapNamed(t.Name, module)

	default:
		return anyPy(true)
	}
}

// mapUnion flattens nested unions and optionals, dedupes members in
// first-seen order and collapses to Any if any member is Any
func (m *typeMapper) mapUnion(t *models.TypeRef, module string) pyType {
	var members []pyType
	seen := make(map[string]bool)
	hasNone := false
	degraded := false

	var collect func(*models.TypeRef) bool
	collect = func(arg *models.TypeRef) bool {
		switch {
		case arg == nil:
			return false
		case arg.Kind == models.TypeNone:
			hasNone = true
			return true
		case arg.Kind == models.TypeUnion:
			for _, a := range arg.Args {
				if !collect(a) {
					return false
				}
			}
			return true
		case arg.Kind == models.TypeOptional && len(arg.Args) == 1:
			hasNone = true
			return collect(arg.Args[0])
		}

		mapped := m.mapType(arg, module)
		if mapped.isAny() {
			degraded = degraded || mapped.degraded
			return false
		}
		if !seen[mapped.expr] {
			seen[mapped.expr] = true
			members = append(members, mapped)
		}
		return true
	}

	for _, arg := range t.Args {
		if !collect(arg) {
			return anyPy(degraded)
		}
	}

	if len(members) == 0 {
		return anyPy(false)
	}

	out := members[0]
	if len(members) > 1 {
		out = generic("Union", members...)
	}
	if hasNone {
		out = optional(out)
	}
	return out
}

// mapNamed resolves a class reference: type map first, then the resolver
func (m *typeMapper) mapNamed(name, module string) pyType {
	if mapping, ok := m.typeMap[name]; ok {
		out := pyType{expr: mapping.Expr}
		for _, alias := range typeMapTypingName.FindAllString(mapping.Expr, -1) {
			out.imports = append(out.imports, typingImport(alias))
		}
		if mapping.Import != "" {
			out.imports = append(out.imports, pyImport{Line: mapping.Import})
		}
		return out
	}

	s, ok := m.lookup(name, module)
	if !ok {
		return anyPy(true)
	}

	switch s.Kind() {
	case models.DeclEnum:
		return pyType{
			expr:    s.Name(),
			enum:    true,
			imports: []pyImport{{Module: s.Module(), Name: s.Name()}},
		}
	case models.DeclDataclass:
		if m.isCompatible(s) {
			return pyType{
				expr:    s.Name(),
				imports: []pyImport{{Module: s.Module(), Name: s.Name()}},
			}
		}
	}
	return anyPy(true)
}

// lookup resolves a possibly dotted class name; bare names resolve in module
func (m *typeMapper) lookup(name, module string) (models.ClassSchema, bool) {
	if m.resolver == nil || name == "" {
		return nil, false
	}

	if i := strings.LastIndex(name, "."); i > 0 {
		if s, err := m.resolver.ResolveClass(name[:i], name[i+1:]); err == nil {
			return s, true
		}
		return nil, false
	}

	s, err := m.resolver.ResolveClass(module, name)
	if err != nil {
		return nil, false
	}
	return s, true
}

// isCompatible reports whether every field of a dataclass maps without
// degrading to Any. Reference cycles count as compatible.
func (m *typeMapper) isCompatible(s models.ClassSchema) bool {
	key := models.QualifiedName(s)
	switch m.compat[key] {
	case compatVisiting, compatYes:
		return true
	case compatNo:
		return false
	}

	m.compat[key] = compatVisiting
	m.depth++
	ok := true
	for _, f := range s.Fields() {
		if f.Type == nil {
			continue
		}
		if m.mapType(f.Type, s.Module()).degraded {
			ok = false
			break
		}
	}
	m.depth--

	switch {
	case !ok:
		m.compat[key] = compatNo
	case m.depth == 0:
		m.compat[key] = compatYes
	default:
		// May rest on an ancestor still being checked; only a top-level
		// answer is final
		delete(m.compat, key)
	}
	return ok
}

func isValidKey(key pyType) bool {
	if key.enum {
		return true
	}
	switch key.expr {
	case models.PrimitiveInt, models.PrimitiveFloat, models.PrimitiveBool, models.PrimitiveStr, models.PrimitiveBytes:
		return true
	}
	return false
}

func concatImports(a, b []pyImport) []pyImport {
	if len(b) == 0 {
		return a
	}
	out := make([]pyImport, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
