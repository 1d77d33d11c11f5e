// Package gosrc derives class schemas from Go source packages. Named struct
// types become dataclasses and named basic types with declared constants
// become enums, so Go configuration structs can be mirrored as structured
// config classes.
package gosrc

import (
	"fmt"
	"go/constant"
	"go/types"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/tools/go/packages"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
	"github.com/toyz/configen/internal/schema"
	"github.com/toyz/configen/internal/utils"
)

// DefaultTag is the struct tag holding a field default written as YAML
const DefaultTag = "default"

// Loader loads Go packages into a schema registry
type Loader struct {
	// Dir is the directory the patterns are resolved from
	Dir string
	// Warn receives field-level diagnostics; nil discards them
	Warn schema.Warner

	modulePath string
	enums      map[string]bool // keyed by "pkgpath.Name"
	local      map[string]bool // loaded package paths
}

// Load is a convenience wrapper for (&Loader{Dir: dir}).Load(patterns...)
func Load(dir string, patterns ...string) (*schema.Registry, error) {
	l := &Loader{Dir: dir}
	return l.Load(patterns...)
}

// Load loads the packages matching patterns and returns a registry holding
// one schema per exported struct or enum-like type
func (l *Loader) Load(patterns ...string) (*schema.Registry, error) {
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}
	if l.Warn == nil {
		l.Warn = nopWarner{}
	}

	dir := l.Dir
	if dir == "" {
		dir = "."
	}

	if goMod, err := utils.FindGoModFile(dir); err == nil {
		if path, err := utils.ParseModulePath(goMod); err == nil {
			l.modulePath = path
		}
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, cerrors.WrapParseError(fmt.Sprintf("go packages %s", strings.Join(patterns, " ")), err)
	}

	errs := cerrors.NewMultipleErrors()
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		for _, e := range p.Errors {
			errs.Add(cerrors.NewSchemaError(p.PkgPath, e.Msg, location(e.Pos)))
		}
	})
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	l.local = make(map[string]bool)
	l.enums = make(map[string]bool)
	for _, p := range pkgs {
		l.local[p.PkgPath] = true
		l.collectEnums(p.Types)
	}

	registry := schema.NewRegistry()
	for _, p := range pkgs {
		if err := l.loadPackage(p.Types, registry); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// collectEnums marks every named basic type that has constants of its own type
func (l *Loader) collectEnums(pkg *types.Package) {
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok {
			continue
		}
		if named, ok := c.Type().(*types.Named); ok && named.Obj().Pkg() == pkg {
			l.enums[typeKey(named.Obj())] = true
		}
	}
}

func (l *Loader) loadPackage(pkg *types.Package, registry *schema.Registry) error {
	module := utils.DottedModuleName(l.modulePath, pkg.Path())
	scope := pkg.Scope()

	// Declaration order, not the scope's alphabetical order
	var names []*types.TypeName
	for _, name := range scope.Names() {
		if tn, ok := scope.Lookup(name).(*types.TypeName); ok && tn.Exported() && !tn.IsAlias() {
			names = append(names, tn)
		}
	}
	sort.SliceStable(names, func(i, j int) bool { return names[i].Pos() < names[j].Pos() })

	for _, tn := range names {
		var decl *models.ClassDecl
		switch {
		case l.enums[typeKey(tn)]:
			decl = &models.ClassDecl{
				ModuleName:  module,
				ClassName:   tn.Name(),
				DeclKind:    models.DeclEnum,
				EnumMembers: enumMembers(scope, tn),
			}
		default:
			st, ok := tn.Type().Underlying().(*types.Struct)
			if !ok {
				continue
			}
			decl = &models.ClassDecl{
				ModuleName: module,
				ClassName:  tn.Name(),
				DeclKind:   models.DeclDataclass,
				FieldSpecs: l.structFields(tn, st, make(map[*types.Struct]bool)),
			}
		}
		if err := registry.Register(decl); err != nil {
			return err
		}
	}
	return nil
}

// enumMembers lists the constants of an enum type in declaration order
func enumMembers(scope *types.Scope, tn *types.TypeName) []string {
	var consts []*types.Const
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if !ok || !c.Exported() {
			continue
		}
		if named, ok := c.Type().(*types.Named); ok && named.Obj() == tn {
			consts = append(consts, c)
		}
	}
	sort.SliceStable(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })

	members := make([]string, 0, len(consts))
	for _, c := range consts {
		members = append(members, memberName(c))
	}
	return members
}

// memberName prefers a string constant's value (Color = "RED") over its Go name
func memberName(c *types.Const) string {
	if c.Val().Kind() == constant.String {
		if v := constant.StringVal(c.Val()); isIdentifier(v) {
			return v
		}
	}
	return c.Name()
}

func (l *Loader) structFields(owner *types.TypeName, st *types.Struct, visiting map[*types.Struct]bool) []models.FieldSpec {
	if visiting[st] {
		return nil
	}
	visiting[st] = true
	defer delete(visiting, st)

	var fields []models.FieldSpec
	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i))

		jsonName, skip := jsonFieldName(tag)
		if skip {
			continue
		}

		// Untagged embedded structs are flattened like encoding/json does
		if f.Embedded() && jsonName == "" {
			if inner, ok := f.Type().Underlying().(*types.Struct); ok {
				fields = append(fields, l.structFields(owner, inner, visiting)...)
				continue
			}
		}
		if !f.Exported() {
			continue
		}

		name := jsonName
		if name == "" {
			name = SnakeCase(f.Name())
		}

		spec := models.FieldSpec{Name: name, Type: l.typeRef(f.Type())}

		if text, ok := tag.Lookup(DefaultTag); ok {
			def, err := schema.ParseDefault(text)
			if err != nil {
				l.Warn.Warn("%s.%s: default replaced by MISSING: %v", owner.Name(), f.Name(), err)
				def = models.Missing()
			}
			spec.Default = def
		}

		fields = append(fields, spec)
	}
	return fields
}

// typeRef maps a Go type to the declared-type model
func (l *Loader) typeRef(t types.Type) *models.TypeRef {
	switch tt := t.(type) {
	case *types.Basic:
		return basicRef(tt)

	case *types.Pointer:
		return models.OptionalOf(l.typeRef(tt.Elem()))

	case *types.Slice:
		if b, ok := tt.Elem().(*types.Basic); ok && b.Kind() == types.Byte {
			return models.Primitive(models.PrimitiveBytes)
		}
		return models.ListOf(l.typeRef(tt.Elem()))

	case *types.Array:
		return models.ListOf(l.typeRef(tt.Elem()))

	case *types.Map:
		return models.DictOf(l.typeRef(tt.Key()), l.typeRef(tt.Elem()))

	case *types.Interface:
		return models.Any()

	case *types.Alias:
		return l.typeRef(types.Unalias(tt))

	case *types.Named:
		obj := tt.Obj()
		if obj.Pkg() == nil {
			// error and other universe types
			return models.Any()
		}
		if l.local[obj.Pkg().Path()] {
			if _, isStruct := tt.Underlying().(*types.Struct); isStruct || l.enums[typeKey(obj)] {
				return models.Named(utils.DottedModuleName(l.modulePath, obj.Pkg().Path()) + "." + obj.Name())
			}
			// Local named types without a schema of their own collapse to their underlying type
			return l.typeRef(tt.Underlying())
		}
		return models.Named(utils.DottedModuleName(l.modulePath, obj.Pkg().Path()) + "." + obj.Name())

	default:
		// chan, func, struct literals and type parameters have no config shape
		return models.Any()
	}
}

func typeKey(tn *types.TypeName) string {
	return tn.Pkg().Path() + "." + tn.Name()
}

func basicRef(b *types.Basic) *models.TypeRef {
	info := b.Info()
	switch {
	case info&types.IsBoolean != 0:
		return models.Primitive(models.PrimitiveBool)
	case info&types.IsInteger != 0:
		return models.Primitive(models.PrimitiveInt)
	case info&types.IsFloat != 0:
		return models.Primitive(models.PrimitiveFloat)
	case info&types.IsString != 0:
		return models.Primitive(models.PrimitiveStr)
	default:
		return models.Any()
	}
}

// jsonFieldName returns the name from a json tag and whether the field is skipped
func jsonFieldName(tag reflect.StructTag) (string, bool) {
	value, ok := tag.Lookup("json")
	if !ok {
		return "", false
	}
	if value == "-" {
		return "", true
	}
	name, _, _ := strings.Cut(value, ",")
	return name, false
}

// SnakeCase converts a Go identifier to snake_case, keeping initialisms together
// ("HTTPPort" -> "http_port", "MaxRetries" -> "max_retries")
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}

func location(pos string) cerrors.SourceLocation {
	// go/packages positions look like "file:line:col"
	var loc cerrors.SourceLocation
	parts := strings.Split(pos, ":")
	if len(parts) >= 3 {
		loc.File = filepath.Clean(strings.Join(parts[:len(parts)-2], ":"))
		fmt.Sscanf(parts[len(parts)-2], "%d", &loc.Line)
		fmt.Sscanf(parts[len(parts)-1], "%d", &loc.Column)
	} else {
		loc.File = pos
	}
	return loc
}

type nopWarner struct{}

func (nopWarner) Warn(string, ...interface{}) {}
