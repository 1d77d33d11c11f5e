package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/toyz/configen/internal/models"
)

// pythonKeywords are reserved words in Python that cannot name a field.
// Soft keywords (match, case, type) are valid identifiers and pass through.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// pyIdent converts a name to a valid Python identifier: invalid characters
// become underscores, a leading digit gets an underscore prefix and keywords
// get an underscore suffix
func pyIdent(s string) string {
	if s == "" {
		return "_"
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	ident := b.String()
	if pythonKeywords[ident] {
		return ident + "_"
	}
	return ident
}

// targetField names the instantiation target in Hydra structured configs
const targetField = "_target_"

// classEmitter renders one @dataclass block per class schema
type classEmitter struct {
	mapper  *typeMapper
	imports *ImportManager
	suffix  string
	target  bool
}

// emit renders the class block for s. Field problems degrade only the
// field concerned; emission itself cannot fail.
func (e *classEmitter) emit(s models.ClassSchema) string {
	var b strings.Builder

	b.WriteString("@dataclass\n")
	fmt.Fprintf(&b, "class %s:\n", pyIdent(s.Name()+e.suffix))

	lines := 0
	hasDefault := false
	names := make(map[string]bool)

	if e.target {
		// A module name without a str literal still leaves a valid field
		target, ok := pyString(models.QualifiedName(s))
		if !ok {
			target = missingMarker
		}
		fmt.Fprintf(&b, "    %s: str = %s\n", targetField, target)
		names[targetField] = true
		lines++
		hasDefault = true
	}

	for _, f := range s.Fields() {
		typ := e.mapper.fieldType(f, s.Module())
		def := e.mapper.renderDefault(f.Default, s.Module(), hasDefault)

		e.imports.Add(typ.imports)
		e.imports.Add(def.imports)

		name := uniqueIdent(pyIdent(f.Name), names)
		if def.expr == "" {
			fmt.Fprintf(&b, "    %s: %s\n", name, typ.expr)
		} else {
			fmt.Fprintf(&b, "    %s: %s = %s\n", name, typ.expr, def.expr)
			hasDefault = true
		}
		lines++
	}

	if lines == 0 {
		b.WriteString("    pass\n")
	}

	return b.String()
}

// uniqueIdent appends underscores to ident until it is not in used, then
// marks the result as used
func uniqueIdent(ident string, used map[string]bool) string {
	for used[ident] {
		ident += "_"
	}
	used[ident] = true
	return ident
}
