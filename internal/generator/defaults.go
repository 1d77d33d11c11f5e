package generator

import (
	"slices"
	"strings"

	"github.com/toyz/configen/internal/models"
)

// missingMarker is OmegaConf's "value not set yet" marker
const missingMarker = "MISSING"

// pyDefault is a rendered default clause. An empty expr means no clause.
type pyDefault struct {
	expr    string
	imports []pyImport
}

func missingDefault() pyDefault {
	return pyDefault{expr: missingMarker}
}

// renderDefault renders a field default. It never fails: anything without a
// faithful Python form becomes MISSING. required reports whether the field
// must carry a clause even when it has no default.
func (m *typeMapper) renderDefault(d models.Default, module string, required bool) pyDefault {
	switch d.Kind {
	case models.DefaultAbsent:
		if required {
			return missingDefault()
		}
		return pyDefault{}

	case models.DefaultMissing, models.DefaultSentinel:
		return missingDefault()

	case models.DefaultLiteral:
		lit, ok := pyLiteral(d.Value)
		if !ok {
			return missingDefault()
		}
		if d.Value.Kind == models.ValueList || d.Value.Kind == models.ValueMap {
			// Mutable defaults must be built per instance
			return pyDefault{expr: defaultFactory(lit)}
		}
		return pyDefault{expr: lit}

	case models.DefaultEnum:
		s, ok := m.lookup(d.Class, module)
		if !ok || s.Kind() != models.DeclEnum || !slices.Contains(s.Members(), d.Member) {
			return missingDefault()
		}
		return pyDefault{
			expr:    s.Name() + "." + d.Member,
			imports: []pyImport{{Module: s.Module(), Name: s.Name()}},
		}

	case models.DefaultInstance:
		return m.renderInstance(d, module)

	default:
		return missingDefault()
	}
}

// renderInstance renders an instance of a compatible dataclass as a default
// factory calling its constructor with keyword values
func (m *typeMapper) renderInstance(d models.Default, module string) pyDefault {
	s, ok := m.lookup(d.Class, module)
	if !ok || s.Kind() != models.DeclDataclass || !m.isCompatible(s) {
		return missingDefault()
	}

	fieldNames := make([]string, 0, len(s.Fields()))
	for _, f := range s.Fields() {
		fieldNames = append(fieldNames, f.Name)
	}

	args := make([]string, 0, len(d.Values))
	for _, e := range d.Values {
		if e.Key.Kind != models.ValueString || !slices.Contains(fieldNames, e.Key.String) {
			return missingDefault()
		}
		val, ok := pyLiteral(e.Value)
		if !ok {
			return missingDefault()
		}
		args = append(args, pyIdent(e.Key.String)+"="+val)
	}

	call := s.Name() + "(" + strings.Join(args, ", ") + ")"
	return pyDefault{
		expr:    defaultFactory(call),
		imports: []pyImport{{Module: s.Module(), Name: s.Name()}},
	}
}

func defaultFactory(expr string) string {
	return "field(default_factory=lambda: " + expr + ")"
}
