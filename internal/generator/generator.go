package generator

import (
	"strings"

	"github.com/toyz/configen/internal/config"
	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
	"github.com/toyz/configen/internal/schema"
)

// Generator implements the CodeGenerator interface
type Generator struct {
	cfg      config.GenerationConfig
	resolver schema.Resolver
}

// New creates a generator. cfg is copied; resolver must not change while
// generations are running.
func New(cfg config.GenerationConfig, resolver schema.Resolver) *Generator {
	return &Generator{
		cfg:      cfg.Clone(),
		resolver: resolver,
	}
}

// Config returns a copy of the generation options
func (g *Generator) Config() config.GenerationConfig {
	return g.cfg.Clone()
}

// Generate produces the text of one generated module. Every class of spec is
// resolved before anything is emitted; the first one that cannot be resolved
// fails the call and no partial output is returned.
func (g *Generator) Generate(spec config.ModuleSpec) (string, error) {
	if g.resolver == nil {
		return "", cerrors.New(cerrors.GenerationErrorCode, "generator has no schema resolver")
	}

	schemas := make([]models.ClassSchema, 0, len(spec.Classes))
	for _, name := range spec.Classes {
		s, err := g.resolver.ResolveClass(spec.Name, name)
		if err != nil {
			return "", err
		}
		schemas = append(schemas, s)
	}

	// Per-call state: imports and the compatibility memo
	imports := NewImportManager()
	emitter := &classEmitter{
		mapper:  newTypeMapper(g.cfg.TypeMap, g.resolver),
		imports: imports,
		suffix:  g.cfg.ClassSuffix,
		target:  g.cfg.Target,
	}

	blocks := make([]string, 0, len(schemas))
	for _, s := range schemas {
		blocks = append(blocks, emitter.emit(s))
	}

	var b strings.Builder
	if g.cfg.Header != "" {
		b.WriteString(g.cfg.Header)
		if !strings.HasSuffix(g.cfg.Header, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	b.WriteString(imports.GenerateImports())
	for _, block := range blocks {
		b.WriteString("\n\n")
		b.WriteString(block)
	}

	return b.String(), nil
}

// GenerateModule wraps Generate's output in a GeneratedModule
func (g *Generator) GenerateModule(spec config.ModuleSpec) (*models.GeneratedModule, error) {
	content, err := g.Generate(spec)
	if err != nil {
		return nil, err
	}
	return &models.GeneratedModule{
		Module:  spec.Name,
		Classes: append([]string(nil), spec.Classes...),
		Content: content,
	}, nil
}
