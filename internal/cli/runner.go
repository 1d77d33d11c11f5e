package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/configen/internal/config"
	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/generator"
	"github.com/toyz/configen/internal/schema"
	"github.com/toyz/configen/internal/schema/gosrc"
	"github.com/toyz/configen/internal/utils"
)

// GenerationSummary describes the outcome of a run
type GenerationSummary struct {
	Modules        int
	GeneratedFiles []string
	Unchanged      []string
	Failed         []string
	Duration       time.Duration
}

// Runner drives batch generation from a configuration file
type Runner struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	reporter    *DiagnosticReporter
	catalog     *schema.Catalog
	stdout      io.Writer
	summary     GenerationSummary
}

// moduleResult is one module's generated text or failure, kept by index so
// output order follows the configuration
type moduleResult struct {
	spec    config.ModuleSpec
	content string
	err     error
}

// NewRunner creates a runner. A nil diagnostics system prints at info level.
func NewRunner(cfg Config, diagnostics *utils.DiagnosticSystem) *Runner {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	return &Runner{
		config:      cfg,
		diagnostics: diagnostics,
		reporter:    NewDiagnosticReporter(cfg.Verbose),
		catalog:     schema.NewCatalog(diagnostics),
		stdout:      os.Stdout,
	}
}

// SetOutput redirects dry-run output and error reports
func (r *Runner) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.reporter.SetOutput(stderr)
}

// GetSummary returns the summary of the last run
func (r *Runner) GetSummary() GenerationSummary {
	return r.summary
}

// Run loads the configuration, generates every configured module and writes
// the results. A module that fails is reported and skipped; Run then returns
// an error naming every failed module.
func (r *Runner) Run(ctx context.Context) error {
	startTime := time.Now()
	r.summary = GenerationSummary{}

	r.diagnostics.Verbose("Starting code generation at %s", startTime.Format("15:04:05"))

	file, err := r.loadConfig()
	if err != nil {
		return err
	}

	r.diagnostics.StartProgress("Loading schemas")
	resolver, err := r.buildResolver(file)
	if err != nil {
		r.diagnostics.EndProgress(false, "")
		return err
	}
	r.diagnostics.EndProgress(true, "")

	specs := file.ModuleSpecs()
	r.summary.Modules = len(specs)

	r.diagnostics.StartProgress("Generating modules")
	results, err := r.generate(ctx, generator.New(file.GenerationConfig(), resolver), specs)
	if err != nil {
		r.diagnostics.EndProgress(false, "")
		return err
	}
	r.diagnostics.EndProgress(true, fmt.Sprintf("%d modules", len(specs)))

	paths := NewModuleResolver(file.ResolvePath(file.OutputDir), file.ModulePathPattern)
	failures := cerrors.NewMultipleErrors()

	if !r.config.DryRun {
		r.diagnostics.PhaseHeader("Writing modules")
	}

	for _, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}

		if res.err != nil {
			failure := cerrors.WrapGenerateError(res.spec.Name, res.err)
			r.reporter.ReportError(failure)
			failures.Add(failure)
			r.summary.Failed = append(r.summary.Failed, res.spec.Name)
			continue
		}

		path, err := paths.ResolveOutputPath(res.spec.Name)
		if err != nil {
			return cerrors.Wrap(cerrors.ConfigurationErrorCode, "failed to resolve output path", err).
				WithContext("module", res.spec.Name)
		}

		if r.config.DryRun {
			fmt.Fprintf(r.stdout, "# ---- %s ----\n%s", path, res.content)
			continue
		}

		written, err := writeIfChanged(path, res.content)
		if err != nil {
			return err
		}
		if written {
			r.diagnostics.PhaseProgress(fmt.Sprintf("Writing %s", path))
			r.summary.GeneratedFiles = append(r.summary.GeneratedFiles, path)
		} else {
			r.diagnostics.PhaseItem(fmt.Sprintf("%s unchanged", path))
			r.summary.Unchanged = append(r.summary.Unchanged, path)
		}
	}

	r.summary.Duration = time.Since(startTime)
	r.diagnostics.Summary("Summary", map[string]interface{}{
		"modules":   r.summary.Modules,
		"written":   len(r.summary.GeneratedFiles),
		"unchanged": len(r.summary.Unchanged),
		"failed":    len(r.summary.Failed),
	})

	if !failures.IsEmpty() {
		return cerrors.Newf(cerrors.GenerationErrorCode, "%d of %d modules failed", failures.Count(), len(specs)).
			WithCause(failures)
	}
	return nil
}

// Clean removes the files previously generated for the configured modules
func (r *Runner) Clean(ctx context.Context) ([]string, error) {
	file, err := r.loadConfig()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return NewCleaner(file).CleanGeneratedFiles(file.ModuleSpecs())
}

func (r *Runner) loadConfig() (*config.File, error) {
	r.diagnostics.StartProgress("Loading configuration")
	file, err := config.Load(r.config.ConfigDir, r.config.ConfigName)
	if err != nil {
		r.diagnostics.EndProgress(false, "")
		return nil, err
	}
	r.diagnostics.EndProgress(true, "")
	r.diagnostics.Debug("Configuration directory: %s", file.Dir)
	return file, nil
}

// buildResolver chains the schema documents of schema_dirs with the Go
// packages of go_packages, in that order
func (r *Runner) buildResolver(file *config.File) (schema.Resolver, error) {
	var chain schema.Chain

	if len(file.SchemaDirs) > 0 {
		dirs := make([]string, len(file.SchemaDirs))
		for i, dir := range file.SchemaDirs {
			dirs[i] = file.ResolvePath(dir)
		}
		registry, err := r.catalog.Load(dirs...)
		if err != nil {
			return nil, err
		}
		r.diagnostics.Debug("Schema documents declare modules %v", registry.Modules())
		chain = append(chain, registry)
	}

	if len(file.GoPackages) > 0 {
		loader := &gosrc.Loader{Dir: file.Dir, Warn: r.diagnostics}
		registry, err := loader.Load(file.GoPackages...)
		if err != nil {
			return nil, err
		}
		r.diagnostics.Debug("Go packages declare modules %v", registry.Modules())
		chain = append(chain, registry)
	}

	return chain, nil
}

// generate runs one generation per spec on a bounded errgroup. Generation
// failures are carried in the results; only cancellation aborts the group.
func (r *Runner) generate(ctx context.Context, gen generator.CodeGenerator, specs []config.ModuleSpec) ([]moduleResult, error) {
	limit := r.config.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]moduleResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := gen.Generate(spec)
			results[i] = moduleResult{spec: spec, content: content, err: err}
			if err != nil {
				r.diagnostics.Debug("Module %s failed: %v", spec.Name, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// writeIfChanged writes content to path unless the file already holds it
func writeIfChanged(path, content string) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, []byte(content)) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, cerrors.WrapFileSystemError("create directory for", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, cerrors.WrapFileSystemError("write", path, err)
	}
	return true, nil
}
