package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/utils"
)

const appSchema = `module: my_app.config
classes:
  - name: Level
    kind: enum
    members: [DEBUG, INFO]
  - name: AppConfig
    fields:
      - name: name
        type: str
      - name: level
        type: Level
        default: !enum Level.INFO
  - name: DbConfig
    fields:
      - name: url
        type: str
        default: sqlite://
`

const workerSchema = `module: worker
classes:
  - name: Worker
    fields:
      - name: threads
        type: int
        default: 4
`

func writeProject(t *testing.T, configYAML string) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "schemas"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "app.yaml"), []byte(appSchema), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "worker.yaml"), []byte(workerSchema), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configen.yaml"), []byte(configYAML), 0644))
	return dir
}

func quietRunner(cfg Config) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	r := NewRunner(cfg, diagnostics)
	r.SetOutput(&stdout, &stderr)
	return r, &stdout, &stderr
}

func TestRunnerRun(t *testing.T) {
	dir := writeProject(t, `
output_dir: gen
modules:
  - name: my_app.config
    classes: [AppConfig, DbConfig]
  - name: worker
    classes: [Worker]
`)

	r, _, _ := quietRunner(Config{ConfigDir: dir, ConfigName: "configen"})
	require.NoError(t, r.Run(context.Background()))

	appFile := filepath.Join(dir, "gen", "my_app", "conf", "config.py")
	workerFile := filepath.Join(dir, "gen", "conf", "worker.py")

	summary := r.GetSummary()
	assert.Equal(t, 2, summary.Modules)
	assert.Equal(t, []string{appFile, workerFile}, summary.GeneratedFiles)
	assert.Empty(t, summary.Failed)

	app, err := os.ReadFile(appFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(app), "# Generated by configen, do not edit.\n"))
	assert.Contains(t, string(app), "from my_app.config import Level\n")
	assert.Contains(t, string(app), "class AppConfigConf:\n    name: str\n    level: Level = Level.INFO\n")
	assert.Contains(t, string(app), "class DbConfigConf:\n    url: str = \"sqlite://\"\n")
	assert.Less(t, strings.Index(string(app), "AppConfigConf"), strings.Index(string(app), "DbConfigConf"))

	worker, err := os.ReadFile(workerFile)
	require.NoError(t, err)
	assert.Contains(t, string(worker), "    threads: int = 4\n")
}

func TestRunnerSkipsUnchangedFiles(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: worker
    classes: [Worker]
`)

	r, _, _ := quietRunner(Config{ConfigDir: dir})
	require.NoError(t, r.Run(context.Background()))
	assert.Len(t, r.GetSummary().GeneratedFiles, 1)

	require.NoError(t, r.Run(context.Background()))
	assert.Empty(t, r.GetSummary().GeneratedFiles)
	assert.Len(t, r.GetSummary().Unchanged, 1)
}

func TestRunnerContinuesPastMissingClass(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: my_app.config
    classes: [AppConfig, Nope]
  - name: worker
    classes: [Worker]
`)

	r, _, stderr := quietRunner(Config{ConfigDir: dir})
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, cerrors.GenerationErrorCode, cerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "1 of 2 modules failed")

	var notFound *cerrors.ClassNotFoundError
	require.True(t, stderrors.As(err, &notFound))
	assert.Equal(t, "Nope", notFound.Class)

	summary := r.GetSummary()
	assert.Equal(t, []string{"my_app.config"}, summary.Failed)
	require.Len(t, summary.GeneratedFiles, 1)
	assert.FileExists(t, filepath.Join(dir, "conf", "worker.py"))
	assert.NoFileExists(t, filepath.Join(dir, "my_app", "conf", "config.py"))

	assert.Contains(t, stderr.String(), "class 'Nope' not found in module 'my_app.config'")
}

func TestRunnerDryRun(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: worker
    classes: [Worker]
`)

	r, stdout, _ := quietRunner(Config{ConfigDir: dir, DryRun: true})
	require.NoError(t, r.Run(context.Background()))

	assert.Contains(t, stdout.String(), filepath.Join(dir, "conf", "worker.py"))
	assert.Contains(t, stdout.String(), "class WorkerConf:")
	assert.NoFileExists(t, filepath.Join(dir, "conf", "worker.py"))
}

func TestRunnerOutputIsIndependentOfConcurrency(t *testing.T) {
	cfgYAML := `
output_dir: out
module_path_pattern: "{{module_path}}/{{module_name}}.py"
modules:
  - name: my_app.config
    classes: [DbConfig, AppConfig]
  - name: worker
    classes: [Worker]
`
	var outputs []string
	for _, limit := range []int{1, 8} {
		dir := writeProject(t, cfgYAML)
		r, stdout, _ := quietRunner(Config{ConfigDir: dir, DryRun: true, Concurrency: limit})
		require.NoError(t, r.Run(context.Background()))
		outputs = append(outputs, strings.ReplaceAll(stdout.String(), dir, "<dir>"))
	}
	assert.Equal(t, outputs[0], outputs[1])
	assert.Less(t, strings.Index(outputs[0], "config.py"), strings.Index(outputs[0], "worker.py"))
}

func TestRunnerCancelled(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: worker
    classes: [Worker]
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _, _ := quietRunner(Config{ConfigDir: dir})
	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.NoFileExists(t, filepath.Join(dir, "conf", "worker.py"))
}

func TestRunnerMissingConfig(t *testing.T) {
	r, _, _ := quietRunner(Config{ConfigDir: t.TempDir()})
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, cerrors.ConfigurationErrorCode, cerrors.CodeOf(err))
}

func TestRunnerBrokenSchema(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: worker
    classes: [Worker]
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schemas", "broken.yaml"), []byte("module: [unclosed\n"), 0644))

	r, _, _ := quietRunner(Config{ConfigDir: dir})
	err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestRunnerClean(t *testing.T) {
	dir := writeProject(t, `
modules:
  - name: my_app.config
    classes: [AppConfig]
  - name: worker
    classes: [Worker]
`)

	r, _, _ := quietRunner(Config{ConfigDir: dir})
	require.NoError(t, r.Run(context.Background()))

	// A hand-written file at a generated location is kept
	handWritten := filepath.Join(dir, "conf", "worker.py")
	require.NoError(t, os.WriteFile(handWritten, []byte("# mine\n"), 0644))

	removed, err := r.Clean(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "my_app", "conf", "config.py")}, removed)
	assert.FileExists(t, handWritten)

	removed, err = r.Clean(context.Background())
	require.NoError(t, err)
	assert.Empty(t, removed)
}
