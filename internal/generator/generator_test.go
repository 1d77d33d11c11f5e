package generator

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/configen/internal/config"
	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/schema"
	"github.com/toyz/configen/internal/testutil"
)

const testModule = "tests.test_modules"

func loadTestModules(t *testing.T) *schema.Registry {
	t.Helper()

	doc, err := schema.LoadFile(filepath.Join("testdata", "test_modules.yaml"), nil)
	require.NoError(t, err)

	registry := schema.NewRegistry()
	require.NoError(t, doc.Register(registry))
	return registry
}

func testConfig() config.GenerationConfig {
	return config.GenerationConfig{
		Header:      config.DefaultHeader,
		ClassSuffix: config.DefaultClassSuffix,
	}
}

func TestGeneratedCode(t *testing.T) {
	registry := loadTestModules(t)
	gen := New(testConfig(), registry)

	classes := []string{
		"Empty",
		"UntypedArg",
		"IntArg",
		"UnionArg",
		"WithLibraryClassArg",
		"IncompatibleDataclassArg",
		"WithStringDefault",
		"ListValues",
		"DictValues",
		"PeskySentinelUsage",
		"WithDefaults",
	}

	for _, class := range classes {
		t.Run(class, func(t *testing.T) {
			generated, err := gen.Generate(config.ModuleSpec{Name: testModule, Classes: []string{class}})
			require.NoError(t, err)
			testutil.AssertGolden(t, filepath.Join("testdata", "expected", class+".py"), generated)
		})
	}
}

func TestGeneratedCodeWithTarget(t *testing.T) {
	registry := loadTestModules(t)
	cfg := testConfig()
	cfg.Target = true
	gen := New(cfg, registry)

	for _, class := range []string{"Empty", "IntArg", "WithStringDefault"} {
		t.Run(class, func(t *testing.T) {
			generated, err := gen.Generate(config.ModuleSpec{Name: testModule, Classes: []string{class}})
			require.NoError(t, err)
			testutil.AssertGolden(t, filepath.Join("testdata", "expected", "target", class+".py"), generated)
		})
	}
}

func TestGenerateMultipleClasses(t *testing.T) {
	gen := New(testConfig(), loadTestModules(t))

	generated, err := gen.Generate(config.ModuleSpec{
		Name:    testModule,
		Classes: []string{"Empty", "IntArg", "ListValues"},
	})
	require.NoError(t, err)
	testutil.AssertGolden(t, filepath.Join("testdata", "expected", "multi", "Empty_IntArg_ListValues.py"), generated)
}

func TestGenerateIsDeterministic(t *testing.T) {
	registry := loadTestModules(t)
	spec := config.ModuleSpec{
		Name:    testModule,
		Classes: []string{"DictValues", "ListValues", "WithDefaults", "IncompatibleDataclassArg"},
	}

	first, err := New(testConfig(), registry).Generate(spec)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := New(testConfig(), registry).Generate(spec)
		require.NoError(t, err)
		require.Equal(t, first, again, "run %d differs", i)
	}
}

func TestGenerateConcurrentCalls(t *testing.T) {
	gen := New(testConfig(), loadTestModules(t))
	spec := config.ModuleSpec{Name: testModule, Classes: []string{"ListValues", "DictValues"}}

	want, err := gen.Generate(spec)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := gen.Generate(spec)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestGenerateClassNotFound(t *testing.T) {
	gen := New(testConfig(), loadTestModules(t))

	out, err := gen.Generate(config.ModuleSpec{
		Name:    testModule,
		Classes: []string{"IntArg", "NoSuchClass"},
	})
	require.Error(t, err)
	assert.Empty(t, out, "no partial output on failure")

	var notFound *cerrors.ClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, testModule, notFound.Module)
	assert.Equal(t, "NoSuchClass", notFound.Class)
	assert.Contains(t, err.Error(), "NoSuchClass")
	assert.Contains(t, err.Error(), testModule)
}

func TestGenerateModuleNotFound(t *testing.T) {
	gen := New(testConfig(), loadTestModules(t))

	_, err := gen.Generate(config.ModuleSpec{Name: "tests.nowhere", Classes: []string{"IntArg"}})
	require.Error(t, err)
	assert.Equal(t, cerrors.ModuleNotFoundErrorCode, cerrors.CodeOf(err))
}

func TestGenerateWithoutResolver(t *testing.T) {
	_, err := New(testConfig(), nil).Generate(config.ModuleSpec{Name: testModule, Classes: []string{"Empty"}})
	require.Error(t, err)
	assert.Equal(t, cerrors.GenerationErrorCode, cerrors.CodeOf(err))
}

func TestGenerateHeaderHandling(t *testing.T) {
	registry := loadTestModules(t)
	spec := config.ModuleSpec{Name: testModule, Classes: []string{"Empty"}}

	t.Run("header without trailing newline", func(t *testing.T) {
		cfg := testConfig()
		cfg.Header = "# custom header"
		out, err := New(cfg, registry).Generate(spec)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "# custom header\n\nfrom dataclasses import dataclass, field\n"))
	})

	t.Run("empty header", func(t *testing.T) {
		cfg := testConfig()
		cfg.Header = ""
		out, err := New(cfg, registry).Generate(spec)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "from dataclasses import dataclass, field\n"))
	})

	t.Run("ends with a single newline", func(t *testing.T) {
		out, err := New(testConfig(), registry).Generate(spec)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(out, "    pass\n"))
		assert.False(t, strings.HasSuffix(out, "\n\n"))
	})
}

func TestGeneratorCopiesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.TypeMap = map[string]config.TypeMapping{"pathlib.Path": {Expr: "str"}}
	gen := New(cfg, loadTestModules(t))

	cfg.TypeMap["pathlib.Path"] = config.TypeMapping{Expr: "bytes"}
	cfg.ClassSuffix = "Changed"

	got := gen.Config()
	assert.Equal(t, "str", got.TypeMap["pathlib.Path"].Expr)
	assert.Equal(t, config.DefaultClassSuffix, got.ClassSuffix)
}

func TestGenerateModule(t *testing.T) {
	gen := New(testConfig(), loadTestModules(t))

	mod, err := gen.GenerateModule(config.ModuleSpec{Name: testModule, Classes: []string{"IntArg"}})
	require.NoError(t, err)
	assert.Equal(t, testModule, mod.Module)
	assert.Equal(t, []string{"IntArg"}, mod.Classes)
	assert.Contains(t, mod.Content, "class IntArgConf:")
	assert.Empty(t, mod.FilePath)
}
