package schema

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
)

func decl(module, name string) *models.ClassDecl {
	return &models.ClassDecl{ModuleName: module, ClassName: name}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry().MustRegister(
		decl("a.b", "First"),
		decl("a.b", "Second"),
		decl("c", "Other"),
	)

	s, err := r.ResolveClass("a.b", "Second")
	require.NoError(t, err)
	assert.Equal(t, "Second", s.Name())
	assert.Equal(t, "a.b.Second", models.QualifiedName(s))

	assert.Equal(t, []string{"a.b", "c"}, r.Modules())
	assert.Equal(t, []string{"First", "Second"}, r.Classes("a.b"))
	assert.Nil(t, r.Classes("missing"))
}

func TestRegistryClassNotFound(t *testing.T) {
	r := NewRegistry().MustRegister(decl("a.b", "IntArg"))

	_, err := r.ResolveClass("a.b", "IntArgs")
	require.Error(t, err)

	var notFound *cerrors.ClassNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "a.b", notFound.Module)
	assert.Equal(t, "IntArgs", notFound.Class)
	assert.Equal(t, cerrors.ClassNotFoundErrorCode, cerrors.CodeOf(err))
	assert.Contains(t, notFound.Suggestions(), "Did you mean 'IntArg'?")
}

func TestRegistryModuleNotFound(t *testing.T) {
	r := NewRegistry().MustRegister(decl("a.b", "IntArg"))

	_, err := r.ResolveClass("a.c", "IntArg")
	require.Error(t, err)

	var notFound *cerrors.ModuleNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "a.c", notFound.Module)
}

func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(decl("m", "A")))

	err := r.Register(decl("m", "A"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	assert.Panics(t, func() { r.MustRegister(decl("m", "A")) })
}

func TestRegistryRejectsEmptyName(t *testing.T) {
	err := NewRegistry().Register(decl("m", ""))
	require.Error(t, err)
	assert.Equal(t, cerrors.SchemaErrorCode, cerrors.CodeOf(err))
}

func TestRegistryMerge(t *testing.T) {
	a := NewRegistry().MustRegister(decl("m", "A"))
	b := NewRegistry().MustRegister(decl("m", "B"), decl("n", "C"))

	require.NoError(t, a.Merge(b))
	assert.Equal(t, []string{"A", "B"}, a.Classes("m"))
	assert.Equal(t, []string{"C"}, a.Classes("n"))

	assert.Error(t, a.Merge(b), "merging the same classes twice should fail")
}

func TestRegistryConcurrentReads(t *testing.T) {
	r := NewRegistry().MustRegister(decl("m", "A"), decl("m", "B"))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, err := r.ResolveClass("m", "B")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestChain(t *testing.T) {
	first := NewRegistry().MustRegister(decl("m", "A"))
	second := NewRegistry().MustRegister(decl("m", "B"), decl("other", "C"))
	chain := Chain{first, second}

	s, err := chain.ResolveClass("m", "B")
	require.NoError(t, err)
	assert.Equal(t, "B", s.Name())

	s, err = chain.ResolveClass("other", "C")
	require.NoError(t, err)
	assert.Equal(t, "C", s.Name())

	t.Run("class missing in known module", func(t *testing.T) {
		_, err := chain.ResolveClass("m", "Z")
		var notFound *cerrors.ClassNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "Z", notFound.Class)
	})

	t.Run("unknown module", func(t *testing.T) {
		_, err := chain.ResolveClass("nope", "A")
		var notFound *cerrors.ModuleNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Contains(t, err.Error(), "nope")
	})
}
