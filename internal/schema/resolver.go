// Package schema resolves class schemas by (module, class) name. Schemas come
// from YAML schema documents, Go source packages (see gosrc), or are
// registered directly.
package schema

import (
	stderrors "errors"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/models"
)

// Resolver looks up a class schema by module and class name. Implementations
// must be safe for concurrent reads once loading has finished.
type Resolver interface {
	ResolveClass(module, name string) (models.ClassSchema, error)
}

// Warner receives non-fatal diagnostics produced while loading schemas
type Warner interface {
	Warn(format string, args ...interface{})
}

type discardWarner struct{}

func (discardWarner) Warn(string, ...interface{}) {}

// Chain tries each resolver in order and returns the first schema found.
// A module unknown to every resolver yields a ModuleNotFoundError; a module
// known to some resolver but lacking the class yields that resolver's
// ClassNotFoundError.
type Chain []Resolver

// ResolveClass implements Resolver
func (c Chain) ResolveClass(module, name string) (models.ClassSchema, error) {
	var classErr error
	var modules []string

	for _, r := range c {
		s, err := r.ResolveClass(module, name)
		if err == nil {
			return s, nil
		}

		var notFound *cerrors.ClassNotFoundError
		if stderrors.As(err, &notFound) {
			if classErr == nil {
				classErr = err
			}
			continue
		}

		var noModule *cerrors.ModuleNotFoundError
		if stderrors.As(err, &noModule) {
			if lister, ok := r.(interface{ Modules() []string }); ok {
				modules = append(modules, lister.Modules()...)
			}
			continue
		}

		return nil, err
	}

	if classErr != nil {
		return nil, classErr
	}
	return nil, cerrors.NewModuleNotFoundError(module, modules)
}
