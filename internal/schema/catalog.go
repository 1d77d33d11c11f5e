package schema

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	cerrors "github.com/toyz/configen/internal/errors"
	"github.com/toyz/configen/internal/utils"
)

// Catalog loads schema documents from directories, caching parsed documents
// by file so repeated loads only re-read files that changed.
type Catalog struct {
	cache *utils.FileCache[*Document]
	warn  Warner
}

// NewCatalog creates a catalog reporting field-level problems to warn
func NewCatalog(warn Warner) *Catalog {
	if warn == nil {
		warn = discardWarner{}
	}
	return &Catalog{
		cache: utils.NewFileCache[*Document](),
		warn:  warn,
	}
}

// Load walks dirs for *.yaml and *.yml schema documents and registers every
// class they declare into a fresh Registry. Files are visited in lexical
// order so duplicate-class errors are reported deterministically.
func (c *Catalog) Load(dirs ...string) (*Registry, error) {
	files, err := findDocuments(dirs)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	errs := cerrors.NewMultipleErrors()

	for _, path := range files {
		doc, err := c.cache.GetOrLoad(path, func(p string) (*Document, error) {
			return LoadFile(p, c.warn)
		})
		if err != nil {
			errs.Add(err)
			continue
		}
		if err := doc.Register(registry); err != nil {
			errs.Add(err)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return registry, nil
}

// findDocuments lists schema document files under dirs, skipping hidden directories
func findDocuments(dirs []string) ([]string, error) {
	var files []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, cerrors.WrapFileSystemError("stat", dir, err)
		}
		if !info.IsDir() {
			if isDocument(dir) {
				files = append(files, dir)
			}
			continue
		}

		err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isDocument(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, cerrors.WrapFileSystemError("walk", dir, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

func isDocument(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".yaml" || ext == ".yml"
}
