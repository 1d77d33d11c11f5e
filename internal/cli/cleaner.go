package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/toyz/configen/internal/config"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	resolver *ModuleResolver
	header   string
}

// NewCleaner creates a cleaner for the modules configured in f
func NewCleaner(f *config.File) *Cleaner {
	return &Cleaner{
		resolver: NewModuleResolver(f.ResolvePath(f.OutputDir), f.ModulePathPattern),
		header:   f.Header,
	}
}

// CleanGeneratedFiles removes the output file of every module in specs and
// returns the removed paths. Files that do not start with the configured
// header were not written by configen and are left alone.
func (c *Cleaner) CleanGeneratedFiles(specs []config.ModuleSpec) ([]string, error) {
	var removedFiles []string

	for _, spec := range specs {
		path, err := c.resolver.ResolveOutputPath(spec.Name)
		if err != nil {
			return removedFiles, err
		}

		removed, err := c.cleanFile(path)
		if err != nil {
			return removedFiles, fmt.Errorf("failed to clean module %s: %w", spec.Name, err)
		}
		if removed {
			removedFiles = append(removedFiles, path)
		}
	}

	return removedFiles, nil
}

// cleanFile removes path if it looks generated
func (c *Cleaner) cleanFile(path string) (bool, error) {
	generated, err := c.isGenerated(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil // File doesn't exist, nothing to clean
		}
		return false, fmt.Errorf("failed to check file %s: %w", path, err)
	}
	if !generated {
		return false, nil
	}

	if err := os.Remove(path); err != nil {
		return false, fmt.Errorf("failed to remove file %s: %w", path, err)
	}
	return true, nil
}

// isGenerated reports whether the file starts with the header. With an empty
// header every file is treated as generated.
func (c *Cleaner) isGenerated(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if c.header == "" {
		return true, nil
	}

	prefix := make([]byte, len(c.header))
	if _, err := io.ReadFull(f, prefix); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(prefix, []byte(c.header)), nil
}
