package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// ParseModulePath extracts the module path from a go.mod file
func ParseModulePath(goModPath string) (string, error) {
	cleanPath := filepath.Clean(goModPath)
	if filepath.Base(cleanPath) != "go.mod" {
		return "", fmt.Errorf("file is not a go.mod file: %s", goModPath)
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read go.mod file: %w", err)
	}

	// Parse using official modfile parser
	modFile, err := modfile.Parse(cleanPath, content, nil)
	if err != nil {
		return "", fmt.Errorf("failed to parse go.mod file: %w", err)
	}

	if modFile.Module == nil {
		return "", fmt.Errorf("no module declaration found in go.mod")
	}

	return modFile.Module.Mod.Path, nil
}

// FindGoModFile searches for go.mod file starting from the given directory and walking up
func FindGoModFile(startDir string) (string, error) {
	currentDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		goModPath := filepath.Join(currentDir, "go.mod")
		if info, err := os.Stat(goModPath); err == nil && !info.IsDir() {
			return goModPath, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return "", fmt.Errorf("go.mod file not found above %s", startDir)
}

// DottedModuleName converts a Go import path into a dotted Python-style
// module name. Packages inside modulePath are named relative to the module's
// last path element ("github.com/acme/shop/conf/db" -> "shop.conf.db");
// anything else keeps its full path ("net/http" -> "net.http").
func DottedModuleName(modulePath, importPath string) string {
	if modulePath != "" {
		if importPath == modulePath || strings.HasPrefix(importPath, modulePath+"/") {
			root := modulePath
			if i := strings.LastIndex(root, "/"); i >= 0 {
				root = root[i+1:]
			}
			rel := strings.TrimPrefix(strings.TrimPrefix(importPath, modulePath), "/")
			if rel == "" {
				return sanitizeSegment(root)
			}
			return sanitizeSegment(root) + "." + dotted(rel)
		}
	}
	return dotted(importPath)
}

func dotted(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = sanitizeSegment(p)
	}
	return strings.Join(parts, ".")
}

// sanitizeSegment makes a path element usable as a dotted name segment
func sanitizeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || r == '-' {
			return '_'
		}
		return r
	}, s)
}
