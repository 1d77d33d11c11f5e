package cli

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Placeholders understood in module_path_pattern
const (
	modulePathPlaceholder = "{{module_path}}"
	moduleNamePlaceholder = "{{module_name}}"
)

// ModuleResolver maps dotted module names to output file paths
type ModuleResolver struct {
	outputDir string
	pattern   string
}

// NewModuleResolver creates a resolver placing files under outputDir
func NewModuleResolver(outputDir, pattern string) *ModuleResolver {
	return &ModuleResolver{outputDir: outputDir, pattern: pattern}
}

// ResolveOutputPath returns the file a module is written to. For "a.b.c",
// module_path is "a/b" and module_name is "c"; a single-segment module has
// an empty module_path.
func (r *ModuleResolver) ResolveOutputPath(module string) (string, error) {
	modulePath, moduleName := SplitModuleName(module)
	if moduleName == "" {
		return "", fmt.Errorf("invalid module name '%s'", module)
	}

	if strings.HasPrefix(r.pattern, "/") {
		return "", fmt.Errorf("module path pattern must be relative: %s", r.pattern)
	}

	rel := strings.ReplaceAll(r.pattern, modulePathPlaceholder, modulePath)
	rel = strings.ReplaceAll(rel, moduleNamePlaceholder, moduleName)
	// An empty module_path leaves a leading slash behind
	rel = filepath.Clean(filepath.FromSlash(strings.TrimLeft(rel, "/")))

	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("module '%s' resolves outside the output directory: %s", module, rel)
	}

	return filepath.Join(r.outputDir, rel), nil
}

// SplitModuleName splits a dotted module into its parent path (slash
// separated) and last segment
func SplitModuleName(module string) (string, string) {
	i := strings.LastIndex(module, ".")
	if i < 0 {
		return "", module
	}
	return strings.ReplaceAll(module[:i], ".", "/"), module[i+1:]
}
