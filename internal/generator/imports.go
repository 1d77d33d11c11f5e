package generator

import (
	"fmt"
	"sort"
	"strings"
)

// pyImport is one name a generated file needs in scope: either a class
// imported from a module, or a raw import line from the type map
type pyImport struct {
	Module string
	Name   string
	Line   string
}

// ImportManager collects and deduplicates the imports of one generated file
type ImportManager struct {
	typingNames map[string]bool
	fromImports map[string]map[string]bool // module -> names
	rawLines    map[string]bool
}

// NewImportManager creates an empty import manager
func NewImportManager() *ImportManager {
	return &ImportManager{
		typingNames: make(map[string]bool),
		fromImports: make(map[string]map[string]bool),
		rawLines:    make(map[string]bool),
	}
}

// AddFrom records "from module import name". Names from typing are kept
// apart and written on their own line ahead of the module imports.
func (im *ImportManager) AddFrom(module, name string) {
	if module == "" || name == "" {
		return
	}
	if module == typingModule {
		im.typingNames[name] = true
		return
	}
	names, ok := im.fromImports[module]
	if !ok {
		names = make(map[string]bool)
		im.fromImports[module] = names
	}
	names[name] = true
}

// AddLine records a raw import line
func (im *ImportManager) AddLine(line string) {
	if line = strings.TrimSpace(line); line != "" {
		im.rawLines[line] = true
	}
}

// Add records every import in imports
func (im *ImportManager) Add(imports []pyImport) {
	for _, imp := range imports {
		if imp.Line != "" {
			im.AddLine(imp.Line)
			continue
		}
		im.AddFrom(imp.Module, imp.Name)
	}
}

// GenerateImports generates the import section. The dataclass and MISSING
// imports are always present; the rest are sorted.
func (im *ImportManager) GenerateImports() string {
	var b strings.Builder

	b.WriteString("from dataclasses import dataclass, field\n")
	b.WriteString("from omegaconf import MISSING\n")

	if len(im.typingNames) > 0 {
		fmt.Fprintf(&b, "from typing import %s\n", strings.Join(sortedKeys(im.typingNames), ", "))
	}

	modules := make([]string, 0, len(im.fromImports))
	for module := range im.fromImports {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	for _, module := range modules {
		fmt.Fprintf(&b, "from %s import %s\n", module, strings.Join(sortedKeys(im.fromImports[module]), ", "))
	}

	for _, line := range sortedKeys(im.rawLines) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
