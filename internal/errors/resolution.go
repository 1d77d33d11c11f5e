package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ClassNotFoundError is returned when a requested class is absent from its module
type ClassNotFoundError struct {
	*BaseError
	Module    string   // dotted module name that was searched
	Class     string   // requested class name
	Available []string // classes the module does declare
}

// NewClassNotFoundError creates a class resolution error
func NewClassNotFoundError(module, class string, available []string) *ClassNotFoundError {
	sorted := append([]string(nil), available...)
	sort.Strings(sorted)

	base := New(ClassNotFoundErrorCode, fmt.Sprintf("class '%s' not found in module '%s'", class, module)).
		WithContext("module", module).
		WithContext("class", class)

	if match := closestMatch(class, sorted); match != "" {
		base.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", match))
	}
	if len(sorted) > 0 {
		base.WithSuggestion(fmt.Sprintf("Module '%s' declares: %s", module, strings.Join(sorted, ", ")))
	} else {
		base.WithSuggestion(fmt.Sprintf("Module '%s' declares no classes", module))
	}

	return &ClassNotFoundError{
		BaseError: base,
		Module:    module,
		Class:     class,
		Available: sorted,
	}
}

// ModuleNotFoundError is returned when no schema source provides a module
type ModuleNotFoundError struct {
	*BaseError
	Module string
}

// NewModuleNotFoundError creates a module resolution error
func NewModuleNotFoundError(module string, known []string) *ModuleNotFoundError {
	sorted := append([]string(nil), known...)
	sort.Strings(sorted)

	base := New(ModuleNotFoundErrorCode, fmt.Sprintf("module '%s' not found", module)).
		WithContext("module", module).
		WithSuggestions(
			"Check the schema_dirs and go_packages settings",
			"Ensure the schema document declares 'module: "+module+"'",
		)
	if match := closestMatch(module, sorted); match != "" {
		base.WithSuggestion(fmt.Sprintf("Did you mean '%s'?", match))
	}

	return &ModuleNotFoundError{BaseError: base, Module: module}
}

// closestMatch returns the candidate within edit distance 2, case-insensitively
func closestMatch(name string, candidates []string) string {
	best := ""
	bestDist := 3
	lower := strings.ToLower(name)
	for _, c := range candidates {
		d := levenshtein(lower, strings.ToLower(c))
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
