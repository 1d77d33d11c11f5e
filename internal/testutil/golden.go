// Package testutil provides golden-file and fixture helpers shared by tests.
package testutil

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/tools/txtar"
)

// Update rewrites golden files instead of comparing against them
var Update = flag.Bool("update", false, "update golden files")

// Diff returns a unified line diff between want and got, or "" when equal
func Diff(wantName, gotName, want, got string) string {
	if want == got {
		return ""
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: wantName,
		ToFile:   gotName,
		Context:  3,
	})
	if err != nil {
		return err.Error()
	}
	return diff
}

// AssertGolden compares got with the golden file at path. With -update the
// golden file is (re)written and the comparison is skipped.
func AssertGolden(t *testing.T, path, got string) {
	t.Helper()

	if *Update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("create golden dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("write golden %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v (run with -update to create it)", path, err)
	}

	if diff := Diff(path, "generated", string(want), got); diff != "" {
		t.Errorf("output does not match %s:\n%s", path, diff)
	}
}

// ExtractTxtar writes every file of the txtar archive at path into a fresh
// temporary directory and returns that directory
func ExtractTxtar(t *testing.T, path string) string {
	t.Helper()

	ar, err := txtar.ParseFile(path)
	if err != nil {
		t.Fatalf("parse txtar %s: %v", path, err)
	}

	dir := t.TempDir()
	for _, f := range ar.Files {
		target := filepath.Join(dir, filepath.FromSlash(f.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			t.Fatalf("create %s: %v", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, f.Data, 0644); err != nil {
			t.Fatalf("write %s: %v", target, err)
		}
	}
	return dir
}
