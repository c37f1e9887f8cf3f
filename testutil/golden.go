// Package testutil provides utilities for golden file testing.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

// UpdateGoldens controls whether to update golden files.
// Set via environment variable: UPDATE_GOLDENS=true go test ./...
var UpdateGoldens = os.Getenv("UPDATE_GOLDENS") == "true"

// GoldenPath returns the path to a golden file.
func GoldenPath(feature, name string) string {
	return filepath.Join("testdata", feature, name+".golden")
}

// Golden compares got with the named golden file, or rewrites the file
// when update mode is on. Mismatches render as a unified diff.
func Golden(t *testing.T, feature, name, got string) {
	t.Helper()

	path := GoldenPath(feature, name)

	if UpdateGoldens {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create golden directory: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		t.Logf("Updated golden file: %s", path)
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("golden file does not exist: %s\nRun with UPDATE_GOLDENS=true to create", path)
		}
		t.Fatalf("failed to read golden file: %v", err)
	}

	if string(want) != got {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(want)),
			B:        difflib.SplitLines(got),
			FromFile: path,
			ToFile:   "got",
			Context:  3,
		})
		t.Errorf("golden file mismatch for %s/%s:\n%s", feature, name, diff)
	}
}
