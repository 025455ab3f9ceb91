// Package testutil locates files shared by the package tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bazelbuild/rules_go/go/tools/bazel"
)

// Path returns the file at parts, relative to the module root. Under Bazel
// it resolves the runfile; otherwise it walks up from the working directory
// to the directory holding go.mod.
func Path(t testing.TB, parts ...string) string {
	t.Helper()
	rel := filepath.Join(parts...)
	if path, err := bazel.Runfile(rel); err == nil {
		return path
	}

	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(dir, rel)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("module root not found for %s", rel)
		}
		dir = parent
	}
}
