//go:build integration

package main

import (
	"path/filepath"
	"testing"
	"time"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

func sleepBriefly() {
	time.Sleep(10 * time.Millisecond)
}
