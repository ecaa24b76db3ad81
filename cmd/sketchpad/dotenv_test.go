// ABOUTME: Tests for the .env loader covering plain values, quotes, comments, and no-clobber behavior.
// ABOUTME: Runs against temp directories with t.Chdir and t.Setenv for isolation.
package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempEnv(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func unsetForTest(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDotEnvSetsVariables(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_A=hello\n# comment\n\nexport TEST_DOTENV_B=\"quoted value\"\n")
	unsetForTest(t, "TEST_DOTENV_A", "TEST_DOTENV_B")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_A"); got != "hello" {
		t.Errorf("expected TEST_DOTENV_A=hello, got %q", got)
	}
	if got := os.Getenv("TEST_DOTENV_B"); got != "quoted value" {
		t.Errorf("expected TEST_DOTENV_B='quoted value', got %q", got)
	}
}

func TestLoadDotEnvDoesNotClobber(t *testing.T) {
	path := writeTempEnv(t, "TEST_DOTENV_KEEP=from-file\n")
	t.Setenv("TEST_DOTENV_KEEP", "from-env")

	loadDotEnv(path)

	if got := os.Getenv("TEST_DOTENV_KEEP"); got != "from-env" {
		t.Errorf("expected existing value preserved, got %q", got)
	}
}

func TestLoadDotEnvMissingFileIsIgnored(t *testing.T) {
	loadDotEnv(filepath.Join(t.TempDir(), "nope.env"))
}

func TestDotEnvCandidatesWalkUpFromWorkingDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(nested)

	paths := dotEnvCandidates()
	if len(paths) < 3 {
		t.Fatalf("expected at least 3 candidates, got %v", paths)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if paths[0] != filepath.Join(wd, ".env") {
		t.Errorf("expected first candidate in working dir, got %q", paths[0])
	}
	if paths[1] != filepath.Join(filepath.Dir(wd), ".env") {
		t.Errorf("expected second candidate in parent dir, got %q", paths[1])
	}

	seen := map[string]bool{}
	for _, p := range paths {
		if seen[p] {
			t.Errorf("duplicate candidate %q", p)
		}
		seen[p] = true
	}
}
