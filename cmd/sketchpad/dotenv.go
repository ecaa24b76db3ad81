// ABOUTME: Loads environment variables from .env files at startup.
// ABOUTME: Sets variables only when not already present in the environment (no clobber).
package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadDotEnv reads a .env file and sets any variables not already in the environment.
// Missing or unreadable files are silently ignored.
func loadDotEnv(path string) {
	_ = godotenv.Load(path)
}

// loadDotEnvAuto loads .env files from common locations without clobbering
// existing environment variables. Search order:
//  1. .env in current directory and its parents
//  2. .env next to the current executable
func loadDotEnvAuto() {
	for _, p := range dotEnvCandidates() {
		loadDotEnv(p)
	}
}

// dotEnvCandidates lists .env paths in load order, without duplicates.
// Earlier files win because later loads never override.
func dotEnvCandidates() []string {
	seen := map[string]bool{}
	var paths []string

	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for {
			add(filepath.Join(dir, ".env"))
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if exe, err := os.Executable(); err == nil {
		add(filepath.Join(filepath.Dir(exe), ".env"))
	}
	return paths
}
