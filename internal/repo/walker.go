package repo

import (
	"os"
	"path/filepath"
	"sort"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/codeatlas/codeatlas-go/internal/extract"
)

// excludeDirs are directories never descended into during discovery
var excludeDirs = []string{
	".git",
	"node_modules",
	"vendor",
	"venv",
	".venv",
	"env",
	"__pycache__",
	".pytest_cache",
	".tox",
	".mypy_cache",
	"dist",
	"build",
	".cache",
	".idea",
	".vscode",
}

func shouldSkipDir(name string) bool {
	for _, exclude := range excludeDirs {
		if name == exclude {
			return true
		}
	}
	return false
}

// DiscoverSourceFiles walks one root directory and returns the source files
// eligible for extraction, sorted for deterministic dispatch. A .gitignore
// at the root is honored when present.
func DiscoverSourceFiles(root string) ([]string, error) {
	var matcher *ignore.GitIgnore
	if gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
		matcher = gi
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !extract.IsSourceFile(path) {
			return nil
		}

		if matcher != nil {
			rel, relErr := filepath.Rel(root, path)
			if relErr == nil && matcher.MatchesPath(rel) {
				return nil
			}
		}

		files = append(files, filepath.ToSlash(path))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
