package docgen

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// ScanConfig parameterizes the Source Scanner.
type ScanConfig struct {
	IncludeExtensions []string // dotted, lowercase, e.g. ".ts"
	ExcludeDirs       []string // directory names, matched case-insensitively
	IgnorePatterns    []string // gitignore-style, matched against the posix rel path
}

// ScanSourceFiles walks root and returns every SourceFile matching cfg.
// Emission order follows filepath.WalkDir's lexical traversal; callers must
// not rely on any particular order beyond that.
func ScanSourceFiles(root string, cfg ScanConfig) ([]SourceFile, error) {
	include := make(map[string]struct{}, len(cfg.IncludeExtensions))
	for _, e := range cfg.IncludeExtensions {
		include[strings.ToLower(e)] = struct{}{}
	}
	exclude := make(map[string]struct{}, len(cfg.ExcludeDirs))
	for _, d := range cfg.ExcludeDirs {
		exclude[strings.ToLower(d)] = struct{}{}
	}

	var ignore *gitignore.GitIgnore
	if len(cfg.IgnorePatterns) > 0 {
		ignore = gitignore.CompileIgnoreLines(cfg.IgnorePatterns...)
	}

	var out []SourceFile

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}

		if d.IsDir() {
			if _, skip := exclude[strings.ToLower(d.Name())]; skip {
				return filepath.SkipDir
			}
			return nil
		}

		for _, part := range strings.Split(rel, string(filepath.Separator)) {
			if _, skip := exclude[strings.ToLower(part)]; skip {
				return nil
			}
		}

		relPosix := filepath.ToSlash(rel)
		if ignore != nil && ignore.MatchesPath(relPosix) {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := include[ext]; !ok {
			return nil
		}

		out = append(out, SourceFile{
			AbsPath: path,
			RelPath: rel,
			Ext:     ext,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
