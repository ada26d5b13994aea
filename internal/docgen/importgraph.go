package docgen

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	importTSPattern = regexp.MustCompile(`(?m)(^|\n)\s*(import\s+.*?\s+from\s+|export\s+\*\s+from\s+)["']([^"']+)["']`)
	requireTSPattern = regexp.MustCompile(`require\(\s*["']([^"']+)["']\s*\)`)
	importCSSPattern = regexp.MustCompile(`@import\s+["']([^"']+)["']`)
)

// ImportGraph holds the forward (importer -> edges) and reverse
// (target -> edges) adjacency built from a set of source files. Immutable
// after construction.
type ImportGraph struct {
	ImportsOf  map[string][]ImportEdge
	ImportedBy map[string][]ImportEdge
}

// BuildImportGraph resolves textual import/require/@import references across
// files, using srcRoot for alias resolution and aliases as the configured
// prefix -> path-fragment map.
func BuildImportGraph(srcRoot string, files []SourceFile, aliases map[string]string) (*ImportGraph, error) {
	fileSet := make(map[string]struct{}, len(files))
	relByAbs := make(map[string]string, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f.AbsPath)
		if err != nil {
			return nil, err
		}
		fileSet[abs] = struct{}{}
		relByAbs[abs] = f.RelPath
	}

	g := &ImportGraph{
		ImportsOf:  make(map[string][]ImportEdge),
		ImportedBy: make(map[string][]ImportEdge),
	}

	for _, f := range files {
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			continue
		}
		text := string(data)
		baseDir := filepath.Dir(f.AbsPath)

		var raws []string
		for _, m := range importTSPattern.FindAllStringSubmatch(text, -1) {
			raws = append(raws, m[3])
		}
		for _, m := range requireTSPattern.FindAllStringSubmatch(text, -1) {
			raws = append(raws, m[1])
		}
		for _, m := range importCSSPattern.FindAllStringSubmatch(text, -1) {
			raws = append(raws, m[1])
		}

		for _, raw := range raws {
			resolved, ok := resolveImportCandidate(baseDir, raw, srcRoot, aliases)
			if !ok {
				continue
			}

			targetAbs, found := firstMatchingCandidate(resolved, fileSet)
			if !found {
				continue
			}

			targetRel := relByAbs[targetAbs]
			edge := ImportEdge{Src: f.RelPath, Target: targetRel, Raw: raw}
			g.ImportsOf[f.RelPath] = append(g.ImportsOf[f.RelPath], edge)
			g.ImportedBy[targetRel] = append(g.ImportedBy[targetRel], edge)
		}
	}

	return g, nil
}

// resolveImportCandidate applies the alias/relative/external resolution
// order. The returned path is not yet extension-expanded.
func resolveImportCandidate(baseDir, raw, srcRoot string, aliases map[string]string) (string, bool) {
	raw = strings.TrimSpace(raw)

	for prefix, mapped := range aliases {
		if strings.HasPrefix(raw, prefix) {
			parent := filepath.Dir(srcRoot)
			return filepath.Join(parent, mapped, raw[len(prefix):]), true
		}
	}

	if strings.HasPrefix(raw, ".") {
		return filepath.Join(baseDir, raw), true
	}

	return "", false
}

var extensionCandidates = []string{"", ".ts", ".tsx", ".js", ".jsx", ".json", ".css", ".scss", ".md"}
var indexCandidates = []string{"index.ts", "index.tsx", "index.js", "index.jsx"}

// firstMatchingCandidate tries the literal path, each appended extension,
// then each index file inside the path treated as a directory, in that
// order, returning the first absolute form present in fileSet.
func firstMatchingCandidate(resolved string, fileSet map[string]struct{}) (string, bool) {
	for _, ext := range extensionCandidates {
		cand, err := filepath.Abs(resolved + ext)
		if err != nil {
			continue
		}
		if _, ok := fileSet[cand]; ok {
			return cand, true
		}
	}
	for _, idx := range indexCandidates {
		cand, err := filepath.Abs(filepath.Join(resolved, idx))
		if err != nil {
			continue
		}
		if _, ok := fileSet[cand]; ok {
			return cand, true
		}
	}
	return "", false
}
