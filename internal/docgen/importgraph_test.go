package docgen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuildImportGraph_RelativeImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `import { b } from "./b";`)
	writeFile(t, filepath.Join(root, "b.tsx"), `export const b = 1;`)

	files := []SourceFile{
		{AbsPath: filepath.Join(root, "a.ts"), RelPath: "a.ts", Ext: ".ts"},
		{AbsPath: filepath.Join(root, "b.tsx"), RelPath: "b.tsx", Ext: ".tsx"},
	}

	graph, err := BuildImportGraph(root, files, nil)
	require.NoError(t, err)

	require.Len(t, graph.ImportsOf["a.ts"], 1)
	assert.Equal(t, "b.tsx", graph.ImportsOf["a.ts"][0].Target)

	require.Len(t, graph.ImportedBy["b.tsx"], 1)
	assert.Equal(t, "a.ts", graph.ImportedBy["b.tsx"][0].Src)
}

func TestBuildImportGraph_GraphDuality(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `import { b } from "./b";`)
	writeFile(t, filepath.Join(root, "b.tsx"), `export const b = 1;`)

	files := []SourceFile{
		{AbsPath: filepath.Join(root, "a.ts"), RelPath: "a.ts", Ext: ".ts"},
		{AbsPath: filepath.Join(root, "b.tsx"), RelPath: "b.tsx", Ext: ".tsx"},
	}

	graph, err := BuildImportGraph(root, files, nil)
	require.NoError(t, err)

	for _, fwd := range graph.ImportsOf {
		for _, edge := range fwd {
			rev := graph.ImportedBy[edge.Target]
			found := false
			for _, r := range rev {
				if r.Src == edge.Src && r.Raw == edge.Raw {
					found = true
				}
			}
			assert.True(t, found, "every forward edge must have a matching reverse edge")
		}
	}
}

func TestBuildImportGraph_AliasResolution(t *testing.T) {
	projectRoot := t.TempDir()
	srcRoot := filepath.Join(projectRoot, "src")
	writeFile(t, filepath.Join(srcRoot, "a.ts"), `import { x } from "@/x";`)
	writeFile(t, filepath.Join(projectRoot, "lib", "x.ts"), `export const x = 1;`)

	files := []SourceFile{
		{AbsPath: filepath.Join(srcRoot, "a.ts"), RelPath: "a.ts", Ext: ".ts"},
		{AbsPath: filepath.Join(projectRoot, "lib", "x.ts"), RelPath: filepath.Join("..", "lib", "x.ts"), Ext: ".ts"},
	}

	graph, err := BuildImportGraph(srcRoot, files, map[string]string{"@/": "lib"})
	require.NoError(t, err)

	require.Len(t, graph.ImportsOf["a.ts"], 1)
	assert.Equal(t, filepath.Join("..", "lib", "x.ts"), graph.ImportsOf["a.ts"][0].Target)
}

func TestBuildImportGraph_ExternalReferenceProducesNoEdge(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.ts"), `import React from "react";`)

	files := []SourceFile{
		{AbsPath: filepath.Join(root, "a.ts"), RelPath: "a.ts", Ext: ".ts"},
	}

	graph, err := BuildImportGraph(root, files, nil)
	require.NoError(t, err)
	assert.Empty(t, graph.ImportsOf["a.ts"])
}

func TestBuildImportGraph_RequireAndCSSImport(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.js"), `const b = require("./b");`)
	writeFile(t, filepath.Join(root, "b.js"), `module.exports = 1;`)
	writeFile(t, filepath.Join(root, "styles.css"), `@import "./base";`)
	writeFile(t, filepath.Join(root, "base.css"), `body {}`)

	files := []SourceFile{
		{AbsPath: filepath.Join(root, "a.js"), RelPath: "a.js", Ext: ".js"},
		{AbsPath: filepath.Join(root, "b.js"), RelPath: "b.js", Ext: ".js"},
		{AbsPath: filepath.Join(root, "styles.css"), RelPath: "styles.css", Ext: ".css"},
		{AbsPath: filepath.Join(root, "base.css"), RelPath: "base.css", Ext: ".css"},
	}

	graph, err := BuildImportGraph(root, files, nil)
	require.NoError(t, err)

	require.Len(t, graph.ImportsOf["a.js"], 1)
	assert.Equal(t, "b.js", graph.ImportsOf["a.js"][0].Target)

	require.Len(t, graph.ImportsOf["styles.css"], 1)
	assert.Equal(t, "base.css", graph.ImportsOf["styles.css"][0].Target)
}
