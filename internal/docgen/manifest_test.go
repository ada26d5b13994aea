package docgen

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_LoadMissingFileYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	m := NewManifest(filepath.Join(dir, "manifest.json"))
	require.NoError(t, m.Load())
	assert.Equal(t, "", m.GetSHA("a.ts"))
}

func TestManifest_SetAndPersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := NewManifest(path)
	require.NoError(t, m.Load())
	m.SetEntry("a.ts", ManifestEntry{SHA256: "abc123", Model: "llama", UpdatedAt: "2026-01-01T00:00:00Z"})
	require.NoError(t, m.Save())

	reloaded := NewManifest(path)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "abc123", reloaded.GetSHA("a.ts"))
}

func TestManifest_SaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")

	m := NewManifest(path)
	require.NoError(t, m.Load())
	m.SetEntry("a.ts", ManifestEntry{SHA256: "first", Model: "x", UpdatedAt: "t"})
	require.NoError(t, m.Save())

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	// simulate a crash between temp-write and rename: leave only the temp
	// file behind and never rename it over the target.
	m.SetEntry("a.ts", ManifestEntry{SHA256: "second", Model: "x", UpdatedAt: "t"})
	m.mu.Lock()
	raw, err := json.MarshalIndent(m.data, "", "  ")
	m.mu.Unlock()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path+".tmp", raw, 0o644))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after, "on-disk manifest must be unchanged by a crash before rename")
}

func TestManifest_ParseFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	m := NewManifest(path)
	assert.Error(t, m.Load())
}
