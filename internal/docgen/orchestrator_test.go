package docgen

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(backend BackendClient) *Orchestrator {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	return NewOrchestrator(backend, nil, logger)
}

func baseRunConfig(srcRoot, outRoot, stateDir string) RunConfig {
	return RunConfig{
		SrcRoot:          srcRoot,
		OutputRoot:       outRoot,
		StateDir:         stateDir,
		Scan:             ScanConfig{IncludeExtensions: []string{".ts", ".tsx"}},
		TemplateMode:     "builtin",
		Language:         "english",
		Tone:             "neutral",
		OutputLayout:     LayoutStemFolder,
		WriteIndex:       true,
		MaxCharsPerChunk: 1_000_000,
		ChunkOverlap:     0,
		SnippetMaxLines:  40,
		MaxSnippetBlocks: 3,
		Routing:          testPolicy(),
		Throttle:         ThrottleConfig{Enabled: false},
		BaseParams:       ChatParams{Temperature: 0.2, TopP: 1, MaxCompletionTokens: 1024},
		MaxConcurrency:   4,
	}
}

func TestOrchestrator_ScenarioS1_FirstRunThenIdempotent(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	stateDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte("hello"), 0o644))

	backend := newScriptedBackend(map[string][]scriptedCall{
		"X": {{text: "doc for a.ts"}},
	})
	o := newTestOrchestrator(backend)
	cfg := baseRunConfig(srcRoot, outRoot, stateDir)

	stats, err := o.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesGenerated)
	assert.Len(t, backend.callLog, 1)

	docPath := filepath.Join(outRoot, "src", "a", "a.md")
	content, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "doc for a.ts")

	// second run: manifest hash matches, output exists -> zero backend calls
	backend2 := newScriptedBackend(nil)
	o2 := newTestOrchestrator(backend2)
	stats2, err := o2.Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, stats2.FilesGenerated)
	assert.Equal(t, 1, stats2.FilesSkipped)
	assert.Empty(t, backend2.callLog)
}

func TestOrchestrator_InvalidatesOnChange(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	stateDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "b.ts"), []byte("world"), 0o644))

	backend := newScriptedBackend(map[string][]scriptedCall{
		"X": {{text: "doc a"}, {text: "doc b"}},
	})
	cfg := baseRunConfig(srcRoot, outRoot, stateDir)
	_, err := newTestOrchestrator(backend).Run(context.Background(), cfg)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte("hello, changed"), 0o644))

	backend2 := newScriptedBackend(map[string][]scriptedCall{
		"X": {{text: "doc a v2"}},
	})
	stats, err := newTestOrchestrator(backend2).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesGenerated)
	assert.Equal(t, 1, stats.FilesSkipped)
	assert.Equal(t, []string{"X"}, backend2.callLog)
}

func TestOrchestrator_ForceOverridesCache(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	stateDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte("hello"), 0o644))

	backend := newScriptedBackend(map[string][]scriptedCall{"X": {{text: "doc v1"}}})
	cfg := baseRunConfig(srcRoot, outRoot, stateDir)
	_, err := newTestOrchestrator(backend).Run(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Force = true
	backend2 := newScriptedBackend(map[string][]scriptedCall{"X": {{text: "doc v2"}}})
	stats, err := newTestOrchestrator(backend2).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesGenerated)
	assert.Len(t, backend2.callLog, 1)
}

func TestOrchestrator_ChunksAndMerges(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	stateDir := t.TempDir()

	line := strings.Repeat("a", 10) + "\n"
	content := strings.Repeat(line, 3)
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte(content), 0o644))

	backend := newScriptedBackend(map[string][]scriptedCall{
		"X": {
			{text: "part 1"},
			{text: "part 2"},
			{text: "part 3"},
			{text: "merged"},
		},
	})

	cfg := baseRunConfig(srcRoot, outRoot, stateDir)
	cfg.MaxCharsPerChunk = len(line)*2 - 1
	cfg.ChunkOverlap = 1

	stats, err := newTestOrchestrator(backend).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.FilesGenerated)
	assert.Len(t, backend.callLog, 4, "3 chunks + 1 merge call")

	docPath := filepath.Join(outRoot, "src", "a", "a.md")
	got, err := os.ReadFile(docPath)
	require.NoError(t, err)
	assert.Contains(t, string(got), "merged")
}

func TestOrchestrator_ImportGraphEnrichesPrompt(t *testing.T) {
	srcRoot := t.TempDir()
	outRoot := t.TempDir()
	stateDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a.ts"), []byte(`import { b } from "./b";`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "b.tsx"), []byte("export const b = 1;"), 0o644))

	var aPromptContent string
	backend := &capturingBackend{
		onChat: func(model string, messages []Message) (string, error) {
			if strings.Contains(messages[0].Content, "File: `a.ts`") {
				aPromptContent = messages[0].Content
			}
			return "doc", nil
		},
	}

	cfg := baseRunConfig(srcRoot, outRoot, stateDir)
	_, err := newTestOrchestrator(backend).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Contains(t, aPromptContent, "b.tsx", "a.ts's prompt should list its upstream import of b.tsx")
}

// capturingBackend is a minimal BackendClient that always returns a fixed
// model and delegates per-call behavior to onChat.
type capturingBackend struct {
	onChat func(model string, messages []Message) (string, error)
}

func (b *capturingBackend) ListModels(ctx context.Context) (map[string]struct{}, error) {
	return map[string]struct{}{"X": {}, "Y": {}}, nil
}

func (b *capturingBackend) Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error) {
	text, err := b.onChat(model, messages)
	return text, http.Header{}, err
}

func (b *capturingBackend) Close() error { return nil }
