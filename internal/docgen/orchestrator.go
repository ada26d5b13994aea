package docgen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// RunConfig is the value snapshot the Orchestrator consumes; it owns no
// pointer back into any config-loading machinery.
type RunConfig struct {
	SrcRoot    string
	OutputRoot string
	StateDir   string

	Scan    ScanConfig
	Aliases map[string]string

	TemplateMode     string // "builtin" or "file"
	TemplateFilePath string
	Language         string
	Tone             string
	OutputLayout     OutputLayout
	WriteIndex       bool
	MaxCharsPerChunk int
	ChunkOverlap     int
	SnippetMaxLines  int
	MaxSnippetBlocks int

	Routing                    RoutingPolicy
	Throttle                   ThrottleConfig
	BaseParams                 ChatParams
	ValidateWithModelsEndpoint bool

	MaxConcurrency int
	Force          bool
	Reset          bool
	IncludeOnly    map[string]struct{} // exact posix rel-path match set; nil = all
}

// RunStats accumulates in-memory statistics for one run. Not persisted.
// Fields are mutated from concurrent g.Go closures, so every write goes
// through the accessor methods rather than touching the fields directly.
type RunStats struct {
	mu sync.Mutex

	FilesTotal     int
	FilesSkipped   int
	FilesGenerated int
	ChunkCacheHits int
	BackendCalls   int
}

func (s *RunStats) addGenerated() {
	s.mu.Lock()
	s.FilesGenerated++
	s.mu.Unlock()
}

func (s *RunStats) addSkipped() {
	s.mu.Lock()
	s.FilesSkipped++
	s.mu.Unlock()
}

func (s *RunStats) addChunkCacheHit() {
	s.mu.Lock()
	s.ChunkCacheHits++
	s.mu.Unlock()
}

func (s *RunStats) addBackendCall() {
	s.mu.Lock()
	s.BackendCalls++
	s.mu.Unlock()
}

// Orchestrator owns one run's pipeline: scan, import graph, fan-out,
// per-file chunk/generate/merge/write/record, manifest save, optional index.
type Orchestrator struct {
	backend    BackendClient
	chunkCache *ChunkCache
	logger     *logrus.Logger
}

// NewOrchestrator wires a backend client and optional chunk cache (nil
// disables the cache entirely).
func NewOrchestrator(backend BackendClient, chunkCache *ChunkCache, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{backend: backend, chunkCache: chunkCache, logger: logger}
}

// Run executes one full generation pass per cfg.
func (o *Orchestrator) Run(ctx context.Context, cfg RunConfig) (*RunStats, error) {
	stats := &RunStats{}

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	if cfg.Reset {
		if err := o.reset(cfg); err != nil {
			return nil, fmt.Errorf("reset: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	manifest := NewManifest(filepath.Join(cfg.StateDir, "manifest.json"))
	if err := manifest.Load(); err != nil {
		return nil, err
	}

	files, err := ScanSourceFiles(cfg.SrcRoot, cfg.Scan)
	if err != nil {
		return nil, fmt.Errorf("scan source files: %w", err)
	}
	if cfg.IncludeOnly != nil {
		files = filterIncludeOnly(files, cfg.IncludeOnly)
	}
	stats.FilesTotal = len(files)

	graph, err := BuildImportGraph(cfg.SrcRoot, files, cfg.Aliases)
	if err != nil {
		return nil, fmt.Errorf("build import graph: %w", err)
	}

	template, err := o.loadTemplate(cfg)
	if err != nil {
		return nil, err
	}

	limiter := NewRateLimiter(cfg.Throttle)
	router := NewModelRouter(o.backend, cfg.Routing, cfg.BaseParams, limiter)

	models := cfg.Routing.PreferredModels
	if cfg.ValidateWithModelsEndpoint {
		models, err = router.ValidateModels(ctx)
		if err != nil {
			return nil, fmt.Errorf("validate models: %w", err)
		}
	}

	work := make([]WorkItem, 0, len(files))
	for _, f := range files {
		outPath, err := DocPathFor(f.RelPath, cfg.OutputRoot, cfg.OutputLayout)
		if err != nil {
			return nil, err
		}
		work = append(work, WorkItem{Src: f, OutPath: outPath, RelKey: f.RelPosix()})
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(cfg.MaxConcurrency))

	for _, w := range work {
		w := w
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			generated, err := o.processOne(gctx, cfg, w, graph, template, router, manifest, models, stats)
			if err != nil {
				return fmt.Errorf("%s: %w", w.RelKey, err)
			}
			if generated {
				stats.addGenerated()
			} else {
				stats.addSkipped()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// run did not complete cleanly: skip the manifest save
		return stats, err
	}

	if err := manifest.Save(); err != nil {
		return stats, fmt.Errorf("save manifest: %w", err)
	}

	if cfg.WriteIndex {
		if err := writeIndex(cfg.OutputRoot, work); err != nil {
			return stats, fmt.Errorf("write index: %w", err)
		}
	}

	return stats, nil
}

// reset clears a run's generated output and cached state without touching
// the output root itself: the generated src/ subtree and top-level
// INDEX.md under OutputRoot are removed, and StateDir is removed so the
// caller recreates it fresh.
func (o *Orchestrator) reset(cfg RunConfig) error {
	if err := os.RemoveAll(filepath.Join(cfg.OutputRoot, "src")); err != nil {
		return fmt.Errorf("remove generated src tree: %w", err)
	}
	if err := os.Remove(filepath.Join(cfg.OutputRoot, "INDEX.md")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove index: %w", err)
	}
	if err := os.RemoveAll(cfg.StateDir); err != nil {
		return fmt.Errorf("remove state dir: %w", err)
	}
	return nil
}

func filterIncludeOnly(files []SourceFile, includeOnly map[string]struct{}) []SourceFile {
	var out []SourceFile
	for _, f := range files {
		if _, ok := includeOnly[f.RelPosix()]; ok {
			out = append(out, f)
		}
	}
	return out
}

func (o *Orchestrator) loadTemplate(cfg RunConfig) (string, error) {
	switch cfg.TemplateMode {
	case "file":
		if cfg.TemplateFilePath == "" {
			return "", fmt.Errorf("template_mode=file requires a non-empty template_file_path")
		}
		raw, err := os.ReadFile(cfg.TemplateFilePath)
		if err != nil {
			return "", fmt.Errorf("read template file: %w", err)
		}
		return string(raw), nil
	case "", "builtin":
		return LoadBuiltinTemplate(), nil
	default:
		return "", fmt.Errorf("unsupported template mode: %q", cfg.TemplateMode)
	}
}

// processOne implements one WorkItem's lifecycle. Returns true if the file
// was (re)generated, false if it was skipped as unchanged.
func (o *Orchestrator) processOne(ctx context.Context, cfg RunConfig, w WorkItem, graph *ImportGraph, template string, router *ModelRouter, manifest *Manifest, models []string, stats *RunStats) (bool, error) {
	raw, err := os.ReadFile(w.Src.AbsPath)
	if err != nil {
		return false, fmt.Errorf("read source: %w", err)
	}
	redacted := RedactSecrets(string(raw))
	sha := SHA256Hex(redacted)

	if !cfg.Force && manifest.GetSHA(w.RelKey) == sha {
		if _, err := os.Stat(w.OutPath); err == nil {
			return false, nil
		}
	}

	chunks := ChunkTextByLines(redacted, cfg.MaxCharsPerChunk, cfg.ChunkOverlap)

	kind := kindFromExt(w.Src.Ext)
	fence := codeFenceFromExt(w.Src.Ext)

	partialDocs := make([]string, 0, len(chunks))
	var lastModel string

	for i, chunk := range chunks {
		fileKind := kind
		if len(chunks) > 1 {
			fileKind = fmt.Sprintf("%s (chunk %d/%d)", kind, i+1, len(chunks))
		}

		promptCtx := PromptContext{
			RelPath:         w.Src.RelPosix(),
			FileKind:        fileKind,
			CodeFence:       fence,
			Code:            chunk,
			ImportsLinks:    linksFor(graph.ImportsOf[w.Src.RelPath], cfg.OutputRoot, cfg.OutputLayout, true),
			ImportedByLinks: linksFor(graph.ImportedBy[w.Src.RelPath], cfg.OutputRoot, cfg.OutputLayout, false),
		}

		messages := RenderMessages(template, promptCtx, cfg.Language, cfg.Tone, cfg.SnippetMaxLines, cfg.MaxSnippetBlocks)

		text, model, err := o.generateWithCache(ctx, router, messages, models, cfg.BaseParams, chunk, stats)
		if err != nil {
			return false, fmt.Errorf("generate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		partialDocs = append(partialDocs, strings.TrimSpace(text))
		lastModel = model
	}

	finalDoc := partialDocs[0]
	if len(partialDocs) > 1 {
		mergeMessages := []Message{{
			Role: RoleUser,
			Content: "Unify the partial documentation chunks below into a single coherent Markdown document. " +
				"Remove duplication, preserve the original order, keep every relevant point. " +
				"Do not invent anything.\n\n" + strings.Join(partialDocs, "\n\n---\n\n"),
		}}
		text, model, err := router.Generate(ctx, mergeMessages, models)
		stats.addBackendCall()
		if err != nil {
			return false, fmt.Errorf("merge chunks: %w", err)
		}
		finalDoc = text
		lastModel = model
	}

	if err := os.MkdirAll(filepath.Dir(w.OutPath), 0o755); err != nil {
		return false, fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(w.OutPath, []byte(strings.TrimSpace(finalDoc)+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write output: %w", err)
	}

	manifest.SetEntry(w.RelKey, ManifestEntry{
		SHA256:    sha,
		Model:     lastModel,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})

	return true, nil
}

// generateWithCache consults the chunk cache before calling the router, and
// populates it on a live generation. A cache hit still costs zero backend
// calls, preserving invariant 1 of the file-level manifest cache.
func (o *Orchestrator) generateWithCache(ctx context.Context, router *ModelRouter, messages []Message, models []string, params ChatParams, redactedChunkText string, stats *RunStats) (string, string, error) {
	if o.chunkCache != nil && len(models) > 0 {
		key := ChunkCacheKey(models[0], redactedChunkText)
		if cached, ok := o.chunkCache.Get(key); ok {
			stats.addChunkCacheHit()
			return cached, models[0], nil
		}

		text, model, err := router.Generate(ctx, messages, models)
		stats.addBackendCall()
		if err != nil {
			return "", "", err
		}
		_ = o.chunkCache.Put(key, text)
		return text, model, nil
	}

	text, model, err := router.Generate(ctx, messages, models)
	stats.addBackendCall()
	return text, model, err
}

func linksFor(edges []ImportEdge, outputRoot string, layout OutputLayout, forward bool) []LinkPair {
	links := make([]LinkPair, 0, len(edges))
	for _, e := range edges {
		other := e.Target
		if !forward {
			other = e.Src
		}
		docAbs, err := DocPathFor(other, outputRoot, layout)
		if err != nil {
			continue
		}
		docRel, err := filepath.Rel(outputRoot, docAbs)
		if err != nil {
			continue
		}
		links = append(links, LinkPair{SrcRel: filepath.ToSlash(other), DocRel: filepath.ToSlash(docRel)})
	}
	return links
}

func kindFromExt(ext string) string {
	switch ext {
	case ".ts", ".tsx", ".js", ".jsx":
		return "code"
	case ".css", ".scss":
		return "style"
	case ".json":
		return "json"
	case ".md":
		return "markdown"
	default:
		return "unknown"
	}
}

func codeFenceFromExt(ext string) string {
	switch ext {
	case ".ts":
		return "ts"
	case ".tsx":
		return "tsx"
	case ".js":
		return "js"
	case ".jsx":
		return "jsx"
	case ".css":
		return "css"
	case ".scss":
		return "scss"
	case ".json":
		return "json"
	case ".md":
		return "md"
	default:
		return ""
	}
}

func writeIndex(outputRoot string, work []WorkItem) error {
	sorted := make([]WorkItem, len(work))
	copy(sorted, work)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RelKey < sorted[j].RelKey })

	var b strings.Builder
	for _, w := range sorted {
		docRel, err := filepath.Rel(outputRoot, w.OutPath)
		if err != nil {
			return err
		}
		docRel = filepath.ToSlash(docRel)
		fmt.Fprintf(&b, "- %s -> [%s](%s)\n", w.RelKey, docRel, docRel)
	}

	return os.WriteFile(filepath.Join(outputRoot, "INDEX.md"), []byte(b.String()), 0o644)
}
