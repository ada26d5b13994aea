package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianopadua/documentation-helper/internal/docgen"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [path...]",
	Short: "Generate Markdown documentation for the configured source tree",
	Long: `Walks paths.scan_root (or the paths given as arguments, restricted to
that root), synthesizes one Markdown document per source file, and skips
any file whose content hash is already recorded in the manifest unless
--force is set.`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	backend, err := buildBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	chunkCache, err := docgen.OpenChunkCache(filepath.Join(cfg.Paths.StateDir, "chunks.db"))
	if err != nil {
		return fmt.Errorf("open chunk cache: %w", err)
	}
	defer chunkCache.Close()

	orch := docgen.NewOrchestrator(backend, chunkCache, logger)

	runCfg := cfg.ToRunConfig()
	if len(args) > 0 {
		runCfg.IncludeOnly = toIncludeSet(runCfg.SrcRoot, args)
	}

	start := time.Now()
	stats, err := orch.Run(ctx, runCfg)
	if stats != nil {
		logger.WithFields(map[string]interface{}{
			"files_total":      stats.FilesTotal,
			"files_generated":  stats.FilesGenerated,
			"files_skipped":    stats.FilesSkipped,
			"chunk_cache_hits": stats.ChunkCacheHits,
			"backend_calls":    stats.BackendCalls,
			"duration":         time.Since(start).Round(time.Millisecond).String(),
		}).Info("generation run finished")
	}
	return err
}

func toIncludeSet(srcRoot string, args []string) map[string]struct{} {
	out := make(map[string]struct{}, len(args))
	for _, a := range args {
		rel, err := filepath.Rel(srcRoot, a)
		if err != nil {
			rel = a
		}
		out[filepath.ToSlash(rel)] = struct{}{}
	}
	return out
}
