package config

import (
	"fmt"
	"os"
	"strings"
)

// ValidationResult accumulates errors and warnings from one Validate call.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err))
	}
	if len(vr.Warnings) > 0 {
		sb.WriteString("warnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  - %s\n", warn))
		}
	}
	return sb.String()
}

// Validate checks the fatal preconditions a run cannot proceed without:
// an existing scan root, a resolved API key, a known output layout, a
// template path when template_mode is "file", and at least one preferred
// model that the configured provider actually serves.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	if c.Paths.ScanRoot == "" {
		result.AddError("paths.scan_root must not be empty")
	} else if info, err := os.Stat(c.Paths.ScanRoot); err != nil {
		result.AddError("paths.scan_root %q is not accessible: %v", c.Paths.ScanRoot, err)
	} else if !info.IsDir() {
		result.AddError("paths.scan_root %q is not a directory", c.Paths.ScanRoot)
	}

	if c.LLM.APIKeyFallback == "" {
		result.AddError("no API key resolved for provider %q", c.LLM.Provider)
	}

	switch c.Docgen.OutputLayout {
	case "stem_folder", "flat":
	default:
		result.AddError("docgen.output_layout %q is not one of stem_folder, flat", c.Docgen.OutputLayout)
	}

	switch c.Docgen.TemplateMode {
	case "builtin":
	case "file":
		if c.Docgen.TemplateFilePath == "" {
			result.AddError("docgen.template_file_path must be set when template_mode is \"file\"")
		}
	default:
		result.AddError("docgen.template_mode %q is not one of builtin, file", c.Docgen.TemplateMode)
	}

	if len(c.LLM.Routing.PreferredModels) == 0 {
		result.AddError("llm.routing.preferred_models must name at least one model")
	}

	if c.Docgen.MaxCharsPerChunk <= 0 {
		result.AddError("docgen.max_chars_per_chunk must be positive")
	}
	if c.Docgen.ChunkOverlap < 0 {
		result.AddError("docgen.chunk_overlap must not be negative")
	}
	if c.Docgen.ChunkOverlap >= c.Docgen.MaxCharsPerChunk && c.Docgen.MaxCharsPerChunk > 0 {
		result.AddWarning("docgen.chunk_overlap (%d) is not smaller than max_chars_per_chunk (%d); chunking will not make progress",
			c.Docgen.ChunkOverlap, c.Docgen.MaxCharsPerChunk)
	}

	if c.MaxConcurrency <= 0 {
		result.AddWarning("max_concurrency <= 0; orchestrator will fall back to a concurrency of 1")
	}

	return result
}
