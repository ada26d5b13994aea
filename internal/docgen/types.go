// Package docgen implements the concurrent documentation generation pipeline:
// scanning a source tree, building an import graph, chunking and redacting
// file contents, routing chat-completion requests across fallback models
// under a shared rate limiter, and persisting results behind a content-hash
// manifest.
package docgen

import (
	"context"
	"net/http"
	"path/filepath"
)

// SourceFile is one discovered input file. Immutable after construction.
type SourceFile struct {
	AbsPath string
	RelPath string // OS-native relative path from the scan root
	Ext     string // lowercase, includes leading dot
}

// Stem returns the file name without its extension.
func (f SourceFile) Stem() string {
	base := filepath.Base(f.RelPath)
	return base[:len(base)-len(filepath.Ext(base))]
}

// RelPosix returns the relative path in posix (forward-slash) form.
func (f SourceFile) RelPosix() string {
	return filepath.ToSlash(f.RelPath)
}

// ImportEdge is a directed reference between two source files.
type ImportEdge struct {
	Src    string // rel path of the importer
	Target string // rel path of the imported file
	Raw    string // the raw reference string as it appeared in source
}

// WorkItem is one unit of work handed to the orchestrator.
type WorkItem struct {
	Src     SourceFile
	OutPath string
	RelKey  string // posix-form relative path, stable across the run
}

// ManifestEntry is the persisted per-source-file record.
type ManifestEntry struct {
	SHA256    string `json:"sha256"`
	Model     string `json:"model"`
	UpdatedAt string `json:"updated_at"` // ISO-8601 UTC
}

// PromptContext is the render-time bundle for one prompt.
type PromptContext struct {
	RelPath         string
	FileKind        string
	CodeFence       string
	Code            string
	ImportsLinks    []LinkPair // (imported source path -> doc link)
	ImportedByLinks []LinkPair // (importer source path -> doc link)
}

// LinkPair is a (source relative path, doc relative path) pair.
type LinkPair struct {
	SrcRel string
	DocRel string
}

// RoutingPolicy is a configuration snapshot for the Model Router.
type RoutingPolicy struct {
	PreferredModels     []string
	MaxAttemptsPerModel int
	BackoffBaseSeconds  float64
	BackoffCapSeconds   float64
}

// ThrottleConfig is a configuration snapshot for the Rate Limiter.
type ThrottleConfig struct {
	Enabled            bool
	MinIntervalSeconds float64
	MinRemainingTokens int
}

// ChatParams is the parameter snapshot sent with every chat-completion call.
// The router produces per-call snapshots by field-wise copying a frozen base,
// never by mutating it.
type ChatParams struct {
	Temperature         float64
	TopP                float64
	MaxCompletionTokens int
	Stream              bool // always forced false by the orchestrator
	ServiceTier         string
	ReasoningEffort     string
}

// Message is one chat message. The core only ever emits user-role messages.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Role constants.
const (
	RoleUser = "user"
)

// BackendClient issues chat-completion requests to a configured backend and
// translates transport errors. It never retries; all retry/fallback policy
// lives in the Router.
type BackendClient interface {
	// ListModels returns the set of model IDs the backend currently exposes.
	ListModels(ctx context.Context) (map[string]struct{}, error)
	// Chat issues one chat-completion request and returns the response text
	// plus the raw response headers (needed by the Rate Limiter).
	Chat(ctx context.Context, model string, messages []Message, params ChatParams) (string, http.Header, error)
	// Close releases any held resources (idle connections, sessions).
	Close() error
}
