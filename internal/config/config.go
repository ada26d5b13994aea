// Package config loads, validates, and resolves the YAML configuration
// that drives one documentation generation run.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/zalando/go-keyring"

	"github.com/julianopadua/documentation-helper/internal/docgen"
	"github.com/julianopadua/documentation-helper/internal/errors"
)

// Config is the root configuration document, unmarshaled from YAML.
type Config struct {
	Paths   PathsConfig       `yaml:"paths"`
	Scan    ScanConfig        `yaml:"scan"`
	Docgen  DocgenConfig      `yaml:"docgen"`
	LLM     LLMConfig         `yaml:"llm"`
	Aliases map[string]string `yaml:"aliases"`

	MaxConcurrency int  `yaml:"max_concurrency"`
	Force          bool `yaml:"-"` // CLI-only override, never persisted
	Reset          bool `yaml:"-"` // CLI-only override, never persisted
}

type PathsConfig struct {
	ScanRoot   string `yaml:"scan_root"`
	OutputRoot string `yaml:"output_root"`
	StateDir   string `yaml:"state_dir"`
	LogDir     string `yaml:"log_dir"`
}

type ScanConfig struct {
	IncludeExtensions []string `yaml:"include_extensions"`
	ExcludeDirs       []string `yaml:"exclude_dirs"`
	IgnorePatterns    []string `yaml:"ignore_patterns"`
}

type DocgenConfig struct {
	TemplateMode     string `yaml:"template_mode"`
	TemplateFilePath string `yaml:"template_file_path"`
	Language         string `yaml:"language"`
	Tone             string `yaml:"tone"`
	OutputLayout     string `yaml:"output_layout"`
	WriteIndex       bool   `yaml:"write_index"`
	MaxCharsPerChunk int    `yaml:"max_chars_per_chunk"`
	ChunkOverlap     int    `yaml:"chunk_overlap"`
	SnippetMaxLines  int    `yaml:"snippet_max_lines"`
	MaxSnippetBlocks int    `yaml:"max_snippet_blocks"`
}

type LLMConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	APIKeyFallback string `yaml:"api_key_fallback"`
	UseKeychain    bool   `yaml:"use_keychain"`

	Temperature         float64 `yaml:"temperature"`
	TopP                float64 `yaml:"top_p"`
	MaxCompletionTokens int     `yaml:"max_completion_tokens"`
	ServiceTier         string  `yaml:"service_tier"`
	ReasoningEffort     string  `yaml:"reasoning_effort"`

	Routing  RoutingConfig  `yaml:"routing"`
	Retry    RetryConfig    `yaml:"retry"`
	Throttle ThrottleConfig `yaml:"throttle"`
}

type RoutingConfig struct {
	ValidateWithModelsEndpoint bool     `yaml:"validate_with_models_endpoint"`
	PreferredModels            []string `yaml:"preferred_models"`
}

type RetryConfig struct {
	MaxAttemptsPerModel int     `yaml:"max_attempts_per_model"`
	BackoffBaseSeconds  float64 `yaml:"backoff_base_seconds"`
	BackoffCapSeconds   float64 `yaml:"backoff_cap_seconds"`
}

type ThrottleConfig struct {
	Enabled            bool    `yaml:"enabled"`
	MinIntervalSeconds float64 `yaml:"min_interval_seconds"`
	MinRemainingTokens int     `yaml:"min_remaining_tokens"`
}

// Default returns a configuration with sensible defaults, mirroring the
// original implementation's baked-in fallbacks.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			ScanRoot:   ".",
			OutputRoot: "docs",
			StateDir:   ".docgen",
			LogDir:     ".docgen/logs",
		},
		Scan: ScanConfig{
			IncludeExtensions: []string{".ts", ".tsx", ".js", ".jsx"},
		},
		Docgen: DocgenConfig{
			TemplateMode:     "builtin",
			Language:         "english",
			Tone:             "neutral",
			OutputLayout:     "stem_folder",
			WriteIndex:       true,
			MaxCharsPerChunk: 12000,
			ChunkOverlap:     2,
			SnippetMaxLines:  40,
			MaxSnippetBlocks: 3,
		},
		LLM: LLMConfig{
			Provider:            "groq",
			APIKeyEnv:           "GROQ_API_KEY",
			Temperature:         0.2,
			TopP:                1.0,
			MaxCompletionTokens: 2048,
			Routing: RoutingConfig{
				PreferredModels: []string{"llama-3.3-70b-versatile"},
			},
			Retry: RetryConfig{
				MaxAttemptsPerModel: 3,
				BackoffBaseSeconds:  1.0,
				BackoffCapSeconds:   30.0,
			},
			Throttle: ThrottleConfig{
				Enabled:            true,
				MinIntervalSeconds: 0.2,
				MinRemainingTokens: 2000,
			},
		},
		MaxConcurrency: 4,
	}
}

// Load reads configuration from path (or standard locations when empty),
// layering environment variables and .env files over YAML, then resolves
// ${NAME} placeholders and absolute paths.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	v.SetDefault("paths", cfg.Paths)
	v.SetDefault("scan", cfg.Scan)
	v.SetDefault("docgen", cfg.Docgen)
	v.SetDefault("llm", cfg.LLM)
	v.SetDefault("max_concurrency", cfg.MaxConcurrency)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docgen")
		v.AddConfigPath(".")
		v.AddConfigPath(".docgen")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.ConfigErrorf("read config: %v", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.ConfigErrorf("unmarshal config: %v", err)
	}

	expandEnvInPlace(cfg)

	if err := resolveAPIKey(cfg); err != nil {
		return nil, err
	}

	resolvePaths(cfg)

	return cfg, nil
}

// resolveAPIKey applies the precedence the original `core/config.py`
// implements: environment variable named by api_key_env, then (if
// use_keychain) the OS keychain, then the inline fallback value.
func resolveAPIKey(cfg *Config) error {
	if cfg.LLM.APIKeyEnv != "" {
		if v := os.Getenv(cfg.LLM.APIKeyEnv); v != "" {
			cfg.LLM.APIKeyFallback = v
			return nil
		}
	}

	if cfg.LLM.UseKeychain {
		v, err := keyring.Get(KeyringService, cfg.LLM.Provider)
		if err == nil && v != "" {
			cfg.LLM.APIKeyFallback = v
			return nil
		}
	}

	if cfg.LLM.APIKeyFallback == "" {
		return errors.ConfigErrorf("no API key resolved for provider %q (checked env %q, keychain=%v)",
			cfg.LLM.Provider, cfg.LLM.APIKeyEnv, cfg.LLM.UseKeychain)
	}
	return nil
}

func resolvePaths(cfg *Config) {
	cfg.Paths.ScanRoot = mustAbs(cfg.Paths.ScanRoot)
	cfg.Paths.OutputRoot = mustAbs(cfg.Paths.OutputRoot)
	cfg.Paths.StateDir = mustAbs(cfg.Paths.StateDir)
	cfg.Paths.LogDir = mustAbs(cfg.Paths.LogDir)
}

func mustAbs(p string) string {
	if p == "" {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		if _, err := os.Stat(name); err == nil {
			_ = godotenv.Load(name)
		}
	}
}

// ToRunConfig translates the YAML document into the orchestrator's value
// snapshot. Called once per run, after validation.
func (c *Config) ToRunConfig() docgen.RunConfig {
	layout := docgen.LayoutStemFolder
	if c.Docgen.OutputLayout == string(docgen.LayoutFlat) {
		layout = docgen.LayoutFlat
	}

	return docgen.RunConfig{
		SrcRoot:    c.Paths.ScanRoot,
		OutputRoot: c.Paths.OutputRoot,
		StateDir:   c.Paths.StateDir,
		Scan: docgen.ScanConfig{
			IncludeExtensions: c.Scan.IncludeExtensions,
			ExcludeDirs:       c.Scan.ExcludeDirs,
			IgnorePatterns:    c.Scan.IgnorePatterns,
		},
		Aliases:          c.Aliases,
		TemplateMode:     c.Docgen.TemplateMode,
		TemplateFilePath: c.Docgen.TemplateFilePath,
		Language:         c.Docgen.Language,
		Tone:             c.Docgen.Tone,
		OutputLayout:     layout,
		WriteIndex:       c.Docgen.WriteIndex,
		MaxCharsPerChunk: c.Docgen.MaxCharsPerChunk,
		ChunkOverlap:     c.Docgen.ChunkOverlap,
		SnippetMaxLines:  c.Docgen.SnippetMaxLines,
		MaxSnippetBlocks: c.Docgen.MaxSnippetBlocks,
		Routing: docgen.RoutingPolicy{
			PreferredModels:     c.LLM.Routing.PreferredModels,
			MaxAttemptsPerModel: c.LLM.Retry.MaxAttemptsPerModel,
			BackoffBaseSeconds:  c.LLM.Retry.BackoffBaseSeconds,
			BackoffCapSeconds:   c.LLM.Retry.BackoffCapSeconds,
		},
		Throttle: docgen.ThrottleConfig{
			Enabled:            c.LLM.Throttle.Enabled,
			MinIntervalSeconds: c.LLM.Throttle.MinIntervalSeconds,
			MinRemainingTokens: c.LLM.Throttle.MinRemainingTokens,
		},
		BaseParams: docgen.ChatParams{
			Temperature:         c.LLM.Temperature,
			TopP:                c.LLM.TopP,
			MaxCompletionTokens: c.LLM.MaxCompletionTokens,
			ServiceTier:         c.LLM.ServiceTier,
			ReasoningEffort:     c.LLM.ReasoningEffort,
		},
		ValidateWithModelsEndpoint: c.LLM.Routing.ValidateWithModelsEndpoint,
		MaxConcurrency:             c.MaxConcurrency,
		Force:                      c.Force,
		Reset:                      c.Reset,
	}
}
