package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValidModuloAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = t.TempDir()
	cfg.LLM.APIKeyFallback = "test-key"

	result := cfg.Validate()
	assert.True(t, result.Valid, "default config should validate: %v", result.Errors)
}

func TestValidate_MissingScanRoot(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = filepath.Join(t.TempDir(), "does-not-exist")
	cfg.LLM.APIKeyFallback = "test-key"

	result := cfg.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "scan_root")
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = t.TempDir()
	cfg.LLM.APIKeyFallback = ""

	result := cfg.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "API key")
}

func TestValidate_UnknownOutputLayout(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = t.TempDir()
	cfg.LLM.APIKeyFallback = "test-key"
	cfg.Docgen.OutputLayout = "nested"

	result := cfg.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "output_layout")
}

func TestValidate_FileTemplateModeRequiresPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = t.TempDir()
	cfg.LLM.APIKeyFallback = "test-key"
	cfg.Docgen.TemplateMode = "file"
	cfg.Docgen.TemplateFilePath = ""

	result := cfg.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "template_file_path")
}

func TestValidate_EmptyPreferredModels(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = t.TempDir()
	cfg.LLM.APIKeyFallback = "test-key"
	cfg.LLM.Routing.PreferredModels = nil

	result := cfg.Validate()
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error(), "preferred_models")
}

func TestLoad_ReadsYAMLAndExpandsEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docgen.yaml")
	scanRoot := t.TempDir()

	require.NoError(t, os.WriteFile(cfgPath, []byte(`
paths:
  scan_root: "`+scanRoot+`"
  output_root: "${TEST_OUTPUT_DIR}"
llm:
  provider: groq
  api_key_env: TEST_DOCGEN_API_KEY
  routing:
    preferred_models: ["llama-3.3-70b-versatile"]
`), 0o644))

	t.Setenv("TEST_DOCGEN_API_KEY", "sk-from-env")
	t.Setenv("TEST_OUTPUT_DIR", "generated-docs")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.LLM.APIKeyFallback)
	assert.Contains(t, cfg.Paths.OutputRoot, "generated-docs")
}

func TestLoad_MissingAPIKeyFails(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "docgen.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
llm:
  provider: groq
  api_key_env: TEST_DOCGEN_API_KEY_UNSET
`), 0o644))

	os.Unsetenv("TEST_DOCGEN_API_KEY_UNSET")

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestToRunConfig_TranslatesFields(t *testing.T) {
	cfg := Default()
	cfg.Paths.ScanRoot = "/src"
	cfg.Paths.OutputRoot = "/out"
	cfg.Docgen.OutputLayout = "flat"
	cfg.LLM.APIKeyFallback = "test-key"

	rc := cfg.ToRunConfig()
	assert.Equal(t, "/src", rc.SrcRoot)
	assert.Equal(t, "/out", rc.OutputRoot)
	assert.EqualValues(t, "flat", rc.OutputLayout)
	assert.Equal(t, cfg.LLM.Routing.PreferredModels, rc.Routing.PreferredModels)
}
