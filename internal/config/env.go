package config

import (
	"os"
	"regexp"
	"strconv"
)

var envPlaceholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvInPlace substitutes ${NAME} placeholders in every string field of
// cfg with the corresponding environment variable, leaving unset variables
// as empty string. Unlike viper's AutomaticEnv (which only binds top-level
// keys), this reaches into arbitrary string leaves the way the original
// implementation's config loader does.
func expandEnvInPlace(cfg *Config) {
	cfg.Paths.ScanRoot = expandEnvString(cfg.Paths.ScanRoot)
	cfg.Paths.OutputRoot = expandEnvString(cfg.Paths.OutputRoot)
	cfg.Paths.StateDir = expandEnvString(cfg.Paths.StateDir)
	cfg.Paths.LogDir = expandEnvString(cfg.Paths.LogDir)

	cfg.Scan.IncludeExtensions = expandEnvSlice(cfg.Scan.IncludeExtensions)
	cfg.Scan.ExcludeDirs = expandEnvSlice(cfg.Scan.ExcludeDirs)
	cfg.Scan.IgnorePatterns = expandEnvSlice(cfg.Scan.IgnorePatterns)

	cfg.Docgen.TemplateFilePath = expandEnvString(cfg.Docgen.TemplateFilePath)

	cfg.LLM.BaseURL = expandEnvString(cfg.LLM.BaseURL)
	cfg.LLM.APIKeyFallback = expandEnvString(cfg.LLM.APIKeyFallback)
	cfg.LLM.Routing.PreferredModels = expandEnvSlice(cfg.LLM.Routing.PreferredModels)

	for k, v := range cfg.Aliases {
		cfg.Aliases[k] = expandEnvString(v)
	}
}

func expandEnvString(s string) string {
	if s == "" {
		return s
	}
	return envPlaceholder.ReplaceAllStringFunc(s, func(m string) string {
		name := envPlaceholder.FindStringSubmatch(m)[1]
		return os.Getenv(name)
	})
}

func expandEnvSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = expandEnvString(s)
	}
	return out
}

// GetString returns the environment variable's value, or defaultVal if unset.
func GetString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// GetInt returns the environment variable parsed as an int, or defaultVal.
func GetInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

// GetBool returns the environment variable parsed as a bool, or defaultVal.
func GetBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
