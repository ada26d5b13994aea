package config

import (
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name under which provider API keys are
	// stored in the OS keychain.
	KeyringService = "documentation-helper"
)

// KeyringManager handles secure credential storage in the OS keychain, keyed
// per LLM provider so a machine with several configured providers doesn't
// collide on a single slot.
type KeyringManager struct {
	logger *slog.Logger
}

// NewKeyringManager creates a new keyring manager.
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: slog.Default().With("component", "keyring"),
	}
}

// SaveAPIKey stores a provider's API key securely in the OS keychain.
func (km *KeyringManager) SaveAPIKey(provider, apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("api key cannot be empty")
	}

	if err := keyring.Set(KeyringService, provider, apiKey); err != nil {
		km.logger.Error("failed to save API key to keychain", "provider", provider, "error", err)
		return fmt.Errorf("failed to save to OS keychain: %w", err)
	}

	km.logger.Info("api key saved to keychain", "provider", provider)
	return nil
}

// GetAPIKey retrieves a provider's API key from the OS keychain. A missing
// entry is not an error: it just means the caller should fall back further
// down the resolution chain.
func (km *KeyringManager) GetAPIKey(provider string) (string, error) {
	apiKey, err := keyring.Get(KeyringService, provider)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		km.logger.Error("failed to get API key from keychain", "provider", provider, "error", err)
		return "", fmt.Errorf("failed to read from OS keychain: %w", err)
	}

	km.logger.Debug("api key retrieved from keychain", "provider", provider)
	return apiKey, nil
}

// DeleteAPIKey removes a provider's API key from the OS keychain.
func (km *KeyringManager) DeleteAPIKey(provider string) error {
	err := keyring.Delete(KeyringService, provider)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		km.logger.Error("failed to delete API key from keychain", "provider", provider, "error", err)
		return fmt.Errorf("failed to delete from OS keychain: %w", err)
	}

	km.logger.Info("api key deleted from keychain", "provider", provider)
	return nil
}

// IsAvailable checks whether the OS keychain backend is reachable, returning
// false on headless systems (CI) where no Secret Service is running.
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "__availability_probe__")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.Debug("keychain not available", "error", err)
		return false
	}
	return true
}

// MaskAPIKey masks an API key for display: first 7 chars and last 4 chars.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "(not set)"
	}
	if len(apiKey) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", apiKey[:7], apiKey[len(apiKey)-4:])
}
