package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringManager_SaveGetDeleteAPIKey(t *testing.T) {
	km := NewKeyringManager()
	if !km.IsAvailable() {
		t.Skip("OS keychain not available, skipping")
	}

	const provider = "test-provider"
	defer km.DeleteAPIKey(provider)

	require.NoError(t, km.SaveAPIKey(provider, "sk-test123456789"))

	got, err := km.GetAPIKey(provider)
	require.NoError(t, err)
	assert.Equal(t, "sk-test123456789", got)

	require.NoError(t, km.DeleteAPIKey(provider))
	got, err = km.GetAPIKey(provider)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMaskAPIKey(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "(not set)"},
		{"short", "abc123", "***"},
		{"long", "sk-proj-abcdefghijklmnop", "sk-proj...mnop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MaskAPIKey(tc.in))
		})
	}
}
