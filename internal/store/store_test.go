package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStoreEmptyByDefault(t *testing.T) {
	s := NewTokenStore(t.TempDir())

	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestTokenStoreSaveAndRead(t *testing.T) {
	s := NewTokenStore(t.TempDir())

	require.NoError(t, s.SaveTokens("access-1", "refresh-1"))

	assert.Equal(t, "access-1", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())
}

func TestSaveAccessTokenPreservesRefreshToken(t *testing.T) {
	s := NewTokenStore(t.TempDir())

	require.NoError(t, s.SaveTokens("access-1", "refresh-1"))
	require.NoError(t, s.SaveAccessToken("access-2"))

	assert.Equal(t, "access-2", s.AccessToken())
	assert.Equal(t, "refresh-1", s.RefreshToken())
}

func TestClearTokensIsIdempotent(t *testing.T) {
	s := NewTokenStore(t.TempDir())

	require.NoError(t, s.SaveTokens("access-1", "refresh-1"))

	require.NoError(t, s.ClearTokens())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())

	// A second clear on an already-empty store must not fail.
	require.NoError(t, s.ClearTokens())
	assert.Empty(t, s.AccessToken())
	assert.Empty(t, s.RefreshToken())
}

func TestSaveTokensAfterClearOverwritesFully(t *testing.T) {
	s := NewTokenStore(t.TempDir())

	require.NoError(t, s.SaveTokens("access-1", "refresh-1"))
	require.NoError(t, s.ClearTokens())
	require.NoError(t, s.SaveTokens("access-2", "refresh-2"))

	assert.Equal(t, "access-2", s.AccessToken())
	assert.Equal(t, "refresh-2", s.RefreshToken())
}

func TestSettingsStoreBaseURL(t *testing.T) {
	s := NewSettingsStore(t.TempDir())

	assert.Empty(t, s.BaseURL())

	require.NoError(t, s.SaveBaseURL("http://10.0.0.5:8080"))
	assert.Equal(t, "http://10.0.0.5:8080", s.BaseURL())

	require.NoError(t, s.SaveBaseURL("http://10.0.0.6:8080"))
	assert.Equal(t, "http://10.0.0.6:8080", s.BaseURL())
}
