package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/arodin/nutrisync/internal/logger"
)

const (
	credentialsFile = "credentials.json"
	settingsFile    = "settings.json"
)

// GetAppDataDir returns the application data directory
func GetAppDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	appDataDir := filepath.Join(homeDir, ".nutrisync")
	if err := os.MkdirAll(appDataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create app data directory: %w", err)
	}

	return appDataDir, nil
}

type credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore persists the access/refresh token pair as opaque strings.
// Absence is represented as an empty string, never an error.
type TokenStore struct {
	path string
	mu   sync.Mutex
}

// NewTokenStore creates a token store backed by a file in dir.
func NewTokenStore(dir string) *TokenStore {
	return &TokenStore{path: filepath.Join(dir, credentialsFile)}
}

// OpenTokenStore creates a token store in the default app data directory.
func OpenTokenStore() (*TokenStore, error) {
	dir, err := GetAppDataDir()
	if err != nil {
		return nil, err
	}
	return NewTokenStore(dir), nil
}

// AccessToken returns the persisted access token, or "" when absent.
func (s *TokenStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().AccessToken
}

// RefreshToken returns the persisted refresh token, or "" when absent.
func (s *TokenStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load().RefreshToken
}

// SaveTokens overwrites both tokens, e.g. after login or registration.
func (s *TokenStore) SaveTokens(accessToken, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Debug("Saving access and refresh tokens")
	return s.save(credentials{AccessToken: accessToken, RefreshToken: refreshToken})
}

// SaveAccessToken overwrites only the access token, leaving the refresh
// token untouched. Used after a token refresh.
func (s *TokenStore) SaveAccessToken(accessToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Debug("Saving refreshed access token")
	creds := s.load()
	creds.AccessToken = accessToken
	return s.save(creds)
}

// ClearTokens removes both tokens. Safe to call when nothing is stored.
func (s *TokenStore) ClearTokens() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	logger.Debug("Clearing tokens")
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}
	return nil
}

func (s *TokenStore) load() credentials {
	var creds credentials
	fileData, err := os.ReadFile(s.path)
	if err != nil {
		return creds
	}
	if err := json.Unmarshal(fileData, &creds); err != nil {
		logger.Warn("Discarding unreadable credentials file: %v", err)
		return credentials{}
	}
	return creds
}

func (s *TokenStore) save(creds credentials) error {
	jsonData, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

type settings struct {
	BaseURL string `json:"base_url"`
}

// SettingsStore persists the user-set server endpoint override.
type SettingsStore struct {
	path string
	mu   sync.Mutex
}

// NewSettingsStore creates a settings store backed by a file in dir.
func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{path: filepath.Join(dir, settingsFile)}
}

// OpenSettingsStore creates a settings store in the default app data directory.
func OpenSettingsStore() (*SettingsStore, error) {
	dir, err := GetAppDataDir()
	if err != nil {
		return nil, err
	}
	return NewSettingsStore(dir), nil
}

// BaseURL returns the persisted base URL override, or "" when unset.
func (s *SettingsStore) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cfg settings
	fileData, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	if err := json.Unmarshal(fileData, &cfg); err != nil {
		logger.Warn("Discarding unreadable settings file: %v", err)
		return ""
	}
	return cfg.BaseURL
}

// SaveBaseURL persists the base URL override.
func (s *SettingsStore) SaveBaseURL(baseURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jsonData, err := json.Marshal(settings{BaseURL: baseURL})
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(s.path, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}
