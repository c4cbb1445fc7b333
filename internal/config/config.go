package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

// DefaultBaseURL is the compiled-in server endpoint, used when neither the
// environment nor the persisted settings provide one.
const DefaultBaseURL = "http://192.168.31.111:8080"

// Config holds all application configuration
type Config struct {
	// API settings
	BaseURL        string
	RequestTimeout time.Duration

	// Heavy request polling settings
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		RequestTimeout: 30 * time.Second,
		PollInterval:   500 * time.Millisecond,
		PollTimeout:    10 * time.Second,
	}
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() {
	if baseURL := os.Getenv("NUTRISYNC_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}

	if timeout := os.Getenv("NUTRISYNC_REQUEST_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.RequestTimeout = time.Duration(t) * time.Second
		}
	}

	if interval := os.Getenv("NUTRISYNC_POLL_INTERVAL"); interval != "" {
		if i, err := strconv.Atoi(interval); err == nil {
			c.PollInterval = time.Duration(i) * time.Millisecond
		}
	}

	if timeout := os.Getenv("NUTRISYNC_POLL_TIMEOUT"); timeout != "" {
		if t, err := strconv.Atoi(timeout); err == nil {
			c.PollTimeout = time.Duration(t) * time.Second
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL cannot be empty")
	}

	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("base URL is not a valid URL: %w", err)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got: %s", c.RequestTimeout)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got: %s", c.PollInterval)
	}

	if c.PollTimeout <= c.PollInterval {
		return fmt.Errorf("poll timeout must exceed the poll interval, got: %s", c.PollTimeout)
	}

	return nil
}
