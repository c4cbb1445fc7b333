package services

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/store"
)

// newBackend wires a client and executor against a fake backend with fast
// polling so heavy-request tests stay quick.
func newBackend(t *testing.T, handler http.Handler) (*api.Client, *executor.Executor, *store.TokenStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	cfg.PollInterval = 5 * time.Millisecond
	cfg.PollTimeout = 500 * time.Millisecond

	tokens := store.NewTokenStore(t.TempDir())
	return api.NewClient(cfg, tokens), executor.New(cfg), tokens
}
