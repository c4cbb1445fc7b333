package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/store"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	return NewClient(cfg, store.NewTokenStore(t.TempDir()))
}

func TestGetDoesNotTreatNon2xxAsError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))

	resp, err := Get[models.JobTicket](context.Background(), client, "/thing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.False(t, resp.Successful())
	assert.Nil(t, resp.Body)
}

func TestGetEmptyBodyLeavesBodyNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	resp, err := Get[models.JobTicket](context.Background(), client, "/thing")
	require.NoError(t, err)
	assert.True(t, resp.Successful())
	assert.Nil(t, resp.Body)
}

func TestGetDecodeFailureWrapsErrDecode(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 42}`)) // id must be a string
	}))

	_, err := Get[models.JobTicket](context.Background(), client, "/thing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDecode))
}

func TestBuildURLWithParams(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		params   map[string]string
		want     string
	}{
		{
			name:     "no params",
			endpoint: "/user/calories",
			params:   nil,
			want:     "/user/calories",
		},
		{
			name:     "params are encoded and sorted",
			endpoint: "/user/calories",
			params:   map[string]string{"to": "2026-03-05T23:59:59", "from": "2026-03-01T00:00:00"},
			want:     "/user/calories?from=2026-03-01T00%3A00%3A00&to=2026-03-05T23%3A59%3A59",
		},
		{
			name:     "existing query is preserved",
			endpoint: "/products?limit=10",
			params:   map[string]string{"name": "oat milk"},
			want:     "/products?limit=10&name=oat+milk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildURLWithParams(tt.endpoint, tt.params))
		})
	}
}
