package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/store"
)

// authTransport decorates every outgoing request with a bearer token from
// the token store and reacts to 401 responses by refreshing the access
// token and re-issuing the request exactly once. Refresh itself goes over a
// bare client so it is never intercepted recursively, and concurrent 401s
// share a single refresh flight.
type authTransport struct {
	base       http.RoundTripper
	tokens     *store.TokenStore
	refreshURL string

	// bare client for the refresh call, no auth decoration
	refreshClient *http.Client

	flight singleflight.Group
}

func newAuthTransport(cfg *config.Config, tokens *store.TokenStore) *authTransport {
	return &authTransport{
		base:          http.DefaultTransport,
		tokens:        tokens,
		refreshURL:    strings.TrimRight(cfg.BaseURL, "/") + "/refresh",
		refreshClient: &http.Client{Timeout: cfg.RequestTimeout},
	}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt, err := cloneRequest(req)
	if err != nil {
		return nil, err
	}
	if token := t.tokens.AccessToken(); token != "" {
		attempt.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := t.base.RoundTrip(attempt)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	// A request whose body cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	if t.tokens.RefreshToken() == "" {
		logger.Warn("Authorization expired and no refresh token is stored")
		return resp, nil
	}

	newToken, refreshErr := t.refresh(req.Context())
	if refreshErr != nil {
		logger.Error("Token refresh failed: %v", refreshErr)
		return resp, nil
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry, err := cloneRequest(req)
	if err != nil {
		return nil, err
	}
	retry.Header.Set("Authorization", "Bearer "+newToken)

	// The retried response is returned as-is: a second 401 surfaces to
	// the caller without another refresh attempt.
	return t.base.RoundTrip(retry)
}

// refresh obtains a new access token, persists it and returns it.
// Concurrent callers are collapsed into one flight; losers reuse the
// winner's token instead of burning the refresh token twice.
func (t *authTransport) refresh(ctx context.Context) (string, error) {
	v, err, _ := t.flight.Do("token-refresh", func() (interface{}, error) {
		refreshToken := t.tokens.RefreshToken()
		if refreshToken == "" {
			return nil, errors.New("no refresh token available")
		}

		payload, err := json.Marshal(models.RefreshRequest{Token: refreshToken})
		if err != nil {
			return nil, fmt.Errorf("error marshaling refresh request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("error creating refresh request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := t.refreshClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("refresh request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("refresh rejected: %s", resp.Status)
		}

		var refreshed models.RefreshResponse
		if err := json.NewDecoder(resp.Body).Decode(&refreshed); err != nil {
			return nil, fmt.Errorf("error decoding refresh response: %w", err)
		}
		if refreshed.Token == "" {
			return nil, errors.New("refresh returned an empty token")
		}

		if err := t.tokens.SaveAccessToken(refreshed.Token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}

		logger.Info("Access token refreshed")
		return refreshed.Token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// cloneRequest copies a request with a replayable body so the original is
// never consumed twice.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("error replaying request body: %w", err)
		}
		clone.Body = body
	}
	return clone, nil
}
