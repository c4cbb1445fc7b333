package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/models"
	"github.com/arodin/nutrisync/internal/store"
)

const (
	testPollInterval = 10 * time.Millisecond
	testPollTimeout  = 500 * time.Millisecond
)

type stack struct {
	client   *api.Client
	executor *Executor
	srv      *httptest.Server
}

func newStack(t *testing.T, handler http.Handler) *stack {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL
	cfg.PollInterval = testPollInterval
	cfg.PollTimeout = testPollTimeout

	return &stack{
		client:   api.NewClient(cfg, store.NewTokenStore(t.TempDir())),
		executor: New(cfg),
		srv:      srv,
	}
}

func submitCall(s *stack, endpoint string) Call[models.JobTicket] {
	return func(ctx context.Context) (*api.Response[models.JobTicket], error) {
		return api.Get[models.JobTicket](ctx, s.client, endpoint)
	}
}

func pollCall(s *stack) PollCall[models.CalorieStats] {
	return func(ctx context.Context, requestID string) (*api.Response[models.CalorieStats], error) {
		return api.Get[models.CalorieStats](ctx, s.client, "/heavy_response/"+requestID)
	}
}

func TestExecuteSuccess(t *testing.T) {
	s := newStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.MessageResponse{Message: "created"})
	}))

	result := Execute(context.Background(), s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Post[models.MessageResponse](ctx, s.client, "/user/create", models.AuthRequest{Username: "u"})
	})

	require.True(t, result.IsSuccess())
	assert.Equal(t, "created", result.Data().Message)
}

func TestExecuteEmptyBodyIsError(t *testing.T) {
	s := newStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	result := Execute(context.Background(), s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Get[models.MessageResponse](ctx, s.client, "/thing")
	})

	require.True(t, result.IsError())
	assert.Equal(t, KindEmptyBody, result.Err().Kind)
	assert.Equal(t, "empty response body", result.Err().Message)
}

func TestExecuteHTTPStatusError(t *testing.T) {
	s := newStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "broken", http.StatusInternalServerError)
	}))

	result := Execute(context.Background(), s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Get[models.MessageResponse](ctx, s.client, "/thing")
	})

	require.True(t, result.IsError())
	assert.Equal(t, KindHTTPStatus, result.Err().Kind)
	assert.Contains(t, result.Err().Message, "500")
}

func TestExecuteNetworkError(t *testing.T) {
	s := newStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	s.srv.Close()

	result := Execute(context.Background(), s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Get[models.MessageResponse](ctx, s.client, "/thing")
	})

	require.True(t, result.IsError())
	assert.Equal(t, KindNetwork, result.Err().Kind)
}

func TestExecuteDecodeFaultIsExecutionError(t *testing.T) {
	s := newStack(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message": 1}`))
	}))

	result := Execute(context.Background(), s.executor, func(ctx context.Context) (*api.Response[models.MessageResponse], error) {
		return api.Get[models.MessageResponse](ctx, s.client, "/thing")
	})

	require.True(t, result.IsError())
	assert.Equal(t, KindExecution, result.Err().Kind)
}

func TestHeavy404IsNotAnError(t *testing.T) {
	requestID := uuid.NewString()
	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: requestID})
	})
	mux.HandleFunc("/heavy_response/"+requestID, func(w http.ResponseWriter, r *http.Request) {
		if polls.Add(1) <= 2 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.CalorieStats{Stats: []models.CalorieStat{
			{Time: "2026-03-01T12:00:00", Calories: 450},
		}})
	})

	s := newStack(t, mux)
	start := time.Now()
	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))
	elapsed := time.Since(start)

	require.True(t, result.IsSuccess())
	require.Len(t, result.Data().Stats, 1)
	assert.Equal(t, 450, result.Data().Stats[0].Calories)

	// Two 404s, then success: exactly three polls with two inter-poll waits.
	assert.Equal(t, int64(3), polls.Load())
	assert.GreaterOrEqual(t, elapsed, 2*testPollInterval)
}

func TestHeavyTimeoutBeatsEventualSuccess(t *testing.T) {
	requestID := uuid.NewString()
	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: requestID})
	})
	mux.HandleFunc("/heavy_response/"+requestID, func(w http.ResponseWriter, r *http.Request) {
		// Would succeed on the 100th poll, far beyond the deadline.
		if polls.Add(1) < 100 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.CalorieStats{})
	})

	s := newStack(t, mux)
	s.executor.pollTimeout = 60 * time.Millisecond

	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))

	require.True(t, result.IsError())
	assert.Equal(t, KindPollTimeout, result.Err().Kind)
	assert.Contains(t, result.Err().Message, "polling timed out")
}

func TestHeavyMissingRequestIDShortCircuits(t *testing.T) {
	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: "   "})
	})
	mux.HandleFunc("/heavy_response/", func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
	})

	s := newStack(t, mux)
	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))

	require.True(t, result.IsError())
	assert.Equal(t, KindInvalidJobID, result.Err().Kind)
	assert.Equal(t, int64(0), polls.Load())
}

func TestHeavyInitialFailureCarriesStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})

	s := newStack(t, mux)
	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))

	require.True(t, result.IsError())
	assert.Equal(t, KindHTTPStatus, result.Err().Kind)
	assert.Contains(t, result.Err().Message, "initial")
	assert.Contains(t, result.Err().Message, "503")
}

func TestHeavyPollFailureStopsWithoutRetry(t *testing.T) {
	requestID := uuid.NewString()
	var polls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: requestID})
	})
	mux.HandleFunc("/heavy_response/"+requestID, func(w http.ResponseWriter, r *http.Request) {
		polls.Add(1)
		http.Error(w, "job crashed", http.StatusInternalServerError)
	})

	s := newStack(t, mux)
	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))

	require.True(t, result.IsError())
	assert.Equal(t, KindHTTPStatus, result.Err().Kind)
	assert.Contains(t, result.Err().Message, "polling error")
	assert.Equal(t, int64(1), polls.Load())
}

func TestHeavyPollSuccessWithEmptyBody(t *testing.T) {
	requestID := uuid.NewString()

	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: requestID})
	})
	mux.HandleFunc("/heavy_response/"+requestID, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s := newStack(t, mux)
	result := ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))

	require.True(t, result.IsError())
	assert.Equal(t, KindEmptyBody, result.Err().Kind)
}

func TestHeavyConcurrentInvocationsAreIndependent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/calories", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.JobTicket{ID: uuid.NewString()})
	})
	mux.HandleFunc("/heavy_response/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.CalorieStats{Stats: []models.CalorieStat{
			{Time: "2026-03-01T12:00:00", Calories: 100},
		}})
	})

	s := newStack(t, mux)

	results := make(chan Outcome[models.CalorieStats], 2)
	for i := 0; i < 2; i++ {
		go func() {
			results <- ExecuteHeavy(context.Background(), s.executor, submitCall(s, "/user/calories"), pollCall(s))
		}()
	}

	for i := 0; i < 2; i++ {
		result := <-results
		assert.True(t, result.IsSuccess())
	}
}

func TestOutcomeVariantsAreExclusive(t *testing.T) {
	loading := Pending[int]()
	assert.True(t, loading.IsLoading())
	assert.False(t, loading.IsSuccess())
	assert.False(t, loading.IsError())

	success := Resolve(7)
	assert.True(t, success.IsSuccess())
	assert.False(t, success.IsLoading())
	assert.False(t, success.IsError())
	assert.Equal(t, 7, success.Data())
	assert.Nil(t, success.Err())

	failure := Fail[int](KindNetwork, "network error: %s", "connection refused")
	assert.True(t, failure.IsError())
	assert.False(t, failure.IsLoading())
	assert.False(t, failure.IsSuccess())
	require.NotNil(t, failure.Err())
	assert.Equal(t, KindNetwork, failure.Err().Kind)
	assert.Equal(t, "network error: connection refused", failure.Err().Message)
}
