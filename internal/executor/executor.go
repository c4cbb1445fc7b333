package executor

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/config"
	"github.com/arodin/nutrisync/internal/logger"
	"github.com/arodin/nutrisync/internal/models"
)

// Call performs exactly one HTTP call producing a typed response.
type Call[T any] func(ctx context.Context) (*api.Response[T], error)

// PollCall retrieves the final typed result of a submitted job.
type PollCall[T any] func(ctx context.Context, requestID string) (*api.Response[T], error)

// Executor turns HTTP calls into Outcome values. It owns error
// classification and the polling policy for heavy requests. Invocations are
// independent; two concurrent heavy requests never share state.
type Executor struct {
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// New creates an executor with the polling policy from cfg.
func New(cfg *config.Config) *Executor {
	return &Executor{
		pollInterval: cfg.PollInterval,
		pollTimeout:  cfg.PollTimeout,
	}
}

// Execute performs a plain call/response operation. It never returns the
// loading variant and never panics or propagates an error past its
// boundary; every fault becomes an error outcome.
func Execute[T any](ctx context.Context, e *Executor, call Call[T]) Outcome[T] {
	resp, err := call(ctx)
	if err != nil {
		return classify[T](err, "")
	}

	if !resp.Successful() {
		return Fail[T](KindHTTPStatus, "API error: %s", resp.Status)
	}

	if resp.Body == nil {
		return Fail[T](KindEmptyBody, "empty response body")
	}

	return Resolve(*resp.Body)
}

// ExecuteHeavy submits a job via initial and polls for its result. The
// submission must yield a non-blank requestId; polling then repeats until
// the result is ready (404 means "not ready yet"), a terminal failure
// occurs, or the overall deadline elapses.
func ExecuteHeavy[T any](ctx context.Context, e *Executor, initial Call[models.JobTicket], poll PollCall[T]) Outcome[T] {
	resp, err := initial(ctx)
	if err != nil {
		return classify[T](err, "initial")
	}

	if !resp.Successful() {
		return Fail[T](KindHTTPStatus, "API error (initial): %s", resp.Status)
	}

	if resp.Body == nil || strings.TrimSpace(resp.Body.ID) == "" {
		return Fail[T](KindInvalidJobID, "empty or invalid requestId received")
	}

	requestID := resp.Body.ID
	logger.Debug("Received requestId %s, starting polling", requestID)
	return pollForResult(ctx, e, requestID, poll)
}

func pollForResult[T any](ctx context.Context, e *Executor, requestID string, poll PollCall[T]) Outcome[T] {
	// Hard wall-clock deadline for the whole loop. The derived context
	// also cancels an in-flight poll at the wall, so a hanging call
	// cannot stall past it.
	ctx, cancel := context.WithTimeout(ctx, e.pollTimeout)
	defer cancel()

	for {
		resp, err := poll(ctx, requestID)
		if err != nil {
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return pollTimeout[T](e, requestID)
			}
			return classify[T](err, "polling")
		}

		switch {
		case resp.Code == http.StatusNotFound:
			// Result not registered yet; the only status retried.
			logger.Debug("Result not yet available (404) for requestId %s", requestID)
			select {
			case <-time.After(e.pollInterval):
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					return pollTimeout[T](e, requestID)
				}
				return Fail[T](KindExecution, "polling canceled for requestId %s: %v", requestID, ctx.Err())
			}

		case !resp.Successful():
			return Fail[T](KindHTTPStatus, "polling error: %s", resp.Status)

		case resp.Body == nil:
			return Fail[T](KindEmptyBody, "polling error: received %d with empty body", resp.Code)

		default:
			logger.Debug("Polling succeeded for requestId %s", requestID)
			return Resolve(*resp.Body)
		}
	}
}

func pollTimeout[T any](e *Executor, requestID string) Outcome[T] {
	logger.Error("Polling timed out after %v for requestId %s", e.pollTimeout, requestID)
	return Fail[T](KindPollTimeout, "polling timed out after %d seconds for requestId %s",
		int(e.pollTimeout.Seconds()), requestID)
}

func classify[T any](err error, phase string) Outcome[T] {
	prefix := ""
	if phase != "" {
		prefix = " (" + phase + ")"
	}

	if errors.Is(err, api.ErrDecode) {
		return Fail[T](KindExecution, "execution error%s: %v", prefix, err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return Fail[T](KindNetwork, "network error%s: %v", prefix, err)
	}

	return Fail[T](KindExecution, "execution error%s: %v", prefix, err)
}
