package services

import (
	"context"
	"sync"

	"github.com/arodin/nutrisync/internal/api"
	"github.com/arodin/nutrisync/internal/executor"
	"github.com/arodin/nutrisync/internal/models"
)

// ProfileService fetches user profile stats with a single last-known-good
// in-memory cache, served optimistically ahead of the fresh fetch. The
// cache does not survive process restarts.
type ProfileService struct {
	client   *api.Client
	executor *executor.Executor

	mu     sync.Mutex
	cached *models.UserProfile
}

// NewProfileService creates a new profile service
func NewProfileService(client *api.Client, exec *executor.Executor) *ProfileService {
	return &ProfileService{client: client, executor: exec}
}

// Stats streams the profile: the cached value first when present, then the
// fresh fetch result. The channel is closed after one or two emissions; a
// consumer must expect either count.
func (s *ProfileService) Stats(ctx context.Context) <-chan executor.Outcome[models.UserProfile] {
	out := make(chan executor.Outcome[models.UserProfile], 2)

	go func() {
		defer close(out)

		s.mu.Lock()
		cached := s.cached
		s.mu.Unlock()
		if cached != nil {
			out <- executor.Resolve(*cached)
		}

		result := executor.ExecuteHeavy(ctx, s.executor,
			func(ctx context.Context) (*api.Response[models.JobTicket], error) {
				return api.Get[models.JobTicket](ctx, s.client, "/user/stat")
			},
			func(ctx context.Context, requestID string) (*api.Response[models.UserProfile], error) {
				return api.Get[models.UserProfile](ctx, s.client, "/heavy_response/"+requestID)
			},
		)

		if result.IsSuccess() {
			profile := result.Data()
			s.mu.Lock()
			s.cached = &profile
			s.mu.Unlock()
		}

		out <- result
	}()

	return out
}

// ClearCache drops the cached profile, e.g. on logout.
func (s *ProfileService) ClearCache() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}
