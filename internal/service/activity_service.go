package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/helpdesk-br/chamado-service/internal/domain"
	"github.com/helpdesk-br/chamado-service/internal/persistence"
	"github.com/helpdesk-br/chamado-service/internal/repository"
)

const activityKeyPrefix = "activity:"

// ActivityService tracks when each account was last seen. Heartbeats write to
// Redis with a TTL equal to the online window (fast path shared across
// instances) and to the users table (durable fallback when Redis is down).
type ActivityService struct {
	redis  *persistence.Redis
	users  repository.UserRepository
	window time.Duration
	logger *zap.Logger
}

// NewActivityService creates the service.
func NewActivityService(redis *persistence.Redis, users repository.UserRepository, window time.Duration, logger *zap.Logger) *ActivityService {
	return &ActivityService{redis: redis, users: users, window: window, logger: logger}
}

// Heartbeat records that the user is active right now.
func (s *ActivityService) Heartbeat(ctx context.Context, userID string) (time.Time, error) {
	now := time.Now().UTC()

	if client := s.redis.Handle(); client != nil {
		if err := client.Set(ctx, activityKeyPrefix+userID, now.Format(time.RFC3339Nano), s.window).Err(); err != nil {
			s.logger.Warn("redis heartbeat write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	if err := s.users.UpdateLastActivity(ctx, userID, now); err != nil {
		return time.Time{}, err
	}
	return now, nil
}

// LastSeen returns the freshest known activity timestamp for the user, nil
// when the user was never seen.
func (s *ActivityService) LastSeen(ctx context.Context, user *domain.User) *time.Time {
	if client := s.redis.Handle(); client != nil {
		if val, err := client.Get(ctx, activityKeyPrefix+user.ID).Result(); err == nil {
			if ts, err := time.Parse(time.RFC3339Nano, val); err == nil {
				return &ts
			}
		}
	}
	return user.LastActivityAt
}

// Window returns the configured online window.
func (s *ActivityService) Window() time.Duration {
	return s.window
}
