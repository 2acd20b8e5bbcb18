package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	log "github.com/sirupsen/logrus"
)

// SessionService manages the lifecycle of workout sessions
type SessionService struct {
	sessionRepo domain.WorkoutSessionRepository
	cache       domain.CacheRepository
	now         func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(sessionRepo domain.WorkoutSessionRepository, cache domain.CacheRepository) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		cache:       cache,
		now:         time.Now,
	}
}

// StartSession opens a new session for a user
func (s *SessionService) StartSession(ctx context.Context, session *domain.WorkoutSession) error {
	if session.UserID == "" {
		return fmt.Errorf("%w: user_id is required", domain.ErrInvalidSession)
	}
	session.Name = strings.TrimSpace(session.Name)
	if session.ClientID == "" {
		session.ClientID = NewClientID()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = s.now()
	}
	session.EndedAt = nil
	session.Mood = nil

	return s.sessionRepo.Create(ctx, session)
}

// FinishSession closes a session owned by userID, optionally rating it
func (s *SessionService) FinishSession(ctx context.Context, userID, sessionID string, mood *int) (*domain.WorkoutSession, error) {
	if mood != nil && (*mood < domain.MinMood || *mood > domain.MaxMood) {
		return nil, fmt.Errorf("%w: mood must be between %d and %d, got %d",
			domain.ErrInvalidSession, domain.MinMood, domain.MaxMood, *mood)
	}

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}

	endedAt := s.now()
	if endedAt.Before(session.StartedAt) {
		endedAt = session.StartedAt
	}
	if err := s.sessionRepo.Finish(ctx, sessionID, endedAt, mood); err != nil {
		return nil, err
	}

	if err := s.cache.DeleteByPattern(ctx, domain.ProgressPattern(userID)); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate progression cache")
	}

	return s.sessionRepo.GetByID(ctx, sessionID)
}
