package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSessionNotFound = errors.New("workout session not found")
	ErrInvalidSession  = errors.New("invalid workout session")
)

// WorkoutSession groups the sets of one training session
type WorkoutSession struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	ClientID  string     `json:"client_id,omitempty" bson:"client_id,omitempty"` // Frontend ULID
	UserID    string     `json:"user_id" bson:"user_id"`
	Name      string     `json:"name" bson:"name"` // e.g., "Push Day"
	StartedAt time.Time  `json:"started_at" bson:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" bson:"ended_at,omitempty"`
	Mood      *int       `json:"mood,omitempty" bson:"mood,omitempty"` // 1-5, set when finishing
	Notes     string     `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

const (
	MinMood = 1
	MaxMood = 5
)

// Duration returns the session length, zero while the session is still open
func (s *WorkoutSession) Duration() time.Duration {
	if s.EndedAt == nil || s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

type WorkoutSessionRepository interface {
	Create(ctx context.Context, session *WorkoutSession) error
	GetByID(ctx context.Context, id string) (*WorkoutSession, error)
	// ListByUser returns sessions started on/after from (nil = all), oldest first
	ListByUser(ctx context.Context, userID string, from *time.Time) ([]*WorkoutSession, error)
	// Finish stamps the end time and optional mood of a session
	Finish(ctx context.Context, id string, endedAt time.Time, mood *int) error
}
