package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrSetNotFound    = errors.New("set log not found")
	ErrDuplicateSetID = errors.New("set with this client id already logged")
)

// LoggedSet is one performed set. Numeric fields are optional depending on the
// exercise shape, so nil means "not recorded" while zero is a real value
// (e.g. a bodyweight set with 0 kg added).
type LoggedSet struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	ClientID    string    `json:"client_id,omitempty" bson:"client_id,omitempty"` // Frontend ULID
	UserID      string    `json:"user_id" bson:"user_id"`
	SessionID   string    `json:"session_id" bson:"session_id"`
	ExerciseID  string    `json:"exercise_id" bson:"exercise_id"`
	SetNumber   int       `json:"set_number" bson:"set_number"` // 1-based order within the exercise
	Weight      *float64  `json:"weight,omitempty" bson:"weight,omitempty"`
	Reps        *int      `json:"reps,omitempty" bson:"reps,omitempty"`
	TimeSeconds *int      `json:"time_seconds,omitempty" bson:"time_seconds,omitempty"`
	RPE         *int      `json:"rpe,omitempty" bson:"rpe,omitempty"` // 1-10
	IsWarmup    bool      `json:"is_warmup" bson:"is_warmup"`
	IsDropset   bool      `json:"is_dropset" bson:"is_dropset"`
	LoggedAt    time.Time `json:"logged_at" bson:"logged_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// CountsForRecords reports whether the set is a genuine working set.
// Warmups and dropsets never establish records.
func (s *LoggedSet) CountsForRecords() bool {
	return !s.IsWarmup && !s.IsDropset
}

// SetQuery narrows a history read
type SetQuery struct {
	UserID     string
	ExerciseID string     // optional
	From       *time.Time // inclusive, nil = all time
}

// SetLogRepository handles persistence for logged sets
type SetLogRepository interface {
	// Create adds a new set log document
	Create(ctx context.Context, set *LoggedSet) error
	// GetByID retrieves a set by its MongoDB ObjectID
	GetByID(ctx context.Context, id string) (*LoggedSet, error)
	// GetByClientID retrieves a set by its frontend ULID
	GetByClientID(ctx context.Context, clientID string) (*LoggedSet, error)
	// List returns the sets matching the query sorted by logged_at ascending
	List(ctx context.Context, query SetQuery) ([]*LoggedSet, error)
	// Delete removes a set by ID
	Delete(ctx context.Context, id string) error
}
