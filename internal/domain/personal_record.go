package domain

import (
	"context"
	"time"
)

// RecordType is the closed set of dimensions along which a best is tracked.
// Higher is better for every type and ties never count as an improvement.
type RecordType string

const (
	RecordMaxWeight RecordType = "MAX_WEIGHT"
	RecordMaxReps   RecordType = "MAX_REPS"
	RecordMaxVolume RecordType = "MAX_VOLUME"
	RecordMaxTime   RecordType = "MAX_TIME"
)

// AllRecordTypes lists every record type in evaluation order
var AllRecordTypes = []RecordType{
	RecordMaxWeight,
	RecordMaxReps,
	RecordMaxVolume,
	RecordMaxTime,
}

// Valid reports whether r is part of the shared enumeration
func (r RecordType) Valid() bool {
	switch r {
	case RecordMaxWeight, RecordMaxReps, RecordMaxVolume, RecordMaxTime:
		return true
	}
	return false
}

// PersonalRecord tracks a user's current best for one exercise and record type.
// At most one exists per (user, exercise, record type).
type PersonalRecord struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	UserID        string     `json:"user_id" bson:"user_id"`
	ExerciseID    string     `json:"exercise_id" bson:"exercise_id"`
	RecordType    RecordType `json:"record_type" bson:"record_type"`
	Value         float64    `json:"value" bson:"value"`
	PreviousValue *float64   `json:"previous_value,omitempty" bson:"previous_value,omitempty"`
	SetID         string     `json:"set_id" bson:"set_id"` // Set that achieved the record
	AchievedAt    time.Time  `json:"achieved_at" bson:"achieved_at"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// RecordUpdate is emitted when a set establishes a new best.
// Previous and Improvement are nil for the first record of a type.
type RecordUpdate struct {
	UserID         string     `json:"user_id"`
	ExerciseID     string     `json:"exercise_id"`
	RecordType     RecordType `json:"record_type"`
	Value          float64    `json:"value"`
	Previous       *float64   `json:"previous,omitempty"`
	Improvement    *float64   `json:"improvement,omitempty"`
	ImprovementPct *float64   `json:"improvement_pct,omitempty"`
	SetID          string     `json:"set_id"`
	AchievedAt     time.Time  `json:"achieved_at"`
}

// ToRecord converts the update into the record that supersedes the stored one
func (u RecordUpdate) ToRecord() *PersonalRecord {
	return &PersonalRecord{
		UserID:        u.UserID,
		ExerciseID:    u.ExerciseID,
		RecordType:    u.RecordType,
		Value:         u.Value,
		PreviousValue: u.Previous,
		SetID:         u.SetID,
		AchievedAt:    u.AchievedAt,
	}
}

// PersonalRecordRepository handles persistence for personal records
type PersonalRecordRepository interface {
	// ListByUserAndExercise retrieves the current records of one exercise
	ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*PersonalRecord, error)
	// ListByUser retrieves every current record of a user
	ListByUser(ctx context.Context, userID string) ([]*PersonalRecord, error)
	// CompareAndSet stores the update only if no record exists yet or the stored
	// value is strictly lower. Returns false when the stored value already
	// matches or beats the update. previous is the value that was replaced,
	// nil when the record was created.
	CompareAndSet(ctx context.Context, update RecordUpdate) (applied bool, previous *float64, err error)
	// ReplaceForExercise swaps all records of one exercise for the given set
	ReplaceForExercise(ctx context.Context, userID, exerciseID string, records []*PersonalRecord) error
	// DeleteByExercise removes the records of every user for one exercise
	DeleteByExercise(ctx context.Context, exerciseID string) (int64, error)
}
