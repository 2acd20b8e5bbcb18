package domain

import "errors"

// Common errors
var (
	ErrNotFound  = errors.New("record not found")
	ErrInvalidID = errors.New("invalid id format")
)

// Record engine errors
var (
	ErrInvalidSet         = errors.New("invalid set")
	ErrOrderingViolation  = errors.New("sets are not in chronological order")
	ErrUnknownExercise    = errors.New("exercise metadata missing")
	ErrInvalidRecordState = errors.New("invalid personal record state")
	ErrRecordConflict     = errors.New("personal record changed concurrently")
	ErrInvalidMetric      = errors.New("unknown progression metric")
)

// Cache errors
var (
	ErrCacheMiss = errors.New("cache miss")
)
