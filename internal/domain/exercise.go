package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDuplicateExercise = errors.New("exercise name already exists")
	ErrInvalidExercise   = errors.New("invalid exercise")
)

// MuscleGroup is the closed set of muscle groups shared with the storage layer.
type MuscleGroup string

const (
	MuscleChest      MuscleGroup = "CHEST"
	MuscleBack       MuscleGroup = "BACK"
	MuscleShoulders  MuscleGroup = "SHOULDERS"
	MuscleBiceps     MuscleGroup = "BICEPS"
	MuscleTriceps    MuscleGroup = "TRICEPS"
	MuscleForearms   MuscleGroup = "FOREARMS"
	MuscleQuadriceps MuscleGroup = "QUADRICEPS"
	MuscleHamstrings MuscleGroup = "HAMSTRINGS"
	MuscleGlutes     MuscleGroup = "GLUTES"
	MuscleCalves     MuscleGroup = "CALVES"
	MuscleCore       MuscleGroup = "CORE"
	MuscleFullBody   MuscleGroup = "FULL_BODY"
	MuscleCardio     MuscleGroup = "CARDIO"
)

// AllMuscleGroups lists every muscle group in display order
var AllMuscleGroups = []MuscleGroup{
	MuscleChest, MuscleBack, MuscleShoulders, MuscleBiceps, MuscleTriceps, MuscleForearms,
	MuscleQuadriceps, MuscleHamstrings, MuscleGlutes, MuscleCalves, MuscleCore,
	MuscleFullBody, MuscleCardio,
}

// Valid reports whether m is part of the shared enumeration
func (m MuscleGroup) Valid() bool {
	for _, g := range AllMuscleGroups {
		if g == m {
			return true
		}
	}
	return false
}

// Equipment is the closed set of equipment kinds
type Equipment string

const (
	EquipmentBarbell    Equipment = "BARBELL"
	EquipmentDumbbell   Equipment = "DUMBBELL"
	EquipmentMachine    Equipment = "MACHINE"
	EquipmentCable      Equipment = "CABLE"
	EquipmentKettlebell Equipment = "KETTLEBELL"
	EquipmentBodyweight Equipment = "BODYWEIGHT"
	EquipmentBand       Equipment = "BAND"
	EquipmentOther      Equipment = "OTHER"
)

// Valid reports whether e is part of the shared enumeration
func (e Equipment) Valid() bool {
	switch e {
	case EquipmentBarbell, EquipmentDumbbell, EquipmentMachine, EquipmentCable,
		EquipmentKettlebell, EquipmentBodyweight, EquipmentBand, EquipmentOther:
		return true
	}
	return false
}

// Exercise represents a move in the global library
type Exercise struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	Name        string      `json:"name" bson:"name"` // Unique Index
	MuscleGroup MuscleGroup `json:"muscle_group" bson:"muscle_group"`
	Equipment   Equipment   `json:"equipment" bson:"equipment"`
	IsTimed     bool        `json:"is_timed" bson:"is_timed"` // Planks, carries, holds
	VideoURL    string      `json:"video_url,omitempty" bson:"video_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" bson:"updated_at"`
}

// ExercisePatch carries the fields of a partial exercise update; nil fields
// are left untouched
type ExercisePatch struct {
	Name        *string      `json:"name"`
	MuscleGroup *MuscleGroup `json:"muscle_group"`
	Equipment   *Equipment   `json:"equipment"`
	IsTimed     *bool        `json:"is_timed"`
	VideoURL    *string      `json:"video_url"`
}

// Meta returns the subset of the exercise the record engine needs
func (e *Exercise) Meta() ExerciseMeta {
	return ExerciseMeta{
		ExerciseID:  e.ID,
		MuscleGroup: e.MuscleGroup,
		IsTimed:     e.IsTimed,
	}
}

// ExerciseMeta is the exercise metadata consumed by evaluation and aggregation
type ExerciseMeta struct {
	ExerciseID  string      `json:"exercise_id"`
	MuscleGroup MuscleGroup `json:"muscle_group"`
	IsTimed     bool        `json:"is_timed"`
}

// ExerciseCatalog maps exercise IDs to their metadata
type ExerciseCatalog map[string]ExerciseMeta

// NewExerciseCatalog indexes a list of exercises by ID
func NewExerciseCatalog(exercises []*Exercise) ExerciseCatalog {
	catalog := make(ExerciseCatalog, len(exercises))
	for _, ex := range exercises {
		catalog[ex.ID] = ex.Meta()
	}
	return catalog
}

// Lookup returns the metadata for an exercise ID
func (c ExerciseCatalog) Lookup(exerciseID string) (ExerciseMeta, bool) {
	meta, ok := c[exerciseID]
	return meta, ok
}

type ExerciseRepository interface {
	Create(ctx context.Context, exercise *Exercise) error
	GetByID(ctx context.Context, id string) (*Exercise, error)
	// GetByIDs returns the exercises found among ids; unknown ids are skipped
	GetByIDs(ctx context.Context, ids []string) ([]*Exercise, error)
	List(ctx context.Context, filter map[string]interface{}) ([]*Exercise, error)
	Update(ctx context.Context, exercise *Exercise) error
	Delete(ctx context.Context, id string) error
}
