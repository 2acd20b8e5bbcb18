package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"github.com/mansoorceksport/liftlog/internal/record"
	"github.com/mansoorceksport/liftlog/internal/telemetry"
	"github.com/oklog/ulid/v2"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/mansoorceksport/liftlog/internal/service"

// NewClientID creates a new ULID string for documents logged without one
func NewClientID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// LogSetResult is the persisted set plus the records it established
type LogSetResult struct {
	Set     *domain.LoggedSet     `json:"set"`
	Records []domain.RecordUpdate `json:"records"`
	Replay  bool                  `json:"replay,omitempty"` // Set was already logged under this client id
}

// RecordService persists sets and keeps personal records in step with them
type RecordService struct {
	setRepo      domain.SetLogRepository
	recordRepo   domain.PersonalRecordRepository
	exerciseRepo domain.ExerciseRepository
	cache        domain.CacheRepository
	maxRetries   int
	now          func() time.Time

	tracer      trace.Tracer
	instruments *telemetry.Instruments
}

// NewRecordService creates a new record service
func NewRecordService(
	setRepo domain.SetLogRepository,
	recordRepo domain.PersonalRecordRepository,
	exerciseRepo domain.ExerciseRepository,
	cache domain.CacheRepository,
	maxRetries int,
	instruments *telemetry.Instruments,
) *RecordService {
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &RecordService{
		setRepo:      setRepo,
		recordRepo:   recordRepo,
		exerciseRepo: exerciseRepo,
		cache:        cache,
		maxRetries:   maxRetries,
		now:          time.Now,
		tracer:       otel.Tracer(instrumentationName),
		instruments:  instruments,
	}
}

// LogSet validates and stores a set, then applies any records it sets.
// A set whose client id was already logged is returned as is, so retried
// submissions never double count.
func (s *RecordService) LogSet(ctx context.Context, set *domain.LoggedSet) (*LogSetResult, error) {
	ctx, span := s.tracer.Start(ctx, "record.LogSet")
	defer span.End()

	if set == nil {
		return nil, fmt.Errorf("%w: set is required", domain.ErrInvalidSet)
	}
	if set.ClientID != "" {
		replayed, err := s.replay(ctx, set)
		if err != nil || replayed != nil {
			return replayed, err
		}
	} else {
		set.ClientID = NewClientID()
	}
	if set.LoggedAt.IsZero() {
		set.LoggedAt = s.now()
	}
	if err := record.ValidateSet(set); err != nil {
		return nil, err
	}

	meta, err := s.exerciseMeta(ctx, set.ExerciseID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("user.id", set.UserID),
		attribute.String("exercise.id", set.ExerciseID),
	)

	if err := s.setRepo.Create(ctx, set); err != nil {
		if errors.Is(err, domain.ErrDuplicateSetID) {
			// Lost the insert race to a retry of the same submission
			replayed, rerr := s.replay(ctx, set)
			if rerr != nil || replayed != nil {
				return replayed, rerr
			}
		}
		return nil, fmt.Errorf("failed to save set: %w", err)
	}

	updates, err := s.applyRecords(ctx, set, meta)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordConflict) {
			return nil, err
		}
		// The set is stored and stored records only ever move up, so a
		// rebuild can settle what the retries could not.
		log.WithFields(log.Fields{
			"user_id":     set.UserID,
			"exercise_id": set.ExerciseID,
			"set_id":      set.ID,
		}).WithError(err).Warn("personal records left unsettled")
	}

	span.SetAttributes(attribute.Int("records.applied", len(updates)))
	if len(updates) > 0 {
		log.WithFields(log.Fields{
			"user_id":     set.UserID,
			"exercise_id": set.ExerciseID,
			"set_id":      set.ID,
			"records":     len(updates),
		}).Info("personal records established")
	}

	s.invalidate(ctx, set.UserID)
	return &LogSetResult{Set: set, Records: updates}, nil
}

// replay returns the stored set logged under set's client id, or nil when the
// client id is new
func (s *RecordService) replay(ctx context.Context, set *domain.LoggedSet) (*LogSetResult, error) {
	existing, err := s.setRepo.GetByClientID(ctx, set.ClientID)
	if err != nil {
		if errors.Is(err, domain.ErrSetNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check client id: %w", err)
	}
	if existing.UserID != set.UserID {
		return nil, fmt.Errorf("%w: client_id already used", domain.ErrInvalidSet)
	}
	return &LogSetResult{Set: existing, Records: []domain.RecordUpdate{}, Replay: true}, nil
}

// applyRecords evaluates the set against the stored records and writes each
// improvement with a compare-and-set. A lost race means someone else moved the
// record, so the set is judged again against the fresh state.
func (s *RecordService) applyRecords(ctx context.Context, set *domain.LoggedSet, meta domain.ExerciseMeta) ([]domain.RecordUpdate, error) {
	applied := make(map[domain.RecordType]domain.RecordUpdate)

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		current, err := s.recordRepo.ListByUserAndExercise(ctx, set.UserID, set.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("failed to load personal records: %w", err)
		}

		updates, err := record.EvaluateSet(set, meta, current)
		if err != nil {
			return nil, err
		}

		conflict := false
		for _, u := range updates {
			ok, previous, err := s.recordRepo.CompareAndSet(ctx, u)
			if err != nil {
				return nil, fmt.Errorf("failed to save personal record: %w", err)
			}
			if !ok {
				conflict = true
				s.instruments.RecordConflict(ctx, u.RecordType)
				continue
			}
			// A concurrent writer may have moved the record between our read and the write
			applied[u.RecordType] = record.Rebase(u, previous)
			s.instruments.RecordDetected(ctx, u.RecordType)
		}

		if !conflict {
			return orderedUpdates(applied), nil
		}
	}

	return orderedUpdates(applied), fmt.Errorf("%w: gave up after %d attempts", domain.ErrRecordConflict, s.maxRetries)
}

// DeleteSet removes a set and recomputes the records of its exercise from
// the remaining history
func (s *RecordService) DeleteSet(ctx context.Context, userID, setID string) error {
	ctx, span := s.tracer.Start(ctx, "record.DeleteSet")
	defer span.End()

	set, err := s.setRepo.GetByID(ctx, setID)
	if err != nil {
		return err
	}
	if set.UserID != userID {
		return domain.ErrSetNotFound
	}

	if err := s.setRepo.Delete(ctx, setID); err != nil {
		return fmt.Errorf("failed to delete set: %w", err)
	}

	if _, err := s.RebuildRecords(ctx, userID, set.ExerciseID); err != nil {
		return fmt.Errorf("failed to rebuild records: %w", err)
	}
	return nil
}

// RebuildRecords replays the full history of one exercise and replaces the
// stored records with the result
func (s *RecordService) RebuildRecords(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error) {
	ctx, span := s.tracer.Start(ctx, "record.RebuildRecords",
		trace.WithAttributes(attribute.String("exercise.id", exerciseID)))
	defer span.End()

	meta, err := s.exerciseMeta(ctx, exerciseID)
	if err != nil {
		return nil, err
	}

	sets, err := s.setRepo.List(ctx, domain.SetQuery{UserID: userID, ExerciseID: exerciseID})
	if err != nil {
		return nil, fmt.Errorf("failed to load set history: %w", err)
	}

	rebuilt, err := ReplayRecords(sets, domain.ExerciseCatalog{exerciseID: meta})
	if err != nil {
		return nil, err
	}
	records := rebuilt[exerciseID]
	if records == nil {
		records = []*domain.PersonalRecord{}
	}

	if err := s.recordRepo.ReplaceForExercise(ctx, userID, exerciseID, records); err != nil {
		return nil, err
	}
	s.instruments.RecordsRebuilt(ctx, "exercise", len(records))

	s.invalidate(ctx, userID)
	return records, nil
}

// RebuildAll recomputes every exercise of a user. Sets of exercises missing
// from the library are skipped, and exercises left without working sets have
// their records cleared. With dryRun nothing is written.
func (s *RecordService) RebuildAll(ctx context.Context, userID string, dryRun bool) (map[string][]*domain.PersonalRecord, error) {
	ctx, span := s.tracer.Start(ctx, "record.RebuildAll")
	defer span.End()

	sets, err := s.setRepo.List(ctx, domain.SetQuery{UserID: userID})
	if err != nil {
		return nil, fmt.Errorf("failed to load set history: %w", err)
	}

	catalog, err := LoadCatalog(ctx, s.exerciseRepo, sets)
	if err != nil {
		return nil, err
	}

	known := make([]*domain.LoggedSet, 0, len(sets))
	for _, set := range sets {
		if _, ok := catalog.Lookup(set.ExerciseID); !ok {
			log.WithFields(log.Fields{"user_id": userID, "set_id": set.ID, "exercise_id": set.ExerciseID}).
				Warn("skipping set of unknown exercise")
			continue
		}
		known = append(known, set)
	}

	rebuilt, err := ReplayRecords(known, catalog)
	if err != nil {
		return nil, err
	}

	// Exercises that still hold records, or still have history, but replay to
	// nothing get an empty record set so stale bests are cleared.
	stored, err := s.recordRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load personal records: %w", err)
	}
	for _, rec := range stored {
		if _, ok := rebuilt[rec.ExerciseID]; !ok {
			rebuilt[rec.ExerciseID] = []*domain.PersonalRecord{}
		}
	}
	for _, set := range known {
		if _, ok := rebuilt[set.ExerciseID]; !ok {
			rebuilt[set.ExerciseID] = []*domain.PersonalRecord{}
		}
	}

	if dryRun {
		return rebuilt, nil
	}

	written := 0
	for exerciseID, records := range rebuilt {
		if err := s.recordRepo.ReplaceForExercise(ctx, userID, exerciseID, records); err != nil {
			return nil, err
		}
		written += len(records)
	}
	s.instruments.RecordsRebuilt(ctx, "all", written)
	s.invalidate(ctx, userID)
	return rebuilt, nil
}

// ListRecords returns the stored records of a user, optionally for one exercise
func (s *RecordService) ListRecords(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error) {
	if exerciseID != "" {
		return s.recordRepo.ListByUserAndExercise(ctx, userID, exerciseID)
	}
	return s.recordRepo.ListByUser(ctx, userID)
}

// ReplayRecords runs a chronological history through the batch evaluator
// and keeps the final record of every (exercise, record type)
func ReplayRecords(sets []*domain.LoggedSet, catalog domain.ExerciseCatalog) (map[string][]*domain.PersonalRecord, error) {
	updates, err := record.EvaluateBatch(sets, catalog, nil)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]map[domain.RecordType]domain.RecordUpdate)
	for _, u := range updates {
		if latest[u.ExerciseID] == nil {
			latest[u.ExerciseID] = make(map[domain.RecordType]domain.RecordUpdate)
		}
		latest[u.ExerciseID][u.RecordType] = u
	}

	out := make(map[string][]*domain.PersonalRecord, len(latest))
	for exerciseID, byType := range latest {
		for _, u := range orderedUpdates(byType) {
			out[exerciseID] = append(out[exerciseID], u.ToRecord())
		}
	}
	return out, nil
}

// LoadCatalog fetches the metadata of every exercise referenced by sets
func LoadCatalog(ctx context.Context, repo domain.ExerciseRepository, sets []*domain.LoggedSet) (domain.ExerciseCatalog, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, set := range sets {
		if _, ok := seen[set.ExerciseID]; ok {
			continue
		}
		seen[set.ExerciseID] = struct{}{}
		ids = append(ids, set.ExerciseID)
	}
	if len(ids) == 0 {
		return domain.ExerciseCatalog{}, nil
	}

	exercises, err := repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load exercises: %w", err)
	}
	return domain.NewExerciseCatalog(exercises), nil
}

func (s *RecordService) exerciseMeta(ctx context.Context, exerciseID string) (domain.ExerciseMeta, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, domain.ErrExerciseNotFound) || errors.Is(err, domain.ErrInvalidID) {
			return domain.ExerciseMeta{}, fmt.Errorf("%w: %s", domain.ErrUnknownExercise, exerciseID)
		}
		return domain.ExerciseMeta{}, fmt.Errorf("failed to load exercise: %w", err)
	}
	return exercise.Meta(), nil
}

func (s *RecordService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.DeleteByPattern(ctx, domain.ProgressPattern(userID)); err != nil {
		// Cached views expire on their own
		log.WithError(err).WithField("user_id", userID).Warn("failed to invalidate progression cache")
	}
}

func orderedUpdates(byType map[domain.RecordType]domain.RecordUpdate) []domain.RecordUpdate {
	out := make([]domain.RecordUpdate, 0, len(byType))
	for _, rt := range domain.AllRecordTypes {
		if u, ok := byType[rt]; ok {
			out = append(out, u)
		}
	}
	return out
}
