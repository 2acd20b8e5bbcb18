package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPersonalRecordRepository struct {
	collection *mongo.Collection
}

func NewMongoPersonalRecordRepository(db *mongo.Database) *MongoPersonalRecordRepository {
	coll := db.Collection("personal_records")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// CompareAndSet relies on this index to lose upsert races cleanly
	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "exercise_id", Value: 1},
			{Key: "record_type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})

	return &MongoPersonalRecordRepository{
		collection: coll,
	}
}

func (r *MongoPersonalRecordRepository) ListByUserAndExercise(ctx context.Context, userID, exerciseID string) ([]*domain.PersonalRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID, "exercise_id": exerciseID})
}

func (r *MongoPersonalRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PersonalRecord, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *MongoPersonalRecordRepository) find(ctx context.Context, filter bson.M) ([]*domain.PersonalRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "exercise_id", Value: 1}, {Key: "record_type", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal records: %w", err)
	}
	defer cursor.Close(ctx)

	records := []*domain.PersonalRecord{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CompareAndSet writes the update in a single conditional upsert.
// The filter only matches a stored record with a lower value; when the stored
// value is equal or higher the upsert collides with the unique index and the
// update is reported as not applied. The previous value is copied from the
// matched document, never from the caller, and handed back so the caller
// reports what was actually replaced.
func (r *MongoPersonalRecordRepository) CompareAndSet(ctx context.Context, update domain.RecordUpdate) (bool, *float64, error) {
	filter := bson.M{
		"user_id":     update.UserID,
		"exercise_id": update.ExerciseID,
		"record_type": update.RecordType,
		"value":       bson.M{"$lt": update.Value},
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"previous_value": "$value", // missing on insert, so the field is left out
			"value":          bson.M{"$literal": update.Value},
			"set_id":         bson.M{"$literal": update.SetID},
			"achieved_at":    bson.M{"$literal": update.AchievedAt},
			"updated_at":     bson.M{"$literal": time.Now()},
		}}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.Before)
	var replaced domain.PersonalRecord
	err := r.collection.FindOneAndUpdate(ctx, filter, pipeline, opts).Decode(&replaced)
	switch {
	case err == nil:
		previous := replaced.Value
		return true, &previous, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		// Upserted: there was nothing to replace
		return true, nil, nil
	case mongo.IsDuplicateKeyError(err):
		return false, nil, nil
	default:
		return false, nil, fmt.Errorf("failed to apply personal record: %w", err)
	}
}

// DeleteByExercise drops every user's records of an exercise
func (r *MongoPersonalRecordRepository) DeleteByExercise(ctx context.Context, exerciseID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"exercise_id": exerciseID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete personal records: %w", err)
	}
	return result.DeletedCount, nil
}

// ReplaceForExercise swaps the records of one exercise inside a transaction
func (r *MongoPersonalRecordRepository) ReplaceForExercise(ctx context.Context, userID, exerciseID string, records []*domain.PersonalRecord) error {
	docs := make([]interface{}, 0, len(records))
	now := time.Now()
	for _, rec := range records {
		if rec.UserID != userID || rec.ExerciseID != exerciseID {
			return fmt.Errorf("%w: record %s/%s given for %s/%s",
				domain.ErrInvalidRecordState, rec.UserID, rec.ExerciseID, userID, exerciseID)
		}
		rec.ID = ""
		rec.UpdatedAt = now
		docs = append(docs, rec)
	}

	session, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection.DeleteMany(sc, bson.M{"user_id": userID, "exercise_id": exerciseID}); err != nil {
			return nil, err
		}
		if len(docs) == 0 {
			return nil, nil
		}
		return r.collection.InsertMany(sc, docs)
	})
	if err != nil {
		return fmt.Errorf("failed to replace personal records: %w", err)
	}
	return nil
}
