package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/liftlog/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoWorkoutSessionRepository(db *mongo.Database) *MongoWorkoutSessionRepository {
	coll := db.Collection("workout_sessions")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "started_at", Value: 1}},
	})

	return &MongoWorkoutSessionRepository{
		collection: coll,
	}
}

func (r *MongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) error {
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		session.ID = oid.Hex()
	}
	return nil
}

func (r *MongoWorkoutSessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var session domain.WorkoutSession
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *MongoWorkoutSessionRepository) ListByUser(ctx context.Context, userID string, from *time.Time) ([]*domain.WorkoutSession, error) {
	filter := bson.M{"user_id": userID}
	if from != nil {
		filter["started_at"] = bson.M{"$gte": *from}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "started_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer cursor.Close(ctx)

	sessions := []*domain.WorkoutSession{}
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Finish closes an open session. Finishing twice keeps the first end time.
func (r *MongoWorkoutSessionRepository) Finish(ctx context.Context, id string, endedAt time.Time, mood *int) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	set := bson.M{
		"ended_at":   endedAt,
		"updated_at": time.Now(),
	}
	if mood != nil {
		set["mood"] = *mood
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "ended_at": bson.M{"$exists": false}},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to finish session: %w", err)
	}
	if result.MatchedCount == 0 {
		// Either unknown or already finished
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
