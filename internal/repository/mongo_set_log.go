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

type MongoSetLogRepository struct {
	collection *mongo.Collection
}

func NewMongoSetLogRepository(db *mongo.Database) *MongoSetLogRepository {
	coll := db.Collection("set_logs")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// History reads are always per user, ordered by time
	coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "exercise_id", Value: 1}, {Key: "logged_at", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "logged_at", Value: 1}}},
		{
			Keys:    bson.M{"client_id": 1},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"client_id": bson.M{"$type": "string"}}),
		},
	})

	return &MongoSetLogRepository{
		collection: coll,
	}
}

func (r *MongoSetLogRepository) Create(ctx context.Context, set *domain.LoggedSet) error {
	set.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateSetID
		}
		return fmt.Errorf("failed to create set log: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		set.ID = oid.Hex()
	}
	return nil
}

func (r *MongoSetLogRepository) GetByID(ctx context.Context, id string) (*domain.LoggedSet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var set domain.LoggedSet
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSetNotFound
		}
		return nil, err
	}
	return &set, nil
}

func (r *MongoSetLogRepository) GetByClientID(ctx context.Context, clientID string) (*domain.LoggedSet, error) {
	var set domain.LoggedSet
	err := r.collection.FindOne(ctx, bson.M{"client_id": clientID}).Decode(&set)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSetNotFound
		}
		return nil, err
	}
	return &set, nil
}

func (r *MongoSetLogRepository) List(ctx context.Context, query domain.SetQuery) ([]*domain.LoggedSet, error) {
	filter := bson.M{"user_id": query.UserID}
	if query.ExerciseID != "" {
		filter["exercise_id"] = query.ExerciseID
	}
	if query.From != nil {
		filter["logged_at"] = bson.M{"$gte": *query.From}
	}

	// _id breaks ties between sets logged in the same instant
	opts := options.Find().SetSort(bson.D{{Key: "logged_at", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list set logs: %w", err)
	}
	defer cursor.Close(ctx)

	sets := []*domain.LoggedSet{}
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (r *MongoSetLogRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return domain.ErrSetNotFound
	}
	return nil
}
