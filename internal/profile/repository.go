package profile

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Get(ctx context.Context) (Profile, error)
	Create(ctx context.Context, item Profile) error
	Upsert(ctx context.Context, set, setOnInsert bson.M) (Profile, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Get(ctx context.Context) (Profile, error) {
	var item Profile
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if err := r.col.FindOne(ctx, bson.M{}, opts).Decode(&item); err != nil {
		return Profile{}, err
	}
	return item, nil
}

func (r *MongoRepository) Create(ctx context.Context, item Profile) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

// Upsert writes the singleton in place, creating it when absent. The empty
// filter is deliberate: there is never more than one profile document.
// setOnInsert must carry the string _id and createdAt for the insert case.
func (r *MongoRepository) Upsert(ctx context.Context, set, setOnInsert bson.M) (Profile, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(true)

	var updated Profile
	update := bson.M{"$set": set, "$setOnInsert": setOnInsert}
	if err := r.col.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(&updated); err != nil {
		return Profile{}, err
	}
	return updated, nil
}
