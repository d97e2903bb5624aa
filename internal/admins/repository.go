package admins

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository interface {
	GetByUsername(ctx context.Context, username string) (Admin, error)
	Create(ctx context.Context, item Admin) error
	Count(ctx context.Context) (int64, error)
	SetPassword(ctx context.Context, username, passwordHash string, now time.Time) error
	StampLastLogin(ctx context.Context, username string, now time.Time) error
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) GetByUsername(ctx context.Context, username string) (Admin, error) {
	var item Admin
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&item); err != nil {
		return Admin{}, err
	}
	return item, nil
}

func (r *MongoRepository) Create(ctx context.Context, item Admin) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{})
}

func (r *MongoRepository) SetPassword(ctx context.Context, username, passwordHash string, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"passwordHash": passwordHash,
		"updatedAt":    now,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"username": username}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *MongoRepository) StampLastLogin(ctx context.Context, username string, now time.Time) error {
	update := bson.M{"$set": bson.M{
		"lastLogin": now,
		"updatedAt": now,
	}}
	_, err := r.col.UpdateOne(ctx, bson.M{"username": username}, update)
	return err
}
