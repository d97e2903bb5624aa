package posts

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, item Post) error
	GetByID(ctx context.Context, id string) (Post, error)
	GetByKey(ctx context.Context, key string) (Post, error)
	GetBySlug(ctx context.Context, slug string) (Post, error)
	UpdateByID(ctx context.Context, id string, set bson.M) (Post, error)
	UpdateByKey(ctx context.Context, key string, set bson.M) (Post, error)
	DeleteByKey(ctx context.Context, key string) (bool, error)
	List(ctx context.Context) ([]Post, error)
}

type MongoRepository struct {
	col *mongo.Collection
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

// keyFilters mirrors the id-or-slug resolution convention: primary id
// first when the key parses as ObjectID hex, slug equality otherwise.
func keyFilters(key string) []bson.M {
	filters := make([]bson.M, 0, 2)
	if _, err := primitive.ObjectIDFromHex(key); err == nil {
		filters = append(filters, bson.M{"_id": key})
	}
	return append(filters, bson.M{"slug": key})
}

func (r *MongoRepository) Create(ctx context.Context, item Post) error {
	_, err := r.col.InsertOne(ctx, item)
	return err
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Post, error) {
	var item Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		return Post{}, err
	}
	return item, nil
}

func (r *MongoRepository) GetByKey(ctx context.Context, key string) (Post, error) {
	var item Post
	for _, filter := range keyFilters(key) {
		err := r.col.FindOne(ctx, filter).Decode(&item)
		if err == nil {
			return item, nil
		}
		if err != mongo.ErrNoDocuments {
			return Post{}, err
		}
	}
	return Post{}, mongo.ErrNoDocuments
}

func (r *MongoRepository) GetBySlug(ctx context.Context, slug string) (Post, error) {
	var item Post
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&item); err != nil {
		return Post{}, err
	}
	return item, nil
}

func (r *MongoRepository) UpdateByID(ctx context.Context, id string, set bson.M) (Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated Post
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated); err != nil {
		return Post{}, err
	}
	return updated, nil
}

func (r *MongoRepository) UpdateByKey(ctx context.Context, key string, set bson.M) (Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set}

	var updated Post
	for _, filter := range keyFilters(key) {
		err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated)
		if err == nil {
			return updated, nil
		}
		if err != mongo.ErrNoDocuments {
			return Post{}, err
		}
	}
	return Post{}, mongo.ErrNoDocuments
}

func (r *MongoRepository) DeleteByKey(ctx context.Context, key string) (bool, error) {
	for _, filter := range keyFilters(key) {
		res, err := r.col.DeleteOne(ctx, filter)
		if err != nil {
			return false, err
		}
		if res.DeletedCount > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Post, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: -1},
		{Key: "createdAt", Value: -1},
	})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Post, 0)
	for cursor.Next(ctx) {
		var item Post
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
