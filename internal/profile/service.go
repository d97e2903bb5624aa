package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrUnavailable = errors.New("profile store unavailable")

type Service struct {
	repo     Repository
	location *time.Location
}

func NewService(repo Repository, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		location: location,
	}
}

// Default is the payload served when no profile exists yet, and the
// fallback shown in place of a read error.
func Default(location *time.Location) Profile {
	now := time.Now().In(location)
	return Profile{
		Name:      "Your Name",
		Title:     "Software Engineer",
		Email:     "you@example.com",
		Bio:       "This profile has not been set up yet.",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Get returns the singleton profile, creating it with defaults on the
// first read. Any read error degrades to the default payload so the public
// site always renders.
func (s *Service) Get(ctx context.Context) Profile {
	item, err := s.repo.Get(ctx)
	if err == nil {
		return item
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return Default(s.location)
	}

	item = Default(s.location)
	item.ID = primitive.NewObjectID().Hex()
	if err := s.repo.Create(ctx, item); err != nil {
		return Default(s.location)
	}
	return item
}

func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Profile, error) {
	now := time.Now().In(s.location)
	set := bson.M{
		"name":      strings.TrimSpace(req.Name),
		"title":     strings.TrimSpace(req.Title),
		"email":     strings.TrimSpace(req.Email),
		"phone":     strings.TrimSpace(req.Phone),
		"bio":       req.Bio,
		"location":  strings.TrimSpace(req.Location),
		"linkedin":  strings.TrimSpace(req.LinkedIn),
		"github":    strings.TrimSpace(req.GitHub),
		"imageUrl":  strings.TrimSpace(req.ImageURL),
		"updatedAt": now,
	}
	setOnInsert := bson.M{
		"_id":       primitive.NewObjectID().Hex(),
		"createdAt": now,
	}

	updated, err := s.repo.Upsert(ctx, set, setOnInsert)
	if err != nil {
		if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
			return Profile{}, ErrUnavailable
		}
		return Profile{}, err
	}
	return updated, nil
}
