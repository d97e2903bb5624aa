package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrSlugExists  = errors.New("slug already exists")
	ErrInvalidSlug = errors.New("invalid slug")
)

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

func boolOr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Project, error) {
	slug := utils.SlugWithFallback(req.Slug, req.Title)
	if slug == "" {
		return Project{}, ErrInvalidSlug
	}

	now := time.Now().In(s.location)
	published := boolOr(req.Published, false)
	item := Project{
		ID:          primitive.NewObjectID().Hex(),
		Title:       strings.TrimSpace(req.Title),
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
		Content:     req.Content,
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Tags:        normalizeTags(req.Tags),
		RepoURL:     strings.TrimSpace(req.RepoURL),
		DemoURL:     strings.TrimSpace(req.DemoURL),
		Featured:    boolOr(req.Featured, false),
		Published:   published,
		AddToHome:   boolOr(req.AddToHome, false),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if published {
		item.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Project{}, ErrSlugExists
		}
		return Project{}, err
	}
	return item, nil
}

// Upsert updates the project named by the request's id, or creates one
// when no match exists. The created bool reports which branch ran.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Project, bool, error) {
	key := req.Key()
	if key == "" {
		item, err := s.Create(ctx, req)
		return item, true, err
	}

	item, err := s.Update(ctx, key, req.asUpdate())
	if errors.Is(err, ErrNotFound) {
		item, err = s.Create(ctx, req)
		return item, true, err
	}
	return item, false, err
}

// Update patches the fields the document names. Strings left out of a
// partial document stay untouched; booleans and tags default as in creation.
func (s *Service) Update(ctx context.Context, key string, req UpdateRequest) (Project, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Project{}, ErrNotFound
	}

	now := time.Now().In(s.location)
	published := boolOr(req.Published, false)
	set := bson.M{
		"tags":      normalizeTags(req.Tags),
		"featured":  boolOr(req.Featured, false),
		"published": published,
		"addToHome": boolOr(req.AddToHome, false),
		"updatedAt": now,
	}
	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Slug != nil {
		slug := utils.Slugify(*req.Slug)
		if slug == "" && req.Title != nil {
			slug = utils.Slugify(*req.Title)
		}
		if slug == "" {
			return Project{}, ErrInvalidSlug
		}
		set["slug"] = slug
	}
	if req.Description != nil {
		set["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.ImageURL != nil {
		set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.RepoURL != nil {
		set["repoUrl"] = strings.TrimSpace(*req.RepoURL)
	}
	if req.DemoURL != nil {
		set["demoUrl"] = strings.TrimSpace(*req.DemoURL)
	}
	// publishedAt is stamped from the write request carrying published=true,
	// not from detecting a transition.
	if published {
		if existing, err := s.repo.GetByKey(ctx, key); err == nil && existing.PublishedAt == nil {
			set["publishedAt"] = now
		}
	}

	updated, err := s.repo.UpdateByKey(ctx, key, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Project{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Project{}, ErrSlugExists
		}
		return Project{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, key string) (Project, error) {
	item, err := s.repo.GetByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return item, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Project, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, key string) error {
	deleted, err := s.repo.DeleteByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}
