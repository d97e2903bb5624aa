package posts

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
	ErrNotFound        = errors.New("post not found")
	ErrSlugExists      = errors.New("slug already exists")
	ErrInvalidSlug     = errors.New("invalid slug")
	ErrInvalidProperty = errors.New("invalid toggle property")
)

// ToggleField is the closed set of flags the toggle endpoint may flip.
// Anything else is rejected before touching the database.
type ToggleField string

const (
	ToggleFeatured  ToggleField = "featured"
	TogglePublished ToggleField = "published"
	ToggleAddToHome ToggleField = "addToHome"
)

func ParseToggleField(raw string) (ToggleField, error) {
	switch ToggleField(raw) {
	case ToggleFeatured, TogglePublished, ToggleAddToHome:
		return ToggleField(raw), nil
	default:
		return "", ErrInvalidProperty
	}
}

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

func (s *Service) Create(ctx context.Context, req UpsertRequest) (Post, error) {
	slug := utils.SlugWithFallback(req.Slug, req.Title)
	if slug == "" {
		return Post{}, ErrInvalidSlug
	}

	now := time.Now().In(s.location)
	published := boolOr(req.Published, false)
	item := Post{
		ID:         primitive.NewObjectID().Hex(),
		Title:      strings.TrimSpace(req.Title),
		Slug:       slug,
		Excerpt:    strings.TrimSpace(req.Excerpt),
		Content:    req.Content,
		Author:     strings.TrimSpace(req.Author),
		Category:   strings.TrimSpace(req.Category),
		Date:       strings.TrimSpace(req.Date),
		ReadTime:   strings.TrimSpace(req.ReadTime),
		ImageURL:   strings.TrimSpace(req.ImageURL),
		ImageColor: strings.TrimSpace(req.ImageColor),
		Tags:       normalizeTags(req.Tags),
		Featured:   boolOr(req.Featured, false),
		Published:  published,
		AddToHome:  boolOr(req.AddToHome, false),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if published {
		item.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, err
	}
	return item, nil
}

func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Post, bool, error) {
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
func (s *Service) Update(ctx context.Context, key string, req UpdateRequest) (Post, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Post{}, ErrNotFound
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
			return Post{}, ErrInvalidSlug
		}
		set["slug"] = slug
	}
	if req.Excerpt != nil {
		set["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}
	if req.Content != nil {
		set["content"] = *req.Content
	}
	if req.Author != nil {
		set["author"] = strings.TrimSpace(*req.Author)
	}
	if req.Category != nil {
		set["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Date != nil {
		set["date"] = strings.TrimSpace(*req.Date)
	}
	if req.ReadTime != nil {
		set["readTime"] = strings.TrimSpace(*req.ReadTime)
	}
	if req.ImageURL != nil {
		set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
	}
	if req.ImageColor != nil {
		set["imageColor"] = strings.TrimSpace(*req.ImageColor)
	}
	// Stamped from the request carrying published=true, not from detecting
	// a transition.
	if published {
		if existing, err := s.repo.GetByKey(ctx, key); err == nil && existing.PublishedAt == nil {
			set["publishedAt"] = now
		}
	}

	updated, err := s.repo.UpdateByKey(ctx, key, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return Post{}, ErrSlugExists
		}
		return Post{}, err
	}
	return updated, nil
}

// Toggle flips one allow-listed boolean by id and stamps updatedAt. The
// flip is last-write-wins against concurrent writers, matching the rest of
// the update surface.
func (s *Service) Toggle(ctx context.Context, id string, field ToggleField) (Post, error) {
	id = strings.TrimSpace(id)
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}

	now := time.Now().In(s.location)
	set := bson.M{"updatedAt": now}
	switch field {
	case ToggleFeatured:
		set["featured"] = !item.Featured
	case TogglePublished:
		next := !item.Published
		set["published"] = next
		if next && item.PublishedAt == nil {
			set["publishedAt"] = now
		}
	case ToggleAddToHome:
		set["addToHome"] = !item.AddToHome
	default:
		return Post{}, ErrInvalidProperty
	}

	updated, err := s.repo.UpdateByID(ctx, item.ID, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, key string) (Post, error) {
	item, err := s.repo.GetByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	return item, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (Post, error) {
	item, err := s.repo.GetBySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
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

func (s *Service) List(ctx context.Context) ([]Post, error) {
	return s.repo.List(ctx)
}
