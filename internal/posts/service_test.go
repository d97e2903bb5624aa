package posts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	items map[string]Post
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]Post)}
}

func (f *fakeRepo) Create(ctx context.Context, item Post) error {
	f.items[item.ID] = item
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Post, error) {
	if item, ok := f.items[id]; ok {
		return item, nil
	}
	return Post{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) GetByKey(ctx context.Context, key string) (Post, error) {
	if item, ok := f.items[key]; ok {
		return item, nil
	}
	for _, item := range f.items {
		if item.Slug == key {
			return item, nil
		}
	}
	return Post{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) GetBySlug(ctx context.Context, slug string) (Post, error) {
	for _, item := range f.items {
		if item.Slug == slug {
			return item, nil
		}
	}
	return Post{}, mongo.ErrNoDocuments
}

func (f *fakeRepo) UpdateByID(ctx context.Context, id string, set bson.M) (Post, error) {
	item, ok := f.items[id]
	if !ok {
		return Post{}, mongo.ErrNoDocuments
	}
	applySet(&item, set)
	f.items[id] = item
	return item, nil
}

func (f *fakeRepo) UpdateByKey(ctx context.Context, key string, set bson.M) (Post, error) {
	item, err := f.GetByKey(ctx, key)
	if err != nil {
		return Post{}, err
	}
	applySet(&item, set)
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) DeleteByKey(ctx context.Context, key string) (bool, error) {
	item, err := f.GetByKey(ctx, key)
	if err != nil {
		return false, nil
	}
	delete(f.items, item.ID)
	return true, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]Post, error) {
	out := make([]Post, 0, len(f.items))
	for _, item := range f.items {
		out = append(out, item)
	}
	return out, nil
}

func applySet(item *Post, set bson.M) {
	for k, v := range set {
		switch k {
		case "title":
			item.Title = v.(string)
		case "slug":
			item.Slug = v.(string)
		case "excerpt":
			item.Excerpt = v.(string)
		case "content":
			item.Content = v.(string)
		case "author":
			item.Author = v.(string)
		case "category":
			item.Category = v.(string)
		case "date":
			item.Date = v.(string)
		case "readTime":
			item.ReadTime = v.(string)
		case "imageUrl":
			item.ImageURL = v.(string)
		case "imageColor":
			item.ImageColor = v.(string)
		case "tags":
			item.Tags = v.([]string)
		case "featured":
			item.Featured = v.(bool)
		case "published":
			item.Published = v.(bool)
		case "addToHome":
			item.AddToHome = v.(bool)
		case "updatedAt":
			item.UpdatedAt = v.(time.Time)
		case "publishedAt":
			ts := v.(time.Time)
			item.PublishedAt = &ts
		}
	}
}

func newTestService(repo Repository) *Service {
	return NewService(repo, time.UTC)
}

func strPtr(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), UpsertRequest{
		Title:   "My First Post",
		Slug:    "my-first-post",
		Excerpt: "short",
		Content: "body",
	})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.False(t, item.Featured)
	require.False(t, item.Published)
	require.False(t, item.AddToHome)
	require.NotNil(t, item.Tags)
	require.Empty(t, item.Tags)
	require.Nil(t, item.PublishedAt)
	require.False(t, item.CreatedAt.IsZero())
}

func TestCreatePublishedStampsPublishedAt(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	published := true
	item, err := svc.Create(context.Background(), UpsertRequest{
		Title:     "Published Post",
		Slug:      "published-post",
		Excerpt:   "short",
		Content:   "body",
		Published: &published,
	})
	require.NoError(t, err)
	require.True(t, item.Published)
	require.NotNil(t, item.PublishedAt)
}

func TestParseToggleField(t *testing.T) {
	for _, valid := range []string{"featured", "published", "addToHome"} {
		if _, err := ParseToggleField(valid); err != nil {
			t.Fatalf("expected %q to parse: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "title", "Published", "addtohome", "slug"} {
		if _, err := ParseToggleField(invalid); err == nil {
			t.Fatalf("expected %q to be rejected", invalid)
		}
	}
}

func TestToggleTwiceRestoresValue(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Toggle Me", Slug: "toggle-me", Excerpt: "e", Content: "c",
	})
	require.NoError(t, err)
	require.False(t, item.Featured)
	before := item.UpdatedAt

	time.Sleep(time.Millisecond)
	once, err := svc.Toggle(context.Background(), item.ID, ToggleFeatured)
	require.NoError(t, err)
	require.True(t, once.Featured)
	require.True(t, once.UpdatedAt.After(before))

	time.Sleep(time.Millisecond)
	twice, err := svc.Toggle(context.Background(), item.ID, ToggleFeatured)
	require.NoError(t, err)
	require.False(t, twice.Featured)
	require.True(t, twice.UpdatedAt.After(once.UpdatedAt))
}

func TestTogglePublishedSetsPublishedAtOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Pub", Slug: "pub", Excerpt: "e", Content: "c",
	})
	require.NoError(t, err)

	on, err := svc.Toggle(context.Background(), item.ID, TogglePublished)
	require.NoError(t, err)
	require.True(t, on.Published)
	require.NotNil(t, on.PublishedAt)
	first := *on.PublishedAt

	off, err := svc.Toggle(context.Background(), item.ID, TogglePublished)
	require.NoError(t, err)
	require.False(t, off.Published)

	// Re-publishing keeps the original publishedAt.
	again, err := svc.Toggle(context.Background(), item.ID, TogglePublished)
	require.NoError(t, err)
	require.True(t, again.Published)
	require.NotNil(t, again.PublishedAt)
	require.True(t, again.PublishedAt.Equal(first))
}

func TestToggleUnknownID(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Toggle(context.Background(), "64b000000000000000000000", ToggleFeatured)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateByKeyResolvesSlug(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Original", Slug: "original", Excerpt: "e", Content: "c",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), "original", UpdateRequest{
		Title: strPtr("Renamed"), Excerpt: strPtr("e2"), Content: strPtr("c2"),
	})
	require.NoError(t, err)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, "Renamed", updated.Title)
	require.Equal(t, "e2", updated.Excerpt)
}

func TestUpdatePartialKeepsUnnamedStrings(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Kept", Slug: "kept", Excerpt: "e", Content: "c", Author: "ada",
	})
	require.NoError(t, err)

	featured := true
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{
		Featured: &featured,
	})
	require.NoError(t, err)
	require.True(t, updated.Featured)
	require.Equal(t, "Kept", updated.Title)
	require.Equal(t, "kept", updated.Slug)
	require.Equal(t, "ada", updated.Author)
	require.False(t, updated.Published)
}

func TestUpdateNotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.Update(context.Background(), "missing", UpdateRequest{
		Title: strPtr("T"),
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertCreatesWhenIDUnknown(t *testing.T) {
	svc := newTestService(newFakeRepo())

	item, created, err := svc.Upsert(context.Background(), UpsertRequest{
		ID: "64b000000000000000000001", Title: "T", Slug: "t", Excerpt: "e", Content: "c",
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, item.ID)
}

func TestDeleteByKey(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	item, err := svc.Create(context.Background(), UpsertRequest{
		Title: "Gone", Slug: "gone", Excerpt: "e", Content: "c",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "gone"))
	_, err = svc.Get(context.Background(), item.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(context.Background(), "gone"), ErrNotFound)
}
