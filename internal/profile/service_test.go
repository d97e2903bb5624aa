package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type fakeRepo struct {
	item      *Profile
	getErr    error
	upsertErr error
}

func (f *fakeRepo) Get(ctx context.Context) (Profile, error) {
	if f.getErr != nil {
		return Profile{}, f.getErr
	}
	if f.item == nil {
		return Profile{}, mongo.ErrNoDocuments
	}
	return *f.item, nil
}

func (f *fakeRepo) Create(ctx context.Context, item Profile) error {
	f.item = &item
	return nil
}

func (f *fakeRepo) Upsert(ctx context.Context, set, setOnInsert bson.M) (Profile, error) {
	if f.upsertErr != nil {
		return Profile{}, f.upsertErr
	}
	item := Profile{}
	if f.item != nil {
		item = *f.item
	} else {
		item.ID = setOnInsert["_id"].(string)
		item.CreatedAt = setOnInsert["createdAt"].(time.Time)
	}
	if v, ok := set["name"]; ok {
		item.Name = v.(string)
	}
	if v, ok := set["title"]; ok {
		item.Title = v.(string)
	}
	if v, ok := set["email"]; ok {
		item.Email = v.(string)
	}
	if v, ok := set["bio"]; ok {
		item.Bio = v.(string)
	}
	if v, ok := set["updatedAt"]; ok {
		item.UpdatedAt = v.(time.Time)
	}
	f.item = &item
	return item, nil
}

func TestGetLazilyCreatesDefault(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.UTC)

	item := svc.Get(context.Background())
	require.Equal(t, "Your Name", item.Name)
	require.NotEmpty(t, item.ID)
	require.NotNil(t, repo.item)

	// Second read returns the stored document, no second create.
	again := svc.Get(context.Background())
	require.Equal(t, item.ID, again.ID)
}

func TestGetDegradesToDefaultOnError(t *testing.T) {
	repo := &fakeRepo{getErr: errors.New("connection reset")}
	svc := NewService(repo, time.UTC)

	item := svc.Get(context.Background())
	require.Equal(t, "Your Name", item.Name)
	require.Empty(t, item.ID)
	require.Nil(t, repo.item)
}

func TestGetReturnsStoredProfile(t *testing.T) {
	stored := Profile{ID: "64b000000000000000000004", Name: "Real Person", Email: "real@example.com"}
	repo := &fakeRepo{item: &stored}
	svc := NewService(repo, time.UTC)

	item := svc.Get(context.Background())
	require.Equal(t, stored.ID, item.ID)
	require.Equal(t, "Real Person", item.Name)
}

func TestProfileSerializesIdentifierAsMongoID(t *testing.T) {
	raw, err := json.Marshal(Profile{ID: "64b000000000000000000004", Name: "Real Person"})
	require.NoError(t, err)
	require.True(t, strings.Contains(string(raw), `"_id"`), "identifier must serialize as _id, got %s", raw)
}

func TestUpsertCreatesSingleton(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.UTC)

	item, err := svc.Upsert(context.Background(), UpsertRequest{
		Name:  "  Jane Doe  ",
		Title: "Engineer",
		Email: "jane@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", item.Name)
	require.NotEmpty(t, item.ID)
	require.False(t, item.CreatedAt.IsZero())
}

func TestUpsertKeepsIdentityOnUpdate(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, time.UTC)

	first, err := svc.Upsert(context.Background(), UpsertRequest{Name: "First"})
	require.NoError(t, err)

	second, err := svc.Upsert(context.Background(), UpsertRequest{Name: "Second"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Second", second.Name)
}

func TestUpsertMapsTimeoutToUnavailable(t *testing.T) {
	repo := &fakeRepo{upsertErr: context.DeadlineExceeded}
	svc := NewService(repo, time.UTC)

	_, err := svc.Upsert(context.Background(), UpsertRequest{Name: "X"})
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestUpsertPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("write concern failed")
	repo := &fakeRepo{upsertErr: boom}
	svc := NewService(repo, time.UTC)

	_, err := svc.Upsert(context.Background(), UpsertRequest{Name: "X"})
	require.ErrorIs(t, err, boom)
}
