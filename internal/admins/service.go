package admins

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio-backend/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotConfigured      = errors.New("admin credentials not configured")
)

type Service struct {
	repo     Repository
	location *time.Location

	// Bootstrap credentials from the environment. The admin document is
	// created from these on the first successful login; until either the
	// document or the configuration exists, login fails closed.
	bootstrapUser     string
	bootstrapPassword string
}

func NewService(repo Repository, location *time.Location, bootstrapUser, bootstrapPassword string) *Service {
	return &Service{
		repo:              repo,
		location:          location,
		bootstrapUser:     strings.TrimSpace(bootstrapUser),
		bootstrapPassword: bootstrapPassword,
	}
}

// Verify checks a username/password pair against the stored admin and
// stamps lastLogin on success. When no admin document exists yet, the
// configured bootstrap credentials create one; with no configuration
// either, the result is ErrNotConfigured rather than a default password.
func (s *Service) Verify(ctx context.Context, username, password string) (Admin, error) {
	username = strings.TrimSpace(username)

	item, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, mongo.ErrNoDocuments) {
		item, err = s.bootstrap(ctx, username)
	}
	if err != nil {
		return Admin{}, err
	}

	if auth.ComparePassword(item.PasswordHash, password) != nil {
		return Admin{}, ErrInvalidCredentials
	}

	now := time.Now().In(s.location)
	if err := s.repo.StampLastLogin(ctx, username, now); err != nil {
		return Admin{}, err
	}
	item.LastLogin = &now
	return item, nil
}

func (s *Service) bootstrap(ctx context.Context, username string) (Admin, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return Admin{}, err
	}
	if count > 0 {
		// Some admin exists, just not this username.
		return Admin{}, ErrInvalidCredentials
	}
	if s.bootstrapUser == "" || s.bootstrapPassword == "" {
		return Admin{}, ErrNotConfigured
	}
	if username != s.bootstrapUser {
		return Admin{}, ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(s.bootstrapPassword)
	if err != nil {
		return Admin{}, err
	}

	now := time.Now().In(s.location)
	item := Admin{
		ID:           primitive.NewObjectID().Hex(),
		Username:     s.bootstrapUser,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost a bootstrap race; re-read the winner.
			return s.repo.GetByUsername(ctx, username)
		}
		return Admin{}, err
	}
	return item, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	username = strings.TrimSpace(username)

	item, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrInvalidCredentials
		}
		return err
	}

	if auth.ComparePassword(item.PasswordHash, current) != nil {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}

	return s.repo.SetPassword(ctx, username, hash, time.Now().In(s.location))
}
