package projects

import (
	"strings"
	"time"
)

type Project struct {
	ID          string     `bson:"_id,omitempty" json:"_id"`
	Title       string     `bson:"title" json:"title"`
	Slug        string     `bson:"slug" json:"slug"`
	Description string     `bson:"description" json:"description"`
	Content     string     `bson:"content,omitempty" json:"content,omitempty"`
	ImageURL    string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Tags        []string   `bson:"tags" json:"tags"`
	RepoURL     string     `bson:"repoUrl,omitempty" json:"repoUrl,omitempty"`
	DemoURL     string     `bson:"demoUrl,omitempty" json:"demoUrl,omitempty"`
	Featured    bool       `bson:"featured" json:"featured"`
	Published   bool       `bson:"published" json:"published"`
	AddToHome   bool       `bson:"addToHome" json:"addToHome"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
}

// UpsertRequest covers create. An id in the body turns the call into an
// upsert; clients may name it either id or _id (documents echo the latter).
// Missing booleans and tags are coerced to false / empty, never left unset
// in the stored document.
type UpsertRequest struct {
	ID          string   `json:"id"`
	MongoID     string   `json:"_id"`
	Title       string   `json:"title" validate:"required"`
	Slug        string   `json:"slug" validate:"omitempty,slug"`
	Description string   `json:"description" validate:"required"`
	Content     string   `json:"content"`
	ImageURL    string   `json:"imageUrl" validate:"omitempty,url"`
	Tags        []string `json:"tags"`
	RepoURL     string   `json:"repoUrl" validate:"omitempty,url"`
	DemoURL     string   `json:"demoUrl" validate:"omitempty,url"`
	Featured    *bool    `json:"featured"`
	Published   *bool    `json:"published"`
	AddToHome   *bool    `json:"addToHome"`
}

func (r UpsertRequest) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.MongoID)
}

// UpdateRequest accepts a full or partial document: nil string fields are
// left untouched, while missing booleans and tags default exactly as in
// creation.
type UpdateRequest struct {
	ID          string   `json:"id"`
	MongoID     string   `json:"_id"`
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug" validate:"omitempty,slug"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	ImageURL    *string  `json:"imageUrl" validate:"omitempty,url"`
	Tags        []string `json:"tags"`
	RepoURL     *string  `json:"repoUrl" validate:"omitempty,url"`
	DemoURL     *string  `json:"demoUrl" validate:"omitempty,url"`
	Featured    *bool    `json:"featured"`
	Published   *bool    `json:"published"`
	AddToHome   *bool    `json:"addToHome"`
}

func (r UpdateRequest) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.MongoID)
}

func (r UpsertRequest) asUpdate() UpdateRequest {
	return UpdateRequest{
		ID:          r.Key(),
		Title:       &r.Title,
		Slug:        &r.Slug,
		Description: &r.Description,
		Content:     &r.Content,
		ImageURL:    &r.ImageURL,
		Tags:        r.Tags,
		RepoURL:     &r.RepoURL,
		DemoURL:     &r.DemoURL,
		Featured:    r.Featured,
		Published:   r.Published,
		AddToHome:   r.AddToHome,
	}
}
