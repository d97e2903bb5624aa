package posts

import (
	"strings"
	"time"
)

// Post is the single consolidated blog-post schema; the legacy system
// carried two parallel families (Blog and BlogPost) for the same concept.
type Post struct {
	ID          string     `bson:"_id,omitempty" json:"_id"`
	Title       string     `bson:"title" json:"title"`
	Slug        string     `bson:"slug" json:"slug"`
	Excerpt     string     `bson:"excerpt" json:"excerpt"`
	Content     string     `bson:"content" json:"content"`
	Author      string     `bson:"author,omitempty" json:"author,omitempty"`
	Category    string     `bson:"category,omitempty" json:"category,omitempty"`
	Date        string     `bson:"date,omitempty" json:"date,omitempty"`
	ReadTime    string     `bson:"readTime,omitempty" json:"readTime,omitempty"`
	ImageURL    string     `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	ImageColor  string     `bson:"imageColor,omitempty" json:"imageColor,omitempty"`
	Tags        []string   `bson:"tags" json:"tags"`
	Featured    bool       `bson:"featured" json:"featured"`
	Published   bool       `bson:"published" json:"published"`
	AddToHome   bool       `bson:"addToHome" json:"addToHome"`
	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	PublishedAt *time.Time `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`
}

// UpsertRequest covers create. An id in the body turns the call into an
// upsert; clients may name it either id or _id.
type UpsertRequest struct {
	ID         string   `json:"id"`
	MongoID    string   `json:"_id"`
	Title      string   `json:"title" validate:"required"`
	Slug       string   `json:"slug" validate:"required,slug"`
	Excerpt    string   `json:"excerpt" validate:"required"`
	Content    string   `json:"content" validate:"required"`
	Author     string   `json:"author"`
	Category   string   `json:"category"`
	Date       string   `json:"date"`
	ReadTime   string   `json:"readTime"`
	ImageURL   string   `json:"imageUrl" validate:"omitempty,url"`
	ImageColor string   `json:"imageColor" validate:"omitempty,hexcolor_optional"`
	Tags       []string `json:"tags"`
	Featured   *bool    `json:"featured"`
	Published  *bool    `json:"published"`
	AddToHome  *bool    `json:"addToHome"`
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
	ID         string   `json:"id"`
	MongoID    string   `json:"_id"`
	Title      *string  `json:"title"`
	Slug       *string  `json:"slug" validate:"omitempty,slug"`
	Excerpt    *string  `json:"excerpt"`
	Content    *string  `json:"content"`
	Author     *string  `json:"author"`
	Category   *string  `json:"category"`
	Date       *string  `json:"date"`
	ReadTime   *string  `json:"readTime"`
	ImageURL   *string  `json:"imageUrl" validate:"omitempty,url"`
	ImageColor *string  `json:"imageColor" validate:"omitempty,hexcolor_optional"`
	Tags       []string `json:"tags"`
	Featured   *bool    `json:"featured"`
	Published  *bool    `json:"published"`
	AddToHome  *bool    `json:"addToHome"`
}

func (r UpdateRequest) Key() string {
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return strings.TrimSpace(r.MongoID)
}

func (r UpsertRequest) asUpdate() UpdateRequest {
	return UpdateRequest{
		ID:         r.Key(),
		Title:      &r.Title,
		Slug:       &r.Slug,
		Excerpt:    &r.Excerpt,
		Content:    &r.Content,
		Author:     &r.Author,
		Category:   &r.Category,
		Date:       &r.Date,
		ReadTime:   &r.ReadTime,
		ImageURL:   &r.ImageURL,
		ImageColor: &r.ImageColor,
		Tags:       r.Tags,
		Featured:   r.Featured,
		Published:  r.Published,
		AddToHome:  r.AddToHome,
	}
}

type ToggleRequest struct {
	ID       string `json:"id" validate:"required"`
	Property string `json:"property" validate:"required"`
}
