package profile

import "time"

// Profile is a singleton document: at most one is ever expected, created
// lazily with defaults on the first read.
type Profile struct {
	ID        string    `bson:"_id,omitempty" json:"_id"`
	Name      string    `bson:"name" json:"name"`
	Title     string    `bson:"title" json:"title"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	Location  string    `bson:"location,omitempty" json:"location,omitempty"`
	LinkedIn  string    `bson:"linkedin,omitempty" json:"linkedin,omitempty"`
	GitHub    string    `bson:"github,omitempty" json:"github,omitempty"`
	ImageURL  string    `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UpsertRequest struct {
	Name     string `json:"name" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Bio      string `json:"bio"`
	Location string `json:"location"`
	LinkedIn string `json:"linkedin" validate:"omitempty,url"`
	GitHub   string `json:"github" validate:"omitempty,url"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}
