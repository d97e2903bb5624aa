package main

import (
	"context"
	"log"
	"os"
	"time"

	"portfolio-backend/internal/auth"
	"portfolio-backend/internal/config"
	"portfolio-backend/internal/db"
	"portfolio-backend/internal/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedProject struct {
	Title       string
	Description string
	Tags        []string
	RepoURL     string
	Featured    bool
}

type seedPost struct {
	Title    string
	Excerpt  string
	Content  string
	Category string
	ReadTime string
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, cols, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Disconnect(context.Background())

	if err := db.EnsureIndexes(ctx, cols); err != nil {
		log.Fatal(err)
	}

	now := time.Now().In(cfg.Timezone)

	profileFilter := bson.M{}
	profileUpdate := bson.M{
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"name":      envOrDefault("SEED_NAME", "Your Name"),
			"title":     envOrDefault("SEED_TITLE", "Software Engineer"),
			"email":     envOrDefault("SEED_EMAIL", "you@example.com"),
			"bio":       "I build things for the web.",
			"location":  "Remote",
			"createdAt": now,
			"updatedAt": now,
		},
	}
	if _, err := cols.Profiles.UpdateOne(ctx, profileFilter, profileUpdate, options.Update().SetUpsert(true)); err != nil {
		log.Fatalf("seed profile error: %v", err)
	}

	seedProjects := []seedProject{
		{Title: "Portfolio Website", Description: "This site: public portfolio with an admin dashboard.", Tags: []string{"go", "mongodb"}, Featured: true},
		{Title: "Data Pipeline Dashboard", Description: "Charts and monitoring for nightly ingestion jobs.", Tags: []string{"analytics"}},
		{Title: "Chat Widget", Description: "Embeddable support chat widget.", Tags: []string{"frontend"}},
	}

	for _, p := range seedProjects {
		slug := utils.Slugify(p.Title)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID().Hex(),
				"title":       p.Title,
				"slug":        slug,
				"description": p.Description,
				"tags":        p.Tags,
				"repoUrl":     p.RepoURL,
				"featured":    p.Featured,
				"published":   true,
				"addToHome":   p.Featured,
				"createdAt":   now,
				"updatedAt":   now,
				"publishedAt": now,
			},
		}
		if _, err := cols.Projects.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed project error for %s: %v", p.Title, err)
		}
	}

	seedPosts := []seedPost{
		{Title: "Hello World", Excerpt: "First post on the new site.", Content: "Welcome to the blog.", Category: "general", ReadTime: "2 min"},
		{Title: "Shipping the Admin Dashboard", Excerpt: "Notes from building the content admin.", Content: "A short writeup.", Category: "engineering", ReadTime: "5 min"},
	}

	for _, p := range seedPosts {
		slug := utils.Slugify(p.Title)
		update := bson.M{
			"$setOnInsert": bson.M{
				"_id":         primitive.NewObjectID().Hex(),
				"title":       p.Title,
				"slug":        slug,
				"excerpt":     p.Excerpt,
				"content":     p.Content,
				"author":      envOrDefault("SEED_NAME", "Your Name"),
				"category":    p.Category,
				"readTime":    p.ReadTime,
				"tags":        []string{},
				"featured":    false,
				"published":   true,
				"addToHome":   false,
				"createdAt":   now,
				"updatedAt":   now,
				"publishedAt": now,
			},
		}
		if _, err := cols.Posts.UpdateOne(ctx, bson.M{"slug": slug}, update, options.Update().SetUpsert(true)); err != nil {
			log.Fatalf("seed post error for %s: %v", p.Title, err)
		}
	}

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Println("seed admin: ADMIN_PASSWORD missing, skipping")
	} else {
		if err := seedAdmin(ctx, cols, envOrDefault("ADMIN_USER", "admin"), password, cfg.Timezone); err != nil {
			log.Fatalf("seed admin error: %v", err)
		}
	}

	log.Println("seed completed")
}

func seedAdmin(ctx context.Context, cols *db.Collections, username, password string, loc *time.Location) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	now := time.Now().In(loc)
	update := bson.M{
		"$set": bson.M{
			"passwordHash": hash,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID().Hex(),
			"username":  username,
			"createdAt": now,
		},
	}
	_, err = cols.Admins.UpdateOne(ctx, bson.M{"username": username}, update, options.Update().SetUpsert(true))
	return err
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
