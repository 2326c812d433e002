package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mstress/internal/model"
	"mstress/internal/repository"
)

// Seeds a development database with a handful of users covering every role,
// so the auth and review flows can be exercised right after startup.
func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("mstressdb")
	userRepo := repository.NewUserRepo(db)
	reviewRepo := repository.NewReviewRepo(db)

	if err := reviewRepo.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure review indexes: %v", err)
	}

	users := []*model.User{
		{
			ID:     uuid.New().String(),
			Name:   "Alex Morgan",
			Email:  "alex@example.com",
			Role:   model.RoleOwner,
			Active: true,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Sam Riley",
			Email:  "sam@example.com",
			Role:   model.RoleOwner,
			Active: true,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Dr. Priya Nair",
			Email:  "priya@example.com",
			Role:   model.RoleReviewer,
			Active: true,
		},
		{
			ID:     uuid.New().String(),
			Name:   "Jordan Lee",
			Email:  "jordan@example.com",
			Role:   model.RoleOwner,
			Active: false,
		},
	}

	for _, u := range users {
		existing, err := userRepo.GetByEmail(ctx, u.Email)
		if err != nil {
			log.Fatalf("Failed to look up %s: %v", u.Email, err)
		}
		if existing != nil {
			fmt.Printf("skip %s (already present)\n", u.Email)
			continue
		}
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("Failed to create %s: %v", u.Email, err)
		}
		fmt.Printf("created %s (%s, %s)\n", u.Email, u.Role, u.ID)
	}

	fmt.Println("Seed complete.")
}
