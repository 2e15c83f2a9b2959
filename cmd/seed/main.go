package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"roomrental/internal/config"
	"roomrental/internal/database"
	"roomrental/internal/domain"
	"roomrental/internal/repository"
)

var locations = []string{
	"西門教室",
	"板橋教室",
	"公館教室",
}

// Seeds the rentable locations and a default admin account. Safe to run
// repeatedly: locations are upserted and an existing admin is left alone.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	locationRepo := repository.NewLocationRepository(db)
	for _, name := range locations {
		if err := locationRepo.Upsert(ctx, name); err != nil {
			log.Fatalf("seed location %s: %v", name, err)
		}
	}
	log.Printf("seeded %d locations", len(locations))

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	userRepo := repository.NewUserRepository(db)
	if _, err := userRepo.GetByUsername(ctx, username); err == nil {
		log.Printf("admin %q already exists, skipping", username)
		return
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	admin := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatal(err)
	}

	log.Printf("seeded admin %q", username)
}
