package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/fixora/oauth-service/application/port/outbound"
	"github.com/fixora/oauth-service/domain/entity"
	"github.com/fixora/oauth-service/domain/valueobject"
	"github.com/fixora/oauth-service/infrastructure/adapter/postgres"
	"github.com/fixora/oauth-service/infrastructure/config"
	"github.com/fixora/oauth-service/infrastructure/service/password"
)

// seed creates a user directly in the credential store, e.g. for local
// development. An existing user with the same email is left untouched.
func main() {
	email := flag.String("email", getenvDefault("SEED_USER_EMAIL", "demo@example.com"), "user email")
	userPassword := flag.String("password", getenvDefault("SEED_USER_PASSWORD", "Demo1234!"), "user password")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	credentials, err := valueobject.NewCredentials(*email, *userPassword)
	if err != nil {
		log.Fatalf("Invalid credentials: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepositoryAdapter(db, cfg.StoreTimeout)

	existing, err := userRepo.FindByEmail(ctx, credentials.Email())
	switch {
	case err == nil:
		log.Printf("User %s already exists with id %d", existing.Email, existing.ID)
		return
	case !errors.Is(err, outbound.ErrUserNotFound):
		log.Fatalf("Failed to look up user: %v", err)
	}

	hash, err := password.NewBcryptPasswordService(cfg.BcryptCost).HashPassword(credentials.Password())
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	user := entity.NewUser(credentials.Email(), hash)
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	log.Printf("Created user %s with id %d", user.Email, user.ID)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
