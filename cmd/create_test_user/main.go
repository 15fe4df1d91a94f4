// Dev utility: registers a user through the real auth service so the hash
// and token match what the API produces. Not for production.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"taskmanager/internal/repository"
	"taskmanager/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	name := flag.String("name", "Test User", "display name")
	email := flag.String("email", "test@example.com", "email address")
	password := flag.String("password", "secret1", "password")
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	auth := service.NewAuthService(
		repository.NewUserRepository(db),
		service.NewPasswordHasher(bcrypt.DefaultCost),
		service.NewTokenService(secret, 168*time.Hour),
	)

	user, token, err := auth.Register(context.Background(), *name, *email, *password)
	if err != nil {
		log.Fatalf("register: %v", err)
	}

	fmt.Printf("created user %s (%s)\n", user.ID, user.Email)
	fmt.Printf("token: %s\n", token)
}
