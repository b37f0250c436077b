// seed registers a few verified users in the local dev database so the
// "already registered" path can be exercised without a real SMS round trip.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ErlanBelekov/mobile-signup/internal/infrastructure/postgres"
	"github.com/ErlanBelekov/mobile-signup/internal/phone"
)

var seedMobiles = []string{
	"+919000000001",
	"+919000000002",
	"+919000000003",
}

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set, add it to .env or the environment")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	repo := postgres.NewUserRepository(pool)

	fmt.Println("Seed complete")
	fmt.Println()
	for _, mobile := range seedMobiles {
		if !phone.Valid(mobile) {
			log.Fatalf("seed number %s is not a valid mobile number", mobile)
		}
		user, err := repo.Create(ctx, mobile)
		if err != nil {
			pool.Close()
			log.Fatalf("create user %s: %v", mobile, err)
		}
		fmt.Printf("  %-14s  user_id=%d\n", user.MobileNumber, user.ID)
	}

	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  A seeded number is rejected as already registered:")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8000/api/v1/auth/signup/request-otp \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"mobile_number\":\"%s\"}'\n", seedMobiles[0])
	fmt.Println("    # → 400 {\"error\":\"User already exists and is verified.\"}")
	fmt.Println()
	fmt.Println("  A fresh number gets a code (printed to the server log in mock mode):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8000/api/v1/auth/signup/request-otp \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"mobile_number\":\"+919876543210\"}'\n")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8000/api/v1/auth/signup/verify \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"mobile_number\":\"+919876543210\",\"otp_code\":\"CODE\"}'\n")
	fmt.Println("    # → 201 {\"user_id\":...,\"is_verified\":true,...}")
}
