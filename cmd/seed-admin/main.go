package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/marble-roulette/internal/admin"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	adminToken := os.Getenv("ADMIN_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_TOKEN is required")
	}

	hash, err := admin.HashAdminToken(adminToken)
	if err != nil {
		log.Fatalf("Failed to hash admin token: %v", err)
	}

	log.Println("✓ Admin token hashed. Add this line to your environment:")
	fmt.Printf("ADMIN_TOKEN_HASH=%s\n", hash)
}
