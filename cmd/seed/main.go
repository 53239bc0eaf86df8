// Command main runs the database seeder for OLMA.
package main

import (
	"flag"
	"log"

	"olma/internal/bootstrap"
	"olma/internal/config"
	"olma/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numOffers := flag.Int("offers", 200, "Number of meeting offers to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d offers, clean=%v\n", *numUsers, *numOffers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumOffers:   *numOffers,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Println("📧 All test users have the password: password123")
}
