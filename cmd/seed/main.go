// Command main loads demo data into the Chirp database.
package main

import (
	"flag"
	"log"

	"chirp/internal/config"
	"chirp/internal/database"
	"chirp/internal/seed"
)

func main() {
	presetPath := flag.String("preset", "", "Path to a YAML seed preset (defaults apply when empty)")
	users := flag.Int("users", 0, "Override the number of users")
	clean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	preset := seed.DefaultPreset()
	if *presetPath != "" {
		p, err := seed.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("Failed to load preset: %v", err)
		}
		preset = p
	}
	if *users > 0 {
		preset.Users = *users
	}
	preset.Clean = preset.Clean && *clean

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Get(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	sum, err := seed.NewSeeder(db).Run(preset)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d users, %d follows, %d tweets, %d likes, %d retweets, %d replies",
		sum.Users, sum.Follows, sum.Tweets, sum.Likes, sum.Retweets, sum.Replies)
}
