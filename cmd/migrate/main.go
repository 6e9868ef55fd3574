// Command migrate applies the GORM schema for the backend.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"chirp/internal/config"
	"chirp/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <up|status>")
}

func run() error {
	flag.Parse()
	if flag.NArg() < 1 {
		return usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Get(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close() }()

	switch strings.ToLower(strings.TrimSpace(flag.Arg(0))) {
	case "up":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Println("schema applied")
	case "status":
		for _, m := range database.PersistentModels() {
			log.Printf("%-20T present=%t", m, db.Migrator().HasTable(m))
		}
	default:
		return usage()
	}
	return nil
}
