package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hlsrec/hls-recommender-go/internal/config"
	"github.com/hlsrec/hls-recommender-go/internal/db"

	"github.com/golang-migrate/migrate/v4"
)

func main() {
	var (
		dbURL     string
		direction string
		steps     int
	)

	flag.StringVar(&dbURL, "db", "", "Database URL (defaults to the APP_DATABASE_* configuration)")
	flag.StringVar(&direction, "direction", "up", "Migration direction: up, down, or version")
	flag.IntVar(&steps, "steps", 0, "Number of steps to migrate (0 means all)")
	flag.Parse()

	if dbURL == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		dbURL = cfg.Database.URL()
	}

	m, err := db.NewMigrator(dbURL)
	if err != nil {
		log.Fatalf("Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch direction {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	case "version":
	default:
		log.Fatalf("Invalid direction: %s (must be 'up', 'down' or 'version')", direction)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("Migration failed: %v", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatalf("Failed to get migration version: %v", err)
	}

	if errors.Is(err, migrate.ErrNilVersion) {
		log.Println("Migration completed successfully (no version)")
	} else {
		log.Printf("Migration completed successfully (version: %d, dirty: %t)", version, dirty)
	}
}
