package main

import (
	"database/sql"
	"log"

	"pollmarket/internal/config"
	"pollmarket/internal/database"

	_ "github.com/lib/pq"
)

// Indexes AutoMigrate does not create on its own. Kept as raw SQL so the
// tool can run against an existing database without GORM model drift.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_bets_poll_outcome ON bets (poll_id, outcome_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_user_settled ON bets (user_id, settled)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_outcomes_poll_title ON outcomes (poll_id, title)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Schema migration through GORM
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Supplemental indexes through database/sql
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	for _, stmt := range indexStatements {
		log.Printf("Executing: %s", stmt)
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute statement: %v", err)
		}
	}

	log.Println("Migration completed successfully")
}
