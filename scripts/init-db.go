package main

import (
	"flag"

	"food_ordering/internal/config"
	"food_ordering/internal/database"
	"food_ordering/internal/logging"
	"food_ordering/internal/migrations"

	"github.com/rs/zerolog/log"
)

// init-db recreates the schema from scratch and loads the default admin and
// sample menu. Run with -keep to migrate without dropping existing tables.
func main() {
	keep := flag.Bool("keep", false, "migrate in place instead of dropping tables")
	flag.Parse()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	log.Info().Msg("Initializing database...")
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	if !*keep {
		log.Info().Msg("Dropping existing tables...")
		if err := migrations.Reset(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset database")
		}
	}

	if err := migrations.RunMigrations(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	log.Info().Str("admin", cfg.AdminUsername).Msg("Database initialization completed successfully!")
}
