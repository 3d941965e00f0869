package main

import (
	"MathBot/internal/adapters/postgres"
	"MathBot/internal/shared/logger"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

const usage = "usage: migrator [up|down|version]"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("FATAL: Failed to load .env file: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(true, os.Getenv("LOG_LEVEL"))

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	migrator, err := postgres.NewMigrator(url, &log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create migrator")
	}
	defer migrator.Close()

	switch cmd {
	case "up":
		err = migrator.Up()
	case "down":
		err = migrator.Down()
	case "version":
		var (
			v     uint
			dirty bool
		)
		if v, dirty, err = migrator.Version(); err == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("Schema version")
		}
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("Migration failed")
	}
}
