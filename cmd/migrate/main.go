package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"crowdfund/internal/db"
	"crowdfund/internal/infra"
)

func main() {
	var listOnly bool
	flag.BoolVar(&listOnly, "list", false, "print embedded migrations without applying them")
	flag.Parse()

	_ = godotenv.Load()
	logger := infra.NewLogger(os.Getenv("APP_ENV"), "migrate")

	if listOnly {
		migrations, err := db.Migrations()
		if err != nil {
			exitWithError(err)
		}
		for _, m := range migrations {
			fmt.Println(m.Version)
		}
		return
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(fmt.Errorf("DATABASE_URL is required"))
	}

	conn, err := sql.Open("postgres", dbURL)
	if err != nil {
		exitWithError(fmt.Errorf("open database: %w", err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := db.Migrate(ctx, conn)
	if err != nil {
		logger.Error().Err(err).Strs("applied", applied).Msg("migration failed")
		os.Exit(1)
	}
	if len(applied) == 0 {
		logger.Info().Msg("schema up to date")
		return
	}
	logger.Info().Strs("applied", applied).Msg("migrations applied")
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
