// Command sync runs one full catalog sync pass and reports the result via
// its exit status. It shares the sync entry point with the server's
// scheduler and manual HTTP trigger.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"moviemirror/internal/app/catalog"
	"moviemirror/internal/app/syncer"
	"moviemirror/internal/logging"
	"moviemirror/internal/store"
	"moviemirror/internal/tmdb"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("sync failed")
		os.Exit(1)
	}
	log.Info().Msg("sync completed successfully")
}

func run() error {
	_ = godotenv.Load()

	logging.Setup(logging.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: os.Getenv("LOG_FORMAT"),
	})

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return errors.New("DATABASE_URL env var is required")
	}

	apiKey := os.Getenv("TMDB_API_KEY")
	if apiKey == "" {
		return errors.New("TMDB_API_KEY env var is required")
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	tmdbClient := tmdb.NewHTTPClient(os.Getenv("TMDB_BASE_URL"), apiKey)
	catalogSvc := catalog.New(store.New(db))

	// The interval is irrelevant for a one-shot pass.
	return syncer.New(tmdbClient, catalogSvc, time.Hour).RunFullSync(ctx)
}

func openDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
