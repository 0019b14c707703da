package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"moviemirror/internal/store"
	"moviemirror/internal/tmdb"
)

// ErrSyncInProgress reports that a trigger fired while a pass was still
// running. Two passes racing on the same TMDB ids would break the
// last-write-wins assumption of the reconciliation, so the trigger is
// rejected instead of queued.
var ErrSyncInProgress = errors.New("sync already running")

// Reconciler maps one external record onto the local catalog.
type Reconciler interface {
	Upsert(ctx context.Context, ext tmdb.Movie, genres map[int]string) (store.Movie, error)
}

// Service orchestrates full catalog sync passes: the genre taxonomy is
// fetched once, then popular pages are pulled in strictly increasing order
// and each page's items are reconciled concurrently before advancing.
type Service struct {
	client     tmdb.Client
	reconciler Reconciler
	interval   time.Duration

	// Held for the duration of a pass; TryLock keeps triggers from
	// overlapping a running pass.
	mu sync.Mutex
}

// New constructs a sync Service. interval drives the periodic Run loop.
func New(client tmdb.Client, reconciler Reconciler, interval time.Duration) *Service {
	return &Service{
		client:     client,
		reconciler: reconciler,
		interval:   interval,
	}
}

// RunFullSync performs one complete pass over the external catalog. A genre
// fetch failure aborts before anything is written. Any page fetch or item
// persist failure aborts the remaining pages; movies committed by earlier
// pages stay committed. Returns ErrSyncInProgress when a pass is active.
func (s *Service) RunFullSync(ctx context.Context) error {
	if !s.mu.TryLock() {
		return ErrSyncInProgress
	}
	defer s.mu.Unlock()

	return s.runLocked(ctx)
}

// TriggerSync starts a pass in the background. It fails immediately with
// ErrSyncInProgress when a pass is already active; the pass outcome is
// logged, not returned.
func (s *Service) TriggerSync() error {
	if !s.mu.TryLock() {
		return ErrSyncInProgress
	}

	go func() {
		defer s.mu.Unlock()
		if err := s.runLocked(context.Background()); err != nil {
			log.Error().Err(err).Msg("triggered sync failed")
		}
	}()

	return nil
}

func (s *Service) runLocked(ctx context.Context) error {
	logger := log.With().Str("sync_run", uuid.New().String()).Logger()
	logger.Info().Msg("starting catalog sync")

	genres, err := s.client.Genres(ctx)
	if err != nil {
		return fmt.Errorf("fetch genres: %w", err)
	}

	var synced int
	page, totalPages := 1, 1

	for page <= totalPages {
		resp, err := s.client.PopularPage(ctx, page)
		if err != nil {
			return fmt.Errorf("fetch page %d: %w", page, err)
		}

		// The latest response is authoritative for the page count.
		totalPages = resp.TotalPages
		logger.Info().Int("page", page).Int("total_pages", totalPages).Msg("syncing page")

		g, gctx := errgroup.WithContext(ctx)
		for _, item := range resp.Results {
			g.Go(func() error {
				if _, err := s.reconciler.Upsert(gctx, item, genres); err != nil {
					return fmt.Errorf("upsert movie %d: %w", item.ID, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		synced += len(resp.Results)
		page++
	}

	logger.Info().Int("movies", synced).Msg("catalog sync complete")
	return nil
}

// Run drives RunFullSync on a fixed interval until the context is cancelled.
// A tick that lands while a pass is still running is skipped.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			switch err := s.RunFullSync(ctx); {
			case err == nil:
			case errors.Is(err, ErrSyncInProgress):
				log.Warn().Msg("scheduled sync skipped, previous pass still running")
			default:
				log.Error().Err(err).Msg("scheduled sync failed")
			}
		}
	}
}
