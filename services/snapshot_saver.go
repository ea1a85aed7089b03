package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

const saverConcurrency = 4

// snapshotSaver persists committed snapshots in the background. Only the newest
// pending snapshot of each tournament is written.
type snapshotSaver struct {
	store  repositories.SnapshotRepository
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string]*models.Tournament

	signal    chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func newSnapshotSaver(store repositories.SnapshotRepository, logger *slog.Logger) *snapshotSaver {
	return &snapshotSaver{
		store:   store,
		logger:  logger,
		pending: make(map[string]*models.Tournament),
		signal:  make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (s *snapshotSaver) enqueue(t *models.Tournament) {
	s.mu.Lock()
	if prev, ok := s.pending[t.ID]; !ok || prev.Version < t.Version {
		s.pending[t.ID] = t
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *snapshotSaver) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.signal:
			s.flush(context.Background())
		case <-s.done:
			s.flush(context.Background())
			return
		}
	}
}

func (s *snapshotSaver) flush(ctx context.Context) {
	s.mu.Lock()
	batch := s.pending
	s.pending = make(map[string]*models.Tournament)
	s.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(saverConcurrency)
	for _, t := range batch {
		g.Go(func() error {
			err := s.store.Save(gctx, t)
			switch {
			case err == nil:
			case errors.Is(err, repositories.ErrSnapshotStale):
				s.logger.Debug("skipping stale tournament snapshot",
					slog.String("tournament_id", t.ID),
					slog.Int64("version", t.Version))
			default:
				s.logger.Error("failed to save tournament snapshot",
					slog.String("tournament_id", t.ID),
					slog.Int64("version", t.Version),
					slog.Any("error", err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Close stops the saver after writing everything still pending.
func (s *snapshotSaver) Close(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.done) })
	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
