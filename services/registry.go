package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dosada05/tournament-engine/events"
	"github.com/Dosada05/tournament-engine/models"
	"github.com/Dosada05/tournament-engine/repositories"
	"golang.org/x/sync/errgroup"
)

const restoreConcurrency = 8

// errNoChange lets a mutation finish successfully without committing a new version.
var errNoChange = errors.New("no change")

// Registry владеет всеми турнирами. Изменения одного турнира выполняются строго
// последовательно, разные турниры обрабатываются параллельно. Читатели получают
// неизменяемый снимок последней зафиксированной версии.
type Registry struct {
	store  repositories.SnapshotRepository
	saver  *snapshotSaver
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
	rng    *lockedRand

	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	mu      sync.Mutex
	current atomic.Pointer[models.Tournament]
}

type Option func(*Registry)

// WithRand injects the random source used for random seeding.
func WithRand(rng *rand.Rand) Option {
	return func(r *Registry) { r.rng = &lockedRand{rng: rng} }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithSnapshotRepository enables save-on-mutate persistence.
func WithSnapshotRepository(store repositories.SnapshotRepository) Option {
	return func(r *Registry) { r.store = store }
}

func NewRegistry(publisher events.Publisher, logger *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		events:  publisher,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.rng == nil {
		r.rng = &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	}
	if r.events == nil {
		r.events = nopPublisher{}
	}
	if r.store != nil {
		r.saver = newSnapshotSaver(r.store, logger)
		go r.saver.run()
	}
	return r
}

// Close flushes pending snapshots.
func (r *Registry) Close(ctx context.Context) error {
	if r.saver == nil {
		return nil
	}
	return r.saver.Close(ctx)
}

// Restore loads every stored snapshot into the registry.
func (r *Registry) Restore(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	ids, err := r.store.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tournament snapshots: %w", err)
	}

	loaded := make([]*models.Tournament, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			t, err := r.store.FindByID(gctx, id)
			if err != nil {
				return fmt.Errorf("failed to load tournament %s: %w", id, err)
			}
			loaded[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range loaded {
		e := &entry{}
		e.current.Store(t)
		r.entries[t.ID] = e
	}
	r.logger.InfoContext(ctx, "tournaments restored", slog.Int("count", len(loaded)))
	return len(loaded), nil
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTournamentNotFound, id)
	}
	return e, nil
}

// snapshot returns the committed version of a tournament. It must not be modified.
func (r *Registry) snapshot(id string) (*models.Tournament, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.current.Load(), nil
}

func (r *Registry) insert(t *models.Tournament) {
	e := &entry{}
	e.current.Store(t)
	r.mu.Lock()
	r.entries[t.ID] = e
	r.mu.Unlock()
	r.persist(t)
}

func (r *Registry) ids() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// txn is one serialized mutation of a tournament working on a private copy.
type txn struct {
	reg    *Registry
	t      *models.Tournament
	now    time.Time
	events []events.Event
}

func (tx *txn) emit(typ events.Type, payload any) {
	tx.events = append(tx.events, events.New(typ, tx.t.ID, tx.now, payload))
}

// mutate applies fn to a copy of the tournament under its lock and publishes the
// copy only if fn succeeds. Persistence and events are dispatched after commit.
func (r *Registry) mutate(ctx context.Context, id, op string, fn func(tx *txn) error) (committed *models.Tournament, err error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current := e.current.Load()
	tx := &txn{reg: r, t: current.Clone(), now: r.now()}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.ErrorContext(ctx, "tournament operation aborted",
				slog.String("tournament_id", id),
				slog.String("operation", op),
				slog.Any("panic", rec))
			committed, err = nil, fmt.Errorf("%w: %s: %v", ErrInternal, op, rec)
		}
	}()

	if err := fn(tx); err != nil {
		if errors.Is(err, errNoChange) {
			return current, nil
		}
		if errors.Is(err, ErrInternal) {
			r.logger.ErrorContext(ctx, "tournament operation aborted",
				slog.String("tournament_id", id),
				slog.String("operation", op),
				slog.Any("error", err))
		}
		return nil, err
	}

	tx.t.Version++
	tx.t.UpdatedAt = tx.now
	e.current.Store(tx.t)

	r.persist(tx.t)
	r.events.Publish(tx.events...)
	return tx.t, nil
}

func (r *Registry) persist(t *models.Tournament) {
	if r.saver != nil {
		r.saver.enqueue(t)
	}
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rng.Shuffle(n, swap)
}

type nopPublisher struct{}

func (nopPublisher) Publish(...events.Event) {}
