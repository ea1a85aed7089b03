package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) HandleEvent(ctx context.Context, e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Type, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(discardLogger(), 16)
	rec := &recorder{}
	bus.Subscribe("recorder", rec)

	now := time.Now()
	bus.Publish(
		New(TournamentStarted, "t1", now, nil),
		New(MatchReady, "t1", now, nil),
		New(MatchCompleted, "t1", now, nil),
	)
	require.NoError(t, bus.Close(context.Background()))

	assert.Equal(t, []Type{TournamentStarted, MatchReady, MatchCompleted}, rec.types())
}

func TestBusFiltersByType(t *testing.T) {
	bus := NewBus(discardLogger(), 16)
	rec := &recorder{}
	bus.Subscribe("completed-only", rec, TournamentCompleted)

	now := time.Now()
	bus.Publish(New(MatchReady, "t1", now, nil), New(TournamentCompleted, "t1", now, nil))
	require.NoError(t, bus.Close(context.Background()))

	assert.Equal(t, []Type{TournamentCompleted}, rec.types())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(discardLogger(), 16)
	rec := &recorder{}
	unsubscribe := bus.Subscribe("recorder", rec)
	unsubscribe()
	unsubscribe()

	bus.Publish(New(MatchReady, "t1", time.Now(), nil))
	require.NoError(t, bus.Close(context.Background()))
	assert.Empty(t, rec.types())
}

func TestBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewBus(discardLogger(), 16)
	calls := 0
	bus.Subscribe("panics", SubscriberFunc(func(ctx context.Context, e Event) {
		calls++
		panic("boom")
	}))

	bus.Publish(New(MatchReady, "t1", time.Now(), nil), New(MatchReady, "t1", time.Now(), nil))
	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, 2, calls)
}

func TestBusDropsWhenQueueFull(t *testing.T) {
	bus := NewBus(discardLogger(), 1)
	release := make(chan struct{})
	started := make(chan struct{})
	var handled int
	var once sync.Once
	bus.Subscribe("slow", SubscriberFunc(func(ctx context.Context, e Event) {
		once.Do(func() { close(started) })
		<-release
		handled++
	}))

	bus.Publish(New(MatchReady, "t1", time.Now(), nil))
	<-started
	// один в обработке, один в очереди, остальные отброшены
	bus.Publish(
		New(MatchReady, "t1", time.Now(), nil),
		New(MatchReady, "t1", time.Now(), nil),
		New(MatchReady, "t1", time.Now(), nil),
	)
	close(release)
	require.NoError(t, bus.Close(context.Background()))
	assert.Equal(t, 2, handled)
}

func TestPublishAfterCloseIsIgnored(t *testing.T) {
	bus := NewBus(discardLogger(), 4)
	require.NoError(t, bus.Close(context.Background()))
	assert.NotPanics(t, func() {
		bus.Publish(New(MatchReady, "t1", time.Now(), nil))
	})
	unsubscribe := bus.Subscribe("late", &recorder{})
	assert.NotPanics(t, unsubscribe)
}

func TestNewEventHasSortableID(t *testing.T) {
	a := New(MatchReady, "t1", time.Now(), nil)
	b := New(MatchReady, "t1", time.Now(), nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "t1", a.TournamentID)
}
