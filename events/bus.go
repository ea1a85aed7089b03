package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Publisher accepts events without waiting for any subscriber.
type Publisher interface {
	Publish(events ...Event)
}

type Subscriber interface {
	HandleEvent(ctx context.Context, e Event)
}

// SubscriberFunc adapts a plain function to Subscriber.
type SubscriberFunc func(ctx context.Context, e Event)

func (f SubscriberFunc) HandleEvent(ctx context.Context, e Event) { f(ctx, e) }

type subscription struct {
	name  string
	types map[Type]bool
	ch    chan Event
	sub   Subscriber
}

func (s *subscription) wants(t Type) bool {
	return len(s.types) == 0 || s.types[t]
}

// Bus delivers events to each subscriber on its own goroutine through a bounded
// queue. A full queue drops the event for that subscriber only.
type Bus struct {
	logger     *slog.Logger
	bufferSize int

	mu     sync.RWMutex
	subs   map[*subscription]struct{}
	closed bool
	wg     sync.WaitGroup
}

func NewBus(logger *slog.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		logger:     logger,
		bufferSize: bufferSize,
		subs:       make(map[*subscription]struct{}),
	}
}

// Subscribe registers s for the given event types (all types when none given)
// and returns a function that removes the subscription.
func (b *Bus) Subscribe(name string, s Subscriber, types ...Type) func() {
	sub := &subscription{
		name:  name,
		types: make(map[Type]bool, len(types)),
		ch:    make(chan Event, b.bufferSize),
		sub:   s,
	}
	for _, t := range types {
		sub.types[t] = true
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		return func() {}
	}
	b.subs[sub] = struct{}{}
	b.wg.Add(1)
	b.mu.Unlock()

	go b.run(sub)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[sub]; ok {
				delete(b.subs, sub)
				close(sub.ch)
			}
		})
	}
}

func (b *Bus) Publish(events ...Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, e := range events {
		for sub := range b.subs {
			if !sub.wants(e.Type) {
				continue
			}
			select {
			case sub.ch <- e:
			default:
				b.logger.Warn("event dropped: subscriber queue full",
					slog.String("subscriber", sub.name),
					slog.String("event_type", string(e.Type)),
					slog.String("tournament_id", e.TournamentID))
			}
		}
	}
}

func (b *Bus) run(sub *subscription) {
	defer b.wg.Done()
	for e := range sub.ch {
		b.deliver(sub, e)
	}
}

func (b *Bus) deliver(sub *subscription, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked",
				slog.String("subscriber", sub.name),
				slog.String("event_type", string(e.Type)),
				slog.Any("panic", r))
		}
	}()
	sub.sub.HandleEvent(context.Background(), e)
}

// Close stops accepting events and waits for queued ones to be handled.
func (b *Bus) Close(ctx context.Context) error {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		for sub := range b.subs {
			close(sub.ch)
			delete(b.subs, sub)
		}
	}
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event bus drain interrupted: %w", ctx.Err())
	}
}
