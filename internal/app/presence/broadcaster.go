/*
Package presence owns the plaza's user records: who exists, who showed up
today, and which peers each user has already been rewarded for encountering.

This file defines the Broadcaster, the process-wide fan-out that tells
interested listeners about fresh logins. Delivery is deferred: Publish only
queues the snapshot, and a dedicated dispatch goroutine performs the actual
fan-out after the publisher's own work has completed.
*/
package presence

import (
	"sync"

	"github.com/rs/zerolog"

	"plaza/internal/app/user"
	"plaza/internal/pkg/logx"
)

const publishChannelBuffer = 256

// Listener receives the public snapshot of a user who just logged in.
type Listener func(user.Snapshot)

// subscriber wraps a listener with its removal state so an unsubscribe handle
// stays idempotent.
type subscriber struct {
	fn      Listener
	removed bool
}

// Broadcaster fans login snapshots out to subscribers in subscription order.
// There is no replay: a listener only sees logins published after it
// subscribed, and none after it unsubscribes.
type Broadcaster struct {
	// mu protects the subscriber list.
	mu sync.Mutex

	// subscribers in insertion order; removed entries are compacted out.
	subscribers []*subscriber

	// queue feeds the dispatch goroutine. Publish never delivers inline.
	queue chan user.Snapshot

	// closed blocks further publishes once Shutdown has started.
	closed bool

	// wg waits for the dispatch goroutine during Shutdown.
	wg sync.WaitGroup

	// structured logger with broadcaster context.
	logger zerolog.Logger
}

// NewBroadcaster constructs a Broadcaster and starts its dispatch loop.
func NewBroadcaster() *Broadcaster {
	broadcasterLogger := logx.Logger().With().Str("component", "LoginBroadcaster").Logger()

	b := &Broadcaster{
		subscribers: make([]*subscriber, 0),
		queue:       make(chan user.Snapshot, publishChannelBuffer),
		logger:      broadcasterLogger,
	}

	b.wg.Add(1)

	go b.runDispatchLoop()

	return b
}

// Subscribe appends the listener to the registry and returns its unsubscribe
// handle. The handle is safe to call more than once.
func (b *Broadcaster) Subscribe(fn Listener) (unsubscribe func()) {
	sub := &subscriber{fn: fn}

	b.mu.Lock()
	b.subscribers = append(b.subscribers, sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		if sub.removed {
			return
		}
		sub.removed = true

		for i, s := range b.subscribers {
			if s == sub {
				b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Publish schedules delivery of the snapshot to all subscribers. The call
// returns immediately; the subscriber set is sampled when the dispatch loop
// picks the snapshot up, so a listener subscribing between Publish and
// delivery still receives it.
func (b *Broadcaster) Publish(snap user.Snapshot) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()

	if closed {
		b.logger.Warn().Str("user_id", snap.ID).Msg("Publish after shutdown dropped.")
		return
	}

	select {
	case b.queue <- snap:
	default:
		b.logger.Warn().Str("user_id", snap.ID).Msg("Publish queue full, login event dropped.")
	}
}

// runDispatchLoop drains the queue and fans each snapshot out sequentially.
func (b *Broadcaster) runDispatchLoop() {
	defer b.wg.Done()

	b.logger.Info().Msg("Dispatch loop started.")

	for snap := range b.queue {
		b.deliver(snap)
	}

	b.logger.Info().Msg("Dispatch loop stopped.")
}

// deliver invokes every current subscriber in subscription order. A panicking
// listener is contained so the rest of the pass still runs.
func (b *Broadcaster) deliver(snap user.Snapshot) {
	b.mu.Lock()
	pass := make([]*subscriber, len(b.subscribers))
	copy(pass, b.subscribers)
	b.mu.Unlock()

	for _, sub := range pass {
		b.invoke(sub, snap)
	}
}

// invoke runs one listener behind a recover guard.
func (b *Broadcaster) invoke(sub *subscriber, snap user.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Interface("panic", r).
				Str("user_id", snap.ID).
				Msg("Login listener panicked; continuing delivery pass.")
		}
	}()

	b.mu.Lock()
	removed := sub.removed
	b.mu.Unlock()

	if removed {
		return
	}

	sub.fn(snap)
}

// Shutdown stops accepting publishes, drains the queue, and waits for the
// dispatch goroutine to exit.
func (b *Broadcaster) Shutdown() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	close(b.queue)
	b.wg.Wait()

	b.logger.Info().Msg("Broadcaster shutdown complete.")
}
