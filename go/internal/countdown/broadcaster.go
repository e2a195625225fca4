// Package countdown maintains the single shared "time until match start"
// countdown and broadcasts a tick to subscribers once per second.
package countdown

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/internal/notify"
)

const (
	// TickInterval is how often subscribers are notified while counting down.
	TickInterval = time.Second

	// RecoveryCeiling is the oldest persisted target Recover will accept.
	RecoveryCeiling = 24 * time.Hour

	// Storage keys. Values are decimal epoch milliseconds.
	TargetKey = "matchStartTime"
	SetAtKey  = "timerSetAt"
)

// Storage is the durable key/value collaborator used for best-effort
// persistence across restarts.
type Storage interface {
	SetItem(ctx context.Context, key, value string) error
	GetItem(ctx context.Context, key string) (string, bool, error)
	RemoveItem(ctx context.Context, key string) error
}

// Broadcaster holds at most one countdown target.
type Broadcaster struct {
	clock     clockwork.Clock
	storage   Storage
	listeners *notify.Registry

	mu     sync.Mutex
	target *time.Time
	ticker clockwork.Ticker
	stopCh chan struct{}

	recoverOnce sync.Once
}

// NewBroadcaster creates a broadcaster. storage may be nil, in which case
// nothing is persisted or recovered.
func NewBroadcaster(clock clockwork.Clock, storage Storage) *Broadcaster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Broadcaster{
		clock:     clock,
		storage:   storage,
		listeners: notify.NewRegistry("countdown"),
	}
}

// SetTarget sets the countdown target and starts ticking if not already
// running. The target is then persisted; persistence failures are logged and
// otherwise ignored.
func (b *Broadcaster) SetTarget(ctx context.Context, target time.Time) {
	b.mu.Lock()
	t := target
	b.target = &t
	b.startLocked()
	b.mu.Unlock()

	log.Info().Time("target", target).Msg("countdown target set")

	b.persist(ctx, target, b.clock.Now())
}

// Recover reloads a persisted target. Only the first call does any work.
func (b *Broadcaster) Recover(ctx context.Context) {
	b.recoverOnce.Do(func() {
		b.recover(ctx)
	})
}

func (b *Broadcaster) recover(ctx context.Context) {
	if b.storage == nil {
		return
	}

	stored, okTarget, err := b.storage.GetItem(ctx, TargetKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to recover countdown target")
		return
	}
	setAt, okSetAt, err := b.storage.GetItem(ctx, SetAtKey)
	if err != nil {
		log.Warn().Err(err).Msg("failed to recover countdown target")
		return
	}
	if !okTarget || !okSetAt {
		return
	}

	now := b.clock.Now()
	target, errTarget := parseEpochMillis(stored)
	setTime, errSetAt := parseEpochMillis(setAt)
	if errTarget != nil || errSetAt != nil || !target.After(now) || now.Sub(setTime) >= RecoveryCeiling {
		log.Info().
			Str("stored_target", stored).
			Str("stored_set_at", setAt).
			Msg("discarding stale countdown target")
		b.ClearPersisted(ctx)
		return
	}

	b.mu.Lock()
	b.target = &target
	b.startLocked()
	b.mu.Unlock()

	log.Info().Time("target", target).Msg("countdown target recovered")
}

// ClearPersisted removes any persisted target.
func (b *Broadcaster) ClearPersisted(ctx context.Context) {
	if b.storage == nil {
		return
	}
	for _, key := range []string{TargetKey, SetAtKey} {
		if err := b.storage.RemoveItem(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("failed to clear countdown state")
		}
	}
}

// Remaining returns the time left until the target, never negative.
func (b *Broadcaster) Remaining() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.target == nil {
		return 0
	}
	remaining := b.target.Sub(b.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether a target is set and has been reached.
func (b *Broadcaster) IsExpired() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target != nil && !b.clock.Now().Before(*b.target)
}

// Target returns the current target, if any.
func (b *Broadcaster) Target() (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.target == nil {
		return time.Time{}, false
	}
	return *b.target, true
}

// Running reports whether the ticker is active.
func (b *Broadcaster) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ticker != nil
}

// Stop halts ticking. Safe to call repeatedly.
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopLocked()
}

// Subscribe registers l to run on every tick.
func (b *Broadcaster) Subscribe(l notify.Listener) func() {
	return b.listeners.Subscribe(l)
}

func (b *Broadcaster) startLocked() {
	if b.ticker != nil {
		return
	}
	b.ticker = b.clock.NewTicker(TickInterval)
	b.stopCh = make(chan struct{})
	go b.run(b.ticker, b.stopCh)
}

func (b *Broadcaster) stopLocked() {
	if b.ticker == nil {
		return
	}
	b.ticker.Stop()
	close(b.stopCh)
	b.ticker = nil
	b.stopCh = nil
}

func (b *Broadcaster) run(ticker clockwork.Ticker, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-ticker.Chan():
			if !b.tick(ticker) {
				return
			}
		}
	}
}

// tick notifies subscribers and reports whether ticking should continue.
func (b *Broadcaster) tick(ticker clockwork.Ticker) bool {
	b.mu.Lock()
	if b.ticker != ticker {
		// Stopped (and possibly restarted) since this tick was delivered.
		b.mu.Unlock()
		return false
	}
	if b.target == nil {
		b.mu.Unlock()
		return true
	}
	expired := !b.clock.Now().Before(*b.target)
	b.mu.Unlock()

	b.listeners.Notify()
	if !expired {
		return true
	}

	b.mu.Lock()
	if b.ticker == ticker {
		b.stopLocked()
	}
	b.mu.Unlock()

	log.Info().Msg("countdown reached target, ticker stopped")
	return false
}

func (b *Broadcaster) persist(ctx context.Context, target, setAt time.Time) {
	if b.storage == nil {
		return
	}
	if err := b.storage.SetItem(ctx, TargetKey, formatEpochMillis(target)); err != nil {
		log.Warn().Err(err).Msg("failed to persist countdown target")
		return
	}
	if err := b.storage.SetItem(ctx, SetAtKey, formatEpochMillis(setAt)); err != nil {
		log.Warn().Err(err).Msg("failed to persist countdown target")
	}
}

func formatEpochMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseEpochMillis(s string) (time.Time, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms), nil
}
