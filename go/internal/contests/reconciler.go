package contests

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/clients"
	"github.com/mcdev12/contestsync/go/internal/events"
	"github.com/mcdev12/contestsync/go/internal/joinsync"
	"github.com/mcdev12/contestsync/go/internal/models"
)

// ErrContestFull is matched (errors.Is) by join failures the server reported
// as a conflict: the contest is full or no longer exists.
var ErrContestFull = errors.New("contest full")

// ErrAlreadyJoined is returned by Join when the join store already records
// the user as joined. No request is sent.
var ErrAlreadyJoined = errors.New("contest already joined")

// ContestAPI defines what the reconciler needs from the network collaborator
type ContestAPI interface {
	GetAllContests(ctx context.Context, userID string) ([]models.ContestRecord, error)
	GetContestByID(ctx context.Context, contestID models.ContestID) (*models.ContestRecord, error)
	JoinContest(ctx context.Context, contestID models.ContestID, userID string) (*models.ContestRecord, error)
}

// JoinStore defines what the reconciler needs from the join override store
type JoinStore interface {
	Get(contestID models.ContestID) (joinsync.Override, bool)
	MarkJoined(contestID models.ContestID, occupancy *int)
	MarkUnjoined(contestID models.ContestID, occupancy *int)
}

// EventPublisher receives join outcomes for fan-out beyond this process
type EventPublisher interface {
	PublishJoin(ctx context.Context, event events.JoinEvent) error
}

// Reconciler fetches contests and merges local join overrides into them.
//
// Merge policy: an override with Joined=true always wins over a fetched
// joined=false, since a fetch that was in flight when the join completed may
// carry stale state. An override's occupancy, when known, replaces the
// fetched one for the same reason.
type Reconciler struct {
	api       ContestAPI
	store     JoinStore
	userID    string
	clock     clockwork.Clock
	metrics   MetricsCollector
	publisher EventPublisher
}

// Option configures optional Reconciler collaborators.
type Option func(*Reconciler)

// WithMetrics records fetch and join outcomes.
func WithMetrics(m MetricsCollector) Option {
	return func(r *Reconciler) {
		r.metrics = m
	}
}

// WithClock sets the clock used to timestamp join events.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Reconciler) {
		r.clock = clock
	}
}

// WithEventPublisher publishes a JoinEvent after every join attempt.
func WithEventPublisher(p EventPublisher) Option {
	return func(r *Reconciler) {
		r.publisher = p
	}
}

// NewReconciler creates a reconciler acting on behalf of userID
func NewReconciler(api ContestAPI, store JoinStore, userID string, opts ...Option) *Reconciler {
	r := &Reconciler{
		api:     api,
		store:   store,
		userID:  userID,
		clock:   clockwork.NewRealClock(),
		metrics: &NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FetchAll returns every contest with local overrides applied
func (r *Reconciler) FetchAll(ctx context.Context) ([]models.ContestRecord, error) {
	fetched, err := r.api.GetAllContests(ctx, r.userID)
	r.metrics.RecordFetch(FetchAll, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contests: %w", err)
	}

	merged := make([]models.ContestRecord, 0, len(fetched))
	for _, contest := range fetched {
		merged = append(merged, r.merge(contest))
	}
	return merged, nil
}

// FetchOne returns a single contest with its local override applied
func (r *Reconciler) FetchOne(ctx context.Context, contestID models.ContestID) (*models.ContestRecord, error) {
	fetched, err := r.api.GetContestByID(ctx, contestID)
	r.metrics.RecordFetch(FetchOne, err == nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contest %s: %w", contestID, err)
	}

	if fetched.ContestID == "" {
		fetched.ContestID = contestID
	}
	merged := r.merge(*fetched)
	return &merged, nil
}

// Join enters the contest and records the server's answer in the join store.
// A contest already recorded as joined is not posted again; ErrAlreadyJoined
// is returned instead. On failure the override is rolled back to unjoined and
// the error returned, unless a concurrent join has been confirmed meanwhile.
func (r *Reconciler) Join(ctx context.Context, contestID models.ContestID) (*models.ContestRecord, error) {
	if o, ok := r.store.Get(contestID); ok && o.Joined {
		log.Debug().Str("contest_id", contestID.String()).Msg("already joined, skipping request")
		return nil, fmt.Errorf("failed to join contest %s: %w", contestID, ErrAlreadyJoined)
	}

	updated, err := r.api.JoinContest(ctx, contestID, r.userID)
	if err != nil {
		return nil, r.joinFailed(ctx, contestID, err)
	}

	if updated.ContestID == "" {
		updated.ContestID = contestID
	}
	r.store.MarkJoined(contestID, updated.CurrentSize)
	r.metrics.RecordJoin(JoinSucceeded)

	result := updated.Clone()
	result.Joined = true

	log.Info().
		Str("contest_id", contestID.String()).
		Int("occupancy", result.Occupancy()).
		Msg("joined contest")

	r.publish(ctx, events.NewJoinEvent(contestID, r.userID, true, result.CurrentSize, r.clock.Now()))
	return &result, nil
}

func (r *Reconciler) joinFailed(ctx context.Context, contestID models.ContestID, err error) error {
	full := clients.IsStatus(err, http.StatusConflict)
	if full {
		r.metrics.RecordJoin(JoinRejected)
		err = fmt.Errorf("failed to join contest %s: %w: %w", contestID, ErrContestFull, err)
	} else {
		r.metrics.RecordJoin(JoinFailed)
		err = fmt.Errorf("failed to join contest %s: %w", contestID, err)
	}

	var previous *int
	o, ok := r.store.Get(contestID)
	if ok {
		previous = o.Occupancy
	}
	if ok && o.Joined {
		// Another Join for this contest was confirmed while this one was in flight.
		log.Warn().
			Err(err).
			Str("contest_id", contestID.String()).
			Msg("join failed but contest is already joined, keeping override")
		return err
	}
	r.store.MarkUnjoined(contestID, previous)

	log.Warn().
		Err(err).
		Str("contest_id", contestID.String()).
		Bool("contest_full", full).
		Msg("join failed, override rolled back")

	r.publish(ctx, events.NewJoinEvent(contestID, r.userID, false, previous, r.clock.Now()))
	return err
}

func (r *Reconciler) merge(contest models.ContestRecord) models.ContestRecord {
	merged := contest.Clone()

	override, ok := r.store.Get(contest.ContestID)
	if !ok {
		return merged
	}

	if override.Joined {
		merged.Joined = true
	}
	if override.Occupancy != nil {
		merged.CurrentSize = override.Occupancy
	}
	r.metrics.RecordOverrideApplied()
	return merged
}

func (r *Reconciler) publish(ctx context.Context, event events.JoinEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishJoin(ctx, event); err != nil {
		log.Error().
			Err(err).
			Str("contest_id", event.ContestID).
			Msg("failed to publish join event")
	}
}
