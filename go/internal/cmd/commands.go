package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/contestsync/go/internal/contests"
	"github.com/mcdev12/contestsync/go/internal/models"
)

func runList(ctx context.Context, w io.Writer, s *Services) error {
	all, err := s.Reconciler.FetchAll(ctx)
	if err != nil {
		return err
	}
	printSections(w, contests.GroupByTitle(all))
	return nil
}

func runJoin(ctx context.Context, w io.Writer, s *Services, contestID models.ContestID) error {
	joined, err := s.Reconciler.Join(ctx, contestID)
	switch {
	case errors.Is(err, contests.ErrAlreadyJoined):
		fmt.Fprintf(w, "already joined contest %s\n", contestID)
		return nil
	case errors.Is(err, contests.ErrContestFull):
		fmt.Fprintf(w, "contest %s is full\n", contestID)
		return err
	case err != nil:
		return err
	}
	fmt.Fprintf(w, "joined %s\n", formatContest(*joined))
	return nil
}

// runWatch prints the contest every refresh period and whenever the local
// join state changes, until ctx is cancelled.
func runWatch(ctx context.Context, w io.Writer, s *Services, contestID models.ContestID, period time.Duration) error {
	refresh := func(ctx context.Context) error {
		c, err := s.Reconciler.FetchOne(ctx, contestID)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatContest(*c))
		return nil
	}

	unsubscribe := s.JoinStore.Subscribe(func() {
		if o, ok := s.JoinStore.Get(contestID); ok {
			log.Debug().
				Str("contest_id", contestID.String()).
				Bool("joined", o.Joined).
				Msg("join state changed")
		}
	})
	defer unsubscribe()

	contests.RefreshLoop(ctx, s.Clock, period, refresh)
	return nil
}

// runCountdown prints the remaining time once per tick until the target is
// reached or ctx is cancelled. A zero target resumes a persisted one.
func runCountdown(ctx context.Context, w io.Writer, s *Services, target time.Time) error {
	if target.IsZero() {
		s.Countdown.Recover(ctx)
		if _, ok := s.Countdown.Target(); !ok {
			return fmt.Errorf("no countdown target set")
		}
	} else {
		s.Countdown.SetTarget(ctx, target)
	}

	done := make(chan struct{})
	var once sync.Once
	unsubscribe := s.Countdown.Subscribe(func() {
		fmt.Fprintln(w, formatRemaining(s.Countdown.Remaining()))
		if s.Countdown.IsExpired() {
			once.Do(func() { close(done) })
		}
	})
	defer unsubscribe()

	fmt.Fprintln(w, formatRemaining(s.Countdown.Remaining()))
	if s.Countdown.IsExpired() {
		s.Countdown.ClearPersisted(ctx)
		return nil
	}

	select {
	case <-ctx.Done():
		s.Countdown.Stop()
	case <-done:
		s.Countdown.ClearPersisted(ctx)
	}
	return nil
}
