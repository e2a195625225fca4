package contests

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// DetailRefreshInterval is the usual period for refreshing a contest detail view.
const DetailRefreshInterval = 30 * time.Second

// RefreshLoop runs fn once immediately and then every period until ctx is
// cancelled. Errors from fn are logged and the loop carries on. The owning
// view cancels ctx on teardown so no refresh lands after it is gone.
func RefreshLoop(ctx context.Context, clock clockwork.Clock, period time.Duration, fn func(context.Context) error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	run := func() {
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("refresh failed")
		}
	}

	run()

	ticker := clock.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			run()
		}
	}
}
