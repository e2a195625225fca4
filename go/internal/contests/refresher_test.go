package contests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestRefreshLoop_RunsImmediatelyThenEveryPeriod(t *testing.T) {
	fc := clockwork.NewFakeClock()
	ctx, cancel := context.WithCancel(context.Background())

	calls := make(chan struct{}, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		RefreshLoop(ctx, fc, DetailRefreshInterval, func(context.Context) error {
			calls <- struct{}{}
			return errors.New("flaky network")
		})
	}()

	waitCall := func() {
		t.Helper()
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for refresh")
		}
	}

	waitCall()

	blockCtx, blockCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer blockCancel()
	require.NoError(t, fc.BlockUntilContext(blockCtx, 1))

	// Errors do not end the loop.
	fc.Advance(DetailRefreshInterval)
	waitCall()
	fc.Advance(DetailRefreshInterval)
	waitCall()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop after cancel")
	}

	fc.Advance(DetailRefreshInterval)
	select {
	case <-calls:
		t.Fatal("refresh ran after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}
