package joinsync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/contestsync/go/internal/models"
)

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()

	_, ok := s.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_MarkJoinedThenUnjoined(t *testing.T) {
	s := NewStore()

	s.MarkJoined("42", models.IntPtr(10))
	o, ok := s.Get("42")
	require.True(t, ok)
	assert.True(t, o.Joined)
	require.NotNil(t, o.Occupancy)
	assert.Equal(t, 10, *o.Occupancy)

	s.MarkUnjoined("42", models.IntPtr(9))
	o, ok = s.Get("42")
	require.True(t, ok)
	assert.False(t, o.Joined)
	assert.Equal(t, 9, *o.Occupancy)
}

func TestStore_NilOccupancyKeepsPrevious(t *testing.T) {
	s := NewStore()

	s.MarkJoined("1", models.IntPtr(5))
	s.MarkUnjoined("1", nil)

	o, _ := s.Get("1")
	assert.False(t, o.Joined)
	require.NotNil(t, o.Occupancy)
	assert.Equal(t, 5, *o.Occupancy)
}

func TestStore_OccupancyAbsentUntilKnown(t *testing.T) {
	s := NewStore()

	s.MarkJoined("1", nil)

	o, ok := s.Get("1")
	require.True(t, ok)
	assert.True(t, o.Joined)
	assert.Nil(t, o.Occupancy)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.MarkJoined("1", models.IntPtr(5))

	o, _ := s.Get("1")
	*o.Occupancy = 99

	again, _ := s.Get("1")
	assert.Equal(t, 5, *again.Occupancy)
}

func TestStore_CallerPointerNotRetained(t *testing.T) {
	s := NewStore()
	occupancy := 5
	s.MarkJoined("1", &occupancy)

	occupancy = 6

	o, _ := s.Get("1")
	assert.Equal(t, 5, *o.Occupancy)
}

func TestStore_SubscribersSeeUpdatedState(t *testing.T) {
	s := NewStore()

	var seen []bool
	s.Subscribe(func() {
		o, ok := s.Get("7")
		require.True(t, ok)
		seen = append(seen, o.Joined)
	})

	s.MarkJoined("7", nil)
	s.MarkUnjoined("7", nil)

	assert.Equal(t, []bool{true, false}, seen)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore()

	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })
	s.MarkJoined("1", nil)
	unsubscribe()
	s.MarkJoined("2", nil)

	assert.Equal(t, 1, calls)
}

func TestStore_PanickingSubscriberDoesNotBlockOthers(t *testing.T) {
	s := NewStore()

	calls := 0
	s.Subscribe(func() { panic("render failed") })
	s.Subscribe(func() { calls++ })

	s.MarkJoined("1", nil)

	assert.Equal(t, 1, calls)
	o, _ := s.Get("1")
	assert.True(t, o.Joined)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.MarkJoined(models.ContestID("c"), models.IntPtr(n))
			s.Get("c")
		}(i)
	}
	wg.Wait()

	o, ok := s.Get("c")
	require.True(t, ok)
	assert.True(t, o.Joined)
	assert.Equal(t, 1, s.Len())
}
