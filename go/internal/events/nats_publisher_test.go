package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/contestsync/go/internal/models"
)

type MockConn struct {
	mock.Mock
}

func (m *MockConn) Publish(subj string, data []byte) error {
	args := m.Called(subj, data)
	return args.Error(0)
}

func (m *MockConn) Close() {
	m.Called()
}

func TestNATSPublisher_PublishJoin(t *testing.T) {
	conn := new(MockConn)
	p := NewNATSPublisher(conn, "contests.joins")

	event := NewJoinEvent("17", "200095", true, models.IntPtr(8), time.Now())

	conn.On("Publish", "contests.joins.17", mock.MatchedBy(func(data []byte) bool {
		var decoded JoinEvent
		if err := json.Unmarshal(data, &decoded); err != nil {
			return false
		}
		return decoded.ID == event.ID && decoded.Joined && decoded.Occupancy != nil && *decoded.Occupancy == 8
	})).Return(nil).Once()

	require.NoError(t, p.PublishJoin(context.Background(), event))
	conn.AssertExpectations(t)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	conn := new(MockConn)
	p := NewNATSPublisher(conn, "contests.joins")

	conn.On("Publish", "contests.joins.3", mock.Anything).Return(errors.New("nats: connection closed"))

	err := p.PublishJoin(context.Background(), NewJoinEvent("3", "u", false, nil, time.Now()))
	assert.ErrorContains(t, err, "publish to contests.joins.3")
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	conn := new(MockConn)
	p := NewNATSPublisher(conn, "contests.joins")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.PublishJoin(ctx, NewJoinEvent("3", "u", false, nil, time.Now())), context.Canceled)
	conn.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestNewJoinEvent_CopiesOccupancy(t *testing.T) {
	occupancy := 4
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	e := NewJoinEvent("1", "u", true, &occupancy, at)
	occupancy = 5

	require.NotNil(t, e.Occupancy)
	assert.Equal(t, 4, *e.Occupancy)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "1", e.ContestID)
	assert.True(t, e.Timestamp.Equal(at))
	assert.Equal(t, time.UTC, e.Timestamp.Location())
}
