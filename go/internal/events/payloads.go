package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/contestsync/go/internal/models"
)

// JoinEvent is emitted after every join attempt, successful or not
type JoinEvent struct {
	ID        string    `json:"id"`
	ContestID string    `json:"contest_id"`
	UserID    string    `json:"user_id"`
	Joined    bool      `json:"joined"`
	Occupancy *int      `json:"occupancy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewJoinEvent builds an event stamped with at. occupancy is copied.
func NewJoinEvent(contestID models.ContestID, userID string, joined bool, occupancy *int, at time.Time) JoinEvent {
	e := JoinEvent{
		ID:        uuid.New().String(),
		ContestID: contestID.String(),
		UserID:    userID,
		Joined:    joined,
		Timestamp: at.UTC(),
	}
	if occupancy != nil {
		e.Occupancy = models.IntPtr(*occupancy)
	}
	return e
}
