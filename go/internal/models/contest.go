package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ContestCategoryFree marks practice contests that cost nothing to enter.
const ContestCategoryFree = "free"

// ContestID identifies a contest. The API serves it either as a JSON number
// or a string, so both are accepted on decode.
type ContestID string

func (id ContestID) String() string {
	return string(id)
}

// UnmarshalJSON accepts `123` as well as `"123"`.
func (id *ContestID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ContestID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid contest id %s: %w", string(data), err)
	}
	*id = ContestID(n.String())
	return nil
}

// ContestRecord represents one contest instance as served by the contest API
type ContestRecord struct {
	ContestID       ContestID `json:"contestId"`
	Title           string    `json:"title,omitempty"`
	EntryFee        *int      `json:"entryFee,omitempty"`
	ContestSize     int       `json:"contestSize"`
	CurrentSize     *int      `json:"currentSize,omitempty"`
	PrizeAmount     float64   `json:"prizeAmount"`
	FirstPrize      float64   `json:"firstPrize"`
	NoOfWinners     int       `json:"noOfWinners"`
	MaxTeamsAllowed int       `json:"maxTeamsAllowed"`
	ContestCategory string    `json:"contestCategory,omitempty"`
	Joined          bool      `json:"joined"`
}

// UnmarshalJSON falls back to the legacy "id" field when "contestId" is absent.
func (c *ContestRecord) UnmarshalJSON(data []byte) error {
	type wire ContestRecord
	aux := struct {
		*wire
		LegacyID ContestID `json:"id"`
	}{wire: (*wire)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if c.ContestID == "" {
		c.ContestID = aux.LegacyID
	}
	return nil
}

// Clone returns a copy that shares no pointers with c.
func (c ContestRecord) Clone() ContestRecord {
	if c.CurrentSize != nil {
		size := *c.CurrentSize
		c.CurrentSize = &size
	}
	if c.EntryFee != nil {
		fee := *c.EntryFee
		c.EntryFee = &fee
	}
	return c
}

// Occupancy returns the current number of participants, 0 when unknown.
func (c ContestRecord) Occupancy() int {
	if c.CurrentSize == nil {
		return 0
	}
	return *c.CurrentSize
}

func (c ContestRecord) SpotsLeft() int {
	left := c.ContestSize - c.Occupancy()
	if left < 0 {
		return 0
	}
	return left
}

func (c ContestRecord) FillPercentage() float64 {
	if c.ContestSize <= 0 {
		return 0
	}
	return float64(c.Occupancy()) / float64(c.ContestSize) * 100
}

func (c ContestRecord) WinnerPercentage() int {
	if c.ContestSize <= 0 {
		return 0
	}
	return int(math.Round(float64(c.NoOfWinners) / float64(c.ContestSize) * 100))
}

// IsPractice reports whether the contest is free to enter. A record that
// omits the entry fee is only practice when its category says so.
func (c ContestRecord) IsPractice() bool {
	return c.ContestCategory == ContestCategoryFree || (c.EntryFee != nil && *c.EntryFee == 0)
}

// ContestsResponse is the envelope returned by the contest list endpoint
type ContestsResponse struct {
	Contests []ContestRecord `json:"contests"`
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int {
	return &v
}
