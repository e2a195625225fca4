package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContestRecord_UnmarshalNumericID(t *testing.T) {
	raw := `{"contestId": 101, "title": "Mega", "entryFee": 49, "contestSize": 1000,
		"currentSize": 250, "prizeAmount": 2050000, "firstPrize": 500000,
		"noOfWinners": 590, "maxTeamsAllowed": 20, "contestCategory": "paid"}`

	var c ContestRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	assert.Equal(t, ContestID("101"), c.ContestID)
	assert.Equal(t, "Mega", c.Title)
	require.NotNil(t, c.EntryFee)
	assert.Equal(t, 49, *c.EntryFee)
	require.NotNil(t, c.CurrentSize)
	assert.Equal(t, 250, *c.CurrentSize)
	assert.Equal(t, float64(2050000), c.PrizeAmount)
	assert.False(t, c.Joined)
}

func TestContestRecord_UnmarshalLegacyID(t *testing.T) {
	var c ContestRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc-7", "contestSize": 10}`), &c))

	assert.Equal(t, ContestID("abc-7"), c.ContestID)
	assert.Nil(t, c.CurrentSize)
}

func TestContestRecord_ContestIDWinsOverLegacyID(t *testing.T) {
	var c ContestRecord
	require.NoError(t, json.Unmarshal([]byte(`{"contestId": 5, "id": 9}`), &c))

	assert.Equal(t, ContestID("5"), c.ContestID)
}

func TestContestID_RejectsInvalid(t *testing.T) {
	var id ContestID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}

func TestContestRecord_Clone(t *testing.T) {
	c := ContestRecord{ContestID: "1", CurrentSize: IntPtr(3)}
	clone := c.Clone()

	*clone.CurrentSize = 4
	assert.Equal(t, 3, *c.CurrentSize)

	c.EntryFee = IntPtr(49)
	clone = c.Clone()
	*clone.EntryFee = 0
	assert.Equal(t, 49, *c.EntryFee)
}

func TestContestRecord_DerivedValues(t *testing.T) {
	tests := []struct {
		name      string
		contest   ContestRecord
		spotsLeft int
		fill      float64
		winners   int
		practice  bool
	}{
		{
			name:      "partially filled paid contest",
			contest:   ContestRecord{EntryFee: IntPtr(49), ContestSize: 1000, CurrentSize: IntPtr(250), NoOfWinners: 590},
			spotsLeft: 750,
			fill:      25,
			winners:   59,
		},
		{
			name:      "overfilled contest never reports negative spots",
			contest:   ContestRecord{EntryFee: IntPtr(10), ContestSize: 2, CurrentSize: IntPtr(3)},
			spotsLeft: 0,
			fill:      150,
		},
		{
			name:     "zero capacity",
			contest:  ContestRecord{EntryFee: IntPtr(0), ContestSize: 0, NoOfWinners: 1},
			practice: true,
		},
		{
			name:      "missing entry fee is not practice",
			contest:   ContestRecord{ContestSize: 10, CurrentSize: IntPtr(4)},
			spotsLeft: 6,
			fill:      40,
		},
		{
			name:      "free category",
			contest:   ContestRecord{EntryFee: IntPtr(5), ContestSize: 4, ContestCategory: ContestCategoryFree, NoOfWinners: 1},
			spotsLeft: 4,
			winners:   25,
			practice:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.spotsLeft, tt.contest.SpotsLeft())
			assert.InDelta(t, tt.fill, tt.contest.FillPercentage(), 0.001)
			assert.Equal(t, tt.winners, tt.contest.WinnerPercentage())
			assert.Equal(t, tt.practice, tt.contest.IsPractice())
		})
	}
}

func TestContestRecord_IsPracticeFromWire(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		practice bool
	}{
		{"zero fee", `{"contestId": 1, "entryFee": 0}`, true},
		{"paid", `{"contestId": 1, "entryFee": 25}`, false},
		{"fee omitted", `{"contestId": 1}`, false},
		{"fee omitted but free category", `{"contestId": 1, "contestCategory": "free"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c ContestRecord
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &c))
			assert.Equal(t, tt.practice, c.IsPractice())
		})
	}
}
