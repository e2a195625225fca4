package contests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/contestsync/go/internal/models"
)

func titles(sections []Section) []string {
	out := make([]string, 0, len(sections))
	for _, s := range sections {
		out = append(out, s.Title)
	}
	return out
}

func prizes(s Section) []float64 {
	out := make([]float64, 0, len(s.Data))
	for _, c := range s.Data {
		out = append(out, c.PrizeAmount)
	}
	return out
}

func TestGroupByTitle(t *testing.T) {
	contests := []models.ContestRecord{
		{ContestID: "1", Title: "A", PrizeAmount: 10},
		{ContestID: "2", Title: "B", PrizeAmount: 50},
		{ContestID: "3", Title: "A", PrizeAmount: 30},
	}

	sections := GroupByTitle(contests)

	require.Equal(t, []string{"B", "A"}, titles(sections))
	assert.Equal(t, []float64{50}, prizes(sections[0]))
	assert.Equal(t, []float64{30, 10}, prizes(sections[1]))

	// Input order is untouched.
	assert.Equal(t, models.ContestID("1"), contests[0].ContestID)
}

func TestGroupByTitle_MissingTitleGoesToOther(t *testing.T) {
	sections := GroupByTitle([]models.ContestRecord{
		{ContestID: "1", PrizeAmount: 5},
		{ContestID: "2", Title: "Mega", PrizeAmount: 1},
	})

	assert.Equal(t, []string{DefaultSectionTitle, "Mega"}, titles(sections))
}

func TestGroupByTitle_TiesKeepFirstAppearance(t *testing.T) {
	sections := GroupByTitle([]models.ContestRecord{
		{ContestID: "1", Title: "X", PrizeAmount: 20},
		{ContestID: "2", Title: "Y", PrizeAmount: 20},
		{ContestID: "3", Title: "X", PrizeAmount: 20},
	})

	require.Equal(t, []string{"X", "Y"}, titles(sections))
	assert.Equal(t, models.ContestID("1"), sections[0].Data[0].ContestID)
	assert.Equal(t, models.ContestID("3"), sections[0].Data[1].ContestID)
}

func TestGroupByTitle_Empty(t *testing.T) {
	sections := GroupByTitle(nil)
	assert.NotNil(t, sections)
	assert.Empty(t, sections)
}
