package contests

import (
	"sort"

	"github.com/mcdev12/contestsync/go/internal/models"
)

// DefaultSectionTitle is used for contests without a title
const DefaultSectionTitle = "Other"

// Section is one titled group of contests for sectioned display
type Section struct {
	Title string                 `json:"title"`
	Data  []models.ContestRecord `json:"data"`
}

// GroupByTitle groups contests by title, orders each group by prize amount
// descending, then orders groups by their top prize descending. Ties keep
// first-appearance order. The input is not modified.
func GroupByTitle(contests []models.ContestRecord) []Section {
	index := make(map[string]int)
	var sections []Section

	for _, contest := range contests {
		title := contest.Title
		if title == "" {
			title = DefaultSectionTitle
		}
		i, ok := index[title]
		if !ok {
			i = len(sections)
			index[title] = i
			sections = append(sections, Section{Title: title})
		}
		sections[i].Data = append(sections[i].Data, contest.Clone())
	}

	for i := range sections {
		data := sections[i].Data
		sort.SliceStable(data, func(a, b int) bool {
			return data[a].PrizeAmount > data[b].PrizeAmount
		})
	}

	sort.SliceStable(sections, func(a, b int) bool {
		return sections[a].Data[0].PrizeAmount > sections[b].Data[0].PrizeAmount
	})

	if sections == nil {
		return []Section{}
	}
	return sections
}
