package main

import (
	"fmt"
	"io"
	"time"

	"github.com/mcdev12/contestsync/go/internal/contests"
	"github.com/mcdev12/contestsync/go/internal/models"
)

// formatRemaining renders a countdown as "Xh MMm SSs left". Sub-second
// remainders are truncated and negative durations render as zero.
func formatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%dh %02dm %02ds left", hours, minutes, seconds)
}

func formatContest(c models.ContestRecord) string {
	fee := "fee n/a"
	switch {
	case c.IsPractice():
		fee = "practice"
	case c.EntryFee != nil:
		fee = fmt.Sprintf("fee %d", *c.EntryFee)
	}

	status := ""
	if c.Joined {
		status = " [joined]"
	}

	return fmt.Sprintf("%-8s prize %-10.0f %-9s %d/%d (%.0f%% full, %d spots left, %d%% win)%s",
		c.ContestID, c.PrizeAmount, fee,
		c.Occupancy(), c.ContestSize, c.FillPercentage(), c.SpotsLeft(), c.WinnerPercentage(),
		status)
}

func printSections(w io.Writer, sections []contests.Section) {
	if len(sections) == 0 {
		fmt.Fprintln(w, "no contests")
		return
	}
	for _, section := range sections {
		fmt.Fprintf(w, "%s (%d)\n", section.Title, len(section.Data))
		for _, c := range section.Data {
			fmt.Fprintf(w, "  %s\n", formatContest(c))
		}
	}
}
