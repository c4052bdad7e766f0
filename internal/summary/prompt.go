package summary

import (
	"fmt"
	"strings"

	"github.com/julianstephens/neurozen/internal/calendar"
	"github.com/julianstephens/neurozen/internal/models"
	"github.com/julianstephens/neurozen/internal/storage"
)

// Aggregates is everything the prompt is built from.
type Aggregates struct {
	Name     string
	Day      calendar.Day
	Activity storage.DayActivity
	Mood     *models.MoodEntry
}

// BuildPrompt renders aggregates into the fixed summary prompt.
func BuildPrompt(a Aggregates) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a short, warm end-of-day summary for %s for %s.\n", a.Name, a.Day)
	b.WriteString("Address them by name, celebrate what went well and suggest one gentle focus for tomorrow.\n")
	b.WriteString("Keep it under 120 words and do not use markdown.\n\n")

	b.WriteString("Today's activity:\n")
	fmt.Fprintf(&b, "- Tasks scheduled for today: %d\n", a.Activity.TasksDue)
	fmt.Fprintf(&b, "- Tasks completed today: %d\n", a.Activity.TasksCompleted)
	fmt.Fprintf(&b, "- Tasks still pending: %d\n", a.Activity.TasksPending)
	fmt.Fprintf(&b, "- Focus sessions started: %d\n", a.Activity.SessionsStarted)
	if len(a.Activity.CompletedTitles) > 0 {
		fmt.Fprintf(&b, "- Completed: %s\n", strings.Join(a.Activity.CompletedTitles, "; "))
	}

	if a.Mood != nil {
		fmt.Fprintf(&b, "- Mood: %s", a.Mood.Label())
		if notes := strings.TrimSpace(a.Mood.Notes); notes != "" {
			fmt.Fprintf(&b, " (%s)", notes)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("- Mood: not logged\n")
	}
	return b.String()
}
