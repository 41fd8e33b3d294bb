package cycle

import (
	"fmt"
	"time"
)

// DefaultStartDay and DefaultEndDay describe a plain calendar month; they
// label workspaces that have no items yet.
const (
	DefaultStartDay = 1
	DefaultEndDay   = MaxDay
)

// BuildCycleLabel formats a date range as "Jan 2 - Feb 1".
func BuildCycleLabel(start, end time.Time) string {
	return fmt.Sprintf("%s - %s", start.Format("Jan 2"), end.Format("Jan 2"))
}

// Window returns the dates of the cycle that contains now. Days beyond the
// end of a month are clamped to its last day. When endDay < startDay the
// cycle ends in the month after it starts.
func Window(startDay, endDay int, now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	loc := now.Location()

	start = dayIn(y, m, startDay, loc)
	if d < start.Day() {
		start = dayIn(y, m-1, startDay, loc)
	}

	sy, sm, _ := start.Date()
	if endDay >= startDay {
		end = dayIn(sy, sm, endDay, loc)
	} else {
		end = dayIn(sy, sm+1, endDay, loc)
	}
	return start, end
}

// BuildWorkspaceCycleLabel labels the cycle containing now.
func BuildWorkspaceCycleLabel(startDay, endDay int, now time.Time) string {
	start, end := Window(startDay, endDay, now)
	return BuildCycleLabel(start, end)
}

// LabelFor labels the current cycle of a workspace, falling back to the
// calendar month when the workspace has no cycle days.
func LabelFor(d Days, now time.Time) string {
	start, end := DefaultStartDay, DefaultEndDay
	if d.StartDay != nil && d.EndDay != nil {
		start, end = *d.StartDay, *d.EndDay
	}
	return BuildWorkspaceCycleLabel(start, end, now)
}

// dayIn builds the date for day in the given month (normalising month
// overflow first), clamped to the month's length.
func dayIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, loc)
}
