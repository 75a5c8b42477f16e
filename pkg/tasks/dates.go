package tasks

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultZone is the zone all calendar comparisons are made in unless the
// caller configures another one.
const DefaultZone = "America/Sao_Paulo"

// Clock returns the current time.  Tests pin it.
type Clock func() time.Time

/*
LoadZone resolves a zone name, falling back to a fixed UTC-3 offset when the
host has no zone database.
*/
func LoadZone(name string) *time.Location {
	if name == "" {
		name = DefaultZone
	}

	loc, err := time.LoadLocation(name)

	if err != nil {
		log.Warn("unknown time zone, using UTC-3", "zone", name, "error", err)
		return time.FixedZone("BRT", -3*60*60)
	}

	return loc
}

// midnight truncates t to the start of its calendar day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDiff returns the number of calendar days from "from" to "to" in loc.
func DayDiff(from, to time.Time, loc *time.Location) int {
	return int(midnight(to, loc).Sub(midnight(from, loc)).Hours() / 24)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayDiff(a, b, loc) == 0
}

// IsOverdue reports a due date strictly before today's calendar day.
func (task Task) IsOverdue(now time.Time, loc *time.Location) bool {
	return task.DueDate != nil && DayDiff(now, *task.DueDate, loc) < 0
}

// IsDueToday reports a due date on today's calendar day.
func (task Task) IsDueToday(now time.Time, loc *time.Location) bool {
	return task.DueDate != nil && SameDay(now, *task.DueDate, loc)
}

var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

/*
ParseDueDate reads the date formats produced by the extraction port and the
web client.  Values without an offset are taken to be in loc.
*/
func ParseDueDate(raw string, loc *time.Location) (time.Time, bool) {
	value := strings.TrimSpace(raw)

	if value == "" || strings.EqualFold(value, "null") || strings.EqualFold(value, "none") {
		return time.Time{}, false
	}

	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed.In(loc), true
	}

	for _, layout := range dueDateLayouts[1:] {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

// FormatDueDate renders the canonical "YYYY-MM-DD HH:MM" form used in
// confirmation payloads.
func FormatDueDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02 15:04")
}
