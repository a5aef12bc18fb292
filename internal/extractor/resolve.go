package extractor

import (
	"fmt"
	"time"
)

// resolveDueAt turns the model's local date/time strings into an absolute
// UTC instant, anchored to the caller's current local time.
//
//   - bare time, no date: today if that time is still ahead locally, else
//     tomorrow
//   - date without a year: the current year, unless the message explicitly
//     says "next year"
//   - date without a time: 9:00 AM local
func resolveDueAt(dateStr, timeStr *string, message string, nowLocal time.Time) (*time.Time, error) {
	if dateStr == nil && timeStr == nil {
		return nil, nil
	}
	loc := nowLocal.Location()

	hour, minute := 9, 0
	if timeStr != nil {
		t, err := parseClock(*timeStr)
		if err != nil {
			return nil, err
		}
		hour, minute = t.Hour(), t.Minute()
	}

	var year int
	var month time.Month
	var day int
	switch {
	case dateStr != nil:
		y, m, d, err := parseLocalDate(*dateStr, message, nowLocal)
		if err != nil {
			return nil, err
		}
		year, month, day = y, m, d
	default:
		// Bare clock time: today, rolling to tomorrow once it has passed.
		year, month, day = nowLocal.Date()
		candidate := time.Date(year, month, day, hour, minute, 0, 0, loc)
		if !candidate.After(nowLocal) {
			next := candidate.AddDate(0, 0, 1)
			year, month, day = next.Date()
		}
	}

	due := time.Date(year, month, day, hour, minute, 0, 0, loc).UTC()
	return &due, nil
}

func parseClock(s string) (time.Time, error) {
	for _, layout := range []string{"15:04", "3:04 PM", "3:04PM", "3 PM", "3PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func parseLocalDate(s, message string, nowLocal time.Time) (int, time.Month, int, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.Year(), t.Month(), t.Day(), nil
	}
	// Year-less form: current year unless the user said "next year".
	if t, err := time.Parse("01-02", s); err == nil {
		year := nowLocal.Year()
		if MentionsNextYear(message) {
			year++
		}
		return year, t.Month(), t.Day(), nil
	}
	return 0, 0, 0, fmt.Errorf("unparseable date %q", s)
}
