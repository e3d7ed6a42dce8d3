package query

import (
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/models"
)

const isoDate = "2006-01-02"

// ParseDateRange resolves a date directive value relative to now.
// Accepted forms: today, yesterday, week, month, an ISO date (the whole day),
// an RFC 3339 timestamp (the whole day it falls on), or start..end where each
// side is an ISO date or timestamp; an ISO end date includes that whole day.
// Anything else returns ok == false.
func ParseDateRange(value string, now time.Time) (models.DateRange, bool) {
	value = strings.TrimSpace(value)
	midnight := startOfDay(now)
	tomorrow := midnight.AddDate(0, 0, 1)

	switch strings.ToLower(value) {
	case "today":
		return models.DateRange{Start: midnight, End: tomorrow}, true
	case "yesterday":
		return models.DateRange{Start: midnight.AddDate(0, 0, -1), End: midnight}, true
	case "week":
		return models.DateRange{Start: midnight.AddDate(0, 0, -7), End: tomorrow}, true
	case "month":
		return models.DateRange{Start: midnight.AddDate(0, -1, 0), End: tomorrow}, true
	}

	if from, to, found := strings.Cut(value, ".."); found {
		start, _, ok := parseBound(from, now.Location())
		if !ok {
			return models.DateRange{}, false
		}
		end, dateOnly, ok := parseBound(to, now.Location())
		if !ok {
			return models.DateRange{}, false
		}
		if dateOnly {
			end = end.AddDate(0, 0, 1)
		}
		if !start.Before(end) {
			return models.DateRange{}, false
		}
		return models.DateRange{Start: start, End: end}, true
	}

	t, _, ok := parseBound(value, now.Location())
	if !ok {
		return models.DateRange{}, false
	}
	day := startOfDay(t)
	return models.DateRange{Start: day, End: day.AddDate(0, 0, 1)}, true
}

// parseBound parses an ISO date (in loc) or an RFC 3339 timestamp.
func parseBound(s string, loc *time.Location) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if d, err := time.ParseInLocation(isoDate, s, loc); err == nil {
		return d, true, true
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, false, true
	}
	return time.Time{}, false, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
