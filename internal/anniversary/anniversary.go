// Package anniversary parses user-configured anniversaries and resolves each
// one to its next occurrence on the Gregorian calendar.
package anniversary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/cn-calendar/internal/lunar"
	"github.com/username/cn-calendar/pkg/dateutil"
)

// Anniversary is one parsed entry. Keys come in four shapes:
//
//	MM-DD        yearly, Gregorian
//	YYYY-MM-DD   one-time, Gregorian
//	nMM-DD       yearly, lunar
//	nYYYY-MM-DD  one-time, lunar (YYYY is the lunar year)
//
// The configured value becomes the Label.
type Anniversary struct {
	Key     string
	Label   string
	Lunar   bool
	OneTime bool
	Year    int
	Month   int
	Day     int
}

// Event is an anniversary resolved against an anchor date.
type Event struct {
	Anniversary Anniversary
	Date        time.Time
	DaysDiff    int
}

// ParseWarning records one skipped entry. Parsing never fails as a whole;
// bad keys are collected so the rest of the configuration stays usable.
type ParseWarning struct {
	Key    string
	Reason string
}

// Parse converts a key-label map into anniversaries, skipping and reporting
// entries whose keys do not fit the grammar. Results are sorted by key.
func Parse(entries map[string]string, logger *zap.Logger) ([]Anniversary, []ParseWarning) {
	var (
		parsed   []Anniversary
		warnings []ParseWarning
	)
	for key, label := range entries {
		a, err := parseKey(key)
		if err != nil {
			warnings = append(warnings, ParseWarning{Key: key, Reason: err.Error()})
			logger.Warn("Skipping malformed anniversary key",
				zap.String("key", key),
				zap.Error(err))
			continue
		}
		a.Label = label
		parsed = append(parsed, a)
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].Key < parsed[j].Key })
	sort.Slice(warnings, func(i, j int) bool { return warnings[i].Key < warnings[j].Key })
	return parsed, warnings
}

func parseKey(key string) (Anniversary, error) {
	a := Anniversary{Key: key}

	body := key
	if strings.HasPrefix(body, "n") {
		a.Lunar = true
		body = body[1:]
	}

	parts := strings.Split(body, "-")
	switch len(parts) {
	case 2:
		// MM-DD
	case 3:
		year, err := atoiExact(parts[0], 4)
		if err != nil {
			return a, fmt.Errorf("bad year %q: %w", parts[0], err)
		}
		a.OneTime = true
		a.Year = year
		parts = parts[1:]
	default:
		return a, fmt.Errorf("key %q is not MM-DD or YYYY-MM-DD", key)
	}

	month, err := atoiExact(parts[0], 2)
	if err != nil {
		return a, fmt.Errorf("bad month %q: %w", parts[0], err)
	}
	day, err := atoiExact(parts[1], 2)
	if err != nil {
		return a, fmt.Errorf("bad day %q: %w", parts[1], err)
	}

	if month < 1 || month > 12 {
		return a, fmt.Errorf("month %d out of range", month)
	}
	maxDay := 31
	if a.Lunar {
		maxDay = 30
	}
	if day < 1 || day > maxDay {
		return a, fmt.Errorf("day %d out of range", day)
	}

	a.Month = month
	a.Day = day
	return a, nil
}

func atoiExact(s string, width int) (int, error) {
	if len(s) != width {
		return 0, fmt.Errorf("want %d digits, got %q", width, s)
	}
	return strconv.Atoi(s)
}

// NextOccurrence resolves the anniversary to its first occurrence on or
// after anchor. ok is false for one-time anniversaries already in the past.
func NextOccurrence(a Anniversary, anchor time.Time) (time.Time, bool, error) {
	anchor = dateutil.Midnight(anchor)

	if a.OneTime {
		date, err := resolveYear(a, a.Year)
		if err != nil {
			return time.Time{}, false, err
		}
		if date.Before(anchor) {
			return time.Time{}, false, nil
		}
		return date, true, nil
	}

	startYear := anchor.Year()
	if a.Lunar {
		ld, err := lunar.FromSolar(anchor)
		if err != nil {
			return time.Time{}, false, err
		}
		startYear = ld.Year
	}

	for year := startYear; ; year++ {
		date, err := resolveYear(a, year)
		if err != nil {
			return time.Time{}, false, err
		}
		if !date.Before(anchor) {
			return date, true, nil
		}
	}
}

// resolveYear pins the recurring month-day into a concrete year. For lunar
// anniversaries the year is a lunar year and the regular (non-leap) month is
// used; day 30 of a short month observes on day 29. A Gregorian Feb 29
// observes on Mar 1 in common years.
func resolveYear(a Anniversary, year int) (time.Time, error) {
	if !a.Lunar {
		date := time.Date(year, time.Month(a.Month), a.Day, 0, 0, 0, 0, time.UTC)
		if a.Month == 2 && a.Day == 29 && date.Month() != time.February {
			return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC), nil
		}
		return date, nil
	}

	date, err := lunar.ToSolar(lunar.Date{Year: year, Month: a.Month, Day: a.Day})
	if err != nil && a.Day == 30 {
		date, err = lunar.ToSolar(lunar.Date{Year: year, Month: a.Month, Day: 29})
	}
	return date, err
}

// Future resolves every anniversary against anchor and returns those falling
// within horizonDays, nearest first. Expired one-time entries drop out;
// resolution errors skip the entry.
func Future(anniversaries []Anniversary, anchor time.Time, horizonDays int, logger *zap.Logger) []Event {
	anchor = dateutil.Midnight(anchor)

	var events []Event
	for _, a := range anniversaries {
		date, ok, err := NextOccurrence(a, anchor)
		if err != nil {
			logger.Warn("Cannot resolve anniversary",
				zap.String("key", a.Key),
				zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		diff := dateutil.DaysBetween(anchor, date)
		if horizonDays >= 0 && diff > horizonDays {
			continue
		}
		events = append(events, Event{Anniversary: a, Date: date, DaysDiff: diff})
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].DaysDiff != events[j].DaysDiff {
			return events[i].DaysDiff < events[j].DaysDiff
		}
		return events[i].Anniversary.Key < events[j].Anniversary.Key
	})
	return events
}
