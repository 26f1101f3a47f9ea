package dateutil

import (
	"fmt"
	"time"
)

// Beijing is the fixed UTC+8 zone the holiday schedule is published in.
// A fixed zone avoids depending on the host's tzdata.
var Beijing = time.FixedZone("CST", 8*60*60)

// Midnight truncates a date to 00:00:00 in UTC. All engine dates are
// normalized this way so day arithmetic is exact.
func Midnight(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// Today returns the current date in Beijing time, normalized to midnight UTC.
func Today() time.Time {
	return Midnight(time.Now().In(Beijing))
}

// DaysBetween returns the whole-day difference to - from. Both arguments are
// normalized to midnight first, so time-of-day never skews the count.
func DaysBetween(from, to time.Time) int {
	return int(Midnight(to).Sub(Midnight(from)).Hours() / 24)
}

// IsWeekend returns true if the date is Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// IsSameDay returns true if two dates are on the same calendar day.
func IsSameDay(date1, date2 time.Time) bool {
	return date1.Year() == date2.Year() &&
		date1.Month() == date2.Month() &&
		date1.Day() == date2.Day()
}

// Key formats a date as the YYYY-MM-DD key used by override maps and storage.
func Key(date time.Time) string {
	return date.Format("2006-01-02")
}

// ParseDate parses a date string in the formats the engine accepts.
func ParseDate(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"20060102",
		"2006/01/02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return Midnight(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// WeekdayCN returns the Chinese numeral for the weekday (一..六, 日 for Sunday).
func WeekdayCN(date time.Time) string {
	names := []string{"日", "一", "二", "三", "四", "五", "六"}
	return names[int(date.Weekday())]
}
