package lunar

import (
	"errors"
	"fmt"
	"time"
)

const (
	// MinYear and MaxYear bound the encoded table below.
	MinYear = 1900
	MaxYear = 2100
)

// ErrOutOfRange is returned when a date falls outside the supported table range.
var ErrOutOfRange = errors.New("date outside supported lunar table range (1900-2100)")

// epoch is the solar date of lunar 1900-01-01 (正月初一 1900).
var epoch = time.Date(1900, 1, 31, 0, 0, 0, 0, time.UTC)

// yearInfo encodes one lunar year: bits 15..4 are the lengths of months 1..12
// (set = 30 days, clear = 29), bits 3..0 are the leap month number (0 = none),
// bit 16 is the leap month length (set = 30 days).
var yearInfo = [MaxYear - MinYear + 1]int{
	0x04bd8, 0x04ae0, 0x0a570, 0x054d5, 0x0d260, 0x0d950, 0x16554, 0x056a0, 0x09ad0, 0x055d2, // 1900-1909
	0x04ae0, 0x0a5b6, 0x0a4d0, 0x0d250, 0x1d255, 0x0b540, 0x0d6a0, 0x0ada2, 0x095b0, 0x14977, // 1910-1919
	0x04970, 0x0a4b0, 0x0b4b5, 0x06a50, 0x06d40, 0x1ab54, 0x02b60, 0x09570, 0x052f2, 0x04970, // 1920-1929
	0x06566, 0x0d4a0, 0x0ea50, 0x06e95, 0x05ad0, 0x02b60, 0x186e3, 0x092e0, 0x1c8d7, 0x0c950, // 1930-1939
	0x0d4a0, 0x1d8a6, 0x0b550, 0x056a0, 0x1a5b4, 0x025d0, 0x092d0, 0x0d2b2, 0x0a950, 0x0b557, // 1940-1949
	0x06ca0, 0x0b550, 0x15355, 0x04da0, 0x0a5b0, 0x14573, 0x052b0, 0x0a9a8, 0x0e950, 0x06aa0, // 1950-1959
	0x0aea6, 0x0ab50, 0x04b60, 0x0aae4, 0x0a570, 0x05260, 0x0f263, 0x0d950, 0x05b57, 0x056a0, // 1960-1969
	0x096d0, 0x04dd5, 0x04ad0, 0x0a4d0, 0x0d4d4, 0x0d250, 0x0d558, 0x0b540, 0x0b5a0, 0x195a6, // 1970-1979
	0x095b0, 0x049b0, 0x0a974, 0x0a4b0, 0x0b27a, 0x06a50, 0x06d40, 0x0af46, 0x0ab60, 0x09570, // 1980-1989
	0x04af5, 0x04970, 0x064b0, 0x074a3, 0x0ea50, 0x06b58, 0x05ac0, 0x0ab60, 0x096d5, 0x092e0, // 1990-1999
	0x0c960, 0x0d954, 0x0d4a0, 0x0da50, 0x07552, 0x056a0, 0x0abb7, 0x025d0, 0x092d0, 0x0cab5, // 2000-2009
	0x0a950, 0x0b4a0, 0x0baa4, 0x0ad50, 0x055d9, 0x04ba0, 0x0a5b0, 0x15176, 0x052b0, 0x0a930, // 2010-2019
	0x07954, 0x06aa0, 0x0ad50, 0x05b52, 0x04b60, 0x0a6e6, 0x0a4e0, 0x0d260, 0x0ea65, 0x0d530, // 2020-2029
	0x05aa0, 0x076a3, 0x096d0, 0x04afb, 0x04ad0, 0x0a4d0, 0x1d0b6, 0x0d250, 0x0d520, 0x0dd45, // 2030-2039
	0x0b5a0, 0x056d0, 0x055b2, 0x049b0, 0x0a577, 0x0a4b0, 0x0aa50, 0x1b255, 0x06d20, 0x0ada0, // 2040-2049
	0x14b63, 0x09370, 0x049f8, 0x04970, 0x064b0, 0x168a6, 0x0ea50, 0x06b20, 0x1a6c4, 0x0aae0, // 2050-2059
	0x0a2e0, 0x0d2e3, 0x0c960, 0x0d557, 0x0d4a0, 0x0da50, 0x05d55, 0x056a0, 0x0a6d0, 0x055d4, // 2060-2069
	0x052d0, 0x0a9b8, 0x0a950, 0x0b4a0, 0x0b6a6, 0x0ad50, 0x055a0, 0x0aba4, 0x0a5b0, 0x052b0, // 2070-2079
	0x0b273, 0x06930, 0x07337, 0x06aa0, 0x0ad50, 0x14b55, 0x04b60, 0x0a570, 0x054e4, 0x0d160, // 2080-2089
	0x0e968, 0x0d520, 0x0daa0, 0x16aa6, 0x056d0, 0x04ae0, 0x0a9d4, 0x0a2d0, 0x0d150, 0x0f252, // 2090-2099
	0x0d520, // 2100
}

// Date is a date on the traditional lunar calendar. Month numbers repeat in
// years with an intercalary month, so IsLeapMonth is part of the identity.
type Date struct {
	Year        int
	Month       int
	IsLeapMonth bool
	Day         int
}

func (d Date) String() string {
	leap := ""
	if d.IsLeapMonth {
		leap = "闰"
	}
	return fmt.Sprintf("%d年%s%s%s", d.Year, leap, MonthName(d.Month), DayName(d.Day))
}

// LeapMonth returns the leap month number for a lunar year, 0 if none.
func LeapMonth(year int) int {
	return yearInfo[year-MinYear] & 0xf
}

func leapMonthDays(year int) int {
	if LeapMonth(year) == 0 {
		return 0
	}
	if yearInfo[year-MinYear]&0x10000 != 0 {
		return 30
	}
	return 29
}

func monthDays(year, month int) int {
	if yearInfo[year-MinYear]&(0x10000>>uint(month)) != 0 {
		return 30
	}
	return 29
}

func yearDays(year int) int {
	days := 0
	for month := 1; month <= 12; month++ {
		days += monthDays(year, month)
	}
	return days + leapMonthDays(year)
}

// monthSpan is one calendar month of a lunar year in chronological order.
type monthSpan struct {
	month int
	leap  bool
	days  int
}

// monthsOf lists the months of a lunar year in order, with the leap month
// inserted after its namesake.
func monthsOf(year int) []monthSpan {
	leap := LeapMonth(year)
	spans := make([]monthSpan, 0, 13)
	for month := 1; month <= 12; month++ {
		spans = append(spans, monthSpan{month: month, days: monthDays(year, month)})
		if month == leap {
			spans = append(spans, monthSpan{month: month, leap: true, days: leapMonthDays(year)})
		}
	}
	return spans
}

// FromSolar converts a Gregorian date to its lunar date.
func FromSolar(date time.Time) (Date, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(epoch) || day.Year() > MaxYear {
		return Date{}, ErrOutOfRange
	}

	offset := int(day.Sub(epoch).Hours() / 24)

	year := MinYear
	for year <= MaxYear {
		days := yearDays(year)
		if offset < days {
			break
		}
		offset -= days
		year++
	}
	if year > MaxYear {
		return Date{}, ErrOutOfRange
	}

	for _, span := range monthsOf(year) {
		if offset < span.days {
			return Date{
				Year:        year,
				Month:       span.month,
				IsLeapMonth: span.leap,
				Day:         offset + 1,
			}, nil
		}
		offset -= span.days
	}

	// Unreachable: monthsOf covers yearDays exactly.
	return Date{}, ErrOutOfRange
}

// ToSolar converts a lunar date back to Gregorian. The leap flag must match
// the table: a leap month only exists in years that encode one.
func ToSolar(d Date) (time.Time, error) {
	if d.Year < MinYear || d.Year > MaxYear {
		return time.Time{}, ErrOutOfRange
	}
	if d.Month < 1 || d.Month > 12 {
		return time.Time{}, fmt.Errorf("invalid lunar month %d", d.Month)
	}
	if d.IsLeapMonth && LeapMonth(d.Year) != d.Month {
		return time.Time{}, fmt.Errorf("lunar year %d has no leap month %d", d.Year, d.Month)
	}

	offset := 0
	for year := MinYear; year < d.Year; year++ {
		offset += yearDays(year)
	}

	for _, span := range monthsOf(d.Year) {
		if span.month == d.Month && span.leap == d.IsLeapMonth {
			if d.Day < 1 || d.Day > span.days {
				return time.Time{}, fmt.Errorf("invalid lunar day %d for month of %d days", d.Day, span.days)
			}
			return epoch.AddDate(0, 0, offset+d.Day-1), nil
		}
		offset += span.days
	}

	return time.Time{}, fmt.Errorf("lunar month %d not found in year %d", d.Month, d.Year)
}

// NewYear returns the Gregorian date of lunar new year (正月初一) for a year.
func NewYear(year int) (time.Time, error) {
	return ToSolar(Date{Year: year, Month: 1, Day: 1})
}

var (
	monthNames = []string{"正月", "二月", "三月", "四月", "五月", "六月", "七月", "八月", "九月", "十月", "冬月", "腊月"}
	dayTens    = []string{"初", "十", "廿", "三"}
	dayDigits  = []string{"十", "一", "二", "三", "四", "五", "六", "七", "八", "九"}
	stems      = []string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}
	branches   = []string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}
	zodiacs    = []string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}
)

// MonthName returns the traditional name of a lunar month (正月..腊月).
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNames[month-1]
}

// DayName returns the traditional name of a lunar day (初一..三十).
func DayName(day int) string {
	if day < 1 || day > 30 {
		return ""
	}
	switch day {
	case 10:
		return "初十"
	case 20:
		return "二十"
	case 30:
		return "三十"
	default:
		return dayTens[day/10] + dayDigits[day%10]
	}
}

// YearName returns the sexagenary (干支) name of a lunar year, e.g. 乙巳.
func YearName(year int) string {
	return stems[(year-4)%10] + branches[(year-4)%12]
}

// Zodiac returns the animal of a lunar year, e.g. 蛇 for 2025.
func Zodiac(year int) string {
	return zodiacs[(year-4)%12]
}
