package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/username/cn-calendar/pkg/dateutil"
)

// makeupScanCap bounds the walk over contiguous workdays around a holiday.
// Real adjustment schedules never chain more than a handful of days.
const makeupScanCap = 30

// MakeupWorkday is one workday adjacent to a holiday run. Weekend marks a
// day that would default to Restday but was reclassified Workday by the
// official schedule.
type MakeupWorkday struct {
	Date    time.Time
	Weekend bool
}

// HolidayBundle is the nearest statutory holiday together with the
// contiguous workday stretches on both sides of the run.
type HolidayBundle struct {
	Holiday        StatutoryHoliday
	DaysDiff       int
	WorkdaysBefore []MakeupWorkday
	WorkdaysAfter  []MakeupWorkday
}

// HolidayBundle resolves the nearest statutory holiday in the window and
// collects the surrounding make-up workdays.
func (e *Engine) HolidayBundle(anchor time.Time, minDays, maxDays int) (HolidayBundle, bool) {
	anchor = dateutil.Midnight(anchor)
	lk := e.newLookup()

	holiday, ok := lk.nearestStatutoryHoliday(anchor, minDays, maxDays)
	if !ok {
		return HolidayBundle{}, false
	}

	return HolidayBundle{
		Holiday:        holiday,
		DaysDiff:       dateutil.DaysBetween(anchor, holiday.StartDate),
		WorkdaysBefore: lk.contiguousWorkdays(holiday.StartDate, -1),
		WorkdaysAfter:  lk.contiguousWorkdays(holiday.EndDate, 1),
	}, true
}

// contiguousWorkdays walks outward from the run edge while days classify as
// Workday. The walk ends at the first rest or holiday day, so it naturally
// stops at the nearest free weekend.
func (l *lookup) contiguousWorkdays(edge time.Time, step int) []MakeupWorkday {
	var days []MakeupWorkday
	current := edge.AddDate(0, 0, step)
	for i := 0; i < makeupScanCap; i++ {
		if l.classify(current).Status != StatusWorkday {
			break
		}
		days = append(days, MakeupWorkday{Date: current, Weekend: dateutil.IsWeekend(current)})
		current = current.AddDate(0, 0, step)
	}
	if step < 0 {
		for i, j := 0, len(days)-1; i < j; i, j = i+1, j-1 {
			days[i], days[j] = days[j], days[i]
		}
	}
	return days
}

// Summary renders the bundle as the holiday-arrangement text, for example
//
//	10/01(周3)-10/07 放假 共7天
//	据上一次休息3天  9/28(串休日，周7) 9/29 9/30
//	据下一次休息5天  10/8 10/9 10/10 10/11(串休日，周6) ...
func (b HolidayBundle) Summary() string {
	return fmt.Sprintf("%s(周%d)-%s 放假 共%d天\n据上一次休息%d天 %s\n据下一次休息%d天 %s",
		b.Holiday.StartDate.Format("01/02"),
		mondayFirst(b.Holiday.StartDate),
		b.Holiday.EndDate.Format("01/02"),
		b.Holiday.TotalDays,
		len(b.WorkdaysBefore), formatWorkdays(b.WorkdaysBefore),
		len(b.WorkdaysAfter), formatWorkdays(b.WorkdaysAfter))
}

func formatWorkdays(days []MakeupWorkday) string {
	var sb strings.Builder
	for _, d := range days {
		fmt.Fprintf(&sb, " %d/%d", int(d.Date.Month()), d.Date.Day())
		if d.Weekend {
			fmt.Fprintf(&sb, "(串休日，周%d)", mondayFirst(d.Date))
		}
	}
	return sb.String()
}

// mondayFirst numbers weekdays Monday=1 through Sunday=7.
func mondayFirst(date time.Time) int {
	if wd := int(date.Weekday()); wd != 0 {
		return wd
	}
	return 7
}
