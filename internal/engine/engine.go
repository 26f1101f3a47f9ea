// Package engine answers the day-level queries: classification under the
// statutory-holiday regime, the per-day detail bundle, and the nearest-event
// searches over holidays, festivals, anniversaries and solar terms.
package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/cn-calendar/internal/anniversary"
	"github.com/username/cn-calendar/internal/festival"
	"github.com/username/cn-calendar/internal/lunar"
	"github.com/username/cn-calendar/internal/schedule"
	"github.com/username/cn-calendar/internal/solarterm"
	"github.com/username/cn-calendar/pkg/dateutil"
)

// Status classifies one calendar day.
type Status int

const (
	StatusWorkday Status = iota
	StatusRestday
	StatusHoliday
)

func (s Status) String() string {
	switch s {
	case StatusWorkday:
		return "工作日"
	case StatusRestday:
		return "休息日"
	case StatusHoliday:
		return "节假日"
	default:
		return "未知"
	}
}

// Classification is the result of classifying a single date. Unverified is
// set when no schedule record exists for the year and the weekday-only rule
// decided the status.
type Classification struct {
	Date       time.Time
	Status     Status
	Name       string
	Suit       string
	Avoid      string
	Unverified bool
}

// Engine wires the schedule cache, the festival catalog and the parsed
// anniversaries into one query surface. Queries read the local store only;
// refreshing the store is the caller's concern.
type Engine struct {
	cache         *schedule.Cache
	catalog       *festival.Catalog
	anniversaries []anniversary.Anniversary
	logger        *zap.Logger
}

func New(cache *schedule.Cache, catalog *festival.Catalog, anniversaries []anniversary.Anniversary, logger *zap.Logger) *Engine {
	return &Engine{
		cache:         cache,
		catalog:       catalog,
		anniversaries: anniversaries,
		logger:        logger,
	}
}

// lookup memoizes year records for the duration of one query, so a 60-day
// scan hits the store at most twice.
type lookup struct {
	cache   *schedule.Cache
	records map[int]*schedule.Record
}

func (e *Engine) newLookup() *lookup {
	return &lookup{cache: e.cache, records: make(map[int]*schedule.Record)}
}

func (l *lookup) record(year int) *schedule.Record {
	if record, seen := l.records[year]; seen {
		return record
	}
	record, err := l.cache.Get(year)
	if err != nil {
		// A broken store degrades to the weekday rule, same as missing.
		record = nil
	}
	l.records[year] = record
	return record
}

func (l *lookup) override(date time.Time) (schedule.DayOverride, bool) {
	record := l.record(date.Year())
	if record == nil {
		return schedule.DayOverride{}, false
	}
	override, ok := record.Overrides[dateutil.Key(date)]
	return override, ok
}

func (l *lookup) classify(date time.Time) Classification {
	date = dateutil.Midnight(date)
	c := Classification{Date: date}

	record := l.record(date.Year())
	if record != nil {
		if override, ok := record.Overrides[dateutil.Key(date)]; ok {
			c.Status = statusOf(override.Type)
			c.Name = override.Name
			c.Suit = override.Suit
			c.Avoid = override.Avoid
			return c
		}
	}

	if dateutil.IsWeekend(date) {
		c.Status = StatusRestday
	} else {
		c.Status = StatusWorkday
	}
	c.Unverified = record == nil
	return c
}

func statusOf(t schedule.OverrideType) Status {
	switch t {
	case schedule.OverrideRestday:
		return StatusRestday
	case schedule.OverrideHoliday:
		return StatusHoliday
	default:
		return StatusWorkday
	}
}

// Classify determines the status of one date. An official override wins;
// otherwise the weekday rule applies, flagged unverified when the year has
// no schedule record at all.
func (e *Engine) Classify(date time.Time) Classification {
	return e.newLookup().classify(date)
}

// StatutoryHoliday is a contiguous run of Holiday overrides sharing a name.
// Derived per query, never stored.
type StatutoryHoliday struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	TotalDays int
}

// NearestStatutoryHoliday scans forward from anchor+minDays to
// anchor+maxDays and returns the first holiday run starting inside the
// window. Runs that began before the window are skipped whole.
func (e *Engine) NearestStatutoryHoliday(anchor time.Time, minDays, maxDays int) (StatutoryHoliday, bool) {
	return e.newLookup().nearestStatutoryHoliday(anchor, minDays, maxDays)
}

func (l *lookup) nearestStatutoryHoliday(anchor time.Time, minDays, maxDays int) (StatutoryHoliday, bool) {
	anchor = dateutil.Midnight(anchor)
	windowStart := anchor.AddDate(0, 0, minDays)

	for off := minDays; off <= maxDays; off++ {
		date := anchor.AddDate(0, 0, off)
		override, ok := l.override(date)
		if !ok || override.Type != schedule.OverrideHoliday {
			continue
		}

		run := l.holidayRun(date, override.Name)
		if run.StartDate.Before(windowStart) {
			// Mid-run entry: the run started before the window, jump past it.
			off = dateutil.DaysBetween(anchor, run.EndDate)
			continue
		}
		return run, true
	}
	return StatutoryHoliday{}, false
}

// holidayRun expands one Holiday-override day into its contiguous
// same-named run.
func (l *lookup) holidayRun(date time.Time, name string) StatutoryHoliday {
	start, end := date, date
	for {
		prev := start.AddDate(0, 0, -1)
		if override, ok := l.override(prev); !ok || override.Type != schedule.OverrideHoliday || override.Name != name {
			break
		}
		start = prev
	}
	for {
		next := end.AddDate(0, 0, 1)
		if override, ok := l.override(next); !ok || override.Type != schedule.OverrideHoliday || override.Name != name {
			break
		}
		end = next
	}
	return StatutoryHoliday{
		Name:      name,
		StartDate: start,
		EndDate:   end,
		TotalDays: dateutil.DaysBetween(start, end) + 1,
	}
}

// EventKind tags a nearest-event candidate. Declaration order is the
// tie-break priority: user anniversaries outrank statutory holidays, which
// outrank catalog festivals.
type EventKind int

const (
	KindAnniversary EventKind = iota
	KindStatutoryHoliday
	KindCatalogFestival
)

func (k EventKind) String() string {
	switch k {
	case KindAnniversary:
		return "anniversary"
	case KindStatutoryHoliday:
		return "statutory_holiday"
	default:
		return "catalog_festival"
	}
}

// NearestEvent is one resolved nearest-event candidate.
type NearestEvent struct {
	Kind     EventKind
	Name     string
	Date     time.Time
	DaysDiff int
	Extra    string
}

// closer is the single place the nearest-event ordering lives: smaller
// daysDiff wins, exact ties fall back to kind priority.
func closer(a, b NearestEvent) bool {
	if a.DaysDiff != b.DaysDiff {
		return a.DaysDiff < b.DaysDiff
	}
	return a.Kind < b.Kind
}

// NearestFestival returns the soonest event within [anchor+minDays,
// anchor+maxDays] across anniversaries, statutory holidays and catalog
// festivals.
func (e *Engine) NearestFestival(anchor time.Time, minDays, maxDays int) (NearestEvent, bool) {
	anchor = dateutil.Midnight(anchor)

	var (
		best  NearestEvent
		found bool
	)
	consider := func(candidate NearestEvent) {
		if !found || closer(candidate, best) {
			best = candidate
			found = true
		}
	}

	floor := anchor.AddDate(0, 0, minDays)
	for _, a := range e.anniversaries {
		date, ok, err := anniversary.NextOccurrence(a, floor)
		if err != nil || !ok {
			continue
		}
		diff := dateutil.DaysBetween(anchor, date)
		if diff > maxDays {
			continue
		}
		consider(NearestEvent{
			Kind:     KindAnniversary,
			Name:     a.Label,
			Date:     date,
			DaysDiff: diff,
		})
	}

	if holiday, ok := e.NearestStatutoryHoliday(anchor, minDays, maxDays); ok {
		consider(NearestEvent{
			Kind:     KindStatutoryHoliday,
			Name:     holiday.Name,
			Date:     holiday.StartDate,
			DaysDiff: dateutil.DaysBetween(anchor, holiday.StartDate),
			Extra:    fmt.Sprintf("%s-%s 共%d天", holiday.StartDate.Format("01/02"), holiday.EndDate.Format("01/02"), holiday.TotalDays),
		})
	}

scan:
	for off := minDays; off <= maxDays; off++ {
		date := anchor.AddDate(0, 0, off)
		for _, f := range e.catalog.FestivalsOn(date) {
			consider(NearestEvent{
				Kind:     KindCatalogFestival,
				Name:     f.Name,
				Date:     date,
				DaysDiff: off,
			})
			break scan
		}
	}

	return best, found
}

// NearestTerm returns the first solar term within [anchor+minDays,
// anchor+maxDays].
func (e *Engine) NearestTerm(anchor time.Time, minDays, maxDays int) (solarterm.Term, int, bool) {
	anchor = dateutil.Midnight(anchor)
	for off := minDays; off <= maxDays; off++ {
		if term, ok := solarterm.On(anchor.AddDate(0, 0, off)); ok {
			return term, off, true
		}
	}
	return solarterm.Term{}, 0, false
}

// FutureAnniversaries resolves the configured anniversaries against anchor
// and returns those within horizonDays, nearest first.
func (e *Engine) FutureAnniversaries(anchor time.Time, horizonDays int) []anniversary.Event {
	return anniversary.Future(e.anniversaries, anchor, horizonDays, e.logger)
}

// DayDetail is the full per-day bundle. Lunar fields stay zero for dates
// outside the lunar table; classification always resolves.
type DayDetail struct {
	Classification
	Lunar         lunar.Date
	LunarText     string
	YearName      string
	Zodiac        string
	Term          string
	Festivals     []string
	Anniversaries []string
}

// DayDetail computes the detail bundle for one date, fresh on every call.
func (e *Engine) DayDetail(date time.Time) DayDetail {
	date = dateutil.Midnight(date)
	detail := DayDetail{Classification: e.Classify(date)}

	if ld, err := lunar.FromSolar(date); err == nil {
		detail.Lunar = ld
		detail.LunarText = ld.String()
		detail.YearName = lunar.YearName(ld.Year)
		detail.Zodiac = lunar.Zodiac(ld.Year)
	} else {
		e.logger.Debug("Date outside lunar table, detail has no lunar fields",
			zap.String("date", dateutil.Key(date)),
			zap.Error(err))
	}

	if term, ok := solarterm.On(date); ok {
		detail.Term = term.Name
	}
	for _, f := range e.catalog.FestivalsOn(date) {
		detail.Festivals = append(detail.Festivals, f.Name)
	}
	for _, event := range anniversary.Future(e.anniversaries, date, 0, e.logger) {
		detail.Anniversaries = append(detail.Anniversaries, event.Anniversary.Label)
	}

	return detail
}
