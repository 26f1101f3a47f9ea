// Package festival holds the static table of recurring festivals and merges
// it with the computed solar terms.
package festival

import (
	"time"

	"github.com/username/cn-calendar/internal/lunar"
	"github.com/username/cn-calendar/internal/solarterm"
)

// Kind distinguishes how a festival's date recurs.
type Kind int

const (
	// SolarRecurring festivals fall on a fixed Gregorian month-day.
	SolarRecurring Kind = iota
	// LunarRecurring festivals fall on a fixed lunar month-day.
	LunarRecurring
	// SolarTerm festivals track a named solar term, recomputed per year.
	SolarTerm
)

// Festival is one immutable catalog entry. Month/Day hold the recurring
// month-day for solar and lunar kinds; TermName names the tracked term for
// the SolarTerm kind.
type Festival struct {
	Name     string
	Kind     Kind
	Month    int
	Day      int
	TermName string
}

// Catalog is the static festival table. Declaration order doubles as the
// tie-break order when several festivals start on the same date.
type Catalog struct {
	entries []Festival
}

// NewCatalog returns the built-in catalog of Chinese solar and lunar
// festivals plus the festival-grade solar terms.
func NewCatalog() *Catalog {
	return &Catalog{entries: []Festival{
		{Name: "元旦", Kind: SolarRecurring, Month: 1, Day: 1},
		{Name: "情人节", Kind: SolarRecurring, Month: 2, Day: 14},
		{Name: "妇女节", Kind: SolarRecurring, Month: 3, Day: 8},
		{Name: "植树节", Kind: SolarRecurring, Month: 3, Day: 12},
		{Name: "劳动节", Kind: SolarRecurring, Month: 5, Day: 1},
		{Name: "青年节", Kind: SolarRecurring, Month: 5, Day: 4},
		{Name: "儿童节", Kind: SolarRecurring, Month: 6, Day: 1},
		{Name: "建党节", Kind: SolarRecurring, Month: 7, Day: 1},
		{Name: "建军节", Kind: SolarRecurring, Month: 8, Day: 1},
		{Name: "教师节", Kind: SolarRecurring, Month: 9, Day: 10},
		{Name: "国庆节", Kind: SolarRecurring, Month: 10, Day: 1},
		{Name: "平安夜", Kind: SolarRecurring, Month: 12, Day: 24},
		{Name: "圣诞节", Kind: SolarRecurring, Month: 12, Day: 25},
		{Name: "春节", Kind: LunarRecurring, Month: 1, Day: 1},
		{Name: "元宵节", Kind: LunarRecurring, Month: 1, Day: 15},
		{Name: "龙抬头", Kind: LunarRecurring, Month: 2, Day: 2},
		{Name: "端午节", Kind: LunarRecurring, Month: 5, Day: 5},
		{Name: "七夕", Kind: LunarRecurring, Month: 7, Day: 7},
		{Name: "中元节", Kind: LunarRecurring, Month: 7, Day: 15},
		{Name: "中秋节", Kind: LunarRecurring, Month: 8, Day: 15},
		{Name: "重阳节", Kind: LunarRecurring, Month: 9, Day: 9},
		{Name: "腊八节", Kind: LunarRecurring, Month: 12, Day: 8},
		{Name: "小年", Kind: LunarRecurring, Month: 12, Day: 23},
		{Name: "清明节", Kind: SolarTerm, TermName: "清明"},
		{Name: "冬至", Kind: SolarTerm, TermName: "冬至"},
	}}
}

// Entries returns the catalog in declaration order.
func (c *Catalog) Entries() []Festival {
	entries := make([]Festival, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// FestivalsOn returns every festival falling on the given date, in catalog
// order. Dates outside the lunar table match solar entries only.
func (c *Catalog) FestivalsOn(date time.Time) []Festival {
	ld, lunarErr := lunar.FromSolar(date)

	var matches []Festival
	for _, entry := range c.entries {
		switch entry.Kind {
		case SolarRecurring:
			if int(date.Month()) == entry.Month && date.Day() == entry.Day {
				matches = append(matches, entry)
			}
		case LunarRecurring:
			// Festivals in an intercalary month are observed in the
			// regular month, so leap months never match.
			if lunarErr == nil && !ld.IsLeapMonth &&
				ld.Month == entry.Month && ld.Day == entry.Day {
				matches = append(matches, entry)
			}
		case SolarTerm:
			if term, ok := solarterm.On(date); ok && term.Name == entry.TermName {
				matches = append(matches, entry)
			}
		}
	}

	// 除夕 is the last day of the lunar year, which is month-length
	// dependent; it is the day before 正月初一.
	if lunarErr == nil && ld.Month == 12 && !ld.IsLeapMonth {
		if next, err := lunar.FromSolar(date.AddDate(0, 0, 1)); err == nil &&
			next.Month == 1 && next.Day == 1 && !next.IsLeapMonth {
			matches = append(matches, Festival{Name: "除夕", Kind: LunarRecurring, Month: 12, Day: ld.Day})
		}
	}

	return matches
}
