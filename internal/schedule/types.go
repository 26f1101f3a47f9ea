// Package schedule stores the officially published per-year holiday and
// workday adjustment records and keeps them fresh from a remote source.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// OverrideType classifies a date the official schedule adjusts. The numeric
// values match the status codes of the remote source (0=工作日, 1=休息日, 2=节假日).
type OverrideType int

const (
	OverrideWorkday OverrideType = iota
	OverrideRestday
	OverrideHoliday
)

func (t OverrideType) String() string {
	switch t {
	case OverrideWorkday:
		return "工作日"
	case OverrideRestday:
		return "休息日"
	case OverrideHoliday:
		return "节假日"
	default:
		return "未知"
	}
}

// DayOverride is one adjusted date inside a year record. Suit and Avoid carry
// the almanac advice (宜/忌) when the remote source provides it.
type DayOverride struct {
	Type  OverrideType `json:"type"`
	Name  string       `json:"name,omitempty"`
	Suit  string       `json:"suit,omitempty"`
	Avoid string       `json:"avoid,omitempty"`
}

// Record is the full adjustment schedule of one year. Overrides is keyed by
// YYYY-MM-DD. Records are replaced whole on refresh, never patched.
type Record struct {
	Year      int                    `json:"year"`
	Overrides map[string]DayOverride `json:"overrides"`
	FetchedAt time.Time              `json:"fetched_at"`
}

// Clone returns a deep copy so callers can never mutate a stored record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	overrides := make(map[string]DayOverride, len(r.Overrides))
	for key, override := range r.Overrides {
		overrides[key] = override
	}
	return &Record{Year: r.Year, Overrides: overrides, FetchedAt: r.FetchedAt}
}

// ErrMissing signals that no record is cached for a year. It is a normal
// sentinel, not a failure: classification falls back to the weekday rule.
var ErrMissing = errors.New("no schedule record cached for year")

// RefreshError reports a failed refresh. The previously cached record, if
// any, is guaranteed untouched.
type RefreshError struct {
	Year int
	Err  error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh schedule for %d: %v", e.Year, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Store is the persistence contract: local lookups and whole-record replace.
// Get never touches the network.
type Store interface {
	// Get returns the cached record for a year, or ErrMissing.
	Get(year int) (*Record, error)

	// Put atomically replaces the record for record.Year.
	Put(record *Record) error
}

// Fetcher retrieves the authoritative schedule for one year from a remote
// source. Implementations must honor ctx cancellation and fail fast.
type Fetcher interface {
	FetchYear(ctx context.Context, year int) (*Record, error)
}
