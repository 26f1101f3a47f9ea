package schedule

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

// stubFetcher serves canned records or errors and counts calls.
type stubFetcher struct {
	records map[int]*Record
	err     error
	calls   int
}

func (f *stubFetcher) FetchYear(_ context.Context, year int) (*Record, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[year]
	if !ok {
		return nil, errors.New("no such year")
	}
	return record.Clone(), nil
}

func testRecord(year int) *Record {
	return &Record{
		Year: year,
		Overrides: map[string]DayOverride{
			"2025-10-01": {Type: OverrideHoliday, Name: "国庆节"},
			"2025-09-28": {Type: OverrideWorkday},
		},
	}
}

func TestCache_RefreshStoresRecord(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{records: map[int]*Record{2025: testRecord(2025)}}
	cache := NewCache(store, fetcher, time.Hour, logger)

	record, err := cache.Refresh(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if record.Year != 2025 || len(record.Overrides) != 2 {
		t.Errorf("Refresh() = %+v, want 2 overrides for 2025", record)
	}

	stored, err := store.Get(2025)
	if err != nil {
		t.Fatalf("Get() after refresh error = %v", err)
	}
	if !reflect.DeepEqual(stored.Overrides, record.Overrides) {
		t.Error("stored overrides differ from refreshed record")
	}
}

func TestCache_RefreshIdempotent(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{records: map[int]*Record{2025: testRecord(2025)}}
	cache := NewCache(store, fetcher, time.Hour, logger)

	// Pin the clock: with an unchanged payload two refreshes must leave the
	// stored record identical, timestamp included.
	fixed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return fixed }

	if _, err := cache.Refresh(context.Background(), 2025); err != nil {
		t.Fatalf("first Refresh() error = %v", err)
	}
	first, _ := store.Get(2025)

	if _, err := cache.Refresh(context.Background(), 2025); err != nil {
		t.Fatalf("second Refresh() error = %v", err)
	}
	second, _ := store.Get(2025)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("stored record changed across idempotent refresh:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestCache_RefreshFailureLeavesRecordUntouched(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{records: map[int]*Record{2025: testRecord(2025)}}
	cache := NewCache(store, fetcher, time.Hour, logger)

	if _, err := cache.Refresh(context.Background(), 2025); err != nil {
		t.Fatalf("seed Refresh() error = %v", err)
	}
	before, _ := store.Get(2025)

	fetcher.err = errors.New("connection refused")
	_, err := cache.Refresh(context.Background(), 2025)

	var refreshErr *RefreshError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("Refresh() error = %v, want *RefreshError", err)
	}
	if refreshErr.Year != 2025 {
		t.Errorf("RefreshError.Year = %d, want 2025", refreshErr.Year)
	}

	after, _ := store.Get(2025)
	if !reflect.DeepEqual(before, after) {
		t.Error("failed refresh modified the stored record")
	}
}

func TestCache_EnsureFreshRecordSkipsFetch(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{records: map[int]*Record{2025: testRecord(2025)}}
	cache := NewCache(store, fetcher, time.Hour, logger)

	if _, err := cache.Refresh(context.Background(), 2025); err != nil {
		t.Fatalf("seed Refresh() error = %v", err)
	}
	fetchesAfterSeed := fetcher.calls

	if _, err := cache.Ensure(context.Background(), 2025); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if fetcher.calls != fetchesAfterSeed {
		t.Errorf("Ensure() fetched %d extra times for a fresh record", fetcher.calls-fetchesAfterSeed)
	}
}

func TestCache_EnsureRefreshesStaleCurrentYear(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{records: map[int]*Record{2025: testRecord(2025)}}
	cache := NewCache(store, fetcher, time.Hour, logger)

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	seed := testRecord(2025)
	seed.FetchedAt = now.Add(-2 * time.Hour)
	if err := store.Put(seed); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, err := cache.Ensure(context.Background(), 2025); err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("Ensure() fetch calls = %d, want 1 for stale current-year record", fetcher.calls)
	}
}

func TestCache_EnsurePastYearNeverStale(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{}
	cache := NewCache(store, fetcher, time.Hour, logger)

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	old := &Record{
		Year:      2023,
		Overrides: map[string]DayOverride{"2023-10-01": {Type: OverrideHoliday, Name: "国庆节"}},
		FetchedAt: now.AddDate(-1, 0, 0),
	}
	if err := store.Put(old); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	record, err := cache.Ensure(context.Background(), 2023)
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if record.Year != 2023 {
		t.Errorf("Ensure() year = %d, want 2023", record.Year)
	}
	if fetcher.calls != 0 {
		t.Errorf("Ensure() fetched a past-year record %d times, want 0", fetcher.calls)
	}
}

func TestCache_EnsureFallsBackToStaleOnFailure(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{err: errors.New("dns failure")}
	cache := NewCache(store, fetcher, time.Hour, logger)

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	stale := testRecord(2025)
	stale.FetchedAt = now.Add(-48 * time.Hour)
	if err := store.Put(stale); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	record, err := cache.Ensure(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Ensure() error = %v, want stale fallback", err)
	}
	if len(record.Overrides) != 2 {
		t.Errorf("Ensure() returned %d overrides, want the stale record's 2", len(record.Overrides))
	}
}

func TestCache_EnsureMissingAndUnreachable(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	store := NewMemoryStore()
	fetcher := &stubFetcher{err: errors.New("offline")}
	cache := NewCache(store, fetcher, time.Hour, logger)

	_, err := cache.Ensure(context.Background(), 2030)
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Ensure() error = %v, want ErrMissing", err)
	}
}
