package schedule

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	store, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "schedule.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_PutGet(t *testing.T) {
	store := openTestStore(t)

	record := &Record{
		Year: 2025,
		Overrides: map[string]DayOverride{
			"2025-10-01": {Type: OverrideHoliday, Name: "国庆节", Suit: "出行", Avoid: "开市"},
			"2025-09-28": {Type: OverrideWorkday},
		},
		FetchedAt: time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
	}
	if err := store.Put(record); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get(2025)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !reflect.DeepEqual(got, record) {
		t.Errorf("Get() = %+v, want %+v", got, record)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get(2031)
	if !errors.Is(err, ErrMissing) {
		t.Errorf("Get(2031) error = %v, want ErrMissing", err)
	}
}

func TestSQLiteStore_PutReplacesWholeRecord(t *testing.T) {
	store := openTestStore(t)

	first := &Record{
		Year: 2025,
		Overrides: map[string]DayOverride{
			"2025-05-01": {Type: OverrideHoliday, Name: "劳动节"},
			"2025-05-02": {Type: OverrideHoliday, Name: "劳动节"},
		},
		FetchedAt: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Put(first); err != nil {
		t.Fatalf("Put(first) error = %v", err)
	}

	second := &Record{
		Year: 2025,
		Overrides: map[string]DayOverride{
			"2025-10-01": {Type: OverrideHoliday, Name: "国庆节"},
		},
		FetchedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Put(second); err != nil {
		t.Fatalf("Put(second) error = %v", err)
	}

	got, err := store.Get(2025)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.Overrides) != 1 {
		t.Errorf("replace left %d overrides, want 1 (whole-record swap)", len(got.Overrides))
	}
	if _, leaked := got.Overrides["2025-05-01"]; leaked {
		t.Error("old override survived a whole-record replace")
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := filepath.Join(t.TempDir(), "schedule.db")

	store, err := OpenSQLiteStore(path, logger)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	record := &Record{
		Year:      2025,
		Overrides: map[string]DayOverride{"2025-10-01": {Type: OverrideHoliday, Name: "国庆节"}},
		FetchedAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Put(record); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	store.Close()

	reopened, err := OpenSQLiteStore(path, logger)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(2025)
	if err != nil {
		t.Fatalf("Get() after reopen error = %v", err)
	}
	if !reflect.DeepEqual(got, record) {
		t.Errorf("record did not survive reopen: %+v", got)
	}

	years, err := reopened.Years()
	if err != nil {
		t.Fatalf("Years() error = %v", err)
	}
	if len(years) != 1 || years[0] != 2025 {
		t.Errorf("Years() = %v, want [2025]", years)
	}
}
