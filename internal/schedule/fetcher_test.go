package schedule

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestHTTPFetcher_FetchYear(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("year"); got != "2025" {
			t.Errorf("request year = %q, want 2025", got)
		}
		w.Write([]byte(`{
			"year": 2025,
			"days": [
				{"date": "2025-10-01", "name": "国庆节", "type": 2, "suit": "祭祀", "avoid": "动土"},
				{"date": "2025-09-28", "name": "", "type": 0}
			]
		}`))
	}))
	defer server.Close()

	logger, _ := zap.NewDevelopment()
	fetcher := NewHTTPFetcher(server.URL, 5*time.Second, logger)

	record, err := fetcher.FetchYear(context.Background(), 2025)
	if err != nil {
		t.Fatalf("FetchYear() error = %v", err)
	}

	if record.Year != 2025 {
		t.Errorf("Year = %d, want 2025", record.Year)
	}
	if len(record.Overrides) != 2 {
		t.Fatalf("len(Overrides) = %d, want 2", len(record.Overrides))
	}

	oct1 := record.Overrides["2025-10-01"]
	if oct1.Type != OverrideHoliday || oct1.Name != "国庆节" || oct1.Suit != "祭祀" {
		t.Errorf("override for 2025-10-01 = %+v", oct1)
	}
	if record.Overrides["2025-09-28"].Type != OverrideWorkday {
		t.Errorf("override for 2025-09-28 = %+v, want workday", record.Overrides["2025-09-28"])
	}
}

func TestHTTPFetcher_RejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"Server error", http.StatusInternalServerError, ""},
		{"Not found", http.StatusNotFound, ""},
		{"Malformed JSON", http.StatusOK, `{"year": 2025, "days": [`},
		{"Wrong year", http.StatusOK, `{"year": 2024, "days": []}`},
		{"Bad date", http.StatusOK, `{"year": 2025, "days": [{"date": "not-a-date", "type": 2}]}`},
		{"Date outside year", http.StatusOK, `{"year": 2025, "days": [{"date": "2024-10-01", "type": 2}]}`},
		{"Unknown type", http.StatusOK, `{"year": 2025, "days": [{"date": "2025-10-01", "type": 9}]}`},
		{"Duplicate date", http.StatusOK, `{"year": 2025, "days": [
			{"date": "2025-10-01", "type": 2}, {"date": "2025-10-01", "type": 0}]}`},
	}

	logger, _ := zap.NewDevelopment()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fetcher := NewHTTPFetcher(server.URL, 5*time.Second, logger)
			if _, err := fetcher.FetchYear(context.Background(), 2025); err == nil {
				t.Error("FetchYear() accepted a bad payload, want error")
			}
		})
	}
}

func TestHTTPFetcher_HonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	logger, _ := zap.NewDevelopment()
	fetcher := NewHTTPFetcher(server.URL, 30*time.Second, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := fetcher.FetchYear(ctx, 2025)
	if err == nil {
		t.Fatal("FetchYear() succeeded, want context deadline error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("FetchYear() blocked %v past its context deadline", elapsed)
	}
}
