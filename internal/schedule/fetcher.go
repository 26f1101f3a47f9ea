package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/username/cn-calendar/pkg/dateutil"
	"go.uber.org/zap"
)

const defaultFetchTimeout = 10 * time.Second

// yearPayload is the remote source's response for one year. The source is
// untrusted input: everything is validated before any record is built.
type yearPayload struct {
	Year int `json:"year"`
	Days []struct {
		Date  string `json:"date"`
		Name  string `json:"name"`
		Type  int    `json:"type"`
		Suit  string `json:"suit"`
		Avoid string `json:"avoid"`
	} `json:"days"`
}

// HTTPFetcher fetches year schedules over HTTP(S).
type HTTPFetcher struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPFetcher creates a fetcher for the given source URL. A zero timeout
// falls back to 10s; refresh must fail fast rather than hang.
func NewHTTPFetcher(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if timeout == 0 {
		timeout = defaultFetchTimeout
	}
	return &HTTPFetcher{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchYear retrieves and validates the schedule for one year. Any failure
// leaves nothing written anywhere; the caller decides how to fall back.
func (f *HTTPFetcher) FetchYear(ctx context.Context, year int) (*Record, error) {
	fetchURL, err := f.buildURL(year)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Fetching schedule",
		zap.String("url", fetchURL),
		zap.Int("year", year))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("schedule source returned status %d", resp.StatusCode)
	}

	var payload yearPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse schedule response: %w", err)
	}

	record, err := recordFromPayload(year, &payload)
	if err != nil {
		return nil, err
	}

	f.logger.Info("Schedule fetched",
		zap.Int("year", year),
		zap.Int("overrides", len(record.Overrides)))

	return record, nil
}

func (f *HTTPFetcher) buildURL(year int) (string, error) {
	parsed, err := url.Parse(f.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid source URL: %w", err)
	}
	query := parsed.Query()
	query.Set("year", strconv.Itoa(year))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// recordFromPayload validates the payload and builds a Record. Validate then
// swap: a payload with any bad entry is rejected whole so a partial response
// can never replace a good cached record.
func recordFromPayload(year int, payload *yearPayload) (*Record, error) {
	if payload.Year != year {
		return nil, fmt.Errorf("schedule payload is for year %d, requested %d", payload.Year, year)
	}

	overrides := make(map[string]DayOverride, len(payload.Days))
	for _, day := range payload.Days {
		date, err := dateutil.ParseDate(day.Date)
		if err != nil {
			return nil, fmt.Errorf("schedule payload: %w", err)
		}
		if date.Year() != year {
			return nil, fmt.Errorf("schedule payload: date %s outside year %d", day.Date, year)
		}
		if day.Type < int(OverrideWorkday) || day.Type > int(OverrideHoliday) {
			return nil, fmt.Errorf("schedule payload: unknown override type %d for %s", day.Type, day.Date)
		}

		key := dateutil.Key(date)
		if _, dup := overrides[key]; dup {
			return nil, fmt.Errorf("schedule payload: duplicate date %s", key)
		}
		overrides[key] = DayOverride{
			Type:  OverrideType(day.Type),
			Name:  day.Name,
			Suit:  day.Suit,
			Avoid: day.Avoid,
		}
	}

	return &Record{Year: year, Overrides: overrides}, nil
}
