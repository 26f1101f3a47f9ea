package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/username/cn-calendar/internal/engine"
	"github.com/username/cn-calendar/pkg/dateutil"
)

const (
	defaultMinDays = 0
	defaultMaxDays = 60
)

type classificationDTO struct {
	Date       string `json:"date"`
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Name       string `json:"name,omitempty"`
	Suit       string `json:"suit,omitempty"`
	Avoid      string `json:"avoid,omitempty"`
	Unverified bool   `json:"unverified"`
}

type lunarDTO struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	Leap     bool   `json:"leap"`
	Day      int    `json:"day"`
	Text     string `json:"text"`
	YearName string `json:"year_name"`
	Zodiac   string `json:"zodiac"`
}

type dayDetailDTO struct {
	classificationDTO
	Lunar         *lunarDTO `json:"lunar,omitempty"`
	Term          string    `json:"term,omitempty"`
	Festivals     []string  `json:"festivals,omitempty"`
	Anniversaries []string  `json:"anniversaries,omitempty"`
}

type holidayDTO struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	TotalDays int    `json:"total_days"`
}

type makeupDTO struct {
	Date    string `json:"date"`
	Weekend bool   `json:"weekend"`
}

type bundleDTO struct {
	Holiday        holidayDTO  `json:"holiday"`
	DaysDiff       int         `json:"days_diff"`
	WorkdaysBefore []makeupDTO `json:"workdays_before,omitempty"`
	WorkdaysAfter  []makeupDTO `json:"workdays_after,omitempty"`
	Summary        string      `json:"summary"`
}

type nearestEventDTO struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	DaysDiff int    `json:"days_diff"`
	Extra    string `json:"extra,omitempty"`
}

type termDTO struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	DaysDiff int    `json:"days_diff"`
}

func classificationToDTO(c engine.Classification) classificationDTO {
	return classificationDTO{
		Date:       dateutil.Key(c.Date),
		Status:     c.Status.String(),
		StatusCode: int(c.Status),
		Name:       c.Name,
		Suit:       c.Suit,
		Avoid:      c.Avoid,
		Unverified: c.Unverified,
	}
}

func detailToDTO(d engine.DayDetail) dayDetailDTO {
	dto := dayDetailDTO{
		classificationDTO: classificationToDTO(d.Classification),
		Term:              d.Term,
		Festivals:         d.Festivals,
		Anniversaries:     d.Anniversaries,
	}
	if d.LunarText != "" {
		dto.Lunar = &lunarDTO{
			Year:     d.Lunar.Year,
			Month:    d.Lunar.Month,
			Leap:     d.Lunar.IsLeapMonth,
			Day:      d.Lunar.Day,
			Text:     d.LunarText,
			YearName: d.YearName,
			Zodiac:   d.Zodiac,
		}
	}
	return dto
}

func holidayToDTO(h engine.StatutoryHoliday) holidayDTO {
	return holidayDTO{
		Name:      h.Name,
		StartDate: dateutil.Key(h.StartDate),
		EndDate:   dateutil.Key(h.EndDate),
		TotalDays: h.TotalDays,
	}
}

// pathDate parses the {date} path parameter.
func pathDate(r *http.Request) (time.Time, error) {
	return dateutil.ParseDate(chi.URLParam(r, "date"))
}

// windowParams reads anchor/min/max query parameters with defaults. The
// anchor defaults to today in Beijing time.
func windowParams(r *http.Request) (anchor time.Time, minDays, maxDays int, err error) {
	anchor = dateutil.Today()
	minDays, maxDays = defaultMinDays, defaultMaxDays

	q := r.URL.Query()
	if raw := q.Get("anchor"); raw != "" {
		if anchor, err = dateutil.ParseDate(raw); err != nil {
			return anchor, 0, 0, fmt.Errorf("invalid anchor date %q", raw)
		}
	}
	if raw := q.Get("min"); raw != "" {
		if minDays, err = strconv.Atoi(raw); err != nil {
			return anchor, 0, 0, fmt.Errorf("invalid min %q", raw)
		}
	}
	if raw := q.Get("max"); raw != "" {
		if maxDays, err = strconv.Atoi(raw); err != nil {
			return anchor, 0, 0, fmt.Errorf("invalid max %q", raw)
		}
	}
	if minDays < 0 || maxDays < minDays {
		return anchor, 0, 0, fmt.Errorf("window [%d, %d] is not valid", minDays, maxDays)
	}
	return anchor, minDays, maxDays, nil
}

// handleToday handles GET /api/v1/day/today
func (s *Server) handleToday(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, detailToDTO(s.engine.DayDetail(dateutil.Today())))
}

// handleDayDetail handles GET /api/v1/day/{date}
func (s *Server) handleDayDetail(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		WriteBadRequest(w, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	WriteSuccess(w, detailToDTO(s.engine.DayDetail(date)))
}

// handleClassify handles GET /api/v1/classify/{date}
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		WriteBadRequest(w, "Invalid date format. Use YYYY-MM-DD")
		return
	}
	WriteSuccess(w, classificationToDTO(s.engine.Classify(date)))
}

// handleNearestHoliday handles GET /api/v1/nearest/holiday
func (s *Server) handleNearestHoliday(w http.ResponseWriter, r *http.Request) {
	anchor, minDays, maxDays, err := windowParams(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	bundle, ok := s.engine.HolidayBundle(anchor, minDays, maxDays)
	if !ok {
		WriteNotFound(w, "No statutory holiday in the window")
		return
	}

	dto := bundleDTO{
		Holiday:  holidayToDTO(bundle.Holiday),
		DaysDiff: bundle.DaysDiff,
		Summary:  bundle.Summary(),
	}
	for _, d := range bundle.WorkdaysBefore {
		dto.WorkdaysBefore = append(dto.WorkdaysBefore, makeupDTO{Date: dateutil.Key(d.Date), Weekend: d.Weekend})
	}
	for _, d := range bundle.WorkdaysAfter {
		dto.WorkdaysAfter = append(dto.WorkdaysAfter, makeupDTO{Date: dateutil.Key(d.Date), Weekend: d.Weekend})
	}
	WriteSuccess(w, dto)
}

// handleNearestFestival handles GET /api/v1/nearest/festival
func (s *Server) handleNearestFestival(w http.ResponseWriter, r *http.Request) {
	anchor, minDays, maxDays, err := windowParams(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	event, ok := s.engine.NearestFestival(anchor, minDays, maxDays)
	if !ok {
		WriteNotFound(w, "No festival in the window")
		return
	}
	WriteSuccess(w, nearestEventDTO{
		Kind:     event.Kind.String(),
		Name:     event.Name,
		Date:     dateutil.Key(event.Date),
		DaysDiff: event.DaysDiff,
		Extra:    event.Extra,
	})
}

// handleNearestTerm handles GET /api/v1/nearest/term
func (s *Server) handleNearestTerm(w http.ResponseWriter, r *http.Request) {
	anchor, minDays, maxDays, err := windowParams(r)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	term, diff, ok := s.engine.NearestTerm(anchor, minDays, maxDays)
	if !ok {
		WriteNotFound(w, "No solar term in the window")
		return
	}
	WriteSuccess(w, termDTO{Name: term.Name, Date: dateutil.Key(term.Date), DaysDiff: diff})
}

type anniversaryEventDTO struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Lunar    bool   `json:"lunar"`
	Date     string `json:"date"`
	DaysDiff int    `json:"days_diff"`
}

// handleAnniversaries handles GET /api/v1/anniversaries
func (s *Server) handleAnniversaries(w http.ResponseWriter, r *http.Request) {
	anchor := dateutil.Today()
	horizon := 365

	q := r.URL.Query()
	if raw := q.Get("anchor"); raw != "" {
		var err error
		if anchor, err = dateutil.ParseDate(raw); err != nil {
			WriteBadRequest(w, fmt.Sprintf("invalid anchor date %q", raw))
			return
		}
	}
	if raw := q.Get("days"); raw != "" {
		var err error
		if horizon, err = strconv.Atoi(raw); err != nil || horizon < 0 {
			WriteBadRequest(w, fmt.Sprintf("invalid days %q", raw))
			return
		}
	}

	events := s.engine.FutureAnniversaries(anchor, horizon)
	dtos := make([]anniversaryEventDTO, 0, len(events))
	for _, event := range events {
		dtos = append(dtos, anniversaryEventDTO{
			Key:      event.Anniversary.Key,
			Label:    event.Anniversary.Label,
			Lunar:    event.Anniversary.Lunar,
			Date:     dateutil.Key(event.Date),
			DaysDiff: event.DaysDiff,
		})
	}
	WriteSuccess(w, dtos)
}

// handleRefresh handles POST /api/v1/refresh/{year}
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		WriteBadRequest(w, "Invalid year")
		return
	}

	record, err := s.cache.Refresh(r.Context(), year)
	if err != nil {
		s.logger.Warn("Refresh via API failed",
			zap.Int("year", year),
			zap.Error(err))
		WriteBadGateway(w, fmt.Sprintf("Refresh for %d failed", year))
		return
	}

	WriteSuccess(w, map[string]interface{}{
		"year":       record.Year,
		"days":       len(record.Overrides),
		"fetched_at": record.FetchedAt.Format(time.RFC3339),
	})
}
