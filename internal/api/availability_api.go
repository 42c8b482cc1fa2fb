package api

import (
	"net/http"
	"strconv"
	"time"

	"barberia/internal/availability"
	"barberia/internal/events"
	"barberia/internal/export"
	"barberia/internal/metrics"
	"barberia/internal/models"
)

// ServiceView is a catalog entry with a display-ready duration.
type ServiceView struct {
	models.Service
	DurationDisplay string `json:"duration_display"`
}

// DayView classifies one calendar day for the month grid.
type DayView struct {
	Date    string                 `json:"date"`
	Status  availability.DayStatus `json:"status"`
	Holiday string                 `json:"holiday,omitempty"`
}

// MonthResponse is the response for GET /api/month.
type MonthResponse struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Days  []DayView `json:"days"`
}

// SlotsResponse is the response for GET /api/slots.
type SlotsResponse struct {
	Date      string                 `json:"date"`
	DayStatus availability.DayStatus `json:"day_status"`
	Service   *ServiceView           `json:"service,omitempty"`
	Slots     []availability.Slot    `json:"slots"`
}

// handleServices returns the service catalog.
// GET /api/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if !s.requireSnapshot(w) {
		return
	}

	data := s.store.Data()
	views := make([]ServiceView, 0, len(data.Services))
	for _, svc := range data.Services {
		views = append(views, ServiceView{
			Service:         svc,
			DurationDisplay: availability.FormatDuration(svc.Duration),
		})
	}
	writeJSON(w, http.StatusOK, views)
}

// handleMonth classifies every day of a month for the calendar grid.
// GET /api/month?year=2025&month=6
func (s *HTTPServer) handleMonth(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("month")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if !s.requireSnapshot(w) {
		return
	}

	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 2000 || year > 2200 {
		writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "invalid month; expected 1-12")
		return
	}

	// Holidays are fetched per year; navigating to another year triggers
	// a refetch before classification.
	s.bus.Publish(events.Event{Type: events.YearChanged, Year: year})

	data := s.store.Data()
	now := s.now()
	loc := s.engine.Location()

	days := make([]DayView, 0, 31)
	for date := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc); int(date.Month()) == month; date = date.AddDate(0, 0, 1) {
		status, holiday := s.engine.ClassifyDay(data, date, now)
		days = append(days, DayView{
			Date:    availability.DateKey(date),
			Status:  status,
			Holiday: holiday,
		})
	}

	writeJSON(w, http.StatusOK, MonthResponse{Year: year, Month: month, Days: days})
}

// handleSlots returns the bookable start times for a date and service.
// GET /api/slots?date=2025-06-04&service=1
func (s *HTTPServer) handleSlots(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("slots")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if !s.requireSnapshot(w) {
		return
	}

	date, ok := parseDate(w, r.URL.Query().Get("date"), s.engine.Location())
	if !ok {
		return
	}
	serviceID, err := strconv.ParseInt(r.URL.Query().Get("service"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid service id")
		return
	}

	data := s.store.Data()
	svc := models.ServiceByID(data.Services, serviceID)
	if svc == nil {
		writeError(w, http.StatusNotFound, "unknown service")
		return
	}

	now := s.now()
	status, _ := s.engine.ClassifyDay(data, date, now)
	resp := SlotsResponse{
		Date:      availability.DateKey(date),
		DayStatus: status,
		Service: &ServiceView{
			Service:         *svc,
			DurationDisplay: availability.FormatDuration(svc.Duration),
		},
		Slots: []availability.Slot{},
	}

	// Past, holiday and blocked days are vetoed at the day level; the
	// slot grid is only computed for selectable days.
	if status == availability.DayAvailable {
		metrics.IncSlotComputation()
		if slots := s.engine.DecoratedSlots(data, date, serviceID, now); slots != nil {
			resp.Slots = slots
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleExport streams the day-schedule workbook.
// GET /api/export/schedule?date=2025-06-04
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	if !s.requireSnapshot(w) {
		return
	}

	date, ok := parseDate(w, r.URL.Query().Get("date"), s.engine.Location())
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(date)+`"`)
	if err := s.report.Write(w, s.store.Data(), date, s.now()); err != nil {
		s.logger.Error().Err(err).Msg("schedule export failed")
	}
}

func parseDate(w http.ResponseWriter, raw string, loc *time.Location) (time.Time, bool) {
	date, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}
