package api

import (
	"encoding/json"
	"net/http"
	"time"

	"barberia/internal/availability"
	"barberia/internal/booking"
	"barberia/internal/metrics"
	"barberia/internal/models"
)

// CreateAppointmentRequest is the POST /api/appointments body. SessionID
// is optional: retrying after a conflict reuses the failed session.
type CreateAppointmentRequest struct {
	SessionID    string `json:"session_id,omitempty"`
	Service      int64  `json:"service"`
	Date         string `json:"date"` // "YYYY-MM-DD"
	Time         string `json:"time"` // "HH:MM"
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Description  string `json:"description"`
	PromoCode    string `json:"promo_code_text,omitempty"`
	CaptchaToken string `json:"captchaToken"`
}

// CreateAppointmentResponse reports the submission outcome. On a
// conflict the refreshed slot grid rides along so the widget can redraw
// without another round trip.
type CreateAppointmentResponse struct {
	SessionID   string              `json:"session_id"`
	State       booking.State       `json:"state"`
	Appointment *models.Appointment `json:"appointment,omitempty"`
	Error       string              `json:"error,omitempty"`
	Conflict    bool                `json:"conflict,omitempty"`
	Slots       []availability.Slot `json:"slots,omitempty"`
}

// handleCreateAppointment walks a booking session through the flow and
// submits it to the remote API.
// POST /api/appointments
func (s *HTTPServer) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("create_appointment")

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}
	if !s.requireSnapshot(w) {
		return
	}

	var req CreateAppointmentRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	session := s.sessions.Get(req.SessionID)
	if session == nil {
		session = s.sessions.Create()
	}

	if msg, ok := s.advanceToForm(session, &req); !ok {
		writeJSON(w, http.StatusBadRequest, CreateAppointmentResponse{
			SessionID: session.ID,
			State:     session.GetState(),
			Error:     msg,
		})
		return
	}

	result := s.submitter.Submit(r.Context(), session)
	resp := CreateAppointmentResponse{
		SessionID:   session.ID,
		State:       result.State,
		Appointment: result.Appointment,
		Conflict:    result.Conflict,
	}

	switch {
	case result.State == booking.StateConfirmed:
		s.sessions.Delete(session.ID)
		writeJSON(w, http.StatusCreated, resp)
	case result.Conflict:
		// The snapshot was refetched when the conflict was detected;
		// recompute so the widget can redraw immediately.
		resp.Error = result.Message
		date, err := time.ParseInLocation("2006-01-02", req.Date, s.engine.Location())
		if err == nil {
			resp.Slots = s.engine.DecoratedSlots(s.store.Data(), date, req.Service, s.now())
		}
		writeJSON(w, http.StatusConflict, resp)
	case result.Rejected:
		resp.Error = result.Message
		writeJSON(w, http.StatusUnprocessableEntity, resp)
	default:
		resp.Error = result.Message
		writeJSON(w, http.StatusBadGateway, resp)
	}
}

// advanceToForm validates each choice against the snapshot while moving
// the session through the flow. A session that already failed retries
// from the time-selection step.
func (s *HTTPServer) advanceToForm(session *booking.Session, req *CreateAppointmentRequest) (string, bool) {
	fsm := booking.NewFSM()
	data := s.store.Data()
	now := s.now()

	if session.GetState() == booking.StateFailed {
		if !fsm.Transition(session, booking.StateChoosingTime) {
			return "session cannot be retried", false
		}
	}

	if models.ServiceByID(data.Services, req.Service) == nil {
		return "unknown service", false
	}
	fsm.Transition(session, booking.StateChoosingDate)

	date, err := time.ParseInLocation("2006-01-02", req.Date, s.engine.Location())
	if err != nil {
		return "invalid date format; expected YYYY-MM-DD", false
	}
	if status, _ := s.engine.ClassifyDay(data, date, now); status != availability.DayAvailable {
		return "selected day is not bookable", false
	}
	fsm.Transition(session, booking.StateChoosingTime)

	bookable := false
	for _, slot := range s.engine.Slots(data, date, req.Service, now) {
		if slot == req.Time {
			bookable = true
			break
		}
	}
	if !bookable {
		return "selected time is not available", false
	}
	if availability.InBreak(data.Breaks, req.Time) {
		return "selected time falls in " + availability.BreakName(data.Breaks, req.Time), false
	}
	fsm.Transition(session, booking.StateFillingForm)

	if req.Name == "" || req.Email == "" || req.Phone == "" {
		return "name, email and phone are required", false
	}

	session.Data = booking.FormData{
		ServiceID:    req.Service,
		Date:         req.Date,
		Time:         req.Time,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Description:  req.Description,
		PromoCode:    req.PromoCode,
		CaptchaToken: req.CaptchaToken,
	}
	return "", true
}
