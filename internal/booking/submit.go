package booking

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"barberia/internal/barberapi"
	"barberia/internal/events"
	"barberia/internal/metrics"
	"barberia/internal/models"
)

// SubmitClient forwards a booking to the remote API.
type SubmitClient interface {
	CreateAppointment(ctx context.Context, req barberapi.AppointmentRequest) (*models.Appointment, error)
}

// Result is the outcome of a submission attempt.
type Result struct {
	State       State
	Appointment *models.Appointment
	Message     string
	// Conflict means the slot was taken while the visitor decided. The
	// appointment snapshot has been flagged stale; the widget should show
	// the refreshed grid rather than an error page.
	Conflict bool
	// Rejected means the remote API refused the form (promo code, field
	// validation) without a slot conflict.
	Rejected bool
}

// Submitter drives sessions through Submitting into Confirmed or Failed.
// The remote API is the final arbiter of conflicts; submission here is
// optimistic.
type Submitter struct {
	fsm    *FSM
	client SubmitClient
	bus    *events.Bus
	logger zerolog.Logger
}

// NewSubmitter creates a submitter publishing staleness events on bus.
func NewSubmitter(client SubmitClient, bus *events.Bus, logger zerolog.Logger) *Submitter {
	return &Submitter{
		fsm:    NewFSM(),
		client: client,
		bus:    bus,
		logger: logger,
	}
}

// Submit sends the session's booking to the remote API. The session must
// be in FillingForm; a session already Submitting is rejected, which is
// the only double-submission guard.
func (s *Submitter) Submit(ctx context.Context, session *Session) Result {
	if session.GetState() == StateSubmitting {
		return Result{State: StateSubmitting, Message: "submission already in progress"}
	}
	if !s.fsm.Transition(session, StateSubmitting) {
		return Result{State: session.GetState(), Message: "session is not ready to submit"}
	}

	data := session.Data
	req := barberapi.AppointmentRequest{
		Date:         data.Date,
		Time:         data.Time + ":00",
		Name:         data.Name,
		Email:        data.Email,
		Phone:        data.Phone,
		Description:  data.Description,
		Service:      data.ServiceID,
		CaptchaToken: data.CaptchaToken,
		PromoCode:    data.PromoCode,
	}

	created, err := s.client.CreateAppointment(ctx, req)
	if err == nil {
		// The remote schedule changed; refetch so the next visitor sees it.
		s.bus.Publish(events.Event{Type: events.AppointmentsStale})
		metrics.IncSubmission("created")
		s.fsm.Transition(session, StateConfirmed)
		session.Message = "appointment confirmed"
		return Result{State: StateConfirmed, Appointment: created, Message: session.Message}
	}

	s.fsm.Transition(session, StateFailed)

	var submitErr *barberapi.SubmitError
	if errors.As(err, &submitErr) {
		if submitErr.Conflict {
			s.bus.Publish(events.Event{Type: events.AppointmentsStale})
			metrics.IncSubmission("conflict")
			s.logger.Info().Str("date", data.Date).Str("time", data.Time).Msg("slot conflict on submit")
			session.Message = submitErr.Message
			return Result{State: StateFailed, Message: submitErr.Message, Conflict: true}
		}
		metrics.IncSubmission("rejected")
		session.Message = submitErr.Message
		return Result{State: StateFailed, Message: submitErr.Message, Rejected: true}
	}

	metrics.IncSubmission("error")
	s.logger.Error().Err(err).Msg("appointment submission failed")
	session.Message = "could not reach the booking service"
	return Result{State: StateFailed, Message: session.Message}
}
