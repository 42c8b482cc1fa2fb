package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barberia/internal/barberapi"
	"barberia/internal/events"
	"barberia/internal/models"
)

func TestFSM_HappyPath(t *testing.T) {
	fsm := NewFSM()
	session := NewSession()

	steps := []State{
		StateChoosingDate,
		StateChoosingTime,
		StateFillingForm,
		StateSubmitting,
		StateConfirmed,
	}
	for _, step := range steps {
		assert.Truef(t, fsm.Transition(session, step), "transition to %s", step)
	}
	assert.Equal(t, StateConfirmed, session.GetState())
}

func TestFSM_RejectsSkips(t *testing.T) {
	fsm := NewFSM()
	session := NewSession()

	assert.False(t, fsm.Transition(session, StateSubmitting))
	assert.False(t, fsm.Transition(session, StateConfirmed))
	assert.Equal(t, StateChoosingService, session.GetState())
}

func TestFSM_BackAndRetry(t *testing.T) {
	fsm := NewFSM()
	session := NewSession()

	fsm.Transition(session, StateChoosingDate)
	fsm.Transition(session, StateChoosingTime)
	assert.True(t, fsm.Transition(session, StateChoosingDate)) // revise the date

	fsm.Transition(session, StateChoosingTime)
	fsm.Transition(session, StateFillingForm)
	fsm.Transition(session, StateSubmitting)
	fsm.Transition(session, StateFailed)

	// After a conflict the visitor goes back to the refreshed slot grid.
	assert.True(t, fsm.Transition(session, StateChoosingTime))
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(time.Hour)

	session := store.Create()
	require.NotEmpty(t, session.ID)
	assert.Same(t, session, store.Get(session.ID))
	assert.Nil(t, store.Get("missing"))

	store.Delete(session.ID)
	assert.Nil(t, store.Get(session.ID))
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(10 * time.Millisecond)
	session := store.Create()

	session.mu.Lock()
	session.UpdatedAt = time.Now().Add(-time.Minute)
	session.mu.Unlock()

	assert.Nil(t, store.Get(session.ID))
	assert.Equal(t, 1, store.Cleanup())
}

type stubSubmitClient struct {
	err   error
	calls int
}

func (c *stubSubmitClient) CreateAppointment(_ context.Context, req barberapi.AppointmentRequest) (*models.Appointment, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &models.Appointment{ID: 42, Date: req.Date, Time: req.Time, Service: req.Service}, nil
}

func readySession() *Session {
	session := NewSession()
	session.Data = FormData{
		ServiceID: 1,
		Date:      "2025-06-04",
		Time:      "10:00",
		Name:      "Ana López",
		Email:     "ana@example.com",
		Phone:     "5512345678",
	}
	session.SetState(StateFillingForm)
	return session
}

func TestSubmitter_Confirmed(t *testing.T) {
	client := &stubSubmitClient{}
	bus := events.NewBus()
	stale := 0
	bus.Subscribe(events.AppointmentsStale, func(events.Event) { stale++ })

	s := NewSubmitter(client, bus, zerolog.Nop())
	result := s.Submit(context.Background(), readySession())

	assert.Equal(t, StateConfirmed, result.State)
	require.NotNil(t, result.Appointment)
	assert.Equal(t, "10:00:00", result.Appointment.Time) // seconds appended on the wire
	assert.Equal(t, 1, stale)                            // snapshot refetch after create
}

func TestSubmitter_Conflict(t *testing.T) {
	client := &stubSubmitClient{err: &barberapi.SubmitError{
		StatusCode: 400,
		Conflict:   true,
		Message:    "El horario ya fue reservado",
	}}
	bus := events.NewBus()
	stale := 0
	bus.Subscribe(events.AppointmentsStale, func(events.Event) { stale++ })

	s := NewSubmitter(client, bus, zerolog.Nop())
	session := readySession()
	result := s.Submit(context.Background(), session)

	assert.Equal(t, StateFailed, result.State)
	assert.True(t, result.Conflict)
	assert.Equal(t, "El horario ya fue reservado", result.Message)
	assert.Equal(t, 1, stale)
	assert.Equal(t, StateFailed, session.GetState())
}

func TestSubmitter_TransportError(t *testing.T) {
	client := &stubSubmitClient{err: errors.New("connection refused")}
	bus := events.NewBus()
	stale := 0
	bus.Subscribe(events.AppointmentsStale, func(events.Event) { stale++ })

	s := NewSubmitter(client, bus, zerolog.Nop())
	result := s.Submit(context.Background(), readySession())

	assert.Equal(t, StateFailed, result.State)
	assert.False(t, result.Conflict)
	assert.Zero(t, stale)
}

func TestSubmitter_GuardsDoubleSubmission(t *testing.T) {
	client := &stubSubmitClient{}
	s := NewSubmitter(client, events.NewBus(), zerolog.Nop())

	session := readySession()
	session.SetState(StateSubmitting)
	result := s.Submit(context.Background(), session)

	assert.Equal(t, StateSubmitting, result.State)
	assert.Zero(t, client.calls)
}

func TestSubmitter_WrongState(t *testing.T) {
	client := &stubSubmitClient{}
	s := NewSubmitter(client, events.NewBus(), zerolog.Nop())

	session := NewSession() // still choosing a service
	result := s.Submit(context.Background(), session)

	assert.Equal(t, StateChoosingService, result.State)
	assert.Zero(t, client.calls)
}
