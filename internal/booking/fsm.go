// Package booking models the widget's booking flow as an explicit
// session state machine instead of ambient UI state.
package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// State represents the current step of a booking session.
type State string

const (
	StateChoosingService State = "choosing_service"
	StateChoosingDate    State = "choosing_date"
	StateChoosingTime    State = "choosing_time"
	StateFillingForm     State = "filling_form"
	StateSubmitting      State = "submitting"
	StateConfirmed       State = "confirmed"
	StateFailed          State = "failed"
)

// FormData holds what the visitor entered during the flow.
type FormData struct {
	ServiceID    int64
	Date         string // "YYYY-MM-DD"
	Time         string // "HH:MM"
	Name         string
	Email        string
	Phone        string
	Description  string
	PromoCode    string
	CaptchaToken string
}

// Session is one visitor's booking dialog.
type Session struct {
	ID        string
	State     State
	Data      FormData
	Message   string // user-facing outcome message for Confirmed/Failed
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// NewSession creates a session at the start of the flow.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		State:     StateChoosingService,
		StartedAt: now,
		UpdatedAt: now,
	}
}

// SetState updates the session state.
func (s *Session) SetState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.State = state
	s.UpdatedAt = time.Now()
}

// GetState returns the current state.
func (s *Session) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.State
}

// IsExpired checks if the session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// FSM manages the allowed transitions of the booking flow.
type FSM struct {
	transitions map[State][]State
}

// NewFSM creates the booking flow machine. Forward transitions follow
// the widget's steps; backward ones let the visitor revise a choice.
func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateChoosingService: {StateChoosingDate},
			StateChoosingDate:    {StateChoosingTime, StateChoosingService},
			StateChoosingTime:    {StateFillingForm, StateChoosingDate},
			StateFillingForm:     {StateSubmitting, StateChoosingTime},
			StateSubmitting:      {StateConfirmed, StateFailed},
			// After a conflict the slot grid has changed; back to picking a time.
			StateFailed:    {StateChoosingTime, StateChoosingService},
			StateConfirmed: {StateChoosingService},
		},
	}
}

// CanTransition checks if a transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition updates the session state if the transition is allowed.
func (f *FSM) Transition(session *Session, to State) bool {
	if f.CanTransition(session.GetState(), to) {
		session.SetState(to)
		return true
	}
	return false
}

// SessionStore manages active booking sessions.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create starts a new session and registers it.
func (ss *SessionStore) Create() *Session {
	session := NewSession()
	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()
	return session
}

// Get returns a session by ID, nil when absent or expired.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	session := ss.sessions[id]
	ss.mu.RUnlock()

	if session == nil || session.IsExpired(ss.timeout) {
		return nil
	}
	return session
}

// Delete removes a session.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	delete(ss.sessions, id)
	ss.mu.Unlock()
}

// Cleanup removes expired sessions and returns how many were dropped.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	removed := 0
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			removed++
		}
	}
	return removed
}
