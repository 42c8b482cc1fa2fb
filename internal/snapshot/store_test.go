package snapshot

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barberia/internal/events"
	"barberia/internal/models"
)

type stubFetcher struct {
	mu sync.Mutex

	services []models.Service
	appts    []models.Appointment
	blocked  []models.BlockedDate
	breaks   []models.Break

	coreErr    error
	blockedErr error
	breaksErr  error

	scheduleCalls     int
	blockedDatesCalls int
}

func (f *stubFetcher) Services(context.Context) ([]models.Service, error) {
	return f.services, f.coreErr
}

func (f *stubFetcher) Weekdays(context.Context) ([]models.Weekday, error) {
	return []models.Weekday{{ID: 1, Status: true}}, f.coreErr
}

func (f *stubFetcher) WorkingHours(context.Context) ([]models.WorkingHours, error) {
	return []models.WorkingHours{{Day: 1, StartTime: "09:00:00", EndTime: "17:00:00"}}, f.coreErr
}

func (f *stubFetcher) Schedule(context.Context) ([]models.Appointment, error) {
	f.mu.Lock()
	f.scheduleCalls++
	f.mu.Unlock()
	return f.appts, f.coreErr
}

func (f *stubFetcher) BlockedDates(_ context.Context, year int) ([]models.BlockedDate, error) {
	f.mu.Lock()
	f.blockedDatesCalls++
	f.mu.Unlock()
	return f.blocked, f.blockedErr
}

func (f *stubFetcher) Breaks(context.Context) ([]models.Break, error) {
	return f.breaks, f.breaksErr
}

func newTestStore(f *stubFetcher) *Store {
	return NewStore(f, zerolog.Nop())
}

func TestStore_Refresh(t *testing.T) {
	f := &stubFetcher{
		services: []models.Service{{ID: 1, Name: "Corte clásico", Duration: "00:30:00"}},
		appts:    []models.Appointment{{ID: 1, Date: "2025-06-04", Time: "09:00:00", Service: 1}},
		blocked:  []models.BlockedDate{{Date: "2025-12-25", Name: "Navidad"}},
	}
	s := newTestStore(f)

	assert.False(t, s.Ready())
	require.NoError(t, s.Refresh(context.Background(), 2025))
	assert.True(t, s.Ready())

	data := s.Data()
	assert.Len(t, data.Services, 1)
	assert.Len(t, data.Appointments, 1)
	assert.Len(t, data.BlockedDates, 1)
}

func TestStore_Refresh_CoreFailureKeepsSnapshot(t *testing.T) {
	f := &stubFetcher{
		services: []models.Service{{ID: 1}},
	}
	s := newTestStore(f)
	require.NoError(t, s.Refresh(context.Background(), 2025))

	f.coreErr = errors.New("backend down")
	err := s.Refresh(context.Background(), 2025)
	assert.Error(t, err)

	// Prior snapshot survives a failed refresh.
	assert.True(t, s.Ready())
	assert.Len(t, s.Data().Services, 1)
}

func TestStore_Refresh_OverlayFailuresDegrade(t *testing.T) {
	f := &stubFetcher{
		blocked:    []models.BlockedDate{{Date: "2025-12-25", Name: "Navidad"}},
		blockedErr: errors.New("holidays endpoint down"),
		breaksErr:  errors.New("breaks endpoint down"),
	}
	s := newTestStore(f)

	// Overlay failures are non-fatal.
	require.NoError(t, s.Refresh(context.Background(), 2025))
	assert.Empty(t, s.Data().BlockedDates)
	assert.Empty(t, s.Data().Breaks)
}

func TestStore_RefreshAppointments(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f)
	require.NoError(t, s.Refresh(context.Background(), 2025))

	f.appts = []models.Appointment{{ID: 9, Date: "2025-06-04", Time: "10:00:00", Service: 1}}
	require.NoError(t, s.RefreshAppointments(context.Background()))
	assert.Len(t, s.Data().Appointments, 1)
}

func TestStore_EnsureYear(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f)
	require.NoError(t, s.Refresh(context.Background(), 2025))
	before := f.blockedDatesCalls

	// Same year: no refetch.
	s.EnsureYear(context.Background(), 2025)
	assert.Equal(t, before, f.blockedDatesCalls)

	// New year: refetch.
	f.blocked = []models.BlockedDate{{Date: "2026-01-01", Name: "Año Nuevo"}}
	s.EnsureYear(context.Background(), 2026)
	assert.Equal(t, before+1, f.blockedDatesCalls)
	assert.Equal(t, "Año Nuevo", s.Data().BlockedDates[0].Name)
}

func TestStore_Bind_StaleAppointmentsEvent(t *testing.T) {
	f := &stubFetcher{}
	s := newTestStore(f)
	require.NoError(t, s.Refresh(context.Background(), 2025))
	before := f.scheduleCalls

	bus := events.NewBus()
	s.Bind(bus)
	bus.Publish(events.Event{Type: events.AppointmentsStale})

	assert.Equal(t, before+1, f.scheduleCalls)
}
