// Package snapshot holds the service's view of the booking API's
// collections. Each fetch fully replaces the prior snapshot; the store
// never mutates a published snapshot in place.
package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"barberia/internal/availability"
	"barberia/internal/events"
	"barberia/internal/metrics"
	"barberia/internal/models"
)

// Fetcher reads the booking API's collections.
type Fetcher interface {
	Services(ctx context.Context) ([]models.Service, error)
	Weekdays(ctx context.Context) ([]models.Weekday, error)
	WorkingHours(ctx context.Context) ([]models.WorkingHours, error)
	Schedule(ctx context.Context) ([]models.Appointment, error)
	BlockedDates(ctx context.Context, year int) ([]models.BlockedDate, error)
	Breaks(ctx context.Context) ([]models.Break, error)
}

// Store caches the latest snapshot and refreshes it on demand.
type Store struct {
	fetcher Fetcher
	logger  zerolog.Logger

	mu        sync.RWMutex
	data      availability.Data
	fetchedAt time.Time
	year      int
}

// NewStore creates a store over the given fetcher.
func NewStore(fetcher Fetcher, logger zerolog.Logger) *Store {
	return &Store{fetcher: fetcher, logger: logger}
}

// Bind subscribes the store to snapshot-invalidation events: a stale
// appointments signal triggers a schedule refetch, a year change a
// blocked-dates refetch.
func (s *Store) Bind(bus *events.Bus) {
	bus.Subscribe(events.AppointmentsStale, func(events.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := s.RefreshAppointments(ctx); err != nil {
			s.logger.Error().Err(err).Msg("appointments refetch after conflict failed")
		}
	})
	bus.Subscribe(events.YearChanged, func(ev events.Event) {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		s.EnsureYear(ctx, ev.Year)
	})
}

// Refresh fetches all collections in parallel and replaces the snapshot.
// The four core collections are fail-closed: any error leaves the prior
// snapshot untouched. Blocked dates and breaks are fail-open and degrade
// to empty.
func (s *Store) Refresh(ctx context.Context, year int) error {
	var (
		wg       sync.WaitGroup
		services []models.Service
		weekdays []models.Weekday
		hours    []models.WorkingHours
		appts    []models.Appointment
		blocked  []models.BlockedDate
		breaks   []models.Break

		errServices, errWeekdays, errHours, errAppts error
		errBlocked, errBreaks                        error
	)

	wg.Add(6)
	go func() { defer wg.Done(); services, errServices = s.fetcher.Services(ctx) }()
	go func() { defer wg.Done(); weekdays, errWeekdays = s.fetcher.Weekdays(ctx) }()
	go func() { defer wg.Done(); hours, errHours = s.fetcher.WorkingHours(ctx) }()
	go func() { defer wg.Done(); appts, errAppts = s.fetcher.Schedule(ctx) }()
	go func() { defer wg.Done(); blocked, errBlocked = s.fetcher.BlockedDates(ctx, year) }()
	go func() { defer wg.Done(); breaks, errBreaks = s.fetcher.Breaks(ctx) }()
	wg.Wait()

	for _, err := range []error{errServices, errWeekdays, errHours, errAppts} {
		if err != nil {
			metrics.IncSnapshotRefresh("error")
			return err
		}
	}

	if errBlocked != nil {
		s.logger.Warn().Err(errBlocked).Int("year", year).Msg("blocked dates unavailable; treating year as holiday-free")
		blocked = nil
	}
	if errBreaks != nil {
		s.logger.Warn().Err(errBreaks).Msg("breaks unavailable; treating schedule as break-free")
		breaks = nil
	}

	s.mu.Lock()
	s.data = availability.Data{
		Services:     services,
		Weekdays:     weekdays,
		WorkingHours: hours,
		Appointments: appts,
		BlockedDates: blocked,
		Breaks:       breaks,
	}
	s.fetchedAt = time.Now()
	s.year = year
	s.mu.Unlock()

	metrics.IncSnapshotRefresh("ok")
	s.logger.Info().
		Int("services", len(services)).
		Int("appointments", len(appts)).
		Int("blocked_dates", len(blocked)).
		Msg("snapshot refreshed")
	return nil
}

// RefreshAppointments refetches only the schedule, the collection whose
// staleness produces submission conflicts.
func (s *Store) RefreshAppointments(ctx context.Context) error {
	appts, err := s.fetcher.Schedule(ctx)
	if err != nil {
		metrics.IncSnapshotRefresh("error")
		return err
	}

	s.mu.Lock()
	s.data.Appointments = appts
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	metrics.IncSnapshotRefresh("ok")
	return nil
}

// EnsureYear refetches blocked dates when the widget navigates to a year
// other than the one the snapshot holds. Fail-open: on error the year's
// holidays are simply unknown.
func (s *Store) EnsureYear(ctx context.Context, year int) {
	s.mu.RLock()
	current := s.year
	s.mu.RUnlock()
	if year == current {
		return
	}

	blocked, err := s.fetcher.BlockedDates(ctx, year)
	if err != nil {
		s.logger.Warn().Err(err).Int("year", year).Msg("blocked dates refetch failed")
		blocked = nil
	}

	s.mu.Lock()
	s.data.BlockedDates = blocked
	s.year = year
	s.mu.Unlock()
}

// Data returns the current snapshot. The slices are shared and must be
// treated as read-only.
func (s *Store) Data() availability.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Ready reports whether an initial snapshot has been loaded.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fetchedAt.IsZero()
}

// FetchedAt returns the time of the last successful refresh.
func (s *Store) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// Watch refreshes the snapshot on a ticker until the context ends.
// Transient failures keep the previous snapshot.
func (s *Store) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.RLock()
				year := s.year
				s.mu.RUnlock()
				if err := s.Refresh(ctx, year); err != nil {
					s.logger.Error().Err(err).Msg("periodic snapshot refresh failed")
				}
			}
		}
	}()
}
