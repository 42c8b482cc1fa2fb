// Package availability computes bookable start times for a barbershop
// day from a snapshot of the booking API's collections. It is pure: it
// never reads the wall clock and never mutates its inputs.
package availability

import (
	"sort"
	"time"

	"barberia/internal/models"
)

// Data bundles the read-only collections the engine operates on.
type Data struct {
	Services     []models.Service
	Weekdays     []models.Weekday
	WorkingHours []models.WorkingHours
	Appointments []models.Appointment
	BlockedDates []models.BlockedDate
	Breaks       []models.Break
}

// Interval is a [Start, End) range in minutes since midnight.
type Interval struct {
	Start int
	End   int
}

// DayStatus classifies a calendar date for the booking grid.
type DayStatus string

const (
	DayPast      DayStatus = "past"
	DayHoliday   DayStatus = "holiday"
	DayBlocked   DayStatus = "blocked"
	DayAvailable DayStatus = "available"
	DayInactive  DayStatus = "inactive"
)

// Slot is one bookable start time decorated for the widget. Slots inside
// a break stay in the list but are flagged non-selectable.
type Slot struct {
	Start     string `json:"start"` // "10:00"
	End       string `json:"end"`   // "10:30"
	InBreak   bool   `json:"in_break"`
	BreakName string `json:"break_name,omitempty"`
}

// Engine computes availability in a fixed reference timezone. The same
// location answers both "is the selected date today" and "what is now",
// so operator and customer clocks can never disagree.
type Engine struct {
	loc *time.Location
}

// New creates an engine anchored to the given reference location.
func New(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	return &Engine{loc: loc}
}

// Location returns the engine's reference location.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// todayKey resolves "today" as a YYYY-MM-DD key in the reference zone.
// Zero-padded ISO keys compare lexicographically in calendar order, so
// dates selected by the widget never pass through a zone conversion.
func (e *Engine) todayKey(now time.Time) string {
	return DateKey(now.In(e.loc))
}

// IsDayBlockedByRule reports whether the date's weekday has no rule or
// an inactive one.
func IsDayBlockedByRule(weekdays []models.Weekday, date time.Time) bool {
	id := WeekdayID(date)
	for _, w := range weekdays {
		if w.ID == id {
			return !w.Status
		}
	}
	return true
}

// IsHoliday reports whether the date is a blocked date, and its display
// name when it is.
func IsHoliday(blocked []models.BlockedDate, date time.Time) (bool, string) {
	key := DateKey(date)
	for _, b := range blocked {
		if b.Date == key {
			return true, b.Name
		}
	}
	return false, ""
}

// IsDayAvailable reports whether the date's weekday rule is active and at
// least one working-hours window exists for it. Holiday status is a
// separate veto applied by ClassifyDay.
func IsDayAvailable(d Data, date time.Time) bool {
	id := WeekdayID(date)
	active := false
	for _, w := range d.Weekdays {
		if w.ID == id && w.Status {
			active = true
			break
		}
	}
	if !active {
		return false
	}
	for _, h := range d.WorkingHours {
		if h.Day == id {
			return true
		}
	}
	return false
}

// ClassifyDay resolves a date's status with first-match priority:
// past, holiday, blocked-by-rule, available, inactive. The second return
// is the holiday name when status is DayHoliday.
func (e *Engine) ClassifyDay(d Data, date, now time.Time) (DayStatus, string) {
	if DateKey(date) < e.todayKey(now) {
		return DayPast, ""
	}
	if holiday, name := IsHoliday(d.BlockedDates, date); holiday {
		return DayHoliday, name
	}
	if IsDayBlockedByRule(d.Weekdays, date) {
		return DayBlocked, ""
	}
	if IsDayAvailable(d, date) {
		return DayAvailable, ""
	}
	return DayInactive, ""
}

// ServiceDuration returns the referenced service's duration in minutes,
// 0 when the service is unknown or carries no duration. Appointments with
// unknown services are effectively zero-width rather than an error.
func ServiceDuration(services []models.Service, id int64) int {
	svc := models.ServiceByID(services, id)
	if svc == nil {
		return 0
	}
	m, err := TimeToMinutes(svc.Duration)
	if err != nil {
		return 0
	}
	return m
}

// OccupiedIntervals maps the date's appointments to occupied minute
// ranges, sorted ascending by start. Appointments with unparseable start
// times are skipped.
func OccupiedIntervals(d Data, date time.Time) []Interval {
	key := DateKey(date)
	var occupied []Interval
	for _, appt := range d.Appointments {
		if appt.Date != key {
			continue
		}
		start, err := TimeToMinutes(appt.Time)
		if err != nil {
			continue
		}
		occupied = append(occupied, Interval{
			Start: start,
			End:   start + ServiceDuration(d.Services, appt.Service),
		})
	}
	sort.Slice(occupied, func(i, j int) bool {
		return occupied[i].Start < occupied[j].Start
	})
	return occupied
}

// FreeIntervals returns the gaps inside the working window left by the
// occupied intervals. Occupied input is assumed sorted by start and
// non-overlapping; overlapping input degrades to a best-effort view but
// never panics.
func FreeIntervals(window Interval, occupied []Interval) []Interval {
	if len(occupied) == 0 {
		return []Interval{window}
	}

	var free []Interval
	if occupied[0].Start > window.Start {
		free = append(free, Interval{Start: window.Start, End: occupied[0].Start})
	}

	for i := 0; i < len(occupied)-1; i++ {
		if occupied[i+1].Start > occupied[i].End {
			free = append(free, Interval{Start: occupied[i].End, End: occupied[i+1].Start})
		}
	}

	last := occupied[len(occupied)-1]
	if last.End < window.End {
		free = append(free, Interval{Start: last.End, End: window.End})
	}

	return free
}

// tileSlots emits back-to-back start times of width duration inside each
// free interval. No sliding window: slots tile from the interval start.
func tileSlots(free []Interval, duration int) []string {
	var slots []string
	for _, interval := range free {
		if interval.End-interval.Start < duration {
			continue
		}
		for start := interval.Start; start+duration <= interval.End; start += duration {
			slots = append(slots, MinutesToTime(start))
		}
	}
	return slots
}

// Slots computes the ordered bookable start times for a date and service.
// Empty result when the service is unknown, has no positive duration or
// the weekday has no working-hours windows. Slots inside a break are kept;
// the caller flags them via InBreak. Same-day requests are cut off at the
// current time-of-day in the reference zone.
func (e *Engine) Slots(d Data, date time.Time, serviceID int64, now time.Time) []string {
	duration := ServiceDuration(d.Services, serviceID)
	if duration <= 0 {
		return nil
	}
	if IsDayBlockedByRule(d.Weekdays, date) {
		return nil
	}

	id := WeekdayID(date)
	occupied := OccupiedIntervals(d, date)

	seen := make(map[string]bool)
	var slots []string
	for _, h := range d.WorkingHours {
		if h.Day != id {
			continue
		}
		start, err := TimeToMinutes(h.StartTime)
		if err != nil {
			continue
		}
		end, err := TimeToMinutes(h.EndTime)
		if err != nil {
			continue
		}
		free := FreeIntervals(Interval{Start: start, End: end}, occupied)
		for _, slot := range tileSlots(free, duration) {
			if !seen[slot] {
				seen[slot] = true
				slots = append(slots, slot)
			}
		}
	}
	sort.Strings(slots)

	if DateKey(date) == e.todayKey(now) {
		local := now.In(e.loc)
		nowMinutes := local.Hour()*60 + local.Minute()
		kept := slots[:0]
		for _, slot := range slots {
			m, err := TimeToMinutes(slot)
			if err == nil && m >= nowMinutes {
				kept = append(kept, slot)
			}
		}
		slots = kept
	}

	return slots
}

// InBreak reports whether a slot start ("HH:MM") falls inside any
// configured break, [start, end) half-open.
func InBreak(breaks []models.Break, slotStart string) bool {
	_, in := breakFor(breaks, slotStart)
	return in
}

// BreakName returns the display name of the break covering the slot
// start, "" when none does.
func BreakName(breaks []models.Break, slotStart string) string {
	brk, in := breakFor(breaks, slotStart)
	if !in {
		return ""
	}
	return brk.Name
}

func breakFor(breaks []models.Break, slotStart string) (models.Break, bool) {
	m, err := TimeToMinutes(slotStart)
	if err != nil {
		return models.Break{}, false
	}
	for _, b := range breaks {
		start, err := TimeToMinutes(b.StartTime)
		if err != nil {
			continue
		}
		end, err := TimeToMinutes(b.EndTime)
		if err != nil {
			continue
		}
		if m >= start && m < end {
			return b, true
		}
	}
	return models.Break{}, false
}

// DecoratedSlots computes Slots and annotates each with its end time and
// break coverage for the widget.
func (e *Engine) DecoratedSlots(d Data, date time.Time, serviceID int64, now time.Time) []Slot {
	duration := ServiceDuration(d.Services, serviceID)
	starts := e.Slots(d, date, serviceID, now)
	if len(starts) == 0 {
		return nil
	}

	slots := make([]Slot, 0, len(starts))
	for _, start := range starts {
		m, err := TimeToMinutes(start)
		if err != nil {
			continue
		}
		brk, in := breakFor(d.Breaks, start)
		slots = append(slots, Slot{
			Start:     start,
			End:       MinutesToTime(m + duration),
			InBreak:   in,
			BreakName: brk.Name,
		})
	}
	return slots
}
