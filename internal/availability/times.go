package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimeToMinutes converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
// Seconds, when present, are ignored.
func TimeToMinutes(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}

	return hour*60 + minute, nil
}

// MinutesToTime converts minutes since midnight to zero-padded "HH:MM".
// Values outside [0, 1440) are rendered literally; no 24h wrapping.
func MinutesToTime(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatDuration renders a "HH:MM:SS" duration string for display:
// "1h 30min", "2h", "45min". Empty input yields "0min".
func FormatDuration(duration string) string {
	if duration == "" {
		return "0min"
	}

	minutes, err := TimeToMinutes(duration)
	if err != nil {
		return "0min"
	}

	hours := minutes / 60
	mins := minutes % 60
	switch {
	case hours > 0 && mins > 0:
		return fmt.Sprintf("%dh %dmin", hours, mins)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dmin", mins)
	}
}

// WeekdayID maps a calendar date to the booking API's weekday scheme:
// 1=Monday..6=Saturday, 7=Sunday. This is the single place the mapping
// is declared; every predicate goes through it.
func WeekdayID(date time.Time) int {
	if wd := int(date.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// DateKey formats a date as the API's "YYYY-MM-DD" key.
func DateKey(date time.Time) string {
	return date.Format("2006-01-02")
}
