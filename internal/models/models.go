package models

// Service represents a bookable barbershop service as served by the booking API.
type Service struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Duration    string `json:"duration"` // "HH:MM:SS"
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Weekday is the shop's open/closed flag for one calendar weekday.
// IDs follow the booking API's scheme: 1=Monday..6=Saturday, 7=Sunday.
type Weekday struct {
	ID     int  `json:"id"`
	Status bool `json:"status"`
}

// WorkingHours is one working window on a weekday. A weekday may carry
// zero, one or several windows (split shifts).
type WorkingHours struct {
	Day       int    `json:"day"`
	StartTime string `json:"start_time"` // "HH:MM[:SS]"
	EndTime   string `json:"end_time"`
}

// Appointment is a committed booking. It occupies
// [time, time+service duration) on its date.
type Appointment struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"` // "YYYY-MM-DD"
	Time    string `json:"time"` // "HH:MM:SS"
	Service int64  `json:"service"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// BlockedDate marks a whole calendar date as unbookable (holiday).
type BlockedDate struct {
	Date string `json:"date"` // "YYYY-MM-DD"
	Name string `json:"name"`
}

// Break is a recurring time-of-day range during which no appointment
// may start. Not date-scoped.
type Break struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Name      string `json:"name"`
}

// ServiceByID finds a service in a snapshot slice. Returns nil when absent.
func ServiceByID(services []Service, id int64) *Service {
	for i := range services {
		if services[i].ID == id {
			return &services[i]
		}
	}
	return nil
}
