package barberapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// SubmitError is a rejected appointment submission. The booking API
// reports slot conflicts through `date`/`time`/`non_field_errors` keys or
// a named `appointment_conflict` message; both mean the local snapshot is
// stale and the caller should refetch appointments.
type SubmitError struct {
	StatusCode int
	Conflict   bool
	PromoCode  bool
	Message    string
	Fields     map[string][]string
}

func (e *SubmitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("booking rejected: %s", e.Message)
	}
	return fmt.Sprintf("booking rejected: http %d", e.StatusCode)
}

// IsConflict reports whether err is a slot-conflict rejection.
func IsConflict(err error) bool {
	var submitErr *SubmitError
	return errors.As(err, &submitErr) && submitErr.Conflict
}

func parseSubmitError(status int, body []byte) *SubmitError {
	submitErr := &SubmitError{
		StatusCode: status,
		Fields:     make(map[string][]string),
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		submitErr.Message = strings.TrimSpace(string(body))
		return submitErr
	}

	for field, msg := range raw {
		values := decodeMessages(msg)
		switch field {
		case "appointment_conflict":
			submitErr.Conflict = true
			if len(values) > 0 {
				submitErr.Message = values[0]
			}
		case "date", "time", "non_field_errors":
			submitErr.Conflict = true
			submitErr.Fields[field] = values
		case "promo_code":
			submitErr.PromoCode = true
			if len(values) > 0 && submitErr.Message == "" {
				submitErr.Message = values[0]
			}
			submitErr.Fields[field] = values
		case "detail":
			if len(values) > 0 && submitErr.Message == "" {
				submitErr.Message = values[0]
			}
		default:
			submitErr.Fields[field] = values
		}
	}

	if submitErr.Conflict && submitErr.Message == "" {
		submitErr.Message = "the selected slot is no longer available"
	}

	return submitErr
}

// decodeMessages handles the API's mixed error values: a string, or an
// array of strings.
func decodeMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		return many
	}
	return []string{strings.TrimSpace(string(raw))}
}
