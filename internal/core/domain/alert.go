package domain

import (
	"fmt"
	"time"
)

// AlertStatus is the finite state of an Alert.
//
//	open -> acknowledged
//	open -> dismissed
//
// Both acknowledged and dismissed are terminal.
type AlertStatus uint8

// Alert states. The zero value is not a valid state.
const (
	alertStatusUnknown AlertStatus = iota
	AlertOpen
	AlertAcknowledged
	AlertDismissed
)

// ParseAlertStatus parses the wire form of a status.
func ParseAlertStatus(s string) (AlertStatus, error) {
	switch s {
	case "open":
		return AlertOpen, nil
	case "acknowledged":
		return AlertAcknowledged, nil
	case "dismissed":
		return AlertDismissed, nil
	default:
		return alertStatusUnknown, fmt.Errorf("unknown alert status %q: %w", s, ErrInvalidArgument)
	}
}

// String returns the wire form of the status.
func (s AlertStatus) String() string {
	switch s {
	case AlertOpen:
		return "open"
	case AlertAcknowledged:
		return "acknowledged"
	case AlertDismissed:
		return "dismissed"
	default:
		return "unknown"
	}
}

// IsValid returns true for the three defined states.
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertOpen, AlertAcknowledged, AlertDismissed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s AlertStatus) IsTerminal() bool {
	switch s {
	case AlertAcknowledged, AlertDismissed:
		return true
	default:
		return false
	}
}

// CanTransition checks a move from s to next. Self-transitions are not
// part of the machine and are rejected.
func (s AlertStatus) CanTransition(next AlertStatus) error {
	if !next.IsValid() {
		return fmt.Errorf("target status %s: %w", next, ErrInvalidArgument)
	}
	switch s {
	case AlertOpen:
		switch next {
		case AlertAcknowledged, AlertDismissed:
			return nil
		case AlertOpen:
			return fmt.Errorf("alert is already open: %w", ErrInvalidState)
		}
	case AlertAcknowledged, AlertDismissed:
		return fmt.Errorf("alert is %s and cannot move to %s: %w", s, next, ErrInvalidState)
	}
	return fmt.Errorf("alert in unknown status cannot move to %s: %w", next, ErrInvalidState)
}

// MarshalText encodes the status as its wire form.
func (s AlertStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("alert status %d: %w", s, ErrInvalidArgument)
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes the wire form.
func (s *AlertStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseAlertStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Alert records that a listing change occurred and whether it has been
// surfaced. Exactly one alert exists per qualifying change.
type Alert struct {
	ID              string      `json:"alert_id"`
	ListingID       string      `json:"listing_id"`
	ListingChangeID string      `json:"listing_change_id"`
	SearchSpecID    string      `json:"search_spec_id,omitempty"`
	FieldPath       string      `json:"field_path,omitempty"`
	Status          AlertStatus `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
