package models

import "time"

// Alert lifecycle statuses as exposed over the API.
const (
	AlertStatusOpen      = "open"
	AlertStatusEscalated = "escalated"
	AlertStatusHandled   = "handled"
)

// SafetyAlert is the persisted record of one crisis detection and its
// resolution lifecycle. Handlers and audits depend on these field names,
// so the JSON shape must stay stable.
type SafetyAlert struct {
	ID              string      `json:"id"`
	SubjectID       string      `json:"subject_id"`
	Severity        Severity    `json:"severity"`
	Context         string      `json:"context"`
	Indicators      []Indicator `json:"indicators"`
	EscalationLevel int         `json:"escalation_level"`
	Handled         bool        `json:"handled"`
	HandledBy       *string     `json:"handled_by,omitempty"`
	HandledAt       *time.Time  `json:"handled_at,omitempty"`
	Actions         []string    `json:"actions"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Status derives the lifecycle state from the handled flag and escalation level.
func (a *SafetyAlert) Status() string {
	switch {
	case a.Handled:
		return AlertStatusHandled
	case a.EscalationLevel > 0:
		return AlertStatusEscalated
	default:
		return AlertStatusOpen
	}
}
