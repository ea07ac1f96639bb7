package models

import "time"

// Audit event kinds emitted by the crisis engine.
const (
	AuditDetection     = "detection"
	AuditAlertCreated  = "alert_created"
	AuditActionRun     = "action_executed"
	AuditEscalation    = "escalation"
	AuditAlertResolved = "alert_resolved"
	AuditHistoryFailed = "history_lookup_failed"
	AuditTimerFailed   = "timer_scheduling_failed"
)

// AuditEvent is one append-only entry in the audit trail.
type AuditEvent struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	SubjectID string            `json:"subject_id"`
	AlertID   string            `json:"alert_id,omitempty"`
	Severity  Severity          `json:"severity,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
