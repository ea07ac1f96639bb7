package models

import "time"

// Task is one queued notification dispatch produced by the lifecycle
// manager or protocol execution. Delivery is fire-and-forget; the crisis
// core's obligation ends at recording the dispatch on the alert.
type Task struct {
	AlertID   string
	SubjectID string
	Severity  Severity
	Subject   string
	Body      string
	Targets   []string
	Timestamp time.Time
}
