package db

import (
	"context"
	"errors"
	"time"

	"crisis-service/internal/models"
)

// ErrAlertNotFound is returned when an alert id has no persisted record.
var ErrAlertNotFound = errors.New("alert not found")

// ErrContactNotFound is returned when a contact point id is unknown.
var ErrContactNotFound = errors.New("contact point not found")

// AlertStore persists safety alerts. The lifecycle manager owns all
// mutations of unhandled alerts; everything else reads.
type AlertStore interface {
	CreateAlert(ctx context.Context, alert *models.SafetyAlert) error
	GetAlert(ctx context.Context, id string) (*models.SafetyAlert, error)
	UpdateAlert(ctx context.Context, alert *models.SafetyAlert) error
	// AlertsBySubjectSince returns all alerts for a subject created at or
	// after the cutoff, newest first.
	AlertsBySubjectSince(ctx context.Context, subjectID string, since time.Time) ([]models.SafetyAlert, error)
	// AlertsBySubject returns a page of a subject's alerts, newest first,
	// plus the total count.
	AlertsBySubject(ctx context.Context, subjectID string, limit, offset int) ([]models.SafetyAlert, int, error)
	// UnhandledAlerts returns every alert that has not reached the
	// terminal handled state. Used for timer recovery on startup.
	UnhandledAlerts(ctx context.Context) ([]models.SafetyAlert, error)
}

// AuditStore persists the append-only audit trail.
type AuditStore interface {
	CreateAuditEvent(ctx context.Context, event models.AuditEvent) error
	AuditEventsByAlert(ctx context.Context, alertID string) ([]models.AuditEvent, error)
}

// ContactStore persists handler contact points.
type ContactStore interface {
	CreateContactPoint(ctx context.Context, cp models.ContactPoint) error
	GetContactPoint(ctx context.Context, id string) (models.ContactPoint, error)
	ContactPointsByRole(ctx context.Context, role string) ([]models.ContactPoint, error)
	DeleteContactPoint(ctx context.Context, id string) error
}

// Store is the full persistence surface the service is wired with.
type Store interface {
	AlertStore
	AuditStore
	ContactStore
}
