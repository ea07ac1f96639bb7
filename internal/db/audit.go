package db

import (
	"context"
	"encoding/json"
	"fmt"

	"crisis-service/internal/models"
)

// CreateAuditEvent appends one event to the audit trail.
func (d *DB) CreateAuditEvent(ctx context.Context, event models.AuditEvent) error {
	details, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	query := `
	INSERT INTO audit_events (id, kind, subject_id, alert_id, severity, details, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = d.Pool.Exec(ctx, query,
		event.ID,
		event.Kind,
		event.SubjectID,
		event.AlertID,
		event.Severity.String(),
		details,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// AuditEventsByAlert returns the audit trail for one alert, oldest first.
func (d *DB) AuditEventsByAlert(ctx context.Context, alertID string) ([]models.AuditEvent, error) {
	query := `
	SELECT id, kind, subject_id, alert_id, severity, details, created_at
	FROM audit_events
	WHERE alert_id = $1
	ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events for alert %s: %w", alertID, err)
	}
	defer rows.Close()

	var list []models.AuditEvent
	for rows.Next() {
		var (
			event    models.AuditEvent
			severity string
			details  []byte
		)
		if err := rows.Scan(&event.ID, &event.Kind, &event.SubjectID, &event.AlertID,
			&severity, &details, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		if event.Severity, err = models.ParseSeverity(severity); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &event.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal audit details: %w", err)
		}
		list = append(list, event)
	}
	return list, rows.Err()
}
