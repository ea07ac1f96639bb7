package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crisis-service/internal/models"
)

const alertColumns = `
	id, subject_id, severity, context, indicators, escalation_level,
	handled, handled_by, handled_at, actions, created_at, updated_at`

// CreateAlert inserts a new safety alert record.
func (d *DB) CreateAlert(ctx context.Context, alert *models.SafetyAlert) error {
	indicators, err := json.Marshal(alert.Indicators)
	if err != nil {
		return fmt.Errorf("failed to marshal indicators: %w", err)
	}
	actions, err := json.Marshal(alert.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
	INSERT INTO safety_alerts (` + alertColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = d.Pool.Exec(ctx, query,
		alert.ID,
		alert.SubjectID,
		alert.Severity.String(),
		alert.Context,
		indicators,
		alert.EscalationLevel,
		alert.Handled,
		alert.HandledBy,
		alert.HandledAt,
		actions,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert fetches a single alert by id.
func (d *DB) GetAlert(ctx context.Context, id string) (*models.SafetyAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM safety_alerts WHERE id = $1`
	alert, err := scanAlert(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to get alert %s: %w", id, err)
	}
	return alert, nil
}

// UpdateAlert overwrites the mutable fields of an existing alert.
func (d *DB) UpdateAlert(ctx context.Context, alert *models.SafetyAlert) error {
	actions, err := json.Marshal(alert.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}

	query := `
	UPDATE safety_alerts
	SET escalation_level = $2, handled = $3, handled_by = $4, handled_at = $5,
	    actions = $6, updated_at = $7
	WHERE id = $1`

	tag, err := d.Pool.Exec(ctx, query,
		alert.ID,
		alert.EscalationLevel,
		alert.Handled,
		alert.HandledBy,
		alert.HandledAt,
		actions,
		alert.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert %s: %w", alert.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}

// AlertsBySubjectSince returns a subject's alerts created at or after the
// cutoff, newest first.
func (d *DB) AlertsBySubjectSince(ctx context.Context, subjectID string, since time.Time) ([]models.SafetyAlert, error) {
	query := `
	SELECT ` + alertColumns + `
	FROM safety_alerts
	WHERE subject_id = $1 AND created_at >= $2
	ORDER BY created_at DESC`

	rows, err := d.Pool.Query(ctx, query, subjectID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts for subject %s: %w", subjectID, err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

// AlertsBySubject returns a page of a subject's alerts plus the total count.
func (d *DB) AlertsBySubject(ctx context.Context, subjectID string, limit, offset int) ([]models.SafetyAlert, int, error) {
	var total int
	if err := d.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM safety_alerts WHERE subject_id = $1`, subjectID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	query := `
	SELECT ` + alertColumns + `
	FROM safety_alerts
	WHERE subject_id = $1
	ORDER BY created_at DESC
	LIMIT $2 OFFSET $3`

	rows, err := d.Pool.Query(ctx, query, subjectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query alerts for subject %s: %w", subjectID, err)
	}
	defer rows.Close()

	list, err := collectAlerts(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// UnhandledAlerts returns every alert still awaiting resolution.
func (d *DB) UnhandledAlerts(ctx context.Context) ([]models.SafetyAlert, error) {
	query := `
	SELECT ` + alertColumns + `
	FROM safety_alerts
	WHERE handled = false
	ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unhandled alerts: %w", err)
	}
	defer rows.Close()
	return collectAlerts(rows)
}

func collectAlerts(rows pgx.Rows) ([]models.SafetyAlert, error) {
	var list []models.SafetyAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		list = append(list, *alert)
	}
	return list, rows.Err()
}

func scanAlert(row pgx.Row) (*models.SafetyAlert, error) {
	var (
		alert      models.SafetyAlert
		severity   string
		indicators []byte
		actions    []byte
	)
	err := row.Scan(
		&alert.ID,
		&alert.SubjectID,
		&severity,
		&alert.Context,
		&indicators,
		&alert.EscalationLevel,
		&alert.Handled,
		&alert.HandledBy,
		&alert.HandledAt,
		&actions,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if alert.Severity, err = models.ParseSeverity(severity); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(indicators, &alert.Indicators); err != nil {
		return nil, fmt.Errorf("failed to unmarshal indicators: %w", err)
	}
	if err := json.Unmarshal(actions, &alert.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
	}
	return &alert, nil
}
