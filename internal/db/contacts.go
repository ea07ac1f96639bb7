package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"crisis-service/internal/models"
)

// CreateContactPoint inserts a new handler contact point.
func (d *DB) CreateContactPoint(ctx context.Context, cp models.ContactPoint) error {
	configuration, err := json.Marshal(cp.Configuration)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	query := `
	INSERT INTO contact_points (id, name, role, type, configuration, status, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = d.Pool.Exec(ctx, query,
		cp.ID, cp.Name, cp.Role, cp.Type, configuration, cp.Status, cp.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert contact point: %w", err)
	}
	return nil
}

// GetContactPoint fetches a contact point by id.
func (d *DB) GetContactPoint(ctx context.Context, id string) (models.ContactPoint, error) {
	query := `
	SELECT id, name, role, type, configuration, status, created_at
	FROM contact_points WHERE id = $1`

	cp, err := scanContactPoint(d.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ContactPoint{}, ErrContactNotFound
		}
		return models.ContactPoint{}, fmt.Errorf("failed to get contact point %s: %w", id, err)
	}
	return cp, nil
}

// ContactPointsByRole returns the active contact points for a handler role.
func (d *DB) ContactPointsByRole(ctx context.Context, role string) ([]models.ContactPoint, error) {
	query := `
	SELECT id, name, role, type, configuration, status, created_at
	FROM contact_points
	WHERE role = $1 AND status = 'active'
	ORDER BY created_at ASC`

	rows, err := d.Pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to query contact points for role %s: %w", role, err)
	}
	defer rows.Close()

	var list []models.ContactPoint
	for rows.Next() {
		cp, err := scanContactPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact point: %w", err)
		}
		list = append(list, cp)
	}
	return list, rows.Err()
}

// DeleteContactPoint removes a contact point.
func (d *DB) DeleteContactPoint(ctx context.Context, id string) error {
	tag, err := d.Pool.Exec(ctx, `DELETE FROM contact_points WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact point %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrContactNotFound
	}
	return nil
}

func scanContactPoint(row pgx.Row) (models.ContactPoint, error) {
	var (
		cp            models.ContactPoint
		configuration []byte
	)
	err := row.Scan(&cp.ID, &cp.Name, &cp.Role, &cp.Type, &configuration, &cp.Status, &cp.CreatedAt)
	if err != nil {
		return models.ContactPoint{}, err
	}
	if err := json.Unmarshal(configuration, &cp.Configuration); err != nil {
		return models.ContactPoint{}, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cp, nil
}
