package repository

import (
	"context"
	"errors"
	"fmt"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const eventNotFoundMsg = "event not found"

const eventColumns = `id, name, location, starts_on, ends_on, is_active, created_at, updated_at`

// ListEvents returns all events, the active one first.
func (r *Repository) ListEvents(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY is_active DESC, starts_on DESC NULLS LAST, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]domain.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// CreateEvent inserts an inactive event.
func (r *Repository) CreateEvent(ctx context.Context, ev *domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, name, location, starts_on, ends_on, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6, $7)`,
		ev.ID, ev.Name, ev.Location, ev.StartsOn, ev.EndsOn, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// SetActive makes id the only active event.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var activated *domain.Event
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE events SET is_active = FALSE, updated_at = now() WHERE is_active`); err != nil {
			return fmt.Errorf("failed to clear active event: %w", err)
		}
		ev, err := scanEvent(tx.QueryRow(ctx,
			`UPDATE events SET is_active = TRUE, updated_at = now() WHERE id = $1 RETURNING `+eventColumns, id))
		if err != nil {
			return err
		}
		activated = ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activated, nil
}

// Current returns the active event.
func (r *Repository) Current(ctx context.Context) (*domain.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE is_active LIMIT 1`))
}

func scanEvent(row pgx.Row) (*domain.Event, error) {
	var ev domain.Event
	if err := row.Scan(&ev.ID, &ev.Name, &ev.Location, &ev.StartsOn, &ev.EndsOn, &ev.IsActive, &ev.CreatedAt, &ev.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(eventNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	return &ev, nil
}
