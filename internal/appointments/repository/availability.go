package repository

import (
	"context"
	"fmt"
	"time"

	"leadcapture_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
)

const msgSlotFull = "time slot is fully booked"

// reserveSeat takes one seat in (day, slot) or fails with apperr.SlotFull.
// The guarded increment serializes concurrent writers on the counter row,
// so the last seat can only be taken once.
func reserveSeat(ctx context.Context, tx pgx.Tx, day time.Time, timeSlot string, capacity int) error {
	if _, err := tx.Exec(ctx, `
		INSERT INTO appointment_slot_counters (appointment_date, time_slot, booked)
		VALUES ($1, $2, 0)
		ON CONFLICT (appointment_date, time_slot) DO NOTHING`, day, timeSlot); err != nil {
		return fmt.Errorf("failed to initialise slot counter: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE appointment_slot_counters
		SET booked = booked + 1
		WHERE appointment_date = $1 AND time_slot = $2 AND booked < $3`, day, timeSlot, capacity)
	if err != nil {
		return fmt.Errorf("failed to reserve slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.SlotFull(msgSlotFull)
	}
	return nil
}

func releaseSeat(ctx context.Context, tx pgx.Tx, day time.Time, timeSlot string) error {
	_, err := tx.Exec(ctx, `
		UPDATE appointment_slot_counters
		SET booked = booked - 1
		WHERE appointment_date = $1 AND time_slot = $2 AND booked > 0`, day, timeSlot)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

// CountLiveBySlot counts scheduled and confirmed appointments per slot for
// every day in [from, to].
func (r *Repository) CountLiveBySlot(ctx context.Context, from, to time.Time) (map[SlotKey]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT appointment_date, time_slot, COUNT(*)
		FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2
		  AND status IN ('scheduled', 'confirmed')
		GROUP BY appointment_date, time_slot`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to count booked slots: %w", err)
	}
	defer rows.Close()

	counts := make(map[SlotKey]int)
	for rows.Next() {
		var day time.Time
		var slot string
		var n int
		if err := rows.Scan(&day, &slot, &n); err != nil {
			return nil, fmt.Errorf("failed to scan booked slot: %w", err)
		}
		counts[NewSlotKey(day, slot)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate booked slots: %w", err)
	}
	return counts, nil
}
