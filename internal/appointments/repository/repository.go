package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dateLayout = "2006-01-02"

// Appointment represents the appointment database model.
// Date is the local calendar day stored as midnight UTC.
type Appointment struct {
	ID                 uuid.UUID  `db:"id"`
	LeadID             *uuid.UUID `db:"lead_id"`
	CustomerName       string     `db:"customer_name"`
	CustomerEmail      string     `db:"customer_email"`
	CustomerPhone      string     `db:"customer_phone"`
	Street             string     `db:"street"`
	City               string     `db:"city"`
	State              string     `db:"state"`
	ZipCode            string     `db:"zip_code"`
	ServicesOfInterest []string   `db:"services_of_interest"`
	TradeIDs           []int64    `db:"trade_ids"`
	SalesRepID         *int64     `db:"sales_rep_id"`
	EventName          string     `db:"event_name"`
	Date               time.Time  `db:"appointment_date"`
	TimeSlot           string     `db:"time_slot"`
	DurationMinutes    int        `db:"duration_minutes"`
	Status             string     `db:"status"`
	StaffMemberID      *string    `db:"staff_member_id"`
	Notes              string     `db:"notes"`
	LastModifiedBy     *string    `db:"last_modified_by"`
	CreatedAt          time.Time  `db:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"`
}

// Live reports whether the appointment holds a seat in its slot.
func (a Appointment) Live() bool {
	return transport.AppointmentStatus(a.Status).IsLive()
}

// Key returns the slot the appointment occupies.
func (a Appointment) Key() SlotKey {
	return SlotKey{Day: a.Date.Format(dateLayout), TimeSlot: a.TimeSlot}
}

// SlotKey identifies one labeled slot on one calendar day (YYYY-MM-DD).
type SlotKey struct {
	Day      string
	TimeSlot string
}

// NewSlotKey builds the key for day and label.
func NewSlotKey(day time.Time, timeSlot string) SlotKey {
	return SlotKey{Day: day.Format(dateLayout), TimeSlot: timeSlot}
}

// SlotChange reports which seats a transition from prev to next gives back
// and which it takes. A live appointment that stays in the same slot touches
// nothing.
func SlotChange(prev, next Appointment) (release, reserve bool) {
	sameSlot := prev.Key() == next.Key()
	release = prev.Live() && (!next.Live() || !sameSlot)
	reserve = next.Live() && (!prev.Live() || !sameSlot)
	return release, reserve
}

// Repository provides database operations for appointments
type Repository struct {
	pool *pgxpool.Pool
}

const appointmentNotFoundMsg = "appointment not found"

const appointmentColumns = `id, lead_id, customer_name, customer_email, customer_phone, street, city, state, zip_code,
	services_of_interest, trade_ids, sales_rep_id, event_name, appointment_date, time_slot, duration_minutes,
	status, staff_member_id, notes, last_modified_by, created_at, updated_at`

// New creates a new appointments repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new appointment. A live appointment reserves its seat in
// the same transaction; a full slot yields apperr.SlotFull and nothing is written.
func (r *Repository) Create(ctx context.Context, appt *Appointment, capacity int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if appt.Live() {
			if err := reserveSeat(ctx, tx, appt.Date, appt.TimeSlot, capacity); err != nil {
				return err
			}
		}

		query := `INSERT INTO appointments (` + appointmentColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)`
		_, err := tx.Exec(ctx, query,
			appt.ID, appt.LeadID, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
			appt.Street, appt.City, appt.State, appt.ZipCode, nonNilStrings(appt.ServicesOfInterest),
			nonNilInts(appt.TradeIDs), appt.SalesRepID, appt.EventName, appt.Date, appt.TimeSlot,
			appt.DurationMinutes, appt.Status, appt.StaffMemberID, appt.Notes, appt.LastModifiedBy,
			appt.CreatedAt, appt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
}

// Update locks the appointment row, lets apply mutate a copy and persists it.
// Seats move between slot counters in the same transaction, so a move into
// a full slot fails with apperr.SlotFull and leaves the row untouched.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, capacity int, apply func(*Appointment) error) (*Appointment, error) {
	var updated *Appointment
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanAppointment(tx.QueryRow(ctx,
			`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		prev := *current
		if err := apply(current); err != nil {
			return err
		}

		release, reserve := SlotChange(prev, *current)
		if reserve {
			if err := reserveSeat(ctx, tx, current.Date, current.TimeSlot, capacity); err != nil {
				return err
			}
		}
		if release {
			if err := releaseSeat(ctx, tx, prev.Date, prev.TimeSlot); err != nil {
				return err
			}
		}

		query := `
			UPDATE appointments SET
				customer_name = $2,
				customer_email = $3,
				customer_phone = $4,
				appointment_date = $5,
				time_slot = $6,
				status = $7,
				staff_member_id = $8,
				notes = $9,
				last_modified_by = $10,
				updated_at = $11
			WHERE id = $1`
		if _, err := tx.Exec(ctx, query,
			current.ID, current.CustomerName, current.CustomerEmail, current.CustomerPhone,
			current.Date, current.TimeSlot, current.Status, current.StaffMemberID, current.Notes,
			current.LastModifiedBy, current.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to update appointment: %w", err)
		}

		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID retrieves an appointment by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
}

// FindActiveByLead returns the most recent live (scheduled or confirmed)
// appointment booked for leadID, or nil when there is none. Finished
// appointments are history and never rescheduled.
func (r *Repository) FindActiveByLead(ctx context.Context, leadID uuid.UUID) (*Appointment, error) {
	appt, err := scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+appointmentColumns+` FROM appointments
		WHERE lead_id = $1 AND status IN ('scheduled', 'confirmed')
		ORDER BY created_at DESC LIMIT 1`, leadID))
	if apperr.GetKind(err) == apperr.KindNotFound {
		return nil, nil // Not found is acceptable
	}
	return appt, err
}

// ListParams contains parameters for listing appointments
type ListParams struct {
	LeadID   *uuid.UUID
	Status   *string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// List retrieves appointments with optional filtering, ordered by day and slot.
func (r *Repository) List(ctx context.Context, params ListParams) ([]Appointment, int, error) {
	baseQuery := `FROM appointments WHERE TRUE`
	args := []interface{}{}
	argIndex := 1

	addFilter(&baseQuery, &args, &argIndex, params.LeadID != nil, " AND lead_id = $%d", derefUUID(params.LeadID))
	addFilter(&baseQuery, &args, &argIndex, params.Status != nil, " AND status = $%d", derefString(params.Status))
	addFilter(&baseQuery, &args, &argIndex, params.From != nil, " AND appointment_date >= $%d", derefTime(params.From))
	addFilter(&baseQuery, &args, &argIndex, params.To != nil, " AND appointment_date <= $%d", derefTime(params.To))

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	selectQuery := fmt.Sprintf(`SELECT %s %s ORDER BY appointment_date, time_slot, created_at LIMIT $%d OFFSET $%d`,
		appointmentColumns, baseQuery, argIndex, argIndex+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer rows.Close()

	items := make([]Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *appt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate appointments: %w", err)
	}

	return items, total, nil
}

// CountByStatus groups appointments in [from, to] by status.
func (r *Repository) CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM appointments
		WHERE appointment_date BETWEEN $1 AND $2
		GROUP BY status`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate appointment stats: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan appointment stats: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	err := row.Scan(
		&appt.ID, &appt.LeadID, &appt.CustomerName, &appt.CustomerEmail, &appt.CustomerPhone,
		&appt.Street, &appt.City, &appt.State, &appt.ZipCode, &appt.ServicesOfInterest,
		&appt.TradeIDs, &appt.SalesRepID, &appt.EventName, &appt.Date, &appt.TimeSlot,
		&appt.DurationMinutes, &appt.Status, &appt.StaffMemberID, &appt.Notes, &appt.LastModifiedBy,
		&appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(appointmentNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan appointment: %w", err)
	}
	return &appt, nil
}

// ToResponse converts an Appointment to AppointmentResponse
func (a *Appointment) ToResponse() transport.AppointmentResponse {
	return transport.AppointmentResponse{
		ID:            a.ID,
		LeadID:        a.LeadID,
		CustomerName:  a.CustomerName,
		CustomerEmail: a.CustomerEmail,
		CustomerPhone: a.CustomerPhone,
		Address: transport.Address{
			Street:  a.Street,
			City:    a.City,
			State:   a.State,
			ZipCode: a.ZipCode,
		},
		ServicesOfInterest: nonNilStrings(a.ServicesOfInterest),
		TradeIDs:           nonNilInts(a.TradeIDs),
		SalesRepID:         a.SalesRepID,
		EventName:          a.EventName,
		Date:               a.Date.Format(dateLayout),
		TimeSlot:           a.TimeSlot,
		DurationMinutes:    a.DurationMinutes,
		Status:             transport.AppointmentStatus(a.Status),
		StaffMemberID:      a.StaffMemberID,
		Notes:              a.Notes,
		LastModifiedBy:     a.LastModifiedBy,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func addFilter(baseQuery *string, args *[]interface{}, argIndex *int, apply bool, clause string, value interface{}) {
	if !apply {
		return
	}
	*baseQuery += fmt.Sprintf(clause, *argIndex)
	*args = append(*args, value)
	*argIndex++
}

func derefUUID(value *uuid.UUID) uuid.UUID {
	if value == nil {
		return uuid.UUID{}
	}
	return *value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefTime(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilInts(v []int64) []int64 {
	if v == nil {
		return []int64{}
	}
	return v
}
