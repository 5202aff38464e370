package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

const leadColumns = `id, full_name, email, phone, street, city, state, zip_code,
	services_of_interest, trade_ids, work_type_ids, sales_rep_id, call_center_rep_id, division_id,
	temp_rating, notes, wants_appointment, appt_staff_member_id, appt_preferred_date, appt_preferred_time,
	appt_notes, event_id, event_name, referred_by, referral_type, referral_id, referral_note,
	crm_prospect_id, crm_customer_id, crm_job_id, crm_appointment_id,
	sync_status, sync_error, last_synced_at, created_at, updated_at`

// Repository provides database operations for leads
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a lead.
func (r *Repository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `INSERT INTO leads (` + leadColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
		$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36
	)`
	if _, err := r.pool.Exec(ctx, query, leadArgs(lead)...); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// Update overwrites every column of the lead.
func (r *Repository) Update(ctx context.Context, lead *domain.Lead) error {
	query := `
		UPDATE leads SET
			full_name = $2, email = $3, phone = $4, street = $5, city = $6, state = $7, zip_code = $8,
			services_of_interest = $9, trade_ids = $10, work_type_ids = $11, sales_rep_id = $12,
			call_center_rep_id = $13, division_id = $14, temp_rating = $15, notes = $16,
			wants_appointment = $17, appt_staff_member_id = $18, appt_preferred_date = $19,
			appt_preferred_time = $20, appt_notes = $21, event_id = $22, event_name = $23,
			referred_by = $24, referral_type = $25, referral_id = $26, referral_note = $27,
			crm_prospect_id = $28, crm_customer_id = $29, crm_job_id = $30, crm_appointment_id = $31,
			sync_status = $32, sync_error = $33, last_synced_at = $34, updated_at = $36
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, leadArgs(lead)...)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// UpdateSyncState writes only the CRM ids and sync status so a sync never
// overwrites field edits made while it was in flight.
func (r *Repository) UpdateSyncState(ctx context.Context, lead *domain.Lead) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET
			crm_prospect_id = $2, crm_customer_id = $3, crm_job_id = $4, crm_appointment_id = $5,
			sync_status = $6, sync_error = $7, last_synced_at = $8, updated_at = now()
		WHERE id = $1`,
		lead.ID,
		nullText(lead.Remote.ProspectID), nullText(lead.Remote.CustomerID),
		nullText(lead.Remote.JobID), nullText(lead.Remote.AppointmentID),
		string(lead.SyncStatus), nullText(lead.SyncError), lead.LastSyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update lead sync state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// GetByID retrieves a lead by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	return scanLead(r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
}

// Delete removes a lead. Appointments keep their weak reference.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// ListParams contains parameters for listing leads
type ListParams struct {
	SyncStatus *string
	Search     string
	Page       int
	PageSize   int
}

// List retrieves leads newest first with optional filtering.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}
	argIdx := 1

	if params.SyncStatus != nil {
		where = append(where, fmt.Sprintf("sync_status = $%d", argIdx))
		args = append(args, *params.SyncStatus)
		argIdx++
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		where = append(where, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR event_name ILIKE $%d)",
			argIdx, argIdx, argIdx, argIdx))
		args = append(args, "%"+s+"%")
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM leads WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, whereClause, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, *lead)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate leads: %w", err)
	}

	return leads, total, nil
}

// ListPendingIDs returns the ids of leads waiting for a sync, oldest first.
func (r *Repository) ListPendingIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id FROM leads WHERE sync_status = 'pending' ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending leads: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, fmt.Errorf("failed to scan pending leads: %w", err)
	}
	return ids, nil
}

func leadArgs(l *domain.Lead) []interface{} {
	var staffID, prefDate, prefTime, apptNotes *string
	if a := l.Appointment; a != nil {
		staffID = a.StaffMemberID
		prefDate = nullText(a.PreferredDate)
		prefTime = nullText(a.PreferredTime)
		notes := a.Notes
		apptNotes = &notes
	}

	return []interface{}{
		l.ID, l.FullName, l.Email, l.Phone, l.Address.Street, l.Address.City, l.Address.State, l.Address.ZipCode,
		nonNilStrings(l.ServicesOfInterest), nonNilInts(l.TradeIDs), nonNilInts(l.WorkTypeIDs),
		l.SalesRepID, l.CallCenterRepID, l.DivisionID,
		l.TempRating, l.Notes, l.WantsAppointment, staffID, prefDate, prefTime,
		apptNotes, l.EventID, l.EventName, nullText(l.ReferredBy), nullText(l.ReferralType), l.ReferralID, nullText(l.ReferralNote),
		nullText(l.Remote.ProspectID), nullText(l.Remote.CustomerID), nullText(l.Remote.JobID), nullText(l.Remote.AppointmentID),
		string(l.SyncStatus), nullText(l.SyncError), l.LastSyncedAt, l.CreatedAt, l.UpdatedAt,
	}
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var (
		l                                      domain.Lead
		status                                 string
		staffID, prefDate, prefTime, apptNote  *string
		referredBy, referralType, referralNote *string
		prospectID, customerID, jobID, apptID  *string
		syncError                              *string
	)
	err := row.Scan(
		&l.ID, &l.FullName, &l.Email, &l.Phone, &l.Address.Street, &l.Address.City, &l.Address.State, &l.Address.ZipCode,
		&l.ServicesOfInterest, &l.TradeIDs, &l.WorkTypeIDs, &l.SalesRepID, &l.CallCenterRepID, &l.DivisionID,
		&l.TempRating, &l.Notes, &l.WantsAppointment, &staffID, &prefDate, &prefTime,
		&apptNote, &l.EventID, &l.EventName, &referredBy, &referralType, &l.ReferralID, &referralNote,
		&prospectID, &customerID, &jobID, &apptID,
		&status, &syncError, &l.LastSyncedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}

	if staffID != nil || prefDate != nil || prefTime != nil || apptNote != nil {
		l.Appointment = &domain.AppointmentDetails{
			StaffMemberID: staffID,
			PreferredDate: deref(prefDate),
			PreferredTime: deref(prefTime),
			Notes:         deref(apptNote),
		}
	}
	l.ReferredBy = deref(referredBy)
	l.ReferralType = deref(referralType)
	l.ReferralNote = deref(referralNote)
	l.Remote = domain.RemoteIDs{
		ProspectID:    deref(prospectID),
		CustomerID:    deref(customerID),
		JobID:         deref(jobID),
		AppointmentID: deref(apptID),
	}
	l.SyncStatus = domain.SyncStatus(status)
	l.SyncError = deref(syncError)
	if l.LastSyncedAt != nil {
		t := l.LastSyncedAt.UTC()
		l.LastSyncedAt = &t
	}
	l.CreatedAt = l.CreatedAt.UTC()
	l.UpdatedAt = l.UpdatedAt.UTC()

	return &l, nil
}

func nullText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
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
