package service

import (
	"context"
	"strings"
	"time"

	"leadcapture_backend/internal/appointments/repository"
	"leadcapture_backend/internal/appointments/transport"
	"leadcapture_backend/internal/events"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/phone"
	"leadcapture_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// Store is the persistence the booking service needs. Create and Update
// enforce slot capacity atomically and fail with apperr.SlotFull.
type Store interface {
	SlotCounter
	Create(ctx context.Context, appt *repository.Appointment, capacity int) error
	Update(ctx context.Context, id uuid.UUID, capacity int, apply func(*repository.Appointment) error) (*repository.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Appointment, error)
	FindActiveByLead(ctx context.Context, leadID uuid.UUID) (*repository.Appointment, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Appointment, int, error)
	CountByStatus(ctx context.Context, from, to time.Time) (map[string]int, error)
}

// Service provides business logic for appointments
type Service struct {
	store    Store
	engine   *AvailabilityEngine
	schedule Schedule
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new appointments service
func New(store Store, schedule Schedule, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		engine:   NewAvailabilityEngine(schedule, store),
		schedule: schedule,
		eventBus: eventBus,
		log:      log,
		now:      time.Now,
	}
}

// Engine exposes the availability engine backing the service.
func (s *Service) Engine() *AvailabilityEngine {
	return s.engine
}

// Schedule returns the booking rules in client-facing form.
func (s *Service) Schedule() transport.ScheduleResponse {
	closed := make([]string, 0, len(s.schedule.ClosedWeekdays))
	for _, d := range s.schedule.ClosedWeekdays {
		closed = append(closed, d.String())
	}
	return transport.ScheduleResponse{
		TimeSlots:       s.engine.SlotsForDay(),
		Capacity:        s.schedule.Capacity,
		ClosedWeekdays:  closed,
		DurationMinutes: s.schedule.DurationMinutes(),
		MaxScanDays:     s.schedule.MaxScanDays,
		Timezone:        s.schedule.Location.String(),
	}
}

// Create books a new appointment after checking the slot is open.
// The store re-checks capacity atomically, so a slot that filled in between
// still fails with SlotFull.
func (s *Service) Create(ctx context.Context, req transport.CreateAppointmentRequest) (*transport.AppointmentResponse, error) {
	name := sanitize.Text(req.CustomerName)
	if name == "" {
		return nil, apperr.Validation("customerName is required")
	}
	if strings.TrimSpace(req.TimeSlot) == "" {
		return nil, apperr.Validation("timeSlot is required")
	}
	day, err := ParseDay(req.Date, s.schedule.Location)
	if err != nil {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = transport.AppointmentStatusScheduled
	}
	if !status.IsLive() {
		return nil, apperr.Validation("new appointments must be scheduled or confirmed")
	}

	if err := s.engine.CheckBookable(ctx, day, req.TimeSlot); err != nil {
		return nil, err
	}

	now := s.now()
	appt := &repository.Appointment{
		ID:                 uuid.New(),
		LeadID:             req.LeadID,
		CustomerName:       name,
		CustomerEmail:      strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		CustomerPhone:      phone.NormalizeE164(req.CustomerPhone),
		Street:             sanitize.Text(req.Address.Street),
		City:               sanitize.Text(req.Address.City),
		State:              strings.ToUpper(strings.TrimSpace(req.Address.State)),
		ZipCode:            strings.TrimSpace(req.Address.ZipCode),
		ServicesOfInterest: sanitize.Strings(req.ServicesOfInterest),
		TradeIDs:           req.TradeIDs,
		SalesRepID:         req.SalesRepID,
		EventName:          sanitize.Text(req.EventName),
		Date:               day,
		TimeSlot:           req.TimeSlot,
		DurationMinutes:    s.schedule.DurationMinutes(),
		Status:             string(status),
		StaffMemberID:      req.StaffMemberID,
		Notes:              sanitize.Text(req.Notes),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.store.Create(ctx, appt, s.schedule.Capacity); err != nil {
		return nil, err
	}

	s.log.Info("appointment booked",
		"appointmentId", appt.ID, "date", appt.Date.Format(dateFormat), "timeSlot", appt.TimeSlot)
	s.eventBus.Publish(ctx, events.AppointmentBooked{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		LeadID:        appt.LeadID,
		CustomerName:  appt.CustomerName,
		CustomerEmail: appt.CustomerEmail,
		Date:          appt.Date,
		TimeSlot:      appt.TimeSlot,
		DurationMin:   appt.DurationMinutes,
	})

	resp := appt.ToResponse()
	return &resp, nil
}

// Update applies a partial change. Capacity is re-checked only when the
// appointment moves to a different day or slot, or becomes live again.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAppointmentRequest, modifiedBy string) (*transport.AppointmentResponse, error) {
	var newDay *time.Time
	if req.Date != nil {
		day, err := ParseDay(*req.Date, s.schedule.Location)
		if err != nil {
			return nil, err
		}
		newDay = &day
	}
	if req.TimeSlot != nil && !s.schedule.HasSlot(*req.TimeSlot) {
		return nil, apperr.BadRequest("unknown time slot " + *req.TimeSlot)
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	wasLive := current.Live()

	next := *current
	applyPatch(&next, req, newDay)
	if _, reserve := repository.SlotChange(*current, next); reserve {
		if err := s.engine.CheckBookable(ctx, next.Date, next.TimeSlot); err != nil {
			return nil, err
		}
	}

	updated, err := s.store.Update(ctx, id, s.schedule.Capacity, func(a *repository.Appointment) error {
		applyPatch(a, req, newDay)
		a.LastModifiedBy = optionalString(modifiedBy)
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasLive && updated.Status == string(transport.AppointmentStatusCancelled) {
		s.publishCancelled(ctx, updated, modifiedBy)
	}

	resp := updated.ToResponse()
	return &resp, nil
}

// Cancel marks the appointment cancelled, which frees its seat.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, cancelledBy string) (*transport.AppointmentResponse, error) {
	var wasLive bool
	updated, err := s.store.Update(ctx, id, s.schedule.Capacity, func(a *repository.Appointment) error {
		wasLive = a.Live()
		a.Status = string(transport.AppointmentStatusCancelled)
		a.LastModifiedBy = optionalString(cancelledBy)
		a.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return nil, err
	}

	if wasLive {
		s.log.Info("appointment cancelled", "appointmentId", id, "cancelledBy", cancelledBy)
		s.publishCancelled(ctx, updated, cancelledBy)
	}

	resp := updated.ToResponse()
	return &resp, nil
}

// UpsertForLead books for a lead, or reschedules the lead's existing live
// appointment when one exists.
func (s *Service) UpsertForLead(ctx context.Context, req transport.LeadBookingRequest) (*transport.AppointmentResponse, error) {
	existing, err := s.store.FindActiveByLead(ctx, req.LeadID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		leadID := req.LeadID
		return s.Create(ctx, transport.CreateAppointmentRequest{
			LeadID:             &leadID,
			CustomerName:       req.CustomerName,
			CustomerEmail:      req.CustomerEmail,
			CustomerPhone:      req.CustomerPhone,
			Address:            req.Address,
			ServicesOfInterest: req.ServicesOfInterest,
			TradeIDs:           req.TradeIDs,
			SalesRepID:         req.SalesRepID,
			EventName:          req.EventName,
			Date:               req.Date,
			TimeSlot:           req.TimeSlot,
			StaffMemberID:      req.StaffMemberID,
			Notes:              req.Notes,
		})
	}

	date, slot, notes := req.Date, req.TimeSlot, req.Notes
	return s.Update(ctx, existing.ID, transport.UpdateAppointmentRequest{
		Date:          &date,
		TimeSlot:      &slot,
		Notes:         &notes,
		StaffMemberID: req.StaffMemberID,
	}, "")
}

// GetByID retrieves a single appointment.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.AppointmentResponse, error) {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := appt.ToResponse()
	return &resp, nil
}

// List returns a page of appointments.
func (s *Service) List(ctx context.Context, req transport.ListAppointmentsRequest) (*transport.AppointmentListResponse, error) {
	params := repository.ListParams{
		LeadID:   req.LeadID,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	if req.Status != nil {
		status := string(*req.Status)
		params.Status = &status
	}
	if req.From != "" {
		from, err := ParseDay(req.From, s.schedule.Location)
		if err != nil {
			return nil, err
		}
		params.From = &from
	}
	if req.To != "" {
		to, err := ParseDay(req.To, s.schedule.Location)
		if err != nil {
			return nil, err
		}
		params.To = &to
	}

	items, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	resp := &transport.AppointmentListResponse{
		Items:      make([]transport.AppointmentResponse, 0, len(items)),
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}
	for i := range items {
		resp.Items = append(resp.Items, items[i].ToResponse())
	}
	return resp, nil
}

// GetStats counts appointments by status over [from, to]. Read only.
func (s *Service) GetStats(ctx context.Context, fromValue, toValue string) (*transport.StatsResponse, error) {
	from, to, err := s.parseRange(fromValue, toValue)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.store.CountByStatus(ctx, from, to)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, n := range byStatus {
		total += n
	}
	return &transport.StatsResponse{
		From:     from.Format(dateFormat),
		To:       to.Format(dateFormat),
		Total:    total,
		ByStatus: byStatus,
	}, nil
}

// CheckAvailability reports open days in [start, end], optionally limited to some slots.
func (s *Service) CheckAvailability(ctx context.Context, startValue, endValue string, slots []string) ([]transport.DayAvailability, error) {
	start, end, err := s.parseRange(startValue, endValue)
	if err != nil {
		return nil, err
	}
	return s.engine.RangeAvailability(ctx, start, end, slots)
}

// AvailabilityForDate reports a single day, closed days included.
func (s *Service) AvailabilityForDate(ctx context.Context, dateValue string) (*transport.DayAvailability, error) {
	day, err := ParseDay(dateValue, s.schedule.Location)
	if err != nil {
		return nil, err
	}
	avail, err := s.engine.Availability(ctx, day)
	if err != nil {
		return nil, err
	}
	return &avail, nil
}

// FindNextAvailable searches forward from fromValue, or from today when it is empty.
func (s *Service) FindNextAvailable(ctx context.Context, fromValue string, slots []string, maxDays int) (*transport.NextAvailableResponse, error) {
	from := s.engine.Today()
	if strings.TrimSpace(fromValue) != "" {
		day, err := ParseDay(fromValue, s.schedule.Location)
		if err != nil {
			return nil, err
		}
		from = day
	}

	next, err := s.engine.FindNextAvailable(ctx, from, slots, maxDays)
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func (s *Service) parseRange(fromValue, toValue string) (time.Time, time.Time, error) {
	from, err := ParseDay(fromValue, s.schedule.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := ParseDay(toValue, s.schedule.Location)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperr.BadRequest("end date must not be before start date")
	}
	return from, to, nil
}

func (s *Service) publishCancelled(ctx context.Context, appt *repository.Appointment, by string) {
	s.eventBus.Publish(ctx, events.AppointmentCancelled{
		BaseEvent:     events.NewBaseEvent(),
		AppointmentID: appt.ID,
		Date:          appt.Date,
		TimeSlot:      appt.TimeSlot,
		CancelledBy:   by,
	})
}

func applyPatch(a *repository.Appointment, req transport.UpdateAppointmentRequest, newDay *time.Time) {
	if req.CustomerName != nil {
		a.CustomerName = sanitize.Text(*req.CustomerName)
	}
	if req.CustomerEmail != nil {
		a.CustomerEmail = strings.ToLower(strings.TrimSpace(*req.CustomerEmail))
	}
	if req.CustomerPhone != nil {
		a.CustomerPhone = phone.NormalizeE164(*req.CustomerPhone)
	}
	if newDay != nil {
		a.Date = *newDay
	}
	if req.TimeSlot != nil {
		a.TimeSlot = *req.TimeSlot
	}
	if req.Status != nil {
		a.Status = string(*req.Status)
	}
	if req.StaffMemberID != nil {
		a.StaffMemberID = req.StaffMemberID
	}
	if req.Notes != nil {
		a.Notes = sanitize.Text(*req.Notes)
	}
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
