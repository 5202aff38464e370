// Package service orchestrates lead intake: persistence, the optional
// appointment booking and the CRM sync whose outcome is stored on the lead.
package service

import (
	"context"
	"strings"
	"time"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"
	"leadcapture_backend/platform/phone"
	"leadcapture_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	defaultPage      = 1
	defaultPageSize  = 20
	defaultEventName = "Web Form Submission"
)

// Settings are the feature switches of the orchestrator.
type Settings struct {
	SyncEnabled      bool
	DefaultEventName string
	// ResyncDelay paces the calls of a bulk resync.
	ResyncDelay time.Duration
}

// Repository is the lead persistence the orchestrator needs.
type Repository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	Update(ctx context.Context, lead *domain.Lead) error
	UpdateSyncState(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error)
	ListPendingIDs(ctx context.Context) ([]uuid.UUID, error)
}

// EventStore persists the grouping events.
type EventStore interface {
	ListEvents(ctx context.Context) ([]domain.Event, error)
	CreateEvent(ctx context.Context, ev *domain.Event) error
	SetActive(ctx context.Context, id uuid.UUID) (*domain.Event, error)
	Current(ctx context.Context) (*domain.Event, error)
}

// Service is the lead orchestrator.
type Service struct {
	repo      Repository
	events    EventStore
	booker    ports.AppointmentBooker
	syncer    ports.CRMSyncer
	scheduler ports.ResyncScheduler
	bus       events.Bus
	settings  Settings
	log       *logger.Logger
	now       func() time.Time
}

// New creates the orchestrator. syncer may be nil when CRM sync is disabled
// and scheduler may be nil when no background worker is configured.
func New(repo Repository, eventStore EventStore, booker ports.AppointmentBooker, syncer ports.CRMSyncer, scheduler ports.ResyncScheduler, bus events.Bus, settings Settings, log *logger.Logger) *Service {
	if settings.DefaultEventName == "" {
		settings.DefaultEventName = defaultEventName
	}
	return &Service{
		repo:      repo,
		events:    eventStore,
		booker:    booker,
		syncer:    syncer,
		scheduler: scheduler,
		bus:       bus,
		settings:  settings,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) syncEnabled() bool {
	return s.settings.SyncEnabled && s.syncer != nil
}

// Create captures a lead. Booking and sync failures never fail the call:
// a failed booking is left out of the response and a failed sync is
// recorded on the lead.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*transport.CreateLeadResponse, error) {
	fullName := sanitize.Text(req.FullName)
	if fullName == "" {
		return nil, apperr.Validation("fullName is required")
	}

	now := s.now().UTC()
	lead := &domain.Lead{
		ID:                 uuid.New(),
		FullName:           fullName,
		Email:              normalizeEmail(req.Email),
		Phone:              phone.NormalizeE164(req.Phone),
		Address:            toDomainAddress(req.Address),
		ServicesOfInterest: sanitize.Strings(req.ServicesOfInterest),
		TradeIDs:           req.TradeIDs,
		WorkTypeIDs:        req.WorkTypeIDs,
		SalesRepID:         req.SalesRepID,
		CallCenterRepID:    req.CallCenterRepID,
		DivisionID:         req.DivisionID,
		TempRating:         req.TempRating,
		Notes:              sanitize.Text(req.Notes),
		WantsAppointment:   req.WantsAppointment,
		Appointment:        toDomainAppointment(req.AppointmentDetails),
		ReferredBy:         sanitize.Text(req.ReferredBy),
		ReferralType:       strings.TrimSpace(req.ReferralType),
		ReferralID:         req.ReferralID,
		ReferralNote:       sanitize.Text(req.ReferralNote),
		SyncStatus:         domain.SyncPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.resolveEvent(ctx, lead, sanitize.Text(req.EventName))

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent:        events.NewBaseEvent(),
		LeadID:           lead.ID,
		FullName:         lead.FullName,
		Source:           lead.EventName,
		WantsAppointment: lead.WantsAppointment,
	})

	resp := &transport.CreateLeadResponse{}
	if lead.WantsAppointment && lead.Appointment != nil &&
		lead.Appointment.PreferredDate != "" && lead.Appointment.PreferredTime != "" {
		booked, err := s.booker.BookForLead(ctx, bookingParams(lead))
		if err != nil {
			s.log.Warn("appointment booking failed during lead intake", "leadId", lead.ID, "error", err)
		} else {
			resp.Appointment = toAppointmentSummary(booked)
		}
	}

	if s.syncEnabled() {
		if err := s.syncAndRecord(ctx, lead, s.syncer.Sync); err != nil {
			s.handleAutoSyncError(ctx, lead.ID, err)
		}
	}

	resp.Lead = toLeadResponse(*lead)
	return resp, nil
}

// resolveEvent labels the lead with the given name, else the active event,
// else the configured default.
func (s *Service) resolveEvent(ctx context.Context, lead *domain.Lead, requested string) {
	if requested != "" {
		lead.EventName = requested
		return
	}
	lead.EventName = s.settings.DefaultEventName
	if s.events == nil {
		return
	}
	current, err := s.events.Current(ctx)
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("active event lookup failed, using default", "error", err)
		}
		return
	}
	lead.EventID = &current.ID
	lead.EventName = current.Name
}

// Update patches a lead. A lead that was synced before is synced again,
// through the temperature fast path when only the rating changed; the
// outcome is recorded on the returned lead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*transport.LeadResponse, error) {
	prev, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *prev
	applyUpdate(&next, req)
	if next.FullName == "" {
		return nil, apperr.Validation("fullName cannot be empty")
	}
	next.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, &next); err != nil {
		return nil, err
	}

	if s.syncEnabled() && prev.Linked() {
		run := s.syncer.Sync
		if s.syncer.TemperatureOnlyChange(*prev, next) {
			s.log.Info("temperature-only change, using fast path", "leadId", id)
			run = s.syncer.SyncTemperature
		}
		if err := s.syncAndRecord(ctx, &next, run); err != nil {
			s.handleAutoSyncError(ctx, id, err)
		}
	}

	resp := toLeadResponse(next)
	return &resp, nil
}

func applyUpdate(l *domain.Lead, req transport.UpdateLeadRequest) {
	if req.FullName != nil {
		l.FullName = sanitize.Text(*req.FullName)
	}
	if req.Email != nil {
		l.Email = normalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		l.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Address != nil {
		l.Address = toDomainAddress(*req.Address)
	}
	if req.ServicesOfInterest != nil {
		l.ServicesOfInterest = sanitize.Strings(req.ServicesOfInterest)
	}
	if req.TradeIDs != nil {
		l.TradeIDs = req.TradeIDs
	}
	if req.WorkTypeIDs != nil {
		l.WorkTypeIDs = req.WorkTypeIDs
	}
	if req.SalesRepID != nil {
		l.SalesRepID = req.SalesRepID
	}
	if req.CallCenterRepID != nil {
		l.CallCenterRepID = req.CallCenterRepID
	}
	if req.DivisionID != nil {
		l.DivisionID = req.DivisionID
	}
	if req.TempRating != nil {
		rating := *req.TempRating
		l.TempRating = &rating
	}
	if req.Notes != nil {
		l.Notes = sanitize.Text(*req.Notes)
	}
	if req.WantsAppointment != nil {
		l.WantsAppointment = *req.WantsAppointment
	}
	if req.AppointmentDetails != nil {
		l.Appointment = toDomainAppointment(req.AppointmentDetails)
	}
	if req.ReferredBy != nil {
		l.ReferredBy = sanitize.Text(*req.ReferredBy)
	}
	if req.ReferralType != nil {
		l.ReferralType = strings.TrimSpace(*req.ReferralType)
	}
	if req.ReferralID != nil {
		l.ReferralID = req.ReferralID
	}
	if req.ReferralNote != nil {
		l.ReferralNote = sanitize.Text(*req.ReferralNote)
	}
}

// SetAppointmentPreferences books or moves the lead's appointment, then
// stores the preferences on the lead. Booking errors are returned.
func (s *Service) SetAppointmentPreferences(ctx context.Context, id uuid.UUID, req transport.SetAppointmentPreferencesRequest) (*transport.CreateLeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	wasLinked := lead.Linked()
	lead.WantsAppointment = true
	lead.Appointment = &domain.AppointmentDetails{
		StaffMemberID: sanitize.TextPtr(req.StaffMemberID),
		PreferredDate: strings.TrimSpace(req.PreferredDate),
		PreferredTime: strings.TrimSpace(req.PreferredTime),
		Notes:         sanitize.Text(req.Notes),
	}

	booked, err := s.booker.BookForLead(ctx, bookingParams(lead))
	if err != nil {
		return nil, err
	}

	lead.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, lead); err != nil {
		return nil, err
	}

	if s.syncEnabled() && wasLinked {
		if err := s.syncAndRecord(ctx, lead, s.syncer.Sync); err != nil {
			s.handleAutoSyncError(ctx, id, err)
		}
	}

	return &transport.CreateLeadResponse{
		Lead:        toLeadResponse(*lead),
		Appointment: toAppointmentSummary(booked),
	}, nil
}

// GetByID retrieves a lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toLeadResponse(*lead)
	return &resp, nil
}

// List returns a page of leads.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (*transport.LeadListResponse, error) {
	params := repository.ListParams{
		SyncStatus: req.SyncStatus,
		Search:     req.Search,
		Page:       req.Page,
		PageSize:   req.PageSize,
	}
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.LeadResponse, len(leads))
	for i, l := range leads {
		items[i] = toLeadResponse(l)
	}

	return &transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: (total + params.PageSize - 1) / params.PageSize,
	}, nil
}

// Delete removes a lead. Its CRM records are left alone.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func bookingParams(l *domain.Lead) ports.BookingParams {
	return ports.BookingParams{
		LeadID:             l.ID,
		CustomerName:       l.FullName,
		CustomerEmail:      l.Email,
		CustomerPhone:      l.Phone,
		Address:            l.Address,
		ServicesOfInterest: l.ServicesOfInterest,
		TradeIDs:           l.TradeIDs,
		SalesRepID:         l.SalesRepID,
		EventName:          l.EventName,
		Date:               l.Appointment.PreferredDate,
		TimeSlot:           l.Appointment.PreferredTime,
		StaffMemberID:      l.Appointment.StaffMemberID,
		Notes:              l.Appointment.Notes,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
