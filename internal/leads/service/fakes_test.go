package service

import (
	"context"
	"sync"
	"time"

	"leadcapture_backend/internal/events"
	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/ports"
	"leadcapture_backend/internal/leads/repository"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads      map[uuid.UUID]domain.Lead
	order      []uuid.UUID
	syncWrites int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uuid.UUID]domain.Lead{}}
}

func (r *fakeRepo) Create(_ context.Context, lead *domain.Lead) error {
	r.leads[lead.ID] = *lead
	r.order = append(r.order, lead.ID)
	return nil
}

func (r *fakeRepo) Update(_ context.Context, lead *domain.Lead) error {
	if _, ok := r.leads[lead.ID]; !ok {
		return apperr.NotFound("lead not found")
	}
	r.leads[lead.ID] = *lead
	return nil
}

func (r *fakeRepo) UpdateSyncState(_ context.Context, lead *domain.Lead) error {
	stored, ok := r.leads[lead.ID]
	if !ok {
		return apperr.NotFound("lead not found")
	}
	stored.Remote = lead.Remote
	stored.SyncStatus = lead.SyncStatus
	stored.SyncError = lead.SyncError
	stored.LastSyncedAt = lead.LastSyncedAt
	r.leads[lead.ID] = stored
	r.syncWrites++
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Lead, error) {
	l, ok := r.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	return &l, nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.leads[id]; !ok {
		return apperr.NotFound("lead not found")
	}
	delete(r.leads, id)
	return nil
}

func (r *fakeRepo) List(_ context.Context, _ repository.ListParams) ([]domain.Lead, int, error) {
	out := make([]domain.Lead, 0, len(r.order))
	for _, id := range r.order {
		if l, ok := r.leads[id]; ok {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (r *fakeRepo) ListPendingIDs(_ context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, id := range r.order {
		if l, ok := r.leads[id]; ok && l.SyncStatus == domain.SyncPending {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeEvents struct {
	current *domain.Event
	err     error
}

func (f *fakeEvents) ListEvents(context.Context) ([]domain.Event, error) { return nil, nil }

func (f *fakeEvents) CreateEvent(context.Context, *domain.Event) error { return nil }

func (f *fakeEvents) SetActive(_ context.Context, id uuid.UUID) (*domain.Event, error) {
	return &domain.Event{ID: id, IsActive: true}, nil
}

func (f *fakeEvents) Current(context.Context) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.current == nil {
		return nil, apperr.NotFound("event not found")
	}
	return f.current, nil
}

type fakeBooker struct {
	err   error
	calls []ports.BookingParams
}

func (b *fakeBooker) BookForLead(_ context.Context, p ports.BookingParams) (*ports.BookedAppointment, error) {
	b.calls = append(b.calls, p)
	if b.err != nil {
		return nil, b.err
	}
	return &ports.BookedAppointment{ID: uuid.New(), Date: p.Date, TimeSlot: p.TimeSlot, Status: "scheduled"}, nil
}

type syncResult struct {
	outcome ports.SyncOutcome
	err     error
}

// scriptedSyncer replays results in order. An exhausted script succeeds
// with fixed ids. onCall runs before each result is returned.
type scriptedSyncer struct {
	results  []syncResult
	tempOnly bool
	calls    []string
	at       []time.Time
	tagged   []string
	onCall   func()
}

func (s *scriptedSyncer) next(ctx context.Context, kind string) (ports.SyncOutcome, error) {
	s.calls = append(s.calls, kind)
	tag, _ := ctx.Value(logger.LeadIDKey).(string)
	s.tagged = append(s.tagged, tag)
	s.at = append(s.at, time.Now())
	if s.onCall != nil {
		s.onCall()
	}
	if len(s.results) == 0 {
		return ports.SyncOutcome{IDs: domain.RemoteIDs{CustomerID: "77", JobID: "42"}}, nil
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.outcome, r.err
}

func (s *scriptedSyncer) Sync(ctx context.Context, _ domain.Lead) (ports.SyncOutcome, error) {
	return s.next(ctx, "sync")
}

func (s *scriptedSyncer) SyncTemperature(ctx context.Context, _ domain.Lead) (ports.SyncOutcome, error) {
	return s.next(ctx, "temperature")
}

func (s *scriptedSyncer) TemperatureOnlyChange(domain.Lead, domain.Lead) bool {
	return s.tempOnly
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func (b *recordingBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.published))
	for i, e := range b.published {
		out[i] = e.EventName()
	}
	return out
}

type fakeScheduler struct {
	enqueued int
	deferred []uuid.UUID
}

func (f *fakeScheduler) EnqueueSyncPending(context.Context) error {
	f.enqueued++
	return nil
}

func (f *fakeScheduler) EnqueueResyncLead(_ context.Context, id uuid.UUID) error {
	f.deferred = append(f.deferred, id)
	return nil
}

type harness struct {
	svc    *Service
	repo   *fakeRepo
	events *fakeEvents
	booker *fakeBooker
	syncer *scriptedSyncer
	bus    *recordingBus
}

func newHarness(settings Settings) *harness {
	h := &harness{
		repo:   newFakeRepo(),
		events: &fakeEvents{},
		booker: &fakeBooker{},
		syncer: &scriptedSyncer{},
		bus:    &recordingBus{},
	}
	h.svc = New(h.repo, h.events, h.booker, h.syncer, nil, h.bus, settings, logger.Discard())
	return h
}

// seed stores a lead directly, bypassing intake.
func (h *harness) seed(mutate func(*domain.Lead)) domain.Lead {
	rating := 5
	l := domain.Lead{
		ID:         uuid.New(),
		FullName:   "Jane Q Public",
		Email:      "jane@example.com",
		Phone:      "+13125550199",
		TempRating: &rating,
		EventName:  "Home Show",
		SyncStatus: domain.SyncPending,
	}
	if mutate != nil {
		mutate(&l)
	}
	_ = h.repo.Create(context.Background(), &l)
	return l
}
