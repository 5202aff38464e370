package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"leadcapture_backend/internal/appointments/repository"
	"leadcapture_backend/platform/apperr"

	"github.com/google/uuid"
)

// memoryStore keeps appointments in a map and enforces capacity under one
// mutex, standing in for the counter transaction.
type memoryStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]repository.Appointment
}

func newMemoryStore() *memoryStore {
	return &memoryStore{items: make(map[uuid.UUID]repository.Appointment)}
}

func (m *memoryStore) liveCount(key repository.SlotKey) int {
	n := 0
	for _, a := range m.items {
		if a.Live() && a.Key() == key {
			n++
		}
	}
	return n
}

func (m *memoryStore) Create(_ context.Context, appt *repository.Appointment, capacity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if appt.Live() && m.liveCount(appt.Key()) >= capacity {
		return apperr.SlotFull("time slot is fully booked")
	}
	m.items[appt.ID] = *appt
	return nil
}

func (m *memoryStore) Update(_ context.Context, id uuid.UUID, capacity int, apply func(*repository.Appointment) error) (*repository.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	prev := current
	if err := apply(&current); err != nil {
		return nil, err
	}
	if _, reserve := repository.SlotChange(prev, current); reserve && m.liveCount(current.Key()) >= capacity {
		return nil, apperr.SlotFull("time slot is fully booked")
	}
	m.items[id] = current
	return &current, nil
}

func (m *memoryStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("appointment not found")
	}
	return &a, nil
}

func (m *memoryStore) FindActiveByLead(_ context.Context, leadID uuid.UUID) (*repository.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *repository.Appointment
	for _, a := range m.items {
		if a.LeadID != nil && *a.LeadID == leadID && a.Live() {
			if found == nil || a.CreatedAt.After(found.CreatedAt) {
				copied := a
				found = &copied
			}
		}
	}
	return found, nil
}

func (m *memoryStore) List(_ context.Context, params repository.ListParams) ([]repository.Appointment, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.Appointment
	for _, a := range m.items {
		if params.Status != nil && a.Status != *params.Status {
			continue
		}
		if params.LeadID != nil && (a.LeadID == nil || *a.LeadID != *params.LeadID) {
			continue
		}
		if params.From != nil && a.Date.Before(*params.From) {
			continue
		}
		if params.To != nil && a.Date.After(*params.To) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, len(out), nil
}

func (m *memoryStore) CountByStatus(_ context.Context, from, to time.Time) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int)
	for _, a := range m.items {
		if !a.Date.Before(from) && !a.Date.After(to) {
			counts[a.Status]++
		}
	}
	return counts, nil
}

func (m *memoryStore) CountLiveBySlot(_ context.Context, from, to time.Time) (map[repository.SlotKey]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[repository.SlotKey]int)
	for _, a := range m.items {
		if a.Live() && !a.Date.Before(from) && !a.Date.After(to) {
			counts[a.Key()]++
		}
	}
	return counts, nil
}

// seed inserts a live appointment directly, bypassing the service.
func (m *memoryStore) seed(day time.Time, slot string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := 0; i < n; i++ {
		id := uuid.New()
		m.items[id] = repository.Appointment{
			ID:           id,
			CustomerName: "Seeded",
			Date:         day,
			TimeSlot:     slot,
			Status:       "scheduled",
		}
	}
}
