package service

import (
	"context"
	"time"

	"leadcapture_backend/internal/leads/domain"
	"leadcapture_backend/internal/leads/transport"
	"leadcapture_backend/platform/apperr"
	"leadcapture_backend/platform/sanitize"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// ListEvents returns every event.
func (s *Service) ListEvents(ctx context.Context) ([]transport.EventResponse, error) {
	list, err := s.events.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.EventResponse, len(list))
	for i, ev := range list {
		out[i] = toEventResponse(ev)
	}
	return out, nil
}

// CreateEvent stores a new, inactive event.
func (s *Service) CreateEvent(ctx context.Context, req transport.CreateEventRequest) (*transport.EventResponse, error) {
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	startsOn, err := parseOptionalDate(req.StartsOn, "startsOn")
	if err != nil {
		return nil, err
	}
	endsOn, err := parseOptionalDate(req.EndsOn, "endsOn")
	if err != nil {
		return nil, err
	}
	if startsOn != nil && endsOn != nil && endsOn.Before(*startsOn) {
		return nil, apperr.Validation("endsOn must not be before startsOn")
	}

	now := s.now().UTC()
	ev := &domain.Event{
		ID:        uuid.New(),
		Name:      name,
		Location:  sanitize.Text(req.Location),
		StartsOn:  startsOn,
		EndsOn:    endsOn,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.events.CreateEvent(ctx, ev); err != nil {
		return nil, err
	}

	resp := toEventResponse(*ev)
	return &resp, nil
}

// SetActiveEvent makes the event the label new leads are captured under.
func (s *Service) SetActiveEvent(ctx context.Context, id uuid.UUID) (*transport.EventResponse, error) {
	ev, err := s.events.SetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("active event changed", "eventId", ev.ID, "name", ev.Name)
	resp := toEventResponse(*ev)
	return &resp, nil
}

// CurrentEvent returns the active event.
func (s *Service) CurrentEvent(ctx context.Context) (*transport.EventResponse, error) {
	ev, err := s.events.Current(ctx)
	if err != nil {
		return nil, err
	}
	resp := toEventResponse(*ev)
	return &resp, nil
}

func parseOptionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, apperr.Validation(field + " must be YYYY-MM-DD")
	}
	return &t, nil
}
