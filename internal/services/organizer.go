package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type organizerService struct {
	organizerRepo  domain.OrganizerRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewOrganizerService returns the organizer directory service.
func NewOrganizerService(organizerRepo domain.OrganizerRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.OrganizerService {
	return &organizerService{
		organizerRepo:  organizerRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *organizerService) ListOrganizers(ctx context.Context, params domain.PaginationParams) (*domain.Page[*domain.Organizer], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page, err := pageOf(ctx, params, s.organizerRepo.Count, s.organizerRepo.List)
	if err != nil {
		return nil, fmt.Errorf("organizers %w", err)
	}
	return page, nil
}

func (s *organizerService) GetOrganizer(ctx context.Context, slug string) (*domain.OrganizerDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	org, err := s.organizerRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get organizer: %w", err)
	}
	events, err := listEventsWhere(ctx, s.eventRepo, domain.Predicate{Kind: domain.PredOrganizerIn, IDs: []int64{org.ID}})
	if err != nil {
		return nil, err
	}
	return &domain.OrganizerDetail{Organizer: org, Events: events}, nil
}

// listEventsWhere returns every event matching pred, any status, by start time.
func listEventsWhere(ctx context.Context, repo domain.EventRepository, pred domain.Predicate) ([]*domain.EventListing, error) {
	q := domain.EventQuery{Order: domain.DefaultOrder}.Where(pred)
	events, err := repo.List(ctx, q, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.EventListing{}
	}
	return events, nil
}
