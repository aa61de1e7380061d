package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"
)

type favoriteService struct {
	favoriteRepo   domain.FavoriteRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewFavoriteService returns the favorites service.
func NewFavoriteService(favoriteRepo domain.FavoriteRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.FavoriteService {
	return &favoriteService{
		favoriteRepo:   favoriteRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

// Toggle adds the event to the user's favorites, or removes it when already present.
func (s *favoriteService) Toggle(ctx context.Context, p domain.Principal, eventSlug string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := requireUser(p)
	if err != nil {
		return false, err
	}
	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("get event: %w", err)
	}
	created, err := s.favoriteRepo.Add(ctx, userID, event.ID)
	if err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	if created {
		return true, nil
	}
	if err := s.favoriteRepo.Remove(ctx, userID, event.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	return false, nil
}

// ListFavorites returns the user's favorite events, most recently added first.
func (s *favoriteService) ListFavorites(ctx context.Context, p domain.Principal) ([]*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	ids, err := s.favoriteRepo.ListEventIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.EventListing{}, nil
	}
	events, err := listEventsWhere(ctx, s.eventRepo, domain.Predicate{Kind: domain.PredEventIn, IDs: ids})
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.EventListing, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}
	out := make([]*domain.EventListing, 0, len(events))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}
