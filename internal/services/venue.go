package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type venueService struct {
	venueRepo      domain.VenueRepository
	cityRepo       domain.CityRepository
	eventRepo      domain.EventRepository
	access         domain.AccessPolicy
	contextTimeout time.Duration
}

// NewVenueService returns the venue directory service. Mutations require CanCurate.
func NewVenueService(venueRepo domain.VenueRepository, cityRepo domain.CityRepository, eventRepo domain.EventRepository, access domain.AccessPolicy, timeout time.Duration) domain.VenueService {
	return &venueService{
		venueRepo:      venueRepo,
		cityRepo:       cityRepo,
		eventRepo:      eventRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *venueService) ListVenues(ctx context.Context, params domain.PaginationParams) (*domain.Page[*domain.VenueView], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page, err := pageOf(ctx, params, s.venueRepo.Count, s.venueRepo.List)
	if err != nil {
		return nil, fmt.Errorf("venues %w", err)
	}
	return page, nil
}

func (s *venueService) AllVenues(ctx context.Context) ([]*domain.VenueView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venues, err := s.venueRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	if venues == nil {
		venues = []*domain.VenueView{}
	}
	return venues, nil
}

func (s *venueService) GetVenue(ctx context.Context, slug string) (*domain.VenueDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	venue, err := s.getVenue(ctx, slug)
	if err != nil {
		return nil, err
	}
	events, err := listEventsWhere(ctx, s.eventRepo, domain.Predicate{Kind: domain.PredVenue, IDs: []int64{venue.ID}})
	if err != nil {
		return nil, err
	}
	return &domain.VenueDetail{Venue: venue, Events: events}, nil
}

func (s *venueService) getVenue(ctx context.Context, slug string) (*domain.VenueView, error) {
	venue, err := s.venueRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get venue: %w", err)
	}
	return venue, nil
}

func (s *venueService) CreateVenue(ctx context.Context, p domain.Principal, in domain.VenueInput) (*domain.VenueView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return nil, domain.ErrForbidden
	}

	verr := &domain.ValidationError{}
	v := &domain.Venue{}
	if err := s.apply(ctx, v, in, verr); err != nil {
		return nil, err
	}
	if slug := trimmed(in.Slug); slug != "" {
		v.Slug = slug
		if err := claimSlug(ctx, slug, s.venueRepo.SlugExists, verr); err != nil {
			return nil, err
		}
	} else {
		slug, err := uniqueSlug(ctx, v.Name, s.venueRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		v.Slug = slug
	}
	addValidation(verr, v.Validate())
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.venueRepo.Create(ctx, v); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("slug already exists")
		}
		return nil, fmt.Errorf("create venue: %w", err)
	}
	return s.getVenue(ctx, v.Slug)
}

func (s *venueService) UpdateVenue(ctx context.Context, p domain.Principal, slug string, in domain.VenueInput) (*domain.VenueView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return nil, domain.ErrForbidden
	}
	current, err := s.getVenue(ctx, slug)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	v := current.Venue
	if err := s.apply(ctx, &v, in, verr); err != nil {
		return nil, err
	}
	if in.Slug != nil {
		next := trimmed(in.Slug)
		if next != v.Slug {
			v.Slug = next
			if next != "" {
				if err := claimSlug(ctx, next, s.venueRepo.SlugExists, verr); err != nil {
					return nil, err
				}
			}
		}
	}
	addValidation(verr, v.Validate())
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	v.UpdatedAt = time.Now()
	if err := s.venueRepo.Update(ctx, &v); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("slug already exists")
		}
		return nil, fmt.Errorf("update venue: %w", err)
	}
	return s.getVenue(ctx, v.Slug)
}

func (s *venueService) DeleteVenue(ctx context.Context, p domain.Principal, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return domain.ErrForbidden
	}
	v, err := s.getVenue(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.venueRepo.Delete(ctx, v.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return err
		}
		return fmt.Errorf("delete venue: %w", err)
	}
	return nil
}

// apply copies the non-nil fields of in onto v and resolves the city slug.
func (s *venueService) apply(ctx context.Context, v *domain.Venue, in domain.VenueInput, verr *domain.ValidationError) error {
	if in.Name != nil {
		v.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		v.Address = strings.TrimSpace(*in.Address)
	}
	if in.Capacity != nil {
		v.Capacity = *in.Capacity
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.MapURL != nil {
		v.MapURL = strings.TrimSpace(*in.MapURL)
	}
	if in.CitySlug != nil {
		city, err := s.cityRepo.GetBySlug(ctx, trimmed(in.CitySlug))
		switch {
		case err == nil:
			v.CityID = city.ID
		case errors.Is(err, domain.ErrNotFound):
			verr.Add("city does not exist")
		default:
			return fmt.Errorf("get city: %w", err)
		}
	}
	return nil
}

// addValidation folds the messages of a *ValidationError into verr.
func addValidation(verr *domain.ValidationError, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		for _, m := range ve.Messages {
			verr.Add(m)
		}
	}
}
