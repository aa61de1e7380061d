package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const msgBadDateTime = "start_at and end_at must be ISO datetime."

type eventService struct {
	eventRepo      domain.EventRepository
	venueRepo      domain.VenueRepository
	organizerRepo  domain.OrganizerRepository
	reviewRepo     domain.ReviewRepository
	access         domain.AccessPolicy
	calendar       domain.CalendarExporter
	location       *time.Location
	contextTimeout time.Duration
}

// NewEventService returns an EventService. loc is the calendar zone used for
// the year filter and for timestamps submitted without an offset.
func NewEventService(eventRepo domain.EventRepository,
	venueRepo domain.VenueRepository,
	organizerRepo domain.OrganizerRepository,
	reviewRepo domain.ReviewRepository,
	access domain.AccessPolicy,
	calendar domain.CalendarExporter,
	loc *time.Location,
	timeout time.Duration,
) domain.EventService {
	if loc == nil {
		loc = time.UTC
	}
	return &eventService{
		eventRepo:      eventRepo,
		venueRepo:      venueRepo,
		organizerRepo:  organizerRepo,
		reviewRepo:     reviewRepo,
		access:         access,
		calendar:       calendar,
		location:       loc,
		contextTimeout: timeout,
	}
}

func (s *eventService) ListPublicEvents(ctx context.Context, filters domain.EventFilters, params domain.PaginationParams) (*domain.Page[*domain.EventListing], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.listEvents(ctx, domain.ComposeEventQuery(domain.PublicScope(), filters), params)
}

func (s *eventService) ListOwnedEvents(ctx context.Context, p domain.Principal, filters domain.EventFilters, params domain.PaginationParams) (*domain.Page[*domain.EventListing], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ids, all, err := s.access.AllowedOrganizers(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrNoAccess) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve organizers: %w", err)
	}
	scope := domain.OwnedScope(ids)
	if all {
		scope = domain.AllScope()
	}
	return s.listEvents(ctx, domain.ComposeEventQuery(scope, filters), params)
}

func (s *eventService) listEvents(ctx context.Context, q domain.EventQuery, params domain.PaginationParams) (*domain.Page[*domain.EventListing], error) {
	q = q.InZone(s.location)
	page, err := pageOf(ctx, params,
		func(ctx context.Context) (int, error) { return s.eventRepo.Count(ctx, q) },
		func(ctx context.Context, limit, offset int) ([]*domain.EventListing, error) {
			return s.eventRepo.List(ctx, q, limit, offset)
		})
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return page, nil
}

func (s *eventService) GetEvent(ctx context.Context, slug string) (*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.getListing(ctx, slug)
}

func (s *eventService) getListing(ctx context.Context, slug string) (*domain.EventListing, error) {
	listing, err := s.eventRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return listing, nil
}

func (s *eventService) GetEventDetail(ctx context.Context, p domain.Principal, slug string) (*domain.EventDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listing, err := s.getListing(ctx, slug)
	if err != nil {
		return nil, err
	}
	canManage, err := s.access.CanManage(ctx, p, domain.ForEvent(&listing.Event))
	if err != nil {
		return nil, fmt.Errorf("check access: %w", err)
	}
	schedules, err := s.eventRepo.ListSchedules(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	images, err := s.eventRepo.ListImages(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	reviews, err := s.reviewRepo.ListByEvent(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if schedules == nil {
		schedules = []*domain.EventSchedule{}
	}
	if images == nil {
		images = []*domain.EventImage{}
	}
	if reviews == nil {
		reviews = []*domain.ReviewView{}
	}
	return &domain.EventDetail{
		Event:     listing,
		Schedules: schedules,
		Images:    images,
		Reviews:   reviews,
		CanManage: canManage,
	}, nil
}

// CreateEvent checks access before it parses timestamps or validates the row.
func (s *eventService) CreateEvent(ctx context.Context, p domain.Principal, in domain.CreateEventInput) (*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireManage(ctx, p, domain.ForOrganizer(in.OrganizerID)); err != nil {
		return nil, err
	}

	startAt, okStart := parseDateTime(in.StartAt, s.location)
	endAt, okEnd := parseDateTime(in.EndAt, s.location)
	if !okStart || !okEnd {
		return nil, domain.NewValidationError(msgBadDateTime)
	}

	verr := &domain.ValidationError{}
	event := &domain.Event{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		StartAt:      startAt,
		EndAt:        endAt,
		VenueID:      in.VenueID,
		OrganizerID:  in.OrganizerID,
		Status:       domain.EventStatusDraft,
		IsFeatured:   in.IsFeatured,
		MaxAttendees: in.MaxAttendees,
	}
	if in.Status != "" {
		event.Status = domain.EventStatus(in.Status)
	}
	if in.PriceFrom != "" {
		price, err := domain.ParsePrice(in.PriceFrom)
		if err != nil {
			verr.Add(err.Error())
		}
		event.PriceFrom = price
	}

	if slug := strings.TrimSpace(in.Slug); slug != "" {
		event.Slug = slug
		if err := claimSlug(ctx, slug, s.eventRepo.SlugExists, verr); err != nil {
			return nil, err
		}
	} else {
		slug, err := uniqueSlug(ctx, event.Title, s.eventRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		event.Slug = slug
	}

	if err := s.validateEvent(ctx, event, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	event.CreatedAt = now
	event.UpdatedAt = now
	if err := s.eventRepo.Create(ctx, event, in.CategoryIDs, in.TagIDs); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("slug already exists")
		}
		if errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.getListing(ctx, event.Slug)
}

func (s *eventService) UpdateEvent(ctx context.Context, p domain.Principal, slug string, in domain.UpdateEventInput) (*domain.EventListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listing, err := s.getListing(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, p, domain.ForEvent(&listing.Event)); err != nil {
		return nil, err
	}

	event := listing.Event
	verr := &domain.ValidationError{}
	if in.Title != nil {
		event.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		event.Description = *in.Description
	}
	if in.Status != nil {
		event.Status = domain.EventStatus(*in.Status)
	}
	if in.StartAt != nil || in.EndAt != nil {
		ok := true
		if in.StartAt != nil {
			event.StartAt, ok = parseDateTime(*in.StartAt, s.location)
		}
		if in.EndAt != nil && ok {
			event.EndAt, ok = parseDateTime(*in.EndAt, s.location)
		}
		if !ok {
			return nil, domain.NewValidationError(msgBadDateTime)
		}
	}
	if in.VenueID != nil {
		event.VenueID = *in.VenueID
	}
	if in.OrganizerID != nil && *in.OrganizerID != event.OrganizerID {
		// Moving an event requires rights over the new organizer as well.
		if err := s.requireManage(ctx, p, domain.ForOrganizer(*in.OrganizerID)); err != nil {
			return nil, err
		}
		event.OrganizerID = *in.OrganizerID
	}
	if in.PriceFrom != nil {
		price, err := domain.ParsePrice(*in.PriceFrom)
		if err != nil {
			verr.Add(err.Error())
		}
		event.PriceFrom = price
	}
	if in.IsFeatured != nil {
		event.IsFeatured = *in.IsFeatured
	}
	if in.MaxAttendees != nil {
		event.MaxAttendees = *in.MaxAttendees
	}

	if err := s.validateEvent(ctx, &event, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	event.UpdatedAt = time.Now()
	if err := s.eventRepo.Update(ctx, &event); err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.getListing(ctx, event.Slug)
}

func (s *eventService) DeleteEvent(ctx context.Context, p domain.Principal, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listing, err := s.getListing(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.requireManage(ctx, p, domain.ForEvent(&listing.Event)); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(ctx, listing.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) ExportCalendar(ctx context.Context, slug string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	listing, err := s.getListing(ctx, slug)
	if err != nil {
		return nil, err
	}
	schedules, err := s.eventRepo.ListSchedules(ctx, listing.ID)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	out, err := s.calendar.Export(listing, schedules)
	if err != nil {
		return nil, fmt.Errorf("export calendar: %w", err)
	}
	return out, nil
}

func (s *eventService) requireManage(ctx context.Context, p domain.Principal, t domain.ManageTarget) error {
	ok, err := s.access.CanManage(ctx, p, t)
	if err != nil {
		return fmt.Errorf("check access: %w", err)
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

// validateEvent runs row validation and checks that the venue and organizer exist.
func (s *eventService) validateEvent(ctx context.Context, e *domain.Event, verr *domain.ValidationError) error {
	addValidation(verr, e.Validate())
	if _, err := s.venueRepo.GetByID(ctx, e.VenueID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get venue: %w", err)
		}
		verr.Add("venue does not exist")
	}
	if _, err := s.organizerRepo.GetByID(ctx, e.OrganizerID); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("get organizer: %w", err)
		}
		verr.Add("organizer does not exist")
	}
	return nil
}
