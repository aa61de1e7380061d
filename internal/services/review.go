package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type reviewService struct {
	reviewRepo     domain.ReviewRepository
	eventRepo      domain.EventRepository
	contextTimeout time.Duration
}

// NewReviewService returns the review feed and posting service.
func NewReviewService(reviewRepo domain.ReviewRepository, eventRepo domain.EventRepository, timeout time.Duration) domain.ReviewService {
	return &reviewService{
		reviewRepo:     reviewRepo,
		eventRepo:      eventRepo,
		contextTimeout: timeout,
	}
}

func (s *reviewService) ListLatest(ctx context.Context, eventSlug string) ([]*domain.ReviewView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	reviews, err := s.reviewRepo.ListLatest(ctx, strings.TrimSpace(eventSlug), domain.LatestReviewsLimit)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	if reviews == nil {
		reviews = []*domain.ReviewView{}
	}
	return reviews, nil
}

func (s *reviewService) AddReview(ctx context.Context, p domain.Principal, eventSlug string, in domain.ReviewInput) (*domain.ReviewView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	event, err := s.eventRepo.GetBySlug(ctx, eventSlug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	r := &domain.Review{
		EventID:   event.ID,
		UserID:    userID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: time.Now(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := s.reviewRepo.Create(ctx, r); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("you have already reviewed this event")
		}
		return nil, fmt.Errorf("create review: %w", err)
	}
	view, err := s.reviewRepo.GetView(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("get review: %w", err)
	}
	return view, nil
}
