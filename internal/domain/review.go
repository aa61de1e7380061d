package domain

import (
	"context"
	"time"
)

// LatestReviewsLimit caps the public review feed.
const LatestReviewsLimit = 50

// Review is a user's rating of an event. One per user per event.
type Review struct {
	ID        int64
	EventID   int64
	UserID    int64
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Validate checks the row-level invariants of a review.
func (r *Review) Validate() error {
	if r.Rating < 1 || r.Rating > 5 {
		return NewValidationError("rating must be between 1 and 5")
	}
	return nil
}

// ReviewView is a review joined with its event title and author name.
type ReviewView struct {
	ID         int64
	EventID    int64
	EventSlug  string
	EventTitle string
	UserID     int64
	Username   string
	Rating     int
	Comment    string
	CreatedAt  time.Time
}

// ReviewInput is the data accepted when posting a review.
type ReviewInput struct {
	Rating  int
	Comment string
}

// ReviewRepository defines the interface for review storage
type ReviewRepository interface {
	// Create returns ErrAlreadyExists when the user already reviewed the event.
	Create(ctx context.Context, r *Review) error
	GetView(ctx context.Context, id int64) (*ReviewView, error)
	// ListLatest returns the newest reviews, optionally for one event slug.
	ListLatest(ctx context.Context, eventSlug string, limit int) ([]*ReviewView, error)
	ListByEvent(ctx context.Context, eventID int64) ([]*ReviewView, error)
}

// ReviewService defines the review feed and posting.
type ReviewService interface {
	ListLatest(ctx context.Context, eventSlug string) ([]*ReviewView, error)
	AddReview(ctx context.Context, p Principal, eventSlug string, in ReviewInput) (*ReviewView, error)
}
