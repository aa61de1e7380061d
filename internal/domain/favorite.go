package domain

import (
	"context"
	"time"
)

// Favorite is a user's bookmark of an event.
type Favorite struct {
	UserID    int64
	EventID   int64
	CreatedAt time.Time
}

// FavoriteRepository defines the interface for favorite storage
type FavoriteRepository interface {
	// Add returns false when the favorite already existed.
	Add(ctx context.Context, userID, eventID int64) (created bool, err error)
	Remove(ctx context.Context, userID, eventID int64) error
	// ListEventIDs returns the user's favorite event ids, newest first.
	ListEventIDs(ctx context.Context, userID int64) ([]int64, error)
}

// FavoriteService defines favorite toggling and listing.
type FavoriteService interface {
	Toggle(ctx context.Context, p Principal, eventSlug string) (favorited bool, err error)
	ListFavorites(ctx context.Context, p Principal) ([]*EventListing, error)
}
