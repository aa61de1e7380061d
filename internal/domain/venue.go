package domain

import (
	"context"
	"time"
)

// City groups venues for the city filter.
type City struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Country string `json:"country"`
}

// DefaultCountry is used for cities created without a country.
const DefaultCountry = "Kazakhstan"

// Venue is a place where events happen.
// swagger:model Venue
type Venue struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	CityID      int64     `json:"city_id"`
	Address     string    `json:"address"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	MapURL      string    `json:"map_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the row-level invariants of a venue.
func (v *Venue) Validate() error {
	verr := &ValidationError{}
	if v.Name == "" {
		verr.Add("name is required")
	}
	if len([]rune(v.Name)) > 200 {
		verr.Add("name must be at most 200 characters")
	}
	if v.Slug == "" {
		verr.Add("slug is required")
	}
	if v.CityID == 0 {
		verr.Add("city is required")
	}
	if v.Address == "" {
		verr.Add("address is required")
	}
	if v.Capacity < 0 {
		verr.Add("capacity must be greater than or equal to 0")
	}
	return verr.OrNil()
}

// VenueView is a venue with its city.
type VenueView struct {
	Venue
	City *City
}

// VenueDetail is a venue with its events ordered by start time.
type VenueDetail struct {
	Venue  *VenueView
	Events []*EventListing
}

// VenueInput is the data accepted when creating or updating a venue.
// Nil fields are left unchanged on update.
type VenueInput struct {
	Name        *string
	Slug        *string
	CitySlug    *string
	Address     *string
	Capacity    *int
	Description *string
	MapURL      *string
}

// CityRepository defines the interface for city storage
type CityRepository interface {
	GetBySlug(ctx context.Context, slug string) (*City, error)
}

// VenueRepository defines the interface for venue storage
type VenueRepository interface {
	Count(ctx context.Context) (int, error)
	// List returns venues ordered by name. A zero limit returns every venue.
	List(ctx context.Context, limit, offset int) ([]*VenueView, error)
	GetByID(ctx context.Context, id int64) (*VenueView, error)
	GetBySlug(ctx context.Context, slug string) (*VenueView, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, v *Venue) error
	Update(ctx context.Context, v *Venue) error
	Delete(ctx context.Context, id int64) error
}

// VenueService defines the venue directory and its curation.
type VenueService interface {
	ListVenues(ctx context.Context, params PaginationParams) (*Page[*VenueView], error)
	AllVenues(ctx context.Context) ([]*VenueView, error)
	GetVenue(ctx context.Context, slug string) (*VenueDetail, error)
	CreateVenue(ctx context.Context, p Principal, in VenueInput) (*VenueView, error)
	UpdateVenue(ctx context.Context, p Principal, slug string, in VenueInput) (*VenueView, error)
	DeleteVenue(ctx context.Context, p Principal, slug string) error
}
