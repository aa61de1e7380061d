package domain

import (
	"context"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusDraft, EventStatusPublished, EventStatusCancelled:
		return true
	}
	return false
}

// Event is the stored event row.
type Event struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Slug         string      `json:"slug"`
	Description  string      `json:"description"`
	StartAt      time.Time   `json:"start_at"`
	EndAt        time.Time   `json:"end_at"`
	VenueID      int64       `json:"venue_id"`
	OrganizerID  int64       `json:"organizer_id"`
	Status       EventStatus `json:"status"`
	PriceFrom    Price       `json:"price_from"`
	IsFeatured   bool        `json:"is_featured"`
	MaxAttendees int         `json:"max_attendees"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Validate checks the row-level invariants of an event.
func (e *Event) Validate() error {
	verr := &ValidationError{}
	if e.Title == "" {
		verr.Add("title is required")
	}
	if len([]rune(e.Title)) > 200 {
		verr.Add("title must be at most 200 characters")
	}
	if e.Slug == "" {
		verr.Add("slug is required")
	}
	if e.StartAt.IsZero() || e.EndAt.IsZero() {
		verr.Add("start_at and end_at are required")
	} else if e.EndAt.Before(e.StartAt) {
		verr.Add("end_at must not be earlier than start_at")
	}
	if !e.Status.Valid() {
		verr.Add("status must be one of draft, published, cancelled")
	}
	if e.PriceFrom < 0 {
		verr.Add("price_from must be greater than or equal to 0")
	}
	if e.MaxAttendees < 0 {
		verr.Add("max_attendees must be greater than or equal to 0")
	}
	return verr.OrNil()
}

// EventListing is an event joined with its venue, organizer, taxonomy and review aggregate.
type EventListing struct {
	Event
	VenueName     string
	CitySlug      string
	OrganizerName string
	Categories    []*Category
	Tags          []*Tag
	AvgRating     *float64
	ReviewsCount  int
}

// HasCategory reports whether the listing is linked to a category with the given slug.
func (l *EventListing) HasCategory(slug string) bool {
	for _, c := range l.Categories {
		if c.Slug == slug {
			return true
		}
	}
	return false
}

// EventSchedule is one dated slot within an event.
type EventSchedule struct {
	ID      int64     `json:"id"`
	EventID int64     `json:"event_id"`
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
	Note    string    `json:"note"`
}

// EventImage is a gallery image of an event.
type EventImage struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDetail bundles a listing with the data the event page shows.
type EventDetail struct {
	Event     *EventListing
	Schedules []*EventSchedule
	Images    []*EventImage
	Reviews   []*ReviewView
	CanManage bool
}

// CreateEventInput is the data accepted when creating an event.
// Timestamps and price arrive as text and are parsed after the access check.
type CreateEventInput struct {
	Title        string
	Slug         string
	Description  string
	StartAt      string
	EndAt        string
	VenueID      int64
	OrganizerID  int64
	Status       string
	PriceFrom    string
	IsFeatured   bool
	MaxAttendees int
	CategoryIDs  []int64
	TagIDs       []int64
}

// UpdateEventInput holds optional changes; nil fields are left unchanged.
type UpdateEventInput struct {
	Title        *string
	Description  *string
	Status       *string
	StartAt      *string
	EndAt        *string
	VenueID      *int64
	OrganizerID  *int64
	PriceFrom    *string
	IsFeatured   *bool
	MaxAttendees *int
}

// CalendarExporter renders an event as an iCalendar document.
type CalendarExporter interface {
	Export(e *EventListing, schedules []*EventSchedule) ([]byte, error)
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Count(ctx context.Context, q EventQuery) (int, error)
	// List returns listings matching q. A zero limit returns every match.
	List(ctx context.Context, q EventQuery, limit, offset int) ([]*EventListing, error)
	GetBySlug(ctx context.Context, slug string) (*EventListing, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Create inserts e with its category and tag links in one transaction.
	// An unknown link id is a ValidationError and nothing is stored.
	Create(ctx context.Context, e *Event, categoryIDs, tagIDs []int64) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int64) error
	ListSchedules(ctx context.Context, eventID int64) ([]*EventSchedule, error)
	ListImages(ctx context.Context, eventID int64) ([]*EventImage, error)
}

// EventService defines event listing and management.
type EventService interface {
	ListPublicEvents(ctx context.Context, filters EventFilters, params PaginationParams) (*Page[*EventListing], error)
	// ListOwnedEvents returns ErrNoAccess when the principal may not manage any organizer.
	ListOwnedEvents(ctx context.Context, p Principal, filters EventFilters, params PaginationParams) (*Page[*EventListing], error)
	GetEvent(ctx context.Context, slug string) (*EventListing, error)
	GetEventDetail(ctx context.Context, p Principal, slug string) (*EventDetail, error)
	CreateEvent(ctx context.Context, p Principal, in CreateEventInput) (*EventListing, error)
	UpdateEvent(ctx context.Context, p Principal, slug string, in UpdateEventInput) (*EventListing, error)
	DeleteEvent(ctx context.Context, p Principal, slug string) error
	ExportCalendar(ctx context.Context, slug string) ([]byte, error)
}
