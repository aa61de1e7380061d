package controllers

import (
	"math"
	"strconv"
	"time"

	"eventhub/internal/domain"
)

// rating renders with exactly one decimal, e.g. 4.0.
type rating float64

func (r rating) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(r), 'f', 1, 64)), nil
}

func isoTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// EventJSON is the public representation of an event.
type EventJSON struct {
	ID           int64              `json:"id"`
	Title        string             `json:"title"`
	Slug         string             `json:"slug"`
	StartAt      string             `json:"start_at"`
	EndAt        string             `json:"end_at"`
	Venue        string             `json:"venue"`
	Organizer    string             `json:"organizer"`
	Categories   []string           `json:"categories"`
	Tags         []string           `json:"tags"`
	PriceFrom    string             `json:"price_from"`
	Status       domain.EventStatus `json:"status"`
	AvgRating    *rating            `json:"avg_rating" swaggertype:"number"`
	ReviewsCount int                `json:"reviews_count"`
}

func toEventJSON(e *domain.EventListing) EventJSON {
	out := EventJSON{
		ID:           e.ID,
		Title:        e.Title,
		Slug:         e.Slug,
		StartAt:      isoTime(e.StartAt),
		EndAt:        isoTime(e.EndAt),
		Venue:        e.VenueName,
		Organizer:    e.OrganizerName,
		Categories:   make([]string, 0, len(e.Categories)),
		Tags:         make([]string, 0, len(e.Tags)),
		PriceFrom:    e.PriceFrom.String(),
		Status:       e.Status,
		ReviewsCount: e.ReviewsCount,
	}
	for _, c := range e.Categories {
		out.Categories = append(out.Categories, c.Name)
	}
	for _, t := range e.Tags {
		out.Tags = append(out.Tags, t.Name)
	}
	if e.AvgRating != nil {
		r := rating(math.Round(*e.AvgRating*10) / 10)
		out.AvgRating = &r
	}
	return out
}

func toEventsJSON(events []*domain.EventListing) []EventJSON {
	out := make([]EventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, toEventJSON(e))
	}
	return out
}

// ReviewJSON is a review in feeds and on event pages.
type ReviewJSON struct {
	ID        int64  `json:"id"`
	Event     string `json:"event"`
	User      string `json:"user"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"created_at"`
}

func toReviewsJSON(reviews []*domain.ReviewView) []ReviewJSON {
	out := make([]ReviewJSON, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, ReviewJSON{
			ID:        r.ID,
			Event:     r.EventTitle,
			User:      r.Username,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: isoTime(r.CreatedAt),
		})
	}
	return out
}

// ScheduleJSON is one slot of an event.
type ScheduleJSON struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
	Note    string `json:"note"`
}

// ImageJSON is one gallery image.
type ImageJSON struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

// EventDetailJSON is the event page payload.
type EventDetailJSON struct {
	EventJSON
	Description  string         `json:"description"`
	IsFeatured   bool           `json:"is_featured"`
	MaxAttendees int            `json:"max_attendees"`
	Schedules    []ScheduleJSON `json:"schedules"`
	Images       []ImageJSON    `json:"images"`
	Reviews      []ReviewJSON   `json:"reviews"`
	CanManage    bool           `json:"can_manage"`
}

func toEventDetailJSON(d *domain.EventDetail) EventDetailJSON {
	out := EventDetailJSON{
		EventJSON:    toEventJSON(d.Event),
		Description:  d.Event.Description,
		IsFeatured:   d.Event.IsFeatured,
		MaxAttendees: d.Event.MaxAttendees,
		Schedules:    make([]ScheduleJSON, 0, len(d.Schedules)),
		Images:       make([]ImageJSON, 0, len(d.Images)),
		Reviews:      toReviewsJSON(d.Reviews),
		CanManage:    d.CanManage,
	}
	for _, s := range d.Schedules {
		out.Schedules = append(out.Schedules, ScheduleJSON{StartAt: isoTime(s.StartAt), EndAt: isoTime(s.EndAt), Note: s.Note})
	}
	for _, img := range d.Images {
		out.Images = append(out.Images, ImageJSON{ImageURL: img.ImageURL, Caption: img.Caption})
	}
	return out
}

// VenueJSON is a venue with its city.
type VenueJSON struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Address     string       `json:"address"`
	Capacity    int          `json:"capacity"`
	Description string       `json:"description"`
	MapURL      string       `json:"map_url"`
	City        *domain.City `json:"city"`
}

func toVenueJSON(v *domain.VenueView) VenueJSON {
	return VenueJSON{
		ID:          v.ID,
		Name:        v.Name,
		Slug:        v.Slug,
		Address:     v.Address,
		Capacity:    v.Capacity,
		Description: v.Description,
		MapURL:      v.MapURL,
		City:        v.City,
	}
}

func toVenuesJSON(venues []*domain.VenueView) []VenueJSON {
	out := make([]VenueJSON, 0, len(venues))
	for _, v := range venues {
		out = append(out, toVenueJSON(v))
	}
	return out
}

// TicketJSON is a ticket held by the current user.
type TicketJSON struct {
	Code       string              `json:"code"`
	Status     domain.TicketStatus `json:"status"`
	TicketType string              `json:"ticket_type"`
	Price      string              `json:"price"`
	Event      string              `json:"event"`
	EventSlug  string              `json:"event_slug"`
	StartAt    string              `json:"start_at"`
	Venue      string              `json:"venue"`
	CreatedAt  string              `json:"created_at"`
}

func toTicketJSON(t *domain.TicketView) TicketJSON {
	return TicketJSON{
		Code:       t.Code,
		Status:     t.Status,
		TicketType: t.TicketType.Name,
		Price:      t.TicketType.Price.String(),
		Event:      t.EventTitle,
		EventSlug:  t.EventSlug,
		StartAt:    isoTime(t.EventStart),
		Venue:      t.VenueName,
		CreatedAt:  isoTime(t.CreatedAt),
	}
}

// AccountJSON is the current user with profile details.
type AccountJSON struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	IsActive  bool        `json:"is_active"`
	Role      domain.Role `json:"role"`
	City      string      `json:"city"`
	Phone     string      `json:"phone"`
	Bio       string      `json:"bio"`
}

func toAccountJSON(a *domain.Account) AccountJSON {
	out := AccountJSON{
		ID:        a.User.ID,
		Username:  a.User.Username,
		Email:     a.User.Email,
		FirstName: a.User.FirstName,
		LastName:  a.User.LastName,
		IsActive:  a.User.IsActive,
	}
	if a.Profile != nil {
		out.Role = a.Profile.Role
		out.City = a.Profile.CitySlug
		out.Phone = a.Profile.Phone
		out.Bio = a.Profile.Bio
	}
	return out
}
