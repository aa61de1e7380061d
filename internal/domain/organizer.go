package domain

import (
	"context"
	"time"
)

// Organizer is a group that runs events.
// swagger:model Organizer
type Organizer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	Website      string    `json:"website"`
	ContactEmail string    `json:"contact_email"`
	Phone        string    `json:"phone"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OrganizerMembership grants a user management rights over an organizer.
type OrganizerMembership struct {
	OrganizerID int64     `json:"organizer_id"`
	UserID      int64     `json:"user_id"`
	Role        string    `json:"role"`
	IsOwner     bool      `json:"is_owner"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrganizerDetail is an organizer with its events ordered by start time.
type OrganizerDetail struct {
	Organizer *Organizer
	Events    []*EventListing
}

// ManageTarget identifies what a principal wants to mutate.
// When Event is set its organizer is authoritative and OrganizerID is ignored.
type ManageTarget struct {
	OrganizerID *int64
	Event       *Event
}

// ForOrganizer targets an organizer by id.
func ForOrganizer(id int64) ManageTarget { return ManageTarget{OrganizerID: &id} }

// ForEvent targets an existing event.
func ForEvent(e *Event) ManageTarget { return ManageTarget{Event: e} }

// AccessPolicy decides whether a principal may mutate organizer-owned resources.
type AccessPolicy interface {
	// CanManage reports the decision; the error carries storage failures only.
	CanManage(ctx context.Context, p Principal, t ManageTarget) (bool, error)
	// CanCurate is the role-only gate for shared directories such as venues and categories.
	CanCurate(p Principal) bool
	// AllowedOrganizers returns the organizers p may manage, or all=true for elevated principals.
	// Principals without a managing role get ErrNoAccess.
	AllowedOrganizers(ctx context.Context, p Principal) (ids []int64, all bool, err error)
}

// OrganizerRepository defines the interface for organizer storage
type OrganizerRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]*Organizer, error)
	GetByID(ctx context.Context, id int64) (*Organizer, error)
	GetBySlug(ctx context.Context, slug string) (*Organizer, error)
}

// MembershipRepository reads organizer memberships.
type MembershipRepository interface {
	Exists(ctx context.Context, userID, organizerID int64) (bool, error)
	OrganizerIDsForUser(ctx context.Context, userID int64) ([]int64, error)
}

// OrganizerService defines the organizer directory.
type OrganizerService interface {
	ListOrganizers(ctx context.Context, params PaginationParams) (*Page[*Organizer], error)
	GetOrganizer(ctx context.Context, slug string) (*OrganizerDetail, error)
}
