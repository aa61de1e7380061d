// Package access decides which principals may mutate organizer-owned resources.
package access

import (
	"context"
	"fmt"

	"eventhub/internal/domain"
)

// Resolver implements domain.AccessPolicy over organizer memberships.
type Resolver struct {
	memberships domain.MembershipRepository
}

// NewResolver returns a Resolver reading memberships from repo.
func NewResolver(repo domain.MembershipRepository) *Resolver {
	return &Resolver{memberships: repo}
}

var _ domain.AccessPolicy = (*Resolver)(nil)

// CanManage reports whether p may create, update or delete resources of the target's organizer.
// An event's own organizer wins over t.OrganizerID.
func (r *Resolver) CanManage(ctx context.Context, p domain.Principal, t domain.ManageTarget) (bool, error) {
	user, ok := p.(domain.Authenticated)
	if !ok {
		return false, nil
	}
	if user.IsElevated {
		return true, nil
	}
	if !user.Role.ManagesEvents() {
		return false, nil
	}

	var organizerID int64
	switch {
	case t.Event != nil:
		organizerID = t.Event.OrganizerID
	case t.OrganizerID != nil:
		organizerID = *t.OrganizerID
	default:
		return false, nil
	}
	if organizerID == 0 {
		return false, nil
	}

	ok, err := r.memberships.Exists(ctx, user.UserID, organizerID)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return ok, nil
}

// CanCurate reports whether p holds a managing role, without looking at memberships.
func (r *Resolver) CanCurate(p domain.Principal) bool {
	user, ok := p.(domain.Authenticated)
	if !ok {
		return false
	}
	return user.IsElevated || user.Role.ManagesEvents()
}

// AllowedOrganizers returns p's membership set. Elevated principals get all=true.
func (r *Resolver) AllowedOrganizers(ctx context.Context, p domain.Principal) ([]int64, bool, error) {
	user, ok := p.(domain.Authenticated)
	if !ok {
		return nil, false, domain.ErrNoAccess
	}
	if user.IsElevated {
		return nil, true, nil
	}
	if !user.Role.ManagesEvents() {
		return nil, false, domain.ErrNoAccess
	}
	ids, err := r.memberships.OrganizerIDsForUser(ctx, user.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("list memberships: %w", err)
	}
	if ids == nil {
		ids = []int64{}
	}
	return ids, false, nil
}
