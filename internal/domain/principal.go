package domain

import (
	"context"
	"strings"
)

// Role is the profile role of a user.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleStaff     Role = "staff"
)

// ParseRole maps a stored role label to a Role. Unknown or empty labels yield "".
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser
	case RoleOrganizer:
		return RoleOrganizer
	case RoleStaff:
		return RoleStaff
	}
	return ""
}

// ManagesEvents reports whether the role may manage organizer resources at all.
func (r Role) ManagesEvents() bool {
	return r == RoleOrganizer || r == RoleStaff
}

// Principal is the actor behind a request: Anonymous or Authenticated.
type Principal interface {
	isPrincipal()
}

// Anonymous is a request without credentials.
type Anonymous struct{}

// Authenticated is a request made by a known, active user.
type Authenticated struct {
	UserID     int64
	Username   string
	IsElevated bool // staff or superuser
	Role       Role
}

func (Anonymous) isPrincipal()     {}
func (Authenticated) isPrincipal() {}

// NewPrincipal builds the principal for a user row and its optional profile.
// A missing profile leaves the role empty.
func NewPrincipal(user *User, profile *UserProfile) Principal {
	if user == nil || !user.IsActive {
		return Anonymous{}
	}
	p := Authenticated{
		UserID:     user.ID,
		Username:   user.Username,
		IsElevated: user.IsStaff || user.IsSuperuser,
	}
	if profile != nil {
		p.Role = ParseRole(string(profile.Role))
	}
	return p
}

// UserIDOf returns the user id of an authenticated principal.
func UserIDOf(p Principal) (int64, bool) {
	if a, ok := p.(Authenticated); ok {
		return a.UserID, true
	}
	return 0, false
}

// PrincipalLoader resolves the principal for an authenticated user id.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID int64) (Principal, error)
}
