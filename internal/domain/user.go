package domain

import (
	"context"
	"time"
)

// User represents a registered account.
// swagger:model User
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserProfile carries the role and contact details of a user.
type UserProfile struct {
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	CityID    *int64    `json:"city_id,omitempty"`
	CitySlug  string    `json:"city,omitempty"`
	Phone     string    `json:"phone"`
	Bio       string    `json:"bio"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Account is a user together with its profile, which may be nil.
type Account struct {
	User    *User
	Profile *UserProfile
}

// RegisterInput is the data accepted at sign-up.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterResult reports the created user and whether the verification email went out.
type RegisterResult struct {
	User      *User
	EmailSent bool
}

// UpdateAccountInput holds optional profile changes; nil fields are left unchanged.
type UpdateAccountInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Bio       *string
	// CitySlug set to "" clears the city.
	CitySlug *string
}

// TokenPurpose distinguishes access tokens from single-use links.
type TokenPurpose string

const (
	TokenPurposeAccess      TokenPurpose = "access"
	TokenPurposeVerifyEmail TokenPurpose = "verify_email"
)

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues signed tokens for a user.
type TokenIssuer interface {
	Issue(userID int64, purpose TokenPurpose, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token of the given purpose and returns its user ID.
type TokenVerifier interface {
	Verify(token string, purpose TokenPurpose) (userID int64, err error)
}

// AttemptStore counts failed login attempts per key with expiry.
type AttemptStore interface {
	Get(ctx context.Context, key string) (int, error)
	// Incr adds one attempt and (re)sets the key's time to live.
	Incr(ctx context.Context, key string, ttl time.Duration) (int, error)
	Reset(ctx context.Context, key string) error
}

// UserRepository defines the interface for user storage
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// EmailTaken reports whether another user (not excludeID) has the email, case-insensitively.
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	Update(ctx context.Context, user *User) error
	Activate(ctx context.Context, id int64) error
	// GetProfile returns ErrNotFound when the user has no profile row.
	GetProfile(ctx context.Context, userID int64) (*UserProfile, error)
	UpsertProfile(ctx context.Context, profile *UserProfile) error
}

// AuthService defines registration, email verification and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) (*User, error)
	Login(ctx context.Context, clientAddr, username, password string) (token string, user *User, err error)
}

// UserService defines profile access for the current principal.
type UserService interface {
	PrincipalLoader
	GetAccount(ctx context.Context, p Principal) (*Account, error)
	UpdateAccount(ctx context.Context, p Principal, in UpdateAccountInput) (*Account, error)
}
