package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const (
	minPasswordLen = 8
	maxUsernameLen = 150
)

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

// AuthConfig holds token lifetimes and the public origin used in emailed links.
type AuthConfig struct {
	AccessTokenTTL time.Duration
	VerifyTokenTTL time.Duration
	PublicBaseURL  string
}

type authService struct {
	userRepo       domain.UserRepository
	hasher         domain.PasswordHasher
	issuer         domain.TokenIssuer
	verifier       domain.TokenVerifier
	emailService   domain.EmailService
	throttle       *LoginThrottle
	cfg            AuthConfig
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAuthService creates an AuthService with the given repository, auth ports and throttle.
func NewAuthService(userRepo domain.UserRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	emailService domain.EmailService,
	throttle *LoginThrottle,
	cfg AuthConfig,
	logger *slog.Logger,
	timeout time.Duration,
) domain.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		userRepo:       userRepo,
		hasher:         hasher,
		issuer:         issuer,
		verifier:       verifier,
		emailService:   emailService,
		throttle:       throttle,
		cfg:            cfg,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *authService) Register(ctx context.Context, in domain.RegisterInput) (*domain.RegisterResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	verr := &domain.ValidationError{}
	switch {
	case username == "":
		verr.Add("username is required")
	case len([]rune(username)) > maxUsernameLen:
		verr.Add(fmt.Sprintf("username must be at most %d characters", maxUsernameLen))
	case !usernameRegexp.MatchString(username):
		verr.Add("username may contain only letters, digits and @/./+/-/_")
	}
	if !emailRegexp.MatchString(email) {
		verr.Add("invalid email format")
	}
	if len(in.Password) < minPasswordLen {
		verr.Add(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		verr.Add("username already taken")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	taken, err := s.userRepo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		verr.Add("email already registered")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		IsActive:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("username already taken")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	profile := &domain.UserProfile{UserID: user.ID, Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now}
	if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return &domain.RegisterResult{User: user, EmailSent: s.sendVerification(ctx, user)}, nil
}

// sendVerification reports whether the email went out. Failures are logged only.
func (s *authService) sendVerification(ctx context.Context, user *domain.User) bool {
	if s.emailService == nil {
		return false
	}
	token, err := s.issuer.Issue(user.ID, domain.TokenPurposeVerifyEmail, s.cfg.VerifyTokenTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "issue verification token", "user_id", user.ID, "err", err)
		return false
	}
	data := &domain.VerifyEmailData{
		Email:          user.Email,
		Username:       user.Username,
		VerifyURL:      strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/auth/verify/" + token,
		ExpiresInHours: int(s.cfg.VerifyTokenTTL / time.Hour),
	}
	if err := s.emailService.SendVerifyEmail(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "send verification email", "user_id", user.ID, "err", err)
		return false
	}
	return true
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := s.verifier.Verify(token, domain.TokenPurposeVerifyEmail)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if err := s.userRepo.Activate(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, fmt.Errorf("activate user: %w", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// Login checks the throttle first. Wrong credentials count as a failed attempt;
// a correct password on an unverified account does not.
func (s *authService) Login(ctx context.Context, clientAddr, username, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.throttle.Check(ctx, clientAddr); err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return "", nil, fmt.Errorf("get user: %w", err)
		}
		return "", nil, s.failLogin(ctx, clientAddr)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.PasswordSalt, password); err != nil {
		return "", nil, s.failLogin(ctx, clientAddr)
	}
	if !user.IsActive {
		return "", nil, domain.ErrInactiveAccount
	}

	if err := s.throttle.Reset(ctx, clientAddr); err != nil {
		s.logger.WarnContext(ctx, "reset login attempts", "err", err)
	}
	token, err := s.issuer.Issue(user.ID, domain.TokenPurposeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) failLogin(ctx context.Context, clientAddr string) error {
	if err := s.throttle.Fail(ctx, clientAddr); err != nil {
		return err
	}
	return domain.ErrInvalidCredentials
}
