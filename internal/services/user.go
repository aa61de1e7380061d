package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

const (
	maxNameLen  = 150
	maxPhoneLen = 30
)

type userService struct {
	userRepo       domain.UserRepository
	cityRepo       domain.CityRepository
	contextTimeout time.Duration
}

// NewUserService creates a UserService for principal loading and profile edits.
func NewUserService(userRepo domain.UserRepository, cityRepo domain.CityRepository, timeout time.Duration) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		cityRepo:       cityRepo,
		contextTimeout: timeout,
	}
}

// LoadPrincipal returns Anonymous for unknown or inactive users.
func (s *userService) LoadPrincipal(ctx context.Context, userID int64) (domain.Principal, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Anonymous{}, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("get profile: %w", err)
		}
		profile = nil
	}
	return domain.NewPrincipal(user, profile), nil
}

func (s *userService) GetAccount(ctx context.Context, p domain.Principal) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.account(ctx, p)
}

// account loads the user and creates the profile row on first access.
func (s *userService) account(ctx context.Context, p domain.Principal) (*domain.Account, error) {
	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	profile, err := s.userRepo.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		now := time.Now()
		profile = &domain.UserProfile{UserID: userID, Role: domain.RoleUser, CreatedAt: now, UpdatedAt: now}
		if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("create profile: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &domain.Account{User: user, Profile: profile}, nil
}

func (s *userService) UpdateAccount(ctx context.Context, p domain.Principal, in domain.UpdateAccountInput) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	acc, err := s.account(ctx, p)
	if err != nil {
		return nil, err
	}
	user, profile := acc.User, acc.Profile

	verr := &domain.ValidationError{}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if !emailRegexp.MatchString(email) {
			verr.Add("invalid email format")
		} else if !strings.EqualFold(email, user.Email) {
			taken, err := s.userRepo.EmailTaken(ctx, email, user.ID)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if taken {
				verr.Add("email already registered")
			}
		}
		user.Email = email
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
		if len([]rune(user.FirstName)) > maxNameLen {
			verr.Add(fmt.Sprintf("first_name must be at most %d characters", maxNameLen))
		}
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
		if len([]rune(user.LastName)) > maxNameLen {
			verr.Add(fmt.Sprintf("last_name must be at most %d characters", maxNameLen))
		}
	}
	if in.Phone != nil {
		profile.Phone = strings.TrimSpace(*in.Phone)
		if len([]rune(profile.Phone)) > maxPhoneLen {
			verr.Add(fmt.Sprintf("phone must be at most %d characters", maxPhoneLen))
		}
	}
	if in.Bio != nil {
		profile.Bio = *in.Bio
	}
	if in.CitySlug != nil {
		slug := strings.TrimSpace(*in.CitySlug)
		if slug == "" {
			profile.CityID = nil
			profile.CitySlug = ""
		} else {
			city, err := s.cityRepo.GetBySlug(ctx, slug)
			switch {
			case err == nil:
				profile.CityID = &city.ID
				profile.CitySlug = city.Slug
			case errors.Is(err, domain.ErrNotFound):
				verr.Add("city does not exist")
			default:
				return nil, fmt.Errorf("get city: %w", err)
			}
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	user.UpdatedAt = now
	profile.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &domain.Account{User: user, Profile: profile}, nil
}
