package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"eventhub/internal/domain"
)

type categoryService struct {
	categoryRepo   domain.CategoryRepository
	tagRepo        domain.TagRepository
	eventRepo      domain.EventRepository
	access         domain.AccessPolicy
	contextTimeout time.Duration
}

// NewCategoryService returns the category and tag directory service.
func NewCategoryService(categoryRepo domain.CategoryRepository, tagRepo domain.TagRepository, eventRepo domain.EventRepository, access domain.AccessPolicy, timeout time.Duration) domain.CategoryService {
	return &categoryService{
		categoryRepo:   categoryRepo,
		tagRepo:        tagRepo,
		eventRepo:      eventRepo,
		access:         access,
		contextTimeout: timeout,
	}
}

func (s *categoryService) ListCategories(ctx context.Context, params domain.PaginationParams) (*domain.Page[*domain.Category], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page, err := pageOf(ctx, params, s.categoryRepo.Count, s.categoryRepo.List)
	if err != nil {
		return nil, fmt.Errorf("categories %w", err)
	}
	return page, nil
}

func (s *categoryService) AllCategories(ctx context.Context) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	categories, err := s.categoryRepo.List(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	if categories == nil {
		categories = []*domain.Category{}
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, slug string) (*domain.CategoryDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	c, err := s.getCategory(ctx, slug)
	if err != nil {
		return nil, err
	}
	events, err := listEventsWhere(ctx, s.eventRepo, domain.Predicate{Kind: domain.PredCategory, Text: c.Slug})
	if err != nil {
		return nil, err
	}
	return &domain.CategoryDetail{Category: c, Events: events}, nil
}

func (s *categoryService) getCategory(ctx context.Context, slug string) (*domain.Category, error) {
	c, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, p domain.Principal, in domain.CategoryInput) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return nil, domain.ErrForbidden
	}

	verr := &domain.ValidationError{}
	c := &domain.Category{Name: trimmed(in.Name)}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if slug := trimmed(in.Slug); slug != "" {
		c.Slug = slug
		if err := claimSlug(ctx, slug, s.categoryRepo.SlugExists, verr); err != nil {
			return nil, err
		}
	} else {
		slug, err := uniqueSlug(ctx, c.Name, s.categoryRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		c.Slug = slug
	}
	addValidation(verr, c.Validate())
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.categoryRepo.Create(ctx, c); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("category already exists")
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, p domain.Principal, slug string, in domain.CategoryInput) (*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return nil, domain.ErrForbidden
	}
	c, err := s.getCategory(ctx, slug)
	if err != nil {
		return nil, err
	}

	verr := &domain.ValidationError{}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Slug != nil {
		if next := trimmed(in.Slug); next != c.Slug {
			c.Slug = next
			if next != "" {
				if err := claimSlug(ctx, next, s.categoryRepo.SlugExists, verr); err != nil {
					return nil, err
				}
			}
		}
	}
	addValidation(verr, c.Validate())
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	c.UpdatedAt = time.Now()
	if err := s.categoryRepo.Update(ctx, c); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, domain.NewValidationError("category already exists")
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return c, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, p domain.Principal, slug string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if !s.access.CanCurate(p) {
		return domain.ErrForbidden
	}
	c, err := s.getCategory(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.categoryRepo.Delete(ctx, c.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

func (s *categoryService) ListTags(ctx context.Context, params domain.PaginationParams) (*domain.Page[*domain.Tag], error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	page, err := pageOf(ctx, params, s.tagRepo.Count, s.tagRepo.List)
	if err != nil {
		return nil, fmt.Errorf("tags %w", err)
	}
	return page, nil
}
