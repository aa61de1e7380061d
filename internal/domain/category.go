package domain

import (
	"context"
	"time"
)

// Category is an event taxonomy entry.
// swagger:model Category
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the row-level invariants of a category.
func (c *Category) Validate() error {
	verr := &ValidationError{}
	if c.Name == "" {
		verr.Add("name is required")
	}
	if len([]rune(c.Name)) > 120 {
		verr.Add("name must be at most 120 characters")
	}
	if c.Slug == "" {
		verr.Add("slug is required")
	}
	return verr.OrNil()
}

// CategoryDetail is a category with its events ordered by start time.
type CategoryDetail struct {
	Category *Category
	Events   []*EventListing
}

// CategoryInput is the data accepted when creating or updating a category.
// Nil fields are left unchanged on update.
type CategoryInput struct {
	Name        *string
	Slug        *string
	Description *string
}

// Tag is a free-form event label.
// swagger:model Tag
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryRepository defines the interface for category storage
type CategoryRepository interface {
	Count(ctx context.Context) (int, error)
	// List returns categories ordered by name. A zero limit returns every category.
	List(ctx context.Context, limit, offset int) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id int64) error
}

// TagRepository defines the interface for tag storage
type TagRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]*Tag, error)
}

// CategoryService defines the category and tag directories.
type CategoryService interface {
	ListCategories(ctx context.Context, params PaginationParams) (*Page[*Category], error)
	AllCategories(ctx context.Context) ([]*Category, error)
	GetCategory(ctx context.Context, slug string) (*CategoryDetail, error)
	CreateCategory(ctx context.Context, p Principal, in CategoryInput) (*Category, error)
	UpdateCategory(ctx context.Context, p Principal, slug string, in CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, p Principal, slug string) error
	ListTags(ctx context.Context, params PaginationParams) (*Page[*Tag], error)
}
