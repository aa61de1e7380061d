package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"eventhub/internal/domain"
)

// maxSlugAttempts bounds the numeric suffix search in uniqueSlug.
const maxSlugAttempts = 1000

// uniqueSlug slugifies source and appends -2, -3, ... until exists reports the slug free.
// An empty base is returned as is so validation can report it.
func uniqueSlug(ctx context.Context, source string, exists func(context.Context, string) (bool, error)) (string, error) {
	base := domain.Slugify(source)
	if base == "" {
		return "", nil
	}
	candidate := base
	for n := 2; n <= maxSlugAttempts; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := "-" + strconv.Itoa(n)
		candidate = truncateRunes(base, domain.MaxSlugLength-len(suffix)) + suffix
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n]), "-_")
}

// claimSlug validates an explicitly chosen slug and checks that it is free.
func claimSlug(ctx context.Context, slug string, exists func(context.Context, string) (bool, error), verr *domain.ValidationError) error {
	if slug != domain.Slugify(slug) {
		verr.Add("slug may contain only letters, digits, underscores and hyphens")
		return nil
	}
	taken, err := exists(ctx, slug)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		verr.Add("slug already exists")
	}
	return nil
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

var naiveDateTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// parseDateTime accepts ISO-8601 timestamps with or without an offset.
// Values without an offset are read in loc.
func parseDateTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range naiveDateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// requireUser returns the user id of an authenticated principal or ErrForbidden.
func requireUser(p domain.Principal) (int64, error) {
	id, ok := domain.UserIDOf(p)
	if !ok {
		return 0, domain.ErrForbidden
	}
	return id, nil
}

// pageOf counts, clamps and fetches one page through the given callbacks.
func pageOf[T any](ctx context.Context, params domain.PaginationParams,
	count func(context.Context) (int, error),
	list func(ctx context.Context, limit, offset int) ([]T, error),
) (*domain.Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	params, pages := params.Clamp(total)
	if total == 0 {
		return domain.NewPage[T](nil, 0, params, pages), nil
	}
	items, err := list(ctx, params.PageSize, params.Offset())
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	return domain.NewPage(items, total, params, pages), nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
