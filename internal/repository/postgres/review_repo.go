package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

type reviewRepository struct {
	DB *sql.DB
}

// NewReviewRepository returns a domain.ReviewRepository implemented with Postgres.
func NewReviewRepository(db *sql.DB) domain.ReviewRepository {
	return &reviewRepository{DB: db}
}

const reviewViewSelect = `
		SELECT r.id, r.event_id, e.slug, e.title, r.user_id, u.username, r.rating, r.comment, r.created_at
		FROM reviews r
		JOIN events e ON e.id = r.event_id
		JOIN users u ON u.id = r.user_id`

func scanReviewView(row rowScanner) (*domain.ReviewView, error) {
	v := &domain.ReviewView{}
	err := row.Scan(&v.ID, &v.EventID, &v.EventSlug, &v.EventTitle, &v.UserID, &v.Username, &v.Rating, &v.Comment, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *reviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	query := `
		INSERT INTO reviews (event_id, user_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, rv.EventID, rv.UserID, rv.Rating, rv.Comment, rv.CreatedAt).Scan(&rv.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review: %w", domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *reviewRepository) GetView(ctx context.Context, id int64) (*domain.ReviewView, error) {
	return scanReviewView(r.DB.QueryRowContext(ctx, reviewViewSelect+` WHERE r.id = $1`, id))
}

func (r *reviewRepository) ListLatest(ctx context.Context, eventSlug string, limit int) ([]*domain.ReviewView, error) {
	query := reviewViewSelect
	args := []any{}
	if eventSlug != "" {
		query += `
		WHERE e.slug = $1`
		args = append(args, eventSlug)
	}
	args = append(args, limit)
	query += fmt.Sprintf(`
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $%d`, len(args))
	return r.list(ctx, query, args...)
}

func (r *reviewRepository) ListByEvent(ctx context.Context, eventID int64) ([]*domain.ReviewView, error) {
	return r.list(ctx, reviewViewSelect+`
		WHERE r.event_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, eventID)
}

func (r *reviewRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ReviewView, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.ReviewView, 0)
	for rows.Next() {
		v, err := scanReviewView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
