package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"
)

type organizerRepository struct {
	DB *sql.DB
}

// NewOrganizerRepository returns a domain.OrganizerRepository implemented with Postgres.
func NewOrganizerRepository(db *sql.DB) domain.OrganizerRepository {
	return &organizerRepository{DB: db}
}

const organizerColumns = `id, name, slug, description, website, contact_email, phone, created_at, updated_at`

func scanOrganizer(row rowScanner) (*domain.Organizer, error) {
	o := &domain.Organizer{}
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.Website, &o.ContactEmail, &o.Phone, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *organizerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM organizers`).Scan(&n)
	return n, err
}

func (r *organizerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Organizer, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+organizerColumns+`
		FROM organizers
		ORDER BY name, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Organizer, 0)
	for rows.Next() {
		o, err := scanOrganizer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *organizerRepository) GetByID(ctx context.Context, id int64) (*domain.Organizer, error) {
	return scanOrganizer(r.DB.QueryRowContext(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE id = $1`, id))
}

func (r *organizerRepository) GetBySlug(ctx context.Context, slug string) (*domain.Organizer, error) {
	return scanOrganizer(r.DB.QueryRowContext(ctx, `SELECT `+organizerColumns+` FROM organizers WHERE slug = $1`, slug))
}

type membershipRepository struct {
	DB *sql.DB
}

// NewMembershipRepository returns a domain.MembershipRepository implemented with Postgres.
func NewMembershipRepository(db *sql.DB) domain.MembershipRepository {
	return &membershipRepository{DB: db}
}

func (r *membershipRepository) Exists(ctx context.Context, userID, organizerID int64) (bool, error) {
	var ok bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizer_members WHERE user_id = $1 AND organizer_id = $2)`,
		userID, organizerID).Scan(&ok)
	return ok, err
}

func (r *membershipRepository) OrganizerIDsForUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT organizer_id FROM organizer_members WHERE user_id = $1 ORDER BY organizer_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
