package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

type cityRepository struct {
	DB *sql.DB
}

// NewCityRepository returns a domain.CityRepository implemented with Postgres.
func NewCityRepository(db *sql.DB) domain.CityRepository {
	return &cityRepository{DB: db}
}

func (r *cityRepository) GetBySlug(ctx context.Context, slug string) (*domain.City, error) {
	c := &domain.City{}
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, slug, country FROM cities WHERE slug = $1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug, &c.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

type venueRepository struct {
	DB *sql.DB
}

// NewVenueRepository returns a domain.VenueRepository implemented with Postgres.
func NewVenueRepository(db *sql.DB) domain.VenueRepository {
	return &venueRepository{DB: db}
}

const venueSelect = `
		SELECT v.id, v.name, v.slug, v.city_id, v.address, v.capacity, v.description, v.map_url,
			v.created_at, v.updated_at, c.id, c.name, c.slug, c.country
		FROM venues v
		JOIN cities c ON c.id = v.city_id`

func scanVenue(row rowScanner) (*domain.VenueView, error) {
	v := &domain.VenueView{City: &domain.City{}}
	err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.CityID, &v.Address, &v.Capacity, &v.Description, &v.MapURL,
		&v.CreatedAt, &v.UpdatedAt, &v.City.ID, &v.City.Name, &v.City.Slug, &v.City.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func (r *venueRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n)
	return n, err
}

func (r *venueRepository) List(ctx context.Context, limit, offset int) ([]*domain.VenueView, error) {
	query := venueSelect + `
		ORDER BY v.name, v.id`
	args := []any{}
	if limit > 0 {
		query += `
		LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.VenueView, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *venueRepository) GetByID(ctx context.Context, id int64) (*domain.VenueView, error) {
	return scanVenue(r.DB.QueryRowContext(ctx, venueSelect+` WHERE v.id = $1`, id))
}

func (r *venueRepository) GetBySlug(ctx context.Context, slug string) (*domain.VenueView, error) {
	return scanVenue(r.DB.QueryRowContext(ctx, venueSelect+` WHERE v.slug = $1`, slug))
}

func (r *venueRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) error {
	query := `
		INSERT INTO venues (name, slug, city_id, address, capacity, description, map_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, v.Name, v.Slug, v.CityID, v.Address, v.Capacity, v.Description, v.MapURL,
		v.CreatedAt, v.UpdatedAt).Scan(&v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("venue slug: %w", domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *venueRepository) Update(ctx context.Context, v *domain.Venue) error {
	query := `
		UPDATE venues
		SET name = $1, slug = $2, city_id = $3, address = $4, capacity = $5, description = $6, map_url = $7, updated_at = $8
		WHERE id = $9
	`
	result, err := r.DB.ExecContext(ctx, query, v.Name, v.Slug, v.CityID, v.Address, v.Capacity, v.Description, v.MapURL,
		v.UpdatedAt, v.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("venue slug: %w", domain.ErrAlreadyExists)
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete fails with a validation error while events still reference the venue.
func (r *venueRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("venue has events and cannot be deleted")
		}
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
