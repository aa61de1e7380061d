package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

// NewUserRepository returns a domain.UserRepository implemented with Postgres.
func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, first_name, last_name, password_hash, salt,
		is_active, is_staff, is_superuser, created_at, updated_at`

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash, &u.PasswordSalt,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, salt,
			is_active, is_staff, is_superuser, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Username, u.Email, u.FirstName, u.LastName, u.PasswordHash, u.PasswordSalt,
		u.IsActive, u.IsStaff, u.IsSuperuser, u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", u.Username, domain.ErrAlreadyExists)
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.DB.QueryRowContext(ctx, query, username))
}

func (r *userRepository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	var taken bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1) AND id <> $2)`,
		email, excludeID).Scan(&taken)
	return taken, err
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET email = $1, first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := r.DB.ExecContext(ctx, query, u.Email, u.FirstName, u.LastName, u.UpdatedAt, u.ID)
	if err != nil {
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

func (r *userRepository) Activate(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
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

func (r *userRepository) GetProfile(ctx context.Context, userID int64) (*domain.UserProfile, error) {
	query := `
		SELECT p.user_id, p.role, p.city_id, COALESCE(c.slug, ''), p.phone, p.bio, p.created_at, p.updated_at
		FROM user_profiles p
		LEFT JOIN cities c ON c.id = p.city_id
		WHERE p.user_id = $1
	`
	p := &domain.UserProfile{}
	var role string
	var cityID sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&p.UserID, &role, &cityID, &p.CitySlug, &p.Phone, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	p.Role = domain.ParseRole(role)
	if cityID.Valid {
		p.CityID = &cityID.Int64
	}
	return p, nil
}

func (r *userRepository) UpsertProfile(ctx context.Context, p *domain.UserProfile) error {
	role := p.Role
	if role == "" {
		role = domain.RoleUser
	}
	var cityID sql.NullInt64
	if p.CityID != nil {
		cityID = sql.NullInt64{Int64: *p.CityID, Valid: true}
	}
	query := `
		INSERT INTO user_profiles (user_id, role, city_id, phone, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET city_id = EXCLUDED.city_id, phone = EXCLUDED.phone, bio = EXCLUDED.bio, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, p.UserID, string(role), cityID, p.Phone, p.Bio, p.UpdatedAt)
	return err
}
