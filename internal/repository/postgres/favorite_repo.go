package postgres

import (
	"context"
	"database/sql"

	"eventhub/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

// NewFavoriteRepository returns a domain.FavoriteRepository implemented with Postgres.
func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{DB: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, eventID int64) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
		INSERT INTO favorites (user_id, event_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, event_id) DO NOTHING`, userID, eventID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, eventID int64) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

func (r *favoriteRepository) ListEventIDs(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT event_id FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC, event_id DESC`, userID)
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
