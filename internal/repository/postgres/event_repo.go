package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository returns a domain.EventRepository implemented with Postgres.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEventListing(row rowScanner) (*domain.EventListing, error) {
	l := &domain.EventListing{}
	var status string
	var avg sql.NullFloat64
	err := row.Scan(
		&l.ID, &l.Title, &l.Slug, &l.Description, &l.StartAt, &l.EndAt, &l.VenueID, &l.OrganizerID,
		&status, &l.PriceFrom, &l.IsFeatured, &l.MaxAttendees, &l.CreatedAt, &l.UpdatedAt,
		&l.VenueName, &l.CitySlug, &l.OrganizerName,
		&avg, &l.ReviewsCount,
	)
	if err != nil {
		return nil, err
	}
	l.Status = domain.EventStatus(status)
	if avg.Valid {
		l.AvgRating = &avg.Float64
	}
	return l, nil
}

func (r *eventRepository) Count(ctx context.Context, q domain.EventQuery) (int, error) {
	query, args, err := buildEventCount(q)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *eventRepository) List(ctx context.Context, q domain.EventQuery, limit, offset int) ([]*domain.EventListing, error) {
	query, args, err := buildEventList(q, limit, offset)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]*domain.EventListing, 0)
	for rows.Next() {
		l, err := scanEventListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadTaxonomy(ctx, listings); err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string) (*domain.EventListing, error) {
	query := eventListingColumns + eventListingFrom + `
		WHERE e.slug = $1`
	l, err := scanEventListing(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadTaxonomy(ctx, []*domain.EventListing{l}); err != nil {
		return nil, err
	}
	return l, nil
}

// loadTaxonomy attaches categories and tags, each ordered by name.
func (r *eventRepository) loadTaxonomy(ctx context.Context, listings []*domain.EventListing) error {
	if len(listings) == 0 {
		return nil
	}
	byID := make(map[int64]*domain.EventListing, len(listings))
	ids := make([]int64, 0, len(listings))
	for _, l := range listings {
		l.Categories = []*domain.Category{}
		l.Tags = []*domain.Tag{}
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT ec.event_id, cat.id, cat.name, cat.slug
		FROM event_categories ec
		JOIN categories cat ON cat.id = ec.category_id
		WHERE ec.event_id = ANY($1)
		ORDER BY cat.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load event categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var eventID int64
		c := &domain.Category{}
		if err := rows.Scan(&eventID, &c.ID, &c.Name, &c.Slug); err != nil {
			return err
		}
		if l, ok := byID[eventID]; ok {
			l.Categories = append(l.Categories, c)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	tagRows, err := r.DB.QueryContext(ctx, `
		SELECT et.event_id, t.id, t.name, t.slug
		FROM event_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.event_id = ANY($1)
		ORDER BY t.name`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load event tags: %w", err)
	}
	defer tagRows.Close()
	for tagRows.Next() {
		var eventID int64
		t := &domain.Tag{}
		if err := tagRows.Scan(&eventID, &t.ID, &t.Name, &t.Slug); err != nil {
			return err
		}
		if l, ok := byID[eventID]; ok {
			l.Tags = append(l.Tags, t)
		}
	}
	return tagRows.Err()
}

func (r *eventRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event, categoryIDs, tagIDs []int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO events (title, slug, description, start_at, end_at, venue_id, organizer_id,
			status, price_from, is_featured, max_attendees, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`
	var id int64
	err = tx.QueryRowContext(ctx, query,
		e.Title, e.Slug, e.Description, e.StartAt, e.EndAt, e.VenueID, e.OrganizerID,
		string(e.Status), e.PriceFrom, e.IsFeatured, e.MaxAttendees, e.CreatedAt, e.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return mapEventWriteError(err)
	}
	if err := insertLinks(ctx, tx, "event_categories", "category_id", id, categoryIDs); err != nil {
		return err
	}
	if err := insertLinks(ctx, tx, "event_tags", "tag_id", id, tagIDs); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *eventRepository) Update(ctx context.Context, e *domain.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, start_at = $3, end_at = $4, venue_id = $5, organizer_id = $6,
			status = $7, price_from = $8, is_featured = $9, max_attendees = $10, updated_at = $11
		WHERE id = $12
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, e.Description, e.StartAt, e.EndAt, e.VenueID, e.OrganizerID,
		string(e.Status), e.PriceFrom, e.IsFeatured, e.MaxAttendees, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return mapEventWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapEventWriteError(err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("event slug: %w", domain.ErrAlreadyExists)
	case isForeignKeyViolation(err):
		return domain.NewValidationError("venue or organizer does not exist")
	}
	return err
}

func (r *eventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// insertLinks adds link rows for a new event inside tx.
// table and column are package constants, never user input.
func insertLinks(ctx context.Context, tx *sql.Tx, table, column string, eventID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO `+table+` (event_id, `+column+`)
		 SELECT $1, unnest($2::bigint[])
		 ON CONFLICT DO NOTHING`, eventID, pq.Array(ids))
	if isForeignKeyViolation(err) {
		return domain.NewValidationError(column + " does not exist")
	}
	return err
}

func (r *eventRepository) ListSchedules(ctx context.Context, eventID int64) ([]*domain.EventSchedule, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, event_id, start_at, end_at, note
		FROM event_schedules
		WHERE event_id = $1
		ORDER BY start_at, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EventSchedule, 0)
	for rows.Next() {
		s := &domain.EventSchedule{}
		if err := rows.Scan(&s.ID, &s.EventID, &s.StartAt, &s.EndAt, &s.Note); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *eventRepository) ListImages(ctx context.Context, eventID int64) ([]*domain.EventImage, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, event_id, image_url, caption, created_at
		FROM event_images
		WHERE event_id = $1
		ORDER BY created_at DESC, id DESC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.EventImage, 0)
	for rows.Next() {
		img := &domain.EventImage{}
		if err := rows.Scan(&img.ID, &img.EventID, &img.ImageURL, &img.Caption, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}
