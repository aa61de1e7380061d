package postgres

import (
	"fmt"
	"strconv"
	"strings"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

const eventListingFrom = `
		FROM events e
		JOIN venues v ON v.id = e.venue_id
		JOIN cities c ON c.id = v.city_id
		JOIN organizers o ON o.id = e.organizer_id`

const eventListingColumns = `
		SELECT e.id, e.title, e.slug, e.description, e.start_at, e.end_at, e.venue_id, e.organizer_id,
			e.status, e.price_from, e.is_featured, e.max_attendees, e.created_at, e.updated_at,
			v.name, c.slug, o.name,
			(SELECT AVG(r.rating)::float8 FROM reviews r WHERE r.event_id = e.id),
			(SELECT COUNT(*) FROM reviews r WHERE r.event_id = e.id)`

// sqlBuilder accumulates positional arguments for one statement.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// compileWhere folds the predicates into one WHERE clause joined with AND.
func (b *sqlBuilder) compileWhere(preds []domain.Predicate) (string, error) {
	if len(preds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(preds))
	for _, p := range preds {
		clause, err := b.compilePredicate(p)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}
	return "\n\t\tWHERE " + strings.Join(clauses, "\n\t\t\tAND "), nil
}

func (b *sqlBuilder) compilePredicate(p domain.Predicate) (string, error) {
	switch p.Kind {
	case domain.PredStatus:
		return "e.status = " + b.arg(p.Text), nil
	case domain.PredOrganizerIn:
		return "e.organizer_id = ANY(" + b.arg(pq.Array(p.IDs)) + ")", nil
	case domain.PredVenue:
		if len(p.IDs) != 1 {
			return "", fmt.Errorf("venue predicate needs exactly one id, got %d", len(p.IDs))
		}
		return "e.venue_id = " + b.arg(p.IDs[0]), nil
	case domain.PredEventIn:
		return "e.id = ANY(" + b.arg(pq.Array(p.IDs)) + ")", nil
	case domain.PredText:
		n := b.arg("%" + escapeLike(p.Text) + "%")
		return fmt.Sprintf(`(e.title ILIKE %s ESCAPE '\' OR o.name ILIKE %s ESCAPE '\')`, n, n), nil
	case domain.PredCategory:
		return `EXISTS (SELECT 1 FROM event_categories ec JOIN categories cat ON cat.id = ec.category_id
				WHERE ec.event_id = e.id AND cat.slug = ` + b.arg(p.Text) + ")", nil
	case domain.PredCity:
		return "c.slug = " + b.arg(p.Text), nil
	case domain.PredYear:
		zone := "UTC"
		if p.Zone != nil {
			zone = p.Zone.String()
		}
		return fmt.Sprintf("EXTRACT(YEAR FROM e.start_at AT TIME ZONE %s) = %s", b.arg(zone), b.arg(p.Num)), nil
	}
	return "", fmt.Errorf("unsupported event predicate %q", p.Kind)
}

// escapeLike escapes the LIKE metacharacters of s for use with ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// compileOrder renders the ORDER BY clause. The id tiebreaker keeps pages stable.
func compileOrder(o domain.OrderBy) string {
	col := "e.start_at"
	if o.Field == domain.OrderPriceFrom {
		col = "e.price_from"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("\n\t\tORDER BY %s %s, e.id ASC", col, dir)
}

// buildEventCount returns the COUNT statement for q.
func buildEventCount(q domain.EventQuery) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.compileWhere(q.Predicates)
	if err != nil {
		return "", nil, err
	}
	return "\n\t\tSELECT COUNT(*)" + eventListingFrom + where, b.args, nil
}

// buildEventList returns the listing statement for q. A zero limit omits LIMIT and OFFSET.
func buildEventList(q domain.EventQuery, limit, offset int) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.compileWhere(q.Predicates)
	if err != nil {
		return "", nil, err
	}
	query := eventListingColumns + eventListingFrom + where + compileOrder(q.Order)
	if limit > 0 {
		query += "\n\t\tLIMIT " + b.arg(limit) + " OFFSET " + b.arg(offset)
	}
	return query, b.args, nil
}
