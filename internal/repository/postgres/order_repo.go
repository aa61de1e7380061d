package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventhub/internal/domain"

	"github.com/lib/pq"
)

type orderRepository struct {
	DB *sql.DB
}

// NewOrderRepository returns a domain.OrderRepository implemented with Postgres.
func NewOrderRepository(db *sql.DB) domain.OrderRepository {
	return &orderRepository{DB: db}
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT o.id, o.user_id, o.status, o.total, o.created_at,
			p.provider, p.status, p.amount, p.transaction_id, p.created_at
		FROM orders o
		LEFT JOIN payments p ON p.order_id = o.id
		WHERE o.user_id = $1
		ORDER BY o.created_at DESC, o.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	byID := make(map[int64]*domain.Order)
	for rows.Next() {
		o := &domain.Order{Items: []*domain.OrderItem{}}
		var status string
		var provider, payStatus, txID sql.NullString
		var amount domain.Price
		var paidAt sql.NullTime
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.Total, &o.CreatedAt,
			&provider, &payStatus, &amount, &txID, &paidAt); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		if provider.Valid {
			o.Payment = &domain.Payment{
				Provider:      provider.String,
				Status:        payStatus.String,
				Amount:        amount,
				TransactionID: txID.String,
				CreatedAt:     paidAt.Time,
			}
		}
		orders = append(orders, o)
		byID[o.ID] = o
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	itemRows, err := r.DB.QueryContext(ctx, `
		SELECT oi.id, oi.order_id, oi.ticket_type_id, tt.name, e.title, oi.qty, oi.price
		FROM order_items oi
		JOIN ticket_types tt ON tt.id = oi.ticket_type_id
		JOIN events e ON e.id = tt.event_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id, oi.id`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()
	for itemRows.Next() {
		it := &domain.OrderItem{}
		var orderID int64
		if err := itemRows.Scan(&it.ID, &orderID, &it.TicketTypeID, &it.TicketTypeName, &it.EventTitle, &it.Qty, &it.Price); err != nil {
			return nil, err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return orders, itemRows.Err()
}

type ticketRepository struct {
	DB *sql.DB
}

// NewTicketRepository returns a domain.TicketRepository implemented with Postgres.
func NewTicketRepository(db *sql.DB) domain.TicketRepository {
	return &ticketRepository{DB: db}
}

const ticketSelect = `
		SELECT t.id, t.code::text, t.status, t.user_id,
			tt.id, tt.event_id, tt.name, tt.price, tt.quota, tt.sale_start, tt.sale_end,
			e.title, e.slug, e.start_at, v.name, t.created_at
		FROM tickets t
		JOIN ticket_types tt ON tt.id = t.ticket_type_id
		JOIN events e ON e.id = tt.event_id
		JOIN venues v ON v.id = e.venue_id`

func scanTicket(row rowScanner) (*domain.TicketView, error) {
	t := &domain.TicketView{}
	var status string
	var saleStart, saleEnd sql.NullTime
	err := row.Scan(&t.ID, &t.Code, &status, &t.UserID,
		&t.TicketType.ID, &t.TicketType.EventID, &t.TicketType.Name, &t.TicketType.Price, &t.TicketType.Quota, &saleStart, &saleEnd,
		&t.EventTitle, &t.EventSlug, &t.EventStart, &t.VenueName, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	t.Status = domain.TicketStatus(status)
	if saleStart.Valid {
		t.TicketType.SaleStart = &saleStart.Time
	}
	if saleEnd.Valid {
		t.TicketType.SaleEnd = &saleEnd.Time
	}
	return t, nil
}

func (r *ticketRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.TicketView, error) {
	rows, err := r.DB.QueryContext(ctx, ticketSelect+`
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.TicketView, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetByCode expects a canonical UUID string.
func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.TicketView, error) {
	return scanTicket(r.DB.QueryRowContext(ctx, ticketSelect+` WHERE t.code = $1::uuid`, code))
}
