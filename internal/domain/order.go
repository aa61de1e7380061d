package domain

import (
	"context"
	"time"
)

// OrderStatus is the payment state of an order.
type OrderStatus string

const (
	OrderStatusNew       OrderStatus = "new"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// TicketStatus is the usage state of a ticket.
type TicketStatus string

const (
	TicketStatusNew       TicketStatus = "new"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// TicketType is a priced ticket tier of an event.
type TicketType struct {
	ID        int64      `json:"id"`
	EventID   int64      `json:"event_id"`
	Name      string     `json:"name"`
	Price     Price      `json:"price"`
	Quota     int        `json:"quota"`
	SaleStart *time.Time `json:"sale_start"`
	SaleEnd   *time.Time `json:"sale_end"`
}

// Payment records the payment attempt of an order.
type Payment struct {
	Provider      string    `json:"provider"`
	Status        string    `json:"status"`
	Amount        Price     `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// OrderItem is one ticket type line of an order.
type OrderItem struct {
	ID             int64  `json:"id"`
	TicketTypeID   int64  `json:"ticket_type_id"`
	TicketTypeName string `json:"ticket_type"`
	EventTitle     string `json:"event"`
	Qty            int    `json:"qty"`
	Price          Price  `json:"price"`
}

// Order is a user's purchase with its items and optional payment.
type Order struct {
	ID        int64        `json:"id"`
	UserID    int64        `json:"user_id"`
	Status    OrderStatus  `json:"status"`
	Total     Price        `json:"total"`
	Items     []*OrderItem `json:"items"`
	Payment   *Payment     `json:"payment"`
	CreatedAt time.Time    `json:"created_at"`
}

// TicketView is a ticket with its type and event.
type TicketView struct {
	ID         int64
	Code       string
	Status     TicketStatus
	UserID     int64
	TicketType TicketType
	EventTitle string
	EventSlug  string
	EventStart time.Time
	VenueName  string
	CreatedAt  time.Time
}

// OrderRepository reads orders.
type OrderRepository interface {
	// ListByUser returns the user's orders newest first, with items and payment.
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
}

// TicketRepository reads tickets.
type TicketRepository interface {
	// ListByUser returns the user's tickets newest first.
	ListByUser(ctx context.Context, userID int64) ([]*TicketView, error)
	GetByCode(ctx context.Context, code string) (*TicketView, error)
}

// TicketPrinter renders a ticket for the holder.
type TicketPrinter interface {
	QRCode(t *TicketView, size int) ([]byte, error)
	PDF(t *TicketView) ([]byte, error)
}

// AccountService defines the current user's orders and tickets.
type AccountService interface {
	ListOrders(ctx context.Context, p Principal) ([]*Order, error)
	ListTickets(ctx context.Context, p Principal) ([]*TicketView, error)
	// GetTicket returns ErrNotFound for tickets the principal does not hold.
	GetTicket(ctx context.Context, p Principal, code string) (*TicketView, error)
	TicketQRCode(ctx context.Context, p Principal, code string) ([]byte, error)
	TicketPDF(ctx context.Context, p Principal, code string) ([]byte, error)
}
