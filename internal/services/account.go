package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventhub/internal/domain"

	"github.com/google/uuid"
)

// TicketQRSize is the edge length in pixels of ticket QR codes.
const TicketQRSize = 256

type accountService struct {
	orderRepo      domain.OrderRepository
	ticketRepo     domain.TicketRepository
	printer        domain.TicketPrinter
	contextTimeout time.Duration
}

// NewAccountService returns the orders and tickets service for the current user.
func NewAccountService(orderRepo domain.OrderRepository, ticketRepo domain.TicketRepository, printer domain.TicketPrinter, timeout time.Duration) domain.AccountService {
	return &accountService{
		orderRepo:      orderRepo,
		ticketRepo:     ticketRepo,
		printer:        printer,
		contextTimeout: timeout,
	}
}

func (s *accountService) ListOrders(ctx context.Context, p domain.Principal) ([]*domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	return orders, nil
}

func (s *accountService) ListTickets(ctx context.Context, p domain.Principal) ([]*domain.TicketView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	tickets, err := s.ticketRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []*domain.TicketView{}
	}
	return tickets, nil
}

func (s *accountService) GetTicket(ctx context.Context, p domain.Principal, code string) (*domain.TicketView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.ownedTicket(ctx, p, code)
}

func (s *accountService) TicketQRCode(ctx context.Context, p domain.Principal, code string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.ownedTicket(ctx, p, code)
	if err != nil {
		return nil, err
	}
	png, err := s.printer.QRCode(t, TicketQRSize)
	if err != nil {
		return nil, fmt.Errorf("render qr code: %w", err)
	}
	return png, nil
}

func (s *accountService) TicketPDF(ctx context.Context, p domain.Principal, code string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	t, err := s.ownedTicket(ctx, p, code)
	if err != nil {
		return nil, err
	}
	pdf, err := s.printer.PDF(t)
	if err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return pdf, nil
}

// ownedTicket hides tickets of other users behind ErrNotFound.
func (s *accountService) ownedTicket(ctx context.Context, p domain.Principal, code string) (*domain.TicketView, error) {
	userID, err := requireUser(p)
	if err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(code)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	t, err := s.ticketRepo.GetByCode(ctx, parsed.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	if t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return t, nil
}
