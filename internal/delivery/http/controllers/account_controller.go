package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// AccountController serves the caller's orders and tickets.
type AccountController struct {
	Logger         *slog.Logger
	AccountService domain.AccountService
}

func NewAccountController(logger *slog.Logger, accountService domain.AccountService) *AccountController {
	return &AccountController{
		Logger:         logger,
		AccountService: accountService,
	}
}

// ListOrders godoc
// @Summary My orders, newest first
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.Order}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /orders [get]
func (c *AccountController) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := c.AccountService.ListOrders(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, orders)
}

// ListTickets godoc
// @Summary My tickets
// @Tags account
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]controllers.TicketJSON}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /tickets [get]
func (c *AccountController) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := c.AccountService.ListTickets(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	out := make([]TicketJSON, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketJSON(t))
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// TicketQR godoc
// @Summary QR code of a ticket
// @Tags account
// @Produce png
// @Security BearerAuth
// @Param code path string true "Ticket code"
// @Success 200 {file} binary
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tickets/{code}/qr.png [get]
func (c *AccountController) TicketQR(w http.ResponseWriter, r *http.Request) {
	png, err := c.AccountService.TicketQRCode(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("code"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// TicketPDF godoc
// @Summary Printable ticket
// @Tags account
// @Produce application/pdf
// @Security BearerAuth
// @Param code path string true "Ticket code"
// @Success 200 {file} binary
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /tickets/{code}/ticket.pdf [get]
func (c *AccountController) TicketPDF(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	pdf, err := c.AccountService.TicketPDF(r.Context(), middleware.PrincipalFromContext(r.Context()), code)
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="ticket-`+code+`.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
