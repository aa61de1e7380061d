package http

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger         *slog.Logger
	Tokens         domain.TokenVerifier
	Principals     domain.PrincipalLoader
	Limiter        *middleware.RateLimiter
	AllowedOrigins []string

	API        *controllers.APIController
	Events     *controllers.EventController
	Catalog    *controllers.CatalogController
	Engagement *controllers.EngagementController
	Account    *controllers.AccountController
	Auth       *controllers.AuthController
	Users      *controllers.UserController
}

// NewRouter initializes the HTTP router with all application routes and the middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth

	// JSON API, rate limited per client address
	api := http.NewServeMux()
	api.HandleFunc("GET /api/events", cfg.API.ListEvents)
	api.HandleFunc("POST /api/events", cfg.API.CreateEvent)
	api.HandleFunc("/api/events", helpers.MethodNotAllowed)
	api.HandleFunc("GET /api/events/{slug}", cfg.API.GetEvent)
	api.HandleFunc("PUT /api/events/{slug}", cfg.API.UpdateEvent)
	api.HandleFunc("DELETE /api/events/{slug}", cfg.API.DeleteEvent)
	api.HandleFunc("/api/events/{slug}", helpers.MethodNotAllowed)
	api.HandleFunc("GET /api/events/{slug}/calendar.ics", cfg.API.Calendar)
	api.HandleFunc("/api/events/{slug}/calendar.ics", helpers.MethodNotAllowed)
	api.HandleFunc("GET /api/categories", cfg.API.ListCategories)
	api.HandleFunc("GET /api/venues", cfg.API.ListVenues)
	api.HandleFunc("GET /api/reviews", cfg.API.ListReviews)
	var apiHandler http.Handler = api
	if cfg.Limiter != nil {
		apiHandler = cfg.Limiter.Limit(api)
	}
	mux.Handle("/api/", apiHandler)

	// Events
	mux.HandleFunc("GET /events", cfg.Events.List)
	mux.HandleFunc("POST /events", cfg.Events.Create)
	mux.HandleFunc("GET /events/mine", auth(cfg.Events.Mine))
	mux.HandleFunc("GET /events/{slug}", cfg.Events.Detail)
	mux.HandleFunc("PATCH /events/{slug}", cfg.Events.Update)
	mux.HandleFunc("DELETE /events/{slug}", cfg.Events.Delete)
	mux.HandleFunc("POST /events/{slug}/reviews", auth(cfg.Engagement.AddReview))

	// Catalog
	mux.HandleFunc("GET /organizers", cfg.Catalog.ListOrganizers)
	mux.HandleFunc("GET /organizers/{slug}", cfg.Catalog.GetOrganizer)
	mux.HandleFunc("GET /venues", cfg.Catalog.ListVenues)
	mux.HandleFunc("POST /venues", cfg.Catalog.CreateVenue)
	mux.HandleFunc("GET /venues/{slug}", cfg.Catalog.GetVenue)
	mux.HandleFunc("PATCH /venues/{slug}", cfg.Catalog.UpdateVenue)
	mux.HandleFunc("DELETE /venues/{slug}", cfg.Catalog.DeleteVenue)
	mux.HandleFunc("GET /categories", cfg.Catalog.ListCategories)
	mux.HandleFunc("POST /categories", cfg.Catalog.CreateCategory)
	mux.HandleFunc("GET /categories/{slug}", cfg.Catalog.GetCategory)
	mux.HandleFunc("PATCH /categories/{slug}", cfg.Catalog.UpdateCategory)
	mux.HandleFunc("DELETE /categories/{slug}", cfg.Catalog.DeleteCategory)
	mux.HandleFunc("GET /tags", cfg.Catalog.ListTags)

	// Account
	mux.HandleFunc("GET /favorites", auth(cfg.Engagement.ListFavorites))
	mux.HandleFunc("POST /favorites/{slug}/toggle", auth(cfg.Engagement.ToggleFavorite))
	mux.HandleFunc("GET /orders", auth(cfg.Account.ListOrders))
	mux.HandleFunc("GET /tickets", auth(cfg.Account.ListTickets))
	mux.HandleFunc("GET /tickets/{code}/qr.png", auth(cfg.Account.TicketQR))
	mux.HandleFunc("GET /tickets/{code}/ticket.pdf", auth(cfg.Account.TicketPDF))
	mux.HandleFunc("GET /users/me", auth(cfg.Users.Me))
	mux.HandleFunc("PATCH /users/me", auth(cfg.Users.UpdateMe))

	// Auth
	mux.HandleFunc("POST /auth/register", cfg.Auth.Register)
	mux.HandleFunc("GET /auth/verify/{token}", cfg.Auth.Verify)
	mux.HandleFunc("POST /auth/login", cfg.Auth.Login)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = middleware.Authenticate(cfg.Tokens, cfg.Principals, cfg.Logger)(mux)
	handler = middleware.CORS(cfg.AllowedOrigins, handler)
	handler = middleware.RequestID(handler)
	return middleware.LoggingMiddleware(cfg.Logger, handler)
}
