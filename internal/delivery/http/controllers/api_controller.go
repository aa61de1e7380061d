package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// apiRequiredFields lists the members POST /api/events must carry, in reporting order.
var apiRequiredFields = []string{"title", "start_at", "end_at", "venue_id", "organizer_id"}

// EventListResponse is the body of GET /api/events.
type EventListResponse struct {
	Count   int         `json:"count"`
	Page    int         `json:"page"`
	Pages   int         `json:"pages"`
	Results []EventJSON `json:"results"`
}

// ResultsResponse wraps the simple API collections.
type ResultsResponse[T any] struct {
	Results []T `json:"results"`
}

// CategoryRef is a category in /api/categories.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// VenueRef is a venue in /api/venues.
type VenueRef struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Address string `json:"address"`
}

// APIController serves the JSON API under /api. Bodies are not wrapped in the envelope.
type APIController struct {
	Logger     *slog.Logger
	Events     domain.EventService
	Categories domain.CategoryService
	Venues     domain.VenueService
	Reviews    domain.ReviewService
}

func NewAPIController(logger *slog.Logger, events domain.EventService, categories domain.CategoryService, venues domain.VenueService, reviews domain.ReviewService) *APIController {
	return &APIController{
		Logger:     logger,
		Events:     events,
		Categories: categories,
		Venues:     venues,
		Reviews:    reviews,
	}
}

// writeError answers with the error envelope; lookups on /api/events name the event.
func (c *APIController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := helpers.ClassifyError(err)
	switch status {
	case http.StatusInternalServerError:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	case http.StatusNotFound:
		message = "Event not found."
	}
	helpers.WriteJSONError(w, status, code, message)
}

// ListEvents godoc
// @Summary List published events
// @Description Filters: q (title or organizer), category, city, year; ordering one of start_at, -start_at, price_from, -price_from.
// @Tags api
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category slug"
// @Param city query string false "City slug"
// @Param year query string false "Year of start"
// @Param ordering query string false "Ordering"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (default 10, max 100)"
// @Success 200 {object} controllers.EventListResponse
// @Router /api/events [get]
func (c *APIController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filters := domain.EventFiltersFromValues(r.URL.Query())
	page, err := c.Events.ListPublicEvents(r.Context(), filters, helpers.ParsePagination(r))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, EventListResponse{
		Count:   page.Total,
		Page:    page.Number,
		Pages:   page.Pages,
		Results: toEventsJSON(page.Items),
	})
}

// CreateEvent godoc
// @Summary Create an event
// @Description Requires title, start_at, end_at, venue_id and organizer_id. The caller must manage the organizer.
// @Tags api
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} controllers.EventJSON
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_json or validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /api/events [post]
func (c *APIController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	payload, ok := helpers.DecodeObject(w, r)
	if !ok {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidJSON, "Invalid JSON payload.")
		return
	}
	var missing []string
	for _, field := range apiRequiredFields {
		if _, ok := payload[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeValidation, "Missing fields: "+strings.Join(missing, ", "))
		return
	}

	in := domain.CreateEventInput{
		Title:       payloadString(payload["title"]),
		Description: payloadString(payload["description"]),
		StartAt:     payloadString(payload["start_at"]),
		EndAt:       payloadString(payload["end_at"]),
		VenueID:     payloadID(payload["venue_id"]),
		OrganizerID: payloadID(payload["organizer_id"]),
		Status:      payloadString(payload["status"]),
		PriceFrom:   payloadString(payload["price_from"]),
	}
	listing, err := c.Events.CreateEvent(r.Context(), middleware.PrincipalFromContext(r.Context()), in)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, toEventJSON(listing))
}

// GetEvent godoc
// @Summary Get an event
// @Tags api
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventJSON
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{slug} [get]
func (c *APIController) GetEvent(w http.ResponseWriter, r *http.Request) {
	listing, err := c.Events.GetEvent(r.Context(), r.PathValue("slug"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventJSON(listing))
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Accepts title, description and status; other members are ignored.
// @Tags api
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventJSON
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_json or validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{slug} [put]
func (c *APIController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	slug := r.PathValue("slug")

	payload, ok := helpers.DecodeObject(w, r)
	if !ok {
		// Lookup and permission errors take precedence over a bad body.
		detail, err := c.Events.GetEventDetail(r.Context(), p, slug)
		if err != nil {
			c.writeError(w, r, err)
			return
		}
		if !detail.CanManage {
			c.writeError(w, r, domain.ErrForbidden)
			return
		}
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeInvalidJSON, "Invalid JSON payload.")
		return
	}

	in := domain.UpdateEventInput{
		Title:       optionalString(payload, "title"),
		Description: optionalString(payload, "description"),
		Status:      optionalString(payload, "status"),
	}
	listing, err := c.Events.UpdateEvent(r.Context(), p, slug, in)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, toEventJSON(listing))
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags api
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} map[string]string "status: deleted"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{slug} [delete]
func (c *APIController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Events.DeleteEvent(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug")); err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListCategories godoc
// @Summary List all categories
// @Tags api
// @Produce json
// @Success 200 {object} controllers.ResultsResponse[controllers.CategoryRef]
// @Router /api/categories [get]
func (c *APIController) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := c.Categories.AllCategories(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	out := make([]CategoryRef, 0, len(cats))
	for _, cat := range cats {
		out = append(out, CategoryRef{ID: cat.ID, Name: cat.Name, Slug: cat.Slug})
	}
	helpers.WriteJSON(w, http.StatusOK, ResultsResponse[CategoryRef]{Results: out})
}

// ListVenues godoc
// @Summary List all venues
// @Tags api
// @Produce json
// @Success 200 {object} controllers.ResultsResponse[controllers.VenueRef]
// @Router /api/venues [get]
func (c *APIController) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := c.Venues.AllVenues(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	out := make([]VenueRef, 0, len(venues))
	for _, v := range venues {
		out = append(out, VenueRef{ID: v.ID, Name: v.Name, Slug: v.Slug, Address: v.Address})
	}
	helpers.WriteJSON(w, http.StatusOK, ResultsResponse[VenueRef]{Results: out})
}

// ListReviews godoc
// @Summary Latest reviews
// @Description Newest first, at most 50. Optionally limited to one event.
// @Tags api
// @Produce json
// @Param event query string false "Event slug"
// @Success 200 {object} controllers.ResultsResponse[controllers.ReviewJSON]
// @Router /api/reviews [get]
func (c *APIController) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := c.Reviews.ListLatest(r.Context(), r.URL.Query().Get("event"))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ResultsResponse[ReviewJSON]{Results: toReviewsJSON(reviews)})
}

// Calendar godoc
// @Summary Export an event as iCalendar
// @Tags api
// @Produce text/calendar
// @Param slug path string true "Event slug"
// @Success 200 {string} string "VCALENDAR document"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/events/{slug}/calendar.ics [get]
func (c *APIController) Calendar(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	body, err := c.Events.ExportCalendar(r.Context(), slug)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+slug+`.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
