package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// ListResponse is the data of a paginated site listing.
type ListResponse[T any] struct {
	Items      []T                    `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

func newListResponse[S, T any](page *domain.Page[S], convert func([]S) []T) ListResponse[T] {
	return ListResponse[T]{Items: convert(page.Items), Pagination: helpers.MetaOf(page)}
}

// CreateEventRequest is the body for POST /events.
// swagger:model CreateEventRequest
type CreateEventRequest struct {
	Title        string  `json:"title"`
	Slug         string  `json:"slug"`
	Description  string  `json:"description"`
	StartAt      string  `json:"start_at"`
	EndAt        string  `json:"end_at"`
	VenueID      int64   `json:"venue_id"`
	OrganizerID  int64   `json:"organizer_id"`
	Status       string  `json:"status"`
	PriceFrom    string  `json:"price_from"`
	IsFeatured   bool    `json:"is_featured"`
	MaxAttendees int     `json:"max_attendees"`
	CategoryIDs  []int64 `json:"category_ids"`
	TagIDs       []int64 `json:"tag_ids"`
}

// Validate implements helpers.Validator.
func (req *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Title) == "" {
		errs = append(errs, "title is required")
	}
	if req.StartAt == "" {
		errs = append(errs, "start_at is required")
	}
	if req.EndAt == "" {
		errs = append(errs, "end_at is required")
	}
	if req.VenueID <= 0 {
		errs = append(errs, "venue_id is required")
	}
	if req.OrganizerID <= 0 {
		errs = append(errs, "organizer_id is required")
	}
	if req.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must be greater than or equal to 0")
	}
	return errs
}

// UpdateEventRequest is the body for PATCH /events/{slug}. Omitted fields are left unchanged.
// swagger:model UpdateEventRequest
type UpdateEventRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Status       *string `json:"status"`
	StartAt      *string `json:"start_at"`
	EndAt        *string `json:"end_at"`
	VenueID      *int64  `json:"venue_id"`
	OrganizerID  *int64  `json:"organizer_id"`
	PriceFrom    *string `json:"price_from"`
	IsFeatured   *bool   `json:"is_featured"`
	MaxAttendees *int    `json:"max_attendees"`
}

// EventController serves the site event pages.
type EventController struct {
	Logger       *slog.Logger
	EventService domain.EventService
}

func NewEventController(logger *slog.Logger, eventService domain.EventService) *EventController {
	return &EventController{
		Logger:       logger,
		EventService: eventService,
	}
}

// List godoc
// @Summary Browse published events
// @Tags events
// @Produce json
// @Param q query string false "Search text"
// @Param category query string false "Category slug"
// @Param city query string false "City slug"
// @Param year query string false "Year of start"
// @Param ordering query string false "Ordering"
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[controllers.EventJSON]}
// @Router /events [get]
func (c *EventController) List(w http.ResponseWriter, r *http.Request) {
	filters := domain.EventFiltersFromValues(r.URL.Query())
	page, err := c.EventService.ListPublicEvents(r.Context(), filters, helpers.ParsePage(r, helpers.ListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, toEventsJSON))
}

// Mine godoc
// @Summary Events of the organizers the caller manages
// @Description Every status is included. Elevated users see all events.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[controllers.EventJSON]}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events/mine [get]
func (c *EventController) Mine(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	filters := domain.EventFiltersFromValues(r.URL.Query())
	page, err := c.EventService.ListOwnedEvents(r.Context(), p, filters, helpers.ParsePage(r, helpers.ListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, toEventsJSON))
}

// Detail godoc
// @Summary Event page
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventDetailJSON}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug} [get]
func (c *EventController) Detail(w http.ResponseWriter, r *http.Request) {
	p := middleware.PrincipalFromContext(r.Context())
	detail, err := c.EventService.GetEventDetail(r.Context(), p, r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventDetailJSON(detail))
}

// Create godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event"
// @Success 201 {object} helpers.APIResponse{data=controllers.EventJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_json or validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	listing, err := c.EventService.CreateEvent(r.Context(), middleware.PrincipalFromContext(r.Context()), domain.CreateEventInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		VenueID:      req.VenueID,
		OrganizerID:  req.OrganizerID,
		Status:       req.Status,
		PriceFrom:    req.PriceFrom,
		IsFeatured:   req.IsFeatured,
		MaxAttendees: req.MaxAttendees,
		CategoryIDs:  req.CategoryIDs,
		TagIDs:       req.TagIDs,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toEventJSON(listing))
}

// Update godoc
// @Summary Update an event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param body body controllers.UpdateEventRequest true "Changed fields"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_json or validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug} [patch]
func (c *EventController) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	listing, err := c.EventService.UpdateEvent(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug"), domain.UpdateEventInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
		VenueID:      req.VenueID,
		OrganizerID:  req.OrganizerID,
		PriceFrom:    req.PriceFrom,
		IsFeatured:   req.IsFeatured,
		MaxAttendees: req.MaxAttendees,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventJSON(listing))
}

// Delete godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse{data=map[string]string}
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug} [delete]
func (c *EventController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.EventService.DeleteEvent(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}
