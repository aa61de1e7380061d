package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

func same[T any](items []T) []T { return items }

// OrganizerDetailJSON is an organizer page.
type OrganizerDetailJSON struct {
	Organizer *domain.Organizer `json:"organizer"`
	Events    []EventJSON       `json:"events"`
}

// VenueDetailJSON is a venue page.
type VenueDetailJSON struct {
	Venue  VenueJSON   `json:"venue"`
	Events []EventJSON `json:"events"`
}

// CategoryDetailJSON is a category page.
type CategoryDetailJSON struct {
	Category *domain.Category `json:"category"`
	Events   []EventJSON      `json:"events"`
}

// VenueRequest is the body for venue create and update. City is a city slug.
// swagger:model VenueRequest
type VenueRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	City        *string `json:"city"`
	Address     *string `json:"address"`
	Capacity    *int    `json:"capacity"`
	Description *string `json:"description"`
	MapURL      *string `json:"map_url"`
}

func (req *VenueRequest) input() domain.VenueInput {
	return domain.VenueInput{
		Name:        req.Name,
		Slug:        req.Slug,
		CitySlug:    req.City,
		Address:     req.Address,
		Capacity:    req.Capacity,
		Description: req.Description,
		MapURL:      req.MapURL,
	}
}

// CategoryRequest is the body for category create and update.
// swagger:model CategoryRequest
type CategoryRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// CatalogController serves organizers, venues, categories and tags.
type CatalogController struct {
	Logger     *slog.Logger
	Organizers domain.OrganizerService
	Venues     domain.VenueService
	Categories domain.CategoryService
}

func NewCatalogController(logger *slog.Logger, organizers domain.OrganizerService, venues domain.VenueService, categories domain.CategoryService) *CatalogController {
	return &CatalogController{
		Logger:     logger,
		Organizers: organizers,
		Venues:     venues,
		Categories: categories,
	}
}

// ListOrganizers godoc
// @Summary List organizers
// @Tags catalog
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[domain.Organizer]}
// @Router /organizers [get]
func (c *CatalogController) ListOrganizers(w http.ResponseWriter, r *http.Request) {
	page, err := c.Organizers.ListOrganizers(r.Context(), helpers.ParsePage(r, helpers.ListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, same[*domain.Organizer]))
}

// GetOrganizer godoc
// @Summary Organizer page with its events
// @Tags catalog
// @Produce json
// @Param slug path string true "Organizer slug"
// @Success 200 {object} helpers.APIResponse{data=controllers.OrganizerDetailJSON}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /organizers/{slug} [get]
func (c *CatalogController) GetOrganizer(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Organizers.GetOrganizer(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, OrganizerDetailJSON{
		Organizer: detail.Organizer,
		Events:    toEventsJSON(detail.Events),
	})
}

// ListVenues godoc
// @Summary List venues
// @Tags catalog
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[controllers.VenueJSON]}
// @Router /venues [get]
func (c *CatalogController) ListVenues(w http.ResponseWriter, r *http.Request) {
	page, err := c.Venues.ListVenues(r.Context(), helpers.ParsePage(r, helpers.ListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, toVenuesJSON))
}

// GetVenue godoc
// @Summary Venue page with its events
// @Tags catalog
// @Produce json
// @Param slug path string true "Venue slug"
// @Success 200 {object} helpers.APIResponse{data=controllers.VenueDetailJSON}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{slug} [get]
func (c *CatalogController) GetVenue(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Venues.GetVenue(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, VenueDetailJSON{
		Venue:  toVenueJSON(detail.Venue),
		Events: toEventsJSON(detail.Events),
	})
}

// CreateVenue godoc
// @Summary Create a venue
// @Description Organizers and staff only.
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.VenueRequest true "Venue"
// @Success 201 {object} helpers.APIResponse{data=controllers.VenueJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /venues [post]
func (c *CatalogController) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	v, err := c.Venues.CreateVenue(r.Context(), middleware.PrincipalFromContext(r.Context()), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toVenueJSON(v))
}

// UpdateVenue godoc
// @Summary Update a venue
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Venue slug"
// @Param body body controllers.VenueRequest true "Changed fields"
// @Success 200 {object} helpers.APIResponse{data=controllers.VenueJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /venues/{slug} [patch]
func (c *CatalogController) UpdateVenue(w http.ResponseWriter, r *http.Request) {
	var req VenueRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	v, err := c.Venues.UpdateVenue(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug"), req.input())
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toVenueJSON(v))
}

// DeleteVenue godoc
// @Summary Delete a venue
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Venue slug"
// @Success 200 {object} helpers.APIResponse{data=map[string]string}
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error (venue in use)"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /venues/{slug} [delete]
func (c *CatalogController) DeleteVenue(w http.ResponseWriter, r *http.Request) {
	if err := c.Venues.DeleteVenue(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListCategories godoc
// @Summary List categories
// @Tags catalog
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[domain.Category]}
// @Router /categories [get]
func (c *CatalogController) ListCategories(w http.ResponseWriter, r *http.Request) {
	page, err := c.Categories.ListCategories(r.Context(), helpers.ParsePage(r, helpers.ListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, same[*domain.Category]))
}

// GetCategory godoc
// @Summary Category page with its events
// @Tags catalog
// @Produce json
// @Param slug path string true "Category slug"
// @Success 200 {object} helpers.APIResponse{data=controllers.CategoryDetailJSON}
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{slug} [get]
func (c *CatalogController) GetCategory(w http.ResponseWriter, r *http.Request) {
	detail, err := c.Categories.GetCategory(r.Context(), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CategoryDetailJSON{
		Category: detail.Category,
		Events:   toEventsJSON(detail.Events),
	})
}

// CreateCategory godoc
// @Summary Create a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CategoryRequest true "Category"
// @Success 201 {object} helpers.APIResponse{data=domain.Category}
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /categories [post]
func (c *CatalogController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Categories.CreateCategory(r.Context(), middleware.PrincipalFromContext(r.Context()), domain.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, cat)
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Param body body controllers.CategoryRequest true "Changed fields"
// @Success 200 {object} helpers.APIResponse{data=domain.Category}
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{slug} [patch]
func (c *CatalogController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	cat, err := c.Categories.UpdateCategory(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug"), domain.CategoryInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, cat)
}

// DeleteCategory godoc
// @Summary Delete a category
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Category slug"
// @Success 200 {object} helpers.APIResponse{data=map[string]string}
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /categories/{slug} [delete]
func (c *CatalogController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := c.Categories.DeleteCategory(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug")); err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListTags godoc
// @Summary List tags
// @Tags catalog
// @Produce json
// @Param page query int false "Page number"
// @Success 200 {object} helpers.APIResponse{data=controllers.ListResponse[domain.Tag]}
// @Router /tags [get]
func (c *CatalogController) ListTags(w http.ResponseWriter, r *http.Request) {
	page, err := c.Categories.ListTags(r.Context(), helpers.ParsePage(r, helpers.TagListingPageSize))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, newListResponse(page, same[*domain.Tag]))
}
