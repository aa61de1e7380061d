package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// ReviewRequest is the body for POST /events/{slug}/reviews.
// swagger:model ReviewRequest
type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// FavoriteResponse reports the favorite state after a toggle.
type FavoriteResponse struct {
	Favorited bool `json:"favorited"`
}

// EngagementController serves reviews and favorites. Every route requires login.
type EngagementController struct {
	Logger    *slog.Logger
	Reviews   domain.ReviewService
	Favorites domain.FavoriteService
}

func NewEngagementController(logger *slog.Logger, reviews domain.ReviewService, favorites domain.FavoriteService) *EngagementController {
	return &EngagementController{
		Logger:    logger,
		Reviews:   reviews,
		Favorites: favorites,
	}
}

// AddReview godoc
// @Summary Review an event
// @Description Rating 1..5; one review per user and event.
// @Tags engagement
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Param body body controllers.ReviewRequest true "Review"
// @Success 201 {object} helpers.APIResponse{data=controllers.ReviewJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{slug}/reviews [post]
func (c *EngagementController) AddReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	review, err := c.Reviews.AddReview(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug"), domain.ReviewInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, toReviewsJSON([]*domain.ReviewView{review})[0])
}

// ToggleFavorite godoc
// @Summary Add or remove an event from favorites
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param slug path string true "Event slug"
// @Success 200 {object} helpers.APIResponse{data=controllers.FavoriteResponse}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /favorites/{slug}/toggle [post]
func (c *EngagementController) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	on, err := c.Favorites.Toggle(r.Context(), middleware.PrincipalFromContext(r.Context()), r.PathValue("slug"))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, FavoriteResponse{Favorited: on})
}

// ListFavorites godoc
// @Summary Favorite events, newest first
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]controllers.EventJSON}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /favorites [get]
func (c *EngagementController) ListFavorites(w http.ResponseWriter, r *http.Request) {
	events, err := c.Favorites.ListFavorites(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toEventsJSON(events))
}
