package controllers

import (
	"log/slog"
	"net/http"

	"eventhub/internal/delivery/http/helpers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/domain"
)

// UpdateAccountRequest is the body for PATCH /users/me. Omitted fields are left unchanged; city "" clears it.
// swagger:model UpdateAccountRequest
type UpdateAccountRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Bio       *string `json:"bio"`
	City      *string `json:"city"`
}

type UserController struct {
	Logger  *slog.Logger
	Service domain.UserService
}

func NewUserController(logger *slog.Logger, svc domain.UserService) *UserController {
	return &UserController{Logger: logger, Service: svc}
}

// Me godoc
// @Summary Current account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=controllers.AccountJSON}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [get]
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	acc, err := c.Service.GetAccount(r.Context(), middleware.PrincipalFromContext(r.Context()))
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toAccountJSON(acc))
}

// UpdateMe godoc
// @Summary Update the current account
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.UpdateAccountRequest true "Changed fields"
// @Success 200 {object} helpers.APIResponse{data=controllers.AccountJSON}
// @Failure 400 {object} helpers.APIResponse "error.code: invalid_json or validation_error"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /users/me [patch]
func (c *UserController) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	acc, err := c.Service.UpdateAccount(r.Context(), middleware.PrincipalFromContext(r.Context()), domain.UpdateAccountInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Bio:       req.Bio,
		CitySlug:  req.City,
	})
	if err != nil {
		helpers.WriteServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, toAccountJSON(acc))
}
