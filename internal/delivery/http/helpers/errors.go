package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventhub/internal/domain"
)

// ClassifyError maps a service error to a status, a stable code and a client message.
func ClassifyError(err error) (status int, code, message string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrCodeValidation, verr.Error()
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusBadRequest, ErrCodeValidation, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrCodeNotFound, "not found"
	case errors.Is(err, domain.ErrInactiveAccount):
		return http.StatusForbidden, ErrCodeEmailNotVerified, domain.ErrInactiveAccount.Error()
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNoAccess):
		return http.StatusForbidden, ErrCodeForbidden, "Not enough permissions."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, ErrCodeUnauthorized, domain.ErrInvalidCredentials.Error()
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, ErrCodeBadRequest, domain.ErrInvalidToken.Error()
	case errors.Is(err, domain.ErrTooManyAttempts):
		return http.StatusTooManyRequests, ErrCodeTooManyRequests, "Too many login attempts. Try again later."
	}
	return http.StatusInternalServerError, ErrCodeInternalError, "internal server error"
}

// WriteServiceError writes the envelope for err. Unclassified errors are logged.
func WriteServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status, code, message := ClassifyError(err)
	if status == http.StatusInternalServerError && logger != nil {
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	WriteJSONError(w, status, code, message)
}
