package http

import (
	"errors"
	"net/http"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/ashleyalmeida07/SolarizeIt/internal/domain"
)

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

// errorStatus maps service errors onto HTTP status codes.
func errorStatus(err error) int {
	var calcErr *domain.CalculationError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &calcErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrEnrichmentUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal details of unexpected failures.
func publicMessage(err error, status int) string {
	switch status {
	case http.StatusInternalServerError:
		return "internal error"
	case http.StatusBadGateway:
		if errors.Is(err, domain.ErrEnrichmentUnavailable) {
			return "analysis service unavailable, please try again in a few moments"
		}
		return "weather service unavailable, please try again in a few moments"
	default:
		return err.Error()
	}
}
