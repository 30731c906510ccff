package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aromas-andinas/storefront/internal/errs"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, details string) {
	response := map[string]any{
		"status":  "error",
		"message": message,
	}
	if details != "" {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

// statusFor maps the error taxonomy to HTTP statuses and a caller-safe
// message. Backend internals stay in the logs; the caller gets a clear reason.
func statusFor(err error) (int, string, string) {
	var validationErr *errs.ValidationError
	var notFoundErr *errs.NotFoundError
	var gatewayErr *errs.GatewayError
	var configErr *errs.ConfigurationError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "Invalid request", validationErr.Error()
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound, "Not found", notFoundErr.Error()
	case errors.Is(err, errs.ErrDuplicateOrder), errors.Is(err, errs.ErrVersionConflict):
		return http.StatusConflict, "Conflicting write, please retry", ""
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway, "Payment could not be processed", gatewayErr.Msg
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable, "Payment service unavailable", ""
	default:
		return http.StatusInternalServerError, "Something went wrong", ""
	}
}
