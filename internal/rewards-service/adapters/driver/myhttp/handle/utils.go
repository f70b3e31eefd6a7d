package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"waste-collect/internal/rewards-service/core/myerrors"
)

type errorResponse struct {
	Error string `json:"error"`
}

func JsonError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}

func jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// statusFor maps the core error taxonomy onto HTTP statuses. A refused spend
// is a conflict, not a client mistake: the request was well formed, the state
// just could not carry it.
func statusFor(err error) int {
	switch {
	case errors.Is(err, myerrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, myerrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, myerrors.ErrStateConflict),
		errors.Is(err, myerrors.ErrInsufficientBalance),
		errors.Is(err, myerrors.ErrOutOfStock):
		return http.StatusConflict
	case errors.Is(err, myerrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
