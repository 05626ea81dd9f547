package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/NasaVasa/reservewatch/internal/domain"
	"github.com/NasaVasa/reservewatch/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidCurrency),
		errors.Is(err, usecase.ErrInvalidComparison),
		errors.Is(err, usecase.ErrInvalidTarget),
		errors.Is(err, usecase.ErrInvalidOrder):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrTriggerNotFound),
		errors.Is(err, usecase.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrNotificationsDisabled):
		return http.StatusConflict
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
