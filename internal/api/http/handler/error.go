package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pkondratev/auth-server/internal/model"
)

type errorResponse struct {
	Error      string   `json:"error"`
	Violations []string `json:"violations,omitempty"`
}

// writeError maps service errors onto HTTP status codes. Unauthorized-class
// errors keep their message, everything unexpected collapses to a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:      "password does not meet requirements",
			Violations: validationErr.Violations,
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case model.IsUnauthorized(err):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, model.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
