// Package handlers holds the REST handlers behind /api: manual sends,
// customer registration, direct calendar bookings, and admin operations.
package handlers

import (
	"encoding/json"
	"net/http"
)

// apiResponse is the uniform envelope for the /api endpoints.
type apiResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, apiResponse{Success: false, Error: message})
}
