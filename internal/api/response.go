// CoalMine-B - Mine Safety Management and Real-Time Monitoring
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aryam2121/CoalMine-B

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Aryam2121/CoalMine-B/internal/logging"
)

// apiResponse is the envelope for every JSON response.
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respondJSON writes v wrapped in the success envelope.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: v}); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes an error envelope with the given status.
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // HTTP response write errors are not recoverable
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: message})
}
