// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/logging"
)

// Response messages shared with clients of the original ingestor.
const (
	MsgInvalidPayload     = "Invalid payload structure"
	MsgServiceUnavailable = "Service Unavailable - Event Bus Down"
	MsgQueued             = "Transaction accepted for risk analysis."
	StatusQueued          = "QUEUED"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error string `json:"error"`
}

// QueuedResponse acknowledges an accepted transaction.
type QueuedResponse struct {
	Status  string `json:"status"`
	TraceID string `json:"traceId"`
	Message string `json:"message"`
}

// HealthResponse is the liveness probe body.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// respondJSON writes data as JSON with the given status code.
func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	respondJSON(w, r, statusCode, ErrorResponse{Error: message})
}
