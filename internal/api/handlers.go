// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/validation"
)

// MaxBodyBytes caps the size of an ingest request body.
const MaxBodyBytes = 64 << 10

// Event metadata stamped on every ingested transaction.
const (
	EventSource  = "MOBILE_APP"
	EventVersion = "2.4.1"
)

// Publisher enqueues an encoded event. eventprocessor producers satisfy it.
type Publisher interface {
	Produce(ctx context.Context, topic, key string, payload []byte) error
}

// TransactionRequest is the inbound POST body. Pointers tell a missing
// field from a zero value.
type TransactionRequest struct {
	UserID     *string  `json:"userId" validate:"required,notblank"`
	Amount     *float64 `json:"amount" validate:"required,gte=0"`
	MerchantID *string  `json:"merchantId,omitempty"`
	Location   *string  `json:"location,omitempty"`
	Currency   *string  `json:"currency,omitempty"`
}

// EventMetadata describes where an event came from.
type EventMetadata struct {
	Source  string `json:"source"`
	Version string `json:"version"`
}

// TransactionEvent is what the ingest API publishes to the input topic.
// The detector reads traceId, userId, amount and location and ignores the rest.
type TransactionEvent struct {
	TraceID    string        `json:"traceId"`
	UserID     string        `json:"userId"`
	Amount     float64       `json:"amount"`
	MerchantID *string       `json:"merchantId,omitempty"`
	Location   *string       `json:"location,omitempty"`
	Currency   *string       `json:"currency,omitempty"`
	Timestamp  int64         `json:"timestamp"`
	Metadata   EventMetadata `json:"metadata"`
}

// Handler serves the ingest endpoints.
type Handler struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
	now       func() time.Time
	newID     func() string
}

// NewHandler creates a handler publishing to topic.
func NewHandler(publisher Publisher, topic string) (*Handler, error) {
	if publisher == nil {
		return nil, ErrPublisherRequired
	}
	return &Handler{
		publisher: publisher,
		topic:     topic,
		timeout:   5 * time.Second,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// WithPublishTimeout bounds each publish.
func (h *Handler) WithPublishTimeout(d time.Duration) *Handler {
	h.timeout = d
	return h
}

// decodeTransaction parses and checks an ingest body.
func decodeTransaction(body io.Reader) (*TransactionRequest, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	var req TransactionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, verr)
	}
	return &req, nil
}

// Transaction handles POST /api/v1/transaction. It answers 202 once the
// event is on the input topic; detection happens asynchronously.
func (h *Handler) Transaction(w http.ResponseWriter, r *http.Request) {
	log := logging.Ctx(r.Context())

	req, err := decodeTransaction(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		log.Debug().Err(err).Msg("Rejected transaction")
		respondError(w, r, http.StatusBadRequest, MsgInvalidPayload)
		return
	}

	event := TransactionEvent{
		TraceID:    h.newID(),
		UserID:     *req.UserID,
		Amount:     *req.Amount,
		MerchantID: req.MerchantID,
		Location:   req.Location,
		Currency:   req.Currency,
		Timestamp:  h.now().UnixMilli(),
		Metadata:   EventMetadata{Source: EventSource, Version: EventVersion},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("trace_id", event.TraceID).Msg("Failed to encode transaction event")
		respondError(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	if err := h.publisher.Produce(ctx, h.topic, event.UserID, payload); err != nil {
		log.Error().Err(err).Str("trace_id", event.TraceID).Str("topic", h.topic).Msg("Event publish failed")
		respondError(w, r, http.StatusServiceUnavailable, MsgServiceUnavailable)
		return
	}

	log.Debug().Str("trace_id", event.TraceID).Str("user_id", event.UserID).Msg("Transaction queued")
	respondJSON(w, r, http.StatusAccepted, QueuedResponse{
		Status:  StatusQueued,
		TraceID: event.TraceID,
		Message: MsgQueued,
	})
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, HealthResponse{Status: "UP", Service: "sentinel-ingestor"})
}
