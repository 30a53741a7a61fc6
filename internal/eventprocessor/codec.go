// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/validation"
)

// wireTransaction is the inbound JSON shape. Pointers distinguish a missing
// field from a zero value.
type wireTransaction struct {
	TraceID  *string  `json:"traceId"`
	UserID   *string  `json:"userId" validate:"required,notblank"`
	Amount   *float64 `json:"amount" validate:"required,gte=0"`
	Location *string  `json:"location"`
}

// Codec converts between wire payloads and detection types.
type Codec struct{}

// NewCodec creates a codec.
func NewCodec() *Codec {
	return &Codec{}
}

// Decode parses an inbound transaction. Errors wrap detection.ErrMalformedEvent.
// Missing or empty traceId and location are filled with their defaults.
func (c *Codec) Decode(data []byte) (detection.Transaction, error) {
	var w wireTransaction
	if err := json.Unmarshal(data, &w); err != nil {
		return detection.Transaction{}, fmt.Errorf("%w: %w", detection.ErrMalformedEvent, err)
	}
	if verr := validation.ValidateStruct(&w); verr != nil {
		return detection.Transaction{}, fmt.Errorf("%w: %w", detection.ErrMalformedEvent, verr)
	}

	tx := detection.Transaction{
		UserID: *w.UserID,
		Amount: *w.Amount,
	}
	if w.TraceID != nil {
		tx.TraceID = *w.TraceID
	}
	if w.Location != nil {
		tx.Location = *w.Location
	}
	return tx.Normalize(), nil
}

// EncodeTransaction serializes a transaction for the input topic.
func (c *Codec) EncodeTransaction(tx detection.Transaction) ([]byte, error) {
	data, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction: %w", err)
	}
	return data, nil
}

// Encode serializes an alert for the alerts topic.
func (c *Codec) Encode(alert *detection.Alert) ([]byte, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return nil, fmt.Errorf("marshal alert: %w", err)
	}
	return data, nil
}
