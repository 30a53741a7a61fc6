// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata, so reuse matters on the hot path where every inbound
// transaction is validated.
//
// Field names in errors are taken from the json tag, so messages name the
// wire field ("userId is required") rather than the Go field.
//
//	type wireTransaction struct {
//	    UserID *string  `json:"userId" validate:"required"`
//	    Amount *float64 `json:"amount" validate:"required,gte=0"`
//	}
//
//	if verr := validation.ValidateStruct(&w); verr != nil {
//	    return fmt.Errorf("%w: %w", detection.ErrMalformedEvent, verr)
//	}
package validation
