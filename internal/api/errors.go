// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import "errors"

var (
	// ErrInvalidPayload indicates a transaction body without a usable userId or amount.
	ErrInvalidPayload = errors.New("invalid payload structure")

	// ErrPublisherRequired indicates a handler was built without a publisher.
	ErrPublisherRequired = errors.New("publisher is required")
)
