// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventprocessor

import "errors"

// ErrClosed is returned by a consumer or producer after Close.
var ErrClosed = errors.New("transport closed")

// ErrUnknownTransport is returned when the configured transport kind is not recognized.
var ErrUnknownTransport = errors.New("unknown transport")

// ErrInvalidConfig is returned when configuration is invalid.
var ErrInvalidConfig = errors.New("invalid configuration")
