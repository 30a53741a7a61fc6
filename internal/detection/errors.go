// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"errors"
	"fmt"
)

// ErrStateStoreUnavailable is returned when the location store cannot be
// read or written, including timeouts.
var ErrStateStoreUnavailable = errors.New("state store unavailable")

// ErrMalformedEvent is returned when an inbound event is missing userId or
// amount, or either has the wrong type.
var ErrMalformedEvent = errors.New("malformed event")

// ErrScoringFailure is returned when the scorer errors or produces a
// non-finite score.
var ErrScoringFailure = errors.New("scoring failure")

// ErrPublishFailure is returned when the alert sink rejects an alert.
var ErrPublishFailure = errors.New("alert publish failure")

// ErrNotFraud is returned by Publisher.Publish for a non-fraud verdict.
var ErrNotFraud = errors.New("verdict is not fraud")

// ErrInvalidPolicy is returned for an unknown store failure policy name.
var ErrInvalidPolicy = errors.New("invalid store failure policy")

// PublishError reports an alert the sink did not accept. It matches both
// ErrPublishFailure and the underlying sink error under errors.Is.
type PublishError struct {
	Alert *Alert
	Err   error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish alert %s for user %s: %v", e.Alert.TraceID, e.Alert.UserID, e.Err)
}

func (e *PublishError) Unwrap() []error {
	return []error{ErrPublishFailure, e.Err}
}
