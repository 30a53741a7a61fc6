// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package logging provides centralized zerolog-based structured logging for Sentinel.
//
// A single global logger is configured once at startup with Init and used
// through package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("transport", "kafka").Msg("Pipeline starting")
//	logging.Ctx(ctx).Warn().Str("user_id", uid).Msg("FRAUD DETECTED")
//
// Adapters expose the same logger to libraries with their own logging
// interfaces: SlogHandler for log/slog consumers (sutureslog) and
// WatermillAdapter for watermill publishers and subscribers.
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// event is never written.
package logging
