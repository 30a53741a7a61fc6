// Sentinel - Real-Time Transaction Fraud Detection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package config loads Sentinel configuration with koanf.

Configuration is layered, lowest precedence first:

 1. Defaults: built into defaultConfig()
 2. Config file: optional YAML found via CONFIG_PATH, ./config.yaml,
    ./config.yml or /etc/sentinel/config.yaml
 3. Environment variables: mapped through an explicit table, so unrelated
    variables never leak into the configuration

Environment Variables:

	LOG_LEVEL, LOG_FORMAT, LOG_CALLER      logging
	TRANSPORT                              kafka, nats or memory
	TOPIC_INPUT, TOPIC_ALERTS              channel names
	KAFKA_BROKER, KAFKA_GROUP              Kafka brokers (comma list) and group
	NATS_URL, NATS_EMBEDDED, NATS_STORE_DIR
	STATE_BACKEND, STATE_TTL               redis, badger or memory; record TTL
	STORE_FAILURE_POLICY                   anomaly, reprocess or block
	REDIS_HOST, REDIS_PORT, REDIS_ADDR     Redis location (REDIS_ADDR wins)
	REDIS_PASSWORD, REDIS_DB
	BADGER_DIR, BADGER_IN_MEMORY
	SCORER, MODEL_PATH, SCORER_URL         forest or remote scorer
	ANOMALY_THRESHOLD
	API_ENABLED, HTTP_ADDR                 ingest API
	RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW
	CIRCUIT_BREAKER_ENABLED

Usage:

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
*/
package config
