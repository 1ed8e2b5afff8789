// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Commands that own their flag set (cobra) call AddFlags and FromFlags instead.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: PostgreSQL or SQLite connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - AdminKeySalt: Secret for the curation admin key HMAC (required)
  - TokenSecret: Secret for signing user tokens (required)
  - CatalogPath: Question catalog YAML (default: built-in catalog)
  - RedisAddr, RedisChannel: Where answer events are published
  - LogMode: dev or prod
  - SessionCacheSize: Answer sessions kept in memory (default: 1024)
  - StoreTimeout: Timeout for each store call (default: 5s)
  - ScoreWorkers: Concurrent workers for batch ranking (default: 8)
  - TraceStdout, OTLPEndpoint: Trace export

# CLI Flags

	-p, --port          Server port
	-d, --database-url  Database URL
	-t, --database-type Database type
	--admin-salt        Admin key salt
	--token-secret      User token secret
	--catalog           Catalog file
	--redis-addr        Redis address
	--redis-channel     Redis channel
	--log-mode          Log mode
	--session-cache     Session cache size
	--store-timeout     Store call timeout
	--score-workers     Ranking workers
	--trace-stdout      Print spans to stdout
	--otlp-endpoint     OTLP/HTTP collector
	--config            YAML config file

# Environment Variables

Flags fall back to environment variables:

	PORT               → -p
	DATABASE_URL       → -d
	DATABASE_TYPE      → -t
	ADMIN_KEY_SALT     → --admin-salt
	TOKEN_SECRET       → --token-secret
	CATALOG_PATH       → --catalog
	REDIS_ADDR         → --redis-addr
	REDIS_CHANNEL      → --redis-channel
	LOG_MODE           → --log-mode
	SESSION_CACHE_SIZE → --session-cache
	STORE_TIMEOUT      → --store-timeout
	SCORE_WORKERS      → --score-workers
	TRACE_STDOUT       → --trace-stdout
	OTEL_EXPORTER_OTLP_ENDPOINT → --otlp-endpoint

A .env file in the working directory is loaded first. CLI flags take
precedence over environment variables, which take precedence over the
config file. The config file uses the flag names as keys:

	port: 8080
	score-workers: 16

# Validation

ParseFlags returns an error if required values are missing:

  - DATABASE_URL must be provided
  - ADMIN_KEY_SALT must be provided
  - TOKEN_SECRET must be provided
*/
package cliparse
