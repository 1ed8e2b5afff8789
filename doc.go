// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Kindred API server and its
offline scoring tools.

Kindred runs a conditional dating questionnaire and scores how well two
profiles' stated preferences fit each other's answers.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=kindred.db ADMIN_KEY_SALT=... TOKEN_SECRET=... kindred serve

Or with flags:

	kindred serve -p 3318 -t postgres -d "postgres://..."

A YAML file can supply the same keys with --config. Flags win over the
environment, which wins over the file.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - ADMIN_KEY_SALT (--admin-salt): Secret for admin key HMAC
  - TOKEN_SECRET (--token-secret): Secret for signing user tokens

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - CATALOG_PATH (--catalog): Question catalog YAML (default: built-in)
  - REDIS_ADDR, REDIS_CHANNEL: Publish answer events to Redis
  - LOG_MODE: dev or prod
  - SESSION_CACHE_SIZE, STORE_TIMEOUT, SCORE_WORKERS
  - TRACE_STDOUT, OTEL_EXPORTER_OTLP_ENDPOINT: Span export

# Offline Tools

Answer files are YAML mappings of question id to value:

	kindred score alice.yaml bob.yaml --detail
	kindred rank me.yaml candidates/*.yaml
	kindred catalog validate questions.yaml

# Architecture

  - catalog: Question definitions and the dependency graph
  - resolver: Visibility and invalidation over the graph
  - session: Per-user answer state with background persistence
  - compat: Preference to fact scoring
  - db: Answer and profile storage
  - handlers, router, middleware: The HTTP API
  - auth, cliparse, logger, metrics, tracing, events: Supporting services

See package documentation for each component.
*/
package main
