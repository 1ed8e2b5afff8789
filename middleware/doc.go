// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides gin middleware and response helpers.

# Request Logging

	r.Use(middleware.RequestID(), middleware.RequestLogger(log))

Each completed request is logged once with method, route, status,
duration_ms, remote address, request_id and (when authenticated) user_id.
5xx responses log at error level and 4xx at warn.

# CORS Middleware

	r.Use(middleware.CORS(cfg.CORSOrigins))

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Admin-Key, X-Request-ID. An empty origin
list answers with Access-Control-Allow-Origin: *. Credentials are never
allowed.

# Authentication

	me := r.Group("/me", middleware.RequireUser(cfg.TokenSecret))
	admin := r.Group("/admin", middleware.RequireAdmin(cfg.AdminKeySalt))

RequireUser reads "Authorization: Bearer <token>" and exposes the user id
through middleware.UserID(c). RequireAdmin checks the X-Admin-Key header.

# JSON Helpers

	middleware.JSONResponse(c, http.StatusOK, data)
	middleware.ErrorResponse(c, http.StatusBadRequest, "message")
*/
package middleware
