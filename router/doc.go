// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Kindred API.

# Route Registration

NewRouter builds a gin engine with all endpoints:

	r := router.NewRouter(router.Deps{
		Store:    store,
		Catalog:  cat,
		Sessions: sessions,
		Config:   cfg,
		Log:      log,
	})

Every request passes through panic recovery, OpenTelemetry spans, request
ids, request logging and CORS.

# Endpoints

Service:

	GET /health
	GET /metrics - Prometheus collectors
	GET /catalog - Questions grouped by category

Onboarding:

	POST /profiles - Create a profile and issue a user token

Questionnaire (requires Authorization: Bearer <token>):

	GET    /me/profile
	GET    /me/questionnaire
	PUT    /me/answers/:question_id
	DELETE /me/answers/:question_id

Curation (requires X-Admin-Key):

	GET  /admin/compatibility?a=&b=
	GET  /admin/compatibility/detail?a=&b=
	POST /admin/compatibility/rank
*/
package router
