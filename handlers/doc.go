// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the gin handlers for the Kindred API.

# Handler Types

Each handler is a struct holding its dependencies:

  - ProfileHandler: Onboarding and profile lookup
  - QuestionnaireHandler: Visible questions, saving and deleting answers
  - CompatibilityHandler: Scores and rankings for the curation console
  - CatalogHandler: The question catalog

	profileHandler := handlers.NewProfileHandler(store, cfg, log)

# Onboarding

	POST /profiles → CreateProfile (returns user_id and a bearer token)

# Questionnaire

All routes take "Authorization: Bearer <token>":

	GET    /me/profile                → GetMyProfile
	GET    /me/questionnaire          → GetQuestionnaire
	PUT    /me/answers/{question_id}  → SaveAnswer   {"value": ...}
	DELETE /me/answers/{question_id}  → DeleteAnswer

Answers go through the user's answer session. The response lists the
dependent answers the change removed; the store writes happen in the
background. A null value is acknowledged with "ignored": true. If the
session cannot be loaded the handler answers 503 with "retryable": true.

# Curation

All routes take the X-Admin-Key header:

	GET  /admin/compatibility?a=&b=        → GetScore
	GET  /admin/compatibility/detail?a=&b= → GetDetail
	POST /admin/compatibility/rank         → Rank

Scores are computed from persisted answers.
*/
package handlers
