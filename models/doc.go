// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the questionnaire data model and the request and
response types for the API.

# Answer Values

An answer is a Value: a string, a list of strings, a number, or null. The
zero Value is null. Values round-trip through JSON as their plain form:

	"Yes"            → String("Yes")
	["John", "Doe"]  → List("John", "Doe")
	7                → Number(7)
	null             → Null

Scalar returns the normalized form used when a conditional question compares
its parent's answer against conditional_value.

# Domain Types

  - Question: catalog entry with type, options and visibility condition
  - Answer / AnswerSet: one profile's question_id → Value mapping
  - Profile: first/last name plus free-form profile fields
  - CompatibilityResult: a_to_b, b_to_a and average scores (0-100)
  - ComparisonRow: one line of a detailed preference-vs-fact comparison
  - Progress: answered vs visible question counts

# Question Types

	TypeText           = "text"
	TypeSingleChoice   = "single_choice"
	TypeMultipleChoice = "multiple_choice"
	TypeScale          = "scale"

# Request Types

  - CreateProfileRequest: first_name, last_name
  - SaveAnswerRequest: value
  - RankRequest: user_id, candidate_ids

# Response Types

  - CreateProfileResponse: user_id, token
  - QuestionnaireResponse: questions, answers, progress
  - SaveAnswerResponse: question_id, invalidated, persisted
  - RankResponse: user_id, matches
  - ErrorResponse: error, message, retryable
*/
package models
