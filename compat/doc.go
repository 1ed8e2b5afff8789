// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package compat scores how compatible two profiles are from their questionnaire
answers. Everything here is pure and safe to call concurrently.

# Mappings

Mappings links each preference question to the fact question it is judged
against, with a weight and a comparator:

	height_preference      -> height         0.10
	ethnicity_importance   -> ethnicity      0.20
	religion_importance    -> religion       0.20
	education_importance   -> education      0.15
	age_importance         -> date_of_birth  0.15
	appearance_importance  -> body_type      0.10

An entry applies only when A answered the preference and B answered the fact.
Importance answers are read as 0-10 numbers or keywords ("not", "very",
"somewhat", ...). An importance of zero gives the entry full credit.

# Scores

	DirectionalScore(a, b)   // how well b meets a's preferences, 0-100
	BidirectionalScore(a, b) // both directions and their rounded mean

The directional score is the weighted mean of the applicable entries, so
weights need not sum to one. With no applicable entries the score is 0.

DetailedComparison exposes the same evaluation as display rows, and
RankCandidates scores one profile against many on a bounded worker pool.
*/
package compat
