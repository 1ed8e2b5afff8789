// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package compat

import (
	"math"
	"strings"

	"github.com/danielhkuo/kindred/models"
)

// Mismatch penalties per unit of importance.
const (
	ethnicityPenalty = 0.3
	religionPenalty  = 0.4
	educationPenalty = 0.2
)

func constant(score float64) Comparator {
	return func(Input) float64 { return score }
}

func noPreference(v models.Value) bool {
	if v.IsEmpty() {
		return true
	}
	s := strings.ToLower(v.Scalar())
	return s == "no preference" || s == "any" || s == "none"
}

// compareHeight only checks that a height is on file.
// TODO: score against the preferred range once height_preference is a
// structured min/max answer instead of free text.
func compareHeight(in Input) float64 {
	if noPreference(in.Preference) {
		return 0.8
	}
	if in.Fact.IsEmpty() {
		return 0.5
	}
	return 1.0
}

func compareEthnicity(in Input) float64 {
	if overlaps(in.OwnFact, in.Fact) {
		return 1.0
	}
	return math.Max(0, 1.0-in.Importance*ethnicityPenalty)
}

func compareReligion(in Input) float64 {
	own := in.OwnFact.Scalar()
	if own != "" && own == in.Fact.Scalar() {
		return 1.0
	}
	return math.Max(0, 1.0-in.Importance*religionPenalty)
}

func compareEducation(in Input) float64 {
	if EducationLevel(in.Fact) >= educationBachelors {
		return 1.0
	}
	return math.Max(0.5, 1.0-in.Importance*educationPenalty)
}

const (
	educationUnknown = iota
	educationHighSchool
	educationBachelors
	educationMasters
	educationDoctorate
)

// EducationLevel places an education answer on an ordinal scale
// (0 unknown, 1 high school, 2 bachelor's, 3 master's, 4 doctorate).
func EducationLevel(v models.Value) int {
	s := strings.ToLower(v.Scalar())
	switch {
	case strings.Contains(s, "phd") || strings.Contains(s, "doctor"):
		return educationDoctorate
	case strings.Contains(s, "master"):
		return educationMasters
	case strings.Contains(s, "bachelor"):
		return educationBachelors
	case strings.Contains(s, "high school"):
		return educationHighSchool
	}
	return educationUnknown
}

// overlaps reports whether two answers share at least one item, ignoring
// case. A missing side never overlaps.
func overlaps(a, b models.Value) bool {
	if a.IsEmpty() || b.IsEmpty() {
		return false
	}
	set := map[string]bool{}
	for _, item := range a.Strings() {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = true
		}
	}
	for _, item := range b.Strings() {
		if set[strings.ToLower(strings.TrimSpace(item))] {
			return true
		}
	}
	return false
}
