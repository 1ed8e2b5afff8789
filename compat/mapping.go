// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package compat

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/kindred/models"
)

// Kind selects how an entry's preference answer is read.
type Kind int

const (
	// KindImportance preferences are "how important is X" answers. Zero
	// importance gives full credit.
	KindImportance Kind = iota
	// KindPreference preferences state a desired value directly.
	KindPreference
)

// Comparator scores how well B's fact satisfies A given A's importance
// level. It returns a value in [0,1].
type Comparator func(in Input) float64

// Input carries everything a comparator may look at.
type Input struct {
	Importance float64
	Preference models.Value
	// OwnFact is A's own answer to the fact question.
	OwnFact models.Value
	// Fact is B's answer to the fact question.
	Fact models.Value
}

// Mapping links a preference question on one profile to a fact question on
// the other.
type Mapping struct {
	PreferenceID string
	FactID       string
	Weight       float64
	Kind         Kind
	Compare      Comparator
}

// Mappings is the scoring table, in display order.
var Mappings = []Mapping{
	{PreferenceID: "height_preference", FactID: "height", Weight: 0.1, Kind: KindPreference, Compare: compareHeight},
	{PreferenceID: "ethnicity_importance", FactID: "ethnicity", Weight: 0.2, Kind: KindImportance, Compare: compareEthnicity},
	{PreferenceID: "religion_importance", FactID: "religion", Weight: 0.2, Kind: KindImportance, Compare: compareReligion},
	{PreferenceID: "education_importance", FactID: "education", Weight: 0.15, Kind: KindImportance, Compare: compareEducation},
	{PreferenceID: "age_importance", FactID: "date_of_birth", Weight: 0.15, Kind: KindImportance, Compare: constant(0.8)},
	{PreferenceID: "appearance_importance", FactID: "body_type", Weight: 0.1, Kind: KindImportance, Compare: constant(0.7)},
}

func init() {
	MustValidateMappings(Mappings)
}

// ValidateMappings checks a scoring table for programming errors.
func ValidateMappings(mappings []Mapping) error {
	seen := map[string]bool{}
	for i, m := range mappings {
		switch {
		case m.PreferenceID == "" || m.FactID == "":
			return fmt.Errorf("mapping %d: preference and fact ids are required", i)
		case seen[m.PreferenceID]:
			return fmt.Errorf("mapping %d: duplicate preference %q", i, m.PreferenceID)
		case m.Weight <= 0 || m.Weight > 1:
			return fmt.Errorf("mapping %s: weight %v outside (0,1]", m.PreferenceID, m.Weight)
		case m.Compare == nil:
			return fmt.Errorf("mapping %s: missing comparator", m.PreferenceID)
		case m.Kind != KindImportance && m.Kind != KindPreference:
			return fmt.Errorf("mapping %s: unknown kind %d", m.PreferenceID, m.Kind)
		}
		seen[m.PreferenceID] = true
	}
	return nil
}

// MustValidateMappings panics if the table is malformed.
func MustValidateMappings(mappings []Mapping) {
	if err := ValidateMappings(mappings); err != nil {
		panic("compat: " + err.Error())
	}
}

// ImportanceLevel converts an importance answer to [0,1]. Numbers are read
// on a 0-10 scale; strings are matched on keywords and default to 0.5.
func ImportanceLevel(v models.Value) float64 {
	if v.IsNull() {
		return 0
	}
	if n, ok := v.Float(); ok {
		return clamp(n / 10)
	}

	s := strings.ToLower(v.Scalar())
	switch {
	case strings.Contains(s, "not") || strings.Contains(s, "unimportant"):
		return 0
	case strings.Contains(s, "very") || strings.Contains(s, "essential"):
		return 1
	case strings.Contains(s, "somewhat") || strings.Contains(s, "moderately"):
		return 0.5
	}
	return 0.5
}

// importance returns the level a mapping entry is weighted at.
func (m Mapping) importance(pref models.Value) float64 {
	if m.Kind == KindPreference {
		if noPreference(pref) {
			return 0
		}
		return 0.5
	}
	return ImportanceLevel(pref)
}

// ImportanceLabel buckets a level into a display label.
func ImportanceLabel(level float64) string {
	switch {
	case level >= 0.8:
		return "Very Important"
	case level >= 0.5:
		return "Moderately Important"
	case level > 0:
		return "Somewhat Important"
	}
	return "Not Important"
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
