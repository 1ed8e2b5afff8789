// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"fmt"
	"strings"

	"github.com/danielhkuo/kindred/models"
)

// Validate checks that value has the shape q's type expects.
func Validate(q models.Question, value models.Value) error {
	switch q.Type {
	case models.TypeText:
		switch value.Kind() {
		case models.KindString:
			return nil
		case models.KindList:
			// compound answers such as first/last name
			if len(q.ProfileFieldMapping) > 1 {
				return nil
			}
		}
		return invalid(q, "expects text, got %s", value.Kind())

	case models.TypeSingleChoice:
		if value.Kind() != models.KindString {
			return invalid(q, "expects one option, got %s", value.Kind())
		}
		if !q.HasOption(value.Scalar()) {
			return invalid(q, "%q is not an option", value.Scalar())
		}
		return nil

	case models.TypeMultipleChoice:
		if value.Kind() != models.KindList {
			return invalid(q, "expects a list of options, got %s", value.Kind())
		}
		seen := map[string]bool{}
		for _, item := range value.Strings() {
			if !q.HasOption(item) {
				return invalid(q, "%q is not an option", item)
			}
			if seen[item] {
				return invalid(q, "%q selected twice", item)
			}
			seen[item] = true
		}
		return nil

	case models.TypeScale:
		n, ok := value.Float()
		if !ok {
			return invalid(q, "expects a number, got %s", value.Kind())
		}
		if q.ScaleMin != nil && n < *q.ScaleMin {
			return invalid(q, "%v is below %v", n, *q.ScaleMin)
		}
		if q.ScaleMax != nil && n > *q.ScaleMax {
			return invalid(q, "%v is above %v", n, *q.ScaleMax)
		}
		return nil
	}
	return invalid(q, "unsupported question type %q", q.Type)
}

func invalid(q models.Question, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidValue, q.ID, fmt.Sprintf(format, args...))
}

// ProfileFields maps an answer onto the profile fields named by mapping.
// List items are assigned in order; a scalar answer with several target
// fields is split on whitespace. Any surplus goes to the last field.
func ProfileFields(mapping []string, value models.Value) map[string]string {
	if len(mapping) == 0 || value.IsNull() {
		return nil
	}
	if len(mapping) == 1 {
		return map[string]string{mapping[0]: value.Scalar()}
	}

	var parts []string
	if value.Kind() == models.KindList {
		for _, item := range value.Strings() {
			parts = append(parts, strings.TrimSpace(item))
		}
	} else {
		parts = strings.Fields(value.Scalar())
	}

	fields := make(map[string]string, len(mapping))
	last := len(mapping) - 1
	for i, field := range mapping {
		if i >= len(parts) {
			break
		}
		if i == last {
			fields[field] = strings.TrimSpace(strings.Join(parts[i:], " "))
			break
		}
		fields[field] = parts[i]
	}
	return fields
}
