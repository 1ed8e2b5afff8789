// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog loads and validates the onboarding question catalog.

A catalog is read-only once built. The embedded default is parsed once and
shared by every session in the process:

	c, err := catalog.Default()

Custom catalogs are YAML documents with a top-level questions list:

	questions:
	  - id: smoker
	    order: 80
	    type: single_choice
	    text: Do you smoke?
	    options: ["Yes", "No"]
	  - id: cigarettes_per_day
	    order: 90
	    type: scale
	    text: About how many cigarettes a day?
	    conditional_on: smoker
	    conditional_value: "Yes"

# Validation

New and Load reject a catalog (ErrInvalidCatalog) when:

  - ids are missing or duplicated
  - a choice question has no options
  - conditional_on names an unknown question, or one whose order is not
    strictly smaller
  - conditional_on names a multiple choice question
*/
package catalog
