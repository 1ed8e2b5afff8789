package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/models"
)

func chainCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]models.Question{
		{ID: "smoker", Order: 1, Type: models.TypeSingleChoice, Text: "Smoke?", Options: []string{"Yes", "No"}},
		{ID: "cigarettes_per_day", Order: 2, Type: models.TypeScale, Text: "How many?", ConditionalOn: "smoker", ConditionalValue: "Yes"},
		{ID: "quit_attempts", Order: 3, Type: models.TypeScale, Text: "Quit attempts?", ConditionalOn: "smoker", ConditionalValue: "Yes"},
		{ID: "has_children", Order: 4, Type: models.TypeSingleChoice, Text: "Kids?", Options: []string{"Yes", "No"}},
		{ID: "live_with_you", Order: 5, Type: models.TypeSingleChoice, Text: "Live with you?", Options: []string{"Yes", "No", "Sometimes"}, ConditionalOn: "has_children", ConditionalValue: "Yes"},
		{ID: "custody", Order: 6, Type: models.TypeText, Text: "Schedule?", ConditionalOn: "live_with_you", ConditionalValue: "Sometimes"},
		{ID: "custody_notes", Order: 7, Type: models.TypeText, Text: "Notes?", ConditionalOn: "custody", ConditionalValue: "complicated"},
		{ID: "age_units", Order: 8, Type: models.TypeScale, Text: "Age?"},
		{ID: "senior", Order: 9, Type: models.TypeText, Text: "Senior?", ConditionalOn: "age_units", ConditionalValue: "65"},
	})
	require.NoError(t, err)
	return c
}

func ids(questions []models.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

func TestVisibleQuestions(t *testing.T) {
	c := chainCatalog(t)

	tests := []struct {
		name    string
		answers models.AnswerSet
		want    []string
	}{
		{
			name:    "no answers shows only unconditional questions",
			answers: models.AnswerSet{},
			want:    []string{"smoker", "has_children", "age_units"},
		},
		{
			name:    "smoker yes reveals dependents",
			answers: models.AnswerSet{"smoker": models.String("Yes")},
			want:    []string{"smoker", "cigarettes_per_day", "quit_attempts", "has_children", "age_units"},
		},
		{
			name:    "smoker no hides dependents",
			answers: models.AnswerSet{"smoker": models.String("No")},
			want:    []string{"smoker", "has_children", "age_units"},
		},
		{
			name: "multi hop chain",
			answers: models.AnswerSet{
				"has_children":  models.String("Yes"),
				"live_with_you": models.String("Sometimes"),
			},
			want: []string{"smoker", "has_children", "live_with_you", "custody", "age_units"},
		},
		{
			name:    "numeric answer compared on normalized scalar",
			answers: models.AnswerSet{"age_units": models.Number(65)},
			want:    []string{"smoker", "has_children", "age_units", "senior"},
		},
		{
			name:    "surrounding whitespace is normalized",
			answers: models.AnswerSet{"smoker": models.String(" Yes ")},
			want:    []string{"smoker", "cigarettes_per_day", "quit_attempts", "has_children", "age_units"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(VisibleQuestions(c, tt.answers)))
		})
	}
}

func TestVisibleQuestionsIsOrderedSubset(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	answers := models.AnswerSet{
		"smoker":                 models.String("Yes"),
		"has_children":           models.String("Yes"),
		"children_live_with_you": models.String("No"),
	}
	visible := VisibleQuestions(c, answers)
	require.NotEmpty(t, visible)
	for i := 1; i < len(visible); i++ {
		assert.LessOrEqual(t, visible[i-1].Order, visible[i].Order)
	}
	for _, q := range visible {
		_, ok := c.Get(q.ID)
		assert.True(t, ok)
	}
}

func TestVisibleQuestionsEmptyCatalog(t *testing.T) {
	empty, err := catalog.New(nil)
	require.NoError(t, err)
	assert.Empty(t, VisibleQuestions(empty, models.AnswerSet{"x": models.String("y")}))
	assert.Empty(t, VisibleQuestions(nil, nil))
}

func TestDependentsToInvalidate(t *testing.T) {
	c := chainCatalog(t)

	assert.Equal(t, []string{"cigarettes_per_day", "quit_attempts"},
		DependentsToInvalidate(c, "smoker", models.String("No")))
	assert.Empty(t, DependentsToInvalidate(c, "smoker", models.String("Yes")))
	assert.Equal(t, []string{"cigarettes_per_day", "quit_attempts"},
		DependentsToInvalidate(c, "smoker", models.Null), "null never matches")

	// One level only
	assert.Equal(t, []string{"live_with_you"}, DependentsToInvalidate(c, "has_children", models.String("No")))
	assert.Empty(t, DependentsToInvalidate(c, "about_me", models.String("x")))
}

func TestCascadeClosesMultiHopChains(t *testing.T) {
	c := chainCatalog(t)

	assert.Equal(t, []string{"live_with_you", "custody", "custody_notes"},
		Cascade(c, "has_children", models.String("No")))

	assert.Equal(t, []string{"custody", "custody_notes"},
		Cascade(c, "live_with_you", models.String("Yes")))

	assert.Empty(t, Cascade(c, "has_children", models.String("Yes")))
	assert.Empty(t, Cascade(c, "live_with_you", models.String("Sometimes")))
}

func TestOrphaned(t *testing.T) {
	c := chainCatalog(t)

	answers := models.AnswerSet{
		"smoker":             models.String("No"),
		"cigarettes_per_day": models.Number(10),
		"has_children":       models.String("No"),
		"live_with_you":      models.String("Sometimes"),
		"custody":            models.String("complicated"),
		"custody_notes":      models.String("weekends"),
		"age_units":          models.Number(65),
		"senior":             models.String("yes"),
	}
	assert.Equal(t, []string{"cigarettes_per_day", "live_with_you", "custody", "custody_notes"}, Orphaned(c, answers))
	// input is left alone
	assert.Len(t, answers, 8)

	consistent := models.AnswerSet{
		"smoker":             models.String("Yes"),
		"cigarettes_per_day": models.Number(10),
	}
	assert.Empty(t, Orphaned(c, consistent))
	assert.Empty(t, Orphaned(c, models.AnswerSet{}))
}
