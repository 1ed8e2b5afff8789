// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/testutil"
)

func questionIDs(questions []models.Question) []string {
	out := make([]string, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

func TestGetQuestionnaire_PrefillsName(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "John", "Doe")

	w := env.do(testutil.MakeRequest("GET", "/me/questionnaire", nil, env.asUser(t, userID)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.QuestionnaireResponse
	testutil.AssertJSON(t, w, &resp)
	assert.True(t, resp.Answers.Get("name").Equal(models.List("John", "Doe")))
	assert.NotContains(t, questionIDs(resp.Questions), "cigarettes_per_day")
	assert.Equal(t, 1, resp.Progress.RequiredAnswered)
	assert.False(t, resp.Progress.Complete)

	// pre-fill is read-only
	env.flush(t, userID)
	stored, err := env.store.GetAnswerSet(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestSaveAnswer_CascadeWorkflow(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")
	headers := env.asUser(t, userID)

	put := func(questionID string, value models.Value) models.SaveAnswerResponse {
		t.Helper()
		w := env.do(testutil.MakeRequest("PUT", "/me/answers/"+questionID, models.SaveAnswerRequest{Value: value}, headers))
		testutil.AssertStatus(t, w, http.StatusOK)
		var resp models.SaveAnswerResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	put("smoker", models.String("Yes"))
	put("cigarettes_per_day", models.Number(10))

	w := env.do(testutil.MakeRequest("GET", "/me/questionnaire", nil, headers))
	var before models.QuestionnaireResponse
	testutil.AssertJSON(t, w, &before)
	assert.Contains(t, questionIDs(before.Questions), "cigarettes_per_day")

	resp := put("smoker", models.String("No"))
	assert.Equal(t, "smoker", resp.QuestionID)
	assert.Equal(t, []string{"cigarettes_per_day"}, resp.Invalidated)

	w = env.do(testutil.MakeRequest("GET", "/me/questionnaire", nil, headers))
	var after models.QuestionnaireResponse
	testutil.AssertJSON(t, w, &after)
	assert.NotContains(t, questionIDs(after.Questions), "cigarettes_per_day")
	assert.False(t, after.Answers.Has("cigarettes_per_day"))

	env.flush(t, userID)
	stored, err := env.store.GetAnswerSet(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, stored.Get("smoker").Equal(models.String("No")))
	assert.False(t, stored.Has("cigarettes_per_day"))
}

func TestSaveAnswer_NameUpdatesProfile(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")

	w := env.do(testutil.MakeRequest("PUT", "/me/answers/name",
		models.SaveAnswerRequest{Value: models.List("Augusta", "King")}, env.asUser(t, userID)))
	testutil.AssertStatus(t, w, http.StatusOK)

	env.flush(t, userID)
	p, err := env.store.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "Augusta", p.FirstName)
	assert.Equal(t, "King", p.LastName)
}

func TestSaveAnswer_NullIsIgnored(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")
	testutil.SaveTestAnswers(t, env.store, userID, models.AnswerSet{"smoker": models.String("Yes")})

	w := env.do(testutil.MakeRequest("PUT", "/me/answers/smoker",
		map[string]interface{}{"value": nil}, env.asUser(t, userID)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SaveAnswerResponse
	testutil.AssertJSON(t, w, &resp)
	assert.True(t, resp.Ignored)

	env.flush(t, userID)
	stored, err := env.store.GetAnswerSet(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, stored.Get("smoker").Equal(models.String("Yes")))
}

func TestSaveAnswer_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")
	headers := env.asUser(t, userID)

	tests := []struct {
		name     string
		question string
		body     interface{}
		status   int
	}{
		{"unknown question", "favourite_colour", models.SaveAnswerRequest{Value: models.String("blue")}, http.StatusNotFound},
		{"not an option", "smoker", models.SaveAnswerRequest{Value: models.String("Sometimes")}, http.StatusBadRequest},
		{"out of range", "height", models.SaveAnswerRequest{Value: models.Number(20)}, http.StatusBadRequest},
		{"object value", "about_me", map[string]interface{}{"value": map[string]string{"a": "b"}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(testutil.MakeRequest("PUT", "/me/answers/"+tt.question, tt.body, headers))
			testutil.AssertStatus(t, w, tt.status)
		})
	}

	w := env.do(testutil.MakeRequest("PUT", "/me/answers/smoker", models.SaveAnswerRequest{Value: models.String("No")}, nil))
	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestDeleteAnswer(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")
	testutil.SaveTestAnswers(t, env.store, userID, models.AnswerSet{
		"has_children":           models.String("Yes"),
		"children_live_with_you": models.String("Sometimes"),
		"custody_schedule":       models.String("alternate weeks"),
	})

	w := env.do(testutil.MakeRequest("DELETE", "/me/answers/has_children", nil, env.asUser(t, userID)))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SaveAnswerResponse
	testutil.AssertJSON(t, w, &resp)
	assert.Equal(t, []string{"children_live_with_you", "custody_schedule"}, resp.Invalidated)

	env.flush(t, userID)
	stored, err := env.store.GetAnswerSet(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestQuestionnaire_LoadFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t, downStore{})
	userID := testutil.CreateTestProfile(t, env.store, "Ada", "Lovelace")

	w := env.do(testutil.MakeRequest("GET", "/me/questionnaire", nil, env.asUser(t, userID)))
	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	assert.True(t, resp.Retryable)
	assert.Zero(t, env.sessions.Len())
}
