// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/kindred/auth"
	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/session"
	"github.com/danielhkuo/kindred/testutil"
)

func newTestRouter(t *testing.T) (*gin.Engine, Deps) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testutil.GetTestConfig()
	store := testutil.SetupTestStore(t)
	cat, err := catalog.Default()
	require.NoError(t, err)
	sessions, err := session.NewRegistry(cat, store, cfg.SessionCacheSize, session.Options{StoreTimeout: cfg.StoreTimeout})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	d := Deps{Store: store, Catalog: cat, Sessions: sessions, Config: cfg, Log: logger.Nop()}
	return NewRouter(d), d
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kindred")
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "kindred_answers_saved_total")
}

func TestProtectedRoutesRequireCredentials(t *testing.T) {
	r, _ := newTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/me/profile"},
		{"GET", "/me/questionnaire"},
		{"PUT", "/me/answers/smoker"},
		{"DELETE", "/me/answers/smoker"},
		{"GET", "/admin/compatibility?a=x&b=y"},
		{"GET", "/admin/compatibility/detail?a=x&b=y"},
		{"POST", "/admin/compatibility/rank"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestOnboardingFlow(t *testing.T) {
	r, d := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("POST", "/profiles", models.CreateProfileRequest{FirstName: "John", LastName: "Doe"}, nil))
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreateProfileResponse
	testutil.AssertJSON(t, w, &created)
	bearer := map[string]string{"Authorization": "Bearer " + created.Token}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("PUT", "/me/answers/ethnicity", models.SaveAnswerRequest{Value: models.List("Irish")}, bearer))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("GET", "/me/questionnaire", nil, bearer))
	testutil.AssertStatus(t, w, http.StatusOK)
	var q models.QuestionnaireResponse
	testutil.AssertJSON(t, w, &q)
	assert.True(t, q.Answers.Get("name").Equal(models.List("John", "Doe")))
	assert.True(t, q.Answers.Get("ethnicity").Equal(models.List("Irish")))

	// the curation console sees the answer once it is persisted
	s, err := d.Sessions.Get(t.Context(), created.UserID)
	require.NoError(t, err)
	require.NoError(t, s.Flush(t.Context()))

	admin := map[string]string{"X-Admin-Key": auth.GenerateAdminKey(auth.AdminRealm, d.Config.AdminKeySalt)}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, testutil.MakeRequest("GET", "/admin/compatibility?a="+created.UserID+"&b="+created.UserID, nil, admin))
	testutil.AssertStatus(t, w, http.StatusOK)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/me/answers/smoker", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT"))
}
