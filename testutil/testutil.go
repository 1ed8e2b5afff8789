// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/danielhkuo/kindred/auth"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full schema.
// The database is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(context.Background(), db.TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(context.Background(), conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// SetupTestStore returns a Store over a fresh test database.
func SetupTestStore(t *testing.T) *db.Store {
	t.Helper()
	return db.NewStore(SetupTestDB(t), logger.Nop())
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3318,
		DatabaseURL:      ":memory:",
		DatabaseType:     db.TypeSQLite,
		AdminKeySalt:     "test-admin-salt",
		TokenSecret:      "test-token-secret",
		SessionCacheSize: 16,
		StoreTimeout:     cliparse.DefaultStoreTimeout,
		ScoreWorkers:     4,
	}
}

// CreateTestProfile inserts a profile and returns its user id
func CreateTestProfile(t *testing.T, store *db.Store, firstName, lastName string) string {
	t.Helper()

	userID := uuid.NewString()
	err := store.CreateProfile(context.Background(), models.Profile{
		UserID:    userID,
		FirstName: firstName,
		LastName:  lastName,
	})
	if err != nil {
		t.Fatalf("Failed to create test profile: %v", err)
	}
	return userID
}

// SaveTestAnswers persists answers directly, bypassing any session
func SaveTestAnswers(t *testing.T, store *db.Store, userID string, answers models.AnswerSet) {
	t.Helper()

	for questionID, value := range answers {
		if err := store.UpsertAnswer(context.Background(), userID, questionID, value); err != nil {
			t.Fatalf("Failed to save test answer %s: %v", questionID, err)
		}
	}
}

// UserToken issues a bearer token for userID using the test config
func UserToken(t *testing.T, cfg cliparse.Config, userID string) string {
	t.Helper()

	token, err := auth.IssueUserToken(userID, cfg.TokenSecret, auth.DefaultTokenTTL)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
