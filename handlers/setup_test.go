package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/session"
	"github.com/danielhkuo/kindred/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	cfg      cliparse.Config
	store    *db.Store
	catalog  *catalog.Catalog
	sessions *session.Registry
	engine   *gin.Engine
}

// newTestEnv wires the handlers over an in-memory database. sessionStore
// overrides the store the questionnaire sessions use.
func newTestEnv(t *testing.T, sessionStore session.Store) *testEnv {
	t.Helper()

	cfg := testutil.GetTestConfig()
	store := testutil.SetupTestStore(t)
	cat, err := catalog.Default()
	require.NoError(t, err)

	if sessionStore == nil {
		sessionStore = store
	}
	sessions, err := session.NewRegistry(cat, sessionStore, cfg.SessionCacheSize, session.Options{
		Log:          logger.Nop(),
		StoreTimeout: cfg.StoreTimeout,
	})
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	log := logger.Nop()
	profiles := NewProfileHandler(store, cfg, log)
	questionnaire := NewQuestionnaireHandler(sessions, log)
	compatibility := NewCompatibilityHandler(store, cat, cfg, log)

	r := gin.New()
	r.GET("/catalog", NewCatalogHandler(cat).GetCatalog)
	r.POST("/profiles", profiles.CreateProfile)
	me := r.Group("/me", middleware.RequireUser(cfg.TokenSecret))
	me.GET("/profile", profiles.GetMyProfile)
	me.GET("/questionnaire", questionnaire.GetQuestionnaire)
	me.PUT("/answers/:question_id", questionnaire.SaveAnswer)
	me.DELETE("/answers/:question_id", questionnaire.DeleteAnswer)
	admin := r.Group("/admin", middleware.RequireAdmin(cfg.AdminKeySalt))
	admin.GET("/compatibility", compatibility.GetScore)
	admin.GET("/compatibility/detail", compatibility.GetDetail)
	admin.POST("/compatibility/rank", compatibility.Rank)

	return &testEnv{cfg: cfg, store: store, catalog: cat, sessions: sessions, engine: r}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) asUser(t *testing.T, userID string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + testutil.UserToken(t, e.cfg, userID)}
}

// flush waits for the user's queued writes to reach the store.
func (e *testEnv) flush(t *testing.T, userID string) {
	t.Helper()
	s, err := e.sessions.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NoError(t, s.Flush(context.Background()))
}

var errStoreDown = errors.New("store unavailable")

// downStore fails every call.
type downStore struct{}

func (downStore) GetAnswers(context.Context, string) ([]models.Answer, error) {
	return nil, errStoreDown
}
func (downStore) UpsertAnswer(context.Context, string, string, models.Value) error {
	return errStoreDown
}
func (downStore) DeleteAnswer(context.Context, string, string) error { return errStoreDown }
func (downStore) GetProfile(context.Context, string) (*models.Profile, error) {
	return nil, errStoreDown
}
func (downStore) UpdateProfileFields(context.Context, string, map[string]string) error {
	return errStoreDown
}
