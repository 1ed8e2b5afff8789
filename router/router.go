// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/handlers"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/session"
	"github.com/danielhkuo/kindred/tracing"
)

// Deps are the long-lived services the routes are built on.
type Deps struct {
	Store    *db.Store
	Catalog  *catalog.Catalog
	Sessions *session.Registry
	Config   cliparse.Config
	Log      *logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		otelgin.Middleware(tracing.ServiceName),
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.CORS(d.Config.CORSOrigins),
	)

	// Initialize handlers
	profileHandler := handlers.NewProfileHandler(d.Store, d.Config, d.Log)
	questionnaireHandler := handlers.NewQuestionnaireHandler(d.Sessions, d.Log)
	compatibilityHandler := handlers.NewCompatibilityHandler(d.Store, d.Catalog, d.Config, d.Log)
	catalogHandler := handlers.NewCatalogHandler(d.Catalog)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	r.GET("/catalog", catalogHandler.GetCatalog)
	r.POST("/profiles", profileHandler.CreateProfile)

	// Questionnaire (user token)
	me := r.Group("/me", middleware.RequireUser(d.Config.TokenSecret))
	me.GET("/profile", profileHandler.GetMyProfile)
	me.GET("/questionnaire", questionnaireHandler.GetQuestionnaire)
	me.PUT("/answers/:question_id", questionnaireHandler.SaveAnswer)
	me.DELETE("/answers/:question_id", questionnaireHandler.DeleteAnswer)

	// Match curation (admin key)
	admin := r.Group("/admin", middleware.RequireAdmin(d.Config.AdminKeySalt))
	admin.GET("/compatibility", compatibilityHandler.GetScore)
	admin.GET("/compatibility/detail", compatibilityHandler.GetDetail)
	admin.POST("/compatibility/rank", compatibilityHandler.Rank)

	// Root endpoint
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "kindred API v1")
	})

	return r
}
