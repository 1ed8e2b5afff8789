// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/danielhkuo/kindred/auth"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/models"
)

type ProfileHandler struct {
	store *db.Store
	cfg   cliparse.Config
	log   *logger.Logger
}

func NewProfileHandler(store *db.Store, cfg cliparse.Config, log *logger.Logger) *ProfileHandler {
	return &ProfileHandler{store: store, cfg: cfg, log: log.With("handler", "ProfileHandler")}
}

// CreateProfile handles POST /profiles
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req models.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "first_name is required")
		return
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if req.FirstName == "" {
		middleware.ErrorResponse(c, http.StatusBadRequest, "first_name is required")
		return
	}

	userID := uuid.NewString()
	err := h.store.CreateProfile(c.Request.Context(), models.Profile{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.log.Error("failed to create profile", "error", err)
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	token, err := auth.IssueUserToken(userID, h.cfg.TokenSecret, auth.DefaultTokenTTL)
	if err != nil {
		h.log.Error("failed to issue token", "user_id", userID, "error", err)
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Failed to create profile")
		return
	}

	h.log.Info("profile created", "user_id", userID)
	middleware.JSONResponse(c, http.StatusCreated, models.CreateProfileResponse{
		UserID: userID,
		Token:  token,
	})
}

// GetMyProfile handles GET /me/profile
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	p, err := h.store.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("failed to load profile", "user_id", userID, "error", err)
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Database error")
		return
	}
	if p == nil {
		middleware.ErrorResponse(c, http.StatusNotFound, "Profile not found")
		return
	}
	middleware.JSONResponse(c, http.StatusOK, p)
}
