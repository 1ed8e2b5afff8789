// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/models"
	"github.com/danielhkuo/kindred/session"
)

type QuestionnaireHandler struct {
	sessions *session.Registry
	log      *logger.Logger
}

func NewQuestionnaireHandler(sessions *session.Registry, log *logger.Logger) *QuestionnaireHandler {
	return &QuestionnaireHandler{sessions: sessions, log: log.With("handler", "QuestionnaireHandler")}
}

// GetQuestionnaire handles GET /me/questionnaire
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	var resp models.QuestionnaireResponse
	err := h.withSession(c, func(s *session.Session) error {
		questions, err := s.VisibleQuestions()
		if err != nil {
			return err
		}
		answers, err := s.Answers()
		if err != nil {
			return err
		}
		progress, err := s.Progress()
		if err != nil {
			return err
		}
		resp = models.QuestionnaireResponse{Questions: questions, Answers: answers, Progress: progress}
		return nil
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	middleware.JSONResponse(c, http.StatusOK, resp)
}

// SaveAnswer handles PUT /me/answers/{question_id}
func (h *QuestionnaireHandler) SaveAnswer(c *gin.Context) {
	questionID := c.Param("question_id")

	var req models.SaveAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var result session.SaveResult
	err := h.withSession(c, func(s *session.Session) error {
		var err error
		result, err = s.SaveAnswer(c.Request.Context(), questionID, req.Value)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	middleware.JSONResponse(c, http.StatusOK, models.SaveAnswerResponse{
		QuestionID:  result.QuestionID,
		Ignored:     result.Ignored,
		Invalidated: result.Invalidated,
	})
}

// DeleteAnswer handles DELETE /me/answers/{question_id}
func (h *QuestionnaireHandler) DeleteAnswer(c *gin.Context) {
	questionID := c.Param("question_id")

	var result session.SaveResult
	err := h.withSession(c, func(s *session.Session) error {
		var err error
		result, err = s.DeleteAnswer(c.Request.Context(), questionID)
		return err
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	middleware.JSONResponse(c, http.StatusOK, models.SaveAnswerResponse{
		QuestionID:  result.QuestionID,
		Invalidated: result.Invalidated,
	})
}

// withSession runs fn against the caller's session, retrying once with a
// fresh session if the cached one was closed by eviction in the meantime.
func (h *QuestionnaireHandler) withSession(c *gin.Context, fn func(*session.Session) error) error {
	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	for attempt := 0; ; attempt++ {
		s, err := h.sessions.Get(ctx, userID)
		if err != nil {
			return err
		}
		err = fn(s)
		if errors.Is(err, session.ErrSessionClosed) && attempt == 0 {
			continue
		}
		return err
	}
}

func (h *QuestionnaireHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrLoadFailure):
		h.log.Warn("questionnaire unavailable", "user_id", middleware.UserID(c), "error", err)
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:     http.StatusText(http.StatusServiceUnavailable),
			Message:   "Could not load your answers, please try again",
			Retryable: true,
		})
	case errors.Is(err, session.ErrUnknownQuestion):
		middleware.ErrorResponse(c, http.StatusNotFound, "Question not found")
	case errors.Is(err, session.ErrInvalidValue):
		middleware.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(c, http.StatusGatewayTimeout, "Request cancelled")
	default:
		h.log.Error("questionnaire request failed", "user_id", middleware.UserID(c), "error", err)
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Internal error")
	}
}
