// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/cliparse"
	"github.com/danielhkuo/kindred/compat"
	"github.com/danielhkuo/kindred/db"
	"github.com/danielhkuo/kindred/logger"
	"github.com/danielhkuo/kindred/metrics"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/models"
)

// CompatibilityHandler serves the match curation console. Scores are read
// from persisted answers, not from live sessions.
type CompatibilityHandler struct {
	store   *db.Store
	catalog *catalog.Catalog
	cfg     cliparse.Config
	log     *logger.Logger
}

func NewCompatibilityHandler(store *db.Store, c *catalog.Catalog, cfg cliparse.Config, log *logger.Logger) *CompatibilityHandler {
	return &CompatibilityHandler{store: store, catalog: c, cfg: cfg, log: log.With("handler", "CompatibilityHandler")}
}

// GetScore handles GET /admin/compatibility?a=&b=
func (h *CompatibilityHandler) GetScore(c *gin.Context) {
	a, b, ok := h.loadPair(c)
	if !ok {
		return
	}

	result := compat.BidirectionalScore(a.Answers, b.Answers)
	metrics.CompatibilityScores.Observe(float64(result.Average))
	middleware.JSONResponse(c, http.StatusOK, models.ScoreResponse{
		A:      a.UserID,
		B:      b.UserID,
		Result: result,
	})
}

// GetDetail handles GET /admin/compatibility/detail?a=&b=
// Rows describe a's preferences against b's answers.
func (h *CompatibilityHandler) GetDetail(c *gin.Context) {
	a, b, ok := h.loadPair(c)
	if !ok {
		return
	}

	middleware.JSONResponse(c, http.StatusOK, models.ComparisonResponse{
		UserID: a.UserID,
		Other:  b.UserID,
		Rows:   compat.DetailedComparison(a.Answers, b.Answers, h.catalog),
	})
}

// Rank handles POST /admin/compatibility/rank
func (h *CompatibilityHandler) Rank(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.ErrorResponse(c, http.StatusBadRequest, "user_id and 1-500 candidate_ids are required")
		return
	}

	ctx := c.Request.Context()
	subject, err := h.load(ctx, req.UserID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	candidates := make([]compat.Candidate, len(req.CandidateIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, h.cfg.ScoreWorkers))
	for i, id := range req.CandidateIDs {
		g.Go(func() error {
			cand, err := h.load(gctx, id)
			if err != nil {
				return err
			}
			candidates[i] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		h.writeError(c, err)
		return
	}

	matches, err := compat.RankCandidates(ctx, subject, candidates, h.cfg.ScoreWorkers)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info("ranked candidates", "user_id", subject.UserID, "candidates", len(candidates))
	middleware.JSONResponse(c, http.StatusOK, models.RankResponse{
		UserID:  subject.UserID,
		Matches: matches,
	})
}

func (h *CompatibilityHandler) loadPair(c *gin.Context) (compat.Candidate, compat.Candidate, bool) {
	aID, bID := c.Query("a"), c.Query("b")
	if aID == "" || bID == "" {
		middleware.ErrorResponse(c, http.StatusBadRequest, "query parameters a and b are required")
		return compat.Candidate{}, compat.Candidate{}, false
	}

	ctx := c.Request.Context()
	a, err := h.load(ctx, aID)
	if err != nil {
		h.writeError(c, err)
		return compat.Candidate{}, compat.Candidate{}, false
	}
	b, err := h.load(ctx, bID)
	if err != nil {
		h.writeError(c, err)
		return compat.Candidate{}, compat.Candidate{}, false
	}
	return a, b, true
}

func (h *CompatibilityHandler) load(ctx context.Context, userID string) (compat.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.StoreTimeout)
	defer cancel()

	answers, err := h.store.ProfileAnswers(ctx, userID)
	if err != nil {
		return compat.Candidate{}, fmt.Errorf("user %s: %w", userID, err)
	}
	return compat.Candidate{UserID: userID, Answers: answers}, nil
}

func (h *CompatibilityHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		middleware.ErrorResponse(c, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		middleware.ErrorResponse(c, http.StatusGatewayTimeout, "Request cancelled")
	default:
		h.log.Error("compatibility request failed", "error", err)
		middleware.ErrorResponse(c, http.StatusInternalServerError, "Database error")
	}
}
