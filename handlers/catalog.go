// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danielhkuo/kindred/catalog"
	"github.com/danielhkuo/kindred/middleware"
	"github.com/danielhkuo/kindred/models"
)

type CatalogHandler struct {
	resp models.CatalogResponse
}

// NewCatalogHandler renders the catalog once; it never changes while the
// process runs.
func NewCatalogHandler(c *catalog.Catalog) *CatalogHandler {
	resp := models.CatalogResponse{
		Questions:  c.Questions(),
		Categories: []models.CatalogCategory{},
	}
	for _, cat := range c.Categories() {
		ids := make([]string, 0, len(cat.Questions))
		for _, q := range cat.Questions {
			ids = append(ids, q.ID)
		}
		resp.Categories = append(resp.Categories, models.CatalogCategory{Name: cat.Name, QuestionIDs: ids})
	}
	return &CatalogHandler{resp: resp}
}

// GetCatalog handles GET /catalog
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	middleware.JSONResponse(c, http.StatusOK, h.resp)
}
