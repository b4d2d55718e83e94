// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/models"
)

type HistoryHandler struct {
	DB *db.Database
}

func NewHistoryHandler(database *db.Database) *HistoryHandler {
	return &HistoryHandler{DB: database}
}

func (h *HistoryHandler) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	search := c.Query("target")
	perPage := 20

	ctx := c.Request.Context()

	total, err := h.DB.CountAnalyses(ctx, search)
	if err != nil {
		slog.Error("Failed to count analyses", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to count analyses")
		return
	}

	pagination := NewPagination(page, perPage, total)

	analyses, err := h.DB.ListAnalyses(ctx, search, pagination.Limit(), pagination.Offset())
	if err != nil {
		slog.Error("Failed to list analyses", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to fetch analyses")
		return
	}
	if analyses == nil {
		analyses = []models.Analysis{}
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses":   analyses,
		"pagination": pagination,
		"search":     search,
	})
}
