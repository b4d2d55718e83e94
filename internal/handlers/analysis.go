// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"linkscope/go-server/internal/db"
)

type AnalysisHandler struct {
	DB *db.Database
}

func NewAnalysisHandler(database *db.Database) *AnalysisHandler {
	return &AnalysisHandler{DB: database}
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid analysis id")
		return
	}

	record, err := h.DB.GetAnalysis(c.Request.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "analysis not found")
		return
	}
	if err != nil {
		slog.Error("Failed to fetch analysis", "id", id, "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to fetch analysis")
		return
	}

	c.JSON(http.StatusOK, record)
}
