// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"linkscope/go-server/internal/db"
)

type StatsHandler struct {
	DB *db.Database
}

func NewStatsHandler(database *db.Database) *StatsHandler {
	return &StatsHandler{DB: database}
}

func (h *StatsHandler) Stats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 || days > 90 {
		days = 7
	}

	ctx := c.Request.Context()

	daily, err := h.DB.RecentStats(ctx, int32(days))
	if err != nil {
		slog.Error("Failed to query stats", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to query stats")
		return
	}

	popular, err := h.DB.PopularTargets(ctx, 10)
	if err != nil {
		slog.Error("Failed to query popular targets", "error", err)
		errorJSON(c, http.StatusInternalServerError, "failed to query popular targets")
		return
	}

	topTargets := make([]gin.H, 0, len(popular))
	for _, tc := range popular {
		topTargets = append(topTargets, gin.H{
			"target": tc.Normalized,
			"count":  tc.Count,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"days":        days,
		"daily":       daily,
		"top_targets": topTargets,
	})
}
