// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"linkscope/go-server/internal/analyzer"
	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/evidence"
	"linkscope/go-server/internal/models"
)

type AnalyzeHandler struct {
	Analyzer *analyzer.Analyzer
	DB       *db.Database
}

func NewAnalyzeHandler(a *analyzer.Analyzer, database *db.Database) *AnalyzeHandler {
	return &AnalyzeHandler{Analyzer: a, DB: database}
}

type analyzeRequest struct {
	Target string `json:"target" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

// Analyze runs a full risk assessment for the submitted target and, when a
// database is configured, persists the outcome before responding.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "target and type are required")
		return
	}

	targetType := evidence.TargetType(req.Type)
	start := time.Now()

	result, err := h.Analyzer.Analyze(c.Request.Context(), targetType, req.Target)
	switch {
	case errors.Is(err, analyzer.ErrEmptyInput):
		errorJSON(c, http.StatusBadRequest, "target must not be empty")
		return
	case errors.Is(err, analyzer.ErrInvalidType):
		errorJSON(c, http.StatusBadRequest, "type must be one of: ip, domain, url")
		return
	case errors.Is(err, analyzer.ErrBusy):
		errorJSON(c, http.StatusServiceUnavailable, "analysis capacity exceeded, retry shortly")
		return
	case err != nil:
		slog.Error("Analysis failed", "target", req.Target, "error", err)
		errorJSON(c, http.StatusInternalServerError, "analysis failed")
		return
	}

	duration := time.Since(start)
	record := buildRecord(result, duration)

	if h.DB != nil {
		if err := h.DB.SaveAnalysis(c.Request.Context(), record); err != nil {
			slog.Error("Failed to persist analysis", "target", result.Normalized, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          record.ID,
		"result":      result,
		"duration_ms": duration.Milliseconds(),
	})
}

func buildRecord(result *evidence.Result, duration time.Duration) *models.Analysis {
	evJSON, err := json.Marshal(result.Evidence)
	if err != nil {
		evJSON = []byte("[]")
	}
	return &models.Analysis{
		ID:         uuid.New(),
		Target:     result.Target,
		Normalized: result.Normalized,
		TargetType: string(result.Type),
		RiskScore:  result.RiskScore,
		RiskLevel:  string(result.RiskLevel),
		Confidence: result.Confidence,
		Summary:    result.Summary,
		Evidence:   evJSON,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
}
