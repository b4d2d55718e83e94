// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Analysis struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Target     string          `json:"target" db:"target"`
	Normalized string          `json:"normalized" db:"normalized"`
	TargetType string          `json:"target_type" db:"target_type"`
	RiskScore  int             `json:"risk_score" db:"risk_score"`
	RiskLevel  string          `json:"risk_level" db:"risk_level"`
	Confidence int             `json:"confidence" db:"confidence"`
	Summary    string          `json:"summary" db:"summary"`
	Evidence   json.RawMessage `json:"evidence" db:"evidence"`
	DurationMS int64           `json:"duration_ms" db:"duration_ms"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

type DailyStats struct {
	Date          time.Time `json:"date" db:"date"`
	TotalAnalyses int64     `json:"total_analyses" db:"total_analyses"`
	Malicious     int64     `json:"malicious" db:"malicious"`
	Suspicious    int64     `json:"suspicious" db:"suspicious"`
	Safe          int64     `json:"safe" db:"safe"`
	AvgRiskScore  float64   `json:"avg_risk_score" db:"avg_risk_score"`
	AvgDurationMS float64   `json:"avg_duration_ms" db:"avg_duration_ms"`
}
