package db_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/models"
)

func getTestDB(t *testing.T) *db.Database {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	database, err := db.Connect(dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestHealthCheck(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := database.HealthCheck(ctx); err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
}

func TestSaveAndGetAnalysis(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	evidence, _ := json.Marshal([]map[string]any{{"name": "Suspicious TLD", "status": "fail"}})
	record := &models.Analysis{
		ID:         uuid.New(),
		Target:     "login-secure.example.tk",
		Normalized: "login-secure.example.tk",
		TargetType: "domain",
		RiskScore:  64,
		RiskLevel:  "Suspicious",
		Confidence: 80,
		Summary:    "Risk signals detected",
		Evidence:   evidence,
		DurationMS: 412,
		CreatedAt:  time.Now().UTC(),
	}

	if err := database.SaveAnalysis(ctx, record); err != nil {
		t.Fatalf("SaveAnalysis failed: %v", err)
	}

	got, err := database.GetAnalysis(ctx, record.ID)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if got.Normalized != record.Normalized {
		t.Errorf("Normalized = %q, want %q", got.Normalized, record.Normalized)
	}
	if got.RiskScore != 64 || got.RiskLevel != "Suspicious" {
		t.Errorf("got score %d level %s", got.RiskScore, got.RiskLevel)
	}
}

func TestGetAnalysis_NotFound(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := database.GetAnalysis(ctx, uuid.New())
	if err != db.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListAnalyses(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	analyses, err := database.ListAnalyses(ctx, "", 5, 0)
	if err != nil {
		t.Fatalf("ListAnalyses failed: %v", err)
	}
	t.Logf("Found %d analyses", len(analyses))
	for _, a := range analyses {
		t.Logf("  - %s (%s, score %d)", a.Normalized, a.RiskLevel, a.RiskScore)
	}
}

func TestCountAnalyses(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := database.CountAnalyses(ctx, "")
	if err != nil {
		t.Fatalf("CountAnalyses failed: %v", err)
	}
	t.Logf("Total analyses in database: %d", count)
}

func TestRecentStats(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stats, err := database.RecentStats(ctx, 7)
	if err != nil {
		t.Fatalf("RecentStats failed: %v", err)
	}
	t.Logf("Found %d daily stat entries", len(stats))
}

func TestPopularTargets(t *testing.T) {
	database := getTestDB(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	targets, err := database.PopularTargets(ctx, 5)
	if err != nil {
		t.Fatalf("PopularTargets failed: %v", err)
	}
	t.Logf("Top %d targets:", len(targets))
	for _, tc := range targets {
		t.Logf("  - %s (%d analyses)", tc.Normalized, tc.Count)
	}
}
