// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"linkscope/go-server/internal/analyzer"
	"linkscope/go-server/internal/db"
	"linkscope/go-server/internal/handlers"
	"linkscope/go-server/internal/reputation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to parse JSON response: %v", err)
	}
	return response
}

func getTestDB(t *testing.T) *db.Database {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping database integration test")
	}
	database, err := db.Connect(dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func newTestAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	allowlist := reputation.NewAllowlist(nil)
	a := analyzer.New(nil, allowlist)
	a.DNS = nil
	return a
}

func postJSON(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHealthCheckEndpoint(t *testing.T) {
	router := gin.New()
	handler := handlers.NewHealthHandler(nil, newTestAnalyzer(t), "")
	router.GET("/health", handler.HealthCheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	response := parseJSONResponse(t, w)

	if status, ok := response["status"].(string); !ok || status != "ok" {
		t.Errorf("expected status 'ok', got %v", response["status"])
	}
	if rt, ok := response["runtime"].(string); !ok || rt != "go" {
		t.Errorf("expected runtime 'go', got %v", response["runtime"])
	}
	dbInfo, ok := response["database"].(map[string]interface{})
	if !ok || dbInfo["status"] != "not configured" {
		t.Errorf("expected database status 'not configured', got %v", response["database"])
	}
	if _, present := response["maintenance_note"]; present {
		t.Error("maintenance_note present with no note configured")
	}
}

func TestHealthCheckEndpoint_MaintenanceNote(t *testing.T) {
	router := gin.New()
	handler := handlers.NewHealthHandler(nil, newTestAnalyzer(t), "upgrading intel feeds tonight")
	router.GET("/health", handler.HealthCheck)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	response := parseJSONResponse(t, w)
	if note, _ := response["maintenance_note"].(string); note != "upgrading intel feeds tonight" {
		t.Errorf("maintenance_note = %v, want configured note", response["maintenance_note"])
	}
}

func TestAnalyzeEndpoint_Domain(t *testing.T) {
	router := gin.New()
	handler := handlers.NewAnalyzeHandler(newTestAnalyzer(t), nil)
	router.POST("/api/analyze", handler.Analyze)

	w := postJSON(router, "/api/analyze", `{"target":"google.com","type":"domain"}`)
	assertStatus(t, w, http.StatusOK)

	response := parseJSONResponse(t, w)
	if _, ok := response["id"].(string); !ok {
		t.Errorf("expected id field, got %v", response["id"])
	}
	result, ok := response["result"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected result object, got %v", response["result"])
	}
	if result["risk_level"] != "Safe" {
		t.Errorf("expected Safe verdict for google.com, got %v", result["risk_level"])
	}
	if result["normalized"] != "google.com" {
		t.Errorf("normalized = %v", result["normalized"])
	}
}

func TestAnalyzeEndpoint_MaliciousDomain(t *testing.T) {
	router := gin.New()
	handler := handlers.NewAnalyzeHandler(newTestAnalyzer(t), nil)
	router.POST("/api/analyze", handler.Analyze)

	w := postJSON(router, "/api/analyze", `{"target":"gooogle-login-secure.tk","type":"domain"}`)
	assertStatus(t, w, http.StatusOK)

	response := parseJSONResponse(t, w)
	result := response["result"].(map[string]interface{})
	if result["risk_level"] != "Malicious" {
		t.Errorf("expected Malicious verdict, got %v", result["risk_level"])
	}
	score, _ := result["risk_score"].(float64)
	if score < 70 {
		t.Errorf("expected score >= 70, got %v", score)
	}
}

func TestAnalyzeEndpoint_BadRequest(t *testing.T) {
	router := gin.New()
	handler := handlers.NewAnalyzeHandler(newTestAnalyzer(t), nil)
	router.POST("/api/analyze", handler.Analyze)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing body", `{}`, http.StatusBadRequest},
		{"missing type", `{"target":"example.com"}`, http.StatusBadRequest},
		{"invalid type", `{"target":"example.com","type":"email"}`, http.StatusBadRequest},
		{"blank target", `{"target":"   ","type":"domain"}`, http.StatusBadRequest},
		{"malformed json", `{"target":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(router, "/api/analyze", tc.body)
			if w.Code != tc.want {
				t.Errorf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestGetAnalysis_InvalidID(t *testing.T) {
	router := gin.New()
	handler := handlers.NewAnalysisHandler(nil)
	router.GET("/api/analysis/:id", handler.GetAnalysis)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/analysis/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestTelemetryEndpoint(t *testing.T) {
	router := gin.New()
	handler := handlers.NewTelemetryHandler(newTestAnalyzer(t), nil)
	router.GET("/api/telemetry", handler.Telemetry)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/telemetry", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	response := parseJSONResponse(t, w)
	if _, ok := response["providers"]; !ok {
		t.Error("expected providers field")
	}
	if _, ok := response["caches"]; !ok {
		t.Error("expected caches field")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	database := getTestDB(t)

	router := gin.New()
	handler := handlers.NewHistoryHandler(database)
	router.GET("/api/history", handler.History)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/history?page=1", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	response := parseJSONResponse(t, w)
	if _, ok := response["analyses"]; !ok {
		t.Error("expected analyses field")
	}
	if _, ok := response["pagination"].(map[string]interface{}); !ok {
		t.Error("expected pagination object")
	}
}

func TestStatsEndpoint(t *testing.T) {
	database := getTestDB(t)

	router := gin.New()
	handler := handlers.NewStatsHandler(database)
	router.GET("/api/stats", handler.Stats)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/stats?days=7", nil)
	router.ServeHTTP(w, req)

	assertStatus(t, w, http.StatusOK)
	response := parseJSONResponse(t, w)
	if days, _ := response["days"].(float64); days != 7 {
		t.Errorf("days = %v, want 7", response["days"])
	}
}
