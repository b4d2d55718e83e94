// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL      string
	Port             string
	AppVersion       string
	Testing          bool
	AbuseIPDBKey     string
	VirusTotalKey    string
	IPInfoToken      string
	AllowlistFeed    string
	AllowlistFeedURL string
	IntelTimeout     time.Duration
	MaxConcurrent    int
	MaintenanceNote  string
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	intelTimeout := 5 * time.Second
	if raw := os.Getenv("INTEL_TIMEOUT_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 1 {
			return nil, fmt.Errorf("INTEL_TIMEOUT_SECONDS must be a positive integer, got %q", raw)
		}
		intelTimeout = time.Duration(secs) * time.Second
	}

	maxConcurrent := 6
	if raw := os.Getenv("MAX_CONCURRENT_ANALYSES"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("MAX_CONCURRENT_ANALYSES must be a positive integer, got %q", raw)
		}
		maxConcurrent = n
	}

	return &Config{
		DatabaseURL:      dbURL,
		Port:             port,
		AppVersion:       "1.4.2",
		Testing:          os.Getenv("TESTING") == "true" || os.Getenv("TESTING") == "1",
		AbuseIPDBKey:     os.Getenv("ABUSEIPDB_API_KEY"),
		VirusTotalKey:    os.Getenv("VIRUSTOTAL_API_KEY"),
		IPInfoToken:      os.Getenv("IPINFO_TOKEN"),
		AllowlistFeed:    os.Getenv("ALLOWLIST_FEED_FILE"),
		AllowlistFeedURL: os.Getenv("ALLOWLIST_FEED_URL"),
		IntelTimeout:     intelTimeout,
		MaxConcurrent:    maxConcurrent,
		MaintenanceNote:  os.Getenv("MAINTENANCE_NOTE"),
	}, nil
}
