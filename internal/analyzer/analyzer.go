// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package analyzer

import (
	"errors"
	"time"

	"linkscope/go-server/internal/dnsclient"
	"linkscope/go-server/internal/intel"
	"linkscope/go-server/internal/reputation"
	"linkscope/go-server/internal/telemetry"
)

var (
	// ErrEmptyInput is returned before any producer runs when the input is
	// empty after trimming.
	ErrEmptyInput = errors.New("analyzer: empty input")

	// ErrInvalidType is the caller-contract violation for an unknown target
	// type. It is the only other declared failure mode of Analyze.
	ErrInvalidType = errors.New("analyzer: invalid target type")

	// ErrBusy is returned when backpressure rejects the request.
	ErrBusy = errors.New("analyzer: at capacity")
)

type Analyzer struct {
	Intel      intel.Provider
	DNS        *dnsclient.Client
	Reputation *reputation.Allowlist
	Telemetry  *telemetry.Registry

	intelTimeout  time.Duration
	maxConcurrent int
	semaphore     chan struct{}
	acquireWait   time.Duration
}

type Option func(*Analyzer)

func WithMaxConcurrent(n int) Option {
	return func(a *Analyzer) {
		a.maxConcurrent = n
		a.semaphore = make(chan struct{}, n)
	}
}

// WithIntelTimeout bounds the intelligence-gathering stage. The stage
// proceeds with whatever lookups completed inside the budget.
func WithIntelTimeout(d time.Duration) Option {
	return func(a *Analyzer) { a.intelTimeout = d }
}

func New(provider intel.Provider, allowlist *reputation.Allowlist, opts ...Option) *Analyzer {
	a := &Analyzer{
		Intel:         provider,
		DNS:           dnsclient.New(),
		Reputation:    allowlist,
		Telemetry:     telemetry.NewRegistry(),
		intelTimeout:  5 * time.Second,
		maxConcurrent: 6,
		semaphore:     make(chan struct{}, 6),
		acquireWait:   10 * time.Second,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}
