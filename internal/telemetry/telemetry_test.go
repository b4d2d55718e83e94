package telemetry

import (
	"testing"
	"time"
)

func TestRegistry_SuccessResetsFailures(t *testing.T) {
	r := NewRegistry()

	r.RecordFailure("abuseipdb", "timeout")
	r.RecordFailure("abuseipdb", "timeout")
	r.RecordSuccess("abuseipdb", 120*time.Millisecond)

	s := r.GetStats("abuseipdb")
	if s.ConsecFailures != 0 {
		t.Errorf("expected consecutive failures reset, got %d", s.ConsecFailures)
	}
	if s.State != Healthy {
		t.Errorf("expected healthy state, got %s", s.State)
	}
	if s.TotalRequests != 3 {
		t.Errorf("expected 3 total requests, got %d", s.TotalRequests)
	}
}

func TestRegistry_DegradedAndCooldown(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < degradedThreshold; i++ {
		r.RecordFailure("rdap", "connection refused")
	}

	s := r.GetStats("rdap")
	if s.State != Degraded {
		t.Errorf("expected degraded after %d failures, got %s", degradedThreshold, s.State)
	}
	if !r.InCooldown("rdap") {
		t.Error("expected provider in cooldown")
	}

	for i := 0; i < unhealthyThreshold; i++ {
		r.RecordFailure("rdap", "connection refused")
	}
	if got := r.GetStats("rdap").State; got != Unhealthy {
		t.Errorf("expected unhealthy, got %s", got)
	}
}

func TestRegistry_AllStatsSorted(t *testing.T) {
	r := NewRegistry()
	r.RecordSuccess("virustotal", time.Millisecond)
	r.RecordSuccess("abuseipdb", time.Millisecond)
	r.RecordSuccess("ipinfo", time.Millisecond)

	stats := r.AllStats()
	if len(stats) != 3 {
		t.Fatalf("expected 3 providers, got %d", len(stats))
	}
	if stats[0].Name != "abuseipdb" || stats[2].Name != "virustotal" {
		t.Errorf("expected sorted provider names, got %v", []string{stats[0].Name, stats[1].Name, stats[2].Name})
	}
}

func TestTTLCache_GetSetExpiry(t *testing.T) {
	c := NewTTLCache[string]("test", 10, 50*time.Millisecond)

	if _, ok := c.Get("missing"); ok {
		t.Error("expected miss on empty cache")
	}

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("expected hit with %q, got %q ok=%v", "v", v, ok)
	}

	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestTTLCache_EvictsAtCapacity(t *testing.T) {
	c := NewTTLCache[int]("test", 2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("c", 3)

	stats := c.Stats()
	if stats.Size > 2 {
		t.Errorf("expected size capped at 2, got %d", stats.Size)
	}
}
