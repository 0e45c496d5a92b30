package handlers

import (
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	l := NewRateLimiter(3, time.Minute)
	now := time.Now()

	for i := 0; i < 3; i++ {
		if !l.Allow("client", now) {
			t.Fatalf("request %d within limit was rejected", i+1)
		}
	}
	if l.Allow("client", now) {
		t.Error("request over the limit was allowed")
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	l := NewRateLimiter(2, time.Minute)
	start := time.Now()

	if !l.Allow("client", start) {
		t.Fatal("first request rejected")
	}
	if !l.Allow("client", start.Add(30*time.Second)) {
		t.Fatal("second request rejected")
	}
	if l.Allow("client", start.Add(45*time.Second)) {
		t.Error("third request inside window was allowed")
	}

	// The first hit has left the window; one slot is free again.
	if !l.Allow("client", start.Add(61*time.Second)) {
		t.Error("request after window slide was rejected")
	}
	if l.Allow("client", start.Add(62*time.Second)) {
		t.Error("window slide freed more than one slot")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	l := NewRateLimiter(1, time.Minute)
	now := time.Now()

	if !l.Allow("first", now) {
		t.Fatal("first key rejected")
	}
	if !l.Allow("second", now) {
		t.Error("second key throttled by first key's traffic")
	}
	if l.Allow("first", now) {
		t.Error("first key allowed over its limit")
	}
}
