package l10n

import (
	"testing"
	"time"
)

func TestNumberFormatting(t *testing.T) {
	cache := NewCache()

	if got := cache.Get("en").Number(12345); got != "12,345" {
		t.Errorf("Expected '12,345' for en, got: %q", got)
	}

	// Swedish groups thousands with non-breaking spaces.
	if got := cache.Get("sv").Number(12345); got == "12,345" || got == "12345" {
		t.Errorf("Expected Swedish grouping, got: %q", got)
	}
}

func TestRelativeTime(t *testing.T) {
	cache := NewCache()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	en := cache.Get("en")

	cases := []struct {
		t        time.Time
		expected string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5 minutes ago"},
		{now.Add(-3 * time.Hour), "3 hours ago"},
		{now.Add(-2 * 24 * time.Hour), "2 days ago"},
		{now.Add(-30 * 24 * time.Hour), "2025-02-08"},
	}

	for _, tc := range cases {
		if got := en.RelativeTime(tc.t, now); got != tc.expected {
			t.Errorf("RelativeTime(%v): expected %q, got %q", tc.t, tc.expected, got)
		}
	}
}

func TestRelativeTimeSwedish(t *testing.T) {
	cache := NewCache()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	sv := cache.Get("sv")

	if got := sv.RelativeTime(now.Add(-5*time.Minute), now); got != "5 minuter sedan" {
		t.Errorf("Expected Swedish phrasing, got: %q", got)
	}
	if got := sv.RelativeTime(now.Add(-10*time.Second), now); got != "just nu" {
		t.Errorf("Expected Swedish phrasing, got: %q", got)
	}
}

func TestCacheReturnsSameFormatter(t *testing.T) {
	cache := NewCache()

	if cache.Get("sv") != cache.Get("sv") {
		t.Error("Expected cached formatter to be reused")
	}
}

func TestInvalidLocaleFallsBackToEnglish(t *testing.T) {
	cache := NewCache()

	if got := cache.Get("not-a-locale!").Number(1000); got != "1,000" {
		t.Errorf("Expected English fallback formatting, got: %q", got)
	}
}
