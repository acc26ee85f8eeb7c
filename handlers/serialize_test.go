// handlers/serialize_test.go
package handlers

import (
	"reflect"
	"testing"
	"time"
	"unicode/utf8"
)

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Maria Santos", "MS"},
		{"Juan Dela Cruz", "JD"},
		{"maria", "MA"},
		{"m", "M"},
		{"", ""},
		{"Ángel Pérez", "ÁP"},
		{"Ángel", "ÁN"},
		{"é", "É"},
	}
	for _, tt := range tests {
		if got := Initials(tt.name); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	for _, tt := range tests {
		if got := Initials(tt.name); !utf8.ValidString(got) {
			t.Errorf("Initials(%q) = %q is not valid UTF-8", tt.name, got)
		}
	}
}

func TestSplitTags(t *testing.T) {
	tests := []struct {
		tags string
		want []string
	}{
		{"calculus,limits", []string{"calculus", "limits"}},
		{" go , algorithms ", []string{"go", "algorithms"}},
		{"solo", []string{"solo"}},
		{",,", []string{"General"}},
		{"", []string{"General"}},
	}
	for _, tt := range tests {
		if got := SplitTags(tt.tags); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitTags(%q) = %v, want %v", tt.tags, got, tt.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 minute ago"},
		{45 * time.Minute, "45 minutes ago"},
		{time.Hour, "1 hour ago"},
		{5 * time.Hour, "5 hours ago"},
		{26 * time.Hour, "1 day ago"},
		{10 * 24 * time.Hour, "10 days ago"},
		{60 * 24 * time.Hour, "2 months ago"},
		{2 * 365 * 24 * time.Hour, "2 years ago"},
	}
	for _, tt := range tests {
		if got := RelativeTime(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("RelativeTime(now-%v) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}
