// services/summary_test.go
package services

import (
	"strings"
	"testing"
)

func TestGenerateSummaryPlaceholder(t *testing.T) {
	t.Run("short text is echoed as a preview", func(t *testing.T) {
		got := GenerateSummaryPlaceholder("Use L'Hopital's rule on the numerator.")
		if got != "Summary Preview: Use L'Hopital's rule on the numerator." {
			t.Fatalf("unexpected summary: %q", got)
		}
	})

	t.Run("long text is truncated", func(t *testing.T) {
		long := strings.Repeat("a", 500)
		got := GenerateSummaryPlaceholder(long)
		if !strings.HasPrefix(got, "Summary Preview: ") || !strings.HasSuffix(got, "…") {
			t.Fatalf("unexpected summary shape: %q", got)
		}
		if len(got) > len("Summary Preview: ")+summaryExcerptLimit+len("…") {
			t.Fatalf("summary exceeds the excerpt limit: %d bytes", len(got))
		}
	})

	t.Run("empty text gets the placeholder", func(t *testing.T) {
		got := GenerateSummaryPlaceholder("   ")
		if !strings.Contains(got, "placeholder") {
			t.Fatalf("unexpected summary: %q", got)
		}
	})
}
