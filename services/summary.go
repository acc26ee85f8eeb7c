// services/summary.go - Solution recap placeholder
package services

import "strings"

const summaryExcerptLimit = 280

// GenerateSummaryPlaceholder produces the recap text stored alongside a
// submitted solution until a real summarizer replaces it.
func GenerateSummaryPlaceholder(text string) string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return "Mentora AI summary placeholder. Add your solution to generate a concise recap."
	}
	if len(clean) > summaryExcerptLimit {
		return "Summary Preview: " + clean[:summaryExcerptLimit] + "…"
	}
	return "Summary Preview: " + clean
}
