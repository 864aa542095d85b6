package validators

import "strings"

// SanitizeString trims and truncates free-text query inputs such as catalog
// search terms and city filters before they reach the storage layer.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)
	if maxLen > 0 && len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}
