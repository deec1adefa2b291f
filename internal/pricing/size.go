package pricing

import (
	"strconv"
	"strings"
)

// NormalizeSize canonicalizes a shoe size so "09.50", "9.5 " and "9.50" all
// compare equal. Non-numeric sizes are upper-cased and trimmed.
func NormalizeSize(size string) string {
	trimmed := strings.TrimSpace(size)
	if trimmed == "" {
		return ""
	}
	if value, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
	return strings.ToUpper(trimmed)
}

// CompareSizes orders sizes numerically when both parse as numbers, placing
// numeric sizes before alpha sizes and falling back to string order otherwise.
func CompareSizes(a, b string) int {
	na, aErr := strconv.ParseFloat(strings.TrimSpace(a), 64)
	nb, bErr := strconv.ParseFloat(strings.TrimSpace(b), 64)

	switch {
	case aErr == nil && bErr == nil:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return strings.Compare(NormalizeSize(a), NormalizeSize(b))
	}
}
