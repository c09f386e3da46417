package submission

import (
	"regexp"
	"strings"
)

// NoReasonProvided is returned when admin notes are absent
const NoReasonProvided = "No specific reason provided"

// Patterns tried in order against free-text admin notes. Legacy rows only
// have notes; newer rejections carry a structured rejection_reason and never
// reach this heuristic.
var reasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)reason\s*:\s*(.+)`),
	regexp.MustCompile(`(?i)rejected[^:\n]*:\s*(.+)`),
}

// ExtractRejectionReason recovers a rejection reason from free-text admin
// notes. If a "reason:" or "rejected ...:" prefix matches, the text after it
// is the reason; otherwise the whole note is treated as the reason. Absent
// notes yield the NoReasonProvided sentinel.
func ExtractRejectionReason(adminNotes *string) string {
	if adminNotes == nil {
		return NoReasonProvided
	}
	notes := strings.TrimSpace(*adminNotes)
	if notes == "" {
		return NoReasonProvided
	}

	for _, pattern := range reasonPatterns {
		if m := pattern.FindStringSubmatch(notes); m != nil {
			if reason := strings.TrimSpace(m[1]); reason != "" {
				return reason
			}
		}
	}

	return notes
}
