package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestExtractRejectionReason(t *testing.T) {
	tests := []struct {
		name  string
		notes *string
		want  string
	}{
		{
			name:  "absent notes",
			notes: nil,
			want:  NoReasonProvided,
		},
		{
			name:  "blank notes",
			notes: strPtr("   "),
			want:  NoReasonProvided,
		},
		{
			name:  "reason prefix",
			notes: strPtr("Reason: image quality too low"),
			want:  "image quality too low",
		},
		{
			name:  "reason prefix case insensitive",
			notes: strPtr("reason:duplicate of existing reward"),
			want:  "duplicate of existing reward",
		},
		{
			name:  "rejected prefix",
			notes: strPtr("Rejected because of pricing: floor amount exceeds category cap"),
			want:  "floor amount exceeds category cap",
		},
		{
			name:  "no pattern falls back to full note",
			notes: strPtr("The description does not match the image"),
			want:  "The description does not match the image",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractRejectionReason(tt.notes))
		})
	}
}

func TestRejectionReasonPrefersStructuredField(t *testing.T) {
	svc := &WorkflowService{}

	sub := testSubmission(1)
	sub.AdminNotes = strPtr("Reason: old heuristic text")
	sub.RejectionReason = strPtr("stock quantity unverifiable")

	assert.Equal(t, "stock quantity unverifiable", svc.RejectionReason(sub))

	sub.RejectionReason = nil
	assert.Equal(t, "old heuristic text", svc.RejectionReason(sub))

	sub.AdminNotes = nil
	assert.Equal(t, NoReasonProvided, svc.RejectionReason(sub))
}
