package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffSubmissionsSelfDiffIsEmpty(t *testing.T) {
	sub := testSubmission(1)

	diff := DiffSubmissions(sub, sub)
	assert.Empty(t, diff.Changed)
	assert.Len(t, diff.Unchanged, len(diffFields))
}

func TestDiffSubmissionsIdempotent(t *testing.T) {
	prev := testSubmission(1)
	curr := testSubmission(2)
	curr.Title = "Wireless Headphones v2"
	curr.FloorUSDAmount = 75

	first := DiffSubmissions(prev, curr)
	second := DiffSubmissions(prev, curr)
	assert.Equal(t, first, second)
}

func TestDiffSubmissionsPartitions(t *testing.T) {
	prev := testSubmission(1)
	curr := testSubmission(2)
	curr.Title = "Wireless Headphones v2"
	curr.FloorUSDAmount = 75
	curr.LockOption = "360"
	curr.NctrValue = 3000

	diff := DiffSubmissions(prev, curr)

	changed := map[string]FieldChange{}
	for _, c := range diff.Changed {
		changed[c.Field] = c
	}
	require.Len(t, changed, 4)

	assert.Equal(t, "Wireless Headphones", changed["title"].Old)
	assert.Equal(t, "Wireless Headphones v2", changed["title"].New)

	// Currency fields carry a $ prefix
	assert.Equal(t, "$50.00", changed["floor_usd_amount"].Old)
	assert.Equal(t, "$75.00", changed["floor_usd_amount"].New)

	// Lock fields carry the LOCK suffix
	assert.Equal(t, "90 LOCK", changed["lock_option"].Old)
	assert.Equal(t, "360 LOCK", changed["lock_option"].New)

	assert.Equal(t, "1400 NCTR", changed["nctr_value"].Old)
	assert.Equal(t, "3000 NCTR", changed["nctr_value"].New)

	assert.Contains(t, diff.Unchanged, "description")
	assert.Contains(t, diff.Unchanged, "brand")
	assert.Contains(t, diff.Unchanged, "claims_required")
}

func TestDiffSubmissionsNilBrandVsEmptyCountsChanged(t *testing.T) {
	prev := testSubmission(1)
	prev.Brand = nil
	curr := testSubmission(2)
	empty := ""
	curr.Brand = &empty

	diff := DiffSubmissions(prev, curr)

	var brandChange *FieldChange
	for i := range diff.Changed {
		if diff.Changed[i].Field == "brand" {
			brandChange = &diff.Changed[i]
		}
	}
	require.NotNil(t, brandChange, "nil brand vs empty brand is a change, not equivalence")
	assert.Equal(t, "—", brandChange.Old)
}

func TestDiffSubmissionsHumanizesEnums(t *testing.T) {
	prev := testSubmission(1)
	curr := testSubmission(2)
	curr.RewardType = "gift_card"

	diff := DiffSubmissions(prev, curr)

	var change *FieldChange
	for i := range diff.Changed {
		if diff.Changed[i].Field == "reward_type" {
			change = &diff.Changed[i]
		}
	}
	require.NotNil(t, change)
	assert.Equal(t, "Merchandise", change.Old)
	assert.Equal(t, "Gift Card", change.New)
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Gift Card", humanize("gift_card"))
	assert.Equal(t, "Electronics", humanize("electronics"))
	assert.Equal(t, "", humanize(""))
}
