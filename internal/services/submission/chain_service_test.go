package submission

import (
	"fmt"
	"testing"
	"time"

	"github.com/crescendorewards/backend/internal/compensation"
	"github.com/crescendorewards/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSubmission(version int) *models.RewardSubmission {
	brand := "Acme"
	return &models.RewardSubmission{
		ID:          uuid.New(),
		SubmitterID: uuid.New(),

		Title:         "Wireless Headphones",
		Description:   "Noise cancelling over-ear headphones",
		Category:      "electronics",
		Brand:         &brand,
		RewardType:    models.RewardTypeMerchandise,
		ImageURL:      "https://cdn.example.com/headphones.png",
		StockQuantity: 10,

		FloorUSDAmount:         50,
		LockOption:             "90",
		NctrValue:              1400,
		ClaimsRequired:         10,
		ClaimValueAtSubmission: 5,
		NctrRateAtSubmission:   0.05,

		Version:          version,
		RootSubmissionID: uuid.New(),
		IsLatestVersion:  true,
		Status:           models.SubmissionStatusPending,
	}
}

func TestCreateNextVersionRejectsStaleParent(t *testing.T) {
	svc := NewChainService(nil)

	parent := testSubmission(1)
	parent.IsLatestVersion = false

	child, err := svc.CreateNextVersion(parent, Changes{}, "fixed the image", nil)
	assert.Nil(t, child)
	assert.ErrorIs(t, err, ErrStaleParent)
}

func TestBuildChildCopiesAndOverrides(t *testing.T) {
	svc := NewChainService(nil)
	parent := testSubmission(1)
	parent.Status = models.SubmissionStatusRejected

	newTitle := "Wireless Headphones v2"
	newFloor := 75.0
	newLock := compensation.Lock360

	child := svc.buildChild(parent, Changes{
		Title:          &newTitle,
		FloorUSDAmount: &newFloor,
		LockOption:     &newLock,
	}, "raised the floor and switched to a longer lock", nil)

	// Overridden fields
	assert.Equal(t, newTitle, child.Title)
	assert.Equal(t, newFloor, child.FloorUSDAmount)
	assert.Equal(t, "360", child.LockOption)

	// Copied fields
	assert.Equal(t, parent.Description, child.Description)
	assert.Equal(t, parent.Category, child.Category)
	assert.Equal(t, parent.Brand, child.Brand)
	assert.Equal(t, parent.StockQuantity, child.StockQuantity)
	assert.Equal(t, parent.SubmitterID, child.SubmitterID)

	// Chain mechanics
	assert.Equal(t, parent.Version+1, child.Version)
	require.NotNil(t, child.ParentSubmissionID)
	assert.Equal(t, parent.ID, *child.ParentSubmissionID)
	assert.Equal(t, parent.RootSubmissionID, child.RootSubmissionID)
	assert.True(t, child.IsLatestVersion)
	assert.Equal(t, models.SubmissionStatusPending, child.Status)
	assert.Equal(t, "raised the floor and switched to a longer lock", child.VersionNotes)

	// Review state never carries over
	assert.Nil(t, child.AdminNotes)
	assert.Nil(t, child.RejectionReason)
	assert.Nil(t, child.ReviewerID)
}

func TestBuildChildStampsFreshPricing(t *testing.T) {
	svc := NewChainService(nil)
	parent := testSubmission(1)
	parent.Status = models.SubmissionStatusRejected

	unlock := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	child := svc.buildChild(parent, Changes{}, "repriced at current rates", &Pricing{
		NctrValue:      700,
		ClaimsRequired: 13,
		ClaimValueUSD:  4,
		NctrRateUSD:    0.10,
		UnlockDate:     &unlock,
	})

	// The new version carries the current rates, not the parent's snapshot.
	assert.Equal(t, int64(700), child.NctrValue)
	assert.Equal(t, 13, child.ClaimsRequired)
	assert.Equal(t, 4.0, child.ClaimValueAtSubmission)
	assert.Equal(t, 0.10, child.NctrRateAtSubmission)
	require.NotNil(t, child.UnlockDate)
	assert.Equal(t, unlock, *child.UnlockDate)

	assert.NotEqual(t, parent.NctrValue, child.NctrValue)
	assert.NotEqual(t, parent.ClaimsRequired, child.ClaimsRequired)
}

func TestBuildChildVersionMonotonicity(t *testing.T) {
	svc := NewChainService(nil)

	root := testSubmission(1)
	root.RootSubmissionID = root.ID

	prev := root
	for want := 2; want <= 4; want++ {
		child := svc.buildChild(prev, Changes{}, "revision", nil)
		assert.Equal(t, want, child.Version)
		require.NotNil(t, child.ParentSubmissionID)
		assert.Equal(t, prev.ID, *child.ParentSubmissionID)
		assert.Equal(t, root.ID, child.RootSubmissionID)
		child.ID = uuid.New()
		prev = child
	}
}

func TestSelectTrueHeadPicksMaxVersion(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	v1 := *testSubmission(1)
	v1.CreatedAt = base
	v2 := *testSubmission(2)
	v2.CreatedAt = base.Add(time.Hour)
	v3 := *testSubmission(3)
	v3.CreatedAt = base.Add(2 * time.Hour)

	head := selectTrueHead([]models.RewardSubmission{v2, v1, v3})
	assert.Equal(t, v3.ID, head.ID)
}

func TestSelectTrueHeadDeterministicTieBreak(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	a := *testSubmission(2)
	a.CreatedAt = base
	b := *testSubmission(2)
	b.CreatedAt = base

	first := selectTrueHead([]models.RewardSubmission{a, b})
	second := selectTrueHead([]models.RewardSubmission{b, a})
	assert.Equal(t, first.ID, second.ID, "tie break must not depend on input order")
}

func TestCreateRevisionRequiresVersionNotes(t *testing.T) {
	svc := &WorkflowService{chain: NewChainService(nil)}

	current := testSubmission(1)
	current.Status = models.SubmissionStatusRejected

	for _, notes := range []string{"", "   ", "\n\t"} {
		child, err := svc.createRevision(current, Changes{}, notes)
		assert.Nil(t, child)
		assert.ErrorIs(t, err, ErrMissingChangeDescription, "notes %q", notes)
	}
}

func TestValidationAndConflictClassification(t *testing.T) {
	assert.True(t, IsValidationError(ErrMissingChangeDescription))
	assert.True(t, IsValidationError(compensation.ErrUnknownLockOption))
	assert.False(t, IsValidationError(ErrStaleParent))

	assert.True(t, IsConflictError(ErrStaleParent))
	assert.True(t, IsConflictError(ErrNotResubmittable))
	assert.True(t, IsConflictError(ErrNotUpdatable))
	assert.True(t, IsConflictError(fmt.Errorf("submission is approved: %w", ErrNotPending)))
	assert.False(t, IsConflictError(ErrMissingChangeDescription))
}
