package compensation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeRoundingDeterminism(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// $100 at $0.05/NCTR with the 360-day 2.0 multiplier:
	// base = round(100/0.05) = 2000, nctr = round(2000*2.0) = 4000
	result, err := Compute(100, Lock360, 0.05, now)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(4000), result.NctrAmount)
	assert.InDelta(t, 200.00, result.DollarValue, 0.0001)
	assert.Equal(t, now.AddDate(0, 0, 360), result.UnlockDate)
	assert.Equal(t, "360 LOCK", result.LockLabel)
}

func TestComputeNinetyDayScenario(t *testing.T) {
	now := time.Now()

	// $50 floor, 90-day lock (1.4x), $0.05/NCTR:
	// round(round(50/0.05)*1.4) = round(1000*1.4) = 1400
	result, err := Compute(50, Lock90, 0.05, now)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, int64(1400), result.NctrAmount)
	assert.InDelta(t, 70.00, result.DollarValue, 0.0001)
}

func TestComputeIntermediateRounding(t *testing.T) {
	now := time.Now()

	// base = round(10/0.03) = round(333.33) = 333, not 333.33 carried forward.
	// nctr = round(333*1.4) = round(466.2) = 466
	result, err := Compute(10, Lock90, 0.03, now)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(466), result.NctrAmount)
}

func TestComputeNoFloorMeansNoCompensation(t *testing.T) {
	for _, floor := range []float64{0, -5} {
		result, err := Compute(floor, Lock360, 0.05, time.Now())
		assert.NoError(t, err)
		assert.Nil(t, result, "floor %v should yield no compensation", floor)
	}
}

func TestComputeUnknownLockOption(t *testing.T) {
	result, err := Compute(100, LockID("180"), 0.05, time.Now())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrUnknownLockOption)
}

func TestComputeInvalidRate(t *testing.T) {
	result, err := Compute(100, Lock360, 0, time.Now())
	assert.Nil(t, result)
	assert.Error(t, err)
}

func TestClaimsRequiredCeiling(t *testing.T) {
	tests := []struct {
		floor      float64
		claimValue float64
		want       int
	}{
		{65, 5, 13},
		{61, 5, 13}, // 12.2 must ceil, never round down
		{60, 5, 12},
		{0.01, 5, 1},
		{0, 5, 0},
	}

	for _, tt := range tests {
		got, err := ClaimsRequired(tt.floor, tt.claimValue)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "ClaimsRequired(%v, %v)", tt.floor, tt.claimValue)
	}
}

func TestClaimsRequiredInvalidClaimValue(t *testing.T) {
	_, err := ClaimsRequired(65, 0)
	assert.Error(t, err)
}

func TestLockOptionCatalog(t *testing.T) {
	opts := LockOptions()
	require.Len(t, opts, 4)

	// Ordered by duration, exactly one recommended
	recommended := 0
	for i, opt := range opts {
		if i > 0 {
			assert.Greater(t, opt.Days, opts[i-1].Days)
		}
		if opt.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)

	opt, ok := LockOptionByID(Lock90)
	require.True(t, ok)
	assert.Equal(t, 90, opt.Days)
	assert.InDelta(t, 1.4, opt.Multiplier, 0.0001)

	_, ok = LockOptionByID("45")
	assert.False(t, ok)
}

func TestLockOptionsReturnsCopy(t *testing.T) {
	opts := LockOptions()
	opts[0].Multiplier = 99

	fresh, ok := LockOptionByID(Lock30)
	require.True(t, ok)
	assert.InDelta(t, 1.2, fresh.Multiplier, 0.0001)
}
