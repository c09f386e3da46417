package compensation

import (
	"fmt"
	"math"
	"time"
)

// ErrUnknownLockOption is returned when a lock id is not in the catalog
var ErrUnknownLockOption = fmt.Errorf("unknown lock option")

// Result is the computed compensation for a requested dollar floor. The
// rounded amounts are displayed to the submitting contributor as a commitment,
// so they are persisted as snapshots and never recomputed.
type Result struct {
	NctrAmount  int64     `json:"nctr_amount"`
	DollarValue float64   `json:"dollar_value"`
	UnlockDate  time.Time `json:"unlock_date"`
	LockLabel   string    `json:"lock_label"`
}

// Compute converts a requested dollar floor into an NCTR award, its USD
// equivalent and the unlock date. nctrRateUSD is the current system-wide
// NCTR price in USD; it is admin-configurable so callers must fetch it fresh
// and pass it in. A zero or negative floor means no compensation and yields a
// nil result.
//
// Rounding is half-up at each step: once on the base conversion and again
// after the multiplier. The intermediate rounding is deliberate and must not
// be collapsed into a single rounded expression.
func Compute(floorUSD float64, lockID LockID, nctrRateUSD float64, now time.Time) (*Result, error) {
	if floorUSD <= 0 {
		return nil, nil
	}
	if nctrRateUSD <= 0 {
		return nil, fmt.Errorf("nctr rate must be positive, got %v", nctrRateUSD)
	}

	opt, ok := LockOptionByID(lockID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLockOption, lockID)
	}

	baseNctr := math.Round(floorUSD / nctrRateUSD)
	nctrAmount := int64(math.Round(baseNctr * opt.Multiplier))
	dollarValue := float64(nctrAmount) * nctrRateUSD
	unlockDate := now.AddDate(0, 0, opt.Days)

	return &Result{
		NctrAmount:  nctrAmount,
		DollarValue: dollarValue,
		UnlockDate:  unlockDate,
		LockLabel:   opt.Label(),
	}, nil
}

// ClaimsRequired returns how many Claims the requester must provide to cover
// the floor amount. Uses ceiling, not rounding: the requester must always
// provide at least the floor value in claims.
func ClaimsRequired(floorUSD, claimValueUSD float64) (int, error) {
	if claimValueUSD <= 0 {
		return 0, fmt.Errorf("claim value must be positive, got %v", claimValueUSD)
	}
	if floorUSD <= 0 {
		return 0, nil
	}
	return int(math.Ceil(floorUSD / claimValueUSD)), nil
}
