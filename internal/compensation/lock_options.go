package compensation

// LockID identifies a lock duration option
type LockID string

const (
	Lock30  LockID = "30"
	Lock90  LockID = "90"
	Lock360 LockID = "360"
	Lock720 LockID = "720"
)

// LockOption is a commitment duration a reward requester can choose, trading
// illiquidity for a higher NCTR multiplier. The catalog is reference data;
// changing it is a deployment, not a runtime operation.
type LockOption struct {
	ID          LockID  `json:"id"`
	Days        int     `json:"days"`
	Multiplier  float64 `json:"multiplier"`
	Recommended bool    `json:"recommended"`
}

// Label returns the display label for the option, e.g. "360 LOCK"
func (o LockOption) Label() string {
	return string(o.ID) + " LOCK"
}

var lockOptions = []LockOption{
	{ID: Lock30, Days: 30, Multiplier: 1.2},
	{ID: Lock90, Days: 90, Multiplier: 1.4},
	{ID: Lock360, Days: 360, Multiplier: 2.0, Recommended: true},
	{ID: Lock720, Days: 720, Multiplier: 2.5},
}

// LockOptions returns the fixed, ordered catalog of lock options
func LockOptions() []LockOption {
	out := make([]LockOption, len(lockOptions))
	copy(out, lockOptions)
	return out
}

// LockOptionByID looks up a lock option by its identifier
func LockOptionByID(id LockID) (LockOption, bool) {
	for _, opt := range lockOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return LockOption{}, false
}
