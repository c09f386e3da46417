package jobs

import (
	"log"
	"time"

	"github.com/crescendorewards/backend/internal/queue"
	"github.com/crescendorewards/backend/internal/services/submission"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

const (
	repairInterval = 10 * time.Minute
	repairLockName = "chain_repair_scan"
	// Shorter than the interval so a crashed holder cannot block the next run
	repairLockTTL = 9 * time.Minute
)

// ChainRepairJob periodically restores the single-head invariant across all
// submission lineages. A partial failure between the version insert and the
// parent flag flip is recoverable, not fatal; this scan is the recovery.
type ChainRepairJob struct {
	db    *gorm.DB
	chain *submission.ChainService
	redis *queue.RedisClient
}

// NewChainRepairJob creates a new chain repair job
func NewChainRepairJob(db *gorm.DB, redis *queue.RedisClient) *ChainRepairJob {
	return &ChainRepairJob{
		db:    db,
		chain: submission.NewChainService(db),
		redis: redis,
	}
}

// ScheduleRepairScan registers the periodic scan with the scheduler
func (j *ChainRepairJob) ScheduleRepairScan(scheduler *gocron.Scheduler) error {
	_, err := scheduler.Every(repairInterval).Do(j.Run)
	return err
}

// Run executes one full scan. The Redis lock keeps concurrent deployments
// from scanning the same lineages at the same time; without Redis the scan
// runs unguarded, which is safe but wasteful.
func (j *ChainRepairJob) Run() {
	if j.redis != nil {
		ok, err := j.redis.AcquireLock(repairLockName, repairLockTTL)
		if err != nil {
			log.Printf("Chain repair scan: failed to acquire lock: %v", err)
			return
		}
		if !ok {
			log.Printf("Chain repair scan: another instance holds the lock, skipping")
			return
		}
		defer func() {
			if err := j.redis.ReleaseLock(repairLockName); err != nil {
				log.Printf("Chain repair scan: failed to release lock: %v", err)
			}
		}()
	}

	roots, err := j.chain.DistinctRoots()
	if err != nil {
		log.Printf("Chain repair scan: failed to list roots: %v", err)
		return
	}

	repaired := 0
	for _, rootID := range roots {
		inconsistency, err := j.chain.RepairChain(rootID)
		if err != nil {
			log.Printf("Chain repair scan: failed to repair chain %s: %v", rootID, err)
			continue
		}
		if inconsistency != nil {
			repaired++
			log.Printf("Chain repair scan: repaired chain %s, promoted head %s", rootID, inconsistency.RepairedHeadID)
		}
	}

	if repaired > 0 {
		log.Printf("Chain repair scan: checked %d chains, repaired %d", len(roots), repaired)
	}
}
