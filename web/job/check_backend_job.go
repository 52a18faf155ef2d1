package job

import (
	"context"
	"time"

	"github.com/invcheck/invcheck/logger"
	"github.com/invcheck/invcheck/util/common"

	"go.uber.org/atomic"
)

// Pinger probes the inventory backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckBackendJob probes the backend on a schedule and tracks whether it is
// reachable. The backend counts as down only after two failed probes in a row.
type CheckBackendJob struct {
	pinger  Pinger
	timeout time.Duration

	up        atomic.Bool
	failTimes atomic.Int32
}

func NewCheckBackendJob(p Pinger, timeout time.Duration) *CheckBackendJob {
	j := &CheckBackendJob{pinger: p, timeout: timeout}
	j.up.Store(true)
	return j
}

// Run probes the backend once. A panicking probe is logged and leaves the
// state unchanged.
func (j *CheckBackendJob) Run() {
	defer common.Recover("check backend job")

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.pinger.Ping(ctx); err != nil {
		j.markFailed(err)
		return
	}
	j.failTimes.Store(0)
	if j.up.CompareAndSwap(false, true) {
		logger.Info("inventory backend is reachable again")
	}
}

func (j *CheckBackendJob) markFailed(err error) {
	if j.failTimes.Inc() > 1 && j.up.CompareAndSwap(true, false) {
		logger.Warning("inventory backend is unreachable:", err)
	}
}

// IsUp reports the last known backend state.
func (j *CheckBackendJob) IsUp() bool {
	return j.up.Load()
}
