package workers

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-sanctuary/internal/logger"
)

// DefaultCheckInterval is how often the auto-lock job polls for idleness.
const DefaultCheckInterval = 30 * time.Second

type autoLockJob struct {
	locker   IdleLocker
	interval time.Duration
	onLock   func()

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewAutoLock creates a job that calls locker.LockIfIdle every interval.
// onLock, if set, runs after each lock the job performs. A non-positive
// interval means DefaultCheckInterval. The job is idle until Start is called.
func NewAutoLock(locker IdleLocker, interval time.Duration, onLock func()) Worker {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}
	return &autoLockJob{locker: locker, interval: interval, onLock: onLock}
}

// Start implements Worker. It stops any previously running loop first.
func (j *autoLockJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(j.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				if j.locker.LockIfIdle() {
					logger.FromContext(jobCtx).Info().Str("func", "autoLockJob.Start").Msg("session auto-locked after inactivity")
					if j.onLock != nil {
						j.onLock()
					}
				}
			}
		}
	}()
}

// Stop implements Worker.
func (j *autoLockJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
