package scheduler

import (
	"context"
	"fmt"
	"memocal/internal/pkg/logger"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DeliverFunc is invoked when a memo's alarm goes off.
type DeliverFunc func(ctx context.Context, memoID uint, title string) error

// AlarmManager registers one-shot alarms keyed by memo ID on top of the cron scheduler.
type AlarmManager struct {
	cron    *Scheduler
	log     logger.Logger
	deliver DeliverFunc
	// map[memoID]cron.EntryID
	jobStore map[uint]cron.EntryID
	mu       sync.Mutex // Protect jobStore and deliver
}

// NewAlarmManager creates an AlarmManager on top of cronScheduler.
// The deliver handler is set later with SetDeliverHandler to break the circular dependency.
func NewAlarmManager(cronScheduler *Scheduler, log logger.Logger) *AlarmManager {
	return &AlarmManager{
		cron:     cronScheduler,
		log:      log,
		jobStore: make(map[uint]cron.EntryID),
	}
}

// SetDeliverHandler sets the function called when an alarm fires.
func (a *AlarmManager) SetDeliverHandler(handler func(ctx context.Context, memoID uint, title string) error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deliver = handler
}

// onceAt is a cron.Schedule that activates at one instant and never again.
type onceAt time.Time

// Next returns the instant while it is still ahead of t, else the zero time,
// which cron treats as never.
func (o onceAt) Next(t time.Time) time.Time {
	at := time.Time(o)
	if t.Before(at) {
		return at
	}
	return time.Time{}
}

// Schedule registers an alarm for memoID at the given instant, replacing any earlier one.
func (a *AlarmManager) Schedule(ctx context.Context, memoID uint, title string, at time.Time) error {
	if at.IsZero() {
		return fmt.Errorf("cannot schedule memo %d with zero time", memoID)
	}
	a.Cancel(ctx, memoID)

	var entryID cron.EntryID
	jobFunc := func() {
		a.log.Info(fmt.Sprintf("Alarm fired for memo %d", memoID))

		a.mu.Lock()
		fired := entryID
		if current, ok := a.jobStore[memoID]; ok && current == fired {
			delete(a.jobStore, memoID)
		}
		deliver := a.deliver
		a.mu.Unlock()
		a.cron.RemoveJob(fired)

		if deliver == nil {
			a.log.Warn(fmt.Sprintf("No deliver handler set, dropping alarm for memo %d", memoID))
			return
		}
		// Use background context for cron job execution
		if err := deliver(context.Background(), memoID, title); err != nil {
			a.log.Error(fmt.Sprintf("Error delivering reminder for memo %d", memoID), err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.cron.AddJob(onceAt(at), jobFunc)
	entryID = id
	a.jobStore[memoID] = id
	a.log.Info(fmt.Sprintf("Scheduled alarm for memo %d at %v (Job ID: %d)", memoID, at, id))
	return nil
}

// Cancel removes the pending alarm for memoID. Cancelling nothing is a no-op.
func (a *AlarmManager) Cancel(ctx context.Context, memoID uint) error {
	a.mu.Lock()
	entryID, ok := a.jobStore[memoID]
	delete(a.jobStore, memoID)
	a.mu.Unlock()

	if !ok {
		a.log.Debug(fmt.Sprintf("No pending alarm found for memo %d to cancel.", memoID))
		return nil
	}
	a.cron.RemoveJob(entryID)
	a.log.Info(fmt.Sprintf("Cancelled alarm for memo %d (Job ID: %d)", memoID, entryID))
	return nil
}

func (a *AlarmManager) pending(memoID uint) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.jobStore[memoID]
	return ok
}

// Stop stops the underlying scheduler.
func (a *AlarmManager) Stop() {
	a.cron.Stop()
}
