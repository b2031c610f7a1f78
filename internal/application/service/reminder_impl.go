package service

import (
	"context"
	"fmt"
	"memocal/internal/domain/constant"
	"memocal/internal/domain/entity"
	"memocal/internal/pkg/dateutil"
	appErrors "memocal/internal/pkg/errors"
	"memocal/internal/pkg/logger"

	"github.com/jmhodges/clock"
)

type reminderScheduler struct {
	store    MemoStore
	alarm    Alarm
	notifier Notifier
	clock    clock.Clock
	log      logger.Logger
}

// NewReminderScheduler creates a ReminderScheduler and registers its Deliver
// method as the alarm's callback.
func NewReminderScheduler(store MemoStore, alarm Alarm, notifier Notifier, clk clock.Clock, log logger.Logger) ReminderScheduler {
	rs := &reminderScheduler{
		store:    store,
		alarm:    alarm,
		notifier: notifier,
		clock:    clk,
		log:      log,
	}
	alarm.SetDeliverHandler(rs.Deliver)
	return rs
}

// Evaluate computes the reminder instant of memo and schedules it when it lies in the future.
func (s *reminderScheduler) Evaluate(ctx context.Context, memo *entity.Memo) (constant.ReminderStatus, error) {
	now := s.clock.Now()
	date := dateutil.FromEpoch(memo.Date, now.Location())

	at, ok := dateutil.Combine(date, memo.Time)
	if !ok {
		s.log.Warn(fmt.Sprintf("Invalid time %q for memo %d, reminder not scheduled", memo.Time, memo.ID))
		return constant.ReminderInvalidTime, nil
	}
	if !at.After(now) {
		s.log.Debug(fmt.Sprintf("Reminder time %v for memo %d has already passed, not scheduling", at, memo.ID))
		return constant.ReminderTimePassed, nil
	}

	if err := s.alarm.Schedule(ctx, memo.ID, memo.Title, at); err != nil {
		s.log.Warn(fmt.Sprintf("Alarm rejected reminder for memo %d: %v", memo.ID, err))
		return constant.ReminderFailed, fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	s.log.Info(fmt.Sprintf("Reminder scheduled for memo %d at %v", memo.ID, at))
	return constant.ReminderScheduled, nil
}

// Cancel drops the pending alarm of memoID and dismisses its notification.
func (s *reminderScheduler) Cancel(ctx context.Context, memoID uint) error {
	if err := s.alarm.Cancel(ctx, memoID); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to cancel alarm for memo %d: %v", memoID, err))
		return fmt.Errorf("%w: %v", appErrors.ErrScheduling, err)
	}
	if err := s.notifier.Dismiss(ctx, memoID); err != nil {
		// The alarm is gone; a stale notification on screen is harmless.
		s.log.Warn(fmt.Sprintf("Failed to dismiss notification for memo %d: %v", memoID, err))
	}
	return nil
}

// Deliver shows the reminder if the memo still exists and notifications are permitted.
func (s *reminderScheduler) Deliver(ctx context.Context, memoID uint, title string) error {
	memo, err := s.store.GetByID(ctx, memoID)
	switch {
	case err != nil:
		// Deliver with the title carried by the alarm rather than drop the reminder.
		s.log.Error(fmt.Sprintf("Failed to look up memo %d before delivery", memoID), err)
	case memo == nil:
		s.log.Warn(fmt.Sprintf("Memo %d not found during delivery (already deleted?)", memoID))
		return nil
	default:
		title = memo.Title
	}

	if !s.notifier.HasPermission(ctx) {
		s.log.Warn(fmt.Sprintf("Notification permission not granted, reminder for memo %d not shown", memoID))
		return nil
	}
	if err := s.notifier.Deliver(ctx, memoID, title); err != nil {
		s.log.Error(fmt.Sprintf("Failed to deliver reminder for memo %d", memoID), err)
		return err
	}
	s.log.Info(fmt.Sprintf("Delivered reminder for memo %d", memoID))
	return nil
}

// Restore re-schedules every stored memo from today onwards whose time is still ahead.
func (s *reminderScheduler) Restore(ctx context.Context) (int, error) {
	s.log.Info("Restoring reminders from database...")
	memos, err := s.store.Upcoming(ctx, dateutil.Today(s.clock))
	if err != nil {
		s.log.Error("Failed to retrieve memos for reminder restore", err)
		return 0, err
	}

	scheduled := 0
	for _, memo := range memos {
		status, err := s.Evaluate(ctx, memo)
		if err != nil {
			// Continue trying to schedule others
			s.log.Error(fmt.Sprintf("Failed to restore reminder for memo %d", memo.ID), err)
			continue
		}
		if status == constant.ReminderScheduled {
			scheduled++
		}
	}
	s.log.Info(fmt.Sprintf("Reminder restore complete. Scheduled: %d of %d", scheduled, len(memos)))
	return scheduled, nil
}

func (s *reminderScheduler) HasPermission(ctx context.Context) bool {
	return s.notifier.HasPermission(ctx)
}

// RequestPermission asks the notifier for permission; a refusal is reported as ErrPermissionDenied.
func (s *reminderScheduler) RequestPermission(ctx context.Context) error {
	if err := s.notifier.RequestPermission(ctx); err != nil {
		s.log.Warn(fmt.Sprintf("Notification permission request failed: %v", err))
		return fmt.Errorf("%w: %v", appErrors.ErrPermissionDenied, err)
	}
	return nil
}
