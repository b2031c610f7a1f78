package service

import (
	"context"
	"memocal/internal/domain/constant"
	"memocal/internal/domain/entity"
)

// ReminderScheduler decides whether a memo gets a reminder and relays the
// decision to the alarm collaborator.
type ReminderScheduler interface {
	// Evaluate schedules a reminder for a stored memo if its time is valid and in the future.
	// Advisory outcomes return a nil error; a collaborator failure returns ErrScheduling.
	Evaluate(ctx context.Context, memo *entity.Memo) (constant.ReminderStatus, error)
	// Cancel drops the pending reminder of memoID and any notification still shown for it.
	Cancel(ctx context.Context, memoID uint) error
	// Deliver is called by the alarm collaborator when a reminder is due.
	Deliver(ctx context.Context, memoID uint, title string) error
	// Restore re-schedules the reminders of stored memos, e.g. after a restart.
	Restore(ctx context.Context) (int, error)
	// HasPermission reports whether delivered reminders become visible.
	HasPermission(ctx context.Context) bool
	// RequestPermission asks the notifier for permission.
	RequestPermission(ctx context.Context) error
}
