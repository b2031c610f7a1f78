package service

import (
	"context"
	"time"
)

// Alarm is the host collaborator that fires a callback at a given instant.
type Alarm interface {
	// Schedule registers an alarm for memoID, replacing an earlier one.
	Schedule(ctx context.Context, memoID uint, title string, at time.Time) error
	// Cancel removes the alarm for memoID. Cancelling nothing is a no-op.
	Cancel(ctx context.Context, memoID uint) error
	// SetDeliverHandler sets the callback invoked when an alarm fires.
	SetDeliverHandler(handler func(ctx context.Context, memoID uint, title string) error)
}

// Notifier is the host collaborator that makes a reminder visible to the user.
type Notifier interface {
	// HasPermission reports whether Deliver can produce a visible effect.
	HasPermission(ctx context.Context) bool
	// RequestPermission asks the host to allow notifications.
	RequestPermission(ctx context.Context) error
	// Deliver shows the reminder for memoID.
	Deliver(ctx context.Context, memoID uint, title string) error
	// Dismiss removes a reminder that is still shown for memoID.
	Dismiss(ctx context.Context, memoID uint) error
}
