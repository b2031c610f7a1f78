package notify

import (
	"context"
	"fmt"
	"memocal/internal/pkg/logger"
)

// LogNotifier writes reminders to the application log. It is always permitted.
type LogNotifier struct {
	log logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) HasPermission(context.Context) bool { return true }

func (n *LogNotifier) RequestPermission(context.Context) error { return nil }

// Deliver logs the reminder.
func (n *LogNotifier) Deliver(_ context.Context, memoID uint, title string) error {
	n.log.Info(fmt.Sprintf("%s: %s (memo %d)", summaryTitle, title, memoID))
	return nil
}

func (n *LogNotifier) Dismiss(context.Context, uint) error { return nil }
