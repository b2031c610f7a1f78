package constant

// ReminderStatus describes what happened when a memo's reminder was evaluated.
type ReminderStatus int

const (
	// ReminderScheduled means the alarm collaborator accepted the reminder.
	ReminderScheduled ReminderStatus = iota
	// ReminderInvalidTime means the memo's time could not be combined with its date.
	ReminderInvalidTime
	// ReminderTimePassed means the reminder instant was not after now.
	ReminderTimePassed
	// ReminderFailed means the alarm collaborator rejected the schedule.
	ReminderFailed
)

func (s ReminderStatus) String() string {
	switch s {
	case ReminderScheduled:
		return "scheduled"
	case ReminderInvalidTime:
		return "invalid_time"
	case ReminderTimePassed:
		return "time_passed"
	case ReminderFailed:
		return "failed"
	default:
		return "unknown"
	}
}
