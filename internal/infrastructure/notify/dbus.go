package notify

import (
	"context"
	"fmt"
	"memocal/internal/pkg/logger"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	notifyObj    = "org.freedesktop.Notifications"
	notifyPath   = "/org/freedesktop/Notifications"
	notifyMethod = "org.freedesktop.Notifications.Notify"
	closeMethod  = "org.freedesktop.Notifications.CloseNotification"
	ownerMethod  = "org.freedesktop.DBus.NameHasOwner"

	// AppName is shown as the sender of desktop notifications.
	AppName      = "memocal"
	summaryTitle = "備忘錄提醒"
)

// DBusNotifier shows reminders through the freedesktop notification service.
type DBusNotifier struct {
	log logger.Logger

	mu    sync.Mutex
	bus   *dbus.Conn
	shown map[uint]uint32 // memo ID -> notification ID assigned by the server
}

// NewDBusNotifier creates a notifier. The session bus is connected lazily.
func NewDBusNotifier(log logger.Logger) *DBusNotifier {
	return &DBusNotifier{
		log:   log,
		shown: make(map[uint]uint32),
	}
}

func (n *DBusNotifier) conn() (*dbus.Conn, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bus != nil && n.bus.Connected() {
		return n.bus, nil
	}
	bus, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DBus session bus: %w", err)
	}
	n.bus = bus
	return bus, nil
}

// HasPermission reports whether a notification server owns its bus name.
func (n *DBusNotifier) HasPermission(ctx context.Context) bool {
	bus, err := n.conn()
	if err != nil {
		n.log.Debug(fmt.Sprintf("DBus unavailable: %v", err))
		return false
	}
	var owned bool
	if err := bus.BusObject().CallWithContext(ctx, ownerMethod, 0, notifyObj).Store(&owned); err != nil {
		n.log.Debug(fmt.Sprintf("Cannot query owner of %s: %v", notifyObj, err))
		return false
	}
	return owned
}

// RequestPermission connects to the session bus. Desktop notifications need no prompt.
func (n *DBusNotifier) RequestPermission(ctx context.Context) error {
	if _, err := n.conn(); err != nil {
		return err
	}
	if !n.HasPermission(ctx) {
		return fmt.Errorf("no notification server owns %s", notifyObj)
	}
	return nil
}

// Deliver posts a notification for the memo, replacing an earlier one for the same memo.
func (n *DBusNotifier) Deliver(ctx context.Context, memoID uint, title string) error {
	bus, err := n.conn()
	if err != nil {
		return err
	}

	n.mu.Lock()
	replaces := n.shown[memoID]
	n.mu.Unlock()

	var notificationID uint32
	call := bus.Object(notifyObj, notifyPath).CallWithContext(
		ctx,
		notifyMethod,
		0,
		AppName,
		replaces,
		"",
		summaryTitle,
		title,
		[]string{},
		map[string]dbus.Variant{"urgency": dbus.MakeVariant(byte(2))},
		int32(-1),
	)
	if err := call.Store(&notificationID); err != nil {
		return fmt.Errorf("cannot send notification %q: %w", title, err)
	}

	n.mu.Lock()
	n.shown[memoID] = notificationID
	n.mu.Unlock()
	n.log.Debug(fmt.Sprintf("Posted desktop notification %d for memo %d", notificationID, memoID))
	return nil
}

// Dismiss closes the notification shown for memoID, if any.
func (n *DBusNotifier) Dismiss(ctx context.Context, memoID uint) error {
	n.mu.Lock()
	notificationID, ok := n.shown[memoID]
	delete(n.shown, memoID)
	n.mu.Unlock()
	if !ok {
		return nil
	}

	bus, err := n.conn()
	if err != nil {
		return err
	}
	if call := bus.Object(notifyObj, notifyPath).CallWithContext(ctx, closeMethod, 0, notificationID); call.Err != nil {
		return fmt.Errorf("cannot close notification %d: %w", notificationID, call.Err)
	}
	return nil
}

// Close releases the bus connection.
func (n *DBusNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bus == nil {
		return nil
	}
	err := n.bus.Close()
	n.bus = nil
	return err
}
