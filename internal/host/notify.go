package host

import (
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

const (
	notifyReady    = daemon.SdNotifyReady
	notifyStopping = daemon.SdNotifyStopping
	notifyWatchdog = daemon.SdNotifyWatchdog
)

// Notifier reports service state to a supervisor such as systemd.
type Notifier interface {
	// Notify sends state; sent is false when no supervisor is listening.
	Notify(state string) (sent bool, err error)
	// Watchdog returns the interval the supervisor expects pings within.
	Watchdog() (interval time.Duration, enabled bool)
}

// SystemdNotifier talks to systemd over $NOTIFY_SOCKET. It is a no-op when
// the process was not started by systemd.
type SystemdNotifier struct{}

func (SystemdNotifier) Notify(state string) (bool, error) {
	return daemon.SdNotify(false, state)
}

func (SystemdNotifier) Watchdog() (time.Duration, bool) {
	d, err := daemon.SdWatchdogEnabled(false)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) (bool, error)     { return false, nil }
func (nopNotifier) Watchdog() (time.Duration, bool) { return 0, false }
