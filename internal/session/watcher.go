// Package session watches the desktop session for screen lock changes so
// playback can pause while nobody is looking.
package session

import (
	"github.com/godbus/dbus/v5"

	"github.com/1broseidon/motionwall/internal/logger"
)

var screenSaverInterfaces = []string{
	"org.freedesktop.ScreenSaver",
	"org.gnome.ScreenSaver",
}

// Watcher delivers screen lock state changes from the session bus.
// Construction fails on systems without a session bus; the caller treats
// that as the feature being unavailable, not as a fatal error.
type Watcher struct {
	conn    *dbus.Conn
	signals chan *dbus.Signal
	events  chan bool
}

// NewWatcher connects to the session bus and subscribes to the
// screensaver ActiveChanged signal in both its freedesktop and GNOME
// spellings.
func NewWatcher() (*Watcher, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}

	for _, iface := range screenSaverInterfaces {
		if err := conn.AddMatchSignal(
			dbus.WithMatchInterface(iface),
			dbus.WithMatchMember("ActiveChanged"),
		); err != nil {
			logger.Debug("screensaver signal match failed", "interface", iface, "err", err)
		}
	}

	w := &Watcher{
		conn:    conn,
		signals: make(chan *dbus.Signal, 16),
		events:  make(chan bool, 4),
	}
	conn.Signal(w.signals)
	go w.pump()

	return w, nil
}

// Events yields true when the screen locks and false when it unlocks.
// The channel closes when the bus connection drops.
func (w *Watcher) Events() <-chan bool {
	return w.events
}

// Close drops the bus connection. The dbus library closes the signal
// channel, which ends the pump and closes Events.
func (w *Watcher) Close() {
	if w.conn != nil {
		w.conn.Close()
	}
}

func (w *Watcher) pump() {
	defer close(w.events)
	for sig := range w.signals {
		locked, ok := lockedFromSignal(sig)
		if !ok {
			continue
		}
		// Drop stale events rather than block the bus reader.
		select {
		case w.events <- locked:
		default:
		}
	}
}

// lockedFromSignal extracts the lock state from an ActiveChanged signal
// body, rejecting anything that does not carry a single boolean.
func lockedFromSignal(sig *dbus.Signal) (bool, bool) {
	if sig == nil || len(sig.Body) == 0 {
		return false, false
	}
	locked, ok := sig.Body[0].(bool)
	return locked, ok
}
