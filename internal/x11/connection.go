package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to the X11 server and initializes
// the RandR and Shape extensions. An empty display uses $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	var (
		xu  *xgbutil.XUtil
		err error
	)
	if display != "" {
		xu, err = xgbutil.NewConnDisplay(display)
	} else {
		xu, err = xgbutil.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X server: %w", err)
	}

	if err := randr.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	if err := shape.Init(xu.Conn()); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("shape init failed: %w", err)
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}

	// Screen-change notifications drive event-driven reconciliation; the
	// coordination loop still polls as a fallback.
	if err := randr.SelectInputChecked(xu.Conn(), c.Root, randr.NotifyMaskScreenChange).Check(); err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("failed to select randr events: %w", err)
	}

	return c, nil
}

// Alive verifies the display connection with a cheap round trip.
func (c *Connection) Alive() bool {
	_, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	return err == nil
}

// PollEvent returns the next pending event without blocking. Both return
// values are nil when the queue is empty.
func (c *Connection) PollEvent() (interface{}, error) {
	ev, xerr := c.XUtil.Conn().PollForEvent()
	if xerr != nil {
		return nil, fmt.Errorf("x event error: %s", xerr.Error())
	}
	if ev == nil {
		return nil, nil
	}
	return ev, nil
}

// Sync flushes the request queue and waits for the server to catch up.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
