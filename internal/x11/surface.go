package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
)

// Surface is one background window covering a monitor. It is exclusively
// owned by the Connection that created it; other components refer to it by
// index only.
type Surface struct {
	Monitor int
	X       int
	Y       int
	Width   int
	Height  int
	Window  xproto.Window

	// NeedsRestart is set when the render target changed (move/resize) and
	// the player drawing into it must be restarted to pick up the new
	// geometry.
	NeedsRestart bool
}

// Valid reports whether the surface has a live native handle.
func (s *Surface) Valid() bool {
	return s != nil && s.Window != 0
}

// CreateSurface allocates a background window sized and positioned to the
// monitor, makes it input-transparent, maps it and lowers it to the bottom
// of the stacking order. Desktop-integration hints are applied separately
// by ApplyDesktopHints.
func (c *Connection) CreateSurface(mon Monitor, monIdx int) (*Surface, error) {
	wid, err := xproto.NewWindowId(c.XUtil.Conn())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate window id: %w", err)
	}

	// Override-redirect keeps window managers from reparenting or moving
	// the surface; stacking is controlled directly.
	err = xproto.CreateWindowChecked(
		c.XUtil.Conn(),
		0, // copy depth from parent
		wid,
		c.Root,
		int16(mon.X), int16(mon.Y),
		uint16(mon.Width), uint16(mon.Height),
		0,
		xproto.WindowClassInputOutput,
		0, // copy visual from parent
		xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{
			0x00000000, // black until the player draws
			1,
			uint32(xproto.EventMaskStructureNotify |
				xproto.EventMaskExposure |
				xproto.EventMaskVisibilityChange),
		},
	).Check()
	if err != nil {
		return nil, fmt.Errorf("failed to create surface for monitor %d: %w", monIdx, err)
	}

	s := &Surface{
		Monitor: monIdx,
		X:       mon.X,
		Y:       mon.Y,
		Width:   mon.Width,
		Height:  mon.Height,
		Window:  wid,
	}

	// Empty input region: clicks pass through to whatever the desktop
	// environment draws on top (icons, menus).
	if err := shape.RectanglesChecked(
		c.XUtil.Conn(),
		shape.SoSet,
		shape.SkInput,
		xproto.ClipOrderingUnsorted,
		wid,
		0, 0,
		nil,
	).Check(); err != nil {
		// The surface still works without input transparency; it just eats
		// clicks. Not fatal.
		return s, fmt.Errorf("failed to clear input shape for monitor %d: %w", monIdx, err)
	}

	xproto.MapWindow(c.XUtil.Conn(), wid)
	c.LowerSurface(s)
	c.Sync()

	return s, nil
}

// ResizeSurface moves and resizes the surface in place to the new monitor
// geometry and flags it for a player restart, since the running player's
// render target changed under it.
func (c *Connection) ResizeSurface(s *Surface, mon Monitor) error {
	if !s.Valid() {
		return fmt.Errorf("cannot resize destroyed surface for monitor %d", s.Monitor)
	}

	err := xproto.ConfigureWindowChecked(
		c.XUtil.Conn(),
		s.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{
			uint32(mon.X), uint32(mon.Y),
			uint32(mon.Width), uint32(mon.Height),
		},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to resize surface for monitor %d: %w", s.Monitor, err)
	}

	s.X, s.Y = mon.X, mon.Y
	s.Width, s.Height = mon.Width, mon.Height
	s.NeedsRestart = true
	return nil
}

// DestroySurface tears down the native handle. Idempotent.
func (c *Connection) DestroySurface(s *Surface) {
	if !s.Valid() {
		return
	}
	xproto.DestroyWindow(c.XUtil.Conn(), s.Window)
	s.Window = 0
}

// LowerSurface restacks the surface to the bottom so it behaves as
// wallpaper under every normal window.
func (c *Connection) LowerSurface(s *Surface) {
	if !s.Valid() {
		return
	}
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		s.Window,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeBelow},
	)
}
