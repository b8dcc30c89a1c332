package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/motionwall/internal/desktop"
	"github.com/1broseidon/motionwall/internal/logger"
)

// allDesktops is the EWMH value binding a window to every virtual desktop.
const allDesktops = 0xFFFFFFFF

// kdeAllActivities is KWin's wildcard activity id.
const kdeAllActivities = "00000000-0000-0000-0000-000000000000"

// hint is one vendor window property. Exactly one of cardinal/str is used,
// selected by typ.
type hint struct {
	name     string
	typ      string // "CARDINAL" or "STRING"
	cardinal uint
	str      string
}

// environmentHints maps a desktop environment to its vendor hint overlay.
// The generic EWMH set is always applied first; adding support for a new
// environment is a row here, not new control flow.
var environmentHints = map[desktop.Environment][]hint{
	desktop.GNOME: {
		{name: "_GNOME_WM_SKIP_ANIMATIONS", typ: "CARDINAL", cardinal: 1},
	},
	desktop.KDE: {
		{name: "_KDE_NET_WM_ACTIVITIES", typ: "STRING", str: kdeAllActivities},
		{name: "_KDE_NET_WM_BYPASS_COMPOSITOR", typ: "CARDINAL", cardinal: 1},
	},
	desktop.Cinnamon: {
		{name: "_MUFFIN_HINTS", typ: "CARDINAL", cardinal: 1},
	},
	desktop.XFCE: {
		{name: "_XFCE_DESKTOP_WINDOW", typ: "CARDINAL", cardinal: 1},
	},
	desktop.MATE: {
		{name: "_MATE_DESKTOP_WINDOW", typ: "CARDINAL", cardinal: 1},
	},
	// i3 and LXDE need nothing beyond the generic set; sticky and
	// skip-taskbar/pager are already in it.
}

// compositorHints are applied when a compositing manager owns _NET_WM_CM_S0:
// fully opaque, no shadow, no fade.
var compositorHints = []hint{
	{name: "_NET_WM_WINDOW_OPACITY", typ: "CARDINAL", cardinal: 0xFFFFFFFF},
	{name: "_COMPTON_SHADOW", typ: "CARDINAL", cardinal: 0},
	{name: "_COMPTON_FADE", typ: "CARDINAL", cardinal: 0},
}

// ApplyDesktopHints performs the desktop-integration negotiation for one
// surface: the surface is declared a desktop-type window, stacked below,
// excluded from the task switcher and pager, and bound to all virtual
// desktops, followed by the environment-specific overlay. Everything here
// is best-effort; a window manager ignoring a hint degrades stacking, not
// function.
func (c *Connection) ApplyDesktopHints(s *Surface, env desktop.Environment) {
	if !s.Valid() {
		return
	}
	win := s.Window

	if err := ewmh.WmWindowTypeSet(c.XUtil, win, []string{"_NET_WM_WINDOW_TYPE_DESKTOP"}); err != nil {
		logger.Debug("window type hint rejected", "surface", s.Monitor, "err", err)
	}
	if err := ewmh.WmStateSet(c.XUtil, win, []string{
		"_NET_WM_STATE_BELOW",
		"_NET_WM_STATE_SKIP_TASKBAR",
		"_NET_WM_STATE_SKIP_PAGER",
		"_NET_WM_STATE_STICKY",
	}); err != nil {
		logger.Debug("window state hint rejected", "surface", s.Monitor, "err", err)
	}
	if err := ewmh.WmDesktopSet(c.XUtil, win, allDesktops); err != nil {
		logger.Debug("desktop membership hint rejected", "surface", s.Monitor, "err", err)
	}

	c.applyHints(s, environmentHints[env])

	if c.HasCompositor() {
		c.applyHints(s, compositorHints)
	}
}

func (c *Connection) applyHints(s *Surface, hints []hint) {
	for _, h := range hints {
		var err error
		switch h.typ {
		case "STRING":
			err = xprop.ChangeProp(c.XUtil, s.Window, 8, h.name, "STRING", []byte(h.str))
		default:
			err = xprop.ChangeProp32(c.XUtil, s.Window, h.name, "CARDINAL", h.cardinal)
		}
		if err != nil {
			// Absence of a vendor atom is expected off its home environment.
			logger.Debug("vendor hint rejected", "hint", h.name, "surface", s.Monitor, "err", err)
		}
	}
}

// HasCompositor reports whether a compositing manager owns the _NET_WM_CM_S0
// selection.
func (c *Connection) HasCompositor() bool {
	atom, err := xprop.Atm(c.XUtil, "_NET_WM_CM_S0")
	if err != nil {
		return false
	}
	owner, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return false
	}
	return owner.Owner != xproto.WindowNone
}
