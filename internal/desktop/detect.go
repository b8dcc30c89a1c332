// Package desktop identifies the running desktop environment so the
// surface manager can pick the right window-manager hint overlay.
package desktop

import (
	"os"
	"strings"
)

// Environment is a recognized desktop environment family.
type Environment int

const (
	Unknown Environment = iota
	GNOME
	KDE
	XFCE
	Cinnamon
	MATE
	LXDE
	I3
)

var environmentNames = map[Environment]string{
	Unknown:  "unknown",
	GNOME:    "gnome",
	KDE:      "kde",
	XFCE:     "xfce",
	Cinnamon: "cinnamon",
	MATE:     "mate",
	LXDE:     "lxde",
	I3:       "i3",
}

func (e Environment) String() string {
	if name, ok := environmentNames[e]; ok {
		return name
	}
	return "unknown"
}

// DetectEnvironment sniffs XDG_CURRENT_DESKTOP, then DESKTOP_SESSION.
// Unknown is a valid result; callers fall back to generic hints.
func DetectEnvironment() Environment {
	return environmentFromVars(os.Getenv("XDG_CURRENT_DESKTOP"), os.Getenv("DESKTOP_SESSION"))
}

func environmentFromVars(currentDesktop, session string) Environment {
	if env := matchDesktop(currentDesktop); env != Unknown {
		return env
	}
	return matchSession(session)
}

func matchDesktop(value string) Environment {
	switch {
	case strings.Contains(value, "GNOME"):
		return GNOME
	case strings.Contains(value, "KDE"):
		return KDE
	case strings.Contains(value, "XFCE"):
		return XFCE
	case strings.Contains(value, "X-Cinnamon"):
		return Cinnamon
	case strings.Contains(value, "MATE"):
		return MATE
	case strings.Contains(value, "LXDE"):
		return LXDE
	}
	return Unknown
}

func matchSession(value string) Environment {
	value = strings.ToLower(value)
	switch {
	case strings.Contains(value, "gnome"):
		return GNOME
	case strings.Contains(value, "kde"):
		return KDE
	case strings.Contains(value, "xfce"):
		return XFCE
	case strings.Contains(value, "cinnamon"):
		return Cinnamon
	case strings.Contains(value, "mate"):
		return MATE
	case strings.Contains(value, "i3"):
		return I3
	}
	return Unknown
}
