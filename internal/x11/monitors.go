package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

// maxMonitors caps detection; topologies beyond this are truncated.
const maxMonitors = 16

// Monitor is one connected output in a topology snapshot. Snapshots are
// immutable; a topology change replaces the whole slice.
type Monitor struct {
	Name      string
	X         int
	Y         int
	Width     int
	Height    int
	Primary   bool
	Connected bool
}

// Geometry returns the monitor geometry as an X geometry string.
func (m Monitor) Geometry() string {
	return fmt.Sprintf("%dx%d+%d+%d", m.Width, m.Height, m.X, m.Y)
}

// DetectMonitors queries RandR for connected outputs with an active CRTC
// and returns them with the primary index. If the primary output cannot be
// identified, index 0 is designated primary. Zero monitors is an error;
// callers treat it as fatal at startup and recoverable mid-run.
func (c *Connection) DetectMonitors() ([]Monitor, int, error) {
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, -1, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primaryOutput randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primaryOutput = reply.Output
	}

	var monitors []Monitor
	primaryIndex := -1

	for _, output := range resources.Outputs {
		if len(monitors) >= maxMonitors {
			break
		}

		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), output, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		if outputInfo.Connection != randr.ConnectionConnected || outputInfo.Crtc == 0 {
			continue
		}

		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), outputInfo.Crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		mon := Monitor{
			Name:      string(outputInfo.Name),
			X:         int(crtcInfo.X),
			Y:         int(crtcInfo.Y),
			Width:     int(crtcInfo.Width),
			Height:    int(crtcInfo.Height),
			Primary:   output == primaryOutput && primaryOutput != 0,
			Connected: true,
		}
		if mon.Primary {
			primaryIndex = len(monitors)
		}
		monitors = append(monitors, mon)
	}

	if len(monitors) == 0 {
		return nil, -1, fmt.Errorf("no connected monitors detected")
	}
	if primaryIndex == -1 {
		primaryIndex = 0
		monitors[0].Primary = true
	}

	return monitors, primaryIndex, nil
}

// MonitorsChanged diffs two topology snapshots positionally: true iff the
// counts differ or any monitor at the same index differs in geometry or
// connectivity. A reordering of otherwise-identical monitors is invisible
// to this comparison; that approximation is deliberate, since outputs carry
// no stable identity across reconfiguration beyond their name.
func MonitorsChanged(old, new []Monitor) bool {
	if len(old) != len(new) {
		return true
	}
	for i := range old {
		if old[i].X != new[i].X || old[i].Y != new[i].Y ||
			old[i].Width != new[i].Width || old[i].Height != new[i].Height ||
			old[i].Connected != new[i].Connected {
			return true
		}
	}
	return false
}
