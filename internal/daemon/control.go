package daemon

import (
	"fmt"
	"time"

	"github.com/1broseidon/motionwall/internal/config"
	"github.com/1broseidon/motionwall/internal/ipc"
	"github.com/1broseidon/motionwall/internal/logger"
	"github.com/1broseidon/motionwall/internal/player"
)

// drainControl answers pending IPC requests and applies session lock
// changes, without ever blocking the loop.
func (d *Daemon) drainControl(now time.Time) {
	if d.server != nil {
	requests:
		for {
			select {
			case pending := <-d.server.Requests():
				pending.Reply(d.handleRequest(pending.Req, now))
			default:
				break requests
			}
		}
	}

	if d.watcher != nil {
	events:
		for {
			select {
			case locked, ok := <-d.watcher.Events():
				if !ok {
					logger.Warn("session bus connection lost, pause-on-lock disabled")
					d.watcher = nil
					break events
				}
				logger.Info("session lock state changed", "locked", locked)
				d.sessionLocked = locked
				d.applyPauseState()
			default:
				break events
			}
		}
	}
}

func (d *Daemon) handleRequest(req *ipc.Request, now time.Time) *ipc.Response {
	switch req.Command {
	case ipc.CommandGetStatus:
		resp, err := ipc.NewOKResponse(d.statusData(now))
		if err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		return resp

	case ipc.CommandNext:
		d.forceAdvance(now)
		resp, _ := ipc.NewOKResponse(nil)
		return resp

	case ipc.CommandPause:
		d.manualPaused = true
		d.applyPauseState()
		resp, _ := ipc.NewOKResponse(nil)
		return resp

	case ipc.CommandResume:
		d.manualPaused = false
		d.applyPauseState()
		resp, _ := ipc.NewOKResponse(nil)
		return resp

	case ipc.CommandReload:
		if err := d.reloadConfig(); err != nil {
			return ipc.NewErrorResponse(err.Error())
		}
		resp, _ := ipc.NewOKResponse(nil)
		return resp
	}

	return ipc.NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
}

// applyPauseState reduces the manual and session pause inputs to one
// effective state and acts only on transitions.
func (d *Daemon) applyPauseState() {
	want := d.manualPaused || (d.sessionLocked && d.cfg.PauseOnLock)
	if want == d.paused {
		return
	}
	d.paused = want
	if want {
		logger.Info("pausing playback")
		d.sup.PauseAll()
	} else {
		logger.Info("resuming playback")
		d.sup.ResumeAll()
	}
}

// reloadConfig re-reads the config file the daemon was started from and
// applies what can change at runtime. Player, display and monitor-mode
// changes need a restart and are logged instead of applied.
func (d *Daemon) reloadConfig() error {
	var (
		fresh *config.Config
		err   error
	)
	if d.cfgPath != "" {
		fresh, err = config.LoadFromPath(d.cfgPath)
	} else {
		fresh, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}
	if err := fresh.Validate(); err != nil {
		return err
	}

	if fresh.Player != d.cfg.Player {
		logger.Warn("media_player change requires a restart, keeping current player", "current", d.cfg.Player)
		fresh.Player = d.cfg.Player
	}
	if fresh.Display != d.cfg.Display {
		fresh.Display = d.cfg.Display
	}
	if fresh.MultiMonitor != d.cfg.MultiMonitor || fresh.PerMonitorContent != d.cfg.PerMonitorContent {
		logger.Warn("monitor mode change requires a restart, keeping current mode")
		fresh.MultiMonitor = d.cfg.MultiMonitor
		fresh.PerMonitorContent = d.cfg.PerMonitorContent
	}

	d.cfg = fresh
	for _, pl := range d.playlists {
		pl.Duration = fresh.ItemDuration()
		pl.Shuffle = fresh.Shuffle
	}
	if fresh.Transitions != d.trans.Enabled() {
		d.trans.DiscardAll()
		d.trans = player.NewTransition(fresh.Transitions, d.kind, len(d.surfaces))
	}
	d.applyPauseState()

	logger.Info("configuration reloaded")
	return nil
}

func (d *Daemon) statusData(now time.Time) ipc.StatusData {
	sd := ipc.StatusData{
		DaemonRunning: true,
		UptimeSeconds: int64(now.Sub(d.startTime).Seconds()),
		Player:        d.cfg.Player,
		Paused:        d.paused,
		Transitions:   d.trans.Enabled(),
	}
	for i, s := range d.surfaces {
		st := ipc.SurfaceStatus{
			Index:   i,
			Content: d.playlistFor(i).CurrentItem(),
		}
		if i < len(d.monitors) {
			st.Monitor = d.monitors[i].Name
			st.Geometry = d.monitors[i].Geometry()
		}
		if s.Valid() {
			if p := d.sup.Primary(i); p != nil && p.Active {
				st.PlayerPid = p.Pid
			}
		}
		sd.Surfaces = append(sd.Surfaces, st)
	}
	return sd
}
