// Package daemon runs the coordination loop: it owns the X connection,
// the background surfaces, the playlists and the player supervisor, and
// reconciles them against monitor topology and the content schedule.
package daemon

import (
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/1broseidon/motionwall/internal/config"
	"github.com/1broseidon/motionwall/internal/desktop"
	"github.com/1broseidon/motionwall/internal/instance"
	"github.com/1broseidon/motionwall/internal/ipc"
	"github.com/1broseidon/motionwall/internal/logger"
	"github.com/1broseidon/motionwall/internal/player"
	"github.com/1broseidon/motionwall/internal/playlist"
	"github.com/1broseidon/motionwall/internal/runtimepath"
	"github.com/1broseidon/motionwall/internal/session"
	"github.com/1broseidon/motionwall/internal/x11"
)

const (
	// connCheckInterval paces the display-connection liveness probe.
	connCheckInterval = 5 * time.Second

	// healthCheckInterval paces the player liveness sweep.
	healthCheckInterval = 3 * time.Second

	// topologyPollInterval paces the fallback monitor re-detection for
	// servers that never deliver screen-change events.
	topologyPollInterval = 10 * time.Second

	// reconcileCooldown debounces reconciliation after the first dirty
	// mark, so a storm of cascaded screen-change events settles first.
	reconcileCooldown = 2 * time.Second

	// settleDelay gives a freshly spawned player time to render its first
	// frame before the old one is retired or the next phase runs.
	settleDelay = 500 * time.Millisecond

	// maxEventsPerTick bounds event draining so a flood cannot starve the
	// scheduler.
	maxEventsPerTick = 32

	// maxEventErrors is the consecutive event-read failure count treated
	// as a dead display connection.
	maxEventErrors = 10

	baseTick = 50 * time.Millisecond
	minTick  = 10 * time.Millisecond
)

// Options carry everything the daemon needs beyond the config file.
type Options struct {
	Config *config.Config

	// ConfigPath is the file Config was resolved from, when not the
	// default location; reload re-reads this same file.
	ConfigPath string

	MediaPaths []string
	Debug      bool
}

// Daemon is the single-threaded coordination loop. All mutable state is
// owned by Run's goroutine; IPC and session events reach it through
// channels drained inside the loop.
type Daemon struct {
	cfg     *config.Config
	cfgPath string
	paths   []string
	debug   bool

	conn      *x11.Connection
	env       desktop.Environment
	monitors  []x11.Monitor
	surfaces  []*x11.Surface
	playlists []*playlist.Playlist
	sup       *player.Supervisor
	trans     *player.Transition
	kind      player.Kind

	lock    *instance.Lock
	server  *ipc.Server
	watcher *session.Watcher
	rng     *rand.Rand

	startTime     time.Time
	running       bool
	manualPaused  bool
	sessionLocked bool
	paused        bool
	topologyDirty bool
	dirtySince    time.Time
	lastConnCheck time.Time
	lastHealth    time.Time
	lastPoll      time.Time
	lastAdvance   []time.Time
	eventErrors   int
	spawnSeq      int

	shutdownOnce sync.Once
}

// New validates the options and prepares a daemon. Nothing external is
// touched until Run.
func New(opts Options) (*Daemon, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if len(opts.MediaPaths) == 0 {
		return nil, fmt.Errorf("at least one media path is required")
	}

	return &Daemon{
		cfg:     opts.Config,
		cfgPath: opts.ConfigPath,
		paths:   opts.MediaPaths,
		debug:   opts.Debug,
		kind:    player.DetectKind(opts.Config.Player),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Run acquires the single-instance lock, brings the world up and drives
// the coordination loop until a signal or a fatal display error.
func (d *Daemon) Run() error {
	lock, err := instance.Acquire()
	if err != nil {
		return fmt.Errorf("another instance appears to be running: %w", err)
	}
	d.lock = lock
	defer d.Shutdown()

	if err := d.setup(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	d.startTime = time.Now()
	d.running = true
	logger.Info("daemon running",
		"player", d.cfg.Player,
		"monitors", len(d.monitors),
		"desktop", d.env.String(),
		"transitions", d.trans.Enabled())

	var runErr error
	for d.running {
		select {
		case sig := <-sigCh:
			logger.Info("signal received, stopping", "signal", sig)
			d.running = false
			continue
		default:
		}

		now := time.Now()

		if now.Sub(d.lastConnCheck) >= connCheckInterval {
			d.lastConnCheck = now
			if !d.conn.Alive() {
				runErr = fmt.Errorf("display connection lost")
				break
			}
		}

		d.drainEvents()
		if !d.running {
			runErr = fmt.Errorf("display event stream failed")
			break
		}

		d.drainControl(now)
		d.maybeReconcile(now)
		d.healthCheck(now)
		d.schedule(now)

		time.Sleep(tickSleep(now, d.nextDueAt(now)))
	}

	return runErr
}

// Stop asks the loop to exit after the current tick.
func (d *Daemon) Stop() {
	d.running = false
}

// setup connects to the display, builds surfaces and playlists, spawns
// the initial players and starts the control surfaces.
func (d *Daemon) setup() error {
	conn, err := x11.NewConnection(d.cfg.Display)
	if err != nil {
		return err
	}
	d.conn = conn

	d.env = desktop.DetectEnvironment()
	if !d.conn.HasCompositor() {
		logger.Warn("no compositor detected, expect tearing and higher CPU use")
	}

	all, primary, err := d.conn.DetectMonitors()
	if err != nil {
		return err
	}
	d.monitors = selectMonitors(all, primary, d.cfg.MultiMonitor)
	for i, mon := range d.monitors {
		logger.Info("using monitor", "index", i, "name", mon.Name, "geometry", mon.Geometry(), "primary", mon.Primary)
	}

	if err := d.buildPlaylists(len(d.monitors)); err != nil {
		return err
	}

	d.surfaces = make([]*x11.Surface, 0, len(d.monitors))
	for i, mon := range d.monitors {
		s, err := d.conn.CreateSurface(mon, i)
		if s == nil {
			return fmt.Errorf("failed to create surface for monitor %s: %w", mon.Name, err)
		}
		if err != nil {
			logger.Warn("surface created without input transparency", "monitor", mon.Name, "err", err)
		}
		d.conn.ApplyDesktopHints(s, d.env)
		d.surfaces = append(d.surfaces, s)
	}
	d.conn.Sync()

	d.sup = player.NewSupervisor(len(d.surfaces))
	d.trans = player.NewTransition(d.cfg.Transitions, d.kind, len(d.surfaces))
	d.lastAdvance = make([]time.Time, len(d.surfaces))

	now := time.Now()
	for i := range d.surfaces {
		d.respawn(i)
		d.lastAdvance[i] = now
	}

	server, err := ipc.NewServer()
	if err != nil {
		logger.Warn("control socket unavailable", "err", err)
	} else if err := server.Start(); err != nil {
		logger.Warn("control socket failed to start", "err", err)
	} else {
		d.server = server
	}

	if d.cfg.PauseOnLock {
		watcher, err := session.NewWatcher()
		if err != nil {
			logger.Warn("session bus unavailable, pause-on-lock disabled", "err", err)
		} else {
			d.watcher = watcher
		}
	}

	return nil
}

// buildPlaylists resolves the media paths into one shared playlist, or
// one per surface in per-monitor mode.
func (d *Daemon) buildPlaylists(surfaces int) error {
	dur := d.cfg.ItemDuration()
	if d.cfg.PerMonitorContent {
		lists, err := playlist.AssignPerSurface(d.paths, surfaces, d.cfg.Shuffle, d.cfg.Loop, dur)
		if err != nil {
			return err
		}
		d.playlists = lists
		return nil
	}

	pl, err := playlist.BuildMerged(d.paths, d.cfg.Shuffle, d.cfg.Loop, dur)
	if err != nil {
		return err
	}
	d.playlists = []*playlist.Playlist{pl}
	return nil
}

// playlistFor maps a surface to its playlist.
func (d *Daemon) playlistFor(idx int) *playlist.Playlist {
	if d.cfg.PerMonitorContent && idx < len(d.playlists) {
		return d.playlists[idx]
	}
	return d.playlists[0]
}

// spawnOptions assembles the player invocation for a surface's current
// item. Each spawn gets a fresh IPC socket path so a preload never
// clobbers the primary's socket.
func (d *Daemon) spawnOptions(idx int) player.SpawnOptions {
	s := d.surfaces[idx]
	opts := player.SpawnOptions{
		Player: d.cfg.Player,
		Window: uint32(s.Window),
		Loop:   d.cfg.Loop,
		Path:   d.playlistFor(idx).CurrentItem(),
	}
	if d.kind.SupportsIPC() {
		d.spawnSeq++
		if sock, err := runtimepath.PlayerSocketPath(idx, d.spawnSeq); err == nil {
			os.Remove(sock)
			opts.IPCSocket = sock
		}
	}
	return opts
}

// spawnFor starts a player for the surface's current item.
func (d *Daemon) spawnFor(idx int) (*player.Process, error) {
	if idx >= len(d.surfaces) || !d.surfaces[idx].Valid() {
		return nil, fmt.Errorf("surface %d has no valid window", idx)
	}
	return player.Spawn(d.spawnOptions(idx), idx, d.debug)
}

// respawn replaces the surface's primary player, tolerating failure: an
// empty slot is retried by the health sweep.
func (d *Daemon) respawn(idx int) {
	d.sup.Terminate(idx)
	if !d.surfaces[idx].Valid() {
		return
	}
	p, err := d.spawnFor(idx)
	if err != nil {
		logger.Error("failed to start player", "surface", idx, "err", err)
		return
	}
	d.sup.SetPrimary(idx, p)
	d.surfaces[idx].NeedsRestart = false
}

// healthCheck restarts players that died, leaving paused state alone.
func (d *Daemon) healthCheck(now time.Time) {
	if now.Sub(d.lastHealth) < healthCheckInterval {
		return
	}
	d.lastHealth = now
	if d.paused {
		return
	}

	// A moved render target means terminate-then-respawn even when the old
	// player is still healthy. respawn clears the flag only on success, so
	// a failed spawn is retried here on the next sweep rather than leaving
	// the surface dark.
	for i, s := range d.surfaces {
		if s.Valid() && s.NeedsRestart {
			d.respawn(i)
		}
	}

	d.sup.CheckAndRestart(func(idx int) bool {
		return idx < len(d.surfaces) && d.surfaces[idx].Valid() && !d.surfaces[idx].NeedsRestart
	}, d.spawnFor)
}

// Shutdown tears everything down in dependency order. Idempotent; also
// runs when Run exits on error.
func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		logger.Info("shutting down")
		if d.trans != nil {
			d.trans.DiscardAll()
		}
		if d.sup != nil {
			d.sup.TerminateAll()
		}
		if d.conn != nil {
			for _, s := range d.surfaces {
				d.conn.DestroySurface(s)
			}
			d.conn.Sync()
			d.conn.Close()
		}
		if d.server != nil {
			d.server.Stop()
		}
		if d.watcher != nil {
			d.watcher.Close()
		}
		if d.lock != nil {
			d.lock.Release()
		}
	})
}

// selectMonitors narrows the detected set to what the daemon covers:
// everything in multi-monitor mode, otherwise just the primary.
func selectMonitors(all []x11.Monitor, primary int, multi bool) []x11.Monitor {
	if multi || len(all) == 0 {
		return all
	}
	if primary < 0 || primary >= len(all) {
		primary = 0
	}
	return []x11.Monitor{all[primary]}
}

// tickSleep sizes the loop's sleep: short enough to hit the next content
// advance on time, long enough to stay idle-cheap.
func tickSleep(now, nextDue time.Time) time.Duration {
	if nextDue.IsZero() {
		return baseTick
	}
	until := nextDue.Sub(now)
	if until <= 0 {
		return minTick
	}
	sleep := until / 4
	if sleep > baseTick {
		sleep = baseTick
	}
	if sleep < minTick {
		sleep = minTick
	}
	return sleep
}
