package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/motionwall/internal/config"
	"github.com/1broseidon/motionwall/internal/daemon"
	"github.com/1broseidon/motionwall/internal/logger"
	"github.com/1broseidon/motionwall/internal/playlist"
)

var runFlags struct {
	player      string
	duration    int
	shuffle     bool
	noLoop      bool
	multi       bool
	perMonitor  bool
	transitions bool
	display     string
	configPath  string
	debug       bool
}

var runCmd = &cobra.Command{
	Use:   "run <media-path> [media-path...]",
	Short: "Start the wallpaper daemon",
	Long: `Start the daemon with one or more media paths. A path may be a single
file or a directory, which is scanned for recognized media files
(` + fmt.Sprint(playlist.Extensions()) + `).
Comma-separated lists are accepted inside a single argument.

Flags override the config file for this run, and the resolved settings
are written back so the next run starts the same way.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runFlags.debug {
			logger.EnableDebug()
		}

		cfg, err := loadConfig(runFlags.configPath)
		if err != nil {
			return err
		}
		applyRunFlags(cmd, cfg)
		if err := cfg.Validate(); err != nil {
			return err
		}

		if err := saveConfig(cfg, runFlags.configPath); err != nil {
			logger.Warn("failed to persist resolved config", "err", err)
		}

		var paths []string
		for _, arg := range args {
			paths = append(paths, playlist.SplitPaths(arg)...)
		}

		d, err := daemon.New(daemon.Options{
			Config:     cfg,
			ConfigPath: runFlags.configPath,
			MediaPaths: paths,
			Debug:      runFlags.debug,
		})
		if err != nil {
			return err
		}
		return d.Run()
	},
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

func saveConfig(cfg *config.Config, path string) error {
	if path != "" {
		return config.SaveToPath(cfg, path)
	}
	return config.Save(cfg)
}

// applyRunFlags overlays only the flags the user actually set, so the
// config file keeps authority over everything else.
func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("player") {
		cfg.Player = runFlags.player
	}
	if flags.Changed("duration") {
		cfg.Duration = runFlags.duration
	}
	if flags.Changed("shuffle") {
		cfg.Shuffle = runFlags.shuffle
	}
	if flags.Changed("no-loop") {
		cfg.Loop = !runFlags.noLoop
	}
	if flags.Changed("multi-monitor") {
		cfg.MultiMonitor = runFlags.multi
	}
	if flags.Changed("per-monitor") {
		cfg.PerMonitorContent = runFlags.perMonitor
		if runFlags.perMonitor {
			cfg.MultiMonitor = true
		}
	}
	if flags.Changed("transitions") {
		cfg.Transitions = runFlags.transitions
	}
	if flags.Changed("display") {
		cfg.Display = runFlags.display
	}
}

func init() {
	flags := runCmd.Flags()
	flags.StringVarP(&runFlags.player, "player", "p", "mpv", "media player binary (mpv, mplayer, vlc)")
	flags.IntVarP(&runFlags.duration, "duration", "d", 30, "seconds per playlist item before advancing")
	flags.BoolVarP(&runFlags.shuffle, "shuffle", "s", false, "pick the next item at random")
	flags.BoolVar(&runFlags.noLoop, "no-loop", false, "do not loop individual files")
	flags.BoolVarP(&runFlags.multi, "multi-monitor", "m", false, "cover every monitor instead of only the primary")
	flags.BoolVar(&runFlags.perMonitor, "per-monitor", false, "give each monitor its own playlist (implies --multi-monitor)")
	flags.BoolVar(&runFlags.transitions, "transitions", false, "preload the next item for seamless swaps (mpv only)")
	flags.StringVar(&runFlags.display, "display", "", "X display to use (defaults to $DISPLAY)")
	flags.StringVarP(&runFlags.configPath, "config", "c", "", "config file path")
	flags.BoolVar(&runFlags.debug, "debug", false, "verbose logging and player output")

	rootCmd.AddCommand(runCmd)
}
