// Package config loads and persists the motionwall configuration.
package config

import (
	"fmt"
	"time"
)

// Config is the effective daemon configuration. It is resolved once at
// startup from defaults, the config file, and command-line flags, and the
// resolved result is written back for the next run.
type Config struct {
	// Player is the media player binary (mpv, mplayer or vlc).
	Player string `yaml:"media_player"`

	// Duration is the seconds each playlist item is shown before advancing.
	Duration int `yaml:"playlist_duration"`

	// Shuffle picks a uniformly random next item instead of sequential order.
	Shuffle bool `yaml:"playlist_shuffle"`

	// Loop makes each player loop its file; the playlist itself always wraps.
	Loop bool `yaml:"playlist_loop"`

	// MultiMonitor creates one background surface per monitor instead of
	// only covering the primary monitor.
	MultiMonitor bool `yaml:"multi_monitor"`

	// PerMonitorContent gives every surface its own playlist, assigned
	// round-robin from the provided media paths.
	PerMonitorContent bool `yaml:"per_monitor_content"`

	// Transitions pre-starts the next player paused so content advances
	// without a blank frame. Requires a player that can start paused.
	Transitions bool `yaml:"transitions"`

	// PauseOnLock pauses playback while the session screensaver is active.
	PauseOnLock bool `yaml:"pause_on_lock"`

	// Display overrides the DISPLAY environment variable when set.
	Display string `yaml:"display,omitempty"`
}

// DefaultConfig returns the built-in defaults, matching a bare
// `motionwall run <media>` invocation.
func DefaultConfig() *Config {
	return &Config{
		Player:      "mpv",
		Duration:    30,
		Loop:        true,
		PauseOnLock: true,
	}
}

// Validate checks the configuration for values the daemon cannot run with.
func (c *Config) Validate() error {
	switch c.Player {
	case "mpv", "mplayer", "vlc":
	case "":
		return fmt.Errorf("media_player must not be empty")
	default:
		// Unknown players still get generic argument handling; warn-level
		// handling happens at spawn time, not here.
	}
	if c.Duration < 0 {
		return fmt.Errorf("playlist_duration must not be negative, got %d", c.Duration)
	}
	return nil
}

// ItemDuration returns the playlist duration as a time.Duration.
func (c *Config) ItemDuration() time.Duration {
	return time.Duration(c.Duration) * time.Second
}
