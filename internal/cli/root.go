// Package cli defines the motionwall command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// Version is set during build
var Version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:   "motionwall",
	Short: "Animated wallpaper daemon for X11",
	Long: `Motionwall renders looping video as your desktop background. It creates
one borderless, click-through window per monitor at the bottom of the
stacking order and supervises an external media player (mpv, mplayer or
vlc) drawing into each of them, restarting players that die and
reconciling surfaces when monitors are added, removed or resized.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
}
