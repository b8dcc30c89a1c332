package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/1broseidon/motionwall/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the daemon is playing where",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := ipc.NewClient().GetStatus()
		if err != nil {
			return err
		}

		state := "playing"
		if status.Paused {
			state = "paused"
		}
		fmt.Printf("motionwall: %s, player %s, up %ds\n", state, status.Player, status.UptimeSeconds)
		if status.Transitions {
			fmt.Println("transitions: enabled")
		}
		for _, s := range status.Surfaces {
			line := fmt.Sprintf("  [%d] %s %s", s.Index, s.Monitor, s.Geometry)
			if s.PlayerPid > 0 {
				line += fmt.Sprintf("  pid %d", s.PlayerPid)
			} else {
				line += "  (no player)"
			}
			if s.Content != "" {
				line += "  " + s.Content
			}
			fmt.Println(line)
		}
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Advance to the next playlist item now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Next()
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback on every monitor",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Pause()
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume paused playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Resume()
	},
}

var reloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload the daemon's configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		return ipc.NewClient().Reload()
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, nextCmd, pauseCmd, resumeCmd, reloadCmd)
}
