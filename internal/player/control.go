package player

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const ipcTimeout = 100 * time.Millisecond

// ipcCommand is the wire format mpv expects on its JSON IPC socket.
type ipcCommand struct {
	Command []interface{} `json:"command"`
}

// setPaused toggles playback over the player's IPC socket. The player
// creates the socket shortly after spawn, so a missing socket is an
// error the caller may retry or fall back from.
func setPaused(socketPath string, paused bool) error {
	conn, err := net.DialTimeout("unix", socketPath, ipcTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to player socket: %w", err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(ipcTimeout)); err != nil {
		return fmt.Errorf("failed to set socket deadline: %w", err)
	}

	payload, err := json.Marshal(ipcCommand{
		Command: []interface{}{"set_property", "pause", paused},
	})
	if err != nil {
		return fmt.Errorf("failed to encode pause command: %w", err)
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("failed to send pause command: %w", err)
	}
	return nil
}
