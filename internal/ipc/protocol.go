// Package ipc implements the daemon control socket: a line-delimited JSON
// protocol over a unix socket in the user's runtime directory.
package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus CommandType = "GET_STATUS"
	CommandNext      CommandType = "NEXT"
	CommandPause     CommandType = "PAUSE"
	CommandResume    CommandType = "RESUME"
	CommandReload    CommandType = "RELOAD"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// SurfaceStatus describes one background surface and its player.
type SurfaceStatus struct {
	Index     int    `json:"index"`
	Monitor   string `json:"monitor"`
	Geometry  string `json:"geometry"`
	PlayerPid int    `json:"player_pid,omitempty"`
	Content   string `json:"content,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	DaemonRunning bool            `json:"daemon_running"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Player        string          `json:"player"`
	Paused        bool            `json:"paused"`
	Transitions   bool            `json:"transitions"`
	Surfaces      []SurfaceStatus `json:"surfaces"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
