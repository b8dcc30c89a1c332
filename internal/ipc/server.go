package ipc

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/motionwall/internal/logger"
	"github.com/1broseidon/motionwall/internal/runtimepath"
)

// requestTimeout bounds how long a connection waits for the coordination
// loop to pick up and answer a forwarded request.
const requestTimeout = 5 * time.Second

// Pending is a parsed request awaiting an answer from the coordination
// loop. The loop must call Reply exactly once.
type Pending struct {
	Req  *Request
	resp chan *Response
}

// Reply delivers the response to the waiting connection.
func (p Pending) Reply(resp *Response) {
	p.resp <- resp
}

// Server listens on the control socket and forwards parsed requests to
// the coordination loop over a channel. All daemon state stays owned by
// that single loop; the server never touches it directly.
type Server struct {
	socketPath   string
	listener     net.Listener
	requests     chan Pending
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server
func NewServer() (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		requests:   make(chan Pending, 8),
	}, nil
}

// Requests is the channel the coordination loop drains each tick.
func (s *Server) Requests() <-chan Pending {
	return s.requests
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	logger.Debug("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			logger.Warn("IPC accept error", "err", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		logger.Warn("IPC read error", "err", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	pending := Pending{Req: req, resp: make(chan *Response, 1)}
	select {
	case s.requests <- pending:
	case <-time.After(requestTimeout):
		s.send(conn, NewErrorResponse("daemon busy"))
		return
	}

	select {
	case resp := <-pending.resp:
		s.send(conn, resp)
	case <-time.After(requestTimeout):
		s.send(conn, NewErrorResponse("daemon did not respond"))
	}
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		logger.Warn("failed to marshal IPC response", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		logger.Warn("failed to send IPC response", "err", err)
	}
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
