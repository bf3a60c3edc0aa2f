package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/traycast/internal/daemon"
	"github.com/1broseidon/traycast/internal/runtimepath"
)

// commandTimeout bounds how long a request waits on the controller.
const commandTimeout = 5 * time.Second

// Controller is the part of the sync controller the server drives.
type Controller interface {
	Status() daemon.Status
	Refresh(ctx context.Context) error
	OpenDetail(ctx context.Context, view daemon.DetailView) error
	CloseDetail(ctx context.Context) error
}

// Hooks are daemon-level actions that live outside the controller.
type Hooks struct {
	// Reload re-reads the config file and applies it.
	Reload func(ctx context.Context) error
	// Shutdown asks the daemon to exit. It must not block.
	Shutdown func()
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	controller   Controller
	hooks        Hooks
	logger       *slog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a new IPC server. An empty socketPath uses the runtime
// directory default.
func NewServer(socketPath string, controller Controller, hooks Hooks, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		p, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = p
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		controller: controller,
		hooks:      hooks,
		logger:     logger,
		startTime:  time.Now(),
	}, nil
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string { return s.socketPath }

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			stopping := s.shuttingDown
			s.shutdownMu.Unlock()
			if stopping {
				return
			}
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(2 * commandTimeout))

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	resp := s.handleCommand(req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Warn("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Warn("failed to send IPC response", "error", err)
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	switch req.Command {
	case CommandGetStatus:
		return s.handleGetStatus()
	case CommandRefresh:
		return okOrError(s.controller.Refresh(ctx), "refresh")
	case CommandOpenDetail:
		return s.handleOpenDetail(ctx, req.Payload)
	case CommandCloseDetail:
		return okOrError(s.controller.CloseDetail(ctx), "close detail")
	case CommandReload:
		return s.handleReload(ctx)
	case CommandShutdown:
		return s.handleShutdown()
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func (s *Server) handleGetStatus() *Response {
	status := StatusData{
		Status:        s.controller.Status(),
		PID:           os.Getpid(),
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	}
	resp, err := NewOKResponse(status)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) handleOpenDetail(ctx context.Context, payload json.RawMessage) *Response {
	var req OpenDetailPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return NewErrorResponse(fmt.Sprintf("Invalid open payload: %v", err))
		}
	}
	view, err := daemon.ParseDetailView(req.View)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return okOrError(s.controller.OpenDetail(ctx, view), "open detail")
}

// handleReload reloads the configuration
func (s *Server) handleReload(ctx context.Context) *Response {
	if s.hooks.Reload == nil {
		return NewErrorResponse("reload is not supported")
	}
	s.logger.Info("IPC: received RELOAD command")
	return okOrError(s.hooks.Reload(ctx), "reload config")
}

func (s *Server) handleShutdown() *Response {
	if s.hooks.Shutdown == nil {
		return NewErrorResponse("shutdown is not supported")
	}
	s.logger.Info("IPC: received SHUTDOWN command")
	s.hooks.Shutdown()
	resp, _ := NewOKResponse(nil)
	return resp
}

func okOrError(err error, action string) *Response {
	if err != nil {
		return NewErrorResponse(fmt.Sprintf("Failed to %s: %v", action, err))
	}
	resp, _ := NewOKResponse(nil)
	return resp
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
		s.wg.Wait()
	}
	os.Remove(s.socketPath)
}
