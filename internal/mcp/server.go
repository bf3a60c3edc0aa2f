// Package mcp exposes the running daemon to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/traycast/internal/ipc"
)

const (
	ServerName    = "traycast"
	ServerVersion = "0.1.0"
)

// DaemonClient is the IPC surface the tools call.
type DaemonClient interface {
	GetStatus() (*ipc.StatusData, error)
	Refresh() error
	OpenDetail(view string) error
	CloseDetail() error
}

// Server is the MCP server bridging tool calls to the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	client    DaemonClient
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards to client.
func NewServer(client DaemonClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		client: client,
		logger: logger,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "dock_status",
		Description: "Report the traycast daemon state: dock state, panel edge and visibility, display scale, theme, detail window, current weather summary and last error.",
	}, s.handleDockStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "refresh_weather",
		Description: "Ask the daemon to fetch location and forecast now. Returns immediately; poll dock_status for the result.",
	}, s.handleRefreshWeather)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_detail",
		Description: "Open the detail window next to the docked companion, showing the forecast or settings page. Fails when the companion is not docked.",
	}, s.handleOpenDetail)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_detail",
		Description: "Close the detail window if it is open.",
	}, s.handleCloseDetail)
}
