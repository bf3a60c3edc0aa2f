package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/traycast/internal/daemon"
	"github.com/1broseidon/traycast/internal/ipc"
)

type fakeDaemon struct {
	status    ipc.StatusData
	err       error
	refreshes int
	opened    []string
	closes    int
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.err != nil {
		return nil, f.err
	}
	st := f.status
	return &st, nil
}

func (f *fakeDaemon) Refresh() error {
	f.refreshes++
	return f.err
}

func (f *fakeDaemon) OpenDetail(view string) error {
	f.opened = append(f.opened, view)
	return f.err
}

func (f *fakeDaemon) CloseDetail() error {
	f.closes++
	return f.err
}

func newTestServer(d DaemonClient) *Server {
	return NewServer(d, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDockStatus(t *testing.T) {
	d := &fakeDaemon{status: ipc.StatusData{
		Status: daemon.Status{
			State:   "docked",
			Edge:    "bottom",
			Weather: "72° Clear",
		},
		PID:           42,
		UptimeSeconds: 7,
	}}
	s := newTestServer(d)

	_, out, err := s.handleDockStatus(context.Background(), nil, DockStatusInput{})
	require.NoError(t, err)
	assert.Equal(t, "docked", out.State)
	assert.Equal(t, "bottom", out.Edge)
	assert.Equal(t, "72° Clear", out.Weather)
	assert.Equal(t, 42, out.PID)
	assert.Equal(t, int64(7), out.Uptime)
}

func TestDockStatus_DaemonDown(t *testing.T) {
	s := newTestServer(&fakeDaemon{err: errors.New("connection refused")})
	_, _, err := s.handleDockStatus(context.Background(), nil, DockStatusInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpenDetail_Views(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, out, err := s.handleOpenDetail(ctx, nil, OpenDetailInput{})
	require.NoError(t, err)
	assert.True(t, out.OK)

	_, _, err = s.handleOpenDetail(ctx, nil, OpenDetailInput{View: "settings"})
	require.NoError(t, err)

	_, _, err = s.handleOpenDetail(ctx, nil, OpenDetailInput{View: "radar"})
	assert.Error(t, err)

	assert.Equal(t, []string{"forecast", "settings"}, d.opened)
}

func TestRefreshAndClose(t *testing.T) {
	d := &fakeDaemon{}
	s := newTestServer(d)
	ctx := context.Background()

	_, _, err := s.handleRefreshWeather(ctx, nil, RefreshWeatherInput{})
	require.NoError(t, err)
	_, _, err = s.handleCloseDetail(ctx, nil, CloseDetailInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, d.refreshes)
	assert.Equal(t, 1, d.closes)
}

func TestToolsListedOverSession(t *testing.T) {
	ctx := context.Background()
	s := newTestServer(&fakeDaemon{})

	serverT, clientT := mcpsdk.NewInMemoryTransports()
	ss, err := s.mcpServer.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	defer ss.Close()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{Name: "test", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	defer cs.Close()

	res, err := cs.ListTools(ctx, &mcpsdk.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"dock_status", "refresh_weather", "open_detail", "close_detail"}, names)
}
