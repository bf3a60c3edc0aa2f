package mcp

import (
	"context"
	"fmt"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleDockStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ DockStatusInput) (*mcpsdk.CallToolResult, DockStatusOutput, error) {
	st, err := s.client.GetStatus()
	if err != nil {
		return nil, DockStatusOutput{}, fmt.Errorf("dock_status: %w", err)
	}
	out := DockStatusOutput{
		State:      st.State,
		Visibility: st.Visibility,
		Edge:       st.Edge,
		Scale:      st.Scale,
		Theme:      st.Theme,
		DetailOpen: st.DetailOpen,
		DetailView: st.DetailView,
		Location:   st.Location,
		Weather:    st.Weather,
		Loading:    st.Loading,
		LastError:  st.LastError,
		PID:        st.PID,
		Uptime:     st.UptimeSeconds,
	}
	if !st.FetchedAt.IsZero() {
		out.FetchedAt = st.FetchedAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

func (s *Server) handleRefreshWeather(_ context.Context, _ *mcpsdk.CallToolRequest, _ RefreshWeatherInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.Refresh(); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("refresh_weather: %w", err)
	}
	s.logger.Debug("mcp refresh requested")
	return nil, ActionOutput{OK: true, Message: "refresh started"}, nil
}

func (s *Server) handleOpenDetail(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenDetailInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	view := args.View
	if view == "" {
		view = "forecast"
	}
	if view != "forecast" && view != "settings" {
		return nil, ActionOutput{}, fmt.Errorf("open_detail: view must be forecast or settings, got %q", view)
	}
	if err := s.client.OpenDetail(view); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("open_detail: %w", err)
	}
	return nil, ActionOutput{OK: true, Message: view + " opened"}, nil
}

func (s *Server) handleCloseDetail(_ context.Context, _ *mcpsdk.CallToolRequest, _ CloseDetailInput) (*mcpsdk.CallToolResult, ActionOutput, error) {
	if err := s.client.CloseDetail(); err != nil {
		return nil, ActionOutput{}, fmt.Errorf("close_detail: %w", err)
	}
	return nil, ActionOutput{OK: true, Message: "detail closed"}, nil
}
