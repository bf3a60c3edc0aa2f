package mcp

// DockStatusInput is the input for the dock_status tool.
type DockStatusInput struct{}

// DockStatusOutput is the output for the dock_status tool.
type DockStatusOutput struct {
	State      string  `json:"state"`
	Visibility string  `json:"visibility"`
	Edge       string  `json:"edge"`
	Scale      float64 `json:"scale"`
	Theme      string  `json:"theme"`
	DetailOpen bool    `json:"detail_open"`
	DetailView string  `json:"detail_view,omitempty"`
	Location   string  `json:"location,omitempty"`
	Weather    string  `json:"weather,omitempty"`
	FetchedAt  string  `json:"fetched_at,omitempty"`
	Loading    bool    `json:"loading"`
	LastError  string  `json:"last_error,omitempty"`
	PID        int     `json:"pid"`
	Uptime     int64   `json:"uptime_seconds"`
}

// RefreshWeatherInput is the input for the refresh_weather tool.
type RefreshWeatherInput struct{}

// OpenDetailInput is the input for the open_detail tool.
type OpenDetailInput struct {
	View string `json:"view,omitempty" jsonschema:"Which page to show: forecast (default) or settings"`
}

// CloseDetailInput is the input for the close_detail tool.
type CloseDetailInput struct{}

// ActionOutput is returned by tools that only trigger an action.
type ActionOutput struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
