package daemon

import (
	"time"

	"github.com/1broseidon/traycast/internal/platform"
)

// State is the controller's docking state.
type State int

const (
	// StateDormant means no forecast has loaded yet; the companion stays hidden.
	StateDormant State = iota
	// StateDocked means the companion is shown beside the tray.
	StateDocked
	// StateHiddenByShell means the shell is hidden or missing, so the
	// companion is too.
	StateHiddenByShell
)

func (s State) String() string {
	switch s {
	case StateDormant:
		return "dormant"
	case StateDocked:
		return "docked"
	case StateHiddenByShell:
		return "hidden-by-shell"
	default:
		return "unknown"
	}
}

// Status is a point-in-time copy of the controller state, safe to read from
// any goroutine.
type Status struct {
	State      string         `json:"state"`
	Visibility string         `json:"visibility"`
	Edge       string         `json:"edge,omitempty"`
	Scale      float64        `json:"scale,omitempty"`
	AutoHide   bool           `json:"auto_hide"`
	Companion  *platform.Rect `json:"companion,omitempty"`
	Tray       *platform.Rect `json:"tray,omitempty"`
	Theme      string         `json:"theme"`
	DetailOpen bool           `json:"detail_open"`
	DetailView string         `json:"detail_view,omitempty"`
	Loading    bool           `json:"loading"`
	Location   string         `json:"location,omitempty"`
	Weather    string         `json:"weather,omitempty"`
	FetchedAt  time.Time      `json:"fetched_at,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
	Passes     int            `json:"passes"`
	UpdatedAt  time.Time      `json:"updated_at"`
}
