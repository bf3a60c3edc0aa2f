package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/1broseidon/traycast/internal/placement"
	"github.com/1broseidon/traycast/internal/platform"
)

// DefaultDetailGrace is how long focus loss is ignored after opening.
const DefaultDetailGrace = 150 * time.Millisecond

// DetailMinWidth keeps the detail window readable with short content.
const DetailMinWidth = 240

// DetailView selects what the detail window shows.
type DetailView int

const (
	ViewForecast DetailView = iota
	ViewSettings
)

func (v DetailView) String() string {
	if v == ViewSettings {
		return "settings"
	}
	return "forecast"
}

// ParseDetailView maps "forecast" or "settings" to a view.
func ParseDetailView(s string) (DetailView, error) {
	switch s {
	case "", "forecast":
		return ViewForecast, nil
	case "settings":
		return ViewSettings, nil
	default:
		return ViewForecast, fmt.Errorf("unknown detail view %q", s)
	}
}

// DetailFactory creates detail surfaces.
type DetailFactory interface {
	NewDetail() (platform.DetailSurface, error)
}

// detailWindow is one live detail window. anchor is a copy taken at open
// time and is never updated; position and size are the applied device values.
type detailWindow struct {
	surface  platform.DetailSurface
	view     DetailView
	anchor   platform.Rect
	openedAt time.Time
	position platform.Point
	size     platform.Size
	placed   bool
	content  *platform.Content
}

// DetailSlot holds at most one detail window.
type DetailSlot struct {
	factory DetailFactory
	grace   time.Duration
	now     func() time.Time
	logger  *slog.Logger

	live *detailWindow
}

// NewDetailSlot returns an empty slot.
func NewDetailSlot(factory DetailFactory, grace time.Duration, logger *slog.Logger) *DetailSlot {
	if grace <= 0 {
		grace = DefaultDetailGrace
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailSlot{factory: factory, grace: grace, now: time.Now, logger: logger}
}

// SetGrace changes the grace period for windows opened afterwards.
func (s *DetailSlot) SetGrace(grace time.Duration) {
	if grace > 0 {
		s.grace = grace
	}
}

// Open closes the live window, if any, and opens a new one anchored to anchor.
func (s *DetailSlot) Open(anchor platform.Rect, view DetailView, content platform.Content, geom platform.ShellGeometry) error {
	s.Close()

	surface, err := s.factory.NewDetail()
	if err != nil {
		return fmt.Errorf("create detail window: %w", err)
	}
	w := &detailWindow{
		surface:  surface,
		view:     view,
		anchor:   anchor,
		openedAt: s.now(),
	}
	if err := w.layout(content, geom); err != nil {
		surface.Destroy()
		return err
	}
	if err := surface.Show(); err != nil {
		surface.Destroy()
		return &platform.ApplyError{Field: "visibility", Err: err}
	}
	if err := surface.Focus(); err != nil {
		s.logger.Debug("detail window focus failed", "error", err)
	}
	s.live = w

	s.logger.Debug("detail window opened",
		"view", view,
		"window", surface.ID(),
		"anchor", anchor)
	return nil
}

// Update re-renders the live window. Placement still uses the anchor
// captured at open time; geom only supplies the screen, work area and scale.
func (s *DetailSlot) Update(content platform.Content, geom platform.ShellGeometry) error {
	if s.live == nil {
		return nil
	}
	return s.live.layout(content, geom)
}

// Close destroys the live window. It reports whether one was open.
func (s *DetailSlot) Close() bool {
	if s.live == nil {
		return false
	}
	w := s.live
	s.live = nil
	if err := w.surface.Destroy(); err != nil {
		s.logger.Warn("failed to destroy detail window", "window", w.surface.ID(), "error", err)
	}
	s.logger.Debug("detail window closed", "view", w.view)
	return true
}

// FocusLost handles focus leaving window id. Within the grace period the
// event is ignored; afterwards the window is closed. It reports whether a
// window was closed.
func (s *DetailSlot) FocusLost(id platform.WindowID) bool {
	if !s.Owns(id) {
		return false
	}
	if elapsed := s.now().Sub(s.live.openedAt); elapsed < s.grace {
		s.logger.Debug("ignoring focus loss during grace period", "elapsed", elapsed)
		return false
	}
	return s.Close()
}

// IsOpen reports whether a window is live.
func (s *DetailSlot) IsOpen() bool { return s.live != nil }

// View returns the live window's view.
func (s *DetailSlot) View() (DetailView, bool) {
	if s.live == nil {
		return ViewForecast, false
	}
	return s.live.view, true
}

// Anchor returns the live window's anchor.
func (s *DetailSlot) Anchor() (platform.Rect, bool) {
	if s.live == nil {
		return platform.Rect{}, false
	}
	return s.live.anchor, true
}

// Owns reports whether id is the live window.
func (s *DetailSlot) Owns(id platform.WindowID) bool {
	return s.live != nil && s.live.surface.ID() == id
}

func (w *detailWindow) layout(content platform.Content, geom platform.ShellGeometry) error {
	size := platform.MeasureText(content.Lines, DetailMinWidth)
	pos := placement.Detail(w.anchor, size, geom.Screen, geom.WorkArea)

	if w.content == nil || !w.content.Equal(content) {
		if err := w.surface.Render(content); err != nil {
			return &platform.ApplyError{Field: "content", Err: err}
		}
		c := platform.Content{
			Lines:      append([]string(nil), content.Lines...),
			Foreground: content.Foreground,
			Background: content.Background,
		}
		w.content = &c
	}
	if dev := size.ToDevice(geom.Scale); dev != w.size {
		if err := w.surface.Resize(dev); err != nil {
			return &platform.ApplyError{Field: "size", Err: err}
		}
		w.size = dev
	}
	if dev := pos.ToDevice(geom.Scale); !w.placed || dev != w.position {
		if err := w.surface.Move(dev); err != nil {
			return &platform.ApplyError{Field: "position", Err: err}
		}
		w.position = dev
		w.placed = true
	}
	return nil
}
