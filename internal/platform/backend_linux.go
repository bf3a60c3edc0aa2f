//go:build linux

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/1broseidon/traycast/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// AutoHide modes for LinuxBackendConfig.
const (
	AutoHideAuto = "auto"
	AutoHideOn   = "on"
	AutoHideOff  = "off"
)

// LinuxBackendConfig tunes how the shell is located and interpreted.
type LinuxBackendConfig struct {
	// ShellClasses are WM_CLASS names identifying the panel window.
	ShellClasses []string
	// AutoHide is "auto" (no reserved strut means auto-hide), "on" or "off".
	AutoHide string
	// Scale overrides Xft.dpi detection when > 0.
	Scale  float64
	Logger *slog.Logger
}

// LinuxBackend implements ShellProbe and SurfaceFactory on an X11 EWMH desktop.
type LinuxBackend struct {
	conn   *x11.Connection
	cfg    LinuxBackendConfig
	logger *slog.Logger
	events chan Event

	// mu guards cfg and shell; Probe and Reconfigure may run on different goroutines.
	mu    sync.Mutex
	shell xproto.Window
}

var (
	_ ShellProbe     = (*LinuxBackend)(nil)
	_ SurfaceFactory = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, cfg LinuxBackendConfig) *LinuxBackend {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.AutoHide == "" {
		cfg.AutoHide = AutoHideAuto
	}
	return &LinuxBackend{
		conn:   conn,
		cfg:    cfg,
		logger: logger,
		events: make(chan Event, 32),
	}
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay(cfg LinuxBackendConfig) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, cfg), nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// StopEventLoop makes a running EventLoop return.
func (b *LinuxBackend) StopEventLoop() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
	}
}

// Events delivers clicks and focus changes on surfaces created by b.
func (b *LinuxBackend) Events() <-chan Event {
	return b.events
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// Probe locates the panel and its tray container and returns their geometry
// in logical pixels.
func (b *LinuxBackend) Probe() (ShellGeometry, error) {
	conn, err := b.connection()
	if err != nil {
		return ShellGeometry{}, NewProbeError(GeometryUnavailable, "%v", err)
	}

	shell, err := b.findShell()
	if err != nil {
		return ShellGeometry{}, err
	}
	tray, err := conn.TrayOwner()
	if err != nil {
		if errors.Is(err, x11.ErrWindowNotFound) {
			return ShellGeometry{}, NewProbeError(ShellNotFound, "tray container: %v", err)
		}
		return ShellGeometry{}, NewProbeError(GeometryUnavailable, "tray container: %v", err)
	}

	bar, err := b.windowRect(shell)
	if err != nil {
		return ShellGeometry{}, NewProbeError(GeometryUnavailable, "shell: %v", err)
	}
	trayRect, err := b.windowRect(tray)
	if err != nil {
		return ShellGeometry{}, NewProbeError(GeometryUnavailable, "tray: %v", err)
	}
	screen, err := b.screenFor(bar)
	if err != nil {
		return ShellGeometry{}, NewProbeError(GeometryUnavailable, "screen: %v", err)
	}

	workArea := screen
	if x, y, w, h, err := conn.WorkArea(); err == nil {
		if wa := (Rect{X: x, Y: y, Width: w, Height: h}).Intersect(screen); !wa.Empty() {
			workArea = wa
		}
	}

	xs, hasStruts := conn.WindowStruts(shell)
	struts := Struts{Left: xs.Left, Right: xs.Right, Top: xs.Top, Bottom: xs.Bottom}
	edge, ok := EdgeFromStruts(struts)
	if !hasStruts || !ok {
		edge = EdgeFromRect(bar, screen)
	}

	autoHide := false
	switch b.settings().AutoHide {
	case AutoHideOn:
		autoHide = true
	case AutoHideAuto:
		autoHide = !struts.Reserved()
	}

	scale := b.scale()
	return ShellGeometry{
		Tray:     trayRect.ToLogical(scale),
		Taskbar:  bar.ToLogical(scale),
		Edge:     edge,
		Scale:    scale,
		AutoHide: autoHide,
		Screen:   screen.ToLogical(scale),
		WorkArea: workArea.ToLogical(scale),
	}, nil
}

// IsShellVisible reads the panel's map state and on-screen thickness.
func (b *LinuxBackend) IsShellVisible(lastKnownEdge Edge) (Visibility, error) {
	conn, err := b.connection()
	if err != nil {
		return VisibilityHidden, NewProbeError(GeometryUnavailable, "%v", err)
	}
	shell, err := b.findShell()
	if err != nil {
		return VisibilityHidden, err
	}

	mapped, err := conn.IsViewable(shell)
	if err != nil {
		return VisibilityHidden, NewProbeError(GeometryUnavailable, "shell map state: %v", err)
	}
	bar, err := b.windowRect(shell)
	if err != nil {
		return VisibilityHidden, NewProbeError(GeometryUnavailable, "shell: %v", err)
	}
	screen, err := b.screenFor(bar)
	if err != nil {
		return VisibilityHidden, NewProbeError(GeometryUnavailable, "screen: %v", err)
	}

	scale := b.scale()
	return ClassifyThickness(bar.ToLogical(scale), screen.ToLogical(scale), lastKnownEdge, mapped), nil
}

// NewCompanion creates the override-redirect companion window.
func (b *LinuxBackend) NewCompanion() (Surface, error) {
	s, err := b.newSurface(x11.KindCompanion, "traycast")
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewDetail creates a managed, focusable detail window.
func (b *LinuxBackend) NewDetail() (DetailSurface, error) {
	s, err := b.newSurface(x11.KindDetail, "traycast detail")
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *LinuxBackend) newSurface(kind x11.WindowKind, name string) (*x11Surface, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}
	scale := b.scale()
	layout := x11.TextLayout{
		PaddingX:   scaleUp(TextPaddingX, scale),
		PaddingY:   scaleUp(TextPaddingY, scale),
		LineHeight: scaleUp(TextLineHeight, scale),
	}
	tw, err := conn.NewTextWindow(kind, name, layout)
	if err != nil {
		return nil, err
	}
	id := WindowID(tw.Window)

	tw.OnButton = func(button int) {
		switch button {
		case 1:
			b.emit(Event{Kind: EventPrimaryClick, Window: id})
		case 3:
			b.emit(Event{Kind: EventSecondaryClick, Window: id})
		}
	}
	tw.OnFocusOut = func() {
		b.emit(Event{Kind: EventFocusLost, Window: id})
	}

	return &x11Surface{backend: b, win: tw}, nil
}

func (b *LinuxBackend) emit(ev Event) {
	select {
	case b.events <- ev:
	default:
		b.logger.Warn("dropping window event, queue full", "event", ev.Kind, "window", ev.Window)
	}
}

func (b *LinuxBackend) findShell() (xproto.Window, error) {
	classes := b.settings().ShellClasses
	shell, err := b.conn.FindWindowByClass(classes)
	if err != nil {
		return 0, NewProbeError(ShellNotFound, "no window with class in %v", classes)
	}
	b.mu.Lock()
	b.shell = shell
	b.mu.Unlock()
	return shell, nil
}

// Reconfigure replaces the shell lookup settings used by later probes.
func (b *LinuxBackend) Reconfigure(classes []string, autoHide string, scale float64) {
	if autoHide == "" {
		autoHide = AutoHideAuto
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cfg.ShellClasses = append([]string(nil), classes...)
	b.cfg.AutoHide = autoHide
	b.cfg.Scale = scale
}

func (b *LinuxBackend) settings() LinuxBackendConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cfg
}

func (b *LinuxBackend) lastShell() xproto.Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.shell
}

func (b *LinuxBackend) scale() float64 {
	if s := b.settings().Scale; s > 0 {
		return s
	}
	if dpi, ok := b.conn.ResourceDPI(); ok {
		return math.Max(dpi/96, 0.5)
	}
	return 1
}

func (b *LinuxBackend) screenFor(r Rect) (Rect, error) {
	c := r.Center()
	mon, err := b.conn.MonitorAt(c.X, c.Y)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: mon.X, Y: mon.Y, Width: mon.Width, Height: mon.Height}, nil
}

func (b *LinuxBackend) windowRect(win xproto.Window) (Rect, error) {
	x, y, w, h, err := b.conn.WindowRect(win)
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

// x11Surface adapts an x11.TextWindow to Surface and DetailSurface.
type x11Surface struct {
	backend *LinuxBackend
	win     *x11.TextWindow
}

func (s *x11Surface) ID() WindowID { return WindowID(s.win.Window) }

func (s *x11Surface) Move(p Point) error { return s.win.Move(p.X, p.Y) }

func (s *x11Surface) Resize(sz Size) error { return s.win.Resize(sz.Width, sz.Height) }

func (s *x11Surface) Show() error { return s.win.Map() }

func (s *x11Surface) Hide() error { return s.win.Unmap() }

func (s *x11Surface) Raise() error {
	return s.backend.conn.RaiseAbove(s.win.Window, s.backend.lastShell())
}

func (s *x11Surface) SetOpacity(opacity float64) error {
	return s.backend.conn.SetOpacity(s.win.Window, opacity)
}

func (s *x11Surface) Render(c Content) error {
	return s.win.SetText(c.Lines, c.Foreground, c.Background)
}

func (s *x11Surface) Focus() error {
	return s.backend.conn.FocusWindow(s.win.Window)
}

func (s *x11Surface) Destroy() error { return s.win.Destroy() }
