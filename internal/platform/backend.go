package platform

import "math"

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Point is a top-left screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (r Rect) Right() int  { return r.X + r.Width }
func (r Rect) Bottom() int { return r.Y + r.Height }

// Center returns the midpoint of r (rounded toward the origin).
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect returns the overlap of r and o, or the zero Rect when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.Right(), o.Right())
	y2 := min(r.Bottom(), o.Bottom())
	if x2 <= x1 || y2 <= y1 {
		return Rect{}
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// ToLogical converts a device-pixel rectangle into logical pixels.
func (r Rect) ToLogical(scale float64) Rect {
	if scale <= 0 || scale == 1 {
		return r
	}
	return Rect{
		X:      scaleDown(r.X, scale),
		Y:      scaleDown(r.Y, scale),
		Width:  scaleDown(r.Width, scale),
		Height: scaleDown(r.Height, scale),
	}
}

// ToDevice converts a logical point into device pixels.
func (p Point) ToDevice(scale float64) Point {
	if scale <= 0 || scale == 1 {
		return p
	}
	return Point{X: scaleUp(p.X, scale), Y: scaleUp(p.Y, scale)}
}

// ToDevice converts a logical size into device pixels.
func (s Size) ToDevice(scale float64) Size {
	if scale <= 0 || scale == 1 {
		return s
	}
	return Size{Width: scaleUp(s.Width, scale), Height: scaleUp(s.Height, scale)}
}

func scaleUp(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}

func scaleDown(v int, scale float64) int {
	return int(math.Round(float64(v) / scale))
}

// Edge is the screen edge the shell is docked against.
type Edge int

const (
	EdgeBottom Edge = iota
	EdgeTop
	EdgeLeft
	EdgeRight
)

func (e Edge) String() string {
	switch e {
	case EdgeBottom:
		return "bottom"
	case EdgeTop:
		return "top"
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	default:
		return "unknown"
	}
}

// Horizontal reports whether the shell runs along the top or bottom of the screen.
func (e Edge) Horizontal() bool {
	return e == EdgeBottom || e == EdgeTop
}

// ShellGeometry is a single probe result. All rectangles are logical pixels.
type ShellGeometry struct {
	Tray     Rect
	Taskbar  Rect
	Edge     Edge
	Scale    float64
	AutoHide bool
	Screen   Rect
	WorkArea Rect
}

// Visibility is the shell's on-screen state.
type Visibility int

const (
	VisibilityHidden Visibility = iota
	VisibilityVisible
	VisibilityPeeking
)

func (v Visibility) String() string {
	switch v {
	case VisibilityVisible:
		return "visible"
	case VisibilityPeeking:
		return "peeking"
	default:
		return "hidden"
	}
}

// ShellProbe answers read-only questions about the host shell.
type ShellProbe interface {
	// Probe returns fresh shell geometry or a *ProbeError.
	Probe() (ShellGeometry, error)
	// IsShellVisible returns VisibilityVisible or VisibilityHidden.
	IsShellVisible(lastKnownEdge Edge) (Visibility, error)
}

// Content is what a surface draws: text lines plus colors.
type Content struct {
	Lines      []string
	Foreground uint32
	Background uint32
}

// Equal reports whether c and o would render identically.
func (c Content) Equal(o Content) bool {
	if c.Foreground != o.Foreground || c.Background != o.Background || len(c.Lines) != len(o.Lines) {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i] != o.Lines[i] {
			return false
		}
	}
	return true
}

// Surface is an OS window. Coordinates and sizes are device pixels.
type Surface interface {
	ID() WindowID
	Move(p Point) error
	Resize(s Size) error
	Show() error
	Hide() error
	// Raise restacks the surface above the shell.
	Raise() error
	SetOpacity(opacity float64) error
	Render(c Content) error
	Destroy() error
}

// DetailSurface is a focusable surface for the detail window.
type DetailSurface interface {
	Surface
	Focus() error
}

// SurfaceFactory creates the OS windows the engine drives.
type SurfaceFactory interface {
	NewCompanion() (Surface, error)
	NewDetail() (DetailSurface, error)
}

// EventKind classifies input forwarded from the window system.
type EventKind int

const (
	EventPrimaryClick EventKind = iota
	EventSecondaryClick
	EventFocusLost
)

func (k EventKind) String() string {
	switch k {
	case EventPrimaryClick:
		return "primary-click"
	case EventSecondaryClick:
		return "secondary-click"
	case EventFocusLost:
		return "focus-lost"
	default:
		return "unknown"
	}
}

// Event is an input notification for one of the engine's surfaces.
type Event struct {
	Kind   EventKind
	Window WindowID
}
