package daemon

import "github.com/1broseidon/traycast/internal/platform"

// CompanionMinWidth keeps the companion from collapsing around short labels.
const CompanionMinWidth = 72

// CompanionWindowHandle decides when the companion surface is touched.
//
// It remembers the last value applied for every field and skips OS calls
// that would not change anything. Raise is the exception: it is always
// forwarded, since other windows may have been stacked above the shell
// since the last pass. Positions and sizes are given in logical pixels and
// converted to device pixels here, once.
type CompanionWindowHandle struct {
	surface platform.Surface

	visible  *bool
	opacity  *float64
	position *platform.Point
	size     *platform.Size
	content  *platform.Content

	logicalPos  platform.Point
	logicalSize platform.Size
}

// NewCompanionWindowHandle wraps s. Nothing is applied until the first call.
func NewCompanionWindowHandle(s platform.Surface) *CompanionWindowHandle {
	return &CompanionWindowHandle{surface: s}
}

// ID returns the surface's window ID.
func (h *CompanionWindowHandle) ID() platform.WindowID {
	return h.surface.ID()
}

// Render draws content and resizes the surface to fit it. It returns the
// logical size the content needs.
func (h *CompanionWindowHandle) Render(content platform.Content, scale float64) (platform.Size, error) {
	size := platform.MeasureText(content.Lines, CompanionMinWidth)
	device := size.ToDevice(scale)
	if h.size == nil || *h.size != device {
		if err := h.surface.Resize(device); err != nil {
			return size, &platform.ApplyError{Field: "size", Err: err}
		}
		h.size = &device
	}
	h.logicalSize = size

	if h.content == nil || !h.content.Equal(content) {
		if err := h.surface.Render(content); err != nil {
			return size, &platform.ApplyError{Field: "content", Err: err}
		}
		c := platform.Content{
			Lines:      append([]string(nil), content.Lines...),
			Foreground: content.Foreground,
			Background: content.Background,
		}
		h.content = &c
	}
	return size, nil
}

// SetVisible maps or unmaps the surface.
func (h *CompanionWindowHandle) SetVisible(visible bool) error {
	if h.visible != nil && *h.visible == visible {
		return nil
	}
	var err error
	if visible {
		err = h.surface.Show()
	} else {
		err = h.surface.Hide()
	}
	if err != nil {
		return &platform.ApplyError{Field: "visibility", Err: err}
	}
	h.visible = &visible
	return nil
}

// SetOpacity applies opacity in [0,1].
func (h *CompanionWindowHandle) SetOpacity(opacity float64) error {
	if h.opacity != nil && *h.opacity == opacity {
		return nil
	}
	if err := h.surface.SetOpacity(opacity); err != nil {
		return &platform.ApplyError{Field: "opacity", Err: err}
	}
	h.opacity = &opacity
	return nil
}

// MoveTo places the companion's top-left corner at p (logical pixels).
func (h *CompanionWindowHandle) MoveTo(p platform.Point, scale float64) error {
	device := p.ToDevice(scale)
	if h.position != nil && *h.position == device {
		h.logicalPos = p
		return nil
	}
	if err := h.surface.Move(device); err != nil {
		return &platform.ApplyError{Field: "position", Err: err}
	}
	h.position = &device
	h.logicalPos = p
	return nil
}

// Raise restacks the companion above the shell.
func (h *CompanionWindowHandle) Raise() error {
	if err := h.surface.Raise(); err != nil {
		return &platform.ApplyError{Field: "z-order", Err: err}
	}
	return nil
}

// Visible reports the last applied visibility.
func (h *CompanionWindowHandle) Visible() bool {
	return h.visible != nil && *h.visible
}

// Bounds returns the companion rectangle in logical pixels, and false
// until it has been positioned.
func (h *CompanionWindowHandle) Bounds() (platform.Rect, bool) {
	if h.position == nil {
		return platform.Rect{}, false
	}
	return platform.Rect{
		X:      h.logicalPos.X,
		Y:      h.logicalPos.Y,
		Width:  h.logicalSize.Width,
		Height: h.logicalSize.Height,
	}, true
}

// Forget drops the cached state so the next pass re-applies every field.
func (h *CompanionWindowHandle) Forget() {
	h.visible = nil
	h.opacity = nil
	h.position = nil
	h.size = nil
	h.content = nil
}

// Destroy releases the surface.
func (h *CompanionWindowHandle) Destroy() error {
	h.Forget()
	return h.surface.Destroy()
}
