package x11

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// WindowKind selects how a TextWindow interacts with the window manager.
type WindowKind int

const (
	// KindCompanion is override-redirect and never takes focus.
	KindCompanion WindowKind = iota
	// KindDetail is a managed utility window that is focused on open.
	KindDetail
)

// TextLayout controls where text lines are drawn, in device pixels.
type TextLayout struct {
	PaddingX   int
	PaddingY   int
	LineHeight int
}

// TextWindow is a single window that draws lines of text with a core font.
type TextWindow struct {
	conn   *Connection
	kind   WindowKind
	layout TextLayout

	Window xproto.Window
	gc     xproto.Gcontext
	font   xproto.Font

	// mu guards the drawing state; Expose events arrive on the event loop goroutine.
	mu     sync.Mutex
	lines  []string
	fg, bg uint32
	mapped bool

	// OnButton receives the X button number of each press.
	OnButton func(button int)
	// OnFocusOut is called when the window loses keyboard focus.
	OnFocusOut func()
}

var fontNames = []string{"fixed", "9x15", "8x13", "6x13"}

// NewTextWindow creates (but does not map) a text window.
func (c *Connection) NewTextWindow(kind WindowKind, name string, layout TextLayout) (*TextWindow, error) {
	tw := &TextWindow{conn: c, kind: kind, layout: layout, bg: 0x1f2933, fg: 0xf5f7fa}

	win, err := tw.createWindow()
	if err != nil {
		return nil, err
	}
	tw.Window = win

	windowType := "_NET_WM_WINDOW_TYPE_DOCK"
	if kind == KindDetail {
		windowType = "_NET_WM_WINDOW_TYPE_UTILITY"
	}
	if err := c.SetToolHints(win, name, windowType, kind == KindDetail); err != nil {
		tw.Destroy()
		return nil, err
	}

	if err := tw.createGC(); err != nil {
		tw.Destroy()
		return nil, err
	}

	tw.connectEvents()
	return tw, nil
}

func (tw *TextWindow) createWindow() (xproto.Window, error) {
	conn := tw.conn.XUtil.Conn()
	screen := tw.conn.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	eventMask := uint32(xproto.EventMaskExposure | xproto.EventMaskButtonPress)
	mask := uint32(xproto.CwBackPixel | xproto.CwEventMask)
	// Value list order follows the bit positions of the mask (low -> high).
	values := []uint32{tw.bg, eventMask}
	if tw.kind == KindCompanion {
		mask = xproto.CwBackPixel | xproto.CwOverrideRedirect | xproto.CwEventMask
		values = []uint32{tw.bg, 1, eventMask}
	} else {
		values[1] |= xproto.EventMaskFocusChange
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		tw.conn.Root,
		0, 0, // x, y (will be updated later)
		1, 1, // width, height (will be updated later)
		0, // border_width
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		mask,
		values,
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}
	return wid, nil
}

func (tw *TextWindow) createGC() error {
	conn := tw.conn.XUtil.Conn()

	font, err := xproto.NewFontId(conn)
	if err != nil {
		return err
	}
	opened := false
	for _, fontName := range fontNames {
		if err := xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check(); err == nil {
			opened = true
			break
		}
	}
	if !opened {
		return fmt.Errorf("no core font available (tried %v)", fontNames)
	}
	tw.font = font

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(tw.Window),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{tw.fg, tw.bg, uint32(font), 0},
	).Check()
	if err != nil {
		return fmt.Errorf("failed to create graphics context: %w", err)
	}
	tw.gc = gc
	return nil
}

func (tw *TextWindow) connectEvents() {
	xu := tw.conn.XUtil
	xevent.ExposeFun(func(_ *xgbutil.XUtil, ev xevent.ExposeEvent) {
		if ev.Count == 0 {
			tw.draw()
		}
	}).Connect(xu, tw.Window)

	xevent.ButtonPressFun(func(_ *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		if tw.OnButton != nil {
			tw.OnButton(int(ev.Detail))
		}
	}).Connect(xu, tw.Window)

	if tw.kind == KindDetail {
		xevent.FocusOutFun(func(_ *xgbutil.XUtil, ev xevent.FocusOutEvent) {
			// Grab-induced transitions are not real focus changes.
			if ev.Mode != xproto.NotifyModeNormal {
				return
			}
			if tw.OnFocusOut != nil {
				tw.OnFocusOut()
			}
		}).Connect(xu, tw.Window)
	}
}

// Move places the window at root coordinates.
func (tw *TextWindow) Move(x, y int) error {
	if tw.kind == KindDetail {
		_ = tw.conn.SetRequestedPosition(tw.Window, x, y)
	}
	return xproto.ConfigureWindowChecked(
		tw.conn.XUtil.Conn(),
		tw.Window,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(x)), uint32(int32(y))},
	).Check()
}

// Resize sets the window size. Dimensions below one pixel are raised to one.
func (tw *TextWindow) Resize(width, height int) error {
	width = max(width, 1)
	height = max(height, 1)
	return xproto.ConfigureWindowChecked(
		tw.conn.XUtil.Conn(),
		tw.Window,
		xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(width), uint32(height)},
	).Check()
}

// Map shows the window.
func (tw *TextWindow) Map() error {
	if err := xproto.MapWindowChecked(tw.conn.XUtil.Conn(), tw.Window).Check(); err != nil {
		return err
	}
	tw.mu.Lock()
	tw.mapped = true
	tw.mu.Unlock()
	tw.draw()
	return nil
}

// Unmap hides the window.
func (tw *TextWindow) Unmap() error {
	if err := xproto.UnmapWindowChecked(tw.conn.XUtil.Conn(), tw.Window).Check(); err != nil {
		return err
	}
	tw.mu.Lock()
	tw.mapped = false
	tw.mu.Unlock()
	return nil
}

// SetText replaces the drawn lines and colors and repaints.
func (tw *TextWindow) SetText(lines []string, fg, bg uint32) error {
	tw.mu.Lock()
	tw.lines = append(tw.lines[:0], lines...)
	tw.fg, tw.bg = fg, bg
	tw.mu.Unlock()

	conn := tw.conn.XUtil.Conn()
	if err := xproto.ChangeWindowAttributesChecked(conn, tw.Window, xproto.CwBackPixel, []uint32{bg}).Check(); err != nil {
		return err
	}
	if tw.gc != 0 {
		if err := xproto.ChangeGCChecked(conn, tw.gc, xproto.GcForeground|xproto.GcBackground, []uint32{fg, bg}).Check(); err != nil {
			return err
		}
	}
	tw.draw()
	return nil
}

func (tw *TextWindow) draw() {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if !tw.mapped || tw.gc == 0 {
		return
	}
	conn := tw.conn.XUtil.Conn()
	xproto.ClearArea(conn, false, tw.Window, 0, 0, 0, 0)

	baseline := tw.layout.PaddingY + tw.layout.LineHeight - 4
	for i, line := range tw.lines {
		line = latin1(line)
		if line == "" {
			continue
		}
		if len(line) > 255 {
			line = line[:255]
		}
		xproto.ImageText8(
			conn,
			byte(len(line)),
			xproto.Drawable(tw.Window),
			tw.gc,
			int16(tw.layout.PaddingX),
			int16(baseline+i*tw.layout.LineHeight),
			line,
		)
	}
}

// Destroy releases the window, graphics context and font.
func (tw *TextWindow) Destroy() error {
	if tw.conn == nil {
		return nil
	}
	conn := tw.conn.XUtil.Conn()
	if tw.Window != 0 {
		xevent.Detach(tw.conn.XUtil, tw.Window)
	}
	if tw.gc != 0 {
		xproto.FreeGC(conn, tw.gc)
	}
	if tw.font != 0 {
		xproto.CloseFont(conn, tw.font)
	}
	var err error
	if tw.Window != 0 {
		err = xproto.DestroyWindowChecked(conn, tw.Window).Check()
	}
	tw.mu.Lock()
	tw.Window, tw.gc, tw.font = 0, 0, 0
	tw.mapped = false
	tw.mu.Unlock()
	return err
}

// latin1 re-encodes s for core fonts, which index glyphs by ISO 8859-1 byte.
func latin1(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r < 0x100 {
			out = append(out, byte(r))
		} else {
			out = append(out, '?')
		}
	}
	return string(out)
}
