package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

func (m Monitor) contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	// Initialize RandR if not already done
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   outputName,
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
		})
	}

	return monitors, nil
}

// MonitorAt returns the monitor containing the given root coordinate. When
// RandR is unavailable or no monitor matches, the root window bounds are used.
func (c *Connection) MonitorAt(x, y int) (Monitor, error) {
	if monitors, err := c.GetMonitors(); err == nil {
		for _, mon := range monitors {
			if mon.contains(x, y) {
				return mon, nil
			}
		}
	}

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Monitor{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return Monitor{
		Name:   "root",
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// WindowRect returns a window's geometry translated to root coordinates.
func (c *Connection) WindowRect(win xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry of 0x%x: %w", win, err)
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		win,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates of 0x%x: %w", win, err)
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// IsViewable reports whether the window and all its ancestors are mapped.
func (c *Connection) IsViewable(win xproto.Window) (bool, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return false, fmt.Errorf("failed to get attributes of 0x%x: %w", win, err)
	}
	return attrs.MapState == xproto.MapStateViewable, nil
}

// Struts is the space a dock reserves on each screen side.
type Struts struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// WindowStruts reads _NET_WM_STRUT_PARTIAL, falling back to _NET_WM_STRUT.
// ok is false when the window sets neither.
func (c *Connection) WindowStruts(win xproto.Window) (Struts, bool) {
	if sp, err := ewmh.WmStrutPartialGet(c.XUtil, win); err == nil {
		return Struts{
			Left:   int(sp.Left),
			Right:  int(sp.Right),
			Top:    int(sp.Top),
			Bottom: int(sp.Bottom),
		}, true
	}

	// Some docks only set _NET_WM_STRUT (no partial ranges).
	if s, err := ewmh.WmStrutGet(c.XUtil, win); err == nil {
		return Struts{
			Left:   int(s.Left),
			Right:  int(s.Right),
			Top:    int(s.Top),
			Bottom: int(s.Bottom),
		}, true
	}
	return Struts{}, false
}
