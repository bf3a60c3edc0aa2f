// Package placement computes window positions relative to the host shell.
// Everything here is pure and works in logical pixels.
package placement

import "github.com/1broseidon/traycast/internal/platform"

const (
	// TrayGap separates the companion from the tray container.
	TrayGap = 16
	// AnchorGap separates the detail window from its anchor.
	AnchorGap = 16
	// WorkAreaMargin is kept between the detail window and the work area edges.
	WorkAreaMargin = 10
)

// Companion returns the companion's top-left corner beside the tray.
// The result is not clamped; the companion always fits beside the tray.
func Companion(geom platform.ShellGeometry, size platform.Size) platform.Point {
	tray, bar := geom.Tray, geom.Taskbar
	if geom.Edge.Horizontal() {
		return platform.Point{
			X: tray.X - size.Width - TrayGap,
			Y: bar.Y + (bar.Height-size.Height)/2,
		}
	}
	return platform.Point{
		X: bar.X + (bar.Width-size.Width)/2,
		Y: tray.Y - size.Height - TrayGap,
	}
}

// Detail returns the detail window's top-left corner for an anchor rect.
//
// The window is centred horizontally on the anchor and opens away from the
// screen centre: above anchors in the lower half, below anchors in the upper
// half. The result is clamped into workArea with WorkAreaMargin on each side.
func Detail(anchor platform.Rect, size platform.Size, screen, workArea platform.Rect) platform.Point {
	ac := anchor.Center()
	x := ac.X - size.Width/2

	var y int
	if ac.Y >= screen.Y+screen.Height/2 {
		y = anchor.Y - size.Height - AnchorGap
	} else {
		y = anchor.Bottom() + AnchorGap
	}

	if workArea.Empty() {
		workArea = screen
	}
	x = clamp(x, workArea.X+WorkAreaMargin, workArea.Right()-WorkAreaMargin-size.Width)
	y = clamp(y, workArea.Y+WorkAreaMargin, workArea.Bottom()-WorkAreaMargin-size.Height)
	return platform.Point{X: x, Y: y}
}

// clamp keeps v within [lo, hi]. When the window is larger than the
// region, lo wins so the top-left corner stays visible.
func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
