package platform

// HiddenThickness is the largest on-screen shell thickness, in logical
// pixels, still classified as hidden. Auto-hide shells often leave a sliver
// mapped for hit-testing.
const HiddenThickness = 2

// ClassifyThickness decides shell visibility from the part of the shell
// rectangle that lies on screen, measured along the axis implied by edge.
func ClassifyThickness(shell, screen Rect, edge Edge, mapped bool) Visibility {
	if !mapped {
		return VisibilityHidden
	}
	onScreen := shell.Intersect(screen)
	thickness := onScreen.Height
	if !edge.Horizontal() {
		thickness = onScreen.Width
	}
	if thickness <= HiddenThickness {
		return VisibilityHidden
	}
	return VisibilityVisible
}

// Struts mirrors the four reserved-space values of _NET_WM_STRUT.
type Struts struct {
	Left   int
	Right  int
	Top    int
	Bottom int
}

// Reserved reports whether any side reserves space.
func (s Struts) Reserved() bool {
	return s.Left > 0 || s.Right > 0 || s.Top > 0 || s.Bottom > 0
}

// EdgeFromStruts returns the side with the largest reservation.
func EdgeFromStruts(s Struts) (Edge, bool) {
	if !s.Reserved() {
		return EdgeBottom, false
	}
	edge, best := EdgeBottom, s.Bottom
	if s.Top > best {
		edge, best = EdgeTop, s.Top
	}
	if s.Left > best {
		edge, best = EdgeLeft, s.Left
	}
	if s.Right > best {
		edge = EdgeRight
	}
	return edge, true
}

// EdgeFromRect infers the docking edge from the shell rectangle: the thin
// axis selects horizontal or vertical, and the nearer screen side wins.
func EdgeFromRect(bar, screen Rect) Edge {
	if bar.Width >= bar.Height {
		top := bar.Y - screen.Y
		bottom := screen.Bottom() - bar.Bottom()
		if top < bottom {
			return EdgeTop
		}
		return EdgeBottom
	}
	left := bar.X - screen.X
	right := screen.Right() - bar.Right()
	if left < right {
		return EdgeLeft
	}
	return EdgeRight
}
