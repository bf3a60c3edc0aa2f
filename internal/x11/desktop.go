package x11

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// ErrWindowNotFound is returned when no window matches a lookup.
var ErrWindowNotFound = errors.New("window not found")

// GetCurrentDesktop returns the current virtual desktop number (0-indexed).
// Uses _NET_CURRENT_DESKTOP atom. Returns 0 with an error if detection fails.
func (c *Connection) GetCurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WorkArea returns the _NET_WORKAREA rectangle for the current desktop.
func (c *Connection) WorkArea() (x, y, width, height int, err error) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get work area: %w", err)
	}
	if len(areas) == 0 {
		return 0, 0, 0, 0, fmt.Errorf("failed to get work area: empty _NET_WORKAREA")
	}

	idx := 0
	if desktop, err := c.GetCurrentDesktop(); err == nil && desktop >= 0 && desktop < len(areas) {
		idx = desktop
	}
	wa := areas[idx]
	return int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height), nil
}

// FocusWindow activates and raises a window using _NET_ACTIVE_WINDOW.
// Sends a _NET_ACTIVE_WINDOW client message to the root window.
// We build the message manually because the xgbutil ewmh helpers panic
// on this library version.
func (c *Connection) FocusWindow(win xproto.Window) error {
	atom, err := xprop.Atm(c.XUtil, "_NET_ACTIVE_WINDOW")
	if err != nil {
		return fmt.Errorf("failed to intern _NET_ACTIVE_WINDOW: %w", err)
	}

	const sourceIndication = 2 // pager/direct action
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{sourceIndication, 0, 0, 0, 0}),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

// FindWindowByClass returns the first window whose WM_CLASS instance or
// class matches one of classes (case-insensitive). The EWMH client list is
// searched first, then the root's direct children so unmanaged panels are
// found too.
func (c *Connection) FindWindowByClass(classes []string) (xproto.Window, error) {
	if len(classes) == 0 {
		return 0, ErrWindowNotFound
	}

	var candidates []xproto.Window
	if clients, err := ewmh.ClientListGet(c.XUtil); err == nil {
		candidates = append(candidates, clients...)
	}
	if tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		candidates = append(candidates, tree.Children...)
	}

	for _, win := range candidates {
		wmClass, err := icccm.WmClassGet(c.XUtil, win)
		if err != nil {
			continue
		}
		if matchesClass(wmClass, classes) {
			return win, nil
		}
	}
	return 0, ErrWindowNotFound
}

func matchesClass(wmClass *icccm.WmClass, classes []string) bool {
	instance := strings.TrimSpace(wmClass.Instance)
	class := strings.TrimSpace(wmClass.Class)
	for _, want := range classes {
		if want == "" {
			continue
		}
		if strings.EqualFold(instance, want) || strings.EqualFold(class, want) {
			return true
		}
	}
	return false
}
