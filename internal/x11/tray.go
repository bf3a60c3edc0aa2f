package x11

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xprop"
)

// TraySelectionName returns the freedesktop system tray selection for a screen.
func TraySelectionName(screen int) string {
	return fmt.Sprintf("_NET_SYSTEM_TRAY_S%d", screen)
}

// TrayOwner returns the window that owns the system tray selection on the
// default screen. That window is the tray container embedded in the panel.
func (c *Connection) TrayOwner() (xproto.Window, error) {
	name := TraySelectionName(c.ScreenNumber())
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}

	reply, err := xproto.GetSelectionOwner(c.XUtil.Conn(), atom).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to query %s owner: %w", name, err)
	}
	if reply.Owner == xproto.WindowNone {
		return 0, fmt.Errorf("%s: %w", name, ErrWindowNotFound)
	}
	return reply.Owner, nil
}

// ResourceDPI returns Xft.dpi from the root RESOURCE_MANAGER property.
func (c *Connection) ResourceDPI() (float64, bool) {
	reply, err := xprop.GetProperty(c.XUtil, c.Root, "RESOURCE_MANAGER")
	if err != nil || reply == nil {
		return 0, false
	}
	return ParseXftDPI(string(reply.Value))
}

// ParseXftDPI extracts the Xft.dpi value from an X resource database string.
func ParseXftDPI(resources string) (float64, bool) {
	for _, line := range strings.Split(resources, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}
