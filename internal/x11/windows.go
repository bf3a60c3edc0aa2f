package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
)

// RaiseAbove restacks win directly above sibling. Siblings must share a
// parent; when the WM has reparented the sibling the request fails and win
// is raised to the top of the stack instead.
func (c *Connection) RaiseAbove(win, sibling xproto.Window) error {
	conn := c.XUtil.Conn()
	if sibling != 0 {
		err := xproto.ConfigureWindowChecked(
			conn,
			win,
			xproto.ConfigWindowSibling|xproto.ConfigWindowStackMode,
			[]uint32{uint32(sibling), xproto.StackModeAbove},
		).Check()
		if err == nil {
			return nil
		}
	}
	return xproto.ConfigureWindowChecked(
		conn,
		win,
		xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove},
	).Check()
}

// SetOpacity writes _NET_WM_WINDOW_OPACITY. opacity is clamped to [0,1].
func (c *Connection) SetOpacity(win xproto.Window, opacity float64) error {
	opacity = math.Max(0, math.Min(1, opacity))
	value := uint(math.Round(opacity * 0xffffffff))
	return xprop.ChangeProp32(c.XUtil, win, "_NET_WM_WINDOW_OPACITY", "CARDINAL", value)
}

// SetToolHints marks win as an auxiliary window: typed windowType, hidden
// from taskbars and pagers, and optionally refusing keyboard focus.
func (c *Connection) SetToolHints(win xproto.Window, name, windowType string, acceptFocus bool) error {
	if err := icccm.WmClassSet(c.XUtil, win, &icccm.WmClass{Instance: "traycast", Class: "Traycast"}); err != nil {
		return fmt.Errorf("set WM_CLASS: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, win, name); err != nil {
		return fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	if err := ewmh.WmWindowTypeSet(c.XUtil, win, []string{windowType}); err != nil {
		return fmt.Errorf("set _NET_WM_WINDOW_TYPE: %w", err)
	}
	states := []string{"_NET_WM_STATE_SKIP_TASKBAR", "_NET_WM_STATE_SKIP_PAGER"}
	if !acceptFocus {
		states = append(states, "_NET_WM_STATE_ABOVE")
	}
	if err := ewmh.WmStateSet(c.XUtil, win, states); err != nil {
		return fmt.Errorf("set _NET_WM_STATE: %w", err)
	}

	input := uint(0)
	if acceptFocus {
		input = 1
	}
	if err := icccm.WmHintsSet(c.XUtil, win, &icccm.Hints{Flags: icccm.HintInput, Input: input}); err != nil {
		return fmt.Errorf("set WM_HINTS: %w", err)
	}
	return nil
}

// SetRequestedPosition tells the WM the window's position was chosen by the program.
func (c *Connection) SetRequestedPosition(win xproto.Window, x, y int) error {
	return icccm.WmNormalHintsSet(c.XUtil, win, &icccm.NormalHints{
		Flags: icccm.SizeHintUSPosition,
		X:     x,
		Y:     y,
	})
}
