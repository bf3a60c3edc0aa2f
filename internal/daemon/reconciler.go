package daemon

import (
	"errors"

	"github.com/1broseidon/traycast/internal/placement"
	"github.com/1broseidon/traycast/internal/platform"
)

// onGeometryTick runs every geometry interval. A shell that reappears is
// handled immediately; everything else goes through the debouncer.
func (c *Controller) onGeometryTick() {
	if c.state == StateHiddenByShell {
		vis, err := c.probe.IsShellVisible(c.lastEdge)
		if err == nil && vis == platform.VisibilityVisible {
			c.reappear()
		}
	}
	c.debounce.RequestIfIdle()
}

// reappear shows the companion where it was last placed without waiting
// for a full pass. The pass that follows refreshes position and z-order.
func (c *Controller) reappear() {
	if _, placed := c.companion.Bounds(); !placed {
		return
	}
	c.visibility = platform.VisibilityVisible
	if c.geom != nil && c.geom.AutoHide {
		c.visibility = platform.VisibilityPeeking
	}
	c.setState(StateDocked, "shell visible")

	if err := c.companion.SetVisible(true); err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.SetOpacity(c.opacity()); err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.Raise(); err != nil {
		c.applyFailed(err)
	}
}

// reconcile performs a single reconciliation pass: probe, classify,
// place and apply.
func (c *Controller) reconcile() {
	c.passes++

	geom, err := c.probe.Probe()
	if err != nil {
		c.logger.Debug("shell probe failed", "error", err)
		if errors.Is(err, platform.ErrShellNotFound) && c.state != StateDormant {
			c.enterHidden("shell not found")
		}
		return
	}
	c.geom = &geom
	c.lastEdge = geom.Edge

	// Nothing to show until the first forecast arrives.
	if c.snapshot == nil {
		return
	}

	vis, err := c.probe.IsShellVisible(geom.Edge)
	if err != nil {
		c.logger.Debug("shell visibility check failed", "error", err)
		return
	}
	if vis != platform.VisibilityVisible {
		c.enterHidden("shell hidden")
		return
	}

	if c.state != StateDocked {
		c.visibility = platform.VisibilityVisible
		c.setState(StateDocked, "shell visible")
	}
	// Peeking only comes from the reappearance path and lasts until the
	// shell hides again.
	if !geom.AutoHide || c.visibility != platform.VisibilityPeeking {
		c.visibility = platform.VisibilityVisible
	}
	c.apply(geom)
}

// apply pushes the companion state in a fixed order: visibility, opacity,
// position, z-order. The first failure aborts the pass; every step is
// idempotent, so the next pass resumes where this one stopped.
func (c *Controller) apply(geom platform.ShellGeometry) {
	size, err := c.companion.Render(companionContent(c.dataView()), geom.Scale)
	if err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.SetVisible(true); err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.SetOpacity(c.opacity()); err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.MoveTo(placement.Companion(geom, size), geom.Scale); err != nil {
		c.applyFailed(err)
		return
	}
	if err := c.companion.Raise(); err != nil {
		c.applyFailed(err)
		return
	}
	c.lastApplyErr = ""
}

// enterHidden hides the companion and force-closes the detail window.
// The hide is re-issued on every call until it succeeds.
func (c *Controller) enterHidden(reason string) {
	c.setState(StateHiddenByShell, reason)
	c.visibility = platform.VisibilityHidden
	if c.detail.Close() {
		c.logger.Info("detail window closed", "reason", reason)
	}
	if err := c.companion.SetVisible(false); err != nil {
		c.applyFailed(err)
	}
}

func (c *Controller) setState(s State, reason string) {
	if c.state == s {
		return
	}
	c.logger.Info("dock state changed", "from", c.state, "to", s, "reason", reason)
	c.state = s
}

func (c *Controller) applyFailed(err error) {
	c.lastApplyErr = err.Error()
	c.logger.Warn("apply failed, retrying on next pass", "error", err)
}
