package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/traycast/internal/config"
	"github.com/1broseidon/traycast/internal/platform"
	"github.com/1broseidon/traycast/internal/theme"
	"github.com/1broseidon/traycast/internal/weather"
)

var (
	// ErrStopped is returned by requests made after Run has returned.
	ErrStopped = errors.New("sync controller stopped")
	// ErrNotDocked is returned when the detail window cannot be anchored.
	ErrNotDocked = errors.New("companion is not docked")
)

// DataLoader fetches location and forecast. Load may block; it is always
// called off the controller goroutine.
type DataLoader interface {
	Load(ctx context.Context, cached *weather.Location) weather.Result
}

// Options wires a Controller to its collaborators.
type Options struct {
	Config *config.Config
	// ConfigPath is shown in the settings view.
	ConfigPath string

	Probe    platform.ShellProbe
	Surfaces platform.SurfaceFactory
	Theme    theme.Watcher
	Loader   DataLoader

	// LoaderFor rebuilds the loader after a units or location change.
	LoaderFor func(*config.Config) DataLoader
	// ThemeFor picks a new watcher after the theme setting changes.
	ThemeFor func(*config.Config) theme.Watcher
	// OnConfig runs on the controller goroutine after new settings are applied.
	OnConfig func(*config.Config)

	// Events carries clicks and focus changes from the window system.
	Events <-chan platform.Event
	// Reloads carries settings file changes.
	Reloads <-chan config.Reload

	Logger *slog.Logger
}

type commandKind int

const (
	cmdRefresh commandKind = iota
	cmdOpenDetail
	cmdCloseDetail
	cmdToggleDetail
	cmdApplyConfig
)

type command struct {
	kind  commandKind
	view  DetailView
	cfg   *config.Config
	reply chan error
}

type loadResult struct {
	gen uint64
	res weather.Result
}

// Controller is the docking state machine. All docking state is owned by
// the goroutine running Run; other goroutines interact through commands
// and read Status snapshots.
type Controller struct {
	probe      platform.ShellProbe
	surfaces   platform.SurfaceFactory
	loaderFor  func(*config.Config) DataLoader
	themeFor   func(*config.Config) theme.Watcher
	onConfig   func(*config.Config)
	events     <-chan platform.Event
	reloads    <-chan config.Reload
	configPath string
	logger     *slog.Logger
	now        func() time.Time

	commands chan command
	results  chan loadResult
	done     chan struct{}

	// Owned by the Run goroutine.
	runCtx       context.Context
	cfg          *config.Config
	theme        theme.Watcher
	loader       DataLoader
	state        State
	visibility   platform.Visibility
	geom         *platform.ShellGeometry
	lastEdge     platform.Edge
	dark         bool
	themeSeen    bool
	location     *weather.Location
	snapshot     *weather.Snapshot
	lastErr      string
	lastApplyErr string
	loading      bool
	phase        string
	loadGen      uint64
	cancelLoad   context.CancelFunc
	passes       int

	companion *CompanionWindowHandle
	detail    *DetailSlot
	debounce  *Debouncer
	geometryT *time.Ticker
	themeT    *time.Ticker
	refreshT  *time.Ticker
	retry     *time.Timer

	mu     sync.RWMutex
	status Status
}

// New validates opts and returns a controller ready to Run.
func New(opts Options) (*Controller, error) {
	if opts.Probe == nil {
		return nil, fmt.Errorf("sync controller: shell probe is required")
	}
	if opts.Surfaces == nil {
		return nil, fmt.Errorf("sync controller: surface factory is required")
	}
	if opts.Loader == nil {
		return nil, fmt.Errorf("sync controller: data loader is required")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	watcher := opts.Theme
	if watcher == nil {
		watcher = theme.Static(true)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		probe:      opts.Probe,
		surfaces:   opts.Surfaces,
		loaderFor:  opts.LoaderFor,
		themeFor:   opts.ThemeFor,
		onConfig:   opts.OnConfig,
		events:     opts.Events,
		reloads:    opts.Reloads,
		configPath: opts.ConfigPath,
		logger:     logger,
		now:        time.Now,
		commands:   make(chan command),
		results:    make(chan loadResult),
		done:       make(chan struct{}),
		cfg:        cfg,
		theme:      watcher,
		loader:     opts.Loader,
		state:      StateDormant,
		visibility: platform.VisibilityHidden,
	}
	c.publish()
	return c, nil
}

// Run creates the companion window and drives the controller until ctx is
// cancelled. It returns an error only when the companion cannot be created.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	if err := c.start(ctx); err != nil {
		return err
	}
	defer c.stop()

	iv := c.cfg.Intervals
	c.logger.Info("sync controller started",
		"geometry", iv.Geometry,
		"theme", iv.Theme,
		"refresh", iv.Refresh,
		"debounce", iv.Debounce)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("sync controller stopped")
			return nil
		case <-c.geometryT.C:
			c.safely("geometry tick", c.onGeometryTick)
		case <-c.themeT.C:
			c.safely("theme tick", c.onThemeTick)
		case <-c.refreshT.C:
			c.safely("refresh", func() { c.startLoad("periodic refresh") })
		case <-c.retry.C:
			c.safely("retry", func() { c.startLoad("retry") })
		case <-c.debounce.C():
			if c.debounce.Fire() {
				c.safely("reconcile", c.reconcile)
			}
		case r := <-c.results:
			c.safely("load result", func() { c.onLoaded(r) })
		case ev, ok := <-c.events:
			if !ok {
				c.events = nil
				continue
			}
			c.safely("window event", func() { c.onEvent(ev) })
		case r, ok := <-c.reloads:
			if !ok {
				c.reloads = nil
				continue
			}
			if r.Err != nil {
				c.logger.Warn("config reload failed, keeping current settings", "error", r.Err)
				continue
			}
			c.safely("config reload", func() { c.applyConfig(r.Config) })
		case cmd := <-c.commands:
			err := c.handle(cmd)
			c.publish()
			cmd.reply <- err
			continue
		}
		c.publish()
	}
}

func (c *Controller) start(ctx context.Context) error {
	surface, err := c.surfaces.NewCompanion()
	if err != nil {
		return fmt.Errorf("create companion window: %w", err)
	}
	c.runCtx = ctx
	c.companion = NewCompanionWindowHandle(surface)
	c.detail = NewDetailSlot(c.surfaces, c.cfg.Detail.Grace, c.logger)
	c.detail.now = func() time.Time { return c.now() }

	iv := c.cfg.Intervals
	c.debounce = NewDebouncer(iv.Debounce)
	c.geometryT = time.NewTicker(orDefault(iv.Geometry, 250*time.Millisecond))
	c.themeT = time.NewTicker(orDefault(iv.Theme, time.Second))
	c.refreshT = time.NewTicker(orDefault(iv.Refresh, 30*time.Minute))
	c.retry = time.NewTimer(time.Hour)
	c.retry.Stop()

	c.onThemeTick()
	c.startLoad("startup")
	c.debounce.Request()
	c.publish()
	return nil
}

func (c *Controller) stop() {
	c.geometryT.Stop()
	c.themeT.Stop()
	c.refreshT.Stop()
	c.retry.Stop()
	c.debounce.Stop()
	c.cancelInFlight()
	c.detail.Close()
	if err := c.companion.Destroy(); err != nil {
		c.logger.Warn("failed to destroy companion window", "error", err)
	}
}

// safely runs fn, logging instead of crashing on panic.
func (c *Controller) safely(what string, fn func()) {
	defer func() {
		if err := recover(); err != nil {
			c.logger.Error("sync controller panic recovered", "during", what, "error", err)
		}
	}()
	fn()
}

// Status returns the latest snapshot of the controller state.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Refresh starts a weather reload unless one is already running.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.post(ctx, command{kind: cmdRefresh})
}

// OpenDetail opens the detail window, replacing any open one.
func (c *Controller) OpenDetail(ctx context.Context, view DetailView) error {
	return c.post(ctx, command{kind: cmdOpenDetail, view: view})
}

// CloseDetail closes the detail window if it is open.
func (c *Controller) CloseDetail(ctx context.Context) error {
	return c.post(ctx, command{kind: cmdCloseDetail})
}

// ToggleDetail closes the detail window when open, else opens the forecast.
func (c *Controller) ToggleDetail(ctx context.Context) error {
	return c.post(ctx, command{kind: cmdToggleDetail})
}

// ApplyConfig swaps in new settings.
func (c *Controller) ApplyConfig(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}
	return c.post(ctx, command{kind: cmdApplyConfig, cfg: cfg})
}

func (c *Controller) post(ctx context.Context, cmd command) error {
	cmd.reply = make(chan error, 1)
	select {
	case c.commands <- cmd:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// Run answers every accepted command before it can return.
	select {
	case err := <-cmd.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) handle(cmd command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("sync controller panic recovered", "during", "command", "error", r)
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	switch cmd.kind {
	case cmdRefresh:
		c.startLoad("requested")
		return nil
	case cmdOpenDetail:
		return c.openDetail(cmd.view)
	case cmdCloseDetail:
		c.closeDetail()
		return nil
	case cmdToggleDetail:
		return c.toggleDetail(ViewForecast)
	case cmdApplyConfig:
		c.applyConfig(cmd.cfg)
		return nil
	default:
		return fmt.Errorf("unknown command %d", cmd.kind)
	}
}

func (c *Controller) onEvent(ev platform.Event) {
	c.logger.Debug("window event", "kind", ev.Kind, "window", ev.Window)
	switch ev.Kind {
	case platform.EventPrimaryClick:
		if ev.Window == c.companion.ID() {
			c.toggleDetail(ViewForecast)
		}
	case platform.EventSecondaryClick:
		if ev.Window == c.companion.ID() {
			c.openDetail(ViewSettings)
		}
	case platform.EventFocusLost:
		if c.detail.FocusLost(ev.Window) {
			c.afterDetailClosed()
		}
	}
}

func (c *Controller) openDetail(view DetailView) error {
	anchor, ok := c.companion.Bounds()
	if c.state != StateDocked || c.geom == nil || !ok {
		return ErrNotDocked
	}
	if err := c.detail.Open(anchor, view, c.detailContent(view), *c.geom); err != nil {
		c.logger.Warn("failed to open detail window", "view", view, "error", err)
		return err
	}
	return nil
}

func (c *Controller) closeDetail() {
	if c.detail.Close() {
		c.afterDetailClosed()
	}
}

func (c *Controller) toggleDetail(view DetailView) error {
	if c.detail.IsOpen() {
		c.closeDetail()
		return nil
	}
	return c.openDetail(view)
}

// afterDetailClosed forgets the cached location and reloads, so closing
// the window picks up a move to a new network.
func (c *Controller) afterDetailClosed() {
	c.location = nil
	c.startLoad("detail closed")
}

func (c *Controller) applyConfig(cfg *config.Config) {
	old := c.cfg
	c.cfg = cfg

	iv, oldIv := cfg.Intervals, old.Intervals
	if iv.Geometry != oldIv.Geometry {
		c.geometryT.Reset(orDefault(iv.Geometry, 250*time.Millisecond))
	}
	if iv.Theme != oldIv.Theme {
		c.themeT.Reset(orDefault(iv.Theme, time.Second))
	}
	if iv.Refresh != oldIv.Refresh {
		c.refreshT.Reset(orDefault(iv.Refresh, 30*time.Minute))
	}
	c.debounce.SetWindow(iv.Debounce)
	c.detail.SetGrace(cfg.Detail.Grace)

	if cfg.Theme != old.Theme && c.themeFor != nil {
		c.theme = c.themeFor(cfg)
		c.themeSeen = false
		c.onThemeTick()
	}

	if cfg.LocationKey() != old.LocationKey() || cfg.Units != old.Units {
		c.logger.Info("location settings changed, reloading weather",
			"location", cfg.LocationKey(),
			"units", cfg.Units)
		if c.loaderFor != nil {
			c.loader = c.loaderFor(cfg)
		}
		c.location = nil
		c.cancelInFlight()
		c.startLoad("settings changed")
	}

	if c.onConfig != nil {
		c.onConfig(cfg)
	}
	c.refreshContent()
	c.debounce.Request()
	c.logger.Info("config applied")
}

func (c *Controller) onThemeTick() {
	dark := c.theme.CurrentIsDark()
	if c.themeSeen && dark == c.dark {
		return
	}
	changed := c.themeSeen
	c.dark, c.themeSeen = dark, true
	if changed {
		c.logger.Info("theme changed", "theme", theme.Name(dark))
	}
	c.refreshContent()
}

func (c *Controller) startLoad(reason string) {
	if c.loading {
		c.logger.Debug("weather load already in flight", "reason", reason)
		return
	}
	c.retry.Stop()
	c.loading = true
	c.phase = LabelFetching
	if c.location == nil {
		c.phase = LabelLocating
	}

	c.loadGen++
	gen := c.loadGen
	ctx, cancel := context.WithCancel(c.runCtx)
	c.cancelLoad = cancel

	var cached *weather.Location
	if c.location != nil {
		loc := *c.location
		cached = &loc
	}
	loader := c.loader
	c.logger.Debug("loading weather", "reason", reason, "cached_location", cached != nil)

	go func() {
		res := loader.Load(ctx, cached)
		select {
		case c.results <- loadResult{gen: gen, res: res}:
		case <-ctx.Done():
		}
	}()
	c.refreshContent()
}

func (c *Controller) cancelInFlight() {
	if c.cancelLoad != nil {
		c.cancelLoad()
		c.cancelLoad = nil
	}
	c.loading = false
}

func (c *Controller) onLoaded(r loadResult) {
	if r.gen != c.loadGen {
		c.logger.Debug("dropping stale weather result", "gen", r.gen)
		return
	}
	c.cancelInFlight()

	res := r.res
	if res.LocationErr == nil {
		loc := res.Location
		c.location = &loc
	} else {
		c.logger.Warn("location lookup failed", "error", res.LocationErr, "using", res.Location.City)
	}

	if res.Snapshot != nil {
		c.snapshot = res.Snapshot
		c.lastErr = ""
		c.logger.Info("weather updated", "location", res.Location.City, "summary", res.Snapshot.Summary())
	} else {
		c.lastErr = res.Error()
		retry := orDefault(c.cfg.Intervals.Retry, 20*time.Second)
		c.logger.Warn("weather load failed", "error", c.lastErr, "retry_in", retry)
		c.retry.Reset(retry)
	}

	c.refreshContent()
	c.debounce.Request()
}

func (c *Controller) dataView() dataView {
	return dataView{
		snapshot: c.snapshot,
		location: c.location,
		loading:  c.loading,
		phase:    c.phase,
		lastErr:  c.lastErr,
		dark:     c.dark,
	}
}

func (c *Controller) detailContent(view DetailView) platform.Content {
	if view == ViewSettings {
		return settingsContent(c.dataView(), c.cfg, c.configPath)
	}
	return forecastContent(c.dataView(), c.now())
}

// refreshContent re-renders visible surfaces after data or theme changes.
func (c *Controller) refreshContent() {
	if c.geom == nil {
		return
	}
	if c.state == StateDocked {
		if _, err := c.companion.Render(companionContent(c.dataView()), c.geom.Scale); err != nil {
			c.logger.Warn("failed to render companion", "error", err)
		}
	}
	if view, ok := c.detail.View(); ok {
		if err := c.detail.Update(c.detailContent(view), *c.geom); err != nil {
			c.logger.Warn("failed to update detail window", "error", err)
		}
	}
}

func (c *Controller) opacity() float64 {
	if c.lastErr != "" {
		return OpacityStale
	}
	return OpacityNormal
}

func (c *Controller) publish() {
	st := Status{
		State:      c.state.String(),
		Visibility: c.visibility.String(),
		Theme:      theme.Name(c.dark),
		Loading:    c.loading,
		LastError:  c.lastErr,
		Passes:     c.passes,
		UpdatedAt:  c.now(),
	}
	if st.LastError == "" {
		st.LastError = c.lastApplyErr
	}
	if c.geom != nil {
		g := *c.geom
		st.Edge = g.Edge.String()
		st.Scale = g.Scale
		st.AutoHide = g.AutoHide
		st.Tray = &g.Tray
	}
	if c.companion != nil && c.companion.Visible() {
		if b, ok := c.companion.Bounds(); ok {
			st.Companion = &b
		}
	}
	if c.detail != nil {
		if v, ok := c.detail.View(); ok {
			st.DetailOpen = true
			st.DetailView = v.String()
		}
	}
	if c.location != nil {
		st.Location = c.location.City
	}
	if c.snapshot != nil {
		st.Weather = c.snapshot.Summary()
		st.FetchedAt = c.snapshot.FetchedAt
		if st.Location == "" {
			st.Location = c.snapshot.Location.City
		}
	}

	c.mu.Lock()
	c.status = st
	c.mu.Unlock()
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
