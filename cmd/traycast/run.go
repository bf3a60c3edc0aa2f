package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/1broseidon/traycast/internal/autostart"
	"github.com/1broseidon/traycast/internal/config"
	"github.com/1broseidon/traycast/internal/daemon"
	"github.com/1broseidon/traycast/internal/hotkeys"
	"github.com/1broseidon/traycast/internal/instance"
	"github.com/1broseidon/traycast/internal/ipc"
	"github.com/1broseidon/traycast/internal/logging"
	"github.com/1broseidon/traycast/internal/platform"
	"github.com/1broseidon/traycast/internal/runtimepath"
	"github.com/1broseidon/traycast/internal/theme"
	"github.com/1broseidon/traycast/internal/weather"
)

var keepRunning bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the traycast daemon (foreground)",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func init() {
	runCmd.Flags().BoolVar(&keepRunning, "no-replace", false, "Exit if a daemon is already running instead of replacing it")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	res, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := res.Config

	logger, logCloser, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "path", res.Path, "exists", res.Exists, "units", cfg.Units, "theme", cfg.Theme)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return err
	}
	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		return err
	}
	lock, err := instance.Acquire(ctx, instance.Options{
		PIDPath:     pidPath,
		SocketPath:  socketPath,
		Peer:        ipc.NewClientForSocket(socketPath).WithTimeout(500 * time.Millisecond),
		KeepRunning: keepRunning,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer lock.Release()

	backend, err := platform.NewLinuxBackendFromDisplay(platform.LinuxBackendConfig{
		ShellClasses: cfg.Shell.Classes,
		AutoHide:     cfg.Shell.AutoHide,
		Scale:        cfg.Shell.Scale,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to display: %w", err)
	}
	defer backend.Disconnect()

	themes := newThemeSource(logger)
	defer themes.Close()

	entry := autostartEntry(logger)
	syncAutostart(entry, cfg, logger)

	var reloads <-chan config.Reload
	watcher, err := config.NewWatcher(res.Path, 0, logger)
	if err != nil {
		logger.Warn("config file watching disabled", "error", err)
	} else {
		defer watcher.Stop()
		reloads = watcher.Events()
	}

	hk, err := hotkeys.NewHandler(backend, logger)
	if err != nil {
		logger.Warn("global hotkeys unavailable", "error", err)
	}

	var ctrl *daemon.Controller
	boundHotkey := ""
	ctrl, err = daemon.New(daemon.Options{
		Config:     cfg,
		ConfigPath: res.Path,
		Probe:      backend,
		Surfaces:   backend,
		Theme:      themes.For(cfg),
		Loader:     newLoader(cfg, logger),
		LoaderFor:  func(c *config.Config) daemon.DataLoader { return newLoader(c, logger) },
		ThemeFor:   themes.For,
		OnConfig: func(c *config.Config) {
			backend.Reconfigure(c.Shell.Classes, c.Shell.AutoHide, c.Shell.Scale)
			syncAutostart(entry, c, logger)
			if hk != nil && c.DetailHotkey != boundHotkey {
				if err := hk.Rebind(c.DetailHotkey, ctrl); err != nil {
					logger.Warn("failed to rebind detail hotkey", "error", err)
				}
				boundHotkey = c.DetailHotkey
			}
		},
		Events:  backend.Events(),
		Reloads: reloads,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if hk != nil && cfg.DetailHotkey != "" {
		if err := hk.RegisterDetailToggle(cfg.DetailHotkey, ctrl); err != nil {
			logger.Warn("failed to register detail hotkey", "error", err)
		} else {
			boundHotkey = cfg.DetailHotkey
		}
	}

	reload := func(ctx context.Context) error {
		next, err := config.LoadFromPath(res.Path)
		if err != nil {
			return err
		}
		return ctrl.ApplyConfig(ctx, next.Config)
	}

	ipcServer, err := ipc.NewServer(socketPath, ctrl, ipc.Hooks{Reload: reload, Shutdown: cancel}, logger)
	if err != nil {
		return err
	}
	if err := ipcServer.Start(); err != nil {
		return err
	}
	defer ipcServer.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig != syscall.SIGHUP {
					logger.Info("shutting down traycast daemon", "signal", sig)
					cancel()
					return
				}
				logger.Info("received SIGHUP, reloading config")
				rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
				if err := reload(rctx); err != nil {
					logger.Warn("config reload failed", "error", err)
				}
				rcancel()
			}
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		runErr <- ctrl.Run(ctx)
		cancel()
	}()
	go func() {
		<-ctx.Done()
		backend.StopEventLoop()
	}()

	logger.Info("traycast daemon started", "pid", os.Getpid(), "socket", socketPath)
	backend.EventLoop()
	cancel()
	return <-runErr
}

func loadConfig() (*config.LoadResult, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.LoadWithSources()
}

// newLoader builds the weather loader for the units and location in cfg.
func newLoader(cfg *config.Config, logger *slog.Logger) daemon.DataLoader {
	client := weather.NewClient(weather.ClientConfig{
		Units:  weather.Units(cfg.Units),
		Manual: manualLocation(cfg),
	})
	return weather.NewLoader(client, cfg.Intervals.LocationTimeout, logger)
}

func manualLocation(cfg *config.Config) *weather.Location {
	if !cfg.UseManualLocation {
		return nil
	}
	return &weather.Location{
		City:      weather.ManualLocationCity,
		Latitude:  cfg.ManualLatitude,
		Longitude: cfg.ManualLongitude,
	}
}

// themeSource hands out theme watchers. The portal watcher is shared so
// switching between "auto" and a fixed theme does not reconnect the bus.
type themeSource struct {
	logger *slog.Logger
	portal *theme.PortalWatcher
}

func newThemeSource(logger *slog.Logger) *themeSource {
	return &themeSource{logger: logger}
}

func (s *themeSource) For(cfg *config.Config) theme.Watcher {
	switch cfg.Theme {
	case config.ThemeDark:
		return theme.Static(true)
	case config.ThemeLight:
		return theme.Static(false)
	}
	if s.portal == nil {
		s.portal = theme.NewPortalWatcher(true, s.logger)
	}
	return s.portal
}

func (s *themeSource) Close() {
	if s.portal != nil {
		s.portal.Close()
	}
}

func autostartEntry(logger *slog.Logger) *autostart.Entry {
	path, err := autostart.DefaultPath()
	if err != nil {
		logger.Warn("autostart disabled", "error", err)
		return nil
	}
	exe, err := os.Executable()
	if err != nil {
		logger.Warn("autostart disabled", "error", err)
		return nil
	}
	return &autostart.Entry{Path: path, Exec: exe}
}

func syncAutostart(entry *autostart.Entry, cfg *config.Config, logger *slog.Logger) {
	if entry == nil {
		return
	}
	if err := entry.Sync(cfg.StartWithSystem); err != nil {
		logger.Warn("failed to update autostart entry", "error", err)
	}
}
