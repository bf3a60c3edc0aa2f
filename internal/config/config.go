package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// ConfigRelPath is the config file location relative to the XDG config home.
const ConfigRelPath = "traycast/config.yaml"

// Theme values.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Units values.
const (
	UnitsFahrenheit = "fahrenheit"
	UnitsCelsius    = "celsius"
)

// Auto-hide detection modes.
const (
	AutoHideAuto = "auto"
	AutoHideOn   = "on"
	AutoHideOff  = "off"
)

// ShellConfig controls how the host panel is found and interpreted.
type ShellConfig struct {
	// Classes are WM_CLASS instance or class names identifying the panel.
	Classes []string `yaml:"classes"`
	// AutoHide is "auto" (panel reserves no strut), "on" or "off".
	AutoHide string `yaml:"auto_hide"`
	// Scale overrides the detected Xft.dpi scale when > 0.
	Scale float64 `yaml:"scale,omitempty"`
}

// Intervals are the controller's timer periods.
type Intervals struct {
	Geometry        time.Duration `yaml:"geometry"`
	Theme           time.Duration `yaml:"theme"`
	Refresh         time.Duration `yaml:"refresh"`
	Retry           time.Duration `yaml:"retry"`
	Debounce        time.Duration `yaml:"debounce"`
	LocationTimeout time.Duration `yaml:"location_timeout"`
}

// DetailConfig configures the detail window.
type DetailConfig struct {
	// Grace is how long focus loss is ignored after the window opens.
	Grace time.Duration `yaml:"grace"`
}

// Config is the effective configuration.
type Config struct {
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file,omitempty"`

	Units             string  `yaml:"units"`
	UseManualLocation bool    `yaml:"use_manual_location"`
	ManualLatitude    float64 `yaml:"manual_latitude"`
	ManualLongitude   float64 `yaml:"manual_longitude"`
	StartWithSystem   bool    `yaml:"start_with_system"`

	Theme        string `yaml:"theme"`
	DetailHotkey string `yaml:"detail_hotkey,omitempty"`

	Shell     ShellConfig  `yaml:"shell"`
	Intervals Intervals    `yaml:"intervals"`
	Detail    DetailConfig `yaml:"detail"`
}

// DefaultShellClasses are panels known to carry a freedesktop system tray.
func DefaultShellClasses() []string {
	return []string{
		"xfce4-panel",
		"polybar",
		"tint2",
		"lxpanel",
		"mate-panel",
		"budgie-panel",
		"plasmashell",
		"gnome-shell",
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Units:    UnitsFahrenheit,
		Theme:    ThemeAuto,
		Shell: ShellConfig{
			Classes:  DefaultShellClasses(),
			AutoHide: AutoHideAuto,
		},
		Intervals: Intervals{
			Geometry:        250 * time.Millisecond,
			Theme:           time.Second,
			Refresh:         30 * time.Minute,
			Retry:           20 * time.Second,
			Debounce:        100 * time.Millisecond,
			LocationTimeout: 5 * time.Second,
		},
		Detail: DetailConfig{
			Grace: 150 * time.Millisecond,
		},
	}
}

// DefaultConfigPath returns the existing config file, or where one would be
// created.
func DefaultConfigPath() (string, error) {
	if path, err := xdg.SearchConfigFile(ConfigRelPath); err == nil {
		return path, nil
	}
	path, err := xdg.ConfigFile(ConfigRelPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// LocationKey identifies the settings that determine where forecasts are
// fetched for. A change means the cached location is stale.
func (c *Config) LocationKey() string {
	if !c.UseManualLocation {
		return "auto"
	}
	return fmt.Sprintf("manual:%.6f,%.6f", c.ManualLatitude, c.ManualLongitude)
}

// Save validates c and writes it to path.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write then rename so the watcher never sees a half-written file.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	switch c.Units {
	case UnitsFahrenheit, UnitsCelsius:
	default:
		return &ValidationError{Path: "units", Err: fmt.Errorf("units must be one of: fahrenheit, celsius")}
	}
	if c.UseManualLocation {
		if c.ManualLatitude < -90 || c.ManualLatitude > 90 {
			return &ValidationError{Path: "manual_latitude", Err: fmt.Errorf("manual_latitude must be within [-90, 90]")}
		}
		if c.ManualLongitude < -180 || c.ManualLongitude > 180 {
			return &ValidationError{Path: "manual_longitude", Err: fmt.Errorf("manual_longitude must be within [-180, 180]")}
		}
	}
	switch c.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		return &ValidationError{Path: "theme", Err: fmt.Errorf("theme must be one of: auto, dark, light")}
	}

	if len(c.Shell.Classes) == 0 {
		return &ValidationError{Path: "shell.classes", Err: fmt.Errorf("shell.classes must not be empty")}
	}
	for i, class := range c.Shell.Classes {
		if strings.TrimSpace(class) == "" {
			return &ValidationError{Path: "shell.classes", Err: fmt.Errorf("entry %d is empty", i)}
		}
	}
	switch c.Shell.AutoHide {
	case AutoHideAuto, AutoHideOn, AutoHideOff:
	default:
		return &ValidationError{Path: "shell.auto_hide", Err: fmt.Errorf("auto_hide must be one of: auto, on, off")}
	}
	if c.Shell.Scale < 0 || c.Shell.Scale > 8 {
		return &ValidationError{Path: "shell.scale", Err: fmt.Errorf("scale must be 0 (detect) or within (0, 8]")}
	}

	intervals := []struct {
		path string
		d    time.Duration
	}{
		{"intervals.geometry", c.Intervals.Geometry},
		{"intervals.theme", c.Intervals.Theme},
		{"intervals.refresh", c.Intervals.Refresh},
		{"intervals.retry", c.Intervals.Retry},
		{"intervals.debounce", c.Intervals.Debounce},
		{"intervals.location_timeout", c.Intervals.LocationTimeout},
	}
	for _, iv := range intervals {
		if iv.d <= 0 {
			return &ValidationError{Path: iv.path, Err: fmt.Errorf("must be a positive duration")}
		}
	}
	if c.Intervals.Refresh < time.Minute {
		return &ValidationError{Path: "intervals.refresh", Err: fmt.Errorf("refresh must be at least 1m")}
	}
	if c.Detail.Grace < 0 {
		return &ValidationError{Path: "detail.grace", Err: fmt.Errorf("grace must be >= 0")}
	}
	return nil
}
