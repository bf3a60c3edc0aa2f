package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.Intervals.Geometry != 250*time.Millisecond {
		t.Fatalf("expected geometry interval 250ms, got %s", cfg.Intervals.Geometry)
	}
	if cfg.Intervals.Debounce != 100*time.Millisecond {
		t.Fatalf("expected debounce 100ms, got %s", cfg.Intervals.Debounce)
	}
	if cfg.Intervals.LocationTimeout != 5*time.Second {
		t.Fatalf("expected location timeout 5s, got %s", cfg.Intervals.LocationTimeout)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.yaml")
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Exists {
		t.Fatalf("expected Exists=false")
	}
	if res.Config.Units != UnitsFahrenheit {
		t.Fatalf("expected default units, got %q", res.Config.Units)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "# empty\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Theme != ThemeAuto {
		t.Fatalf("expected theme auto, got %q", res.Config.Theme)
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	data := strings.Join([]string{
		"units: Celsius",
		"use_manual_location: true",
		"manual_latitude: 51.5",
		"manual_longitude: -0.12",
		"theme: dark",
		"detail_hotkey: Mod4-w",
		"shell:",
		"  classes: [polybar]",
		"  auto_hide: on",
		"  scale: 1.5",
		"intervals:",
		"  geometry: 500ms",
		"  debounce: 50ms",
		"detail:",
		"  grace: 300ms",
		"",
	}, "\n")

	res, err := LoadFromPath(writeConfig(t, data))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	if cfg.Units != UnitsCelsius {
		t.Fatalf("units = %q", cfg.Units)
	}
	if !cfg.UseManualLocation || cfg.ManualLatitude != 51.5 || cfg.ManualLongitude != -0.12 {
		t.Fatalf("manual location not applied: %+v", cfg)
	}
	if cfg.Theme != ThemeDark || cfg.DetailHotkey != "Mod4-w" {
		t.Fatalf("theme/hotkey = %q/%q", cfg.Theme, cfg.DetailHotkey)
	}
	if len(cfg.Shell.Classes) != 1 || cfg.Shell.Classes[0] != "polybar" {
		t.Fatalf("classes = %v", cfg.Shell.Classes)
	}
	if cfg.Shell.AutoHide != AutoHideOn || cfg.Shell.Scale != 1.5 {
		t.Fatalf("shell = %+v", cfg.Shell)
	}
	if cfg.Intervals.Geometry != 500*time.Millisecond || cfg.Intervals.Debounce != 50*time.Millisecond {
		t.Fatalf("intervals = %+v", cfg.Intervals)
	}
	if cfg.Intervals.Refresh != 30*time.Minute {
		t.Fatalf("unset interval should keep default, got %s", cfg.Intervals.Refresh)
	}
	if cfg.Detail.Grace != 300*time.Millisecond {
		t.Fatalf("grace = %s", cfg.Detail.Grace)
	}
}

func TestLoadFromPath_UnknownKeyFails(t *testing.T) {
	_, err := LoadFromPath(writeConfig(t, "unit: celsius\n"))
	if err == nil {
		t.Fatalf("expected unknown key to fail")
	}
	if !strings.Contains(err.Error(), "unit") {
		t.Fatalf("expected error to name the key, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSource(t *testing.T) {
	path := writeConfig(t, "units: kelvin\n")
	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Path != "units" {
		t.Fatalf("path = %q", verr.Path)
	}
	if verr.Source.Line != 1 {
		t.Fatalf("expected source line 1, got %+v", verr.Source)
	}
	if !strings.Contains(err.Error(), ":1:") {
		t.Fatalf("expected file:line in message, got %q", err.Error())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"theme", func(c *Config) { c.Theme = "sepia" }, "theme"},
		{"latitude", func(c *Config) { c.UseManualLocation = true; c.ManualLatitude = 91 }, "manual_latitude"},
		{"longitude", func(c *Config) { c.UseManualLocation = true; c.ManualLongitude = -181 }, "manual_longitude"},
		{"classes", func(c *Config) { c.Shell.Classes = nil }, "shell.classes"},
		{"blank class", func(c *Config) { c.Shell.Classes = []string{" "} }, "shell.classes"},
		{"auto hide", func(c *Config) { c.Shell.AutoHide = "sometimes" }, "shell.auto_hide"},
		{"scale", func(c *Config) { c.Shell.Scale = -1 }, "shell.scale"},
		{"geometry", func(c *Config) { c.Intervals.Geometry = 0 }, "intervals.geometry"},
		{"refresh floor", func(c *Config) { c.Intervals.Refresh = time.Second }, "intervals.refresh"},
		{"grace", func(c *Config) { c.Detail.Grace = -time.Millisecond }, "detail.grace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("path = %q, want %q", verr.Path, tt.path)
			}
		})
	}

	// Out-of-range coordinates are ignored while manual location is off.
	cfg := DefaultConfig()
	cfg.ManualLatitude = 200
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traycast", "config.yaml")
	cfg := DefaultConfig()
	cfg.Units = UnitsCelsius
	cfg.Intervals.Debounce = 75 * time.Millisecond
	cfg.StartWithSystem = true
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Units != UnitsCelsius || !res.Config.StartWithSystem {
		t.Fatalf("round trip lost values: %+v", res.Config)
	}
	if res.Config.Intervals.Debounce != 75*time.Millisecond {
		t.Fatalf("debounce = %s", res.Config.Intervals.Debounce)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestLocationKey(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	b.ManualLatitude = 10
	if a.LocationKey() != b.LocationKey() {
		t.Fatalf("coordinates should not matter while manual location is off")
	}
	a.UseManualLocation = true
	b.UseManualLocation = true
	if a.LocationKey() == b.LocationKey() {
		t.Fatalf("manual coordinates should change the key")
	}
}

func TestExplain(t *testing.T) {
	res, err := LoadFromPath(writeConfig(t, "intervals:\n  debounce: 80ms\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	v, src, err := Explain(res, "intervals.debounce")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if v != 80*time.Millisecond || src.Kind != SourceFile || src.Line != 2 {
		t.Fatalf("got %v from %+v", v, src)
	}

	v, src, err = Explain(res, "units")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if v != UnitsFahrenheit || src.Kind != SourceDefault {
		t.Fatalf("got %v from %+v", v, src)
	}

	if _, _, err := Explain(res, "layouts.grid"); err == nil {
		t.Fatalf("expected unknown path error")
	}
}
