package config

import (
	"fmt"
	"strings"
	"time"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig overlays raw onto DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) (*Config, error) {
	cfg := DefaultConfig()

	if raw.LogLevel != nil {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(*raw.LogLevel))
	}
	if raw.LogFile != nil {
		cfg.LogFile = strings.TrimSpace(*raw.LogFile)
	}
	if raw.Units != nil {
		cfg.Units = strings.ToLower(strings.TrimSpace(*raw.Units))
	}
	if raw.UseManualLocation != nil {
		cfg.UseManualLocation = *raw.UseManualLocation
	}
	if raw.ManualLatitude != nil {
		cfg.ManualLatitude = *raw.ManualLatitude
	}
	if raw.ManualLongitude != nil {
		cfg.ManualLongitude = *raw.ManualLongitude
	}
	if raw.StartWithSystem != nil {
		cfg.StartWithSystem = *raw.StartWithSystem
	}
	if raw.Theme != nil {
		cfg.Theme = strings.ToLower(strings.TrimSpace(*raw.Theme))
	}
	if raw.DetailHotkey != nil {
		cfg.DetailHotkey = strings.TrimSpace(*raw.DetailHotkey)
	}

	if raw.Shell != nil {
		if raw.Shell.Classes != nil {
			cfg.Shell.Classes = append([]string(nil), raw.Shell.Classes...)
		}
		if raw.Shell.AutoHide != nil {
			cfg.Shell.AutoHide = strings.ToLower(strings.TrimSpace(*raw.Shell.AutoHide))
		}
		if raw.Shell.Scale != nil {
			cfg.Shell.Scale = *raw.Shell.Scale
		}
	}

	if iv := raw.Intervals; iv != nil {
		cfg.Intervals.Geometry = derefDuration(iv.Geometry, cfg.Intervals.Geometry)
		cfg.Intervals.Theme = derefDuration(iv.Theme, cfg.Intervals.Theme)
		cfg.Intervals.Refresh = derefDuration(iv.Refresh, cfg.Intervals.Refresh)
		cfg.Intervals.Retry = derefDuration(iv.Retry, cfg.Intervals.Retry)
		cfg.Intervals.Debounce = derefDuration(iv.Debounce, cfg.Intervals.Debounce)
		cfg.Intervals.LocationTimeout = derefDuration(iv.LocationTimeout, cfg.Intervals.LocationTimeout)
	}
	if raw.Detail != nil {
		cfg.Detail.Grace = derefDuration(raw.Detail.Grace, cfg.Detail.Grace)
	}

	return cfg, nil
}

func derefDuration(p *time.Duration, def time.Duration) time.Duration {
	if p == nil {
		return def
	}
	return *p
}
