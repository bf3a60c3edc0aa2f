package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML path and its source.
//
// Supported paths are the config keys, e.g.:
//
//	units
//	theme
//	shell.classes
//	shell.auto_hide
//	intervals.debounce
//	detail.grace
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	switch strings.TrimSpace(path) {
	case "log_level":
		return cfg.LogLevel, nil
	case "log_file":
		return cfg.LogFile, nil
	case "units":
		return cfg.Units, nil
	case "use_manual_location":
		return cfg.UseManualLocation, nil
	case "manual_latitude":
		return cfg.ManualLatitude, nil
	case "manual_longitude":
		return cfg.ManualLongitude, nil
	case "start_with_system":
		return cfg.StartWithSystem, nil
	case "theme":
		return cfg.Theme, nil
	case "detail_hotkey":
		return cfg.DetailHotkey, nil
	case "shell":
		return cfg.Shell, nil
	case "shell.classes":
		return cfg.Shell.Classes, nil
	case "shell.auto_hide":
		return cfg.Shell.AutoHide, nil
	case "shell.scale":
		return cfg.Shell.Scale, nil
	case "intervals":
		return cfg.Intervals, nil
	case "intervals.geometry":
		return cfg.Intervals.Geometry, nil
	case "intervals.theme":
		return cfg.Intervals.Theme, nil
	case "intervals.refresh":
		return cfg.Intervals.Refresh, nil
	case "intervals.retry":
		return cfg.Intervals.Retry, nil
	case "intervals.debounce":
		return cfg.Intervals.Debounce, nil
	case "intervals.location_timeout":
		return cfg.Intervals.LocationTimeout, nil
	case "detail":
		return cfg.Detail, nil
	case "detail.grace":
		return cfg.Detail.Grace, nil
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
