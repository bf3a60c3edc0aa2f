package config

import "time"

type RawShellConfig struct {
	Classes  []string `yaml:"classes"`
	AutoHide *string  `yaml:"auto_hide"`
	Scale    *float64 `yaml:"scale"`
}

type RawIntervals struct {
	Geometry        *time.Duration `yaml:"geometry"`
	Theme           *time.Duration `yaml:"theme"`
	Refresh         *time.Duration `yaml:"refresh"`
	Retry           *time.Duration `yaml:"retry"`
	Debounce        *time.Duration `yaml:"debounce"`
	LocationTimeout *time.Duration `yaml:"location_timeout"`
}

type RawDetailConfig struct {
	Grace *time.Duration `yaml:"grace"`
}

// RawConfig mirrors the YAML file. Nil fields were not set.
type RawConfig struct {
	LogLevel          *string          `yaml:"log_level"`
	LogFile           *string          `yaml:"log_file"`
	Units             *string          `yaml:"units"`
	UseManualLocation *bool            `yaml:"use_manual_location"`
	ManualLatitude    *float64         `yaml:"manual_latitude"`
	ManualLongitude   *float64         `yaml:"manual_longitude"`
	StartWithSystem   *bool            `yaml:"start_with_system"`
	Theme             *string          `yaml:"theme"`
	DetailHotkey      *string          `yaml:"detail_hotkey"`
	Shell             *RawShellConfig  `yaml:"shell"`
	Intervals         *RawIntervals    `yaml:"intervals"`
	Detail            *RawDetailConfig `yaml:"detail"`
}
