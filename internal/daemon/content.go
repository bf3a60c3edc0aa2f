package daemon

import (
	"fmt"
	"strings"
	"time"

	"github.com/1broseidon/traycast/internal/config"
	"github.com/1broseidon/traycast/internal/platform"
	"github.com/1broseidon/traycast/internal/theme"
	"github.com/1broseidon/traycast/internal/weather"
)

// Companion labels shown before a forecast is available.
const (
	LabelLocating    = "Locating..."
	LabelFetching    = "Fetching..."
	LabelPlaceholder = "--°"
	LabelUnavailable = "Unable to load"
)

// Companion opacities. Stale data is dimmed until the next good fetch.
const (
	OpacityNormal = 1.0
	OpacityStale  = 0.6
)

// dataView is what the content builders need from the controller.
type dataView struct {
	snapshot *weather.Snapshot
	location *weather.Location
	loading  bool
	phase    string
	lastErr  string
	dark     bool
}

func (d dataView) colors() (fg, bg uint32) {
	return theme.Palette(d.dark)
}

func companionContent(d dataView) platform.Content {
	fg, bg := d.colors()
	var line string
	switch {
	case d.snapshot != nil:
		line = d.snapshot.Summary()
	case d.loading:
		line = d.phase
	default:
		line = LabelPlaceholder
	}
	return platform.Content{Lines: []string{line}, Foreground: fg, Background: bg}
}

func forecastContent(d dataView, now time.Time) platform.Content {
	fg, bg := d.colors()
	snap := d.snapshot
	if snap == nil {
		lines := []string{locationName(d.location)}
		switch {
		case d.loading:
			lines = append(lines, d.phase)
		case d.lastErr != "":
			lines = append(lines, "Error: "+d.lastErr)
		default:
			lines = append(lines, LabelUnavailable)
		}
		return platform.Content{Lines: lines, Foreground: fg, Background: bg}
	}

	lines := []string{
		locationName(&snap.Location),
		fmt.Sprintf("%s %s", weather.FormatTemp(snap.Temperature), snap.Condition),
		fmt.Sprintf("Feels like %s   H %s  L %s",
			weather.FormatTemp(snap.FeelsLike), weather.FormatTemp(snap.High), weather.FormatTemp(snap.Low)),
		fmt.Sprintf("Humidity %d%%   Wind %.0f mph", snap.Humidity, snap.WindSpeed),
		fmt.Sprintf("Precip %d%%   UV %.0f   Clouds %d%%", snap.PrecipitationChance, snap.UVIndex, snap.CloudCover),
	}
	if snap.Sunrise != "" || snap.Sunset != "" {
		lines = append(lines, fmt.Sprintf("Sunrise %s   Sunset %s", clockTime(snap.Sunrise), clockTime(snap.Sunset)))
	}
	lines = append(lines, "Moon: "+weather.MoonPhase(now))

	if len(snap.Hourly) > 0 {
		lines = append(lines, "")
		for _, h := range snap.Hourly {
			lines = append(lines, fmt.Sprintf("%-5s %5s  %s", h.Label, weather.FormatTemp(h.High), weather.ConditionText(h.Code)))
		}
	}
	if len(snap.Daily) > 0 {
		lines = append(lines, "")
		for _, day := range snap.Daily {
			line := fmt.Sprintf("%-4s %5s / %-5s %s", day.Label,
				weather.FormatTemp(day.High), weather.FormatTemp(day.Low), weather.ConditionText(day.Code))
			if day.Precip > 0 {
				line += fmt.Sprintf("  %d%%", day.Precip)
			}
			lines = append(lines, line)
		}
	}

	footer := "Updated " + snap.FetchedAt.Format("15:04")
	if d.lastErr != "" {
		footer += " (stale: " + d.lastErr + ")"
	}
	lines = append(lines, "", footer)
	return platform.Content{Lines: lines, Foreground: fg, Background: bg}
}

func settingsContent(d dataView, cfg *config.Config, path string) platform.Content {
	fg, bg := d.colors()
	location := "Automatic (IP lookup)"
	if cfg.UseManualLocation {
		location = fmt.Sprintf("Manual %.4f, %.4f", cfg.ManualLatitude, cfg.ManualLongitude)
	}
	lines := []string{
		"Settings",
		"",
		"Units: " + titleCase(cfg.Units),
		"Location: " + location,
		"Start with system: " + onOff(cfg.StartWithSystem),
		"Theme: " + cfg.Theme,
	}
	if cfg.DetailHotkey != "" {
		lines = append(lines, "Hotkey: "+cfg.DetailHotkey)
	}
	if path != "" {
		lines = append(lines, "", "Edit "+path, "to change settings.")
	}
	return platform.Content{Lines: lines, Foreground: fg, Background: bg}
}

func locationName(loc *weather.Location) string {
	if loc == nil || loc.City == "" {
		return weather.TimeoutLocation.City
	}
	return loc.City
}

// clockTime extracts "15:04" from an ISO "2006-01-02T15:04" timestamp.
func clockTime(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[i+1:]
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
