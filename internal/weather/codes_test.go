package weather

import (
	"testing"
	"time"
)

func TestConditionText(t *testing.T) {
	tests := map[int]string{
		0:  "Clear",
		2:  "Partly Cloudy",
		48: "Foggy",
		57: "Freezing Drizzle",
		67: "Freezing Rain",
		77: "Snow Grains",
		95: "Thunderstorm",
		99: "Heavy Hail",
		42: "Cloudy",
	}
	for code, want := range tests {
		if got := ConditionText(code); got != want {
			t.Errorf("ConditionText(%d) = %q, want %q", code, got, want)
		}
	}
}

func TestIconName(t *testing.T) {
	tests := []struct {
		code  int
		isDay bool
		wind  float64
		want  string
	}{
		{0, true, 0, "day_clear"},
		{0, false, 40, "night_clear"},
		{1, true, 10, "day_partly_cloudy"},
		{2, true, 26, "day_partly_cloudy_wind"},
		{3, false, 25, "night_cloudy"},
		{3, false, 25.1, "night_cloudy_wind"},
		{45, true, 0, "day_partly_cloudy_fog"},
		{55, true, 0, "day_cloudy_rain"},
		{66, true, 0, "day_cloudy_sleet"},
		{67, true, 0, "day_cloudy_heavy_rain_storm"},
		{86, false, 0, "night_cloudy_snow_storm"},
		{95, true, 0, "day_partly_cloudy_rain_storm"},
		{99, true, 0, "day_cloudy_hail"},
		{12, true, 0, "day_cloudy"},
	}
	for _, tt := range tests {
		if got := IconName(tt.code, tt.isDay, tt.wind); got != tt.want {
			t.Errorf("IconName(%d, %v, %v) = %q, want %q", tt.code, tt.isDay, tt.wind, got, tt.want)
		}
	}
}

func TestMoonPhase(t *testing.T) {
	if got := MoonPhase(knownNewMoon.Add(time.Hour)); got != "New Moon" {
		t.Fatalf("reference date: got %q", got)
	}
	full := knownNewMoon.Add(time.Duration(synodicMonth / 2 * 24 * float64(time.Hour)))
	if got := MoonPhase(full); got != "Full Moon" {
		t.Fatalf("half a cycle later: got %q", got)
	}
	before := knownNewMoon.Add(-24 * time.Hour)
	if got := MoonPhase(before); got != "Waning Crescent" {
		t.Fatalf("day before reference: got %q", got)
	}
}

func TestFormatTemp(t *testing.T) {
	if got := FormatTemp(71.6); got != "72°" {
		t.Fatalf("FormatTemp(71.6) = %q", got)
	}
	if got := FormatTemp(-3.5); got != "-4°" {
		t.Fatalf("FormatTemp(-3.5) = %q", got)
	}
}
