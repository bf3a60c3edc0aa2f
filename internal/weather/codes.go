package weather

import (
	"fmt"
	"math"
	"time"
)

// windyThreshold is the wind speed (mph) above which windy icons are used.
const windyThreshold = 25

// ConditionText maps a WMO weather code to a short description.
func ConditionText(code int) string {
	switch code {
	case 0:
		return "Clear"
	case 1:
		return "Mostly Clear"
	case 2:
		return "Partly Cloudy"
	case 3:
		return "Overcast"
	case 45, 48:
		return "Foggy"
	case 51:
		return "Light Drizzle"
	case 53:
		return "Drizzle"
	case 55:
		return "Dense Drizzle"
	case 56, 57:
		return "Freezing Drizzle"
	case 61:
		return "Light Rain"
	case 63:
		return "Rain"
	case 65:
		return "Heavy Rain"
	case 66, 67:
		return "Freezing Rain"
	case 71:
		return "Light Snow"
	case 73:
		return "Snow"
	case 75:
		return "Heavy Snow"
	case 77:
		return "Snow Grains"
	case 80:
		return "Light Showers"
	case 81:
		return "Showers"
	case 82:
		return "Heavy Showers"
	case 85:
		return "Light Snow Showers"
	case 86:
		return "Snow Showers"
	case 95:
		return "Thunderstorm"
	case 96:
		return "Hail"
	case 99:
		return "Heavy Hail"
	default:
		return "Cloudy"
	}
}

// IconName maps a WMO code to an icon name such as "day_partly_cloudy_wind".
func IconName(code int, isDay bool, windSpeed float64) string {
	prefix := "night"
	if isDay {
		prefix = "day"
	}
	windy := windSpeed > windyThreshold

	var name string
	switch code {
	case 0:
		name = "clear"
	case 1, 2:
		name = "partly_cloudy"
		if windy {
			name += "_wind"
		}
	case 3:
		name = "cloudy"
		if windy {
			name += "_wind"
		}
	case 45, 48:
		name = "partly_cloudy_fog"
	case 51, 61, 80:
		name = "partly_cloudy_light_rain"
	case 53:
		name = "partly_cloudy_rain"
	case 55, 63, 81:
		name = "cloudy_rain"
	case 56, 57, 66:
		name = "cloudy_sleet"
	case 65, 82:
		name = "cloudy_heavy_rain"
	case 67:
		name = "cloudy_heavy_rain_storm"
	case 71, 85:
		name = "partly_cloudy_light_snow"
	case 73, 77:
		name = "cloudy_snow"
	case 75, 86:
		name = "cloudy_snow_storm"
	case 95:
		name = "partly_cloudy_rain_storm"
	case 96, 99:
		name = "cloudy_hail"
	default:
		name = "cloudy"
	}
	return prefix + "_" + name
}

// FormatTemp rounds t to a whole degree, e.g. "72°".
func FormatTemp(t float64) string {
	return fmt.Sprintf("%.0f°", math.Round(t))
}

const synodicMonth = 29.53058867

// knownNewMoon is a reference new moon (2000-01-06 12:24:01).
var knownNewMoon = time.Date(2000, time.January, 6, 12, 24, 1, 0, time.UTC)

var moonPhases = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// MoonPhase returns the name of the moon phase (one of eight) at t.
func MoonPhase(t time.Time) string {
	days := t.Sub(knownNewMoon).Hours() / 24
	phase := math.Mod(days, synodicMonth)
	if phase < 0 {
		phase += synodicMonth
	}
	idx := int(phase / (synodicMonth / 8))
	if idx < 0 || idx > 7 {
		idx = 0
	}
	return moonPhases[idx]
}
