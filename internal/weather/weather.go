// Package weather fetches location and forecast data for the companion.
package weather

import "time"

// Location is where forecasts are fetched for.
type Location struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Fallback coordinates used when the location cannot be determined.
const (
	DefaultLatitude  = 35.44
	DefaultLongitude = -89.81
)

var (
	// FallbackLocation is used when the IP lookup fails.
	FallbackLocation = Location{City: "Munford, TN", Latitude: DefaultLatitude, Longitude: DefaultLongitude}
	// TimeoutLocation is used when the lookup does not finish in time.
	TimeoutLocation = Location{City: "Unknown", Latitude: DefaultLatitude, Longitude: DefaultLongitude}
)

// ManualLocationCity labels user-supplied coordinates.
const ManualLocationCity = "Manual Location"

// Units selects the temperature unit.
type Units string

const (
	Fahrenheit Units = "fahrenheit"
	Celsius    Units = "celsius"
)

// Symbol returns the display suffix for temperatures.
func (u Units) Symbol() string {
	if u == Celsius {
		return "°C"
	}
	return "°F"
}

// ForecastItem is one hourly or daily entry.
type ForecastItem struct {
	Time   time.Time `json:"time"`
	Label  string    `json:"label"`
	High   float64   `json:"high"`
	Low    float64   `json:"low,omitempty"`
	Code   int       `json:"code"`
	Icon   string    `json:"icon"`
	Precip int       `json:"precip,omitempty"`
	Wind   float64   `json:"wind,omitempty"`
}

// Snapshot is one successful forecast fetch.
type Snapshot struct {
	Location  Location  `json:"location"`
	Units     Units     `json:"units"`
	FetchedAt time.Time `json:"fetched_at"`

	Temperature         float64 `json:"temperature"`
	High                float64 `json:"high"`
	Low                 float64 `json:"low"`
	Code                int     `json:"code"`
	Condition           string  `json:"condition"`
	Icon                string  `json:"icon"`
	IsDay               bool    `json:"is_day"`
	Humidity            int     `json:"humidity"`
	WindSpeed           float64 `json:"wind_speed"`
	FeelsLike           float64 `json:"feels_like"`
	PrecipitationChance int     `json:"precipitation_chance"`
	Sunrise             string  `json:"sunrise"`
	Sunset              string  `json:"sunset"`
	Pressure            float64 `json:"pressure"`
	CloudCover          int     `json:"cloud_cover"`
	Visibility          float64 `json:"visibility"`
	UVIndex             float64 `json:"uv_index"`

	Hourly []ForecastItem `json:"hourly"`
	Daily  []ForecastItem `json:"daily"`
}

// Summary is a one-line description such as "72° Clear".
func (s *Snapshot) Summary() string {
	if s == nil {
		return ""
	}
	return FormatTemp(s.Temperature) + " " + s.Condition
}
