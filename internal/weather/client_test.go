package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const forecastJSON = `{
  "utc_offset_seconds": -21600,
  "current": {
    "temperature_2m": 71.6,
    "weather_code": 2,
    "is_day": 1,
    "wind_speed_10m": 30.2,
    "relative_humidity_2m": 55,
    "apparent_temperature": 70.1,
    "pressure_msl": 1015.2,
    "cloud_cover": 40,
    "visibility": 24140
  },
  "hourly": {
    "time": ["2026-10-17T10:00","2026-10-17T11:00","2026-10-17T12:00","2026-10-17T13:00","2026-10-17T14:00","2026-10-17T15:00","2026-10-17T16:00"],
    "temperature_2m": [60,62,64,66,68,70,69],
    "weather_code": [0,1,2,3,61,63,95],
    "wind_speed_10m": [5,5,5,30,5,5,5],
    "is_day": [1,1,1,1,1,1,0]
  },
  "daily": {
    "time": ["2026-10-17","2026-10-18","2026-10-19","2026-10-20","2026-10-21","2026-10-22","2026-10-23"],
    "sunrise": ["2026-10-17T07:01","2026-10-18T07:02","2026-10-19T07:03","2026-10-20T07:04","2026-10-21T07:05","2026-10-22T07:06","2026-10-23T07:07"],
    "sunset": ["2026-10-17T18:20","2026-10-18T18:19","2026-10-19T18:18","2026-10-20T18:17","2026-10-21T18:16","2026-10-22T18:15","2026-10-23T18:14"],
    "temperature_2m_max": [74,75,76,77,78,79,80],
    "temperature_2m_min": [50,51,52,53,54,55,56],
    "weather_code": [2,3,61,71,95,0,1],
    "wind_speed_10m_max": [10,26.4,12,13,14,15,16],
    "precipitation_probability_max": [20,30,null,50,60,70,80],
    "uv_index_max": [4.5,4,3,2,1,0,0]
  }
}`

func TestFetchWeather_ParsesForecast(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	zone := time.FixedZone("", -21600)
	now := time.Date(2026, 10, 17, 11, 30, 0, 0, zone)
	c := NewClient(ClientConfig{
		Units:       Celsius,
		ForecastURL: srv.URL,
		Now:         func() time.Time { return now },
	})

	snap, err := c.FetchWeather(context.Background(), 35.44, -89.81)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "temperature_unit=celsius")
	assert.Contains(t, gotQuery, "wind_speed_unit=mph")
	assert.Contains(t, gotQuery, "latitude=35.44")

	assert.Equal(t, 71.6, snap.Temperature)
	assert.Equal(t, "Partly Cloudy", snap.Condition)
	assert.Equal(t, "day_partly_cloudy_wind", snap.Icon)
	assert.Equal(t, 74.0, snap.High)
	assert.Equal(t, 50.0, snap.Low)
	assert.Equal(t, 20, snap.PrecipitationChance)
	assert.Equal(t, 40, snap.CloudCover)
	assert.Equal(t, 4.5, snap.UVIndex)
	assert.Equal(t, "2026-10-17T07:01", snap.Sunrise)
	assert.Equal(t, Celsius, snap.Units)

	// 11:30 local: the first upcoming hour is 12:00.
	require.Len(t, snap.Hourly, 5)
	assert.Equal(t, "12PM", snap.Hourly[0].Label)
	assert.Equal(t, 64.0, snap.Hourly[0].High)
	assert.Equal(t, "day_cloudy_wind", snap.Hourly[1].Icon)
	assert.Equal(t, "night_partly_cloudy_rain_storm", snap.Hourly[4].Icon)

	require.Len(t, snap.Daily, 5)
	assert.Equal(t, "Sun", snap.Daily[0].Label)
	assert.Equal(t, 75.0, snap.Daily[0].High)
	assert.Equal(t, 51.0, snap.Daily[0].Low)
	assert.Equal(t, 26.0, snap.Daily[0].Wind)
	assert.Equal(t, "day_cloudy_wind", snap.Daily[0].Icon)
	assert.Equal(t, 0, snap.Daily[1].Precip)
	assert.Equal(t, "Thu", snap.Daily[4].Label)
}

func TestFetchWeather_AllHoursInPastUsesLastFive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(forecastJSON))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{
		ForecastURL: srv.URL,
		Now:         func() time.Time { return time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	snap, err := c.FetchWeather(context.Background(), 1, 2)
	require.NoError(t, err)
	require.Len(t, snap.Hourly, 5)
	assert.Equal(t, "12PM", snap.Hourly[0].Label)
}

func TestFetchWeather_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{ForecastURL: srv.URL})
	_, err := c.FetchWeather(context.Background(), 1, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestFetchLocation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"city":"Memphis","region_code":"TN","latitude":35.1495,"longitude":-90.049}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{LocationURL: srv.URL})
	loc, err := c.FetchLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Location{City: "Memphis, TN", Latitude: 35.1495, Longitude: -90.049}, loc)
}

func TestFetchLocation_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":true,"reason":"RateLimited"}`))
	}))
	defer srv.Close()

	c := NewClient(ClientConfig{LocationURL: srv.URL})
	_, err := c.FetchLocation(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "RateLimited"))
}

func TestFetchLocation_ManualSkipsLookup(t *testing.T) {
	c := NewClient(ClientConfig{
		LocationURL: "http://127.0.0.1:1/unreachable",
		Manual:      &Location{Latitude: 51.5, Longitude: -0.12},
	})
	loc, err := c.FetchLocation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Location{City: ManualLocationCity, Latitude: 51.5, Longitude: -0.12}, loc)
}
