package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	defaultLocationURL = "https://ipapi.co/json/"
	defaultHTTPTimeout = 10 * time.Second

	hourlyCount = 5
	dailyCount  = 5
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Units Units
	// Manual, when set, is returned by FetchLocation without a lookup.
	Manual *Location

	ForecastURL string
	LocationURL string
	HTTPClient  *http.Client
	// Now is used to select upcoming hourly entries. Defaults to time.Now.
	Now func() time.Time
}

// Client talks to the IP geolocation and forecast services.
type Client struct {
	http        *http.Client
	forecastURL string
	locationURL string
	units       Units
	manual      *Location
	now         func() time.Time
}

// NewClient returns a client with defaults filled in.
func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		http:        cfg.HTTPClient,
		forecastURL: cfg.ForecastURL,
		locationURL: cfg.LocationURL,
		units:       cfg.Units,
		now:         cfg.Now,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if c.forecastURL == "" {
		c.forecastURL = defaultForecastURL
	}
	if c.locationURL == "" {
		c.locationURL = defaultLocationURL
	}
	if c.units == "" {
		c.units = Fahrenheit
	}
	if c.now == nil {
		c.now = time.Now
	}
	if cfg.Manual != nil {
		m := *cfg.Manual
		if m.City == "" {
			m.City = ManualLocationCity
		}
		c.manual = &m
	}
	return c
}

type ipapiResponse struct {
	City       string   `json:"city"`
	RegionCode string   `json:"region_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Error      bool     `json:"error"`
	Reason     string   `json:"reason"`
}

// FetchLocation returns the manual location when configured, otherwise
// geolocates the current IP address.
func (c *Client) FetchLocation(ctx context.Context) (Location, error) {
	if c.manual != nil {
		return *c.manual, nil
	}

	var resp ipapiResponse
	if err := c.getJSON(ctx, c.locationURL, &resp); err != nil {
		return Location{}, fmt.Errorf("location lookup: %w", err)
	}
	if resp.Error {
		return Location{}, fmt.Errorf("location lookup: %s", resp.Reason)
	}
	if resp.Latitude == nil || resp.Longitude == nil {
		return Location{}, fmt.Errorf("location lookup: response has no coordinates")
	}

	city := resp.City
	if resp.RegionCode != "" {
		city = fmt.Sprintf("%s, %s", resp.City, resp.RegionCode)
	}
	return Location{City: city, Latitude: *resp.Latitude, Longitude: *resp.Longitude}, nil
}

type forecastResponse struct {
	UTCOffsetSeconds int `json:"utc_offset_seconds"`
	Current          struct {
		Temperature  float64  `json:"temperature_2m"`
		WeatherCode  int      `json:"weather_code"`
		IsDay        int      `json:"is_day"`
		WindSpeed    float64  `json:"wind_speed_10m"`
		Humidity     int      `json:"relative_humidity_2m"`
		ApparentTemp float64  `json:"apparent_temperature"`
		PressureMSL  *float64 `json:"pressure_msl"`
		CloudCover   *int     `json:"cloud_cover"`
		Visibility   *float64 `json:"visibility"`
	} `json:"current"`
	Hourly struct {
		Time        []string  `json:"time"`
		Temperature []float64 `json:"temperature_2m"`
		WeatherCode []int     `json:"weather_code"`
		WindSpeed   []float64 `json:"wind_speed_10m"`
		IsDay       []*int    `json:"is_day"`
	} `json:"hourly"`
	Daily struct {
		Time        []string   `json:"time"`
		Sunrise     []string   `json:"sunrise"`
		Sunset      []string   `json:"sunset"`
		TempMax     []float64  `json:"temperature_2m_max"`
		TempMin     []float64  `json:"temperature_2m_min"`
		WeatherCode []int      `json:"weather_code"`
		WindMax     []float64  `json:"wind_speed_10m_max"`
		PrecipMax   []*int     `json:"precipitation_probability_max"`
		UVIndexMax  []*float64 `json:"uv_index_max"`
	} `json:"daily"`
}

// FetchWeather retrieves current conditions and the short forecast.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	u, err := url.Parse(c.forecastURL)
	if err != nil {
		return nil, fmt.Errorf("forecast url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,weather_code,is_day,wind_speed_10m,relative_humidity_2m,apparent_temperature,pressure_msl,cloud_cover,visibility")
	q.Set("hourly", "temperature_2m,weather_code,wind_speed_10m,is_day")
	q.Set("daily", "sunrise,sunset,temperature_2m_max,temperature_2m_min,weather_code,wind_speed_10m_max,precipitation_probability_max,uv_index_max")
	q.Set("temperature_unit", string(c.units))
	q.Set("timezone", "auto")
	q.Set("wind_speed_unit", "mph")
	u.RawQuery = q.Encode()

	var resp forecastResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	snap, err := c.buildSnapshot(&resp)
	if err != nil {
		return nil, fmt.Errorf("forecast: %w", err)
	}
	snap.Location = Location{Latitude: lat, Longitude: lon}
	return snap, nil
}

func (c *Client) buildSnapshot(resp *forecastResponse) (*Snapshot, error) {
	d := resp.Daily
	if len(d.TempMax) == 0 || len(d.TempMin) == 0 {
		return nil, fmt.Errorf("response has no daily forecast")
	}
	cur := resp.Current
	isDay := cur.IsDay == 1

	snap := &Snapshot{
		Units:       c.units,
		FetchedAt:   c.now(),
		Temperature: cur.Temperature,
		High:        d.TempMax[0],
		Low:         d.TempMin[0],
		Code:        cur.WeatherCode,
		Condition:   ConditionText(cur.WeatherCode),
		Icon:        IconName(cur.WeatherCode, isDay, cur.WindSpeed),
		IsDay:       isDay,
		Humidity:    cur.Humidity,
		WindSpeed:   cur.WindSpeed,
		FeelsLike:   cur.ApparentTemp,
	}
	if len(d.PrecipMax) > 0 && d.PrecipMax[0] != nil {
		snap.PrecipitationChance = *d.PrecipMax[0]
	}
	if len(d.Sunrise) > 0 {
		snap.Sunrise = d.Sunrise[0]
	}
	if len(d.Sunset) > 0 {
		snap.Sunset = d.Sunset[0]
	}
	if cur.PressureMSL != nil {
		snap.Pressure = *cur.PressureMSL
	}
	if cur.CloudCover != nil {
		snap.CloudCover = *cur.CloudCover
	}
	if cur.Visibility != nil {
		snap.Visibility = *cur.Visibility
	}
	if len(d.UVIndexMax) > 0 && d.UVIndexMax[0] != nil {
		snap.UVIndex = *d.UVIndexMax[0]
	}

	loc := time.FixedZone("", resp.UTCOffsetSeconds)
	snap.Hourly = c.hourly(resp, loc)
	snap.Daily = daily(resp, loc)
	return snap, nil
}

// hourly returns up to five entries starting at the first hour not in the
// past, or the last five hours when every entry is in the past.
func (c *Client) hourly(resp *forecastResponse, loc *time.Location) []ForecastItem {
	h := resp.Hourly
	n := min(len(h.Time), len(h.Temperature), len(h.WeatherCode), len(h.WindSpeed))
	if n == 0 {
		return nil
	}

	now := c.now().In(loc)
	start := max(0, n-hourlyCount)
	times := make([]time.Time, n)
	for i := 0; i < n; i++ {
		t, err := time.ParseInLocation("2006-01-02T15:04", h.Time[i], loc)
		if err != nil {
			continue
		}
		times[i] = t
	}
	for i, t := range times {
		if !t.IsZero() && !t.Before(now) {
			start = i
			break
		}
	}

	items := make([]ForecastItem, 0, hourlyCount)
	for i := start; i < n && len(items) < hourlyCount; i++ {
		isDay := i < len(h.IsDay) && h.IsDay[i] != nil && *h.IsDay[i] == 1
		items = append(items, ForecastItem{
			Time:  times[i],
			Label: times[i].Format("3PM"),
			High:  h.Temperature[i],
			Code:  h.WeatherCode[i],
			Icon:  IconName(h.WeatherCode[i], isDay, h.WindSpeed[i]),
			Wind:  h.WindSpeed[i],
		})
	}
	return items
}

// daily returns the five days after today.
func daily(resp *forecastResponse, loc *time.Location) []ForecastItem {
	d := resp.Daily
	n := min(len(d.Time), len(d.TempMax), len(d.TempMin), len(d.WeatherCode), len(d.WindMax))

	items := make([]ForecastItem, 0, dailyCount)
	for i := 1; i <= dailyCount && i < n; i++ {
		t, _ := time.ParseInLocation("2006-01-02", d.Time[i], loc)
		item := ForecastItem{
			Time:  t,
			Label: t.Format("Mon"),
			High:  d.TempMax[i],
			Low:   d.TempMin[i],
			Code:  d.WeatherCode[i],
			Icon:  IconName(d.WeatherCode[i], true, d.WindMax[i]),
			Wind:  math.Round(d.WindMax[i]),
		}
		if i < len(d.PrecipMax) && d.PrecipMax[i] != nil {
			item.Precip = *d.PrecipMax[i]
		}
		items = append(items, item)
	}
	return items
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "traycast")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: %s", resp.Status, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
