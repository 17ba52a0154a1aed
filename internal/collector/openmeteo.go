package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
)

// Open-Meteo model identifiers for the ensemble this bot follows.
const (
	OpenMeteoECMWF = "ecmwf_ifs025"
	OpenMeteoGFS   = "gfs_seamless"
	OpenMeteoGEM   = "gem_seamless"
	OpenMeteoICON  = "icon_seamless"
)

// OpenMeteoFetcher pulls one forecast model's daily extremes from the
// Open-Meteo API. Each ensemble member gets its own instance.
type OpenMeteoFetcher struct {
	Client  *http.Client
	BaseURL string
	Model   string // Open-Meteo model identifier, e.g. "ecmwf_ifs025"
	Label   string // short display name, e.g. "ecmwf"
}

// NewOpenMeteoFetcher creates a fetcher for a single forecast model.
func NewOpenMeteoFetcher(baseURL, omModel, label string) *OpenMeteoFetcher {
	return &OpenMeteoFetcher{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
		Model:   omModel,
		Label:   label,
	}
}

func (f *OpenMeteoFetcher) Name() string { return f.Label }

// FetchForecast returns today's and tomorrow's modeled extremes, rounded
// to whole degrees. Missing array slots stay nil.
func (f *OpenMeteoFetcher) FetchForecast(ctx context.Context, city config.City) (*model.DayForecast, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", city.Lat))
	q.Set("longitude", fmt.Sprintf("%g", city.Lon))
	q.Set("daily", "temperature_2m_max,temperature_2m_min")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "2")
	q.Set("models", f.Model)

	body, err := openMeteoGet(ctx, f.Client, f.BaseURL+"/forecast?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Daily struct {
			TempMax []*float64 `json:"temperature_2m_max"`
			TempMin []*float64 `json:"temperature_2m_min"`
		} `json:"daily"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}

	fc := &model.DayForecast{
		TodayHigh:    roundTemp(at(payload.Daily.TempMax, 0)),
		TodayLow:     roundTemp(at(payload.Daily.TempMin, 0)),
		TomorrowHigh: roundTemp(at(payload.Daily.TempMax, 1)),
		TomorrowLow:  roundTemp(at(payload.Daily.TempMin, 1)),
	}
	return fc, nil
}

// OpenMeteoHourlyFetcher pulls the hour-by-hour temperature curve used to
// corroborate running extremes against the rest of the day.
type OpenMeteoHourlyFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewOpenMeteoHourlyFetcher creates the hourly-curve fetcher.
func NewOpenMeteoHourlyFetcher(baseURL string) *OpenMeteoHourlyFetcher {
	return &OpenMeteoHourlyFetcher{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
	}
}

func (f *OpenMeteoHourlyFetcher) Name() string { return "open-meteo-hourly" }

// FetchHourly returns temperatures keyed by the API's local timestamps,
// e.g. "2026-02-18T15:00".
func (f *OpenMeteoHourlyFetcher) FetchHourly(ctx context.Context, city config.City) (map[string]int, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%g", city.Lat))
	q.Set("longitude", fmt.Sprintf("%g", city.Lon))
	q.Set("hourly", "temperature_2m")
	q.Set("temperature_unit", "fahrenheit")
	q.Set("timezone", "auto")
	q.Set("forecast_days", "2")

	body, err := openMeteoGet(ctx, f.Client, f.BaseURL+"/forecast?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Hourly struct {
			Time        []string   `json:"time"`
			Temperature []*float64 `json:"temperature_2m"`
		} `json:"hourly"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("open-meteo decode: %w", err)
	}

	out := make(map[string]int, len(payload.Hourly.Time))
	for i, ts := range payload.Hourly.Time {
		if i < len(payload.Hourly.Temperature) && payload.Hourly.Temperature[i] != nil {
			out[ts] = int(math.Round(*payload.Hourly.Temperature[i]))
		}
	}
	return out, nil
}

func openMeteoGet(ctx context.Context, client *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open-meteo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("open-meteo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-meteo: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

func roundTemp(v *float64) *int {
	if v == nil {
		return nil
	}
	r := int(math.Round(*v))
	return &r
}
