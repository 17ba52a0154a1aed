package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
)

// WeatherAPIFetcher pulls the supplemental commercial forecast from
// weatherapi.com. Only wired up when an API key is configured.
type WeatherAPIFetcher struct {
	Client  *http.Client
	BaseURL string
	APIKey  string
}

// NewWeatherAPIFetcher creates a fetcher with the given key.
func NewWeatherAPIFetcher(baseURL, apiKey string) *WeatherAPIFetcher {
	return &WeatherAPIFetcher{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

func (f *WeatherAPIFetcher) Name() string { return "weatherapi" }

// FetchForecast returns today's and tomorrow's forecast extremes, rounded
// to whole degrees.
func (f *WeatherAPIFetcher) FetchForecast(ctx context.Context, city config.City) (*model.DayForecast, error) {
	q := url.Values{}
	q.Set("key", f.APIKey)
	q.Set("q", fmt.Sprintf("%g,%g", city.Lat, city.Lon))
	q.Set("days", "2")
	q.Set("aqi", "no")
	q.Set("alerts", "no")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/forecast.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weatherapi fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weatherapi read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weatherapi: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Forecast struct {
			ForecastDay []struct {
				Day struct {
					MaxTempF float64 `json:"maxtemp_f"`
					MinTempF float64 `json:"mintemp_f"`
				} `json:"day"`
			} `json:"forecastday"`
		} `json:"forecast"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("weatherapi decode: %w", err)
	}

	fc := &model.DayForecast{}
	days := payload.Forecast.ForecastDay
	if len(days) > 0 {
		fc.TodayHigh = roundTemp(&days[0].Day.MaxTempF)
		fc.TodayLow = roundTemp(&days[0].Day.MinTempF)
	}
	if len(days) > 1 {
		fc.TomorrowHigh = roundTemp(&days[1].Day.MaxTempF)
		fc.TomorrowLow = roundTemp(&days[1].Day.MinTempF)
	}
	return fc, nil
}
