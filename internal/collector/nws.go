package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
)

const observationTimeLayout = "2006-01-02T15:04:05Z"

// NWSFetcher pulls gridpoint forecasts and station observations from the
// National Weather Service API.
type NWSFetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string

	mu        sync.Mutex
	gridCache map[string]string // city key -> forecast URL
}

// NewNWSFetcher creates a fetcher. The User-Agent is mandatory: the NWS
// API rejects anonymous clients.
func NewNWSFetcher(baseURL, userAgent string) *NWSFetcher {
	return &NWSFetcher{
		Client:    &http.Client{Timeout: 15 * time.Second},
		BaseURL:   baseURL,
		UserAgent: userAgent,
		gridCache: make(map[string]string),
	}
}

func (f *NWSFetcher) Name() string { return "nws" }

// nwsPeriod is one forecast period from the gridpoint endpoint.
type nwsPeriod struct {
	StartTime       string `json:"startTime"`
	Temperature     int    `json:"temperature"`
	TemperatureUnit string `json:"temperatureUnit"`
	IsDaytime       bool   `json:"isDaytime"`
}

// FetchForecast resolves the city's gridpoint (cached per process) and
// folds the period forecast into day highs and lows.
func (f *NWSFetcher) FetchForecast(ctx context.Context, city config.City) (*model.DayForecast, error) {
	fcURL, err := f.forecastURL(ctx, city)
	if err != nil {
		return nil, err
	}
	body, err := f.get(ctx, fcURL)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Properties struct {
			Periods []nwsPeriod `json:"periods"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("forecast decode: %w", err)
	}
	return groupPeriods(payload.Properties.Periods, time.Now()), nil
}

// forecastURL looks up the gridpoint forecast URL for a city. Grid
// assignments never move, so the lookup happens once per process.
func (f *NWSFetcher) forecastURL(ctx context.Context, city config.City) (string, error) {
	f.mu.Lock()
	if u, ok := f.gridCache[city.Key]; ok {
		f.mu.Unlock()
		return u, nil
	}
	f.mu.Unlock()

	body, err := f.get(ctx, fmt.Sprintf("%s/points/%g,%g", f.BaseURL, city.Lat, city.Lon))
	if err != nil {
		return "", fmt.Errorf("points lookup: %w", err)
	}
	var payload struct {
		Properties struct {
			GridID   string `json:"gridId"`
			GridX    int    `json:"gridX"`
			GridY    int    `json:"gridY"`
			Forecast string `json:"forecast"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("points decode: %w", err)
	}
	if payload.Properties.Forecast == "" {
		return "", fmt.Errorf("points response missing forecast url")
	}
	log.Info().Str("city", city.Key).
		Msgf("NWS grid resolved: %s %d,%d", payload.Properties.GridID, payload.Properties.GridX, payload.Properties.GridY)

	f.mu.Lock()
	f.gridCache[city.Key] = payload.Properties.Forecast
	f.mu.Unlock()
	return payload.Properties.Forecast, nil
}

// groupPeriods buckets forecast periods by their start date: the daytime
// period becomes the day's high, the nighttime period its low. Period
// dates are station-local, so today and tomorrow are taken as Eastern
// dates; keying on UTC would roll the date over at 7 PM ET and drop
// today's markets.
func groupPeriods(periods []nwsPeriod, now time.Time) *model.DayForecast {
	type dayTemps struct {
		high, low *int
	}
	days := make(map[string]*dayTemps)
	for _, p := range periods {
		if len(p.StartTime) < 10 {
			continue
		}
		date := p.StartTime[:10]
		temp := p.Temperature
		if p.TemperatureUnit == "C" {
			temp = int(math.Round(float64(temp)*9/5 + 32))
		}
		d := days[date]
		if d == nil {
			d = &dayTemps{}
			days[date] = d
		}
		v := temp
		if p.IsDaytime {
			d.high = &v
		} else {
			d.low = &v
		}
	}

	etNow := now.In(model.EasternTime())
	fc := &model.DayForecast{}
	if d := days[etNow.Format("2006-01-02")]; d != nil {
		fc.TodayHigh, fc.TodayLow = d.high, d.low
	}
	if d := days[etNow.AddDate(0, 0, 1).Format("2006-01-02")]; d != nil {
		fc.TomorrowHigh, fc.TomorrowLow = d.high, d.low
	}
	return fc
}

// FetchObservations pulls raw readings for a station starting at the given
// UTC instant. A zero end leaves the window open-ended.
func (f *NWSFetcher) FetchObservations(ctx context.Context, station string, start, end time.Time) ([]model.Reading, error) {
	q := url.Values{}
	q.Set("start", start.UTC().Format(observationTimeLayout))
	q.Set("limit", "500")
	if !end.IsZero() {
		q.Set("end", end.UTC().Format(observationTimeLayout))
	}
	u := fmt.Sprintf("%s/stations/%s/observations?%s", f.BaseURL, url.PathEscape(station), q.Encode())

	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Features []struct {
			Properties struct {
				Temperature struct {
					Value    *float64 `json:"value"`
					UnitCode string   `json:"unitCode"`
				} `json:"temperature"`
				MaxTemperatureLast24Hours struct {
					Value *float64 `json:"value"`
				} `json:"maxTemperatureLast24Hours"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("observations decode: %w", err)
	}

	readings := make([]model.Reading, 0, len(payload.Features))
	for _, feat := range payload.Features {
		readings = append(readings, model.Reading{
			TempValue: feat.Properties.Temperature.Value,
			UnitCode:  feat.Properties.Temperature.UnitCode,
			Max24h:    feat.Properties.MaxTemperatureLast24Hours.Value,
		})
	}
	return readings, nil
}

func (f *NWSFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.UserAgent)
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nws fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nws read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nws: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
