package collector

import (
	"context"
	"time"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
)

// MarketFetcher pulls tradable markets and settlement results from the
// exchange.
type MarketFetcher interface {
	// FetchMarkets returns the open daily-temperature markets for every
	// series the city trades.
	FetchMarkets(ctx context.Context, city config.City) ([]model.Market, error)
	// FetchResult returns a single market's settlement outcome and whether
	// that outcome is still provisional. Unsettled markets come back open
	// with a nil error.
	FetchResult(ctx context.Context, ticker string) (model.Outcome, bool, error)
	Name() string
}

// ForecastFetcher returns one source's day forecast for a city.
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, city config.City) (*model.DayForecast, error)
	Name() string
}

// HourlyFetcher returns an hour-by-hour temperature curve keyed by local
// timestamps like "2026-02-18T15:00".
type HourlyFetcher interface {
	FetchHourly(ctx context.Context, city config.City) (map[string]int, error)
	Name() string
}

// ObservationFetcher returns raw station readings from start (UTC) onward.
// A zero end leaves the window open-ended for live queries.
type ObservationFetcher interface {
	FetchObservations(ctx context.Context, station string, start, end time.Time) ([]model.Reading, error)
	Name() string
}

// MockMarketFetcher returns canned exchange data for tests.
type MockMarketFetcher struct {
	Markets     map[string][]model.Market // keyed by city key
	Results     map[string]model.Outcome  // keyed by ticker
	Provisional map[string]bool
	Err         error
}

func (m *MockMarketFetcher) FetchMarkets(_ context.Context, city config.City) ([]model.Market, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Markets[city.Key], nil
}

func (m *MockMarketFetcher) FetchResult(_ context.Context, ticker string) (model.Outcome, bool, error) {
	if m.Err != nil {
		return model.OutcomeOpen, false, m.Err
	}
	return m.Results[ticker], m.Provisional[ticker], nil
}

func (m *MockMarketFetcher) Name() string { return "mock-markets" }

// MockForecastFetcher returns a fixed forecast for tests.
type MockForecastFetcher struct {
	Forecast *model.DayForecast
	Err      error
	Source   string
}

func (m *MockForecastFetcher) FetchForecast(_ context.Context, _ config.City) (*model.DayForecast, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Forecast, nil
}

func (m *MockForecastFetcher) Name() string {
	if m.Source == "" {
		return "mock-forecast"
	}
	return m.Source
}

// MockHourlyFetcher returns a fixed hourly curve for tests.
type MockHourlyFetcher struct {
	Hourly map[string]int
	Err    error
}

func (m *MockHourlyFetcher) FetchHourly(_ context.Context, _ config.City) (map[string]int, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Hourly, nil
}

func (m *MockHourlyFetcher) Name() string { return "mock-hourly" }

// MockObservationFetcher returns fixed station readings for tests.
type MockObservationFetcher struct {
	Readings []model.Reading
	Err      error
}

func (m *MockObservationFetcher) FetchObservations(_ context.Context, _ string, _, _ time.Time) ([]model.Reading, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Readings, nil
}

func (m *MockObservationFetcher) Name() string { return "mock-observations" }
