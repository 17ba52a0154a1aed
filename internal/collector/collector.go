package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
	"WeatherEdge/internal/tracker"
)

// ErrNoMarkets reports that the exchange returned zero open markets for a
// city. The city sits out the cycle; not an API failure.
var ErrNoMarkets = errors.New("no open markets")

// ErrNoForecast reports that the grid forecast came back empty. Without it
// no market can be priced, so the city sits out the cycle.
var ErrNoForecast = errors.New("no grid forecast")

// Collector gathers everything one cycle needs for a city: open markets,
// the grid forecast, running observations, and the model ensemble. Markets
// and the grid forecast are required; every other source may fail
// independently and only costs its own column.
type Collector struct {
	Markets      MarketFetcher
	NWS          ForecastFetcher
	Observations ObservationFetcher
	ECMWF        ForecastFetcher
	GFS          ForecastFetcher
	GEM          ForecastFetcher
	ICON         ForecastFetcher
	WeatherAPI   ForecastFetcher // nil when no API key is configured
	Hourly       HourlyFetcher
}

// New wires a Collector with live fetchers from config. The commercial
// forecast stays disabled without its API key.
func New(cfg *config.Config) *Collector {
	nws := NewNWSFetcher(cfg.NWS.BaseURL, cfg.NWS.UserAgent)
	c := &Collector{
		Markets:      NewKalshiFetcher(cfg.Kalshi.BaseURL),
		NWS:          nws,
		Observations: nws,
		ECMWF:        NewOpenMeteoFetcher(cfg.OpenMeteo.BaseURL, OpenMeteoECMWF, "ecmwf"),
		GFS:          NewOpenMeteoFetcher(cfg.OpenMeteo.BaseURL, OpenMeteoGFS, "gfs"),
		GEM:          NewOpenMeteoFetcher(cfg.OpenMeteo.BaseURL, OpenMeteoGEM, "gem"),
		ICON:         NewOpenMeteoFetcher(cfg.OpenMeteo.BaseURL, OpenMeteoICON, "icon"),
		Hourly:       NewOpenMeteoHourlyFetcher(cfg.OpenMeteo.BaseURL),
	}
	if cfg.WeatherAPI.APIKey != "" {
		c.WeatherAPI = NewWeatherAPIFetcher(cfg.WeatherAPI.BaseURL, cfg.WeatherAPI.APIKey)
	}
	return c
}

// Snapshot is one city's collected data for one cycle.
type Snapshot struct {
	City    config.City
	Markets []model.Market
	Bundle  model.ForecastBundle
}

// Collect assembles a city snapshot as of now.
func (c *Collector) Collect(ctx context.Context, city config.City, now time.Time) (*Snapshot, error) {
	markets, err := c.Markets.FetchMarkets(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}
	if len(markets) == 0 {
		return nil, ErrNoMarkets
	}

	bundle := model.ForecastBundle{}
	nws, err := c.NWS.FetchForecast(ctx, city)
	if err != nil {
		return nil, fmt.Errorf("fetch grid forecast: %w", err)
	}
	if nws == nil {
		return nil, ErrNoForecast
	}
	bundle.NWS = nws

	// One observations pull per cycle covers both running extremes.
	start := tracker.MidnightLST(now, city.LSTOffset)
	readings, err := c.Observations.FetchObservations(ctx, city.Station, start, time.Time{})
	if err != nil {
		log.Warn().Err(err).Str("city", city.Key).Msg("Observations unavailable this cycle")
	} else {
		bundle.RunningHigh = tracker.RunningHigh(readings, city.StationClass)
		bundle.RunningLow = tracker.RunningLow(readings, city.StationClass)
	}

	bundle.ECMWF = c.fetchAux(ctx, c.ECMWF, city)
	bundle.GFS = c.fetchAux(ctx, c.GFS, city)
	bundle.GEM = c.fetchAux(ctx, c.GEM, city)
	bundle.ICON = c.fetchAux(ctx, c.ICON, city)
	bundle.WeatherAPI = c.fetchAux(ctx, c.WeatherAPI, city)

	if c.Hourly != nil {
		hourly, err := c.Hourly.FetchHourly(ctx, city)
		if err != nil {
			log.Warn().Err(err).Str("city", city.Key).Msg("Hourly curve unavailable this cycle")
		} else {
			bundle.Hourly = hourly
		}
	}

	logSourceStatus(city, len(markets), &bundle)
	return &Snapshot{City: city, Markets: markets, Bundle: bundle}, nil
}

// fetchAux runs one optional forecast source. Failures degrade to a
// missing column, never to a failed cycle.
func (c *Collector) fetchAux(ctx context.Context, f ForecastFetcher, city config.City) *model.DayForecast {
	if f == nil {
		return nil
	}
	fc, err := f.FetchForecast(ctx, city)
	if err != nil {
		log.Warn().Err(err).Str("city", city.Key).Str("source", f.Name()).
			Msg("Forecast source unavailable this cycle")
		return nil
	}
	return fc
}

// ActualExtreme fetches the settled extreme for a past local standard day,
// reduced the same way the live running extreme is. Returns nil when the
// station has no usable readings for that day.
func (c *Collector) ActualExtreme(ctx context.Context, city config.City, date time.Time, series model.SeriesKind) *int {
	start, end := tracker.DayWindowLST(date, city.LSTOffset)
	readings, err := c.Observations.FetchObservations(ctx, city.Station, start, end)
	if err != nil {
		log.Warn().Err(err).Str("city", city.Key).Str("station", city.Station).
			Msg("Historical observations unavailable")
		return nil
	}
	var ex *model.RunningExtreme
	if series == model.SeriesHigh {
		ex = tracker.RunningHigh(readings, city.StationClass)
	} else {
		ex = tracker.RunningLow(readings, city.StationClass)
	}
	if ex == nil {
		return nil
	}
	v := ex.Observed
	return &v
}

func logSourceStatus(city config.City, marketCount int, b *model.ForecastBundle) {
	sources := make([]string, 0, 8)
	if b.NWS != nil {
		sources = append(sources, "nws")
	}
	if b.ECMWF != nil {
		sources = append(sources, "ecmwf")
	}
	if b.GFS != nil {
		sources = append(sources, "gfs")
	}
	if b.GEM != nil {
		sources = append(sources, "gem")
	}
	if b.ICON != nil {
		sources = append(sources, "icon")
	}
	if b.WeatherAPI != nil {
		sources = append(sources, "weatherapi")
	}
	if b.Hourly != nil {
		sources = append(sources, "hourly")
	}
	if b.RunningHigh != nil || b.RunningLow != nil {
		sources = append(sources, "observations")
	}
	log.Info().Str("city", city.Key).Int("markets", marketCount).
		Strs("sources", sources).Msg("City snapshot collected")
}
