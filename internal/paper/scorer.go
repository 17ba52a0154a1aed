package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/collector"
	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
	"WeatherEdge/internal/recorder"
)

// ActualSource supplies the observed extreme for a past local standard day.
type ActualSource interface {
	ActualExtreme(ctx context.Context, city config.City, date time.Time, series model.SeriesKind) *int
}

// Scorer grades yesterday's recorded signals against actual settlements.
type Scorer struct {
	Recorder recorder.Recorder
	Markets  collector.MarketFetcher
	Actuals  ActualSource
	Cities   map[string]config.City
	Pause    time.Duration // between result fetches; defaults to 150ms
}

// NewScorer wires a scorer over the given data sources.
func NewScorer(rec recorder.Recorder, markets collector.MarketFetcher, actuals ActualSource, cities []config.City) *Scorer {
	byKey := make(map[string]config.City, len(cities))
	for _, c := range cities {
		byKey[c.Key] = c
	}
	return &Scorer{
		Recorder: rec,
		Markets:  markets,
		Actuals:  actuals,
		Cities:   byKey,
		Pause:    150 * time.Millisecond,
	}
}

// ScoreBucket is one slice of the scorecard.
type ScoreBucket struct {
	Total    int
	Correct  int
	PnLCents int
}

// ScoreSummary is one scorer run's result.
type ScoreSummary struct {
	Date     string // scored resolution date "2006-01-02"
	Total    int
	Correct  int
	PnLCents int
	Skipped  int // unsettled or unfetchable this run
	BySeries map[string]*ScoreBucket
	ByCity   map[string]*ScoreBucket
	Rows     []recorder.ResolutionRow
}

// Run scores the signals that settled yesterday relative to etNow. Only
// high-confidence rows that were not already effectively decided count, and
// repeat looks at a ticker collapse to the last one recorded.
func (s *Scorer) Run(ctx context.Context, etNow time.Time) (*ScoreSummary, error) {
	date := etNow.AddDate(0, 0, -1).Format("2006-01-02")
	rows, err := s.Recorder.SignalsByResolutionDate(date)
	if err != nil {
		return nil, fmt.Errorf("load signals: %w", err)
	}

	latest := make(map[string]recorder.SignalRow)
	var order []string
	for _, row := range rows {
		if row.Ticker == "" || row.Confidence != string(model.ConfidenceHigh) || row.WasSettled {
			continue
		}
		if _, seen := latest[row.Ticker]; !seen {
			order = append(order, row.Ticker)
		}
		latest[row.Ticker] = row
	}

	summary := &ScoreSummary{
		Date:     date,
		BySeries: make(map[string]*ScoreBucket),
		ByCity:   make(map[string]*ScoreBucket),
	}
	if len(order) == 0 {
		log.Info().Str("date", date).Msg("No qualifying signals to score")
		return summary, nil
	}
	log.Info().Str("date", date).Int("tickers", len(order)).Msg("Scoring resolved markets")

	actuals := make(map[string]*int)
	for i, ticker := range order {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.pause()):
			}
		}

		row := latest[ticker]
		outcome, provisional, err := s.Markets.FetchResult(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Str("ticker", ticker).Msg("Result fetch failed, skipping")
			summary.Skipped++
			continue
		}
		if outcome == model.OutcomeOpen {
			log.Info().Str("ticker", ticker).Msg("Not settled yet, will retry next run")
			summary.Skipped++
			continue
		}
		if provisional {
			log.Info().Str("ticker", ticker).Msg("Settlement is provisional")
		}

		dir := model.Direction(row.Direction)
		correct := (dir == model.BuyYes && outcome == model.OutcomeYes) ||
			(dir == model.BuyNo && outcome == model.OutcomeNo)
		pnl := PnLCents(dir, row.KalshiPrice, outcome)

		actual := s.actualFor(ctx, actuals, row, date)
		var forecastErr *int
		if actual != nil {
			e := row.ForecastTemp - *actual
			forecastErr = &e
		}

		forecastTemp := row.ForecastTemp
		summary.Rows = append(summary.Rows, recorder.ResolutionRow{
			Date:            date,
			City:            row.City,
			MarketType:      row.MarketType,
			BucketLabel:     row.BucketLabel,
			Ticker:          ticker,
			Direction:       row.Direction,
			KalshiPrice:     row.KalshiPrice,
			NWSImplied:      row.NWSImplied,
			Gap:             row.Gap,
			Result:          string(outcome),
			ResolvedCorrect: correct,
			PnLCents:        pnl,
			ForecastTemp:    &forecastTemp,
			ActualTemp:      actual,
			ForecastError:   forecastErr,
		})

		summary.Total++
		if correct {
			summary.Correct++
		}
		summary.PnLCents += pnl
		bump(summary.BySeries, row.MarketType, correct, pnl)
		bump(summary.ByCity, row.City, correct, pnl)
	}

	if len(summary.Rows) > 0 {
		if err := s.Recorder.AppendResolutions(summary.Rows); err != nil {
			log.Error().Err(err).Msg("Failed to record resolutions")
		}
	}

	log.Info().Str("date", date).
		Int("scored", summary.Total).Int("correct", summary.Correct).
		Int("skipped", summary.Skipped).Int("pnl_cents", summary.PnLCents).
		Msg("Resolution scoring complete")
	return summary, nil
}

// actualFor fetches the observed extreme for a row's city and series,
// memoized per run so each pair costs one observations call.
func (s *Scorer) actualFor(ctx context.Context, cache map[string]*int, row recorder.SignalRow, date string) *int {
	key := row.City + "|" + row.MarketType
	if v, ok := cache[key]; ok {
		return v
	}

	var actual *int
	city, ok := s.Cities[row.City]
	if !ok {
		log.Warn().Str("city", row.City).Msg("City no longer configured, skipping actual lookup")
	} else if day, err := time.Parse("2006-01-02", date); err == nil {
		series := model.SeriesKind(row.MarketType)
		actual = s.Actuals.ActualExtreme(ctx, city, day, series)
	}

	cache[key] = actual
	return actual
}

func (s *Scorer) pause() time.Duration {
	if s.Pause > 0 {
		return s.Pause
	}
	return 150 * time.Millisecond
}

func bump(m map[string]*ScoreBucket, key string, correct bool, pnl int) {
	b := m[key]
	if b == nil {
		b = &ScoreBucket{}
		m[key] = b
	}
	b.Total++
	if correct {
		b.Correct++
	}
	b.PnLCents += pnl
}
