package strategy

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/calculator"
	"WeatherEdge/internal/model"
	"WeatherEdge/internal/tracker"
)

// Engine turns a city's markets and forecasts into gap results.
type Engine struct {
	MinGapToShow int // results under this absolute gap are dropped; zero keeps all
}

// DateLabelFor classifies a market as a today or tomorrow event in Eastern
// Time. ok is false for other dates; err reports an unparsable ticker.
func DateLabelFor(m model.Market, etNow time.Time) (label model.DateLabel, ok bool, err error) {
	d, err := m.ResolutionDate()
	if err != nil {
		return "", false, err
	}
	today := time.Date(etNow.Year(), etNow.Month(), etNow.Day(), 0, 0, 0, 0, time.UTC)
	switch {
	case d.Equal(today):
		return model.DateToday, true, nil
	case d.Equal(today.AddDate(0, 0, 1)):
		return model.DateTomorrow, true, nil
	}
	return "", false, nil
}

// Analyze evaluates every market in a city snapshot and returns the results
// sorted by absolute gap, largest first. Markets for other dates are skipped
// silently; unparsable tickers are logged and skipped.
func (e *Engine) Analyze(cityKey string, markets []model.Market, b *model.ForecastBundle, now time.Time, lstOffset int) []model.GapResult {
	etNow := now.In(model.EasternTime())
	lstNow := tracker.LSTNow(now, lstOffset)

	var results []model.GapResult
	for _, m := range markets {
		date, ok, err := DateLabelFor(m, etNow)
		if err != nil {
			log.Warn().Str("city", cityKey).Str("event_ticker", m.EventTicker).Msg("could not parse market date")
			continue
		}
		if !ok {
			continue
		}
		if g := e.Evaluate(m, date, b, lstNow); g != nil {
			results = append(results, *g)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return absInt(results[i].Gap) > absInt(results[j].Gap)
	})
	return results
}

// Evaluate compares one market's quoted price against the model probability
// for its bucket. Returns nil when no estimate is available for the period
// or the gap falls under the display threshold.
func (e *Engine) Evaluate(m model.Market, date model.DateLabel, b *model.ForecastBundle, lstNow time.Time) *model.GapResult {
	// Step a: pick the temperature estimate for the period
	est := SelectEstimate(date, m.Series, b)
	if est == nil {
		return nil
	}

	// Step b: resolve the uncertainty around that estimate
	unc := ResolveUncertainty(date, m.Series, b, est, lstNow)

	// Step c: Gaussian probability for the bucket at the resolved sigma
	prob := int(math.Round(calculator.BucketProbability(m.Bucket, float64(est.Temp), unc.StdDev)))

	// Step d: gap against the quoted price
	gap := prob - m.KalshiProb
	edge := model.BuyNo
	if gap > 0 {
		edge = model.BuyYes
	}
	if absInt(gap) < e.MinGapToShow {
		return nil
	}

	// Step e: confidence and near-settlement classification
	confidence := model.ConfidenceLow
	if prob >= 65 || prob <= 35 {
		confidence = model.ConfidenceHigh
	}
	wasSettled := m.KalshiProb > 90 || m.KalshiProb < 10

	return &model.GapResult{
		Ticker:      m.Ticker,
		Series:      m.Series,
		Bucket:      m.Bucket,
		BucketLabel: m.Label(),
		MarketDate:  date,

		ForecastTemp: est.Temp,
		ProbableMax:  est.ProbableMax,
		ProbableMin:  est.ProbableMin,

		KalshiProb: m.KalshiProb,
		NWSProb:    prob,
		Gap:        gap,
		Edge:       edge,
		Confidence: confidence,
		WasSettled: wasSettled,

		StdDevUsed:      unc.StdDev,
		TimeDecay:       unc.TimeDecay,
		HourlyRemaining: unc.HourlyRemaining,
		HourlyAdjusted:  unc.HourlyAdjusted,

		GridForecast:  est.GridForecast,
		ObservedValue: est.Observed,
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
