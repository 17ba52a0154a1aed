package strategy

import (
	"time"

	"WeatherEdge/internal/model"
)

// Estimate is the temperature choice for one market period.
type Estimate struct {
	Temp         int
	Observed     *int // set when live observations supplied the estimate
	ProbableMax  *int // upper bound for a today HIGH running on observations
	ProbableMin  *int // lower bound for a today LOW running on observations
	GridForecast *int // raw NWS grid value for the period, kept for the record
}

// SelectEstimate picks the temperature estimate for a market period. Today's
// markets prefer the conservative running observation once one exists, since
// a reading on the board beats a forecast issued hours earlier. Tomorrow
// always runs on the NWS grid. Returns nil when no temperature is available
// for the period yet.
func SelectEstimate(date model.DateLabel, series model.SeriesKind, b *model.ForecastBundle) *Estimate {
	grid := b.NWS.Value(date, series)
	est := &Estimate{GridForecast: grid}

	if date == model.DateToday {
		if series == model.SeriesHigh && b.RunningHigh != nil {
			obs, prob := b.RunningHigh.Observed, b.RunningHigh.Probable
			est.Temp = obs
			est.Observed = &obs
			est.ProbableMax = &prob
			return est
		}
		if series == model.SeriesLow && b.RunningLow != nil {
			obs, prob := b.RunningLow.Observed, b.RunningLow.Probable
			est.Temp = obs
			est.Observed = &obs
			est.ProbableMin = &prob
			return est
		}
	}
	if grid == nil {
		return nil
	}
	est.Temp = *grid
	return est
}

// Uncertainty is the resolved standard deviation with its adjustment trail.
type Uncertainty struct {
	StdDev          float64
	TimeDecay       float64
	HourlyRemaining *int
	HourlyAdjusted  bool
}

// Standard deviations by ensemble agreement, °F.
const (
	sigmaBaseline = 2.5 // one-day-out forecast
	sigmaTight    = 2.0 // spread under 1°F, models agree
	sigmaWide     = 4.0 // spread over 3°F, models diverge
)

// ResolveUncertainty runs the standard deviation pipeline for one market:
// spread banding, then intraday time decay, then hourly corroboration.
// The stages apply in that order and both adjustments clamp at 1.0 so the
// curve never collapses. The estimate itself is never touched here.
func ResolveUncertainty(date model.DateLabel, series model.SeriesKind, b *model.ForecastBundle, est *Estimate, lstNow time.Time) Uncertainty {
	u := Uncertainty{StdDev: sigmaBaseline, TimeDecay: 1.0}

	var temps []int
	for _, t := range b.ModelTemps(date, series) {
		if t != nil {
			temps = append(temps, *t)
		}
	}
	if len(temps) >= 2 {
		mx, mn := temps[0], temps[0]
		for _, v := range temps[1:] {
			if v > mx {
				mx = v
			}
			if v < mn {
				mn = v
			}
		}
		switch spread := mx - mn; {
		case spread < 1:
			u.StdDev = sigmaTight
		case spread > 3:
			u.StdDev = sigmaWide
		}
	}

	// Time decay applies only to today's markets once observations exist.
	// Tomorrow's markets keep full uncertainty.
	if date == model.DateToday && est.Observed != nil {
		hour := lstNow.Hour()
		switch series {
		case model.SeriesHigh:
			// Daily highs land between 10 AM and 5 PM LST.
			switch {
			case hour >= 17:
				u.TimeDecay = 0.3
			case hour >= 14:
				u.TimeDecay = 0.5
			case hour >= 10:
				u.TimeDecay = 0.75
			}
			u.StdDev = max(u.StdDev*u.TimeDecay, 1.0)
		case model.SeriesLow:
			// Overnight lows pass near sunrise, but after 6 PM temps fall
			// toward tomorrow's low again, so evening widens back out.
			switch {
			case hour >= 18:
				u.TimeDecay = 1.0
			case hour >= 12:
				u.TimeDecay = 0.3
			case hour >= 8:
				u.TimeDecay = 0.5
			case hour >= 4:
				u.TimeDecay = 0.75
			}
			u.StdDev = max(u.StdDev*u.TimeDecay, 1.0)
		}
	}

	// Hourly corroboration: when the hourly model says the rest of today
	// will not beat the running extreme, tighten one more notch.
	if date == model.DateToday && est.Observed != nil && len(b.Hourly) > 0 {
		remaining := RemainingExtreme(b.Hourly, series, lstNow)
		u.HourlyRemaining = remaining
		if remaining != nil {
			if (series == model.SeriesHigh && *remaining < *est.Observed) ||
				(series == model.SeriesLow && *remaining > *est.Observed) {
				u.StdDev = max(u.StdDev*0.7, 1.0)
				u.HourlyAdjusted = true
			}
		}
	}
	return u
}

const hourlyLayout = "2006-01-02T15:04"

// RemainingExtreme scans an hourly forecast for what the rest of today still
// holds: the max (HIGH) or min (LOW) across hours on the current LST date
// strictly after the current LST hour. Returns nil when none remain.
func RemainingExtreme(hourly map[string]int, series model.SeriesKind, lstNow time.Time) *int {
	var out *int
	for ts, temp := range hourly {
		dt, err := time.Parse(hourlyLayout, ts)
		if err != nil {
			continue
		}
		if dt.Year() != lstNow.Year() || dt.YearDay() != lstNow.YearDay() {
			continue
		}
		if dt.Hour() <= lstNow.Hour() {
			continue
		}
		if out == nil ||
			(series == model.SeriesHigh && temp > *out) ||
			(series == model.SeriesLow && temp < *out) {
			v := temp
			out = &v
		}
	}
	return out
}
