package tracker

import (
	"math"
	"strings"
	"time"

	"WeatherEdge/internal/model"
)

// MidnightLST returns the UTC instant of the most recent midnight in a
// station's local standard time. Offsets are fixed standard-time offsets,
// never DST-adjusted: settlement windows run on LST year round.
func MidnightLST(now time.Time, offsetHours int) time.Time {
	lst := now.UTC().Add(time.Duration(offsetHours) * time.Hour)
	mid := time.Date(lst.Year(), lst.Month(), lst.Day(), 0, 0, 0, 0, time.UTC)
	return mid.Add(-time.Duration(offsetHours) * time.Hour)
}

// DayWindowLST returns the UTC start and end of one full LST calendar day.
// The scorer uses this to recompute a finished day's official extreme.
func DayWindowLST(date time.Time, offsetHours int) (start, end time.Time) {
	mid := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	start = mid.Add(-time.Duration(offsetHours) * time.Hour)
	return start, start.Add(24 * time.Hour)
}

// LSTNow shifts a UTC instant onto the station's standard-time clock.
func LSTNow(now time.Time, offsetHours int) time.Time {
	return now.UTC().Add(time.Duration(offsetHours) * time.Hour)
}

// celsius normalizes a reading to Celsius. The observations API reports
// wmoUnit:degC; the unit code is still honored in case that ever changes.
func celsius(r model.Reading) (float64, bool) {
	if r.TempValue == nil {
		return 0, false
	}
	v := *r.TempValue
	if strings.Contains(r.UnitCode, "degF") {
		v = (v - 32) * 5 / 9
	}
	return v, true
}

func floorF(c float64) int { return int(math.Floor(c*9/5 + 32)) }
func roundF(c float64) int { return int(math.Round(c*9/5 + 32)) }

// RunningHigh reduces observations since midnight LST to the official high
// so far today. Five-minute ASOS feeds store truncated Celsius to 0.1°C, so
// the conservative value floors the conversion and Probable carries the
// 0.05°C reporting band. Hourly cooperative stations record whole
// Fahrenheit, which round() recovers exactly.
//
// A Daily Summary Message high (maxTemperatureLast24Hours) may raise both
// values, never lower them. Returns nil when neither a valid reading nor a
// DSM value exists in the window.
func RunningHigh(readings []model.Reading, class model.StationClass) *model.RunningExtreme {
	var observed, probable, dsm *int
	count := 0

	for _, r := range readings {
		if r.Max24h != nil {
			f := floorF(*r.Max24h)
			if dsm == nil || f > *dsm {
				v := f
				dsm = &v
			}
		}

		c, ok := celsius(r)
		if !ok {
			continue
		}
		count++

		var conservative, upper int
		if class == model.StationHourly {
			conservative = roundF(c)
			upper = conservative
		} else {
			conservative = floorF(c)
			upper = floorF(c + 0.05)
		}
		if observed == nil || conservative > *observed {
			v := conservative
			observed = &v
		}
		if probable == nil || upper > *probable {
			v := upper
			probable = &v
		}
	}

	if dsm != nil {
		if observed == nil || *dsm > *observed {
			v := *dsm
			observed = &v
		}
		if probable == nil || *dsm > *probable {
			v := *dsm
			probable = &v
		}
	}
	if observed == nil {
		return nil
	}
	return &model.RunningExtreme{Observed: *observed, Probable: *probable, Count: count}
}

// RunningLow mirrors RunningHigh for daily-low markets. The observations
// API has no minTemperatureLast24Hours, so the time series is the only
// source. Probable is the lower bound from the same 0.05°C band.
func RunningLow(readings []model.Reading, class model.StationClass) *model.RunningExtreme {
	var observed, probable *int
	count := 0

	for _, r := range readings {
		c, ok := celsius(r)
		if !ok {
			continue
		}
		count++

		var conservative, lower int
		if class == model.StationHourly {
			conservative = roundF(c)
			lower = conservative
		} else {
			conservative = floorF(c)
			lower = floorF(c - 0.05)
		}
		if observed == nil || conservative < *observed {
			v := conservative
			observed = &v
		}
		if probable == nil || lower < *probable {
			v := lower
			probable = &v
		}
	}

	if observed == nil {
		return nil
	}
	return &model.RunningExtreme{Observed: *observed, Probable: *probable, Count: count}
}
