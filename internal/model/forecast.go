package model

// DateLabel identifies which event day a market settles on, in Eastern Time.
type DateLabel string

const (
	DateToday    DateLabel = "today"
	DateTomorrow DateLabel = "tomorrow"
)

// StationClass tells how a station reports temperature, which decides how
// readings convert to whole Fahrenheit.
type StationClass string

const (
	// StationFiveMinute is a standard ASOS feed. Values are truncated
	// Celsius, so the conversion floors and carries a rounding band.
	StationFiveMinute StationClass = "5-minute"
	// StationHourly is a cooperative observer reporting rounded Celsius.
	StationHourly StationClass = "hourly"
)

// Reading is one raw station observation.
type Reading struct {
	TempValue *float64 // as reported, nil when the feed had null
	UnitCode  string   // e.g. "wmoUnit:degC"
	Max24h    *float64 // maxTemperatureLast24Hours in Celsius, when present
}

// RunningExtreme is the observed extreme since midnight local standard time.
type RunningExtreme struct {
	Observed int // conservative whole-degree Fahrenheit value
	Probable int // bound after accounting for truncated Celsius reports
	Count    int // valid observations inside the window
}

// DayForecast carries one source's high/low outlook for today and tomorrow.
// Nil fields mean the source did not report that period.
type DayForecast struct {
	TodayHigh    *int
	TodayLow     *int
	TomorrowHigh *int
	TomorrowLow  *int
}

// Value returns the forecast temperature for a date label and series.
func (d *DayForecast) Value(date DateLabel, series SeriesKind) *int {
	if d == nil {
		return nil
	}
	switch {
	case date == DateToday && series == SeriesHigh:
		return d.TodayHigh
	case date == DateToday && series == SeriesLow:
		return d.TodayLow
	case date == DateTomorrow && series == SeriesHigh:
		return d.TomorrowHigh
	default:
		return d.TomorrowLow
	}
}

// ForecastBundle is everything collected for one city in one cycle.
type ForecastBundle struct {
	NWS         *DayForecast
	ECMWF       *DayForecast
	GFS         *DayForecast
	GEM         *DayForecast
	ICON        *DayForecast
	WeatherAPI  *DayForecast
	Hourly      map[string]int // "2006-01-02T15:04" station-local → °F
	RunningHigh *RunningExtreme
	RunningLow  *RunningExtreme
}

// ModelTemps returns the ensemble temperatures for a period in fixed order:
// NWS, ECMWF, GFS, GEM, ICON, WeatherAPI. Missing sources yield nil entries.
func (b *ForecastBundle) ModelTemps(date DateLabel, series SeriesKind) []*int {
	return []*int{
		b.NWS.Value(date, series),
		b.ECMWF.Value(date, series),
		b.GFS.Value(date, series),
		b.GEM.Value(date, series),
		b.ICON.Value(date, series),
		b.WeatherAPI.Value(date, series),
	}
}

// HasQuorum reports whether NWS plus at least one other source cover the
// period. Gap analysis is skipped without a quorum.
func (b *ForecastBundle) HasQuorum(date DateLabel, series SeriesKind) bool {
	if b.NWS.Value(date, series) == nil {
		return false
	}
	for _, t := range b.ModelTemps(date, series)[1:] {
		if t != nil {
			return true
		}
	}
	return false
}
