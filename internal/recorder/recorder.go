package recorder

import (
	"strconv"
	"time"

	"WeatherEdge/internal/model"
)

// SignalRow is one analyzed market bucket at one cycle timestamp, flattened
// for persistence. Pointer fields render as empty CSV cells when nil.
type SignalRow struct {
	Timestamp       string // "2006-01-02 15:04:05"
	City            string
	MarketType      string // HIGH or LOW
	BucketLabel     string
	KalshiPrice     int
	NWSImplied      int
	Gap             int
	Direction       string
	Confidence      string
	WasSettled      bool
	GridForecast    *int
	ObservedRunning *int
	ForecastTemp    int
	ECMWF           *int
	GFS             *int
	GEM             *int
	ICON            *int
	WeatherAPI      *int
	Consensus       *int
	ModelSpread     *int
	StdDevUsed      float64
	TimeDecay       float64
	HourlyRemaining *int
	HourlyAdjusted  bool
	Ticker          string
	MarketDate      string // today or tomorrow
	ResolutionDate  string // "2006-01-02", derived for scorer queries
}

// SignalHeader lists the signal CSV columns in write order. The model
// columns keep their _high names for both series; they carry the value for
// whichever extreme the row's market trades.
var SignalHeader = []string{
	"timestamp", "city", "market_type", "bucket_label", "kalshi_price",
	"nws_implied", "gap", "direction", "confidence", "was_settled",
	"nws_grid_forecast", "observed_running", "forecast_temp_used",
	"ecmwf_high", "gfs_high", "gem_high", "icon_high", "weatherapi_high",
	"consensus_high", "model_spread", "std_dev_used",
	"time_decay_multiplier", "hourly_remaining_extreme", "hourly_adjusted",
	"ticker", "market_date", "resolution_date",
}

// NewSignalRow flattens one gap result with its forecast context. City is
// the registry key so the scorer can find the station again later. The
// resolution date follows the market date label relative to etNow.
func NewSignalRow(now time.Time, etNow time.Time, cityKey string, g *model.GapResult, b *model.ForecastBundle, stats model.ModelStats) SignalRow {
	resolution := etNow
	if g.MarketDate == model.DateTomorrow {
		resolution = etNow.AddDate(0, 0, 1)
	}
	return SignalRow{
		Timestamp:       now.Format("2006-01-02 15:04:05"),
		City:            cityKey,
		MarketType:      string(g.Series),
		BucketLabel:     g.BucketLabel,
		KalshiPrice:     g.KalshiProb,
		NWSImplied:      g.NWSProb,
		Gap:             g.Gap,
		Direction:       string(g.Edge),
		Confidence:      string(g.Confidence),
		WasSettled:      g.WasSettled,
		GridForecast:    g.GridForecast,
		ObservedRunning: g.ObservedValue,
		ForecastTemp:    g.ForecastTemp,
		ECMWF:           b.ECMWF.Value(g.MarketDate, g.Series),
		GFS:             b.GFS.Value(g.MarketDate, g.Series),
		GEM:             b.GEM.Value(g.MarketDate, g.Series),
		ICON:            b.ICON.Value(g.MarketDate, g.Series),
		WeatherAPI:      b.WeatherAPI.Value(g.MarketDate, g.Series),
		Consensus:       stats.Consensus,
		ModelSpread:     stats.Spread,
		StdDevUsed:      g.StdDevUsed,
		TimeDecay:       g.TimeDecay,
		HourlyRemaining: g.HourlyRemaining,
		HourlyAdjusted:  g.HourlyAdjusted,
		Ticker:          g.Ticker,
		MarketDate:      string(g.MarketDate),
		ResolutionDate:  resolution.Format("2006-01-02"),
	}
}

// Record renders the row for CSV export.
func (r SignalRow) Record() []string {
	return []string{
		r.Timestamp, r.City, r.MarketType, r.BucketLabel,
		strconv.Itoa(r.KalshiPrice), strconv.Itoa(r.NWSImplied),
		strconv.Itoa(r.Gap), r.Direction, r.Confidence,
		strconv.FormatBool(r.WasSettled),
		optInt(r.GridForecast), optInt(r.ObservedRunning),
		strconv.Itoa(r.ForecastTemp),
		optInt(r.ECMWF), optInt(r.GFS), optInt(r.GEM), optInt(r.ICON),
		optInt(r.WeatherAPI), optInt(r.Consensus), optInt(r.ModelSpread),
		formatFloat(r.StdDevUsed), formatFloat(r.TimeDecay),
		optInt(r.HourlyRemaining), strconv.FormatBool(r.HourlyAdjusted),
		r.Ticker, r.MarketDate, r.ResolutionDate,
	}
}

// PaperTradeRow is one simulated trade. Inserted at entry with the exit
// fields empty, completed in place at resolution.
type PaperTradeRow struct {
	ID                    string // position uuid, primary key
	EntryTime             string
	ExitTime              string
	City                  string
	MarketType            string
	BucketLabel           string
	Ticker                string
	Direction             string
	EntryPrice            int
	ExitResult            string
	PnLCents              *int // nil while open
	GapAtEntry            int
	SpreadAtEntry         *int
	StdDevAtEntry         float64
	TimeDecayAtEntry      float64
	NWSProbAtEntry        int
	ForecastTempAtEntry   int
	ConsensusAtEntry      *int
	HourlyAdjustedAtEntry bool
}

// PaperHeader lists the paper-trade CSV columns in write order.
var PaperHeader = []string{
	"entry_time", "exit_time", "city", "market_type", "bucket_label",
	"ticker", "direction", "entry_price", "exit_result", "pnl_cents",
	"gap_at_entry", "spread_at_entry", "std_dev_at_entry",
	"time_decay_at_entry", "nws_prob_at_entry", "forecast_temp_at_entry",
	"consensus_at_entry", "hourly_adjusted_at_entry",
}

// NewPaperEntryRow flattens a freshly opened position.
func NewPaperEntryRow(p *model.PaperPosition) PaperTradeRow {
	return PaperTradeRow{
		ID:                    p.ID,
		EntryTime:             p.EntryTime.Format("2006-01-02 15:04:05"),
		City:                  p.City,
		MarketType:            string(p.Series),
		BucketLabel:           p.BucketLabel,
		Ticker:                p.Ticker,
		Direction:             string(p.Direction),
		EntryPrice:            p.EntryPrice,
		GapAtEntry:            p.GapAtEntry,
		SpreadAtEntry:         p.SpreadAtEntry,
		StdDevAtEntry:         p.StdDevAtEntry,
		TimeDecayAtEntry:      p.TimeDecayAtEntry,
		NWSProbAtEntry:        p.NWSProbAtEntry,
		ForecastTempAtEntry:   p.ForecastTempAtEntry,
		ConsensusAtEntry:      p.ConsensusAtEntry,
		HourlyAdjustedAtEntry: p.HourlyAdjustedAtEntry,
	}
}

// Record renders the row for CSV export.
func (r PaperTradeRow) Record() []string {
	return []string{
		r.EntryTime, r.ExitTime, r.City, r.MarketType, r.BucketLabel,
		r.Ticker, r.Direction, strconv.Itoa(r.EntryPrice), r.ExitResult,
		optInt(r.PnLCents), strconv.Itoa(r.GapAtEntry),
		optInt(r.SpreadAtEntry), formatFloat(r.StdDevAtEntry),
		formatFloat(r.TimeDecayAtEntry), strconv.Itoa(r.NWSProbAtEntry),
		strconv.Itoa(r.ForecastTempAtEntry), optInt(r.ConsensusAtEntry),
		strconv.FormatBool(r.HourlyAdjustedAtEntry),
	}
}

// ResolutionRow is one scored historical signal.
type ResolutionRow struct {
	Date            string // resolution date "2006-01-02"
	City            string
	MarketType      string
	BucketLabel     string
	Ticker          string
	Direction       string
	KalshiPrice     int
	NWSImplied      int
	Gap             int
	Result          string
	ResolvedCorrect bool
	PnLCents        int
	ForecastTemp    *int
	ActualTemp      *int
	ForecastError   *int
}

// ResolutionHeader lists the resolution CSV columns in write order.
var ResolutionHeader = []string{
	"date", "city", "market_type", "bucket_label", "ticker", "direction",
	"kalshi_price", "nws_implied", "gap", "result", "resolved_correct",
	"pnl_cents", "forecast_temp_used", "actual_temp", "forecast_error",
}

// Record renders the row for CSV export.
func (r ResolutionRow) Record() []string {
	return []string{
		r.Date, r.City, r.MarketType, r.BucketLabel, r.Ticker, r.Direction,
		strconv.Itoa(r.KalshiPrice), strconv.Itoa(r.NWSImplied),
		strconv.Itoa(r.Gap), r.Result, strconv.FormatBool(r.ResolvedCorrect),
		strconv.Itoa(r.PnLCents), optInt(r.ForecastTemp),
		optInt(r.ActualTemp), optInt(r.ForecastError),
	}
}

// Recorder persists signal, paper-trade, and resolution history.
type Recorder interface {
	AppendSignals(rows []SignalRow) error
	InsertPaperEntry(row PaperTradeRow) error
	CompletePaperTrade(id, exitTime, result string, pnlCents int) error
	AppendResolutions(rows []ResolutionRow) error
	SignalsByResolutionDate(date string) ([]SignalRow, error)
	AllSignals() ([]SignalRow, error)
	AllPaperTrades() ([]PaperTradeRow, error)
	AllResolutions() ([]ResolutionRow, error)
	Close() error
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
