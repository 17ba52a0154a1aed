package paper

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/model"
)

// Book holds the open simulated positions, keyed by ticker. Everything
// lives in memory: a restart abandons open positions, and tomorrow-market
// entries survive the midnight reset so they can settle the next day. A
// ticker entered today stays blocked until the day rolls over, even after
// it resolves, so a market cannot be re-bought at a fresh price.
type Book struct {
	mu        sync.Mutex
	positions map[string]*model.PaperPosition
	entered   map[string]bool // tickers opened since the last day rollover
}

// NewBook returns an empty position book.
func NewBook() *Book {
	return &Book{
		positions: make(map[string]*model.PaperPosition),
		entered:   make(map[string]bool),
	}
}

// Open enters a simulated position for a gate-passing result at the current
// quoted price. Re-entry while the ticker is open, or after it already
// traded today, is a silent no-op. Returns the created position, or nil
// when nothing was opened.
func (b *Book) Open(city string, g *model.GapResult, stats model.ModelStats, now time.Time) *model.PaperPosition {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.positions[g.Ticker]; exists {
		return nil
	}
	if b.entered[g.Ticker] {
		return nil
	}

	p := &model.PaperPosition{
		ID:          uuid.NewString(),
		EntryTime:   now,
		City:        city,
		Series:      g.Series,
		BucketLabel: g.BucketLabel,
		Ticker:      g.Ticker,
		Direction:   g.Edge,
		EntryPrice:  g.KalshiProb,

		GapAtEntry:            g.Gap,
		SpreadAtEntry:         stats.Spread,
		StdDevAtEntry:         g.StdDevUsed,
		TimeDecayAtEntry:      g.TimeDecay,
		NWSProbAtEntry:        g.NWSProb,
		ForecastTempAtEntry:   g.ForecastTemp,
		ConsensusAtEntry:      stats.Consensus,
		HourlyAdjustedAtEntry: g.HourlyAdjusted,
	}
	b.positions[g.Ticker] = p
	b.entered[g.Ticker] = true

	log.Info().Msgf("📝 PAPER TRADE: %s %s at %d¢ (gap: %+d%%)", g.Edge, g.Ticker, g.KalshiProb, g.Gap)
	return p
}

// ClearDayEntries drops the entered-today guard at the Eastern day
// rollover. Open positions are untouched.
func (b *Book) ClearDayEntries() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entered = make(map[string]bool)
}

// Resolve closes the position for a settled ticker and returns the finished
// trade. Unsettled results and unknown tickers return nil and change
// nothing, so callers can poll every cycle.
func (b *Book) Resolve(ticker string, result model.Outcome, now time.Time) *model.ResolvedTrade {
	if result != model.OutcomeYes && result != model.OutcomeNo && result != model.OutcomeVoid {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.positions[ticker]
	if !ok {
		return nil
	}
	delete(b.positions, ticker)

	tr := &model.ResolvedTrade{
		PaperPosition: *p,
		ExitTime:      now,
		Result:        result,
		PnLCents:      PnLCents(p.Direction, p.EntryPrice, result),
	}
	log.Info().Msgf("📝 PAPER RESOLVED: %s → %s, PnL: %+d¢", ticker, result, tr.PnLCents)
	return tr
}

// OpenTickers returns the open tickers in stable order.
func (b *Book) OpenTickers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	tickers := make([]string, 0, len(b.positions))
	for t := range b.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// Positions returns copies of the open positions in ticker order.
func (b *Book) Positions() []model.PaperPosition {
	b.mu.Lock()
	defer b.mu.Unlock()

	tickers := make([]string, 0, len(b.positions))
	for t := range b.positions {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	out := make([]model.PaperPosition, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, *b.positions[t])
	}
	return out
}

// Len reports the number of open positions.
func (b *Book) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.positions)
}

// LogMidnightStatus records which positions survive the daily reset. Open
// positions are deliberately kept: tomorrow-market entries need to live
// overnight to resolve the next day.
func (b *Book) LogMidnightStatus() {
	open := b.OpenTickers()
	if len(open) == 0 {
		log.Info().Msg("Paper trading: no open positions at midnight.")
		return
	}
	log.Info().Msgf("paper reset: %d position(s) still open at midnight (will resolve naturally): %v", len(open), open)
}

// PnLCents is the settlement arithmetic for one contract, in cents:
// BUY YES wins 100 minus entry and loses the entry; BUY NO mirrors it.
// Voided markets wash.
func PnLCents(dir model.Direction, entry int, result model.Outcome) int {
	switch {
	case result == model.OutcomeVoid:
		return 0
	case dir == model.BuyYes && result == model.OutcomeYes:
		return 100 - entry
	case dir == model.BuyYes && result == model.OutcomeNo:
		return -entry
	case dir == model.BuyNo && result == model.OutcomeNo:
		return entry
	default:
		return -(100 - entry)
	}
}
