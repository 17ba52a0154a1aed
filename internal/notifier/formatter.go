package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"WeatherEdge/internal/model"
	"WeatherEdge/internal/paper"
)

const (
	cardDivider   = "————————————————"
	footerDivider = "──────────────────────"
)

// Signal is one digest-worthy market with its display context. The caller
// applies the quality gate; the formatter only orders and renders.
type Signal struct {
	CityKey  string
	CityName string
	Tier1    bool
	Result   *model.GapResult
	Stats    model.ModelStats
}

// SortSignals orders tier-one cities first, then by absolute gap
// descending within each group. Sorts in place.
func SortSignals(signals []Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].Tier1 != signals[j].Tier1 {
			return signals[i].Tier1
		}
		return absGap(signals[i]) > absGap(signals[j])
	})
}

func absGap(s Signal) int {
	if s.Result.Gap < 0 {
		return -s.Result.Gap
	}
	return s.Result.Gap
}

func renderCards(b *strings.Builder, signals []Signal) {
	for _, s := range signals {
		g := s.Result
		spreadTag := ""
		if s.Stats.Spread != nil && *s.Stats.Spread >= 5 {
			spreadTag = "  ⚠️ HIGH SPREAD"
		}
		fmt.Fprintf(b, "📍 %s — %s %s\n",
			strings.ToUpper(html.EscapeString(s.CityName)), g.Series, html.EscapeString(g.BucketLabel))
		fmt.Fprintf(b, "Kalshi: %d%%\n", g.KalshiProb)
		fmt.Fprintf(b, "Model: %d%% → %s (gap: %+d%%)\n", g.NWSProb, g.Edge, g.Gap)
		b.WriteString(s.Stats.Line + spreadTag + "\n")
		b.WriteString(cardDivider + "\n")
	}
}

// FormatMorningDigest renders the morning briefing: tomorrow's admitted
// markets first, then today's. Input lists arrive gate-filtered.
func FormatMorningDigest(etNow time.Time, tomorrow, today []Signal) string {
	SortSignals(tomorrow)
	SortSignals(today)

	todayDate := etNow.Format("Jan 02")
	tomorrowDate := etNow.AddDate(0, 0, 1).Format("Jan 02")

	var b strings.Builder
	fmt.Fprintf(&b, "🤖 Kalshi Bot · %s · %s\n", todayDate, etNow.Format("3:04 PM"))
	fmt.Fprintf(&b, "%d markets shown\n\n", len(tomorrow)+len(today))

	fmt.Fprintf(&b, "——— TOMORROW %s ———\n\n", tomorrowDate)
	if len(tomorrow) > 0 {
		renderCards(&b, tomorrow)
	} else {
		b.WriteString("No markets with sufficient model data for tomorrow.\n\n")
	}

	if len(today) > 0 {
		fmt.Fprintf(&b, "——— TODAY %s ———\n\n", todayDate)
		renderCards(&b, today)
	}

	b.WriteString(footerDivider + "\n")
	b.WriteString("Not financial advice.")
	return b.String()
}

// FormatEveningDigest renders the end-of-day look at tomorrow's markets.
func FormatEveningDigest(etNow time.Time, tomorrow []Signal) string {
	SortSignals(tomorrow)

	var b strings.Builder
	fmt.Fprintf(&b, "🌙 Kalshi Evening Summary · %s · %s\n\n",
		etNow.Format("Jan 02"), etNow.Format("3:04 PM"))
	fmt.Fprintf(&b, "——— TOP SIGNALS FOR TOMORROW %s ———\n\n",
		etNow.AddDate(0, 0, 1).Format("Jan 02"))

	if len(tomorrow) > 0 {
		renderCards(&b, tomorrow)
	} else {
		b.WriteString("No high-conviction markets pass all filters for tomorrow.\n\n")
	}

	b.WriteString(footerDivider + "\n")
	b.WriteString("Not financial advice.")
	return b.String()
}

// FormatPaperStatus renders the open book and session tally for /paper.
func FormatPaperStatus(positions []model.PaperPosition, resolved, realizedCents int) string {
	var b strings.Builder
	b.WriteString("📝 <b>Paper Trading</b>\n\n")
	if len(positions) == 0 {
		b.WriteString("No open positions.\n")
	} else {
		fmt.Fprintf(&b, "Open positions: %d\n", len(positions))
		for _, p := range positions {
			fmt.Fprintf(&b, "• %s %s %s at %d¢ (gap %+d%%)\n",
				strings.ToUpper(p.City), p.Direction, p.Ticker, p.EntryPrice, p.GapAtEntry)
		}
	}
	fmt.Fprintf(&b, "\nResolved this session: %d (PnL %+d¢)", resolved, realizedCents)
	return b.String()
}

// FormatScoreSummary renders a scorer run for /resolve and the daily post.
func FormatScoreSummary(s *paper.ScoreSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎯 <b>Resolution Scorecard</b> · %s\n\n", s.Date)

	if s.Total == 0 {
		fmt.Fprintf(&b, "No signals to score for %s.", s.Date)
		if s.Skipped > 0 {
			fmt.Fprintf(&b, "\nUnsettled skipped: %d", s.Skipped)
		}
		return b.String()
	}

	pct := 100 * s.Correct / s.Total
	fmt.Fprintf(&b, "Scored: %d · Correct: %d (%d%%) · PnL: %+d¢\n", s.Total, s.Correct, pct, s.PnLCents)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "Unsettled skipped: %d\n", s.Skipped)
	}

	b.WriteString("\nBy market:\n")
	for _, k := range sortedKeys(s.BySeries) {
		v := s.BySeries[k]
		fmt.Fprintf(&b, "• %s: %d/%d, %+d¢\n", k, v.Correct, v.Total, v.PnLCents)
	}
	b.WriteString("\nBy city:\n")
	for _, k := range sortedKeys(s.ByCity) {
		v := s.ByCity[k]
		fmt.Fprintf(&b, "• %s: %d/%d, %+d¢\n", k, v.Correct, v.Total, v.PnLCents)
	}
	return strings.TrimRight(b.String(), "\n")
}

func sortedKeys(m map[string]*paper.ScoreBucket) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StatusInfo is what the /status command reports.
type StatusInfo struct {
	StartedAt   time.Time
	LastCycle   time.Time
	CycleCount  int
	CitiesOK    int
	CityCount   int
	SignalCount int // strong tomorrow signals in the last cycle
	OpenPaper   int
}

// FormatStatus renders the /status reply.
func FormatStatus(info StatusInfo, now time.Time) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Kalshi Weather Bot</b>\n\n")
	fmt.Fprintf(&b, "Uptime: %s\n", now.Sub(info.StartedAt).Round(time.Second))
	fmt.Fprintf(&b, "Cycles run: %d\n", info.CycleCount)
	if info.LastCycle.IsZero() {
		b.WriteString("Last cycle: not yet\n")
	} else {
		fmt.Fprintf(&b, "Last cycle: %s (%d/%d cities, %d signals)\n",
			info.LastCycle.UTC().Format("15:04:05 MST"), info.CitiesOK, info.CityCount, info.SignalCount)
	}
	fmt.Fprintf(&b, "Open paper positions: %d", info.OpenPaper)
	return b.String()
}

// FormatHelp lists the available commands.
func FormatHelp() string {
	return strings.Join([]string{
		"🤖 <b>Kalshi Weather Bot</b>",
		"",
		"/status — bot status and last cycle",
		"/paper — open paper positions",
		"/digest — send the morning-style digest now",
		"/resolve — score yesterday's signals now",
		"/help — this message",
	}, "\n")
}
