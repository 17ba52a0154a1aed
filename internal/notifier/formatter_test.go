package notifier

import (
	"strings"
	"testing"
	"time"

	"WeatherEdge/internal/model"
	"WeatherEdge/internal/paper"
)

func intp(v int) *int { return &v }

func signal(city string, tier1 bool, gap int, spread *int) Signal {
	edge := model.BuyYes
	if gap < 0 {
		edge = model.BuyNo
	}
	return Signal{
		CityKey:  strings.ToUpper(city[:3]),
		CityName: city,
		Tier1:    tier1,
		Result: &model.GapResult{
			Ticker:      "KXHIGH-TEST",
			Series:      model.SeriesHigh,
			BucketLabel: "51° or above",
			KalshiProb:  62,
			NWSProb:     62 + gap,
			Gap:         gap,
			Edge:        edge,
		},
		Stats: model.ModelStats{
			Spread: spread,
			Line:   "Models: NWS 79° | ECMWF 78° | Spread: 1°",
		},
	}
}

func TestSortSignals(t *testing.T) {
	signals := []Signal{
		signal("Denver", false, 30, nil),
		signal("Miami", true, 16, nil),
		signal("Chicago", false, -22, nil),
		signal("New York City", true, -19, nil),
	}
	SortSignals(signals)

	var got []string
	for _, s := range signals {
		got = append(got, s.CityName)
	}
	want := []string{"New York City", "Miami", "Denver", "Chicago"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestFormatMorningDigest(t *testing.T) {
	etNow := time.Date(2026, 2, 18, 7, 5, 0, 0, time.UTC)
	tomorrow := []Signal{signal("New York City", true, 17, intp(1))}

	got := FormatMorningDigest(etNow, tomorrow, nil)
	want := strings.Join([]string{
		"🤖 Kalshi Bot · Feb 18 · 7:05 AM",
		"1 markets shown",
		"",
		"——— TOMORROW Feb 19 ———",
		"",
		"📍 NEW YORK CITY — HIGH 51° or above",
		"Kalshi: 62%",
		"Model: 79% → BUY YES (gap: +17%)",
		"Models: NWS 79° | ECMWF 78° | Spread: 1°",
		"————————————————",
		"──────────────────────",
		"Not financial advice.",
	}, "\n")
	if got != want {
		t.Errorf("digest mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatMorningDigestSections(t *testing.T) {
	etNow := time.Date(2026, 2, 18, 7, 10, 0, 0, time.UTC)
	today := []Signal{signal("Chicago", true, -20, nil)}

	got := FormatMorningDigest(etNow, nil, today)
	if !strings.Contains(got, "No markets with sufficient model data for tomorrow.") {
		t.Errorf("missing tomorrow fallback:\n%s", got)
	}
	if !strings.Contains(got, "——— TODAY Feb 18 ———") {
		t.Errorf("missing today section:\n%s", got)
	}
	if !strings.Contains(got, "1 markets shown") {
		t.Errorf("count line = wrong:\n%s", got)
	}
}

func TestFormatEveningDigest(t *testing.T) {
	etNow := time.Date(2026, 2, 18, 20, 0, 0, 0, time.UTC)

	got := FormatEveningDigest(etNow, nil)
	if !strings.HasPrefix(got, "🌙 Kalshi Evening Summary · Feb 18 · 8:00 PM") {
		t.Errorf("header = wrong:\n%s", got)
	}
	if !strings.Contains(got, "——— TOP SIGNALS FOR TOMORROW Feb 19 ———") {
		t.Errorf("missing section header:\n%s", got)
	}
	if !strings.Contains(got, "No high-conviction markets pass all filters for tomorrow.") {
		t.Errorf("missing fallback:\n%s", got)
	}
	if !strings.HasSuffix(got, "Not financial advice.") {
		t.Errorf("missing footer:\n%s", got)
	}
}

func TestCardSpreadTagAndEscaping(t *testing.T) {
	s := signal("Denver", false, 20, intp(6))
	s.Result.BucketLabel = "<40°F"
	etNow := time.Date(2026, 2, 18, 20, 0, 0, 0, time.UTC)

	got := FormatEveningDigest(etNow, []Signal{s})
	if !strings.Contains(got, "⚠️ HIGH SPREAD") {
		t.Errorf("spread tag missing:\n%s", got)
	}
	if !strings.Contains(got, "HIGH &lt;40°F") {
		t.Errorf("label not escaped:\n%s", got)
	}
	if strings.Contains(got, "HIGH <40°F") {
		t.Errorf("raw label leaked:\n%s", got)
	}
}

func TestCardSpreadTagBelowThreshold(t *testing.T) {
	s := signal("Denver", false, 20, intp(4))
	got := FormatEveningDigest(time.Date(2026, 2, 18, 20, 0, 0, 0, time.UTC), []Signal{s})
	if strings.Contains(got, "HIGH SPREAD") {
		t.Errorf("spread tag should need 5 or more:\n%s", got)
	}
}

func TestFormatPaperStatus(t *testing.T) {
	got := FormatPaperStatus(nil, 0, 0)
	if !strings.Contains(got, "No open positions.") {
		t.Errorf("empty book = %q", got)
	}

	positions := []model.PaperPosition{{
		City:       "NYC",
		Series:     model.SeriesHigh,
		Ticker:     "KXHIGHNY-26FEB18-B51",
		Direction:  model.BuyYes,
		EntryPrice: 62,
		GapAtEntry: 17,
	}}
	got = FormatPaperStatus(positions, 3, 42)
	if !strings.Contains(got, "Open positions: 1") {
		t.Errorf("missing count:\n%s", got)
	}
	if !strings.Contains(got, "• NYC BUY YES KXHIGHNY-26FEB18-B51 at 62¢ (gap +17%)") {
		t.Errorf("position line = wrong:\n%s", got)
	}
	if !strings.Contains(got, "Resolved this session: 3 (PnL +42¢)") {
		t.Errorf("tally line = wrong:\n%s", got)
	}
}

func TestFormatScoreSummary(t *testing.T) {
	s := &paper.ScoreSummary{
		Date:     "2026-02-17",
		Total:    3,
		Correct:  2,
		PnLCents: 93,
		Skipped:  1,
		BySeries: map[string]*paper.ScoreBucket{
			"HIGH": {Total: 2, Correct: 2, PnLCents: 138},
			"LOW":  {Total: 1, Correct: 0, PnLCents: -45},
		},
		ByCity: map[string]*paper.ScoreBucket{
			"NYC": {Total: 2, Correct: 2, PnLCents: 138},
			"CHI": {Total: 1, Correct: 0, PnLCents: -45},
		},
	}

	got := FormatScoreSummary(s)
	if !strings.Contains(got, "Scored: 3 · Correct: 2 (66%) · PnL: +93¢") {
		t.Errorf("summary line = wrong:\n%s", got)
	}
	if !strings.Contains(got, "Unsettled skipped: 1") {
		t.Errorf("missing skipped line:\n%s", got)
	}
	if !strings.Contains(got, "• HIGH: 2/2, +138¢") || !strings.Contains(got, "• LOW: 0/1, -45¢") {
		t.Errorf("series lines = wrong:\n%s", got)
	}
	// map keys render sorted
	if strings.Index(got, "• CHI:") > strings.Index(got, "• NYC:") {
		t.Errorf("city lines not sorted:\n%s", got)
	}
}

func TestFormatScoreSummaryEmpty(t *testing.T) {
	got := FormatScoreSummary(&paper.ScoreSummary{Date: "2026-02-17"})
	if !strings.Contains(got, "No signals to score for 2026-02-17.") {
		t.Errorf("empty summary = %q", got)
	}
}

func TestFormatStatus(t *testing.T) {
	now := time.Date(2026, 2, 18, 15, 0, 0, 0, time.UTC)
	info := StatusInfo{
		StartedAt:   now.Add(-90 * time.Minute),
		LastCycle:   now.Add(-3 * time.Minute),
		CycleCount:  9,
		CitiesOK:    18,
		CityCount:   20,
		SignalCount: 4,
		OpenPaper:   2,
	}

	got := FormatStatus(info, now)
	if !strings.Contains(got, "Uptime: 1h30m0s") {
		t.Errorf("uptime = wrong:\n%s", got)
	}
	if !strings.Contains(got, "Last cycle: 14:57:00 UTC (18/20 cities, 4 signals)") {
		t.Errorf("cycle line = wrong:\n%s", got)
	}
	if !strings.Contains(got, "Open paper positions: 2") {
		t.Errorf("missing open positions:\n%s", got)
	}

	fresh := FormatStatus(StatusInfo{StartedAt: now}, now)
	if !strings.Contains(fresh, "Last cycle: not yet") {
		t.Errorf("fresh status = wrong:\n%s", fresh)
	}
}
