package paper

import (
	"testing"
	"time"

	"WeatherEdge/internal/model"
)

func intp(v int) *int { return &v }

func gapFixture(ticker string) *model.GapResult {
	return &model.GapResult{
		Ticker:       ticker,
		Series:       model.SeriesHigh,
		Bucket:       model.Bucket{Kind: model.BucketFloor, Floor: 48},
		BucketLabel:  ">48°F",
		MarketDate:   model.DateTomorrow,
		ForecastTemp: 50,
		KalshiProb:   22,
		NWSProb:      79,
		Gap:          57,
		Edge:         model.BuyYes,
		Confidence:   model.ConfidenceHigh,
		StdDevUsed:   2.5,
		TimeDecay:    1.0,
	}
}

func TestBook_OpenOncePerTicker(t *testing.T) {
	b := NewBook()
	stats := model.ModelStats{Spread: intp(2), Consensus: intp(50)}
	now := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

	first := b.Open("Chicago", gapFixture("KXHIGHCHI-26FEB19-B48.5"), stats, now)
	if first == nil {
		t.Fatal("first entry should open a position")
	}
	if first.EntryPrice != 22 || first.Direction != model.BuyYes {
		t.Errorf("entry price %d direction %s, want 22 BUY YES", first.EntryPrice, first.Direction)
	}
	if first.SpreadAtEntry == nil || *first.SpreadAtEntry != 2 {
		t.Errorf("SpreadAtEntry = %v, want 2", first.SpreadAtEntry)
	}
	if first.ID == "" {
		t.Error("position needs an id")
	}

	// A second admitting cycle must not double up.
	second := b.Open("Chicago", gapFixture("KXHIGHCHI-26FEB19-B48.5"), stats, now.Add(10*time.Minute))
	if second != nil {
		t.Errorf("re-entry while open returned %+v, want nil", second)
	}
	if b.Len() != 1 {
		t.Errorf("Len = %d, want exactly 1", b.Len())
	}
}

func TestBook_ResolveLifecycle(t *testing.T) {
	b := NewBook()
	stats := model.ModelStats{}
	entry := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
	b.Open("Chicago", gapFixture("TKR-A"), stats, entry)

	// Unsettled result leaves the position open for the next cycle.
	if tr := b.Resolve("TKR-A", model.OutcomeOpen, entry.Add(time.Hour)); tr != nil {
		t.Errorf("open outcome resolved the trade: %+v", tr)
	}
	if b.Len() != 1 {
		t.Fatalf("position disappeared before settlement")
	}

	exit := entry.Add(20 * time.Hour)
	tr := b.Resolve("TKR-A", model.OutcomeYes, exit)
	if tr == nil {
		t.Fatal("settled result should close the trade")
	}
	if tr.PnLCents != 78 {
		t.Errorf("PnL = %d, want +78 for BUY YES at 22 winning", tr.PnLCents)
	}
	if !tr.ExitTime.Equal(exit) || tr.Result != model.OutcomeYes {
		t.Errorf("exit %v result %s", tr.ExitTime, tr.Result)
	}
	if b.Len() != 0 {
		t.Errorf("Len = %d after resolve, want 0", b.Len())
	}

	// Resolving an unknown ticker is a no-op.
	if tr := b.Resolve("TKR-A", model.OutcomeYes, exit); tr != nil {
		t.Errorf("second resolve returned %+v", tr)
	}
}

func TestPnLCents(t *testing.T) {
	cases := []struct {
		name   string
		dir    model.Direction
		entry  int
		result model.Outcome
		want   int
	}{
		{"buy yes wins", model.BuyYes, 22, model.OutcomeYes, 78},
		{"buy yes loses", model.BuyYes, 22, model.OutcomeNo, -22},
		{"buy no wins", model.BuyNo, 22, model.OutcomeNo, 22},
		{"buy no loses", model.BuyNo, 22, model.OutcomeYes, -78},
		{"void washes", model.BuyYes, 22, model.OutcomeVoid, 0},
		{"buy yes at 95 wins small", model.BuyYes, 95, model.OutcomeYes, 5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := PnLCents(c.dir, c.entry, c.result); got != c.want {
				t.Errorf("PnLCents(%s, %d, %s) = %d, want %d", c.dir, c.entry, c.result, got, c.want)
			}
		})
	}
}

func TestBook_SameDayReentryAfterResolve(t *testing.T) {
	b := NewBook()
	now := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)

	b.Open("Chicago", gapFixture("TKR-A"), model.ModelStats{}, now)
	if tr := b.Resolve("TKR-A", model.OutcomeYes, now.Add(time.Hour)); tr == nil {
		t.Fatal("resolve failed")
	}

	// Settled today: the ticker stays blocked until the day rolls over.
	if p := b.Open("Chicago", gapFixture("TKR-A"), model.ModelStats{}, now.Add(2*time.Hour)); p != nil {
		t.Errorf("same-day re-entry after resolve opened %+v, want nil", p)
	}

	b.ClearDayEntries()
	if p := b.Open("Chicago", gapFixture("TKR-A"), model.ModelStats{}, now.Add(24*time.Hour)); p == nil {
		t.Error("entry after day rollover should open")
	}
}

func TestBook_OpenTickersSorted(t *testing.T) {
	b := NewBook()
	now := time.Now()
	b.Open("A", gapFixture("ZZZ"), model.ModelStats{}, now)
	b.Open("B", gapFixture("AAA"), model.ModelStats{}, now)

	got := b.OpenTickers()
	if len(got) != 2 || got[0] != "AAA" || got[1] != "ZZZ" {
		t.Errorf("OpenTickers = %v, want [AAA ZZZ]", got)
	}
}
