package model

import "time"

// PaperPosition is an open simulated position with its entry snapshot.
// Positions live in memory only and do not survive a restart.
type PaperPosition struct {
	ID          string
	EntryTime   time.Time
	City        string
	Series      SeriesKind
	BucketLabel string
	Ticker      string
	Direction   Direction
	EntryPrice  int // quoted price at entry, cents

	GapAtEntry            int
	SpreadAtEntry         *int
	StdDevAtEntry         float64
	TimeDecayAtEntry      float64
	NWSProbAtEntry        int
	ForecastTempAtEntry   int
	ConsensusAtEntry      *int
	HourlyAdjustedAtEntry bool
}

// ResolvedTrade is a closed paper position with its settlement outcome.
type ResolvedTrade struct {
	PaperPosition
	ExitTime time.Time
	Result   Outcome
	PnLCents int
}
