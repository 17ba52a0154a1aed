package model

// Confidence buckets a model probability by its distance from a coin flip.
type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH" // probability at or past 65 / 35
	ConfidenceLow  Confidence = "LOW"
)

// Direction is the suggested side of a price gap.
type Direction string

const (
	BuyYes Direction = "BUY YES"
	BuyNo  Direction = "BUY NO"
)

// GapResult compares the model's bucket probability against the quoted
// price for one market. The engine assembles it once; everything downstream
// treats it as read-only.
type GapResult struct {
	Ticker      string
	Series      SeriesKind
	Bucket      Bucket
	BucketLabel string
	MarketDate  DateLabel

	ForecastTemp int  // estimate fed into the probability model
	ProbableMax  *int // upper bound when a today HIGH runs on observations
	ProbableMin  *int // lower bound when a today LOW runs on observations

	KalshiProb int
	NWSProb    int
	Gap        int // NWSProb - KalshiProb
	Edge       Direction
	Confidence Confidence
	WasSettled bool // quoted past 90 or under 10, market effectively decided

	StdDevUsed      float64
	TimeDecay       float64
	HourlyRemaining *int
	HourlyAdjusted  bool

	GridForecast  *int // raw NWS grid temp for the period, for the record
	ObservedValue *int // running observed value when it supplied the estimate
}

// ModelStats summarizes the forecast ensemble for one market's period.
type ModelStats struct {
	Spread    *int // max minus min, nil below two sources
	Consensus *int // rounded mean, nil with no sources
	Line      string
	HasQuorum bool
}
