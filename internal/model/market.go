package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeriesKind distinguishes daily-high from daily-low market series.
type SeriesKind string

const (
	SeriesHigh SeriesKind = "HIGH"
	SeriesLow  SeriesKind = "LOW"
)

// BucketKind is the payout shape of a temperature bracket.
type BucketKind string

const (
	BucketFloor BucketKind = "FLOOR" // YES if the extreme ends above Floor
	BucketCap   BucketKind = "CAP"   // YES if the extreme ends below Cap
	BucketRange BucketKind = "RANGE" // YES if the extreme lands in [Floor, Cap]
)

// Bucket is a market's temperature bracket. Floor and Cap are populated
// according to Kind: FLOOR sets Floor, CAP sets Cap, RANGE sets both.
type Bucket struct {
	Kind  BucketKind
	Floor float64
	Cap   float64
}

// Market is one tradable bucket of a daily temperature event.
type Market struct {
	Ticker      string
	EventTicker string
	Series      SeriesKind
	Bucket      Bucket
	Subtitle    string
	KalshiProb  int // last_price in cents, 0-100 = implied probability
	YesAsk      int
	YesBid      int
	CloseTime   string
}

// Label returns a short human-readable bracket label, e.g. ">51°F" or
// "48–49°F". The exchange subtitle wins when present.
func (m Market) Label() string {
	if m.Subtitle != "" {
		return m.Subtitle
	}
	switch m.Bucket.Kind {
	case BucketFloor:
		return ">" + trimFloat(m.Bucket.Floor) + "°F"
	case BucketCap:
		return "<" + trimFloat(m.Bucket.Cap) + "°F"
	default:
		return trimFloat(m.Bucket.Floor) + "–" + trimFloat(m.Bucket.Cap) + "°F"
	}
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ResolutionDate extracts the calendar day this market settles on from the
// event ticker, whose last dash-separated segment is a token like "26FEB18".
func (m Market) ResolutionDate() (time.Time, error) {
	parts := strings.Split(m.EventTicker, "-")
	return ParseDateToken(parts[len(parts)-1])
}

// ParseDateToken parses an exchange date token such as "26FEB18". Tokens
// arrive upper-case but time.Parse wants title-case month names.
func ParseDateToken(token string) (time.Time, error) {
	if len(token) != 7 {
		return time.Time{}, fmt.Errorf("date token %q: want YYMMMDD", token)
	}
	norm := token[:2] + strings.ToUpper(token[2:3]) + strings.ToLower(token[3:5]) + token[5:]
	t, err := time.Parse("06Jan02", norm)
	if err != nil {
		return time.Time{}, fmt.Errorf("date token %q: %w", token, err)
	}
	return t, nil
}

// Outcome is a market's settlement result as reported by the exchange.
type Outcome string

const (
	OutcomeYes  Outcome = "yes"
	OutcomeNo   Outcome = "no"
	OutcomeVoid Outcome = "void"
	OutcomeOpen Outcome = "" // not settled yet
)
