package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/config"
	"WeatherEdge/internal/model"
)

// KalshiFetcher talks to the exchange's public market-data API. No
// authentication: this bot only ever reads.
type KalshiFetcher struct {
	Client  *http.Client
	BaseURL string
}

// NewKalshiFetcher creates a fetcher against the given API base URL.
func NewKalshiFetcher(baseURL string) *KalshiFetcher {
	return &KalshiFetcher{
		Client:  &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
	}
}

func (f *KalshiFetcher) Name() string { return "kalshi" }

// kalshiMarket is the wire shape of one market object.
type kalshiMarket struct {
	Ticker        string   `json:"ticker"`
	EventTicker   string   `json:"event_ticker"`
	StrikeType    string   `json:"strike_type"`
	FloorStrike   *float64 `json:"floor_strike"`
	CapStrike     *float64 `json:"cap_strike"`
	Subtitle      string   `json:"subtitle"`
	LastPrice     int      `json:"last_price"`
	YesAsk        int      `json:"yes_ask"`
	YesBid        int      `json:"yes_bid"`
	CloseTime     string   `json:"close_time"`
	Result        string   `json:"result"`
	IsProvisional bool     `json:"is_provisional"`
}

// FetchMarkets pulls open markets for the city's high-temperature series
// and, when configured, its low-temperature series.
func (f *KalshiFetcher) FetchMarkets(ctx context.Context, city config.City) ([]model.Market, error) {
	type seriesReq struct {
		ticker string
		kind   model.SeriesKind
	}
	reqs := []seriesReq{{city.HighSeries, model.SeriesHigh}}
	if city.LowSeries != "" {
		reqs = append(reqs, seriesReq{city.LowSeries, model.SeriesLow})
	}

	var out []model.Market
	for _, r := range reqs {
		raw, err := f.fetchSeries(ctx, r.ticker)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", r.ticker, err)
		}
		for _, km := range raw {
			if m, ok := classifyMarket(city.Key, km, r.kind); ok {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (f *KalshiFetcher) fetchSeries(ctx context.Context, seriesTicker string) ([]kalshiMarket, error) {
	u := fmt.Sprintf("%s/markets?series_ticker=%s&status=open&limit=100",
		f.BaseURL, url.QueryEscape(seriesTicker))
	body, err := f.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var payload struct {
		Markets []kalshiMarket `json:"markets"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("kalshi decode: %w", err)
	}
	return payload.Markets, nil
}

// FetchResult returns a single market's settlement. Unsettled and unknown
// tickers come back open with a nil error so resolution loops keep going.
func (f *KalshiFetcher) FetchResult(ctx context.Context, ticker string) (model.Outcome, bool, error) {
	u := fmt.Sprintf("%s/markets/%s", f.BaseURL, url.PathEscape(ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return model.OutcomeOpen, false, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return model.OutcomeOpen, false, fmt.Errorf("kalshi fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.OutcomeOpen, false, fmt.Errorf("kalshi read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		log.Warn().Str("ticker", ticker).Msg("Market not found, skipping result check")
		return model.OutcomeOpen, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return model.OutcomeOpen, false, fmt.Errorf("kalshi: status %d, body: %s", resp.StatusCode, string(body))
	}

	// Single-market responses wrap the object in {"market": {...}}. Handle a
	// bare object too in case that ever changes.
	var wrapped struct {
		Market *kalshiMarket `json:"market"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return model.OutcomeOpen, false, fmt.Errorf("kalshi decode: %w", err)
	}
	m := wrapped.Market
	if m == nil {
		var bare kalshiMarket
		if err := json.Unmarshal(body, &bare); err != nil {
			return model.OutcomeOpen, false, fmt.Errorf("kalshi decode: %w", err)
		}
		m = &bare
	}

	switch m.Result {
	case "yes":
		return model.OutcomeYes, m.IsProvisional, nil
	case "no":
		return model.OutcomeNo, m.IsProvisional, nil
	case "void":
		return model.OutcomeVoid, m.IsProvisional, nil
	}
	return model.OutcomeOpen, false, nil
}

func (f *KalshiFetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kalshi fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("kalshi read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kalshi: status %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// classifyMarket maps a wire market onto a temperature bucket. Markets
// with an unknown strike type or missing strikes are logged and dropped:
// the exchange may list shapes this bot does not price.
func classifyMarket(cityKey string, km kalshiMarket, kind model.SeriesKind) (model.Market, bool) {
	var bucket model.Bucket
	switch km.StrikeType {
	case "greater":
		if km.FloorStrike == nil {
			log.Warn().Str("city", cityKey).Str("ticker", km.Ticker).
				Msg("Threshold market missing floor_strike, skipping")
			return model.Market{}, false
		}
		bucket = model.Bucket{Kind: model.BucketFloor, Floor: *km.FloorStrike}
	case "less":
		if km.CapStrike == nil {
			log.Warn().Str("city", cityKey).Str("ticker", km.Ticker).
				Msg("Cap market missing cap_strike, skipping")
			return model.Market{}, false
		}
		bucket = model.Bucket{Kind: model.BucketCap, Cap: *km.CapStrike}
	case "between":
		if km.FloorStrike == nil || km.CapStrike == nil {
			log.Warn().Str("city", cityKey).Str("ticker", km.Ticker).
				Msg("Range market missing strikes, skipping")
			return model.Market{}, false
		}
		bucket = model.Bucket{Kind: model.BucketRange, Floor: *km.FloorStrike, Cap: *km.CapStrike}
	default:
		log.Warn().Str("city", cityKey).Str("ticker", km.Ticker).
			Str("strike_type", km.StrikeType).Msg("Unknown strike type, skipping")
		return model.Market{}, false
	}

	return model.Market{
		Ticker:      km.Ticker,
		EventTicker: km.EventTicker,
		Series:      kind,
		Bucket:      bucket,
		Subtitle:    km.Subtitle,
		KalshiProb:  km.LastPrice,
		YesAsk:      km.YesAsk,
		YesBid:      km.YesBid,
		CloseTime:   km.CloseTime,
	}, true
}
