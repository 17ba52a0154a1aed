package strategy

import "WeatherEdge/internal/model"

// GateConfig holds the thresholds a result must clear before anyone acts on
// it, whether that is a digest card or a paper entry.
type GateConfig struct {
	MinGap          int // minimum absolute gap
	MaxSpread       int // ensemble spread at or past this rejects
	ConsensusMargin int // allowed distance between consensus and the bucket
}

// DefaultGate carries the production thresholds.
var DefaultGate = GateConfig{MinGap: 15, MaxSpread: 8, ConsensusMargin: 5}

// Admit decides whether a gap result is strong enough to act on. The rules
// are an independent conjunction, so their order never matters:
//
//   - the market must not be effectively settled already
//   - the gap must be meaningful
//   - the ensemble must not be in open disagreement
//   - the consensus, when known, must not contradict the bucket
//
// Callers are expected to check ensemble quorum before asking.
func Admit(g *model.GapResult, stats model.ModelStats, cfg GateConfig) bool {
	if g.WasSettled {
		return false
	}
	if absInt(g.Gap) < cfg.MinGap {
		return false
	}
	if stats.Spread != nil && *stats.Spread >= cfg.MaxSpread {
		return false
	}
	if stats.Consensus != nil {
		c := float64(*stats.Consensus)
		margin := float64(cfg.ConsensusMargin)
		switch g.Bucket.Kind {
		case model.BucketFloor:
			if c < g.Bucket.Floor-margin {
				return false
			}
		case model.BucketCap:
			if c > g.Bucket.Cap+margin {
				return false
			}
		case model.BucketRange:
			if c < g.Bucket.Floor-margin || c > g.Bucket.Cap+margin {
				return false
			}
		}
	}
	return true
}
