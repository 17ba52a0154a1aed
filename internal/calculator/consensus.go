package calculator

import (
	"fmt"
	"math"
	"strings"

	"WeatherEdge/internal/model"
)

var modelNames = []string{"NWS", "ECMWF", "GFS", "GEM", "ICON", "WAPI"}

// CalculateModelStats builds the ensemble summary for one market period:
// spread (max minus min, nil below two sources), consensus (rounded mean,
// nil with none) and the display line used in alerts.
func CalculateModelStats(b *model.ForecastBundle, date model.DateLabel, series model.SeriesKind) model.ModelStats {
	temps := b.ModelTemps(date, series)

	var present []int
	var parts []string
	for i, t := range temps {
		if t == nil {
			continue
		}
		present = append(present, *t)
		parts = append(parts, fmt.Sprintf("%s %d°", modelNames[i], *t))
	}

	stats := model.ModelStats{HasQuorum: b.HasQuorum(date, series)}

	if len(present) >= 2 {
		mx, mn := present[0], present[0]
		for _, v := range present[1:] {
			if v > mx {
				mx = v
			}
			if v < mn {
				mn = v
			}
		}
		spread := mx - mn
		stats.Spread = &spread
	}
	if len(present) > 0 {
		sum := 0
		for _, v := range present {
			sum += v
		}
		c := int(math.Round(float64(sum) / float64(len(present))))
		stats.Consensus = &c
	}

	if len(parts) == 0 {
		stats.Line = "Models: N/A"
	} else {
		stats.Line = "Models: " + strings.Join(parts, " | ")
		if stats.Spread != nil {
			stats.Line += fmt.Sprintf(" | Spread: %d°", *stats.Spread)
		}
	}
	return stats
}
