package calculator

import (
	"math"

	"github.com/rs/zerolog/log"

	"WeatherEdge/internal/model"
)

// Phi is the standard normal cumulative distribution function.
func Phi(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// BucketProbability returns the probability, in percent, that the day's
// extreme settles inside the bucket when the temperature estimate is
// Normal(mean, sigma). Unknown bucket kinds fall back to a coin flip.
func BucketProbability(bucket model.Bucket, mean, sigma float64) float64 {
	switch bucket.Kind {
	case model.BucketFloor:
		return (1 - Phi((bucket.Floor-mean)/sigma)) * 100
	case model.BucketCap:
		return Phi((bucket.Cap-mean)/sigma) * 100
	case model.BucketRange:
		return (Phi((bucket.Cap-mean)/sigma) - Phi((bucket.Floor-mean)/sigma)) * 100
	default:
		log.Warn().Str("kind", string(bucket.Kind)).Msg("unknown bucket kind, assuming coin flip")
		return 50
	}
}
