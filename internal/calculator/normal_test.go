package calculator

import (
	"math"
	"testing"

	"WeatherEdge/internal/model"
)

func TestPhi_Midpoint(t *testing.T) {
	if got := Phi(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Phi(0) = %v, want 0.5", got)
	}
}

func TestBucketProbability_FloorCapComplement(t *testing.T) {
	// A floor bucket and a cap bucket at the same strike partition the
	// outcome space, so the probabilities must sum to exactly 100.
	for _, strike := range []float64{40, 48.5, 55, 72} {
		floor := BucketProbability(model.Bucket{Kind: model.BucketFloor, Floor: strike}, 50, 2.5)
		cap := BucketProbability(model.Bucket{Kind: model.BucketCap, Cap: strike}, 50, 2.5)
		if math.Abs(floor+cap-100) > 1e-9 {
			t.Errorf("strike %v: floor %v + cap %v = %v, want 100", strike, floor, cap, floor+cap)
		}
	}
}

func TestBucketProbability_DegenerateRange(t *testing.T) {
	b := model.Bucket{Kind: model.BucketRange, Floor: 50, Cap: 50}
	if got := BucketProbability(b, 50, 2.5); got != 0 {
		t.Errorf("zero-width range probability = %v, want 0", got)
	}
}

func TestBucketProbability_FloorNearMean(t *testing.T) {
	// Estimate 50, floor 48, sigma 2.5: z = -0.8, Phi ~ 0.2119, so the
	// floor bucket lands near 78.8 and rounds to 79.
	got := BucketProbability(model.Bucket{Kind: model.BucketFloor, Floor: 48}, 50, 2.5)
	if rounded := int(math.Round(got)); rounded != 79 {
		t.Errorf("probability = %v (rounds to %d), want 79", got, rounded)
	}
}

func TestBucketProbability_UnknownKind(t *testing.T) {
	if got := BucketProbability(model.Bucket{Kind: "DIAGONAL"}, 50, 2.5); got != 50 {
		t.Errorf("unknown kind probability = %v, want 50", got)
	}
}

func TestBucketProbability_TailsAreExtreme(t *testing.T) {
	far := BucketProbability(model.Bucket{Kind: model.BucketFloor, Floor: 30}, 50, 2.5)
	if far < 99.9 {
		t.Errorf("floor far below mean = %v, want near 100", far)
	}
	far = BucketProbability(model.Bucket{Kind: model.BucketFloor, Floor: 70}, 50, 2.5)
	if far > 0.1 {
		t.Errorf("floor far above mean = %v, want near 0", far)
	}
}
