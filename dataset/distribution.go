package dataset

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DistributionMarkers captures the shape of a numeric column so the planner
// can pick between parametric and non-parametric tests.
type DistributionMarkers struct {
	Skewness      float64 `json:"skewness"`
	Kurtosis      float64 `json:"kurtosis"`
	LooksNormal   bool    `json:"looks_normal"`
	SkewTestP     float64 `json:"skew_test_p"`
	SuggestedTest string  `json:"suggested_test"`
}

// AnalyzeDistribution computes skewness/kurtosis markers and a coarse
// normality screen. mean/std are passed in to avoid recomputation.
func AnalyzeDistribution(values []float64, mean, std float64) DistributionMarkers {
	markers := DistributionMarkers{SkewTestP: 1.0}

	if len(values) < 3 || std == 0 {
		markers.SuggestedTest = "non-parametric (insufficient spread)"
		return markers
	}

	markers.Skewness = sampleSkewness(values, mean, std)
	markers.Kurtosis = sampleExcessKurtosis(values, mean, std)

	// Screen on standardized skewness: z = skew / SE(skew), SE = sqrt(6/n).
	// This is the D'Agostino skewness statistic without the small-sample
	// correction, which is plenty for steering test selection.
	se := math.Sqrt(6.0 / float64(len(values)))
	z := markers.Skewness / se
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	markers.SkewTestP = 2 * (1 - normal.CDF(math.Abs(z)))

	markers.LooksNormal = markers.SkewTestP > 0.05 && math.Abs(markers.Kurtosis) < 2
	if markers.LooksNormal {
		markers.SuggestedTest = "parametric (t-test, ANOVA, Pearson)"
	} else {
		markers.SuggestedTest = "non-parametric (Mann-Whitney, Kruskal-Wallis, Spearman)"
	}

	return markers
}

// sampleSkewness is the adjusted Fisher-Pearson coefficient.
func sampleSkewness(values []float64, mean, std float64) float64 {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d
	}
	return (n / ((n - 1) * (n - 2))) * sum
}

// sampleExcessKurtosis returns kurtosis relative to the normal distribution.
func sampleExcessKurtosis(values []float64, mean, std float64) float64 {
	n := float64(len(values))
	if n < 4 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := (v - mean) / std
		sum += d * d * d * d
	}
	adj := (n * (n + 1)) / ((n - 1) * (n - 2) * (n - 3))
	correction := (3 * (n - 1) * (n - 1)) / ((n - 2) * (n - 3))
	return adj*sum - correction
}
