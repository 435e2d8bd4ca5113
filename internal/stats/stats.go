// Package stats holds the pure statistical helpers used by screening
// evaluation and confirmation testing.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean. NaN for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleVariance returns the unbiased (n-1 denominator) sample variance.
// Zero when fewer than two values are given.
func SampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := Mean(values)
	sumSq := 0.0
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values)-1)
}

// StandardError returns sqrt(sample variance / n).
func StandardError(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return math.Sqrt(SampleVariance(values) / float64(len(values)))
}

// Percentile returns the p-th percentile (p in [0,1]) of values using
// linear interpolation between the two nearest ranks of the sorted input.
// The input slice is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, p)
}

func percentileSorted(sorted []float64, p float64) float64 {
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * p
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Quartiles returns the median and third quartile in one sort pass.
func Quartiles(values []float64) (median, q3 float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return percentileSorted(sorted, 0.50), percentileSorted(sorted, 0.75)
}

// PairedComparison summarizes per-seed outcome differences between a
// candidate and an incumbent evaluated on identical seeds.
type PairedComparison struct {
	MeanDiff float64 // mean of candidate - incumbent, negative favors candidate
	SEDiff   float64
	T        float64
	P        float64 // two-tailed, normal approximation
}

// ComparePaired runs a paired significance test over the per-seed
// differences. With a large n the t statistic is effectively normal, so
// the p-value uses the standard normal CDF. A zero standard error is
// treated as infinitely significant when the means differ and as not
// significant at all when they are equal.
func ComparePaired(diffs []float64) PairedComparison {
	meanDiff := Mean(diffs)
	seDiff := StandardError(diffs)

	cmp := PairedComparison{MeanDiff: meanDiff, SEDiff: seDiff}
	if seDiff == 0 {
		if meanDiff == 0 {
			cmp.P = 1
		} else {
			cmp.T = math.Inf(sign(meanDiff))
			cmp.P = 0
		}
		return cmp
	}
	cmp.T = meanDiff / seDiff
	cmp.P = 2 * (1 - NormalCDF(math.Abs(cmp.T)))
	return cmp
}

func sign(x float64) int {
	if x < 0 {
		return -1
	}
	return 1
}

// NormalCDF approximates the standard normal CDF (Abramowitz and Stegun
// formula 26.2.17, absolute error < 7.5e-8).
func NormalCDF(x float64) float64 {
	if x < 0 {
		return 1 - NormalCDF(-x)
	}
	t := 1 / (1 + 0.2316419*x)
	d := 0.3989423 * math.Exp(-x*x/2)
	p := d * t * (0.3193815 + t*(-0.3565638+t*(1.781478+t*(-1.821256+t*1.330274))))
	return 1 - p
}
