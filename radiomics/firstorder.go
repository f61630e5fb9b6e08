package radiomics

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// eps keeps log2 finite for empty bins.
const eps = 2.220446049250313e-16

// Discretize assigns each value a gray level with a fixed bin width. Bin edges
// are multiples of binWidth; the bin holding the minimum is level 1.
func Discretize(values []float64, binWidth float64) []int {
	if len(values) == 0 {
		return nil
	}
	lo := math.Inf(1)
	for _, v := range values {
		if v < lo {
			lo = v
		}
	}
	offset := math.Floor(lo / binWidth)

	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(math.Floor(v/binWidth)-offset) + 1
	}
	return out
}

// FirstOrderFeatures lists the first-order features in emission order.
var FirstOrderFeatures = []string{
	"10Percentile", "90Percentile", "Energy", "Entropy", "InterquartileRange",
	"Kurtosis", "Maximum", "Mean", "MeanAbsoluteDeviation", "Median", "Minimum",
	"Range", "RobustMeanAbsoluteDeviation", "RootMeanSquared", "Skewness",
	"TotalEnergy", "Uniformity", "Variance",
}

// FirstOrder computes intensity statistics of the voxels under a mask.
// voxelVolume scales TotalEnergy; levels are the discretized values.
func FirstOrder(values []float64, levels []int, voxelVolume float64) (map[string]float64, error) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	minimum, err := stats.Min(sorted)
	if err != nil {
		return nil, err
	}
	maximum, err := stats.Max(sorted)
	if err != nil {
		return nil, err
	}
	median, err := stats.Median(sorted)
	if err != nil {
		return nil, err
	}

	n := float64(len(values))
	mean := stat.Mean(values, nil)

	energy := 0.0
	mad := 0.0
	for _, v := range values {
		energy += v * v
		mad += math.Abs(v - mean)
	}
	mad /= n

	p10 := stat.Quantile(0.10, stat.LinInterp, sorted, nil)
	p90 := stat.Quantile(0.90, stat.LinInterp, sorted, nil)
	p25 := stat.Quantile(0.25, stat.LinInterp, sorted, nil)
	p75 := stat.Quantile(0.75, stat.LinInterp, sorted, nil)

	var robust []float64
	for _, v := range values {
		if v >= p10 && v <= p90 {
			robust = append(robust, v)
		}
	}
	rmad := 0.0
	if len(robust) > 0 {
		rmean := stat.Mean(robust, nil)
		for _, v := range robust {
			rmad += math.Abs(v - rmean)
		}
		rmad /= float64(len(robust))
	}

	m2 := stat.Moment(2, values, nil)
	skewness, kurtosis := 0.0, 0.0
	if m2 > 0 {
		skewness = stat.Moment(3, values, nil) / math.Pow(m2, 1.5)
		kurtosis = stat.Moment(4, values, nil) / (m2 * m2)
	}

	entropy, uniformity := 0.0, 0.0
	for _, p := range histogram(levels) {
		entropy -= p * math.Log2(p+eps)
		uniformity += p * p
	}

	return map[string]float64{
		"10Percentile":                p10,
		"90Percentile":                p90,
		"Energy":                      energy,
		"Entropy":                     entropy,
		"InterquartileRange":          p75 - p25,
		"Kurtosis":                    kurtosis,
		"Maximum":                     maximum,
		"Mean":                        mean,
		"MeanAbsoluteDeviation":       mad,
		"Median":                      median,
		"Minimum":                     minimum,
		"Range":                       maximum - minimum,
		"RobustMeanAbsoluteDeviation": rmad,
		"RootMeanSquared":             math.Sqrt(energy / n),
		"Skewness":                    skewness,
		"TotalEnergy":                 energy * voxelVolume,
		"Uniformity":                  uniformity,
		"Variance":                    m2,
	}, nil
}

// histogram returns the probability of each occupied gray level, in level
// order.
func histogram(levels []int) []float64 {
	counts := map[int]int{}
	for _, l := range levels {
		counts[l]++
	}
	occupied := make([]int, 0, len(counts))
	for l := range counts {
		occupied = append(occupied, l)
	}
	sort.Ints(occupied)

	out := make([]float64, len(occupied))
	for i, l := range occupied {
		out[i] = float64(counts[l]) / float64(len(levels))
	}
	return out
}
