package radiomics

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// GLCMFeatures lists the gray level co-occurrence features in emission order.
var GLCMFeatures = []string{
	"Autocorrelation", "ClusterProminence", "ClusterShade", "ClusterTendency",
	"Contrast", "Correlation", "DifferenceAverage", "DifferenceEntropy",
	"DifferenceVariance", "Id", "Idm", "Idmn", "Idn", "Imc1", "Imc2",
	"InverseVariance", "JointAverage", "JointEnergy", "JointEntropy", "MCC",
	"MaximumProbability", "SumAverage", "SumEntropy", "SumSquares",
}

// glcmDirections are the 13 unique neighbour offsets at distance 1 in 3-D.
var glcmDirections = [13][3]int{
	{0, 0, 1}, {0, 1, -1}, {0, 1, 0}, {0, 1, 1},
	{1, -1, -1}, {1, -1, 0}, {1, -1, 1}, {1, 0, -1},
	{1, 0, 0}, {1, 0, 1}, {1, 1, -1}, {1, 1, 0}, {1, 1, 1},
}

// GLCM computes co-occurrence features per direction on the masked gray
// levels and averages them over the directions that have any pair. levels is
// a full-volume array of gray levels; only masked voxels are read.
func GLCM(m *Mask, levels []int) map[string]float64 {
	g := m.Geometry

	// Only occupied gray levels get a row; i and j keep their level values.
	present := map[int]bool{}
	maxLevel := 0
	for _, idx := range m.Voxels {
		present[levels[idx]] = true
		if levels[idx] > maxLevel {
			maxLevel = levels[idx]
		}
	}
	grayLevels := make([]int, 0, len(present))
	for l := range present {
		grayLevels = append(grayLevels, l)
	}
	sort.Ints(grayLevels)
	row := make(map[int]int, len(grayLevels))
	for i, l := range grayLevels {
		row[l] = i
	}

	n := len(grayLevels)
	sums := map[string]float64{}
	used := 0
	for _, d := range glcmDirections {
		p := make([]float64, n*n)
		total := 0.0
		for _, idx := range m.Voxels {
			x, y, z := g.Coords(idx)
			nx, ny, nz := x+d[0], y+d[1], z+d[2]
			if !m.Contains(nx, ny, nz) {
				continue
			}
			i := row[levels[idx]]
			j := row[levels[g.Index(nx, ny, nz)]]
			p[i*n+j]++
			p[j*n+i]++
			total += 2
		}
		if total == 0 {
			continue
		}
		for k := range p {
			p[k] /= total
		}

		for name, v := range glcmFromMatrix(p, grayLevels, maxLevel) {
			sums[name] += v
		}
		used++
	}

	out := make(map[string]float64, len(GLCMFeatures))
	for _, name := range GLCMFeatures {
		if used == 0 {
			out[name] = math.NaN()
			continue
		}
		out[name] = sums[name] / float64(used)
	}
	return out
}

// glcmFromMatrix computes features of one normalized, symmetric matrix p
// whose rows and columns correspond to grayLevels.
func glcmFromMatrix(p []float64, grayLevels []int, ng int) map[string]float64 {
	n := len(grayLevels)
	lv := make([]float64, n)
	for i, l := range grayLevels {
		lv[i] = float64(l)
	}

	px := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			px[i] += p[i*n+j]
		}
	}

	mu := 0.0
	for i := 0; i < n; i++ {
		mu += lv[i] * px[i]
	}
	variance := 0.0
	for i := 0; i < n; i++ {
		variance += (lv[i] - mu) * (lv[i] - mu) * px[i]
	}

	var autocorr, prominence, shade, tendency, contrast, energy, entropy, maxProb, hxy1, hxy2 float64
	pDiff := map[int]float64{}
	pSum := map[int]float64{}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			pij := p[i*n+j]
			pxy := px[i] * px[j]
			hxy2 -= pxy * math.Log2(pxy+eps)
			if pij == 0 {
				continue
			}
			c := lv[i] + lv[j] - 2*mu
			autocorr += pij * lv[i] * lv[j]
			prominence += pij * c * c * c * c
			shade += pij * c * c * c
			tendency += pij * c * c
			contrast += pij * (lv[i] - lv[j]) * (lv[i] - lv[j])
			energy += pij * pij
			entropy -= pij * math.Log2(pij+eps)
			hxy1 -= pij * math.Log2(pxy+eps)
			if pij > maxProb {
				maxProb = pij
			}
			diff := grayLevels[i] - grayLevels[j]
			if diff < 0 {
				diff = -diff
			}
			pDiff[diff] += pij
			pSum[grayLevels[i]+grayLevels[j]] += pij
		}
	}

	hx := 0.0
	for i := 0; i < n; i++ {
		hx -= px[i] * math.Log2(px[i]+eps)
	}

	var diffAvg, diffEntropy, id, idm, idmn, idn, invVar float64
	ng2 := float64(ng * ng)
	for k, pk := range pDiff {
		fk := float64(k)
		diffAvg += fk * pk
		diffEntropy -= pk * math.Log2(pk+eps)
		id += pk / (1 + fk)
		idm += pk / (1 + fk*fk)
		idmn += pk / (1 + fk*fk/ng2)
		idn += pk / (1 + fk/float64(ng))
		if k > 0 {
			invVar += pk / (fk * fk)
		}
	}
	diffVar := 0.0
	for k, pk := range pDiff {
		diffVar += (float64(k) - diffAvg) * (float64(k) - diffAvg) * pk
	}

	var sumAvg, sumEntropy float64
	for k, pk := range pSum {
		sumAvg += float64(k) * pk
		sumEntropy -= pk * math.Log2(pk+eps)
	}

	correlation := 1.0
	if variance > 0 {
		correlation = (autocorr - mu*mu) / variance
	}

	imc1 := 0.0
	if hx > 0 {
		imc1 = (entropy - hxy1) / hx
	}
	imc2 := 0.0
	if hxy2 > entropy {
		imc2 = math.Sqrt(1 - math.Exp(-2*(hxy2-entropy)))
	}

	return map[string]float64{
		"Autocorrelation":    autocorr,
		"ClusterProminence":  prominence,
		"ClusterShade":       shade,
		"ClusterTendency":    tendency,
		"Contrast":           contrast,
		"Correlation":        correlation,
		"DifferenceAverage":  diffAvg,
		"DifferenceEntropy":  diffEntropy,
		"DifferenceVariance": diffVar,
		"Id":                 id,
		"Idm":                idm,
		"Idmn":               idmn,
		"Idn":                idn,
		"Imc1":               imc1,
		"Imc2":               imc2,
		"InverseVariance":    invVar,
		"JointAverage":       mu,
		"JointEnergy":        energy,
		"JointEntropy":       entropy,
		"MCC":                mcc(p, px),
		"MaximumProbability": maxProb,
		"SumAverage":         sumAvg,
		"SumEntropy":         sumEntropy,
		"SumSquares":         variance,
	}
}

// mcc is the maximal correlation coefficient: the square root of the second
// largest eigenvalue of Q(i,j) = sum_k p(i,k)p(j,k) / (px(i)px(k)).
func mcc(p, px []float64) float64 {
	n := len(px)
	var rows []int
	for i, v := range px {
		if v > 0 {
			rows = append(rows, i)
		}
	}
	if len(rows) < 2 {
		return 1
	}

	q := mat.NewDense(len(rows), len(rows), nil)
	for a, i := range rows {
		for b, j := range rows {
			s := 0.0
			for _, k := range rows {
				s += p[i*n+k] * p[j*n+k] / (px[i] * px[k])
			}
			q.Set(a, b, s)
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(q, mat.EigenNone); !ok {
		return math.NaN()
	}
	vals := eig.Values(nil)
	re := make([]float64, len(vals))
	for i, v := range vals {
		re[i] = real(v)
		if math.Abs(imag(v)) > 1e-9*cmplx.Abs(v) {
			re[i] = cmplx.Abs(v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(re)))

	if re[1] < 0 {
		return 0
	}
	return math.Sqrt(re[1])
}
