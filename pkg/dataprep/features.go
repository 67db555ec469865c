package dataprep

import "fmt"

// BinContinuous bins continuous values into n equal-width bins spanning
// [min, max]. The maximum falls in the last bin. Constant input lands in bin 0.
func BinContinuous(X []float64, nBins int) []int {
	bins := make([]int, len(X))
	if len(X) == 0 || nBins < 1 {
		return bins
	}
	min, max := minMax(X)
	width := (max - min) / float64(nBins)
	if width == 0 {
		return bins
	}
	for i, v := range X {
		b := int((v - min) / width)
		if b >= nBins {
			b = nBins - 1
		}
		bins[i] = b
	}
	return bins
}

// BinLabels names the bins BinContinuous produces for X, as "[lo, hi)".
// The last bin is closed.
func BinLabels(X []float64, nBins int) []string {
	if len(X) == 0 || nBins < 1 {
		return nil
	}
	min, max := minMax(X)
	width := (max - min) / float64(nBins)
	labels := make([]string, nBins)
	for b := range labels {
		lo := min + float64(b)*width
		hi := lo + width
		if b == nBins-1 {
			labels[b] = fmt.Sprintf("[%.1f, %.1f]", lo, max)
			continue
		}
		labels[b] = fmt.Sprintf("[%.1f, %.1f)", lo, hi)
	}
	return labels
}

func minMax(X []float64) (float64, float64) {
	min, max := X[0], X[0]
	for _, v := range X {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
