package stats

// AboveMask flags the values strictly greater than bound.
func AboveMask(x []float64, bound float64) []bool {
	mask := make([]bool, len(x))
	for i, v := range x {
		mask[i] = v > bound
	}
	return mask
}

// IQRFences returns the Tukey fences Q1 - 1.5*IQR and Q3 + 1.5*IQR.
func IQRFences(x []float64) (lo, hi float64) {
	q1, q3 := Percentile(x, 25), Percentile(x, 75)
	iqr := q3 - q1
	return q1 - 1.5*iqr, q3 + 1.5*iqr
}

// CountOutside counts the values below lo or above hi.
func CountOutside(x []float64, lo, hi float64) int {
	n := 0
	for _, v := range x {
		if v < lo || v > hi {
			n++
		}
	}
	return n
}
