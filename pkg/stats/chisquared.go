package stats

import "math"

// ChiSquaredGoodnessOfFit runs a chi-squared test comparing observed
// sample-bucket counts against the expected counts implied by expectedPdf
// (which need not be normalized; it is rescaled to the observed total).
// It returns the chi-squared statistic; the caller compares it against a
// critical value for the desired significance level and degrees of
// freedom (len(observed)-1).
func ChiSquaredGoodnessOfFit(observed []int, expectedPdf []Float) Float {
	if len(observed) != len(expectedPdf) {
		panic("stats: observed/expectedPdf length mismatch")
	}
	var total Float
	for _, v := range observed {
		total += Float(v)
	}
	var pdfSum Float
	for _, v := range expectedPdf {
		pdfSum += v
	}

	var chiSq Float
	for i, obs := range observed {
		expected := expectedPdf[i] / pdfSum * total
		if expected <= 0 {
			continue
		}
		diff := Float(obs) - expected
		chiSq += diff * diff / expected
	}
	return chiSq
}

// ChiSquaredCriticalValue95 is a small lookup table of the chi-squared
// critical value at p=0.95 for low degrees of freedom, enough to cover
// this package's sampler tests without pulling in a statistics library.
func ChiSquaredCriticalValue95(degreesOfFreedom int) Float {
	table := map[int]Float{
		1: 3.841, 2: 5.991, 3: 7.815, 4: 9.488, 5: 11.070,
		6: 12.592, 7: 14.067, 8: 15.507, 9: 16.919, 10: 18.307,
	}
	if v, ok := table[degreesOfFreedom]; ok {
		return v
	}
	// Wilson-Hilferty approximation for larger degrees of freedom.
	k := Float(degreesOfFreedom)
	z := 1.645
	return k * math.Pow(1-2/(9*k)+z*math.Sqrt(2/(9*k)), 3)
}
