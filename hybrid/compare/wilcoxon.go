package compare

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// exactWilcoxonMax is the number of non-zero differences at or below which the
// exact null distribution is used, provided there are no ties.
const exactWilcoxonMax = 50

// Wilcoxon performs the two-sided Wilcoxon signed-rank test on the paired
// differences a[i]-b[i]. Zero differences are discarded. The statistic is the
// smaller of the positive and negative rank sums.
//
// Samples of unequal length are ErrNotApplicable.
func Wilcoxon(a, b []float64) (float64, float64, error) {
	if len(a) != len(b) {
		return 0, 0, fmt.Errorf("sample sizes must match for Wilcoxon test (%d != %d): %w", len(a), len(b), ErrNotApplicable)
	}
	if hasNaN(a, b) {
		return 0, 0, errors.New("samples contain NaN")
	}
	var d []float64
	for i := range a {
		if diff := a[i] - b[i]; diff != 0 {
			d = append(d, diff)
		}
	}
	zeros := len(a) - len(d)
	if len(d) == 0 {
		return 0, 0, errors.New("all paired differences are zero")
	}

	abs := make([]float64, len(d))
	for i, v := range d {
		abs[i] = math.Abs(v)
	}
	ranks, ties := rank(abs)
	var rPlus, rMinus float64
	for i, v := range d {
		if v > 0 {
			rPlus += ranks[i]
		} else {
			rMinus += ranks[i]
		}
	}
	t := math.Min(rPlus, rMinus)
	n := float64(len(d))

	if len(d) <= exactWilcoxonMax && len(ties) == 0 && zeros == 0 {
		return t, math.Min(2*wilcoxonCDF(int(t), len(d)), 1), nil
	}
	mean := n * (n + 1) / 4
	variance := n*(n+1)*(2*n+1)/24 - tieSum(ties)/48
	if variance <= 0 {
		return 0, 0, errors.New("zero variance of signed-rank statistic")
	}
	z := (t - mean) / math.Sqrt(variance)
	p := 2 * distuv.UnitNormal.Survival(math.Abs(z))
	return t, math.Min(p, 1), nil
}

// wilcoxonCDF returns P(W <= w) for the signed-rank statistic of n untied,
// non-zero differences.
func wilcoxonCDF(w, n int) float64 {
	top := n * (n + 1) / 2
	counts := make([]float64, top+1)
	counts[0] = 1
	for i := 1; i <= n; i++ {
		for k := top; k >= i; k-- {
			counts[k] += counts[k-i]
		}
	}
	var cum float64
	for k := 0; k <= w && k <= top; k++ {
		cum += counts[k]
	}
	return cum / math.Exp2(float64(n))
}
