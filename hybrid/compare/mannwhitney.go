package compare

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// exactMWUMax is the sample size at or below which (for either sample) the
// exact null distribution of U is used, provided there are no ties.
const exactMWUMax = 8

// MannWhitneyU performs the two-sided Mann-Whitney U rank test. The statistic
// is U for sample a.
func MannWhitneyU(a, b []float64) (float64, float64, error) {
	n1, n2 := len(a), len(b)
	if n1 == 0 || n2 == 0 {
		return 0, 0, errors.New("Mann-Whitney U needs non-empty samples")
	}
	if hasNaN(a, b) {
		return 0, 0, errors.New("samples contain NaN")
	}
	ranks, ties := rank(append(append([]float64(nil), a...), b...))
	var r1 float64
	for _, r := range ranks[:n1] {
		r1 += r
	}
	fn1, fn2 := float64(n1), float64(n2)
	u1 := r1 - fn1*(fn1+1)/2
	u := math.Max(u1, fn1*fn2-u1)

	var p float64
	if (n1 <= exactMWUMax || n2 <= exactMWUMax) && len(ties) == 0 {
		p = 2 * mwuSurvival(int(math.Round(u)), n1, n2)
	} else {
		n := fn1 + fn2
		s := math.Sqrt(fn1 * fn2 / 12 * ((n + 1) - tieSum(ties)/(n*(n-1))))
		if s == 0 {
			return 0, 0, errors.New("all values are identical")
		}
		z := (u - fn1*fn2/2 - 0.5) / s
		p = 2 * distuv.UnitNormal.Survival(z)
	}
	return u1, math.Min(p, 1), nil
}

// mwuSurvival returns P(U >= u) under the null hypothesis for samples of size
// n1 and n2 without ties.
func mwuSurvival(u, n1, n2 int) float64 {
	counts := mwuCounts(n1, n2)
	var total, tail float64
	for k, c := range counts {
		total += c
		if k >= u {
			tail += c
		}
	}
	return tail / total
}

// mwuCounts returns, for each k in [0, n1*n2], the number of orderings of the
// pooled sample for which U == k. These are the coefficients of the Gaussian
// binomial coefficient [n1+n2 choose m]_q, m = min(n1, n2).
func mwuCounts(n1, n2 int) []float64 {
	m, n := n1, n2
	if m > n {
		m, n = n, m
	}
	c := make([]float64, m*n+1)
	c[0] = 1
	for i := 1; i <= m; i++ {
		// Multiply by (1 - q^(n+i)), then divide by (1 - q^i). Both only
		// read lower coefficients, so truncating at degree m*n is safe.
		for k := len(c) - 1; k >= n+i; k-- {
			c[k] -= c[k-n-i]
		}
		for k := i; k < len(c); k++ {
			c[k] += c[k-i]
		}
	}
	return c
}
