package compare

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// StudentT performs Student's two-sample t-test, assuming equal variances, and
// returns the t statistic of a relative to b with its two-sided p-value.
func StudentT(a, b []float64) (float64, float64, error) {
	n1, n2 := len(a), len(b)
	if n1 < 2 || n2 < 2 {
		return 0, 0, errors.New("t-test needs at least two values per sample")
	}
	if hasNaN(a, b) {
		return 0, 0, errors.New("samples contain NaN")
	}
	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)

	df := float64(n1 + n2 - 2)
	pooled := (float64(n1-1)*v1 + float64(n2-1)*v2) / df
	se := math.Sqrt(pooled * (1/float64(n1) + 1/float64(n2)))
	if se == 0 {
		return 0, 0, errors.New("both samples have zero variance")
	}
	t := (m1 - m2) / se
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return t, math.Min(p, 1), nil
}
