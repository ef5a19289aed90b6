package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Significance levels and critical value coefficients of the standardized
// k-sample Anderson-Darling statistic (Scholz & Stephens, 1987, table 1).
var (
	adSig = []float64{0.25, 0.1, 0.05, 0.025, 0.01, 0.005, 0.001}
	adB0  = []float64{0.675, 1.281, 1.645, 1.96, 2.326, 2.573, 3.085}
	adB1  = []float64{-0.245, 0.25, 0.678, 1.149, 1.822, 2.364, 3.615}
	adB2  = []float64{-0.105, -0.305, -0.362, -0.396, -0.391, -0.345, -0.154}
)

// AndersonDarling performs the k-sample Anderson-Darling test (k = 2) using
// the midrank form of the statistic, which accounts for ties. The statistic is
// standardized; the p-value is interpolated from the critical value table and
// capped to [0.001, 0.25].
func AndersonDarling(a, b []float64) (float64, float64, error) {
	return andersonKSample([][]float64{a, b})
}

func andersonKSample(samples [][]float64) (float64, float64, error) {
	k := len(samples)
	if k < 2 {
		return 0, 0, errors.New("Anderson-Darling needs at least two samples")
	}
	var pooled []float64
	sortedSamples := make([][]float64, k)
	for i, s := range samples {
		if len(s) == 0 {
			return 0, 0, fmt.Errorf("sample %d is empty", i)
		}
		sortedSamples[i] = sorted(s)
		pooled = append(pooled, s...)
	}
	if hasNaN(pooled) {
		return 0, 0, errors.New("samples contain NaN")
	}
	sort.Float64s(pooled)
	n := len(pooled)
	if n < 4 {
		return 0, 0, fmt.Errorf("Anderson-Darling needs at least 4 observations, got %d", n)
	}
	distinct := unique(pooled)
	if len(distinct) < 2 {
		return 0, 0, errors.New("Anderson-Darling needs more than one distinct observation")
	}

	a2kn := adMidrank(sortedSamples, pooled, distinct)

	fn, fk := float64(n), float64(k)
	var hInv float64
	for _, s := range samples {
		hInv += 1 / float64(len(s))
	}
	var cs, g float64
	for t := 0; t < n-2; t++ {
		cs += 1 / float64(n-1-t)
		g += cs / float64(t+2)
	}
	h := cs + 1

	ca := (4*g-6)*(fk-1) + (10-6*g)*hInv
	cb := (2*g-4)*fk*fk + 8*h*fk + (2*g-14*h-4)*hInv - 8*h + 4*g - 6
	cc := (6*h+2*g-2)*fk*fk + (4*h-4*g+6)*fk + (2*h-6)*hInv + 4*h
	cd := (2*h+6)*fk*fk - 4*h*fk
	sigmaSq := (ca*fn*fn*fn + cb*fn*fn + cc*fn + cd) / ((fn - 1) * (fn - 2) * (fn - 3))
	m := fk - 1
	a2 := (a2kn - m) / math.Sqrt(sigmaSq)

	p, err := adPValue(a2, m)
	if err != nil {
		return 0, 0, err
	}
	return a2, p, nil
}

// adMidrank computes the midrank A2akN statistic. samples must each be sorted,
// pooled is their sorted union and distinct its unique values.
func adMidrank(samples [][]float64, pooled, distinct []float64) float64 {
	fn := float64(len(pooled))
	var a2 float64
	for _, s := range samples {
		ni := float64(len(s))
		var inner float64
		for _, z := range distinct {
			left := float64(searchLeft(pooled, z))
			lj := float64(searchRight(pooled, z)) - left
			bj := left + lj/2
			right := float64(searchRight(s, z))
			fij := right - float64(searchLeft(s, z))
			mij := right - fij/2
			num := fn*mij - bj*ni
			inner += lj / fn * num * num / (bj*(fn-bj) - fn*lj/4)
		}
		a2 += inner / ni
	}
	return a2 * (fn - 1) / fn
}

// adPValue fits a quadratic to log(significance) as a function of the
// critical values for m = k-1 degrees of freedom and evaluates it at a2.
func adPValue(a2, m float64) (float64, error) {
	crit := make([]float64, len(adSig))
	for i := range crit {
		crit[i] = adB0[i] + adB1[i]/math.Sqrt(m) + adB2[i]/m
	}
	if a2 < crit[0] {
		return adSig[0], nil
	}
	if a2 > crit[len(crit)-1] {
		return adSig[len(adSig)-1], nil
	}

	vander := mat.NewDense(len(crit), 3, nil)
	logSig := mat.NewVecDense(len(adSig), nil)
	for i, c := range crit {
		vander.Set(i, 0, c*c)
		vander.Set(i, 1, c)
		vander.Set(i, 2, 1)
		logSig.SetVec(i, math.Log(adSig[i]))
	}
	var coef mat.VecDense
	if err := coef.SolveVec(vander, logSig); err != nil {
		return 0, fmt.Errorf("fitting critical values: %w", err)
	}
	return math.Exp(coef.AtVec(0)*a2*a2 + coef.AtVec(1)*a2 + coef.AtVec(2)), nil
}

func unique(sorted []float64) []float64 {
	var u []float64
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			u = append(u, v)
		}
	}
	return u
}

// searchLeft returns the number of elements of sorted strictly below x.
func searchLeft(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] >= x })
}

// searchRight returns the number of elements of sorted at or below x.
func searchRight(sorted []float64, x float64) int {
	return sort.Search(len(sorted), func(i int) bool { return sorted[i] > x })
}
