package compare

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/stat"
)

// exactKSMax bounds n1*n2 for the exact null distribution of D. Larger
// samples use the asymptotic one.
const exactKSMax = 10000

// KolmogorovSmirnov performs the two-sample Kolmogorov-Smirnov test. The
// statistic is the largest distance between the two empirical CDFs. The
// p-value is exact for small samples and otherwise comes from the asymptotic
// Kolmogorov distribution with Stephens' correction for finite samples.
func KolmogorovSmirnov(a, b []float64) (float64, float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, errors.New("Kolmogorov-Smirnov needs non-empty samples")
	}
	if hasNaN(a, b) {
		return 0, 0, errors.New("samples contain NaN")
	}
	d := stat.KolmogorovSmirnov(sorted(a), nil, sorted(b), nil)
	if len(a)*len(b) < exactKSMax {
		return d, ksExact(len(a), len(b), d), nil
	}
	n1, n2 := float64(len(a)), float64(len(b))
	en := math.Sqrt(n1 * n2 / (n1 + n2))
	return d, kolmogorovSurvival((en + 0.12 + 0.11/en) * d), nil
}

// kolmogorovSurvival returns Q(lambda) = 2 * sum_{j>=1} (-1)^(j-1) exp(-2 j^2 lambda^2),
// the probability that the scaled KS distance exceeds lambda. The series
// does not converge for small lambda, where Q is 1 to machine precision.
func kolmogorovSurvival(lambda float64) float64 {
	if lambda <= 0 {
		return 1
	}
	a2 := -2 * lambda * lambda
	fac := 2.0
	var sum, prev float64
	for j := 1; j <= 100; j++ {
		term := fac * math.Exp(a2*float64(j*j))
		sum += term
		if math.Abs(term) <= 0.001*prev || math.Abs(term) <= 1e-8*sum {
			return math.Max(0, math.Min(sum, 1))
		}
		fac = -fac
		prev = math.Abs(term)
	}
	return 1
}

// ksExact returns P(D >= d) for samples of size n1 and n2, counting the
// monotone lattice paths from (0, 0) to (n1, n2) which stay strictly closer
// than d to the diagonal. Point (i, j) lies at distance |i/n1 - j/n2|.
func ksExact(n1, n2 int, d float64) float64 {
	h := math.Round(d * float64(n1) * float64(n2))
	if h <= 0 {
		return 1
	}
	// inside[j] and total[j] hold path counts to (i, j) for the current row i.
	inside := make([]float64, n2+1)
	total := make([]float64, n2+1)
	inside[0], total[0] = 1, 1
	for i := 0; i <= n1; i++ {
		for j := 0; j <= n2; j++ {
			if j > 0 {
				inside[j] += inside[j-1]
				total[j] += total[j-1]
			}
			if math.Abs(float64(i*n2-j*n1)) >= h {
				inside[j] = 0
			}
		}
	}
	return math.Max(0, math.Min(1-inside[n2]/total[n2], 1))
}
