// Package compare decides whether two datasets of hybrid output magnitudes
// plausibly come from the same distribution, using a battery of two-sample
// hypothesis tests.
//
// A test which cannot be applied to the given samples never aborts the
// battery: it is reported as a NotApplicable or Failed Result alongside the
// others.
package compare

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Alpha is the significance threshold: p-values below it mark the two
// datasets as significantly different.
const Alpha = 0.05

// ErrNotApplicable is wrapped by tests whose preconditions the samples do not
// meet, e.g. a paired test given samples of unequal length.
var ErrNotApplicable = errors.New("not applicable")

// Status reports whether a test produced a statistic.
type Status int

const (
	// Applied means Statistic and PValue are valid.
	Applied Status = iota
	// NotApplicable means the samples do not meet the test's preconditions.
	NotApplicable
	// Failed means the test errored; Note carries the error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "applied"
	case NotApplicable:
		return "N/A"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// A Result is the outcome of a single test.
type Result struct {
	Test      string
	Statistic float64
	PValue    float64
	Status    Status
	Note      string
}

// Significant returns true iff the test applied and rejected the null
// hypothesis at Alpha.
func (r Result) Significant() bool {
	return r.Status == Applied && r.PValue < Alpha
}

func (r Result) String() string {
	switch r.Status {
	case Applied:
	case NotApplicable:
		return fmt.Sprintf("%s: %s (%s)", r.Test, r.Status, r.Note)
	default:
		return fmt.Sprintf("%s: %s", r.Test, r.Note)
	}
	verdict := "are not significantly different according to the %s test (p >= %g)."
	if r.Significant() {
		verdict = "are significantly different according to the %s test (p < %g)."
	}
	return fmt.Sprintf("%s statistic: %v, p-value: %v\nThe two datasets "+verdict,
		r.Test, r.Statistic, r.PValue, r.Test, Alpha)
}

// A TestFunc computes a statistic and two-sided p-value for samples a and b.
// It must not modify its arguments.
type TestFunc func(a, b []float64) (statistic, pValue float64, err error)

// A Test is a named TestFunc.
type Test struct {
	Name string
	Func TestFunc
}

// Tests is the default battery, in reporting order.
var Tests = []Test{
	{Name: "t-test", Func: StudentT},
	{Name: "Mann-Whitney U", Func: MannWhitneyU},
	{Name: "Wilcoxon", Func: Wilcoxon},
	{Name: "Kolmogorov-Smirnov", Func: KolmogorovSmirnov},
	{Name: "Anderson-Darling", Func: AndersonDarling},
}

// Run applies every test in Tests to a and b.
func Run(a, b []float64) []Result {
	return RunTests(Tests, a, b)
}

// RunTests applies each test to a and b, returning one Result per test in the
// same order. It never fails: errors and panics are captured per test.
func RunTests(tests []Test, a, b []float64) []Result {
	results := make([]Result, len(tests))
	for i, t := range tests {
		results[i] = runOne(t, a, b)
	}
	return results
}

func runOne(t Test, a, b []float64) (res Result) {
	res.Test = t.Name
	defer func() {
		if r := recover(); r != nil {
			res = Result{Test: t.Name, Status: Failed, Note: fmt.Sprintf("Error: panic: %v", r)}
		}
	}()

	stat, p, err := t.Func(a, b)
	switch {
	case errors.Is(err, ErrNotApplicable):
		res.Status = NotApplicable
		res.Note = strings.TrimSuffix(err.Error(), ": "+ErrNotApplicable.Error())
	case err != nil:
		res.Status = Failed
		res.Note = "Error: " + err.Error()
	case math.IsNaN(p) || math.IsNaN(stat):
		res.Status = Failed
		res.Note = "Error: undefined statistic"
	default:
		res.Statistic, res.PValue = stat, p
	}
	return res
}
