package field

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func TestConstant(t *testing.T) {
	c := Constant{Signal: 1 + 1i, LO: 1 - 1i}
	signal, lo, err := c.Next(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signal) != 3 || len(lo) != 3 {
		t.Fatalf("got lengths (%d, %d), want (3, 3)", len(signal), len(lo))
	}
	for i := range signal {
		if signal[i] != c.Signal || lo[i] != c.LO {
			t.Errorf("sample %d == (%v, %v), want (%v, %v)", i, signal[i], lo[i], c.Signal, c.LO)
		}
	}
}

func TestBatchSize(t *testing.T) {
	sim, err := NewSimulated(SimulatedOpts{Signal: 1, LO: 1})
	if err != nil {
		t.Fatalf("building source: %v", err)
	}
	tcs := []struct {
		name string
		src  Source
	}{
		{"constant", Constant{Signal: 1}},
		{"simulated", sim},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			for _, n := range []int{0, -4} {
				if _, _, err := tc.src.Next(n); !errors.Is(err, ErrBatchSize) {
					t.Errorf("Next(%d) error == %v, want %v", n, err, ErrBatchSize)
				}
			}
		})
	}
}

func TestNewSimulatedRejectsNegativeNoise(t *testing.T) {
	tcs := []struct {
		name string
		opts SimulatedOpts
	}{
		{"phase", SimulatedOpts{PhaseNoise: -0.1}},
		{"amplitude", SimulatedOpts{AmplitudeNoise: -0.1}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewSimulated(tc.opts); err == nil {
				t.Errorf("expected error: got nil")
			}
		})
	}
}

func TestSimulatedNoiseless(t *testing.T) {
	s, err := NewSimulated(SimulatedOpts{Signal: 2 - 1i, LO: 0.5i, Seed: 7})
	if err != nil {
		t.Fatalf("building source: %v", err)
	}
	signal, lo, err := s.Next(16)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range signal {
		if signal[i] != 2-1i || lo[i] != 0.5i {
			t.Errorf("sample %d == (%v, %v), want (2-1i, 0.5i)", i, signal[i], lo[i])
		}
	}
}

func TestSimulatedReproducible(t *testing.T) {
	opts := SimulatedOpts{Signal: 1, LO: 1i, PhaseNoise: 0.1, AmplitudeNoise: 0.05, Seed: 99}
	a, _ := NewSimulated(opts)
	b, _ := NewSimulated(opts)
	as, alo, _ := a.Next(32)
	bs, blo, _ := b.Next(32)
	for i := range as {
		if as[i] != bs[i] || alo[i] != blo[i] {
			t.Fatalf("sample %d differs between identically seeded sources", i)
		}
	}
}

func TestSimulatedStatistics(t *testing.T) {
	s, err := NewSimulated(SimulatedOpts{Signal: 1, LO: 1, PhaseNoise: 0.05, AmplitudeNoise: 0.02, Seed: 1})
	if err != nil {
		t.Fatalf("building source: %v", err)
	}
	signal, _, err := s.Next(20000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mags := make([]float64, len(signal))
	phases := make([]float64, len(signal))
	for i, v := range signal {
		mags[i] = cmplx.Abs(v)
		phases[i] = cmplx.Phase(v)
	}
	tcs := []struct {
		name      string
		data      []float64
		mean, std float64
		meanTol   float64
		stdRelTol float64
	}{
		{"amplitude", mags, 1, 0.02, 0.001, 0.05},
		{"phase", phases, 0, 0.05, 0.002, 0.05},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			mean, std := stat.MeanStdDev(tc.data, nil)
			if math.Abs(mean-tc.mean) > tc.meanTol {
				t.Errorf("mean == %v, want %v ± %v", mean, tc.mean, tc.meanTol)
			}
			if math.Abs(std-tc.std) > tc.stdRelTol*tc.std {
				t.Errorf("std == %v, want %v ± %v%%", std, tc.std, tc.stdRelTol*100)
			}
		})
	}
}
