package field

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// SimulatedOpts packages together the arguments to NewSimulated. The zero value
// of each noise field disables that noise.
type SimulatedOpts struct {
	// Signal and LO are the nominal fields around which samples are drawn.
	Signal complex128
	LO     complex128

	// PhaseNoise is the standard deviation of the phase jitter applied to each
	// field independently, in radians.
	PhaseNoise float64

	// AmplitudeNoise is the standard deviation of the relative amplitude
	// jitter applied to each field independently, e.g. 0.01 for 1%.
	AmplitudeNoise float64

	// Seed makes the draws reproducible. Two Simulated sources with the same
	// options produce the same samples.
	Seed uint64
}

// Simulated is a Source whose samples carry Gaussian phase and amplitude noise.
// It is not safe for concurrent use.
type Simulated struct {
	opts  SimulatedOpts
	phase distuv.Normal
	amp   distuv.Normal
}

// NewSimulated creates a Simulated source, or returns an error if a noise level
// is negative.
func NewSimulated(opts SimulatedOpts) (*Simulated, error) {
	if opts.PhaseNoise < 0 {
		return nil, fmt.Errorf("phase noise must be non-negative: %v", opts.PhaseNoise)
	}
	if opts.AmplitudeNoise < 0 {
		return nil, fmt.Errorf("amplitude noise must be non-negative: %v", opts.AmplitudeNoise)
	}
	src := rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)
	return &Simulated{
		opts:  opts,
		phase: distuv.Normal{Mu: 0, Sigma: opts.PhaseNoise, Src: src},
		amp:   distuv.Normal{Mu: 1, Sigma: opts.AmplitudeNoise, Src: src},
	}, nil
}

// Next implements the Source interface.
func (s *Simulated) Next(n int) (signal, lo []complex128, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("requesting %d samples: %w", n, ErrBatchSize)
	}
	signal = make([]complex128, n)
	lo = make([]complex128, n)
	for i := 0; i < n; i++ {
		signal[i] = s.jitter(s.opts.Signal)
		lo[i] = s.jitter(s.opts.LO)
	}
	return signal, lo, nil
}

func (s *Simulated) jitter(e complex128) complex128 {
	// Sigma == 0 still consumes a draw; skip it so noiseless runs are exact.
	a, phi := 1.0, 0.0
	if s.opts.AmplitudeNoise > 0 {
		a = s.amp.Rand()
	}
	if s.opts.PhaseNoise > 0 {
		phi = s.phase.Rand()
	}
	if a == 1 && phi == 0 {
		return e
	}
	return e * complex(a, 0) * cmplx.Exp(complex(0, phi))
}
