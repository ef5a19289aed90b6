// Package field provides sources of optical E-field samples to feed a hybrid.
package field

import (
	"errors"
	"fmt"
)

// ErrBatchSize is returned when a Source is asked for a non-positive number of
// samples.
var ErrBatchSize = errors.New("batch size must be positive")

// A Source produces paired signal and local oscillator fields.
type Source interface {
	// Next returns the next n samples:
	//  - signal contains the signal field presented to the hybrid
	//  - lo contains the local oscillator field presented alongside it
	// Both slices have length n.
	Next(n int) (signal, lo []complex128, err error)
}

// Constant is a Source which repeats a single sample forever.
type Constant struct {
	Signal complex128
	LO     complex128
}

// Next implements the Source interface.
func (c Constant) Next(n int) (signal, lo []complex128, err error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("requesting %d samples: %w", n, ErrBatchSize)
	}
	signal = make([]complex128, n)
	lo = make([]complex128, n)
	for i := range signal {
		signal[i] = c.Signal
		lo[i] = c.LO
	}
	return signal, lo, nil
}
