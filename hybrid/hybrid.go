// Package hybrid models a 90-degree optical hybrid: a passive four-port device
// which mixes a signal field with a local oscillator field to recover the
// in-phase and quadrature components of the signal.
package hybrid

import (
	"fmt"
	"math"
)

// Phases lists the nominal phase relationship, in degrees, of each output port.
// Index i of an Outputs corresponds to Phases[i].
var Phases = [4]int{0, 90, 180, 270}

// DefaultParams describes an ideal, lossless and perfectly balanced hybrid.
var DefaultParams = Params{}

// Params packages together the impairments of a physical hybrid. The zero
// value of every field means "no impairment". Values are not validated; a
// negative loss is a gain.
type Params struct {
	// SignalLossDB is the insertion loss of the signal input arm, in dB.
	SignalLossDB float64

	// LOLossDB is the insertion loss of the local oscillator input arm, in dB.
	LOLossDB float64

	// PhaseSLO is the phase imbalance between the signal and LO arms, in
	// radians. It rotates the 90 and 270 degree ports.
	PhaseSLO float64

	// PhaseIQ is the phase imbalance between the I and Q branches, in radians.
	// It rotates the 180 and 270 degree ports.
	PhaseIQ float64

	// ImbalanceIDB is the insertion loss imbalance of the I branch, in dB.
	ImbalanceIDB float64

	// ImbalanceQDB is the insertion loss imbalance of the Q branch, in dB.
	ImbalanceQDB float64
}

// Outputs holds the four output fields of a hybrid, ordered by Phases.
type Outputs [4]complex128

// Magnitudes returns the amplitude of each output field.
func (o Outputs) Magnitudes() [4]float64 {
	var m [4]float64
	for i, v := range o {
		m[i] = math.Hypot(real(v), imag(v))
	}
	return m
}

// DBToLinear converts a loss in dB to the multiplier applied to a field. Note
// that this uses the power convention, 10^(-dB/10), for amplitudes as well.
func DBToLinear(db float64) float64 {
	return math.Pow(10, -db/10)
}

// Ideal returns the outputs of a lossless, perfectly balanced hybrid.
func Ideal(signal, lo complex128) Outputs {
	return Outputs(idealMix.apply([2]complex128{signal, lo}))
}

// Transform computes the four output fields of a hybrid with impairments p.
// The inputs are attenuated by their insertion losses, mixed by the ideal
// hybrid, and then corrected for phase and amplitude imbalance, in that order.
func Transform(signal, lo complex128, p Params) Outputs {
	signal *= complex(DBToLinear(p.SignalLossDB), 0)
	lo *= complex(DBToLinear(p.LOLossDB), 0)

	out := idealMix.apply([2]complex128{signal, lo})
	out = phaseImbalance(p.PhaseSLO, p.PhaseIQ).apply(out)
	out = amplitudeImbalance(DBToLinear(p.ImbalanceIDB), DBToLinear(p.ImbalanceQDB)).apply(out)
	return Outputs(out)
}

// TransformBatch applies Transform element-wise to paired signal and LO
// samples. It returns an error iff the two slices differ in length.
func TransformBatch(signal, lo []complex128, p Params) ([]Outputs, error) {
	if len(signal) != len(lo) {
		return nil, fmt.Errorf("signal and LO length must agree: %d != %d", len(signal), len(lo))
	}
	out := make([]Outputs, len(signal))
	for i := range signal {
		out[i] = Transform(signal[i], lo[i], p)
	}
	return out, nil
}
