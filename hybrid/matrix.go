package hybrid

import "math/cmplx"

// A mixer is a 4x2 complex matrix mapping (signal, LO) onto the four ports.
type mixer [4][2]complex128

// idealMix is the transfer matrix of a lossless 90 degree hybrid. Row order
// defines the port order of Outputs.
var idealMix = mixer{
	{1, 1},
	{1, -1},
	{1i, 1i},
	{1i, -1i},
}

func (m mixer) apply(in [2]complex128) [4]complex128 {
	var out [4]complex128
	for r, row := range m {
		out[r] = row[0]*in[0] + row[1]*in[1]
	}
	return out
}

// A diag is a 4x4 diagonal matrix, stored as its diagonal.
type diag [4]complex128

func (d diag) apply(v [4]complex128) [4]complex128 {
	var out [4]complex128
	for i := range v {
		out[i] = d[i] * v[i]
	}
	return out
}

// phaseImbalance builds the per-port phase correction. The 90 degree port sees
// only the signal/LO error, the 180 degree port only the I/Q error, and the
// 270 degree port both.
func phaseImbalance(slo, iq float64) diag {
	return diag{
		1,
		cmplx.Exp(complex(0, slo)),
		cmplx.Exp(complex(0, iq)),
		cmplx.Exp(complex(0, slo+iq)),
	}
}

// amplitudeImbalance builds the per-port amplitude correction from linear I
// and Q branch multipliers, accumulated the same way as phaseImbalance.
func amplitudeImbalance(i, q float64) diag {
	return diag{
		1,
		complex(i, 0),
		complex(q, 0),
		complex(i*q, 0),
	}
}
