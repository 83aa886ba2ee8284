package nifti

import (
	"encoding/binary"
	"math"
)

// rawStats holds the result of the single statistics scan over the typed
// sample sequence, in raw (pre-rescale) units.
type rawStats struct {
	min, max float64
	nonZero  uint64

	// nonFinite counts samples that decoded to NaN or an infinity and
	// were replaced with 0.
	nonFinite uint64
}

// decodeSamples reinterprets the raw byte buffer as n typed samples and
// computes min, max and non-zero count in the same forward scan. The scan is
// the single source of truth for the statistics; the normalization step
// reuses them instead of rescanning, which matters once volumes reach
// millions of voxels. Non-finite samples (NaN or infinity in a float
// payload) are replaced with 0 and counted, so the bounds stay finite and
// nothing outside [0, 1] can survive normalization. n must be at least 1 and
// buf must hold exactly n*r.size bytes.
func decodeSamples(buf []byte, r sampleReader, order binary.ByteOrder, n int) ([]float64, rawStats) {
	samples := make([]float64, n)

	var st rawStats
	first := r.read(buf, order)
	if math.IsNaN(first) || math.IsInf(first, 0) {
		first = 0
		st.nonFinite = 1
	}
	samples[0] = first
	st.min, st.max = first, first
	if first != 0 {
		st.nonZero = 1
	}

	for i := 1; i < n; i++ {
		v := r.read(buf[i*r.size:], order)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
			st.nonFinite++
		}
		samples[i] = v
		if v < st.min {
			st.min = v
		}
		if v > st.max {
			st.max = v
		}
		if v != 0 {
			st.nonZero++
		}
	}
	return samples, st
}
