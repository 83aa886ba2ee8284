package nifti

// rescaleActive reports whether the header's linear rescale applies.
// A slope of exactly 0 (unset) or exactly 1 (identity) means raw values pass
// through unchanged, so a file that stores slope=1, inter=0 explicitly
// decodes bit-for-bit identically to one with the fields defaulted.
func rescaleActive(slope float64) bool {
	return slope != 0 && slope != 1
}

// normalize maps the sample sequence into [0, 1] in place, using the bounds
// from the statistics scan. When the rescale is active the slope/intercept
// transform is applied to the bounds and to every sample first, so the
// returned min/max are in rescaled units. A non-positive range (constant
// volume, or a negative slope inverting the bounds) maps every sample to
// exactly 0 rather than dividing by zero.
func normalize(samples []float64, st rawStats, slope, inter float64) (min, max float64) {
	min, max = st.min, st.max
	active := rescaleActive(slope)
	if active {
		min = min*slope + inter
		max = max*slope + inter
	}

	rng := max - min
	if rng <= 0 {
		for i := range samples {
			samples[i] = 0
		}
		return min, max
	}

	for i := range samples {
		v := samples[i]
		if active {
			v = v*slope + inter
		}
		samples[i] = (v - min) / rng
	}
	return min, max
}
