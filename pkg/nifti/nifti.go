// Package nifti decodes NIfTI-1 and NIfTI-2 volumetric neuroimaging
// containers into normalized 3D volumes.
//
// The decode pipeline runs: optional gzip envelope removal, header parsing
// (signature, layout variant, byte order), datatype dispatch, a single
// statistics scan over the raw samples, linear rescale plus unit-interval
// normalization, and grid construction. Decoding is a pure function of the
// input buffer: it holds no shared state, takes no locks, and may run from
// any number of goroutines concurrently. It is synchronous and CPU-bound;
// callers needing responsiveness on very large volumes should run it on a
// background goroutine.
//
// Non-fatal compatibility quirks (an unknown datatype code, a byte-swapped
// header) are reported as structured Diagnostics alongside the result
// instead of being logged, so misinterpretation is always visible to the
// caller without the decoder writing to any output stream.
package nifti

import (
	"fmt"
	"strconv"

	"neurovolume/pkg/volume"
)

// Decode parses a NIfTI container (optionally gzip-compressed) and returns
// the normalized volume together with any diagnostics gathered along the
// way. Diagnostics may be non-empty even on success; on error they carry
// whatever was observed before the failure.
func Decode(data []byte) (*volume.Volume, []Diagnostic, error) {
	var diags collector

	raw, err := decompress(data)
	if err != nil {
		return nil, diags.items, err
	}

	hdr, err := parseHeader(raw, &diags)
	if err != nil {
		return nil, diags.items, err
	}

	reader, known := readerFor(hdr.datatype)
	if !known {
		diags.warn("unknown-datatype",
			"datatype code is not in the supported set; interpreting samples as float32",
			map[string]string{"datatype": strconv.Itoa(int(hdr.datatype))})
	}

	// Each dimension fits in uint32 but the voxel and byte counts can
	// wrap uint64 on a crafted header, which would let an empty payload
	// pass the exact-count check below and crash the sample scan. The
	// X*Y product cannot wrap on its own; the later products are
	// verified stepwise.
	xy := uint64(hdr.dims[0]) * uint64(hdr.dims[1])
	total := xy * uint64(hdr.dims[2])
	need := total * uint64(reader.size)
	if total/xy != uint64(hdr.dims[2]) || need/uint64(reader.size) != total {
		return nil, diags.items, fmt.Errorf("%w: %dx%dx%d %s overflows the addressable byte count",
			ErrSampleCountMismatch, hdr.dims[0], hdr.dims[1], hdr.dims[2], hdr.datatype)
	}

	if hdr.voxOffset > int64(len(raw)) {
		return nil, diags.items, fmt.Errorf("%w: sample buffer starts at %d but file has %d bytes",
			ErrSampleCountMismatch, hdr.voxOffset, len(raw))
	}
	payload := raw[hdr.voxOffset:]
	if uint64(len(payload)) != need {
		return nil, diags.items, fmt.Errorf("%w: %dx%dx%d %s needs %d bytes, have %d",
			ErrSampleCountMismatch, hdr.dims[0], hdr.dims[1], hdr.dims[2], hdr.datatype, need, len(payload))
	}

	samples, st := decodeSamples(payload, reader, hdr.order, int(total))
	if st.nonFinite > 0 {
		diags.warn("non-finite-samples",
			"sample buffer contains non-finite values; each was replaced with 0",
			map[string]string{"count": strconv.FormatUint(st.nonFinite, 10)})
	}
	min, max := normalize(samples, st, hdr.slope, hdr.inter)

	// The sample sequence is already in the grid's X-fastest flat order,
	// so the normalized slice becomes the grid backing without a copy.
	grid := volume.NewGrid3FromSlice(int(hdr.dims[0]), int(hdr.dims[1]), int(hdr.dims[2]), samples)

	// Absent spacing stays zeroed rather than defaulting to a sentinel
	// like [1,1,1]; the viewer decides its own fallback.
	var spacing [3]float64
	if hdr.hasSpacing {
		spacing = hdr.spacing
	}

	vol := &volume.Volume{
		Data:         grid,
		Dimensions:   hdr.dims,
		VoxelSpacing: spacing,
		HasSpacing:   hdr.hasSpacing,
		DatatypeCode: uint16(hdr.datatype),
		Description:  hdr.descrip,
		Stats: volume.Stats{
			Min:          min,
			Max:          max,
			NonZeroCount: st.nonZero,
			TotalVoxels:  total,
		},
	}
	return vol, diags.items, nil
}
