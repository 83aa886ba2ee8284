package nifti

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Header layout constants for the two supported variants.
const (
	headerSizeV1 = 348
	headerSizeV2 = 540

	// Canonical start of the sample buffer when vox_offset is absent or
	// points inside the header.
	defaultVoxOffsetV1 = 352
	defaultVoxOffsetV2 = 544
)

var (
	// NIfTI-1 magic at offset 344: "n+1\0" (single file) or "ni1\0"
	// (detached header).
	magicV1Single   = []byte{'n', '+', '1', 0}
	magicV1Detached = []byte{'n', 'i', '1', 0}

	// NIfTI-2 magic at offset 4, including the DOS line-ending guard
	// bytes the standard borrows from the PNG signature.
	magicV2 = []byte{'n', '+', '2', 0, 0x0d, 0x0a, 0x1a, 0x0a}
)

// header holds the structural metadata extracted from a container header.
// It lives only for the duration of one decode call.
type header struct {
	// version is the layout variant, 1 or 2
	version int

	// order is the byte order the header (and sample buffer) is stored in
	order binary.ByteOrder

	// dims are the voxel counts along the X, Y and Z axes, each >= 1
	dims [3]uint32

	// spacing is the physical voxel size along each axis; only meaningful
	// when hasSpacing is true
	spacing    [3]float64
	hasSpacing bool

	// datatype is the numeric encoding tag for the sample buffer
	datatype Datatype

	// slope and inter define the linear rescale raw*slope + inter.
	// A slope of exactly 0 or 1 means no rescale is applied.
	slope, inter float64

	// descrip is the free-text description, empty when absent
	descrip string

	// voxOffset is the byte offset of the sample buffer
	voxOffset int64
}

// parseHeader validates the signature, detects the layout variant and byte
// order, and extracts the structural fields. Unknown or reserved header
// fields are ignored, never rejected.
func parseHeader(buf []byte, diags *collector) (*header, error) {
	// NIfTI-2 announces itself right after sizeof_hdr, so it can be
	// detected before the full v1 header length is available.
	if len(buf) >= 12 && bytes.Equal(buf[4:12], magicV2) {
		if len(buf) < headerSizeV2 {
			return nil, fmt.Errorf("%w: have %d bytes, NIfTI-2 header needs %d", ErrHeaderTooShort, len(buf), headerSizeV2)
		}
		return parseV2(buf, diags)
	}

	if len(buf) < headerSizeV1 {
		return nil, fmt.Errorf("%w: have %d bytes, need at least %d", ErrHeaderTooShort, len(buf), headerSizeV1)
	}

	magic := buf[344:348]
	if bytes.Equal(magic, magicV1Single) || bytes.Equal(magic, magicV1Detached) {
		return parseV1(buf, diags)
	}

	return nil, ErrNotRecognized
}

// detectOrder infers the byte order from the stored sizeof_hdr value. Files
// written on big-endian hardware store every field swapped; sizeof_hdr is a
// known constant, so it doubles as the byte-order probe.
func detectOrder(buf []byte, wantSize uint32, diags *collector) binary.ByteOrder {
	if binary.BigEndian.Uint32(buf[0:4]) == wantSize {
		diags.info("byte-swapped-header", "header is big-endian; all fields will be byte-swapped", nil)
		return binary.BigEndian
	}
	// Anything other than the swapped constant is treated as little-endian;
	// sizeof_hdr is otherwise an ignored field.
	return binary.LittleEndian
}

func parseV1(buf []byte, diags *collector) (*header, error) {
	order := detectOrder(buf, headerSizeV1, diags)

	h := &header{
		version:  1,
		order:    order,
		datatype: Datatype(order.Uint16(buf[70:])),
		slope:    sanitizeSlope(float64(math.Float32frombits(order.Uint32(buf[112:])))),
		inter:    sanitizeIntercept(float64(math.Float32frombits(order.Uint32(buf[116:])))),
		descrip:  cString(buf[148:228]),
	}

	// dim[1..3] are int16 counts; dim[0] (the axis count) and trailing
	// dims are not needed for a 3D decode.
	for i := 0; i < 3; i++ {
		d := int16(order.Uint16(buf[42+2*i:]))
		if d < 1 {
			return nil, fmt.Errorf("%w: dim[%d] = %d", ErrInvalidDimensions, i+1, d)
		}
		h.dims[i] = uint32(d)
	}

	for i := 0; i < 3; i++ {
		h.spacing[i] = float64(math.Float32frombits(order.Uint32(buf[80+4*i:])))
	}
	h.hasSpacing = h.spacing[0] > 0 && h.spacing[1] > 0 && h.spacing[2] > 0

	h.voxOffset = int64(math.Float32frombits(order.Uint32(buf[108:])))
	if h.voxOffset < headerSizeV1 {
		diags.info("vox-offset-defaulted",
			"stored vox_offset points inside the header; using the canonical default",
			map[string]string{"stored": strconv.FormatInt(h.voxOffset, 10)})
		h.voxOffset = defaultVoxOffsetV1
	}

	return h, nil
}

func parseV2(buf []byte, diags *collector) (*header, error) {
	order := detectOrder(buf, headerSizeV2, diags)

	h := &header{
		version:  2,
		order:    order,
		datatype: Datatype(order.Uint16(buf[12:])),
		slope:    sanitizeSlope(math.Float64frombits(order.Uint64(buf[176:]))),
		inter:    sanitizeIntercept(math.Float64frombits(order.Uint64(buf[184:]))),
		descrip:  cString(buf[240:320]),
	}

	// dim[1..3] are int64 counts starting at offset 24.
	for i := 0; i < 3; i++ {
		d := int64(order.Uint64(buf[24+8*i:]))
		if d < 1 || d > math.MaxUint32 {
			return nil, fmt.Errorf("%w: dim[%d] = %d", ErrInvalidDimensions, i+1, d)
		}
		h.dims[i] = uint32(d)
	}

	for i := 0; i < 3; i++ {
		h.spacing[i] = math.Float64frombits(order.Uint64(buf[112+8*i:]))
	}
	h.hasSpacing = h.spacing[0] > 0 && h.spacing[1] > 0 && h.spacing[2] > 0

	h.voxOffset = int64(order.Uint64(buf[168:]))
	if h.voxOffset < headerSizeV2 {
		diags.info("vox-offset-defaulted",
			"stored vox_offset points inside the header; using the canonical default",
			map[string]string{"stored": strconv.FormatInt(h.voxOffset, 10)})
		h.voxOffset = defaultVoxOffsetV2
	}

	return h, nil
}

// sanitizeSlope maps non-finite slope values (some writers store NaN for
// "unset") to 0, which the rescale step treats as inactive.
func sanitizeSlope(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// sanitizeIntercept maps non-finite intercepts to the default 0.
func sanitizeIntercept(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0
	}
	return s
}

// cString extracts a NUL-terminated, space-trimmed string from a fixed-size
// header field.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}
