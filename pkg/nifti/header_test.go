package nifti

import (
	"encoding/binary"
	"errors"
	"testing"
)

// TestHeaderTooShort checks the minimum-size guard for both variants.
func TestHeaderTooShort(t *testing.T) {
	if _, _, err := Decode(make([]byte, 100)); !errors.Is(err, ErrHeaderTooShort) {
		t.Errorf("Expected ErrHeaderTooShort for 100-byte buffer, got %v", err)
	}

	// A truncated NIfTI-2: magic present but header cut off.
	v2 := make([]byte, 300)
	binary.LittleEndian.PutUint32(v2[0:], headerSizeV2)
	copy(v2[4:12], magicV2)
	if _, _, err := Decode(v2); !errors.Is(err, ErrHeaderTooShort) {
		t.Errorf("Expected ErrHeaderTooShort for truncated NIfTI-2, got %v", err)
	}
}

// TestNotRecognized checks that a header-sized buffer without the signature
// is rejected.
func TestNotRecognized(t *testing.T) {
	buf := make([]byte, 600)
	for i := range buf {
		buf[i] = byte(i)
	}
	if _, _, err := Decode(buf); !errors.Is(err, ErrNotRecognized) {
		t.Errorf("Expected ErrNotRecognized, got %v", err)
	}
}

// TestInvalidDimensions checks that a zero voxel count is fatal rather than
// clamped.
func TestInvalidDimensions(t *testing.T) {
	data := buildV1(binary.LittleEndian, [3]int16{4, 0, 2}, DatatypeUint8, 0, 0, [3]float32{}, "", nil)
	if _, _, err := Decode(data); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Expected ErrInvalidDimensions, got %v", err)
	}
}

// TestVoxOffsetDefaulted checks that a zero vox_offset falls back to the
// canonical data offset and reports the substitution.
func TestVoxOffsetDefaulted(t *testing.T) {
	values := []float64{1, 2}
	payload := encodeSamples(t, binary.LittleEndian, DatatypeUint8, values)
	data := buildV1(binary.LittleEndian, [3]int16{2, 1, 1}, DatatypeUint8, 0, 0, [3]float32{}, "", payload)
	// Zero out the stored vox_offset; data still sits at the default 352.
	binary.LittleEndian.PutUint32(data[108:], 0)

	vol, diags, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if vol.Stats.TotalVoxels != 2 {
		t.Errorf("Expected 2 voxels, got %d", vol.Stats.TotalVoxels)
	}

	found := false
	for _, d := range diags {
		if d.Code == "vox-offset-defaulted" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected vox-offset-defaulted diagnostic, got %v", diags)
	}
}

// TestDetachedHeaderMagic checks that the "ni1" detached-header magic is
// recognized; with no trailing samples the decode fails on the sample count,
// not on the signature.
func TestDetachedHeaderMagic(t *testing.T) {
	data := buildV1(binary.LittleEndian, [3]int16{2, 2, 2}, DatatypeUint8, 0, 0, [3]float32{}, "", nil)
	copy(data[344:348], magicV1Detached)
	data = data[:headerSizeV1] // bare header, no sample buffer

	_, _, err := Decode(data)
	if errors.Is(err, ErrNotRecognized) {
		t.Fatal("Detached-header magic should be recognized")
	}
	if !errors.Is(err, ErrSampleCountMismatch) {
		t.Errorf("Expected ErrSampleCountMismatch for missing sample buffer, got %v", err)
	}
}

// TestAbsentSpacing checks that unspecified spacing stays absent instead of
// defaulting to a sentinel.
func TestAbsentSpacing(t *testing.T) {
	payload := encodeSamples(t, binary.LittleEndian, DatatypeUint8, []float64{1, 2})
	data := buildV1(binary.LittleEndian, [3]int16{2, 1, 1}, DatatypeUint8, 0, 0, [3]float32{}, "", payload)

	vol, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if vol.HasSpacing {
		t.Error("Expected HasSpacing to be false for zero pixdim")
	}
	if vol.VoxelSpacing != [3]float64{} {
		t.Errorf("Expected zeroed spacing when absent, got %v", vol.VoxelSpacing)
	}
}

// TestNaNSlopeTreatedAsUnset checks that a NaN slope (written by some tools
// for "no rescale") behaves like the default.
func TestNaNSlopeTreatedAsUnset(t *testing.T) {
	values := []float64{5, 10, 15}
	payload := encodeSamples(t, binary.LittleEndian, DatatypeUint8, values)
	withNaN := buildV1(binary.LittleEndian, [3]int16{3, 1, 1}, DatatypeUint8,
		nan32(), 0, [3]float32{}, "", payload)
	defaulted := buildV1(binary.LittleEndian, [3]int16{3, 1, 1}, DatatypeUint8, 0, 0, [3]float32{}, "", payload)

	volA, _, err := Decode(withNaN)
	if err != nil {
		t.Fatalf("Decode with NaN slope failed: %v", err)
	}
	volB, _, err := Decode(defaulted)
	if err != nil {
		t.Fatalf("Decode with defaulted slope failed: %v", err)
	}
	a, b := volA.Data.Raw(), volB.Data.Raw()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Sample %d differs under NaN slope: %v vs %v", i, a[i], b[i])
		}
	}
}

func nan32() float32 {
	var zero float32
	return zero / zero
}
