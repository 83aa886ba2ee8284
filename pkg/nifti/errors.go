package nifti

import "errors"

// Decode failure modes. All are fatal to the decode call and are never
// retried internally; wrap-checking with errors.Is distinguishes them.
var (
	// ErrNotRecognized means the buffer carries no NIfTI signature.
	ErrNotRecognized = errors.New("not a NIfTI file")

	// ErrHeaderTooShort means the buffer is smaller than the minimum
	// header size for the detected (or any) layout variant.
	ErrHeaderTooShort = errors.New("header truncated")

	// ErrDecompressionFailed means the gzip envelope is corrupt.
	ErrDecompressionFailed = errors.New("gzip envelope corrupt")

	// ErrSampleCountMismatch means the header dimensions disagree with
	// the actual sample buffer length.
	ErrSampleCountMismatch = errors.New("sample count does not match header dimensions")

	// ErrInvalidDimensions means the header declares a non-positive
	// voxel count along some axis.
	ErrInvalidDimensions = errors.New("non-positive dimension in header")
)
