// Package volume defines the normalized 3D volume produced by the decoder
// and the accessors used by visualization and reporting collaborators.
package volume

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the intensity statistics gathered during decoding. Min and Max
// are in rescaled units (after the header's slope/intercept transform, before
// normalization); NonZeroCount counts raw samples different from zero.
type Stats struct {
	// Min is the smallest rescaled sample value
	Min float64

	// Max is the largest rescaled sample value
	Max float64

	// NonZeroCount is the number of raw samples different from zero
	NonZeroCount uint64

	// TotalVoxels is the total sample count, always the product of the
	// three dimensions
	TotalVoxels uint64
}

// Volume is the decoder's output: a normalized voxel grid plus the header
// metadata a viewer needs to present it. Every sample in Data lies in
// [0, 1]. A Volume is immutable once built and owned by its receiver.
type Volume struct {
	// Data is the normalized voxel grid
	Data *Grid3

	// Dimensions are the voxel counts along the X, Y and Z axes
	Dimensions [3]uint32

	// VoxelSpacing is the physical size of one voxel along each axis,
	// typically in millimeters. Only meaningful when HasSpacing is true;
	// the decoder never substitutes a default, so consumers that need a
	// spacing must supply their own fallback.
	VoxelSpacing [3]float64

	// HasSpacing reports whether the file specified a voxel spacing
	HasSpacing bool

	// DatatypeCode is the numeric encoding tag from the file header
	DatatypeCode uint16

	// Description is the free-text description from the file header,
	// empty when the file carried none
	Description string

	// Stats are the intensity statistics computed during decoding
	Stats Stats
}

// Slice extracts a 2D plane from the volume along the specified axis as a
// 16-bit grayscale image, suitable for handing to a viewer. Axis is one of
// "x", "y" or "z" (case-insensitive).
func (v *Volume) Slice(axis string, position int) (image.Image, error) {
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative")
	}

	nx, ny, nz := v.Data.Dims()
	var img *image.Gray16

	switch axis {
	case "x", "X":
		// YZ plane
		if position >= nx {
			return nil, fmt.Errorf("position %d exceeds width %d", position, nx)
		}
		img = image.NewGray16(image.Rect(0, 0, nz, ny))
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				img.SetGray16(z, y, gray16At(v.Data, position, y, z))
			}
		}

	case "y", "Y":
		// XZ plane
		if position >= ny {
			return nil, fmt.Errorf("position %d exceeds height %d", position, ny)
		}
		img = image.NewGray16(image.Rect(0, 0, nx, nz))
		for z := 0; z < nz; z++ {
			for x := 0; x < nx; x++ {
				img.SetGray16(x, z, gray16At(v.Data, x, position, z))
			}
		}

	case "z", "Z":
		// XY plane
		if position >= nz {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, nz)
		}
		img = image.NewGray16(image.Rect(0, 0, nx, ny))
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				img.SetGray16(x, y, gray16At(v.Data, x, y, position))
			}
		}

	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	return img, nil
}

// gray16At maps a normalized sample to a 16-bit gray level.
func gray16At(g *Grid3, x, y, z int) color.Gray16 {
	value := uint16(math.Max(0, math.Min(65535, g.At(x, y, z)*65535)))
	return color.Gray16{Y: value}
}

// Region extracts a 3D subregion of the volume as a new flat array in the
// same X-fastest ordering as the volume itself.
func (v *Volume) Region(startX, startY, startZ, sizeX, sizeY, sizeZ int) ([]float64, error) {
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}

	nx, ny, nz := v.Data.Dims()
	if startX+sizeX > nx || startY+sizeY > ny || startZ+sizeZ > nz {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := make([]float64, sizeX*sizeY*sizeZ)
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				region[z*sizeX*sizeY+y*sizeX+x] = v.Data.At(startX+x, startY+y, startZ+z)
			}
		}
	}
	return region, nil
}

// Histogram counts the normalized samples into the given number of
// equal-width bins spanning [0, 1]. It panics if bins is not positive.
func (v *Volume) Histogram(bins int) []float64 {
	dividers := make([]float64, bins+1)
	floats.Span(dividers, 0, 1)
	// stat.Histogram wants its input sorted; the grid stays untouched.
	samples := make([]float64, v.Data.Len())
	copy(samples, v.Data.Raw())
	sort.Float64s(samples)
	return stat.Histogram(nil, dividers, samples, nil)
}

// MeanStdDev returns the mean and standard deviation of the normalized
// samples.
func (v *Volume) MeanStdDev() (mean, std float64) {
	return stat.MeanStdDev(v.Data.Raw(), nil)
}
