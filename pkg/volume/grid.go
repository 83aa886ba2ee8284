package volume

import "fmt"

// Grid3 is a dense three-dimensional grid of float64 samples. Storage is a
// single flat array in the NIfTI native axis ordering: X varies fastest, so
// the sample at (x, y, z) lives at flat index x + y*nx + z*nx*ny. The backing
// array is allocated once at construction, never grown incrementally.
type Grid3 struct {
	// nx, ny, nz are the voxel counts along each axis
	nx, ny, nz int

	// data is the flat backing array, len(data) == nx*ny*nz
	data []float64
}

// NewGrid3 creates a zero-filled grid with the given dimensions.
// It panics if any dimension is not positive.
func NewGrid3(nx, ny, nz int) *Grid3 {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic(fmt.Sprintf("volume: non-positive grid dimensions %dx%dx%d", nx, ny, nz))
	}
	return &Grid3{
		nx:   nx,
		ny:   ny,
		nz:   nz,
		data: make([]float64, nx*ny*nz),
	}
}

// NewGrid3FromSlice wraps an existing flat sample slice as a grid without
// copying. The slice must already be in X-fastest order and its length must
// equal nx*ny*nz; the caller relinquishes ownership of the slice.
func NewGrid3FromSlice(nx, ny, nz int, data []float64) *Grid3 {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		panic(fmt.Sprintf("volume: non-positive grid dimensions %dx%dx%d", nx, ny, nz))
	}
	if len(data) != nx*ny*nz {
		panic(fmt.Sprintf("volume: slice length %d does not match dimensions %dx%dx%d", len(data), nx, ny, nz))
	}
	return &Grid3{nx: nx, ny: ny, nz: nz, data: data}
}

// Dims returns the voxel counts along the X, Y and Z axes.
func (g *Grid3) Dims() (nx, ny, nz int) {
	return g.nx, g.ny, g.nz
}

// Len returns the total number of voxels in the grid.
func (g *Grid3) Len() int {
	return len(g.data)
}

// At returns the sample at voxel coordinates (x, y, z).
// It panics if the coordinates are outside the grid.
func (g *Grid3) At(x, y, z int) float64 {
	return g.data[g.index(x, y, z)]
}

// Set stores a sample at voxel coordinates (x, y, z).
// It panics if the coordinates are outside the grid.
func (g *Grid3) Set(x, y, z int, v float64) {
	g.data[g.index(x, y, z)] = v
}

// Raw exposes the flat backing array for bulk consumers such as renderers.
// The returned slice aliases the grid storage; treat it as read-only.
func (g *Grid3) Raw() []float64 {
	return g.data
}

func (g *Grid3) index(x, y, z int) int {
	if x < 0 || x >= g.nx || y < 0 || y >= g.ny || z < 0 || z >= g.nz {
		panic(fmt.Sprintf("volume: coordinates (%d,%d,%d) outside %dx%dx%d grid", x, y, z, g.nx, g.ny, g.nz))
	}
	return x + y*g.nx + z*g.nx*g.ny
}
