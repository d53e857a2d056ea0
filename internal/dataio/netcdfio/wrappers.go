package netcdfio

import (
	"github.com/ctessum/cdf"

	"github.com/banshee-data/rapio/internal/grid"
)

// The geospatial specializers are thin wrappers over the generic grid
// path: reads rewrap the generic result enforcing dimension order and
// semantic attributes, writes tag the file with the specialised datatype.
// Sparse primaries flow through untouched here; the DataType's PostRead
// expands them.

// RadialSetSpecializer handles RadialSet and SparseRadialSet files.
type RadialSetSpecializer struct {
	generic DataGridSpecializer
}

// Read rewraps the generic grid as a RadialSet.
func (s *RadialSetSpecializer) Read(f *cdf.File, keys map[string]string) (grid.DataType, error) {
	g := grid.NewDataGrid()
	if err := readGrid(f, g); err != nil {
		return nil, err
	}
	return grid.RadialSetFromDataGrid(g)
}

// Write encodes the radial set; its per-radial arrays and sweep
// attributes already live in the grid.
func (s *RadialSetSpecializer) Write(dt grid.DataType, w *writeSession, keys map[string]string) error {
	return s.generic.Write(dt, w, keys)
}

// LatLonGridSpecializer handles LatLonGrid and SparseLatLonGrid files.
type LatLonGridSpecializer struct {
	generic DataGridSpecializer
}

// Read rewraps the generic grid as a LatLonGrid.
func (s *LatLonGridSpecializer) Read(f *cdf.File, keys map[string]string) (grid.DataType, error) {
	g := grid.NewDataGrid()
	if err := readGrid(f, g); err != nil {
		return nil, err
	}
	return grid.LatLonGridFromDataGrid(g)
}

// Write encodes the lat/lon grid.
func (s *LatLonGridSpecializer) Write(dt grid.DataType, w *writeSession, keys map[string]string) error {
	return s.generic.Write(dt, w, keys)
}

// LatLonHeightGridSpecializer handles the 3-D height stacks.
type LatLonHeightGridSpecializer struct {
	generic DataGridSpecializer
}

// Read rewraps the generic grid as a LatLonHeightGrid.
func (s *LatLonHeightGridSpecializer) Read(f *cdf.File, keys map[string]string) (grid.DataType, error) {
	g := grid.NewDataGrid()
	if err := readGrid(f, g); err != nil {
		return nil, err
	}
	return grid.LatLonHeightGridFromDataGrid(g)
}

// Write encodes the height stack.
func (s *LatLonHeightGridSpecializer) Write(dt grid.DataType, w *writeSession, keys map[string]string) error {
	return s.generic.Write(dt, w, keys)
}
