package grid

import "fmt"

// GridBacked is implemented by every DataGrid-backed DataType and gives
// format writers generic access to the dimension table and array
// collection.
type GridBacked interface {
	DataType
	Grid() *DataGrid
}

// Grid returns the underlying DataGrid; specialisations promote this
// method through embedding.
func (g *DataGrid) Grid() *DataGrid { return g }

// RadialSetFromDataGrid rewraps a generically read grid as a RadialSet,
// enforcing that the {Azimuth, Gate} dimensions are present in order.
// Extra dimensions such as the sparse pixel dimension are allowed.
func RadialSetFromDataGrid(g *DataGrid) (*RadialSet, error) {
	az, gate := g.DimIndex(DimAzimuth), g.DimIndex(DimGate)
	if az < 0 || gate < 0 || az > gate {
		return nil, fmt.Errorf("grid: not a radial set, dimensions are %v", g.Dims())
	}
	r := &RadialSet{DataGrid: *g}
	r.SetDataType("RadialSet")
	r.initFromAttributes()
	return r, nil
}

// LatLonGridFromDataGrid rewraps a generically read grid as a LatLonGrid,
// enforcing the {Lat, Lon} dimension order.
func LatLonGridFromDataGrid(g *DataGrid) (*LatLonGrid, error) {
	lat, lon := g.DimIndex(DimLat), g.DimIndex(DimLon)
	if lat < 0 || lon < 0 || lat > lon {
		return nil, fmt.Errorf("grid: not a lat/lon grid, dimensions are %v", g.Dims())
	}
	llg := &LatLonGrid{DataGrid: *g}
	llg.SetDataType("LatLonGrid")
	llg.initFromAttributes()
	return llg, nil
}

// LatLonHeightGridFromDataGrid rewraps a generically read grid as a
// LatLonHeightGrid, enforcing the {Ht, Lat, Lon} dimension order.
func LatLonHeightGridFromDataGrid(g *DataGrid) (*LatLonHeightGrid, error) {
	ht, lat, lon := g.DimIndex(DimHt), g.DimIndex(DimLat), g.DimIndex(DimLon)
	if ht < 0 || lat < 0 || lon < 0 || ht > lat || lat > lon {
		return nil, fmt.Errorf("grid: not a lat/lon/height grid, dimensions are %v", g.Dims())
	}
	llhg := &LatLonHeightGrid{DataGrid: *g}
	llhg.SetDataType("LatLonHeightGrid")
	llhg.initFromAttributes()
	return llhg, nil
}
