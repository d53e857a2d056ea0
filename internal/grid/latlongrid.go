package grid

// Fixed dimension names of the lat/lon grids.
const (
	DimLat = "Lat"
	DimLon = "Lon"
	DimHt  = "Ht"
)

// Attribute names the lat/lon grids keep in the global list.
const (
	AttrLatSpacing = "LatGridSpacing"
	AttrLonSpacing = "LonGridSpacing"
)

// LatLonGrid is an equirectangular 2-D grid in geographic coordinates.
// The location is the northwest corner of cell (0,0); latitude marches
// south with increasing row, longitude east with increasing column. Both
// spacings are positive degrees.
type LatLonGrid struct {
	DataGrid

	latSpacingDegs float64
	lonSpacingDegs float64
}

// NewLatLonGrid allocates a grid with the primary array sized
// numLats x numLons. Zero-sized grids are accepted and allocate nothing
// beyond the empty arrays.
func NewLatLonGrid(typeName, units string, nwCorner LLH, t Time,
	latSpacingDegs, lonSpacingDegs float64, numLats, numLons int) *LatLonGrid {

	g := &LatLonGrid{
		latSpacingDegs: latSpacingDegs,
		lonSpacingDegs: lonSpacingDegs,
	}
	g.DataGrid = *NewDataGrid()
	g.SetDataType("LatLonGrid")
	g.SetTypeName(typeName)
	g.SetLocation(nwCorner)
	g.SetTime(t)

	g.SetDims([]int{numLats, numLons}, []string{DimLat, DimLon})
	g.AddFloat2D(PrimaryName, units, []int{0, 1})

	g.GlobalAttributes().PutDouble(AttrLatSpacing, latSpacingDegs)
	g.GlobalAttributes().PutDouble(AttrLonSpacing, lonSpacingDegs)
	return g
}

// NumLats returns the latitude dimension size.
func (g *LatLonGrid) NumLats() int { return g.Dims()[0].Size }

// NumLons returns the longitude dimension size.
func (g *LatLonGrid) NumLons() int { return g.Dims()[1].Size }

// LatSpacingDegs returns the positive south-going cell height in degrees.
func (g *LatLonGrid) LatSpacingDegs() float64 { return g.latSpacingDegs }

// LonSpacingDegs returns the positive east-going cell width in degrees.
func (g *LatLonGrid) LonSpacingDegs() float64 { return g.lonSpacingDegs }

// PostRead expands a sparse primary over {Lat, Lon}.
func (g *LatLonGrid) PostRead(keys map[string]string) {
	if g.IsSparse() {
		g.Unsparse2D(g.DimIndex(DimLat), g.DimIndex(DimLon))
	}
	g.initFromAttributes()
}

// PreWrite converts the primary to the sparse encoding when requested.
func (g *LatLonGrid) PreWrite(keys map[string]string) {
	if keys[KeyMakeSparse] == "on" {
		g.Sparse2D()
	}
}

// PostWrite restores the dense primary.
func (g *LatLonGrid) PostWrite(keys map[string]string) {
	g.UnsparseRestore()
}

func (g *LatLonGrid) initFromAttributes() {
	if v, ok := g.GlobalAttributes().GetDouble(AttrLatSpacing); ok {
		g.latSpacingDegs = v
	}
	if v, ok := g.GlobalAttributes().GetDouble(AttrLonSpacing); ok {
		g.lonSpacingDegs = v
	}
}

// Projection returns a geographic lookup over the named layer. The
// projection borrows the layer array; mutating the grid invalidates it
// and the caller must reacquire.
func (g *LatLonGrid) Projection(layer string) DataProjection {
	return newLatLonGridProjection(layer, g)
}
