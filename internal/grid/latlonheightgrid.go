package grid

// HeightsArray is the 1-D array listing layer heights in meters,
// ascending.
const HeightsArray = "Height"

// LatLonHeightGrid is a stack of equirectangular layers at discrete
// heights: the primary 3-D field spans the fixed dimension order
// {Ht, Lat, Lon}.
type LatLonHeightGrid struct {
	DataGrid

	latSpacingDegs float64
	lonSpacingDegs float64
}

// NewLatLonHeightGrid allocates a grid with the primary array sized
// numHeights x numLats x numLons and a Height layer array. Layer heights
// default to zero; callers fill them ascending.
func NewLatLonHeightGrid(typeName, units string, nwCorner LLH, t Time,
	latSpacingDegs, lonSpacingDegs float64,
	numHeights, numLats, numLons int) *LatLonHeightGrid {

	g := &LatLonHeightGrid{
		latSpacingDegs: latSpacingDegs,
		lonSpacingDegs: lonSpacingDegs,
	}
	g.DataGrid = *NewDataGrid()
	g.SetDataType("LatLonHeightGrid")
	g.SetTypeName(typeName)
	g.SetLocation(nwCorner)
	g.SetTime(t)

	g.SetDims([]int{numHeights, numLats, numLons}, []string{DimHt, DimLat, DimLon})
	g.AddFloat3D(PrimaryName, units, []int{0, 1, 2})
	g.AddFloat1D(HeightsArray, "Meters", 0)

	g.GlobalAttributes().PutDouble(AttrLatSpacing, latSpacingDegs)
	g.GlobalAttributes().PutDouble(AttrLonSpacing, lonSpacingDegs)
	return g
}

// NumHeights returns the height dimension size.
func (g *LatLonHeightGrid) NumHeights() int { return g.Dims()[0].Size }

// NumLats returns the latitude dimension size.
func (g *LatLonHeightGrid) NumLats() int { return g.Dims()[1].Size }

// NumLons returns the longitude dimension size.
func (g *LatLonHeightGrid) NumLons() int { return g.Dims()[2].Size }

// LatSpacingDegs returns the positive south-going cell height in degrees.
func (g *LatLonHeightGrid) LatSpacingDegs() float64 { return g.latSpacingDegs }

// LonSpacingDegs returns the positive east-going cell width in degrees.
func (g *LatLonHeightGrid) LonSpacingDegs() float64 { return g.lonSpacingDegs }

// LayerHeightMeters returns the height of the given layer.
func (g *LatLonHeightGrid) LayerHeightMeters(layer int) float64 {
	h := g.Node(HeightsArray)
	if h == nil || layer < 0 || layer >= h.Array().Len() {
		return 0
	}
	return h.Array().FlatValue(layer)
}

// SetLayerHeightMeters stores the height of the given layer.
func (g *LatLonHeightGrid) SetLayerHeightMeters(layer int, meters float64) {
	if h := g.Node(HeightsArray); h != nil {
		h.Array().SetFlatValue(meters, layer)
	}
}

// PostRead expands a sparse primary over {Ht, Lat, Lon}.
func (g *LatLonHeightGrid) PostRead(keys map[string]string) {
	if g.IsSparse() {
		g.Unsparse3D(g.DimIndex(DimHt), g.DimIndex(DimLat), g.DimIndex(DimLon))
	}
	g.initFromAttributes()
}

// PreWrite converts the primary to the (experimental) 3-D sparse encoding
// when requested.
func (g *LatLonHeightGrid) PreWrite(keys map[string]string) {
	if keys[KeyMakeSparse] == "on" {
		g.Sparse3D()
	}
}

// PostWrite restores the dense primary.
func (g *LatLonHeightGrid) PostWrite(keys map[string]string) {
	g.UnsparseRestore()
}

func (g *LatLonHeightGrid) initFromAttributes() {
	if v, ok := g.GlobalAttributes().GetDouble(AttrLatSpacing); ok {
		g.latSpacingDegs = v
	}
	if v, ok := g.GlobalAttributes().GetDouble(AttrLonSpacing); ok {
		g.lonSpacingDegs = v
	}
}
