package grid

// Fixed dimension and per-radial array names of a RadialSet.
const (
	DimAzimuth = "Azimuth"
	DimGate    = "Gate"

	RadialAzimuth        = "Azimuth"
	RadialBeamWidth      = "BeamWidth"
	RadialGateWidth      = "GateWidth"
	RadialAzimuthSpacing = "AzimuthSpacing"
)

// Attribute names RadialSet keeps in the global list.
const (
	AttrElevation        = "Elevation"
	AttrRangeToFirstGate = "RangeToFirstGate"
	AttrGateWidth        = "GateWidth"
	AttrRadarName        = "radarName"
	AttrVCP              = "vcp"
	AttrNyquist          = "Nyquist_Vel"
)

// RadialSet is a polar radar sweep at a fixed elevation: the primary 2-D
// field spans the fixed dimension order {Azimuth, Gate}, with per-radial
// 1-D arrays for azimuth, beam width and gate width.
type RadialSet struct {
	DataGrid

	elevationDegs   float64
	firstGateRangeM float64
	gateWidthM      float64
	nyquistMPS      float64
	haveNyquist     bool
	vcp             int
	radarName       string
}

// NewRadialSet allocates a radial set with the primary array and the
// per-radial arrays sized numRadials x numGates. numRadials or numGates of
// zero are accepted for empty sweeps.
func NewRadialSet(typeName, units string, center LLH, t Time,
	elevationDegs, firstGateRangeM, gateWidthM float64,
	numRadials, numGates int) *RadialSet {

	r := &RadialSet{
		elevationDegs:   elevationDegs,
		firstGateRangeM: firstGateRangeM,
		gateWidthM:      gateWidthM,
	}
	r.DataGrid = *NewDataGrid()
	r.SetDataType("RadialSet")
	r.SetTypeName(typeName)
	r.SetLocation(center)
	r.SetTime(t)

	r.SetDims([]int{numRadials, numGates}, []string{DimAzimuth, DimGate})
	r.AddFloat2D(PrimaryName, units, []int{0, 1})
	r.AddFloat1D(RadialAzimuth, "Degrees", 0)
	r.AddFloat1D(RadialBeamWidth, "Degrees", 0)
	gw := r.AddFloat1D(RadialGateWidth, "Meters", 0)
	gw.Array().Fill(gateWidthM)

	r.GlobalAttributes().PutFloat(AttrElevation, float32(elevationDegs))
	r.GlobalAttributes().PutFloat(AttrRangeToFirstGate, float32(firstGateRangeM))
	r.GlobalAttributes().PutFloat(AttrGateWidth, float32(gateWidthM))
	return r
}

// NumRadials returns the azimuth dimension size.
func (r *RadialSet) NumRadials() int { return r.Dims()[0].Size }

// NumGates returns the gate dimension size.
func (r *RadialSet) NumGates() int { return r.Dims()[1].Size }

// ElevationDegs returns the sweep elevation in degrees.
func (r *RadialSet) ElevationDegs() float64 { return r.elevationDegs }

// FirstGateRangeMeters returns the range to the first gate.
func (r *RadialSet) FirstGateRangeMeters() float64 { return r.firstGateRangeM }

// GateWidthMeters returns the nominal gate width.
func (r *RadialSet) GateWidthMeters() float64 { return r.gateWidthM }

// LayerValue returns the legacy layer index value: the elevation in
// millidegrees for layer zero. Preserved for legacy volume indexing.
func (r *RadialSet) LayerValue(layer int) float64 {
	if layer == 0 {
		return r.elevationDegs * 1000.0
	}
	return 0
}

// SetRadarName records the radar identifier.
func (r *RadialSet) SetRadarName(name string) {
	r.radarName = name
	r.GlobalAttributes().PutString(AttrRadarName, name)
}

// RadarName returns the radar identifier, or "".
func (r *RadialSet) RadarName() string { return r.radarName }

// SetVCP records the volume coverage pattern number.
func (r *RadialSet) SetVCP(vcp int) {
	r.vcp = vcp
	r.GlobalAttributes().PutLong(AttrVCP, int64(vcp))
}

// VCP returns the volume coverage pattern number, or zero.
func (r *RadialSet) VCP() int { return r.vcp }

// SetNyquist records the nyquist velocity in meters per second.
func (r *RadialSet) SetNyquist(mps float64) {
	r.nyquistMPS = mps
	r.haveNyquist = true
	r.GlobalAttributes().PutFloat(AttrNyquist, float32(mps))
}

// Nyquist returns the nyquist velocity and whether one was set.
func (r *RadialSet) Nyquist() (float64, bool) { return r.nyquistMPS, r.haveNyquist }

// AddAzimuthSpacing allocates the optional per-radial spacing array and
// returns it.
func (r *RadialSet) AddAzimuthSpacing() *DataArray {
	return r.AddFloat1D(RadialAzimuthSpacing, "Degrees", 0)
}

// PostRead expands a sparse primary over {Azimuth, Gate}.
func (r *RadialSet) PostRead(keys map[string]string) {
	if r.IsSparse() {
		r.Unsparse2D(r.DimIndex(DimAzimuth), r.DimIndex(DimGate))
	}
	r.initFromAttributes()
}

// PreWrite converts the primary to the sparse encoding when requested.
func (r *RadialSet) PreWrite(keys map[string]string) {
	if keys[KeyMakeSparse] == "on" {
		r.Sparse2D()
	}
}

// PostWrite restores the dense primary.
func (r *RadialSet) PostWrite(keys map[string]string) {
	r.UnsparseRestore()
}

// initFromAttributes syncs the radial metadata from the global attributes
// a reader filled in.
func (r *RadialSet) initFromAttributes() {
	if v, ok := r.GlobalAttributes().GetFloat(AttrElevation); ok {
		r.elevationDegs = float64(v)
	}
	if v, ok := r.GlobalAttributes().GetFloat(AttrRangeToFirstGate); ok {
		r.firstGateRangeM = float64(v)
	}
	if v, ok := r.GlobalAttributes().GetFloat(AttrGateWidth); ok {
		r.gateWidthM = float64(v)
	}
	if v, ok := r.GlobalAttributes().GetString(AttrRadarName); ok {
		r.radarName = v
	}
	if v, ok := r.GlobalAttributes().GetLong(AttrVCP); ok {
		r.vcp = int(v)
	}
	if v, ok := r.GlobalAttributes().GetFloat(AttrNyquist); ok {
		r.nyquistMPS = float64(v)
		r.haveNyquist = true
	}
}

// Projection returns a polar lookup over the named layer, usually the
// primary. The projection borrows the layer array; mutating the grid
// invalidates it and the caller must reacquire.
func (r *RadialSet) Projection(layer string) DataProjection {
	return newRadialSetProjection(layer, r)
}
