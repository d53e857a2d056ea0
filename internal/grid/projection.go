package grid

import "math"

// Coverage describes a rectangular geographic patch as a NW corner and
// per-cell deltas. DeltaLatDegs is negative (south-going).
type Coverage struct {
	TopDegs      float64
	LeftDegs     float64
	DeltaLatDegs float64
	DeltaLonDegs float64
}

// DataProjection maps geographic coordinates into a specific grid's
// array indexes. Implementations capture the layer array at construction:
// the reference is borrowed, and any mutation of the owning grid
// invalidates the projection. Consumers discard and reacquire.
type DataProjection interface {
	// ValueAtLL returns the layer value nearest (lat, lon), or
	// DataUnavailable off grid.
	ValueAtLL(latDegs, lonDegs float64) float64

	// CoverageCenterDegree returns a square degree patch of the given
	// half-width centered on the grid's center.
	CoverageCenterDegree(degreeOut float64, numRows, numCols int) Coverage

	// CoverageFull returns a patch covering every cell exactly once.
	CoverageFull() (numRows, numCols int, c Coverage)

	// CoverageTile returns a web-tile patch at the given zoom level,
	// keeping DeltaLat = -DeltaLon so each pixel stays square in the
	// equirectangular rendering.
	CoverageTile(zoomLevel, numRows, numCols int, centerLatDegs, centerLonDegs float64) Coverage
}

// centeredCoverage builds the square patch used by CoverageCenterDegree
// and CoverageTile.
func centeredCoverage(centerLatDegs, centerLonDegs, degreeOut float64, numRows, numCols int) Coverage {
	c := Coverage{
		LeftDegs: centerLonDegs - degreeOut,
	}
	width := 2 * degreeOut
	if numCols > 0 {
		c.DeltaLonDegs = width / float64(numCols)
	}
	c.DeltaLatDegs = -c.DeltaLonDegs
	c.TopDegs = centerLatDegs - (c.DeltaLatDegs * float64(numRows) * 0.5)
	return c
}

func tileCoverage(zoomLevel, numRows, numCols int, centerLatDegs, centerLonDegs float64) Coverage {
	// Tile width follows the slippy-map convention of 360 degrees at
	// zoom zero, halving per level.
	degWidth := 360.0 / math.Pow(2, float64(zoomLevel))
	return centeredCoverage(centerLatDegs, centerLonDegs, degWidth*0.5, numRows, numCols)
}

// latLonGridProjection resolves (lat, lon) to the nearest cell of a
// LatLonGrid layer.
type latLonGridProjection struct {
	layer *Array

	latNWDegs  float64
	lonNWDegs  float64
	latSpacing float64
	lonSpacing float64
	numLats    int
	numLons    int
}

func newLatLonGridProjection(layer string, owner *LatLonGrid) DataProjection {
	node := owner.Node(layer)
	if node == nil {
		return nil
	}
	return &latLonGridProjection{
		layer:      node.Array(),
		latNWDegs:  owner.Location().LatDegs,
		lonNWDegs:  owner.Location().LonDegs,
		latSpacing: owner.LatSpacingDegs(),
		lonSpacing: owner.LonSpacingDegs(),
		numLats:    owner.NumLats(),
		numLons:    owner.NumLons(),
	}
}

func (p *latLonGridProjection) ValueAtLL(latDegs, lonDegs float64) float64 {
	x := int(math.Round((p.latNWDegs - latDegs) / p.latSpacing))
	if x < 0 || x >= p.numLats {
		return DataUnavailable
	}
	// Map tiles pass longitudes normalized to [-180, 180) while the grid
	// itself may span past either edge; wrap into the grid's span.
	if lonDegs < p.lonNWDegs {
		lonDegs += 360
	} else if lonDegs > p.lonNWDegs+p.lonSpacing*float64(p.numLons) {
		lonDegs -= 360
	}
	y := int(math.Round((lonDegs - p.lonNWDegs) / p.lonSpacing))
	if y < 0 || y >= p.numLons {
		return DataUnavailable
	}
	return p.layer.Value(x, y)
}

func (p *latLonGridProjection) CoverageCenterDegree(degreeOut float64, numRows, numCols int) Coverage {
	centerLon := p.lonNWDegs + (p.lonSpacing * float64(p.numLons) * 0.5)
	centerLat := p.latNWDegs - (p.latSpacing * float64(p.numLats) * 0.5)
	return centeredCoverage(centerLat, centerLon, degreeOut, numRows, numCols)
}

func (p *latLonGridProjection) CoverageFull() (int, int, Coverage) {
	return p.numLats, p.numLons, Coverage{
		TopDegs:      p.latNWDegs,
		LeftDegs:     p.lonNWDegs,
		DeltaLatDegs: -p.latSpacing,
		DeltaLonDegs: p.lonSpacing,
	}
}

func (p *latLonGridProjection) CoverageTile(zoomLevel, numRows, numCols int, centerLatDegs, centerLonDegs float64) Coverage {
	return tileCoverage(zoomLevel, numRows, numCols, centerLatDegs, centerLonDegs)
}

// radialSetProjection resolves (lat, lon) to the first radial whose
// azimuth span contains the bearing from the radar, then to the gate at
// the ground range.
type radialSetProjection struct {
	layer *Array

	centerLatDegs   float64
	centerLonDegs   float64
	firstGateRangeM float64
	gateWidthM      float64
	numRadials      int
	numGates        int
	azimuths        *Array
	spacings        *Array // nil when the sweep carries none
	beamWidths      *Array
}

// earthRadiusM is the mean Earth radius used for range and bearing.
const earthRadiusM = 6371000.0

func newRadialSetProjection(layer string, owner *RadialSet) DataProjection {
	node := owner.Node(layer)
	az := owner.Node(RadialAzimuth)
	if node == nil || az == nil {
		return nil
	}
	p := &radialSetProjection{
		layer:           node.Array(),
		centerLatDegs:   owner.Location().LatDegs,
		centerLonDegs:   owner.Location().LonDegs,
		firstGateRangeM: owner.FirstGateRangeMeters(),
		gateWidthM:      owner.GateWidthMeters(),
		numRadials:      owner.NumRadials(),
		numGates:        owner.NumGates(),
		azimuths:        az.Array(),
	}
	if n := owner.Node(RadialAzimuthSpacing); n != nil {
		p.spacings = n.Array()
	}
	if n := owner.Node(RadialBeamWidth); n != nil {
		p.beamWidths = n.Array()
	}
	return p
}

// rangeBearing returns the great-circle ground range in meters and the
// bearing in degrees clockwise from north, radar to target.
func rangeBearing(fromLat, fromLon, toLat, toLon float64) (float64, float64) {
	lat1 := fromLat * math.Pi / 180
	lat2 := toLat * math.Pi / 180
	dLat := (toLat - fromLat) * math.Pi / 180
	dLon := (toLon - fromLon) * math.Pi / 180

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)
	a := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	rangeM := 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	bearing := math.Atan2(y, x) * 180 / math.Pi
	if bearing < 0 {
		bearing += 360
	}
	return rangeM, bearing
}

func (p *radialSetProjection) ValueAtLL(latDegs, lonDegs float64) float64 {
	rangeM, bearing := rangeBearing(p.centerLatDegs, p.centerLonDegs, latDegs, lonDegs)

	gate := int((rangeM - p.firstGateRangeM) / p.gateWidthM)
	if gate < 0 || gate >= p.numGates {
		return DataUnavailable
	}
	// First radial whose [azimuth, azimuth+spacing) span contains the
	// bearing wins; sweeps are not required to be sorted.
	for i := 0; i < p.numRadials; i++ {
		az := p.azimuths.FlatValue(i)
		span := 1.0
		if p.spacings != nil {
			span = p.spacings.FlatValue(i)
		} else if p.beamWidths != nil {
			span = p.beamWidths.FlatValue(i)
		}
		diff := bearing - az
		if diff < 0 {
			diff += 360
		}
		if diff < span {
			return p.layer.Value(i, gate)
		}
	}
	return DataUnavailable
}

func (p *radialSetProjection) CoverageCenterDegree(degreeOut float64, numRows, numCols int) Coverage {
	return centeredCoverage(p.centerLatDegs, p.centerLonDegs, degreeOut, numRows, numCols)
}

func (p *radialSetProjection) CoverageFull() (int, int, Coverage) {
	// Degree half-width covering the farthest gate at the equator-ish
	// approximation the legacy renderers used.
	maxRangeM := p.firstGateRangeM + float64(p.numGates)*p.gateWidthM
	degreeOut := maxRangeM / earthRadiusM * 180 / math.Pi
	rows, cols := p.numGates*2, p.numGates*2
	return rows, cols, centeredCoverage(p.centerLatDegs, p.centerLonDegs, degreeOut, rows, cols)
}

func (p *radialSetProjection) CoverageTile(zoomLevel, numRows, numCols int, centerLatDegs, centerLonDegs float64) Coverage {
	return tileCoverage(zoomLevel, numRows, numCols, centerLatDegs, centerLonDegs)
}
