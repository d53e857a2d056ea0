package odimio

import (
	"log"
	"math"

	"github.com/banshee-data/rapio/internal/grid"
)

// sweepGeometry carries the per-dataset ODIM attributes needed to shape a
// RadialSet.
type sweepGeometry struct {
	A1Gate          int
	ElevationDegs   float64
	NumBins         int
	NumRays         int
	GateWidthMeters float64
	FirstGateKM     float64
	BeamWidthDegs   float64
	StartAzimuths   []float64
	NyquistMPS      float64
	HaveNyquist     bool
	Malfunction     bool
	RadarMsg        string
}

// momentCalibration carries the per-data calibration attributes.
type momentCalibration struct {
	Gain     float64
	Offset   float64
	NoData   float64
	Undetect float64
	Quantity string
}

// rawTolerance is the band around nodata/undetect within which a raw
// integer matches, absorbing the float storage of integral attributes.
const rawTolerance = 5e-3

// maxAzimuthSpacing clips implausible gaps between adjacent rays.
const maxAzimuthSpacing = 1.5

// calibrateValue converts one raw sample: nodata maps to DataUnavailable,
// undetect to MissingData, anything else through y = gain*x + offset.
func calibrateValue(raw float64, cal momentCalibration) float64 {
	if math.Abs(raw-cal.NoData) < rawTolerance {
		return grid.DataUnavailable
	}
	if math.Abs(raw-cal.Undetect) < rawTolerance {
		return grid.MissingData
	}
	return cal.Gain*raw + cal.Offset
}

// sourceRay maps an output radial index to the stored ray index: rays are
// rewound so index zero is the physically first-fired ray.
func sourceRay(i, a1gate, numRays int) int {
	if numRays == 0 {
		return 0
	}
	return (i + a1gate) % numRays
}

// fillRadialGeometry writes the azimuth, beam width and spacing arrays of
// the radial set from the start-azimuth table, applying the a1gate rewind
// and clipping spacings above maxAzimuthSpacing to one degree.
func fillRadialGeometry(r *grid.RadialSet, geo sweepGeometry) {
	az := r.Node(grid.RadialAzimuth).Array()
	bw := r.Node(grid.RadialBeamWidth).Array()
	spacing := r.AddAzimuthSpacing().Array()

	n := geo.NumRays
	sa := geo.StartAzimuths
	clipped := 0
	for i := 0; i < n; i++ {
		ri := sourceRay(i, geo.A1Gate, n)
		if ri < len(sa) {
			az.SetFlatValue(sa[ri], i)
		}
		bw.SetFlatValue(geo.BeamWidthDegs, i)

		sp := 1.0
		if len(sa) == n && n > 0 {
			if ri == n-1 {
				sp = (360.0 + sa[0]) - sa[ri]
			} else {
				sp = sa[ri+1] - sa[ri]
			}
			if sp < 0 {
				sp = -sp
			}
			if sp > maxAzimuthSpacing {
				sp = 1.0
				clipped++
			}
		}
		spacing.SetFlatValue(sp, i)
	}
	if clipped > 0 {
		log.Printf("odim: dampened %d azimuth spacings to 1 degree", clipped)
	}
}

// expandMoment builds one RadialSet from a raw ray-major sample block,
// rotating rays by a1gate and applying the calibration.
func expandMoment(raw []int32, geo sweepGeometry, cal momentCalibration,
	center grid.LLH, t grid.Time, radarName string) *grid.RadialSet {

	info := GetProductInfo(cal.Quantity)
	r := grid.NewRadialSet(info.DataType, info.Unit, center, t,
		geo.ElevationDegs, geo.FirstGateKM*1000.0, geo.GateWidthMeters,
		geo.NumRays, geo.NumBins)
	r.SetRadarName(radarName)
	if geo.HaveNyquist {
		r.SetNyquist(geo.NyquistMPS)
	}
	r.GlobalAttributes().PutString("ColorMap", info.ColorMap)
	if geo.Malfunction {
		r.GlobalAttributes().PutString("ODIM_H5_malfunc", "True")
	}
	if geo.RadarMsg != "" {
		r.GlobalAttributes().PutString("ODIM_H5_radar_msg", geo.RadarMsg)
	}

	fillRadialGeometry(r, geo)

	values := r.Primary().Array()
	for i := 0; i < geo.NumRays; i++ {
		ri := sourceRay(i, geo.A1Gate, geo.NumRays)
		rowStart := ri * geo.NumBins
		for g := 0; g < geo.NumBins; g++ {
			at := rowStart + g
			if at >= len(raw) {
				break
			}
			values.SetValue(calibrateValue(float64(raw[at]), cal), i, g)
		}
	}
	return r
}
