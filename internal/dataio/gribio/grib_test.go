package gribio

import (
	"math"
	"testing"

	grib "github.com/mmp/squall"

	"github.com/banshee-data/rapio/internal/grid"
)

// makeSourceField builds an equidistant-cylindrical field from north-west
// going south, the native layout of most NCEP lat/lon products.
func makeSourceField(nwLat, nwLon float64, d float64, nj, ni int) *grib.GRIB2 {
	f := &grib.GRIB2{
		GridNi:     ni,
		GridNj:     nj,
		NumPoints:  ni * nj,
		Data:       make([]float32, ni*nj),
		Latitudes:  make([]float32, ni*nj),
		Longitudes: make([]float32, ni*nj),
	}
	for r := 0; r < nj; r++ {
		for c := 0; c < ni; c++ {
			at := r*ni + c
			f.Latitudes[at] = float32(nwLat - float64(r)*d)
			f.Longitudes[at] = float32(nwLon + float64(c)*d)
			f.Data[at] = float32(at)
		}
	}
	return f
}

func TestLayoutOf(t *testing.T) {
	f := makeSourceField(55, 230, 0.05, 100, 200) // 230E == -130
	l, err := layoutOf(f)
	if err != nil {
		t.Fatalf("layoutOf: %v", err)
	}
	if math.Abs(l.lat0-55) > 1e-6 || math.Abs(l.lon0-230) > 1e-6 {
		t.Errorf("origin = %v, %v", l.lat0, l.lon0)
	}
	if math.Abs(l.dLat+0.05) > 1e-4 {
		t.Errorf("dLat = %v, want -0.05", l.dLat)
	}
	if math.Abs(l.dLon-0.05) > 1e-4 {
		t.Errorf("dLon = %v, want 0.05", l.dLon)
	}
}

func TestProjectFieldNearestNeighbor(t *testing.T) {
	src := makeSourceField(55, 230, 0.05, 100, 200)
	out := grid.NewLatLonGrid("TMP", "K",
		grid.LLH{LatDegs: 55, LonDegs: -130}, grid.Time{}, 0.05, 0.05, 50, 80)

	projectField(src, out)

	p := out.Primary().Array()
	// Destination (0,0) is the source NW corner: -130 normalizes to 230.
	if got := p.Value(0, 0); got != 0 {
		t.Errorf("cell (0,0) = %v, want 0", got)
	}
	// One row south, two columns east: source index 1*200+2.
	if got := p.Value(1, 2); got != 202 {
		t.Errorf("cell (1,2) = %v, want 202", got)
	}
}

func TestProjectFieldOutsideSource(t *testing.T) {
	src := makeSourceField(55, 230, 0.05, 20, 20) // tiny source patch
	out := grid.NewLatLonGrid("TMP", "K",
		grid.LLH{LatDegs: 56, LonDegs: -131}, grid.Time{}, 0.05, 0.05, 10, 10)

	projectField(src, out)

	// The whole destination sits north-west of the source.
	if got := out.Primary().Array().Value(0, 0); !grid.IsSentinel(got, grid.DataUnavailable) {
		t.Errorf("outside cell = %v, want DataUnavailable", got)
	}
}

func TestProjectFieldNaNToMissing(t *testing.T) {
	src := makeSourceField(55, 230, 0.05, 20, 20)
	src.Data[0] = float32(math.NaN())
	out := grid.NewLatLonGrid("TMP", "K",
		grid.LLH{LatDegs: 55, LonDegs: -130}, grid.Time{}, 0.05, 0.05, 5, 5)

	projectField(src, out)

	if got := out.Primary().Array().Value(0, 0); !grid.IsSentinel(got, grid.MissingData) {
		t.Errorf("NaN source cell = %v, want MissingData", got)
	}
	if got := out.Primary().Array().Value(0, 1); got != 1 {
		t.Errorf("neighbor cell = %v, want 1", got)
	}
}

func TestProjectFieldDegenerateSource(t *testing.T) {
	src := &grib.GRIB2{GridNi: 1, GridNj: 1,
		Data: []float32{1}, Latitudes: []float32{0}, Longitudes: []float32{0}}
	out := grid.NewLatLonGrid("TMP", "K",
		grid.LLH{LatDegs: 10, LonDegs: 10}, grid.Time{}, 1, 1, 3, 3)

	projectField(src, out)

	for x := 0; x < 3; x++ {
		for y := 0; y < 3; y++ {
			if got := out.Primary().Array().Value(x, y); !grid.IsSentinel(got, grid.DataUnavailable) {
				t.Fatalf("cell (%d,%d) = %v, want DataUnavailable", x, y, got)
			}
		}
	}
}

func TestCellForLongitudeNormalization(t *testing.T) {
	f := makeSourceField(10, 350, 1, 5, 20) // source spans 350..369 == -10..9
	l, err := layoutOf(f)
	if err != nil {
		t.Fatalf("layoutOf: %v", err)
	}
	// Query at lon 5E lands 15 columns into the source.
	at := l.cellFor(10, 5)
	if at != 15 {
		t.Errorf("cellFor(10, 5) = %d, want 15", at)
	}
	// Query at -5 (355E) lands 5 columns in.
	if at := l.cellFor(10, -5); at != 5 {
		t.Errorf("cellFor(10, -5) = %d, want 5", at)
	}
}
