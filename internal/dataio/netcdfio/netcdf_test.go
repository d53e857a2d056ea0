package netcdfio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
)

func writeRead(t *testing.T, dt grid.DataType, keys map[string]string) grid.DataType {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.nc")
	require.NoError(t, dataio.Write(dt, path, keys))
	back, err := dataio.Read(path, nil)
	require.NoError(t, err)
	require.NotNil(t, back)
	return back
}

func TestLatLonGridRoundTripDense(t *testing.T) {
	g := grid.NewLatLonGrid("PrecipRate", "mm/hr",
		grid.LLH{LatDegs: 40, LonDegs: -100, HeightKM: 0.2},
		grid.Time{Epoch: 1700000000, Fractional: 0.5}, 0.05, 0.05, 6, 9)
	p := g.Primary().Array()
	n := 0.0
	for x := 0; x < 6; x++ {
		for y := 0; y < 9; y++ {
			p.SetValue(n, x, y)
			n++
		}
	}
	want := p.Clone()

	back := writeRead(t, g, map[string]string{grid.KeyMakeSparse: "off"})

	llg, ok := back.(*grid.LatLonGrid)
	require.True(t, ok, "read back %T, want *grid.LatLonGrid", back)
	require.Equal(t, "PrecipRate", llg.TypeName())
	require.Equal(t, "LatLonGrid", llg.DataType())
	require.InDelta(t, 0.05, llg.LatSpacingDegs(), 1e-9)
	require.InDelta(t, 40, llg.Location().LatDegs, 1e-9)
	require.Equal(t, int64(1700000000), llg.Time().Epoch)
	require.True(t, llg.Primary().Array().Equal(want), "primary differs after round trip")
	require.Equal(t, "mm/hr", llg.Units())
}

func TestRadialSetRoundTripSparse(t *testing.T) {
	r := grid.NewRadialSet("Reflectivity", "dBZ",
		grid.LLH{LatDegs: 35.33, LonDegs: -97.27, HeightKM: 0.39},
		grid.Time{Epoch: 1700000000}, 0.5, 0, 250, 360, 1000)
	p := r.Primary().Array()
	p.Fill(grid.MissingData)
	p.SetValue(35.5, 45, 100)
	p.SetValue(35.5, 45, 101)
	p.SetValue(35.5, 45, 102)
	want := p.Clone()

	back := writeRead(t, r, map[string]string{grid.KeyMakeSparse: "on"})

	rs, ok := back.(*grid.RadialSet)
	require.True(t, ok, "read back %T, want *grid.RadialSet", back)
	require.Equal(t, 360, rs.NumRadials())
	require.Equal(t, 1000, rs.NumGates())
	require.InDelta(t, 0.5, rs.ElevationDegs(), 1e-5)
	// PostRead expanded the pixel encoding back to dense.
	require.False(t, rs.IsSparse())
	require.True(t, rs.Primary().Array().Equal(want), "primary differs after sparse round trip")

	// The in-memory original was restored by PostWrite.
	require.False(t, r.IsSparse())
	require.True(t, r.Primary().Array().Equal(want))
}

func TestGenericPassthroughWithoutDataType(t *testing.T) {
	// A plain grid without the standard attributes reads back as a
	// generic DataGrid; the variable keeps its own name because no
	// TypeName matches it.
	g := grid.NewDataGrid()
	g.SetDims([]int{5, 7}, []string{"X", "Y"})
	g.AddArray("Foo", "dimensionless", grid.Float32, []int{0, 1})
	g.Node("Foo").Array().Fill(3)

	path := filepath.Join(t.TempDir(), "plain.nc")
	// Direct specializer write with no identity attributes set.
	w := &writeSession{filename: path}
	require.NoError(t, declareGrid(w, g))
	require.NoError(t, w.commit(grid.NewAttributeList()))

	back, err := dataio.Read(path, nil)
	require.NoError(t, err)
	dg, ok := back.(*grid.DataGrid)
	require.True(t, ok, "read back %T, want *grid.DataGrid", back)
	require.Equal(t, "DataGrid", dg.DataType())
	require.Nil(t, dg.Primary(), "no primary without a TypeName match")
	foo := dg.Node("Foo")
	require.NotNil(t, foo)
	require.Equal(t, []int{5, 7}, foo.Array().Shape())
	require.InDelta(t, 3, foo.Array().Value(4, 6), 1e-6)
}

func TestPrimaryRenamedWhenTypeNameMatches(t *testing.T) {
	g := grid.NewLatLonGrid("Foo", "dBZ", grid.LLH{LatDegs: 1, LonDegs: 2},
		grid.Time{Epoch: 5}, 0.1, 0.1, 2, 2)
	g.Primary().Array().Fill(9)

	back := writeRead(t, g, map[string]string{grid.KeyMakeSparse: "off"})
	llg := back.(*grid.LatLonGrid)
	require.NotNil(t, llg.Primary(), "variable Foo should come back as primary")
	require.Nil(t, llg.Node("Foo"))
}

func TestAttributeRoundTrip(t *testing.T) {
	g := grid.NewLatLonGrid("Attrs", "dBZ", grid.LLH{LatDegs: 1, LonDegs: 2},
		grid.Time{Epoch: 5}, 0.1, 0.1, 2, 2)
	g.GlobalAttributes().PutString("radarName", "KTLX")
	g.GlobalAttributes().PutLong("vcp", 212)
	g.GlobalAttributes().PutFloat("Elevation", 0.5)
	g.GlobalAttributes().PutDouble("calibration", -1.25)
	g.Primary().Attributes().PutFloat("scale", 2.5)

	back := writeRead(t, g, map[string]string{grid.KeyMakeSparse: "off"})

	attrs := back.GlobalAttributes()
	s, ok := attrs.GetString("radarName")
	require.True(t, ok)
	require.Equal(t, "KTLX", s)
	l, ok := attrs.GetLong("vcp")
	require.True(t, ok)
	require.Equal(t, int64(212), l)
	f, ok := attrs.GetFloat("Elevation")
	require.True(t, ok)
	require.InDelta(t, 0.5, float64(f), 1e-6)
	d, ok := attrs.GetDouble("calibration")
	require.True(t, ok)
	require.InDelta(t, -1.25, d, 1e-9)

	llg := back.(*grid.LatLonGrid)
	sc, ok := llg.Primary().Attributes().GetFloat("scale")
	require.True(t, ok)
	require.InDelta(t, 2.5, float64(sc), 1e-6)
}

func TestBinaryTableWrite(t *testing.T) {
	tab := grid.NewRObsBinaryTable(3)
	tab.SetTypeName("RObs")
	tab.X = []uint16{1, 2, 3}
	tab.Y = []uint16{4, 5, 6}
	tab.Z = []uint8{0, 1, 2}
	tab.Value = []float32{10, 20, 30}
	tab.ScaledDist = []uint16{7, 8, 9}
	tab.ElevWeightScaled = []uint8{1, 1, 1}
	tab.Azimuth = []uint16{100, 200, 300}
	tab.AzTime = []float32{0.5, 1.0, 1.5}
	tab.PublishColumns()

	path := filepath.Join(t.TempDir(), "obs.nc")
	require.NoError(t, dataio.Write(tab, path, map[string]string{"format": "netcdf"}))

	// The table reader is a stub; the write just has to produce a file
	// the NetCDF builder can open.
	back, err := dataio.Read(path, map[string]string{"format": "netcdf"})
	require.NoError(t, err)
	require.NotNil(t, back)
}
