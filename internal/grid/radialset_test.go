package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewRadialSet(t *testing.T) {
	r := NewRadialSet("Reflectivity", "dBZ",
		LLH{LatDegs: 35.33, LonDegs: -97.27, HeightKM: 0.390},
		Time{Epoch: 1700000000}, 0.5, 1000, 250, 360, 500)

	require.Equal(t, "RadialSet", r.DataType())
	require.Equal(t, 360, r.NumRadials())
	require.Equal(t, 500, r.NumGates())
	require.Equal(t, []int{360, 500}, r.Primary().Array().Shape())

	// Fixed dimension order {Azimuth, Gate}.
	require.Equal(t, DimAzimuth, r.Dims()[0].Name)
	require.Equal(t, DimGate, r.Dims()[1].Name)

	// Per-radial arrays pre-sized to numRadials.
	for _, name := range []string{RadialAzimuth, RadialBeamWidth, RadialGateWidth} {
		n := r.Node(name)
		require.NotNil(t, n, name)
		require.Equal(t, []int{360}, n.Array().Shape(), name)
	}
	// GateWidth pre-filled with the nominal width.
	require.InDelta(t, 250, r.Node(RadialGateWidth).Array().FlatValue(17), 1e-6)

	require.NoError(t, r.Validate())
}

func TestRadialSetLayerValue(t *testing.T) {
	r := NewRadialSet("V", "m/s", LLH{}, Time{}, 0.5, 0, 250, 1, 1)
	// Legacy millidegree indexing.
	require.InDelta(t, 500, r.LayerValue(0), 1e-9)
	require.Equal(t, 0.0, r.LayerValue(1))
}

func TestRadialSetSingleCell(t *testing.T) {
	// numRadials=1, numGates=1 builds and round trips the codec.
	r := NewRadialSet("Reflectivity", "dBZ", LLH{}, Time{}, 0.5, 0, 250, 1, 1)
	r.Primary().Array().SetValue(55, 0, 0)
	want := r.Primary().Array().Clone()

	keys := map[string]string{KeyMakeSparse: "on"}
	r.PreWrite(keys)
	r.PostWrite(keys)
	require.True(t, r.Primary().Array().Equal(want))
}

func TestRadialSetOptionalMetadata(t *testing.T) {
	r := NewRadialSet("Velocity", "m/s", LLH{}, Time{}, 1.5, 0, 250, 4, 4)
	if _, ok := r.Nyquist(); ok {
		t.Fatal("nyquist should be unset")
	}
	r.SetNyquist(27.5)
	v, ok := r.Nyquist()
	require.True(t, ok)
	require.InDelta(t, 27.5, v, 1e-6)

	r.SetRadarName("KTLX")
	require.Equal(t, "KTLX", r.RadarName())
	name, ok := r.GlobalAttributes().GetString(AttrRadarName)
	require.True(t, ok)
	require.Equal(t, "KTLX", name)

	r.SetVCP(212)
	require.Equal(t, 212, r.VCP())
}

func TestRadialSetInitFromAttributes(t *testing.T) {
	r := NewRadialSet("", "", LLH{}, Time{}, 0, 0, 0, 2, 2)
	r.GlobalAttributes().PutFloat(AttrElevation, 1.45)
	r.GlobalAttributes().PutFloat(AttrRangeToFirstGate, 2125)
	r.GlobalAttributes().PutFloat(AttrGateWidth, 250)
	r.PostRead(nil)
	require.InDelta(t, 1.45, r.ElevationDegs(), 1e-6)
	require.InDelta(t, 2125, r.FirstGateRangeMeters(), 1e-6)
	require.InDelta(t, 250, r.GateWidthMeters(), 1e-6)
}

func TestLatLonGridCreate(t *testing.T) {
	g := NewLatLonGrid("PrecipRate", "mm/hr",
		LLH{LatDegs: 55, LonDegs: -130}, Time{Epoch: 1700000000},
		0.05, 0.05, 100, 200)
	require.Equal(t, "LatLonGrid", g.DataType())
	require.Equal(t, DimLat, g.Dims()[0].Name)
	require.Equal(t, DimLon, g.Dims()[1].Name)
	require.Equal(t, []int{100, 200}, g.Primary().Array().Shape())
	require.InDelta(t, 0.05, g.LatSpacingDegs(), 1e-9)

	sp, ok := g.GlobalAttributes().GetDouble(AttrLatSpacing)
	require.True(t, ok)
	require.InDelta(t, 0.05, sp, 1e-9)
}

func TestLatLonHeightGridLayers(t *testing.T) {
	g := NewLatLonHeightGrid("MergedReflectivity", "dBZ",
		LLH{LatDegs: 55, LonDegs: -130}, Time{}, 0.01, 0.01, 5, 10, 10)
	require.Equal(t, "LatLonHeightGrid", g.DataType())
	require.Equal(t, 5, g.NumHeights())
	require.Equal(t, []int{5, 10, 10}, g.Primary().Array().Shape())

	heights := []float64{500, 750, 1000, 1250, 1500}
	for i, h := range heights {
		g.SetLayerHeightMeters(i, h)
	}
	for i, h := range heights {
		require.InDelta(t, h, g.LayerHeightMeters(i), 1e-9)
	}
	require.Equal(t, 0.0, g.LayerHeightMeters(99))
}

func TestBinaryTableColumns(t *testing.T) {
	b := NewBinaryTable()
	b.DeclareTable(TableInfo{
		Name:        "obs",
		Size:        4,
		ColumnNames: []string{"value", "flag"},
		ColumnUnits: []string{"dBZ", "dimensionless"},
		ColumnTypes: []ColumnType{ColFloat, ColUChar},
	})

	b.SetFloatColumn("value", []float32{1, 2, 3, 4})
	col, ok := b.FloatColumn("value")
	require.True(t, ok)
	require.Len(t, col, 4)

	// Short rows are padded to the declared size.
	b.SetUCharColumn("flag", []uint8{1, 2})
	flags, ok := b.UCharColumn("flag")
	require.True(t, ok)
	require.Len(t, flags, 4)
	require.Equal(t, uint8(0), flags[3])

	// Long rows are truncated.
	b.SetFloatColumn("value", []float32{1, 2, 3, 4, 5, 6})
	col, _ = b.FloatColumn("value")
	require.Len(t, col, 4)

	if _, ok := b.FloatColumn("absent"); ok {
		t.Error("absent column lookup should fail")
	}
}

func TestRObsBinaryTablePublish(t *testing.T) {
	tab := NewRObsBinaryTable(3)
	tab.RadarName = "KTLX"
	tab.VCP = 212
	tab.X = []uint16{1, 2, 3}
	tab.Y = []uint16{4, 5, 6}
	tab.Z = []uint8{0, 1, 2}
	tab.Value = []float32{10, 20, 30}
	tab.ScaledDist = []uint16{7, 8, 9}
	tab.ElevWeightScaled = []uint8{1, 1, 1}
	tab.Azimuth = []uint16{100, 200, 300}
	tab.AzTime = []float32{0.5, 1.0, 1.5}
	tab.PublishColumns()

	x, ok := tab.UShortColumn("x")
	require.True(t, ok)
	require.Equal(t, []uint16{1, 2, 3}, x)
	v, ok := tab.FloatColumn("value")
	require.True(t, ok)
	require.InDelta(t, 20, v[1], 1e-6)
}
