package rawio

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// encodeBlock builds a valid observation block for tests.
func encodeBlock(t *testing.T, name string, vcp int32, elevation float32,
	lat, lon, heightKM float64, epoch int64, fractional float64,
	x, y []uint16, z []uint8, value []float32,
	scaledDist []uint16, elevWeight []uint8, azimuth []uint16, azTime []float32) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString(blockMagic)
	le := binary.LittleEndian
	binary.Write(&buf, le, uint16(blockVersion))
	binary.Write(&buf, le, uint16(len(name)))
	buf.WriteString(name)
	binary.Write(&buf, le, vcp)
	binary.Write(&buf, le, elevation)
	binary.Write(&buf, le, lat)
	binary.Write(&buf, le, lon)
	binary.Write(&buf, le, heightKM)
	binary.Write(&buf, le, epoch)
	binary.Write(&buf, le, fractional)
	binary.Write(&buf, le, uint32(len(x)))
	for _, col := range []interface{}{x, y, z, value, scaledDist, elevWeight, azimuth, azTime} {
		binary.Write(&buf, le, col)
	}
	return buf.Bytes()
}

func TestReadBlock(t *testing.T) {
	data := encodeBlock(t, "KTLX", 212, 0.5,
		35.33, -97.27, 0.390, 1700000000, 0.25,
		[]uint16{10, 20}, []uint16{11, 21}, []uint8{1, 2},
		[]float32{35.5, -10.25}, []uint16{100, 200}, []uint8{3, 4},
		[]uint16{4500, 9000}, []float32{0.5, 1.5})

	tab, err := ReadBlock(data)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if tab.RadarName != "KTLX" {
		t.Errorf("RadarName = %q", tab.RadarName)
	}
	if tab.VCP != 212 {
		t.Errorf("VCP = %d", tab.VCP)
	}
	if math.Abs(tab.ElevationDegs-0.5) > 1e-6 {
		t.Errorf("Elevation = %v", tab.ElevationDegs)
	}
	loc := tab.Location()
	if math.Abs(loc.LatDegs-35.33) > 1e-9 || math.Abs(loc.LonDegs+97.27) > 1e-9 {
		t.Errorf("location = %+v", loc)
	}
	if tab.Time().Epoch != 1700000000 || math.Abs(tab.Time().Fractional-0.25) > 1e-9 {
		t.Errorf("time = %+v", tab.Time())
	}
	if len(tab.X) != 2 || tab.X[1] != 20 {
		t.Errorf("X = %v", tab.X)
	}
	if math.Abs(float64(tab.Value[1])+10.25) > 1e-6 {
		t.Errorf("Value = %v", tab.Value)
	}
	if tab.Azimuth[0] != 4500 {
		t.Errorf("Azimuth = %v", tab.Azimuth)
	}

	// Columns are fetchable by name.
	x, ok := tab.UShortColumn("x")
	if !ok || x[0] != 10 {
		t.Errorf("column x = %v, %v", x, ok)
	}
	v, ok := tab.FloatColumn("value")
	if !ok || len(v) != 2 {
		t.Errorf("column value = %v, %v", v, ok)
	}
}

func TestReadBlockEmpty(t *testing.T) {
	data := encodeBlock(t, "CASBE", 0, 0, 0, 0, 0, 0, 0,
		nil, nil, nil, nil, nil, nil, nil, nil)
	tab, err := ReadBlock(data)
	if err != nil {
		t.Fatalf("ReadBlock: %v", err)
	}
	if len(tab.X) != 0 {
		t.Errorf("X = %v, want empty", tab.X)
	}
}

func TestReadBlockCorruption(t *testing.T) {
	good := encodeBlock(t, "KTLX", 212, 0.5, 35, -97, 0, 0, 0,
		[]uint16{1}, []uint16{2}, []uint8{3}, []float32{4},
		[]uint16{5}, []uint8{6}, []uint16{7}, []float32{8})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad magic", append([]byte("XXXX"), good[4:]...)},
		{"truncated header", good[:10]},
		{"truncated arrays", good[:len(good)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadBlock(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("oversized count", func(t *testing.T) {
		bad := make([]byte, len(good))
		copy(bad, good)
		// The count field sits right before the arrays: 4 magic + 2
		// version + 2 name len + 4 name + 4 vcp + 4 elev + 24 llh + 8
		// time + 8 fractional.
		countAt := 4 + 2 + 2 + 4 + 4 + 4 + 24 + 8 + 8
		binary.LittleEndian.PutUint32(bad[countAt:], 1<<30)
		if _, err := ReadBlock(bad); err == nil {
			t.Error("expected error for oversized count")
		}
	})
}
