package dataio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/rapio/internal/grid"
)

// fakeBuilder records calls and emits a fixed payload, standing in for a
// real format package.
type fakeBuilder struct {
	readCalls  int
	writeCalls int
	lastName   string
	failWrite  bool
}

func (f *fakeBuilder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	f.readCalls++
	f.lastName = filename
	g := grid.NewDataGrid()
	g.SetTypeName("Fake")
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	g.GlobalAttributes().PutString("payload", string(data))
	return g, nil
}

func (f *fakeBuilder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	f.writeCalls++
	f.lastName = filename
	if f.failWrite {
		return os.ErrPermission
	}
	return os.WriteFile(filename, []byte("fake-payload"), 0o644)
}

var testBuilder = &fakeBuilder{}

func init() {
	RegisterBuilder("fake", testBuilder)
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		path   string
		format string
		codec  string
	}{
		{"a/b/data.nc", "netcdf", ""},
		{"data.netcdf", "netcdf", ""},
		{"data.nc.gz", "netcdf", "gz"},
		{"DATA.NC.GZ", "netcdf", "gz"},
		{"vol.h5", "hdf5", ""},
		{"vol.hdf5.bz2", "hdf5", "bz2"},
		{"hrrr.grib2", "grib2", ""},
		{"hrrr.grb2.xz", "grib2", "xz"},
		{"obs.raw.zst", "raw", "zst"},
		{"dump.txt", "text", ""},
		{"mystery.bin", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			format, codec := ResolveFormat(tt.path)
			if format != tt.format || codec != tt.codec {
				t.Errorf("ResolveFormat(%q) = %q, %q; want %q, %q",
					tt.path, format, codec, tt.format, tt.codec)
			}
		})
	}
}

func TestCompressionRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("radial sweep payload "), 100)
	for _, codec := range []string{"", CodecGzip, CodecBzip2, CodecXz, CodecZstd} {
		name := codec
		if name == "" {
			name = "none"
		}
		t.Run(name, func(t *testing.T) {
			packed, err := Compress(codec, payload)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			got, err := Decompress(codec, packed)
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(got, payload) {
				t.Error("round trip payload differs")
			}
		})
	}
}

func TestDecompressUnknownCodec(t *testing.T) {
	if _, err := Decompress("lz4", []byte("x")); err == nil {
		t.Error("expected unknown codec error")
	}
	if _, err := Compress("lz4", []byte("x")); err == nil {
		t.Error("expected unknown codec error")
	}
}

func TestWriteRenamesIntoPlace(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	g := grid.NewDataGrid()

	err := Write(g, out, map[string]string{"format": "fake"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(data) != "fake-payload" {
		t.Errorf("payload = %q", data)
	}
	// No scratch files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("scratch files left in dir: %v", entries)
	}
}

func TestWriteDirectMode(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "exact.bin")
	g := grid.NewDataGrid()

	err := Write(g, out, map[string]string{
		"format":             "fake",
		grid.KeyFilePathMode: "direct",
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if testBuilder.lastName != out {
		t.Errorf("direct mode wrote to %q, want %q", testBuilder.lastName, out)
	}
}

func TestWriteFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.bin")
	g := grid.NewDataGrid()

	testBuilder.failWrite = true
	defer func() { testBuilder.failWrite = false }()

	if err := Write(g, out, map[string]string{"format": "fake"}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := os.Stat(out); err == nil {
		t.Error("failed write left an output file")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("scratch files left after failure: %v", entries)
	}
}

func TestReadDecompressesBeforeBuilder(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("inner bytes")
	packed, err := Compress(CodecGzip, payload)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "data.fake.gz")
	if err := os.WriteFile(path, packed, 0o644); err != nil {
		t.Fatal(err)
	}

	dt, err := Read(path, map[string]string{"format": "fake"})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	got, _ := dt.GlobalAttributes().GetString("payload")
	if got != string(payload) {
		t.Errorf("builder saw %q, want %q", got, payload)
	}
	if dt.ReadFactory() != "fake" {
		t.Errorf("ReadFactory = %q", dt.ReadFactory())
	}
}

func TestReadUnknownFormat(t *testing.T) {
	if _, err := Read("whatever.bin", nil); err == nil {
		t.Error("expected error for unresolvable format")
	}
	if _, err := Read("x.bin", map[string]string{"format": "absent"}); err == nil {
		t.Error("expected error for unregistered format")
	}
}

func TestRegisterAfterSealPanics(t *testing.T) {
	// The registry seals at first use; Formats() is a use.
	_ = Formats()
	defer func() {
		if recover() == nil {
			t.Error("expected panic registering after seal")
		}
	}()
	RegisterBuilder("late", &fakeBuilder{})
}
