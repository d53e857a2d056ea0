// Package odimio reads ODIM_H5 polar radar files (SCAN and PVOL objects)
// into RadialSets through the gonum HDF5 binding.
package odimio

import (
	"fmt"
	"log"
	"strings"
	"time"

	"gonum.org/v1/hdf5"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
)

// FormatKey is the builder key for HDF5 files.
const FormatKey = "hdf5"

// Builder is the HDF5 file-family handler, dispatching on /what/object.
type Builder struct{}

func init() {
	dataio.RegisterBuilder(FormatKey, &Builder{})
}

// CreateDataType validates the file is HDF5, reads the root ODIM groups
// and dispatches on the object kind.
func (b *Builder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	if !hdf5.IsHDF5(filename) {
		return nil, fmt.Errorf("odim: %s is not an HDF5 file", filename)
	}
	f, err := hdf5.OpenFile(filename, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("odim: open %s: %w", filename, err)
	}
	defer f.Close()
	keys[grid.KeyHDF5URL] = filename

	what, err := f.OpenGroup("what")
	if err != nil {
		return nil, fmt.Errorf("odim: no /what group, not an ODIM file: %w", err)
	}
	defer what.Close()

	object, err := readStringAttr(what, "object")
	if err != nil {
		return nil, fmt.Errorf("odim: no /what/object discriminator: %w", err)
	}
	object = strings.ToUpper(strings.TrimSpace(object))

	source, _ := readStringAttr(what, "source")
	radarName := parseRadarName(source)
	t := readWhatTime(what)

	beamWidth := 1.0
	if how, err := f.OpenGroup("how"); err == nil {
		if bw, err := readFloatAttr(how, "beamwidth"); err == nil {
			beamWidth = bw
		}
		how.Close()
	}

	var location grid.LLH
	if where, err := f.OpenGroup("where"); err == nil {
		lat, _ := readFloatAttr(where, "lat")
		lon, _ := readFloatAttr(where, "lon")
		heightM, _ := readFloatAttr(where, "height")
		location = grid.LLH{LatDegs: lat, LonDegs: lon, HeightKM: heightM / 1000.0}
		where.Close()
	}

	switch object {
	case "SCAN", "PVOL":
		return b.readSCANPVOL(f, beamWidth, location, radarName, t)
	default:
		return nil, fmt.Errorf("odim: object %q is unimplemented", object)
	}
}

// EncodeDataType is unsupported; ODIM output has no use case yet.
func (b *Builder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	return fmt.Errorf("odim: writing ODIM files is not supported")
}

// readSCANPVOL walks dataset1..datasetN, producing one RadialSet per
// moment, bundled when more than one comes back.
func (b *Builder) readSCANPVOL(f *hdf5.File, beamWidth float64, location grid.LLH,
	radarName string, fallback grid.Time) (grid.DataType, error) {

	out := grid.NewMultiDataType()
	for index := 1; ; index++ {
		name := fmt.Sprintf("dataset%d", index)
		ds, err := f.OpenGroup(name)
		if err != nil {
			break
		}
		if err := b.readDataset(out, ds, beamWidth, location, radarName, fallback); err != nil {
			log.Printf("odim: dataset %s: %v", name, err)
		}
		ds.Close()
	}
	dt := out.Simplify()
	if dt == nil {
		return nil, fmt.Errorf("odim: no readable datasets in volume")
	}
	return dt, nil
}

func (b *Builder) readDataset(out *grid.MultiDataType, ds *hdf5.Group,
	beamWidth float64, location grid.LLH, radarName string, fallback grid.Time) error {

	t := fallback
	if what, err := ds.OpenGroup("what"); err == nil {
		if read := readWhatTime(what); read.Epoch != 0 {
			t = read
		}
		what.Close()
	}

	geo := sweepGeometry{BeamWidthDegs: beamWidth}
	where, err := ds.OpenGroup("where")
	if err != nil {
		return fmt.Errorf("missing where group: %w", err)
	}
	if v, err := readFloatAttr(where, "a1gate"); err == nil {
		geo.A1Gate = int(v)
	}
	if v, err := readFloatAttr(where, "elangle"); err == nil {
		geo.ElevationDegs = v
	}
	if v, err := readFloatAttr(where, "nbins"); err == nil {
		geo.NumBins = int(v)
	}
	if v, err := readFloatAttr(where, "nrays"); err == nil {
		geo.NumRays = int(v)
	}
	if v, err := readFloatAttr(where, "rscale"); err == nil {
		geo.GateWidthMeters = v
	}
	if v, err := readFloatAttr(where, "rstart"); err == nil {
		geo.FirstGateKM = v
	}
	where.Close()

	if how, err := ds.OpenGroup("how"); err == nil {
		geo.StartAzimuths, _ = readFloatSliceAttr(how, "startazA")
		if v, err := readFloatAttr(how, "NI"); err == nil {
			geo.NyquistMPS = v
			geo.HaveNyquist = true
		}
		if v, err := readStringAttr(how, "malfunc"); err == nil {
			geo.Malfunction = v == "True"
		}
		geo.RadarMsg, _ = readStringAttr(how, "radar_msg")
		how.Close()
	}

	for index := 1; ; index++ {
		name := fmt.Sprintf("data%d", index)
		data, err := ds.OpenGroup(name)
		if err != nil {
			break
		}
		if r, err := b.readMoment(data, geo, location, radarName, t); err != nil {
			log.Printf("odim: moment %s: %v", name, err)
		} else {
			out.Add(r)
		}
		data.Close()
	}
	return nil
}

func (b *Builder) readMoment(data *hdf5.Group, geo sweepGeometry,
	location grid.LLH, radarName string, t grid.Time) (*grid.RadialSet, error) {

	cal := momentCalibration{Gain: 1.0}
	if what, err := data.OpenGroup("what"); err == nil {
		if v, err := readFloatAttr(what, "gain"); err == nil {
			cal.Gain = v
		}
		if v, err := readFloatAttr(what, "offset"); err == nil {
			cal.Offset = v
		}
		if v, err := readFloatAttr(what, "nodata"); err == nil {
			cal.NoData = v
		}
		if v, err := readFloatAttr(what, "undetect"); err == nil {
			cal.Undetect = v
		}
		cal.Quantity, _ = readStringAttr(what, "quantity")
		what.Close()
	}

	dset, err := data.OpenDataset("data")
	if err != nil {
		return nil, fmt.Errorf("missing data block: %w", err)
	}
	defer dset.Close()

	space := dset.Space()
	dims, _, err := space.SimpleExtentDims()
	space.Close()
	if err != nil {
		return nil, fmt.Errorf("dataspace: %w", err)
	}
	if len(dims) != 2 {
		return nil, fmt.Errorf("unsupported dataspace rank %d", len(dims))
	}
	rays, bins := int(dims[0]), int(dims[1])
	if rays*bins != geo.NumRays*geo.NumBins {
		log.Printf("odim: data block is %dx%d but where declares %dx%d, trusting the block",
			rays, bins, geo.NumRays, geo.NumBins)
		geo.NumRays, geo.NumBins = rays, bins
	}

	raw := make([]int32, rays*bins)
	if err := dset.Read(&raw); err != nil {
		return nil, fmt.Errorf("reading data block: %w", err)
	}

	return expandMoment(raw, geo, cal, location, t, radarName), nil
}

// parseRadarName pulls the NOD: token out of the ODIM source string, such
// as "NOD:casbe,PLC:Bethune SK", upper-casing it per MRMS convention.
func parseRadarName(source string) string {
	const key = "NOD:"
	at := strings.Index(source, key)
	if at < 0 {
		return "Unknown"
	}
	rest := source[at+len(key):]
	if comma := strings.Index(rest, ","); comma >= 0 {
		rest = rest[:comma]
	}
	return strings.ToUpper(strings.TrimSpace(rest))
}

// readWhatTime combines the ODIM startdate/starttime attributes.
func readWhatTime(what *hdf5.Group) grid.Time {
	date, err1 := readStringAttr(what, "startdate")
	clock, err2 := readStringAttr(what, "starttime")
	if err1 != nil || err2 != nil {
		return grid.Time{}
	}
	t, err := time.Parse("20060102150405", date+clock)
	if err != nil {
		log.Printf("odim: cannot parse time %q%q: %v", date, clock, err)
		return grid.Time{}
	}
	return grid.TimeFrom(t)
}

// Attribute helpers over the hdf5 binding.

func readStringAttr(g *hdf5.Group, name string) (string, error) {
	a, err := g.OpenAttribute(name)
	if err != nil {
		return "", err
	}
	defer a.Close()
	var v string
	if err := a.Read(&v, hdf5.T_GO_STRING); err != nil {
		return "", err
	}
	return strings.TrimRight(v, "\x00"), nil
}

func readFloatAttr(g *hdf5.Group, name string) (float64, error) {
	a, err := g.OpenAttribute(name)
	if err != nil {
		return 0, err
	}
	defer a.Close()
	var v float64
	if err := a.Read(&v, hdf5.T_NATIVE_DOUBLE); err != nil {
		return 0, err
	}
	return v, nil
}

func readFloatSliceAttr(g *hdf5.Group, name string) ([]float64, error) {
	a, err := g.OpenAttribute(name)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	space := a.Space()
	n := space.SimpleExtentNPoints()
	space.Close()
	if n <= 0 {
		return nil, fmt.Errorf("odim: attribute %q is empty", name)
	}
	v := make([]float64, n)
	if err := a.Read(&v, hdf5.T_NATIVE_DOUBLE); err != nil {
		return nil, err
	}
	return v, nil
}
