// Package rawio reads merger stage-one raw observation files: a single
// RObsBinaryTable in a flat little-endian block. There is no write
// support.
package rawio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
)

// FormatKey is the builder key for raw observation files.
const FormatKey = "raw"

// Block layout constants. The file is one header followed by the
// per-observation arrays, each written contiguously:
//
//	magic        [4]byte "RObs"
//	version      uint16
//	nameLen      uint16, name bytes
//	vcp          int32
//	elevation    float32 degrees
//	lat, lon     float64 degrees
//	height       float64 kilometers
//	time         int64 epoch seconds
//	fractional   float64 seconds
//	count        uint32
//	x, y         [count]uint16
//	z            [count]uint8
//	value        [count]float32
//	scaledDist   [count]uint16
//	elevWeight   [count]uint8
//	azimuth      [count]uint16
//	azTime       [count]float32
const (
	blockMagic   = "RObs"
	blockVersion = 1

	// maxNameLen bounds the radar-name field against corrupt headers.
	maxNameLen = 64
)

// Builder is the raw file-family handler.
type Builder struct{}

func init() {
	dataio.RegisterBuilder(FormatKey, &Builder{})
}

// CreateDataType reads the single observation table in the file.
func (b *Builder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("raw: read %s: %w", filename, err)
	}
	return ReadBlock(data)
}

// EncodeDataType is unsupported: raw files are produced upstream only.
func (b *Builder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	return fmt.Errorf("raw: writing raw observation files is not supported")
}

// ReadBlock parses one RObs block from a buffer.
func ReadBlock(data []byte) (*grid.RObsBinaryTable, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("raw: short header: %w", err)
	}
	if string(magic[:]) != blockMagic {
		return nil, fmt.Errorf("raw: bad magic %q, not an observation block", magic)
	}
	var ver uint16
	if err := binary.Read(r, binary.LittleEndian, &ver); err != nil {
		return nil, fmt.Errorf("raw: short header: %w", err)
	}
	if ver != blockVersion {
		return nil, fmt.Errorf("raw: unsupported block version %d", ver)
	}

	var nameLen uint16
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, fmt.Errorf("raw: short header: %w", err)
	}
	if nameLen > maxNameLen {
		return nil, fmt.Errorf("raw: radar name length %d exceeds %d", nameLen, maxNameLen)
	}
	name := make([]byte, nameLen)
	if _, err := r.Read(name); err != nil {
		return nil, fmt.Errorf("raw: short radar name: %w", err)
	}

	var hdr struct {
		VCP        int32
		Elevation  float32
		Lat        float64
		Lon        float64
		HeightKM   float64
		Epoch      int64
		Fractional float64
		Count      uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("raw: short header: %w", err)
	}

	count := int(hdr.Count)
	// An observation is 18 bytes across its arrays; reject counts the
	// remaining buffer cannot hold.
	if remaining := r.Len(); count*18 > remaining {
		return nil, fmt.Errorf("raw: declared %d observations but only %d bytes remain",
			count, remaining)
	}

	t := grid.NewRObsBinaryTable(count)
	t.RadarName = string(name)
	t.VCP = int(hdr.VCP)
	t.ElevationDegs = float64(hdr.Elevation)
	t.SetTypeName("RObs")
	t.SetLocation(grid.LLH{LatDegs: hdr.Lat, LonDegs: hdr.Lon, HeightKM: hdr.HeightKM})
	t.SetTime(grid.Time{Epoch: hdr.Epoch, Fractional: hdr.Fractional})

	t.X = make([]uint16, count)
	t.Y = make([]uint16, count)
	t.Z = make([]uint8, count)
	t.Value = make([]float32, count)
	t.ScaledDist = make([]uint16, count)
	t.ElevWeightScaled = make([]uint8, count)
	t.Azimuth = make([]uint16, count)
	t.AzTime = make([]float32, count)
	for _, col := range []interface{}{
		t.X, t.Y, t.Z, t.Value, t.ScaledDist, t.ElevWeightScaled, t.Azimuth, t.AzTime,
	} {
		if err := binary.Read(r, binary.LittleEndian, col); err != nil {
			return nil, fmt.Errorf("raw: short observation arrays: %w", err)
		}
	}
	t.PublishColumns()
	return t, nil
}
