package grid

import (
	"math"
	"time"
)

// LLH is a geographic location: latitude and longitude in degrees
// (positive north, positive east) and height in kilometers.
type LLH struct {
	LatDegs  float64
	LonDegs  float64
	HeightKM float64
}

// Time is an instant split into whole seconds since the Unix epoch and a
// fractional second in [0,1), matching how the file conventions persist
// timestamps.
type Time struct {
	Epoch      int64
	Fractional float64
}

// TimeFrom converts a time.Time.
func TimeFrom(t time.Time) Time {
	return Time{
		Epoch:      t.Unix(),
		Fractional: float64(t.Nanosecond()) / 1e9,
	}
}

// Time converts back to a time.Time in UTC.
func (t Time) Time() time.Time {
	return time.Unix(t.Epoch, int64(math.Round(t.Fractional*1e9))).UTC()
}

// DataType is the interface every readable/writable data object
// implements. It carries identity (data-type tag and product TypeName),
// a location and time, the factory that read it, a global attribute list,
// and the read/write lifecycle hooks.
//
// PostRead runs after a specializer returns and materialises sparse
// primaries. PreWrite runs before encode (dense to sparse when requested);
// PostWrite restores the dense state and must run even when the write
// failed.
type DataType interface {
	DataType() string
	TypeName() string
	SetTypeName(string)
	Units() string
	Location() LLH
	SetLocation(LLH)
	Time() Time
	SetTime(Time)
	ReadFactory() string
	SetReadFactory(string)
	GlobalAttributes() *AttributeList

	PostRead(keys map[string]string)
	PreWrite(keys map[string]string)
	PostWrite(keys map[string]string)
}

// MultiDataType bundles several DataTypes produced by a single read, such
// as the sweeps and moments of an ODIM polar volume.
type MultiDataType struct {
	types []DataType
}

// NewMultiDataType returns an empty bundle.
func NewMultiDataType() *MultiDataType { return &MultiDataType{} }

// Add appends a DataType to the bundle.
func (m *MultiDataType) Add(dt DataType) { m.types = append(m.types, dt) }

// Len returns the number of bundled DataTypes.
func (m *MultiDataType) Len() int { return len(m.types) }

// Types returns the bundled DataTypes in read order.
func (m *MultiDataType) Types() []DataType { return m.types }

// Simplify collapses a bundle of exactly one DataType to that DataType,
// returns nil for an empty bundle, and otherwise returns the bundle
// itself.
func (m *MultiDataType) Simplify() DataType {
	switch len(m.types) {
	case 0:
		return nil
	case 1:
		return m.types[0]
	}
	return m
}

// DataType implements the DataType interface with a fixed tag; the other
// identity accessors delegate to the first member.
func (m *MultiDataType) DataType() string { return "MultiDataType" }

// TypeName returns the TypeName of the first member, or "".
func (m *MultiDataType) TypeName() string {
	if len(m.types) == 0 {
		return ""
	}
	return m.types[0].TypeName()
}

// SetTypeName is a no-op on a bundle.
func (m *MultiDataType) SetTypeName(string) {}

// Units returns the units of the first member, or "".
func (m *MultiDataType) Units() string {
	if len(m.types) == 0 {
		return ""
	}
	return m.types[0].Units()
}

// Location returns the location of the first member.
func (m *MultiDataType) Location() LLH {
	if len(m.types) == 0 {
		return LLH{}
	}
	return m.types[0].Location()
}

// SetLocation is a no-op on a bundle.
func (m *MultiDataType) SetLocation(LLH) {}

// Time returns the time of the first member.
func (m *MultiDataType) Time() Time {
	if len(m.types) == 0 {
		return Time{}
	}
	return m.types[0].Time()
}

// SetTime is a no-op on a bundle.
func (m *MultiDataType) SetTime(Time) {}

// ReadFactory returns the read factory of the first member.
func (m *MultiDataType) ReadFactory() string {
	if len(m.types) == 0 {
		return ""
	}
	return m.types[0].ReadFactory()
}

// SetReadFactory applies the tag to every member.
func (m *MultiDataType) SetReadFactory(f string) {
	for _, t := range m.types {
		t.SetReadFactory(f)
	}
}

// GlobalAttributes returns the attributes of the first member, or an
// empty list.
func (m *MultiDataType) GlobalAttributes() *AttributeList {
	if len(m.types) == 0 {
		return NewAttributeList()
	}
	return m.types[0].GlobalAttributes()
}

// PostRead forwards to every member.
func (m *MultiDataType) PostRead(keys map[string]string) {
	for _, t := range m.types {
		t.PostRead(keys)
	}
}

// PreWrite forwards to every member.
func (m *MultiDataType) PreWrite(keys map[string]string) {
	for _, t := range m.types {
		t.PreWrite(keys)
	}
}

// PostWrite forwards to every member.
func (m *MultiDataType) PostWrite(keys map[string]string) {
	for _, t := range m.types {
		t.PostWrite(keys)
	}
}
