package grid

import "math"

// Sentinel values shared with the MRMS/WDSS2 file conventions. These are
// part of the external interface contract and must not change without a
// format version bump.
const (
	// MissingData marks data that is below threshold or absent.
	MissingData = -99900.0

	// RangeFolded marks range-folded doppler velocity data.
	RangeFolded = -99901.0

	// DataUnavailable marks cells where no data could exist, such as
	// cells outside the coverage of the source instrument.
	DataUnavailable = -99903.0

	// SentinelTolerance is the absolute tolerance used when comparing a
	// value against a sentinel. Sentinels must survive float32/float64
	// promotion, so equality comparison is never safe.
	SentinelTolerance = 1e-5
)

// PrimaryName is the canonical in-memory name of a DataGrid's primary
// array. On disk the primary array is stored under the grid's TypeName.
const PrimaryName = "primary"

// HiddenAttr marks a DataArray that generic writers must skip. It is used
// for scratch arrays and for the stashed dense primary during sparse writes.
const HiddenAttr = "RAPIO_HIDDEN"

// UnitsAttr is the per-array attribute holding the units string. Writers
// emit the capitalised form; readers also accept the legacy "units".
const UnitsAttr = "Units"

// Global attribute names of the MRMS NetCDF convention.
const (
	AttrDataType       = "DataType"
	AttrTypeName       = "TypeName"
	AttrLatitude       = "Latitude"
	AttrLongitude      = "Longitude"
	AttrHeight         = "Height"
	AttrTime           = "Time"
	AttrFractionalTime = "FractionalTime"
	AttrMissingData    = "MissingData"
	AttrRangeFolded    = "RangeFolded"
	AttrWriterInfo     = "MRMSWriterInfo"
)

// IsSentinel reports whether v equals the given sentinel within
// SentinelTolerance.
func IsSentinel(v, sentinel float64) bool {
	return math.Abs(v-sentinel) < SentinelTolerance
}

// IsGood reports whether v is a real data value, i.e. not MissingData,
// RangeFolded or DataUnavailable.
func IsGood(v float64) bool {
	// Most values are far above the sentinel band; cheap test first.
	if v > -99899 {
		return true
	}
	return !IsSentinel(v, MissingData) &&
		!IsSentinel(v, RangeFolded) &&
		!IsSentinel(v, DataUnavailable)
}
