// Package units provides unit validation and linear unit conversion for
// the unit names that appear in radar and gridded products.
//
// Every supported unit maps to a (slope, intercept) pair against the base
// unit of its dimension class; a conversion between two units of the same
// class composes the two pairs. Converters are cached after first use and
// the cache is read-only thereafter.
package units

import (
	"log"
	"sync"
)

// Base classes. Units convert only within their class.
const (
	classLength        = "length"
	classSpeed         = "speed"
	classTemperature   = "temperature"
	classAngle         = "angle"
	classTime          = "time"
	classRate          = "rate"
	classDimensionless = "dimensionless"
)

// Dimensionless is the identity target: converting to it returns the
// input unchanged.
const Dimensionless = "dimensionless"

type unitDef struct {
	class     string
	slope     float64 // base = slope*value + intercept
	intercept float64
}

// unitTable maps every accepted spelling to its definition. Base units:
// meters, meters per second, kelvin, degrees, seconds, millimeters per
// hour.
var unitTable = map[string]unitDef{
	// Length
	"Meters":      {classLength, 1, 0},
	"meters":      {classLength, 1, 0},
	"m":           {classLength, 1, 0},
	"Kilometers":  {classLength, 1000, 0},
	"kilometers":  {classLength, 1000, 0},
	"km":          {classLength, 1000, 0},
	"Centimeters": {classLength, 0.01, 0},
	"cm":          {classLength, 0.01, 0},
	"Feet":        {classLength, 0.3048, 0},
	"ft":          {classLength, 0.3048, 0},
	"Miles":       {classLength, 1609.344, 0},
	"mi":          {classLength, 1609.344, 0},

	// Speed
	"MetersPerSecond":   {classSpeed, 1, 0},
	"m/s":               {classSpeed, 1, 0},
	"mps":               {classSpeed, 1, 0},
	"KilometersPerHour": {classSpeed, 1.0 / 3.6, 0},
	"km/h":              {classSpeed, 1.0 / 3.6, 0},
	"MilesPerHour":      {classSpeed, 0.44704, 0},
	"mph":               {classSpeed, 0.44704, 0},
	"Knots":             {classSpeed, 0.514444, 0},
	"kts":               {classSpeed, 0.514444, 0},

	// Temperature (base kelvin; affine pairs)
	"Kelvin":     {classTemperature, 1, 0},
	"K":          {classTemperature, 1, 0},
	"Celsius":    {classTemperature, 1, 273.15},
	"C":          {classTemperature, 1, 273.15},
	"degC":       {classTemperature, 1, 273.15},
	"Fahrenheit": {classTemperature, 5.0 / 9.0, 273.15 - 32.0*5.0/9.0},
	"F":          {classTemperature, 5.0 / 9.0, 273.15 - 32.0*5.0/9.0},
	"degF":       {classTemperature, 5.0 / 9.0, 273.15 - 32.0*5.0/9.0},

	// Angle
	"Degrees": {classAngle, 1, 0},
	"degrees": {classAngle, 1, 0},
	"deg":     {classAngle, 1, 0},
	"Radians": {classAngle, 57.29577951308232, 0},

	// Time
	"Seconds": {classTime, 1, 0},
	"s":       {classTime, 1, 0},
	"Minutes": {classTime, 60, 0},
	"Hours":   {classTime, 3600, 0},

	// Precipitation rate
	"MillimetersPerHour": {classRate, 1, 0},
	"mm/hr":              {classRate, 1, 0},
	"InchesPerHour":      {classRate, 25.4, 0},
	"in/hr":              {classRate, 25.4, 0},

	// Logarithmic and counting units carry no linear conversion other
	// than identity; they live in the dimensionless class.
	"dimensionless": {classDimensionless, 1, 0},
	"dBZ":           {classDimensionless, 1, 0},
	"dB":            {classDimensionless, 1, 0},
	"Count":         {classDimensionless, 1, 0},
}

// MissingData mirrors the grid sentinel; it passes through conversion
// untouched. Kept local to avoid a dependency on the data model.
const MissingData = -99900.0

// Converter is a cached linear conversion.
type Converter struct {
	Slope     float64
	Intercept float64
}

// Value applies the conversion, passing the MissingData sentinel through.
func (c Converter) Value(v float64) float64 {
	if v == MissingData {
		return v
	}
	return c.Slope*v + c.Intercept
}

type converterKey struct {
	from, to string
}

var (
	cacheMu        sync.RWMutex
	converterCache = map[converterKey]Converter{}
)

func lookup(unit string) (unitDef, bool) {
	if unit == "" {
		unit = Dimensionless
	}
	d, ok := unitTable[unit]
	return d, ok
}

// IsValid reports whether the unit name is known.
func IsValid(unit string) bool {
	_, ok := lookup(unit)
	return ok
}

// GetConverter returns the linear conversion from one unit to another,
// caching the result. Converting to dimensionless (or the empty string)
// always yields the identity; incompatible or unknown units fail with a
// logged message.
func GetConverter(from, to string) (Converter, bool) {
	key := converterKey{from, to}
	cacheMu.RLock()
	c, ok := converterCache[key]
	cacheMu.RUnlock()
	if ok {
		return c, true
	}

	if to == Dimensionless || to == "" {
		c = Converter{Slope: 1}
	} else {
		f, okF := lookup(from)
		t, okT := lookup(to)
		if !okF || !okT {
			log.Printf("units: unit %q or %q not in the conversion table", from, to)
			return Converter{}, false
		}
		if f.class != t.class {
			log.Printf("units: units %q and %q are incompatible", from, to)
			return Converter{}, false
		}
		c = Converter{
			Slope:     f.slope / t.slope,
			Intercept: (f.intercept - t.intercept) / t.slope,
		}
	}

	cacheMu.Lock()
	converterCache[key] = c
	cacheMu.Unlock()
	return c, true
}

// IsCompatible reports whether a conversion between the units exists.
func IsCompatible(from, to string) bool {
	_, ok := GetConverter(from, to)
	return ok
}

// Convert converts v between units, reporting failure for unknown or
// incompatible units. Equal unit names short-circuit to the identity.
func Convert(from, to string, v float64) (float64, bool) {
	if from == to {
		return v, true
	}
	c, ok := GetConverter(from, to)
	if !ok {
		return 0, false
	}
	return c.Value(v), true
}

// Value converts v between units, returning MissingData when the
// conversion is not possible.
func Value(from, to string, v float64) float64 {
	out, ok := Convert(from, to, v)
	if !ok {
		return MissingData
	}
	return out
}
